package inspection

import (
	"regexp"
	"strconv"
	"strings"
)

// violationPattern matches one entry of the violations blob: a leading
// number, a period and space, a description, and an optional trailing
// "- Comments: <text>" suffix.
var violationPattern = regexp.MustCompile(`^(\d{1,3})\.\s(.*?)(?:\s*-\s*Comments:\s*(.*))?$`)

// ParseViolations splits a pipe-delimited violations blob into structured
// records owned by inspectionID. Entries that do not match the expected
// pattern are dropped; the blob is free-form historical data and partial
// extraction beats rejecting the row. An empty blob yields no records.
func ParseViolations(inspectionID, blob string) []Violation {
	if strings.TrimSpace(blob) == "" {
		return nil
	}

	var out []Violation
	for _, entry := range strings.Split(blob, "|") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		m := violationPattern.FindStringSubmatch(entry)
		if m == nil {
			continue
		}

		number, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}

		v := Violation{
			InspectionID: inspectionID,
			Number:       number,
			Description:  strings.TrimSpace(m[2]),
		}
		if comment := strings.TrimSpace(m[3]); comment != "" {
			v.Comments = &comment
		}
		out = append(out, v)
	}
	return out
}
