package inspection

import (
	"strings"
	"time"
)

// Raw is one flat record as returned by the dataset API. Socrata encodes
// almost every field as a string; the location field is a nested object and
// gets pruned before mapping.
type Raw map[string]any

// Field returns the record value for key as a trimmed string, or "" when the
// key is absent or not a string.
func (r Raw) Field(key string) string {
	v, ok := r[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// Row is the normalized form of one raw record after pruning and date
// parsing. Violations stays a raw blob here; it is split into records by
// ParseViolations during projection.
type Row struct {
	InspectionID   string
	License        string
	DBAName        string
	AKAName        string
	FacilityType   string
	Risk           string
	Address        string
	City           string
	State          string
	Zip            string
	Latitude       *float64
	Longitude      *float64
	InspectionDate time.Time
	InspectionType string
	Results        string
	Violations     string
}

// Violation is one parsed entry of a row's pipe-delimited violations blob.
type Violation struct {
	InspectionID string
	Number       int
	Description  string
	Comments     *string
}
