package geocode

import (
	_ "embed"
	"os"
	"strings"

	"github.com/jszwec/csvutil"

	"foodinspect/internal/errs"
	"foodinspect/internal/ports"
)

//go:embed zipdata/il_zip_places.csv
var defaultZipCSV []byte

type zipRow struct {
	Zip   string `csv:"zip"`
	City  string `csv:"city"`
	State string `csv:"state"`
}

// ZipTable resolves postal codes to places from a static CSV, loaded once at
// construction. It ships with a Chicago-area table and can be pointed at a
// fuller one via config.
type ZipTable struct {
	places map[string]ports.Place
}

var _ ports.ZipResolver = (*ZipTable)(nil)

// NewZipTable loads the table at path, or the embedded default when path is
// empty.
func NewZipTable(path string) (*ZipTable, error) {
	data := defaultZipCSV
	if path != "" {
		loaded, err := os.ReadFile(path)
		if err != nil {
			return nil, errs.Wrapf(err, "read zip table %q", path)
		}
		data = loaded
	}

	var rows []zipRow
	if err := csvutil.Unmarshal(data, &rows); err != nil {
		return nil, errs.Wrap(err, "parse zip table csv")
	}

	places := make(map[string]ports.Place, len(rows))
	for _, row := range rows {
		zip := strings.TrimSpace(row.Zip)
		if zip == "" {
			continue
		}
		places[zip] = ports.Place{
			City:  strings.TrimSpace(row.City),
			State: strings.TrimSpace(row.State),
			Zip:   zip,
		}
	}

	return &ZipTable{places: places}, nil
}

func (t *ZipTable) Resolve(zip string) (ports.Place, bool) {
	place, ok := t.places[strings.TrimSpace(zip)]
	return place, ok
}

// Len reports the number of loaded entries.
func (t *ZipTable) Len() int {
	return len(t.places)
}
