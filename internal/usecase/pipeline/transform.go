package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"foodinspect/internal/bootstrap/logging"
	"foodinspect/internal/domain/inspection"
	"foodinspect/internal/errs"
	"foodinspect/internal/metrics"
)

// computedRegionPrefix marks server-computed region columns that carry no
// domain meaning and are dropped before mapping.
const computedRegionPrefix = ":@computed_region"

// dateLayouts lists accepted forms of the inspection_date field. Socrata
// emits floating timestamps; date-only values appear in older snapshots.
var dateLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// RowError reports one rejected raw record without aborting the batch.
type RowError struct {
	Index        int
	InspectionID string
	Err          error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d (inspection_id=%q): %v", e.Index, e.InspectionID, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// PruneRaw returns a copy of raw without the geometry column and any
// server-computed region columns.
func PruneRaw(raw inspection.Raw) inspection.Raw {
	pruned := make(inspection.Raw, len(raw))
	for key, value := range raw {
		if key == "location" || strings.HasPrefix(key, computedRegionPrefix) {
			continue
		}
		pruned[key] = value
	}
	return pruned
}

// MapRow is the pure raw-to-normalized mapping. It prunes irrelevant
// columns and parses the inspection date; a row without a usable
// inspection_id or inspection_date is rejected.
func MapRow(raw inspection.Raw) (inspection.Row, error) {
	pruned := PruneRaw(raw)

	id := pruned.Field("inspection_id")
	if id == "" {
		return inspection.Row{}, fmt.Errorf("missing inspection_id")
	}

	date, err := parseInspectionDate(pruned.Field("inspection_date"))
	if err != nil {
		return inspection.Row{}, err
	}

	return inspection.Row{
		InspectionID:   id,
		License:        pruned.Field("license_"),
		DBAName:        pruned.Field("dba_name"),
		AKAName:        pruned.Field("aka_name"),
		FacilityType:   pruned.Field("facility_type"),
		Risk:           pruned.Field("risk"),
		Address:        pruned.Field("address"),
		City:           pruned.Field("city"),
		State:          pruned.Field("state"),
		Zip:            pruned.Field("zip"),
		Latitude:       parseCoordinate(pruned.Field("latitude")),
		Longitude:      parseCoordinate(pruned.Field("longitude")),
		InspectionDate: date,
		InspectionType: pruned.Field("inspection_type"),
		Results:        pruned.Field("results"),
		Violations:     pruned.Field("violations"),
	}, nil
}

// TransformAll maps every raw record, isolating failures per row. Rejected
// rows are logged and counted; the surviving rows continue downstream.
func TransformAll(ctx context.Context, raws []inspection.Raw) ([]inspection.Row, []RowError) {
	rows := make([]inspection.Row, 0, len(raws))
	var rejected []RowError

	for i, raw := range raws {
		row, err := MapRow(raw)
		if err != nil {
			rejected = append(rejected, RowError{
				Index:        i,
				InspectionID: raw.Field("inspection_id"),
				Err:          err,
			})
			metrics.RowsRejectedTotal.Inc()
			continue
		}
		rows = append(rows, row)
	}

	if len(rejected) > 0 {
		logging.Warn(ctx, "rows rejected during transform",
			slog.Int("rejected", len(rejected)),
			slog.Int("accepted", len(rows)),
			slog.Any("first_err", errs.Loggable(&rejected[0])))
	}
	return rows, rejected
}

func parseInspectionDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("missing inspection_date")
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable inspection_date %q", value)
}

func parseCoordinate(value string) *float64 {
	if value == "" {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	return &f
}
