package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"foodinspect/internal/bootstrap/logging"
	"foodinspect/internal/domain/inspection"
	"foodinspect/internal/errs"
	"foodinspect/internal/metrics"
	"foodinspect/internal/ports"
)

// Service orchestrates the extraction-to-load pipeline: fetch, normalize,
// enrich, canonicalize, resolve identity, project, persist.
type Service struct {
	extractor *Extractor
	enricher  *Enricher
	canon     *Canonicalizer
	repo      ports.InspectionRepository
	uow       ports.UnitOfWork
}

func NewService(
	extractor *Extractor,
	enricher *Enricher,
	canon *Canonicalizer,
	repo ports.InspectionRepository,
	uow ports.UnitOfWork,
) *Service {
	return &Service{
		extractor: extractor,
		enricher:  enricher,
		canon:     canon,
		repo:      repo,
		uow:       uow,
	}
}

type LoadOutcome struct {
	Offered   int
	Persisted int64
	Skipped   int64
}

type RunReport struct {
	RowsFetched  int
	RowsRejected int
	CitiesFixed  int
	Restaurants  LoadOutcome
	Inspections  LoadOutcome
	Violations   LoadOutcome
}

type StatusReport struct {
	Counts ports.TableCounts
	Ready  bool
}

// Fetch runs extraction only, leaving the accumulated records in the
// checkpoint for a later Run.
func (s *Service) Fetch(ctx context.Context) (int, error) {
	if ctx == nil {
		return 0, errors.New("context is required")
	}
	ctx = logging.WithAttrs(ctx, slog.String("run_id", uuid.NewString()))

	raws, err := s.extractor.Fetch(ctx)
	if err != nil {
		return 0, errs.Wrap(err, "extract dataset")
	}
	return len(raws), nil
}

// Run executes the full pipeline against the upstream dataset and persists
// the three projected tables in a single transaction.
func (s *Service) Run(ctx context.Context) (RunReport, error) {
	if ctx == nil {
		return RunReport{}, errors.New("context is required")
	}
	ctx = logging.WithAttrs(ctx, slog.String("run_id", uuid.NewString()))

	raws, err := s.extractor.Fetch(ctx)
	if err != nil {
		return RunReport{}, errs.Wrap(err, "extract dataset")
	}

	report := RunReport{RowsFetched: len(raws)}

	rows, rejected := TransformAll(ctx, raws)
	report.RowsRejected = len(rejected)

	for i := range rows {
		enriched, _ := s.enricher.Enrich(ctx, rows[i])

		match := s.canon.Match(enriched.City)
		enriched.City = match.Canonical
		if match.Matched && match.Cleaned != match.Canonical {
			report.CitiesFixed++
		}

		rows[i] = enriched
	}

	restaurants, inspections, violations := Project(rows)
	report.Restaurants.Offered = len(restaurants)
	report.Inspections.Offered = len(inspections)
	report.Violations.Offered = len(violations)

	if err := s.load(ctx, restaurants, inspections, violations, &report); err != nil {
		return RunReport{}, errs.Wrap(err, "load tables")
	}

	logging.Info(ctx, "pipeline run completed",
		slog.Int("rows_fetched", report.RowsFetched),
		slog.Int("rows_rejected", report.RowsRejected),
		slog.Int64("restaurants_persisted", report.Restaurants.Persisted),
		slog.Int64("inspections_persisted", report.Inspections.Persisted),
		slog.Int64("violations_persisted", report.Violations.Persisted))
	return report, nil
}

// Status reports table counts and the downstream readiness verdict: the
// dataset is ready only when all three tables are non-empty.
func (s *Service) Status(ctx context.Context) (StatusReport, error) {
	if ctx == nil {
		return StatusReport{}, errors.New("context is required")
	}

	counts, err := s.repo.TableCounts(ctx)
	if err != nil {
		return StatusReport{}, errs.Wrap(err, "count tables")
	}

	return StatusReport{
		Counts: counts,
		Ready:  counts.Restaurants > 0 && counts.Inspections > 0 && counts.Violations > 0,
	}, nil
}

// load applies all writes inside one transaction: a failure partway rolls
// back the entire batch.
func (s *Service) load(
	ctx context.Context,
	restaurants []ports.RestaurantRecord,
	inspections []ports.InspectionRecord,
	violations []ports.ViolationRecord,
	report *RunReport,
) error {
	return s.uow.WithTx(ctx, func(txCtx context.Context) error {
		persisted, err := s.repo.SaveRestaurants(txCtx, restaurants)
		if err != nil {
			return err
		}
		report.Restaurants.Persisted = persisted
		report.Restaurants.Skipped = int64(len(restaurants)) - persisted

		persisted, err = s.repo.SaveInspections(txCtx, inspections)
		if err != nil {
			return err
		}
		report.Inspections.Persisted = persisted
		report.Inspections.Skipped = int64(len(inspections)) - persisted

		persisted, err = s.repo.SaveViolations(txCtx, violations)
		if err != nil {
			return err
		}
		report.Violations.Persisted = persisted
		report.Violations.Skipped = int64(len(violations)) - persisted

		observeLoad("restaurants", report.Restaurants)
		observeLoad("inspections", report.Inspections)
		observeLoad("violations", report.Violations)
		return nil
	})
}

func observeLoad(table string, outcome LoadOutcome) {
	metrics.RowsLoadedTotal.WithLabelValues(table, "persisted").Add(float64(outcome.Persisted))
	metrics.RowsLoadedTotal.WithLabelValues(table, "skipped").Add(float64(outcome.Skipped))
}

// Project splits normalized rows into the three load-stage tables.
// Restaurants are deduplicated by deterministic identity, inspections by
// source inspection id; violations come from parsing each row's blob, with
// repeats of the same (inspection, number) pair collapsed.
func Project(rows []inspection.Row) ([]ports.RestaurantRecord, []ports.InspectionRecord, []ports.ViolationRecord) {
	var (
		restaurants []ports.RestaurantRecord
		inspections []ports.InspectionRecord
		violations  []ports.ViolationRecord
	)

	seenRestaurants := make(map[string]struct{})
	seenInspections := make(map[string]struct{})
	seenViolations := make(map[violationKey]struct{})

	for _, row := range rows {
		restaurantID := inspection.RestaurantID(row.License, row.Address, row.Zip, row.City)

		if _, ok := seenRestaurants[restaurantID]; !ok {
			seenRestaurants[restaurantID] = struct{}{}
			restaurants = append(restaurants, ports.RestaurantRecord{
				ID:           restaurantID,
				License:      row.License,
				DBAName:      row.DBAName,
				AKAName:      row.AKAName,
				FacilityType: row.FacilityType,
				Risk:         row.Risk,
				Address:      row.Address,
				City:         row.City,
				State:        row.State,
				Zip:          row.Zip,
				Latitude:     row.Latitude,
				Longitude:    row.Longitude,
			})
		}

		if _, ok := seenInspections[row.InspectionID]; !ok {
			seenInspections[row.InspectionID] = struct{}{}
			inspections = append(inspections, ports.InspectionRecord{
				ID:             row.InspectionID,
				RestaurantID:   restaurantID,
				InspectionDate: row.InspectionDate,
				InspectionType: row.InspectionType,
				Results:        row.Results,
			})
		}

		for _, v := range inspection.ParseViolations(row.InspectionID, row.Violations) {
			key := violationKey{inspectionID: v.InspectionID, number: v.Number}
			if _, ok := seenViolations[key]; ok {
				continue
			}
			seenViolations[key] = struct{}{}
			violations = append(violations, ports.ViolationRecord{
				InspectionID: v.InspectionID,
				Number:       v.Number,
				Description:  v.Description,
				Comments:     v.Comments,
			})
		}
	}

	return restaurants, inspections, violations
}

type violationKey struct {
	inspectionID string
	number       int
}
