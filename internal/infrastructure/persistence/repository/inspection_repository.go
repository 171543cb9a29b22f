package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"foodinspect/internal/errs"
	"foodinspect/internal/infrastructure/persistence/model"
	"foodinspect/internal/ports"
)

const insertBatchSize = 500

type InspectionRepository struct {
	db *gorm.DB
}

var _ ports.InspectionRepository = (*InspectionRepository)(nil)

func NewInspectionRepository(db *gorm.DB) *InspectionRepository {
	return &InspectionRepository{db: db}
}

func (r *InspectionRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

// SaveRestaurants inserts restaurants keyed by deterministic id; rows whose
// id already exists are left untouched. Returns the number of rows written.
func (r *InspectionRepository) SaveRestaurants(ctx context.Context, rows []ports.RestaurantRecord) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	models := make([]model.Restaurant, 0, len(rows))
	for _, row := range rows {
		models = append(models, model.Restaurant{
			ID:           row.ID,
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

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).CreateInBatches(&models, insertBatchSize)
	if result.Error != nil {
		return 0, errs.Wrap(result.Error, "insert restaurants")
	}
	return result.RowsAffected, nil
}

// SaveInspections inserts inspections keyed by source inspection id;
// conflicting ids are skipped, not overwritten.
func (r *InspectionRepository) SaveInspections(ctx context.Context, rows []ports.InspectionRecord) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	models := make([]model.Inspection, 0, len(rows))
	for _, row := range rows {
		models = append(models, model.Inspection{
			ID:             row.ID,
			RestaurantID:   row.RestaurantID,
			InspectionDate: row.InspectionDate,
			InspectionType: row.InspectionType,
			Results:        row.Results,
		})
	}

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).CreateInBatches(&models, insertBatchSize)
	if result.Error != nil {
		return 0, errs.Wrap(result.Error, "insert inspections")
	}
	return result.RowsAffected, nil
}

// SaveViolations inserts violations, skipping entries already present for
// the same (inspection_id, violation_number) pair.
func (r *InspectionRepository) SaveViolations(ctx context.Context, rows []ports.ViolationRecord) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	models := make([]model.Violation, 0, len(rows))
	for _, row := range rows {
		models = append(models, model.Violation{
			InspectionID:         row.InspectionID,
			ViolationNumber:      row.Number,
			ViolationDescription: row.Description,
			ViolationComments:    row.Comments,
		})
	}

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "inspection_id"}, {Name: "violation_number"}},
		DoNothing: true,
	}).CreateInBatches(&models, insertBatchSize)
	if result.Error != nil {
		return 0, errs.Wrap(result.Error, "insert violations")
	}
	return result.RowsAffected, nil
}

func (r *InspectionRepository) TableCounts(ctx context.Context) (ports.TableCounts, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.TableCounts{}, err
	}

	var counts ports.TableCounts
	if err := db.Model(&model.Restaurant{}).Count(&counts.Restaurants).Error; err != nil {
		return ports.TableCounts{}, errs.Wrap(err, "count restaurants")
	}
	if err := db.Model(&model.Inspection{}).Count(&counts.Inspections).Error; err != nil {
		return ports.TableCounts{}, errs.Wrap(err, "count inspections")
	}
	if err := db.Model(&model.Violation{}).Count(&counts.Violations).Error; err != nil {
		return ports.TableCounts{}, errs.Wrap(err, "count violations")
	}
	return counts, nil
}
