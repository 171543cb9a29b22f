package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"foodinspect/internal/infrastructure/persistence/model"
	"foodinspect/internal/ports"
)

func setupRepository(t *testing.T) *InspectionRepository {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "inspections.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(&model.Restaurant{}, &model.Inspection{}, &model.Violation{}, &model.GeocodeKV{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return NewInspectionRepository(db)
}

func sampleBatch() ([]ports.RestaurantRecord, []ports.InspectionRecord, []ports.ViolationRecord) {
	date := time.Date(2023, 5, 17, 0, 0, 0, 0, time.UTC)
	comment := "repair needed"

	restaurants := []ports.RestaurantRecord{
		{ID: "r1", License: "111", DBAName: "PLACE A", City: "CHICAGO", State: "IL", Zip: "60601"},
		{ID: "r2", License: "222", DBAName: "PLACE B", City: "CHICAGO", State: "IL", Zip: "60602"},
	}
	inspections := []ports.InspectionRecord{
		{ID: "1", RestaurantID: "r1", InspectionDate: date, InspectionType: "Canvass", Results: "Pass"},
		{ID: "2", RestaurantID: "r2", InspectionDate: date, InspectionType: "Canvass", Results: "Fail"},
	}
	violations := []ports.ViolationRecord{
		{InspectionID: "1", Number: 12, Description: "No hot water", Comments: &comment},
		{InspectionID: "2", Number: 4, Description: "Improper storage"},
	}
	return restaurants, inspections, violations
}

func TestSaveBatchRerunIsIdempotent(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	restaurants, inspections, violations := sampleBatch()

	for _, save := range []func() (int64, error){
		func() (int64, error) { return repo.SaveRestaurants(ctx, restaurants) },
		func() (int64, error) { return repo.SaveInspections(ctx, inspections) },
		func() (int64, error) { return repo.SaveViolations(ctx, violations) },
	} {
		persisted, err := save()
		if err != nil {
			t.Fatalf("first save: %v", err)
		}
		if persisted != 2 {
			t.Fatalf("first save persisted = %d, want 2", persisted)
		}
	}

	// Second application of the same batch must not change the result.
	for name, save := range map[string]func() (int64, error){
		"restaurants": func() (int64, error) { return repo.SaveRestaurants(ctx, restaurants) },
		"inspections": func() (int64, error) { return repo.SaveInspections(ctx, inspections) },
		"violations":  func() (int64, error) { return repo.SaveViolations(ctx, violations) },
	} {
		persisted, err := save()
		if err != nil {
			t.Fatalf("second save %s: %v", name, err)
		}
		if persisted != 0 {
			t.Fatalf("second save %s persisted = %d, want 0", name, persisted)
		}
	}

	counts, err := repo.TableCounts(ctx)
	if err != nil {
		t.Fatalf("TableCounts() error = %v", err)
	}
	if counts.Restaurants != 2 || counts.Inspections != 2 || counts.Violations != 2 {
		t.Fatalf("counts = %+v, want 2/2/2", counts)
	}
}

func TestSaveRestaurantsConflictKeepsExistingRow(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	first := []ports.RestaurantRecord{{ID: "r1", License: "111", DBAName: "ORIGINAL NAME"}}
	if _, err := repo.SaveRestaurants(ctx, first); err != nil {
		t.Fatalf("first save: %v", err)
	}

	conflicting := []ports.RestaurantRecord{{ID: "r1", License: "111", DBAName: "CHANGED NAME"}}
	persisted, err := repo.SaveRestaurants(ctx, conflicting)
	if err != nil {
		t.Fatalf("conflicting save: %v", err)
	}
	if persisted != 0 {
		t.Fatalf("conflicting save persisted = %d, want 0", persisted)
	}

	var row model.Restaurant
	if err := repo.db.Where("id = ?", "r1").Take(&row).Error; err != nil {
		t.Fatalf("read back: %v", err)
	}
	if row.DBAName != "ORIGINAL NAME" {
		t.Fatalf("dba_name = %q, existing row was overwritten", row.DBAName)
	}
}

func TestSaveViolationsAllowsSameNumberAcrossInspections(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	rows := []ports.ViolationRecord{
		{InspectionID: "1", Number: 4, Description: "Improper storage"},
		{InspectionID: "2", Number: 4, Description: "Improper storage"},
	}
	persisted, err := repo.SaveViolations(ctx, rows)
	if err != nil {
		t.Fatalf("SaveViolations() error = %v", err)
	}
	if persisted != 2 {
		t.Fatalf("persisted = %d, want 2", persisted)
	}
}

func TestSaveInsideTransactionContext(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	restaurants, inspections, violations := sampleBatch()

	err := repo.db.Transaction(func(tx *gorm.DB) error {
		txCtx := ports.WithTxContext(ctx, tx)
		if _, err := repo.SaveRestaurants(txCtx, restaurants); err != nil {
			return err
		}
		if _, err := repo.SaveInspections(txCtx, inspections); err != nil {
			return err
		}
		_, err := repo.SaveViolations(txCtx, violations)
		return err
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}

	counts, err := repo.TableCounts(ctx)
	if err != nil {
		t.Fatalf("TableCounts() error = %v", err)
	}
	if counts.Restaurants != 2 || counts.Inspections != 2 || counts.Violations != 2 {
		t.Fatalf("counts = %+v", counts)
	}
}
