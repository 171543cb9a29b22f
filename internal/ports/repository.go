package ports

import (
	"context"
	"time"
)

// RestaurantRecord is the load-stage projection of one deduplicated restaurant.
type RestaurantRecord struct {
	ID           string
	License      string
	DBAName      string
	AKAName      string
	FacilityType string
	Risk         string
	Address      string
	City         string
	State        string
	Zip          string
	Latitude     *float64
	Longitude    *float64
}

type InspectionRecord struct {
	ID             string
	RestaurantID   string
	InspectionDate time.Time
	InspectionType string
	Results        string
}

type ViolationRecord struct {
	InspectionID string
	Number       int
	Description  string
	Comments     *string
}

type TableCounts struct {
	Restaurants int64
	Inspections int64
	Violations  int64
}

// InspectionRepository persists the three projected tables.
//
// The Save methods are conflict-safe: rows whose identity already exists are
// skipped, never overwritten. Each returns the number of rows actually
// written so callers can report skipped duplicates.
type InspectionRepository interface {
	SaveRestaurants(ctx context.Context, rows []RestaurantRecord) (int64, error)
	SaveInspections(ctx context.Context, rows []InspectionRecord) (int64, error)
	SaveViolations(ctx context.Context, rows []ViolationRecord) (int64, error)
	TableCounts(ctx context.Context) (TableCounts, error)
}
