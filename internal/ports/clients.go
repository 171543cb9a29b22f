package ports

import (
	"context"

	"foodinspect/internal/domain/inspection"
)

// DatasetClient fetches one page of raw records from the upstream dataset.
type DatasetClient interface {
	FetchPage(ctx context.Context, limit, offset int) ([]inspection.Raw, error)
}

// Place is a resolved city/state/zip triple. Empty fields mean the resolver
// had nothing for them.
type Place struct {
	City  string `json:"city"`
	State string `json:"state"`
	Zip   string `json:"zip"`
}

// ZipResolver maps a postal code to its place via a static table.
type ZipResolver interface {
	Resolve(zip string) (Place, bool)
}

// ReverseGeocoder resolves an address from coordinates.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (Place, error)
}

// CheckpointStore persists partial extraction progress between runs.
type CheckpointStore interface {
	// Load returns the accumulated records, or an empty slice when the
	// checkpoint is missing or unreadable.
	Load(ctx context.Context) ([]inspection.Raw, error)
	Save(ctx context.Context, records []inspection.Raw) error
}
