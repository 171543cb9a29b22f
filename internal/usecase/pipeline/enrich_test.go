package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"foodinspect/internal/domain/inspection"
	"foodinspect/internal/ports"
)

type fakeZipResolver map[string]ports.Place

func (f fakeZipResolver) Resolve(zip string) (ports.Place, bool) {
	place, ok := f[zip]
	return place, ok
}

type fakeGeocoder struct {
	place ports.Place
	err   error
	calls int
}

func (f *fakeGeocoder) Reverse(context.Context, float64, float64) (ports.Place, error) {
	f.calls++
	if f.err != nil {
		return ports.Place{}, f.err
	}
	return f.place, nil
}

type memCache map[string]string

func (m memCache) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m memCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	m[key] = value
	return nil
}

func (m memCache) Delete(_ context.Context, key string) error {
	delete(m, key)
	return nil
}

func coord(v float64) *float64 { return &v }

func TestEnrichFillsFromZipTable(t *testing.T) {
	zips := fakeZipResolver{"60601": {City: "Chicago", State: "IL", Zip: "60601"}}
	e := NewEnricher(zips, nil, nil, 0)

	row, prov := e.Enrich(context.Background(), inspection.Row{Zip: "60601"})
	if row.City != "Chicago" || row.State != "IL" {
		t.Fatalf("row = %+v", row)
	}
	if prov.City != SourceZipTable || prov.State != SourceZipTable {
		t.Fatalf("provenance = %+v", prov)
	}
}

func TestEnrichNeverOverwritesPresentFields(t *testing.T) {
	zips := fakeZipResolver{"60601": {City: "Chicago", State: "IL", Zip: "60601"}}
	e := NewEnricher(zips, nil, nil, 0)

	row, prov := e.Enrich(context.Background(), inspection.Row{Zip: "60601", City: "EVANSTON"})
	if row.City != "EVANSTON" {
		t.Fatalf("present city overwritten: %q", row.City)
	}
	if prov.City != SourceOriginal {
		t.Fatalf("city provenance = %q, want original", prov.City)
	}
	if row.State != "IL" || prov.State != SourceZipTable {
		t.Fatalf("state = %q provenance = %q", row.State, prov.State)
	}
}

func TestEnrichFallsBackToReverseGeocoding(t *testing.T) {
	rev := &fakeGeocoder{place: ports.Place{City: "Cicero", State: "Illinois", Zip: "60804"}}
	e := NewEnricher(fakeZipResolver{}, rev, nil, 0)

	row, prov := e.Enrich(context.Background(), inspection.Row{
		Latitude:  coord(41.84),
		Longitude: coord(-87.75),
	})
	if row.City != "Cicero" || row.Zip != "60804" {
		t.Fatalf("row = %+v", row)
	}
	if prov.City != SourceReverseGeocode || prov.Zip != SourceReverseGeocode {
		t.Fatalf("provenance = %+v", prov)
	}
}

func TestEnrichGeocodeFailureIsNotFatal(t *testing.T) {
	rev := &fakeGeocoder{err: errors.New("timeout")}
	e := NewEnricher(fakeZipResolver{}, rev, nil, 0)

	row, prov := e.Enrich(context.Background(), inspection.Row{
		Latitude:  coord(41.84),
		Longitude: coord(-87.75),
	})
	if row.City != "" || row.State != "" || row.Zip != "" {
		t.Fatalf("failed lookup still enriched: %+v", row)
	}
	if prov.City != SourceMissing {
		t.Fatalf("provenance = %+v", prov)
	}
}

func TestEnrichSkipsGeocoderWhenNothingMissing(t *testing.T) {
	rev := &fakeGeocoder{place: ports.Place{City: "X"}}
	e := NewEnricher(fakeZipResolver{}, rev, nil, 0)

	e.Enrich(context.Background(), inspection.Row{
		City: "CHICAGO", State: "IL", Zip: "60601",
		Latitude: coord(41.88), Longitude: coord(-87.63),
	})
	if rev.calls != 0 {
		t.Fatalf("geocoder called %d times for complete row", rev.calls)
	}
}

func TestEnrichUsesCacheBeforeGeocoder(t *testing.T) {
	rev := &fakeGeocoder{place: ports.Place{City: "Cicero", State: "Illinois", Zip: "60804"}}
	cache := memCache{}
	e := NewEnricher(fakeZipResolver{}, rev, cache, 0)

	row := inspection.Row{Latitude: coord(41.84), Longitude: coord(-87.75)}
	e.Enrich(context.Background(), row)
	e.Enrich(context.Background(), row)

	if rev.calls != 1 {
		t.Fatalf("geocoder calls = %d, want 1 (second lookup from cache)", rev.calls)
	}
}
