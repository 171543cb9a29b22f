package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"foodinspect/internal/bootstrap/logging"
	"foodinspect/internal/domain/inspection"
	"foodinspect/internal/errs"
	"foodinspect/internal/metrics"
	"foodinspect/internal/ports"
)

// FieldSource tags where an enriched field value came from, so downstream
// code can tell verified source data from best-effort guesses.
type FieldSource string

const (
	SourceOriginal       FieldSource = "original"
	SourceZipTable       FieldSource = "ziptable"
	SourceReverseGeocode FieldSource = "revgeo"
	SourceMissing        FieldSource = ""
)

// Provenance records the source of the three enrichable fields of one row.
type Provenance struct {
	City  FieldSource
	State FieldSource
	Zip   FieldSource
}

// Enricher fills missing city/state/zip via two fallback stages: a static
// ZIP-centroid table, then reverse geocoding from coordinates. Reverse
// lookups are rate-limited and memoized; a geocoding failure is never fatal,
// the row just keeps its gaps.
type Enricher struct {
	zips    ports.ZipResolver
	rev     ports.ReverseGeocoder
	cache   ports.Cache
	limiter *rate.Limiter
}

// NewEnricher builds an enricher. rev may be nil to disable the reverse
// geocoding stage; cache may be nil to disable memoization. cooldown is the
// minimum spacing between reverse-geocoding requests.
func NewEnricher(zips ports.ZipResolver, rev ports.ReverseGeocoder, cache ports.Cache, cooldown time.Duration) *Enricher {
	var limiter *rate.Limiter
	if cooldown > 0 {
		limiter = rate.NewLimiter(rate.Every(cooldown), 1)
	}

	return &Enricher{
		zips:    zips,
		rev:     rev,
		cache:   cache,
		limiter: limiter,
	}
}

// Enrich returns a copy of row with missing geographic fields filled where
// possible, plus the provenance of each field. Present fields are never
// overwritten.
func (e *Enricher) Enrich(ctx context.Context, row inspection.Row) (inspection.Row, Provenance) {
	prov := Provenance{
		City:  sourceIfPresent(row.City),
		State: sourceIfPresent(row.State),
		Zip:   sourceIfPresent(row.Zip),
	}

	if e.zips != nil && row.Zip != "" && (row.City == "" || row.State == "") {
		if place, ok := e.zips.Resolve(row.Zip); ok {
			if row.City == "" && place.City != "" {
				row.City = place.City
				prov.City = SourceZipTable
			}
			if row.State == "" && place.State != "" {
				row.State = place.State
				prov.State = SourceZipTable
			}
		}
	}

	if e.rev != nil && row.Latitude != nil && row.Longitude != nil &&
		(row.City == "" || row.State == "" || row.Zip == "") {
		place, err := e.reverseLookup(ctx, *row.Latitude, *row.Longitude)
		if err != nil {
			logging.Warn(ctx, "reverse geocoding failed, skipping enrichment",
				slog.String("inspection_id", row.InspectionID),
				slog.Any("err", errs.Loggable(err)))
			metrics.GeocodeRequestsTotal.WithLabelValues("failed").Inc()
			return row, prov
		}

		if row.City == "" && place.City != "" {
			row.City = place.City
			prov.City = SourceReverseGeocode
		}
		if row.State == "" && place.State != "" {
			row.State = place.State
			prov.State = SourceReverseGeocode
		}
		if row.Zip == "" && place.Zip != "" {
			row.Zip = place.Zip
			prov.Zip = SourceReverseGeocode
		}
	}

	return row, prov
}

func (e *Enricher) reverseLookup(ctx context.Context, lat, lon float64) (ports.Place, error) {
	key := fmt.Sprintf("revgeo:%.5f,%.5f", lat, lon)

	if e.cache != nil {
		if value, found, err := e.cache.Get(ctx, key); err == nil && found {
			var place ports.Place
			if err := json.Unmarshal([]byte(value), &place); err == nil {
				metrics.GeocodeRequestsTotal.WithLabelValues("hit").Inc()
				return place, nil
			}
		}
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return ports.Place{}, errs.Wrap(err, "wait for geocoder cooldown")
		}
	}

	place, err := e.rev.Reverse(ctx, lat, lon)
	if err != nil {
		return ports.Place{}, err
	}
	metrics.GeocodeRequestsTotal.WithLabelValues("resolved").Inc()

	if e.cache != nil {
		if encoded, err := json.Marshal(place); err == nil {
			if err := e.cache.Set(ctx, key, string(encoded), 0); err != nil {
				logging.Warn(ctx, "geocode cache write failed", slog.Any("err", errs.Loggable(err)))
			}
		}
	}
	return place, nil
}

func sourceIfPresent(value string) FieldSource {
	if value == "" {
		return SourceMissing
	}
	return SourceOriginal
}
