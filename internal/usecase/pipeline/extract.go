package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"foodinspect/internal/bootstrap/logging"
	"foodinspect/internal/domain/inspection"
	"foodinspect/internal/errs"
	"foodinspect/internal/metrics"
	"foodinspect/internal/ports"
)

// ExtractorOptions control paging and resumability of the fetch loop.
type ExtractorOptions struct {
	PageSize   int
	MaxRecords int // 0 means unbounded
	Resumable  bool
}

// Extractor pulls the dataset page by page in offset order. In resumable
// mode it starts from the checkpointed record count and rewrites the
// checkpoint after every page, so an interrupted run resumes without
// refetching from the start.
type Extractor struct {
	client     ports.DatasetClient
	checkpoint ports.CheckpointStore
	opts       ExtractorOptions
}

func NewExtractor(client ports.DatasetClient, checkpoint ports.CheckpointStore, opts ExtractorOptions) *Extractor {
	return &Extractor{
		client:     client,
		checkpoint: checkpoint,
		opts:       opts,
	}
}

// Fetch accumulates raw records until one of the termination conditions
// hits, checked in order: empty page, record cap (final page truncated), or
// a short page in resumable mode. Any transport or decode error aborts the
// loop; pages checkpointed so far stay persisted for the next invocation.
func (x *Extractor) Fetch(ctx context.Context) ([]inspection.Raw, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	timer := prometheus.NewTimer(metrics.FetchDurationSeconds)
	defer timer.ObserveDuration()

	var accumulated []inspection.Raw
	if x.opts.Resumable {
		loaded, err := x.checkpoint.Load(ctx)
		if err != nil {
			return nil, errs.Wrap(err, "load checkpoint")
		}
		accumulated = loaded
		if len(accumulated) > 0 {
			logging.Info(ctx, "resuming extraction from checkpoint",
				slog.Int("records", len(accumulated)))
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, errs.Wrap(err, "check context")
		}

		// The cap is checked before fetching so a resumed checkpoint that
		// already holds MaxRecords or more finishes without another request.
		if x.opts.MaxRecords > 0 && len(accumulated) >= x.opts.MaxRecords {
			if len(accumulated) > x.opts.MaxRecords {
				accumulated = accumulated[:x.opts.MaxRecords]
				if x.opts.Resumable {
					if err := x.checkpoint.Save(ctx, accumulated); err != nil {
						return nil, errs.Wrap(err, "save checkpoint")
					}
				}
			}
			logging.Info(ctx, "record cap reached", slog.Int("max_records", x.opts.MaxRecords))
			break
		}

		offset := len(accumulated)
		page, err := x.client.FetchPage(ctx, x.opts.PageSize, offset)
		if err != nil {
			return nil, errs.Wrap(err, "fetch page")
		}

		if len(page) == 0 {
			logging.Info(ctx, "no more data to fetch", slog.Int("total", len(accumulated)))
			break
		}

		accumulated = append(accumulated, page...)
		metrics.PagesFetchedTotal.Inc()
		metrics.RowsFetchedTotal.Add(float64(len(page)))
		logging.Info(ctx, "page fetched",
			slog.Int("page_size", len(page)),
			slog.Int("total", len(accumulated)))

		if x.opts.MaxRecords > 0 && len(accumulated) > x.opts.MaxRecords {
			accumulated = accumulated[:x.opts.MaxRecords]
		}

		if x.opts.Resumable {
			if err := x.checkpoint.Save(ctx, accumulated); err != nil {
				return nil, errs.Wrap(err, "save checkpoint")
			}
		}

		if x.opts.MaxRecords > 0 && len(accumulated) == x.opts.MaxRecords {
			logging.Info(ctx, "record cap reached", slog.Int("max_records", x.opts.MaxRecords))
			break
		}

		if x.opts.Resumable && len(page) < x.opts.PageSize {
			logging.Info(ctx, "short page, end of dataset", slog.Int("total", len(accumulated)))
			break
		}
	}

	return accumulated, nil
}
