// Package checkpoint persists partial extraction progress as a JSON array of
// raw records, rewritten whole after each fetched page.
package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"foodinspect/internal/bootstrap/logging"
	"foodinspect/internal/domain/inspection"
	"foodinspect/internal/errs"
	"foodinspect/internal/ports"
)

type FileStore struct {
	path string
}

var _ ports.CheckpointStore = (*FileStore)(nil)

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load returns the accumulated records. A missing, unreadable, or corrupt
// file means a fresh start, never a failed run.
func (s *FileStore) Load(ctx context.Context) ([]inspection.Raw, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn(ctx, "checkpoint unreadable, starting fresh",
				slog.String("path", s.path), slog.Any("err", errs.Loggable(err)))
		}
		return []inspection.Raw{}, nil
	}

	var records []inspection.Raw
	if err := json.Unmarshal(data, &records); err != nil {
		logging.Warn(ctx, "checkpoint corrupt, starting fresh",
			slog.String("path", s.path), slog.Any("err", errs.Loggable(err)))
		return []inspection.Raw{}, nil
	}
	return records, nil
}

// Save rewrites the whole checkpoint atomically (temp file + rename) so an
// interrupted write cannot corrupt previously persisted progress.
func (s *FileStore) Save(ctx context.Context, records []inspection.Raw) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errs.Wrapf(err, "create checkpoint directory %q", dir)
		}
	}

	data, err := json.Marshal(records)
	if err != nil {
		return errs.Wrap(err, "encode checkpoint")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errs.Wrap(err, "write checkpoint temp file")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errs.Wrap(err, "replace checkpoint file")
	}
	return nil
}
