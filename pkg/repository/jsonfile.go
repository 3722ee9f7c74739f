package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ikikae/inaka/pkg/model"
	"github.com/ikikae/inaka/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// jsonFileRepo implements Repository over a single JSON file holding the
// full spot record set. All writes go through a read-modify-write of the
// whole file, serialized by a mutex so concurrent review submissions cannot
// drop each other's update.
type jsonFileRepo struct {
	path string
	mu   sync.Mutex
}

// NewJSONFile creates a repository backed by the given spot data file.
func NewJSONFile(path string) (Repository, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, goerr.Wrap(err, "spot data file is not readable", goerr.V("path", path))
	}
	return &jsonFileRepo{path: path}, nil
}

func (r *jsonFileRepo) load() ([]*model.Spot, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read spot data file", goerr.V("path", r.path))
	}

	var spots []*model.Spot
	if err := json.Unmarshal(data, &spots); err != nil {
		return nil, goerr.Wrap(err, "failed to parse spot data file", goerr.V("path", r.path))
	}

	for _, spot := range spots {
		if err := spot.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid spot record", goerr.V("path", r.path))
		}
	}

	return spots, nil
}

// store writes the full record set to a temporary file and renames it over
// the original, so readers never observe a half-written file.
func (r *jsonFileRepo) store(spots []*model.Spot) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(spots); err != nil {
		return goerr.Wrap(err, "failed to encode spot records")
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".spots-*.json")
	if err != nil {
		return goerr.Wrap(err, "failed to create temporary file")
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return goerr.Wrap(err, "failed to write spot records", goerr.V("path", tmpPath))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return goerr.Wrap(err, "failed to close temporary file", goerr.V("path", tmpPath))
	}

	if err := os.Rename(tmpPath, r.path); err != nil {
		_ = os.Remove(tmpPath)
		return goerr.Wrap(err, "failed to replace spot data file", goerr.V("path", r.path))
	}
	return nil
}

func (r *jsonFileRepo) ListSpots(ctx context.Context) ([]*model.Spot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

func (r *jsonFileRepo) GetSpot(ctx context.Context, id model.SpotID) (*model.Spot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	spots, err := r.load()
	if err != nil {
		return nil, err
	}

	for _, spot := range spots {
		if spot.ID == id {
			return spot, nil
		}
	}
	return nil, goerr.Wrap(ErrSpotNotFound, "no such spot", goerr.V("id", id))
}

func (r *jsonFileRepo) AddReview(ctx context.Context, id model.SpotID, content string) (*model.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	spots, err := r.load()
	if err != nil {
		return nil, err
	}

	var target *model.Spot
	for _, spot := range spots {
		if spot.ID == id {
			target = spot
			break
		}
	}
	if target == nil {
		return nil, goerr.Wrap(ErrSpotNotFound, "no such spot", goerr.V("id", id))
	}

	review := model.NewReview(content, time.Now())
	target.Reviews = append(target.Reviews, review)

	if err := r.store(spots); err != nil {
		return nil, err
	}

	logging.From(ctx).Debug("review appended", "spot", id, "timestamp", review.Timestamp)
	return review, nil
}
