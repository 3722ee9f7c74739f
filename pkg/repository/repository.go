package repository

import (
	"context"

	"github.com/ikikae/inaka/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

// ErrSpotNotFound indicates the requested spot ID has no matching record.
var ErrSpotNotFound = goerr.New("spot not found")

// Repository defines the interface for tourist spot persistence.
type Repository interface {
	// ListSpots returns all spot records in file order
	ListSpots(ctx context.Context) ([]*model.Spot, error)

	// GetSpot retrieves a spot by ID
	GetSpot(ctx context.Context, id model.SpotID) (*model.Spot, error)

	// AddReview appends a timestamped review to the spot's review list and
	// writes the record set back. Returns ErrSpotNotFound without modifying
	// anything when the ID is unknown.
	AddReview(ctx context.Context, id model.SpotID, content string) (*model.Review, error)
}
