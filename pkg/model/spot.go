package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

type SpotID string

// ReviewTimeFormat is the timestamp layout stored in the spot data file.
const ReviewTimeFormat = "2006-01-02 15:04:05"

// Spot is one tourist destination record. Field tags follow the layout of
// tourist_spots.json. ID and Name are required; everything else is optional
// and may be absent in older data files.
type Spot struct {
	ID               SpotID    `json:"id"`
	Name             string    `json:"name"`
	Category         string    `json:"category,omitempty"`
	ShortDescription string    `json:"shortDescription,omitempty"`
	Highlights       []string  `json:"highlights,omitempty"`
	Coordinates      []float64 `json:"coordinates,omitempty"`
	ImageURL         string    `json:"imageUrl,omitempty"`
	Distance         string    `json:"distance,omitempty"`
	Duration         string    `json:"duration,omitempty"`
	BestTime         string    `json:"bestTime,omitempty"`
	Reviews          []*Review `json:"user_reviews,omitempty"`
}

// Validate checks the invariants required of a stored spot record.
func (s *Spot) Validate() error {
	if s.ID == "" {
		return goerr.New("spot id is empty")
	}
	if s.Name == "" {
		return goerr.New("spot name is empty", goerr.V("id", s.ID))
	}
	return nil
}

// Review is an append-only child of a Spot. Reviews are never edited or
// deleted once written.
type Review struct {
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// NewReview creates a review stamped with the given creation time.
func NewReview(content string, now time.Time) *Review {
	return &Review{
		Content:   content,
		Timestamp: now.Format(ReviewTimeFormat),
	}
}
