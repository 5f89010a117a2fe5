package store

import (
	"context"

	"github.com/joescharf/cra/internal/models"
)

// Store defines the persistence interface for review aggregates. A review
// and its files, issues, and summary are written as one unit: CreateReview
// either commits the whole aggregate or none of it.
type Store interface {
	CreateReview(ctx context.Context, r *models.Review) error
	GetReview(ctx context.Context, id string) (*models.Review, error)
	ListReviews(ctx context.Context) ([]*models.Review, error)
	DeleteReview(ctx context.Context, id string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
