package repository

import (
	"context"

	"promptstore-backend/internal/domains/category/model"
)

// CategoryRepository is the backend registry store.
type CategoryRepository interface {
	// List returns all categories with their current prompt counts.
	List(ctx context.Context) ([]model.Category, error)

	// EnsureExists creates the category unless one with the same slug already
	// exists. Returns true when a new row was created.
	EnsureExists(ctx context.Context, name string) (bool, error)
}
