package model

import "time"

// Category is one entry of the marketplace's category registry. PromptCount
// is derived at read time, not stored.
type Category struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description,omitempty" db:"description"`
	PromptCount int       `json:"prompt_count" db:"prompt_count"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// DefaultCategories is the stable fallback served when the backend registry
// is unreachable. Read-only; callers get copies.
var DefaultCategories = []Category{
	{Name: "Art", Slug: "art"},
	{Name: "Photography", Slug: "photography"},
	{Name: "Character", Slug: "character"},
	{Name: "Landscape", Slug: "landscape"},
	{Name: "Architecture", Slug: "architecture"},
	{Name: "Abstract", Slug: "abstract"},
}
