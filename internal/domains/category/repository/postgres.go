package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"promptstore-backend/internal/domains/category/model"
	"promptstore-backend/internal/shared/utils"
)

// postgresRepository - Raw SQL with pgxpool
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository - Constructor
func NewPostgresRepository(pool *pgxpool.Pool) CategoryRepository {
	return &postgresRepository{pool: pool}
}

// List joins the live prompt counts in so the registry never serves stale
// numbers from a counter column.
func (r *postgresRepository) List(ctx context.Context) ([]model.Category, error) {
	const query = `
		SELECT c.id, c.name, c.slug, COALESCE(c.description, ''),
		       COUNT(p.id) AS prompt_count, c.created_at
		FROM categories c
		LEFT JOIN prompts p ON p.category = c.name
		GROUP BY c.id, c.name, c.slug, c.description, c.created_at
		ORDER BY c.name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.PromptCount, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	return categories, nil
}

// EnsureExists inserts the category if its slug is new. ON CONFLICT keeps the
// operation idempotent under concurrent publishes of the same category.
func (r *postgresRepository) EnsureExists(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, fmt.Errorf("ensure category: empty name")
	}

	const query = `
		INSERT INTO categories (id, name, slug, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (slug) DO NOTHING
	`

	tag, err := r.pool.Exec(ctx, query,
		uuid.New().String(),
		name,
		utils.GenerateSlug(name),
		time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("ensure category %q: %w", name, err)
	}
	return tag.RowsAffected() > 0, nil
}
