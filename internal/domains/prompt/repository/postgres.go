package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"promptstore-backend/internal/domains/prompt/model"
)

// postgresRepository - Raw SQL with pgxpool
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository - Constructor
func NewPostgresRepository(pool *pgxpool.Pool) PromptRepository {
	return &postgresRepository{pool: pool}
}

// CreateOne inserts a single prompt record. Each call is an independent
// statement so one rejected record cannot roll back its siblings.
func (r *postgresRepository) CreateOne(ctx context.Context, record *model.PromptRecord) (*model.PromptRecord, error) {
	created := *record
	created.ID = uuid.New().String()
	created.CreatedAt = time.Now().UTC()

	const query = `
		INSERT INTO prompts (
			id, title, prompt, negative_prompt, category, tags,
			preview_image_url, attribution, attribution_link,
			image_ratio, status, views, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.pool.Exec(ctx, query,
		created.ID,
		created.Title,
		created.Prompt,
		nullable(created.NegativePrompt),
		created.Category,
		created.Tags,
		nullable(created.PreviewImageURL),
		nullable(created.Attribution),
		nullable(created.AttributionLink),
		nullable(created.ImageRatio),
		created.Status,
		created.Views,
		created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert prompt: %w", err)
	}

	return &created, nil
}

// ListByStatus returns prompts in one status, newest first.
func (r *postgresRepository) ListByStatus(ctx context.Context, status string, limit int) ([]model.PromptRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	const query = `
		SELECT id, title, prompt,
		       COALESCE(negative_prompt, ''), category, tags,
		       COALESCE(preview_image_url, ''), COALESCE(attribution, ''),
		       COALESCE(attribution_link, ''), COALESCE(image_ratio, ''),
		       status, views, created_at
		FROM prompts
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, status, limit)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	defer rows.Close()

	records := make([]model.PromptRecord, 0, limit)
	for rows.Next() {
		var rec model.PromptRecord
		if err := rows.Scan(
			&rec.ID, &rec.Title, &rec.Prompt,
			&rec.NegativePrompt, &rec.Category, &rec.Tags,
			&rec.PreviewImageURL, &rec.Attribution,
			&rec.AttributionLink, &rec.ImageRatio,
			&rec.Status, &rec.Views, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan prompt: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}

	return records, nil
}

// CategoriesInUse returns the distinct categories across all prompts.
func (r *postgresRepository) CategoriesInUse(ctx context.Context) ([]string, error) {
	const query = `SELECT DISTINCT category FROM prompts ORDER BY category`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories in use: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories in use: %w", err)
	}

	return categories, nil
}

// nullable maps "" to NULL so optional text columns stay NULL-able.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
