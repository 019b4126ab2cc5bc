package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"promptstore-backend/internal/domains/category/model"
	"promptstore-backend/internal/domains/category/repository"
	"promptstore-backend/pkg/cache"
)

const (
	listCacheKey       = "categories:list"
	cachePatternAll    = "categories:*"
	defaultRegistryTTL = 5 * time.Minute
)

// Registry is the read-through category cache. Reads hit redis first, then
// the backend; backend failures degrade to a stable built-in list so callers
// always get something to render.
type Registry struct {
	repo  repository.CategoryRepository
	cache cache.Cache
	ttl   time.Duration
}

// NewRegistry - Constructor
func NewRegistry(repo repository.CategoryRepository, c cache.Cache, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = defaultRegistryTTL
	}
	return &Registry{repo: repo, cache: c, ttl: ttl}
}

// List returns the category registry, cached for the configured TTL.
func (r *Registry) List(ctx context.Context) []model.Category {
	var cached []model.Category
	found, err := r.cache.Get(ctx, listCacheKey, &cached)
	if err != nil {
		log.Debug().Err(err).Msg("category cache read failed")
	} else if found {
		return cached
	}

	categories, err := r.repo.List(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("category registry unavailable, serving defaults")
		return append([]model.Category(nil), model.DefaultCategories...)
	}
	if categories == nil {
		categories = []model.Category{}
	}

	if err := r.cache.Set(ctx, listCacheKey, categories, r.ttl); err != nil {
		log.Debug().Err(err).Msg("category cache write failed")
	}
	return categories
}

// Names returns just the category names, for existence checks during publish.
func (r *Registry) Names(ctx context.Context) map[string]bool {
	categories := r.List(ctx)
	names := make(map[string]bool, len(categories))
	for _, c := range categories {
		names[c.Name] = true
	}
	return names
}

// EnsureExists creates the named category in the backend when missing.
func (r *Registry) EnsureExists(ctx context.Context, name string) (bool, error) {
	return r.repo.EnsureExists(ctx, name)
}

// Invalidate drops every cached registry view. The next List repopulates from
// the backend, picking up categories created during a publish.
func (r *Registry) Invalidate(ctx context.Context) {
	if err := r.cache.DeletePattern(ctx, cachePatternAll); err != nil {
		log.Warn().Err(err).Msg("category cache invalidation failed")
	}
}
