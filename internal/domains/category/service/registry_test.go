package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptstore-backend/internal/domains/category/model"
	infraCache "promptstore-backend/internal/infrastructure/cache"
	"promptstore-backend/pkg/cache"
)

type stubRepo struct {
	mu        sync.Mutex
	list      []model.Category
	listErr   error
	listCalls int
}

func (s *stubRepo) List(ctx context.Context) ([]model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]model.Category(nil), s.list...), nil
}

func (s *stubRepo) EnsureExists(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.list {
		if c.Name == name {
			return false, nil
		}
	}
	s.list = append(s.list, model.Category{Name: name})
	return true, nil
}

func (s *stubRepo) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

func newTestCache(t *testing.T) cache.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return infraCache.NewRedisCacheFromClient(client)
}

func TestRegistryReadThrough(t *testing.T) {
	repo := &stubRepo{list: []model.Category{{Name: "Art", Slug: "art"}}}
	registry := NewRegistry(repo, newTestCache(t), time.Minute)
	ctx := context.Background()

	first := registry.List(ctx)
	require.Len(t, first, 1)
	assert.Equal(t, "Art", first[0].Name)

	// Second read is served from cache.
	registry.List(ctx)
	assert.Equal(t, 1, repo.calls())
}

func TestRegistryInvalidate(t *testing.T) {
	repo := &stubRepo{list: []model.Category{{Name: "Art"}}}
	registry := NewRegistry(repo, newTestCache(t), time.Minute)
	ctx := context.Background()

	registry.List(ctx)
	_, err := registry.EnsureExists(ctx, "NewCat")
	require.NoError(t, err)

	// Still cached: the new category is not visible yet.
	assert.Len(t, registry.List(ctx), 1)

	registry.Invalidate(ctx)
	refreshed := registry.List(ctx)
	assert.Len(t, refreshed, 2)
}

func TestRegistryFallsBackToDefaults(t *testing.T) {
	repo := &stubRepo{listErr: fmt.Errorf("connection refused")}
	registry := NewRegistry(repo, newTestCache(t), time.Minute)

	categories := registry.List(context.Background())
	require.NotEmpty(t, categories)
	assert.Equal(t, model.DefaultCategories, categories)
}

func TestRegistryNames(t *testing.T) {
	repo := &stubRepo{list: []model.Category{{Name: "Art"}, {Name: "Landscape"}}}
	registry := NewRegistry(repo, newTestCache(t), time.Minute)

	names := registry.Names(context.Background())
	assert.True(t, names["Art"])
	assert.True(t, names["Landscape"])
	assert.False(t, names["Unknown"])
}
