package repository

import (
	"context"
	"fmt"
	"time"

	"promptstore-backend/internal/domains/prompt/model"
	"promptstore-backend/pkg/cache"
)

const draftKeyPrefix = "draft:batch:"

// redisDraftRepository stores the whole batch as one JSON snapshot per
// session key. The batch is a scratch copy: full rewrites are cheap and keep
// save/load symmetric.
type redisDraftRepository struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewRedisDraftRepository - Constructor. ttl bounds how long an abandoned
// draft survives.
func NewRedisDraftRepository(c cache.Cache, ttl time.Duration) DraftRepository {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &redisDraftRepository{cache: c, ttl: ttl}
}

func draftKey(session string) string {
	return draftKeyPrefix + session
}

func (r *redisDraftRepository) Save(ctx context.Context, session string, batch *model.UploadBatch) error {
	if session == "" {
		return model.ErrSessionRequired
	}
	if err := r.cache.Set(ctx, draftKey(session), batch, r.ttl); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

func (r *redisDraftRepository) Load(ctx context.Context, session string) (*model.UploadBatch, error) {
	if session == "" {
		return nil, model.ErrSessionRequired
	}

	var batch model.UploadBatch
	found, err := r.cache.Get(ctx, draftKey(session), &batch)
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	if !found {
		return nil, nil
	}
	if batch.Selected == nil {
		batch.Selected = make(map[string]bool)
	}
	return &batch, nil
}

// DeleteRow rewrites the snapshot without the given row. A missing snapshot
// or unknown row is a no-op: the draft already reflects the desired state.
func (r *redisDraftRepository) DeleteRow(ctx context.Context, session, rowID string) error {
	batch, err := r.Load(ctx, session)
	if err != nil {
		return err
	}
	if batch == nil || !batch.RemoveRow(rowID) {
		return nil
	}
	return r.Save(ctx, session, batch)
}

func (r *redisDraftRepository) Clear(ctx context.Context, session string) error {
	if session == "" {
		return model.ErrSessionRequired
	}
	if err := r.cache.Delete(ctx, draftKey(session)); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}
