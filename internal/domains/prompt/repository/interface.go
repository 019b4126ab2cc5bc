package repository

import (
	"context"

	"promptstore-backend/internal/domains/prompt/model"
)

// PromptRepository is the backend record store. Creates are per-record by
// design: the publisher needs independent failure, not a multi-record
// transaction.
type PromptRepository interface {
	// CreateOne persists a single record and returns it with its assigned ID
	// and creation time.
	CreateOne(ctx context.Context, record *model.PromptRecord) (*model.PromptRecord, error)

	// ListByStatus returns records in the given status, newest first.
	ListByStatus(ctx context.Context, status string, limit int) ([]model.PromptRecord, error)

	// CategoriesInUse returns the distinct categories of stored prompts.
	CategoriesInUse(ctx context.Context) ([]string, error)
}

// DraftRepository persists the editable scratch copy of an upload batch,
// keyed by session, enabling crash recovery.
type DraftRepository interface {
	Save(ctx context.Context, session string, batch *model.UploadBatch) error

	// Load returns the stored snapshot, or nil when none exists.
	Load(ctx context.Context, session string) (*model.UploadBatch, error)

	DeleteRow(ctx context.Context, session, rowID string) error

	Clear(ctx context.Context, session string) error
}

// ChangeStream is the live mutation feed for the prompt collection. The
// publisher emits events; the moderation reconciler is the consumer.
type ChangeStream interface {
	Publish(ctx context.Context, event model.ChangeEvent) error

	// Subscribe returns a receive channel and a stop function. The channel
	// closes after stop is called.
	Subscribe(ctx context.Context) (<-chan model.ChangeEvent, func(), error)
}
