package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	promptmodel "promptstore-backend/internal/domains/prompt/model"
)

var baseTime = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func pendingRecord(id string, age time.Duration) promptmodel.PromptRecord {
	return promptmodel.PromptRecord{
		ID:        id,
		Title:     "Title " + id,
		Status:    promptmodel.StatusPending,
		CreatedAt: baseTime.Add(-age),
	}
}

func ids(q *Queue) []string {
	out := make([]string, 0, q.Len())
	for _, item := range q.Items {
		out = append(out, item.ID)
	}
	return out
}

func TestNewQueueOrdersNewestFirst(t *testing.T) {
	q := NewQueue([]promptmodel.PromptRecord{
		pendingRecord("old", 2*time.Hour),
		pendingRecord("new", 0),
		pendingRecord("mid", time.Hour),
	})
	assert.Equal(t, []string{"new", "mid", "old"}, ids(q))
}

func TestApplyInsert(t *testing.T) {
	t.Run("inserts in timestamp order", func(t *testing.T) {
		q := NewQueue([]promptmodel.PromptRecord{
			pendingRecord("a", 2*time.Hour),
			pendingRecord("c", 0),
		})
		q.Apply(promptmodel.ChangeEvent{Kind: promptmodel.EventInsert, Record: pendingRecord("b", time.Hour)})
		assert.Equal(t, []string{"c", "b", "a"}, ids(q))
	})

	t.Run("is idempotent", func(t *testing.T) {
		q := NewQueue(nil)
		event := promptmodel.ChangeEvent{Kind: promptmodel.EventInsert, Record: pendingRecord("a", 0)}
		q.Apply(event)
		q.Apply(event)
		assert.Equal(t, 1, q.Len())
	})

	t.Run("ignores out-of-filter records", func(t *testing.T) {
		q := NewQueue(nil)
		published := pendingRecord("a", 0)
		published.Status = promptmodel.StatusPublished
		q.Apply(promptmodel.ChangeEvent{Kind: promptmodel.EventInsert, Record: published})
		assert.Zero(t, q.Len())
	})
}

func TestApplyUpdate(t *testing.T) {
	t.Run("replaces known record in place", func(t *testing.T) {
		q := NewQueue([]promptmodel.PromptRecord{pendingRecord("a", 0)})
		updated := pendingRecord("a", 0)
		updated.Title = "Edited"
		q.Apply(promptmodel.ChangeEvent{Kind: promptmodel.EventUpdate, Record: updated})
		require.Equal(t, 1, q.Len())
		assert.Equal(t, "Edited", q.Items[0].Title)
	})

	t.Run("unknown in-filter record is inserted", func(t *testing.T) {
		q := NewQueue(nil)
		q.Apply(promptmodel.ChangeEvent{Kind: promptmodel.EventUpdate, Record: pendingRecord("a", 0)})
		assert.Equal(t, 1, q.Len())
	})

	t.Run("update out of filter evicts and drops selection", func(t *testing.T) {
		q := NewQueue([]promptmodel.PromptRecord{pendingRecord("a", 0)})
		require.True(t, q.SetSelected("a", true))

		approved := pendingRecord("a", 0)
		approved.Status = promptmodel.StatusPublished
		q.Apply(promptmodel.ChangeEvent{Kind: promptmodel.EventUpdate, Record: approved})

		assert.Zero(t, q.Len())
		assert.Empty(t, q.Selected)
	})
}

func TestApplyDelete(t *testing.T) {
	q := NewQueue([]promptmodel.PromptRecord{
		pendingRecord("a", 0),
		pendingRecord("b", time.Hour),
	})
	require.True(t, q.SetSelected("a", true))

	q.Apply(promptmodel.ChangeEvent{Kind: promptmodel.EventDelete, Record: pendingRecord("a", 0)})
	assert.Equal(t, []string{"b"}, ids(q))
	assert.Empty(t, q.Selected)

	// Deleting an unknown record is a no-op.
	q.Apply(promptmodel.ChangeEvent{Kind: promptmodel.EventDelete, Record: pendingRecord("zzz", 0)})
	assert.Equal(t, 1, q.Len())
}

func TestQueueSelection(t *testing.T) {
	q := NewQueue([]promptmodel.PromptRecord{
		pendingRecord("a", 0),
		pendingRecord("b", time.Hour),
	})

	t.Run("unknown id rejected", func(t *testing.T) {
		assert.False(t, q.SetSelected("missing", true))
	})

	t.Run("select all and clear", func(t *testing.T) {
		q.SetSelectAll(true)
		assert.Len(t, q.Selected, 2)
		q.SetSelectAll(false)
		assert.Empty(t, q.Selected)
	})
}

func TestEqualTimestampsKeepStableOrder(t *testing.T) {
	q := NewQueue([]promptmodel.PromptRecord{
		pendingRecord("b", time.Hour),
		pendingRecord("a", time.Hour),
	})
	first := ids(q)

	// Replaying an existing record must not reshuffle equal timestamps.
	q.Apply(promptmodel.ChangeEvent{Kind: promptmodel.EventUpdate, Record: pendingRecord("a", time.Hour)})
	assert.Equal(t, first, ids(q))
}
