package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRow(title string) *BatchRow {
	raw := RawRecord{FieldTitle: title}
	return NewValidRow(raw, &PromptRecord{Title: title, Status: StatusDraft})
}

func invalidRow(title string) *BatchRow {
	return NewInvalidRow(RawRecord{FieldTitle: title}, []string{"prompt is required"})
}

func TestBatchRowConstructors(t *testing.T) {
	t.Run("valid row has normalized payload and no errors", func(t *testing.T) {
		row := validRow("Sunset")
		assert.True(t, row.IsValid())
		assert.NotEmpty(t, row.ID)
		assert.Empty(t, row.ValidationErrors)
		assert.Equal(t, DefaultRatio, row.ImageRatio)
	})

	t.Run("invalid row has errors and no payload", func(t *testing.T) {
		row := invalidRow("Broken")
		assert.False(t, row.IsValid())
		assert.Nil(t, row.Normalized)
		assert.NotEmpty(t, row.ValidationErrors)
	})
}

func TestUploadBatchSelection(t *testing.T) {
	t.Run("cannot select invalid row", func(t *testing.T) {
		b := NewUploadBatch()
		bad := invalidRow("Broken")
		b.AddRows([]*BatchRow{bad})

		assert.False(t, b.SetSelected(bad.ID, true))
		assert.Empty(t, b.Selected)
	})

	t.Run("cannot select unknown row", func(t *testing.T) {
		b := NewUploadBatch()
		assert.False(t, b.SetSelected("nope", true))
	})

	t.Run("select all skips invalid rows", func(t *testing.T) {
		b := NewUploadBatch()
		good, bad := validRow("Good"), invalidRow("Bad")
		b.AddRows([]*BatchRow{good, bad})

		b.SetSelectAll(true)
		assert.True(t, b.Selected[good.ID])
		assert.False(t, b.Selected[bad.ID])
		assert.Len(t, b.Selected, 1)

		b.SetSelectAll(false)
		assert.Empty(t, b.Selected)
	})

	t.Run("removing row drops its selection", func(t *testing.T) {
		b := NewUploadBatch()
		row := validRow("Gone")
		b.AddRows([]*BatchRow{row})
		require.True(t, b.SetSelected(row.ID, true))

		assert.True(t, b.RemoveRow(row.ID))
		assert.Empty(t, b.Selected)
		assert.Zero(t, b.Len())
	})

	t.Run("edit that invalidates a row drops its selection", func(t *testing.T) {
		b := NewUploadBatch()
		row := validRow("Editable")
		b.AddRows([]*BatchRow{row})
		require.True(t, b.SetSelected(row.ID, true))

		broken := invalidRow("Editable")
		broken.ID = row.ID
		require.True(t, b.ReplaceRow(broken))

		assert.False(t, b.Selected[row.ID])
		assert.False(t, b.Row(row.ID).IsValid())
	})
}

func TestUploadBatchRowAccess(t *testing.T) {
	b := NewUploadBatch()
	first, second, bad := validRow("First"), validRow("Second"), invalidRow("Bad")
	b.AddRows([]*BatchRow{first, bad, second})

	t.Run("valid rows preserve order", func(t *testing.T) {
		rows := b.ValidRows()
		require.Len(t, rows, 2)
		assert.Equal(t, "First", rows[0].Normalized.Title)
		assert.Equal(t, "Second", rows[1].Normalized.Title)
	})

	t.Run("selected valid rows follow batch order", func(t *testing.T) {
		require.True(t, b.SetSelected(second.ID, true))
		require.True(t, b.SetSelected(first.ID, true))

		rows := b.SelectedValidRows()
		require.Len(t, rows, 2)
		assert.Equal(t, "First", rows[0].Normalized.Title)
	})

	t.Run("unknown id yields nil", func(t *testing.T) {
		assert.Nil(t, b.Row("missing"))
	})
}
