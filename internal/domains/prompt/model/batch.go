package model

import (
	"github.com/google/uuid"
)

// ========================================
// RAW RECORD
// ========================================

// RawRecord is one loosely-typed row exactly as decoded from CSV/JSON.
// Transient; no invariants.
type RawRecord map[string]interface{}

// Canonical raw field keys. The parser folds camelCase aliases into these.
const (
	FieldTitle           = "title"
	FieldPrompt          = "prompt"
	FieldNegativePrompt  = "negative_prompt"
	FieldCategory        = "category"
	FieldTags            = "tags"
	FieldPreviewImageURL = "preview_image_url"
	FieldStatus          = "status"
	FieldAttribution     = "attribution"
	FieldAttributionLink = "attribution_link"
)

// StringField returns the named field as a string, or "" when absent or not
// a string.
func (r RawRecord) StringField(name string) string {
	s, _ := r[name].(string)
	return s
}

// ========================================
// BATCH ROW
// ========================================

// BatchRow is the unit of an upload batch. Its ID is generated locally and
// stays stable for the life of the batch regardless of backend assignment.
//
// Invariant: Normalized != nil exactly when ValidationErrors is empty.
// NewValidRow / NewInvalidRow are the only constructors.
type BatchRow struct {
	ID               string        `json:"id"`
	Raw              RawRecord     `json:"raw"`
	Normalized       *PromptRecord `json:"normalized,omitempty"`
	ValidationErrors []string      `json:"validation_errors,omitempty"`
	ImageRatio       string        `json:"image_ratio"`
	IsDetectingRatio bool          `json:"is_detecting_ratio"`
}

// NewValidRow builds a row that passed validation.
func NewValidRow(raw RawRecord, normalized *PromptRecord) *BatchRow {
	return &BatchRow{
		ID:         uuid.New().String(),
		Raw:        raw,
		Normalized: normalized,
		ImageRatio: DefaultRatio,
	}
}

// NewInvalidRow builds a row rejected by validation.
func NewInvalidRow(raw RawRecord, validationErrors []string) *BatchRow {
	return &BatchRow{
		ID:               uuid.New().String(),
		Raw:              raw,
		ValidationErrors: validationErrors,
		ImageRatio:       DefaultRatio,
	}
}

// IsValid reports whether the row is eligible for publish.
func (r *BatchRow) IsValid() bool {
	return r.Normalized != nil
}

// ImageReference returns the raw image URL the ratio detector should load.
func (r *BatchRow) ImageReference() string {
	return r.Raw.StringField(FieldPreviewImageURL)
}

// ========================================
// UPLOAD BATCH
// ========================================

// UploadBatch is the ordered set of rows being prepared in one ingestion
// session, plus the selection state. Not safe for concurrent use; the batch
// service serializes access.
//
// Invariant: Selected only contains IDs of rows with Normalized != nil.
type UploadBatch struct {
	Rows      []*BatchRow     `json:"rows"`
	Selected  map[string]bool `json:"selected"`
	SelectAll bool            `json:"select_all"`
}

// NewUploadBatch creates an empty batch.
func NewUploadBatch() *UploadBatch {
	return &UploadBatch{
		Selected: make(map[string]bool),
	}
}

// Row returns the row with the given ID, or nil.
func (b *UploadBatch) Row(id string) *BatchRow {
	for _, row := range b.Rows {
		if row.ID == id {
			return row
		}
	}
	return nil
}

// AddRows appends rows preserving source order.
func (b *UploadBatch) AddRows(rows []*BatchRow) {
	b.Rows = append(b.Rows, rows...)
}

// RemoveRow deletes a row and its selection entry. Returns false when the ID
// is unknown.
func (b *UploadBatch) RemoveRow(id string) bool {
	for i, row := range b.Rows {
		if row.ID == id {
			b.Rows = append(b.Rows[:i], b.Rows[i+1:]...)
			delete(b.Selected, id)
			return true
		}
	}
	return false
}

// ReplaceRow swaps the row with the same ID in place. An edited row that is
// no longer valid also loses its selection, keeping the subset invariant.
func (b *UploadBatch) ReplaceRow(updated *BatchRow) bool {
	for i, row := range b.Rows {
		if row.ID == updated.ID {
			b.Rows[i] = updated
			if !updated.IsValid() {
				delete(b.Selected, updated.ID)
			}
			return true
		}
	}
	return false
}

// SetSelected toggles one row. Selecting an invalid or unknown row is a no-op
// returning false.
func (b *UploadBatch) SetSelected(id string, selected bool) bool {
	row := b.Row(id)
	if row == nil {
		return false
	}
	if !selected {
		delete(b.Selected, id)
		return true
	}
	if !row.IsValid() {
		return false
	}
	b.Selected[id] = true
	return true
}

// SetSelectAll selects every valid row (or clears the selection).
func (b *UploadBatch) SetSelectAll(selectAll bool) {
	b.SelectAll = selectAll
	b.Selected = make(map[string]bool)
	if !selectAll {
		return
	}
	for _, row := range b.Rows {
		if row.IsValid() {
			b.Selected[row.ID] = true
		}
	}
}

// ValidRows returns the order-preserving slice of publishable rows.
func (b *UploadBatch) ValidRows() []*BatchRow {
	var rows []*BatchRow
	for _, row := range b.Rows {
		if row.IsValid() {
			rows = append(rows, row)
		}
	}
	return rows
}

// SelectedValidRows returns the order-preserving slice of selected rows.
func (b *UploadBatch) SelectedValidRows() []*BatchRow {
	var rows []*BatchRow
	for _, row := range b.Rows {
		if row.IsValid() && b.Selected[row.ID] {
			rows = append(rows, row)
		}
	}
	return rows
}

// Len returns the number of rows.
func (b *UploadBatch) Len() int {
	return len(b.Rows)
}
