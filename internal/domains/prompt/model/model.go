package model

import (
	"time"
)

// ========================================
// STATUS
// ========================================

// Prompt lifecycle statuses. Input accepts the legacy capitalized spellings
// from older export files; the normalizer folds them to the canonical form.
const (
	StatusPublished = "published"
	StatusPending   = "pending"
	StatusDraft     = "draft"
)

var canonicalStatuses = map[string]string{
	"published": StatusPublished,
	"pending":   StatusPending,
	"draft":     StatusDraft,
	"Published": StatusPublished,
	"Pending":   StatusPending,
	"Draft":     StatusDraft,
}

// IsValidStatus reports whether s is an accepted status spelling.
func IsValidStatus(s string) bool {
	_, ok := canonicalStatuses[s]
	return ok
}

// CanonicalStatus maps an accepted spelling to its canonical form.
// Unknown input maps to StatusDraft.
func CanonicalStatus(s string) string {
	if canonical, ok := canonicalStatuses[s]; ok {
		return canonical
	}
	return StatusDraft
}

// ========================================
// IMAGE RATIO BUCKETS
// ========================================

// DefaultRatio is assigned when detection fails or no image reference exists.
const DefaultRatio = "1:1"

// RatioBuckets is the fixed enumeration of discrete aspect-ratio buckets.
// Order matters: nearest-bucket ties resolve to the earlier entry.
var RatioBuckets = []struct {
	Name  string
	Value float64
}{
	{"1:1", 1.0},
	{"2:3", 2.0 / 3.0},
	{"3:2", 3.0 / 2.0},
	{"3:4", 3.0 / 4.0},
	{"4:3", 4.0 / 3.0},
	{"9:16", 9.0 / 16.0},
	{"16:9", 16.0 / 9.0},
}

// NearestRatioBucket maps an intrinsic width/height pair to a bucket by
// minimizing the absolute difference against each canonical ratio.
func NearestRatioBucket(width, height int) string {
	if width <= 0 || height <= 0 {
		return DefaultRatio
	}
	actual := float64(width) / float64(height)

	best := RatioBuckets[0].Name
	bestDiff := diff(actual, RatioBuckets[0].Value)
	for _, b := range RatioBuckets[1:] {
		if d := diff(actual, b.Value); d < bestDiff {
			best = b.Name
			bestDiff = d
		}
	}
	return best
}

func diff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

// ========================================
// PROMPT RECORD (canonical/normalized)
// ========================================

// PromptRecord is the publish-ready payload for one content item. Every free
// text field has passed the sanitizer by the time a record exists; records are
// immutable for a given row state (edits build a replacement).
type PromptRecord struct {
	ID              string    `json:"id,omitempty" db:"id"`
	Title           string    `json:"title" db:"title"`
	Prompt          string    `json:"prompt" db:"prompt"`
	NegativePrompt  string    `json:"negative_prompt,omitempty" db:"negative_prompt"`
	Category        string    `json:"category" db:"category"`
	Tags            []string  `json:"tags,omitempty" db:"tags"`
	PreviewImageURL string    `json:"preview_image_url,omitempty" db:"preview_image_url"`
	Attribution     string    `json:"attribution,omitempty" db:"attribution"`
	AttributionLink string    `json:"attribution_link,omitempty" db:"attribution_link"`
	ImageRatio      string    `json:"image_ratio,omitempty" db:"image_ratio"`
	Status          string    `json:"status" db:"status"`
	Views           int       `json:"views" db:"views"`
	CreatedAt       time.Time `json:"created_at,omitempty" db:"created_at"`
}
