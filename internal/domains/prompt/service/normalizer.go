package service

import (
	"strings"

	"promptstore-backend/internal/domains/prompt/model"
	"promptstore-backend/internal/shared/utils"
)

// NormalizeRecord builds the canonical publish-ready payload from a raw record
// that already passed validation. Every free-text field is trimmed and passed
// through the sanitizer; tags are canonicalized; status falls back to the
// caller-supplied target so the same pipeline serves publish/review/draft.
func NormalizeRecord(raw model.RawRecord, imageRatio, targetStatus string) *model.PromptRecord {
	status := targetStatus
	if s := raw.StringField(model.FieldStatus); s != "" && model.IsValidStatus(s) {
		status = s
	}

	return &model.PromptRecord{
		Title:           utils.SanitizeText(raw[model.FieldTitle]),
		Prompt:          utils.SanitizeText(raw[model.FieldPrompt]),
		NegativePrompt:  utils.SanitizeText(raw[model.FieldNegativePrompt]),
		Category:        utils.SanitizeText(raw[model.FieldCategory]),
		Tags:            normalizeTags(raw[model.FieldTags]),
		PreviewImageURL: strings.TrimSpace(raw.StringField(model.FieldPreviewImageURL)),
		Attribution:     utils.SanitizeText(raw[model.FieldAttribution]),
		AttributionLink: strings.TrimSpace(raw.StringField(model.FieldAttributionLink)),
		ImageRatio:      imageRatio,
		Status:          model.CanonicalStatus(status),
		Views:           0,
	}
}

// normalizeTags lower-cases, trims, sanitizes and de-duplicates
// (case-insensitively) the raw tag list. An empty result stays nil, meaning
// "no tags", which keeps it distinct from a row that was never validated.
func normalizeTags(value interface{}) []string {
	var rawTags []string
	switch v := value.(type) {
	case []string:
		rawTags = v
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				rawTags = append(rawTags, s)
			}
		}
	default:
		return nil
	}

	seen := make(map[string]bool, len(rawTags))
	var tags []string
	for _, tag := range rawTags {
		tag = strings.ToLower(utils.SanitizeString(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}
