package service

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"promptstore-backend/internal/domains/prompt/model"
	"promptstore-backend/internal/shared/utils"
)

// ValidateRecord checks one raw record and returns every violation as a
// human-readable message. Pure and total: it accumulates instead of stopping
// at the first error and never panics on malformed input.
func ValidateRecord(raw model.RawRecord) []string {
	var errs []string

	if !hasNonEmptyString(raw, model.FieldTitle) {
		errs = append(errs, "title is required")
	}
	if !hasNonEmptyString(raw, model.FieldPrompt) {
		errs = append(errs, "prompt is required")
	}
	// Unknown categories are legal; missing category metadata is created on
	// publish, so only presence is checked here.
	if !hasNonEmptyString(raw, model.FieldCategory) {
		errs = append(errs, "category is required")
	}

	if msg := validateOptionalURL(raw, model.FieldPreviewImageURL, "preview image url"); msg != "" {
		errs = append(errs, msg)
	}
	if msg := validateOptionalURL(raw, model.FieldAttributionLink, "attribution link"); msg != "" {
		errs = append(errs, msg)
	}

	if value, ok := raw[model.FieldTags]; ok {
		if !isArray(value) {
			errs = append(errs, "tags must be a list")
		}
	}

	if value, ok := raw[model.FieldStatus]; ok {
		s, isString := value.(string)
		if !isString || !model.IsValidStatus(s) {
			errs = append(errs, "status must be one of published, pending or draft")
		}
	}

	return errs
}

// hasNonEmptyString checks the field against the same trim-and-sanitize the
// normalizer applies. A value that is markup only, like "<script>x</script>",
// sanitizes to "" and must fail here, not after normalization: validating a
// normalized record yields the same result as validating its source.
func hasNonEmptyString(raw model.RawRecord, field string) bool {
	return utils.SanitizeText(raw[field]) != ""
}

func validateOptionalURL(raw model.RawRecord, field, label string) string {
	value, ok := raw[field]
	if !ok {
		return ""
	}
	s, isString := value.(string)
	if !isString || strings.TrimSpace(s) == "" {
		return fmt.Sprintf("%s must be a valid url", label)
	}
	if err := validation.Validate(strings.TrimSpace(s), is.URL); err != nil {
		return fmt.Sprintf("%s must be a valid url", label)
	}
	return ""
}

func isArray(value interface{}) bool {
	switch value.(type) {
	case []interface{}, []string:
		return true
	default:
		return false
	}
}
