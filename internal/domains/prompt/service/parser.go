package service

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"promptstore-backend/internal/domains/prompt/model"
)

// Accepted declared formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// camelCase aliases from JSON exports, folded to the canonical snake_case keys.
var fieldAliases = map[string]string{
	"negativePrompt":  model.FieldNegativePrompt,
	"previewImageUrl": model.FieldPreviewImageURL,
	"attributionLink": model.FieldAttributionLink,
	"image_url":       model.FieldPreviewImageURL,
}

// ParseRecords decodes raw file bytes into an ordered list of RawRecords.
// Any failure here is a whole-file error: no rows are produced.
func ParseRecords(data []byte, format string, maxBytes int64, maxRows int) ([]model.RawRecord, error) {
	if int64(len(data)) > maxBytes {
		return nil, model.ErrFileTooLarge
	}

	var records []model.RawRecord
	var err error

	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatCSV:
		records, err = parseCSV(data)
	case FormatJSON:
		records, err = parseJSON(data)
	default:
		return nil, model.ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, model.ErrEmptyFile
	}
	if len(records) > maxRows {
		return nil, model.ErrTooManyRows
	}

	return records, nil
}

// parseJSON requires a top-level array of objects; any other shape fails the
// whole file rather than producing a partial parse.
func parseJSON(data []byte) ([]model.RawRecord, error) {
	var items []map[string]interface{}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("json input must be an array of objects: %w", err)
	}

	records := make([]model.RawRecord, 0, len(items))
	for _, item := range items {
		record := make(model.RawRecord, len(item))
		for key, value := range item {
			record[canonicalFieldName(key)] = value
		}
		records = append(records, record)
	}
	return records, nil
}

// parseCSV reads a header row plus one record per non-blank line. Quoting
// follows RFC 4180 ("" unescapes to "); the tags column is split on ';'.
func parseCSV(data []byte) ([]model.RawRecord, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true

	header, err := readHeader(reader)
	if err != nil {
		return nil, err
	}

	var records []model.RawRecord
	for {
		cells, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		if isBlankLine(cells) {
			continue
		}

		record := make(model.RawRecord, len(header))
		for i, name := range header {
			if i >= len(cells) {
				break
			}
			value := strings.TrimSpace(cells[i])
			if value == "" {
				continue
			}
			if name == model.FieldTags {
				record[name] = splitTags(value)
				continue
			}
			record[name] = value
		}
		records = append(records, record)
	}

	return records, nil
}

func readHeader(reader *csv.Reader) ([]string, error) {
	for {
		cells, err := reader.Read()
		if err == io.EOF {
			return nil, model.ErrEmptyFile
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv header: %w", err)
		}
		if isBlankLine(cells) {
			continue
		}

		header := make([]string, len(cells))
		for i, cell := range cells {
			header[i] = canonicalFieldName(strings.TrimSpace(cell))
		}
		return header, nil
	}
}

func canonicalFieldName(name string) string {
	if alias, ok := fieldAliases[name]; ok {
		return alias
	}
	return name
}

// splitTags turns "cute;cats; " into ["cute", "cats"].
func splitTags(value string) []interface{} {
	parts := strings.Split(value, ";")
	tags := make([]interface{}, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			tags = append(tags, part)
		}
	}
	return tags
}

func isBlankLine(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
