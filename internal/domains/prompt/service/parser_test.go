package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptstore-backend/internal/domains/prompt/model"
)

const (
	testMaxBytes = 1 << 20
	testMaxRows  = 100
)

func TestParseRecordsCSV(t *testing.T) {
	t.Run("parses rows with quoting and tag splitting", func(t *testing.T) {
		data := []byte(`title,prompt,category,tags,previewImageUrl
"Sunset, at sea",paint a sunset,Art,sea;sunset;art,https://img.example.com/1.png
Mountain,"a ""big"" mountain",Landscape,,
`)
		records, err := ParseRecords(data, FormatCSV, testMaxBytes, testMaxRows)
		require.NoError(t, err)
		require.Len(t, records, 2)

		assert.Equal(t, "Sunset, at sea", records[0].StringField(model.FieldTitle))
		assert.Equal(t, []interface{}{"sea", "sunset", "art"}, records[0][model.FieldTags])
		// camelCase header folded to canonical key
		assert.Equal(t, "https://img.example.com/1.png", records[0].StringField(model.FieldPreviewImageURL))

		assert.Equal(t, `a "big" mountain`, records[1].StringField(model.FieldPrompt))
		// empty cells are omitted, not stored as ""
		_, hasTags := records[1][model.FieldTags]
		assert.False(t, hasTags)
	})

	t.Run("bare quotes in an unquoted field fail the whole file", func(t *testing.T) {
		data := []byte("title,prompt,category\nMountain,a \"big\" mountain,Landscape\n")
		_, err := ParseRecords(data, FormatCSV, testMaxBytes, testMaxRows)
		assert.Error(t, err)
	})

	t.Run("skips blank lines", func(t *testing.T) {
		data := []byte("title,prompt,category\n\nA,b,c\n\n\nD,e,f\n")
		records, err := ParseRecords(data, FormatCSV, testMaxBytes, testMaxRows)
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("header only is an empty file", func(t *testing.T) {
		_, err := ParseRecords([]byte("title,prompt\n"), FormatCSV, testMaxBytes, testMaxRows)
		assert.ErrorIs(t, err, model.ErrEmptyFile)
	})
}

func TestParseRecordsJSON(t *testing.T) {
	t.Run("parses array of objects with alias folding", func(t *testing.T) {
		data := []byte(`[
			{"title": "Cat", "prompt": "a cat", "category": "Art",
			 "negativePrompt": "blurry", "tags": ["cute", "cats"],
			 "image_url": "https://img.example.com/cat.png"}
		]`)
		records, err := ParseRecords(data, FormatJSON, testMaxBytes, testMaxRows)
		require.NoError(t, err)
		require.Len(t, records, 1)

		assert.Equal(t, "blurry", records[0].StringField(model.FieldNegativePrompt))
		assert.Equal(t, "https://img.example.com/cat.png", records[0].StringField(model.FieldPreviewImageURL))
		assert.Equal(t, []interface{}{"cute", "cats"}, records[0][model.FieldTags])
	})

	t.Run("rejects non-array payload", func(t *testing.T) {
		_, err := ParseRecords([]byte(`{"title": "Cat"}`), FormatJSON, testMaxBytes, testMaxRows)
		assert.Error(t, err)
	})

	t.Run("empty array is an empty file", func(t *testing.T) {
		_, err := ParseRecords([]byte(`[]`), FormatJSON, testMaxBytes, testMaxRows)
		assert.ErrorIs(t, err, model.ErrEmptyFile)
	})
}

func TestParseRecordsLimits(t *testing.T) {
	t.Run("unknown format", func(t *testing.T) {
		_, err := ParseRecords([]byte("x"), "xml", testMaxBytes, testMaxRows)
		assert.ErrorIs(t, err, model.ErrUnsupportedFormat)
	})

	t.Run("file too large", func(t *testing.T) {
		_, err := ParseRecords(make([]byte, 11), FormatCSV, 10, testMaxRows)
		assert.ErrorIs(t, err, model.ErrFileTooLarge)
	})

	t.Run("too many rows", func(t *testing.T) {
		data := []byte("title,prompt,category\nA,b,c\nD,e,f\n")
		_, err := ParseRecords(data, FormatCSV, testMaxBytes, 1)
		assert.ErrorIs(t, err, model.ErrTooManyRows)
	})
}
