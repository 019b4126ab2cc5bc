package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptstore-backend/internal/config"
	"promptstore-backend/internal/domains/prompt/model"
	"promptstore-backend/internal/domains/prompt/repository"
	infraCache "promptstore-backend/internal/infrastructure/cache"
)

const testSession = "session-1"

func testIngestConfig() config.IngestConfig {
	return config.IngestConfig{
		MaxFileBytes:     1 << 20,
		MaxRows:          50,
		PublishBatchSize: 5,
		AutosaveDelay:    10 * time.Millisecond,
		DraftTTL:         time.Hour,
		RatioTimeout:     time.Second,
		CategoryCacheTTL: time.Minute,
	}
}

// newBatchEnv builds a batch service on a shared miniredis so a second
// service instance can exercise draft restore.
func newBatchEnv(t *testing.T) (*BatchService, repository.DraftRepository) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	drafts := repository.NewRedisDraftRepository(infraCache.NewRedisCacheFromClient(client), time.Hour)
	return NewBatchService(drafts, NewRatioDetector(time.Second), testIngestConfig()), drafts
}

const sampleCSV = `title,prompt,category,tags
Sunset,paint a sunset,Art,sea;sunset
Mountain,a mountain,Landscape,
,missing title,Art,
`

func ingestSample(t *testing.T, svc *BatchService) model.BatchDTO {
	t.Helper()
	dto, err := svc.IngestFile(context.Background(), testSession, []byte(sampleCSV), FormatCSV, model.StatusDraft)
	require.NoError(t, err)
	return dto
}

func TestBatchServiceIngest(t *testing.T) {
	svc, _ := newBatchEnv(t)
	dto := ingestSample(t, svc)

	assert.Equal(t, 3, dto.TotalRows)
	assert.Equal(t, 2, dto.ValidRows)
	assert.Equal(t, "Sunset", dto.Rows[0].Normalized.Title)
	assert.Equal(t, []string{"sea", "sunset"}, dto.Rows[0].Normalized.Tags)
	assert.Contains(t, dto.Rows[2].ValidationErrors, "title is required")

	t.Run("second upload appends", func(t *testing.T) {
		again := ingestSample(t, svc)
		assert.Equal(t, 6, again.TotalRows)
	})

	t.Run("row ceiling covers the whole batch", func(t *testing.T) {
		svc.cfg.MaxRows = 7
		_, err := svc.IngestFile(context.Background(), testSession, []byte(sampleCSV), FormatCSV, model.StatusDraft)
		assert.ErrorIs(t, err, model.ErrTooManyRows)
	})
}

func TestBatchServiceRequiresSession(t *testing.T) {
	svc, _ := newBatchEnv(t)
	_, err := svc.IngestFile(context.Background(), "", []byte(sampleCSV), FormatCSV, model.StatusDraft)
	assert.ErrorIs(t, err, model.ErrSessionRequired)
}

func TestBatchServiceEditRow(t *testing.T) {
	svc, _ := newBatchEnv(t)
	dto := ingestSample(t, svc)
	invalidID := dto.Rows[2].ID

	t.Run("fixing an invalid row makes it publishable", func(t *testing.T) {
		fixed, err := svc.EditRow(context.Background(), testSession, invalidID, model.RawRecord{
			model.FieldTitle:    "Recovered",
			model.FieldPrompt:   "now valid",
			model.FieldCategory: "Art",
		})
		require.NoError(t, err)
		assert.Equal(t, 3, fixed.ValidRows)

		var edited *model.RowDTO
		for i := range fixed.Rows {
			if fixed.Rows[i].ID == invalidID {
				edited = &fixed.Rows[i]
			}
		}
		require.NotNil(t, edited, "row keeps its ID across edits")
		assert.Empty(t, edited.ValidationErrors)
		assert.Equal(t, "Recovered", edited.Normalized.Title)
	})

	t.Run("breaking a selected row drops its selection", func(t *testing.T) {
		validID := dto.Rows[0].ID
		_, err := svc.SetSelection(context.Background(), testSession, model.SelectionRequest{RowID: validID, Selected: true})
		require.NoError(t, err)

		broken, err := svc.EditRow(context.Background(), testSession, validID, model.RawRecord{
			model.FieldPrompt: "no title anymore",
		})
		require.NoError(t, err)
		assert.NotContains(t, broken.Selected, validID)
	})

	t.Run("unknown row", func(t *testing.T) {
		_, err := svc.EditRow(context.Background(), testSession, "missing", model.RawRecord{model.FieldTitle: "x"})
		assert.ErrorIs(t, err, model.ErrRowNotFound)
	})
}

func TestBatchServiceDetectsRatioOnInvalidRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(pngBytes(t, 1920, 1080))
	}))
	defer srv.Close()

	svc, _ := newBatchEnv(t)
	data := fmt.Sprintf(`[{"prompt": "p", "category": "Art", "preview_image_url": %q}]`, srv.URL)
	dto, err := svc.IngestFile(context.Background(), testSession, []byte(data), FormatJSON, model.StatusDraft)
	require.NoError(t, err)
	require.Contains(t, dto.Rows[0].ValidationErrors, "title is required")
	rowID := dto.Rows[0].ID

	// The missing title does not gate detection; the ratio resolves anyway.
	require.Eventually(t, func() bool {
		snap, err := svc.Snapshot(context.Background(), testSession)
		return err == nil && snap.Rows[0].ImageRatio == "16:9" && !snap.Rows[0].IsDetectingRatio
	}, 2*time.Second, 20*time.Millisecond)

	// Fixing the row without touching the image keeps the resolved ratio.
	fixed, err := svc.EditRow(context.Background(), testSession, rowID, model.RawRecord{
		model.FieldTitle:           "Recovered",
		model.FieldPrompt:          "p",
		model.FieldCategory:        "Art",
		model.FieldPreviewImageURL: srv.URL,
	})
	require.NoError(t, err)
	require.NotNil(t, fixed.Rows[0].Normalized)
	assert.Equal(t, "16:9", fixed.Rows[0].ImageRatio)
	assert.Equal(t, "16:9", fixed.Rows[0].Normalized.ImageRatio)
}

func TestBatchServiceDeleteRow(t *testing.T) {
	svc, _ := newBatchEnv(t)
	dto := ingestSample(t, svc)

	after, err := svc.DeleteRow(context.Background(), testSession, dto.Rows[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 2, after.TotalRows)

	_, err = svc.DeleteRow(context.Background(), testSession, dto.Rows[1].ID)
	assert.ErrorIs(t, err, model.ErrRowNotFound)
}

func TestBatchServiceSelection(t *testing.T) {
	svc, _ := newBatchEnv(t)
	dto := ingestSample(t, svc)

	t.Run("select all picks only valid rows", func(t *testing.T) {
		selectAll := true
		out, err := svc.SetSelection(context.Background(), testSession, model.SelectionRequest{SelectAll: &selectAll})
		require.NoError(t, err)
		assert.Len(t, out.Selected, 2)
		assert.True(t, out.SelectAll)
	})

	t.Run("selecting an invalid row is ignored", func(t *testing.T) {
		out, err := svc.SetSelection(context.Background(), testSession, model.SelectionRequest{RowID: dto.Rows[2].ID, Selected: true})
		require.NoError(t, err)
		assert.NotContains(t, out.Selected, dto.Rows[2].ID)
	})

	t.Run("unknown row errors", func(t *testing.T) {
		_, err := svc.SetSelection(context.Background(), testSession, model.SelectionRequest{RowID: "missing", Selected: true})
		assert.ErrorIs(t, err, model.ErrRowNotFound)
	})
}

func TestBatchServiceDraftRestore(t *testing.T) {
	svc, drafts := newBatchEnv(t)
	dto := ingestSample(t, svc)
	_, err := svc.SetSelection(context.Background(), testSession, model.SelectionRequest{RowID: dto.Rows[0].ID, Selected: true})
	require.NoError(t, err)

	// Let the debounced autosave fire.
	time.Sleep(100 * time.Millisecond)

	// A fresh service (a restart) restores the same batch from the draft.
	restored := NewBatchService(drafts, NewRatioDetector(time.Second), testIngestConfig())
	snap, err := restored.Snapshot(context.Background(), testSession)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.TotalRows)
	assert.Equal(t, 2, snap.ValidRows)
	assert.Contains(t, snap.Selected, dto.Rows[0].ID)
}

func TestBatchServiceClear(t *testing.T) {
	svc, drafts := newBatchEnv(t)
	ingestSample(t, svc)
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, svc.ClearBatch(context.Background(), testSession))

	snap, err := svc.Snapshot(context.Background(), testSession)
	require.NoError(t, err)
	assert.Zero(t, snap.TotalRows)

	stored, err := drafts.Load(context.Background(), testSession)
	require.NoError(t, err)
	assert.Nil(t, stored)
}
