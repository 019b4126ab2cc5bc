package handler

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"promptstore-backend/internal/domains/prompt/model"
	"promptstore-backend/internal/domains/prompt/repository"
	"promptstore-backend/internal/domains/prompt/service"
	"promptstore-backend/internal/shared/response"
)

// sessionHeader identifies the ingestion session. Every batch endpoint
// requires it; the draft snapshot is keyed by it.
const sessionHeader = "X-Session-ID"

type BatchHandler struct {
	batch   *service.BatchService
	publish *service.PublishService
	prompts repository.PromptRepository
}

// NewBatchHandler - Constructor
func NewBatchHandler(batch *service.BatchService, publish *service.PublishService, prompts repository.PromptRepository) *BatchHandler {
	return &BatchHandler{batch: batch, publish: publish, prompts: prompts}
}

func sessionID(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(sessionHeader))
}

// Upload nhận file CSV/JSON và append rows vào batch
// POST /api/v1/prompts/batch/upload
func (h *BatchHandler) Upload(c *gin.Context) {
	session := sessionID(c)
	if session == "" {
		response.BadRequest(c, "X-Session-ID header is required")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}

	format := strings.TrimSpace(c.PostForm("format"))
	if format == "" {
		// Fall back to the file extension when the client omits the format.
		format = strings.TrimPrefix(filepath.Ext(fileHeader.Filename), ".")
	}
	targetStatus := c.DefaultPostForm("target_status", model.StatusDraft)
	if !model.IsValidStatus(targetStatus) {
		response.UnprocessableEntity(c, "target_status must be published, pending or draft")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "cannot open uploaded file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(c, "cannot read uploaded file")
		return
	}

	dto, err := h.batch.IngestFile(c.Request.Context(), session, data, format, targetStatus)
	if err != nil {
		// Malformed CSV/JSON surfaces as a decode error rather than a
		// sentinel; it is still the client's file, not our failure.
		if !isPipelineError(err) {
			response.UnprocessableEntity(c, err.Error())
			return
		}
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, dto)
}

// GetBatch trả về batch hiện tại của session
// GET /api/v1/prompts/batch
func (h *BatchHandler) GetBatch(c *gin.Context) {
	dto, err := h.batch.Snapshot(c.Request.Context(), sessionID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, dto)
}

// EditRow thay thế raw fields của một row
// PUT /api/v1/prompts/batch/rows/:id
func (h *BatchHandler) EditRow(c *gin.Context) {
	var req model.EditRowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}

	dto, err := h.batch.EditRow(c.Request.Context(), sessionID(c), c.Param("id"), req.Fields)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, dto)
}

// DeleteRow xoá một row khỏi batch
// DELETE /api/v1/prompts/batch/rows/:id
func (h *BatchHandler) DeleteRow(c *gin.Context) {
	dto, err := h.batch.DeleteRow(c.Request.Context(), sessionID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, dto)
}

// SetSelection toggles row selection hoặc select-all
// POST /api/v1/prompts/batch/selection
func (h *BatchHandler) SetSelection(c *gin.Context) {
	var req model.SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}

	dto, err := h.batch.SetSelection(c.Request.Context(), sessionID(c), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, dto)
}

// ClearBatch huỷ toàn bộ batch và draft snapshot
// DELETE /api/v1/prompts/batch
func (h *BatchHandler) ClearBatch(c *gin.Context) {
	if err := h.batch.ClearBatch(c.Request.Context(), sessionID(c)); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cleared": true})
}

// Publish đẩy các publishable rows lên backend
// POST /api/v1/prompts/batch/publish
func (h *BatchHandler) Publish(c *gin.Context) {
	var req model.PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}

	summary, dto, err := h.publish.Publish(c.Request.Context(), sessionID(c), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"summary": summary,
		"batch":   dto,
	})
}

// List trả về published prompts
// GET /api/v1/prompts?status=published&limit=50
func (h *BatchHandler) List(c *gin.Context) {
	status := model.CanonicalStatus(c.DefaultQuery("status", model.StatusPublished))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	records, err := h.prompts.ListByStatus(c.Request.Context(), status, limit)
	if err != nil {
		response.InternalServerError(c, "Failed to list prompts")
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, records, &response.Meta{
		Limit: limit,
		Total: len(records),
	})
}

func isPipelineError(err error) bool {
	for _, sentinel := range []error{
		model.ErrSessionRequired, model.ErrRowNotFound, model.ErrFileTooLarge,
		model.ErrUnsupportedFormat, model.ErrEmptyFile, model.ErrTooManyRows,
		model.ErrNothingToDo,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// writeError maps pipeline errors onto HTTP statuses.
func (h *BatchHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrSessionRequired):
		response.BadRequest(c, "X-Session-ID header is required")
	case errors.Is(err, model.ErrRowNotFound):
		response.NotFound(c, "Row not found in batch")
	case errors.Is(err, model.ErrFileTooLarge):
		response.ErrorResponse(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "Uploaded file exceeds the size limit")
	case errors.Is(err, model.ErrUnsupportedFormat):
		response.UnprocessableEntity(c, "Format must be csv or json")
	case errors.Is(err, model.ErrEmptyFile):
		response.UnprocessableEntity(c, "File contains no records")
	case errors.Is(err, model.ErrTooManyRows):
		response.UnprocessableEntity(c, "Batch row limit exceeded")
	case errors.Is(err, model.ErrNothingToDo):
		response.UnprocessableEntity(c, "No publishable rows in batch")
	default:
		response.InternalServerError(c, "Internal server error")
	}
}
