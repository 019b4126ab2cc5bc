package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"promptstore-backend/internal/domains/moderation/service"
	promptmodel "promptstore-backend/internal/domains/prompt/model"
	"promptstore-backend/internal/shared/response"
)

type ModerationHandler struct {
	reconciler *service.Reconciler
}

// NewModerationHandler - Constructor
func NewModerationHandler(reconciler *service.Reconciler) *ModerationHandler {
	return &ModerationHandler{reconciler: reconciler}
}

// GetQueue trả về moderation queue hiện tại
// GET /api/v1/moderation/queue
func (h *ModerationHandler) GetQueue(c *gin.Context) {
	response.Success(c, http.StatusOK, h.reconciler.Snapshot())
}

// SetSelection toggles selection in the moderation queue
// POST /api/v1/moderation/selection
func (h *ModerationHandler) SetSelection(c *gin.Context) {
	var req promptmodel.SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}

	dto, err := h.reconciler.SetSelection(req)
	if err != nil {
		response.NotFound(c, "Record not found in moderation queue")
		return
	}
	response.Success(c, http.StatusOK, dto)
}
