package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"promptstore-backend/internal/domains/category/service"
	"promptstore-backend/internal/shared/response"
)

type CategoryHandler struct {
	registry *service.Registry
}

// NewCategoryHandler - Constructor
func NewCategoryHandler(registry *service.Registry) *CategoryHandler {
	return &CategoryHandler{registry: registry}
}

// List trả về toàn bộ category registry (cached)
// GET /api/v1/categories
func (h *CategoryHandler) List(c *gin.Context) {
	categories := h.registry.List(c.Request.Context())
	response.Success(c, http.StatusOK, categories)
}
