package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/fleetadmin/fleet-api/internal/domain"
	"github.com/fleetadmin/fleet-api/internal/sanitize"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type categoryUsecaser interface {
	Create(ctx context.Context, name string) (*domain.Category, error)
	List(ctx context.Context) ([]*domain.Category, error)
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	Update(ctx context.Context, id, name string) (*domain.Category, error)
	Delete(ctx context.Context, id string) error
}

type CategoryHandler struct {
	categories categoryUsecaser
	logger     *slog.Logger
}

func NewCategoryHandler(categories categoryUsecaser, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{categories: categories, logger: logger.With("component", "category_handler")}
}

type categoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toCategoryResponse(c *domain.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
}

type categoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// POST /api/categories
func (h *CategoryHandler) Create(ctx *gin.Context) {
	var req categoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		validationResponse(ctx, err)
		return
	}

	category, err := h.categories.Create(ctx.Request.Context(), sanitize.Text(req.Name))
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateCategoryName) {
			ctx.JSON(http.StatusBadRequest, gin.H{"message": errCategoryExists})
			return
		}
		h.logger.ErrorContext(ctx.Request.Context(), "create category", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": errInternalServer})
		return
	}
	h.logger.InfoContext(ctx.Request.Context(), "category created",
		"category_id", category.ID, "user_id", actorID(ctx))
	ctx.JSON(http.StatusCreated, toCategoryResponse(category))
}

// GET /api/categories
func (h *CategoryHandler) List(ctx *gin.Context) {
	categories, err := h.categories.List(ctx.Request.Context())
	if err != nil {
		h.logger.ErrorContext(ctx.Request.Context(), "list categories", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": errInternalServer})
		return
	}

	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryResponse(c))
	}
	ctx.JSON(http.StatusOK, out)
}

// GET /api/categories/:id
func (h *CategoryHandler) GetByID(ctx *gin.Context) {
	id, ok := categoryID(ctx)
	if !ok {
		return
	}

	category, err := h.categories.GetByID(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"message": errCategoryNotFound})
			return
		}
		h.logger.ErrorContext(ctx.Request.Context(), "get category", "category_id", id, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": errInternalServer})
		return
	}
	ctx.JSON(http.StatusOK, toCategoryResponse(category))
}

// PUT /api/categories/:id
func (h *CategoryHandler) Update(ctx *gin.Context) {
	id, ok := categoryID(ctx)
	if !ok {
		return
	}

	var req categoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		validationResponse(ctx, err)
		return
	}

	category, err := h.categories.Update(ctx.Request.Context(), id, sanitize.Text(req.Name))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCategoryNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"message": errCategoryNotFound})
		case errors.Is(err, domain.ErrDuplicateCategoryName):
			ctx.JSON(http.StatusBadRequest, gin.H{"message": errCategoryExists})
		default:
			h.logger.ErrorContext(ctx.Request.Context(), "update category", "category_id", id, "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"message": errInternalServer})
		}
		return
	}
	h.logger.InfoContext(ctx.Request.Context(), "category updated",
		"category_id", category.ID, "user_id", actorID(ctx))
	ctx.JSON(http.StatusOK, toCategoryResponse(category))
}

// DELETE /api/categories/:id
func (h *CategoryHandler) Delete(ctx *gin.Context) {
	id, ok := categoryID(ctx)
	if !ok {
		return
	}

	if err := h.categories.Delete(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"message": errCategoryNotFound})
			return
		}
		h.logger.ErrorContext(ctx.Request.Context(), "delete category", "category_id", id, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": errInternalServer})
		return
	}
	h.logger.InfoContext(ctx.Request.Context(), "category deleted",
		"category_id", id, "user_id", actorID(ctx))
	ctx.JSON(http.StatusOK, gin.H{"message": msgCategoryDeleted})
}

func categoryID(ctx *gin.Context) (string, bool) {
	id := sanitize.Text(ctx.Param("id"))
	if _, err := uuid.Parse(id); err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"message": errCategoryNotFound})
		return "", false
	}
	return id, true
}
