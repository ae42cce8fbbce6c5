package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/fleetadmin/fleet-api/internal/domain"
	"github.com/fleetadmin/fleet-api/internal/sanitize"
	"github.com/fleetadmin/fleet-api/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type carUsecaser interface {
	Create(ctx context.Context, input usecase.CreateCarInput) (*domain.Car, error)
	List(ctx context.Context, page, limit int) (*domain.CarPage, error)
	Count(ctx context.Context) (int, error)
	GetByID(ctx context.Context, id string) (*domain.Car, error)
	Update(ctx context.Context, id string, patch domain.CarPatch) (*domain.Car, error)
	Delete(ctx context.Context, id string) error
}

type CarHandler struct {
	cars   carUsecaser
	logger *slog.Logger
}

func NewCarHandler(cars carUsecaser, logger *slog.Logger) *CarHandler {
	return &CarHandler{cars: cars, logger: logger.With("component", "car_handler")}
}

type carCategoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type carResponse struct {
	ID             string              `json:"id"`
	Model          string              `json:"model"`
	Color          string              `json:"color"`
	RegistrationNo string              `json:"registrationNo"`
	Category       carCategoryResponse `json:"category"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

func toCarResponse(c *domain.Car) carResponse {
	return carResponse{
		ID:             c.ID,
		Model:          c.Model,
		Color:          c.Color,
		RegistrationNo: c.RegistrationNo,
		Category:       carCategoryResponse{ID: c.CategoryID, Name: c.CategoryName},
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

type listCarsResponse struct {
	Cars        []carResponse `json:"cars"`
	TotalPages  int           `json:"totalPages"`
	CurrentPage int           `json:"currentPage"`
}

// GET /api/cars?page&limit
// Bad page/limit values never fail the request; they fall back to the
// defaults.
func (h *CarHandler) List(ctx *gin.Context) {
	page := positiveIntQuery(ctx, "page", usecase.DefaultPage)
	limit := positiveIntQuery(ctx, "limit", usecase.DefaultLimit)

	result, err := h.cars.List(ctx.Request.Context(), page, limit)
	if err != nil {
		h.logger.ErrorContext(ctx.Request.Context(), "list cars", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": errInternalServer})
		return
	}

	cars := make([]carResponse, 0, len(result.Cars))
	for _, c := range result.Cars {
		cars = append(cars, toCarResponse(c))
	}
	ctx.JSON(http.StatusOK, listCarsResponse{
		Cars:        cars,
		TotalPages:  result.TotalPages,
		CurrentPage: result.CurrentPage,
	})
}

// GET /api/cars/count
func (h *CarHandler) Count(ctx *gin.Context) {
	count, err := h.cars.Count(ctx.Request.Context())
	if err != nil {
		h.logger.ErrorContext(ctx.Request.Context(), "count cars", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": errInternalServer})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"count": count})
}

// GET /api/cars/:id
func (h *CarHandler) GetByID(ctx *gin.Context) {
	id, ok := carID(ctx)
	if !ok {
		return
	}

	car, err := h.cars.GetByID(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrCarNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"message": errCarNotFound})
			return
		}
		h.logger.ErrorContext(ctx.Request.Context(), "get car", "car_id", id, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": errInternalServer})
		return
	}
	ctx.JSON(http.StatusOK, toCarResponse(car))
}

type createCarRequest struct {
	Model          string `json:"model"          binding:"required"`
	Color          string `json:"color"          binding:"required"`
	RegistrationNo string `json:"registrationNo" binding:"required,alphanum"`
	Category       string `json:"category"       binding:"required,uuid"`
}

// POST /api/cars
func (h *CarHandler) Create(ctx *gin.Context) {
	var req createCarRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		validationResponse(ctx, err)
		return
	}

	car, err := h.cars.Create(ctx.Request.Context(), usecase.CreateCarInput{
		Model:          sanitize.Text(req.Model),
		Color:          sanitize.Text(req.Color),
		RegistrationNo: req.RegistrationNo,
		CategoryID:     req.Category,
	})
	if err != nil {
		h.carWriteError(ctx, err, "create car")
		return
	}
	h.logger.InfoContext(ctx.Request.Context(), "car created",
		"car_id", car.ID, "user_id", actorID(ctx))
	ctx.JSON(http.StatusCreated, toCarResponse(car))
}

type updateCarRequest struct {
	Model          *string `json:"model"`
	Color          *string `json:"color"`
	RegistrationNo *string `json:"registrationNo" binding:"omitempty,alphanum"`
	Category       *string `json:"category"       binding:"omitempty,uuid"`
}

// PUT /api/cars/:id
// Partial update: a field is written iff it is present in the body,
// empty strings included.
func (h *CarHandler) Update(ctx *gin.Context) {
	id, ok := carID(ctx)
	if !ok {
		return
	}

	var req updateCarRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		validationResponse(ctx, err)
		return
	}

	patch := domain.CarPatch{
		Model:          sanitizeOptional(req.Model),
		Color:          sanitizeOptional(req.Color),
		RegistrationNo: req.RegistrationNo,
		CategoryID:     req.Category,
	}

	car, err := h.cars.Update(ctx.Request.Context(), id, patch)
	if err != nil {
		if errors.Is(err, domain.ErrCarNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"message": errCarNotFound})
			return
		}
		h.carWriteError(ctx, err, "update car")
		return
	}
	h.logger.InfoContext(ctx.Request.Context(), "car updated",
		"car_id", car.ID, "user_id", actorID(ctx))
	ctx.JSON(http.StatusOK, toCarResponse(car))
}

// DELETE /api/cars/:id
func (h *CarHandler) Delete(ctx *gin.Context) {
	id, ok := carID(ctx)
	if !ok {
		return
	}

	if err := h.cars.Delete(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrCarNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"message": errCarNotFound})
			return
		}
		h.logger.ErrorContext(ctx.Request.Context(), "delete car", "car_id", id, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": errInternalServer})
		return
	}
	h.logger.InfoContext(ctx.Request.Context(), "car deleted",
		"car_id", id, "user_id", actorID(ctx))
	ctx.JSON(http.StatusOK, gin.H{"message": msgCarDeleted})
}

func (h *CarHandler) carWriteError(ctx *gin.Context, err error, op string) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		validationResponse(ctx, err)
	case errors.Is(err, domain.ErrDuplicateRegistration):
		ctx.JSON(http.StatusBadRequest, gin.H{"message": errRegistrationTaken})
	default:
		h.logger.ErrorContext(ctx.Request.Context(), op, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": errInternalServer})
	}
}

// carID validates the :id path parameter. A value that is not a UUID
// cannot reference any car, so it reports 404 directly.
func carID(ctx *gin.Context) (string, bool) {
	id := sanitize.Text(ctx.Param("id"))
	if _, err := uuid.Parse(id); err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"message": errCarNotFound})
		return "", false
	}
	return id, true
}

// positiveIntQuery parses a query parameter as a positive integer,
// falling back to def on anything else.
func positiveIntQuery(ctx *gin.Context, name string, def int) int {
	raw := sanitize.Text(ctx.Query(name))
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func sanitizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	clean := sanitize.Text(*s)
	return &clean
}
