package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fleetadmin/fleet-api/internal/domain"
	"github.com/fleetadmin/fleet-api/internal/metrics"
	"github.com/gin-gonic/gin"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Signup(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (string, error)
}

type AuthHandler struct {
	auth   authUsecaser
	logger *slog.Logger
}

func NewAuthHandler(auth authUsecaser, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		logger: logger.With("component", "auth_handler"),
	}
}

type signupRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// POST /api/auth/signup
// The generated password travels by email only; the response never
// contains it.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationResponse(c, err)
		return
	}

	if err := h.auth.Signup(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			metrics.SignupsTotal.WithLabelValues("conflict").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"message": errUserExists})
			return
		}
		metrics.SignupsTotal.WithLabelValues("error").Inc()
		h.logger.ErrorContext(c.Request.Context(), "signup", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": errInternalServer})
		return
	}

	metrics.SignupsTotal.WithLabelValues("success").Inc()
	c.JSON(http.StatusCreated, gin.H{"message": msgUserCreated})
}

type loginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationResponse(c, err)
		return
	}

	tok, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			metrics.LoginsTotal.WithLabelValues("not_found").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"message": errUserNotFound})
		case errors.Is(err, domain.ErrInvalidCredentials):
			metrics.LoginsTotal.WithLabelValues("bad_credentials").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"message": errInvalidCredentials})
		default:
			metrics.LoginsTotal.WithLabelValues("error").Inc()
			h.logger.ErrorContext(c.Request.Context(), "login", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": errInternalServer})
		}
		return
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, gin.H{"token": tok})
}
