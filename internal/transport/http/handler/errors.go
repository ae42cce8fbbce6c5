package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/fleetadmin/fleet-api/internal/domain"
	"github.com/fleetadmin/fleet-api/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const (
	errInternalServer     = "Internal server error"
	errUserExists         = "User already exists"
	errUserNotFound       = "User not found"
	errInvalidCredentials = "Invalid credentials"
	errCarNotFound        = "Car not found"
	errRegistrationTaken  = "Car with this registration number already exists"
	errCategoryNotFound   = "Category not found"
	errCategoryExists     = "Category already exists"

	msgUserCreated     = "User created, check your email for password"
	msgCarDeleted      = "Car deleted successfully"
	msgCategoryDeleted = "Category deleted"
)

// actorID is the authenticated user behind a gated request; empty on
// public routes. Mutating handlers log it for the audit trail.
func actorID(ctx *gin.Context) string {
	if sess, ok := session.FromContext(ctx.Request.Context()); ok {
		return sess.UserID
	}
	return ""
}

// validationResponse writes the 400 body for a failed binding or a
// usecase-level validation error: a structured list of per-field
// messages, never one opaque string.
func validationResponse(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrors(err)})
}

func fieldErrors(err error) []domain.FieldError {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return vErr.Fields
	}

	var bindErrs validator.ValidationErrors
	if errors.As(err, &bindErrs) {
		fields := make([]domain.FieldError, 0, len(bindErrs))
		for _, fe := range bindErrs {
			fields = append(fields, domain.FieldError{
				Field:   jsonFieldName(fe.Field()),
				Message: fieldMessage(fe),
			})
		}
		return fields
	}

	return []domain.FieldError{{Field: "body", Message: "Invalid request body"}}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fieldLabel(fe.Field()) + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return fieldLabel(fe.Field()) + " should be at least " + fe.Param() + " characters long"
	case "alphanum":
		return fieldLabel(fe.Field()) + " must be alphanumeric"
	case "uuid":
		return "Invalid " + strings.ToLower(fieldLabel(fe.Field())) + " ID"
	default:
		return fieldLabel(fe.Field()) + " is invalid"
	}
}

// jsonFieldName converts a Go struct field name to its JSON spelling.
// Request structs here all use lower-camel JSON tags.
func jsonFieldName(name string) string {
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}

// fieldLabel is the human-readable spelling used in messages.
func fieldLabel(name string) string {
	if name == "RegistrationNo" {
		return "Registration number"
	}
	return name
}
