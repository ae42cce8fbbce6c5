package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fleetadmin/fleet-api/internal/domain"
	"github.com/fleetadmin/fleet-api/internal/session"
	"github.com/fleetadmin/fleet-api/internal/transport/http/handler"
	"github.com/fleetadmin/fleet-api/internal/usecase"
	"github.com/gin-gonic/gin"
)

type fakeCarUsecase struct {
	create  func(ctx context.Context, input usecase.CreateCarInput) (*domain.Car, error)
	list    func(ctx context.Context, page, limit int) (*domain.CarPage, error)
	count   func(ctx context.Context) (int, error)
	getByID func(ctx context.Context, id string) (*domain.Car, error)
	update  func(ctx context.Context, id string, patch domain.CarPatch) (*domain.Car, error)
	delete  func(ctx context.Context, id string) error
}

func (f *fakeCarUsecase) Create(ctx context.Context, input usecase.CreateCarInput) (*domain.Car, error) {
	return f.create(ctx, input)
}

func (f *fakeCarUsecase) List(ctx context.Context, page, limit int) (*domain.CarPage, error) {
	return f.list(ctx, page, limit)
}

func (f *fakeCarUsecase) Count(ctx context.Context) (int, error) {
	return f.count(ctx)
}

func (f *fakeCarUsecase) GetByID(ctx context.Context, id string) (*domain.Car, error) {
	return f.getByID(ctx, id)
}

func (f *fakeCarUsecase) Update(ctx context.Context, id string, patch domain.CarPatch) (*domain.Car, error) {
	return f.update(ctx, id, patch)
}

func (f *fakeCarUsecase) Delete(ctx context.Context, id string) error {
	return f.delete(ctx, id)
}

const (
	testCarID      = "6f9c25da-9e5f-4b1d-8a47-0c89a8f4c901"
	testCategoryID = "f0b7b9c2-4f2e-4a93-9a58-2d5c8e3b7a10"
)

func sampleCar() *domain.Car {
	return &domain.Car{
		ID:             testCarID,
		Model:          "Corolla",
		Color:          "white",
		RegistrationNo: "KC123",
		CategoryID:     testCategoryID,
		CategoryName:   "Sedan",
		CreatedAt:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func newCarEngine(uc *fakeCarUsecase) *gin.Engine {
	h := handler.NewCarHandler(uc, testLogger())

	r := gin.New()
	r.GET("/api/cars", h.List)
	r.GET("/api/cars/count", h.Count)
	r.GET("/api/cars/:id", h.GetByID)
	r.POST("/api/cars", h.Create)
	r.PUT("/api/cars/:id", h.Update)
	r.DELETE("/api/cars/:id", h.Delete)
	return r
}

func doRequest(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	engine.ServeHTTP(w, req)
	return w
}

func TestListCars_ReturnsPageEnvelope(t *testing.T) {
	uc := &fakeCarUsecase{
		list: func(_ context.Context, page, limit int) (*domain.CarPage, error) {
			if page != 3 || limit != 5 {
				t.Errorf("page, limit = %d, %d, want 3, 5", page, limit)
			}
			return &domain.CarPage{
				Cars:        []*domain.Car{sampleCar()},
				TotalPages:  4,
				CurrentPage: 3,
			}, nil
		},
	}
	w := doRequest(newCarEngine(uc), http.MethodGet, "/api/cars?page=3&limit=5", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body struct {
		Cars []struct {
			ID       string `json:"id"`
			Category struct {
				Name string `json:"name"`
			} `json:"category"`
		} `json:"cars"`
		TotalPages  int `json:"totalPages"`
		CurrentPage int `json:"currentPage"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.TotalPages != 4 || body.CurrentPage != 3 {
		t.Errorf("totalPages, currentPage = %d, %d, want 4, 3", body.TotalPages, body.CurrentPage)
	}
	if len(body.Cars) != 1 || body.Cars[0].Category.Name != "Sedan" {
		t.Errorf("cars = %+v, want one Sedan", body.Cars)
	}
}

func TestListCars_GarbageQueryFallsBackToDefaults(t *testing.T) {
	uc := &fakeCarUsecase{
		list: func(_ context.Context, page, limit int) (*domain.CarPage, error) {
			if page != usecase.DefaultPage || limit != usecase.DefaultLimit {
				t.Errorf("page, limit = %d, %d, want defaults", page, limit)
			}
			return &domain.CarPage{Cars: []*domain.Car{}, TotalPages: 0, CurrentPage: page}, nil
		},
	}
	w := doRequest(newCarEngine(uc), http.MethodGet, "/api/cars?page=zero&limit=-4", "")

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestCountCars(t *testing.T) {
	uc := &fakeCarUsecase{
		count: func(_ context.Context) (int, error) { return 42, nil },
	}
	w := doRequest(newCarEngine(uc), http.MethodGet, "/api/cars/count", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"count":42`) {
		t.Errorf("body %q lacks count", w.Body.String())
	}
}

func TestGetCar_MalformedID_Returns404(t *testing.T) {
	uc := &fakeCarUsecase{
		getByID: func(_ context.Context, _ string) (*domain.Car, error) {
			t.Error("usecase should not be reached for a malformed id")
			return nil, nil
		},
	}
	w := doRequest(newCarEngine(uc), http.MethodGet, "/api/cars/not-a-uuid", "")

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestGetCar_Unknown_Returns404(t *testing.T) {
	uc := &fakeCarUsecase{
		getByID: func(_ context.Context, _ string) (*domain.Car, error) {
			return nil, domain.ErrCarNotFound
		},
	}
	w := doRequest(newCarEngine(uc), http.MethodGet, "/api/cars/"+testCarID, "")

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Car not found") {
		t.Errorf("body %q lacks not-found message", w.Body.String())
	}
}

func TestCreateCar_MissingFields_Returns400PerField(t *testing.T) {
	uc := &fakeCarUsecase{}
	w := doRequest(newCarEngine(uc), http.MethodPost, "/api/cars", `{"color":"red"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var body struct {
		Errors []domain.FieldError `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	fields := map[string]bool{}
	for _, fe := range body.Errors {
		fields[fe.Field] = true
	}
	for _, want := range []string{"model", "registrationNo", "category"} {
		if !fields[want] {
			t.Errorf("missing field error for %q in %+v", want, body.Errors)
		}
	}
}

func TestCreateCar_UnknownCategory_Returns400FieldError(t *testing.T) {
	uc := &fakeCarUsecase{
		create: func(_ context.Context, _ usecase.CreateCarInput) (*domain.Car, error) {
			return nil, domain.NewValidationError(domain.FieldError{Field: "category", Message: "Invalid category ID"})
		},
	}
	w := doRequest(newCarEngine(uc), http.MethodPost, "/api/cars",
		`{"model":"Corolla","color":"white","registrationNo":"KC123","category":"`+testCategoryID+`"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Invalid category ID") {
		t.Errorf("body %q lacks category error", w.Body.String())
	}
}

func TestCreateCar_Success_Returns201WithCar(t *testing.T) {
	uc := &fakeCarUsecase{
		create: func(_ context.Context, input usecase.CreateCarInput) (*domain.Car, error) {
			if input.Model != "Corolla" || input.RegistrationNo != "KC123" {
				t.Errorf("input = %+v", input)
			}
			return sampleCar(), nil
		},
	}
	w := doRequest(newCarEngine(uc), http.MethodPost, "/api/cars",
		`{"model":"Corolla","color":"white","registrationNo":"KC123","category":"`+testCategoryID+`"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	if !strings.Contains(w.Body.String(), testCarID) {
		t.Errorf("body %q lacks created car id", w.Body.String())
	}
}

func TestUpdateCar_PassesOnlyProvidedFields(t *testing.T) {
	uc := &fakeCarUsecase{
		update: func(_ context.Context, id string, patch domain.CarPatch) (*domain.Car, error) {
			if id != testCarID {
				t.Errorf("id = %q", id)
			}
			if patch.Color == nil || *patch.Color != "black" {
				t.Errorf("patch.Color = %v, want black", patch.Color)
			}
			if patch.Model != nil || patch.RegistrationNo != nil || patch.CategoryID != nil {
				t.Errorf("unexpected fields set in %+v", patch)
			}
			car := sampleCar()
			car.Color = "black"
			return car, nil
		},
	}
	w := doRequest(newCarEngine(uc), http.MethodPut, "/api/cars/"+testCarID, `{"color":"black"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"color":"black"`) {
		t.Errorf("body %q lacks updated color", w.Body.String())
	}
}

func TestUpdateCar_Unknown_Returns404(t *testing.T) {
	uc := &fakeCarUsecase{
		update: func(_ context.Context, _ string, _ domain.CarPatch) (*domain.Car, error) {
			return nil, domain.ErrCarNotFound
		},
	}
	w := doRequest(newCarEngine(uc), http.MethodPut, "/api/cars/"+testCarID, `{"color":"black"}`)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestDeleteCar_Success(t *testing.T) {
	uc := &fakeCarUsecase{
		delete: func(_ context.Context, id string) error {
			if id != testCarID {
				t.Errorf("id = %q", id)
			}
			return nil
		},
	}
	w := doRequest(newCarEngine(uc), http.MethodDelete, "/api/cars/"+testCarID, "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Car deleted successfully") {
		t.Errorf("body %q lacks delete message", w.Body.String())
	}
}

func TestDeleteCar_LogsAuthenticatedUser(t *testing.T) {
	uc := &fakeCarUsecase{
		delete: func(_ context.Context, _ string) error { return nil },
	}

	var logs bytes.Buffer
	h := handler.NewCarHandler(uc, slog.New(slog.NewTextHandler(&logs, nil)))

	r := gin.New()
	r.DELETE("/api/cars/:id", func(c *gin.Context) {
		ctx := session.WithSession(c.Request.Context(), session.Session{UserID: "user-1"})
		c.Request = c.Request.WithContext(ctx)
	}, h.Delete)

	w := doRequest(r, http.MethodDelete, "/api/cars/"+testCarID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(logs.String(), "user_id=user-1") {
		t.Errorf("audit log %q lacks the acting user", logs.String())
	}
}

func TestDeleteCar_Unknown_Returns404(t *testing.T) {
	uc := &fakeCarUsecase{
		delete: func(_ context.Context, _ string) error { return domain.ErrCarNotFound },
	}
	w := doRequest(newCarEngine(uc), http.MethodDelete, "/api/cars/"+testCarID, "")

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
