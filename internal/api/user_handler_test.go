package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/PrateekJaiswal16/taskflow-api/internal/domain"
	"github.com/PrateekJaiswal16/taskflow-api/internal/service"
)

func newUserRouter(svc service.UserService, actor domain.Actor) http.Handler {
	h := NewUserHandler(svc)
	r := chi.NewRouter()
	r.Use(withActor(actor))
	r.Post("/api/users", h.CreateUser)
	r.Get("/api/users", h.ListUsers)
	r.Get("/api/users/{id}", h.GetUser)
	r.Put("/api/users/{id}", h.UpdateUser)
	r.Delete("/api/users/{id}", h.DeleteUser)
	r.Get("/api/profile", h.GetProfile)
	r.Put("/api/profile", h.UpdateProfile)
	r.Post("/api/profile/verify-password", h.VerifyPassword)
	return r
}

func sampleUser() *domain.User {
	return &domain.User{
		ID:             uuid.New(),
		Name:           "Jordan",
		Email:          "jordan@example.com",
		HashedPassword: "hash",
		Role:           domain.RoleUser,
	}
}

func TestUserHandlerCreateUser(t *testing.T) {
	admin := domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}

	svc := &MockUserService{}
	svc.On("CreateUser", mock.Anything, admin, mock.MatchedBy(func(input service.CreateUserInput) bool {
		return input.Email == "jordan@example.com" && input.Role == domain.RoleAdmin
	})).Return(sampleUser(), nil)

	body := `{"name":"Jordan","email":"jordan@example.com","password":"hunter2hunter2","role":"admin"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(body))
	rec := httptest.NewRecorder()
	newUserRouter(svc, admin).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	// The password hash never appears in a response
	assert.NotContains(t, rec.Body.String(), "hash")
	svc.AssertExpectations(t)
}

func TestUserHandlerListUsers(t *testing.T) {
	admin := domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}

	svc := &MockUserService{}
	svc.On("ListUsers", mock.Anything, admin).Return([]*domain.User{sampleUser(), sampleUser()}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rec := httptest.NewRecorder()
	newUserRouter(svc, admin).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp []UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
}

func TestUserHandlerUpdateUser(t *testing.T) {
	admin := domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}
	id := uuid.New()

	t.Run("partial update", func(t *testing.T) {
		svc := &MockUserService{}
		svc.On("UpdateUser", mock.Anything, admin, id,
			mock.MatchedBy(func(input service.UpdateUserInput) bool {
				return input.Name != nil && *input.Name == "Jordan K" && input.Email == nil
			})).Return(sampleUser(), nil)

		body := `{"name":"Jordan K"}`
		req := httptest.NewRequest(http.MethodPut, "/api/users/"+id.String(), strings.NewReader(body))
		rec := httptest.NewRecorder()
		newUserRouter(svc, admin).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("unknown role", func(t *testing.T) {
		svc := &MockUserService{}

		body := `{"role":"superuser"}`
		req := httptest.NewRequest(http.MethodPut, "/api/users/"+id.String(), strings.NewReader(body))
		rec := httptest.NewRecorder()
		newUserRouter(svc, admin).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing user maps to 404", func(t *testing.T) {
		svc := &MockUserService{}
		svc.On("UpdateUser", mock.Anything, admin, id, mock.Anything).
			Return(nil, service.ErrUserNotFound)

		body := `{"name":"Jordan K"}`
		req := httptest.NewRequest(http.MethodPut, "/api/users/"+id.String(), strings.NewReader(body))
		rec := httptest.NewRecorder()
		newUserRouter(svc, admin).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestUserHandlerDeleteUser(t *testing.T) {
	admin := domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}
	id := uuid.New()

	t.Run("success", func(t *testing.T) {
		svc := &MockUserService{}
		svc.On("DeleteUser", mock.Anything, admin, id).Return(nil)

		req := httptest.NewRequest(http.MethodDelete, "/api/users/"+id.String(), nil)
		rec := httptest.NewRecorder()
		newUserRouter(svc, admin).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("user with tasks maps to 409", func(t *testing.T) {
		svc := &MockUserService{}
		svc.On("DeleteUser", mock.Anything, admin, id).Return(service.ErrUserHasTasks)

		req := httptest.NewRequest(http.MethodDelete, "/api/users/"+id.String(), nil)
		rec := httptest.NewRecorder()
		newUserRouter(svc, admin).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "reassign or delete their tasks")
	})
}

func TestUserHandlerProfile(t *testing.T) {
	actor := domain.Actor{ID: uuid.New(), Role: domain.RoleUser}

	t.Run("get profile", func(t *testing.T) {
		svc := &MockUserService{}
		svc.On("GetProfile", mock.Anything, actor).Return(sampleUser(), nil)

		req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
		rec := httptest.NewRecorder()
		newUserRouter(svc, actor).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("password change with wrong current maps to 401", func(t *testing.T) {
		svc := &MockUserService{}
		svc.On("UpdateProfile", mock.Anything, actor, mock.Anything).
			Return(nil, service.ErrInvalidCredentials)

		body := `{"new_password":"newpassword123","current_password":"wrong"}`
		req := httptest.NewRequest(http.MethodPut, "/api/profile", strings.NewReader(body))
		rec := httptest.NewRecorder()
		newUserRouter(svc, actor).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("verify password", func(t *testing.T) {
		svc := &MockUserService{}
		svc.On("VerifyPassword", mock.Anything, actor, "hunter2hunter2").Return(nil)

		body := `{"password":"hunter2hunter2"}`
		req := httptest.NewRequest(http.MethodPost, "/api/profile/verify-password", strings.NewReader(body))
		rec := httptest.NewRecorder()
		newUserRouter(svc, actor).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "true")
	})
}
