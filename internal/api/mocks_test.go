package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/PrateekJaiswal16/taskflow-api/internal/api/shared"
	"github.com/PrateekJaiswal16/taskflow-api/internal/domain"
	"github.com/PrateekJaiswal16/taskflow-api/internal/service"
	"github.com/PrateekJaiswal16/taskflow-api/internal/service/auth"
)

// withActor injects an authenticated actor into the request context, standing
// in for the auth middleware in handler tests.
func withActor(actor domain.Actor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), shared.ActorContextKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// MockTaskService is a mock implementation of service.TaskService
type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) CreateTask(
	ctx context.Context,
	actor domain.Actor,
	input service.CreateTaskInput,
	files []service.IncomingFile,
) (*service.TaskDetail, error) {
	args := m.Called(ctx, actor, input, files)
	detail, _ := args.Get(0).(*service.TaskDetail)
	return detail, args.Error(1)
}

func (m *MockTaskService) ListOwnTasks(
	ctx context.Context,
	actor domain.Actor,
	input service.ListTasksInput,
) (*service.TaskList, error) {
	args := m.Called(ctx, actor, input)
	list, _ := args.Get(0).(*service.TaskList)
	return list, args.Error(1)
}

func (m *MockTaskService) ListAllTasks(
	ctx context.Context,
	actor domain.Actor,
	input service.ListTasksInput,
) (*service.TaskList, error) {
	args := m.Called(ctx, actor, input)
	list, _ := args.Get(0).(*service.TaskList)
	return list, args.Error(1)
}

func (m *MockTaskService) GetTask(
	ctx context.Context,
	actor domain.Actor,
	id uuid.UUID,
) (*service.TaskDetail, error) {
	args := m.Called(ctx, actor, id)
	detail, _ := args.Get(0).(*service.TaskDetail)
	return detail, args.Error(1)
}

func (m *MockTaskService) UpdateTask(
	ctx context.Context,
	actor domain.Actor,
	id uuid.UUID,
	input service.UpdateTaskInput,
	files []service.IncomingFile,
) (*service.TaskDetail, error) {
	args := m.Called(ctx, actor, id, input, files)
	detail, _ := args.Get(0).(*service.TaskDetail)
	return detail, args.Error(1)
}

func (m *MockTaskService) DeleteTask(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockTaskService) RequestStatusChange(
	ctx context.Context,
	actor domain.Actor,
	id uuid.UUID,
) (*service.TaskDetail, error) {
	args := m.Called(ctx, actor, id)
	detail, _ := args.Get(0).(*service.TaskDetail)
	return detail, args.Error(1)
}

func (m *MockTaskService) ApproveTask(
	ctx context.Context,
	actor domain.Actor,
	id uuid.UUID,
) (*service.TaskDetail, error) {
	args := m.Called(ctx, actor, id)
	detail, _ := args.Get(0).(*service.TaskDetail)
	return detail, args.Error(1)
}

// MockUserService is a mock implementation of service.UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) CreateUser(
	ctx context.Context,
	actor domain.Actor,
	input service.CreateUserInput,
) (*domain.User, error) {
	args := m.Called(ctx, actor, input)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context, actor domain.Actor) ([]*domain.User, error) {
	args := m.Called(ctx, actor)
	users, _ := args.Get(0).([]*domain.User)
	return users, args.Error(1)
}

func (m *MockUserService) GetUser(
	ctx context.Context,
	actor domain.Actor,
	id uuid.UUID,
) (*domain.User, error) {
	args := m.Called(ctx, actor, id)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *MockUserService) UpdateUser(
	ctx context.Context,
	actor domain.Actor,
	id uuid.UUID,
	input service.UpdateUserInput,
) (*domain.User, error) {
	args := m.Called(ctx, actor, id, input)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockUserService) GetProfile(ctx context.Context, actor domain.Actor) (*domain.User, error) {
	args := m.Called(ctx, actor)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *MockUserService) UpdateProfile(
	ctx context.Context,
	actor domain.Actor,
	input service.UpdateProfileInput,
) (*domain.User, error) {
	args := m.Called(ctx, actor, input)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *MockUserService) VerifyPassword(ctx context.Context, actor domain.Actor, password string) error {
	args := m.Called(ctx, actor, password)
	return args.Error(0)
}

// MockUserStore is a mock implementation of store.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *MockUserStore) List(ctx context.Context) ([]*domain.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]*domain.User)
	return users, args.Error(1)
}

func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockJWTService is a mock implementation of auth.JWTService
type MockJWTService struct {
	mock.Mock
}

func (m *MockJWTService) GenerateToken(
	ctx context.Context,
	userID uuid.UUID,
	role domain.Role,
) (string, error) {
	args := m.Called(ctx, userID, role)
	return args.String(0), args.Error(1)
}

func (m *MockJWTService) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	args := m.Called(ctx, token)
	claims, _ := args.Get(0).(*auth.Claims)
	return claims, args.Error(1)
}
