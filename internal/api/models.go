// Package api implements the HTTP handlers for the task-tracking service.
package api

import (
	"time"

	"github.com/PrateekJaiswal16/taskflow-api/internal/domain"
	"github.com/PrateekJaiswal16/taskflow-api/internal/service"
)

// RegisterRequest represents the request body for user registration.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role"     validate:"omitempty,oneof=user admin"`
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse represents the response for successful authentication.
type AuthResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Token string `json:"token"`
}

// UserResponse represents a roster member in responses. The password hash is
// never serialized.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateUserRequest represents the admin request to add a roster member.
type CreateUserRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role"     validate:"omitempty,oneof=user admin"`
}

// UpdateUserRequest represents the admin request to edit a roster member.
// Omitted fields keep their prior value.
type UpdateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email" validate:"omitempty,email"`
	Role  *string `json:"role"  validate:"omitempty,oneof=user admin"`
}

// UpdateProfileRequest represents a user's request to edit their own profile.
type UpdateProfileRequest struct {
	Name            *string `json:"name"`
	Email           *string `json:"email"        validate:"omitempty,email"`
	NewPassword     *string `json:"new_password" validate:"omitempty,min=8,max=72"`
	CurrentPassword string  `json:"current_password"`
}

// VerifyPasswordRequest represents the request to confirm the actor's
// password.
type VerifyPasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

// AttachmentResponse represents an attached document. The storage key is
// internal bookkeeping and is not exposed.
type AttachmentResponse struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// UserRefResponse is the resolved display identity of a referenced user.
type UserRefResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// TaskResponse represents a task in responses, with referenced users
// resolved for display.
type TaskResponse struct {
	ID                string               `json:"id"`
	Title             string               `json:"title"`
	Description       string               `json:"description"`
	Status            string               `json:"status"`
	Priority          string               `json:"priority"`
	DueDate           *time.Time           `json:"due_date,omitempty"`
	AssignedTo        *UserRefResponse     `json:"assigned_to"`
	CreatedBy         *UserRefResponse     `json:"created_by"`
	AttachedDocuments []AttachmentResponse `json:"attached_documents"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

// TaskListResponse represents one page of tasks.
type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Page  int            `json:"page"`
	Pages int            `json:"pages"`
	Total int            `json:"total"`
}

// userToResponse converts a domain.User to a UserResponse.
func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// taskToResponse converts a resolved service.TaskDetail to a TaskResponse.
func taskToResponse(detail *service.TaskDetail) TaskResponse {
	task := detail.Task

	docs := make([]AttachmentResponse, 0, len(task.AttachedDocuments))
	for _, doc := range task.AttachedDocuments {
		docs = append(docs, AttachmentResponse{URL: doc.URL, Filename: doc.Filename})
	}

	return TaskResponse{
		ID:                task.ID.String(),
		Title:             task.Title,
		Description:       task.Description,
		Status:            string(task.Status),
		Priority:          string(task.Priority),
		DueDate:           task.DueDate,
		AssignedTo:        userRefToResponse(detail.Assignee),
		CreatedBy:         userRefToResponse(detail.Creator),
		AttachedDocuments: docs,
		CreatedAt:         task.CreatedAt,
		UpdatedAt:         task.UpdatedAt,
	}
}

func userRefToResponse(ref *service.UserRef) *UserRefResponse {
	if ref == nil {
		return nil
	}
	return &UserRefResponse{
		ID:    ref.ID.String(),
		Name:  ref.Name,
		Email: ref.Email,
	}
}

// taskListToResponse converts a service.TaskList to a TaskListResponse.
func taskListToResponse(list *service.TaskList) TaskListResponse {
	tasks := make([]TaskResponse, 0, len(list.Tasks))
	for _, detail := range list.Tasks {
		tasks = append(tasks, taskToResponse(detail))
	}
	return TaskListResponse{
		Tasks: tasks,
		Page:  list.Page,
		Pages: list.Pages,
		Total: list.Total,
	}
}
