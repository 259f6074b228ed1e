package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/PrateekJaiswal16/taskflow-api/internal/domain"
)

// DefaultPageSize is the page size used when a caller does not supply one.
const DefaultPageSize = 9

// Task list sort keys. The zero value sorts by creation time.
const (
	SortByCreatedAt = "created_at"
	SortByDueDate   = "due_date"
	SortByPriority  = "priority"
	SortByStatus    = "status"
)

// TaskFilter narrows and orders a task listing. Nil/zero fields are ignored.
type TaskFilter struct {
	// AssignedTo restricts the listing to tasks assigned to this user.
	// The service layer forces this for non-admin callers.
	AssignedTo *uuid.UUID

	Status   *domain.TaskStatus
	Priority *domain.TaskPriority

	// SortBy is one of the SortBy* keys; empty means SortByCreatedAt.
	SortBy string
	// Ascending orders the listing ascending; the default is descending.
	Ascending bool

	// Page is 1-based; values below 1 mean the first page.
	Page int
	// PageSize caps the number of returned tasks; values below 1 mean
	// DefaultPageSize.
	PageSize int
}

// TaskPage is one page of a task listing plus pagination bookkeeping.
type TaskPage struct {
	Tasks []*domain.Task
	// Page is the 1-based page number that was returned.
	Page int
	// Pages is ceil(Total / PageSize).
	Pages int
	// Total is the number of tasks matching the filter across all pages.
	Total int
}

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task to the store, including its attached-document
	// list in one write. Returns validation errors from the domain Task if
	// data is invalid, or ErrInvalidEntity if a referenced user is missing.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// List returns the page of tasks selected by the filter.
	List(ctx context.Context, filter TaskFilter) (*TaskPage, error)

	// Update overwrites an existing task record, attachments included, in a
	// single write. The store is last-writer-wins; no concurrency token is
	// checked. Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task record by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	// Blob cleanup for attached documents is the service layer's concern.
	Delete(ctx context.Context, id uuid.UUID) error
}
