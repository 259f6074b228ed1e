package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxAttachments is the hard cap on documents attached to a single task.
// The cap is enforced against the post-merge total on every create and
// update, never against an incoming batch alone.
const MaxAttachments = 3

// Task-specific validation errors
var (
	ErrEmptyTaskID        = errors.New("task ID cannot be empty")
	ErrEmptyTaskTitle     = errors.New("task title cannot be empty")
	ErrEmptyAssignee      = errors.New("task must be assigned to a user")
	ErrEmptyCreator       = errors.New("task creator cannot be empty")
	ErrTooManyAttachments = errors.New("task cannot carry more than 3 attached documents")
	ErrInvalidAttachment  = errors.New("attachment is missing a required field")
)

// TaskStatus is a workflow state of a task. The string values match the
// labels stored in the database and shown to clients.
type TaskStatus string

// Workflow states. Done is terminal; Pending Approval is the hand-off state
// between an assignee's change request and an admin's sign-off.
const (
	StatusToDo            TaskStatus = "To Do"
	StatusInProgress      TaskStatus = "In Progress"
	StatusPendingApproval TaskStatus = "Pending Approval"
	StatusDone            TaskStatus = "Done"
)

// ParseTaskStatus converts a string into a TaskStatus.
// Returns ErrInvalidStatus if the value is not a defined state.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(s) {
	case StatusToDo, StatusInProgress, StatusPendingApproval, StatusDone:
		return TaskStatus(s), nil
	default:
		return "", ErrInvalidStatus
	}
}

// TaskPriority is the urgency level of a task.
type TaskPriority string

// Priority levels.
const (
	PriorityLow    TaskPriority = "Low"
	PriorityMedium TaskPriority = "Medium"
	PriorityHigh   TaskPriority = "High"
)

// ParseTaskPriority converts a string into a TaskPriority.
// Returns ErrInvalidPriority if the value is not a defined level.
func ParseTaskPriority(s string) (TaskPriority, error) {
	switch TaskPriority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return TaskPriority(s), nil
	default:
		return "", ErrInvalidPriority
	}
}

// Attachment is a document attached to a task. It is an owned value inside
// the Task aggregate: it has no identity or lifecycle of its own, and its
// blob in the object store must not outlive the record that references it.
type Attachment struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	// StorageKey addresses the blob in the object store for later deletion.
	// It is internal bookkeeping, not a client-facing identifier.
	StorageKey string `json:"storage_key"`
}

// Validate checks that the attachment carries every required field.
func (a Attachment) Validate() error {
	if a.URL == "" || a.Filename == "" || a.StorageKey == "" {
		return ErrInvalidAttachment
	}
	return nil
}

// Task is the central aggregate of the service: a unit of work assigned to
// exactly one user, moved through the approval workflow, with up to three
// attached documents kept in insertion order.
type Task struct {
	ID                uuid.UUID    `json:"id"`
	Title             string       `json:"title"`
	Description       string       `json:"description"`
	Status            TaskStatus   `json:"status"`
	Priority          TaskPriority `json:"priority"`
	DueDate           *time.Time   `json:"due_date,omitempty"`
	AssignedTo        uuid.UUID    `json:"assigned_to"`
	CreatedBy         uuid.UUID    `json:"created_by"`
	AttachedDocuments []Attachment `json:"attached_documents"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// NewTask creates a new Task assigned to assignedTo and created by createdBy.
// It generates a new UUID for the task ID and sets the creation/update
// timestamps. Empty status and priority default to StatusToDo and
// PriorityMedium. Returns an error if validation fails.
func NewTask(
	title, description string,
	status TaskStatus,
	priority TaskPriority,
	dueDate *time.Time,
	assignedTo, createdBy uuid.UUID,
	attachments []Attachment,
) (*Task, error) {
	if status == "" {
		status = StatusToDo
	}
	if priority == "" {
		priority = PriorityMedium
	}

	task := &Task{
		ID:                uuid.New(),
		Title:             strings.TrimSpace(title),
		Description:       description,
		Status:            status,
		Priority:          priority,
		DueDate:           dueDate,
		AssignedTo:        assignedTo,
		CreatedBy:         createdBy,
		AttachedDocuments: attachments,
		CreatedAt:         time.Now().UTC(),
		UpdatedAt:         time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTaskTitle
	}

	if _, err := ParseTaskStatus(string(t.Status)); err != nil {
		return err
	}

	if _, err := ParseTaskPriority(string(t.Priority)); err != nil {
		return err
	}

	if t.AssignedTo == uuid.Nil {
		return ErrEmptyAssignee
	}

	if t.CreatedBy == uuid.Nil {
		return ErrEmptyCreator
	}

	if len(t.AttachedDocuments) > MaxAttachments {
		return ErrTooManyAttachments
	}

	for _, doc := range t.AttachedDocuments {
		if err := doc.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// IsAssignedTo reports whether the task is assigned to the given user.
func (t *Task) IsAssignedTo(userID uuid.UUID) bool {
	return t.AssignedTo == userID
}
