package service

import (
	"fmt"

	"github.com/PrateekJaiswal16/taskflow-api/internal/domain"
)

// TaskWorkflowEngine owns the task status state machine. The workflow
// deliberately has one approver role and one pending state: it models a
// lightweight sign-off, not a general workflow graph.
//
// Admin direct edits may set any status (administrative override); the two
// guarded transitions below are the assignee's change request and the admin's
// approval.
type TaskWorkflowEngine struct{}

// NewTaskWorkflowEngine creates a new TaskWorkflowEngine.
func NewTaskWorkflowEngine() TaskWorkflowEngine {
	return TaskWorkflowEngine{}
}

// RequestChange is the assignee's hand-off: the task moves to Pending
// Approval from any non-terminal, non-pending state. Returns
// ErrInvalidTransition if the task is already pending or done.
func (TaskWorkflowEngine) RequestChange(current domain.TaskStatus) (domain.TaskStatus, error) {
	switch current {
	case domain.StatusToDo, domain.StatusInProgress:
		return domain.StatusPendingApproval, nil
	default:
		return "", fmt.Errorf("%w: cannot request change from %q", ErrInvalidTransition, current)
	}
}

// Approve is the admin's sign-off: Pending Approval moves to Done. Returns
// ErrInvalidTransition from any other state.
func (TaskWorkflowEngine) Approve(current domain.TaskStatus) (domain.TaskStatus, error) {
	if current != domain.StatusPendingApproval {
		return "", fmt.Errorf("%w: cannot approve from %q", ErrInvalidTransition, current)
	}
	return domain.StatusDone, nil
}
