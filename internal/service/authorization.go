package service

import (
	"fmt"

	"github.com/PrateekJaiswal16/taskflow-api/internal/domain"
)

// Action identifies a task operation for authorization purposes.
type Action string

// Task actions gated by the authorization policy.
const (
	ActionCreate        Action = "create"
	ActionListAll       Action = "list_all"
	ActionListOwn       Action = "list_own"
	ActionView          Action = "view"
	ActionUpdate        Action = "update"
	ActionDelete        Action = "delete"
	ActionRequestChange Action = "request_status_change"
	ActionApprove       Action = "approve"
)

// AuthorizationPolicy decides, per operation and per actor, whether a task
// mutation or view is permitted. Evaluation is a pure function of
// (actor, action, target) with no side effects, and runs before any
// repository or storage call made on the actor's behalf.
//
// Role checks live here; workflow-state checks (e.g. approve only from
// Pending Approval) live in the workflow engine.
type AuthorizationPolicy struct{}

// NewAuthorizationPolicy creates a new AuthorizationPolicy.
func NewAuthorizationPolicy() AuthorizationPolicy {
	return AuthorizationPolicy{}
}

// Authorize returns nil if the actor may perform the action, or an error
// wrapping ErrForbidden. The task argument is required for task-targeted
// actions (view, update, delete, request_status_change, approve) and ignored
// otherwise.
func (AuthorizationPolicy) Authorize(actor domain.Actor, action Action, task *domain.Task) error {
	allowed := false

	switch action {
	case ActionCreate, ActionListAll, ActionUpdate, ActionDelete, ActionApprove:
		allowed = actor.IsAdmin()
	case ActionListOwn:
		// Any authenticated actor; the listing is scoped to their own tasks.
		allowed = true
	case ActionView:
		allowed = task != nil && (actor.IsAdmin() || task.IsAssignedTo(actor.ID))
	case ActionRequestChange:
		// Assignee only; admins go through direct edit or approve instead.
		allowed = task != nil && task.IsAssignedTo(actor.ID)
	}

	if !allowed {
		return fmt.Errorf("%w: %s", ErrForbidden, action)
	}
	return nil
}
