// Package moderation defines the post lifecycle state machine.
package moderation

import (
	"errors"
	"fmt"

	"echohole/internal/models"
)

// Action is a lifecycle event applied to a post.
type Action string

// Supported actions. Only ActionReport is available to end users.
const (
	ActionReport  Action = "report"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionDelete  Action = "delete"
)

// ParseAction validates an admin or user supplied action name.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionReport, ActionApprove, ActionReject, ActionDelete:
		return a, nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// Actor identifies who is applying an action.
type Actor int

const (
	ActorUser Actor = iota
	ActorAdmin
)

// Event types emitted by transitions.
const (
	EventNewPost      = "new_post"
	EventPostReported = "post_reported"
	EventPostApproved = "post_approved"
	EventPostRejected = "post_rejected"
	EventPostDeleted  = "post_deleted"
)

var (
	// ErrInvalidTransition is returned when an action does not apply to the current state.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrForbidden is returned when a user attempts an admin-only action.
	ErrForbidden = errors.New("action requires administrator")
)

// Policy selects the moderation variant.
type Policy struct {
	// RequirePreApproval holds new posts in pending until an administrator approves them.
	RequirePreApproval bool
}

// Transition describes one applied action. Counted is true when the action
// increments the report counter.
type Transition struct {
	From    models.PostStatus
	To      models.PostStatus
	Event   string
	Counted bool
}

// Changed reports whether the transition moves the post to a different state.
func (t Transition) Changed() bool {
	return t.From != t.To
}

// Machine applies actions according to a Policy.
type Machine struct {
	policy Policy
}

// NewMachine returns a Machine for policy.
func NewMachine(policy Policy) *Machine {
	return &Machine{policy: policy}
}

// Policy returns the active policy.
func (m *Machine) Policy() Policy {
	return m.policy
}

// InitialStatus is the state a freshly submitted post starts in.
func (m *Machine) InitialStatus() models.PostStatus {
	if m.policy.RequirePreApproval {
		return models.PostStatusPending
	}
	return models.PostStatusPublished
}

// ReviewQueue is the default status an administrator reviews.
func (m *Machine) ReviewQueue() models.PostStatus {
	if m.policy.RequirePreApproval {
		return models.PostStatusPending
	}
	return models.PostStatusReported
}

var adminTransitions = map[models.PostStatus]map[Action]models.PostStatus{
	models.PostStatusPending: {
		ActionApprove: models.PostStatusApproved,
		ActionReject:  models.PostStatusRejected,
	},
	models.PostStatusReported: {
		ActionApprove: models.PostStatusPublished,
		ActionReject:  models.PostStatusHidden,
	},
}

// Apply computes the transition for action on a post in state from.
//
// Reports on a published or approved post move it to reported. Reports on any
// other live state are recorded and counted but leave the state unchanged.
func (m *Machine) Apply(from models.PostStatus, action Action, actor Actor) (Transition, error) {
	if from == models.PostStatusDeleted || !from.Valid() {
		return Transition{}, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, action, from)
	}

	switch action {
	case ActionReport:
		to := from
		if from == models.PostStatusPublished || from == models.PostStatusApproved {
			to = models.PostStatusReported
		}
		return Transition{From: from, To: to, Event: EventPostReported, Counted: true}, nil

	case ActionApprove, ActionReject:
		if actor != ActorAdmin {
			return Transition{}, ErrForbidden
		}
		to, ok := adminTransitions[from][action]
		if !ok {
			return Transition{}, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, action, from)
		}
		event := EventPostApproved
		if action == ActionReject {
			event = EventPostRejected
		}
		return Transition{From: from, To: to, Event: event}, nil

	case ActionDelete:
		if actor != ActorAdmin {
			return Transition{}, ErrForbidden
		}
		return Transition{From: from, To: models.PostStatusDeleted, Event: EventPostDeleted}, nil
	}

	return Transition{}, fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, action)
}

// Visible reports whether posts in status are shown in the public feed.
func Visible(status models.PostStatus) bool {
	return status == models.PostStatusPublished || status == models.PostStatusApproved
}

// VisibleStatuses lists the publicly visible states.
func VisibleStatuses() []models.PostStatus {
	return []models.PostStatus{models.PostStatusPublished, models.PostStatusApproved}
}
