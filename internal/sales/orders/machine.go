package orders

import (
	"fmt"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

type effect int

const (
	effectNone effect = iota
	effectSubmit
	effectApprove
	effectDeliver
	effectInvoice
)

// step is the outcome of a permitted transition.
type step struct {
	to       Status
	approval ApprovalStatus
	effect   effect
}

// plan returns the step for action taken from status, or an ErrInvalidState error.
// Every Action must have a case here; ParseAction guards the default branch.
func plan(action Action, from Status) (step, error) {
	switch action {
	case ActionSubmit:
		if from == StatusDraft {
			return step{to: StatusPendingApproval, approval: ApprovalPending, effect: effectSubmit}, nil
		}
	case ActionApprove:
		if from == StatusPendingApproval {
			return step{to: StatusApproved, approval: ApprovalApproved, effect: effectApprove}, nil
		}
	case ActionDeliver:
		if from == StatusApproved {
			return step{to: StatusDelivered, effect: effectDeliver}, nil
		}
	case ActionInvoice:
		if from == StatusDelivered {
			return step{to: StatusInvoiced, effect: effectInvoice}, nil
		}
	case ActionCancel:
		if from == StatusDraft || from == StatusPendingApproval {
			return step{to: StatusCancelled, approval: ApprovalRejected}, nil
		}
	default:
		return step{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	return step{}, fmt.Errorf("orders: cannot %s an order in status %s: %w", action, from, shared.ErrInvalidState)
}

// Allowed reports whether action may be taken from status.
func Allowed(action Action, from Status) bool {
	_, err := plan(action, from)
	return err == nil
}
