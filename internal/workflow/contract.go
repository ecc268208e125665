// Package workflow holds the pure lifecycle rules for contracts,
// calendar plans and route sheets. Services consult these tables before
// touching storage; nothing here performs I/O.
package workflow

import (
	"fmt"

	"github.com/profmed/crm-api/internal/model"
)

// TransitionError reports a lifecycle action attempted from a state
// that does not allow it.
type TransitionError struct {
	Entity string
	Action string
	From   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: action %q not allowed from status %q", e.Entity, e.Action, e.From)
}

// contractTransitions maps each action to the statuses it may fire
// from and the status it lands in.
var contractTransitions = map[model.ContractAction]map[model.ContractStatus]model.ContractStatus{
	model.ContractActionSentForApproval: {
		model.ContractStatusDraft: model.ContractStatusPendingApproval,
	},
	model.ContractActionApproved: {
		model.ContractStatusPendingApproval: model.ContractStatusApproved,
		model.ContractStatusSent:            model.ContractStatusApproved,
	},
	model.ContractActionRejected: {
		model.ContractStatusPendingApproval: model.ContractStatusRejected,
		model.ContractStatusSent:            model.ContractStatusRejected,
	},
	model.ContractActionResentForApproval: {
		model.ContractStatusRejected: model.ContractStatusPendingApproval,
	},
	model.ContractActionSent: {
		model.ContractStatusApproved: model.ContractStatusSent,
	},
	model.ContractActionExecuted: {
		model.ContractStatusApproved: model.ContractStatusExecuted,
		model.ContractStatusSent:     model.ContractStatusExecuted,
	},
	model.ContractActionCancelled: {
		model.ContractStatusDraft:           model.ContractStatusCancelled,
		model.ContractStatusPendingApproval: model.ContractStatusCancelled,
		model.ContractStatusApproved:        model.ContractStatusCancelled,
		model.ContractStatusSent:            model.ContractStatusCancelled,
	},
}

// NextContractStatus resolves the status an action moves a contract to
func NextContractStatus(action model.ContractAction, from model.ContractStatus) (model.ContractStatus, error) {
	targets, ok := contractTransitions[action]
	if !ok {
		return "", &TransitionError{Entity: "contract", Action: string(action), From: string(from)}
	}
	next, ok := targets[from]
	if !ok {
		return "", &TransitionError{Entity: "contract", Action: string(action), From: string(from)}
	}
	return next, nil
}

// ContractEditable reports whether contract fields may still be changed
func ContractEditable(status model.ContractStatus) bool {
	return status == model.ContractStatusDraft || status == model.ContractStatusRejected
}

// EmployerCanDecide reports whether the employer may still approve or
// reject the contract: it must be awaiting a decision and not carry an
// employer approval yet.
func EmployerCanDecide(c *model.Contract) bool {
	if c.EmployerApprovedAt != nil {
		return false
	}
	return c.Status == model.ContractStatusPendingApproval || c.Status == model.ContractStatusSent
}
