// Package workflow is the transfer approval state machine.
//
//	pending ──approve──▶ approved ──complete──▶ completed
//	   └─────reject────▶ rejected
//
// rejected and completed are terminal.
package workflow

import (
	"github.com/erazemk/arsenal/internal/apperr"
	"github.com/erazemk/arsenal/internal/model"
)

// Action is a workflow transition.
type Action string

const (
	Approve  Action = "approve"
	Reject   Action = "reject"
	Complete Action = "complete"
)

type edge struct {
	from   string
	action Action
}

var transitions = map[edge]string{
	{model.TransferPending, Approve}:   model.TransferApproved,
	{model.TransferPending, Reject}:    model.TransferRejected,
	{model.TransferApproved, Complete}: model.TransferCompleted,
}

// ActionFor maps a requested target status to the action that reaches it.
func ActionFor(status string) (Action, error) {
	switch status {
	case model.TransferApproved:
		return Approve, nil
	case model.TransferRejected:
		return Reject, nil
	case model.TransferCompleted:
		return Complete, nil
	case model.TransferPending:
		return "", apperr.InvalidTransition("transfers cannot be moved back to pending")
	}
	return "", apperr.Validation("unknown transfer status %q", status)
}

// Apply returns the state reached by taking action from current, or an
// InvalidStateTransition error if the guard fails.
func Apply(current string, action Action) (string, error) {
	next, ok := transitions[edge{current, action}]
	if !ok {
		return "", apperr.InvalidTransition("cannot %s a %s transfer", action, current)
	}
	return next, nil
}

// Terminal reports whether no transition leaves status.
func Terminal(status string) bool {
	for e := range transitions {
		if e.from == status {
			return false
		}
	}
	return true
}

// ValidStatus reports whether status is a known transfer status.
func ValidStatus(status string) bool {
	switch status {
	case model.TransferPending, model.TransferApproved, model.TransferCompleted, model.TransferRejected:
		return true
	}
	return false
}
