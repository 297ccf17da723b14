// Package lifecycle holds the status rules of a donation request.
//
// A request starts pending. An admin either approves or rejects it, and an
// approved request becomes achieved once it is fully funded (or when an admin
// forces it). Rejected and achieved are terminal; nothing leads back to pending.
package lifecycle

import (
	"errors"
	"fmt"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusAchieved Status = "achieved"
)

var (
	ErrUnknownStatus     = errors.New("unknown request status")
	ErrIllegalTransition = errors.New("illegal request status transition")
)

var edges = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusAchieved},
}

// All returns every known status in lifecycle order.
func All() []Status {
	return []Status{StatusPending, StatusApproved, StatusRejected, StatusAchieved}
}

func Parse(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusAchieved:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return s.Valid() && len(edges[s]) == 0
}

// AcceptsDonations reports whether donors may fund a request in this status.
func (s Status) AcceptsDonations() bool {
	return s == StatusApproved
}

func (s Status) String() string {
	return string(s)
}

// Next returns the statuses reachable from s in one step.
func Next(s Status) []Status {
	out := make([]Status, len(edges[s]))
	copy(out, edges[s])
	return out
}

func CanTransition(from, to Status) bool {
	for _, next := range edges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Decision is the outcome of evaluating a requested status change.
type Decision struct {
	From Status
	To   Status
	// Changed is false when the request already holds the target status.
	Changed bool
	// Override marks a manual move to achieved while the goal is not yet reached.
	Override bool
}

// Decide evaluates moving a request from one status to another. Asking for the
// status the request already has is a successful no-op. fundingReached tells
// whether the raised amount covers the goal; it only matters for achieved.
func Decide(from, to Status, fundingReached bool) (Decision, error) {
	if !from.Valid() {
		return Decision{}, fmt.Errorf("%w: %q", ErrUnknownStatus, from)
	}
	if !to.Valid() {
		return Decision{}, fmt.Errorf("%w: %q", ErrUnknownStatus, to)
	}

	d := Decision{From: from, To: to}
	if from == to {
		return d, nil
	}
	if !CanTransition(from, to) {
		return Decision{}, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}

	d.Changed = true
	d.Override = to == StatusAchieved && !fundingReached
	return d, nil
}
