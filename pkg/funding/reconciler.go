// Package funding derives how far a donation request is from its goal.
//
// Every surface that shows progress (admin list, admin detail, the public
// status page, donor and recipient dashboards, the Go client) goes through
// Reconcile so they all agree on the same numbers.
package funding

import (
	"github.com/shopspring/decimal"
)

const StatusSuccess = "success"

var hundred = decimal.NewFromInt(100)

// Record is the part of a donation that matters for progress.
type Record struct {
	Amount  decimal.Decimal
	Status  string
	DonorID string
}

type Progress struct {
	Goal            decimal.Decimal `json:"goal"`
	Raised          decimal.Decimal `json:"raised"`
	Remaining       decimal.Decimal `json:"remaining"`
	Percentage      float64         `json:"percentage"`
	DonorCount      int             `json:"donor_count"`
	SuccessfulCount int             `json:"successful_count"`
}

// Reached reports whether the raised amount covers the goal.
func (p Progress) Reached() bool {
	return Reached(p.Goal, p.Raised)
}

// Reconcile sums the successful records against goal. Records in any other
// status are ignored and non-positive amounts contribute nothing.
func Reconcile(goal decimal.Decimal, records []Record) Progress {
	raised := decimal.Zero
	donors := make(map[string]struct{})
	successful := 0

	for _, r := range records {
		if r.Status != StatusSuccess {
			continue
		}
		successful++
		if r.DonorID != "" {
			donors[r.DonorID] = struct{}{}
		}
		if r.Amount.IsPositive() {
			raised = raised.Add(r.Amount)
		}
	}

	return Progress{
		Goal:            goal,
		Raised:          raised,
		Remaining:       Remaining(goal, raised),
		Percentage:      Percentage(goal, raised),
		DonorCount:      len(donors),
		SuccessfulCount: successful,
	}
}

// Percentage is raised/goal*100 clamped to [0, 100] and rounded to two
// places. A non-positive goal yields 0.
func Percentage(goal, raised decimal.Decimal) float64 {
	if !goal.IsPositive() || !raised.IsPositive() {
		return 0
	}
	pct := raised.Div(goal).Mul(hundred)
	if pct.GreaterThan(hundred) {
		pct = hundred
	}
	return pct.Round(2).InexactFloat64()
}

// Remaining is max(0, goal-raised).
func Remaining(goal, raised decimal.Decimal) decimal.Decimal {
	left := goal.Sub(raised)
	if left.IsNegative() {
		return decimal.Zero
	}
	return left
}

func Reached(goal, raised decimal.Decimal) bool {
	return goal.IsPositive() && raised.GreaterThanOrEqual(goal)
}
