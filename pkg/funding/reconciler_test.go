package funding

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestReconcile_FailedDonationsDoNotCount(t *testing.T) {
	p := Reconcile(d(50000), []Record{
		{Amount: d(20000), Status: "success", DonorID: "a"},
		{Amount: d(5000), Status: "failed", DonorID: "b"},
	})

	assert.True(t, p.Raised.Equal(d(20000)), "raised = %s", p.Raised)
	assert.Equal(t, 40.0, p.Percentage)
	assert.True(t, p.Remaining.Equal(d(30000)), "remaining = %s", p.Remaining)
	assert.Equal(t, 1, p.DonorCount)
	assert.Equal(t, 1, p.SuccessfulCount)
	assert.False(t, p.Reached())
}

func TestReconcile_OverfundedIsClamped(t *testing.T) {
	p := Reconcile(d(1000), []Record{{Amount: d(1500), Status: "success", DonorID: "a"}})

	assert.True(t, p.Raised.Equal(d(1500)))
	assert.Equal(t, 100.0, p.Percentage)
	assert.True(t, p.Remaining.IsZero())
	assert.True(t, p.Reached())
}

func TestReconcile_PendingAndNegativeIgnored(t *testing.T) {
	p := Reconcile(d(100), []Record{
		{Amount: d(10), Status: "pending", DonorID: "a"},
		{Amount: d(-40), Status: "success", DonorID: "b"},
		{Amount: decimal.Decimal{}, Status: "success", DonorID: "c"},
		{Amount: d(25), Status: "success", DonorID: "b"},
	})

	assert.True(t, p.Raised.Equal(d(25)), "raised = %s", p.Raised)
	assert.Equal(t, 25.0, p.Percentage)
	assert.Equal(t, 2, p.DonorCount)
	assert.Equal(t, 3, p.SuccessfulCount)
}

func TestReconcile_Empty(t *testing.T) {
	p := Reconcile(d(500), nil)

	assert.True(t, p.Raised.IsZero())
	assert.Equal(t, 0.0, p.Percentage)
	assert.True(t, p.Remaining.Equal(d(500)))
	assert.Zero(t, p.DonorCount)
}

func TestPercentage_ZeroGoal(t *testing.T) {
	for _, raised := range []int64{0, 1, 999999} {
		assert.Equal(t, 0.0, Percentage(decimal.Zero, d(raised)))
	}
	assert.Equal(t, 0.0, Percentage(d(-10), d(5)))
}

func TestPercentage_Bounds(t *testing.T) {
	goals := []int64{1, 3, 7, 100, 50000}
	raised := []int64{0, 1, 2, 3, 50, 99, 100, 250, 1000000}

	for _, g := range goals {
		for _, r := range raised {
			pct := Percentage(d(g), d(r))
			assert.GreaterOrEqual(t, pct, 0.0)
			assert.LessOrEqual(t, pct, 100.0)
		}
	}
}

func TestPercentage_Rounding(t *testing.T) {
	assert.Equal(t, 33.33, Percentage(d(3), d(1)))
	assert.Equal(t, 66.67, Percentage(d(3), d(2)))
}

func TestRemaining_NeverNegative(t *testing.T) {
	tests := []struct {
		goal, raised, want int64
	}{
		{100, 0, 100},
		{100, 40, 60},
		{100, 100, 0},
		{100, 150, 0},
		{0, 10, 0},
	}
	for _, tt := range tests {
		got := Remaining(d(tt.goal), d(tt.raised))
		assert.True(t, got.Equal(d(tt.want)), "Remaining(%d, %d) = %s", tt.goal, tt.raised, got)
	}
}

func TestReached(t *testing.T) {
	assert.True(t, Reached(d(100), d(100)))
	assert.False(t, Reached(d(100), d(99)))
	assert.False(t, Reached(decimal.Zero, d(10)))
}

func TestReconcile_DecimalAmountsDoNotDrift(t *testing.T) {
	records := make([]Record, 0, 10)
	for i := 0; i < 10; i++ {
		records = append(records, Record{Amount: decimal.RequireFromString("0.10"), Status: "success"})
	}
	p := Reconcile(d(1), records)

	assert.True(t, p.Raised.Equal(d(1)), "raised = %s", p.Raised)
	assert.Equal(t, 100.0, p.Percentage)
	assert.Zero(t, p.DonorCount)
}
