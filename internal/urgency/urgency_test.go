package urgency

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/taskwarrior-go/task/internal/dom"
	"github.com/taskwarrior-go/task/internal/task"
)

func TestComputeSkipsZeroCoefficients(t *testing.T) {
	tk := task.New()
	tk.Set("priority", "H")
	coef := Coefficients{} // all zero
	u := Compute(tk, dom.Resolver{}, coef, time.Now())
	assert.Zero(t, u)
}

func TestComputePriorityAndNext(t *testing.T) {
	tk := task.New()
	tk.Set("priority", "H")
	tk.AddTag("next")
	coef := DefaultCoefficients()
	u := Compute(tk, dom.Resolver{}, coef, time.Now())
	assert.Greater(t, u, coef.Next)
}

func TestDueTermPiecewiseLinear(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tk := task.New()
	tk.Set("due", "0")
	v := dueTerm(tk, now)
	assert.InDelta(t, 1.0, v, 1e-9, "due far in the past saturates at 1.0")

	future := task.New()
	future.Set("due", "100000000000")
	v2 := dueTerm(future, now)
	assert.InDelta(t, 0.2, v2, 1e-9, "due far in the future saturates at 0.2")
}

func TestAgeTermClampedToMax(t *testing.T) {
	now := time.Now()
	tk := task.New()
	tk.Set("entry", "0")
	v := ageTerm(tk, now, 365)
	assert.InDelta(t, 1.0, v, 1e-6)
}
