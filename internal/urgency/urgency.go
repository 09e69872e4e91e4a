// Package urgency computes the weighted-polynomial task ordering score
// described in spec.md §4.6.
package urgency

import (
	"math"
	"strconv"
	"time"

	"github.com/taskwarrior-go/task/internal/dom"
	"github.com/taskwarrior-go/task/internal/task"
)

const epsilon = 1e-6

// Coefficients holds every configured weight, keyed the way they appear
// in the config file (urgency.<term>.coefficient etc).
type Coefficients struct {
	Priority     float64
	Project      float64
	Active       float64
	Scheduled    float64
	Waiting      float64
	Blocked      float64
	Blocking     float64
	Annotations  float64
	Tags         float64
	Next         float64
	Due          float64
	Age          float64
	AgeMax       float64
	PerProject   map[string]float64
	PerTag       map[string]float64
	PerUDA       map[string]float64
}

// DefaultCoefficients mirrors taskwarrior's stock urgency.*.coefficient
// defaults, used when the config file is silent on a term.
func DefaultCoefficients() Coefficients {
	return Coefficients{
		Priority:    6.0,
		Project:     1.0,
		Active:      4.0,
		Scheduled:   5.0,
		Waiting:     -3.0,
		Blocked:     -5.0,
		Blocking:    8.0,
		Annotations: 1.0,
		Tags:        1.0,
		Next:        15.0,
		Due:         12.0,
		Age:         2.0,
		AgeMax:      365,
		PerProject:  map[string]float64{},
		PerTag:      map[string]float64{},
		PerUDA:      map[string]float64{},
	}
}

// Compute evaluates the full urgency polynomial for t against resolver's
// view of the store, skipping any term whose coefficient is within
// epsilon of zero (spec.md §4.6).
func Compute(t *task.Task, resolver dom.Resolver, coef Coefficients, now time.Time) float64 {
	var sum float64
	add := func(c, v float64) {
		if math.Abs(c) < epsilon {
			return
		}
		sum += c * v
	}

	add(coef.Priority, priorityTerm(t))
	add(coef.Project, boolTerm(t.Get("project") != ""))
	add(coef.Active, boolTerm(t.Get("start") != ""))
	add(coef.Scheduled, boolTerm(scheduledDue(t, now)))
	add(coef.Waiting, boolTerm(t.Status() == task.StatusWaiting))
	add(coef.Blocked, boolTerm(dom.IsBlocked(t, resolver.Lookup)))
	add(coef.Blocking, boolTerm(resolver.IsBlocking != nil && resolver.IsBlocking(t.UUID())))
	add(coef.Annotations, countTerm(len(t.Annotations())))
	add(coef.Tags, countTerm(len(t.Tags())))
	add(coef.Next, boolTerm(t.HasTag("next")))
	add(coef.Due, dueTerm(t, now))
	add(coef.Age, ageTerm(t, now, coef.AgeMax))

	if proj := t.Get("project"); proj != "" {
		if c, ok := coef.PerProject[proj]; ok {
			sum += c
		}
	}
	for _, tag := range t.Tags() {
		if c, ok := coef.PerTag[tag]; ok {
			sum += c
		}
	}
	for name := range coef.PerUDA {
		if t.Get(name) != "" {
			sum += coef.PerUDA[name]
		}
	}

	return sum
}

func priorityTerm(t *task.Task) float64 {
	switch t.Priority() {
	case task.PriorityHigh:
		return 1.0
	case task.PriorityMedium:
		return 0.65
	case task.PriorityLow:
		return 0.3
	default:
		return 0
	}
}

func boolTerm(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func countTerm(n int) float64 {
	switch {
	case n >= 3:
		return 1.0
	case n == 2:
		return 0.9
	case n == 1:
		return 0.8
	default:
		return 0
	}
}

func scheduledDue(t *task.Task, now time.Time) bool {
	sched := t.Get("scheduled")
	if sched == "" {
		return false
	}
	epoch, ok := epochAttr(sched)
	return ok && epoch <= now.Unix()
}

func dueTerm(t *task.Task, now time.Time) float64 {
	due := t.Get("due")
	if due == "" {
		return 0
	}
	epoch, ok := epochAttr(due)
	if !ok {
		return 0
	}
	days := float64(now.Unix()-epoch) / 86400.0
	switch {
	case days >= 7:
		return 1.0
	case days <= -14:
		return 0.2
	default:
		// linear from 0.2 at -14d to 1.0 at 7d
		return 0.2 + (days+14)/21*0.8
	}
}

func ageTerm(t *task.Task, now time.Time, ageMax float64) float64 {
	entry := t.Get("entry")
	if entry == "" || ageMax <= 0 {
		return 0
	}
	epoch, ok := epochAttr(entry)
	if !ok {
		return 0
	}
	days := float64(now.Unix()-epoch) / 86400.0
	if days < 0 {
		days = 0
	}
	v := days / ageMax
	if v > 1 {
		v = 1
	}
	return v
}

func epochAttr(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}
