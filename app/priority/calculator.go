// Package priority implements the task priority scoring engine.
package priority

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"

	"taskpriority-go/app/models"
)

// Calculator computes priority scores on a 0-100 scale from a task's
// urgency, importance, effort and dependency fan-in.
type Calculator struct {
	weights models.PriorityWeights
	now     func() time.Time
}

// NewCalculator creates a Calculator using the given weights.
func NewCalculator(weights models.PriorityWeights) *Calculator {
	return &Calculator{weights: weights, now: time.Now}
}

// Score computes the weighted priority score for a task. The context holds
// every task evaluated together, keyed by id; it is needed to determine
// how many other tasks depend on this one.
func (c *Calculator) Score(task models.Task, context map[string]models.Task) float64 {
	urgency := c.urgencyScore(task.DueDate)
	importance := float64(task.Importance) / 10.0 * 100
	effort := effortScore(task.EstimatedHours)
	dependency := dependencyScore(task, context)

	score := c.weights.Urgency*urgency +
		c.weights.Importance*importance +
		c.weights.Effort*effort +
		c.weights.Dependencies*dependency

	return clamp(score, 0, 100)
}

// Explain renders a comma-joined, human-readable breakdown of the factors
// behind a task's score.
func (c *Calculator) Explain(task models.Task, context map[string]models.Task) string {
	var parts []string

	days := c.daysUntilDue(task.DueDate)
	switch {
	case days < 0:
		parts = append(parts, fmt.Sprintf("Past due by %d days", -days))
	case days == 0:
		parts = append(parts, "Due today")
	case days <= 3:
		parts = append(parts, fmt.Sprintf("Due in %d days", days))
	}

	if task.Importance >= 8 {
		parts = append(parts, "High importance")
	} else if task.Importance <= 3 {
		parts = append(parts, "Low importance")
	}

	if task.EstimatedHours <= 2 {
		parts = append(parts, "Quick task")
	} else if task.EstimatedHours >= 8 {
		parts = append(parts, "Time-consuming")
	}

	if len(task.Dependencies) > 0 {
		parts = append(parts, fmt.Sprintf("Depends on %d tasks", len(task.Dependencies)))
	}

	if n := dependentCount(task.ID, context); n > 0 {
		plural := ""
		if n > 1 {
			plural = "s"
		}
		parts = append(parts, fmt.Sprintf("Blocks %d other task%s", n, plural))
	}

	if len(parts) == 0 {
		return "No specific factors identified"
	}
	return strings.Join(parts, ", ")
}

func (c *Calculator) urgencyScore(due strfmt.Date) float64 {
	days := c.daysUntilDue(due)
	switch {
	case days < 0:
		return 100
	case days == 0:
		return 90
	case days == 1:
		return 80
	case days <= 3:
		return 70
	case days <= 7:
		return 50
	case days <= 14:
		return 30
	case days <= 30:
		return 20
	default:
		return 10
	}
}

// daysUntilDue counts whole calendar days from today to the due date.
// Both sides are normalized to UTC midnight so the count never depends on
// wall-clock time or DST transitions.
func (c *Calculator) daysUntilDue(due strfmt.Date) int {
	now := c.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	d := time.Time(due)
	dueDay := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return int(dueDay.Sub(today).Hours() / 24)
}

// effortScore rewards quick wins: the fewer estimated hours, the higher
// the sub-score.
func effortScore(hours float64) float64 {
	switch {
	case hours <= 1:
		return 100
	case hours <= 4:
		return 80
	case hours <= 8:
		return 60
	case hours <= 16:
		return 40
	default:
		return 20
	}
}

// dependencyScore is 0 for tasks without declared dependencies. For tasks
// that have them, it is 100 when at least one other task in the context
// depends on this one. The gating on the task's own dependency list is a
// long-standing quirk of the formula and is kept as-is; Explain counts
// dependents without it.
func dependencyScore(task models.Task, context map[string]models.Task) float64 {
	if len(task.Dependencies) == 0 {
		return 0
	}
	if dependentCount(task.ID, context) > 0 {
		return 100
	}
	return 0
}

// dependentCount is the fan-in: how many other tasks in the context list
// id as a dependency.
func dependentCount(id string, context map[string]models.Task) int {
	count := 0
	for _, other := range context {
		if other.ID == id {
			continue
		}
		for _, dep := range other.Dependencies {
			if dep == id {
				count++
				break
			}
		}
	}
	return count
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
