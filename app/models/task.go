package models

import "github.com/go-openapi/strfmt"

// Task represents a unit of work with the attributes that drive
// prioritization, plus the ids of the tasks it depends on. Score and
// Explanation are derived: they are filled in by a scoring pass and
// overwritten on every recalculation.
type Task struct {
	ID             string      `json:"id"`
	Title          string      `json:"title" validate:"required"`
	DueDate        strfmt.Date `json:"due_date" validate:"required"`
	EstimatedHours float64     `json:"estimated_hours" validate:"required,gt=0"`
	Importance     int         `json:"importance" validate:"required,min=1,max=10"`
	Dependencies   []string    `json:"dependencies"`
	Score          *float64    `json:"score,omitempty"`
	Explanation    *string     `json:"explanation,omitempty"`
}

// ScoreUpdate carries one task's recomputed score and explanation to the
// store.
type ScoreUpdate struct {
	ID          string
	Score       float64
	Explanation string
}
