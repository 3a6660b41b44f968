package services

import (
	"context"
	"fmt"
	"time"

	"taskpriority-go/app/models"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const dateLayout = "2006-01-02"

// TaskService stores tasks in Neo4j. Each task is a (:Task) node and each
// dependency a (:Task)-[:DEPENDS_ON]->(:Task) relationship carrying its
// position in the declaration order.
type TaskService struct {
	driver neo4j.DriverWithContext
}

// NewTaskService creates a new instance of TaskService.
func NewTaskService(driver neo4j.DriverWithContext) *TaskService {
	return &TaskService{driver: driver}
}

// GetTasks retrieves all tasks with their dependency ids, in creation
// order.
func (s *TaskService) GetTasks(ctx context.Context) ([]models.Task, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (t:Task) "+
				"OPTIONAL MATCH (t)-[r:DEPENDS_ON]->(d:Task) "+
				"WITH t, r, d ORDER BY t.created_at, r.position "+
				"RETURN t.id AS id, t.title AS title, t.due_date AS due_date, "+
				"t.estimated_hours AS estimated_hours, t.importance AS importance, "+
				"t.score AS score, t.explanation AS explanation, "+
				"collect(d.id) AS dependencies, t.created_at AS created_at "+
				"ORDER BY created_at",
			nil,
		)
		if err != nil {
			return nil, err
		}

		var tasks []models.Task
		for res.Next(ctx) {
			task, err := scanTask(res.Record().Values)
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, task)
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return tasks, nil
	})
	if err != nil {
		return nil, err
	}

	tasks, _ := result.([]models.Task)
	return tasks, nil
}

// GetTaskByID retrieves a single task by its ID, or ErrTaskNotFound.
func (s *TaskService) GetTaskByID(ctx context.Context, taskID string) (*models.Task, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (t:Task {id: $id}) "+
				"OPTIONAL MATCH (t)-[r:DEPENDS_ON]->(d:Task) "+
				"WITH t, r, d ORDER BY r.position "+
				"RETURN t.id AS id, t.title AS title, t.due_date AS due_date, "+
				"t.estimated_hours AS estimated_hours, t.importance AS importance, "+
				"t.score AS score, t.explanation AS explanation, "+
				"collect(d.id) AS dependencies",
			map[string]any{"id": taskID},
		)
		if err != nil {
			return nil, err
		}

		if res.Next(ctx) {
			task, err := scanTask(res.Record().Values)
			if err != nil {
				return nil, err
			}
			return &task, nil
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, ErrTaskNotFound
	}
	return result.(*models.Task), nil
}

// TaskExists reports whether a task with the given id is stored.
func (s *TaskService) TaskExists(ctx context.Context, taskID string) (bool, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (t:Task {id: $id}) RETURN count(t) > 0 AS exists",
			map[string]any{"id": taskID},
		)
		if err != nil {
			return nil, err
		}
		if res.Next(ctx) {
			return res.Record().Values[0].(bool), nil
		}
		return false, res.Err()
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

// CreateTask stores a task node and its dependency relationships in one
// transaction. A missing id is replaced with a generated UUID.
func (s *TaskService) CreateTask(ctx context.Context, task *models.Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx,
			"CREATE (t:Task {id: $id, title: $title, due_date: $due_date, "+
				"estimated_hours: $estimated_hours, importance: $importance, "+
				"score: $score, explanation: $explanation, created_at: timestamp()})",
			map[string]any{
				"id":              task.ID,
				"title":           task.Title,
				"due_date":        time.Time(task.DueDate).Format(dateLayout),
				"estimated_hours": task.EstimatedHours,
				"importance":      task.Importance,
				"score":           nullable(task.Score),
				"explanation":     nullable(task.Explanation),
			},
		)
		if err != nil {
			return nil, err
		}

		for i, depID := range task.Dependencies {
			_, err := tx.Run(ctx,
				"MATCH (t:Task {id: $taskID}), (d:Task {id: $depID}) "+
					"CREATE (t)-[:DEPENDS_ON {position: $position}]->(d)",
				map[string]any{
					"taskID":   task.ID,
					"depID":    depID,
					"position": i,
				},
			)
			if err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}

// UpdateScores writes the outcome of a scoring pass. All updates commit in
// a single transaction so a pass is never half-persisted.
func (s *TaskService) UpdateScores(ctx context.Context, updates []models.ScoreUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	rows := make([]map[string]any, 0, len(updates))
	for _, u := range updates {
		rows = append(rows, map[string]any{
			"id":          u.ID,
			"score":       u.Score,
			"explanation": u.Explanation,
		})
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx,
			"UNWIND $rows AS row "+
				"MATCH (t:Task {id: row.id}) "+
				"SET t.score = row.score, t.explanation = row.explanation",
			map[string]any{"rows": rows},
		)
		return nil, err
	})
	return err
}

// DeleteTask deletes a task and its relationships. The delete is refused
// with a DependentTasksError while other tasks still depend on it.
func (s *TaskService) DeleteTask(ctx context.Context, taskID string) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (d:Task)-[:DEPENDS_ON]->(t:Task {id: $id}) "+
				fmt.Sprintf("RETURN count(DISTINCT d) AS dependents, collect(DISTINCT d.title)[0..%d] AS titles", DependentTitlePreview),
			map[string]any{"id": taskID},
		)
		if err != nil {
			return nil, err
		}
		if res.Next(ctx) {
			record := res.Record()
			dependents := int(record.Values[0].(int64))
			if dependents > 0 {
				return nil, &DependentTasksError{
					TaskID: taskID,
					Count:  dependents,
					Titles: toStrings(record.Values[1]),
				}
			}
		} else if err := res.Err(); err != nil {
			return nil, err
		}

		res, err = tx.Run(ctx,
			"MATCH (t:Task {id: $id}) DETACH DELETE t RETURN count(t) AS deleted",
			map[string]any{"id": taskID},
		)
		if err != nil {
			return nil, err
		}
		if res.Next(ctx) {
			if res.Record().Values[0].(int64) == 0 {
				return nil, ErrTaskNotFound
			}
			return nil, nil
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return nil, ErrTaskNotFound
	})
	return err
}

// scanTask maps one result row (id, title, due_date, estimated_hours,
// importance, score, explanation, dependencies) onto a Task.
func scanTask(values []any) (models.Task, error) {
	task := models.Task{
		ID:           values[0].(string),
		Title:        values[1].(string),
		Importance:   int(values[4].(int64)),
		Dependencies: toStrings(values[7]),
	}

	due, err := time.Parse(dateLayout, values[2].(string))
	if err != nil {
		return models.Task{}, fmt.Errorf("parse due date of task %s: %w", task.ID, err)
	}
	task.DueDate = strfmt.Date(due)

	task.EstimatedHours = toFloat(values[3])

	if values[5] != nil {
		score := toFloat(values[5])
		task.Score = &score
	}
	if values[6] != nil {
		explanation := values[6].(string)
		task.Explanation = &explanation
	}
	return task, nil
}

func toStrings(value any) []string {
	items, _ := value.([]any)
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.(string))
	}
	return out
}

func toFloat(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	default:
		return 0
	}
}

func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}
