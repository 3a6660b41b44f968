// Package graph validates the task dependency graph before scoring.
package graph

import (
	"context"
	"fmt"

	"taskpriority-go/app/models"
)

// ExistsFunc reports whether a task id can be resolved outside the batch
// being validated, typically against the task store.
type ExistsFunc func(ctx context.Context, id string) (bool, error)

// MissingDependencyError reports an edge whose target resolves neither in
// the batch nor through the external lookup.
type MissingDependencyError struct {
	TaskID       string
	DependencyID string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("task %s depends on non-existent task %s", e.TaskID, e.DependencyID)
}

// CircularDependencyError reports a cycle in the dependency graph. TaskID
// is the task whose traversal first uncovered the cycle.
type CircularDependencyError struct {
	TaskID string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency detected involving task %s", e.TaskID)
}

// Validate checks every dependency edge of the given tasks. Edge targets
// must resolve within the batch or through exists, and the graph
// restricted to the batch must be acyclic. The first problem found aborts
// the whole batch. Traversal follows input order across tasks and
// declaration order within a dependency list, which makes the reported
// culprit deterministic.
func Validate(ctx context.Context, tasks []models.Task, exists ExistsFunc) error {
	adjacency := make(map[string][]string, len(tasks))
	inBatch := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		adjacency[t.ID] = t.Dependencies
		inBatch[t.ID] = true
	}

	visited := make(map[string]bool, len(tasks))
	onStack := make(map[string]bool)

	for _, root := range tasks {
		if visited[root.ID] {
			continue
		}
		cycle, err := walk(ctx, root.ID, adjacency, inBatch, visited, onStack, exists)
		if err != nil {
			return err
		}
		if cycle {
			return &CircularDependencyError{TaskID: root.ID}
		}
	}
	return nil
}

type frame struct {
	id   string
	next int
}

// walk runs an iterative depth-first traversal carrying the visited and
// on-stack sets explicitly instead of relying on call-stack recursion. It
// reports true as soon as an edge reaches a node on the current stack.
func walk(ctx context.Context, start string, adjacency map[string][]string, inBatch, visited, onStack map[string]bool, exists ExistsFunc) (bool, error) {
	stack := []frame{{id: start}}
	visited[start] = true
	onStack[start] = true

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		deps := adjacency[top.id]
		if top.next >= len(deps) {
			onStack[top.id] = false
			stack = stack[:len(stack)-1]
			continue
		}
		dep := deps[top.next]
		top.next++

		if !inBatch[dep] {
			ok, err := resolveExternal(ctx, dep, exists)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, &MissingDependencyError{TaskID: top.id, DependencyID: dep}
			}
			// Resolved by the store; nothing to traverse.
			continue
		}
		if onStack[dep] {
			return true, nil
		}
		if visited[dep] {
			continue
		}
		visited[dep] = true
		onStack[dep] = true
		stack = append(stack, frame{id: dep})
	}
	return false, nil
}

func resolveExternal(ctx context.Context, id string, exists ExistsFunc) (bool, error) {
	if exists == nil {
		return false, nil
	}
	ok, err := exists(ctx, id)
	if err != nil {
		return false, fmt.Errorf("resolve dependency %s: %w", id, err)
	}
	return ok, nil
}
