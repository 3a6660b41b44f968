package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"taskpriority-go/app/graph"
	"taskpriority-go/app/models"
	"taskpriority-go/app/priority"

	"github.com/google/uuid"
)

// ErrTaskExists is returned when a create names an id already in the store.
var ErrTaskExists = errors.New("task id already exists")

// TaskRepository is the storage boundary the analyzer works against.
type TaskRepository interface {
	GetTasks(ctx context.Context) ([]models.Task, error)
	GetTaskByID(ctx context.Context, id string) (*models.Task, error)
	TaskExists(ctx context.Context, id string) (bool, error)
	CreateTask(ctx context.Context, task *models.Task) error
	UpdateScores(ctx context.Context, updates []models.ScoreUpdate) error
	DeleteTask(ctx context.Context, id string) error
}

// AnalyzerService runs scoring passes: it assembles one snapshot from the
// request batch and the stored task set, validates the dependency graph
// over it, scores tasks against it and persists the results.
type AnalyzerService struct {
	repo           TaskRepository
	defaultWeights models.PriorityWeights
	suggestLimit   int

	// mu serializes the fetch-validate-score-persist sequence so a pass
	// never runs against a snapshot another pass is overwriting.
	mu sync.Mutex
}

// NewAnalyzerService creates an AnalyzerService over the given repository.
func NewAnalyzerService(repo TaskRepository, weights models.PriorityWeights, suggestLimit int) *AnalyzerService {
	return &AnalyzerService{
		repo:           repo,
		defaultWeights: weights,
		suggestLimit:   suggestLimit,
	}
}

// Analyze scores a request batch against the union of the batch and the
// stored tasks. Request tasks shadow stored tasks with the same id; only
// request tasks are scored and returned, sorted by score descending with
// ties keeping request order. Scores of tasks that also live in the store
// are persisted as a side effect.
func (s *AnalyzerService) Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.AnalyzeResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.repo.GetTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stored tasks: %w", err)
	}

	tasks := make([]models.Task, len(req.Tasks))
	copy(tasks, req.Tasks)
	requested := make(map[string]bool, len(tasks))
	for i := range tasks {
		if tasks[i].ID == "" {
			tasks[i].ID = uuid.New().String()
		}
		requested[tasks[i].ID] = true
	}

	storedIDs := make(map[string]bool, len(stored))
	merged := make([]models.Task, 0, len(tasks)+len(stored))
	merged = append(merged, tasks...)
	for _, t := range stored {
		storedIDs[t.ID] = true
		if !requested[t.ID] {
			merged = append(merged, t)
		}
	}

	if err := graph.Validate(ctx, merged, s.repo.TaskExists); err != nil {
		return nil, err
	}

	snapshot := contextByID(merged)
	calc := priority.NewCalculator(s.weightsFor(req.Weights))

	var updates []models.ScoreUpdate
	for i := range tasks {
		score := calc.Score(tasks[i], snapshot)
		explanation := calc.Explain(tasks[i], snapshot)
		tasks[i].Score = &score
		tasks[i].Explanation = &explanation
		if storedIDs[tasks[i].ID] {
			updates = append(updates, models.ScoreUpdate{
				ID:          tasks[i].ID,
				Score:       score,
				Explanation: explanation,
			})
		}
	}
	if err := s.repo.UpdateScores(ctx, updates); err != nil {
		return nil, fmt.Errorf("persist scores: %w", err)
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return *tasks[i].Score > *tasks[j].Score
	})

	resp := &models.AnalyzeResponse{Tasks: tasks, Strategy: "default"}
	if req.Weights != nil {
		resp.Strategy = "custom"
		resp.Weights = req.Weights
	}
	return resp, nil
}

// Suggest re-scores the stored task set and returns the top tasks to work
// on, highest score first. A non-positive limit falls back to the service
// default.
func (s *AnalyzerService) Suggest(ctx context.Context, limit int) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = s.suggestLimit
	}

	tasks, err := s.repo.GetTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stored tasks: %w", err)
	}
	if err := graph.Validate(ctx, tasks, s.repo.TaskExists); err != nil {
		return nil, err
	}

	snapshot := contextByID(tasks)
	calc := priority.NewCalculator(s.defaultWeights)

	updates := make([]models.ScoreUpdate, 0, len(tasks))
	for i := range tasks {
		score := calc.Score(tasks[i], snapshot)
		explanation := calc.Explain(tasks[i], snapshot)
		tasks[i].Score = &score
		tasks[i].Explanation = &explanation
		updates = append(updates, models.ScoreUpdate{
			ID:          tasks[i].ID,
			Score:       score,
			Explanation: explanation,
		})
	}
	if err := s.repo.UpdateScores(ctx, updates); err != nil {
		return nil, fmt.Errorf("persist scores: %w", err)
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return *tasks[i].Score > *tasks[j].Score
	})
	if limit < len(tasks) {
		tasks = tasks[:limit]
	}
	return tasks, nil
}

// Create validates a new task's dependencies against the store, scores it
// against the stored context and persists it.
func (s *AnalyzerService) Create(ctx context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if task.ID == "" {
		task.ID = uuid.New().String()
	} else {
		exists, err := s.repo.TaskExists(ctx, task.ID)
		if err != nil {
			return fmt.Errorf("check task id: %w", err)
		}
		if exists {
			return ErrTaskExists
		}
	}

	stored, err := s.repo.GetTasks(ctx)
	if err != nil {
		return fmt.Errorf("load stored tasks: %w", err)
	}

	batch := make([]models.Task, 0, len(stored)+1)
	batch = append(batch, *task)
	batch = append(batch, stored...)
	if err := graph.Validate(ctx, batch, s.repo.TaskExists); err != nil {
		return err
	}

	snapshot := contextByID(batch)
	calc := priority.NewCalculator(s.defaultWeights)
	score := calc.Score(*task, snapshot)
	explanation := calc.Explain(*task, snapshot)
	task.Score = &score
	task.Explanation = &explanation

	if err := s.repo.CreateTask(ctx, task); err != nil {
		return fmt.Errorf("store task: %w", err)
	}
	return nil
}

// List returns stored tasks with basic offset/limit slicing.
func (s *AnalyzerService) List(ctx context.Context, offset, limit int) ([]models.Task, error) {
	tasks, err := s.repo.GetTasks(ctx)
	if err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if offset > len(tasks) {
		offset = len(tasks)
	}
	tasks = tasks[offset:]
	if limit > 0 && limit < len(tasks) {
		tasks = tasks[:limit]
	}
	return tasks, nil
}

// Get returns a single stored task.
func (s *AnalyzerService) Get(ctx context.Context, id string) (*models.Task, error) {
	return s.repo.GetTaskByID(ctx, id)
}

// Delete removes a stored task unless other tasks still depend on it.
func (s *AnalyzerService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.DeleteTask(ctx, id)
}

func (s *AnalyzerService) weightsFor(override *models.PriorityWeights) models.PriorityWeights {
	if override != nil {
		return *override
	}
	return s.defaultWeights
}

func contextByID(tasks []models.Task) map[string]models.Task {
	byID := make(map[string]models.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	return byID
}
