package services

import (
	"context"
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"taskpriority-go/app/graph"
	"taskpriority-go/app/models"
)

// mockTaskRepo is a mock implementation of TaskRepository.
type mockTaskRepo struct {
	mock.Mock
}

func (m *mockTaskRepo) GetTasks(ctx context.Context) ([]models.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Task), args.Error(1)
}

func (m *mockTaskRepo) GetTaskByID(ctx context.Context, id string) (*models.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *mockTaskRepo) TaskExists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockTaskRepo) CreateTask(ctx context.Context, task *models.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *mockTaskRepo) UpdateScores(ctx context.Context, updates []models.ScoreUpdate) error {
	args := m.Called(ctx, updates)
	return args.Error(0)
}

func (m *mockTaskRepo) DeleteTask(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func dueIn(days int) strfmt.Date {
	return strfmt.Date(time.Now().AddDate(0, 0, days))
}

func task(id string, days, importance int, hours float64, deps ...string) models.Task {
	return models.Task{
		ID:             id,
		Title:          "task " + id,
		DueDate:        dueIn(days),
		EstimatedHours: hours,
		Importance:     importance,
		Dependencies:   deps,
	}
}

func newAnalyzer(repo TaskRepository) *AnalyzerService {
	return NewAnalyzerService(repo, models.DefaultPriorityWeights(), 3)
}

func TestAnalyzerService_Analyze(t *testing.T) {
	t.Run("sorts by score descending with default strategy", func(t *testing.T) {
		repo := new(mockTaskRepo)
		repo.On("GetTasks", mock.Anything).Return([]models.Task{}, nil)
		repo.On("UpdateScores", mock.Anything, mock.Anything).Return(nil)

		svc := newAnalyzer(repo)
		resp, err := svc.Analyze(context.Background(), models.AnalyzeRequest{
			Tasks: []models.Task{
				task("relaxed", 14, 3, 8),
				task("urgent", 1, 9, 2),
			},
		})
		require.NoError(t, err)

		require.Len(t, resp.Tasks, 2)
		assert.Equal(t, "urgent", resp.Tasks[0].ID)
		assert.Equal(t, "relaxed", resp.Tasks[1].ID)
		assert.Greater(t, *resp.Tasks[0].Score, *resp.Tasks[1].Score)
		assert.Equal(t, "default", resp.Strategy)
		assert.Nil(t, resp.Weights)
		for _, got := range resp.Tasks {
			require.NotNil(t, got.Score)
			require.NotNil(t, got.Explanation)
			assert.GreaterOrEqual(t, *got.Score, 0.0)
			assert.LessOrEqual(t, *got.Score, 100.0)
		}
	})

	t.Run("ties keep request order", func(t *testing.T) {
		repo := new(mockTaskRepo)
		repo.On("GetTasks", mock.Anything).Return([]models.Task{}, nil)
		repo.On("UpdateScores", mock.Anything, mock.Anything).Return(nil)

		svc := newAnalyzer(repo)
		resp, err := svc.Analyze(context.Background(), models.AnalyzeRequest{
			Tasks: []models.Task{
				task("first", 2, 5, 3),
				task("second", 2, 5, 3),
			},
		})
		require.NoError(t, err)

		assert.Equal(t, "first", resp.Tasks[0].ID)
		assert.Equal(t, "second", resp.Tasks[1].ID)
	})

	t.Run("custom weights are echoed back", func(t *testing.T) {
		repo := new(mockTaskRepo)
		repo.On("GetTasks", mock.Anything).Return([]models.Task{}, nil)
		repo.On("UpdateScores", mock.Anything, mock.Anything).Return(nil)

		weights := &models.PriorityWeights{Urgency: 0.2, Importance: 0.7, Effort: 0.05, Dependencies: 0.05}
		svc := newAnalyzer(repo)
		resp, err := svc.Analyze(context.Background(), models.AnalyzeRequest{
			Tasks:   []models.Task{task("a", 1, 9, 2)},
			Weights: weights,
		})
		require.NoError(t, err)

		assert.Equal(t, "custom", resp.Strategy)
		assert.Equal(t, weights, resp.Weights)
	})

	t.Run("generates ids for tasks without one", func(t *testing.T) {
		repo := new(mockTaskRepo)
		repo.On("GetTasks", mock.Anything).Return([]models.Task{}, nil)
		repo.On("UpdateScores", mock.Anything, mock.Anything).Return(nil)

		anonymous := task("", 1, 5, 2)
		svc := newAnalyzer(repo)
		resp, err := svc.Analyze(context.Background(), models.AnalyzeRequest{
			Tasks: []models.Task{anonymous},
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Tasks[0].ID)
	})

	t.Run("request tasks shadow stored tasks and scores persist for stored ids", func(t *testing.T) {
		repo := new(mockTaskRepo)
		repo.On("GetTasks", mock.Anything).Return([]models.Task{
			task("t1", 30, 1, 40),
			task("t2", 5, 5, 4, "t1"),
		}, nil)

		var persisted []models.ScoreUpdate
		repo.On("UpdateScores", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			persisted = args.Get(1).([]models.ScoreUpdate)
		}).Return(nil)

		svc := newAnalyzer(repo)
		resp, err := svc.Analyze(context.Background(), models.AnalyzeRequest{
			Tasks: []models.Task{
				task("t1", 0, 10, 2, "t3"),
				task("t3", 10, 5, 4),
			},
		})
		require.NoError(t, err)

		// t1 is scored from the request attributes, not the stale stored
		// ones: 90*0.4 + 100*0.3 + 80*0.2 + 100*0.1 (t2 depends on it).
		require.Equal(t, "t1", resp.Tasks[0].ID)
		assert.InDelta(t, 92, *resp.Tasks[0].Score, 1e-9)

		// Only t1 lives in the store; t3 is request-only context.
		require.Len(t, persisted, 1)
		assert.Equal(t, "t1", persisted[0].ID)
		assert.InDelta(t, 92, persisted[0].Score, 1e-9)
	})

	t.Run("circular batch rejected before anything persists", func(t *testing.T) {
		repo := new(mockTaskRepo)
		repo.On("GetTasks", mock.Anything).Return([]models.Task{}, nil)

		svc := newAnalyzer(repo)
		_, err := svc.Analyze(context.Background(), models.AnalyzeRequest{
			Tasks: []models.Task{
				task("a", 1, 5, 2, "b"),
				task("b", 1, 5, 2, "a"),
			},
		})

		var circular *graph.CircularDependencyError
		require.ErrorAs(t, err, &circular)
		assert.Equal(t, "a", circular.TaskID)
		repo.AssertNotCalled(t, "UpdateScores", mock.Anything, mock.Anything)
	})

	t.Run("missing dependency consults the store", func(t *testing.T) {
		repo := new(mockTaskRepo)
		repo.On("GetTasks", mock.Anything).Return([]models.Task{}, nil)
		repo.On("TaskExists", mock.Anything, "ghost").Return(false, nil)

		svc := newAnalyzer(repo)
		_, err := svc.Analyze(context.Background(), models.AnalyzeRequest{
			Tasks: []models.Task{task("a", 1, 5, 2, "ghost")},
		})

		var missing *graph.MissingDependencyError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "a", missing.TaskID)
		assert.Equal(t, "ghost", missing.DependencyID)
		repo.AssertNotCalled(t, "UpdateScores", mock.Anything, mock.Anything)
	})

	t.Run("idempotent over unchanged input", func(t *testing.T) {
		repo := new(mockTaskRepo)
		repo.On("GetTasks", mock.Anything).Return([]models.Task{}, nil)
		repo.On("UpdateScores", mock.Anything, mock.Anything).Return(nil)

		req := models.AnalyzeRequest{
			Tasks: []models.Task{
				task("a", 2, 7, 3, "b"),
				task("b", 5, 4, 1),
			},
		}

		svc := newAnalyzer(repo)
		first, err := svc.Analyze(context.Background(), req)
		require.NoError(t, err)
		second, err := svc.Analyze(context.Background(), req)
		require.NoError(t, err)

		require.Len(t, second.Tasks, len(first.Tasks))
		for i := range first.Tasks {
			assert.Equal(t, first.Tasks[i].ID, second.Tasks[i].ID)
			assert.Equal(t, *first.Tasks[i].Score, *second.Tasks[i].Score)
			assert.Equal(t, *first.Tasks[i].Explanation, *second.Tasks[i].Explanation)
		}
	})
}

func TestAnalyzerService_Suggest(t *testing.T) {
	stored := []models.Task{
		task("low", 30, 2, 20),
		task("top", 0, 10, 1),
		task("mid", 3, 6, 4),
		task("high", 1, 9, 2),
	}

	t.Run("returns top three by default", func(t *testing.T) {
		repo := new(mockTaskRepo)
		repo.On("GetTasks", mock.Anything).Return(stored, nil)

		var persisted []models.ScoreUpdate
		repo.On("UpdateScores", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			persisted = args.Get(1).([]models.ScoreUpdate)
		}).Return(nil)

		svc := newAnalyzer(repo)
		suggestions, err := svc.Suggest(context.Background(), 0)
		require.NoError(t, err)

		require.Len(t, suggestions, 3)
		assert.Equal(t, "top", suggestions[0].ID)
		assert.Equal(t, "high", suggestions[1].ID)
		assert.Equal(t, "mid", suggestions[2].ID)

		// Every stored task gets its score persisted, not just the top N.
		assert.Len(t, persisted, 4)
	})

	t.Run("respects an explicit limit", func(t *testing.T) {
		repo := new(mockTaskRepo)
		repo.On("GetTasks", mock.Anything).Return(stored, nil)
		repo.On("UpdateScores", mock.Anything, mock.Anything).Return(nil)

		svc := newAnalyzer(repo)
		suggestions, err := svc.Suggest(context.Background(), 2)
		require.NoError(t, err)
		assert.Len(t, suggestions, 2)
	})
}

func TestAnalyzerService_Create(t *testing.T) {
	t.Run("scores and stores a task with resolvable dependencies", func(t *testing.T) {
		repo := new(mockTaskRepo)
		repo.On("GetTasks", mock.Anything).Return([]models.Task{task("base", 3, 5, 4)}, nil)

		var created *models.Task
		repo.On("CreateTask", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			created = args.Get(1).(*models.Task)
		}).Return(nil)

		svc := newAnalyzer(repo)
		newTask := task("", 1, 8, 2, "base")
		require.NoError(t, svc.Create(context.Background(), &newTask))

		require.NotNil(t, created)
		assert.NotEmpty(t, created.ID)
		require.NotNil(t, created.Score)
		require.NotNil(t, created.Explanation)
		assert.Contains(t, *created.Explanation, "Depends on 1 tasks")
	})

	t.Run("rejects a dependency on a nonexistent task", func(t *testing.T) {
		repo := new(mockTaskRepo)
		repo.On("GetTasks", mock.Anything).Return([]models.Task{}, nil)
		repo.On("TaskExists", mock.Anything, "ghost").Return(false, nil)

		svc := newAnalyzer(repo)
		newTask := task("", 1, 8, 2, "ghost")
		err := svc.Create(context.Background(), &newTask)

		var missing *graph.MissingDependencyError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "ghost", missing.DependencyID)
		repo.AssertNotCalled(t, "CreateTask", mock.Anything, mock.Anything)
	})

	t.Run("rejects a duplicate id", func(t *testing.T) {
		repo := new(mockTaskRepo)
		repo.On("TaskExists", mock.Anything, "taken").Return(true, nil)

		svc := newAnalyzer(repo)
		newTask := task("taken", 1, 8, 2)
		err := svc.Create(context.Background(), &newTask)

		assert.ErrorIs(t, err, ErrTaskExists)
		repo.AssertNotCalled(t, "CreateTask", mock.Anything, mock.Anything)
	})
}

func TestAnalyzerService_List(t *testing.T) {
	stored := []models.Task{
		task("a", 1, 5, 2),
		task("b", 2, 5, 2),
		task("c", 3, 5, 2),
	}

	repo := new(mockTaskRepo)
	repo.On("GetTasks", mock.Anything).Return(stored, nil)
	svc := newAnalyzer(repo)

	t.Run("full list", func(t *testing.T) {
		tasks, err := svc.List(context.Background(), 0, 0)
		require.NoError(t, err)
		assert.Len(t, tasks, 3)
	})

	t.Run("offset and limit", func(t *testing.T) {
		tasks, err := svc.List(context.Background(), 1, 1)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "b", tasks[0].ID)
	})

	t.Run("offset beyond the end", func(t *testing.T) {
		tasks, err := svc.List(context.Background(), 10, 0)
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})
}
