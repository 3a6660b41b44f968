package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"taskpriority-go/app/graph"
	"taskpriority-go/app/models"
	"taskpriority-go/app/services"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// TaskController handles HTTP requests for tasks.
type TaskController struct {
	Service  *services.AnalyzerService
	validate *validator.Validate
}

// NewTaskController creates a new TaskController.
func NewTaskController(service *services.AnalyzerService) *TaskController {
	return &TaskController{
		Service:  service,
		validate: validator.New(),
	}
}

// GetTasks handles GET /api/tasks/.
func (c *TaskController) GetTasks(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 0)

	tasks, err := c.Service.List(r.Context(), offset, limit)
	if err != nil {
		c.serverError(w, r, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	respondJSON(w, http.StatusOK, tasks)
}

// CreateTask handles POST /api/tasks/.
func (c *TaskController) CreateTask(w http.ResponseWriter, r *http.Request) {
	var task models.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := c.validate.Struct(task); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := c.Service.Create(r.Context(), &task); err != nil {
		c.writeDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, task)
}

// GetTaskByID handles GET /api/tasks/{taskID}.
func (c *TaskController) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskID"]
	task, err := c.Service.Get(r.Context(), taskID)
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			respondError(w, http.StatusNotFound, "Task not found")
			return
		}
		c.serverError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// DeleteTask handles DELETE /api/tasks/{taskID}. Deletion is refused with
// 409 while other tasks still depend on the target.
func (c *TaskController) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskID"]
	if err := c.Service.Delete(r.Context(), taskID); err != nil {
		var dependents *services.DependentTasksError
		switch {
		case errors.Is(err, services.ErrTaskNotFound):
			respondError(w, http.StatusNotFound, "Task not found")
		case errors.As(err, &dependents):
			respondJSON(w, http.StatusConflict, map[string]any{
				"detail":           dependents.Error(),
				"dependent_count":  dependents.Count,
				"dependent_titles": dependents.Titles,
			})
		default:
			c.serverError(w, r, err)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AnalyzeTasks handles POST /api/tasks/analyze/.
func (c *TaskController) AnalyzeTasks(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := c.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := c.Service.Analyze(r.Context(), req)
	if err != nil {
		c.writeDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// SuggestTasks handles GET /api/tasks/suggest/.
func (c *TaskController) SuggestTasks(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 0)
	tasks, err := c.Service.Suggest(r.Context(), limit)
	if err != nil {
		c.writeDomainError(w, r, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	respondJSON(w, http.StatusOK, tasks)
}

// writeDomainError maps validation failures to 400 and everything else to
// 500. Graph errors are user-correctable and surfaced verbatim.
func (c *TaskController) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var missing *graph.MissingDependencyError
	var circular *graph.CircularDependencyError
	switch {
	case errors.As(err, &missing), errors.As(err, &circular):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrTaskExists):
		respondError(w, http.StatusConflict, err.Error())
	default:
		c.serverError(w, r, err)
	}
}

func (c *TaskController) serverError(w http.ResponseWriter, r *http.Request, err error) {
	log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	respondError(w, http.StatusInternalServerError, "Internal server error")
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

func respondError(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, map[string]string{"detail": detail})
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
