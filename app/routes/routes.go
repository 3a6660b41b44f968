package routes

import (
	"net/http"

	"taskpriority-go/app/controllers"

	"github.com/gorilla/mux"
)

// RegisterRoutes sets up all routes for the application.
func RegisterRoutes(router *mux.Router, taskController *controllers.TaskController) {
	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/tasks/analyze/", taskController.AnalyzeTasks).Methods(http.MethodPost)
	api.HandleFunc("/tasks/suggest/", taskController.SuggestTasks).Methods(http.MethodGet)
	api.HandleFunc("/tasks/", taskController.GetTasks).Methods(http.MethodGet)
	api.HandleFunc("/tasks/", taskController.CreateTask).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{taskID}", taskController.GetTaskByID).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{taskID}", taskController.DeleteTask).Methods(http.MethodDelete)
}
