package main

import (
	"context"
	"net/http"

	"taskpriority-go/app/config"
	"taskpriority-go/app/controllers"
	"taskpriority-go/app/logging"
	"taskpriority-go/app/routes"
	"taskpriority-go/app/services"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(cfg.Debug)

	// Initialize Neo4j connection
	neo4jDriver, err := config.InitNeo4j(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Neo4j connection")
	}
	defer neo4jDriver.Close(context.Background())

	// Initialize the service layer
	taskService := services.NewTaskService(neo4jDriver)
	analyzer := services.NewAnalyzerService(taskService, cfg.Weights, cfg.SuggestLimit)

	// Initialize the controller layer
	taskController := controllers.NewTaskController(analyzer)

	// Setup HTTP server
	router := mux.NewRouter()
	routes.RegisterRoutes(router, taskController)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	log.Info().Str("addr", cfg.HTTPAddr).Msg("server is running")
	if err := http.ListenAndServe(cfg.HTTPAddr, cors(router)); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
