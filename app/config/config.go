// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"taskpriority-go/app/models"

	"github.com/joho/godotenv"
)

// Config holds everything the service needs at startup.
type Config struct {
	HTTPAddr      string
	Neo4jURI      string
	Neo4jUsername string
	Neo4jPassword string
	Debug         bool
	SuggestLimit  int
	Weights       models.PriorityWeights
}

// Load reads configuration from the environment, consulting a local .env
// file when present. Unset variables fall back to development defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:      getenv("HTTP_ADDR", "0.0.0.0:8080"),
		Neo4jURI:      getenv("NEO4J_URI", "neo4j://localhost:7687"),
		Neo4jUsername: getenv("NEO4J_USERNAME", "neo4j"),
		Neo4jPassword: getenv("NEO4J_PASSWORD", "password"),
		Debug:         getenv("LOG_DEBUG", "false") == "true",
		Weights:       models.DefaultPriorityWeights(),
	}

	var err error
	if cfg.SuggestLimit, err = getenvInt("SUGGEST_LIMIT", 3); err != nil {
		return nil, err
	}
	if cfg.Weights.Urgency, err = getenvFloat("WEIGHT_URGENCY", cfg.Weights.Urgency); err != nil {
		return nil, err
	}
	if cfg.Weights.Importance, err = getenvFloat("WEIGHT_IMPORTANCE", cfg.Weights.Importance); err != nil {
		return nil, err
	}
	if cfg.Weights.Effort, err = getenvFloat("WEIGHT_EFFORT", cfg.Weights.Effort); err != nil {
		return nil, err
	}
	if cfg.Weights.Dependencies, err = getenvFloat("WEIGHT_DEPENDENCIES", cfg.Weights.Dependencies); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getenv(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func getenvInt(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return value, nil
}

func getenvFloat(name string, fallback float64) (float64, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return value, nil
}
