package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validate checks Config for production-critical problems.
// It collects all errors into a single joined error.
func (c *Config) Validate() error {
	var errs []string

	if len(c.JWT.AccessSecret) < 32 {
		errs = append(errs, "JWT_ACCESS_SECRET must be at least 32 characters")
	}

	if c.DB.Password == "" {
		errs = append(errs, "DB_PASSWORD is required")
	}

	// Port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT must be 1-65535, got %d", c.Server.Port))
	}
	if c.DB.Port < 1 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Sprintf("DB_PORT must be 1-65535, got %d", c.DB.Port))
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Sprintf("REDIS_PORT must be 1-65535, got %d", c.Redis.Port))
	}

	if c.RateLimit.Requests < 1 {
		errs = append(errs, fmt.Sprintf("RATELIMIT_REQUESTS must be positive, got %d", c.RateLimit.Requests))
	}
	if c.RateLimit.WindowSec < 1 {
		errs = append(errs, fmt.Sprintf("RATELIMIT_WINDOW_SEC must be positive, got %d", c.RateLimit.WindowSec))
	}

	if c.Generation.DefaultModuleCount < 1 || c.Generation.DefaultModuleCount > 20 {
		errs = append(errs, fmt.Sprintf("GENERATION_DEFAULT_MODULE_COUNT must be 1-20, got %d", c.Generation.DefaultModuleCount))
	}
	if c.Generation.DefaultQuizCount < 0 || c.Generation.DefaultQuizCount > 10 {
		errs = append(errs, fmt.Sprintf("GENERATION_DEFAULT_QUIZ_COUNT must be 0-10, got %d", c.Generation.DefaultQuizCount))
	}
	if c.Generation.QuizParallelism < 1 {
		errs = append(errs, fmt.Sprintf("GENERATION_QUIZ_PARALLELISM must be positive, got %d", c.Generation.QuizParallelism))
	}
	if c.Generation.AsyncQuizzes && c.NATS.URL == "" {
		errs = append(errs, "GENERATION_ASYNC_QUIZZES requires NATS_URL")
	}

	if _, err := cron.ParseStandard(c.Credits.ResetSchedule); err != nil {
		errs = append(errs, fmt.Sprintf("CREDITS_RESET_SCHEDULE is not a valid cron expression: %v", err))
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("LOG_FORMAT must be text or json, got %q", c.Log.Format))
	}

	// Optional collaborators: warn only
	if c.LLM.APIKey == "" {
		slog.Warn("LLM_API_KEY is empty, course content and quizzes will use templated fallbacks")
	}
	if c.Extraction.GeminiAPIKey == "" {
		slog.Warn("EXTRACTION_GEMINI_API_KEY is empty, document extraction is disabled")
	}
	if c.Extraction.SerpAPIKey == "" {
		slog.Warn("EXTRACTION_SERP_API_KEY is empty, website extraction is disabled")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
