package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server     ServerConfig
	DB         DBConfig
	Redis      RedisConfig
	NATS       NATSConfig
	JWT        JWTConfig
	CORS       CORSConfig
	RateLimit  RateLimitConfig
	LLM        LLMConfig
	Extraction ExtractionConfig
	Credits    CreditsConfig
	Generation GenerationConfig
	Log        LogConfig
}

type ServerConfig struct {
	Host string
	Port int
	// WriteTimeout must cover a full inline course generation.
	WriteTimeout time.Duration
}

type DBConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxConns       int32
	MigrationsPath string
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NATSConfig is optional. An empty URL disables events and async quiz jobs.
type NATSConfig struct {
	URL string
}

// JWTConfig only carries what is needed to verify access tokens issued by
// the identity service.
type JWTConfig struct {
	AccessSecret string
	Issuer       string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// RateLimitConfig bounds generation requests per user per window.
type RateLimitConfig struct {
	Requests  int
	WindowSec int
}

// LLMConfig points at an OpenAI-compatible chat completions endpoint.
type LLMConfig struct {
	BaseURL           string
	APIKey            string
	ContentModel      string
	QuizModel         string
	ChatModel         string
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerSecond float64
	Burst             int
}

type ExtractionConfig struct {
	GeminiBaseURL    string
	GeminiAPIKey     string
	GeminiModel      string
	SerpBaseURL      string
	SerpAPIKey       string
	MaxDocumentBytes int64
	Timeout          time.Duration
}

type CreditsConfig struct {
	ResetSchedule string
	HoldTTL       time.Duration
}

type GenerationConfig struct {
	DefaultModuleCount int
	DefaultQuizCount   int
	DefaultDuration    int
	MinContentLength   int
	QuizParallelism    int
	AsyncQuizzes       bool

	ContentTemperature float64
	ContentMaxTokens   int
	QuizTemperature    float64
	QuizMaxTokens      int
	ChatTemperature    float64
	ChatMaxTokens      int
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Load .env file if it exists (ignore error if missing)
	_ = k.Load(file.Provider(".env"), dotenv.Parser())

	// Load environment variables (override .env)
	err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "_", "."))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: k.String("server.host"),
			Port: k.Int("server.port"),
		},
		DB: DBConfig{
			Host:           k.String("db.host"),
			Port:           k.Int("db.port"),
			User:           k.String("db.user"),
			Password:       k.String("db.password"),
			Name:           k.String("db.name"),
			SSLMode:        k.String("db.sslmode"),
			MaxConns:       int32(k.Int("db.max.conns")),
			MigrationsPath: k.String("db.migrations.path"),
		},
		Redis: RedisConfig{
			Host:     k.String("redis.host"),
			Port:     k.Int("redis.port"),
			Password: k.String("redis.password"),
			DB:       k.Int("redis.db"),
		},
		NATS: NATSConfig{
			URL: k.String("nats.url"),
		},
		JWT: JWTConfig{
			AccessSecret: k.String("jwt.access.secret"),
			Issuer:       k.String("jwt.issuer"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(k.String("cors.allowed.origins")),
		},
		RateLimit: RateLimitConfig{
			Requests:  k.Int("ratelimit.requests"),
			WindowSec: k.Int("ratelimit.window.sec"),
		},
		LLM: LLMConfig{
			BaseURL:           k.String("llm.base.url"),
			APIKey:            k.String("llm.api.key"),
			ContentModel:      k.String("llm.content.model"),
			QuizModel:         k.String("llm.quiz.model"),
			ChatModel:         k.String("llm.chat.model"),
			MaxRetries:        k.Int("llm.max.retries"),
			RequestsPerSecond: k.Float64("llm.requests.per.second"),
			Burst:             k.Int("llm.burst"),
		},
		Extraction: ExtractionConfig{
			GeminiBaseURL:    k.String("extraction.gemini.base.url"),
			GeminiAPIKey:     k.String("extraction.gemini.api.key"),
			GeminiModel:      k.String("extraction.gemini.model"),
			SerpBaseURL:      k.String("extraction.serp.base.url"),
			SerpAPIKey:       k.String("extraction.serp.api.key"),
			MaxDocumentBytes: k.Int64("extraction.max.document.bytes"),
		},
		Credits: CreditsConfig{
			ResetSchedule: k.String("credits.reset.schedule"),
		},
		Generation: GenerationConfig{
			DefaultModuleCount: k.Int("generation.default.module.count"),
			DefaultQuizCount:   k.Int("generation.default.quiz.count"),
			DefaultDuration:    k.Int("generation.default.duration"),
			MinContentLength:   k.Int("generation.min.content.length"),
			QuizParallelism:    k.Int("generation.quiz.parallelism"),
			AsyncQuizzes:       k.Bool("generation.async.quizzes"),
			ContentTemperature: k.Float64("generation.content.temperature"),
			ContentMaxTokens:   k.Int("generation.content.max.tokens"),
			QuizTemperature:    k.Float64("generation.quiz.temperature"),
			QuizMaxTokens:      k.Int("generation.quiz.max.tokens"),
			ChatTemperature:    k.Float64("generation.chat.temperature"),
			ChatMaxTokens:      k.Int("generation.chat.max.tokens"),
		},
		Log: LogConfig{
			Level:  k.String("log.level"),
			Format: k.String("log.format"),
		},
	}

	// Apply defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.DB.Host == "" {
		cfg.DB.Host = "localhost"
	}
	if cfg.DB.Port == 0 {
		cfg.DB.Port = 5432
	}
	if cfg.DB.User == "" {
		cfg.DB.User = "onego"
	}
	if cfg.DB.Name == "" {
		cfg.DB.Name = "onego"
	}
	if cfg.DB.SSLMode == "" {
		cfg.DB.SSLMode = "disable"
	}
	if cfg.DB.MaxConns == 0 {
		cfg.DB.MaxConns = 25
	}
	if cfg.DB.MigrationsPath == "" {
		cfg.DB.MigrationsPath = "migrations"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "onego"
	}
	if cfg.RateLimit.Requests == 0 {
		cfg.RateLimit.Requests = 10
	}
	if cfg.RateLimit.WindowSec == 0 {
		cfg.RateLimit.WindowSec = 60
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.LLM.ContentModel == "" {
		cfg.LLM.ContentModel = "llama3-70b-8192"
	}
	if cfg.LLM.QuizModel == "" {
		cfg.LLM.QuizModel = "llama3-8b-8192"
	}
	if cfg.LLM.ChatModel == "" {
		cfg.LLM.ChatModel = "llama3-70b-8192"
	}
	if cfg.LLM.MaxRetries == 0 {
		cfg.LLM.MaxRetries = 2
	}
	if cfg.LLM.RequestsPerSecond == 0 {
		cfg.LLM.RequestsPerSecond = 2
	}
	if cfg.LLM.Burst == 0 {
		cfg.LLM.Burst = 4
	}
	if cfg.Extraction.GeminiBaseURL == "" {
		cfg.Extraction.GeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.Extraction.GeminiModel == "" {
		cfg.Extraction.GeminiModel = "gemini-1.5-flash"
	}
	if cfg.Extraction.SerpBaseURL == "" {
		cfg.Extraction.SerpBaseURL = "https://serpapi.com"
	}
	if cfg.Extraction.MaxDocumentBytes == 0 {
		cfg.Extraction.MaxDocumentBytes = 10 << 20
	}
	if cfg.Credits.ResetSchedule == "" {
		cfg.Credits.ResetSchedule = "0 0 1 * *"
	}
	if cfg.Generation.DefaultModuleCount == 0 {
		cfg.Generation.DefaultModuleCount = 3
	}
	if cfg.Generation.DefaultQuizCount == 0 {
		cfg.Generation.DefaultQuizCount = 1
	}
	if cfg.Generation.DefaultDuration == 0 {
		cfg.Generation.DefaultDuration = 30
	}
	if cfg.Generation.MinContentLength == 0 {
		cfg.Generation.MinContentLength = 100
	}
	if cfg.Generation.QuizParallelism == 0 {
		cfg.Generation.QuizParallelism = 1
	}
	if cfg.Generation.ContentTemperature == 0 {
		cfg.Generation.ContentTemperature = 0.7
	}
	if cfg.Generation.ContentMaxTokens == 0 {
		cfg.Generation.ContentMaxTokens = 3000
	}
	if cfg.Generation.QuizTemperature == 0 {
		cfg.Generation.QuizTemperature = 0.3
	}
	if cfg.Generation.QuizMaxTokens == 0 {
		cfg.Generation.QuizMaxTokens = 1000
	}
	if cfg.Generation.ChatTemperature == 0 {
		cfg.Generation.ChatTemperature = 0.7
	}
	if cfg.Generation.ChatMaxTokens == 0 {
		cfg.Generation.ChatMaxTokens = 150
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "debug"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	// Parse durations
	cfg.Server.WriteTimeout, err = parseDuration(k.String("server.write.timeout"), "5m")
	if err != nil {
		return nil, fmt.Errorf("parsing server write timeout: %w", err)
	}
	cfg.LLM.Timeout, err = parseDuration(k.String("llm.timeout"), "60s")
	if err != nil {
		return nil, fmt.Errorf("parsing llm timeout: %w", err)
	}
	cfg.Extraction.Timeout, err = parseDuration(k.String("extraction.timeout"), "90s")
	if err != nil {
		return nil, fmt.Errorf("parsing extraction timeout: %w", err)
	}
	cfg.Credits.HoldTTL, err = parseDuration(k.String("credits.hold.ttl"), "10m")
	if err != nil {
		return nil, fmt.Errorf("parsing credits hold ttl: %w", err)
	}

	return cfg, nil
}

func parseDuration(value, fallback string) (time.Duration, error) {
	if value == "" {
		value = fallback
	}
	return time.ParseDuration(value)
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
