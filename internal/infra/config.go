package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv string
	Port   string

	// Text generation (Gemini).
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	// Image/video render vendor.
	RenderAPIKey       string
	RenderBaseURL      string
	RenderPollInterval time.Duration
	RenderBudget       time.Duration

	// Social publish endpoint.
	PublishBaseURL     string
	PublishAccessToken string

	// VideoMockMode switches the video render stage to a deterministic
	// offline renderer. It is an explicit switch, never inferred.
	VideoMockMode        bool
	DefaultSeedImageURL  string
	VideoDurationSeconds int

	AllowedOrigins []string

	ProbeTimeout     time.Duration
	StreamTimeout    time.Duration
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Port:   getEnv("PORT", "8080"),

		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),

		RenderAPIKey:       os.Getenv("RENDER_API_KEY"),
		RenderBaseURL:      getEnv("RENDER_BASE_URL", "https://api.kie.ai"),
		RenderPollInterval: time.Second * time.Duration(getEnvInt("RENDER_POLL_INTERVAL_SECONDS", 3)),
		RenderBudget:       time.Second * time.Duration(getEnvInt("RENDER_BUDGET_SECONDS", 240)),

		PublishBaseURL:     os.Getenv("PUBLISH_BASE_URL"),
		PublishAccessToken: os.Getenv("PUBLISH_ACCESS_TOKEN"),

		VideoMockMode:        getEnvBool("VIDEO_MOCK_MODE", false),
		DefaultSeedImageURL:  getEnv("DEFAULT_SEED_IMAGE_URL", "https://assets.campaignflow.dev/seed/vertical-default.jpg"),
		VideoDurationSeconds: getEnvInt("VIDEO_DURATION_SECONDS", 8),

		AllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),

		ProbeTimeout:     time.Second * time.Duration(getEnvInt("PROBE_TIMEOUT_SECONDS", 10)),
		StreamTimeout:    time.Second * time.Duration(getEnvInt("STREAM_TIMEOUT_SECONDS", 300)),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 320)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.VideoDurationSeconds < 1 || cfg.VideoDurationSeconds > 10 {
		return nil, fmt.Errorf("VIDEO_DURATION_SECONDS must be between 1 and 10, got %d", cfg.VideoDurationSeconds)
	}

	// The write timeout must outlast the stream budget or the streaming
	// handler gets cut off mid-run.
	if cfg.HTTPWriteTimeout <= cfg.StreamTimeout {
		cfg.HTTPWriteTimeout = cfg.StreamTimeout + 20*time.Second
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitCSV(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
