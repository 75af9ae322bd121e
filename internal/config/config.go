package config

import (
	"os"
	"strconv"
	"time"
)

// Settings holds the environment-driven configuration for the service.
type Settings struct {
	Port           string
	Mode           string
	APIKey         string
	ResultsDir     string
	Languages      string
	DPI            int
	MaxUploadBytes int64
	Workers        int
	TextThreshold  int
	TaskTimeout    time.Duration
	RedisAddr      string
	RedisPassword  string
}

// Load reads settings from the environment, applying defaults for anything
// unset or unparseable.
func Load() Settings {
	return Settings{
		Port:           envString("PORT", "8000"),
		Mode:           os.Getenv("MODE"),
		APIKey:         os.Getenv("API_KEY"),
		ResultsDir:     envString("RESULTS_DIR", "results"),
		Languages:      envString("OCR_LANGUAGES", "rus+eng"),
		DPI:            envInt("OCR_DPI", 300),
		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 50<<20),
		Workers:        envInt("WORKERS", 2),
		TextThreshold:  envInt("TEXT_THRESHOLD", 20),
		TaskTimeout:    time.Duration(envInt("TASK_TIMEOUT_SECONDS", 300)) * time.Second,
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
