package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// Config holds application settings from ~/.config/studytrack/config.json.
// Pomodoro lengths and the daily goal live in the database instead.
type Config struct {
	DBPath        string `json:"db_path"`
	LogFile       string `json:"log_file"`
	LogLevel      string `json:"log_level"`
	Notifications bool   `json:"notifications"`
}

func defaults() Config {
	dir := Dir()
	return Config{
		DBPath:        filepath.Join(dir, "studytrack.db"),
		LogFile:       filepath.Join(dir, "studytrack.log"),
		LogLevel:      "info",
		Notifications: true,
	}
}

// Dir is the directory holding the config file, database and log.
func Dir() string {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(cfg, "studytrack")
}

// Load reads config.json, then applies STUDYTRACK_DB and
// STUDYTRACK_LOG_LEVEL. Returns defaults on any error (missing file, bad
// JSON, etc.).
func Load() Config {
	cfg := loadFrom(filepath.Join(Dir(), "config.json"))
	return applyEnv(cfg, os.Getenv)
}

func loadFrom(path string) Config {
	data, err := os.ReadFile(path)
	if err != nil {
		return defaults()
	}

	cfg := defaults()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return defaults()
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaults().DBPath
	}
	return cfg
}

// applyEnv overlays environment variables. Set values win over the file.
func applyEnv(cfg Config, getenv func(string) string) Config {
	if v := strings.TrimSpace(getenv("STUDYTRACK_DB")); v != "" {
		cfg.DBPath = v
	}
	if v := strings.TrimSpace(getenv("STUDYTRACK_LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}
	return cfg
}
