package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Appearance selects how the initial color scheme is detected.
type Appearance string

const (
	AppearanceAuto  Appearance = "auto"
	AppearanceDark  Appearance = "dark"
	AppearanceLight Appearance = "light"
)

// Config holds odo's settings.
type Config struct {
	APIURL          string
	CredentialsPath string
	LogFile         string
	LogLevel        slog.Level
	Appearance      Appearance
	PollSeconds     int
	UpcomingDays    int
}

const (
	defaultConfigPath      = "~/.config/odo/config.toml"
	defaultCredentialsPath = "~/.config/odo/session.toml"
	defaultLogFile         = "~/.local/state/odo/odo.log"
	defaultAPIURL          = "http://127.0.0.1:8000"
	defaultPollSeconds     = 30
	defaultUpcomingDays    = 7
)

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return defaultConfigPath
}

// Load locates and parses the config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := defaults()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL          string `toml:"api_url"`
		CredentialsPath string `toml:"credentials_path"`
		LogFile         string `toml:"log_file"`
		LogLevel        string `toml:"log_level"`
		Appearance      string `toml:"appearance"`
		PollSeconds     int    `toml:"poll_seconds"`
		UpcomingDays    int    `toml:"upcoming_days"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(raw.CredentialsPath); v != "" {
		cfg.CredentialsPath = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		level, err := ParseLevel(v)
		if err != nil {
			return Config{}, err
		}
		cfg.LogLevel = level
	}
	if v := strings.TrimSpace(raw.Appearance); v != "" {
		appearance, err := ParseAppearance(v)
		if err != nil {
			return Config{}, err
		}
		cfg.Appearance = appearance
	}
	if raw.PollSeconds > 0 {
		cfg.PollSeconds = raw.PollSeconds
	}
	if raw.UpcomingDays > 0 {
		cfg.UpcomingDays = raw.UpcomingDays
	}

	return cfg, nil
}

// ParseAppearance validates an appearance setting.
func ParseAppearance(value string) (Appearance, error) {
	switch a := Appearance(strings.ToLower(strings.TrimSpace(value))); a {
	case AppearanceAuto, AppearanceDark, AppearanceLight:
		return a, nil
	case "":
		return AppearanceAuto, nil
	default:
		return "", fmt.Errorf("invalid appearance %q (want auto, dark or light)", value)
	}
}

// ParseLevel maps debug/info/warn/error to a slog level.
func ParseLevel(value string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q: %w", value, err)
	}
	return level, nil
}

func defaults() Config {
	return Config{
		APIURL:          defaultAPIURL,
		CredentialsPath: mustExpand(defaultCredentialsPath),
		LogFile:         mustExpand(defaultLogFile),
		LogLevel:        slog.LevelInfo,
		Appearance:      AppearanceAuto,
		PollSeconds:     defaultPollSeconds,
		UpcomingDays:    defaultUpcomingDays,
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return ExpandPath(defaultConfigPath)
	}
	return ExpandPath(path)
}

func mustExpand(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
