package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

type StartView string

const (
	StartViewUpload StartView = "upload"
	StartViewBoard  StartView = "board"
)

const DefaultBaseURL = "http://localhost:8000"

type Config struct {
	Backend   BackendConfig   `toml:"backend"`
	Upload    UploadConfig    `toml:"upload"`
	Board     BoardConfig     `toml:"board"`
	Confirm   ConfirmConfig   `toml:"confirm"`
	UI        UIConfig        `toml:"ui"`
	Logging   LoggingConfig   `toml:"logging"`
	DevServer DevServerConfig `toml:"devserver"`
}

type BackendConfig struct {
	BaseURL string `toml:"base_url"`
	Timeout string `toml:"timeout"` // Go duration; empty keeps the transport default
}

type UploadConfig struct {
	DefaultDestination string   `toml:"default_destination"`
	AcceptedExtensions []string `toml:"accepted_extensions"`
	StartDir           string   `toml:"start_dir"`
}

type BoardConfig struct {
	ShowDueDate      bool `toml:"show_due_date"`
	ShowConfidence   bool `toml:"show_confidence"`
	ShowUnrecognized bool `toml:"show_unrecognized"`
}

type ConfirmConfig struct {
	Delete bool `toml:"delete"`
}

type UIConfig struct {
	StartView StartView `toml:"start_view"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type DevServerConfig struct {
	Bind        string `toml:"bind"`
	DBPath      string `toml:"db_path"`
	MCPEndpoint string `toml:"mcp_endpoint"`
	Fixture     string `toml:"fixture"`
}

var validLogLevels = []string{"debug", "info", "warn", "error"}

func Default(dbPath string) Config {
	return Config{
		Backend: BackendConfig{
			BaseURL: DefaultBaseURL,
		},
		Upload: UploadConfig{
			DefaultDestination: "notion",
			AcceptedExtensions: []string{".mp3", ".m4a", ".wav"},
		},
		Board: BoardConfig{
			ShowDueDate:      true,
			ShowConfidence:   true,
			ShowUnrecognized: true,
		},
		Confirm: ConfirmConfig{
			Delete: true,
		},
		UI: UIConfig{
			StartView: StartViewUpload,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".actionboard/log",
			},
		},
		DevServer: DevServerConfig{
			Bind:        "127.0.0.1:8000",
			DBPath:      dbPath,
			MCPEndpoint: "/mcp",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if err := validateBaseURL(c.Backend.BaseURL); err != nil {
		return err
	}
	if _, err := c.Backend.TimeoutDuration(); err != nil {
		return err
	}

	switch strings.TrimSpace(strings.ToLower(c.Upload.DefaultDestination)) {
	case "notion", "internal":
	default:
		return fmt.Errorf("invalid upload.default_destination: %q", c.Upload.DefaultDestination)
	}
	if len(c.Upload.AcceptedExtensions) == 0 {
		return errors.New("upload.accepted_extensions must include at least one extension")
	}
	for i, ext := range c.Upload.AcceptedExtensions {
		if strings.Trim(strings.TrimSpace(ext), ".") == "" {
			return fmt.Errorf("upload.accepted_extensions[%d] is empty", i)
		}
	}

	switch c.UI.StartView {
	case StartViewUpload, StartViewBoard:
	default:
		return fmt.Errorf("invalid ui.start_view: %q", c.UI.StartView)
	}

	if !slices.Contains(validLogLevels, strings.TrimSpace(strings.ToLower(c.Logging.Level))) {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	if strings.TrimSpace(c.DevServer.Bind) == "" {
		return errors.New("devserver.bind is required")
	}
	if strings.TrimSpace(c.DevServer.DBPath) == "" {
		return errors.New("devserver.db_path is required")
	}
	return nil
}

// TimeoutDuration parses backend.timeout; empty means no client timeout.
func (b BackendConfig) TimeoutDuration() (time.Duration, error) {
	raw := strings.TrimSpace(b.Timeout)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid backend.timeout %q: %w", b.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("backend.timeout must be >= 0, got %q", b.Timeout)
	}
	return d, nil
}

func validateBaseURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return errors.New("backend.base_url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid backend.base_url %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid backend.base_url %q: want http(s)://host[:port]", raw)
	}
	return nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Save writes cfg as TOML, creating the parent directory.
func Save(path string, cfg Config) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("config path is required")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	encoded, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode toml: %w", err)
	}
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
