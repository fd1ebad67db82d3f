// internal/config/config.go
//
// This package handles configuration and the .taskboard directory structure.
// The directory holds config.yaml, the SQLite database and the log files.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// Dir is the name of the directory created in the working directory.
	Dir = ".taskboard"

	DefaultHost          = "127.0.0.1"
	DefaultPort          = 8787
	DefaultDatabase      = "taskboard.db"
	DefaultClientTimeout = 10 * time.Second
	DefaultTokenTTL      = 24 * time.Hour
	DefaultDisplayName   = "Taskboard"

	// DefaultMaxBodyBytes limits request payloads to 1 MB.
	DefaultMaxBodyBytes int64 = 1 << 20
)

const defaultConfigYAML = `# taskboard configuration
version: 1

server:
  host: 127.0.0.1
  port: 8787
  max_body_bytes: 1048576

database:
  # Relative paths resolve against the .taskboard directory.
  path: taskboard.db

client:
  # Leave empty to talk to the server configured above.
  api_url: ""
  timeout: 10s

auth:
  display_name: Taskboard
  token_ttl: 24h
  # Credentials are read from TASKBOARD_EMAIL, TASKBOARD_PASSWORD and
  # TASKBOARD_SECRET and never stored here.
`

// ServerConfig controls the API listener.
type ServerConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

// DatabaseConfig locates the SQLite file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ClientConfig controls how the terminal client reaches the API.
type ClientConfig struct {
	APIURL  string        `yaml:"api_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// AuthConfig holds the non-secret login settings.
type AuthConfig struct {
	DisplayName string        `yaml:"display_name"`
	TokenTTL    time.Duration `yaml:"token_ttl"`
}

// FileConfig models .taskboard/config.yaml.
type FileConfig struct {
	Version  int            `yaml:"version"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Client   ClientConfig   `yaml:"client"`
	Auth     AuthConfig     `yaml:"auth"`
}

// Config holds the runtime configuration.
type Config struct {
	// WorkDir is the directory taskboard was started from.
	WorkDir string

	// StateDir is WorkDir/.taskboard
	StateDir string

	File FileConfig
}

// InitDir creates the .taskboard directory structure in workDir.
//
// Structure created:
// .taskboard/
// ├── config.yaml
// └── logs/     <- taskboard.log (zap) and activity.log (logbook)
func InitDir(workDir string) error {
	stateDir := filepath.Join(workDir, Dir)
	if err := os.MkdirAll(filepath.Join(stateDir, "logs"), 0o755); err != nil {
		return err
	}
	return ensureConfigFile(filepath.Join(stateDir, "config.yaml"))
}

// NewConfig loads config.yaml from workDir (defaults when absent) and applies
// environment overrides.
func NewConfig(workDir string) (*Config, error) {
	cfg := &Config{
		WorkDir:  workDir,
		StateDir: filepath.Join(workDir, Dir),
		File:     defaultFileConfig(),
	}
	if err := cfg.load(); err != nil {
		return nil, err
	}
	cfg.File.applyEnvOverrides()
	cfg.File.normalize(cfg.StateDir)
	if err := cfg.File.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// ConfigPath returns the on-disk location of config.yaml.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.StateDir, "config.yaml")
}

// LogsDir returns the path to the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.StateDir, "logs")
}

// ActivityLogPath returns the logbook file tailed by the terminal UI.
func (c *Config) ActivityLogPath() string {
	return filepath.Join(c.LogsDir(), "activity.log")
}

// DatabasePath returns the resolved SQLite path.
func (c *Config) DatabasePath() string {
	return c.File.Database.Path
}

// ListenAddress returns the server bind address in host:port form.
func (c *Config) ListenAddress() string {
	return net.JoinHostPort(c.File.Server.Host, strconv.Itoa(c.File.Server.Port))
}

// APIURL returns the base URL the client talks to.
func (c *Config) APIURL() string {
	if c.File.Client.APIURL != "" {
		return c.File.Client.APIURL
	}
	return "http://" + c.ListenAddress()
}

func (c *Config) load() error {
	path := c.ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	parsed := defaultFileConfig()
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	parsed.applyDefaults()
	c.File = parsed
	return nil
}

func defaultFileConfig() FileConfig {
	return FileConfig{
		Version: 1,
		Server: ServerConfig{
			Host:         DefaultHost,
			Port:         DefaultPort,
			MaxBodyBytes: DefaultMaxBodyBytes,
		},
		Database: DatabaseConfig{Path: DefaultDatabase},
		Client:   ClientConfig{Timeout: DefaultClientTimeout},
		Auth: AuthConfig{
			DisplayName: DefaultDisplayName,
			TokenTTL:    DefaultTokenTTL,
		},
	}
}

func (fc *FileConfig) applyDefaults() {
	if fc.Version == 0 {
		fc.Version = 1
	}
	if strings.TrimSpace(fc.Server.Host) == "" {
		fc.Server.Host = DefaultHost
	}
	if fc.Server.Port == 0 {
		fc.Server.Port = DefaultPort
	}
	if fc.Server.MaxBodyBytes <= 0 {
		fc.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if strings.TrimSpace(fc.Database.Path) == "" {
		fc.Database.Path = DefaultDatabase
	}
	if fc.Client.Timeout <= 0 {
		fc.Client.Timeout = DefaultClientTimeout
	}
	if strings.TrimSpace(fc.Auth.DisplayName) == "" {
		fc.Auth.DisplayName = DefaultDisplayName
	}
	if fc.Auth.TokenTTL <= 0 {
		fc.Auth.TokenTTL = DefaultTokenTTL
	}
}

func (fc *FileConfig) applyEnvOverrides() {
	if host := strings.TrimSpace(os.Getenv("TASKBOARD_HOST")); host != "" {
		fc.Server.Host = host
	}
	if port := strings.TrimSpace(os.Getenv("TASKBOARD_PORT")); port != "" {
		if parsed, err := strconv.Atoi(port); err == nil {
			fc.Server.Port = parsed
		}
	}
	if db := strings.TrimSpace(os.Getenv("TASKBOARD_DB")); db != "" {
		fc.Database.Path = db
	}
	if url := strings.TrimSpace(os.Getenv("TASKBOARD_API_URL")); url != "" {
		fc.Client.APIURL = url
	}
}

func (fc *FileConfig) normalize(stateDir string) {
	fc.Server.Host = strings.TrimSpace(fc.Server.Host)
	fc.Database.Path = resolvePath(stateDir, fc.Database.Path)
	fc.Client.APIURL = strings.TrimRight(strings.TrimSpace(fc.Client.APIURL), "/")
	fc.Auth.DisplayName = strings.TrimSpace(fc.Auth.DisplayName)
}

func (fc *FileConfig) validate() error {
	if fc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if fc.Server.Port < 0 || fc.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535")
	}
	if fc.Client.APIURL != "" && !strings.HasPrefix(fc.Client.APIURL, "http://") && !strings.HasPrefix(fc.Client.APIURL, "https://") {
		return fmt.Errorf("client.api_url must start with http:// or https://")
	}
	return nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" || trimmed == ":memory:" {
		return trimmed
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
