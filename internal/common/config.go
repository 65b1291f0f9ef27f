package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string        `toml:"environment"` // "development" or "production" - controls developer tools
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Browser     BrowserConfig `toml:"browser"`
	Login       LoginConfig   `toml:"login"`
	Cookies     CookiesConfig `toml:"cookies"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig controls the local HTTP server that hosts the settings and instruction pages
type ServerConfig struct {
	Port            int    `toml:"port"`
	Host            string `toml:"host"`
	ShutdownTimeout string `toml:"shutdown_timeout"` // e.g., "10s"
}

type StorageConfig struct {
	Type   string       `toml:"type"` // "file" (default) or "badger"
	Dir    string       `toml:"dir"`  // Directory for settings.json and cookies.json (default: user config dir)
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path (default: <storage.dir>/db)
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

// BrowserConfig controls the Chrome instance hosting the main window
type BrowserConfig struct {
	ExecPath       string   `toml:"exec_path"`     // Chrome binary, empty = auto-detect
	UserDataDir    string   `toml:"user_data_dir"` // Empty = temporary profile, removed on exit
	WindowWidth    int      `toml:"window_width"`
	WindowHeight   int      `toml:"window_height"`
	Maximized      bool     `toml:"maximized"`
	StartupTimeout string   `toml:"startup_timeout"` // e.g., "30s"
	ExtraFlags     []string `toml:"extra_flags"`     // Additional Chrome switches, "name" or "name=value"
}

// LoginConfig describes the remote application's login form
type LoginConfig struct {
	Enabled          bool   `toml:"enabled"`
	FailureSelector  string `toml:"failure_selector"`
	UsernameSelector string `toml:"username_selector"`
	PasswordSelector string `toml:"password_selector"`
	SubmitSelector   string `toml:"submit_selector"`
	DisabledLinksCSS string `toml:"disabled_links_css"`
	MinInterval      string `toml:"min_interval"` // Minimum spacing between auto-login submissions, e.g., "5s"
	Burst            int    `toml:"burst"`        // Submissions allowed back-to-back before MinInterval applies
}

type CookiesConfig struct {
	CheckpointSchedule string `toml:"checkpoint_schedule"` // Cron schedule for periodic capture, empty = disabled
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
	Dir    string   `toml:"dir"`    // Log directory (default: ./logs next to the executable)
}

// DefaultDisabledLinksCSS disables the home navigation link and breadcrumbs of the remote app
const DefaultDisabledLinksCSS = `a[href="/deltav"][tabindex="0"],
.breadcrumbs a {
    pointer-events: none;
}`

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port:            8095,
			Host:            "127.0.0.1",
			ShutdownTimeout: "10s",
		},
		Storage: StorageConfig{
			Type: "file",
		},
		Browser: BrowserConfig{
			WindowWidth:    800,
			WindowHeight:   600,
			Maximized:      true,
			StartupTimeout: "30s",
		},
		Login: LoginConfig{
			Enabled:          true,
			FailureSelector:  "#login-failed",
			UsernameSelector: "#username",
			PasswordSelector: "#password",
			SubmitSelector:   "#login-submit",
			DisabledLinksCSS: DefaultDisabledLinksCSS,
			MinInterval:      "5s",
			Burst:            2,
		},
		Cookies: CookiesConfig{
			CheckpointSchedule: "@every 10m",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority: default -> file1 -> file2 -> ... -> env
// Later files override earlier files. CLI flags are applied afterwards by ApplyFlagOverrides.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	// SESSIONSHELL_ENV takes priority over GO_ENV
	if env := os.Getenv("SESSIONSHELL_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("SESSIONSHELL_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("SESSIONSHELL_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if storageType := os.Getenv("SESSIONSHELL_STORAGE_TYPE"); storageType != "" {
		config.Storage.Type = storageType
	}
	if dir := os.Getenv("SESSIONSHELL_DATA_DIR"); dir != "" {
		config.Storage.Dir = dir
	}
	if badgerPath := os.Getenv("SESSIONSHELL_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	if execPath := os.Getenv("SESSIONSHELL_CHROME_PATH"); execPath != "" {
		config.Browser.ExecPath = execPath
	}

	if schedule, ok := os.LookupEnv("SESSIONSHELL_COOKIE_CHECKPOINT"); ok {
		config.Cookies.CheckpointSchedule = schedule
	}

	if level := os.Getenv("SESSIONSHELL_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("SESSIONSHELL_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string, dataDir string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
	if dataDir != "" {
		config.Storage.Dir = dataDir
	}
}

// Validate checks values that would otherwise fail late at runtime
func (c *Config) Validate() error {
	switch strings.ToLower(c.Storage.Type) {
	case "", "file", "badger":
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	for name, value := range map[string]string{
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"browser.startup_timeout": c.Browser.StartupTimeout,
		"login.min_interval":      c.Login.MinInterval,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid duration for %s: %w", name, err)
		}
	}

	if c.Cookies.CheckpointSchedule != "" {
		if _, err := cron.ParseStandard(c.Cookies.CheckpointSchedule); err != nil {
			return fmt.Errorf("invalid cookies.checkpoint_schedule: %w", err)
		}
	}

	return nil
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// DevToolsEnabled reports whether developer tools are exposed in the browser window
func (c *Config) DevToolsEnabled() bool {
	return !c.IsProduction()
}

// DataDir resolves the directory holding persisted settings and cookies
func (c *Config) DataDir() (string, error) {
	if c.Storage.Dir != "" {
		return c.Storage.Dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user config directory: %w", err)
	}
	return filepath.Join(base, "sessionshell"), nil
}

// ParseDuration parses a duration string, falling back when empty or invalid
func ParseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}
