// Package config provides configuration loading for the hs-mcp server.
// Configuration is merged in order of increasing precedence:
// built-in defaults ← config.json ← environment variables.
// Loading never fails: malformed input degrades to the next lower layer.
package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/homeseer-mcp/hs-mcp/internal/logging"
)

// Built-in defaults.
const (
	// DefaultURL is the HomeSeer connected service endpoint.
	DefaultURL = "https://connected2.homeseer.com/json"
	// DefaultSource is the source tag sent on every request.
	DefaultSource = "homeseer-mcp"
	// DefaultTimeout is the HTTP request timeout in seconds.
	DefaultTimeout = 30

	// ConfigFileName is the JSON configuration file searched for at startup.
	ConfigFileName = "config.json"
	// EnvPrefix is the prefix for all recognized environment variables.
	EnvPrefix = "HOMESEER_"
)

var loadEnvOnce sync.Once

// loadDotEnv loads a .env file if one exists (does not override existing env vars).
// It is called once before the environment layer is read.
func loadDotEnv() {
	loadEnvOnce.Do(func() {
		dotEnvSearchPaths := []string{".env", "configs/.env"}
		for _, f := range dotEnvSearchPaths {
			if _, err := os.Stat(f); err == nil {
				_ = godotenv.Load(f)
				return
			}
		}
	})
}

// Config holds the HomeSeer connection settings. It is immutable once built;
// Manager.Reload produces a new value instead of mutating an existing one.
type Config struct {
	URL       string `mapstructure:"url"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	Token     string `mapstructure:"token"`
	Source    string `mapstructure:"source"`
	Timeout   int    `mapstructure:"timeout"`
	VerifySSL bool   `mapstructure:"verify_ssl"`
}

// defaults returns the built-in configuration layer.
func defaults() Config {
	return Config{
		URL:       DefaultURL,
		Source:    DefaultSource,
		Timeout:   DefaultTimeout,
		VerifySSL: true,
	}
}

// Resolve builds a configuration record by merging defaults, an optional
// JSON file, and environment variables. It never fails: all error paths
// degrade toward the lower-precedence layers and are only logged.
// An empty path triggers the config.json search (CWD, executable dir, parent).
func Resolve(path string, logger *logging.Logger) Config {
	if logger == nil {
		logger = logging.New(logging.LevelInfo)
	}

	loadDotEnv()

	cfg := defaults()
	mergeFileLayer(&cfg, path, logger)
	mergeEnvLayer(&cfg, logger)

	logger.Info("Configuration loaded", "url", cfg.URL, "source", cfg.Source)
	switch {
	case cfg.Token != "":
		logger.Info("Authentication: token")
	case cfg.Username != "" && cfg.Password != "":
		logger.Info("Authentication: username/password", "user", cfg.Username)
	default:
		logger.Warn("No authentication configured")
	}

	return cfg
}

// findConfigFile searches for config.json in the current working directory,
// the executable's directory, and that directory's parent. First hit wins.
func findConfigFile() string {
	candidates := []string{ConfigFileName}
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		candidates = append(candidates,
			filepath.Join(exeDir, ConfigFileName),
			filepath.Join(filepath.Dir(exeDir), ConfigFileName),
		)
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c
		}
	}
	return ""
}

// mergeFileLayer shallow-merges the JSON file layer over cfg.
// A missing, unreadable or malformed file is treated as an empty layer.
func mergeFileLayer(cfg *Config, path string, logger *logging.Logger) {
	if path == "" {
		path = findConfigFile()
	}
	if path == "" {
		logger.Debug("No config file found, using defaults")
		return
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		logger.Error("Ignoring unreadable config file", "path", path, "error", err)
		return
	}

	// Decode into a scratch copy so a partially invalid file cannot leave
	// cfg half-merged.
	merged := *cfg
	if err := v.Unmarshal(&merged); err != nil {
		logger.Error("Ignoring malformed config file", "path", path, "error", err)
		return
	}
	*cfg = merged
	logger.Info("Loaded configuration file", "path", path)
}

// mergeEnvLayer shallow-merges the environment layer over cfg.
// Seven variables are recognized; a set-but-invalid TIMEOUT is discarded
// so the lower layers' value survives.
func mergeEnvLayer(cfg *Config, logger *logging.Logger) {
	if v, ok := os.LookupEnv(EnvPrefix + "URL"); ok {
		cfg.URL = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "USERNAME"); ok {
		cfg.Username = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "PASSWORD"); ok {
		cfg.Password = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "TOKEN"); ok {
		cfg.Token = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "SOURCE"); ok {
		cfg.Source = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "TIMEOUT"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.Timeout = n
		} else {
			logger.Warn("Invalid timeout in environment, keeping lower-layer value",
				"var", EnvPrefix+"TIMEOUT", "value", v)
		}
	}
	if v, ok := os.LookupEnv(EnvPrefix + "VERIFY_SSL"); ok {
		cfg.VerifySSL = parseBool(v)
	}
}

// parseBool reports whether s is one of the accepted true spellings.
// Anything else, including the empty string, is false.
func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "yes", "on":
		return true
	default:
		return false
	}
}

// BaseURL returns the endpoint URL with trailing slashes stripped.
func (c Config) BaseURL() string {
	return strings.TrimRight(c.URL, "/")
}

// TimeoutDuration returns the request timeout as a time.Duration.
func (c Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// AuthParams returns the authentication query parameters.
// Token auth strictly dominates username/password; an incomplete
// username/password pair yields no auth parameters at all.
func (c Config) AuthParams() url.Values {
	params := url.Values{}
	switch {
	case c.Token != "":
		params.Set("token", c.Token)
	case c.Username != "" && c.Password != "":
		params.Set("user", c.Username)
		params.Set("pass", c.Password)
	}
	return params
}

// RequestParams builds the full query parameter set for a hub request:
// the source tag, the auth parameters, and the operation parameters.
func (c Config) RequestParams(extra url.Values) url.Values {
	params := url.Values{}
	params.Set("source", c.Source)
	for k, vs := range c.AuthParams() {
		params[k] = vs
	}
	for k, vs := range extra {
		params[k] = vs
	}
	return params
}

// Masked returns a copy of the config with credentials masked for display.
func (c Config) Masked() Config {
	masked := c
	if masked.Token != "" {
		masked.Token = maskSecret(masked.Token)
	}
	if masked.Password != "" {
		masked.Password = "****"
	}
	return masked
}

// maskSecret masks a secret, showing only the first 4 and last 4 characters.
func maskSecret(s string) string {
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}

// Manager caches a resolved configuration record for the process lifetime.
// Get returns the cached record, resolving it on first use; Reload discards
// the cache and recomputes from scratch. Safe for concurrent use.
type Manager struct {
	mu     sync.RWMutex
	path   string
	logger *logging.Logger
	cfg    *Config
}

// NewManager creates a Manager. The path may be empty to use file discovery.
func NewManager(path string, logger *logging.Logger) *Manager {
	return &Manager{path: path, logger: logger}
}

// Get returns the current configuration, resolving it if not yet loaded.
func (m *Manager) Get() Config {
	m.mu.RLock()
	if m.cfg != nil {
		cfg := *m.cfg
		m.mu.RUnlock()
		return cfg
	}
	m.mu.RUnlock()
	return m.Reload()
}

// Reload re-resolves the configuration from all sources and replaces the
// cached record.
func (m *Manager) Reload() Config {
	cfg := Resolve(m.path, m.logger)
	m.mu.Lock()
	m.cfg = &cfg
	m.mu.Unlock()
	return cfg
}
