// Package config provides configuration loading for the hs-mcp server.
package config

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/homeseer-mcp/hs-mcp/internal/logging"
)

// resetLoadEnvOnce resets the sync.Once for testing purposes.
// loadDotEnv uses sync.Once which persists across tests.
func resetLoadEnvOnce() {
	loadEnvOnce = sync.Once{}
}

// chdir changes the working directory for the duration of the test,
// restoring the original directory on cleanup (t.Chdir requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd() error = %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir(%q) error = %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(orig); err != nil {
			t.Fatalf("Chdir(%q) error = %v", orig, err)
		}
	})
}

// quietLogger returns a logger that discards all output.
func quietLogger() *logging.Logger {
	return logging.NewWithWriter(logging.LevelError, io.Discard)
}

// envSuffixes are the recognized environment variable suffixes.
var envSuffixes = []string{"URL", "USERNAME", "PASSWORD", "TOKEN", "SOURCE", "TIMEOUT", "VERIFY_SSL"}

// clearEnv unsets all recognized HOMESEER_ variables and restores them
// after the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, suffix := range envSuffixes {
		key := EnvPrefix + suffix
		// t.Setenv registers the restore; Unsetenv makes the var truly absent.
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

func TestResolveDefaults(t *testing.T) {
	resetLoadEnvOnce()
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg := Resolve("", quietLogger())

	want := Config{
		URL:       DefaultURL,
		Source:    DefaultSource,
		Timeout:   DefaultTimeout,
		VerifySSL: true,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveFileLayer(t *testing.T) {
	resetLoadEnvOnce()
	clearEnv(t)

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")
	content := `{
  "url": "http://192.168.1.10/json",
  "token": "file-token",
  "timeout": 60,
  "verify_ssl": false
}`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	cfg := Resolve(configPath, quietLogger())

	if cfg.URL != "http://192.168.1.10/json" {
		t.Errorf("URL = %q, want %q", cfg.URL, "http://192.168.1.10/json")
	}
	if cfg.Token != "file-token" {
		t.Errorf("Token = %q, want %q", cfg.Token, "file-token")
	}
	if cfg.Timeout != 60 {
		t.Errorf("Timeout = %d, want 60", cfg.Timeout)
	}
	if cfg.VerifySSL {
		t.Error("VerifySSL = true, want false")
	}
	// Keys absent from the file fall through to defaults.
	if cfg.Source != DefaultSource {
		t.Errorf("Source = %q, want default %q", cfg.Source, DefaultSource)
	}
}

func TestResolveEnvOverridesFile(t *testing.T) {
	resetLoadEnvOnce()
	clearEnv(t)

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")
	content := `{"url": "http://file.local/json", "timeout": 60, "source": "from-file"}`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	t.Setenv(EnvPrefix+"URL", "http://env.local/json")
	t.Setenv(EnvPrefix+"TIMEOUT", "15")

	cfg := Resolve(configPath, quietLogger())

	if cfg.URL != "http://env.local/json" {
		t.Errorf("URL = %q, want env value", cfg.URL)
	}
	if cfg.Timeout != 15 {
		t.Errorf("Timeout = %d, want env value 15", cfg.Timeout)
	}
	// Keys only in the file survive the env merge.
	if cfg.Source != "from-file" {
		t.Errorf("Source = %q, want file value %q", cfg.Source, "from-file")
	}
}

func TestResolveMalformedFile(t *testing.T) {
	resetLoadEnvOnce()
	clearEnv(t)

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")
	if err := os.WriteFile(configPath, []byte(`{not valid json`), 0600); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	cfg := Resolve(configPath, quietLogger())

	// Malformed file degrades to an empty layer, never an error.
	if cfg.URL != DefaultURL {
		t.Errorf("URL = %q, want default after malformed file", cfg.URL)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %d, want default after malformed file", cfg.Timeout)
	}
}

func TestResolveInvalidTimeoutEnv(t *testing.T) {
	tests := []struct {
		name        string
		fileTimeout string
		want        int
	}{
		{
			name:        "falls back to file value",
			fileTimeout: `{"timeout": 45}`,
			want:        45,
		},
		{
			name:        "falls back to default",
			fileTimeout: "",
			want:        DefaultTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetLoadEnvOnce()
			clearEnv(t)

			configPath := ""
			if tt.fileTimeout != "" {
				configPath = filepath.Join(t.TempDir(), "config.json")
				if err := os.WriteFile(configPath, []byte(tt.fileTimeout), 0600); err != nil {
					t.Fatalf("Failed to write test config file: %v", err)
				}
			} else {
				chdir(t, t.TempDir())
			}

			t.Setenv(EnvPrefix+"TIMEOUT", "not-a-number")

			cfg := Resolve(configPath, quietLogger())
			if cfg.Timeout != tt.want {
				t.Errorf("Timeout = %d, want %d", cfg.Timeout, tt.want)
			}
		})
	}
}

func TestVerifySSLParsing(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"True", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{"on", true},
		{"false", false},
		{"0", false},
		{"anything", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run("value_"+tt.value, func(t *testing.T) {
			resetLoadEnvOnce()
			clearEnv(t)
			chdir(t, t.TempDir())
			t.Setenv(EnvPrefix+"VERIFY_SSL", tt.value)

			cfg := Resolve("", quietLogger())
			if cfg.VerifySSL != tt.want {
				t.Errorf("VerifySSL for %q = %t, want %t", tt.value, cfg.VerifySSL, tt.want)
			}
		})
	}
}

func TestFindConfigFileInCWD(t *testing.T) {
	resetLoadEnvOnce()
	clearEnv(t)

	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(`{"source": "cwd-config"}`), 0600); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}
	chdir(t, tmpDir)

	cfg := Resolve("", quietLogger())
	if cfg.Source != "cwd-config" {
		t.Errorf("Source = %q, want %q from discovered file", cfg.Source, "cwd-config")
	}
}

func TestAuthParams(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want url.Values
	}{
		{
			name: "token only",
			cfg:  Config{Token: "abc123"},
			want: url.Values{"token": []string{"abc123"}},
		},
		{
			name: "username and password",
			cfg:  Config{Username: "admin", Password: "secret"},
			want: url.Values{"user": []string{"admin"}, "pass": []string{"secret"}},
		},
		{
			name: "token dominates username and password",
			cfg:  Config{Token: "abc123", Username: "admin", Password: "secret"},
			want: url.Values{"token": []string{"abc123"}},
		},
		{
			name: "username without password",
			cfg:  Config{Username: "admin"},
			want: url.Values{},
		},
		{
			name: "password without username",
			cfg:  Config{Password: "secret"},
			want: url.Values{},
		},
		{
			name: "no credentials",
			cfg:  Config{},
			want: url.Values{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.cfg.AuthParams()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("AuthParams() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRequestParams(t *testing.T) {
	t.Parallel()

	cfg := Config{Token: "tok", Source: "homeseer-mcp"}
	extra := url.Values{}
	extra.Set("request", "getstatus")
	extra.Set("ref", "123")

	got := cfg.RequestParams(extra)

	want := url.Values{
		"source":  []string{"homeseer-mcp"},
		"token":   []string{"tok"},
		"request": []string{"getstatus"},
		"ref":     []string{"123"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RequestParams() mismatch (-want +got):\n%s", diff)
	}
}

func TestBaseURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"no trailing slash", "https://host/json", "https://host/json"},
		{"one trailing slash", "https://host/json/", "https://host/json"},
		{"many trailing slashes", "https://host/json///", "https://host/json"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Config{URL: tt.url}
			got := cfg.BaseURL()
			if got != tt.want {
				t.Errorf("BaseURL() = %q, want %q", got, tt.want)
			}
			// Idempotent under stripping.
			if again := (Config{URL: got}).BaseURL(); again != got {
				t.Errorf("BaseURL() not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestMasked(t *testing.T) {
	t.Parallel()

	cfg := Config{Token: "supersecrettoken", Password: "hunter2", Username: "admin"}
	masked := cfg.Masked()

	if masked.Token == cfg.Token {
		t.Error("Masked() did not mask the token")
	}
	if masked.Password != "****" {
		t.Errorf("Masked() password = %q, want masked", masked.Password)
	}
	if masked.Username != "admin" {
		t.Errorf("Masked() username = %q, want unchanged", masked.Username)
	}
	// Short secrets are fully masked.
	short := Config{Token: "abc"}.Masked()
	if short.Token != "****" {
		t.Errorf("Masked() short token = %q, want %q", short.Token, "****")
	}
}

func TestManagerCachesUntilReload(t *testing.T) {
	resetLoadEnvOnce()
	clearEnv(t)

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")
	if err := os.WriteFile(configPath, []byte(`{"source": "first"}`), 0600); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	m := NewManager(configPath, quietLogger())

	if got := m.Get().Source; got != "first" {
		t.Fatalf("Get() source = %q, want %q", got, "first")
	}

	// The cached record survives a file change until an explicit reload.
	if err := os.WriteFile(configPath, []byte(`{"source": "second"}`), 0600); err != nil {
		t.Fatalf("Failed to rewrite test config file: %v", err)
	}
	if got := m.Get().Source; got != "first" {
		t.Errorf("Get() after file change = %q, want cached %q", got, "first")
	}

	if got := m.Reload().Source; got != "second" {
		t.Errorf("Reload() source = %q, want %q", got, "second")
	}
	if got := m.Get().Source; got != "second" {
		t.Errorf("Get() after reload = %q, want %q", got, "second")
	}
}
