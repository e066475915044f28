// Package config provides configuration management for ghissues.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	keyOwner = "githubIssues.owner"
	keyRepo  = "githubIssues.repo"
)

// Config holds process settings read from the environment
type Config struct {
	// GitHubToken overrides the stored credential when set. It is never persisted
	GitHubToken string
	// Dir holds config.yaml, secrets.json and the diagnostic log
	Dir string

	TelemetryEnabled  bool
	TelemetryEndpoint string
	TelemetryInsecure bool
}

// Load loads configuration from environment variables
func Load() (Config, error) {
	config := Config{
		GitHubToken:       os.Getenv("GITHUB_TOKEN"),
		Dir:               os.Getenv("GHISSUES_CONFIG_DIR"),
		TelemetryEnabled:  os.Getenv("GHISSUES_TELEMETRY") == "true",
		TelemetryEndpoint: os.Getenv("GHISSUES_OTLP_ENDPOINT"),
		TelemetryInsecure: os.Getenv("GHISSUES_OTLP_INSECURE") == "true",
	}

	if config.Dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("failed to find home directory: %w", err)
		}
		config.Dir = filepath.Join(home, ".config", "ghissues")
	}

	return config, nil
}

func (c Config) SettingsPath() string { return filepath.Join(c.Dir, "config.yaml") }
func (c Config) SecretsPath() string  { return filepath.Join(c.Dir, "secrets.json") }
func (c Config) LogPath() string      { return filepath.Join(c.Dir, "ghissues.log") }

// RepoConfig identifies the repository whose issues are shown
type RepoConfig struct {
	Owner string
	Repo  string
}

// Valid reports whether both owner and repo are set
func (rc RepoConfig) Valid() bool {
	return rc.Owner != "" && rc.Repo != ""
}

func (rc RepoConfig) String() string {
	return rc.Owner + "/" + rc.Repo
}

// Settings is the persisted, user-editable configuration
type Settings struct {
	v    *viper.Viper
	path string
}

// LoadSettings reads the settings file at path. A missing file is not an error; values can also come from
// GHISSUES_GITHUBISSUES_OWNER and GHISSUES_GITHUBISSUES_REPO
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("GHISSUES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(keyOwner, "")
	v.SetDefault(keyRepo, "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read settings: %w", err)
		}
	}

	return &Settings{v: v, path: path}, nil
}

// RepoConfig returns the configured repository, or false if owner or repo is unset
func (s *Settings) RepoConfig() (RepoConfig, bool) {
	rc := RepoConfig{
		Owner: strings.TrimSpace(s.v.GetString(keyOwner)),
		Repo:  strings.TrimSpace(s.v.GetString(keyRepo)),
	}
	if !rc.Valid() {
		return RepoConfig{}, false
	}
	return rc, true
}

// SetRepository persists the repository target
func (s *Settings) SetRepository(owner, repo string) error {
	s.v.Set(keyOwner, owner)
	s.v.Set(keyRepo, repo)

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}
