// Package config handles loading, saving, and resolving the syncwatch
// configuration file: the tracked repository list plus operational defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/skaphos/syncwatch/internal/eventlog"
	"github.com/skaphos/syncwatch/internal/model"
)

const (
	// LocalConfigFilename is the per-directory syncwatch config file.
	LocalConfigFilename = ".syncwatch.yaml"
	// ConfigAPIVersion is the current config schema apiVersion.
	ConfigAPIVersion = "skaphos.io/syncwatch/v1beta1"
	// ConfigKind is the current config schema kind.
	ConfigKind = "SyncWatchConfig"
	// EnvConfig overrides the config file or directory location.
	EnvConfig = "SYNCWATCH_CONFIG"
)

// Defaults holds default values for operations.
type Defaults struct {
	Concurrency    int `yaml:"concurrency"`
	TimeoutSeconds int `yaml:"timeout_seconds"`
	MaxLogEntries  int `yaml:"max_log_entries"`
}

// Config represents the syncwatch configuration.
type Config struct {
	APIVersion string `yaml:"apiVersion"`
	Kind       string `yaml:"kind"`
	// Repos is the tracked working-copy set. The engine never mutates it;
	// it only classifies the listed paths on demand.
	Repos []model.Repo `yaml:"repos"`
	// EventLogPath overrides where the audit log is persisted. Relative
	// paths resolve against the config file location.
	EventLogPath string   `yaml:"event_log_path,omitempty"`
	Defaults     Defaults `yaml:"defaults"`
}

// DefaultConfig returns a Config with sensible defaults applied.
func DefaultConfig() Config {
	return Config{
		APIVersion: ConfigAPIVersion,
		Kind:       ConfigKind,
		Defaults: Defaults{
			Concurrency:    8,
			TimeoutSeconds: 60,
			MaxLogEntries:  eventlog.DefaultMaxEntries,
		},
	}
}

// ConfigDir returns the platform-appropriate config directory path.
// It checks, in order: the override parameter, SYNCWATCH_CONFIG env var,
// and finally os.UserConfigDir()/syncwatch.
func ConfigDir(override string) (string, error) {
	if override != "" {
		if isConfigFilePath(override) {
			return filepath.Dir(override), nil
		}
		return override, nil
	}

	if env := os.Getenv(EnvConfig); env != "" {
		if isConfigFilePath(env) {
			return filepath.Dir(env), nil
		}
		return env, nil
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "syncwatch"), nil
}

// ConfigPath resolves the config file path from override/env/defaults.
func ConfigPath(override string) (string, error) {
	if override != "" {
		if isConfigFilePath(override) {
			return override, nil
		}
		return filepath.Join(override, "config.yaml"), nil
	}

	if env := os.Getenv(EnvConfig); env != "" {
		if isConfigFilePath(env) {
			return env, nil
		}
		return filepath.Join(env, "config.yaml"), nil
	}

	dir, err := ConfigDir("")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// ResolveConfigPath resolves config for runtime commands.
// Order: explicit override, SYNCWATCH_CONFIG, nearest local dotfile in
// cwd/parents, then global platform config path.
func ResolveConfigPath(override, cwd string) (string, error) {
	if override != "" || os.Getenv(EnvConfig) != "" {
		return ConfigPath(override)
	}

	if strings.TrimSpace(cwd) == "" {
		var err error
		cwd, err = os.Getwd()
		if err != nil {
			return "", err
		}
	}

	localPath, err := FindNearestConfigPath(cwd)
	if err != nil {
		return "", err
	}
	if localPath != "" {
		return localPath, nil
	}

	return ConfigPath("")
}

// InitConfigPath resolves where "syncwatch init" should write config.
// Order: explicit override, SYNCWATCH_CONFIG, then local dotfile in cwd.
func InitConfigPath(override, cwd string) (string, error) {
	if override != "" || os.Getenv(EnvConfig) != "" {
		return ConfigPath(override)
	}

	if strings.TrimSpace(cwd) == "" {
		var err error
		cwd, err = os.Getwd()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(cwd, LocalConfigFilename), nil
}

// FindNearestConfigPath searches cwd and each parent directory for
// .syncwatch.yaml. It returns an empty string when nothing is found.
func FindNearestConfigPath(cwd string) (string, error) {
	dir := cwd
	for {
		candidate := filepath.Join(dir, LocalConfigFilename)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		} else if err != nil && !os.IsNotExist(err) {
			return "", err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Load reads the config file from the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = ConfigAPIVersion
	}
	if cfg.Kind == "" {
		cfg.Kind = ConfigKind
	}
	if cfg.APIVersion != ConfigAPIVersion || cfg.Kind != ConfigKind {
		return nil, fmt.Errorf("unsupported config schema %s/%s in %q", cfg.APIVersion, cfg.Kind, path)
	}
	if cfg.Defaults.Concurrency <= 0 {
		cfg.Defaults.Concurrency = DefaultConfig().Defaults.Concurrency
	}
	if cfg.Defaults.TimeoutSeconds <= 0 {
		cfg.Defaults.TimeoutSeconds = DefaultConfig().Defaults.TimeoutSeconds
	}
	if cfg.Defaults.MaxLogEntries <= 0 {
		cfg.Defaults.MaxLogEntries = DefaultConfig().Defaults.MaxLogEntries
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", path, err)
	}

	return &cfg, nil
}

// Save writes the config to the given path.
func Save(cfg *Config, path string) error {
	if cfg == nil {
		return fmt.Errorf("cannot save nil config")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks repo entries for empty fields and duplicate names.
func (c *Config) Validate() error {
	seen := map[string]struct{}{}
	for _, repo := range c.Repos {
		name := strings.TrimSpace(repo.Name)
		if name == "" {
			return fmt.Errorf("repo with path %q has no name", repo.Path)
		}
		if strings.TrimSpace(repo.Path) == "" {
			return fmt.Errorf("repo %q has no path", name)
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("duplicate repo name %q", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// FindRepo looks up a tracked repository by name.
func (c *Config) FindRepo(name string) (model.Repo, bool) {
	for _, repo := range c.Repos {
		if repo.Name == name {
			return repo, true
		}
	}
	return model.Repo{}, false
}

// ResolveEventLogPath resolves the audit log file location for the given
// config file path. An explicit event_log_path wins; relative values are
// joined to the config file directory. The fallback is events.yaml next to
// the config file.
func ResolveEventLogPath(configPath string, cfg *Config) string {
	if cfg != nil && strings.TrimSpace(cfg.EventLogPath) != "" {
		p := strings.TrimSpace(cfg.EventLogPath)
		if filepath.IsAbs(p) || strings.TrimSpace(configPath) == "" {
			return filepath.Clean(p)
		}
		return filepath.Clean(filepath.Join(filepath.Dir(configPath), p))
	}
	if strings.TrimSpace(configPath) == "" {
		return ""
	}
	return filepath.Join(filepath.Dir(configPath), "events.yaml")
}

func isConfigFilePath(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(base, ".yaml") || strings.HasSuffix(base, ".yml")
}
