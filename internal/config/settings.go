package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// SettingsFile is the settings file name inside the config directory.
const SettingsFile = "settings.yaml"

// TreeSettings holds folder-tree defaults.
type TreeSettings struct {
	Enabled     bool     `yaml:"enabled"                json:"enabled"`
	Base        string   `yaml:"base,omitempty"         json:"base,omitempty"`
	IgnoreRegex string   `yaml:"ignore_regex,omitempty" json:"ignore_regex,omitempty"`
	IgnoreGlobs []string `yaml:"ignore_globs,omitempty" json:"ignore_globs,omitempty"`
	MaxDepth    int      `yaml:"max_depth,omitempty"    json:"max_depth,omitempty"`
}

// Settings are the persisted user preferences. Zero values mean
// "use the built-in default".
type Settings struct {
	// DefaultPath resolves relative selection paths when set.
	DefaultPath string `yaml:"default_path,omitempty" json:"default_path,omitempty"`
	// HistoryPath overrides the history base directory.
	HistoryPath string `yaml:"history_path,omitempty" json:"history_path,omitempty"`
	// AutoCopy controls whether copy, back, and forward write the
	// clipboard; when false they print to stdout instead.
	AutoCopy *bool `yaml:"auto_copy,omitempty" json:"auto_copy,omitempty"`
	// HumanTime renders modified lines in a human format instead of
	// RFC 3339.
	HumanTime bool `yaml:"human_time,omitempty" json:"human_time,omitempty"`
	// Tree holds folder-tree defaults.
	Tree TreeSettings `yaml:"tree,omitempty" json:"tree,omitempty"`
}

// AutoCopyEnabled returns the auto-copy preference, defaulting to true.
func (s *Settings) AutoCopyEnabled() bool {
	if s.AutoCopy == nil {
		return true
	}
	return *s.AutoCopy
}

// Load reads settings from the config directory. A missing file yields
// default settings; a malformed file is an error.
func Load() (*Settings, error) {
	return LoadFrom(filepath.Join(Dir(), SettingsFile))
}

// LoadFrom reads settings from an explicit path.
func LoadFrom(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Settings{}, nil
		}
		return nil, fmt.Errorf("reading settings %s: %w", path, err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	return &s, nil
}

// SettingsPath returns the settings file location, "" when no config
// directory can be resolved.
func SettingsPath() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, SettingsFile)
}

// Set assigns one settings key from its string form. Keys use the YAML
// names, tree fields prefixed with "tree." (e.g. tree.max_depth).
// List values are comma-separated.
func (s *Settings) Set(key, value string) error {
	switch key {
	case "default_path":
		s.DefaultPath = value
	case "history_path":
		s.HistoryPath = value
	case "auto_copy":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("auto_copy: %q is not a boolean", value)
		}
		s.AutoCopy = &b
	case "human_time":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("human_time: %q is not a boolean", value)
		}
		s.HumanTime = b
	case "tree.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("tree.enabled: %q is not a boolean", value)
		}
		s.Tree.Enabled = b
	case "tree.base":
		s.Tree.Base = value
	case "tree.ignore_regex":
		s.Tree.IgnoreRegex = value
	case "tree.ignore_globs":
		s.Tree.IgnoreGlobs = splitList(value)
	case "tree.max_depth":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("tree.max_depth: %q is not a non-negative integer", value)
		}
		s.Tree.MaxDepth = n
	default:
		return fmt.Errorf("unknown settings key %q", key)
	}
	return nil
}

// Keys lists the settable configuration keys.
func Keys() []string {
	return []string{
		"default_path",
		"history_path",
		"auto_copy",
		"human_time",
		"tree.enabled",
		"tree.base",
		"tree.ignore_regex",
		"tree.ignore_globs",
		"tree.max_depth",
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Save writes settings to the config directory, creating it if needed.
func (s *Settings) Save() error {
	dir := Dir()
	if dir == "" {
		return errors.New("cannot resolve config directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("serializing settings: %w", err)
	}
	path := filepath.Join(dir, SettingsFile)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing settings %s: %w", path, err)
	}
	return nil
}
