// Package config loads slotty's layered JSONC configuration.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
)

// Config errors.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrPromptEmpty        = errors.New("prompt cannot be empty")
)

// FileName is the project config file looked up in the working directory.
const FileName = ".slotty.json"

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	Prompt       string `json:"prompt"`
	HistoryFile  string `json:"history_file,omitempty"`  //nolint:tagliatelle // snake_case for config file
	SnapshotFile string `json:"snapshot_file,omitempty"` //nolint:tagliatelle // snake_case for config file

	// Resolved values (computed, not serialized)
	EffectiveCwd string  `json:"-"`
	Sources      Sources `json:"-"`
}

// Sources tracks which config files were loaded.
type Sources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project config if loaded, empty otherwise
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Prompt:       "slotty> ",
		SnapshotFile: ".slotty.snapshot.json",
	}
}

// LoadInput holds the inputs for Load.
type LoadInput struct {
	WorkDirOverride      string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath           string            // -c/--config flag value
	PromptOverride       string            // --prompt flag value; empty means no override
	SnapshotFileOverride string            // --snapshot-file flag value; empty means no override
	Env                  map[string]string // environment variables
}

// Load loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config (~/.config/slotty/config.json or $XDG_CONFIG_HOME/slotty/config.json)
// 3. Project config file in the working directory (.slotty.json, if exists)
// 4. Explicit config file via ConfigPath (replaces the project file)
// 5. CLI overrides.
//
// HistoryFile and SnapshotFile are resolved to absolute paths.
func Load(input LoadInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := Default()

	globalCfg, globalPath, err := loadGlobal(input.Env)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Global = globalPath
	cfg = merge(cfg, globalCfg)

	projectCfg, projectPath, err := loadProject(workDir, input.ConfigPath)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Project = projectPath
	cfg = merge(cfg, projectCfg)

	if input.PromptOverride != "" {
		cfg.Prompt = input.PromptOverride
	}

	if input.SnapshotFileOverride != "" {
		cfg.SnapshotFile = input.SnapshotFileOverride
	}

	if cfg.HistoryFile == "" {
		cfg.HistoryFile = defaultHistoryPath(input.Env)
	}

	cfg.EffectiveCwd = workDir
	cfg.SnapshotFile = absPath(workDir, cfg.SnapshotFile)
	cfg.HistoryFile = absPath(workDir, cfg.HistoryFile)

	return cfg, nil
}

// Format returns the config as indented JSON.
func Format(cfg Config) (string, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false) // prompts usually end in '>'
	enc.SetIndent("", "  ")

	err := enc.Encode(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to format config: %w", err)
	}

	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// globalPath returns the path to the global config file, or "" if neither
// XDG_CONFIG_HOME nor HOME is set.
func globalPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "slotty", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "slotty", "config.json")
	}

	return ""
}

func defaultHistoryPath(env map[string]string) string {
	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".slotty_history")
	}

	return ""
}

func loadGlobal(env map[string]string) (Config, string, error) {
	path := globalPath(env)
	if path == "" {
		return Config{}, "", nil
	}

	cfg, loaded, err := loadFile(path, false)
	if err != nil || !loaded {
		return Config{}, "", err
	}

	return cfg, path, nil
}

func loadProject(workDir, configPath string) (Config, string, error) {
	var (
		path      string
		mustExist bool
	)

	if configPath != "" {
		path = configPath
		if !filepath.IsAbs(path) {
			path = filepath.Join(workDir, path)
		}

		mustExist = true

		_, statErr := os.Stat(path)
		if statErr != nil {
			return Config{}, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
		}
	} else {
		path = filepath.Join(workDir, FileName)
	}

	cfg, loaded, err := loadFile(path, mustExist)
	if err != nil || !loaded {
		return Config{}, "", err
	}

	return cfg, path, nil
}

// loadFile loads one config file. If mustExist is false, a missing file
// returns loaded=false and no error.
func loadFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is intentionally user-controlled
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Config{}, false, nil
		}

		return Config{}, false, fmt.Errorf("%w: %s", ErrConfigFileRead, path)
	}

	cfg, err := parse(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	return cfg, true, nil
}

func parse(data []byte) (Config, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	err = json.Unmarshal(standardized, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}

	// An explicit "prompt": "" is an error; an absent key keeps the default.
	var raw map[string]any

	_ = json.Unmarshal(standardized, &raw)

	if val, exists := raw["prompt"]; exists {
		if str, ok := val.(string); ok && str == "" {
			return Config{}, ErrPromptEmpty
		}
	}

	return cfg, nil
}

func merge(base, overlay Config) Config {
	if overlay.Prompt != "" {
		base.Prompt = overlay.Prompt
	}

	if overlay.HistoryFile != "" {
		base.HistoryFile = overlay.HistoryFile
	}

	if overlay.SnapshotFile != "" {
		base.SnapshotFile = overlay.SnapshotFile
	}

	return base
}

func absPath(workDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(workDir, path)
}
