// Package config loads and saves the sbadmin settings file.
//
// The file is JSON that may carry comments and trailing commas. Values from
// the file sit between command line flags/environment and built-in defaults.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"
)

type Config struct {
	APIURL  string `json:"apiUrl,omitempty"`
	Token   string `json:"token,omitempty"`
	LocalDB string `json:"localDb,omitempty"`

	Locale string `json:"locale,omitempty"`
	Theme  string `json:"theme,omitempty"`

	SearchDebounceMs   int `json:"searchDebounceMs,omitempty"`
	ToastMs            int `json:"toastMs,omitempty"`
	ExecutionsPageSize int `json:"executionsPageSize,omitempty"`
	MetricsDays        int `json:"metricsDays,omitempty"`

	LogFile string `json:"logFile,omitempty"`
}

// Keys lists the settable keys in file order.
var Keys = []string{
	"apiUrl", "token", "localDb", "locale", "theme",
	"searchDebounceMs", "toastMs", "executionsPageSize", "metricsDays", "logFile",
}

func Dir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.sbadmin).
	if v := strings.TrimSpace(os.Getenv("SBADMIN_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".sbadmin"), nil
}

func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// DefaultLocalDB is where the local backend lives when nothing else is set.
func DefaultLocalDB() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "local.sqlite"), nil
}

// Load reads the config file. A missing file is an empty config.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(jsonc.ToJSON(b), &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

// Save writes cfg atomically, keeping the previous file as config.json.bak.
// Comments in the previous file are not preserved.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWriteFile(dir, "config.json.bak.*.tmp", path+".bak", prev, 0o644)
	}
	// The file may hold a token.
	return atomicWriteFile(dir, "config.json.*.tmp", path, b, 0o600)
}

// Set assigns one key from its string form. Empty values clear the key.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	num := func(dst *int) error {
		if value == "" {
			*dst = 0
			return nil
		}
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%s: expected a non-negative integer, got %q", key, value)
		}
		*dst = n
		return nil
	}
	switch key {
	case "apiUrl":
		c.APIURL = value
	case "token":
		c.Token = value
	case "localDb":
		c.LocalDB = value
	case "locale":
		c.Locale = value
	case "theme":
		if value != "" && !slices.Contains([]string{"auto", "light", "dark"}, value) {
			return fmt.Errorf("theme: expected auto|light|dark, got %q", value)
		}
		c.Theme = value
	case "searchDebounceMs":
		return num(&c.SearchDebounceMs)
	case "toastMs":
		return num(&c.ToastMs)
	case "executionsPageSize":
		return num(&c.ExecutionsPageSize)
	case "metricsDays":
		if err := num(&c.MetricsDays); err != nil {
			return err
		}
		if c.MetricsDays != 0 && !slices.Contains([]int{7, 30, 90}, c.MetricsDays) {
			return fmt.Errorf("metricsDays: expected 7|30|90, got %d", c.MetricsDays)
		}
	case "logFile":
		c.LogFile = value
	default:
		return fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(Keys, ", "))
	}
	return nil
}
