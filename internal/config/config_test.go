package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func withConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SBADMIN_CONFIG_DIR", dir)
	return dir
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	withConfigDir(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *cfg != (Config{}) {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoad_AcceptsCommentsAndTrailingCommas(t *testing.T) {
	dir := withConfigDir(t)
	raw := `{
  // server to talk to
  "apiUrl": "https://sb.example.com",
  /* faster search */
  "searchDebounceMs": 150,
  "metricsDays": 7,
}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(raw), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIURL != "https://sb.example.com" || cfg.SearchDebounceMs != 150 || cfg.MetricsDays != 7 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestSave_RoundTripKeepsBackup(t *testing.T) {
	dir := withConfigDir(t)
	cfg := &Config{Locale: "es"}
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := cfg.Set("toastMs", "2500"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Locale != "es" || got.ToastMs != 2500 {
		t.Fatalf("unexpected config: %+v", got)
	}
	bak, err := os.ReadFile(filepath.Join(dir, "config.json.bak"))
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if strings.Contains(string(bak), "toastMs") {
		t.Fatalf("backup should hold the previous version: %s", bak)
	}
	info, err := os.Stat(filepath.Join(dir, "config.json"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600, got %v", info.Mode().Perm())
	}
}

func TestSet_Validates(t *testing.T) {
	var cfg Config
	cases := []struct {
		key, value string
		ok         bool
	}{
		{"theme", "dark", true},
		{"theme", "purple", false},
		{"metricsDays", "30", true},
		{"metricsDays", "14", false},
		{"toastMs", "-1", false},
		{"toastMs", "", true},
		{"nope", "x", false},
	}
	for _, tc := range cases {
		err := cfg.Set(tc.key, tc.value)
		if (err == nil) != tc.ok {
			t.Fatalf("Set(%q, %q): err=%v, want ok=%v", tc.key, tc.value, err, tc.ok)
		}
	}
}
