package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

// isolate points config and env at a temp dir so tests never touch ~/.sbadmin.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SBADMIN_CONFIG_DIR", dir)
	for _, k := range []string{"SBADMIN_API", "SBADMIN_TOKEN", "SBADMIN_LOCAL", "SBADMIN_LOCALE", "SBADMIN_THEME", "SBADMIN_FORMAT", "SBADMIN_LOG_FILE"} {
		t.Setenv(k, "")
	}
	return dir
}

func mustRunJSON(t *testing.T, args ...string) any {
	t.Helper()
	stdout, stderr, err := runCLI(t, args)
	if err != nil {
		t.Fatalf("command failed: sbadmin %v\nerr: %v\nstderr:\n%s", args, err, stderr)
	}
	var v any
	if err := json.Unmarshal(stdout, &v); err != nil {
		t.Fatalf("unmarshal stdout: %v\nstdout:\n%s", err, stdout)
	}
	return v
}

func TestSeedThenDump(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "demo.sqlite")

	out := mustRunJSON(t, "--local", db, "seed", "--admin", "root@example.com", "--executions", "3").(map[string]any)
	user := out["user"].(map[string]any)
	if user["email"] != "root@example.com" || user["orgRole"] != "admin" {
		t.Fatalf("unexpected seeded user: %#v", user)
	}

	projects := mustRunJSON(t, "--local", db, "dump", "projects").([]any)
	if len(projects) != 1 {
		t.Fatalf("expected 1 project, got %#v", projects)
	}
	cards := mustRunJSON(t, "--local", db, "dump", "cards", "--project", "1").([]any)
	if len(cards) != 3 {
		t.Fatalf("expected 3 cards, got %d", len(cards))
	}
	page := mustRunJSON(t, "--local", db, "dump", "executions", "--rule", "1", "--limit", "2").(map[string]any)
	pg := page["pagination"].(map[string]any)
	if pg["total"].(float64) != 3 || pg["limit"].(float64) != 2 {
		t.Fatalf("unexpected pagination: %#v", pg)
	}

	stdout, _, err := runCLI(t, []string{"--local", db, "--format", "yaml", "dump", "org-users"})
	if err != nil {
		t.Fatalf("dump yaml: %v", err)
	}
	if !strings.Contains(string(stdout), "email: root@example.com") {
		t.Fatalf("expected yaml output, got:\n%s", stdout)
	}
}

func TestDump_ErrorsAreReported(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "empty.sqlite")

	_, stderr, err := runCLI(t, []string{"--local", db, "dump", "projects"})
	if err == nil || !strings.Contains(string(stderr), "not signed in") {
		t.Fatalf("expected 401 message, got err=%v stderr=%s", err, stderr)
	}
	_, _, err = runCLI(t, []string{"--local", db, "dump", "cards"})
	if err == nil {
		t.Fatalf("expected --project to be required")
	}
	_, _, err = runCLI(t, []string{"--local", db, "dump", "nope"})
	if err == nil {
		t.Fatalf("expected unknown kind error")
	}
}

func TestLoginLogout(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "demo.sqlite")
	mustRunJSON(t, "--local", db, "seed")

	u := mustRunJSON(t, "--local", db, "login", "alice@example.com").(map[string]any)
	if u["email"] != "alice@example.com" {
		t.Fatalf("unexpected user: %#v", u)
	}
	if _, _, err := runCLI(t, []string{"--local", db, "dump", "invites"}); err == nil {
		t.Fatalf("members should not list invites")
	}
	mustRunJSON(t, "--local", db, "logout")
	if _, _, err := runCLI(t, []string{"--local", db, "dump", "me"}); err == nil {
		t.Fatalf("expected 401 after logout")
	}
}

func TestConfigSetShow(t *testing.T) {
	dir := isolate(t)

	mustRunJSON(t, "config", "set", "localDb", filepath.Join(dir, "x.sqlite"))
	mustRunJSON(t, "config", "set", "metricsDays", "7")
	if _, _, err := runCLI(t, []string{"config", "set", "metricsDays", "8"}); err == nil {
		t.Fatalf("expected invalid metricsDays to fail")
	}

	show := mustRunJSON(t, "config", "show").(map[string]any)
	cfg := show["config"].(map[string]any)
	if cfg["metricsDays"].(float64) != 7 || !strings.HasSuffix(cfg["localDb"].(string), "x.sqlite") {
		t.Fatalf("unexpected config: %#v", cfg)
	}
	if show["path"] != filepath.Join(dir, "config.json") {
		t.Fatalf("unexpected path: %v", show["path"])
	}

	// localDb from the config file selects the sqlite backend.
	mustRunJSON(t, "seed")
	projects := mustRunJSON(t, "dump", "projects").([]any)
	if len(projects) != 1 {
		t.Fatalf("expected seeded project via config localDb, got %#v", projects)
	}
}

func TestBackupExportImport(t *testing.T) {
	dir := isolate(t)
	src := filepath.Join(dir, "src.sqlite")
	dst := filepath.Join(dir, "dst.sqlite")
	file := filepath.Join(dir, "backup.jsonl")

	mustRunJSON(t, "--local", src, "seed", "--executions", "2")
	out := mustRunJSON(t, "--local", src, "backup", "export", "--to", file).(map[string]any)
	if out["records"].(float64) == 0 {
		t.Fatalf("expected exported records, got %#v", out)
	}
	if _, _, err := runCLI(t, []string{"--local", dst, "backup", "import"}); err == nil {
		t.Fatalf("expected missing --from to fail")
	}
	mustRunJSON(t, "--local", dst, "backup", "import", "--from", file)

	me := mustRunJSON(t, "--local", dst, "dump", "me").(map[string]any)
	if me["email"] != "admin@example.com" {
		t.Fatalf("expected restored session, got %#v", me)
	}
}

func TestDocs(t *testing.T) {
	isolate(t)
	out := mustRunJSON(t, "docs").(map[string]any)
	if len(out["topics"].([]any)) != 3 {
		t.Fatalf("unexpected topics: %#v", out)
	}
	stdout, _, err := runCLI(t, []string{"docs", "keys"})
	if err != nil || !strings.Contains(string(stdout), "# Keys") {
		t.Fatalf("expected keys guide, err=%v out=%s", err, stdout)
	}
	if _, _, err := runCLI(t, []string{"docs", "nope"}); err == nil {
		t.Fatalf("expected unknown topic error")
	}
}
