package runner

import (
	"errors"
	"strings"
	"testing"
)

func TestClipboardTools_PerPlatform(t *testing.T) {
	names := func(goos string) string {
		var out []string
		for _, c := range clipboardTools(goos) {
			out = append(out, c.name)
		}
		return strings.Join(out, ",")
	}
	if got := names("linux"); got != "wl-copy,xclip,xsel" {
		t.Fatalf("linux: %s", got)
	}
	if got := names("darwin"); got != "pbcopy" {
		t.Fatalf("darwin: %s", got)
	}
	if got := names("windows"); got != "powershell" {
		t.Fatalf("windows: %s", got)
	}
}

func TestFirstThatWorks_StopsAtFirstSuccess(t *testing.T) {
	var tried []string
	run := func(c clipTool, s string) error {
		tried = append(tried, c.name)
		if c.name == "xclip" {
			return nil
		}
		return errors.New(c.name + " missing")
	}
	if err := firstThatWorks(clipboardTools("linux"), "link", run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(tried, ",") != "wl-copy,xclip" {
		t.Fatalf("unexpected order: %v", tried)
	}
}

func TestFirstThatWorks_JoinsFailures(t *testing.T) {
	run := func(c clipTool, s string) error { return errors.New(c.name + " missing") }
	err := firstThatWorks(clipboardTools("linux"), "link", run)
	if err == nil || !strings.Contains(err.Error(), "wl-copy missing") || !strings.Contains(err.Error(), "xsel missing") {
		t.Fatalf("expected every failure reported, got %v", err)
	}
	if err := firstThatWorks(nil, "link", run); !errors.Is(err, ErrNoClipboard) {
		t.Fatalf("expected ErrNoClipboard, got %v", err)
	}
}
