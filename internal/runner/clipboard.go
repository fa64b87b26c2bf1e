package runner

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
)

// ErrNoClipboard is returned when no clipboard tool could be tried.
var ErrNoClipboard = errors.New("no clipboard available")

// clipTool is a command that reads the clipboard content from stdin.
type clipTool struct {
	name string
	args []string
}

// clipboardTools lists the command line fallbacks for goos, preferred first.
func clipboardTools(goos string) []clipTool {
	switch goos {
	case "darwin":
		return []clipTool{{name: "pbcopy"}}
	case "windows":
		return []clipTool{{name: "powershell", args: []string{"-NoProfile", "-Command", "Set-Clipboard"}}}
	default:
		return []clipTool{
			{name: "wl-copy"},
			{name: "xclip", args: []string{"-selection", "clipboard"}},
			{name: "xsel", args: []string{"--clipboard", "--input"}},
		}
	}
}

// CopyToClipboard writes s to the system clipboard: the clipboard library
// first, then each command line tool in turn. Invite links are copied this way.
func CopyToClipboard(s string) error {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if !clipboard.Unsupported {
		if err := clipboard.WriteAll(s); err == nil {
			return nil
		}
	}
	return firstThatWorks(clipboardTools(runtime.GOOS), s, pipeTo)
}

func firstThatWorks(tools []clipTool, s string, run func(clipTool, string) error) error {
	var errs []error
	for _, t := range tools {
		err := run(t, s)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return ErrNoClipboard
	}
	return errors.Join(errs...)
}

func pipeTo(t clipTool, s string) error {
	if _, err := exec.LookPath(t.name); err != nil {
		return err
	}
	cmd := exec.Command(t.name, t.args...)
	cmd.Stdin = strings.NewReader(s)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", t.name, err)
	}
	return nil
}
