package main

import (
	"os"
	"strings"

	"scrumbringer-admin/internal/app"
	"scrumbringer-admin/internal/cli"
)

func isPageName(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, p := range app.Pages {
		if p.String() == s {
			return true
		}
	}
	return false
}

func rewritePageShortcutArgs(argv []string) []string {
	// Convenience: `sbadmin cards` works like `sbadmin open cards`.
	//
	// Cobra treats the first non-flag token as a subcommand, so argv is
	// rewritten before parsing. Persistent flags may come first
	// (`sbadmin --local db.sqlite cards`), so look for the first positional.
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--api":      true,
		"--token":    true,
		"--local":    true,
		"--locale":   true,
		"--theme":    true,
		"--format":   true,
		"--log-file": true,
	}
	boolFlags := map[string]bool{
		"--pretty": true,
	}

	insert := func(i int) []string {
		out := make([]string, 0, len(argv)+1)
		out = append(out, argv[:i]...)
		out = append(out, "open")
		return append(out, argv[i:]...)
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && isPageName(argv[i+1]) {
				return insert(i + 1)
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if strings.Contains(a, "=") || boolFlags[a] {
				continue
			}
			if valueFlags[a] {
				i++
			}
			continue
		}
		if isPageName(a) {
			return insert(i)
		}
		return argv
	}
	return argv
}

func main() {
	os.Args = rewritePageShortcutArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
