package main

import (
	"reflect"
	"testing"
)

func TestRewritePageShortcutArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"sbadmin"},
			want: []string{"sbadmin"},
		},
		{
			name: "page first token",
			in:   []string{"sbadmin", "cards"},
			want: []string{"sbadmin", "open", "cards"},
		},
		{
			name: "page after value flag",
			in:   []string{"sbadmin", "--local", "./demo.sqlite", "metrics"},
			want: []string{"sbadmin", "--local", "./demo.sqlite", "open", "metrics"},
		},
		{
			name: "page after equals flag",
			in:   []string{"sbadmin", "--theme=dark", "org"},
			want: []string{"sbadmin", "--theme=dark", "open", "org"},
		},
		{
			name: "page after bool flag",
			in:   []string{"sbadmin", "--pretty", "invites"},
			want: []string{"sbadmin", "--pretty", "open", "invites"},
		},
		{
			name: "page after double dash",
			in:   []string{"sbadmin", "--local", "x.sqlite", "--", "workflows"},
			want: []string{"sbadmin", "--local", "x.sqlite", "--", "open", "workflows"},
		},
		{
			name: "flag value that looks like a page is not rewritten",
			in:   []string{"sbadmin", "--local", "cards", "dump", "projects"},
			want: []string{"sbadmin", "--local", "cards", "dump", "projects"},
		},
		{
			name: "subcommand not rewritten",
			in:   []string{"sbadmin", "dump", "projects"},
			want: []string{"sbadmin", "dump", "projects"},
		},
		{
			name: "login is a command, not a page",
			in:   []string{"sbadmin", "login", "alice@example.com"},
			want: []string{"sbadmin", "login", "alice@example.com"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewritePageShortcutArgs(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}
