package docs

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestTopics(t *testing.T) {
	got := strings.Join(Topics(), ",")
	if got != "backends,config,keys" {
		t.Fatalf("unexpected topics: %s", got)
	}
}

func TestIndex_UsesFirstHeading(t *testing.T) {
	idx := Index()
	if len(idx) != 3 || idx[2].Name != "keys" || idx[2].Title != "Keys" {
		t.Fatalf("unexpected index: %+v", idx)
	}
}

func TestGet(t *testing.T) {
	md, ok := Get(" KEYS ")
	if !ok || !strings.HasPrefix(md, "# Keys") {
		t.Fatalf("expected keys topic, got ok=%v", ok)
	}
	if _, ok := Get("nope"); ok {
		t.Fatalf("expected unknown topic to be missing")
	}
	if _, ok := Get(""); ok {
		t.Fatalf("expected empty topic to be missing")
	}
}

func TestLoad_TitleFallsBackToName(t *testing.T) {
	fsys := fstest.MapFS{
		"content/Intro.md":  {Data: []byte("no heading here\n")},
		"content/setup.md":  {Data: []byte("\n  # Setting up \nbody\n")},
		"content/notes.txt": {Data: []byte("# ignored")},
	}
	got := load(fsys)
	if len(got) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(got))
	}
	if got["intro"].title != "intro" || got["setup"].title != "Setting up" {
		t.Fatalf("unexpected titles: %+v", got)
	}
}
