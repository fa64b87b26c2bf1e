// Package docs embeds the user guide printed by `sbadmin docs`.
//
// Each page is content/<topic>.md; its first "# " heading is the title shown
// in the topic index.
package docs

import (
	"bufio"
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed content/*.md
var contentFS embed.FS

// Topic is one page of the guide.
type Topic struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

type page struct {
	title string
	body  string
}

var guide = load(contentFS)

func load(fsys fs.FS) map[string]page {
	out := map[string]page{}
	files, _ := fs.Glob(fsys, "content/*.md")
	for _, f := range files {
		name := strings.ToLower(strings.TrimSuffix(path.Base(f), ".md"))
		b, err := fs.ReadFile(fsys, f)
		if name == "" || err != nil {
			continue
		}
		body := string(b)
		out[name] = page{title: titleOf(body, name), body: body}
	}
	return out
}

func titleOf(md, fallback string) string {
	sc := bufio.NewScanner(strings.NewReader(md))
	for sc.Scan() {
		if t, ok := strings.CutPrefix(strings.TrimSpace(sc.Text()), "# "); ok {
			return strings.TrimSpace(t)
		}
	}
	return fallback
}

// Topics lists the topic names in order.
func Topics() []string {
	names := make([]string, 0, len(guide))
	for n := range guide {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Index lists every topic with its title, ordered by name.
func Index() []Topic {
	out := make([]Topic, 0, len(guide))
	for _, n := range Topics() {
		out = append(out, Topic{Name: n, Title: guide[n].title})
	}
	return out
}

// Get returns the markdown of a topic; the name is case-insensitive.
func Get(topic string) (string, bool) {
	p, ok := guide[strings.ToLower(strings.TrimSpace(topic))]
	return p.body, ok
}
