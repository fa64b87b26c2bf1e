package app

import (
	"fmt"
	"strings"
)

type Page int

const (
	PageLogin Page = iota
	PageProjects
	PageMembers
	PageCards
	PageWorkflows
	PageTemplates
	PageOrgSettings
	PageMetrics
	PageInvites
)

// Pages lists the navigable pages in menu order.
var Pages = []Page{
	PageProjects,
	PageMembers,
	PageCards,
	PageWorkflows,
	PageTemplates,
	PageOrgSettings,
	PageMetrics,
	PageInvites,
}

var pageNames = map[Page]string{
	PageLogin:       "login",
	PageProjects:    "projects",
	PageMembers:     "members",
	PageCards:       "cards",
	PageWorkflows:   "workflows",
	PageTemplates:   "templates",
	PageOrgSettings: "org",
	PageMetrics:     "metrics",
	PageInvites:     "invites",
}

func (p Page) String() string {
	if n, ok := pageNames[p]; ok {
		return n
	}
	return fmt.Sprintf("page(%d)", int(p))
}

func ParsePage(s string) (Page, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for p, n := range pageNames {
		if n == s {
			return p, nil
		}
	}
	return PageLogin, fmt.Errorf("unknown page %q", s)
}

// NeedsProject reports whether the page shows data of the selected project.
func (p Page) NeedsProject() bool {
	return p == PageMembers || p == PageCards
}

// AdminOnly reports whether only org admins may open the page.
func (p Page) AdminOnly() bool {
	return p == PageOrgSettings || p == PageInvites || p == PageMetrics
}
