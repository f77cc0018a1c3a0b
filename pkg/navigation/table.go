package navigation

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/platinummonkey/cadmdt/pkg/permissions"
)

// Placeholder is substituted with the organization slug in every href
const Placeholder = ":serverSlug"

// ErrInvalidTable is returned when a navigation table fails validation
var ErrInvalidTable = errors.New("invalid navigation table")

//go:embed table.yaml
var defaultTable []byte

// Access is the requirement attached to a link. Roles and Permissions combine with
// OR: listing a role admits that role regardless of the permission check.
type Access struct {
	Roles       []permissions.Role       `yaml:"roles,omitempty" json:"roles,omitempty"`
	Permissions []permissions.Permission `yaml:"permissions,omitempty" json:"permissions,omitempty"`
	Mode        permissions.Mode         `yaml:"mode,omitempty" json:"mode,omitempty"`
}

// Link is one navigation entry
type Link struct {
	Label  string `yaml:"label" json:"label"`
	Href   string `yaml:"href" json:"href"`
	Icon   string `yaml:"icon,omitempty" json:"icon,omitempty"`
	Access `yaml:",inline"`
}

// Group is a titled section of the sidebar
type Group struct {
	Name  string `yaml:"name" json:"name"`
	Links []Link `yaml:"links" json:"links"`
}

// Table is the ordered route and navigation access table
type Table struct {
	Groups []Group `yaml:"groups" json:"groups"`
}

// Load parses and validates a YAML table
func Load(data []byte) (*Table, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var t Table
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("failed to parse navigation table: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

var loadDefault = sync.OnceValues(func() (*Table, error) {
	return Load(defaultTable)
})

// Default returns the built-in CAD table. It panics if the embedded file is invalid,
// which the package tests rule out.
func Default() *Table {
	t, err := loadDefault()
	if err != nil {
		panic(err)
	}
	return t
}

// Links returns every link in table order
func (t *Table) Links() []Link {
	var links []Link
	for _, g := range t.Groups {
		links = append(links, g.Links...)
	}
	return links
}

// ReplaceSlug substitutes the organization slug into a templated href
func ReplaceSlug(href, slug string) string {
	return strings.ReplaceAll(href, Placeholder, slug)
}

func clean(p string) string {
	if len(p) > 1 {
		return strings.TrimSuffix(p, "/")
	}
	return p
}

// FindRequiredAccess returns the access of the first link whose path equals path or
// is a parent of it. The boolean is false when no link matches.
func (t *Table) FindRequiredAccess(path, slug string) (*Access, bool) {
	link, ok := t.Match(path, slug)
	if !ok {
		return nil, false
	}
	return &link.Access, true
}

// Match is FindRequiredAccess returning the whole link, with its href resolved
func (t *Table) Match(path, slug string) (Link, bool) {
	target := clean(path)
	for _, g := range t.Groups {
		for _, l := range g.Links {
			linkPath := clean(ReplaceSlug(l.Href, slug))
			if target == linkPath || strings.HasPrefix(target, linkPath+"/") {
				l.Href = linkPath
				return l, true
			}
		}
	}
	return Link{}, false
}

// Filter returns the groups with the links for which allow reports true. Hrefs in the
// result carry the slug. Groups left without links are dropped.
func (t *Table) Filter(slug string, allow func(path string) bool) []Group {
	groups := make([]Group, 0, len(t.Groups))
	for _, g := range t.Groups {
		var links []Link
		for _, l := range g.Links {
			l.Href = ReplaceSlug(l.Href, slug)
			if allow(l.Href) {
				links = append(links, l)
			}
		}
		if len(links) > 0 {
			groups = append(groups, Group{Name: g.Name, Links: links})
		}
	}
	return groups
}
