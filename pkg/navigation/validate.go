package navigation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/platinummonkey/cadmdt/pkg/permissions"
)

// Validate checks every link and rejects entries that could never match because an
// earlier link already covers their path.
func (t *Table) Validate() error {
	var errs []error

	type seen struct {
		label string
		path  string
	}
	var earlier []seen

	for gi, g := range t.Groups {
		if g.Name == "" {
			errs = append(errs, fmt.Errorf("group %d: name is required", gi))
		}
		if len(g.Links) == 0 {
			errs = append(errs, fmt.Errorf("group %q: no links", g.Name))
		}

		for _, l := range g.Links {
			if err := validateLink(l); err != nil {
				errs = append(errs, err)
				continue
			}

			p := clean(l.Href)
			for _, e := range earlier {
				if p == e.path {
					errs = append(errs, fmt.Errorf("link %q: duplicate href %s (also %q)", l.Label, l.Href, e.label))
				} else if strings.HasPrefix(p, e.path+"/") {
					errs = append(errs, fmt.Errorf("link %q: %s is shadowed by earlier link %q", l.Label, l.Href, e.label))
				}
			}
			earlier = append(earlier, seen{label: l.Label, path: p})
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidTable, errors.Join(errs...))
	}
	return nil
}

func validateLink(l Link) error {
	if l.Label == "" {
		return fmt.Errorf("link %s: label is required", l.Href)
	}
	if !strings.HasPrefix(l.Href, "/") || !strings.Contains(l.Href, Placeholder) {
		return fmt.Errorf("link %q: href %q must be absolute and contain %s", l.Label, l.Href, Placeholder)
	}

	for _, r := range l.Roles {
		if parsed, err := permissions.ParseRole(string(r)); err != nil || parsed != r {
			return fmt.Errorf("link %q: unknown role %q", l.Label, r)
		}
	}
	for _, p := range l.Permissions {
		if !permissions.Known(p) {
			return fmt.Errorf("link %q: %w: %q", l.Label, permissions.ErrUnknownPermission, p)
		}
	}

	switch l.Mode {
	case "", permissions.ModeAnd, permissions.ModeOr:
	default:
		return fmt.Errorf("link %q: %w: %q", l.Label, permissions.ErrUnknownMode, l.Mode)
	}
	return nil
}
