package commands

import (
	"context"
	"fmt"
	"strings"

	"tableflip.dev/somnium/pkg/app"
	"tableflip.dev/somnium/pkg/dream"
)

// findDream resolves a full id or an unambiguous id prefix.
func findDream(ctx context.Context, svc *app.Service, ref string) (*dream.Dream, error) {
	ref = strings.TrimSpace(ref)
	dreams, err := svc.Dreams(ctx)
	if err != nil {
		return nil, err
	}
	var match *dream.Dream
	for _, d := range dreams {
		if d.ID == ref {
			return d, nil
		}
		if ref != "" && strings.HasPrefix(d.ID, ref) {
			if match != nil {
				return nil, fmt.Errorf("dream id %q is ambiguous", ref)
			}
			match = d
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", app.ErrDreamNotFound, ref)
	}
	return match, nil
}

// findSection resolves a collection id, id prefix or exact name.
func findSection(ctx context.Context, svc *app.Service, ref string) (dream.Section, error) {
	ref = strings.TrimSpace(ref)
	sections, err := svc.Sections(ctx)
	if err != nil {
		return dream.Section{}, err
	}
	var matches []dream.Section
	for _, s := range sections {
		if s.ID == ref {
			return s, nil
		}
		if ref != "" && (strings.HasPrefix(s.ID, ref) || s.Name == ref) {
			matches = append(matches, s)
		}
	}
	switch len(matches) {
	case 0:
		return dream.Section{}, fmt.Errorf("%w: %s", app.ErrSectionNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return dream.Section{}, fmt.Errorf("collection %q is ambiguous", ref)
	}
}

func sectionName(ctx context.Context, svc *app.Service, id string) string {
	if id == "" {
		return ""
	}
	s, err := svc.Section(ctx, id)
	if err != nil {
		return ""
	}
	return s.Name
}
