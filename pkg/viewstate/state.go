// Package viewstate models the screen flow of the journal as an explicit
// tagged union plus a controller of named transitions.
package viewstate

import (
	"fmt"

	"tableflip.dev/somnium/pkg/dream"
)

// Kind names a screen.
type Kind int

const (
	Dashboard Kind = iota
	Composer
	Detail
	Stats
	Favorites
	Collection
)

func (k Kind) String() string {
	switch k {
	case Dashboard:
		return "dashboard"
	case Composer:
		return "composer"
	case Detail:
		return "detail"
	case Stats:
		return "stats"
	case Favorites:
		return "favorites"
	case Collection:
		return "collection"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// State is the active screen. DreamID is set only for Detail and SectionID
// only for Collection.
type State struct {
	Kind      Kind
	DreamID   string
	SectionID string
}

// DashboardState is the initial state.
func DashboardState() State { return State{Kind: Dashboard} }

// DetailState opens the dream with id.
func DetailState(id string) State { return State{Kind: Detail, DreamID: id} }

// CollectionState shows the dreams filed under section id.
func CollectionState(id string) State { return State{Kind: Collection, SectionID: id} }

// ListBearing reports whether the screen shows a filtered dream list.
func (s State) ListBearing() bool {
	switch s.Kind {
	case Dashboard, Favorites, Collection:
		return true
	}
	return false
}

func (s State) String() string {
	switch s.Kind {
	case Detail:
		return "detail(" + s.DreamID + ")"
	case Collection:
		return "collection(" + s.SectionID + ")"
	}
	return s.Kind.String()
}

// Derive returns the dreams visible in s, preserving the input order. States
// that do not show a list yield the full journal.
func Derive(dreams []*dream.Dream, s State) []*dream.Dream {
	switch s.Kind {
	case Favorites:
		return filter(dreams, func(d *dream.Dream) bool { return d.IsFavorite })
	case Collection:
		return filter(dreams, func(d *dream.Dream) bool { return d.InSection(s.SectionID) })
	default:
		out := make([]*dream.Dream, len(dreams))
		copy(out, dreams)
		return out
	}
}

func filter(dreams []*dream.Dream, keep func(*dream.Dream) bool) []*dream.Dream {
	out := make([]*dream.Dream, 0, len(dreams))
	for _, d := range dreams {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}
