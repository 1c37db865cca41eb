package viewstate

import (
	"tableflip.dev/somnium/pkg/dream"
)

// Source is the read side of the entity store.
type Source interface {
	ListDreams() []*dream.Dream
	ListSections() []dream.Section
}

// Controller drives the screen flow. It is not safe for concurrent use; the
// UI calls it from its single update loop.
type Controller struct {
	src Source

	state State
	// origin is the list view Back returns to from Detail.
	origin State

	dreams   []*dream.Dream
	sections []dream.Section
}

// NewController starts at Dashboard with a fresh load.
func NewController(src Source) *Controller {
	c := &Controller{src: src, origin: DashboardState()}
	c.enter(DashboardState())
	return c
}

// State returns the active screen.
func (c *Controller) State() State { return c.state }

// Dreams is the full journal from the last reload.
func (c *Controller) Dreams() []*dream.Dream { return c.dreams }

// Sections lists collections from the last reload.
func (c *Controller) Sections() []dream.Section { return c.sections }

// Visible derives the list for the active screen.
func (c *Controller) Visible() []*dream.Dream {
	return Derive(c.dreams, c.state)
}

// Current is the dream open in Detail, or nil.
func (c *Controller) Current() *dream.Dream {
	if c.state.Kind != Detail {
		return nil
	}
	return c.find(c.state.DreamID)
}

// Section returns the collection with id.
func (c *Controller) Section(id string) (dream.Section, bool) {
	for _, s := range c.sections {
		if s.ID == id {
			return s, true
		}
	}
	return dream.Section{}, false
}

// Reload refreshes the cached lists from the store.
func (c *Controller) Reload() {
	c.dreams = c.src.ListDreams()
	c.sections = c.src.ListSections()
}

// SelectCollection moves to Collection(id). It is ignored from Detail and
// for ids that no longer exist.
func (c *Controller) SelectCollection(id string) bool {
	if c.state.Kind == Detail {
		return false
	}
	c.Reload()
	if _, ok := c.Section(id); !ok {
		return false
	}
	c.enter(CollectionState(id))
	return true
}

// NewEntry opens the composer from any screen.
func (c *Controller) NewEntry() {
	c.enter(State{Kind: Composer})
}

// FinishComposer returns to Dashboard after a dream was created.
func (c *Controller) FinishComposer() bool {
	if c.state.Kind != Composer {
		return false
	}
	c.enter(DashboardState())
	return true
}

// CancelComposer abandons the composer.
func (c *Controller) CancelComposer() bool {
	return c.FinishComposer()
}

// OpenEntry shows dream id. Favorites and Collection are remembered so Back
// can return to them.
func (c *Controller) OpenEntry(id string) {
	switch c.state.Kind {
	case Favorites, Collection:
		c.origin = c.state
	case Detail:
	default:
		c.origin = DashboardState()
	}
	c.enter(DetailState(id))
}

// Back leaves Detail for the list view it was opened from.
func (c *Controller) Back() bool {
	if c.state.Kind != Detail {
		return false
	}
	to := c.origin
	if to.Kind == Collection {
		c.Reload()
		if _, ok := c.Section(to.SectionID); !ok {
			to = DashboardState()
		}
	}
	c.origin = DashboardState()
	c.enter(to)
	return true
}

// NavigateJournal shows every dream.
func (c *Controller) NavigateJournal() { c.enter(DashboardState()) }

// NavigateFavorites shows favorited dreams.
func (c *Controller) NavigateFavorites() { c.enter(State{Kind: Favorites}) }

// NavigateStats shows the insights screen.
func (c *Controller) NavigateStats() { c.enter(State{Kind: Stats}) }

// CollectionDeleted must be called after section id was removed from the
// store.
func (c *Controller) CollectionDeleted(id string) {
	if c.origin.Kind == Collection && c.origin.SectionID == id {
		c.origin = DashboardState()
	}
	if c.state.Kind == Collection && c.state.SectionID == id {
		c.enter(DashboardState())
		return
	}
	c.Reload()
}

// DreamDeleted must be called after dream id was removed from the store.
func (c *Controller) DreamDeleted(id string) {
	if c.state.Kind == Detail && c.state.DreamID == id {
		c.origin = DashboardState()
		c.enter(DashboardState())
		return
	}
	c.Reload()
}

// enter switches screens. Every screen except the composer shows stored data,
// so it reloads first.
func (c *Controller) enter(s State) {
	c.state = s
	if s.Kind != Composer {
		c.Reload()
	}
}

func (c *Controller) find(id string) *dream.Dream {
	for _, d := range c.dreams {
		if d.ID == id {
			return d
		}
	}
	return nil
}
