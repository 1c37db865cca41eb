package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tableflip.dev/somnium/pkg/dream"
	"tableflip.dev/somnium/pkg/entitlement"
	"tableflip.dev/somnium/pkg/oracle"
	"tableflip.dev/somnium/pkg/stats"
	"tableflip.dev/somnium/pkg/store"
)

// Service provides high-level operations for dreams and collections.
// It wraps persistence, the premium gate and the AI collaborators so the
// CLI, the TUI and the MCP server share one workflow.
type Service struct {
	Persistence store.Persistence
	Gate        *entitlement.Gate

	Analyzer    oracle.Analyzer
	Illustrator oracle.Illustrator
	Chatter     oracle.Chatter
	Images      ImageNormalizer

	Log   zerolog.Logger
	Clock func() time.Time
}

// ImageNormalizer bounds an illustration before storage. It must return its
// input when it cannot do better.
type ImageNormalizer interface {
	Normalize(dataURI string) string
}

var (
	ErrNoPersistence    = errors.New("app: no persistence configured")
	ErrNoGate           = errors.New("app: no entitlement gate configured")
	ErrEmptyContent     = errors.New("app: dream content is empty")
	ErrEmptySectionName = errors.New("app: collection name is empty")
	ErrDreamNotFound    = errors.New("app: dream not found")
	ErrSectionNotFound  = errors.New("app: collection not found")
)

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func (s *Service) ready() error {
	if s.Persistence == nil {
		return ErrNoPersistence
	}
	if s.Gate == nil {
		return ErrNoGate
	}
	return nil
}

// Dreams lists the journal, newest first.
func (s *Service) Dreams(ctx context.Context) ([]*dream.Dream, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.Persistence.ListDreams(), nil
}

// Dream finds one dream by id.
func (s *Service) Dream(ctx context.Context, id string) (*dream.Dream, error) {
	dreams, err := s.Dreams(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range dreams {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrDreamNotFound, id)
}

// Sections lists collections in creation order.
func (s *Service) Sections(ctx context.Context) ([]dream.Section, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.Persistence.ListSections(), nil
}

// Section finds a collection by id.
func (s *Service) Section(ctx context.Context, id string) (dream.Section, error) {
	sections, err := s.Sections(ctx)
	if err != nil {
		return dream.Section{}, err
	}
	for _, sec := range sections {
		if sec.ID == id {
			return sec, nil
		}
	}
	return dream.Section{}, fmt.Errorf("%w: %s", ErrSectionNotFound, id)
}

// Stats summarizes the whole journal.
func (s *Service) Stats(ctx context.Context) (stats.Summary, error) {
	dreams, err := s.Dreams(ctx)
	if err != nil {
		return stats.Summary{}, err
	}
	return stats.Compute(dreams), nil
}

// Watch subscribes to storage changes made by other processes.
func (s *Service) Watch(ctx context.Context) (<-chan store.Event, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	w, ok := s.Persistence.(interface {
		Watch(context.Context) (<-chan store.Event, error)
	})
	if !ok {
		return nil, store.ErrWatchUnsupported
	}
	return w.Watch(ctx)
}

// Changes lists the fields Edit overwrites. Nil fields are left alone.
type Changes struct {
	Content *string
	Date    *time.Time
	Labels  *[]string
	IsLucid *bool
}

// Edit overwrites the given fields and persists. Analysis and image are
// never refreshed.
func (s *Service) Edit(ctx context.Context, d *dream.Dream, c Changes) (*dream.Dream, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	next := d.Clone()
	if c.Content != nil {
		content := strings.TrimSpace(*c.Content)
		if content == "" {
			return nil, ErrEmptyContent
		}
		next.Content = content
	}
	if c.Date != nil {
		next.Date = dream.Timestamp{Time: *c.Date}
	}
	if c.Labels != nil {
		next.CustomLabels = dream.NormalizeLabels(*c.Labels)
	}
	if c.IsLucid != nil {
		next.IsLucid = *c.IsLucid
	}
	if err := s.Persistence.UpdateDream(next); err != nil {
		return nil, err
	}
	return next, nil
}

// ToggleFavorite flips the favorite flag. A denied decision leaves the
// dream untouched.
func (s *Service) ToggleFavorite(ctx context.Context, d *dream.Dream) (*dream.Dream, entitlement.Decision, error) {
	if err := s.ready(); err != nil {
		return nil, entitlement.Decision{}, err
	}
	decision := s.Gate.Attempt(entitlement.ToggleFavorite)
	if decision.Denied() {
		return d, decision, nil
	}
	next := d.Clone()
	next.IsFavorite = !next.IsFavorite
	if err := s.Persistence.UpdateDream(next); err != nil {
		return nil, decision, err
	}
	return next, decision, nil
}

// SetSection files d under sectionID, or unfiles it when sectionID is
// empty.
func (s *Service) SetSection(ctx context.Context, d *dream.Dream, sectionID string) (*dream.Dream, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if sectionID != "" {
		if _, err := s.Section(ctx, sectionID); err != nil {
			return nil, err
		}
	}
	next := d.Clone()
	next.SectionID = sectionID
	if err := s.Persistence.UpdateDream(next); err != nil {
		return nil, err
	}
	return next, nil
}

// DeleteDream removes a dream. Unknown ids are ignored.
func (s *Service) DeleteDream(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.Persistence.DeleteDream(id)
}

// CreateSection adds a collection.
func (s *Service) CreateSection(ctx context.Context, name string) (dream.Section, entitlement.Decision, error) {
	if err := s.ready(); err != nil {
		return dream.Section{}, entitlement.Decision{}, err
	}
	if strings.TrimSpace(name) == "" {
		return dream.Section{}, entitlement.Decision{}, ErrEmptySectionName
	}
	decision := s.Gate.Attempt(entitlement.CreateCollection)
	if decision.Denied() {
		return dream.Section{}, decision, nil
	}
	sec := dream.NewSection(name)
	if err := s.Persistence.CreateSection(sec); err != nil {
		return dream.Section{}, decision, err
	}
	return sec, decision, nil
}

// DeleteSection removes a collection and unfiles its dreams.
func (s *Service) DeleteSection(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.Persistence.DeleteSection(id)
}

// OpenChat starts an oracle conversation about d.
func (s *Service) OpenChat(ctx context.Context, d *dream.Dream) (oracle.Session, error) {
	if s.Chatter == nil {
		return nil, oracle.ErrNotConfigured
	}
	return s.Chatter.OpenChat(ctx, d.Content)
}
