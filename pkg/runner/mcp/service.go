// Package mcp provides the Model Context Protocol server integration for somnium.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tableflip.dev/somnium/pkg/app"
	"tableflip.dev/somnium/pkg/dream"
	"tableflip.dev/somnium/pkg/entitlement"
	"tableflip.dev/somnium/pkg/stats"
	"tableflip.dev/somnium/pkg/viewstate"
)

// Service adapts the journal service to transport-friendly shapes.
type Service struct {
	App *app.Service
}

// ErrPremiumRequired is returned when the entitlement gate refuses a tool call.
var ErrPremiumRequired = errors.New("premium required")

// View names a list filter.
type View string

const (
	ViewJournal    View = "journal"
	ViewFavorites  View = "favorites"
	ViewCollection View = "collection"
)

// CollectionSummary describes a collection and how many dreams it holds.
type CollectionSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	DreamCount int    `json:"dreamCount"`
}

// DreamDTO is a transport-friendly projection of a dream. The illustration is
// reduced to a flag; it is too large for tool results.
type DreamDTO struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Date           string   `json:"date"`
	Content        string   `json:"content"`
	Summary        string   `json:"summary,omitempty"`
	Interpretation string   `json:"interpretation,omitempty"`
	Mood           string   `json:"mood"`
	SentimentScore int      `json:"sentimentScore"`
	Tags           []string `json:"tags"`
	ColorHex       string   `json:"colorHex,omitempty"`
	HasImage       bool     `json:"hasImage"`
	IsFavorite     bool     `json:"isFavorite"`
	IsLucid        bool     `json:"isLucid"`
	Labels         []string `json:"labels"`
	CollectionID   string   `json:"collectionId,omitempty"`
	Collection     string   `json:"collection,omitempty"`
}

// EditOptions carries the optional fields of edit_dream.
type EditOptions struct {
	ID      string
	Content *string
	Date    *time.Time
	Labels  *[]string
	IsLucid *bool
}

// NewService wraps the journal service.
func NewService(a *app.Service) *Service {
	return &Service{App: a}
}

func (s *Service) ready() error {
	if s.App == nil {
		return errors.New("journal service is not configured")
	}
	return nil
}

// ListDreams returns the dreams visible in the given view, newest first.
func (s *Service) ListDreams(ctx context.Context, view View, collection string) ([]DreamDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	state := viewstate.DashboardState()
	switch View(strings.ToLower(string(view))) {
	case "", ViewJournal:
	case ViewFavorites:
		state = viewstate.State{Kind: viewstate.Favorites}
	case ViewCollection:
		if collection == "" {
			return nil, errors.New("collection is required for the collection view")
		}
		if _, err := s.App.Section(ctx, collection); err != nil {
			return nil, err
		}
		state = viewstate.CollectionState(collection)
	default:
		return nil, fmt.Errorf("unknown view %q", view)
	}

	dreams, err := s.App.Dreams(ctx)
	if err != nil {
		return nil, err
	}
	names, err := s.sectionNames(ctx)
	if err != nil {
		return nil, err
	}
	return toDTOs(viewstate.Derive(dreams, state), names), nil
}

// DreamByID fetches one dream.
func (s *Service) DreamByID(ctx context.Context, id string) (*DreamDTO, error) {
	d, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.dto(ctx, d)
}

// ListCollections returns every collection with its dream count.
func (s *Service) ListCollections(ctx context.Context) ([]CollectionSummary, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	sections, err := s.App.Sections(ctx)
	if err != nil {
		return nil, err
	}
	dreams, err := s.App.Dreams(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CollectionSummary, 0, len(sections))
	for _, sec := range sections {
		n := 0
		for _, d := range dreams {
			if d.InSection(sec.ID) {
				n++
			}
		}
		out = append(out, CollectionSummary{ID: sec.ID, Name: sec.Name, DreamCount: n})
	}
	return out, nil
}

// CreateCollection adds a collection when the gate allows it.
func (s *Service) CreateCollection(ctx context.Context, name string) (*CollectionSummary, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	sec, decision, err := s.App.CreateSection(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := denied(decision); err != nil {
		return nil, err
	}
	return &CollectionSummary{ID: sec.ID, Name: sec.Name}, nil
}

// ToggleFavorite flips the favorite mark when the gate allows it.
func (s *Service) ToggleFavorite(ctx context.Context, id string) (*DreamDTO, error) {
	d, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, decision, err := s.App.ToggleFavorite(ctx, d)
	if err != nil {
		return nil, err
	}
	if err := denied(decision); err != nil {
		return nil, err
	}
	return s.dto(ctx, updated)
}

// SetCollection files the dream under collection, or unfiles it when empty.
func (s *Service) SetCollection(ctx context.Context, id, collection string) (*DreamDTO, error) {
	d, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, err := s.App.SetSection(ctx, d, collection)
	if err != nil {
		return nil, err
	}
	return s.dto(ctx, updated)
}

// EditDream applies the set fields of opts.
func (s *Service) EditDream(ctx context.Context, opts EditOptions) (*DreamDTO, error) {
	d, err := s.find(ctx, opts.ID)
	if err != nil {
		return nil, err
	}
	updated, err := s.App.Edit(ctx, d, app.Changes{
		Content: opts.Content,
		Date:    opts.Date,
		Labels:  opts.Labels,
		IsLucid: opts.IsLucid,
	})
	if err != nil {
		return nil, err
	}
	return s.dto(ctx, updated)
}

// DeleteDream removes a dream. Unknown ids are reported.
func (s *Service) DeleteDream(ctx context.Context, id string) error {
	d, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	return s.App.DeleteDream(ctx, d.ID)
}

// Stats returns the insight summary.
func (s *Service) Stats(ctx context.Context) (stats.Summary, error) {
	if err := s.ready(); err != nil {
		return stats.Summary{}, err
	}
	return s.App.Stats(ctx)
}

func (s *Service) find(ctx context.Context, id string) (*dream.Dream, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, errors.New("id is required")
	}
	return s.App.Dream(ctx, id)
}

func (s *Service) dto(ctx context.Context, d *dream.Dream) (*DreamDTO, error) {
	names, err := s.sectionNames(ctx)
	if err != nil {
		return nil, err
	}
	out := toDTO(d, names)
	return &out, nil
}

func (s *Service) sectionNames(ctx context.Context) (map[string]string, error) {
	sections, err := s.App.Sections(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(sections))
	for _, sec := range sections {
		names[sec.ID] = sec.Name
	}
	return names, nil
}

func denied(d entitlement.Decision) error {
	if d.Denied() {
		return fmt.Errorf("%w: %s", ErrPremiumRequired, d.Action)
	}
	return nil
}

func toDTOs(dreams []*dream.Dream, names map[string]string) []DreamDTO {
	out := make([]DreamDTO, 0, len(dreams))
	for _, d := range dreams {
		out = append(out, toDTO(d, names))
	}
	return out
}

func toDTO(d *dream.Dream, names map[string]string) DreamDTO {
	dto := DreamDTO{
		ID:           d.ID,
		Title:        d.Title(),
		Date:         dream.FormatTime(d.Date.Time),
		Content:      d.Content,
		Mood:         d.Mood(),
		Tags:         []string{},
		HasImage:     d.HasImage(),
		IsFavorite:   d.IsFavorite,
		IsLucid:      d.IsLucid,
		Labels:       append([]string{}, d.CustomLabels...),
		CollectionID: d.SectionID,
		Collection:   names[d.SectionID],
	}
	if a := d.Analysis; a != nil {
		dto.Summary = a.Summary
		dto.Interpretation = a.Interpretation
		dto.SentimentScore = a.SentimentScore
		dto.Tags = append(dto.Tags, a.Tags...)
		dto.ColorHex = a.ColorHex
	}
	return dto
}
