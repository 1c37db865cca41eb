package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"tableflip.dev/somnium/pkg/app"
	"tableflip.dev/somnium/pkg/dream"
	"tableflip.dev/somnium/pkg/entitlement"
	"tableflip.dev/somnium/pkg/store"
)

type fixture struct {
	store *store.Store
	gate  *entitlement.Gate
	svc   *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := store.New(store.NewMemoryBackend())
	gate := entitlement.NewGate(st, zerolog.Nop())
	return &fixture{
		store: st,
		gate:  gate,
		svc: NewService(&app.Service{
			Persistence: st,
			Gate:        gate,
			Log:         zerolog.Nop(),
		}),
	}
}

func (f *fixture) seed(t *testing.T, content string, mutate func(*dream.Dream)) *dream.Dream {
	t.Helper()
	d := dream.New(content, time.Date(2025, 3, 1, 7, 0, 0, 0, time.UTC))
	if mutate != nil {
		mutate(d)
	}
	if err := f.store.CreateDream(d); err != nil {
		t.Fatalf("CreateDream failed: %v", err)
	}
	return d
}

func TestServiceListDreamsViews(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sec := dream.NewSection("Recurring")
	if err := f.store.CreateSection(sec); err != nil {
		t.Fatalf("CreateSection failed: %v", err)
	}
	f.seed(t, "falling", nil)
	f.seed(t, "flying", func(d *dream.Dream) { d.IsFavorite = true })
	f.seed(t, "the house again", func(d *dream.Dream) { d.SectionID = sec.ID })

	all, err := f.svc.ListDreams(ctx, ViewJournal, "")
	if err != nil {
		t.Fatalf("ListDreams failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 dreams, got %d", len(all))
	}
	if all[0].Content != "the house again" {
		t.Fatalf("expected newest first, got %q", all[0].Content)
	}
	if all[0].Collection != "Recurring" {
		t.Fatalf("expected collection name, got %q", all[0].Collection)
	}

	favs, err := f.svc.ListDreams(ctx, ViewFavorites, "")
	if err != nil {
		t.Fatalf("ListDreams favorites failed: %v", err)
	}
	if len(favs) != 1 || favs[0].Content != "flying" {
		t.Fatalf("unexpected favorites %+v", favs)
	}

	inSec, err := f.svc.ListDreams(ctx, ViewCollection, sec.ID)
	if err != nil {
		t.Fatalf("ListDreams collection failed: %v", err)
	}
	if len(inSec) != 1 || inSec[0].CollectionID != sec.ID {
		t.Fatalf("unexpected collection dreams %+v", inSec)
	}

	if _, err := f.svc.ListDreams(ctx, ViewCollection, ""); err == nil {
		t.Fatalf("expected error for collection view without id")
	}
	if _, err := f.svc.ListDreams(ctx, ViewCollection, "missing"); !errors.Is(err, app.ErrSectionNotFound) {
		t.Fatalf("expected ErrSectionNotFound, got %v", err)
	}
	if _, err := f.svc.ListDreams(ctx, View("weekly"), ""); err == nil {
		t.Fatalf("expected error for unknown view")
	}
}

func TestServiceGatedToolsRequirePremium(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	d := f.seed(t, "a quiet lake", nil)

	if _, err := f.svc.ToggleFavorite(ctx, d.ID); !errors.Is(err, ErrPremiumRequired) {
		t.Fatalf("expected ErrPremiumRequired, got %v", err)
	}
	if _, err := f.svc.CreateCollection(ctx, "Water"); !errors.Is(err, ErrPremiumRequired) {
		t.Fatalf("expected ErrPremiumRequired, got %v", err)
	}
	if got := f.store.ListSections(); len(got) != 0 {
		t.Fatalf("denied create must not persist, got %v", got)
	}

	if err := f.gate.Redeem(entitlement.PromoCode); err != nil {
		t.Fatalf("Redeem failed: %v", err)
	}
	dto, err := f.svc.ToggleFavorite(ctx, d.ID)
	if err != nil {
		t.Fatalf("ToggleFavorite failed: %v", err)
	}
	if !dto.IsFavorite {
		t.Fatalf("expected favorite after toggle")
	}
	sum, err := f.svc.CreateCollection(ctx, "  Water  ")
	if err != nil {
		t.Fatalf("CreateCollection failed: %v", err)
	}
	if sum.Name != "Water" {
		t.Fatalf("expected trimmed name, got %q", sum.Name)
	}
}

func TestServiceEditAndCollections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sec := dream.NewSection("Work")
	if err := f.store.CreateSection(sec); err != nil {
		t.Fatalf("CreateSection failed: %v", err)
	}
	d := f.seed(t, "late for a meeting", nil)

	content := "late for a meeting with no shoes"
	labels := []string{"work", "anxiety"}
	dto, err := f.svc.EditDream(ctx, EditOptions{ID: d.ID, Content: &content, Labels: &labels})
	if err != nil {
		t.Fatalf("EditDream failed: %v", err)
	}
	if dto.Content != content || len(dto.Labels) != 2 {
		t.Fatalf("unexpected edit result %+v", dto)
	}

	dto, err = f.svc.SetCollection(ctx, d.ID, sec.ID)
	if err != nil {
		t.Fatalf("SetCollection failed: %v", err)
	}
	if dto.Collection != "Work" {
		t.Fatalf("expected collection Work, got %q", dto.Collection)
	}

	summaries, err := f.svc.ListCollections(ctx)
	if err != nil {
		t.Fatalf("ListCollections failed: %v", err)
	}
	if len(summaries) != 1 || summaries[0].DreamCount != 1 {
		t.Fatalf("unexpected summaries %+v", summaries)
	}

	if err := f.svc.DeleteDream(ctx, d.ID); err != nil {
		t.Fatalf("DeleteDream failed: %v", err)
	}
	if _, err := f.svc.DreamByID(ctx, d.ID); !errors.Is(err, app.ErrDreamNotFound) {
		t.Fatalf("expected ErrDreamNotFound, got %v", err)
	}
}

func TestServiceStatsAndNoService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, "one", func(d *dream.Dream) { d.IsLucid = true })
	f.seed(t, "two", nil)

	s, err := f.svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if s.Total != 2 || s.Lucidity != 50 {
		t.Fatalf("unexpected stats %+v", s)
	}

	empty := NewService(nil)
	if _, err := empty.ListCollections(ctx); err == nil {
		t.Fatalf("expected error without a journal service")
	}
}
