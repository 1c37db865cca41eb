package viewstate

import (
	"testing"
	"time"

	"tableflip.dev/somnium/pkg/dream"
)

type fakeSource struct {
	dreams   []*dream.Dream
	sections []dream.Section
	loads    int
}

func (f *fakeSource) ListDreams() []*dream.Dream {
	f.loads++
	out := make([]*dream.Dream, len(f.dreams))
	copy(out, f.dreams)
	return out
}

func (f *fakeSource) ListSections() []dream.Section {
	return append([]dream.Section(nil), f.sections...)
}

func mk(id string, fav bool, section string) *dream.Dream {
	d := dream.New("dream "+id, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	d.ID = id
	d.IsFavorite = fav
	d.SectionID = section
	return d
}

func ids(ds []*dream.Dream) string {
	s := ""
	for _, d := range ds {
		s += d.ID
	}
	return s
}

func TestDeriveFavoritesPreservesOrder(t *testing.T) {
	dreams := []*dream.Dream{mk("a", true, ""), mk("b", false, ""), mk("c", true, "")}

	if got := ids(Derive(dreams, State{Kind: Favorites})); got != "ac" {
		t.Fatalf("favorites: expected ac, got %s", got)
	}
	if got := ids(Derive(dreams, DashboardState())); got != "abc" {
		t.Fatalf("dashboard: expected abc, got %s", got)
	}
}

func TestDeriveCollection(t *testing.T) {
	dreams := []*dream.Dream{mk("a", false, "s1"), mk("b", false, "s2"), mk("c", false, "s1"), mk("d", false, "")}
	if got := ids(Derive(dreams, CollectionState("s1"))); got != "ac" {
		t.Fatalf("expected ac, got %s", got)
	}
	if got := ids(Derive(dreams, CollectionState(""))); got != "" {
		t.Fatalf("empty collection id should match nothing, got %s", got)
	}
}

func TestInitialStateIsDashboard(t *testing.T) {
	src := &fakeSource{dreams: []*dream.Dream{mk("a", false, "")}}
	c := NewController(src)
	if c.State().Kind != Dashboard {
		t.Fatalf("expected dashboard, got %s", c.State())
	}
	if src.loads != 1 {
		t.Fatalf("expected initial load, got %d", src.loads)
	}
}

func TestBackReturnsToOrigin(t *testing.T) {
	src := &fakeSource{
		dreams:   []*dream.Dream{mk("a", true, "s1"), mk("b", false, "")},
		sections: []dream.Section{{ID: "s1", Name: "Work"}},
	}

	cases := map[string]struct {
		setup func(*Controller)
		want  State
	}{
		"dashboard": {setup: func(c *Controller) {}, want: DashboardState()},
		"favorites": {setup: func(c *Controller) { c.NavigateFavorites() }, want: State{Kind: Favorites}},
		"collection": {
			setup: func(c *Controller) { c.SelectCollection("s1") },
			want:  CollectionState("s1"),
		},
		"stats": {setup: func(c *Controller) { c.NavigateStats() }, want: DashboardState()},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			c := NewController(src)
			tc.setup(c)
			c.OpenEntry("a")
			if c.Current() == nil || c.Current().ID != "a" {
				t.Fatalf("expected dream a open, got %v", c.Current())
			}
			if !c.Back() {
				t.Fatal("back should succeed from detail")
			}
			if c.State() != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, c.State())
			}
		})
	}
}

func TestListStatesReload(t *testing.T) {
	src := &fakeSource{sections: []dream.Section{{ID: "s1", Name: "Work"}}}
	c := NewController(src)

	src.dreams = []*dream.Dream{mk("new", true, "s1")}

	c.NavigateFavorites()
	if got := ids(c.Visible()); got != "new" {
		t.Fatalf("favorites did not reload, got %q", got)
	}

	src.dreams = append(src.dreams, mk("other", false, "s1"))
	if !c.SelectCollection("s1") {
		t.Fatal("select collection failed")
	}
	if got := ids(c.Visible()); got != "newother" {
		t.Fatalf("collection did not reload, got %q", got)
	}

	src.dreams = nil
	c.NavigateJournal()
	if len(c.Visible()) != 0 {
		t.Fatalf("journal did not reload, got %q", ids(c.Visible()))
	}
}

func TestComposerTransitions(t *testing.T) {
	src := &fakeSource{sections: []dream.Section{{ID: "s1", Name: "Work"}}}
	c := NewController(src)
	c.NavigateStats()
	c.NewEntry()
	if c.State().Kind != Composer {
		t.Fatalf("expected composer, got %s", c.State())
	}
	if !c.CancelComposer() {
		t.Fatal("cancel should leave composer")
	}
	if c.State().Kind != Dashboard {
		t.Fatalf("expected dashboard after cancel, got %s", c.State())
	}
	if c.FinishComposer() {
		t.Fatal("finish outside composer must be ignored")
	}

	c.NewEntry()
	if !c.SelectCollection("s1") {
		t.Fatal("composer -> collection should be allowed")
	}
}

func TestSelectCollectionRejectsDetailAndUnknown(t *testing.T) {
	src := &fakeSource{
		dreams:   []*dream.Dream{mk("a", false, "")},
		sections: []dream.Section{{ID: "s1", Name: "Work"}},
	}
	c := NewController(src)
	if c.SelectCollection("missing") {
		t.Fatal("unknown collection must be rejected")
	}
	c.OpenEntry("a")
	if c.SelectCollection("s1") {
		t.Fatal("detail -> collection is not a transition")
	}
	if c.State() != DetailState("a") {
		t.Fatalf("state changed: %s", c.State())
	}
}

func TestDeletingSelectedCollectionReturnsToDashboard(t *testing.T) {
	src := &fakeSource{sections: []dream.Section{{ID: "s1", Name: "Work"}, {ID: "s2", Name: "Home"}}}
	c := NewController(src)
	c.SelectCollection("s1")

	src.sections = src.sections[:1]
	c.CollectionDeleted("s2")
	if c.State() != CollectionState("s1") {
		t.Fatalf("deleting another collection must not navigate, got %s", c.State())
	}

	src.sections = nil
	c.CollectionDeleted("s1")
	if c.State().Kind != Dashboard {
		t.Fatalf("expected dashboard, got %s", c.State())
	}
}

func TestDeletingOpenDreamReturnsToDashboard(t *testing.T) {
	src := &fakeSource{dreams: []*dream.Dream{mk("a", true, ""), mk("b", true, "")}}
	c := NewController(src)
	c.NavigateFavorites()
	c.OpenEntry("a")

	src.dreams = src.dreams[1:]
	c.DreamDeleted("a")
	if c.State().Kind != Dashboard {
		t.Fatalf("expected dashboard, got %s", c.State())
	}
	if got := ids(c.Visible()); got != "b" {
		t.Fatalf("expected reloaded list b, got %q", got)
	}
}

func TestBackSkipsDeletedCollection(t *testing.T) {
	src := &fakeSource{
		dreams:   []*dream.Dream{mk("a", false, "s1")},
		sections: []dream.Section{{ID: "s1", Name: "Work"}},
	}
	c := NewController(src)
	c.SelectCollection("s1")
	c.OpenEntry("a")

	src.sections = nil
	src.dreams[0].SectionID = ""
	c.Back()
	if c.State().Kind != Dashboard {
		t.Fatalf("expected dashboard, got %s", c.State())
	}
}
