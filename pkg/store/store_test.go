package store

import (
	"testing"
	"time"

	"tableflip.dev/somnium/pkg/dream"
)

func newDream(id, content string, day int) *dream.Dream {
	d := dream.New(content, time.Date(2025, 3, day, 7, 0, 0, 0, time.UTC))
	d.ID = id
	return d
}

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	dv, err := NewDiskvBackend(t.TempDir())
	if err != nil {
		t.Fatalf("diskv: %v", err)
	}
	sq, err := OpenSQLiteBackend(":memory:")
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sq.Close() })
	return map[string]Backend{
		"memory": NewMemoryBackend(),
		"diskv":  dv,
		"sqlite": sq,
	}
}

func TestStoreEmptyDefaults(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := New(b)
			if got := s.ListDreams(); got == nil || len(got) != 0 {
				t.Fatalf("expected empty non-nil dreams, got %#v", got)
			}
			if got := s.ListSections(); got == nil || len(got) != 0 {
				t.Fatalf("expected empty non-nil sections, got %#v", got)
			}
			if s.Entitlement() {
				t.Fatal("expected entitlement to default to false")
			}
		})
	}
}

func TestStoreDreamLifecycle(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := New(b)
			if err := s.CreateDream(newDream("a", "first", 1)); err != nil {
				t.Fatalf("create a: %v", err)
			}
			if err := s.CreateDream(newDream("b", "second", 2)); err != nil {
				t.Fatalf("create b: %v", err)
			}

			dreams := s.ListDreams()
			if len(dreams) != 2 || dreams[0].ID != "b" || dreams[1].ID != "a" {
				t.Fatalf("expected [b a], got %v", ids(dreams))
			}

			upd := dreams[1].Clone()
			upd.Content = "first, revised"
			upd.IsFavorite = true
			if err := s.UpdateDream(upd); err != nil {
				t.Fatalf("update: %v", err)
			}
			dreams = s.ListDreams()
			if dreams[1].Content != "first, revised" || !dreams[1].IsFavorite {
				t.Fatalf("update not applied: %+v", dreams[1])
			}
			if dreams[0].ID != "b" {
				t.Fatalf("update changed ordering: %v", ids(dreams))
			}

			if err := s.UpdateDream(newDream("ghost", "nope", 3)); err != nil {
				t.Fatalf("update unknown: %v", err)
			}
			if len(s.ListDreams()) != 2 {
				t.Fatal("update of unknown id must not insert")
			}

			if err := s.DeleteDream("b"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if err := s.DeleteDream("b"); err != nil {
				t.Fatalf("second delete: %v", err)
			}
			dreams = s.ListDreams()
			if len(dreams) != 1 || dreams[0].ID != "a" {
				t.Fatalf("expected [a], got %v", ids(dreams))
			}
		})
	}
}

func TestDeleteSectionClearsMembership(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := New(b)
			work := dream.Section{ID: "s1", Name: "Work"}
			home := dream.Section{ID: "s2", Name: "Home"}
			for _, sec := range []dream.Section{work, home} {
				if err := s.CreateSection(sec); err != nil {
					t.Fatalf("create section: %v", err)
				}
			}
			if got := s.ListSections(); len(got) != 2 || got[0].ID != "s1" {
				t.Fatalf("sections out of order: %+v", got)
			}

			d1 := newDream("d1", "office maze", 1)
			d1.SectionID = "s1"
			d2 := newDream("d2", "kitchen flood", 2)
			d2.SectionID = "s2"
			_ = s.CreateDream(d1)
			_ = s.CreateDream(d2)

			if err := s.DeleteSection("s1"); err != nil {
				t.Fatalf("delete section: %v", err)
			}
			sections := s.ListSections()
			if len(sections) != 1 || sections[0].ID != "s2" {
				t.Fatalf("expected only s2, got %+v", sections)
			}
			for _, d := range s.ListDreams() {
				if d.SectionID == "s1" {
					t.Fatalf("dream %s still references deleted section", d.ID)
				}
				if d.ID == "d2" && d.SectionID != "s2" {
					t.Fatalf("unrelated dream lost its section: %+v", d)
				}
			}
		})
	}
}

func TestEntitlementPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	b, err := NewDiskvBackend(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := New(b).SetEntitlement(true); err != nil {
		t.Fatalf("set entitlement: %v", err)
	}

	b2, err := NewDiskvBackend(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if !New(b2).Entitlement() {
		t.Fatal("expected premium to survive reopen")
	}
}

func TestCorruptBlobReadsAsEmpty(t *testing.T) {
	b := NewMemoryBackend()
	_ = b.Write(KeyDreams, []byte("{not json"))
	_ = b.Write(KeySections, []byte("42"))
	_ = b.Write(KeyPremium, []byte("\"yes\""))

	s := New(b)
	if len(s.ListDreams()) != 0 {
		t.Fatal("corrupt dreams blob should read as empty")
	}
	if len(s.ListSections()) != 0 {
		t.Fatal("corrupt sections blob should read as empty")
	}
	if s.Entitlement() {
		t.Fatal("corrupt premium blob should read as false")
	}

	if err := s.CreateDream(newDream("x", "recovered", 4)); err != nil {
		t.Fatalf("create after corruption: %v", err)
	}
	if got := s.ListDreams(); len(got) != 1 || got[0].ID != "x" {
		t.Fatalf("expected recovery write to succeed, got %v", ids(got))
	}
}

func TestOpenBackendKinds(t *testing.T) {
	cases := map[string]bool{
		"":        true,
		"diskv":   true,
		"SQLite":  true,
		"memory":  true,
		"leveldb": false,
	}
	for kind, ok := range cases {
		t.Run(kind, func(t *testing.T) {
			b, err := OpenBackend(testConfig{path: t.TempDir(), kind: kind})
			if ok && err != nil {
				t.Fatalf("expected %q to open, got %v", kind, err)
			}
			if !ok && err == nil {
				t.Fatalf("expected %q to be rejected", kind)
			}
			if c, isSQL := b.(*SQLiteBackend); isSQL {
				_ = c.Close()
			}
		})
	}
}

type testConfig struct {
	path string
	kind string
}

func (c testConfig) BasePath() string    { return c.path }
func (c testConfig) BackendKind() string { return c.kind }

func ids(ds []*dream.Dream) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.ID)
	}
	return out
}
