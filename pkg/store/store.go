// Package store persists dreams, sections and the premium flag as three
// JSON blobs on top of a pluggable key-value Backend.
package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"tableflip.dev/somnium/pkg/dream"
)

// Persistence is the contract the rest of somnium depends on.
type Persistence interface {
	ListDreams() []*dream.Dream
	CreateDream(d *dream.Dream) error
	UpdateDream(d *dream.Dream) error
	DeleteDream(id string) error

	ListSections() []dream.Section
	CreateSection(s dream.Section) error
	DeleteSection(id string) error

	Entitlement() bool
	SetEntitlement(premium bool) error
}

// Store implements Persistence. Reads never fail: a missing or corrupt blob
// is logged and treated as empty. Writes are read-modify-write of a whole
// blob with last-write-wins semantics.
type Store struct {
	b   Backend
	log zerolog.Logger
}

var _ Persistence = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used to report degraded reads.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New wraps a backend.
func New(b Backend, opts ...Option) *Store {
	s := &Store{b: b, log: zerolog.Nop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Open resolves the configured backend and wraps it.
func Open(cfg Config, opts ...Option) (*Store, error) {
	b, err := OpenBackend(cfg)
	if err != nil {
		return nil, err
	}
	return New(b, opts...), nil
}

// Backend exposes the underlying port, e.g. for Watch.
func (s *Store) Backend() Backend {
	return s.b
}

// readBlob decodes key into v. It reports false when the blob is absent or
// unreadable; the latter is logged.
func (s *Store) readBlob(key string, v any) bool {
	data, err := s.b.Read(key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Warn().Err(err).Str("key", key).Msg("storage read failed, using defaults")
		}
		return false
	}
	if len(data) == 0 {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("storage blob is corrupt, using defaults")
		return false
	}
	return true
}

func (s *Store) writeBlob(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", key, err)
	}
	if err := s.b.Write(key, data); err != nil {
		return fmt.Errorf("store: write %s: %w", key, err)
	}
	return nil
}

// ListDreams returns every dream, most recent first.
func (s *Store) ListDreams() []*dream.Dream {
	var dreams []*dream.Dream
	if !s.readBlob(KeyDreams, &dreams) {
		return []*dream.Dream{}
	}
	out := dreams[:0]
	for _, d := range dreams {
		if d == nil {
			continue
		}
		if d.CustomLabels == nil {
			d.CustomLabels = []string{}
		}
		out = append(out, d)
	}
	return out
}

// CreateDream prepends d.
func (s *Store) CreateDream(d *dream.Dream) error {
	if d == nil {
		return errors.New("store: nil dream")
	}
	dreams := append([]*dream.Dream{d}, s.ListDreams()...)
	return s.writeBlob(KeyDreams, dreams)
}

// UpdateDream replaces the dream with a matching id. An unknown id is a
// no-op.
func (s *Store) UpdateDream(d *dream.Dream) error {
	if d == nil {
		return errors.New("store: nil dream")
	}
	dreams := s.ListDreams()
	for i := range dreams {
		if dreams[i].ID == d.ID {
			dreams[i] = d
			return s.writeBlob(KeyDreams, dreams)
		}
	}
	return nil
}

// DeleteDream removes the dream with id if present.
func (s *Store) DeleteDream(id string) error {
	dreams := s.ListDreams()
	kept := make([]*dream.Dream, 0, len(dreams))
	for _, d := range dreams {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	if len(kept) == len(dreams) {
		return nil
	}
	return s.writeBlob(KeyDreams, kept)
}

// ListSections returns sections in insertion order.
func (s *Store) ListSections() []dream.Section {
	var sections []dream.Section
	if !s.readBlob(KeySections, &sections) {
		return []dream.Section{}
	}
	return sections
}

// CreateSection appends sec.
func (s *Store) CreateSection(sec dream.Section) error {
	return s.writeBlob(KeySections, append(s.ListSections(), sec))
}

// DeleteSection removes the section and clears sectionId on every dream that
// referenced it.
func (s *Store) DeleteSection(id string) error {
	sections := s.ListSections()
	kept := make([]dream.Section, 0, len(sections))
	for _, sec := range sections {
		if sec.ID != id {
			kept = append(kept, sec)
		}
	}
	if err := s.writeBlob(KeySections, kept); err != nil {
		return err
	}

	dreams := s.ListDreams()
	changed := false
	for _, d := range dreams {
		if d.SectionID == id {
			d.SectionID = ""
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.writeBlob(KeyDreams, dreams)
}

// Entitlement reports the persisted premium flag.
func (s *Store) Entitlement() bool {
	var premium bool
	if !s.readBlob(KeyPremium, &premium) {
		return false
	}
	return premium
}

// SetEntitlement persists the premium flag.
func (s *Store) SetEntitlement(premium bool) error {
	return s.writeBlob(KeyPremium, premium)
}
