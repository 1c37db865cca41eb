// Package dream defines the journal records kept by somnium: dreams, their
// interpretation, and the user-defined sections that group them.
package dream

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidAnalysis is returned when an interpretation is missing fields or
// carries out of range values.
var ErrInvalidAnalysis = errors.New("dream: invalid analysis")

const (
	// MinSentiment is the nightmare end of the sentiment scale.
	MinSentiment = 0
	// MaxSentiment is the blissful end of the sentiment scale.
	MaxSentiment = 100

	// UnknownMood labels dreams that were never interpreted.
	UnknownMood = "Unknown"
)

// Analysis is the structured interpretation produced once for a dream.
type Analysis struct {
	Title          string   `json:"title"`
	Summary        string   `json:"summary"`
	Interpretation string   `json:"interpretation"`
	Mood           string   `json:"mood"`
	SentimentScore int      `json:"sentimentScore"`
	Tags           []string `json:"tags"`
	ColorHex       string   `json:"colorHex"`
}

// Validate checks that every field is present and the score and color are
// well formed.
func (a *Analysis) Validate() error {
	if a == nil {
		return fmt.Errorf("%w: missing", ErrInvalidAnalysis)
	}
	for name, v := range map[string]string{
		"title":          a.Title,
		"summary":        a.Summary,
		"interpretation": a.Interpretation,
		"mood":           a.Mood,
	} {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%w: %s is empty", ErrInvalidAnalysis, name)
		}
	}
	if a.SentimentScore < MinSentiment || a.SentimentScore > MaxSentiment {
		return fmt.Errorf("%w: sentiment score %d out of range [%d, %d]",
			ErrInvalidAnalysis, a.SentimentScore, MinSentiment, MaxSentiment)
	}
	if _, err := ParseColor(a.ColorHex); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAnalysis, err)
	}
	return nil
}

// ParseColor parses a #RRGGBB hex string.
func ParseColor(hex string) (colorful.Color, error) {
	if len(hex) != 7 || hex[0] != '#' {
		return colorful.Color{}, fmt.Errorf("color %q is not #RRGGBB", hex)
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("color %q: %w", hex, err)
	}
	return c, nil
}

// Dream is a single journal entry.
type Dream struct {
	ID           string    `json:"id"`
	Date         Timestamp `json:"date"`
	Content      string    `json:"content"`
	Analysis     *Analysis `json:"analysis,omitempty"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	IsFavorite   bool      `json:"isFavorite"`
	IsLucid      bool      `json:"isLucid"`
	CustomLabels []string  `json:"customLabels"`
	SectionID    string    `json:"sectionId,omitempty"`
}

// New assembles a dream with a fresh id stamped at now.
func New(content string, now time.Time) *Dream {
	return &Dream{
		ID:           NewID(),
		Date:         Timestamp{Time: now},
		Content:      content,
		CustomLabels: []string{},
	}
}

// NewID returns a fresh opaque identifier.
func NewID() string {
	return uuid.NewString()
}

// Title returns the interpreted title, falling back to the first line of the
// content for dreams without an analysis.
func (d *Dream) Title() string {
	if d.Analysis != nil && d.Analysis.Title != "" {
		return d.Analysis.Title
	}
	line, _, _ := strings.Cut(strings.TrimSpace(d.Content), "\n")
	if r := []rune(line); len(r) > 48 {
		line = string(r[:47]) + "…"
	}
	return line
}

// Mood returns the analysis mood or UnknownMood.
func (d *Dream) Mood() string {
	if d.Analysis == nil || d.Analysis.Mood == "" {
		return UnknownMood
	}
	return d.Analysis.Mood
}

// HasImage reports whether an illustration is attached.
func (d *Dream) HasImage() bool {
	return d.ImageURL != ""
}

// InSection reports whether the dream is assigned to the section id.
func (d *Dream) InSection(id string) bool {
	return id != "" && d.SectionID == id
}

// Clone returns a deep copy so callers can mutate without aliasing the
// stored record.
func (d *Dream) Clone() *Dream {
	if d == nil {
		return nil
	}
	cp := *d
	cp.CustomLabels = append([]string{}, d.CustomLabels...)
	if d.Analysis != nil {
		a := *d.Analysis
		a.Tags = append([]string{}, d.Analysis.Tags...)
		cp.Analysis = &a
	}
	return &cp
}

// Section is a user-defined grouping of dreams.
type Section struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewSection returns a section with a fresh id. The name is trimmed.
func NewSection(name string) Section {
	return Section{ID: NewID(), Name: strings.TrimSpace(name)}
}
