// Package oracle holds the AI collaborators: dream analysis, illustration
// and the follow-up chat.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"tableflip.dev/somnium/pkg/dream"
)

var (
	// ErrAnalysis means no complete analysis could be produced.
	ErrAnalysis = errors.New("dream analysis failed")
	// ErrIllustration means no image could be produced.
	ErrIllustration = errors.New("dream illustration failed")
	// ErrChat means a chat turn failed.
	ErrChat = errors.New("oracle chat failed")
	// ErrNotConfigured means no API key is available.
	ErrNotConfigured = errors.New("API_KEY environment variable is missing")
)

// Analyzer turns dream text into an Analysis. Implementations either return
// every field or fail with ErrAnalysis.
type Analyzer interface {
	Analyze(ctx context.Context, content string) (*dream.Analysis, error)
}

// Illustrator paints a dream. The result is a data URI.
type Illustrator interface {
	Illustrate(ctx context.Context, content, mood string) (string, error)
}

// Chatter opens oracle conversations about one dream.
type Chatter interface {
	OpenChat(ctx context.Context, dreamContent string) (Session, error)
}

// Session is one open conversation. Send yields text fragments of the
// model's reply; the sequence is finite and cannot be restarted.
type Session interface {
	Send(ctx context.Context, text string) iter.Seq2[string, error]
}

// Oracle bundles the three collaborators.
type Oracle interface {
	Analyzer
	Illustrator
	Chatter
}

func wrap(kind error, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, kind) || errors.Is(err, ErrNotConfigured) {
		return err
	}
	return fmt.Errorf("%w: %v", kind, err)
}

// Unconfigured fails every call with ErrNotConfigured. It stands in when no
// API key is set so the rest of the journal keeps working.
type Unconfigured struct{}

var _ Oracle = Unconfigured{}

func (Unconfigured) Analyze(context.Context, string) (*dream.Analysis, error) {
	return nil, ErrNotConfigured
}

func (Unconfigured) Illustrate(context.Context, string, string) (string, error) {
	return "", ErrNotConfigured
}

func (Unconfigured) OpenChat(context.Context, string) (Session, error) {
	return nil, ErrNotConfigured
}
