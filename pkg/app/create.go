package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"tableflip.dev/somnium/pkg/dream"
	"tableflip.dev/somnium/pkg/entitlement"
	"tableflip.dev/somnium/pkg/oracle"
)

// Draft is what the composer submits.
type Draft struct {
	Content    string
	IsLucid    bool
	IsFavorite bool
	SectionID  string
	Labels     []string
}

// Created is the outcome of a creation attempt. Dream is nil when the
// decision was denied.
type Created struct {
	Decision entitlement.Decision
	Dream    *dream.Dream
}

// Create runs analyze, illustrate, normalize and persist in order. Analysis
// failure aborts without side effects; illustration failure only drops the
// image.
func (s *Service) Create(ctx context.Context, draft Draft) (Created, error) {
	if err := s.ready(); err != nil {
		return Created{}, err
	}
	content := strings.TrimSpace(draft.Content)
	if content == "" {
		return Created{}, ErrEmptyContent
	}

	decision := s.Gate.Attempt(entitlement.SubmitForInterpretation)
	if decision.Denied() {
		return Created{Decision: decision}, nil
	}
	if s.Analyzer == nil {
		return Created{Decision: decision}, oracle.ErrNotConfigured
	}

	analysis, err := s.Analyzer.Analyze(ctx, content)
	if err == nil {
		err = analysis.Validate()
	}
	if err != nil {
		s.Log.Error().Err(err).Msg("dream analysis failed")
		if !errors.Is(err, oracle.ErrAnalysis) && !errors.Is(err, oracle.ErrNotConfigured) {
			err = fmt.Errorf("%w: %w", oracle.ErrAnalysis, err)
		}
		return Created{Decision: decision}, err
	}

	var image string
	if s.Illustrator != nil {
		image, err = s.Illustrator.Illustrate(ctx, content, analysis.Mood)
		if err != nil {
			s.Log.Warn().Err(err).Msg("image generation failed, skipping")
			image = ""
		}
	}
	if image != "" && s.Images != nil {
		image = s.Images.Normalize(image)
	}

	if err := ctx.Err(); err != nil {
		return Created{Decision: decision}, err
	}

	d := dream.New(content, s.now())
	d.Analysis = analysis
	d.ImageURL = image
	d.IsLucid = draft.IsLucid
	d.IsFavorite = draft.IsFavorite
	d.CustomLabels = dream.NormalizeLabels(draft.Labels)
	if draft.SectionID != "" {
		if _, err := s.Section(ctx, draft.SectionID); err == nil {
			d.SectionID = draft.SectionID
		} else {
			s.Log.Warn().Str("section", draft.SectionID).Msg("collection vanished, filing dream unassigned")
		}
	}

	if err := s.Persistence.CreateDream(d); err != nil {
		return Created{Decision: decision}, err
	}
	s.Log.Debug().Str("id", d.ID).Bool("image", d.HasImage()).Msg("dream created")
	return Created{Decision: decision, Dream: d}, nil
}

// Task is an in-flight Create. The UI may Detach when it navigates away:
// the work still finishes and persists, but the completion callback is
// skipped. Cancel additionally aborts the outstanding calls.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu       sync.Mutex
	detached bool
	result   Created
	err      error
}

// Start runs Create in the background and calls onDone with its outcome
// unless the task was detached first. Once Detach returns, onDone is never
// entered. onDone runs with the task locked and must not call back into it.
func (s *Service) Start(ctx context.Context, draft Draft, onDone func(Created, error)) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer cancel()
		res, err := s.Create(ctx, draft)

		t.mu.Lock()
		t.result, t.err = res, err
		if !t.detached && onDone != nil {
			onDone(res, err)
		}
		t.mu.Unlock()
		close(t.done)
	}()
	return t
}

// Detach turns the completion callback into a no-op.
func (t *Task) Detach() {
	t.mu.Lock()
	t.detached = true
	t.mu.Unlock()
}

// Cancel detaches and aborts the outstanding collaborator calls.
func (t *Task) Cancel() {
	t.Detach()
	t.cancel()
}

// Done is closed when the task finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finished and returns its outcome.
func (t *Task) Wait() (Created, error) {
	<-t.done
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result, t.err
}
