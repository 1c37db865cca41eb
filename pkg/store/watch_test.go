package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"tableflip.dev/somnium/pkg/dream"
)

func TestDiskvWatchEmitsDreamChanges(t *testing.T) {
	b, err := NewDiskvBackend(t.TempDir())
	if err != nil {
		t.Fatalf("open backend: %v", err)
	}
	s := New(b)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	// Allow watcher goroutine to subscribe before writing.
	time.Sleep(50 * time.Millisecond)

	if err := s.CreateDream(dream.New("a lighthouse on the moon", time.Now())); err != nil {
		t.Fatalf("create dream: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case evt := <-ch:
			if evt.Type == EventInvalidated {
				return
			}
			if evt.Type == EventDreamsChanged {
				if evt.Key != KeyDreams {
					t.Fatalf("expected key %q, got %q", KeyDreams, evt.Key)
				}
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for dream change event")
		}
	}
}

func TestWatchUnsupportedForMemory(t *testing.T) {
	s := New(NewMemoryBackend())
	if _, err := s.Watch(context.Background()); !errors.Is(err, ErrWatchUnsupported) {
		t.Fatalf("expected ErrWatchUnsupported, got %v", err)
	}
}
