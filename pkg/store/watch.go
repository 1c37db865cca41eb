package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrWatchUnsupported is returned when the backend cannot report changes.
var ErrWatchUnsupported = errors.New("store: backend does not support watching")

// EventType describes the nature of a persistence change notification.
type EventType int

const (
	// EventDreamsChanged indicates the dream list blob was rewritten.
	EventDreamsChanged EventType = iota
	// EventSectionsChanged indicates the section list blob was rewritten.
	EventSectionsChanged
	// EventEntitlementChanged indicates the premium flag was rewritten.
	EventEntitlementChanged
	// EventInvalidated asks callers to reload everything.
	EventInvalidated
)

// Event is emitted by Watch when underlying storage changes.
type Event struct {
	Type EventType
	Key  string
}

// Watcher is implemented by backends that can observe writes made by other
// processes.
type Watcher interface {
	Watch(ctx context.Context) (<-chan Event, error)
}

// Watch streams change events from the backend until ctx is cancelled.
func (s *Store) Watch(ctx context.Context) (<-chan Event, error) {
	w, ok := s.b.(Watcher)
	if !ok {
		return nil, ErrWatchUnsupported
	}
	return w.Watch(ctx)
}

func eventForKey(key string) Event {
	switch key {
	case KeyDreams:
		return Event{Type: EventDreamsChanged, Key: key}
	case KeySections:
		return Event{Type: EventSectionsChanged, Key: key}
	case KeyPremium:
		return Event{Type: EventEntitlementChanged, Key: key}
	default:
		return Event{Type: EventInvalidated}
	}
}

// Watch streams change events until ctx is cancelled. Callers should drain
// the returned channel; it is closed once ctx is done or the watcher fails.
func (b *DiskvBackend) Watch(ctx context.Context) (<-chan Event, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "store: watcher close: %v\n", err)
			}
		})
	}
	if err := watcher.Add(b.basePath); err != nil {
		closeWatcher()
		return nil, fmt.Errorf("store: watch %s: %w", b.basePath, err)
	}

	events := make(chan Event, 16)

	go func() {
		defer close(events)
		defer closeWatcher()

		send := func(ev Event) {
			select {
			case events <- ev:
			default:
				// Drop when the consumer is busy; the next event reloads anyway.
			}
		}

		throttle := newEventThrottle(100 * time.Millisecond)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				throttle.Enqueue(Event{Type: EventInvalidated}, send)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				key := filepath.Base(evt.Name)
				if key == tmpDir {
					continue
				}
				throttle.Enqueue(eventForKey(key), send)
			}
		}
	}()

	return events, nil
}

// eventThrottle coalesces rapid change notifications so the UI reloads once
// per burst of writes.
type eventThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[Event]struct{}
	delay   time.Duration
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{
		delay:   delay,
		pending: make(map[Event]struct{}),
	}
}

func (t *eventThrottle) Enqueue(ev Event, send func(Event)) {
	t.mu.Lock()
	t.pending[ev] = struct{}{}
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
	t.mu.Unlock()
}

func (t *eventThrottle) flush(send func(Event)) {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[Event]struct{})
	t.timer = nil
	t.mu.Unlock()

	for ev := range pending {
		send(ev)
	}
}

func (t *eventThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
