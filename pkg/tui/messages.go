package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/somnium/pkg/app"
	"tableflip.dev/somnium/pkg/store"
)

type watchStartedMsg struct {
	ch     <-chan store.Event
	cancel context.CancelFunc
	err    error
}

type watchEventMsg struct {
	event store.Event
}

type watchStoppedMsg struct{}

type creationDoneMsg struct {
	seq     int
	created app.Created
	err     error
}

type chatFragmentMsg struct {
	seq  int
	text string
}

type chatDoneMsg struct {
	seq int
	err error
}

func startWatchCmd(parent context.Context, svc *app.Service) tea.Cmd {
	if svc == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(parent)
		ch, err := svc.Watch(ctx)
		if err != nil {
			cancel()
			return watchStartedMsg{err: err}
		}
		return watchStartedMsg{ch: ch, cancel: cancel}
	}
}

func (m *Model) waitForWatch() tea.Cmd {
	if m.watchCh == nil {
		return nil
	}
	ch := m.watchCh
	return func() tea.Msg {
		if ev, ok := <-ch; ok {
			return watchEventMsg{event: ev}
		}
		return watchStoppedMsg{}
	}
}

func (m *Model) stopWatch() {
	if m.watchCancel != nil {
		m.watchCancel()
		m.watchCancel = nil
	}
	m.watchCh = nil
}

// creation is an in-flight interpretation started from the composer.
type creation struct {
	seq     int
	task    *app.Task
	results chan creationDoneMsg
	gone    chan struct{}
}

func (m *Model) startCreation(draft app.Draft) tea.Cmd {
	m.seq++
	c := &creation{
		seq:     m.seq,
		results: make(chan creationDoneMsg, 1),
		gone:    make(chan struct{}),
	}
	seq := c.seq
	c.task = m.svc.Start(m.ctx, draft, func(res app.Created, err error) {
		c.results <- creationDoneMsg{seq: seq, created: res, err: err}
	})
	m.creation = c
	return c.wait()
}

func (c *creation) wait() tea.Cmd {
	results, gone := c.results, c.gone
	return func() tea.Msg {
		select {
		case r := <-results:
			return r
		case <-gone:
			return nil
		}
	}
}

// abandon releases the waiting command. The task keeps running unless it
// was cancelled.
func (c *creation) abandon() {
	close(c.gone)
}
