package tui

import (
	"context"
	"errors"
	"iter"
	"regexp"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/rs/zerolog"

	"tableflip.dev/somnium/pkg/app"
	"tableflip.dev/somnium/pkg/dream"
	"tableflip.dev/somnium/pkg/entitlement"
	"tableflip.dev/somnium/pkg/oracle"
	"tableflip.dev/somnium/pkg/payment"
	"tableflip.dev/somnium/pkg/store"
	"tableflip.dev/somnium/pkg/viewstate"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;:]*[A-Za-z~]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

type fakeAnalyzer struct {
	release chan struct{}
}

func (f fakeAnalyzer) Analyze(ctx context.Context, content string) (*dream.Analysis, error) {
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &dream.Analysis{
		Title:          "The Glass City",
		Summary:        "Flying over glass.",
		Interpretation: "A wish to see clearly.",
		Mood:           "Wonder",
		SentimentScore: 80,
		Tags:           []string{"flying", "city"},
		ColorHex:       "#88CCEE",
	}, nil
}

type scriptedChat struct {
	replies []string
	err     error
}

func (s scriptedChat) OpenChat(ctx context.Context, content string) (oracle.Session, error) {
	return s, nil
}

func (s scriptedChat) Send(ctx context.Context, text string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, r := range s.replies {
			if !yield(r, nil) {
				return
			}
		}
		if s.err != nil {
			yield("", s.err)
		}
	}
}

func newTestModel(t *testing.T, premium bool) (*Model, *store.Store) {
	t.Helper()
	st := store.New(store.NewMemoryBackend())
	if premium {
		if err := st.SetEntitlement(true); err != nil {
			t.Fatalf("SetEntitlement failed: %v", err)
		}
	}
	svc := &app.Service{
		Persistence: st,
		Gate:        entitlement.NewGate(st, zerolog.Nop()),
		Analyzer:    fakeAnalyzer{},
		Chatter:     scriptedChat{replies: []string{"The glass ", "is your clarity."}},
		Log:         zerolog.Nop(),
	}
	return New(context.Background(), svc, Options{}), st
}

func seedDream(t *testing.T, st *store.Store, content string) *dream.Dream {
	t.Helper()
	d := dream.New(content, time.Date(2025, 3, 1, 7, 0, 0, 0, time.UTC))
	if err := st.CreateDream(d); err != nil {
		t.Fatalf("CreateDream failed: %v", err)
	}
	return d
}

func key(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}
	}
	if strings.HasPrefix(s, "ctrl+") {
		return tea.KeyPressMsg{Code: rune(s[len(s)-1]), Mod: tea.ModCtrl}
	}
	return tea.KeyPressMsg{Text: s, Code: rune(s[0])}
}

// drain runs cmd until it yields a message the test cares about.
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil && i < 32; i++ {
		msg := cmd()
		switch msg := msg.(type) {
		case creationDoneMsg, chatFragmentMsg, chatDoneMsg:
			cmd = m.dispatch(msg)
		default:
			return
		}
	}
}

// dispatch routes msg the way Update does and returns the follow-up command
// without batching.
func (m *Model) dispatch(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case creationDoneMsg:
		return m.handleCreation(msg)
	case chatFragmentMsg:
		return m.handleChatFragment(msg)
	case chatDoneMsg:
		m.handleChatDone(msg)
	}
	return nil
}

func TestViewEmptyJournal(t *testing.T) {
	m, _ := newTestModel(t, false)
	view := stripANSI(m.View())
	if !strings.Contains(view, EmptyMessage) {
		t.Fatalf("expected empty message; view=%q", view)
	}
	if !strings.Contains(view, "Dream Journal (0)") {
		t.Fatalf("expected journal heading; view=%q", view)
	}
}

func TestFavoriteDeniedOpensUpgradeThenRedeem(t *testing.T) {
	m, st := newTestModel(t, false)
	seedDream(t, st, "a quiet lake")
	m.ctl.Reload()

	m.handleKey(key("f"))
	if m.overlay != overlayUpgrade {
		t.Fatalf("expected upgrade overlay, got %v", m.overlay)
	}
	view := stripANSI(m.View())
	if !strings.Contains(view, "Favoriting is a premium feature.") {
		t.Fatalf("expected denial message; view=%q", view)
	}
	if st.ListDreams()[0].IsFavorite {
		t.Fatalf("denied toggle must not change the dream")
	}

	m.promo.SetValue("nope")
	m.handleKey(key("enter"))
	if m.modalErr == "" || m.overlay != overlayUpgrade {
		t.Fatalf("expected invalid code error, got %q", m.modalErr)
	}

	m.promo.SetValue(" dreamlab2025 ")
	m.handleKey(key("enter"))
	if m.overlay != overlayNone {
		t.Fatalf("expected overlay closed after redeem")
	}
	if m.status != payment.ActivatedMessage {
		t.Fatalf("expected activation status, got %q", m.status)
	}

	m.handleKey(key("f"))
	if !st.ListDreams()[0].IsFavorite {
		t.Fatalf("expected favorite after upgrade")
	}
}

func TestComposerCreatesDreamAndReturnsToDashboard(t *testing.T) {
	m, st := newTestModel(t, true)

	m.handleKey(key("n"))
	if got := m.ctl.State().Kind; got != viewstate.Composer {
		t.Fatalf("expected composer, got %v", got)
	}
	m.composer.content.SetValue("I was flying over a city made of glass")
	m.handleKey(key("ctrl+l"))
	m.composer.tags = []string{"flying"}

	cmd := m.handleKey(key("ctrl+s"))
	if m.creation == nil {
		t.Fatalf("expected creation in flight")
	}
	drain(t, m, cmd)

	if got := m.ctl.State().Kind; got != viewstate.Dashboard {
		t.Fatalf("expected dashboard after creation, got %v", got)
	}
	dreams := st.ListDreams()
	if len(dreams) != 1 {
		t.Fatalf("expected one dream, got %d", len(dreams))
	}
	if !dreams[0].IsLucid || dreams[0].Title() != "The Glass City" {
		t.Fatalf("unexpected dream %+v", dreams[0])
	}
	view := stripANSI(m.View())
	if !strings.Contains(view, "The Glass City") || !strings.Contains(view, "#flying #city") {
		t.Fatalf("expected card with tags; view=%q", view)
	}
}

func TestLeavingComposerDetachesCreation(t *testing.T) {
	m, st := newTestModel(t, true)
	release := make(chan struct{})
	m.svc.Analyzer = fakeAnalyzer{release: release}

	m.handleKey(key("n"))
	m.composer.content.SetValue("a slow dream")
	cmd := m.handleKey(key("ctrl+s"))
	task := m.creation.task

	m.handleKey(key("esc"))
	if got := m.ctl.State().Kind; got != viewstate.Dashboard {
		t.Fatalf("expected dashboard after leaving, got %v", got)
	}
	if cmd() != nil {
		t.Fatalf("abandoned creation must not deliver a message")
	}

	close(release)
	if _, err := task.Wait(); err != nil {
		t.Fatalf("background creation failed: %v", err)
	}
	if len(st.ListDreams()) != 1 {
		t.Fatalf("detached creation should still persist")
	}
}

func TestEmptyDraftIsNotSubmitted(t *testing.T) {
	m, _ := newTestModel(t, true)
	m.handleKey(key("n"))
	if cmd := m.handleKey(key("ctrl+s")); cmd != nil || m.creation != nil {
		t.Fatalf("expected no creation for an empty draft")
	}
}

func TestDetailChatStreamsIntoTranscript(t *testing.T) {
	m, st := newTestModel(t, false)
	d := seedDream(t, st, "a door in the sea")
	m.ctl.Reload()

	m.handleKey(key("enter"))
	if got := m.ctl.State(); got.Kind != viewstate.Detail || got.DreamID != d.ID {
		t.Fatalf("expected detail for %s, got %v", d.ID, got)
	}

	m.handleKey(key("i"))
	m.detail.input.SetValue("what does the door mean?")
	drain(t, m, m.handleKey(key("enter")))

	msgs := m.detail.transcript.Messages
	if len(msgs) != 2 {
		t.Fatalf("expected two messages, got %+v", msgs)
	}
	if msgs[1].Text != "The glass is your clarity." {
		t.Fatalf("unexpected reply %q", msgs[1].Text)
	}
	if m.detail.busy() {
		t.Fatalf("expected turn to be finished")
	}

	m.handleKey(key("esc"))
	m.handleKey(key("esc"))
	if got := m.ctl.State().Kind; got != viewstate.Dashboard {
		t.Fatalf("expected back to dashboard, got %v", got)
	}
	if len(m.detail.transcript.Messages) != 0 {
		t.Fatalf("transcript must not outlive the detail view")
	}
}

func TestDetailChatFailureShowsSilentReply(t *testing.T) {
	m, st := newTestModel(t, false)
	seedDream(t, st, "static")
	m.svc.Chatter = scriptedChat{err: errors.New("boom")}
	m.ctl.Reload()

	m.handleKey(key("enter"))
	m.handleKey(key("i"))
	m.detail.input.SetValue("hello?")
	drain(t, m, m.handleKey(key("enter")))

	last, ok := m.detail.transcript.Last()
	if !ok || last.Text != oracle.SilentReply {
		t.Fatalf("expected silent reply, got %+v", last)
	}
}

func TestDeleteFromDetailReturnsToDashboard(t *testing.T) {
	m, st := newTestModel(t, false)
	seedDream(t, st, "to forget")
	m.ctl.Reload()

	m.handleKey(key("enter"))
	m.handleKey(key("d"))
	if !strings.Contains(stripANSI(m.View()), deleteDreamPrompt) {
		t.Fatalf("expected delete confirmation")
	}
	m.handleKey(key("y"))

	if got := m.ctl.State().Kind; got != viewstate.Dashboard {
		t.Fatalf("expected dashboard, got %v", got)
	}
	if len(st.ListDreams()) != 0 {
		t.Fatalf("expected dream deleted")
	}
}

func TestCollectionFlow(t *testing.T) {
	m, st := newTestModel(t, true)
	d := seedDream(t, st, "the house again")
	m.ctl.Reload()

	m.handleKey(key("c"))
	m.name.SetValue("Recurring")
	m.handleKey(key("enter"))
	st0 := m.ctl.State()
	if st0.Kind != viewstate.Collection {
		t.Fatalf("expected collection view, got %v", st0)
	}
	if len(m.ctl.Visible()) != 0 {
		t.Fatalf("new collection should be empty")
	}

	m.ctl.NavigateJournal()
	m.handleKey(key("enter"))
	m.handleKey(key("m"))
	m.handleKey(key("j"))
	m.handleKey(key("enter"))
	if got := st.ListDreams()[0].SectionID; got != st0.SectionID {
		t.Fatalf("expected dream moved to %s, got %q", st0.SectionID, got)
	}

	m.handleKey(key("esc"))
	m.ctl.SelectCollection(st0.SectionID)
	if v := m.ctl.Visible(); len(v) != 1 || v[0].ID != d.ID {
		t.Fatalf("expected dream in collection, got %v", v)
	}

	m.handleKey(key("x"))
	m.handleKey(key("y"))
	if got := m.ctl.State().Kind; got != viewstate.Dashboard {
		t.Fatalf("expected dashboard after deleting the open collection, got %v", got)
	}
	if st.ListDreams()[0].SectionID != "" {
		t.Fatalf("expected dream unfiled after collection delete")
	}
}

func TestStatsScreen(t *testing.T) {
	m, st := newTestModel(t, false)
	seedDream(t, st, "only one")
	m.ctl.NavigateStats()

	view := stripANSI(m.View())
	if !strings.Contains(view, "Record at least 2 dreams to unlock insights.") {
		t.Fatalf("expected insufficient notice; view=%q", view)
	}

	seedDream(t, st, "and another")
	m.ctl.Reload()
	view = stripANSI(m.View())
	if !strings.Contains(view, "Lucidity") || !strings.Contains(view, "Top moods") {
		t.Fatalf("expected insights; view=%q", view)
	}

	m.handleKey(key("esc"))
	if got := m.ctl.State().Kind; got != viewstate.Dashboard {
		t.Fatalf("expected dashboard, got %v", got)
	}
}

func TestStoreEventReloadsAndLeavesDeletedDream(t *testing.T) {
	m, st := newTestModel(t, false)
	d := seedDream(t, st, "vanishing")
	m.ctl.Reload()
	m.openDream(d.ID)

	if err := st.DeleteDream(d.ID); err != nil {
		t.Fatalf("DeleteDream failed: %v", err)
	}
	m.handleStoreEvent(store.Event{Type: store.EventDreamsChanged, Key: store.KeyDreams})
	if got := m.ctl.State().Kind; got != viewstate.Dashboard {
		t.Fatalf("expected dashboard after external delete, got %v", got)
	}
}
