// Package tui is the full screen dream journal. A single Model dispatches on
// the view-state controller; every screen is a render function over it.
package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/somnium/pkg/app"
	"tableflip.dev/somnium/pkg/entitlement"
	"tableflip.dev/somnium/pkg/payment"
	"tableflip.dev/somnium/pkg/store"
	"tableflip.dev/somnium/pkg/tui/theme"
	"tableflip.dev/somnium/pkg/viewstate"
)

type overlay int

const (
	overlayNone overlay = iota
	overlayUpgrade
	overlayDeleteDream
	overlayDeleteCollection
	overlayPicker
	overlayNewCollection
)

type focus int

const (
	focusList focus = iota
	focusSidebar
)

const sidebarWidth = 26

// Options configures the UI.
type Options struct {
	// CheckoutLinks are listed in the upgrade overlay when set.
	CheckoutLinks map[payment.Plan]string
}

// Model is the Bubble Tea model for the whole application.
type Model struct {
	svc  *app.Service
	ctx  context.Context
	ctl  *viewstate.Controller
	th   theme.Theme
	opts Options

	width  int
	height int

	focus      focus
	cursor     int
	sideCursor int

	overlay       overlay
	deniedAction  entitlement.Action
	promo         textinput.Model
	name          textinput.Model
	modalErr      string
	pickerCursor  int
	doomedSection string

	composer composer
	creation *creation
	seq      int

	detail detail

	status    string
	statusErr bool

	watchCh     <-chan store.Event
	watchCancel context.CancelFunc
}

// New creates a UI model backed by the Service.
func New(ctx context.Context, svc *app.Service, opts Options) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	promo := textinput.New()
	promo.Placeholder = "Promo code"
	promo.Prompt = "› "
	promo.EchoMode = textinput.EchoPassword
	promo.EchoCharacter = '•'

	name := textinput.New()
	name.Placeholder = "Collection name"
	name.Prompt = "› "
	name.CharLimit = 64

	m := &Model{
		svc:      svc,
		ctx:      ctx,
		ctl:      viewstate.NewController(svc.Persistence),
		th:       theme.Default(),
		opts:     opts,
		width:    100,
		height:   30,
		promo:    promo,
		name:     name,
		composer: newComposer(),
		detail:   newDetail(),
	}
	m.layout()
	return m
}

// Init starts watching the store for changes made elsewhere.
func (m *Model) Init() tea.Cmd {
	return startWatchCmd(m.ctx, m.svc)
}

// Update handles messages and keybindings.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
	case watchStartedMsg:
		if msg.err != nil {
			if !errors.Is(msg.err, store.ErrWatchUnsupported) {
				m.fail(msg.err)
			}
			break
		}
		m.stopWatch()
		m.watchCh = msg.ch
		m.watchCancel = msg.cancel
		cmds = append(cmds, m.waitForWatch())
	case watchEventMsg:
		m.handleStoreEvent(msg.event)
		cmds = append(cmds, m.waitForWatch())
	case watchStoppedMsg:
		m.stopWatch()
		if m.ctx.Err() == nil {
			cmds = append(cmds, startWatchCmd(m.ctx, m.svc))
		}
	case creationDoneMsg:
		cmds = append(cmds, m.handleCreation(msg))
	case chatFragmentMsg:
		cmds = append(cmds, m.handleChatFragment(msg))
	case chatDoneMsg:
		m.handleChatDone(msg)
	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			m.shutdown()
			return m, tea.Quit
		}
		cmds = append(cmds, m.handleKey(msg))
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	if m.overlay != overlayNone {
		return m.updateOverlay(msg)
	}
	switch m.ctl.State().Kind {
	case viewstate.Composer:
		return m.updateComposer(msg)
	case viewstate.Detail:
		return m.updateDetail(msg)
	case viewstate.Stats:
		return m.updateStats(msg)
	default:
		return m.updateList(msg)
	}
}

// View renders the active screen with the status bar.
func (m *Model) View() string {
	var body string
	switch m.ctl.State().Kind {
	case viewstate.Composer:
		body = m.composerView()
	case viewstate.Detail:
		body = m.detailView()
	case viewstate.Stats:
		body = m.statsView()
	default:
		body = m.listView()
	}
	if m.overlay != overlayNone {
		body = lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, m.overlayView())
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, m.footerView())
}

// Run launches the interactive TUI program.
func Run(ctx context.Context, svc *app.Service, opts Options) error {
	m := New(ctx, svc, opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	m.shutdown()
	return err
}

func (m *Model) bodyHeight() int {
	return max(m.height-2, 5)
}

func (m *Model) layout() {
	m.detail.resize(m.width, m.bodyHeight())
	m.composer.resize(m.width, m.bodyHeight())
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) fail(err error) {
	m.status = err.Error()
	m.statusErr = true
	m.svc.Log.Warn().Err(err).Msg("ui action failed")
}

// showUpgrade opens the upgrade overlay for a refused action.
func (m *Model) showUpgrade(a entitlement.Action) tea.Cmd {
	m.overlay = overlayUpgrade
	m.deniedAction = a
	m.modalErr = ""
	m.promo.Reset()
	return m.promo.Focus()
}

func (m *Model) shutdown() {
	m.stopWatch()
	if m.creation != nil {
		m.creation.task.Cancel()
		m.creation.abandon()
		m.creation = nil
	}
	m.detail.stop()
}

// handleStoreEvent reloads after another process changed the store.
func (m *Model) handleStoreEvent(ev store.Event) {
	st := m.ctl.State()
	m.ctl.Reload()
	switch {
	case st.Kind == viewstate.Detail && m.ctl.Current() == nil:
		m.ctl.DreamDeleted(st.DreamID)
		m.detail.stop()
	case st.Kind == viewstate.Collection:
		if _, ok := m.ctl.Section(st.SectionID); !ok {
			m.ctl.CollectionDeleted(st.SectionID)
		}
	}
	if ev.Type == store.EventEntitlementChanged && m.overlay == overlayUpgrade && m.svc.Gate.IsPremium() {
		m.overlay = overlayNone
		m.promo.Blur()
		m.setStatus(payment.ActivatedMessage)
	}
	m.clamp()
	m.refreshDetail()
}

func (m *Model) clamp() {
	n := len(m.ctl.Visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if items := len(m.navItems()); m.sideCursor >= items {
		m.sideCursor = items - 1
	}
}
