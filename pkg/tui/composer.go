package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/v2/textarea"
	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/somnium/pkg/app"
	"tableflip.dev/somnium/pkg/dream"
	"tableflip.dev/somnium/pkg/oracle"
	"tableflip.dev/somnium/pkg/viewstate"
)

const (
	fieldContent = iota
	fieldLabels
)

// composer holds the draft being written.
type composer struct {
	content textarea.Model
	labels  textinput.Model
	field   int

	lucid    bool
	favorite bool
	// section indexes into the controller's sections; -1 is none.
	section int
	tags    []string
}

func newComposer() composer {
	ta := textarea.New()
	ta.Placeholder = "I was standing in a house I had never seen, yet I knew every room..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0

	ti := textinput.New()
	ti.Placeholder = "add a label and press enter"
	ti.Prompt = "# "
	ti.CharLimit = 40

	return composer{content: ta, labels: ti, section: -1}
}

func (c *composer) reset() {
	c.content.Reset()
	c.labels.Reset()
	c.field = fieldContent
	c.lucid = false
	c.favorite = false
	c.section = -1
	c.tags = nil
}

func (c *composer) resize(width, height int) {
	w := max(width-4, 20)
	c.content.SetWidth(w)
	c.content.SetHeight(max(height-10, 3))
	c.labels.SetWidth(w - 4)
}

func (c *composer) focus(field int) tea.Cmd {
	c.field = field
	if field == fieldLabels {
		c.content.Blur()
		return c.labels.Focus()
	}
	c.labels.Blur()
	return c.content.Focus()
}

func (c *composer) draft(sections []dream.Section) app.Draft {
	d := app.Draft{
		Content:    c.content.Value(),
		IsLucid:    c.lucid,
		IsFavorite: c.favorite,
		Labels:     append([]string{}, c.tags...),
	}
	if c.section >= 0 && c.section < len(sections) {
		d.SectionID = sections[c.section].ID
	}
	return d
}

func (m *Model) openComposer() tea.Cmd {
	m.ctl.NewEntry()
	if m.creation == nil {
		m.composer.reset()
	}
	return m.composer.focus(fieldContent)
}

// leaveComposer returns to the journal. A running interpretation keeps going
// and its result appears in the list once saved.
func (m *Model) leaveComposer() {
	if m.creation != nil {
		m.creation.task.Detach()
		m.creation.abandon()
		m.creation = nil
		m.setStatus("Still interpreting in the background; the dream will appear when ready.")
		m.composer.reset()
	}
	m.composer.content.Blur()
	m.composer.labels.Blur()
	m.ctl.CancelComposer()
	m.cursor = 0
	m.clamp()
}

func (m *Model) updateComposer(msg tea.KeyPressMsg) tea.Cmd {
	c := &m.composer
	if msg.String() == "esc" {
		m.leaveComposer()
		return nil
	}
	if m.creation != nil {
		return nil
	}

	switch msg.String() {
	case "ctrl+s":
		if strings.TrimSpace(c.content.Value()) == "" {
			m.setStatus("Describe your dream first.")
			return nil
		}
		m.setStatus("Interpreting your dream...")
		return m.startCreation(c.draft(m.ctl.Sections()))
	case "tab", "shift+tab":
		return c.focus((c.field + 1) % 2)
	case "ctrl+l":
		c.lucid = !c.lucid
		return nil
	case "ctrl+f":
		c.favorite = !c.favorite
		return nil
	case "ctrl+o":
		c.section++
		if c.section >= len(m.ctl.Sections()) {
			c.section = -1
		}
		return nil
	}

	if c.field == fieldLabels {
		switch msg.String() {
		case "enter":
			c.tags = dream.NormalizeLabels(append(c.tags, c.labels.Value()))
			c.labels.Reset()
			return nil
		case "backspace":
			if c.labels.Value() == "" && len(c.tags) > 0 {
				c.tags = c.tags[:len(c.tags)-1]
				return nil
			}
		}
		var cmd tea.Cmd
		c.labels, cmd = c.labels.Update(msg)
		return cmd
	}

	var cmd tea.Cmd
	c.content, cmd = c.content.Update(msg)
	return cmd
}

func (m *Model) handleCreation(msg creationDoneMsg) tea.Cmd {
	if m.creation == nil || msg.seq != m.creation.seq {
		return nil
	}
	m.creation = nil
	if m.ctl.State().Kind != viewstate.Composer {
		return nil
	}
	switch {
	case msg.err != nil:
		if errors.Is(msg.err, oracle.ErrNotConfigured) {
			m.fail(fmt.Errorf("AI is not configured: set gemini.api_key or API_KEY"))
			return nil
		}
		m.fail(msg.err)
	case msg.created.Decision.Denied():
		return m.showUpgrade(msg.created.Decision.Action)
	default:
		m.composer.reset()
		m.composer.content.Blur()
		m.ctl.FinishComposer()
		m.cursor = 0
		m.setStatus("Dream recorded: " + msg.created.Dream.Title())
		if msg.created.Dream.HasImage() {
			m.status += " (illustrated)"
		}
	}
	return nil
}

func (m *Model) composerView() string {
	c := &m.composer
	th := m.th.Card

	toggle := func(on bool, label string) string {
		if on {
			return th.Cursor.Render("[x] " + label)
		}
		return th.Meta.Render("[ ] " + label)
	}
	collection := "(no collection)"
	if sections := m.ctl.Sections(); c.section >= 0 && c.section < len(sections) {
		collection = sections[c.section].Name
	}

	tags := th.Meta.Render("no labels")
	if len(c.tags) > 0 {
		parts := make([]string, 0, len(c.tags))
		for _, t := range c.tags {
			parts = append(parts, th.Label.Render("#"+t))
		}
		tags = strings.Join(parts, " ")
	}

	lines := []string{
		th.Heading.Render("New dream"),
		"",
		c.content.View(),
		"",
		toggle(c.lucid, "lucid") + "   " + toggle(c.favorite, "favorite") + "   " + th.Meta.Render("collection: ") + collection,
		tags,
		c.labels.View(),
	}
	if m.creation != nil {
		lines = append(lines, "", th.Cursor.Render("✦ Interpreting your dream..."))
	}
	return lipgloss.NewStyle().Padding(0, 2).Height(m.bodyHeight()).Render(strings.Join(lines, "\n"))
}
