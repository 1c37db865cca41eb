package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/v2/textinput"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/somnium/pkg/dream"
	"tableflip.dev/somnium/pkg/oracle"
)

// detail is the state of the open dream screen. The transcript lives only as
// long as the dream stays open.
type detail struct {
	id     string
	view   viewport.Model
	input  textinput.Model
	typing bool
	width  int

	transcript oracle.Transcript
	session    oracle.Session
	seq        int
	stream     <-chan tea.Msg
	cancel     context.CancelFunc
}

func newDetail() detail {
	vp := viewport.New(viewport.WithWidth(80), viewport.WithHeight(20))
	ti := textinput.New()
	ti.Placeholder = "Ask the spirit of this dream..."
	ti.Prompt = "› "
	ti.CharLimit = 500
	return detail{view: vp, input: ti, width: 80}
}

func (d *detail) resize(width, height int) {
	d.width = max(width-4, 20)
	d.view.SetWidth(d.width)
	d.view.SetHeight(max(height-2, 3))
	d.input.SetWidth(d.width - 4)
}

// stop ends any streaming turn and forgets the conversation.
func (d *detail) stop() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.stream = nil
	d.session = nil
	d.transcript = oracle.Transcript{}
	d.typing = false
	d.input.Blur()
	d.input.Reset()
	d.id = ""
}

func (d *detail) busy() bool {
	return d.stream != nil
}

func (m *Model) openDream(id string) {
	m.detail.stop()
	m.ctl.OpenEntry(id)
	m.detail.id = id
	m.refreshDetail()
	m.detail.view.GotoTop()
}

func (m *Model) closeDream() {
	m.detail.stop()
	m.ctl.Back()
	m.clamp()
}

func (m *Model) updateDetail(msg tea.KeyPressMsg) tea.Cmd {
	d := &m.detail
	if d.typing {
		switch msg.String() {
		case "esc":
			d.typing = false
			d.input.Blur()
			return nil
		case "enter":
			text := d.input.Value()
			if d.busy() || strings.TrimSpace(text) == "" {
				return nil
			}
			d.input.Reset()
			return m.ask(text)
		}
		var cmd tea.Cmd
		d.input, cmd = d.input.Update(msg)
		return cmd
	}

	current := m.ctl.Current()
	switch msg.String() {
	case "esc", "backspace", "h", "left":
		m.closeDream()
		return nil
	case "i", "/":
		d.typing = true
		return d.input.Focus()
	case "f":
		if current != nil {
			return m.toggleFavorite(current)
		}
	case "d":
		if current != nil {
			m.overlay = overlayDeleteDream
		}
	case "m":
		if current != nil {
			m.overlay = overlayPicker
			m.pickerCursor = 0
			for i, s := range m.ctl.Sections() {
				if s.ID == current.SectionID {
					m.pickerCursor = i + 1
				}
			}
		}
	case "q":
		m.shutdown()
		return tea.Quit
	default:
		var cmd tea.Cmd
		d.view, cmd = d.view.Update(msg)
		return cmd
	}
	return nil
}

// ask starts one oracle turn and streams its fragments into the transcript.
func (m *Model) ask(text string) tea.Cmd {
	d := &m.detail
	current := m.ctl.Current()
	if current == nil || !d.transcript.Begin(text) {
		return nil
	}
	if d.session == nil {
		s, err := m.svc.OpenChat(m.ctx, current)
		if err != nil {
			d.transcript.Fail()
			m.fail(err)
			m.refreshDetail()
			return nil
		}
		d.session = s
	}

	d.seq++
	seq := d.seq
	ctx, cancel := context.WithCancel(m.ctx)
	ch := make(chan tea.Msg, 8)
	session := d.session
	go func() {
		defer close(ch)
		send := func(msg tea.Msg) bool {
			select {
			case ch <- msg:
				return true
			case <-ctx.Done():
				return false
			}
		}
		for frag, err := range session.Send(ctx, text) {
			if err != nil {
				send(chatDoneMsg{seq: seq, err: err})
				return
			}
			if !send(chatFragmentMsg{seq: seq, text: frag}) {
				return
			}
		}
		send(chatDoneMsg{seq: seq})
	}()

	d.cancel = cancel
	d.stream = ch
	m.refreshDetail()
	return waitChat(ch)
}

func waitChat(ch <-chan tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func (m *Model) handleChatFragment(msg chatFragmentMsg) tea.Cmd {
	d := &m.detail
	if msg.seq != d.seq || d.stream == nil {
		return nil
	}
	d.transcript.Append(msg.text)
	m.refreshDetail()
	d.view.GotoBottom()
	return waitChat(d.stream)
}

func (m *Model) handleChatDone(msg chatDoneMsg) {
	d := &m.detail
	if msg.seq != d.seq || d.stream == nil {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.stream = nil
	if msg.err != nil {
		d.transcript.Fail()
		m.svc.Log.Warn().Err(msg.err).Str("dream", d.id).Msg("chat turn failed")
	}
	m.refreshDetail()
	d.view.GotoBottom()
}

// refreshDetail re-renders the open dream into the viewport.
func (m *Model) refreshDetail() {
	current := m.ctl.Current()
	if current == nil {
		m.detail.view.SetContent("")
		return
	}
	m.detail.view.SetContent(m.renderDream(current))
}

func (m *Model) renderDream(d *dream.Dream) string {
	th := m.th.Card
	width := m.detail.width
	wrap := func(s string) string { return wordwrap.String(s, width) }

	title := th.Title
	swatch := ""
	if d.Analysis != nil {
		if _, err := dream.ParseColor(d.Analysis.ColorHex); err == nil {
			title = title.Foreground(lipgloss.Color(d.Analysis.ColorHex))
			swatch = lipgloss.NewStyle().Background(lipgloss.Color(d.Analysis.ColorHex)).Render("    ") + " "
		}
	}

	var b strings.Builder
	head := swatch + title.Render(d.Title())
	if d.IsFavorite {
		head += " " + th.Favorite.Render("★")
	}
	if d.IsLucid {
		head += " " + th.Lucid.Render("◎ lucid")
	}
	b.WriteString(head + "\n")

	meta := []string{d.Date.Local().Format("Monday, January 2, 2006")}
	if s, ok := m.ctl.Section(d.SectionID); ok {
		meta = append(meta, "▸ "+s.Name)
	}
	b.WriteString(th.Meta.Render(strings.Join(meta, " · ")) + "\n")

	if len(d.CustomLabels) > 0 {
		parts := make([]string, 0, len(d.CustomLabels))
		for _, l := range d.CustomLabels {
			parts = append(parts, th.Label.Render("#"+l))
		}
		b.WriteString(strings.Join(parts, " ") + "\n")
	}

	if a := d.Analysis; a != nil {
		fmt.Fprintf(&b, "\n%s %s   %s %d/100\n",
			th.Meta.Render("mood"), a.Mood, th.Meta.Render("sentiment"), a.SentimentScore)
		if len(a.Tags) > 0 {
			b.WriteString(th.Tag.Render("#"+strings.Join(a.Tags, " #")) + "\n")
		}
		b.WriteString("\n" + th.Heading.Render("Summary") + "\n" + wrap(a.Summary) + "\n")
		b.WriteString("\n" + th.Heading.Render("Interpretation") + "\n" + wrap(a.Interpretation) + "\n")
	}

	b.WriteString("\n" + th.Heading.Render("The dream") + "\n" + wrap(d.Content) + "\n")
	if d.HasImage() {
		fmt.Fprintf(&b, "\n%s\n", th.Meta.Render(fmt.Sprintf("Illustration attached; save it with `somnium image %s <file>`.", d.ID)))
	}

	b.WriteString("\n" + th.Heading.Render("Oracle") + "\n")
	if len(m.detail.transcript.Messages) == 0 {
		b.WriteString(th.Empty.Render("Press i to ask the spirit of this dream a question.") + "\n")
	}
	for _, msg := range m.detail.transcript.Messages {
		who := m.th.Chat.Model.Render("oracle › ")
		if msg.Role == oracle.RoleUser {
			who = m.th.Chat.User.Render("you › ")
		}
		text := msg.Text
		if text == "" && msg.Role == oracle.RoleModel {
			text = th.Empty.Render("…")
		}
		b.WriteString(who + wrap(text) + "\n")
	}
	return b.String()
}

func (m *Model) detailView() string {
	body := m.detail.view.View()
	input := ""
	if m.detail.typing || m.detail.busy() {
		input = m.detail.input.View()
	}
	return lipgloss.NewStyle().Padding(0, 2).Height(m.bodyHeight()).Render(lipgloss.JoinVertical(lipgloss.Left, body, input))
}
