package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/truncate"

	"tableflip.dev/somnium/pkg/dream"
	"tableflip.dev/somnium/pkg/viewstate"
)

// EmptyMessage is shown for a list with nothing in it.
const EmptyMessage = "No dreams found here."

const cardTags = 3

type navItem struct {
	label   string
	kind    viewstate.Kind
	section string
}

func (m *Model) navItems() []navItem {
	items := []navItem{
		{label: "Journal", kind: viewstate.Dashboard},
		{label: "Favorites", kind: viewstate.Favorites},
		{label: "Insights", kind: viewstate.Stats},
	}
	for _, s := range m.ctl.Sections() {
		items = append(items, navItem{label: s.Name, kind: viewstate.Collection, section: s.ID})
	}
	return items
}

func (m *Model) updateList(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		m.shutdown()
		return tea.Quit
	case "tab":
		if m.focus == focusList {
			m.focus = focusSidebar
		} else {
			m.focus = focusList
		}
	case "j", "down":
		m.move(1)
	case "k", "up":
		m.move(-1)
	case "enter", "l", "right":
		if m.focus == focusSidebar {
			m.activate(m.navItems()[m.sideCursor])
			return nil
		}
		if d := m.selected(); d != nil {
			m.openDream(d.ID)
		}
	case "n":
		return m.openComposer()
	case "f":
		if d := m.selected(); d != nil && m.focus == focusList {
			return m.toggleFavorite(d)
		}
	case "1":
		m.ctl.NavigateJournal()
	case "2":
		m.ctl.NavigateFavorites()
	case "3":
		m.ctl.NavigateStats()
	case "c":
		m.overlay = overlayNewCollection
		m.modalErr = ""
		m.name.Reset()
		return m.name.Focus()
	case "x":
		id := ""
		if m.focus == focusSidebar {
			id = m.navItems()[m.sideCursor].section
		} else if st := m.ctl.State(); st.Kind == viewstate.Collection {
			id = st.SectionID
		}
		if id != "" {
			m.doomedSection = id
			m.overlay = overlayDeleteCollection
		}
	case "u":
		return m.showUpgrade(0)
	}
	m.clamp()
	return nil
}

func (m *Model) move(delta int) {
	if m.focus == focusSidebar {
		m.sideCursor += delta
	} else {
		m.cursor += delta
	}
	if m.sideCursor < 0 {
		m.sideCursor = 0
	}
	m.clamp()
}

func (m *Model) activate(it navItem) {
	switch it.kind {
	case viewstate.Favorites:
		m.ctl.NavigateFavorites()
	case viewstate.Stats:
		m.ctl.NavigateStats()
	case viewstate.Collection:
		if !m.ctl.SelectCollection(it.section) {
			m.setStatus("That collection no longer exists.")
		}
	default:
		m.ctl.NavigateJournal()
	}
	m.cursor = 0
	m.focus = focusList
	m.clamp()
}

func (m *Model) selected() *dream.Dream {
	visible := m.ctl.Visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return nil
	}
	return visible[m.cursor]
}

func (m *Model) toggleFavorite(d *dream.Dream) tea.Cmd {
	updated, decision, err := m.svc.ToggleFavorite(m.ctx, d)
	if err != nil {
		m.fail(err)
		return nil
	}
	if decision.Denied() {
		return m.showUpgrade(decision.Action)
	}
	m.ctl.Reload()
	if updated.IsFavorite {
		m.setStatus(fmt.Sprintf("★ %s", updated.Title()))
	} else {
		m.setStatus(fmt.Sprintf("☆ %s", updated.Title()))
	}
	m.clamp()
	m.refreshDetail()
	return nil
}

func (m *Model) listTitle() string {
	st := m.ctl.State()
	switch st.Kind {
	case viewstate.Favorites:
		return "Favorites"
	case viewstate.Collection:
		if s, ok := m.ctl.Section(st.SectionID); ok {
			return s.Name
		}
	}
	return "Dream Journal"
}

func (m *Model) listView() string {
	height := m.bodyHeight()
	side := m.sidebarView(height)
	width := max(m.width-lipgloss.Width(side)-1, 20)

	visible := m.ctl.Visible()
	lines := []string{
		m.th.Card.Heading.Render(fmt.Sprintf("%s (%d)", m.listTitle(), len(visible))),
		"",
	}
	if len(visible) == 0 {
		lines = append(lines, m.th.Card.Empty.Render(EmptyMessage))
	}

	// keep the cursor's card on screen; each card is three lines
	perPage := max((height-2)/3, 1)
	start := 0
	if m.cursor >= perPage {
		start = m.cursor - perPage + 1
	}
	for i := start; i < len(visible) && i < start+perPage; i++ {
		lines = append(lines, m.card(visible[i], i == m.cursor && m.focus == focusList, width)...)
	}

	list := lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(lines, "\n"))
	return lipgloss.JoinHorizontal(lipgloss.Top, side, " ", list)
}

func (m *Model) card(d *dream.Dream, selected bool, width int) []string {
	th := m.th.Card
	marker := "  "
	if selected {
		marker = th.Cursor.Render("› ")
	}
	title := th.Title
	if d.Analysis != nil {
		if _, err := dream.ParseColor(d.Analysis.ColorHex); err == nil {
			title = title.Foreground(lipgloss.Color(d.Analysis.ColorHex))
		}
	}
	head := marker + title.Render(d.Title())
	if d.IsFavorite {
		head += " " + th.Favorite.Render("★")
	}
	if d.IsLucid {
		head += " " + th.Lucid.Render("◎ lucid")
	}

	meta := []string{d.Date.Local().Format("Jan 2, 2006"), d.Mood()}
	if s, ok := m.ctl.Section(d.SectionID); ok {
		meta = append(meta, "▸ "+s.Name)
	}
	sub := "  " + th.Meta.Render(strings.Join(meta, " · "))
	if d.Analysis != nil && len(d.Analysis.Tags) > 0 {
		tags := d.Analysis.Tags
		if len(tags) > cardTags {
			tags = tags[:cardTags]
		}
		sub += "  " + th.Tag.Render("#"+strings.Join(tags, " #"))
	}
	return []string{clip(head, width), clip(sub, width), ""}
}

func (m *Model) sidebarView(height int) string {
	th := m.th.Sidebar
	st := m.ctl.State()
	lines := []string{th.Heading.Render("somnium"), ""}
	for i, it := range m.navItems() {
		if i == 3 {
			lines = append(lines, "", th.Heading.Render("Collections"))
		}
		style := th.Item
		active := it.kind == st.Kind && (it.kind != viewstate.Collection || it.section == st.SectionID)
		if active {
			style = th.Active
		}
		label := it.label
		if it.kind == viewstate.Collection {
			label = fmt.Sprintf("%s (%d)", it.label, m.countIn(it.section))
		}
		if m.focus == focusSidebar && i == m.sideCursor {
			style = th.Selected
		}
		lines = append(lines, style.Render(clip(label, sidebarWidth-4)))
	}
	if len(m.ctl.Sections()) == 0 {
		lines = append(lines, "", th.Item.Faint(true).Render("c to add a collection"))
	}
	frame := th.Frame.Width(sidebarWidth).Height(max(height-th.Frame.GetVerticalFrameSize(), 1))
	return frame.Render(strings.Join(lines, "\n"))
}

func (m *Model) countIn(section string) int {
	n := 0
	for _, d := range m.ctl.Dreams() {
		if d.InSection(section) {
			n++
		}
	}
	return n
}

func (m *Model) footerView() string {
	th := m.th.Footer
	status := th.Status.Render(m.status)
	if m.statusErr {
		status = th.Error.Render(m.status)
	}
	return lipgloss.JoinVertical(lipgloss.Left, status, th.Help.Render(clip(m.help(), m.width)))
}

func (m *Model) help() string {
	switch m.overlay {
	case overlayUpgrade, overlayNewCollection:
		return "enter confirm · esc close"
	case overlayDeleteDream, overlayDeleteCollection:
		return "y yes · n no"
	case overlayPicker:
		return "j/k move · enter choose · esc close"
	}
	switch m.ctl.State().Kind {
	case viewstate.Composer:
		return "ctrl+s interpret · tab next field · ctrl+l lucid · ctrl+f favorite · ctrl+o collection · esc leave"
	case viewstate.Detail:
		if m.detail.typing {
			return "enter ask · esc stop typing"
		}
		return "i ask the oracle · f favorite · m move · d delete · j/k scroll · esc back"
	case viewstate.Stats:
		return "esc back · 1 journal · 2 favorites · q quit"
	}
	return "j/k move · enter open · n new dream · f favorite · tab sidebar · 1/2/3 journal/favorites/insights · c collection · x delete collection · u upgrade · q quit"
}

func clip(s string, width int) string {
	if width <= 0 {
		return s
	}
	return truncate.StringWithTail(s, uint(width), "…")
}
