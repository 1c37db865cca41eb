package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/somnium/pkg/stats"
)

func (m *Model) updateStats(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		m.shutdown()
		return tea.Quit
	case "esc", "backspace", "1":
		m.ctl.NavigateJournal()
	case "2":
		m.ctl.NavigateFavorites()
	case "u":
		return m.showUpgrade(0)
	}
	m.clamp()
	return nil
}

func (m *Model) statsView() string {
	th := m.th.Card
	s := stats.Compute(m.ctl.Dreams())
	lines := []string{th.Heading.Render("Dream Insights"), ""}

	if !s.Sufficient {
		lines = append(lines, th.Empty.Render(fmt.Sprintf("Record at least %d dreams to unlock insights.", stats.MinDreams)))
		return m.statsFrame(lines)
	}

	lines = append(lines, th.Title.Render("Emotional journey"))
	points := s.Sentiment
	// newest rows win when the screen is short
	room := max(m.bodyHeight()-stats.TopMoods-9, 3)
	if len(points) > room {
		points = points[len(points)-room:]
	}
	if len(points) == 0 {
		lines = append(lines, th.Empty.Render("No interpreted dreams yet."))
	}
	for _, p := range points {
		lines = append(lines, fmt.Sprintf("%s %s %3d %s",
			th.Meta.Render(p.Date.Local().Format("Jan 02")),
			bar(p.Sentiment, 100, 30),
			p.Sentiment,
			th.Meta.Render(p.Mood),
		))
	}

	lines = append(lines, "", th.Title.Render("Top moods"))
	top := stats.Top(s.Moods, stats.TopMoods)
	most := 1
	if len(top) > 0 {
		most = top[0].Count
	}
	for _, mc := range top {
		lines = append(lines, fmt.Sprintf("%-14s %s %d", mc.Mood, bar(mc.Count, most, 20), mc.Count))
	}

	lines = append(lines, "", th.Title.Render("Lucidity")+fmt.Sprintf("  %d%% %s", s.Lucidity, bar(s.Lucidity, 100, 20)))
	return m.statsFrame(lines)
}

func (m *Model) statsFrame(lines []string) string {
	return lipgloss.NewStyle().Padding(0, 2).Height(m.bodyHeight()).Render(strings.Join(lines, "\n"))
}

func bar(v, of, width int) string {
	if of <= 0 {
		return strings.Repeat("░", width)
	}
	n := v * width / of
	n = min(max(n, 0), width)
	return strings.Repeat("█", n) + strings.Repeat("░", width-n)
}
