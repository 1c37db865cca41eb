package theme

import "github.com/charmbracelet/lipgloss/v2"

// Theme centralizes Lip Gloss styles for the Bubble Tea UI.
type Theme struct {
	Footer  FooterTheme
	Sidebar SidebarTheme
	Card    CardTheme
	Chat    ChatTheme
	Modal   ModalTheme
}

// FooterTheme groups styles used by the bottom status bar.
type FooterTheme struct {
	Help   lipgloss.Style
	Status lipgloss.Style
	Error  lipgloss.Style
}

// SidebarTheme styles the navigation column.
type SidebarTheme struct {
	Frame    lipgloss.Style
	Heading  lipgloss.Style
	Item     lipgloss.Style
	Active   lipgloss.Style
	Selected lipgloss.Style
}

// CardTheme styles dream cards and the detail pane.
type CardTheme struct {
	Title    lipgloss.Style
	Meta     lipgloss.Style
	Tag      lipgloss.Style
	Label    lipgloss.Style
	Favorite lipgloss.Style
	Lucid    lipgloss.Style
	Cursor   lipgloss.Style
	Empty    lipgloss.Style
	Heading  lipgloss.Style
}

// ChatTheme styles the oracle transcript.
type ChatTheme struct {
	User  lipgloss.Style
	Model lipgloss.Style
}

// ModalTheme styles centered overlays (upgrade, confirm, picker).
type ModalTheme struct {
	Frame lipgloss.Style
	Title lipgloss.Style
	Body  lipgloss.Style
}

// Default returns the built-in theme used across the UI.
func Default() Theme {
	accent := lipgloss.Color("212")
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	return Theme{
		Footer: FooterTheme{
			Help:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Status: muted,
			Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		},
		Sidebar: SidebarTheme{
			Frame: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				Padding(0, 1),
			Heading:  lipgloss.NewStyle().Bold(true).Foreground(accent),
			Item:     lipgloss.NewStyle(),
			Active:   lipgloss.NewStyle().Bold(true),
			Selected: lipgloss.NewStyle().Reverse(true),
		},
		Card: CardTheme{
			Title:    lipgloss.NewStyle().Bold(true),
			Meta:     muted,
			Tag:      lipgloss.NewStyle().Foreground(lipgloss.Color("147")),
			Label:    lipgloss.NewStyle().Foreground(lipgloss.Color("180")),
			Favorite: lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
			Lucid:    lipgloss.NewStyle().Foreground(lipgloss.Color("87")),
			Cursor:   lipgloss.NewStyle().Foreground(accent).Bold(true),
			Empty:    muted.Italic(true),
			Heading:  lipgloss.NewStyle().Bold(true).Foreground(accent),
		},
		Chat: ChatTheme{
			User:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75")),
			Model: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("177")),
		},
		Modal: ModalTheme{
			Frame: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(accent).
				Padding(1, 2),
			Title: lipgloss.NewStyle().Bold(true),
			Body:  lipgloss.NewStyle(),
		},
	}
}
