package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/somnium/pkg/app"
	"tableflip.dev/somnium/pkg/entitlement"
	"tableflip.dev/somnium/pkg/payment"
	"tableflip.dev/somnium/pkg/viewstate"
)

const deleteDreamPrompt = "Are you sure you want to wake up from this dream forever?"

func (m *Model) closeOverlay() {
	m.overlay = overlayNone
	m.modalErr = ""
	m.promo.Blur()
	m.name.Blur()
}

func (m *Model) updateOverlay(msg tea.KeyPressMsg) tea.Cmd {
	key := msg.String()
	if key == "esc" {
		m.closeOverlay()
		return nil
	}

	switch m.overlay {
	case overlayUpgrade:
		if key == "enter" {
			m.redeem()
			return nil
		}
		var cmd tea.Cmd
		m.promo, cmd = m.promo.Update(msg)
		return cmd

	case overlayNewCollection:
		if key == "enter" {
			return m.createCollection()
		}
		var cmd tea.Cmd
		m.name, cmd = m.name.Update(msg)
		return cmd

	case overlayDeleteDream:
		switch key {
		case "y", "Y":
			m.deleteCurrent()
		case "n", "N":
			m.closeOverlay()
		}

	case overlayDeleteCollection:
		switch key {
		case "y", "Y":
			m.deleteCollection()
		case "n", "N":
			m.closeOverlay()
		}

	case overlayPicker:
		n := len(m.ctl.Sections()) + 1
		switch key {
		case "j", "down":
			m.pickerCursor = (m.pickerCursor + 1) % n
		case "k", "up":
			m.pickerCursor = (m.pickerCursor - 1 + n) % n
		case "enter":
			m.moveCurrent()
		}
	}
	return nil
}

func (m *Model) redeem() {
	err := m.svc.Gate.Redeem(m.promo.Value())
	switch {
	case errors.Is(err, entitlement.ErrInvalidCode):
		m.modalErr = "That code is not valid."
	case err != nil:
		m.modalErr = err.Error()
	default:
		m.closeOverlay()
		m.setStatus(payment.ActivatedMessage)
	}
}

func (m *Model) createCollection() tea.Cmd {
	sec, decision, err := m.svc.CreateSection(m.ctx, m.name.Value())
	switch {
	case errors.Is(err, app.ErrEmptySectionName):
		m.modalErr = "Give the collection a name."
		return nil
	case err != nil:
		m.closeOverlay()
		m.fail(err)
		return nil
	case decision.Denied():
		return m.showUpgrade(decision.Action)
	}
	m.closeOverlay()
	m.ctl.Reload()
	if m.ctl.State().Kind != viewstate.Detail {
		m.ctl.SelectCollection(sec.ID)
		m.cursor = 0
	}
	m.setStatus("Created collection " + sec.Name)
	return nil
}

func (m *Model) deleteCurrent() {
	m.closeOverlay()
	current := m.ctl.Current()
	if current == nil {
		return
	}
	if err := m.svc.DeleteDream(m.ctx, current.ID); err != nil {
		m.fail(err)
		return
	}
	m.detail.stop()
	m.ctl.DreamDeleted(current.ID)
	m.clamp()
	m.setStatus("Deleted " + current.Title())
}

func (m *Model) deleteCollection() {
	m.closeOverlay()
	id := m.doomedSection
	m.doomedSection = ""
	sec, ok := m.ctl.Section(id)
	if !ok {
		return
	}
	if err := m.svc.DeleteSection(m.ctx, id); err != nil {
		m.fail(err)
		return
	}
	m.ctl.CollectionDeleted(id)
	m.clamp()
	m.setStatus("Deleted collection " + sec.Name)
}

func (m *Model) moveCurrent() {
	m.closeOverlay()
	current := m.ctl.Current()
	if current == nil {
		return
	}
	target := ""
	if sections := m.ctl.Sections(); m.pickerCursor > 0 && m.pickerCursor <= len(sections) {
		target = sections[m.pickerCursor-1].ID
	}
	if _, err := m.svc.SetSection(m.ctx, current, target); err != nil {
		m.fail(err)
		return
	}
	m.ctl.Reload()
	m.refreshDetail()
}

func (m *Model) overlayView() string {
	th := m.th.Modal
	var lines []string
	switch m.overlay {
	case overlayUpgrade:
		lines = append(lines, th.Title.Render("Unlock the Dream Lab"), "")
		if m.deniedAction != 0 {
			lines = append(lines, fmt.Sprintf("%s is a premium feature.", humanAction(m.deniedAction)), "")
		}
		lines = append(lines, "Premium unlocks AI interpretation, favorites and collections.", "")
		for _, o := range payment.Offers() {
			line := fmt.Sprintf("%-30s %s %s", o.ItemName, o.Amount, o.Currency)
			if link := m.opts.CheckoutLinks[o.Plan]; link != "" {
				line += "\n  " + m.th.Footer.Help.Render(link)
			}
			lines = append(lines, line)
		}
		if len(m.opts.CheckoutLinks) == 0 {
			lines = append(lines, m.th.Footer.Help.Render("Run `somnium upgrade --wait` to check out."))
		}
		lines = append(lines, "", "Have a promo code?", m.promo.View())
	case overlayNewCollection:
		lines = append(lines, th.Title.Render("New collection"), "", m.name.View())
	case overlayDeleteDream:
		lines = append(lines, th.Title.Render("Delete dream"), "", deleteDreamPrompt, "", "y / n")
	case overlayDeleteCollection:
		name := ""
		if s, ok := m.ctl.Section(m.doomedSection); ok {
			name = s.Name
		}
		lines = append(lines, th.Title.Render("Delete collection"), "",
			fmt.Sprintf("Delete %q? Its dreams stay in the journal.", name), "", "y / n")
	case overlayPicker:
		lines = append(lines, th.Title.Render("Move to collection"), "")
		options := []string{"(no collection)"}
		for _, s := range m.ctl.Sections() {
			options = append(options, s.Name)
		}
		for i, o := range options {
			if i == m.pickerCursor {
				lines = append(lines, m.th.Card.Cursor.Render("› "+o))
			} else {
				lines = append(lines, "  "+o)
			}
		}
	}
	if m.modalErr != "" {
		lines = append(lines, "", m.th.Footer.Error.Render(m.modalErr))
	}
	return th.Frame.Render(th.Body.Render(strings.Join(lines, "\n")))
}

func humanAction(a entitlement.Action) string {
	switch a {
	case entitlement.ToggleFavorite:
		return "Favoriting"
	case entitlement.CreateCollection:
		return "Creating collections"
	case entitlement.SubmitForInterpretation:
		return "AI interpretation"
	default:
		return a.String()
	}
}
