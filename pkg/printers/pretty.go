package printers

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/somnium/pkg/dream"
	"tableflip.dev/somnium/pkg/oracle"
	"tableflip.dev/somnium/pkg/payment"
	"tableflip.dev/somnium/pkg/stats"
)

// EmptyMessage is shown for a view without dreams.
const EmptyMessage = "No dreams found here."

// CardTags is how many analysis tags a list row shows.
const CardTags = 3

// Wrap is the column width for long text.
const Wrap = 76

type PrettyPrint struct {
	ShowID bool
	Out    io.Writer
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out != nil {
		return pp.Out
	}
	return color.Output
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out())
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintln(pp.out(), " dream")
	default:
		_, _ = c.Fprintln(pp.out(), " dreams")
	}
}

// Dreams prints one row per dream.
func (pp *PrettyPrint) Dreams(dreams []*dream.Dream, sections []dream.Section) {
	if len(dreams) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprintf(pp.out(), " %s\n\n", EmptyMessage)
		return
	}
	names := sectionNames(sections)

	y := color.New(color.FgHiYellow, color.Italic, color.Faint)
	star := color.New(color.FgHiYellow)
	faint := color.New(color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 40
	for _, d := range dreams {
		var row []interface{}
		if pp.ShowID {
			row = append(row, y.Sprint(d.ID))
		}
		marks := ""
		if d.IsFavorite {
			marks += star.Sprint("★")
		} else {
			marks += " "
		}
		if d.IsLucid {
			marks += "◉"
		} else {
			marks += " "
		}
		row = append(row,
			faint.Sprint(d.Date.Local().Format("Jan 02 2006")),
			marks,
			d.Title(),
			d.Mood(),
			strings.Join(firstN(tags(d), CardTags), ", "),
			faint.Sprint(names[d.SectionID]),
		)
		tbl.AddRow(row...)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Dream prints everything known about one dream.
func (pp *PrettyPrint) Dream(d *dream.Dream, section string) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	label := color.New(color.FgCyan)

	pp.Title(d.Title())
	_, _ = faint.Fprintf(pp.out(), "%s  %s\n", d.ID, d.Date.Local().Format("Monday, January 2 2006 15:04"))

	var flags []string
	if d.IsFavorite {
		flags = append(flags, "favorite")
	}
	if d.IsLucid {
		flags = append(flags, "lucid")
	}
	if section != "" {
		flags = append(flags, "in "+section)
	}
	if d.HasImage() {
		flags = append(flags, "illustrated")
	}
	if len(flags) > 0 {
		_, _ = faint.Fprintln(pp.out(), strings.Join(flags, " · "))
	}
	pp.NewLine()

	_, _ = fmt.Fprintln(pp.out(), indent.String(wordwrap.String(d.Content, Wrap), 2))
	pp.NewLine()

	if a := d.Analysis; a != nil {
		_, _ = bold.Fprintln(pp.out(), "Summary")
		_, _ = fmt.Fprintln(pp.out(), indent.String(wordwrap.String(a.Summary, Wrap), 2))
		_, _ = bold.Fprintln(pp.out(), "Interpretation")
		_, _ = fmt.Fprintln(pp.out(), indent.String(wordwrap.String(a.Interpretation, Wrap), 2))

		tbl := uitable.New()
		tbl.Separator = "  "
		tbl.AddRow(bold.Sprint("Mood"), a.Mood)
		tbl.AddRow(bold.Sprint("Sentiment"), fmt.Sprintf("%d/100 %s", a.SentimentScore, bar(a.SentimentScore, 20)))
		tbl.AddRow(bold.Sprint("Color"), a.ColorHex)
		if len(a.Tags) > 0 {
			tbl.AddRow(bold.Sprint("Tags"), strings.Join(a.Tags, ", "))
		}
		_, _ = fmt.Fprintln(pp.out(), tbl)
	}
	if len(d.CustomLabels) > 0 {
		parts := make([]string, len(d.CustomLabels))
		for i, l := range d.CustomLabels {
			parts[i] = label.Sprint("#" + l)
		}
		_, _ = fmt.Fprintln(pp.out(), strings.Join(parts, " "))
	}
	pp.NewLine()
}

// Sections prints collections with how many dreams each holds.
func (pp *PrettyPrint) Sections(sections []dream.Section, dreams []*dream.Dream) {
	pp.TitleWithCount("Collections", len(sections))
	if len(sections) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprint(pp.out(), " none\n\n")
		return
	}
	counts := make(map[string]int)
	for _, d := range dreams {
		counts[d.SectionID]++
	}
	y := color.New(color.FgHiYellow, color.Italic, color.Faint)
	tbl := uitable.New()
	tbl.Separator = "  "
	for _, s := range sections {
		tbl.AddRow(y.Sprint(s.ID), s.Name, counts[s.ID])
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Stats prints the insights screen.
func (pp *PrettyPrint) Stats(s stats.Summary) {
	pp.TitleWithCount("Dream Insights", s.Total)
	if !s.Sufficient {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprintf(pp.out(), " Record at least %d dreams to unlock insights.\n\n", stats.MinDreams)
		return
	}
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	_, _ = bold.Fprintln(pp.out(), "Sentiment over time")
	tbl := uitable.New()
	tbl.Separator = "  "
	for _, p := range s.Sentiment {
		tbl.AddRow(faint.Sprint(p.Date.Local().Format("Jan 02")), fmt.Sprintf("%3d", p.Sentiment), bar(p.Sentiment, 30), p.Mood)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()

	_, _ = bold.Fprintln(pp.out(), "Top moods")
	tbl = uitable.New()
	tbl.Separator = "  "
	for _, m := range stats.Top(s.Moods, stats.TopMoods) {
		tbl.AddRow(m.Mood, m.Count)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()

	_, _ = bold.Fprint(pp.out(), "Lucidity ")
	_, _ = fmt.Fprintf(pp.out(), "%d%% %s\n\n", s.Lucidity, bar(s.Lucidity, 20))
}

// Message prints one chat bubble.
func (pp *PrettyPrint) Message(m oracle.Message) {
	switch m.Role {
	case oracle.RoleUser:
		_, _ = color.New(color.FgHiBlue, color.Bold).Fprint(pp.out(), "you › ")
	default:
		_, _ = color.New(color.FgHiMagenta, color.Bold).Fprint(pp.out(), "oracle › ")
	}
	_, _ = fmt.Fprintln(pp.out(), m.Text)
}

// Upgrade prints the premium pitch with checkout links.
func (pp *PrettyPrint) Upgrade(links map[payment.Plan]string) {
	pp.Title("Unlock the Dream Lab")
	_, _ = fmt.Fprintln(pp.out(), "Premium unlocks AI interpretation, favorites and collections.")
	pp.NewLine()
	tbl := uitable.New()
	tbl.Separator = "  "
	for _, o := range payment.Offers() {
		tbl.AddRow(color.New(color.Bold).Sprint(o.ItemName), o.Amount+" "+o.Currency, links[o.Plan])
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// UpgradeRequired explains a denied action.
func (pp *PrettyPrint) UpgradeRequired(action string) {
	c := color.New(color.FgHiYellow)
	_, _ = c.Fprintf(pp.out(), "%s is a premium feature. Run `somnium upgrade` or `somnium redeem <code>`.\n", action)
}

func bar(v, width int) string {
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	n := v * width / 100
	return strings.Repeat("█", n) + strings.Repeat("░", width-n)
}

func tags(d *dream.Dream) []string {
	if d.Analysis == nil {
		return nil
	}
	return d.Analysis.Tags
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func sectionNames(sections []dream.Section) map[string]string {
	out := make(map[string]string, len(sections))
	for _, s := range sections {
		out[s.ID] = s.Name
	}
	return out
}
