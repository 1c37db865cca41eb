// Command demo seeds the configured journal with a handful of interpreted
// dreams so the UI and insights have something to show.
package main

import (
	"fmt"
	"log"
	"time"

	"tableflip.dev/somnium/pkg/config"
	"tableflip.dev/somnium/pkg/dream"
	"tableflip.dev/somnium/pkg/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	s, err := store.Open(cfg)
	if err != nil {
		log.Fatal(err)
	}
	if c, ok := s.Backend().(interface{ Close() error }); ok {
		defer c.Close()
	}

	recurring := dream.NewSection("Recurring")
	if err := s.CreateSection(recurring); err != nil {
		log.Fatal(err)
	}

	now := time.Now()
	for i, d := range staticDemo(now) {
		if i%2 == 0 {
			d.SectionID = recurring.ID
		}
		if err := s.CreateDream(d); err != nil {
			log.Fatal(err)
		}
	}

	for _, d := range s.ListDreams() {
		fmt.Printf("%s  %-28s %s\n", d.Date.Local().Format("2006-01-02"), d.Title(), d.Mood())
	}
}

func staticDemo(now time.Time) []*dream.Dream {
	seed := []struct {
		daysAgo  int
		content  string
		analysis dream.Analysis
		lucid    bool
	}{
		{
			daysAgo: 6,
			content: "I was late for an exam in a school with no doors. Every hallway folded back on itself.",
			analysis: dream.Analysis{
				Title: "The Doorless School", Summary: "Trapped in looping hallways before an exam.",
				Interpretation: "Pressure to perform with no clear way forward.",
				Mood: "Anxious", SentimentScore: 22, Tags: []string{"school", "maze", "exam"}, ColorHex: "#5A4E7C",
			},
		},
		{
			daysAgo: 4,
			content: "I flew over a city made of glass. I knew I was dreaming and chose to go higher.",
			analysis: dream.Analysis{
				Title: "The Glass City", Summary: "Lucid flight over a transparent city.",
				Interpretation: "A wish for clarity and the confidence to rise above it.",
				Mood: "Euphoric", SentimentScore: 91, Tags: []string{"flying", "city", "glass"}, ColorHex: "#88CCEE",
			},
			lucid: true,
		},
		{
			daysAgo: 2,
			content: "My grandmother's kitchen, but the windows opened onto the sea.",
			analysis: dream.Analysis{
				Title: "Kitchen by the Sea", Summary: "A familiar room opening onto water.",
				Interpretation: "Comfort from the past meeting something vast and new.",
				Mood: "Peaceful", SentimentScore: 74, Tags: []string{"family", "sea", "home"}, ColorHex: "#3E8E9E",
			},
		},
		{
			daysAgo: 1,
			content: "The school again. This time there was one door, and it was painted blue.",
			analysis: dream.Analysis{
				Title: "One Blue Door", Summary: "The looping school returns with a single exit.",
				Interpretation: "The old worry is loosening; a way out is visible.",
				Mood: "Anxious", SentimentScore: 48, Tags: []string{"school", "door"}, ColorHex: "#2F5DA8",
			},
		},
	}

	out := make([]*dream.Dream, 0, len(seed))
	for _, s := range seed {
		d := dream.New(s.content, now.AddDate(0, 0, -s.daysAgo))
		a := s.analysis
		d.Analysis = &a
		d.IsLucid = s.lucid
		out = append(out, d)
	}
	return out
}
