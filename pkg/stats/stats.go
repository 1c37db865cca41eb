// Package stats derives insight figures from the journal. Everything is
// recomputed from the list it is given; nothing is cached.
package stats

import (
	"math"
	"sort"
	"time"

	"tableflip.dev/somnium/pkg/dream"
)

// MinDreams is the smallest journal that gets charts.
const MinDreams = 2

// TopMoods is how many moods the insights screen lists.
const TopMoods = 5

// Point is one analyzed dream on the sentiment timeline.
type Point struct {
	Date      time.Time `json:"date"`
	Sentiment int       `json:"sentiment"`
	Mood      string    `json:"mood"`
}

// MoodCount is a mood and how many dreams carried it.
type MoodCount struct {
	Mood  string `json:"mood"`
	Count int    `json:"count"`
}

// Summary is the full insight set for a journal.
type Summary struct {
	Total      int         `json:"total"`
	Sufficient bool        `json:"sufficient"`
	Sentiment  []Point     `json:"sentiment"`
	Moods      []MoodCount `json:"moods"`
	Lucidity   int         `json:"lucidityPercent"`
}

// Compute builds a Summary.
func Compute(dreams []*dream.Dream) Summary {
	return Summary{
		Total:      len(dreams),
		Sufficient: Sufficient(dreams),
		Sentiment:  SentimentSeries(dreams),
		Moods:      MoodRanking(dreams),
		Lucidity:   LucidityPercent(dreams),
	}
}

// Sufficient reports whether there is enough data to chart.
func Sufficient(dreams []*dream.Dream) bool {
	return len(dreams) >= MinDreams
}

// SentimentSeries projects analyzed dreams onto a timeline, oldest first.
// Dreams sharing a date keep their input order.
func SentimentSeries(dreams []*dream.Dream) []Point {
	points := make([]Point, 0, len(dreams))
	for _, d := range dreams {
		if d == nil || d.Analysis == nil {
			continue
		}
		points = append(points, Point{
			Date:      d.Date.Time,
			Sentiment: d.Analysis.SentimentScore,
			Mood:      d.Analysis.Mood,
		})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}

// MoodRanking counts moods, most frequent first. Dreams without analysis
// count as dream.UnknownMood. Ties keep first-seen order.
func MoodRanking(dreams []*dream.Dream) []MoodCount {
	index := make(map[string]int)
	var ranking []MoodCount
	for _, d := range dreams {
		if d == nil {
			continue
		}
		mood := d.Mood()
		if i, ok := index[mood]; ok {
			ranking[i].Count++
			continue
		}
		index[mood] = len(ranking)
		ranking = append(ranking, MoodCount{Mood: mood, Count: 1})
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Count > ranking[j].Count
	})
	if ranking == nil {
		return []MoodCount{}
	}
	return ranking
}

// Top returns at most n entries of a ranking.
func Top(ranking []MoodCount, n int) []MoodCount {
	if n < 0 {
		n = 0
	}
	if len(ranking) > n {
		return ranking[:n]
	}
	return ranking
}

// LucidityPercent is round(100 * lucid / total), 0 for an empty journal.
func LucidityPercent(dreams []*dream.Dream) int {
	if len(dreams) == 0 {
		return 0
	}
	lucid := 0
	for _, d := range dreams {
		if d != nil && d.IsLucid {
			lucid++
		}
	}
	return int(math.Round(100 * float64(lucid) / float64(len(dreams))))
}
