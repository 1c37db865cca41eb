package stats_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/somnium/pkg/dream"
	"tableflip.dev/somnium/pkg/stats"
)

func day(n int) time.Time {
	return time.Date(2025, 4, n, 6, 30, 0, 0, time.UTC)
}

func analyzed(id string, when time.Time, mood string, score int) *dream.Dream {
	d := dream.New("content "+id, when)
	d.ID = id
	d.Analysis = &dream.Analysis{
		Title:          "t",
		Summary:        "s",
		Interpretation: "i",
		Mood:           mood,
		SentimentScore: score,
		ColorHex:       "#123456",
	}
	return d
}

func plain(id string, when time.Time) *dream.Dream {
	d := dream.New("content "+id, when)
	d.ID = id
	return d
}

func TestLucidityPercent(t *testing.T) {
	dreams := []*dream.Dream{plain("a", day(1)), plain("b", day(2)), plain("c", day(3)), plain("d", day(4))}
	dreams[2].IsLucid = true
	assert.Equal(t, 25, stats.LucidityPercent(dreams))

	assert.Equal(t, 0, stats.LucidityPercent(nil))

	three := dreams[:3]
	assert.Equal(t, 33, stats.LucidityPercent(three))

	dreams[0].IsLucid = true
	assert.Equal(t, 67, stats.LucidityPercent(three))

	dreams[1].IsLucid = true
	assert.Equal(t, 100, stats.LucidityPercent(three))
}

func TestSentimentSeriesSortedAndStable(t *testing.T) {
	// Store order is newest first.
	dreams := []*dream.Dream{
		analyzed("late", day(9), "Joy", 90),
		plain("skipped", day(5)),
		analyzed("tieA", day(3), "Fear", 20),
		analyzed("tieB", day(3), "Calm", 60),
		analyzed("early", day(1), "Awe", 75),
	}

	series := stats.SentimentSeries(dreams)
	require.Len(t, series, 4)
	moods := []string{series[0].Mood, series[1].Mood, series[2].Mood, series[3].Mood}
	assert.Equal(t, []string{"Awe", "Fear", "Calm", "Joy"}, moods)
	assert.Equal(t, 75, series[0].Sentiment)
}

func TestMoodRanking(t *testing.T) {
	dreams := []*dream.Dream{
		analyzed("1", day(1), "Calm", 50),
		plain("2", day(2)),
		analyzed("3", day(3), "Fear", 10),
		analyzed("4", day(4), "Fear", 15),
		plain("5", day(5)),
		analyzed("6", day(6), "Calm", 55),
		analyzed("7", day(7), "Joy", 80),
	}

	ranking := stats.MoodRanking(dreams)
	assert.Equal(t, []stats.MoodCount{
		{Mood: "Calm", Count: 2},
		{Mood: dream.UnknownMood, Count: 2},
		{Mood: "Fear", Count: 2},
		{Mood: "Joy", Count: 1},
	}, ranking)

	assert.Len(t, stats.Top(ranking, stats.TopMoods), 4)
	assert.Equal(t, ranking[:2], stats.Top(ranking, 2))
	assert.Empty(t, stats.MoodRanking(nil))
}

func TestComputeDisplayGuard(t *testing.T) {
	one := []*dream.Dream{analyzed("solo", day(1), "Calm", 40)}
	s := stats.Compute(one)
	assert.False(t, s.Sufficient)
	assert.Equal(t, 1, s.Total)

	two := append(one, plain("second", day(2)))
	assert.True(t, stats.Compute(two).Sufficient)
}
