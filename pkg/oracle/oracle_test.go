package oracle

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/somnium/pkg/dream"
)

type scriptedSession struct {
	turns [][]string
	fail  map[int]error
	n     int
}

func (s *scriptedSession) Send(_ context.Context, _ string) iter.Seq2[string, error] {
	turn := s.n
	s.n++
	return func(yield func(string, error) bool) {
		for _, frag := range s.turns[turn] {
			if !yield(frag, nil) {
				return
			}
		}
		if err := s.fail[turn]; err != nil {
			yield("", err)
		}
	}
}

func TestDecodeAnalysis(t *testing.T) {
	a, err := decodeAnalysis(`{
		"title": "The Glass Tide",
		"summary": "Walking on a sea of glass.",
		"interpretation": "Fragility beneath calm surfaces.",
		"mood": "Serene",
		"sentimentScore": 71.6,
		"tags": ["ocean", " glass ", "ocean", ""],
		"colorHex": "#7fb3d5"
	}`)
	require.NoError(t, err)
	assert.Equal(t, "The Glass Tide", a.Title)
	assert.Equal(t, 72, a.SentimentScore)
	assert.Equal(t, []string{"ocean", "glass"}, a.Tags)
	assert.Equal(t, "#7FB3D5", a.ColorHex)
}

func TestDecodeAnalysisRejectsPartial(t *testing.T) {
	cases := map[string]string{
		"empty":       "",
		"not json":    "the dream means nothing",
		"no score":    `{"title":"t","summary":"s","interpretation":"i","mood":"m","tags":[],"colorHex":"#000000"}`,
		"no title":    `{"summary":"s","interpretation":"i","mood":"m","sentimentScore":5,"tags":[],"colorHex":"#000000"}`,
		"score range": `{"title":"t","summary":"s","interpretation":"i","mood":"m","sentimentScore":140,"tags":[],"colorHex":"#000000"}`,
		"bad color":   `{"title":"t","summary":"s","interpretation":"i","mood":"m","sentimentScore":40,"tags":[],"colorHex":"blue"}`,
		"no tags":     `{"title":"t","summary":"s","interpretation":"i","mood":"m","sentimentScore":40,"colorHex":"#000000"}`,
		"null tags":   `{"title":"t","summary":"s","interpretation":"i","mood":"m","sentimentScore":40,"tags":null,"colorHex":"#000000"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := decodeAnalysis(body)
			require.Error(t, err)
		})
	}

	_, err := decodeAnalysis(`{"title":"t","summary":"s","interpretation":"i","mood":"m","sentimentScore":140,"tags":[],"colorHex":"#000000"}`)
	assert.ErrorIs(t, err, dream.ErrInvalidAnalysis)

	_, err = decodeAnalysis(`{"title":"t","summary":"s","interpretation":"i","mood":"m","sentimentScore":40,"colorHex":"#000000"}`)
	assert.ErrorIs(t, err, dream.ErrInvalidAnalysis)
}

func TestWrapKeepsKind(t *testing.T) {
	err := wrap(ErrAnalysis, errors.New("503"))
	assert.ErrorIs(t, err, ErrAnalysis)
	assert.Contains(t, err.Error(), "503")

	assert.ErrorIs(t, wrap(ErrChat, ErrNotConfigured), ErrNotConfigured)
	assert.NoError(t, wrap(ErrChat, nil))
}

func TestDataURI(t *testing.T) {
	assert.Equal(t, "data:image/jpeg;base64,AQID", DataURI("image/jpeg", []byte{1, 2, 3}))
	assert.Equal(t, "data:image/png;base64,AQ==", DataURI("", []byte{1}))
}

func TestUnconfigured(t *testing.T) {
	var o Oracle = Unconfigured{}
	_, err := o.Analyze(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = o.Illustrate(context.Background(), "x", "calm")
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = o.OpenChat(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestTranscriptStreamsIntoLastMessage(t *testing.T) {
	s := &scriptedSession{turns: [][]string{{"The ", "sea ", "remembers."}}}
	var tr Transcript
	var seen int

	require.NoError(t, tr.Ask(context.Background(), s, "What does the sea mean?", func(string) { seen++ }))
	require.Len(t, tr.Messages, 2)
	assert.Equal(t, Message{Role: RoleUser, Text: "What does the sea mean?"}, tr.Messages[0])
	assert.Equal(t, Message{Role: RoleModel, Text: "The sea remembers."}, tr.Messages[1])
	assert.Equal(t, 3, seen)
}

func TestTranscriptFailureKeepsSessionUsable(t *testing.T) {
	s := &scriptedSession{
		turns: [][]string{{}, {"Partial"}, {"Back again."}},
		fail:  map[int]error{0: errors.New("quota"), 1: errors.New("reset")},
	}
	var tr Transcript
	ctx := context.Background()

	err := tr.Ask(ctx, s, "first", nil)
	require.ErrorIs(t, err, ErrChat)
	last, _ := tr.Last()
	assert.Equal(t, SilentReply, last.Text)
	assert.Len(t, tr.Messages, 2)

	require.ErrorIs(t, tr.Ask(ctx, s, "second", nil), ErrChat)
	assert.Equal(t, "Partial", tr.Messages[3].Text)
	assert.Equal(t, SilentReply, tr.Messages[4].Text)

	require.NoError(t, tr.Ask(ctx, s, "third", nil))
	last, _ = tr.Last()
	assert.Equal(t, "Back again.", last.Text)
}

func TestTranscriptIgnoresBlankInput(t *testing.T) {
	var tr Transcript
	require.NoError(t, tr.Ask(context.Background(), &scriptedSession{}, "   ", nil))
	assert.Empty(t, tr.Messages)
}
