package oracle

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"google.golang.org/genai"

	"tableflip.dev/somnium/pkg/dream"
)

// GeminiOptions configures NewGemini.
type GeminiOptions struct {
	APIKey     string
	TextModel  string
	ImageModel string
	Logger     zerolog.Logger

	// FailureThreshold consecutive failures open the breaker for Cooldown.
	FailureThreshold uint32
	Cooldown         time.Duration
}

// Gemini implements Oracle on the Gemini API. Every call goes through a
// circuit breaker so a dead endpoint fails fast.
type Gemini struct {
	client     *genai.Client
	textModel  string
	imageModel string
	log        zerolog.Logger

	analyze    *gobreaker.CircuitBreaker[any]
	illustrate *gobreaker.CircuitBreaker[any]
	chat       *gobreaker.TwoStepCircuitBreaker[any]
}

var _ Oracle = (*Gemini)(nil)

// NewGemini connects a client. It returns ErrNotConfigured without a key.
func NewGemini(ctx context.Context, o GeminiOptions) (*Gemini, error) {
	if strings.TrimSpace(o.APIKey) == "" {
		return nil, ErrNotConfigured
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  o.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("oracle: create client: %w", err)
	}
	if o.TextModel == "" {
		o.TextModel = "gemini-2.5-flash"
	}
	if o.ImageModel == "" {
		o.ImageModel = "gemini-2.5-flash-image"
	}
	if o.FailureThreshold == 0 {
		o.FailureThreshold = 3
	}
	if o.Cooldown == 0 {
		o.Cooldown = 30 * time.Second
	}

	g := &Gemini{
		client:     client,
		textModel:  o.TextModel,
		imageModel: o.ImageModel,
		log:        o.Logger,
	}
	g.analyze = gobreaker.NewCircuitBreaker[any](g.breakerSettings("analyze", o))
	g.illustrate = gobreaker.NewCircuitBreaker[any](g.breakerSettings("illustrate", o))
	g.chat = gobreaker.NewTwoStepCircuitBreaker[any](g.breakerSettings("chat", o))
	return g, nil
}

func (g *Gemini) breakerSettings(name string, o GeminiOptions) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     o.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= o.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellation says nothing about the endpoint.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			g.log.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	}
}

// Analyze asks the text model for a structured interpretation.
func (g *Gemini) Analyze(ctx context.Context, content string) (*dream.Analysis, error) {
	out, err := g.analyze.Execute(func() (any, error) {
		resp, err := g.client.Models.GenerateContent(ctx, g.textModel, genai.Text(analysisPrompt(content)), &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   analysisSchema,
		})
		if err != nil {
			return nil, err
		}
		return decodeAnalysis(resp.Text())
	})
	if err != nil {
		g.log.Error().Err(err).Msg("dream analysis failed")
		return nil, wrap(ErrAnalysis, err)
	}
	return out.(*dream.Analysis), nil
}

// wireAnalysis mirrors the response schema; the model may send the score as
// a float.
type wireAnalysis struct {
	Title          string   `json:"title"`
	Summary        string   `json:"summary"`
	Interpretation string   `json:"interpretation"`
	Mood           string   `json:"mood"`
	SentimentScore *float64 `json:"sentimentScore"`
	Tags           []string `json:"tags"`
	ColorHex       string   `json:"colorHex"`
}

func decodeAnalysis(text string) (*dream.Analysis, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("no analysis returned")
	}
	var w wireAnalysis
	if err := json.Unmarshal([]byte(text), &w); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	if w.SentimentScore == nil {
		return nil, fmt.Errorf("%w: sentimentScore missing", dream.ErrInvalidAnalysis)
	}
	if w.Tags == nil {
		return nil, fmt.Errorf("%w: tags missing", dream.ErrInvalidAnalysis)
	}
	a := &dream.Analysis{
		Title:          strings.TrimSpace(w.Title),
		Summary:        strings.TrimSpace(w.Summary),
		Interpretation: strings.TrimSpace(w.Interpretation),
		Mood:           strings.TrimSpace(w.Mood),
		SentimentScore: int(math.Round(*w.SentimentScore)),
		Tags:           dream.NormalizeLabels(w.Tags),
		ColorHex:       strings.ToUpper(strings.TrimSpace(w.ColorHex)),
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Illustrate asks the image model for a painting and returns it as a data
// URI.
func (g *Gemini) Illustrate(ctx context.Context, content, mood string) (string, error) {
	out, err := g.illustrate.Execute(func() (any, error) {
		resp, err := g.client.Models.GenerateContent(ctx, g.imageModel, genai.Text(illustrationPrompt(content, mood)), nil)
		if err != nil {
			return nil, err
		}
		return firstImage(resp)
	})
	if err != nil {
		g.log.Warn().Err(err).Msg("image generation failed, skipping")
		return "", wrap(ErrIllustration, err)
	}
	return out.(string), nil
}

func firstImage(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return "", errors.New("failed to generate image")
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		return DataURI(part.InlineData.MIMEType, part.InlineData.Data), nil
	}
	return "", errors.New("failed to generate image")
}

// DataURI encodes raw image bytes.
func DataURI(mime string, data []byte) string {
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// OpenChat starts a conversation primed with the dream.
func (g *Gemini) OpenChat(ctx context.Context, dreamContent string) (Session, error) {
	chat, err := g.client.Chats.Create(ctx, g.textModel, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(chatInstruction(dreamContent), genai.RoleUser),
	}, nil)
	if err != nil {
		return nil, wrap(ErrChat, err)
	}
	return &geminiSession{chat: chat, breaker: g.chat, log: g.log}, nil
}

type geminiSession struct {
	chat    *genai.Chat
	breaker *gobreaker.TwoStepCircuitBreaker[any]
	log     zerolog.Logger
}

func (s *geminiSession) Send(ctx context.Context, text string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		done, err := s.breaker.Allow()
		if err != nil {
			yield("", wrap(ErrChat, err))
			return
		}
		var turnErr error
		defer func() { done(turnErr) }()

		for resp, err := range s.chat.SendMessageStream(ctx, genai.Part{Text: text}) {
			if err != nil {
				turnErr = err
				s.log.Warn().Err(err).Msg("oracle turn failed")
				yield("", wrap(ErrChat, err))
				return
			}
			if frag := resp.Text(); frag != "" {
				if !yield(frag, nil) {
					return
				}
			}
		}
	}
}
