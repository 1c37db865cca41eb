package oracle

import (
	"context"
	"strings"
)

// SilentReply replaces a model turn that failed.
const SilentReply = "The oracle is silent right now. Please try again later."

// Role of a transcript message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one chat bubble.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Transcript is the conversation shown under an open dream. It lives only as
// long as the detail view and is never persisted.
type Transcript struct {
	Messages []Message
}

// Begin records the user's text and an empty model reply that fragments are
// appended to. Blank input is ignored.
func (t *Transcript) Begin(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	t.Messages = append(t.Messages,
		Message{Role: RoleUser, Text: text},
		Message{Role: RoleModel},
	)
	return true
}

// Append grows the last model message.
func (t *Transcript) Append(fragment string) {
	n := len(t.Messages)
	if n == 0 || t.Messages[n-1].Role != RoleModel {
		t.Messages = append(t.Messages, Message{Role: RoleModel, Text: fragment})
		return
	}
	t.Messages[n-1].Text += fragment
}

// Fail ends the turn with SilentReply. An empty placeholder is replaced;
// a partial reply is kept and the notice follows it.
func (t *Transcript) Fail() {
	n := len(t.Messages)
	if n > 0 && t.Messages[n-1].Role == RoleModel && t.Messages[n-1].Text == "" {
		t.Messages[n-1].Text = SilentReply
		return
	}
	t.Messages = append(t.Messages, Message{Role: RoleModel, Text: SilentReply})
}

// Last returns the newest message.
func (t *Transcript) Last() (Message, bool) {
	if len(t.Messages) == 0 {
		return Message{}, false
	}
	return t.Messages[len(t.Messages)-1], true
}

// Ask runs one full turn against s, calling onFragment after every
// fragment. A failed turn is recorded with Fail and its error returned; the
// session stays usable.
func (t *Transcript) Ask(ctx context.Context, s Session, text string, onFragment func(string)) error {
	if !t.Begin(text) {
		return nil
	}
	for frag, err := range s.Send(ctx, text) {
		if err != nil {
			t.Fail()
			return wrap(ErrChat, err)
		}
		t.Append(frag)
		if onFragment != nil {
			onFragment(frag)
		}
	}
	return nil
}
