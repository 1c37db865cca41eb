// Package entitlement implements the premium gate in front of favoriting,
// collection creation and AI interpretation.
package entitlement

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// PromoCode is the one literal accepted by Redeem, compared
// case-insensitively.
const PromoCode = "DREAMLAB2025"

// ErrInvalidCode is returned by Redeem for any code other than PromoCode.
var ErrInvalidCode = errors.New("invalid promo code")

// Action is a gated user action.
type Action int

const (
	ToggleFavorite Action = iota + 1
	CreateCollection
	SubmitForInterpretation
)

func (a Action) String() string {
	switch a {
	case ToggleFavorite:
		return "toggle-favorite"
	case CreateCollection:
		return "create-collection"
	case SubmitForInterpretation:
		return "submit-for-interpretation"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Actions lists every gated action.
func Actions() []Action {
	return []Action{ToggleFavorite, CreateCollection, SubmitForInterpretation}
}

// Decision is the outcome of Attempt. A denied decision means the caller
// must prompt for an upgrade and must not perform the action.
type Decision struct {
	Action  Action
	Allowed bool
}

// Denied reports whether an upgrade prompt should be shown.
func (d Decision) Denied() bool {
	return !d.Allowed
}

// FlagStore persists the premium flag.
type FlagStore interface {
	Entitlement() bool
	SetEntitlement(premium bool) error
}

// Gate answers whether gated actions may proceed.
type Gate struct {
	flags FlagStore
	log   zerolog.Logger
}

// NewGate builds a gate over flags.
func NewGate(flags FlagStore, log zerolog.Logger) *Gate {
	return &Gate{flags: flags, log: log}
}

// IsPremium reports the persisted flag.
func (g *Gate) IsPremium() bool {
	return g.flags.Entitlement()
}

// Attempt checks action against the premium flag. Ungated values are always
// allowed.
func (g *Gate) Attempt(action Action) Decision {
	switch action {
	case ToggleFavorite, CreateCollection, SubmitForInterpretation:
	default:
		return Decision{Action: action, Allowed: true}
	}
	d := Decision{Action: action, Allowed: g.IsPremium()}
	if d.Denied() {
		g.log.Debug().Stringer("action", action).Msg("upgrade required")
	}
	return d
}

// Redeem grants premium when code matches PromoCode. Surrounding whitespace
// is ignored.
func (g *Gate) Redeem(code string) error {
	if !strings.EqualFold(strings.TrimSpace(code), PromoCode) {
		return ErrInvalidCode
	}
	return g.grant("promo")
}

// Grant records a completed payment.
func (g *Gate) Grant() error {
	return g.grant("payment")
}

func (g *Gate) grant(source string) error {
	if err := g.flags.SetEntitlement(true); err != nil {
		return fmt.Errorf("entitlement: persist: %w", err)
	}
	g.log.Info().Str("source", source).Msg("premium activated")
	return nil
}
