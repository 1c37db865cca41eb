// Package payment is the boundary to the redirect-based checkout. Premium
// is granted when the checkout returns with payment_success=true.
package payment

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// SuccessParam is the query parameter set by a completed checkout.
const SuccessParam = "payment_success"

// ActivatedMessage confirms a successful upgrade.
const ActivatedMessage = "Premium Activated! Thank you for your support."

const checkoutBase = "https://www.paypal.com/cgi-bin/webscr"

// Plan is a billing period.
type Plan string

const (
	Monthly Plan = "monthly"
	Yearly  Plan = "yearly"
)

// Offer describes what a plan costs.
type Offer struct {
	Plan     Plan
	ItemName string
	Amount   string
	Currency string
}

var offers = map[Plan]Offer{
	Monthly: {Plan: Monthly, ItemName: "Dream Lab Premium (Monthly)", Amount: "10.00", Currency: "USD"},
	Yearly:  {Plan: Yearly, ItemName: "Dream Lab Premium (Yearly)", Amount: "99.00", Currency: "USD"},
}

// Offers lists plans, monthly first.
func Offers() []Offer {
	return []Offer{offers[Monthly], offers[Yearly]}
}

// ParsePlan accepts "monthly" or "yearly" in any case.
func ParsePlan(s string) (Plan, error) {
	p := Plan(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := offers[p]; !ok {
		return "", fmt.Errorf("unknown plan %q (want monthly or yearly)", s)
	}
	return p, nil
}

// ErrNoBusiness means no merchant account is configured.
var ErrNoBusiness = errors.New("payment.business is not configured")

// CheckoutURL builds the buy-now link. returnURL, when set, is where the
// checkout sends the browser afterwards.
func CheckoutURL(plan Plan, business, returnURL string) (string, error) {
	offer, ok := offers[plan]
	if !ok {
		return "", fmt.Errorf("unknown plan %q", plan)
	}
	if strings.TrimSpace(business) == "" {
		return "", ErrNoBusiness
	}
	q := url.Values{}
	q.Set("cmd", "_xclick")
	q.Set("business", business)
	q.Set("item_name", offer.ItemName)
	q.Set("amount", offer.Amount)
	q.Set("currency_code", offer.Currency)
	if returnURL != "" {
		q.Set("return", returnURL)
	}
	return checkoutBase + "?" + q.Encode(), nil
}

// ParseReturnURL reports whether raw carries payment_success=true. On success
// the parameter is removed so reloading the URL cannot grant again; any other
// value leaves raw untouched.
func ParseReturnURL(raw string) (granted bool, cleaned string, err error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false, raw, fmt.Errorf("parse return url: %w", err)
	}
	q := u.Query()
	if q.Get(SuccessParam) != "true" {
		return false, u.String(), nil
	}
	q.Del(SuccessParam)
	u.RawQuery = q.Encode()
	return true, u.String(), nil
}

// Granter records an upgrade.
type Granter interface {
	Grant() error
}

// Return is the outcome of observing a return URL.
type Return struct {
	Granted bool
	Cleaned string
}

// Observe grants premium through g when raw signals a completed payment.
func Observe(raw string, g Granter) (Return, error) {
	granted, cleaned, err := ParseReturnURL(raw)
	if err != nil {
		return Return{Cleaned: cleaned}, err
	}
	if granted {
		if err := g.Grant(); err != nil {
			return Return{Cleaned: cleaned}, err
		}
	}
	return Return{Granted: granted, Cleaned: cleaned}, nil
}
