package payment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingGranter struct {
	calls int
	err   error
}

func (g *countingGranter) Grant() error {
	g.calls++
	return g.err
}

func TestParseReturnURL(t *testing.T) {
	cases := []struct {
		raw     string
		granted bool
		cleaned string
	}{
		{"https://somnium.local/?payment_success=true", true, "https://somnium.local/"},
		{"https://somnium.local/?tab=stats&payment_success=true", true, "https://somnium.local/?tab=stats"},
		{"https://somnium.local/?payment_success=false", false, "https://somnium.local/?payment_success=false"},
		{"https://somnium.local/?payment_success=false&tab=stats", false, "https://somnium.local/?payment_success=false&tab=stats"},
		{"https://somnium.local/?tab=stats", false, "https://somnium.local/?tab=stats"},
		{"/return?payment_success=true", true, "/return"},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			granted, cleaned, err := ParseReturnURL(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.granted, granted)
			assert.Equal(t, tc.cleaned, cleaned)
		})
	}

	_, _, err := ParseReturnURL("http://[::1")
	assert.Error(t, err)
}

func TestObserveGrantsOnlyOnSuccess(t *testing.T) {
	g := &countingGranter{}

	res, err := Observe("app://somnium?payment_success=true", g)
	require.NoError(t, err)
	assert.True(t, res.Granted)
	assert.Equal(t, 1, g.calls)

	// Reloading the cleaned address grants nothing.
	res, err = Observe(res.Cleaned, g)
	require.NoError(t, err)
	assert.False(t, res.Granted)
	assert.Equal(t, 1, g.calls)

	g.err = errors.New("disk full")
	_, err = Observe("app://somnium?payment_success=true", g)
	assert.Error(t, err)
}

func TestCheckoutURL(t *testing.T) {
	raw, err := CheckoutURL(Yearly, "merchant@example.com", "http://127.0.0.1:8765/return?payment_success=true")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "www.paypal.com", u.Host)
	q := u.Query()
	assert.Equal(t, "_xclick", q.Get("cmd"))
	assert.Equal(t, "99.00", q.Get("amount"))
	assert.Equal(t, "USD", q.Get("currency_code"))
	assert.Equal(t, "Dream Lab Premium (Yearly)", q.Get("item_name"))
	assert.Equal(t, "http://127.0.0.1:8765/return?payment_success=true", q.Get("return"))

	_, err = CheckoutURL(Monthly, "", "")
	assert.ErrorIs(t, err, ErrNoBusiness)

	_, err = CheckoutURL(Plan("weekly"), "m@example.com", "")
	assert.Error(t, err)
}

func TestParsePlan(t *testing.T) {
	p, err := ParsePlan(" Monthly ")
	require.NoError(t, err)
	assert.Equal(t, Monthly, p)

	_, err = ParsePlan("lifetime")
	assert.Error(t, err)
	assert.Len(t, Offers(), 2)
}

func TestCallbackServerGrants(t *testing.T) {
	g := &countingGranter{}
	s := NewCallbackServer("127.0.0.1:0", g, zerolog.Nop())
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/return")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 0, g.calls)

	resp, err = http.Get(srv.URL + "/return?payment_success=true")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, g.calls)

	select {
	case <-s.Granted():
	default:
		t.Fatal("expected Granted to be closed")
	}

	// A second hit must not panic on the closed channel.
	resp, err = http.Get(srv.URL + "/return?payment_success=true")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCallbackReturnURL(t *testing.T) {
	s := NewCallbackServer("127.0.0.1:8765", &countingGranter{}, zerolog.Nop())
	granted, _, err := ParseReturnURL(s.ReturnURL())
	require.NoError(t, err)
	assert.True(t, granted)
}

func TestServeReportsBoundReturnURL(t *testing.T) {
	g := &countingGranter{}
	s := NewCallbackServer("127.0.0.1:0", g, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- s.Serve(ctx) }()

	var returnURL string
	require.Eventually(t, func() bool {
		returnURL = s.ReturnURL()
		return !strings.Contains(returnURL, ":0/")
	}, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get(returnURL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, g.calls)

	cancel()
	require.NoError(t, <-served)
}
