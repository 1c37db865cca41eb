package options

import (
	"testing"
	"time"

	"tableflip.dev/somnium/pkg/dream"
)

func TestSinceFilter(t *testing.T) {
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	at := func(days int) *dream.Dream {
		d := dream.New("x", now.AddDate(0, 0, -days))
		return d
	}
	dreams := []*dream.Dream{at(0), at(6), at(7), at(8), at(40)}

	o := &SinceOptions{Since: "1w"}
	got, err := o.Filter(dreams, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 dreams within a week, got %d", len(got))
	}

	all, err := (&SinceOptions{}).Filter(dreams, now)
	if err != nil || len(all) != len(dreams) {
		t.Fatalf("unset window should keep everything, got %d (%v)", len(all), err)
	}

	if _, err := (&SinceOptions{Since: "soon"}).Filter(dreams, now); err == nil {
		t.Fatal("expected error for a malformed window")
	}
}

func TestFilterValidate(t *testing.T) {
	if err := (&FilterOptions{Favorites: true, Collection: "a"}).Validate(); err == nil {
		t.Fatal("expected favorites and collection to conflict")
	}
	if err := (&FilterOptions{Favorites: true}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
