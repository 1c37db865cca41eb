package dream

import (
	"encoding/json"
	"fmt"
	"time"
)

// ParseTime accepts RFC3339 timestamps (with or without fractional seconds)
// and plain dates.
func ParseTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(layoutISO, v, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("dream: parse time %q: %w", v, err)
	}
	return t, nil
}

const layoutISO = "2006-01-02"

// Timestamp is a time that marshals as an ISO string.
type Timestamp struct {
	time.Time
}

// SameDay reports whether both times fall on the same local calendar day.
func (t Timestamp) SameDay(then time.Time) bool {
	a, b := t.Local(), then.Local()
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(FormatTime(t.Time))
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	var err error
	t.Time, err = ParseTime(raw)
	return err
}

func (t Timestamp) String() string {
	return t.UTC().Format(time.RFC3339)
}

// FormatTime renders v the way dreams are persisted.
func FormatTime(v time.Time) string {
	return v.UTC().Format(time.RFC3339Nano)
}
