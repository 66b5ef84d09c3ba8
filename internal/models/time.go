package models

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// LocalTimeLayout is how the backend writes zone-less timestamps.
const LocalTimeLayout = "2006-01-02T15:04:05"

var localTimeLayouts = []string{
	LocalTimeLayout,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// LocalTime is a wall-clock timestamp without a zone.
type LocalTime struct {
	time.Time
}

func NewLocalTime(t time.Time) LocalTime {
	return LocalTime{Time: t}
}

// ParseLocalTime accepts any of the formats the backend has been seen to emit.
func ParseLocalTime(s string) (LocalTime, error) {
	s = strings.TrimSpace(s)
	for _, layout := range localTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return LocalTime{Time: t}, nil
		}
	}
	return LocalTime{}, fmt.Errorf("unrecognised timestamp %q", s)
}

func (t LocalTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(LocalTimeLayout) + `"`), nil
}

func (t *LocalTime) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) || len(b) < 2 {
		*t = LocalTime{}
		return nil
	}
	s := string(bytes.Trim(b, `"`))
	if s == "" {
		*t = LocalTime{}
		return nil
	}
	parsed, err := ParseLocalTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Input formats the value for an <input type="datetime-local" step="1">,
// seconds included so an unchanged field posts back the same instant.
func (t LocalTime) Input() string {
	if t.IsZero() {
		return ""
	}
	return t.Format(LocalTimeLayout)
}
