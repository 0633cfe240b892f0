// ABOUTME: Lenient ISO-8601 timestamp type for backend payloads
// ABOUTME: Accepts offset and naive forms, renders RFC 3339 with nanoseconds

package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// naiveLayouts are tried when a timestamp carries no offset. Values are read as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Timestamp is a point in time decoded from the backend's ISO strings.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// ParseTimestamp parses an ISO-8601 string. The empty string yields the zero value.
func ParseTimestamp(s string) (Timestamp, error) {
	if s == "" {
		return Timestamp{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return Timestamp{Time: t}, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid timestamp %q", s)
}

// String renders the timestamp as RFC 3339, or "" when zero.
func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
