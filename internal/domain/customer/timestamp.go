package customer

import (
	"encoding/json"
	"strings"
	"time"
)

// Layouts accepted for created_at. Backends running without time zone
// support send naive timestamps, which are read as local time.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// UnmarshalJSON decodes a customer as the backend sends it. created_at is
// informational, so a value in an unknown format is dropped instead of
// failing the whole record.
func (c *Customer) UnmarshalJSON(data []byte) error {
	type wire Customer
	aux := struct {
		*wire
		CreatedAt json.RawMessage `json:"created_at"`
	}{wire: (*wire)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	c.CreatedAt = time.Time{}
	var raw string
	if len(aux.CreatedAt) > 0 && json.Unmarshal(aux.CreatedAt, &raw) == nil {
		if t, ok := parseTimestamp(raw); ok {
			c.CreatedAt = t
		}
	}
	return nil
}
