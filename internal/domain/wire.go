package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// ID is a server-assigned identifier. The backend emits either JSON numbers or
// strings; both decode to the same textual form.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Percentage is a route weight. Numeric strings are accepted on decode and
// anything unparsable counts as zero.
type Percentage float64

func (p *Percentage) UnmarshalJSON(data []byte) error {
	*p = Percentage(parseLooseNumber(data))
	return nil
}

// Timestamp decodes the handful of layouts the backend uses for dates.
// Unknown or empty values decode to the zero time.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		ts.Time = time.Time{}
		return nil
	}
	ts.Time = ParseTimestamp(s)
	return nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.Time.Format(time.RFC3339Nano))
}

// ParseTimestamp tries each known layout and returns the zero time if none match.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// FormatPercentage renders a weight without a trailing ".0" for whole numbers.
func FormatPercentage(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// parseLooseNumber mirrors the backend's tolerance: numbers, numeric strings,
// booleans and null all map onto a float, with garbage becoming 0.
func parseLooseNumber(data []byte) float64 {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return 0
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0
		}
		return f
	case 't':
		return 1
	case 'f':
		return 0
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return 0
	}
	return f
}

// parseLooseBool accepts JSON booleans, "true"/"false" strings and numbers,
// with anything else counting as false.
func parseLooseBool(data []byte) bool {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return false
		}
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b
		}
	}
	return parseLooseNumber(data) != 0
}

// UnmarshalJSON decodes a route, tolerating a done flag sent as a string or number.
func (r *Route) UnmarshalJSON(data []byte) error {
	type plain Route
	aux := struct {
		*plain
		Done json.RawMessage `json:"done"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Done = parseLooseBool(aux.Done)
	return nil
}

func (r *PlanRoute) UnmarshalJSON(data []byte) error {
	type plain PlanRoute
	aux := struct {
		*plain
		Done json.RawMessage `json:"done"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Done = parseLooseBool(aux.Done)
	return nil
}
