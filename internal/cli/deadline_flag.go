package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

var _ pflag.Value = (*deadlineValue)(nil)

// deadlineValue is a pflag.Value for plan deadlines. It accepts a date
// (the end of that day), a local date-time, RFC 3339, or an offset from now
// such as +30d, +6w or +3m.
type deadlineValue struct {
	t   *time.Time
	now func() time.Time
	raw string
}

func newDeadlineValue(t *time.Time, now func() time.Time) *deadlineValue {
	return &deadlineValue{t: t, now: now}
}

func (v *deadlineValue) String() string { return v.raw }

func (v *deadlineValue) Type() string { return "deadline" }

func (v *deadlineValue) Set(s string) error {
	t, err := parseDeadline(s, v.now())
	if err != nil {
		return err
	}
	*v.t = t
	v.raw = s
	return nil
}

func parseDeadline(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if strings.HasPrefix(s, "+") && len(s) > 2 {
		n, err := strconv.Atoi(s[1 : len(s)-1])
		if err == nil && n >= 0 {
			switch s[len(s)-1] {
			case 'd':
				return now.AddDate(0, 0, n), nil
			case 'w':
				return now.AddDate(0, 0, 7*n), nil
			case 'm':
				return now.AddDate(0, n, 0), nil
			}
		}
	}
	if d, err := time.ParseInLocation("2006-01-02", s, now.Location()); err == nil {
		return d.Add(24*time.Hour - time.Millisecond), nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04", s, now.Location()); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid deadline %q (expected YYYY-MM-DD, YYYY-MM-DDTHH:MM, RFC 3339 or +30d/+6w/+3m)", s)
}
