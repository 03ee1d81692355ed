package daycycle

import (
	"fmt"
	"time"
)

// Clock supplies the current instant. Tests substitute a fixed or stepping clock.
type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

var SystemClock Clock = ClockFunc(time.Now)

// Cutoff is the local wall-clock time after which an open day is
// closed automatically.
type Cutoff struct {
	Hour   int
	Minute int
}

var DefaultCutoff = Cutoff{Hour: 23, Minute: 58}

func ParseCutoff(s string) (Cutoff, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return Cutoff{}, fmt.Errorf("daycycle: parse cutoff %q: %w", s, err)
	}
	return Cutoff{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// Reached reports whether t is at or past the cutoff on its own calendar day.
func (c Cutoff) Reached(t time.Time) bool {
	if t.Hour() != c.Hour {
		return t.Hour() > c.Hour
	}
	return t.Minute() >= c.Minute
}

func (c Cutoff) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}
