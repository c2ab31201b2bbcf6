package corpus

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// TimeWindow is the closed year interval [Start, End].
type TimeWindow struct {
	Start int `yaml:"start" json:"start" toml:"start"`
	End   int `yaml:"end" json:"end" toml:"end"`
}

// NewTimeWindow returns the window [start, end] or an error when start > end.
func NewTimeWindow(start, end int) (TimeWindow, error) {
	w := TimeWindow{Start: start, End: end}
	if err := w.Validate(); err != nil {
		return TimeWindow{}, err
	}
	return w, nil
}

// Validate reports whether the window bounds are ordered.
func (w TimeWindow) Validate() error {
	if w.Start > w.End {
		return fmt.Errorf("time window %d-%d: start after end", w.Start, w.End)
	}
	return nil
}

// IsZero reports whether the window was never set.
func (w TimeWindow) IsZero() bool { return w.Start == 0 && w.End == 0 }

// Contains reports whether year lies inside the window, bounds included.
func (w TimeWindow) Contains(year int) bool {
	return year >= w.Start && year <= w.End
}

// Years is the number of calendar years covered.
func (w TimeWindow) Years() int { return w.End - w.Start + 1 }

func (w TimeWindow) String() string {
	return fmt.Sprintf("%d–%d", w.Start, w.End)
}

// Slug renders the window for file names, e.g. "1840-1859".
func (w TimeWindow) Slug() string {
	return fmt.Sprintf("%d-%d", w.Start, w.End)
}

// ErrNoDecades is returned when a window is shorter than ten years.
var ErrNoDecades = errors.New("time window shorter than one decade")

// Decades partitions the window into consecutive ten-year sub-windows
// starting at Start. A trailing remainder shorter than ten years is dropped.
func (w TimeWindow) Decades() []TimeWindow {
	var out []TimeWindow
	for start := w.Start; start+9 <= w.End; start += 10 {
		out = append(out, TimeWindow{Start: start, End: start + 9})
	}
	return out
}

// ParseTimeWindow parses "1840-1859", "1840–1859" or "1840:1859".
func ParseTimeWindow(s string) (TimeWindow, error) {
	s = strings.TrimSpace(s)
	sep := strings.IndexAny(s, "-–:")
	if sep <= 0 {
		return TimeWindow{}, fmt.Errorf("time window %q: want START-END", s)
	}
	_, size := utf8.DecodeRuneInString(s[sep:])
	start, err := strconv.Atoi(strings.TrimSpace(s[:sep]))
	if err != nil {
		return TimeWindow{}, fmt.Errorf("time window %q: start: %w", s, err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(s[sep+size:]))
	if err != nil {
		return TimeWindow{}, fmt.Errorf("time window %q: end: %w", s, err)
	}
	return NewTimeWindow(start, end)
}
