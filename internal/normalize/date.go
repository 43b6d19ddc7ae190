package normalize

import (
	"fmt"
	"strings"
	"time"
)

// DateParseError reports a string no accepted layout could parse.
type DateParseError struct {
	Raw string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("cannot parse date %q: no accepted format matches", e.Raw)
}

// DefaultDateLayouts is the accepted date formats in priority order.
// Ambiguous numeric forms such as "03/04/2024" resolve to the first
// matching layout; slashed dates read day-first, dashed dates
// month-first with a day-first fallback. This ordering is a deliberate
// tie-break, not a guess.
var DefaultDateLayouts = []string{
	"2006-01-02",      // ISO
	"02.01.2006",      // German
	"02/01/2006",      // European
	"01-02-2006",      // US dashed
	"2006/01/02",
	"January 2, 2006",
	"2 January 2006",
	"02-01-2006",
}

// DateNormalizer parses date strings against an ordered layout list.
type DateNormalizer struct {
	layouts []string
}

// NewDateNormalizer builds a normalizer with the given layout priority.
// With no layouts it uses DefaultDateLayouts.
func NewDateNormalizer(layouts ...string) *DateNormalizer {
	if len(layouts) == 0 {
		layouts = DefaultDateLayouts
	}
	return &DateNormalizer{layouts: layouts}
}

// Parse returns the first successful parse in layout priority order.
func (n *DateNormalizer) Parse(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range n.layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, &DateParseError{Raw: raw}
}
