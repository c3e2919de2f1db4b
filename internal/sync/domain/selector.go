package domain

import "time"

// TimeWindow bounds a fetch-by-time-window selector. A zero Until means "now".
type TimeWindow struct {
	Since time.Time
	Until time.Time
}

// Selector describes which items a sync should fetch. Exactly one capability
// is used per invocation: explicit IDs win over a time window; ContentFilter
// refines a window fetch for sources that support it. Not every source
// implements every capability; asking for an unsupported one yields
// ErrUnsupportedSelector.
type Selector struct {
	Window        *TimeWindow
	IDs           []string
	ContentFilter string // provider-specific, e.g. "has:attachment"
}

// WindowDays builds a window covering the last n days.
func WindowDays(n int) *TimeWindow {
	return &TimeWindow{Since: time.Now().AddDate(0, 0, -n)}
}

// DefaultSelector is used when a trigger request carries no explicit
// selection: the last 30 days.
func DefaultSelector() Selector {
	return Selector{Window: WindowDays(30)}
}
