package clock

import "time"

// DateLayout is the wire format for reservation dates. Fixed-width so that
// lexicographic comparison matches chronological order.
const DateLayout = "2006-01-02"

// TimeLayout is the wire format for wall-clock reservation times.
const TimeLayout = "15:04"

// Clock supplies the current calendar day. Injected wherever "today" matters
// so temporal checks stay deterministic in tests.
type Clock interface {
	Today() string
}

type systemClock struct{}

// System returns a Clock backed by time.Now in UTC.
func System() Clock {
	return systemClock{}
}

func (systemClock) Today() string {
	return time.Now().UTC().Format(DateLayout)
}

// Fixed returns a Clock pinned to the given day.
func Fixed(day string) Clock {
	return fixedClock(day)
}

type fixedClock string

func (c fixedClock) Today() string {
	return string(c)
}
