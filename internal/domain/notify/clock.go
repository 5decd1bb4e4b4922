package notify

import "time"

// Clock abstracts wall time so templated payloads are testable.
type Clock interface {
	Now() time.Time
}

type utcClock struct{}

func (utcClock) Now() time.Time { return time.Now().UTC() }

// UTC returns the production clock.
func UTC() Clock { return utcClock{} }

const timestampLayout = "2006-01-02T15:04:05"

// FormatTimestamp renders a payload timestamp as ISO-8601 local date-time
// without an offset. The process default timezone is UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
