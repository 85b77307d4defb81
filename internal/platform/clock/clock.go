package clock

import "time"

// Clock abstracts time to keep usecases deterministic in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Day truncates t to its UTC calendar day, the key used for daily records.
func Day(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
