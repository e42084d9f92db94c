package eventlog

import (
	"fmt"
	"strings"

	"github.com/ricki-pierce/integrating4Fears/internal/errors"
)

// ColumnMap holds the 0-indexed log columns. Duration is -1 when absent.
type ColumnMap struct {
	Subject   int
	Task      int
	Trial     int
	Timestamp int
	Event     int
	Duration  int
}

// MapColumns finds the log columns by case-insensitive substring match on the
// header text. A column containing both "subject" and "id" beats a bare "subject",
// likewise "task" with "name"; for the timestamp a "timestamp" header wins over an
// exact "time", which wins over any header containing "time".
func MapColumns(header []string) (ColumnMap, error) {
	m := ColumnMap{Subject: -1, Task: -1, Trial: -1, Timestamp: -1, Event: -1, Duration: -1}
	lower := make([]string, len(header))
	for i, h := range header {
		lower[i] = strings.ToLower(strings.TrimSpace(h))
	}

	m.Subject = pick(lower, func(h string) bool { return strings.Contains(h, "subject") && strings.Contains(h, "id") },
		func(h string) bool { return strings.Contains(h, "subject") })
	m.Task = pick(lower, func(h string) bool { return strings.Contains(h, "task") && strings.Contains(h, "name") },
		func(h string) bool { return strings.Contains(h, "task") })
	m.Trial = pick(lower, func(h string) bool { return strings.Contains(h, "trial") })
	m.Timestamp = pick(lower, func(h string) bool { return strings.Contains(h, "timestamp") },
		func(h string) bool { return h == "time" },
		func(h string) bool { return strings.Contains(h, "time") && !strings.Contains(h, "duration") })
	m.Event = pick(lower, func(h string) bool { return strings.Contains(h, "event") })
	m.Duration = pick(lower, func(h string) bool { return strings.Contains(h, "duration") })

	var missing []string
	for _, c := range []struct {
		name string
		idx  int
	}{
		{"subject", m.Subject},
		{"task", m.Task},
		{"trial", m.Trial},
		{"timestamp", m.Timestamp},
		{"event", m.Event},
	} {
		if c.idx < 0 {
			missing = append(missing, c.name)
		}
	}
	if len(missing) > 0 {
		return m, errors.New(fmt.Errorf("log is missing required columns %v (available: %q)", missing, header)).
			Component("eventlog").
			Category(errors.CategoryValidation).
			Context("missing_columns", missing).
			Build()
	}
	return m, nil
}

// pick returns the first column satisfying the earliest predicate that matches any
// column, or -1.
func pick(headers []string, preds ...func(string) bool) int {
	for _, pred := range preds {
		for i, h := range headers {
			if h != "" && pred(h) {
				return i
			}
		}
	}
	return -1
}
