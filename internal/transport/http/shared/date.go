package shared

import (
	"fmt"
	"time"
)

var dateFormats = []string{time.RFC3339, "2006-01-02"}

// ParseDate accepts RFC3339 or YYYY-MM-DD. An empty value parses to
// the zero time so optional query parameters can pass through.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	for _, format := range dateFormats {
		if parsed, err := time.Parse(format, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date %q, want RFC3339 or YYYY-MM-DD", value)
}
