// ABOUTME: Timestamp parsing for user-entered dates.
// ABOUTME: Accepts the short forms the CLI documents plus RFC 3339.
package models

import (
	"fmt"
	"time"
)

var timeFormats = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTime parses s as RFC 3339, or as one of the short forms in loc.
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, f := range timeFormats {
		if t, err := time.ParseInLocation(f, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format: %q", s)
}
