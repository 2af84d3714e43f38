// Package timefmt parses Minecraft server log timestamps and renders
// durations in a human-readable single-unit form ("3 hours", "2 days").
package timefmt

import (
	"fmt"
	"strings"
	"time"
)

// LogTimeLayout is the timestamp layout used by the server's log lines,
// e.g. "01Feb2024 18:03:55".
const LogTimeLayout = "02Jan2006 15:04:05"

// ParseLogTime parses a timestamp in the server log's layout. The time is
// interpreted in the local timezone, matching the host the logs come from.
func ParseLogTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(LogTimeLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse log time %q: %w", s, err)
	}
	return t, nil
}

// ExtractLogTime pulls the timestamp out of a full log line of the form
//
//	[01Feb2024 18:03:55.123] [Server thread/INFO] ...
//
// The leading bracket block is cut at the first ']' and sub-second
// precision is dropped before parsing.
func ExtractLogTime(line string) (time.Time, error) {
	head, _, found := strings.Cut(line, "]")
	if !found {
		return time.Time{}, fmt.Errorf("no timestamp block in line %q", line)
	}
	head = strings.TrimPrefix(head, "[")
	if dot := strings.IndexByte(head, '.'); dot >= 0 {
		head = head[:dot]
	}
	return ParseLogTime(head)
}

type period struct {
	name    string
	seconds int64
}

// Largest first; Humanize reports only the most significant unit.
var periods = []period{
	{"year", 60 * 60 * 24 * 365},
	{"month", 60 * 60 * 24 * 30},
	{"week", 60 * 60 * 24 * 7},
	{"day", 60 * 60 * 24},
	{"hour", 60 * 60},
	{"minute", 60},
	{"second", 1},
}

// Humanize renders d using its most significant unit: "1 minute",
// "3 hours", "2 weeks". Durations under one second render as "0 seconds".
func Humanize(d time.Duration) string {
	seconds := int64(d.Seconds())
	for _, p := range periods {
		if seconds >= p.seconds {
			value := seconds / p.seconds
			unit := p.name
			if value > 1 {
				unit += "s"
			}
			return fmt.Sprintf("%d %s", value, unit)
		}
	}
	return "0 seconds"
}

// Since renders the elapsed time from t to now, e.g. "5 hours".
func Since(t, now time.Time) string {
	return Humanize(now.Sub(t))
}
