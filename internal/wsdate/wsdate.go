// Package wsdate converts between native times and the upstream date-string conventions.
package wsdate

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// The WSDOT APIs emit dates as /Date(1695193200000-0700)/ in responses and
// accept calendar dates (2006-01-02) in request paths.

const paramLayout = "2006-01-02"

var (
	wirePattern     = regexp.MustCompile(`^/Date\((-?\d+)([+-]\d{4})?\)/$`)
	calendarPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Parse interprets s as one of the upstream date conventions. The second
// return reports whether s matched either convention.
func Parse(s string) (time.Time, bool) {
	if m := wirePattern.FindStringSubmatch(s); m != nil {
		millis, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		t := time.UnixMilli(millis)
		if m[2] != "" {
			if loc, ok := offsetLocation(m[2]); ok {
				t = t.In(loc)
			}
		} else {
			t = t.UTC()
		}
		return t, true
	}
	if calendarPattern.MatchString(s) {
		t, err := time.Parse(paramLayout, s)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	return time.Time{}, false
}

// FormatParam renders t in the calendar form used for outgoing URL parameters.
func FormatParam(t time.Time) string {
	return t.Format(paramLayout)
}

// FormatWire renders t in the proprietary response encoding.
func FormatWire(t time.Time) string {
	return fmt.Sprintf("/Date(%d%s)/", t.UnixMilli(), t.Format("-0700"))
}

func offsetLocation(offset string) (*time.Location, bool) {
	sign := 1
	if offset[0] == '-' {
		sign = -1
	}
	hours, err := strconv.Atoi(offset[1:3])
	if err != nil {
		return nil, false
	}
	minutes, err := strconv.Atoi(offset[3:5])
	if err != nil {
		return nil, false
	}
	seconds := sign * (hours*3600 + minutes*60)
	return time.FixedZone(offset, seconds), true
}
