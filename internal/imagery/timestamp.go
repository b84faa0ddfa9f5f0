// Package imagery discovers the freshest available full-disk image for a
// satellite and the instant it was captured. Capture times come from
// heterogeneous sources (filename patterns, HTTP headers, directory
// listings), all interpreted as UTC.
package imagery

import (
	"regexp"
	"strconv"
	"time"
)

// Providers encode capture times into filenames in a few recurring shapes:
//
//	.../full_disk_20250812-2310.jpg         date, dash, HHMM (seconds optional)
//	.../GOES18-20250812231045_full.jpg      one 14-digit run
//	.../2025/225/x-235959.jpg               year / day-of-year directories
var (
	dateDashTimeRe = regexp.MustCompile(`(\d{4})(\d{2})(\d{2})[-_](\d{2})(\d{2})(\d{2})?\.(?:jpe?g|png)`)
	compactRe      = regexp.MustCompile(`(?:^|[^0-9])(\d{4})(\d{2})(\d{2})(\d{2})(\d{2})(\d{2})(?:[^0-9]|$)`)
	yearDOYRe      = regexp.MustCompile(`/(\d{4})/(\d{3})/[^/]*-(\d{2})(\d{2})(\d{2})\.(?:jpe?g|png)`)
	listingTokenRe = regexp.MustCompile(`(\d{4})(\d{3})(\d{2})(\d{2})`)
)

// TimeFromURL extracts a UTC capture time from a URL or filename. Returns
// false when no supported pattern matches or the matched digits do not form a
// valid date.
func TimeFromURL(url string) (time.Time, bool) {
	if m := dateDashTimeRe.FindStringSubmatch(url); m != nil {
		sec := 0
		if m[6] != "" {
			sec = atoi(m[6])
		}
		return calendarDate(atoi(m[1]), atoi(m[2]), atoi(m[3]), atoi(m[4]), atoi(m[5]), sec)
	}

	if m := yearDOYRe.FindStringSubmatch(url); m != nil {
		return yearDOYDate(atoi(m[1]), atoi(m[2]), atoi(m[3]), atoi(m[4]), atoi(m[5]))
	}

	if m := compactRe.FindStringSubmatch(url); m != nil {
		return calendarDate(atoi(m[1]), atoi(m[2]), atoi(m[3]), atoi(m[4]), atoi(m[5]), atoi(m[6]))
	}

	return time.Time{}, false
}

// TimeFromListingToken decodes the 11-digit YYYYDDDHHMM token used by
// directory-listing filenames.
func TimeFromListingToken(token string) (time.Time, bool) {
	m := listingTokenRe.FindStringSubmatch(token)
	if m == nil {
		return time.Time{}, false
	}
	hour := atoi(m[3])
	min := atoi(m[4])
	if hour > 23 || min > 59 {
		return time.Time{}, false
	}
	t, ok := yearDOYDate(atoi(m[1]), atoi(m[2]), hour, min, 0)
	return t, ok
}

// calendarDate builds a UTC instant from calendar components, rejecting
// out-of-range values rather than letting time.Date normalize them.
func calendarDate(year, month, day, hour, min, sec int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	if hour > 23 || min > 59 || sec > 59 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, hour, min, sec, 0, time.UTC)
	// time.Date normalizes Feb 30 → Mar 2; a roll-over means the digits were
	// not a real date.
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

// yearDOYDate builds a UTC instant from a year and a 1-based day-of-year.
// Day 60 of a leap year lands on February 29.
func yearDOYDate(year, doy, hour, min, sec int) (time.Time, bool) {
	if doy < 1 || doy > daysInYear(year) {
		return time.Time{}, false
	}
	if hour > 23 || min > 59 || sec > 59 {
		return time.Time{}, false
	}
	jan1 := time.Date(year, time.January, 1, hour, min, sec, 0, time.UTC)
	return jan1.AddDate(0, 0, doy-1), true
}

func daysInYear(year int) int {
	if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
		return 366
	}
	return 365
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
