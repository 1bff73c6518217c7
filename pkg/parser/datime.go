package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// datimePattern matches an embedded date tuple such as datime(2024, 1, 15, 10, 0, 0, 0).
// The capture group holds the comma-separated components.
var datimePattern = regexp.MustCompile(`datime\((.*?)\)`)

// ErrTooFewDates is returned when a line carries fewer than two datime tuples.
var ErrTooFewDates = errors.New("expected two datime tuples")

// FindDatimes returns every datime tuple in line, in order of appearance.
func FindDatimes(line string) []string {
	return datimePattern.FindAllString(line, -1)
}

// stripDatimes removes every datime tuple from line.
func stripDatimes(line string) string {
	return datimePattern.ReplaceAllString(line, " ")
}

// ParseDatime parses a single datime tuple into a time in loc.
//
// The trailing component is dropped; the remaining three to seven integers are
// year, month, day, hour, minute, second and microsecond. Components are range
// checked rather than normalised, so datime(2024, 2, 30, 0) is an error.
func ParseDatime(tuple string, loc *time.Location) (time.Time, error) {
	m := datimePattern.FindStringSubmatch(tuple)
	if m == nil {
		return time.Time{}, fmt.Errorf("not a datime tuple: %q", tuple)
	}

	var comps []int
	for _, tok := range strings.Split(m[1], ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			return time.Time{}, fmt.Errorf("datime component %q is not an integer", tok)
		}
		comps = append(comps, n)
	}

	if len(comps) < 4 || len(comps) > 8 {
		return time.Time{}, fmt.Errorf("datime tuple has %d components, want 4 to 8", len(comps))
	}
	comps = comps[:len(comps)-1]

	// year, month, day, hour, minute, second, microsecond
	var c [7]int
	copy(c[:], comps)

	if err := checkDateRange(c); err != nil {
		return time.Time{}, fmt.Errorf("datime %s: %w", strings.TrimSpace(tuple), err)
	}

	if loc == nil {
		loc = time.UTC
	}
	return time.Date(c[0], time.Month(c[1]), c[2], c[3], c[4], c[5], c[6]*1000, loc), nil
}

func checkDateRange(c [7]int) error {
	switch {
	case c[0] < 1 || c[0] > 9999:
		return fmt.Errorf("year %d out of range", c[0])
	case c[1] < 1 || c[1] > 12:
		return fmt.Errorf("month %d out of range", c[1])
	case c[2] < 1 || c[2] > daysIn(c[0], time.Month(c[1])):
		return fmt.Errorf("day %d out of range", c[2])
	case c[3] < 0 || c[3] > 23:
		return fmt.Errorf("hour %d out of range", c[3])
	case c[4] < 0 || c[4] > 59:
		return fmt.Errorf("minute %d out of range", c[4])
	case c[5] < 0 || c[5] > 59:
		return fmt.Errorf("second %d out of range", c[5])
	case c[6] < 0 || c[6] > 999999:
		return fmt.Errorf("microsecond %d out of range", c[6])
	}
	return nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
