// Package duration converts practice time in seconds to the "{h}h:{mm}m"
// display form and back.
package duration

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const Zero = "0h:00m"

var ErrInvalidFormat = errors.New("invalid duration format")

var (
	canonicalRe = regexp.MustCompile(`^(\d+)h:(\d{1,2})m(?::(\d{1,2})s)?$`)
	localizedRe = regexp.MustCompile(`^(\d+)г\.\s*(\d{1,2})хв\.(?:\s*(\d{1,2})с\.)?$`)
)

func split(seconds int64) (h, m, s int64) {
	if seconds < 0 {
		seconds = 0
	}
	return seconds / 3600, seconds % 3600 / 60, seconds % 60
}

// Format renders seconds as "{h}h:{mm}m". Leftover seconds, when present, are
// kept as a ":{ss}s" suffix so Parse can restore the exact value.
func Format(seconds int64) string {
	h, m, s := split(seconds)
	if s == 0 {
		return fmt.Sprintf("%dh:%02dm", h, m)
	}
	return fmt.Sprintf("%dh:%02dm:%02ds", h, m, s)
}

// FormatPtr formats a possibly missing value.
func FormatPtr(seconds *int64) string {
	if seconds == nil {
		return Zero
	}
	return Format(*seconds)
}

// FormatLocalized renders the Ukrainian display variant "{h}г. {mm}хв.".
func FormatLocalized(seconds int64) string {
	h, m, s := split(seconds)
	if s == 0 {
		return fmt.Sprintf("%dг. %02dхв.", h, m)
	}
	return fmt.Sprintf("%dг. %02dхв. %02dс.", h, m, s)
}

// Parse accepts both the canonical and the localized form. Empty input is 0.
func Parse(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	parts := canonicalRe.FindStringSubmatch(s)
	if parts == nil {
		parts = localizedRe.FindStringSubmatch(s)
	}
	if parts == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}

	hours, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: hours out of range in %q", ErrInvalidFormat, s)
	}
	minutes, _ := strconv.ParseInt(parts[2], 10, 64)
	if minutes > 59 {
		return 0, fmt.Errorf("%w: minutes out of range in %q", ErrInvalidFormat, s)
	}
	var secs int64
	if parts[3] != "" {
		secs, _ = strconv.ParseInt(parts[3], 10, 64)
	}
	if secs > 59 {
		return 0, fmt.Errorf("%w: seconds out of range in %q", ErrInvalidFormat, s)
	}

	rest := minutes*60 + secs
	if hours > (math.MaxInt64-rest)/3600 {
		return 0, fmt.Errorf("%w: %q overflows", ErrInvalidFormat, s)
	}

	return hours*3600 + rest, nil
}
