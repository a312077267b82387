package parliament

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var businessNumberPattern = regexp.MustCompile(`^(\d{2})\.(\d{3,5})$`)

// ParseBusinessNumber validates the public "YY.NNNNN" form and returns it trimmed.
func ParseBusinessNumber(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrBusinessNumberRequired
	}
	if !businessNumberPattern.MatchString(trimmed) {
		return "", fmt.Errorf("%w: %q", ErrInvalidBusinessNumber, raw)
	}
	return trimmed, nil
}

// UpstreamID derives the integer id the upstream service uses for a business:
// "24.3927" becomes 20243927.
func UpstreamID(businessNumber string) (int64, error) {
	number, err := ParseBusinessNumber(businessNumber)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt("20"+strings.Replace(number, ".", "", 1), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidBusinessNumber, businessNumber)
	}
	return id, nil
}

// YearPrefix returns the two-digit year prefix ("25.") used to page the
// upstream business list for a calendar year.
func YearPrefix(year int) string {
	return fmt.Sprintf("%02d.", year%100)
}
