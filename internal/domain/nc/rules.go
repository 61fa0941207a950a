package nc

import (
	"regexp"
	"time"
)

// effectivenessLeadMonths is the gap between closure and the follow-up
// effectiveness review (middle of the 3-6 month audit window).
const effectivenessLeadMonths = 4

const dayFormat = "2006-01-02"

// EffectivenessCheckDate derives the review date from a closure date:
// closure plus four calendar months, normalized the way time.AddDate
// normalizes month overflow (Oct 31 + 4 months lands on Mar 2/3).
func EffectivenessCheckDate(closureDate string) (string, error) {
	day, err := ParseDay(closureDate)
	if err != nil {
		return "", err
	}
	return day.AddDate(0, effectivenessLeadMonths, 0).Format(dayFormat), nil
}

// ParseDay reads an ISO-8601 calendar date, tolerating a trailing time part.
func ParseDay(value string) (time.Time, error) {
	if len(value) > len(dayFormat) {
		value = value[:len(dayFormat)]
	}
	return time.Parse(dayFormat, value)
}

// DaysBetween is the whole-day distance from a to b (negative when b < a).
// Both arguments are ISO date strings; an unparsable value yields ok=false.
func DaysBetween(a, b string) (int, bool) {
	from, err := ParseDay(a)
	if err != nil {
		return 0, false
	}
	to, err := ParseDay(b)
	if err != nil {
		return 0, false
	}
	return int(to.Sub(from) / (24 * time.Hour)), true
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether the address looks deliverable enough to
// attempt a notification. Same loose shape check the notifier gates on.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
