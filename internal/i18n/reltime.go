// Package i18n holds the locale-dependent strings: relative "time ago"
// labels and the message catalog for toasts and prompts.
package i18n

import (
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Locale selects the language of formatted strings.
type Locale string

const (
	Arabic  Locale = "ar"
	English Locale = "en"
)

// DefaultLocale is used when a locale string is empty or unknown.
const DefaultLocale = Arabic

// ParseLocale maps "ar", "ar-SA", "EN_us" and the like onto a Locale.
func ParseLocale(s string) Locale {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(s, "ar"):
		return Arabic
	case strings.HasPrefix(s, "en"):
		return English
	}
	return DefaultLocale
}

// arabicMagnitudes follows Arabic number agreement: singular for one, dual
// for two, plural for three to ten, singular again from eleven.
var arabicMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Minute, Format: "الآن", DivBy: time.Second},
	{D: 2 * time.Minute, Format: "%s دقيقة", DivBy: 1},
	{D: 3 * time.Minute, Format: "%s دقيقتين", DivBy: 1},
	{D: 11 * time.Minute, Format: "%s %d دقائق", DivBy: time.Minute},
	{D: time.Hour, Format: "%s %d دقيقة", DivBy: time.Minute},
	{D: 2 * time.Hour, Format: "%s ساعة", DivBy: 1},
	{D: 3 * time.Hour, Format: "%s ساعتين", DivBy: 1},
	{D: 11 * time.Hour, Format: "%s %d ساعات", DivBy: time.Hour},
	{D: humanize.Day, Format: "%s %d ساعة", DivBy: time.Hour},
	{D: 2 * humanize.Day, Format: "%s يوم", DivBy: 1},
	{D: 3 * humanize.Day, Format: "%s يومين", DivBy: 1},
	{D: humanize.Week, Format: "%s %d أيام", DivBy: humanize.Day},
	{D: 2 * humanize.Week, Format: "%s أسبوع", DivBy: 1},
	{D: 3 * humanize.Week, Format: "%s أسبوعين", DivBy: 1},
	{D: humanize.Month, Format: "%s %d أسابيع", DivBy: humanize.Week},
	{D: 2 * humanize.Month, Format: "%s شهر", DivBy: 1},
	{D: 3 * humanize.Month, Format: "%s شهرين", DivBy: 1},
	{D: 11 * humanize.Month, Format: "%s %d أشهر", DivBy: humanize.Month},
	{D: humanize.Year, Format: "%s %d شهرًا", DivBy: humanize.Month},
	{D: 2 * humanize.Year, Format: "%s سنة", DivBy: 1},
	{D: 3 * humanize.Year, Format: "%s سنتين", DivBy: 1},
	{D: 11 * humanize.Year, Format: "%s %d سنوات", DivBy: humanize.Year},
	{D: math.MaxInt64, Format: "%s %d سنة", DivBy: humanize.Year},
}

var englishMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Minute, Format: "just now", DivBy: time.Second},
	{D: 2 * time.Minute, Format: "1 minute %s", DivBy: 1},
	{D: time.Hour, Format: "%d minutes %s", DivBy: time.Minute},
	{D: 2 * time.Hour, Format: "1 hour %s", DivBy: 1},
	{D: humanize.Day, Format: "%d hours %s", DivBy: time.Hour},
	{D: 2 * humanize.Day, Format: "1 day %s", DivBy: 1},
	{D: humanize.Week, Format: "%d days %s", DivBy: humanize.Day},
	{D: 2 * humanize.Week, Format: "1 week %s", DivBy: 1},
	{D: humanize.Month, Format: "%d weeks %s", DivBy: humanize.Week},
	{D: 2 * humanize.Month, Format: "1 month %s", DivBy: 1},
	{D: humanize.Year, Format: "%d months %s", DivBy: humanize.Month},
	{D: 2 * humanize.Year, Format: "1 year %s", DivBy: 1},
	{D: math.MaxInt64, Format: "%d years %s", DivBy: humanize.Year},
}

// RelTime formats t relative to now, e.g. "منذ 5 دقائق" or "5 minutes ago".
// Timestamps in the future are treated as now. A zero t yields "".
func RelTime(t, now time.Time, loc Locale) string {
	if t.IsZero() {
		return ""
	}
	if t.After(now) {
		t = now
	}
	if loc == English {
		return humanize.CustomRelTime(t, now, "ago", "from now", englishMagnitudes)
	}
	return humanize.CustomRelTime(t, now, "منذ", "بعد", arabicMagnitudes)
}

// Ago is RelTime against the wall clock.
func Ago(t time.Time, loc Locale) string {
	return RelTime(t, time.Now(), loc)
}
