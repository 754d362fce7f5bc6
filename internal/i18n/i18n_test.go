package i18n

import (
	"testing"
	"time"
)

func TestRelTime(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		ago  time.Duration
		loc  Locale
		want string
	}{
		{"en seconds", 30 * time.Second, English, "just now"},
		{"en one minute", 90 * time.Second, English, "1 minute ago"},
		{"en minutes", 5 * time.Minute, English, "5 minutes ago"},
		{"en hours", 3 * time.Hour, English, "3 hours ago"},
		{"en one day", 30 * time.Hour, English, "1 day ago"},
		{"en days", 4 * 24 * time.Hour, English, "4 days ago"},
		{"ar now", 10 * time.Second, Arabic, "الآن"},
		{"ar one minute", 70 * time.Second, Arabic, "منذ دقيقة"},
		{"ar two minutes", 2 * time.Minute, Arabic, "منذ دقيقتين"},
		{"ar minutes", 5 * time.Minute, Arabic, "منذ 5 دقائق"},
		{"ar eleven minutes", 11 * time.Minute, Arabic, "منذ 11 دقيقة"},
		{"ar two hours", 2 * time.Hour, Arabic, "منذ ساعتين"},
		{"ar hours", 4 * time.Hour, Arabic, "منذ 4 ساعات"},
		{"ar many hours", 15 * time.Hour, Arabic, "منذ 15 ساعة"},
		{"ar days", 3 * 24 * time.Hour, Arabic, "منذ 3 أيام"},
		{"ar two weeks", 15 * 24 * time.Hour, Arabic, "منذ أسبوعين"},
		{"ar weeks", 22 * 24 * time.Hour, Arabic, "منذ 3 أسابيع"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RelTime(now.Add(-tt.ago), now, tt.loc)
			if got != tt.want {
				t.Errorf("RelTime(-%v, %s) = %q, want %q", tt.ago, tt.loc, got, tt.want)
			}
		})
	}
}

func TestRelTimeFutureClampsToNow(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	if got := RelTime(now.Add(time.Hour), now, English); got != "just now" {
		t.Errorf("future timestamp = %q, want %q", got, "just now")
	}
}

func TestRelTimeZero(t *testing.T) {
	if got := RelTime(time.Time{}, time.Now(), Arabic); got != "" {
		t.Errorf("zero time = %q, want empty", got)
	}
}

func TestParseLocale(t *testing.T) {
	tests := map[string]Locale{
		"ar":    Arabic,
		"ar-SA": Arabic,
		"EN_us": English,
		"":      DefaultLocale,
		"fr":    DefaultLocale,
	}
	for in, want := range tests {
		if got := ParseLocale(in); got != want {
			t.Errorf("ParseLocale(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCatalogComplete(t *testing.T) {
	for key := range catalog[English] {
		if _, ok := catalog[Arabic][key]; !ok {
			t.Errorf("arabic catalog missing %q", key)
		}
	}
	if got := T(Locale("xx"), EmptyText); got != catalog[English][EmptyText] {
		t.Errorf("unknown locale fallback = %q", got)
	}
	if got := T(English, Key("nope")); got != "nope" {
		t.Errorf("unknown key fallback = %q", got)
	}
}
