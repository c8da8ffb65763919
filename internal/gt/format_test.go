package gt_test

import (
	"testing"
	"time"

	"gt-go/internal/gt"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"zero is complete", 0, "완료!"},
		{"negative is complete", -time.Second, "완료!"},
		{"seconds only", 5 * time.Second, "5초"},
		{"minutes and seconds", 65 * time.Second, "1분 05초"},
		{"hours minutes seconds", time.Hour + time.Minute + time.Second, "1시간 01분 01초"},
		{"days hours minutes", 25*time.Hour + time.Minute + time.Second, "1일 01시간 01분"},
		{"two digit units", 12*time.Hour + 34*time.Minute + 56*time.Second, "12시간 34분 56초"},
		{"sub-second rounds down", 1500 * time.Millisecond, "1초"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gt.FormatDuration(tt.d); got != tt.want {
				t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}

func TestLocalizer_English(t *testing.T) {
	loc := gt.NewLocalizer("en")

	if got := loc.FormatDuration(65 * time.Second); got != "1m 05s" {
		t.Errorf("FormatDuration() = %q, want %q", got, "1m 05s")
	}
	if got := loc.FormatDuration(0); got != "Complete!" {
		t.Errorf("FormatDuration(0) = %q, want %q", got, "Complete!")
	}
}

func TestNewLocalizer_Fallback(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ko", "ko"},
		{" EN ", "en"},
		{"fr", gt.DefaultLocale},
		{"", gt.DefaultLocale},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := gt.NewLocalizer(tt.in).Locale(); got != tt.want {
				t.Errorf("NewLocalizer(%q).Locale() = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
