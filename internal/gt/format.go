package gt

import (
	"strconv"
	"time"
)

// FormatDuration renders d as its coarsest non-zero units: days, hours and
// minutes; hours, minutes and seconds; minutes and seconds; or seconds.
// Units after the leading one are zero-padded. d <= 0 renders the
// completion token.
func (l *Localizer) FormatDuration(d time.Duration) string {
	if d <= 0 {
		return l.text(msgDurationComplete)
	}

	total := int64(d / time.Second)
	days := total / 86400
	hours := total % 86400 / 3600
	minutes := total % 3600 / 60
	seconds := total % 60

	switch {
	case days > 0:
		return l.text(msgDurationDays, num(days), pad(hours), pad(minutes))
	case hours > 0:
		return l.text(msgDurationHours, num(hours), pad(minutes), pad(seconds))
	case minutes > 0:
		return l.text(msgDurationMinutes, num(minutes), pad(seconds))
	default:
		return l.text(msgDurationSeconds, num(seconds))
	}
}

// FormatDuration formats d in the default locale.
func FormatDuration(d time.Duration) string {
	return NewLocalizer(DefaultLocale).FormatDuration(d)
}

func num(n int64) string { return strconv.FormatInt(n, 10) }

func pad(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
