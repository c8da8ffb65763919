package gt

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys. Arguments that carry durations or padded numbers are
// pre-formatted strings so the printer's number localisation never
// regroups them.
const (
	msgDurationComplete = "duration.complete"
	msgDurationDays     = "duration.days"
	msgDurationHours    = "duration.hours"
	msgDurationMinutes  = "duration.minutes"
	msgDurationSeconds  = "duration.seconds"

	msgResinFull      = "resin.message.full"
	msgResinBand      = "resin.message.band"
	msgResinTitleFull = "resin.title.full"
	msgResinTitle190  = "resin.title.critical"
	msgResinTitle180  = "resin.title.caution"
	msgResinTitle160  = "resin.title.warning"
	msgResinBodyFull  = "resin.body.full"
	msgResinBodyETA   = "resin.body.eta"
	msgResinBodyLoss  = "resin.body.loss"

	msgWeeklyImminent  = "cycle.weekly.imminent"
	msgAbyssImminent   = "cycle.abyss.imminent"
	msgTheaterImminent = "cycle.theater.imminent"

	msgExpeditionDone    = "expedition.notification.done"
	msgExpeditionIdle    = "expedition.status.idle"
	msgExpeditionRunning = "expedition.status.running"
	msgExpeditionReady   = "expedition.status.complete"
)

var catalogs = map[string]map[string]string{
	"ko": {
		msgDurationComplete: "완료!",
		msgDurationDays:     "%s일 %s시간 %s분",
		msgDurationHours:    "%s시간 %s분 %s초",
		msgDurationMinutes:  "%s분 %s초",
		msgDurationSeconds:  "%s초",

		msgResinFull:      "레진이 가득 찼습니다!",
		msgResinBand:      "레진이 %d 이상입니다!",
		msgResinTitleFull: "🚨 레진 가득참!",
		msgResinTitle190:  "⚠️ 레진 임계점!",
		msgResinTitle180:  "⏰ 레진 주의!",
		msgResinTitle160:  "📢 레진 경고!",
		msgResinBodyFull:  "레진이 200에 도달했습니다. 즉시 소모하세요!",
		msgResinBodyETA:   "레진 %d/200. 약 %d분 후 가득참",
		msgResinBodyLoss:  "레진 %d/200. 손실 위험 구간입니다.",

		msgWeeklyImminent:  "주간 보스 초기화 임박 (%d/3 완료)",
		msgAbyssImminent:   "나선 비경 초기화 임박",
		msgTheaterImminent: "환상극 초기화 임박",

		msgExpeditionDone:    "탐사 %d개 완료!",
		msgExpeditionIdle:    "대기중",
		msgExpeditionRunning: "진행중",
		msgExpeditionReady:   "완료!",
	},
	"en": {
		msgDurationComplete: "Complete!",
		msgDurationDays:     "%sd %sh %sm",
		msgDurationHours:    "%sh %sm %ss",
		msgDurationMinutes:  "%sm %ss",
		msgDurationSeconds:  "%ss",

		msgResinFull:      "Resin is full!",
		msgResinBand:      "Resin is at %d or above!",
		msgResinTitleFull: "🚨 Resin full!",
		msgResinTitle190:  "⚠️ Resin critical!",
		msgResinTitle180:  "⏰ Resin caution!",
		msgResinTitle160:  "📢 Resin warning!",
		msgResinBodyFull:  "Resin has reached 200. Spend it now!",
		msgResinBodyETA:   "Resin %d/200. Full in about %d min",
		msgResinBodyLoss:  "Resin %d/200. Overflow risk.",

		msgWeeklyImminent:  "Weekly bosses reset soon (%d/3 done)",
		msgAbyssImminent:   "Spiral Abyss resets soon",
		msgTheaterImminent: "Imaginarium Theater resets soon",

		msgExpeditionDone:    "%d expedition(s) complete!",
		msgExpeditionIdle:    "Idle",
		msgExpeditionRunning: "Running",
		msgExpeditionReady:   "Complete!",
	},
}

// DefaultLocale is used when the configured locale is unknown.
const DefaultLocale = "ko"

func init() {
	for locale, messages := range catalogs {
		tag := language.MustParse(locale)
		keys := make([]string, 0, len(messages))
		for key := range messages {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			message.SetString(tag, key, messages[key])
		}
	}
}

// Locales returns the supported locale identifiers.
func Locales() []string {
	out := make([]string, 0, len(catalogs))
	for locale := range catalogs {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

// Localizer renders user-facing text in one locale.
type Localizer struct {
	locale  string
	printer *message.Printer
}

// NewLocalizer returns a Localizer for locale, falling back to
// DefaultLocale when the locale has no catalog.
func NewLocalizer(locale string) *Localizer {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if _, ok := catalogs[locale]; !ok {
		locale = DefaultLocale
	}
	return &Localizer{
		locale:  locale,
		printer: message.NewPrinter(language.MustParse(locale)),
	}
}

// Locale returns the resolved locale identifier.
func (l *Localizer) Locale() string { return l.locale }

func (l *Localizer) text(key string, args ...any) string {
	return l.printer.Sprintf(key, args...)
}
