package gt

import "time"

// Cycle is a recurring reset boundary. Both methods work in the location of
// the instant they are given, which is host local time in production.
//
// Last(t) is the most recent boundary <= t and Next(t) the first boundary
// strictly after Last(t). At a boundary instant b, Last(b) == b and Next(b)
// is one full cycle later.
type Cycle interface {
	Last(now time.Time) time.Time
	Next(now time.Time) time.Time
}

// WeeklyCycle resets every week on Weekday at Hour:00.
type WeeklyCycle struct {
	Weekday time.Weekday
	Hour    int
}

func (c WeeklyCycle) Last(now time.Time) time.Time {
	back := (int(now.Weekday()) - int(c.Weekday) + 7) % 7
	b := time.Date(now.Year(), now.Month(), now.Day()-back, c.Hour, 0, 0, 0, now.Location())
	if b.After(now) {
		b = b.AddDate(0, 0, -7)
	}
	return b
}

func (c WeeklyCycle) Next(now time.Time) time.Time {
	return c.Last(now).AddDate(0, 0, 7)
}

// MonthlyCycle resets every month on Day at Hour:00. Day must exist in
// every month (1..28).
type MonthlyCycle struct {
	Day  int
	Hour int
}

func (c MonthlyCycle) Last(now time.Time) time.Time {
	return LastMonthlyReset(now, c.Day, c.Hour)
}

func (c MonthlyCycle) Next(now time.Time) time.Time {
	return NextMonthlyReset(now, c.Day, c.Hour)
}

var (
	// WeeklyBossCycle resets Monday 04:00.
	WeeklyBossCycle = WeeklyCycle{Weekday: time.Monday, Hour: 4}
	// AbyssCycle resets on the 16th at 05:00.
	AbyssCycle = MonthlyCycle{Day: 16, Hour: 5}
	// TheaterCycle resets on the 1st at 05:00.
	TheaterCycle = MonthlyCycle{Day: 1, Hour: 5}
)

// LastMonday returns the most recent Monday 04:00 at or before now.
func LastMonday(now time.Time) time.Time {
	return WeeklyBossCycle.Last(now)
}

// NextWeeklyReset returns LastMonday(now) plus seven calendar days.
func NextWeeklyReset(now time.Time) time.Time {
	return WeeklyBossCycle.Next(now)
}

// NextMonthlyReset returns the first day@hour:00 strictly after now.
// time.Date normalises month 13 into January of the following year.
func NextMonthlyReset(now time.Time, day, hour int) time.Time {
	b := time.Date(now.Year(), now.Month(), day, hour, 0, 0, 0, now.Location())
	if !now.Before(b) {
		b = time.Date(now.Year(), now.Month()+1, day, hour, 0, 0, 0, now.Location())
	}
	return b
}

// LastMonthlyReset returns the most recent day@hour:00 at or before now.
// Month 0 normalises into December of the previous year.
func LastMonthlyReset(now time.Time, day, hour int) time.Time {
	b := time.Date(now.Year(), now.Month(), day, hour, 0, 0, 0, now.Location())
	if now.Before(b) {
		b = time.Date(now.Year(), now.Month()-1, day, hour, 0, 0, 0, now.Location())
	}
	return b
}

// TimeUntil returns how long until the cycle's next boundary.
func TimeUntil(c Cycle, now time.Time) time.Duration {
	return c.Next(now).Sub(now)
}

// ResetImminentWindow is how close a boundary must be to count as imminent.
const ResetImminentWindow = 24 * time.Hour

// ResetImminent reports whether the next boundary is at most 24h away.
func ResetImminent(c Cycle, now time.Time) bool {
	return TimeUntil(c, now) <= ResetImminentWindow
}
