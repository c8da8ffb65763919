package gt

import (
	"fmt"
	"math"
	"time"

	json "github.com/goccy/go-json"
)

const (
	// ResinMax is the regeneration cap.
	ResinMax = 200

	// ResinInterval is the time to regenerate one unit.
	ResinInterval = 8 * time.Minute

	// ResinWarningThreshold is the lowest alert band. Dropping below it
	// clears the resin notification.
	ResinWarningThreshold = 160

	// ResinAlertThrottle is the minimum gap between platform alerts
	// (display and vibration).
	ResinAlertThrottle = 5 * time.Minute

	resinIcon = "/images/icons/genshin.png"
	resinTag  = "resin-alert"
)

// ResinThresholds are the alert bands in ascending order.
var ResinThresholds = []int{160, 180, 190, 200}

var (
	vibrateCaution  = []time.Duration{200 * time.Millisecond, 100 * time.Millisecond, 200 * time.Millisecond}
	vibrateCritical = []time.Duration{300 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond}
)

// ResinState is the persisted regeneration state. LastUpdate only moves
// by whole intervals during regeneration so partial progress carries over.
type ResinState struct {
	Amount     int
	LastUpdate time.Time
}

type resinRecord struct {
	Resin      int   `json:"resin"`
	LastUpdate int64 `json:"lastUpdate"`
}

// ResinEngine regenerates resin from elapsed wall-clock time and raises
// alerts when it climbs through a threshold band.
type ResinEngine struct {
	store   Store
	alerts  *Aggregator
	display Display
	haptics Haptics
	clock   Clock
	logger  Logger
	loc     *Localizer
	source  string

	state     ResinState
	lastAlert time.Time
}

func NewResinEngine(store Store, alerts *Aggregator, display Display, haptics Haptics, clock Clock, logger Logger, loc *Localizer, source string) *ResinEngine {
	return &ResinEngine{
		store:   store,
		alerts:  alerts,
		display: display,
		haptics: haptics,
		clock:   clock,
		logger:  logger,
		loc:     loc,
		source:  source,
	}
}

// State returns the current in-memory state.
func (e *ResinEngine) State() ResinState { return e.state }

// Load restores the persisted state. The first ever load starts full and
// persists that; a malformed record starts full without overwriting it.
func (e *ResinEngine) Load() error {
	now := e.clock.Now()

	data, ok, err := e.store.Get(KeyResin)
	if err != nil {
		return fmt.Errorf("reading resin: %w", err)
	}
	if !ok {
		e.state = ResinState{Amount: ResinMax, LastUpdate: now}
		return e.save()
	}

	var rec resinRecord
	if err := json.Unmarshal(data, &rec); err != nil || rec.LastUpdate == 0 {
		e.logger.Warn("discarding malformed resin record", "error", err)
		e.state = ResinState{Amount: ResinMax, LastUpdate: now}
		return nil
	}

	e.state = ResinState{
		Amount:     clampResin(rec.Resin),
		LastUpdate: time.UnixMilli(rec.LastUpdate),
	}
	return nil
}

// Tick applies regeneration for the time elapsed since LastUpdate. It is
// safe to call at any cadence: k ticks over a span produce the same amount
// as one tick over the whole span.
func (e *ResinEngine) Tick() error {
	now := e.clock.Now()
	elapsed := now.Sub(e.state.LastUpdate)

	if elapsed < 0 {
		e.logger.Warn("clock moved backwards, rebasing resin timer",
			"last_update", e.state.LastUpdate, "now", now)
		e.state.LastUpdate = now
		return e.save()
	}

	increments := int(elapsed / ResinInterval)
	if increments == 0 {
		return nil
	}

	prev := e.state.Amount
	e.state.Amount = min(ResinMax, prev+increments)
	e.state.LastUpdate = now.Add(-(elapsed % ResinInterval))

	if err := e.save(); err != nil {
		return err
	}
	return e.observe(prev, now)
}

// Set replaces the amount, clamped to [0, ResinMax]. The regeneration
// timer is left alone.
func (e *ResinEngine) Set(value int) error {
	prev := e.state.Amount
	e.state.Amount = clampResin(value)
	if err := e.save(); err != nil {
		return err
	}
	return e.observe(prev, e.clock.Now())
}

// Add adjusts the amount by delta, clamped to [0, ResinMax].
func (e *ResinEngine) Add(delta int) error {
	return e.Set(e.state.Amount + delta)
}

// ResetTimer restarts the regeneration timer at now, discarding partial
// progress, and optionally replaces the amount.
func (e *ResinEngine) ResetTimer(value *int) error {
	now := e.clock.Now()
	prev := e.state.Amount
	e.state.LastUpdate = now
	if value != nil {
		e.state.Amount = clampResin(*value)
	}
	if err := e.save(); err != nil {
		return err
	}
	return e.observe(prev, now)
}

// TimeToNext returns how long until the next unit, or 0 when full.
func (e *ResinEngine) TimeToNext(now time.Time) time.Duration {
	if e.state.Amount >= ResinMax {
		return 0
	}
	elapsed := now.Sub(e.state.LastUpdate)
	if elapsed < 0 {
		elapsed = 0
	}
	return ResinInterval - elapsed%ResinInterval
}

// TimeToFull returns how long until the cap is reached, or 0 when full.
func (e *ResinEngine) TimeToFull(now time.Time) time.Duration {
	if e.state.Amount >= ResinMax {
		return 0
	}
	return e.TimeToNext(now) + time.Duration(ResinMax-e.state.Amount-1)*ResinInterval
}

// observe reconciles the resin notification after the amount changed from
// prev. Upward threshold crossings always update the aggregator; the
// platform display and vibration are throttled.
func (e *ResinEngine) observe(prev int, now time.Time) error {
	cur := e.state.Amount
	if cur < ResinWarningThreshold {
		return e.alerts.ClearIfPresent(e.source, CategoryResin)
	}

	severity, message := resinAlert(e.loc, cur)
	if crossedThreshold(prev, cur) == 0 {
		// Keep a held alert in step with the band after a downward move.
		if _, ok := e.alerts.Find(e.source, CategoryResin); ok {
			return e.alerts.Ensure(e.source, CategoryResin, severity, message)
		}
		return nil
	}

	if err := e.alerts.Upsert(e.source, CategoryResin, severity, message); err != nil {
		return err
	}

	if !e.lastAlert.IsZero() && now.Sub(e.lastAlert) <= ResinAlertThrottle {
		e.logger.Debug("resin alert throttled", "resin", cur)
		return nil
	}
	e.lastAlert = now
	e.alert(cur, now)
	return nil
}

func (e *ResinEngine) alert(cur int, now time.Time) {
	if e.haptics != nil {
		switch {
		case cur >= 190:
			e.haptics.Vibrate(vibrateCritical)
		case cur >= 180:
			e.haptics.Vibrate(vibrateCaution)
		}
	}

	if e.display == nil || e.display.Permission() != PermissionGranted {
		return
	}
	title, body := e.displayText(cur, now)
	opts := DisplayOptions{
		Icon:               resinIcon,
		Tag:                resinTag,
		RequireInteraction: cur >= 190,
	}
	if err := e.display.Show(title, body, opts); err != nil {
		e.logger.Warn("showing resin alert", "error", err)
	}
}

func (e *ResinEngine) displayText(cur int, now time.Time) (title, body string) {
	minutes := int(math.Ceil(e.TimeToFull(now).Minutes()))
	switch {
	case cur >= 200:
		return e.loc.text(msgResinTitleFull), e.loc.text(msgResinBodyFull)
	case cur >= 190:
		return e.loc.text(msgResinTitle190), e.loc.text(msgResinBodyETA, cur, minutes)
	case cur >= 180:
		return e.loc.text(msgResinTitle180), e.loc.text(msgResinBodyETA, cur, minutes)
	default:
		return e.loc.text(msgResinTitle160), e.loc.text(msgResinBodyLoss, cur)
	}
}

func (e *ResinEngine) save() error {
	data, err := json.Marshal(resinRecord{
		Resin:      e.state.Amount,
		LastUpdate: e.state.LastUpdate.UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("encoding resin: %w", err)
	}
	if err := e.store.Set(KeyResin, data); err != nil {
		return fmt.Errorf("saving resin: %w", err)
	}
	return nil
}

// crossedThreshold returns the highest threshold t with prev < t <= cur,
// or 0 when none was crossed.
func crossedThreshold(prev, cur int) int {
	crossed := 0
	for _, t := range ResinThresholds {
		if prev < t && cur >= t {
			crossed = t
		}
	}
	return crossed
}

// resinAlert returns the severity and message for a resin amount at or
// above the warning threshold.
func resinAlert(loc *Localizer, resin int) (Severity, string) {
	switch {
	case resin >= 200:
		return SeverityDanger, loc.text(msgResinFull)
	case resin >= 190:
		return SeverityDanger, loc.text(msgResinBand, 190)
	case resin >= 180:
		return SeverityWarning, loc.text(msgResinBand, 180)
	default:
		return SeverityWarning, loc.text(msgResinBand, 160)
	}
}

func clampResin(v int) int {
	return max(0, min(ResinMax, v))
}
