package gt

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
)

// WeeklyBossLimit is the number of discounted weekly boss runs.
const WeeklyBossLimit = 3

// CycleProgress is a tracker's persisted state. Flag trackers use 0 and 1.
type CycleProgress struct {
	Progress  int
	LastReset time.Time
}

type cycleRecord struct {
	Completed json.RawMessage `json:"completed"`
	LastReset int64           `json:"lastReset"`
}

// CycleTracker holds progress that clears whenever its cycle passes a
// boundary. A counter tracker counts up to a limit; a flag tracker holds a
// single completed bit and persists it as a boolean.
type CycleTracker struct {
	name     string
	key      string
	cycle    Cycle
	limit    int
	flag     bool
	category Category
	imminent string

	store  Store
	alerts *Aggregator
	clock  Clock
	logger Logger
	loc    *Localizer
	source string

	state CycleProgress
}

// NewWeeklyBossTracker tracks the weekly boss counter (Monday 04:00).
func NewWeeklyBossTracker(store Store, alerts *Aggregator, clock Clock, logger Logger, loc *Localizer, source string) *CycleTracker {
	return &CycleTracker{
		name: "weekly_boss", key: KeyWeeklyBoss, cycle: WeeklyBossCycle,
		limit: WeeklyBossLimit, category: CategoryWeekly, imminent: msgWeeklyImminent,
		store: store, alerts: alerts, clock: clock, logger: logger, loc: loc, source: source,
	}
}

// NewAbyssTracker tracks the Spiral Abyss flag (16th, 05:00).
func NewAbyssTracker(store Store, alerts *Aggregator, clock Clock, logger Logger, loc *Localizer, source string) *CycleTracker {
	return &CycleTracker{
		name: "abyss", key: KeyAbyss, cycle: AbyssCycle,
		limit: 1, flag: true, category: CategoryAbyss, imminent: msgAbyssImminent,
		store: store, alerts: alerts, clock: clock, logger: logger, loc: loc, source: source,
	}
}

// NewTheaterTracker tracks the Imaginarium Theater flag (1st, 05:00).
func NewTheaterTracker(store Store, alerts *Aggregator, clock Clock, logger Logger, loc *Localizer, source string) *CycleTracker {
	return &CycleTracker{
		name: "theater", key: KeyTheater, cycle: TheaterCycle,
		limit: 1, flag: true, category: CategoryTheater, imminent: msgTheaterImminent,
		store: store, alerts: alerts, clock: clock, logger: logger, loc: loc, source: source,
	}
}

func (t *CycleTracker) Name() string                      { return t.name }
func (t *CycleTracker) Cycle() Cycle                      { return t.cycle }
func (t *CycleTracker) Limit() int                        { return t.limit }
func (t *CycleTracker) State() CycleProgress              { return t.state }
func (t *CycleTracker) Progress() int                     { return t.state.Progress }
func (t *CycleTracker) Completed() bool                   { return t.state.Progress >= t.limit }
func (t *CycleTracker) NextReset(now time.Time) time.Time { return t.cycle.Next(now) }

// ResetImminent reports whether the next boundary is at most 24h away.
func (t *CycleTracker) ResetImminent(now time.Time) bool {
	return ResetImminent(t.cycle, now)
}

// Load restores persisted progress. A record from before the current
// boundary is reset to zero and the reset persisted. A missing record
// starts at zero without writing.
func (t *CycleTracker) Load() error {
	now := t.clock.Now()
	boundary := t.cycle.Last(now)
	t.state = CycleProgress{LastReset: boundary}

	data, ok, err := t.store.Get(t.key)
	if err != nil {
		return fmt.Errorf("reading %s: %w", t.name, err)
	}
	if !ok {
		return nil
	}

	progress, lastReset, err := t.decode(data)
	if err != nil {
		t.logger.Warn("discarding malformed cycle record", "tracker", t.name, "error", err)
		return nil
	}

	if lastReset.Before(boundary) {
		t.logger.Info("cycle reset", "tracker", t.name, "boundary", boundary)
		return t.save(now)
	}
	t.state = CycleProgress{Progress: progress, LastReset: lastReset}
	return nil
}

// Refresh resets progress when a boundary has passed since the last write
// and keeps the reset-imminent notification current.
func (t *CycleTracker) Refresh() error {
	now := t.clock.Now()
	if boundary := t.cycle.Last(now); t.state.LastReset.Before(boundary) {
		t.logger.Info("cycle reset", "tracker", t.name, "boundary", boundary)
		t.state.Progress = 0
		if err := t.save(now); err != nil {
			return err
		}
	}
	return t.syncAlert(now)
}

// Advance counts one completion, capped at the limit.
func (t *CycleTracker) Advance() error {
	if t.flag {
		return fmt.Errorf("%s advance: %w", t.name, ErrUnsupported)
	}
	if err := t.Refresh(); err != nil {
		return err
	}
	if t.state.Progress >= t.limit {
		return nil
	}
	t.state.Progress++
	return t.commit()
}

// Toggle flips the completed flag.
func (t *CycleTracker) Toggle() error {
	if !t.flag {
		return fmt.Errorf("%s toggle: %w", t.name, ErrUnsupported)
	}
	if err := t.Refresh(); err != nil {
		return err
	}
	t.state.Progress = 1 - t.state.Progress
	return t.commit()
}

// Reset clears progress for the current cycle.
func (t *CycleTracker) Reset() error {
	if err := t.Refresh(); err != nil {
		return err
	}
	t.state.Progress = 0
	return t.commit()
}

func (t *CycleTracker) commit() error {
	now := t.clock.Now()
	if err := t.save(now); err != nil {
		return err
	}
	return t.syncAlert(now)
}

func (t *CycleTracker) syncAlert(now time.Time) error {
	if !t.ResetImminent(now) || t.Completed() {
		return t.alerts.ClearIfPresent(t.source, t.category)
	}

	var message string
	if t.flag {
		message = t.loc.text(t.imminent)
	} else {
		message = t.loc.text(t.imminent, t.state.Progress)
	}
	return t.alerts.Ensure(t.source, t.category, SeverityWarning, message)
}

// save persists the progress stamped with the boundary current at now.
func (t *CycleTracker) save(now time.Time) error {
	t.state.LastReset = t.cycle.Last(now)

	var completed []byte
	if t.flag {
		completed = []byte(strconv.FormatBool(t.state.Progress > 0))
	} else {
		completed = []byte(strconv.Itoa(t.state.Progress))
	}
	data, err := json.Marshal(cycleRecord{
		Completed: completed,
		LastReset: t.state.LastReset.UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("encoding %s: %w", t.name, err)
	}
	if err := t.store.Set(t.key, data); err != nil {
		return fmt.Errorf("saving %s: %w", t.name, err)
	}
	return nil
}

// decode accepts either a boolean or a number for completed so a record
// written by one kind of tracker still loads in the other.
func (t *CycleTracker) decode(data []byte) (int, time.Time, error) {
	var rec cycleRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return 0, time.Time{}, err
	}
	if rec.LastReset == 0 {
		return 0, time.Time{}, fmt.Errorf("missing lastReset")
	}

	raw := bytes.TrimSpace(rec.Completed)
	var progress int
	switch string(raw) {
	case "true":
		progress = t.limit
	case "false", "", "null":
		progress = 0
	default:
		n, err := strconv.Atoi(string(raw))
		if err != nil {
			return 0, time.Time{}, fmt.Errorf("completed: %w", err)
		}
		progress = n
	}
	if t.flag && progress > 0 {
		progress = 1
	}
	return max(0, min(t.limit, progress)), time.UnixMilli(rec.LastReset), nil
}
