package gt

import (
	"fmt"
	"slices"
	"time"

	json "github.com/goccy/go-json"
)

// ExpeditionSlots is the number of fixed expedition slots.
const ExpeditionSlots = 5

// ExpeditionHours are the durations an expedition can run for.
var ExpeditionHours = []int{4, 8, 12, 20}

// Expedition is one slot. StartedAt and Duration are set together or not
// at all.
type Expedition struct {
	ID        int
	StartedAt *time.Time
	Duration  time.Duration
}

// ExpeditionState is derived from the slot and the current instant.
type ExpeditionState int

const (
	ExpeditionIdle ExpeditionState = iota
	ExpeditionRunning
	ExpeditionComplete
)

func (s ExpeditionState) String() string {
	switch s {
	case ExpeditionRunning:
		return "running"
	case ExpeditionComplete:
		return "complete"
	default:
		return "idle"
	}
}

// ExpeditionStatus is the derived status of a slot. TimeLeft is only
// non-zero while running.
type ExpeditionStatus struct {
	State    ExpeditionState
	TimeLeft time.Duration
}

// Status derives the slot's status at now.
func (e Expedition) Status(now time.Time) ExpeditionStatus {
	if e.StartedAt == nil {
		return ExpeditionStatus{State: ExpeditionIdle}
	}
	elapsed := now.Sub(*e.StartedAt)
	if elapsed < e.Duration {
		return ExpeditionStatus{State: ExpeditionRunning, TimeLeft: e.Duration - elapsed}
	}
	return ExpeditionStatus{State: ExpeditionComplete}
}

type expeditionRecord struct {
	ID          int    `json:"id"`
	StartTime   *int64 `json:"startTime"`
	Duration    *int64 `json:"duration"`
	IsCompleted bool   `json:"isCompleted"`
}

// ExpeditionTracker manages the five expedition slots and persists them as
// one array on every mutation.
type ExpeditionTracker struct {
	store  Store
	alerts *Aggregator
	clock  Clock
	logger Logger
	loc    *Localizer
	source string

	slots [ExpeditionSlots]Expedition
}

func NewExpeditionTracker(store Store, alerts *Aggregator, clock Clock, logger Logger, loc *Localizer, source string) *ExpeditionTracker {
	t := &ExpeditionTracker{
		store:  store,
		alerts: alerts,
		clock:  clock,
		logger: logger,
		loc:    loc,
		source: source,
	}
	t.clear()
	return t
}

func (t *ExpeditionTracker) clear() {
	for i := range t.slots {
		t.slots[i] = Expedition{ID: i + 1}
	}
}

// Slots returns a copy of every slot.
func (t *ExpeditionTracker) Slots() []Expedition {
	out := make([]Expedition, ExpeditionSlots)
	copy(out, t.slots[:])
	return out
}

// Load restores the persisted slots. Partially set slots are cleared and a
// malformed record leaves every slot idle.
func (t *ExpeditionTracker) Load() error {
	t.clear()

	data, ok, err := t.store.Get(KeyExpeditions)
	if err != nil {
		return fmt.Errorf("reading expeditions: %w", err)
	}
	if !ok {
		return nil
	}

	var records []expeditionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		t.logger.Warn("discarding malformed expeditions", "error", err)
		return nil
	}

	for i, r := range records {
		id := r.ID
		if id < 1 || id > ExpeditionSlots {
			id = i + 1
		}
		if id < 1 || id > ExpeditionSlots {
			continue
		}
		if r.StartTime == nil || r.Duration == nil || *r.Duration <= 0 {
			if r.StartTime != nil || r.Duration != nil {
				t.logger.Warn("clearing partial expedition", "slot", id)
			}
			continue
		}
		started := time.UnixMilli(*r.StartTime)
		t.slots[id-1] = Expedition{
			ID:        id,
			StartedAt: &started,
			Duration:  time.Duration(*r.Duration) * time.Millisecond,
		}
	}
	return nil
}

// Start begins an expedition in an idle slot. Starting an occupied slot is
// a no-op.
func (t *ExpeditionTracker) Start(slot, hours int) error {
	if slot < 1 || slot > ExpeditionSlots {
		return fmt.Errorf("slot %d: %w", slot, ErrInvalidSlot)
	}
	if !slices.Contains(ExpeditionHours, hours) {
		return fmt.Errorf("%d hours: %w", hours, ErrInvalidDuration)
	}
	if t.slots[slot-1].StartedAt != nil {
		t.logger.Debug("expedition slot occupied", "slot", slot)
		return nil
	}

	now := t.clock.Now()
	t.slots[slot-1] = Expedition{
		ID:        slot,
		StartedAt: &now,
		Duration:  time.Duration(hours) * time.Hour,
	}
	return t.commit()
}

// Complete clears a slot back to idle whatever its status.
func (t *ExpeditionTracker) Complete(slot int) error {
	if slot < 1 || slot > ExpeditionSlots {
		return fmt.Errorf("slot %d: %w", slot, ErrInvalidSlot)
	}
	t.slots[slot-1] = Expedition{ID: slot}
	return t.commit()
}

// Status derives the status of one slot at now.
func (t *ExpeditionTracker) Status(slot int, now time.Time) (ExpeditionStatus, error) {
	if slot < 1 || slot > ExpeditionSlots {
		return ExpeditionStatus{}, fmt.Errorf("slot %d: %w", slot, ErrInvalidSlot)
	}
	return t.slots[slot-1].Status(now), nil
}

// CompletedCount returns how many slots are complete at now.
func (t *ExpeditionTracker) CompletedCount(now time.Time) int {
	n := 0
	for _, e := range t.slots {
		if e.Status(now).State == ExpeditionComplete {
			n++
		}
	}
	return n
}

// Refresh keeps the expedition notification in step with the number of
// completed slots.
func (t *ExpeditionTracker) Refresh() error {
	n := t.CompletedCount(t.clock.Now())
	if n == 0 {
		return t.alerts.ClearIfPresent(t.source, CategoryExpedition)
	}
	return t.alerts.Ensure(t.source, CategoryExpedition, SeverityInfo, t.loc.text(msgExpeditionDone, n))
}

// StatusLabel renders a slot state in the tracker's locale.
func (t *ExpeditionTracker) StatusLabel(s ExpeditionState) string {
	switch s {
	case ExpeditionRunning:
		return t.loc.text(msgExpeditionRunning)
	case ExpeditionComplete:
		return t.loc.text(msgExpeditionReady)
	default:
		return t.loc.text(msgExpeditionIdle)
	}
}

func (t *ExpeditionTracker) commit() error {
	now := t.clock.Now()
	records := make([]expeditionRecord, 0, ExpeditionSlots)
	for _, e := range t.slots {
		r := expeditionRecord{ID: e.ID}
		if e.StartedAt != nil {
			start := e.StartedAt.UnixMilli()
			duration := e.Duration.Milliseconds()
			r.StartTime = &start
			r.Duration = &duration
			r.IsCompleted = e.Status(now).State == ExpeditionComplete
		}
		records = append(records, r)
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding expeditions: %w", err)
	}
	if err := t.store.Set(KeyExpeditions, data); err != nil {
		return fmt.Errorf("saving expeditions: %w", err)
	}
	return t.Refresh()
}
