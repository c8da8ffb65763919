package gt

import (
	"errors"
	"fmt"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

// TickInterval is the cadence of the periodic tick in watch mode.
const TickInterval = time.Second

// Service owns the store and every tracker. All reads and writes go
// through it; the mutex serialises CLI calls with the scheduler callback.
type Service struct {
	mu sync.Mutex

	store  Store
	clock  Clock
	logger Logger
	loc    *Localizer
	source string

	alerts      *Aggregator
	resin       *ResinEngine
	weekly      *CycleTracker
	abyss       *CycleTracker
	theater     *CycleTracker
	expeditions *ExpeditionTracker

	cancel func()
}

// NewService wires every component to the shared store. display and
// haptics may be nil when the platform offers neither.
func NewService(store Store, display Display, haptics Haptics, clock Clock, logger Logger, loc *Localizer, source string) *Service {
	alerts := NewAggregator(store, clock, logger, loc)
	return &Service{
		store:       store,
		clock:       clock,
		logger:      logger,
		loc:         loc,
		source:      source,
		alerts:      alerts,
		resin:       NewResinEngine(store, alerts, display, haptics, clock, logger, loc, source),
		weekly:      NewWeeklyBossTracker(store, alerts, clock, logger, loc, source),
		abyss:       NewAbyssTracker(store, alerts, clock, logger, loc, source),
		theater:     NewTheaterTracker(store, alerts, clock, logger, loc, source),
		expeditions: NewExpeditionTracker(store, alerts, clock, logger, loc, source),
	}
}

// Localizer returns the service's localizer for rendering.
func (s *Service) Localizer() *Localizer { return s.loc }

// Source returns the game name notifications are filed under.
func (s *Service) Source() string { return s.source }

// Load restores every component from the store, applies the regeneration
// owed since the last run and reconciles notifications with the result.
func (s *Service) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Service) load() error {
	if err := s.alerts.Load(); err != nil {
		return err
	}
	if err := s.resin.Load(); err != nil {
		return err
	}
	for _, t := range s.trackers() {
		if err := t.Load(); err != nil {
			return err
		}
	}
	if err := s.expeditions.Load(); err != nil {
		return err
	}
	if err := s.tick(); err != nil {
		return err
	}
	if err := s.alerts.SyncFromExternalState(s.source, s.resin.State().Amount); err != nil {
		return err
	}
	s.logger.Debug("service loaded", "resin", s.resin.State().Amount)
	return nil
}

// Tick advances regeneration and re-checks cycle boundaries and
// expedition completion.
func (s *Service) Tick() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick()
}

func (s *Service) tick() error {
	var errs []error
	if err := s.resin.Tick(); err != nil {
		errs = append(errs, err)
	}
	for _, t := range s.trackers() {
		if err := t.Refresh(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.expeditions.Refresh(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Start registers the periodic tick with sched. onTick, if set, runs after
// each tick with the resulting status, outside the service lock.
func (s *Service) Start(sched Scheduler, interval time.Duration, onTick func(Status, error)) {
	s.Stop()
	cancel := sched.Schedule(interval, func() {
		err := s.Tick()
		if err != nil {
			s.logger.Error("tick failed", "error", err)
		}
		if onTick != nil {
			onTick(s.Status(), err)
		}
	})

	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
}

// Stop unregisters the periodic tick. It is safe to call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Subscribe registers fn to run whenever the notification list changes.
// fn runs while the service is locked and must not call back into it.
func (s *Service) Subscribe(fn func()) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	unsubscribe := s.alerts.Subscribe(fn)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		unsubscribe()
	}
}

// SetResin replaces the resin amount.
func (s *Service) SetResin(value int) error {
	return s.mutate("set resin", func() error { return s.resin.Set(value) })
}

// AddResin adjusts resin by delta.
func (s *Service) AddResin(delta int) error {
	return s.mutate("add resin", func() error { return s.resin.Add(delta) })
}

// ResetResinTimer restarts the regeneration timer, optionally setting the
// amount.
func (s *Service) ResetResinTimer(value *int) error {
	return s.mutate("reset resin timer", func() error { return s.resin.ResetTimer(value) })
}

func (s *Service) AdvanceWeeklyBoss() error {
	return s.mutate("advance weekly boss", s.weekly.Advance)
}

func (s *Service) ResetWeeklyBoss() error {
	return s.mutate("reset weekly boss", s.weekly.Reset)
}

func (s *Service) ToggleAbyss() error {
	return s.mutate("toggle abyss", s.abyss.Toggle)
}

func (s *Service) ToggleTheater() error {
	return s.mutate("toggle theater", s.theater.Toggle)
}

func (s *Service) StartExpedition(slot, hours int) error {
	return s.mutate("start expedition", func() error { return s.expeditions.Start(slot, hours) })
}

func (s *Service) CompleteExpedition(slot int) error {
	return s.mutate("complete expedition", func() error { return s.expeditions.Complete(slot) })
}

// ResolveNotification dismisses the notification in category.
func (s *Service) ResolveNotification(category Category) error {
	return s.mutate("resolve notification", func() error { return s.alerts.Resolve(s.source, category) })
}

func (s *Service) mutate(op string, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.logger.Debug("state changed", "op", op)
	return nil
}

// Entries returns the raw stored value of every tracked key that exists.
func (s *Service) Entries() (map[string][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string][]byte, len(TrackedKeys))
	for _, key := range TrackedKeys {
		data, ok, err := s.store.Get(key)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", key, err)
		}
		if ok {
			out[key] = data
		}
	}
	return out, nil
}

// Restore writes externally supplied records into the store, reloads every
// component and reconciles the resin alert with the restored value.
// Unknown keys are ignored. A record that is not valid JSON is logged and
// skipped, leaving that key's current record in place. The components are
// reloaded even when a write fails, so memory never diverges from the store.
func (s *Service) Restore(entries map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	restored := 0
	for _, key := range TrackedKeys {
		data, ok := entries[key]
		if !ok {
			continue
		}
		if !json.Valid(data) {
			s.logger.Warn("skipping malformed record", "key", key, "size", len(data))
			continue
		}
		if err := s.store.Set(key, data); err != nil {
			errs = append(errs, fmt.Errorf("restoring %s: %w", key, err))
			continue
		}
		restored++
	}
	s.logger.Info("restored records", "count", restored)
	if err := s.load(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *Service) trackers() []*CycleTracker {
	return []*CycleTracker{s.weekly, s.abyss, s.theater}
}
