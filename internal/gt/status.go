package gt

import "time"

// ResinView is the derived resin state at one instant.
type ResinView struct {
	Amount     int
	Max        int
	TimeToNext time.Duration
	TimeToFull time.Duration
	FullAt     time.Time
}

// CycleView is the derived state of one cycle tracker.
type CycleView struct {
	Name          string
	Progress      int
	Limit         int
	Completed     bool
	NextReset     time.Time
	TimeToReset   time.Duration
	ResetImminent bool
}

// ExpeditionView is the derived state of one expedition slot.
type ExpeditionView struct {
	ID       int
	State    ExpeditionState
	Label    string
	TimeLeft time.Duration
	Duration time.Duration
}

// Status is a read-only snapshot for rendering. Nothing in it is
// persisted.
type Status struct {
	Now           time.Time
	Source        string
	Resin         ResinView
	WeeklyBoss    CycleView
	Abyss         CycleView
	Theater       CycleView
	Expeditions   []ExpeditionView
	Notifications []Notification
	Info          NotificationInfo
}

// Status derives the current view of every component.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	state := s.resin.State()
	toFull := s.resin.TimeToFull(now)

	st := Status{
		Now:    now,
		Source: s.source,
		Resin: ResinView{
			Amount:     state.Amount,
			Max:        ResinMax,
			TimeToNext: s.resin.TimeToNext(now),
			TimeToFull: toFull,
			FullAt:     now.Add(toFull),
		},
		WeeklyBoss:    cycleView(s.weekly, now),
		Abyss:         cycleView(s.abyss, now),
		Theater:       cycleView(s.theater, now),
		Notifications: s.alerts.List(),
		Info:          s.alerts.InfoFor(s.source),
	}
	for _, e := range s.expeditions.Slots() {
		es := e.Status(now)
		st.Expeditions = append(st.Expeditions, ExpeditionView{
			ID:       e.ID,
			State:    es.State,
			Label:    s.expeditions.StatusLabel(es.State),
			TimeLeft: es.TimeLeft,
			Duration: e.Duration,
		})
	}
	return st
}

func cycleView(t *CycleTracker, now time.Time) CycleView {
	return CycleView{
		Name:          t.Name(),
		Progress:      t.Progress(),
		Limit:         t.Limit(),
		Completed:     t.Completed(),
		NextReset:     t.NextReset(now),
		TimeToReset:   TimeUntil(t.Cycle(), now),
		ResetImminent: t.ResetImminent(now),
	}
}
