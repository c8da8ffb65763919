package testutil

import (
	"context"
	"sync"
	"time"

	"gt-go/internal/gt"
)

// ManualScheduler records scheduled callbacks and runs them only when
// Fire is called.
type ManualScheduler struct {
	mu       sync.Mutex
	jobs     map[int]func()
	next     int
	Interval time.Duration
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{jobs: make(map[int]func())}
}

func (s *ManualScheduler) Schedule(interval time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	s.jobs[id] = fn
	s.Interval = interval
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.jobs, id)
	}
}

// Fire runs every registered callback once, synchronously.
func (s *ManualScheduler) Fire() {
	s.mu.Lock()
	jobs := make([]func(), 0, len(s.jobs))
	for _, fn := range s.jobs {
		jobs = append(jobs, fn)
	}
	s.mu.Unlock()

	for _, fn := range jobs {
		fn()
	}
}

// Active returns the number of registered callbacks.
func (s *ManualScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Shown is one notification passed to RecordingDisplay.Show.
type Shown struct {
	Title string
	Body  string
	Opts  gt.DisplayOptions
}

// RecordingDisplay is a gt.Display that records what it would show.
type RecordingDisplay struct {
	mu         sync.Mutex
	permission gt.Permission
	shown      []Shown
}

func NewRecordingDisplay(p gt.Permission) *RecordingDisplay {
	return &RecordingDisplay{permission: p}
}

func (d *RecordingDisplay) Permission() gt.Permission {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.permission
}

func (d *RecordingDisplay) RequestPermission(context.Context) (gt.Permission, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.permission == gt.PermissionDefault {
		d.permission = gt.PermissionGranted
	}
	return d.permission, nil
}

func (d *RecordingDisplay) Show(title, body string, opts gt.DisplayOptions) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.permission != gt.PermissionGranted {
		return nil
	}
	d.shown = append(d.shown, Shown{Title: title, Body: body, Opts: opts})
	return nil
}

// Shown returns every notification displayed so far.
func (d *RecordingDisplay) Shown() []Shown {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Shown(nil), d.shown...)
}

// RecordingHaptics is a gt.Haptics that records vibration patterns.
type RecordingHaptics struct {
	mu       sync.Mutex
	patterns [][]time.Duration
}

func NewRecordingHaptics() *RecordingHaptics {
	return &RecordingHaptics{}
}

func (h *RecordingHaptics) Vibrate(pattern []time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.patterns = append(h.patterns, append([]time.Duration(nil), pattern...))
}

// Patterns returns every pattern requested so far.
func (h *RecordingHaptics) Patterns() [][]time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([][]time.Duration(nil), h.patterns...)
}
