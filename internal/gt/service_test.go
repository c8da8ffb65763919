package gt_test

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"gt-go/internal/database"
	"gt-go/internal/gt"
	"gt-go/internal/testutil"
)

func (f *fixture) service(t *testing.T) *gt.Service {
	t.Helper()
	svc := gt.NewService(f.store, f.display, f.haptics, f.clock, gt.NewNopLogger(), f.loc, source)
	if err := svc.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return svc
}

func TestService_LoadEmptyStore(t *testing.T) {
	f := newFixture(t)
	svc := f.service(t)
	st := svc.Status()

	if st.Resin.Amount != gt.ResinMax || st.Resin.TimeToFull != 0 || !st.Resin.FullAt.Equal(f.clock.Now()) {
		t.Errorf("Resin = %+v, want full", st.Resin)
	}
	if len(st.Notifications) != 1 || st.Notifications[0].Message != "레진이 가득 찼습니다!" {
		t.Errorf("Notifications = %+v, want the full-resin alert", st.Notifications)
	}
	if st.Info != (gt.NotificationInfo{Count: 1, Highest: gt.SeverityDanger, HasAny: true}) {
		t.Errorf("Info = %+v", st.Info)
	}
	if !st.WeeklyBoss.NextReset.Equal(date(2024, 1, 22, 4, 0, 0)) || st.WeeklyBoss.Limit != gt.WeeklyBossLimit {
		t.Errorf("WeeklyBoss = %+v", st.WeeklyBoss)
	}
	if !st.Abyss.NextReset.Equal(date(2024, 2, 16, 5, 0, 0)) || !st.Theater.NextReset.Equal(date(2024, 2, 1, 5, 0, 0)) {
		t.Errorf("Abyss = %+v, Theater = %+v", st.Abyss, st.Theater)
	}
	if len(st.Expeditions) != gt.ExpeditionSlots {
		t.Fatalf("Expeditions = %d, want %d", len(st.Expeditions), gt.ExpeditionSlots)
	}
	for _, e := range st.Expeditions {
		if e.State != gt.ExpeditionIdle || e.Label != "대기중" {
			t.Errorf("expedition %d = %+v, want idle", e.ID, e)
		}
	}

	if _, ok, _ := f.store.Get(gt.KeyResin); !ok {
		t.Error("initial resin was not persisted")
	}
}

func TestService_LoadAppliesOfflineRegeneration(t *testing.T) {
	f := newFixture(t)
	f.put(t, gt.KeyResin, map[string]any{
		"resin":      100,
		"lastUpdate": f.clock.Now().Add(-10*gt.ResinInterval - time.Minute).UnixMilli(),
	})

	st := f.service(t).Status()

	if st.Resin.Amount != 110 {
		t.Errorf("Amount = %d, want 110", st.Resin.Amount)
	}
	if st.Resin.TimeToNext != 7*time.Minute {
		t.Errorf("TimeToNext = %v, want 7m", st.Resin.TimeToNext)
	}
	if len(st.Notifications) != 0 {
		t.Errorf("Notifications = %+v, want none", st.Notifications)
	}
}

func TestService_StartStop(t *testing.T) {
	f := newFixture(t)
	svc := f.service(t)
	if err := svc.SetResin(100); err != nil {
		t.Fatalf("SetResin() error = %v", err)
	}

	sched := testutil.NewManualScheduler()
	var ticks []gt.Status
	svc.Start(sched, gt.TickInterval, func(st gt.Status, err error) {
		if err != nil {
			t.Errorf("tick error = %v", err)
		}
		ticks = append(ticks, st)
	})

	if sched.Active() != 1 || sched.Interval != gt.TickInterval {
		t.Fatalf("scheduled %d jobs every %v", sched.Active(), sched.Interval)
	}

	f.clock.Advance(gt.ResinInterval)
	sched.Fire()
	if len(ticks) != 1 || ticks[0].Resin.Amount != 101 {
		t.Fatalf("ticks = %+v, want one tick at 101", ticks)
	}

	// Starting again replaces the previous registration.
	svc.Start(sched, gt.TickInterval, nil)
	if sched.Active() != 1 {
		t.Errorf("Active() after restart = %d, want 1", sched.Active())
	}

	svc.Stop()
	svc.Stop()
	if sched.Active() != 0 {
		t.Errorf("Active() after Stop = %d, want 0", sched.Active())
	}
}

func TestService_MutationErrors(t *testing.T) {
	f := newFixture(t)
	svc := f.service(t)

	tests := []struct {
		name string
		err  error
		op   string
		want error
	}{
		{"bad slot", svc.StartExpedition(0, 8), "start expedition", gt.ErrInvalidSlot},
		{"bad duration", svc.StartExpedition(1, 3), "start expedition", gt.ErrInvalidDuration},
		{"bad complete", svc.CompleteExpedition(6), "complete expedition", gt.ErrInvalidSlot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.want) {
				t.Errorf("error = %v, want %v", tt.err, tt.want)
			}
			if tt.err != nil && !strings.HasPrefix(tt.err.Error(), tt.op+": ") {
				t.Errorf("error = %q, want prefix %q", tt.err, tt.op)
			}
		})
	}
}

func TestService_Operations(t *testing.T) {
	f := newFixture(t)
	svc := f.service(t)

	steps := []struct {
		name string
		fn   func() error
	}{
		{"set resin", func() error { return svc.SetResin(40) }},
		{"add resin", func() error { return svc.AddResin(-10) }},
		{"reset timer", func() error { v := 55; return svc.ResetResinTimer(&v) }},
		{"advance boss", svc.AdvanceWeeklyBoss},
		{"advance boss again", svc.AdvanceWeeklyBoss},
		{"toggle abyss", svc.ToggleAbyss},
		{"toggle theater", svc.ToggleTheater},
		{"toggle theater back", svc.ToggleTheater},
		{"start expedition", func() error { return svc.StartExpedition(4, 20) }},
	}
	for _, s := range steps {
		if err := s.fn(); err != nil {
			t.Fatalf("%s: %v", s.name, err)
		}
	}

	st := svc.Status()
	if st.Resin.Amount != 55 || st.Resin.TimeToNext != gt.ResinInterval {
		t.Errorf("Resin = %+v", st.Resin)
	}
	if st.WeeklyBoss.Progress != 2 || st.WeeklyBoss.Completed {
		t.Errorf("WeeklyBoss = %+v", st.WeeklyBoss)
	}
	if !st.Abyss.Completed || st.Theater.Completed {
		t.Errorf("Abyss = %+v, Theater = %+v", st.Abyss, st.Theater)
	}
	if e := st.Expeditions[3]; e.State != gt.ExpeditionRunning || e.TimeLeft != 20*time.Hour || e.Label != "진행중" {
		t.Errorf("expedition 4 = %+v", e)
	}
	if len(st.Notifications) != 0 {
		t.Errorf("Notifications = %+v, want none below the threshold", st.Notifications)
	}

	// A fresh service over the same store sees the same state.
	again := gt.NewService(f.store, nil, nil, f.clock, gt.NewNopLogger(), f.loc, source)
	if err := again.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	st2 := again.Status()
	if st2.Resin.Amount != 55 || st2.WeeklyBoss.Progress != 2 || !st2.Abyss.Completed || st2.Expeditions[3].State != gt.ExpeditionRunning {
		t.Errorf("reloaded Status() = %+v", st2)
	}
}

func TestService_ResolveNotification(t *testing.T) {
	f := newFixture(t)
	svc := f.service(t)

	calls := 0
	cancel := svc.Subscribe(func() { calls++ })

	if err := svc.ResolveNotification(gt.CategoryResin); err != nil {
		t.Fatalf("ResolveNotification() error = %v", err)
	}
	if st := svc.Status(); st.Info.HasAny {
		t.Errorf("Info = %+v, want empty", st.Info)
	}
	if calls != 1 {
		t.Errorf("subscriber calls = %d, want 1", calls)
	}

	cancel()
	_ = svc.SetResin(100)
	_ = svc.SetResin(170)
	if calls != 1 {
		t.Errorf("cancelled subscriber calls = %d", calls)
	}
}

func TestService_EntriesRestore(t *testing.T) {
	src := newFixture(t)
	svc := src.service(t)
	_ = svc.SetResin(185)
	_ = svc.AdvanceWeeklyBoss()
	_ = svc.ToggleAbyss()
	_ = svc.ToggleTheater()
	_ = svc.ToggleTheater()
	_ = svc.StartExpedition(1, 4)

	entries, err := svc.Entries()
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	for _, key := range gt.TrackedKeys {
		if _, ok := entries[key]; !ok {
			t.Errorf("Entries() missing %s", key)
		}
	}
	entries["unrelated_key"] = []byte(`{}`)

	dst := newFixture(t)
	other := dst.service(t)
	if err := other.Restore(entries); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	st := other.Status()
	if st.Resin.Amount != 185 || st.WeeklyBoss.Progress != 1 || !st.Abyss.Completed {
		t.Errorf("restored Status() = %+v", st)
	}
	if st.Expeditions[0].State != gt.ExpeditionRunning {
		t.Errorf("restored expedition = %+v", st.Expeditions[0])
	}
	if n := st.Notifications; len(n) != 1 || n[0].Message != "레진이 180 이상입니다!" {
		t.Errorf("restored Notifications = %+v", st.Notifications)
	}
	if _, found, _ := dst.store.Get("unrelated_key"); found {
		t.Error("unknown key was restored")
	}
}

func TestService_RestoreSkipsMalformedRecords(t *testing.T) {
	f := newFixture(t)
	store, err := database.NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	f.store = store
	f.alerts = gt.NewAggregator(store, f.clock, gt.NewNopLogger(), f.loc)
	svc := f.service(t)
	if err := svc.SetResin(50); err != nil {
		t.Fatal(err)
	}
	if err := svc.AdvanceWeeklyBoss(); err != nil {
		t.Fatal(err)
	}

	resin := fmt.Sprintf(`{"resin":170,"lastUpdate":%d}`, f.clock.Now().UnixMilli())
	err = svc.Restore(map[string][]byte{
		gt.KeyResin:      []byte(resin),
		gt.KeyWeeklyBoss: []byte("garbage"),
	})
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	st := svc.Status()
	if st.Resin.Amount != 170 {
		t.Errorf("Resin = %d, want 170", st.Resin.Amount)
	}
	if st.WeeklyBoss.Progress != 1 {
		t.Errorf("WeeklyBoss.Progress = %d, want the previous record kept", st.WeeklyBoss.Progress)
	}

	// A later mutation must not write pre-restore state back.
	if err := svc.AddResin(0); err != nil {
		t.Fatal(err)
	}
	reopened := gt.NewService(store, f.display, f.haptics, f.clock, gt.NewNopLogger(), f.loc, source)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := reopened.Status().Resin.Amount; got != 170 {
		t.Errorf("stored resin = %d, want 170", got)
	}
}

type failingStore struct {
	gt.Store
	failKey string
}

func (s *failingStore) Set(key string, value []byte) error {
	if key == s.failKey {
		return errors.New("disk full")
	}
	return s.Store.Set(key, value)
}

func TestService_RestoreReloadsAfterWriteFailure(t *testing.T) {
	f := newFixture(t)
	store := &failingStore{Store: f.store}
	f.store = store
	f.alerts = gt.NewAggregator(store, f.clock, gt.NewNopLogger(), f.loc)
	svc := f.service(t)
	if err := svc.SetResin(50); err != nil {
		t.Fatal(err)
	}

	store.failKey = gt.KeyWeeklyBoss
	resin := fmt.Sprintf(`{"resin":170,"lastUpdate":%d}`, f.clock.Now().UnixMilli())
	err := svc.Restore(map[string][]byte{
		gt.KeyResin:      []byte(resin),
		gt.KeyWeeklyBoss: []byte(`{"count":2}`),
	})
	if err == nil || !strings.Contains(err.Error(), gt.KeyWeeklyBoss) {
		t.Fatalf("Restore() error = %v, want failure naming %s", err, gt.KeyWeeklyBoss)
	}
	if got := svc.Status().Resin.Amount; got != 170 {
		t.Errorf("in-memory resin = %d, want 170 after partial restore", got)
	}
}

func TestService_Concurrent(t *testing.T) {
	f := newFixture(t)
	svc := f.service(t)
	_ = svc.SetResin(0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			if err := svc.AddResin(1); err != nil {
				t.Errorf("AddResin() error = %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			_ = svc.Status()
		}()
		go func() {
			defer wg.Done()
			if err := svc.Tick(); err != nil {
				t.Errorf("Tick() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if got := svc.Status().Resin.Amount; got != 50 {
		t.Errorf("Amount = %d, want 50", got)
	}
}
