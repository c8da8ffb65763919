package gt_test

import (
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"gt-go/internal/gt"
	"gt-go/internal/testutil"
)

const source = "원신"

type fixture struct {
	clock   *testutil.StubClock
	store   gt.Store
	display *testutil.RecordingDisplay
	haptics *testutil.RecordingHaptics
	loc     *gt.Localizer
	alerts  *gt.Aggregator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := testutil.FixedClock()
	store := testutil.NewMemoryStore()
	loc := gt.NewLocalizer("ko")
	return &fixture{
		clock:   clock,
		store:   store,
		display: testutil.NewRecordingDisplay(gt.PermissionGranted),
		haptics: testutil.NewRecordingHaptics(),
		loc:     loc,
		alerts:  gt.NewAggregator(store, clock, gt.NewNopLogger(), loc),
	}
}

// resin persists {amount, lastUpdate} and returns an engine loaded from it.
func (f *fixture) resin(t *testing.T, amount int, lastUpdate time.Time) *gt.ResinEngine {
	t.Helper()
	f.put(t, gt.KeyResin, map[string]any{"resin": amount, "lastUpdate": lastUpdate.UnixMilli()})
	e := gt.NewResinEngine(f.store, f.alerts, f.display, f.haptics, f.clock, gt.NewNopLogger(), f.loc, source)
	if err := e.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return e
}

func (f *fixture) put(t *testing.T, key string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := f.store.Set(key, data); err != nil {
		t.Fatalf("Set(%s) error = %v", key, err)
	}
}

func (f *fixture) get(t *testing.T, key string, v any) {
	t.Helper()
	data, ok, err := f.store.Get(key)
	if err != nil || !ok {
		t.Fatalf("Get(%s) = _, %v, %v", key, ok, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("unmarshal %s: %v", key, err)
	}
}
