package gt_test

import (
	"errors"
	"testing"
	"time"

	"gt-go/internal/gt"
)

func TestAggregator_UpsertReplaces(t *testing.T) {
	f := newFixture(t)

	if err := f.alerts.Upsert(source, gt.CategoryExpedition, gt.SeverityInfo, "탐사 1개 완료!"); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	f.clock.Advance(time.Minute)
	if err := f.alerts.Upsert(source, gt.CategoryExpedition, gt.SeverityInfo, "탐사 2개 완료!"); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	list := f.alerts.List()
	if len(list) != 1 {
		t.Fatalf("List() = %d entries, want 1", len(list))
	}
	if list[0].Message != "탐사 2개 완료!" || !list[0].CreatedAt.Equal(f.clock.Now()) {
		t.Errorf("List()[0] = %+v", list[0])
	}
	if list[0].Sticky {
		t.Error("expedition notification should not be sticky")
	}
}

func TestAggregator_EnsureKeepsCreatedAt(t *testing.T) {
	f := newFixture(t)
	created := f.clock.Now()
	_ = f.alerts.Upsert(source, gt.CategoryWeekly, gt.SeverityWarning, "주간 보스 초기화 임박 (1/3 완료)")

	writes := 0
	f.alerts.Subscribe(func() { writes++ })

	f.clock.Advance(time.Hour)
	if err := f.alerts.Ensure(source, gt.CategoryWeekly, gt.SeverityWarning, "주간 보스 초기화 임박 (1/3 완료)"); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	n, _ := f.alerts.Find(source, gt.CategoryWeekly)
	if !n.CreatedAt.Equal(created) || writes != 0 {
		t.Errorf("unchanged Ensure rewrote the entry: CreatedAt %v, writes %d", n.CreatedAt, writes)
	}

	if err := f.alerts.Ensure(source, gt.CategoryWeekly, gt.SeverityWarning, "주간 보스 초기화 임박 (2/3 완료)"); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	n, _ = f.alerts.Find(source, gt.CategoryWeekly)
	if !n.CreatedAt.Equal(f.clock.Now()) || writes != 1 {
		t.Errorf("changed Ensure did not upsert: CreatedAt %v, writes %d", n.CreatedAt, writes)
	}
}

func TestAggregator_InfoFor(t *testing.T) {
	tests := []struct {
		name    string
		entries []gt.Notification
		want    gt.NotificationInfo
	}{
		{
			name: "empty",
			want: gt.NotificationInfo{},
		},
		{
			name: "warning outranks info",
			entries: []gt.Notification{
				{Source: source, Category: gt.CategoryExpedition, Severity: gt.SeverityInfo},
				{Source: source, Category: gt.CategoryWeekly, Severity: gt.SeverityWarning},
			},
			want: gt.NotificationInfo{Count: 2, Highest: gt.SeverityWarning, HasAny: true},
		},
		{
			name: "danger outranks everything",
			entries: []gt.Notification{
				{Source: source, Category: gt.CategoryResin, Severity: gt.SeverityDanger},
				{Source: source, Category: gt.CategoryAbyss, Severity: gt.SeverityWarning},
				{Source: source, Category: gt.CategoryExpedition, Severity: gt.SeverityInfo},
			},
			want: gt.NotificationInfo{Count: 3, Highest: gt.SeverityDanger, HasAny: true},
		},
		{
			name: "other sources are ignored",
			entries: []gt.Notification{
				{Source: "붕괴: 스타레일", Category: gt.CategoryResin, Severity: gt.SeverityDanger},
				{Source: source, Category: gt.CategoryExpedition, Severity: gt.SeverityInfo},
			},
			want: gt.NotificationInfo{Count: 1, Highest: gt.SeverityInfo, HasAny: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			for _, n := range tt.entries {
				if err := f.alerts.Upsert(n.Source, n.Category, n.Severity, "msg"); err != nil {
					t.Fatalf("Upsert() error = %v", err)
				}
			}
			if got := f.alerts.InfoFor(source); got != tt.want {
				t.Errorf("InfoFor() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestAggregator_ListOrder(t *testing.T) {
	f := newFixture(t)

	_ = f.alerts.Upsert(source, gt.CategoryExpedition, gt.SeverityInfo, "a")
	f.clock.Advance(time.Second)
	_ = f.alerts.Upsert(source, gt.CategoryResin, gt.SeverityDanger, "b")
	f.clock.Advance(time.Second)
	_ = f.alerts.Upsert(source, gt.CategoryWeekly, gt.SeverityWarning, "c")
	f.clock.Advance(time.Second)
	_ = f.alerts.Upsert(source, gt.CategoryAbyss, gt.SeverityWarning, "d")

	var got []string
	for _, n := range f.alerts.List() {
		got = append(got, n.Message)
	}
	want := []string{"b", "d", "c", "a"}
	if len(got) != len(want) {
		t.Fatalf("List() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("List() = %v, want %v", got, want)
		}
	}
}

func TestAggregator_LoadPurgesExpired(t *testing.T) {
	f := newFixture(t)
	now := f.clock.Now()
	ms := func(d time.Duration) int64 { return now.Add(-d).UnixMilli() }

	f.put(t, gt.KeyNotifications, []map[string]any{
		{"gameName": source, "type": "expedition", "level": "info", "message": "old", "timestamp": ms(25 * time.Hour), "persistent": false},
		{"gameName": source, "type": "weekly", "level": "warning", "message": "recent", "timestamp": ms(23 * time.Hour), "persistent": false},
		{"gameName": source, "type": "resin", "level": "danger", "message": "sticky", "timestamp": ms(72 * time.Hour), "persistent": true, "threshold": 160},
		{"gameName": source, "type": "abyss", "level": "warning", "message": "first", "timestamp": ms(time.Hour), "persistent": false},
		{"gameName": source, "type": "abyss", "level": "warning", "message": "second", "timestamp": ms(time.Minute), "persistent": false},
	})

	if err := f.alerts.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if _, ok := f.alerts.Find(source, gt.CategoryExpedition); ok {
		t.Error("expired non-sticky entry survived Load")
	}
	if n, ok := f.alerts.Find(source, gt.CategoryWeekly); !ok || n.Message != "recent" {
		t.Errorf("recent entry = %+v, %v", n, ok)
	}
	n, ok := f.alerts.Find(source, gt.CategoryResin)
	if !ok || !n.Sticky || n.Threshold != 160 {
		t.Errorf("sticky entry = %+v, %v", n, ok)
	}
	if n, _ := f.alerts.Find(source, gt.CategoryAbyss); n.Message != "second" {
		t.Errorf("duplicate entry kept %q, want the later one", n.Message)
	}
	if got := len(f.alerts.List()); got != 3 {
		t.Errorf("List() = %d entries, want 3", got)
	}
}

func TestAggregator_LoadRecomputesSticky(t *testing.T) {
	f := newFixture(t)
	old := f.clock.Now().Add(-48 * time.Hour).UnixMilli()

	f.put(t, gt.KeyNotifications, []map[string]any{
		{"gameName": source, "type": "expedition", "level": "info", "message": "pinned", "timestamp": old, "persistent": true},
		{"gameName": source, "type": "resin", "level": "warning", "message": "unpinned", "timestamp": old, "persistent": false, "threshold": 180},
	})

	if err := f.alerts.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, ok := f.alerts.Find(source, gt.CategoryExpedition); ok {
		t.Error("expedition entry marked persistent survived the TTL")
	}
	if n, ok := f.alerts.Find(source, gt.CategoryResin); !ok || !n.Sticky {
		t.Errorf("resin warning = %+v, %v, want sticky", n, ok)
	}
}

func TestAggregator_LoadMalformed(t *testing.T) {
	f := newFixture(t)
	_ = f.store.Set(gt.KeyNotifications, []byte(`{"oops":`))

	if err := f.alerts.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := len(f.alerts.List()); got != 0 {
		t.Errorf("List() = %d entries, want 0", got)
	}
}

func TestAggregator_PersistedShape(t *testing.T) {
	f := newFixture(t)
	_ = f.alerts.Upsert(source, gt.CategoryResin, gt.SeverityDanger, "레진이 가득 찼습니다!")
	_ = f.alerts.Upsert(source, gt.CategoryExpedition, gt.SeverityInfo, "탐사 1개 완료!")

	var records []map[string]any
	f.get(t, gt.KeyNotifications, &records)
	if len(records) != 2 {
		t.Fatalf("persisted %d records, want 2", len(records))
	}

	resin, expedition := records[0], records[1]
	if resin["gameName"] != source || resin["type"] != "resin" || resin["level"] != "danger" {
		t.Errorf("resin record = %v", resin)
	}
	if resin["persistent"] != true || resin["threshold"] != float64(160) {
		t.Errorf("resin record = %v, want persistent with threshold 160", resin)
	}
	if resin["timestamp"] != float64(f.clock.Now().UnixMilli()) {
		t.Errorf("resin timestamp = %v", resin["timestamp"])
	}
	if expedition["persistent"] != false {
		t.Errorf("expedition record = %v, want not persistent", expedition)
	}
	if _, ok := expedition["threshold"]; ok {
		t.Errorf("expedition record carries a threshold: %v", expedition)
	}
}

func TestAggregator_ResolveAndSubscribe(t *testing.T) {
	f := newFixture(t)
	calls := 0
	cancel := f.alerts.Subscribe(func() { calls++ })

	_ = f.alerts.Upsert(source, gt.CategoryAbyss, gt.SeverityWarning, "나선 비경 초기화 임박")
	if err := f.alerts.Resolve(source, gt.CategoryAbyss); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if _, ok := f.alerts.Find(source, gt.CategoryAbyss); ok {
		t.Error("entry survived Resolve")
	}
	if calls != 2 {
		t.Errorf("subscriber calls = %d, want 2", calls)
	}

	// Resolve always persists; ClearIfPresent only when there is something
	// to clear.
	_ = f.alerts.Resolve(source, gt.CategoryAbyss)
	_ = f.alerts.ClearIfPresent(source, gt.CategoryAbyss)
	if calls != 3 {
		t.Errorf("subscriber calls = %d, want 3", calls)
	}

	cancel()
	_ = f.alerts.Upsert(source, gt.CategoryAbyss, gt.SeverityWarning, "x")
	if calls != 3 {
		t.Errorf("cancelled subscriber was called: %d", calls)
	}

	var records []map[string]any
	f.get(t, gt.KeyNotifications, &records)
	if len(records) != 1 {
		t.Errorf("persisted %d records, want 1", len(records))
	}
}

func TestAggregator_SyncFromExternalState(t *testing.T) {
	tests := []struct {
		name        string
		existing    bool
		resin       int
		wantPresent bool
		wantMessage string
	}{
		{"below threshold without entry", false, 120, false, ""},
		{"below threshold clears entry", true, 159, false, ""},
		{"160 band creates warning", false, 160, true, "레진이 160 이상입니다!"},
		{"190 band creates danger", false, 195, true, "레진이 190 이상입니다!"},
		{"full creates danger", false, 200, true, "레진이 가득 찼습니다!"},
		{"held entry is left alone", true, 200, true, "held"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.existing {
				_ = f.alerts.Upsert(source, gt.CategoryResin, gt.SeverityWarning, "held")
			}

			if err := f.alerts.SyncFromExternalState(source, tt.resin); err != nil {
				t.Fatalf("SyncFromExternalState() error = %v", err)
			}
			// Idempotent.
			if err := f.alerts.SyncFromExternalState(source, tt.resin); err != nil {
				t.Fatalf("SyncFromExternalState() error = %v", err)
			}

			n, ok := f.alerts.Find(source, gt.CategoryResin)
			if ok != tt.wantPresent {
				t.Fatalf("present = %v, want %v", ok, tt.wantPresent)
			}
			if ok && n.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", n.Message, tt.wantMessage)
			}
			if got := len(f.alerts.List()); ok && got != 1 {
				t.Errorf("List() = %d entries, want 1", got)
			}
		})
	}
}

func TestParseCategory(t *testing.T) {
	for _, c := range gt.Categories {
		got, err := gt.ParseCategory(string(c))
		if err != nil || got != c {
			t.Errorf("ParseCategory(%q) = %q, %v", c, got, err)
		}
	}
	if _, err := gt.ParseCategory("boss"); !errors.Is(err, gt.ErrUnknownCategory) {
		t.Errorf("ParseCategory(boss) error = %v, want ErrUnknownCategory", err)
	}
}
