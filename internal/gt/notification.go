package gt

import (
	"fmt"
	"sort"
	"time"

	json "github.com/goccy/go-json"
)

// Category identifies what a notification is about.
type Category string

const (
	CategoryResin      Category = "resin"
	CategoryExpedition Category = "expedition"
	CategoryWeekly     Category = "weekly"
	CategoryAbyss      Category = "abyss"
	CategoryTheater    Category = "theater"
)

// Categories lists every notification category.
var Categories = []Category{CategoryResin, CategoryExpedition, CategoryWeekly, CategoryAbyss, CategoryTheater}

// ParseCategory maps a category name to its Category.
func ParseCategory(name string) (Category, error) {
	for _, c := range Categories {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, name)
}

// Severity orders notifications for badge rendering.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

func (s Severity) rank() int {
	switch s {
	case SeverityDanger:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// NotificationTTL is how long non-sticky notifications survive a reload.
const NotificationTTL = 24 * time.Hour

// Notification is one active alert. At most one exists per
// (Source, Category).
type Notification struct {
	Source    string
	Category  Category
	Severity  Severity
	Message   string
	CreatedAt time.Time
	Sticky    bool
	Threshold int
}

// IsSticky reports whether an alert of this kind survives reloads until
// resolved: only resin warnings and dangers do.
func IsSticky(c Category, s Severity) bool {
	return c == CategoryResin && (s == SeverityWarning || s == SeverityDanger)
}

// NotificationInfo summarises the alerts for one source.
type NotificationInfo struct {
	Count   int
	Highest Severity
	HasAny  bool
}

type notificationRecord struct {
	GameName   string   `json:"gameName"`
	Type       Category `json:"type"`
	Level      Severity `json:"level"`
	Message    string   `json:"message"`
	Timestamp  int64    `json:"timestamp"`
	Persistent bool     `json:"persistent"`
	Threshold  *int     `json:"threshold,omitempty"`
}

// Aggregator is the registry of active notifications. Every upsert and
// resolve persists the full list and signals subscribers.
type Aggregator struct {
	store  Store
	clock  Clock
	logger Logger
	loc    *Localizer

	items   []Notification
	subs    map[int]func()
	nextSub int
}

func NewAggregator(store Store, clock Clock, logger Logger, loc *Localizer) *Aggregator {
	return &Aggregator{
		store:  store,
		clock:  clock,
		logger: logger,
		loc:    loc,
		subs:   make(map[int]func()),
	}
}

// Load replaces the in-memory list with the persisted one, dropping
// non-sticky entries older than NotificationTTL. A malformed record is
// logged and treated as empty.
func (a *Aggregator) Load() error {
	a.items = nil

	data, ok, err := a.store.Get(KeyNotifications)
	if err != nil {
		return fmt.Errorf("reading notifications: %w", err)
	}
	if !ok {
		return nil
	}

	var records []notificationRecord
	if err := json.Unmarshal(data, &records); err != nil {
		a.logger.Warn("discarding malformed notifications", "error", err)
		return nil
	}

	now := a.clock.Now()
	seen := make(map[string]int)
	for _, r := range records {
		n := Notification{
			Source:    r.GameName,
			Category:  r.Type,
			Severity:  r.Level,
			Message:   r.Message,
			CreatedAt: time.UnixMilli(r.Timestamp),
			Sticky:    IsSticky(r.Type, r.Level),
		}
		if r.Threshold != nil {
			n.Threshold = *r.Threshold
		}
		if n.Sticky != r.Persistent {
			a.logger.Debug("correcting persistent flag", "type", r.Type, "level", r.Level)
		}
		if !n.Sticky && now.Sub(n.CreatedAt) > NotificationTTL {
			continue
		}
		k := n.Source + "\x00" + string(n.Category)
		if i, dup := seen[k]; dup {
			a.items[i] = n
			continue
		}
		seen[k] = len(a.items)
		a.items = append(a.items, n)
	}
	return nil
}

// Upsert replaces any notification for (source, category) with a new one
// stamped now.
func (a *Aggregator) Upsert(source string, category Category, severity Severity, message string) error {
	a.remove(source, category)

	n := Notification{
		Source:    source,
		Category:  category,
		Severity:  severity,
		Message:   message,
		CreatedAt: a.clock.Now(),
		Sticky:    IsSticky(category, severity),
	}
	if category == CategoryResin {
		n.Threshold = ResinWarningThreshold
	}
	a.items = append(a.items, n)

	return a.commit()
}

// Ensure upserts only when the held notification differs in severity or
// message, so repeated checks do not reset CreatedAt or rewrite the store.
func (a *Aggregator) Ensure(source string, category Category, severity Severity, message string) error {
	if n, ok := a.Find(source, category); ok && n.Severity == severity && n.Message == message {
		return nil
	}
	return a.Upsert(source, category, severity, message)
}

// Resolve removes the notification for (source, category), if any.
func (a *Aggregator) Resolve(source string, category Category) error {
	a.remove(source, category)
	return a.commit()
}

// ClearIfPresent resolves only when a matching notification exists.
func (a *Aggregator) ClearIfPresent(source string, category Category) error {
	if _, ok := a.Find(source, category); !ok {
		return nil
	}
	return a.Resolve(source, category)
}

// SyncFromExternalState reconciles the resin alert with a resin value that
// arrived out of band. It is idempotent.
func (a *Aggregator) SyncFromExternalState(source string, resin int) error {
	if resin < ResinWarningThreshold {
		return a.ClearIfPresent(source, CategoryResin)
	}
	if _, ok := a.Find(source, CategoryResin); ok {
		return nil
	}
	severity, message := resinAlert(a.loc, resin)
	return a.Upsert(source, CategoryResin, severity, message)
}

// Find returns the notification for (source, category).
func (a *Aggregator) Find(source string, category Category) (Notification, bool) {
	for _, n := range a.items {
		if n.Source == source && n.Category == category {
			return n, true
		}
	}
	return Notification{}, false
}

// InfoFor summarises the notifications held for source.
func (a *Aggregator) InfoFor(source string) NotificationInfo {
	var info NotificationInfo
	for _, n := range a.items {
		if n.Source != source {
			continue
		}
		info.Count++
		if n.Severity.rank() > info.Highest.rank() {
			info.Highest = n.Severity
		}
	}
	info.HasAny = info.Count > 0
	return info
}

// List returns the held notifications, most severe first, then newest
// first.
func (a *Aggregator) List() []Notification {
	out := make([]Notification, len(a.items))
	copy(out, a.items)
	sort.SliceStable(out, func(i, j int) bool {
		if ri, rj := out[i].Severity.rank(), out[j].Severity.rank(); ri != rj {
			return ri > rj
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Subscribe registers fn to run after every change. Callbacks run
// synchronously on the mutating goroutine and must not call back into the
// aggregator.
func (a *Aggregator) Subscribe(fn func()) (cancel func()) {
	id := a.nextSub
	a.nextSub++
	a.subs[id] = fn
	return func() { delete(a.subs, id) }
}

func (a *Aggregator) remove(source string, category Category) {
	kept := a.items[:0]
	for _, n := range a.items {
		if n.Source == source && n.Category == category {
			continue
		}
		kept = append(kept, n)
	}
	a.items = kept
}

func (a *Aggregator) commit() error {
	records := make([]notificationRecord, 0, len(a.items))
	for _, n := range a.items {
		r := notificationRecord{
			GameName:   n.Source,
			Type:       n.Category,
			Level:      n.Severity,
			Message:    n.Message,
			Timestamp:  n.CreatedAt.UnixMilli(),
			Persistent: n.Sticky,
		}
		if n.Threshold != 0 {
			threshold := n.Threshold
			r.Threshold = &threshold
		}
		records = append(records, r)
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding notifications: %w", err)
	}
	if err := a.store.Set(KeyNotifications, data); err != nil {
		return fmt.Errorf("saving notifications: %w", err)
	}

	for _, fn := range a.subs {
		fn()
	}
	return nil
}
