package gt

// Store is the key-value persistence boundary shared by every component.
// Values are opaque JSON documents; a Set either fully replaces the value
// for its key or fails.
type Store interface {
	// Get returns the value stored under key. ok is false when the key has
	// never been written.
	Get(key string) (value []byte, ok bool, err error)

	// Set replaces the value stored under key.
	Set(key string, value []byte) error

	// Keys lists every key currently held, in no particular order.
	Keys() ([]string, error)

	// Close releases the underlying resources.
	Close() error
}

// DefaultSource is the game name notifications are filed under when none
// is configured.
const DefaultSource = "원신"

// Persistence keys. The names match the records written by earlier
// versions of the tracker so existing data keeps loading.
const (
	KeyResin         = "genshin_resin_data"
	KeyWeeklyBoss    = "genshin_weekly_boss_data"
	KeyAbyss         = "genshin_abyss_data"
	KeyTheater       = "genshin_theater_data"
	KeyExpeditions   = "genshin_expeditions_data"
	KeyNotifications = "game_notifications"
)

// TrackedKeys lists every key the service owns, in load order.
var TrackedKeys = []string{
	KeyResin,
	KeyWeeklyBoss,
	KeyAbyss,
	KeyTheater,
	KeyExpeditions,
	KeyNotifications,
}
