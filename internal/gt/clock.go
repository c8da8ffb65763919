package gt

import (
	"time"

	"github.com/google/uuid"
)

// Clock supplies the current instant. Every countdown and regeneration step
// reads time through it so tests can pin and advance the wall clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the host wall clock in local time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// IDGenerator produces unique identifiers for snapshots and profiles.
type IDGenerator interface {
	New() string
}

// UUIDGenerator produces random (v4) UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.NewString() }
