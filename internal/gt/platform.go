package gt

import (
	"context"
	"time"
)

// Permission mirrors the platform notification permission states.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDefault Permission = "default"
	PermissionDenied  Permission = "denied"
)

// DisplayOptions tune how a platform notification is shown.
// Tag lets the platform coalesce repeated alerts of the same kind.
type DisplayOptions struct {
	Icon               string
	Tag                string
	RequireInteraction bool
	Silent             bool
}

// Display is the platform notification facility.
type Display interface {
	// Permission reports the current permission without prompting.
	Permission() Permission

	// RequestPermission asks the user (if the platform can) and returns the
	// resulting permission.
	RequestPermission(ctx context.Context) (Permission, error)

	// Show displays a notification. Implementations must do nothing unless
	// permission is granted.
	Show(title, body string, opts DisplayOptions) error
}

// Haptics is the best-effort vibration facility. The pattern alternates
// vibrate and pause durations, starting with a vibration.
type Haptics interface {
	Vibrate(pattern []time.Duration)
}

// Scheduler invokes fn roughly every interval until the returned cancel
// function is called.
type Scheduler interface {
	Schedule(interval time.Duration, fn func()) (cancel func())
}
