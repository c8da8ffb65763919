package platform

import (
	"fmt"
	"io"

	"gt-go/internal/config"
	"gt-go/internal/gt"
)

// NewDisplayFromConfig creates a gt.Display for the configured type.
func NewDisplayFromConfig(cfg config.NotificationsConfig, w io.Writer) (gt.Display, error) {
	permission := gt.Permission(cfg.Permission)
	if permission == "" {
		permission = gt.PermissionDefault
	}

	switch cfg.Display {
	case "terminal", "":
		return NewTerminalDisplay(w, permission), nil
	case "command":
		if cfg.Command == "" {
			return nil, fmt.Errorf("command display requires a command")
		}
		return NewCommandDisplay(cfg.Command, permission), nil
	case "none":
		return NoneDisplay{}, nil
	default:
		return nil, fmt.Errorf("unsupported display type: %s", cfg.Display)
	}
}

// NewHapticsFromConfig creates a gt.Haptics for the configured type.
func NewHapticsFromConfig(cfg config.HapticsConfig, w io.Writer) (gt.Haptics, error) {
	switch cfg.Type {
	case "bell", "":
		return NewBellHaptics(w), nil
	case "none":
		return NoneHaptics{}, nil
	default:
		return nil, fmt.Errorf("unsupported haptics type: %s", cfg.Type)
	}
}
