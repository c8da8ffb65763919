package platform

import (
	"io"
	"sync"
	"time"

	"gt-go/internal/gt"
)

// BellHaptics rings the terminal bell once per vibration pulse.
type BellHaptics struct {
	mu sync.Mutex
	w  io.Writer
}

func NewBellHaptics(w io.Writer) *BellHaptics {
	return &BellHaptics{w: w}
}

// Vibrate ignores durations. Even entries of the pattern are pulses.
func (h *BellHaptics) Vibrate(pattern []time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := 0; i < len(pattern); i += 2 {
		_, _ = io.WriteString(h.w, "\a")
	}
}

// NoneHaptics does nothing.
type NoneHaptics struct{}

func (NoneHaptics) Vibrate([]time.Duration) {}

var (
	_ gt.Haptics = (*BellHaptics)(nil)
	_ gt.Haptics = NoneHaptics{}
)
