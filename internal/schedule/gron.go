package schedule

import (
	"sync"
	"time"

	"github.com/roylee0704/gron"

	"gt-go/internal/gt"
)

// GronScheduler runs callbacks on a gron cron. Each Schedule call gets its
// own cron so cancelling one registration leaves the others running.
type GronScheduler struct {
	logger gt.Logger
}

var _ gt.Scheduler = (*GronScheduler)(nil)

func NewGronScheduler(logger gt.Logger) *GronScheduler {
	return &GronScheduler{logger: logger}
}

// Schedule starts calling fn every interval (whole seconds, minimum one).
// Calls may overlap if fn runs longer than interval; callers serialise.
func (s *GronScheduler) Schedule(interval time.Duration, fn func()) func() {
	if interval < time.Second {
		interval = time.Second
	}

	cron := gron.New()
	cron.AddFunc(gron.Every(interval), fn)
	cron.Start()
	s.logger.Debug("scheduler started", "interval", interval)

	var once sync.Once
	return func() {
		once.Do(func() {
			cron.Stop()
			s.logger.Debug("scheduler stopped", "interval", interval)
		})
	}
}
