package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"gt-go/internal/config"
	"gt-go/internal/database"
	"gt-go/internal/encryption"
	"gt-go/internal/gt"
	"gt-go/internal/metrics"
	"gt-go/internal/platform"
	"gt-go/internal/schedule"
	"gt-go/internal/snapshot"
	"gt-go/internal/vault"
)

// GTApp is the application layer between the CLI and gt.Service.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw CLI values, and releases resources on Close.
type GTApp struct {
	cfg       *config.Config
	clock     gt.Clock
	store     gt.Store
	vault     gt.Vault
	encryptor gt.Encryptor
	codec     *snapshot.Codec
	snapshots *snapshot.Manager
	display   gt.Display
	scheduler gt.Scheduler
	metrics   metrics.Provider
	service   *gt.Service
	logger    *slog.Logger
	op        *Operation
	logFile   *os.File
	closed    bool
}

// NewGTApp creates a fully wired GTApp from the given config.
// operation identifies the CLI command being run (e.g. "SetResin", "Watch").
// The caller must call Close when done.
func NewGTApp(ctx context.Context, cfg *config.Config, operation, parameters string) (*GTApp, error) {
	clock := gt.SystemClock{}
	sessionID := clock.Now().UTC().Format("20060102T150405Z")

	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger, logFile, err := newLogger(cfg.LogDir, sessionID, level)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	a := &GTApp{
		cfg:     cfg,
		clock:   clock,
		logger:  logger,
		logFile: logFile,
		op:      NewOperation(sessionID, operation, parameters, clock.Now()),
	}

	if err := a.wire(ctx); err != nil {
		a.closeResources()
		return nil, err
	}
	return a, nil
}

func (a *GTApp) wire(ctx context.Context) error {
	cfg := a.cfg
	gtLogger := &slogAdapter{l: a.logger}

	store, err := database.NewStoreFromConfig(cfg.Store, cfg.ProfileID, a.clock)
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}
	a.store = store

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}
	a.encryptor = enc

	if len(cfg.Vaults) > 0 {
		v, err := vault.NewVaultFromConfig(ctx, cfg.Vaults[0])
		if err != nil {
			return fmt.Errorf("creating vault: %w", err)
		}
		a.vault = v
	}

	display, err := platform.NewDisplayFromConfig(cfg.Notifications, os.Stderr)
	if err != nil {
		return fmt.Errorf("creating display: %w", err)
	}
	haptics, err := platform.NewHapticsFromConfig(cfg.Haptics, os.Stderr)
	if err != nil {
		return fmt.Errorf("creating haptics: %w", err)
	}
	a.display = display

	codec, err := snapshot.NewCodec()
	if err != nil {
		return fmt.Errorf("creating snapshot codec: %w", err)
	}
	a.codec = codec

	source := cfg.SourceName
	if source == "" {
		source = gt.DefaultSource
	}
	a.service = gt.NewService(store, display, haptics, a.clock, gtLogger, gt.NewLocalizer(cfg.Locale), source)
	if err := a.service.Load(); err != nil {
		return fmt.Errorf("loading state: %w", err)
	}

	if a.vault != nil {
		a.snapshots = snapshot.NewManager(a.vault, enc, codec, a.clock, gt.UUIDGenerator{}, gtLogger, cfg.ProfileID, source)
	}
	a.scheduler = schedule.NewGronScheduler(gtLogger)
	a.metrics = metrics.NewProviderFromConfig(cfg.Metrics)
	return nil
}

// Service returns the underlying service.
func (a *GTApp) Service() *gt.Service { return a.service }

// Status returns the current derived state.
func (a *GTApp) Status() gt.Status { return a.service.Status() }

// SetResin replaces the resin amount.
func (a *GTApp) SetResin(value int) error {
	return a.op.Record(a.service.SetResin(value))
}

// AddResin adjusts the resin amount by delta, which may be negative.
func (a *GTApp) AddResin(delta int) error {
	return a.op.Record(a.service.AddResin(delta))
}

// ResetResinTimer restarts the regeneration timer, optionally setting a
// new amount.
func (a *GTApp) ResetResinTimer(value *int) error {
	return a.op.Record(a.service.ResetResinTimer(value))
}

// AdvanceWeeklyBoss records one weekly boss clear.
func (a *GTApp) AdvanceWeeklyBoss() error {
	return a.op.Record(a.service.AdvanceWeeklyBoss())
}

// ResetWeeklyBoss clears this week's boss progress.
func (a *GTApp) ResetWeeklyBoss() error {
	return a.op.Record(a.service.ResetWeeklyBoss())
}

func (a *GTApp) ToggleAbyss() error {
	return a.op.Record(a.service.ToggleAbyss())
}

func (a *GTApp) ToggleTheater() error {
	return a.op.Record(a.service.ToggleTheater())
}

// StartExpedition dispatches an expedition of hours into slot (1-based).
func (a *GTApp) StartExpedition(slot, hours int) error {
	return a.op.Record(a.service.StartExpedition(slot, hours))
}

// CompleteExpedition collects the expedition in slot.
func (a *GTApp) CompleteExpedition(slot int) error {
	return a.op.Record(a.service.CompleteExpedition(slot))
}

// Notifications returns the active notifications, most urgent first.
func (a *GTApp) Notifications() []gt.Notification {
	return a.service.Status().Notifications
}

// ResolveNotification dismisses the notification for the named category.
func (a *GTApp) ResolveNotification(name string) error {
	category, err := gt.ParseCategory(name)
	if err != nil {
		return a.op.Record(err)
	}
	return a.op.Record(a.service.ResolveNotification(category))
}

// ClearNotifications dismisses every notification of this app's source and
// returns how many were cleared.
func (a *GTApp) ClearNotifications() (int, error) {
	cleared := 0
	for _, n := range a.Notifications() {
		if n.Source != a.service.Source() {
			continue
		}
		if err := a.service.ResolveNotification(n.Category); err != nil {
			return cleared, a.op.Record(err)
		}
		cleared++
	}
	return cleared, nil
}

// SetupKeys generates the snapshot key pair protected by passphrase.
func (a *GTApp) SetupKeys(passphrase string) error {
	return a.op.Record(a.encryptor.Setup(passphrase))
}

// ExportSnapshot uploads an encrypted snapshot of every record.
func (a *GTApp) ExportSnapshot() (snapshot.Info, error) {
	if a.snapshots == nil {
		return snapshot.Info{}, a.op.Record(fmt.Errorf("no vaults configured"))
	}
	if err := a.vault.ValidateSetup(); err != nil {
		return snapshot.Info{}, a.op.Record(fmt.Errorf("vault not ready: %w", err))
	}
	info, err := a.snapshots.Export(a.service)
	return info, a.op.Record(err)
}

// ImportSnapshot restores snapshot id after unlocking the private key.
func (a *GTApp) ImportSnapshot(id, passphrase string) (snapshot.Document, error) {
	if a.snapshots == nil {
		return snapshot.Document{}, a.op.Record(fmt.Errorf("no vaults configured"))
	}
	dec, err := a.encryptor.Unlock(passphrase)
	if err != nil {
		return snapshot.Document{}, a.op.Record(fmt.Errorf("unlocking keys: %w", err))
	}
	doc, err := a.snapshots.Import(a.service, id, dec)
	return doc, a.op.Record(err)
}

// ListSnapshots returns the snapshot IDs for this profile, oldest first.
func (a *GTApp) ListSnapshots() ([]string, error) {
	if a.snapshots == nil {
		return nil, a.op.Record(fmt.Errorf("no vaults configured"))
	}
	ids, err := a.snapshots.List()
	return ids, a.op.Record(err)
}

// Watch ticks the service until ctx is cancelled, calling render with a
// fresh status after every tick and every notification change. When
// metrics are enabled they are served on the configured address.
func (a *GTApp) Watch(ctx context.Context, render func(gt.Status)) error {
	if p, err := a.display.RequestPermission(ctx); err != nil {
		a.logger.Warn("requesting notification permission", "error", err)
	} else {
		a.logger.Debug("notification permission", "permission", p)
	}

	refresh := make(chan struct{}, 1)
	signal := func() {
		select {
		case refresh <- struct{}{}:
		default:
		}
	}
	unsubscribe := a.service.Subscribe(signal)
	defer unsubscribe()

	if h := a.metrics.Handler(); h != nil {
		srv := &http.Server{Addr: a.cfg.Metrics.Addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics server failed", "addr", srv.Addr, "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		a.logger.Info("serving metrics", "addr", srv.Addr)
	}

	a.service.Start(a.metrics.Instrument(a.scheduler), gt.TickInterval, func(st gt.Status, err error) {
		a.metrics.ObserveTick(err)
		a.metrics.SetStatus(st)
		signal()
	})
	defer a.service.Stop()

	st := a.service.Status()
	a.metrics.SetStatus(st)
	render(st)

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("watch stopped")
			return nil
		case <-refresh:
			render(a.service.Status())
		}
	}
}

// Close logs the operation result and closes all resources. Later calls
// do nothing.
func (a *GTApp) Close() error {
	if a.closed {
		return nil
	}
	a.logger.Debug("operation finished",
		"operation", a.op.Name,
		"parameters", a.op.Parameters,
		"status", a.op.Status,
		"duration", a.clock.Now().Sub(a.op.StartedAt),
	)
	return a.closeResources()
}

func (a *GTApp) closeResources() error {
	var firstErr error
	a.closed = true

	if a.service != nil {
		a.service.Stop()
	}
	if a.codec != nil {
		a.codec.Close()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			firstErr = fmt.Errorf("closing store: %w", err)
		}
	}
	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
