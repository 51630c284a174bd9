package watcher

import (
	"context"
	"sync"
	"time"

	"github.com/core-tools/hsu-sockswatch/pkg/errors"
	"github.com/core-tools/hsu-sockswatch/pkg/logging"
	"github.com/core-tools/hsu-sockswatch/pkg/monitoring"
	"github.com/core-tools/hsu-sockswatch/pkg/netstat"
	"github.com/core-tools/hsu-sockswatch/pkg/notify"
)

// Options configures the polling loop
type Options struct {
	SocksPort     int
	TargetPorts   []int
	CheckInterval time.Duration
}

// Watcher is the process-wide control loop: one snapshot, one
// classification, one state comparison and at most one notification per
// cycle, in strict sequence on a single goroutine.
type Watcher struct {
	options  Options
	provider netstat.Provider
	notifier notify.Notifier
	tracker  *monitoring.StateTracker
	logger   logging.Logger
	stopChan chan struct{}
	wg       sync.WaitGroup
	mutex    sync.Mutex
}

func NewWatcher(options Options, provider netstat.Provider, notifier notify.Notifier, logger logging.Logger) *Watcher {
	return &Watcher{
		options:  options,
		provider: provider,
		notifier: notifier,
		tracker:  monitoring.NewStateTracker(options.TargetPorts),
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// ValidateOptions validates watcher options
func ValidateOptions(options Options) error {
	if options.SocksPort <= 0 || options.SocksPort > 65535 {
		return errors.NewValidationError("SOCKS port must be between 1 and 65535", nil)
	}
	if len(options.TargetPorts) == 0 {
		return errors.NewValidationError("at least one target port is required", nil)
	}
	if options.CheckInterval <= 0 {
		return errors.NewValidationError("check interval must be positive", nil)
	}
	return nil
}

func (w *Watcher) Start(ctx context.Context) error {
	w.logger.Infof("Starting watcher, socks_port: %d, target_ports: %v, interval: %v",
		w.options.SocksPort, w.options.TargetPorts, w.options.CheckInterval)

	if err := ValidateOptions(w.options); err != nil {
		return errors.NewValidationError("invalid watcher options", err)
	}

	// Startup probe: a privilege or scoping problem has to fail fast here
	// instead of being retried every cycle
	if _, err := w.provider.Snapshot(); err != nil {
		if errors.IsPermissionError(err) || errors.IsNotFoundError(err) || errors.IsValidationError(err) {
			return err
		}
		w.logger.Warnf("Startup snapshot failed, continuing: %v", err)
	}

	w.wg.Add(1)
	go w.loop(ctx)
	return nil
}

func (w *Watcher) Stop() {
	w.logger.Infof("Stopping watcher")
	close(w.stopChan)
	w.wg.Wait()
	w.logger.Infof("Watcher stopped")
}

// State returns a copy of the current activity state
func (w *Watcher) State() monitoring.ActivityState {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.tracker.State()
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	w.logger.Debugf("Watcher loop started")

	ticker := time.NewTicker(w.options.CheckInterval)
	defer ticker.Stop()

	w.performCheck()

	for {
		select {
		case <-ticker.C:
			w.performCheck()
		case <-ctx.Done():
			w.logger.Debugf("Watcher loop cancelled")
			return
		case <-w.stopChan:
			w.logger.Debugf("Watcher loop stopping")
			return
		}
	}
}

// performCheck runs one poll cycle. Every failure inside a cycle is logged
// with the failing step and the loop carries on to the next tick.
func (w *Watcher) performCheck() {
	conns, err := w.provider.Snapshot()
	if err != nil {
		w.logger.Errorf("Connection snapshot failed, skipping cycle: %v", err)
		return
	}

	active := monitoring.Classify(conns, w.options.TargetPorts)

	if !monitoring.ProxyInUse(conns, w.options.SocksPort) {
		w.logger.Debugf("No established connections on SOCKS port %d", w.options.SocksPort)
	}

	w.mutex.Lock()
	event := w.tracker.Update(active)
	w.mutex.Unlock()

	if event == nil {
		return
	}

	w.logger.Infof("Target activity %s, ports: %v", event.Direction, event.Ports)

	// A missed notification never stops the loop, the next edge event
	// reattempts delivery to the same endpoint
	if err := w.notifier.Notify(*event); err != nil {
		w.logger.Errorf("Notification delivery failed: %v", err)
	}
}
