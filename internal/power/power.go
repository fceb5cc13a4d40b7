// Package power keeps the device awake while a long database rewrite runs.
//
// A Keeper owns one background goroutine that, on every tick, sends the
// keep-awake signal if the lock flag is set. Lock and Unlock only flip the
// flag; they are idempotent and never block. A tick racing an Unlock may
// send one extra signal, which is harmless.
package power

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Locker is the advisory suspend lock used around database rewrites.
type Locker interface {
	Lock()
	Unlock()
}

// Signal is sent once per tick while locked. On the console it disables
// auto-suspend for the next interval.
type Signal interface {
	KeepAwake()
}

// SignalFunc adapts a function to Signal.
type SignalFunc func()

// KeepAwake calls f.
func (f SignalFunc) KeepAwake() { f() }

// DefaultInterval matches the shell's auto-suspend granularity.
const DefaultInterval = 10 * time.Second

// Keeper is a Locker backed by a ticking goroutine.
type Keeper struct {
	locked   atomic.Bool
	signal   Signal
	interval time.Duration
	logger   *slog.Logger

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewKeeper starts the keep-awake goroutine. Call Close to stop it.
func NewKeeper(signal Signal, interval time.Duration, logger *slog.Logger) *Keeper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	k := &Keeper{
		signal:   signal,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go k.run()
	return k
}

func (k *Keeper) run() {
	defer close(k.done)

	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if k.locked.Load() {
				k.logger.Debug("keep-awake tick")
				k.signal.KeepAwake()
			}
		case <-k.stop:
			return
		}
	}
}

// Lock starts sending keep-awake signals.
func (k *Keeper) Lock() {
	if !k.locked.Swap(true) {
		k.logger.Debug("power locked")
	}
}

// Unlock stops sending keep-awake signals.
func (k *Keeper) Unlock() {
	if k.locked.Swap(false) {
		k.logger.Debug("power unlocked")
	}
}

// Locked reports the current flag.
func (k *Keeper) Locked() bool {
	return k.locked.Load()
}

// Close stops the goroutine and waits for it to exit. Safe to call twice.
func (k *Keeper) Close() error {
	k.stopOnce.Do(func() { close(k.stop) })
	<-k.done
	return nil
}

// Nop is a Locker that does nothing.
type Nop struct{}

func (Nop) Lock()   {}
func (Nop) Unlock() {}
