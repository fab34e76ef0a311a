package config

import (
	"context"
	"sync"
	"time"

	"workshop-booking/pkg/metrics"
)

// Change describes a configuration update event.
// Only a subset of fields may have changed; see Fields for the list of keys.
type Change struct {
	Old    *Config
	New    *Config
	Fields []string
}

// Subscriber channel buffer size; small to apply back-pressure if receivers
// are slow.
const subBuf = 4

// Watcher periodically reloads configuration from the environment and
// notifies subscribers about changed fields. Polling keeps it simple.
type Watcher struct {
	mu     sync.RWMutex
	cur    *Config
	closed bool
	intv   time.Duration
	subs   []chan Change
	cancel context.CancelFunc

	mReloads *metrics.Counter
	mChanges *metrics.Counter
}

func NewWatcher(interval time.Duration) *Watcher {
	w := &Watcher{
		intv:     interval,
		mReloads: metrics.Default.Counter("config_reload_total", "Total number of config reload attempts"),
		mChanges: metrics.Default.Counter("config_change_total", "Total number of detected config changes"),
	}
	w.cur = Load()
	return w
}

// Current returns the most recently loaded configuration.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cur
}

// Subscribe returns a channel receiving Change notifications.
func (w *Watcher) Subscribe() <-chan Change {
	ch := make(chan Change, subBuf)
	w.mu.Lock()
	w.subs = append(w.subs, ch)
	w.mu.Unlock()
	return ch
}

// Start begins polling until Stop is called.
func (w *Watcher) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.mu.Lock()
	w.cancel = cancel
	w.mu.Unlock()

	go func() {
		t := time.NewTicker(w.intv)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				w.reload()
			}
		}
	}()
}

// Stop halts polling and closes subscriber channels.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	if w.cancel != nil {
		w.cancel()
	}
	for _, ch := range w.subs {
		close(ch)
	}
	w.subs = nil
}

func (w *Watcher) reload() {
	w.mReloads.Inc()
	next := Load()

	w.mu.Lock()
	old := w.cur
	fields := diff(old, next)
	if len(fields) == 0 {
		w.mu.Unlock()
		return
	}
	w.cur = next
	subs := make([]chan Change, len(w.subs))
	copy(subs, w.subs)
	w.mu.Unlock()

	w.mChanges.Inc()
	ch := Change{Old: old, New: next, Fields: fields}
	for _, s := range subs {
		select {
		case s <- ch:
		default: // subscriber lagging; drop rather than block polling
		}
	}
}

func diff(a, b *Config) []string {
	var fields []string
	if a.RolesYAMLPath != b.RolesYAMLPath {
		fields = append(fields, "RolesYAMLPath")
	}
	if a.LogLevel != b.LogLevel {
		fields = append(fields, "LogLevel")
	}
	if a.NotifyGatewayURL != b.NotifyGatewayURL {
		fields = append(fields, "NotifyGatewayURL")
	}
	if a.AdminEmail != b.AdminEmail {
		fields = append(fields, "AdminEmail")
	}
	return fields
}
