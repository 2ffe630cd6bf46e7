// Package hotplug implements the Notifier contract by polling a transport's
// device list. None of the supported platforms exposes a portable hotplug
// callback, so the watcher diffs successive snapshots instead.
package hotplug

import (
	"sync"
	"time"

	"github.com/patchdeck/midi/sdk/contracts"
)

// Watcher polls a transport for device list changes and reports them as add
// and remove events. Devices are tracked by name.
type Watcher struct {
	transport contracts.Transport
	interval  time.Duration
	logger    contracts.Logger
}

// NewWatcher creates a watcher polling transport at the given interval.
func NewWatcher(transport contracts.Transport, interval time.Duration, logger contracts.Logger) *Watcher {
	return &Watcher{
		transport: transport,
		interval:  interval,
		logger:    logger,
	}
}

// Subscribe takes a baseline device snapshot, then starts a polling goroutine
// delivering add and remove callbacks until the returned cancel function is
// called. Cancel is idempotent.
func (w *Watcher) Subscribe(added, removed func(contracts.DeviceInfo)) (func(), error) {
	seen := w.snapshot()
	stop := make(chan struct{})
	var once sync.Once

	go w.poll(seen, stop, added, removed)

	return func() {
		once.Do(func() {
			close(stop)
		})
	}, nil
}

func (w *Watcher) poll(seen map[string]contracts.DeviceInfo, stop <-chan struct{}, added, removed func(contracts.DeviceInfo)) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			devices, err := w.transport.Devices()
			if err != nil {
				w.logger.Debug("hotplug poll failed", w.logger.Field().Error("error", err))
				continue
			}

			current := make(map[string]contracts.DeviceInfo, len(devices))
			for _, device := range devices {
				if device.Name == "" {
					continue
				}
				current[device.Name] = device
			}

			for name, device := range seen {
				if _, ok := current[name]; !ok {
					removed(device)
				}
			}
			for name, device := range current {
				if _, ok := seen[name]; !ok {
					added(device)
				}
			}
			seen = current
		}
	}
}

// snapshot takes the initial device set. An enumeration failure here starts
// the watcher with an empty set; the devices then surface as add events on
// the first successful poll, which triggers no action downstream.
func (w *Watcher) snapshot() map[string]contracts.DeviceInfo {
	seen := make(map[string]contracts.DeviceInfo)
	devices, err := w.transport.Devices()
	if err != nil {
		w.logger.Warn("initial hotplug snapshot failed", w.logger.Field().Error("error", err))
		return seen
	}
	for _, device := range devices {
		if device.Name != "" {
			seen[device.Name] = device
		}
	}
	return seen
}
