package contracts

import "errors"

// ErrNoWritablePort is returned by Transport.Open when the device exposes no
// port in the sending direction.
var ErrNoWritablePort = errors.New("no writable port available")

// Port is an open, exclusive write channel to a single device. Ports are
// owned by the session manager and never handed to callers.
type Port interface {
	// Write sends one complete MIDI frame (channel message or SysEx) to the device.
	Write(data []byte) error
	// Close releases the port and any device resources behind it.
	Close() error
}

// Transport abstracts the host platform's MIDI subsystem: device enumeration
// and port lifecycle. Implementations live under internal/midi.
type Transport interface {
	// Devices reports the platform's current device list, freshly computed on
	// each call. The transport applies no filtering policy of its own.
	Devices() ([]DeviceInfo, error)
	// Open acquires a writable port on the given device. It wraps
	// ErrNoWritablePort when the device has no port in the sending direction.
	Open(device DeviceInfo) (Port, error)
	// Close releases the transport's backend. The transport is unusable afterwards.
	Close() error
}

// Notifier delivers device hotplug notifications for the lifetime of a
// subscription.
type Notifier interface {
	// Subscribe registers callbacks for device add and remove events and
	// returns a cancel function that stops delivery. Callbacks may be invoked
	// from the notifier's own goroutine.
	Subscribe(added, removed func(DeviceInfo)) (cancel func(), err error)
}
