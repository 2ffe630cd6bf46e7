package midi

import (
	"github.com/patchdeck/midi/internal/hotplug"
	"github.com/patchdeck/midi/sdk/contracts"
)

// NewSession creates a new MIDI session manager with the specified options.
// It applies defaults, selects a transport backend for the current platform
// and subscribes to hotplug notifications for the session's lifetime.
//
// The returned session starts disconnected. Call Cleanup exactly once when
// done with it.
func NewSession(opts ...contracts.Option) (contracts.Session, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}

	transport := options.Transport
	if transport == nil {
		transport, err = newTransport(&options)
		if err != nil {
			return nil, err
		}
	}

	notifier := options.Notifier
	if notifier == nil {
		notifier = hotplug.NewWatcher(transport, options.HotplugInterval, options.Logger)
	}

	session := &Session{
		logger:    options.Logger,
		transport: transport,
		state:     contracts.Disconnected(),
	}

	unsubscribe, err := notifier.Subscribe(session.onDeviceAdded, session.onDeviceRemoved)
	if err != nil {
		if cerr := transport.Close(); cerr != nil {
			options.Logger.Warn("closing transport after failed subscription",
				options.Logger.Field().Error("error", cerr))
		}
		return nil, err
	}
	session.unsubscribe = unsubscribe

	return session, nil
}
