package contracts

import "time"

// SessionOptions defines the configuration options for the MIDI session.
type SessionOptions struct {
	Logger          Logger        // Logger for session events and errors.
	LogLevel        LogLevel      // Level of logging to use.
	ClientName      string        // Name the session registers with the platform MIDI subsystem.
	Transport       Transport     // Transport backend; nil selects the platform default.
	Notifier        Notifier      // Hotplug source; nil selects the polling watcher.
	HotplugInterval time.Duration // Poll interval for the default hotplug watcher.
}

// Option is a function that modifies SessionOptions.
type Option func(*SessionOptions)

// WithLogger sets the logger for the session.
func WithLogger(l Logger) Option {
	return func(opts *SessionOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level for the session.
func WithLogLevel(level LogLevel) Option {
	return func(opts *SessionOptions) {
		opts.LogLevel = level
	}
}

// WithClientName sets the name the session registers with the platform MIDI
// subsystem.
func WithClientName(name string) Option {
	return func(opts *SessionOptions) {
		opts.ClientName = name
	}
}

// WithTransport overrides the platform transport backend.
func WithTransport(t Transport) Option {
	return func(opts *SessionOptions) {
		opts.Transport = t
	}
}

// WithNotifier overrides the hotplug notification source.
func WithNotifier(n Notifier) Option {
	return func(opts *SessionOptions) {
		opts.Notifier = n
	}
}

// WithHotplugInterval sets the poll interval of the default hotplug watcher.
func WithHotplugInterval(interval time.Duration) Option {
	return func(opts *SessionOptions) {
		opts.HotplugInterval = interval
	}
}
