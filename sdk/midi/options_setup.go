package midi

import (
	"time"

	"github.com/patchdeck/midi/internal/logger"
	"github.com/patchdeck/midi/sdk/contracts"
)

const (
	defaultClientName      = "Patchdeck MIDI"
	defaultHotplugInterval = 2 * time.Second
)

// applyDefaultOptions sets default values for SessionOptions if not
// explicitly provided.
func applyDefaultOptions(opts ...contracts.Option) (contracts.SessionOptions, error) {
	options := &contracts.SessionOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if options.LogLevel == 0 {
		options.LogLevel = contracts.InfoLevel
	}
	if options.ClientName == "" {
		options.ClientName = defaultClientName
	}
	if options.HotplugInterval <= 0 {
		options.HotplugInterval = defaultHotplugInterval
	}

	options.Logger.SetLevel(options.LogLevel)
	return *options, nil
}
