package contracts

// DeviceInfo describes a MIDI endpoint the session manager can write to.
type DeviceInfo struct {
	Name         string // Device display name; mandatory for display and matching.
	Manufacturer string // Device manufacturer, when the platform reports one.
	EntityName   string // Name of the entity to which the device belongs.
	HasInput     bool   // True when the device exposes a port we can send to.
}
