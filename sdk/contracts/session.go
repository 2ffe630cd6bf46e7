package contracts

// Session defines the operations of the MIDI session manager. At most one
// device session is open at any time; all failures surface on the state
// stream rather than as return values (MIDI I/O is best-effort and
// UI-observed, so Connect and the Send methods report nothing directly).
type Session interface {
	// ListDevices returns the candidate output devices a user can connect to,
	// freshly enumerated and filtered on each call. An empty result is valid.
	ListDevices() ([]DeviceInfo, error)

	// Connect opens a session to the target device, or to the first candidate
	// from ListDevices when target is nil. It returns immediately; the result
	// is observed through the state stream. An open session, if any, is
	// replaced.
	Connect(target *DeviceInfo)

	// Disconnect closes the open session, if any, and sets the state to
	// disconnected. Safe to call from any state, any number of times.
	Disconnect()

	// Cleanup unsubscribes from hotplug notifications, disconnects and
	// releases the transport. Using the session afterwards is undefined.
	Cleanup()

	// State reports the current connection state.
	State() ConnectionState

	// Watch registers a channel for state updates. The current state is
	// delivered immediately, subsequent transitions as they happen. Delivery
	// never blocks; updates to a full channel are dropped.
	Watch(ch chan ConnectionState)

	// SendProgramChange sends a bank-select MSB/LSB pair followed by a program
	// change on the given 1-based channel. The three frames are sent as one
	// group, never interleaved with another send.
	SendProgramChange(channel int, msb, lsb, pc uint8)

	// SendLiveSetBankChange selects the live-set bank with the given 0-based
	// index (0..7); the wire value is 1-based.
	SendLiveSetBankChange(bank int)

	// SendTranspose shifts the given 1-based channel by semitones, clamped to
	// -11..11.
	SendTranspose(channel, semitones int)
}
