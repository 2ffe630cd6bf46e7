package contracts

import "fmt"

// ConnectionStatus enumerates the variants of ConnectionState.
type ConnectionStatus int

const (
	// StatusDisconnected indicates no device session is open.
	StatusDisconnected ConnectionStatus = iota
	// StatusConnected indicates an open session to exactly one device.
	StatusConnected
	// StatusError indicates the last operation failed; a fresh Connect may recover.
	StatusError
)

// ConnectionState is the session manager's single source of truth for session
// status. Exactly one variant is populated at a time: Device is set only for
// StatusConnected, Message only for StatusError. Transitions happen inside the
// manager; callers observe via State and Watch.
type ConnectionState struct {
	Status  ConnectionStatus
	Device  string // Connected device name.
	Message string // Failure description.
}

// Disconnected returns the initial state.
func Disconnected() ConnectionState {
	return ConnectionState{Status: StatusDisconnected}
}

// Connected returns the state for an open session to the named device.
func Connected(device string) ConnectionState {
	return ConnectionState{Status: StatusConnected, Device: device}
}

// ConnectionError returns the state for a failed operation.
func ConnectionError(message string) ConnectionState {
	return ConnectionState{Status: StatusError, Message: message}
}

func (s ConnectionState) String() string {
	switch s.Status {
	case StatusConnected:
		return fmt.Sprintf("connected to %s", s.Device)
	case StatusError:
		return fmt.Sprintf("error: %s", s.Message)
	default:
		return "disconnected"
	}
}
