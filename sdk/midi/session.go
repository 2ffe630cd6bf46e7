package midi

import (
	"errors"
	"strings"
	"sync"

	"github.com/patchdeck/midi/sdk/contracts"
)

// State stream messages for the four failure modes. These are the exact
// strings the host UI displays, so they stay stable.
const (
	msgNoDevicesFound = "No MIDI devices found"
	msgNoInputPorts   = "No input ports available"
	msgOpenFailed     = "Failed to open device"
	msgNotConnected   = "Not connected"
)

// Session manages the connection to a single MIDI device and encodes domain
// actions into wire frames. All mutable state (port, device, state, watchers,
// connect generation) lives behind one mutex; operations are brief.
type Session struct {
	logger    contracts.Logger
	transport contracts.Transport

	mu         sync.Mutex
	port       contracts.Port
	device     contracts.DeviceInfo
	state      contracts.ConnectionState
	watchers   []chan contracts.ConnectionState
	connectSeq uint64 // Bumped by Connect and Disconnect; stale opens compare against it.

	unsubscribe func()
	cleanupOnce sync.Once
}

// ListDevices enumerates candidate output devices. The platform list is
// fetched fresh on each call; virtual thru ports, devices without a writable
// direction and unnamed devices are filtered out. Platform order is kept and
// an empty result is not an error.
func (s *Session) ListDevices() ([]contracts.DeviceInfo, error) {
	devices, err := s.transport.Devices()
	if err != nil {
		return nil, err
	}

	candidates := make([]contracts.DeviceInfo, 0, len(devices))
	for _, device := range devices {
		if device.Name == "" || !device.HasInput {
			continue
		}
		if strings.Contains(strings.ToLower(device.Name), "through") {
			continue
		}
		candidates = append(candidates, device)
	}
	return candidates, nil
}

// Connect opens a session to target, or to the first candidate from
// ListDevices when target is nil. The open runs asynchronously; the caller
// observes the outcome through the state stream. Any previously open session
// is replaced.
func (s *Session) Connect(target *contracts.DeviceInfo) {
	s.mu.Lock()
	s.connectSeq++
	seq := s.connectSeq
	s.mu.Unlock()

	go s.open(seq, target)
}

// open resolves the target device, acquires a port and commits the result.
// It runs outside the lock; commit discards the result if another Connect or
// Disconnect superseded this attempt in the meantime.
func (s *Session) open(seq uint64, target *contracts.DeviceInfo) {
	device := target
	if device == nil {
		candidates, err := s.ListDevices()
		if err != nil || len(candidates) == 0 {
			if err != nil {
				s.logger.Error("device enumeration failed", s.logger.Field().Error("error", err))
			}
			s.commit(seq, nil, contracts.DeviceInfo{}, contracts.ConnectionError(msgNoDevicesFound))
			return
		}
		device = &candidates[0]
	}

	port, err := s.transport.Open(*device)
	if err != nil {
		s.logger.Error("failed to open MIDI device",
			s.logger.Field().String("device", device.Name),
			s.logger.Field().Error("error", err))
		message := msgOpenFailed
		if errors.Is(err, contracts.ErrNoWritablePort) {
			message = msgNoInputPorts
		}
		s.commit(seq, nil, contracts.DeviceInfo{}, contracts.ConnectionError(message))
		return
	}

	s.logger.Info("MIDI device connected", s.logger.Field().String("device", device.Name))
	s.commit(seq, port, *device, contracts.Connected(device.Name))
}

// commit installs the outcome of a connect attempt if it is still the current
// one. A superseded attempt only closes the port it may have opened.
func (s *Session) commit(seq uint64, port contracts.Port, device contracts.DeviceInfo, state contracts.ConnectionState) {
	s.mu.Lock()
	if seq != s.connectSeq {
		s.mu.Unlock()
		if port != nil {
			if err := port.Close(); err != nil {
				s.logger.Warn("closing superseded port", s.logger.Field().Error("error", err))
			}
		}
		return
	}
	previous := s.port
	s.port = port
	s.device = device
	s.setStateLocked(state)
	s.mu.Unlock()

	if previous != nil {
		if err := previous.Close(); err != nil {
			s.logger.Warn("closing replaced port", s.logger.Field().Error("error", err))
		}
	}
}

// Disconnect closes the open session, if any, and unconditionally sets the
// state to disconnected. Idempotent; also supersedes any in-flight Connect.
func (s *Session) Disconnect() {
	s.disconnect(nil)
}

// disconnect tears the session down. When match is non-nil the teardown only
// happens if match reports true for the currently connected device; this is
// the hotplug-removal path and must not touch sessions to other devices.
func (s *Session) disconnect(match func(contracts.DeviceInfo) bool) {
	s.mu.Lock()
	if match != nil && (s.port == nil || !match(s.device)) {
		s.mu.Unlock()
		return
	}
	s.connectSeq++
	port := s.port
	s.port = nil
	s.device = contracts.DeviceInfo{}
	s.setStateLocked(contracts.Disconnected())
	s.mu.Unlock()

	if port != nil {
		if err := port.Close(); err != nil {
			s.logger.Warn("closing port on disconnect", s.logger.Field().Error("error", err))
		}
	}
}

// Cleanup unsubscribes from hotplug notifications, disconnects and releases
// the transport backend. Runs once; later calls are no-ops.
func (s *Session) Cleanup() {
	s.cleanupOnce.Do(func() {
		if s.unsubscribe != nil {
			s.unsubscribe()
		}
		s.Disconnect()
		if err := s.transport.Close(); err != nil {
			s.logger.Warn("closing transport", s.logger.Field().Error("error", err))
		}
		s.mu.Lock()
		s.watchers = nil
		s.mu.Unlock()
	})
}

// State reports the current connection state.
func (s *Session) State() contracts.ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Watch registers ch for state updates. The current state is delivered
// immediately, later transitions as they happen. Sends never block; an update
// to a full channel is dropped with a warning.
func (s *Session) Watch(ch chan contracts.ConnectionState) {
	if ch == nil {
		s.logger.Error("Watch called with nil channel")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, ch)
	s.notifyLocked(ch, s.state)
}

func (s *Session) setStateLocked(state contracts.ConnectionState) {
	s.state = state
	for _, ch := range s.watchers {
		s.notifyLocked(ch, state)
	}
}

func (s *Session) notifyLocked(ch chan contracts.ConnectionState, state contracts.ConnectionState) {
	select {
	case ch <- state:
	default:
		s.logger.Warn("state watcher buffer full; dropping update")
	}
}

// onDeviceAdded handles hotplug add notifications. Observed only; no
// automatic reconnect.
func (s *Session) onDeviceAdded(device contracts.DeviceInfo) {
	s.logger.Debug("MIDI device added", s.logger.Field().String("device", device.Name))
}

// onDeviceRemoved handles hotplug remove notifications. A removal matching
// the connected device's identity runs the disconnect path; anything else is
// ignored.
func (s *Session) onDeviceRemoved(device contracts.DeviceInfo) {
	s.logger.Debug("MIDI device removed", s.logger.Field().String("device", device.Name))
	s.disconnect(func(current contracts.DeviceInfo) bool {
		return current.Name == device.Name
	})
}

// SendProgramChange sends a bank-select pair and a program change on the
// given 1-based channel as one uninterleaved group.
func (s *Session) SendProgramChange(channel int, msb, lsb, pc uint8) {
	s.send(ProgramChangeFrames(channel, msb, lsb, pc)...)
}

// SendLiveSetBankChange selects the live-set bank with the given 0-based
// index.
func (s *Session) SendLiveSetBankChange(bank int) {
	s.send(LiveSetBankFrame(bank))
}

// SendTranspose shifts the given 1-based channel by semitones, clamped to
// -11..11.
func (s *Session) SendTranspose(channel, semitones int) {
	s.send(TransposeFrame(channel, semitones))
}

// send writes the frames of one logical action back-to-back under the session
// lock. With no open session it records the not-connected error on the state
// stream and returns; send never reports failure to the caller directly.
func (s *Session) send(frames ...[]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port == nil {
		s.logger.Warn("send attempted with no open session")
		s.setStateLocked(contracts.ConnectionError(msgNotConnected))
		return
	}

	for _, frame := range frames {
		if err := s.port.Write(frame); err != nil {
			s.logger.Error("MIDI write failed",
				s.logger.Field().String("device", s.device.Name),
				s.logger.Field().Error("error", err))
			return
		}
	}
}
