package midi

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchdeck/midi/sdk/contracts"
)

// nopLogger keeps the tests quiet.
type nopLogger struct{}

func (nopLogger) Info(string, ...contracts.Field)  {}
func (nopLogger) Error(string, ...contracts.Field) {}
func (nopLogger) Debug(string, ...contracts.Field) {}
func (nopLogger) Warn(string, ...contracts.Field)  {}
func (nopLogger) Fatal(string, ...contracts.Field) {}
func (nopLogger) Field() contracts.Field           { return nopField{} }
func (nopLogger) SetLevel(contracts.LogLevel)      {}

type nopField struct{}

func (f nopField) Bool(string, bool) contracts.Field       { return f }
func (f nopField) Int(string, int) contracts.Field         { return f }
func (f nopField) Float64(string, float64) contracts.Field { return f }
func (f nopField) String(string, string) contracts.Field   { return f }
func (f nopField) Time(string, time.Time) contracts.Field  { return f }
func (f nopField) Int64(string, int64) contracts.Field     { return f }
func (f nopField) Error(string, error) contracts.Field     { return f }
func (f nopField) Uint64(string, uint64) contracts.Field   { return f }
func (f nopField) Uint8(string, uint8) contracts.Field     { return f }

type stubPort struct {
	mu         sync.Mutex
	frames     [][]byte
	closeCount int
}

func (p *stubPort) Write(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	frame := make([]byte, len(data))
	copy(frame, data)
	p.frames = append(p.frames, frame)
	return nil
}

func (p *stubPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeCount++
	return nil
}

func (p *stubPort) sentFrames() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]byte(nil), p.frames...)
}

func (p *stubPort) closed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeCount
}

type stubTransport struct {
	mu       sync.Mutex
	devices  []contracts.DeviceInfo
	openErr  error
	openGate chan struct{} // When non-nil, Open blocks until the gate closes.
	opened   []contracts.DeviceInfo
	ports    []*stubPort
	isClosed bool
}

func (t *stubTransport) Devices() ([]contracts.DeviceInfo, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]contracts.DeviceInfo(nil), t.devices...), nil
}

func (t *stubTransport) Open(device contracts.DeviceInfo) (contracts.Port, error) {
	t.mu.Lock()
	gate := t.openGate
	t.mu.Unlock()
	if gate != nil {
		<-gate
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.opened = append(t.opened, device)
	if t.openErr != nil {
		return nil, t.openErr
	}
	port := &stubPort{}
	t.ports = append(t.ports, port)
	return port, nil
}

func (t *stubTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.isClosed = true
	return nil
}

func (t *stubTransport) lastPort() *stubPort {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.ports) == 0 {
		return nil
	}
	return t.ports[len(t.ports)-1]
}

func (t *stubTransport) openedDevices() []contracts.DeviceInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]contracts.DeviceInfo(nil), t.opened...)
}

func (t *stubTransport) closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.isClosed
}

type stubNotifier struct {
	mu        sync.Mutex
	added     func(contracts.DeviceInfo)
	removed   func(contracts.DeviceInfo)
	cancelled bool
}

func (n *stubNotifier) Subscribe(added, removed func(contracts.DeviceInfo)) (func(), error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.added = added
	n.removed = removed
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		n.cancelled = true
	}, nil
}

func (n *stubNotifier) deviceRemoved(device contracts.DeviceInfo) {
	n.mu.Lock()
	removed := n.removed
	n.mu.Unlock()
	removed(device)
}

func (n *stubNotifier) isCancelled() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.cancelled
}

func newTestSession(t *testing.T, transport contracts.Transport, notifier contracts.Notifier) contracts.Session {
	t.Helper()
	session, err := NewSession(
		contracts.WithTransport(transport),
		contracts.WithNotifier(notifier),
		contracts.WithLogger(nopLogger{}),
	)
	require.NoError(t, err)
	return session
}

func watchStates(session contracts.Session) chan contracts.ConnectionState {
	ch := make(chan contracts.ConnectionState, 32)
	session.Watch(ch)
	return ch
}

func waitForStatus(t *testing.T, ch chan contracts.ConnectionState, status contracts.ConnectionStatus) contracts.ConnectionState {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case state := <-ch:
			if state.Status == status {
				return state
			}
		case <-deadline:
			t.Fatalf("timed out waiting for status %v", status)
		}
	}
}

func stagePiano() contracts.DeviceInfo {
	return contracts.DeviceInfo{Name: "Stage Piano", HasInput: true}
}

func TestWatchDeliversInitialState(t *testing.T) {
	session := newTestSession(t, &stubTransport{}, &stubNotifier{})
	defer session.Cleanup()

	ch := watchStates(session)
	state := <-ch
	assert.Equal(t, contracts.Disconnected(), state)
}

func TestListDevicesFiltering(t *testing.T) {
	transport := &stubTransport{devices: []contracts.DeviceInfo{
		{Name: "Midi Through Port", HasInput: true},
		{Name: "MIDI THROUGH 14:0", HasInput: true},
		{Name: "Silent Box", HasInput: false},
		{Name: "", HasInput: true},
		stagePiano(),
	}}
	session := newTestSession(t, transport, &stubNotifier{})
	defer session.Cleanup()

	devices, err := session.ListDevices()
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "Stage Piano", devices[0].Name)
}

func TestConnectFirstCandidate(t *testing.T) {
	transport := &stubTransport{devices: []contracts.DeviceInfo{
		{Name: "Midi Through Port", HasInput: true},
		stagePiano(),
	}}
	session := newTestSession(t, transport, &stubNotifier{})
	defer session.Cleanup()
	ch := watchStates(session)

	session.Connect(nil)

	state := waitForStatus(t, ch, contracts.StatusConnected)
	assert.Equal(t, "Stage Piano", state.Device)
	require.Len(t, transport.openedDevices(), 1)
	assert.Equal(t, "Stage Piano", transport.openedDevices()[0].Name)
}

func TestConnectExplicitTarget(t *testing.T) {
	second := contracts.DeviceInfo{Name: "Tone Module", HasInput: true}
	transport := &stubTransport{devices: []contracts.DeviceInfo{stagePiano(), second}}
	session := newTestSession(t, transport, &stubNotifier{})
	defer session.Cleanup()
	ch := watchStates(session)

	session.Connect(&second)

	state := waitForStatus(t, ch, contracts.StatusConnected)
	assert.Equal(t, "Tone Module", state.Device)
}

func TestConnectNoDevices(t *testing.T) {
	session := newTestSession(t, &stubTransport{}, &stubNotifier{})
	defer session.Cleanup()
	ch := watchStates(session)

	session.Connect(nil)

	state := waitForStatus(t, ch, contracts.StatusError)
	assert.Equal(t, "No MIDI devices found", state.Message)
}

func TestConnectNoWritablePort(t *testing.T) {
	transport := &stubTransport{
		devices: []contracts.DeviceInfo{stagePiano()},
		openErr: fmt.Errorf("device open: %w", contracts.ErrNoWritablePort),
	}
	session := newTestSession(t, transport, &stubNotifier{})
	defer session.Cleanup()
	ch := watchStates(session)

	session.Connect(nil)

	state := waitForStatus(t, ch, contracts.StatusError)
	assert.Equal(t, "No input ports available", state.Message)
}

func TestConnectOpenFailure(t *testing.T) {
	transport := &stubTransport{
		devices: []contracts.DeviceInfo{stagePiano()},
		openErr: errors.New("driver exploded"),
	}
	session := newTestSession(t, transport, &stubNotifier{})
	defer session.Cleanup()
	ch := watchStates(session)

	session.Connect(nil)

	state := waitForStatus(t, ch, contracts.StatusError)
	assert.Equal(t, "Failed to open device", state.Message)
}

func TestConnectRecoversFromError(t *testing.T) {
	transport := &stubTransport{devices: []contracts.DeviceInfo{stagePiano()}, openErr: errors.New("busy")}
	session := newTestSession(t, transport, &stubNotifier{})
	defer session.Cleanup()
	ch := watchStates(session)

	session.Connect(nil)
	waitForStatus(t, ch, contracts.StatusError)

	transport.mu.Lock()
	transport.openErr = nil
	transport.mu.Unlock()

	session.Connect(nil)
	state := waitForStatus(t, ch, contracts.StatusConnected)
	assert.Equal(t, "Stage Piano", state.Device)
}

func TestReconnectReplacesPort(t *testing.T) {
	transport := &stubTransport{devices: []contracts.DeviceInfo{stagePiano()}}
	session := newTestSession(t, transport, &stubNotifier{})
	defer session.Cleanup()
	ch := watchStates(session)

	session.Connect(nil)
	waitForStatus(t, ch, contracts.StatusConnected)
	first := transport.lastPort()

	session.Connect(nil)
	waitForStatus(t, ch, contracts.StatusConnected)

	require.Eventually(t, func() bool {
		return first.closed() == 1
	}, 2*time.Second, 10*time.Millisecond, "first port should be closed on reconnect")
}

func TestSendProgramChangeFrames(t *testing.T) {
	transport := &stubTransport{devices: []contracts.DeviceInfo{stagePiano()}}
	session := newTestSession(t, transport, &stubNotifier{})
	defer session.Cleanup()
	ch := watchStates(session)

	session.Connect(nil)
	waitForStatus(t, ch, contracts.StatusConnected)

	session.SendProgramChange(1, 62, 3, 7)

	assert.Equal(t, [][]byte{
		{0xB0, 0x00, 62},
		{0xB0, 0x20, 3},
		{0xC0, 7},
	}, transport.lastPort().sentFrames())
}

func TestSendSysExFrames(t *testing.T) {
	transport := &stubTransport{devices: []contracts.DeviceInfo{stagePiano()}}
	session := newTestSession(t, transport, &stubNotifier{})
	defer session.Cleanup()
	ch := watchStates(session)

	session.Connect(nil)
	waitForStatus(t, ch, contracts.StatusConnected)

	session.SendLiveSetBankChange(0)
	session.SendTranspose(1, 11)

	assert.Equal(t, [][]byte{
		{0xF0, 0x43, 0x10, 0x7F, 0x1C, 0x07, 0x09, 0x00, 0x00, 0x01, 0xF7},
		{0xF0, 0x43, 0x10, 0x7F, 0x1C, 0x07, 0x00, 0x00, 0x07, 75, 0xF7},
	}, transport.lastPort().sentFrames())
}

func TestSendWithoutSession(t *testing.T) {
	session := newTestSession(t, &stubTransport{}, &stubNotifier{})
	defer session.Cleanup()

	session.SendProgramChange(1, 0, 0, 0)

	state := session.State()
	assert.Equal(t, contracts.StatusError, state.Status)
	assert.Equal(t, "Not connected", state.Message)
}

func TestDisconnectIdempotent(t *testing.T) {
	transport := &stubTransport{devices: []contracts.DeviceInfo{stagePiano()}}
	session := newTestSession(t, transport, &stubNotifier{})
	defer session.Cleanup()
	ch := watchStates(session)

	session.Connect(nil)
	waitForStatus(t, ch, contracts.StatusConnected)
	port := transport.lastPort()

	session.Disconnect()
	assert.Equal(t, contracts.StatusDisconnected, session.State().Status)

	session.Disconnect()
	assert.Equal(t, contracts.StatusDisconnected, session.State().Status)
	assert.Equal(t, 1, port.closed())
}

func TestHotplugRemovalOfConnectedDevice(t *testing.T) {
	transport := &stubTransport{devices: []contracts.DeviceInfo{stagePiano()}}
	notifier := &stubNotifier{}
	session := newTestSession(t, transport, notifier)
	defer session.Cleanup()
	ch := watchStates(session)

	session.Connect(nil)
	waitForStatus(t, ch, contracts.StatusConnected)
	port := transport.lastPort()

	notifier.deviceRemoved(stagePiano())

	assert.Equal(t, contracts.StatusDisconnected, session.State().Status)
	assert.Equal(t, 1, port.closed())
}

func TestHotplugRemovalOfOtherDevice(t *testing.T) {
	transport := &stubTransport{devices: []contracts.DeviceInfo{stagePiano()}}
	notifier := &stubNotifier{}
	session := newTestSession(t, transport, notifier)
	defer session.Cleanup()
	ch := watchStates(session)

	session.Connect(nil)
	waitForStatus(t, ch, contracts.StatusConnected)

	notifier.deviceRemoved(contracts.DeviceInfo{Name: "Tone Module"})

	state := session.State()
	assert.Equal(t, contracts.StatusConnected, state.Status)
	assert.Equal(t, "Stage Piano", state.Device)
}

func TestStaleOpenCompletionDiscarded(t *testing.T) {
	gate := make(chan struct{})
	transport := &stubTransport{
		devices:  []contracts.DeviceInfo{stagePiano()},
		openGate: gate,
	}
	session := newTestSession(t, transport, &stubNotifier{})
	defer session.Cleanup()

	session.Connect(nil)
	session.Disconnect() // Supersedes the in-flight open.
	close(gate)

	require.Eventually(t, func() bool {
		port := transport.lastPort()
		return port != nil && port.closed() == 1
	}, 2*time.Second, 10*time.Millisecond, "stale open should close its port")
	assert.Equal(t, contracts.StatusDisconnected, session.State().Status)
}

func TestCleanup(t *testing.T) {
	transport := &stubTransport{devices: []contracts.DeviceInfo{stagePiano()}}
	notifier := &stubNotifier{}
	session := newTestSession(t, transport, notifier)
	ch := watchStates(session)

	session.Connect(nil)
	waitForStatus(t, ch, contracts.StatusConnected)

	session.Cleanup()

	assert.True(t, notifier.isCancelled())
	assert.True(t, transport.closed())
	assert.Equal(t, contracts.StatusDisconnected, session.State().Status)

	// Second Cleanup is a no-op.
	session.Cleanup()
}
