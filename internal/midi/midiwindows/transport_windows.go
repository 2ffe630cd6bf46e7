//go:build windows
// +build windows

package midiwindows

import (
	"errors"
	"fmt"
	"time"
	"unsafe"

	"go.uber.org/multierr"
	"golang.org/x/sys/windows"

	"github.com/patchdeck/midi/sdk/contracts"
)

// HMIDIOUT is a winmm MIDI output device handle.
type HMIDIOUT windows.Handle

const (
	// CALLBACK_NULL requests no event callback from winmm; sends are synchronous.
	CALLBACK_NULL = 0x00000000

	// MIDIHDR flag set by the driver once a long message buffer is played out.
	MHDR_DONE = 0x00000001
)

// sysexTimeout bounds the wait for the driver to finish a long message.
const sysexTimeout = 2 * time.Second

// midiOutCaps mirrors winmm's MIDIOUTCAPSW.
type midiOutCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	wTechnology    uint16
	wVoices        uint16
	wNotes         uint16
	wChannelMask   uint16
	dwSupport      uint32
}

// midiHdr mirrors winmm's MIDIHDR for long (SysEx) messages.
type midiHdr struct {
	lpData          uintptr
	dwBufferLength  uint32
	dwBytesRecorded uint32
	dwUser          uintptr
	dwFlags         uint32
	lpNext          uintptr
	reserved        uintptr
	dwOffset        uint32
	dwReserved      [8]uintptr
}

// Load the winmm.dll library and required functions.
var (
	winmm                      = windows.NewLazySystemDLL("winmm.dll")
	procMidiOutGetNumDevs      = winmm.NewProc("midiOutGetNumDevs")
	procMidiOutGetDevCaps      = winmm.NewProc("midiOutGetDevCapsW")
	procMidiOutOpen            = winmm.NewProc("midiOutOpen")
	procMidiOutShortMsg        = winmm.NewProc("midiOutShortMsg")
	procMidiOutLongMsg         = winmm.NewProc("midiOutLongMsg")
	procMidiOutPrepareHeader   = winmm.NewProc("midiOutPrepareHeader")
	procMidiOutUnprepareHeader = winmm.NewProc("midiOutUnprepareHeader")
	procMidiOutReset           = winmm.NewProc("midiOutReset")
	procMidiOutClose           = winmm.NewProc("midiOutClose")
)

// Transport implements the transport contract on winmm output devices.
type Transport struct {
	logger contracts.Logger
}

// NewTransport creates the winmm-backed transport.
func NewTransport(options *contracts.SessionOptions) (contracts.Transport, error) {
	options.Logger.Info("winmm MIDI transport created")
	return &Transport{logger: options.Logger}, nil
}

// Devices lists the platform's current MIDI output devices. An output device
// is writable by construction, so every entry reports HasInput.
func (t *Transport) Devices() ([]contracts.DeviceInfo, error) {
	r0, _, _ := procMidiOutGetNumDevs.Call()
	numDevices := uint32(r0)

	devices := make([]contracts.DeviceInfo, 0, numDevices)
	for i := uint32(0); i < numDevices; i++ {
		caps, err := deviceCaps(i)
		if err != nil {
			t.logger.Warn("failed to get MIDI device capabilities",
				t.logger.Field().Uint64("device", uint64(i)),
				t.logger.Field().Error("error", err))
			continue
		}
		deviceName := windows.UTF16ToString(caps.szPname[:])
		devices = append(devices, contracts.DeviceInfo{
			Name:         deviceName,
			EntityName:   deviceName,
			Manufacturer: fmt.Sprintf("MID: %d PID: %d", caps.wMid, caps.wPid),
			HasInput:     true,
		})
	}
	return devices, nil
}

// Open acquires the output device matching the device name. Device IDs are
// re-resolved from the current capability list so a stale DeviceInfo cannot
// bind to a removed device.
func (t *Transport) Open(device contracts.DeviceInfo) (contracts.Port, error) {
	deviceID, found := findDeviceID(device.Name)
	if !found {
		return nil, fmt.Errorf("%w: %s", contracts.ErrNoWritablePort, device.Name)
	}

	var handle HMIDIOUT
	r1, _, _ := procMidiOutOpen.Call(
		uintptr(unsafe.Pointer(&handle)),
		uintptr(deviceID),
		0,
		0,
		uintptr(CALLBACK_NULL),
	)
	if r1 != 0 {
		return nil, fmt.Errorf("midiOutOpen failed for device %d: code %d", deviceID, r1)
	}

	t.logger.Info("MIDI output device opened",
		t.logger.Field().String("device", device.Name))
	return &port{handle: handle}, nil
}

// Close releases the transport. winmm holds no global state beyond open
// device handles, which the ports own.
func (t *Transport) Close() error {
	return nil
}

func deviceCaps(deviceID uint32) (midiOutCaps, error) {
	var caps midiOutCaps
	r1, _, _ := procMidiOutGetDevCaps.Call(
		uintptr(deviceID),
		uintptr(unsafe.Pointer(&caps)),
		unsafe.Sizeof(caps),
	)
	if r1 != 0 {
		return caps, fmt.Errorf("midiOutGetDevCaps failed: code %d", r1)
	}
	return caps, nil
}

func findDeviceID(name string) (uint32, bool) {
	r0, _, _ := procMidiOutGetNumDevs.Call()
	numDevices := uint32(r0)
	for i := uint32(0); i < numDevices; i++ {
		caps, err := deviceCaps(i)
		if err != nil {
			continue
		}
		if windows.UTF16ToString(caps.szPname[:]) == name {
			return i, true
		}
	}
	return 0, false
}

type port struct {
	handle HMIDIOUT
}

// Write sends one frame: SysEx goes through the prepared-header long message
// path, channel messages through midiOutShortMsg.
func (p *port) Write(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if data[0] == 0xF0 {
		return p.writeLong(data)
	}
	return p.writeShort(data)
}

func (p *port) writeShort(data []byte) error {
	if len(data) > 3 {
		return fmt.Errorf("short MIDI message too long: %d bytes", len(data))
	}
	var dwMsg uint32
	for i, b := range data {
		dwMsg |= uint32(b) << (8 * i)
	}
	r1, _, _ := procMidiOutShortMsg.Call(uintptr(p.handle), uintptr(dwMsg))
	if r1 != 0 {
		return fmt.Errorf("midiOutShortMsg failed: code %d", r1)
	}
	return nil
}

func (p *port) writeLong(data []byte) error {
	buffer := make([]byte, len(data))
	copy(buffer, data)

	hdr := midiHdr{
		lpData:          uintptr(unsafe.Pointer(&buffer[0])),
		dwBufferLength:  uint32(len(buffer)),
		dwBytesRecorded: uint32(len(buffer)),
	}

	r1, _, _ := procMidiOutPrepareHeader.Call(
		uintptr(p.handle),
		uintptr(unsafe.Pointer(&hdr)),
		unsafe.Sizeof(hdr),
	)
	if r1 != 0 {
		return fmt.Errorf("midiOutPrepareHeader failed: code %d", r1)
	}

	r1, _, _ = procMidiOutLongMsg.Call(
		uintptr(p.handle),
		uintptr(unsafe.Pointer(&hdr)),
		unsafe.Sizeof(hdr),
	)
	if r1 != 0 {
		p.unprepare(&hdr)
		return fmt.Errorf("midiOutLongMsg failed: code %d", r1)
	}

	deadline := time.Now().Add(sysexTimeout)
	for hdr.dwFlags&MHDR_DONE == 0 {
		if time.Now().After(deadline) {
			p.unprepare(&hdr)
			return errors.New("timed out waiting for SysEx send to complete")
		}
		time.Sleep(time.Millisecond)
	}

	return p.unprepare(&hdr)
}

func (p *port) unprepare(hdr *midiHdr) error {
	r1, _, _ := procMidiOutUnprepareHeader.Call(
		uintptr(p.handle),
		uintptr(unsafe.Pointer(hdr)),
		unsafe.Sizeof(*hdr),
	)
	if r1 != 0 {
		return fmt.Errorf("midiOutUnprepareHeader failed: code %d", r1)
	}
	return nil
}

// Close silences the device and releases its handle. Both steps run even when
// the first fails; the errors are combined.
func (p *port) Close() error {
	var errs error
	if r1, _, _ := procMidiOutReset.Call(uintptr(p.handle)); r1 != 0 {
		errs = multierr.Append(errs, fmt.Errorf("midiOutReset failed: code %d", r1))
	}
	if r1, _, _ := procMidiOutClose.Call(uintptr(p.handle)); r1 != 0 {
		errs = multierr.Append(errs, fmt.Errorf("midiOutClose failed: code %d", r1))
	}
	return errs
}
