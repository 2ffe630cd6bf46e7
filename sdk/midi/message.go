package midi

// MIDI status bytes and controller numbers used by the encoders.
const (
	statusControlChange = 0xB0
	statusProgramChange = 0xC0

	controllerBankSelectMSB = 0x00
	controllerBankSelectLSB = 0x20

	sysexStart     = 0xF0
	sysexEnd       = 0xF7
	manufacturerID = 0x43 // Yamaha
)

// Transpose values are centered on 64 and limited to +-11 semitones so the
// data byte stays a valid 7-bit value (53..75) on the wire.
const (
	transposeCenter = 64
	transposeRange  = 11
)

// channelByte normalizes a 1-based channel to the 0..15 wire range.
// Out-of-range inputs are clamped, never rejected. Every encoder applies this
// itself; it is the only guard against malformed upstream channel values.
func channelByte(channel int) byte {
	return byte(clampInt(channel-1, 0, 15))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ProgramChangeFrames encodes a program change with bank select as three
// frames to be sent in order as one group: Bank Select MSB (controller 0),
// Bank Select LSB (controller 32), then Program Change. msb, lsb and pc are
// used as-is; domain validation happens upstream.
func ProgramChangeFrames(channel int, msb, lsb, pc uint8) [][]byte {
	ch := channelByte(channel)
	return [][]byte{
		{statusControlChange | ch, controllerBankSelectMSB, msb},
		{statusControlChange | ch, controllerBankSelectLSB, lsb},
		{statusProgramChange | ch, pc},
	}
}

// LiveSetBankFrame encodes the manufacturer-specific SysEx that selects a
// live-set bank. bank is the 0-based index (0..7, caller-guaranteed); the
// wire carries it 1-based.
func LiveSetBankFrame(bank int) []byte {
	return []byte{
		sysexStart, manufacturerID, 0x10, 0x7F, 0x1C, 0x07,
		0x09, 0x00, 0x00, byte(bank + 1), sysexEnd,
	}
}

// TransposeFrame encodes the manufacturer-specific SysEx that transposes the
// given channel. semitones is clamped to -11..11 before the center offset is
// added, so the data byte is always in 53..75.
func TransposeFrame(channel, semitones int) []byte {
	value := byte(transposeCenter + clampInt(semitones, -transposeRange, transposeRange))
	return []byte{
		sysexStart, manufacturerID, 0x10 | channelByte(channel), 0x7F, 0x1C, 0x07,
		0x00, 0x00, 0x07, value, sysexEnd,
	}
}
