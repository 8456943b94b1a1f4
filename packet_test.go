package tsencap

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/asticode/go-astikit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPacket assembles a 188-byte TS packet fixture with astikit's bit
// writer, the same fixture-construction idiom the teacher's own
// packet_test.go uses for header/adaptation-field/PCR bytes.
func buildPacket(pid uint16, cc uint8, pusi bool, hasAF bool, pcr *uint64, fillPayload bool) *Packet {
	buf := &bytes.Buffer{}
	w := astikit.NewBitsWriter(astikit.BitsWriterOptions{Writer: buf})

	w.Write(uint8(SyncByte))
	w.Write(false)                     // transport error indicator
	w.Write(pusi)                      // payload unit start indicator
	w.Write(true)                      // transport priority
	w.Write(fmt.Sprintf("%.13b", pid)) // PID
	w.Write("00")                      // scrambling control
	if hasAF {
		w.Write("11") // adaptation field + payload
	} else {
		w.Write("01") // payload only
	}
	w.Write(fmt.Sprintf("%.4b", cc)) // continuity counter

	if hasAF {
		afLength := uint8(1)
		if pcr != nil {
			afLength += 6
		}
		w.Write(afLength)
		w.Write(false)      // discontinuity indicator
		w.Write(false)      // random access indicator
		w.Write(false)      // elementary stream priority indicator
		w.Write(pcr != nil) // PCR flag
		w.Write(false)      // OPCR flag
		w.Write(false)      // splicing point flag
		w.Write(false)      // transport private data flag
		w.Write(false)      // adaptation field extension flag
		if pcr != nil {
			w.WriteN(*pcr/300, 33)    // PCR base
			w.WriteN(uint64(0x3f), 6) // reserved
			w.WriteN(*pcr%300, 9)     // PCR extension
		}
	}

	var p Packet
	n := copy(p[:], buf.Bytes())
	for i := n; i < PacketSize; i++ {
		if fillPayload {
			p[i] = byte(i)
		} else {
			p[i] = 0xff
		}
	}
	return &p
}

func nullPacket() *Packet {
	return buildPacket(NullPID, 0, false, false, nil, false)
}

func TestPacketSync(t *testing.T) {
	p := nullPacket()
	assert.True(t, p.Sync())

	it := astikit.NewBytesIterator(p[:])
	b, err := it.NextByte()
	require.NoError(t, err)
	assert.Equal(t, byte(SyncByte), b)

	p[0] = 0
	assert.False(t, p.Sync())
}

func TestPacketPID(t *testing.T) {
	p := buildPacket(0x100, 0, false, false, nil, false)
	assert.Equal(t, uint16(0x100), p.PID())

	p.SetPID(0x1fff)
	assert.Equal(t, NullPID, p.PID())
}

func TestPacketCC(t *testing.T) {
	p := buildPacket(0x100, 7, false, false, nil, false)
	assert.Equal(t, uint8(7), p.CC())
	p.SetCC(0xff)
	assert.Equal(t, uint8(0xf), p.CC())
}

func TestPacketPUSI(t *testing.T) {
	p := buildPacket(0x100, 0, false, false, nil, false)
	assert.False(t, p.PUSI())

	p = buildPacket(0x100, 0, true, false, nil, false)
	assert.True(t, p.PUSI())
}

func TestPacketHeaderSizeNoAdaptationField(t *testing.T) {
	p := nullPacket()
	assert.Equal(t, 4, p.HeaderSize())
	assert.False(t, p.HasPCR())
}

func TestPacketPCRRoundTrip(t *testing.T) {
	const pcr = uint64(1234567890)
	p := buildPacket(0, 0, false, true, &pcr, false)

	assert.True(t, p.HasPCR())
	assert.Equal(t, pcr, p.PCR())
	assert.Equal(t, 12, p.HeaderSize())
}

func TestPacketSetPCRMatchesFixtureEncoding(t *testing.T) {
	const pcr = uint64(987654321)
	fixture := buildPacket(0x100, 0, false, true, &pcr, false)

	var p Packet
	it := astikit.NewBytesIterator(fixture[:])
	header, err := it.NextBytes(6)
	require.NoError(t, err)
	copy(p[:6], header)
	p.SetPCR(pcr)

	assert.Equal(t, fixture[:12], p[:12])
}
