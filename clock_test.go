package tsencap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPacketBitrate(t *testing.T) {
	assert.Equal(t, uint64(0), PacketBitrate(10, 0))

	// 1 packet (188 bytes = 1504 bits) in 1 ms is 1,504,000 bits/sec.
	assert.Equal(t, uint64(1504000), PacketBitrate(1, 1))
}

func TestPacketInterval(t *testing.T) {
	assert.Equal(t, uint64(0), PacketInterval(0, 10))
	assert.Equal(t, uint64(1), PacketInterval(1504000, 1))
}

func TestInterpolatePCR(t *testing.T) {
	pcr := InterpolatePCR(0, 1504000, 1)
	assert.Equal(t, SystemClockFrequency/1000, int(pcr))
}

func TestInterpolatePCRWraps(t *testing.T) {
	pcr := InterpolatePCR(pcrModulo-1, 1504000, 1)
	assert.Less(t, pcr, pcrModulo)
}
