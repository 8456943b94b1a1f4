package tsencap

// SystemClockFrequency is the MPEG-2 system clock frequency in Hz (27 MHz),
// against which PCR values are expressed.
const SystemClockFrequency = 27_000_000

// millisPerSecond is used throughout the bitrate/PCR conversions below.
const millisPerSecond = 1000

// pcrModulo is 2^33 * 300: PCR values (33-bit base * 300 + 9-bit extension)
// wrap at this bound.
const pcrModulo = uint64(1) << 33 * 300

// InvalidPacketIndex marks a packet-counter field as holding no value.
const InvalidPacketIndex = ^uint64(0)

// InvalidPCR marks a PCR field as holding no value.
const InvalidPCR = ^uint64(0)

// PacketBitrate computes the transport stream bitrate, in bits per second,
// implied by nPackets packets having taken ms milliseconds to transmit.
// Returns 0 if ms is 0 (an undefined rate, not a division by zero panic).
func PacketBitrate(nPackets uint64, ms uint64) uint64 {
	if ms == 0 {
		return 0
	}
	return nPackets * PacketSize * 8 * millisPerSecond / ms
}

// PacketInterval computes, in milliseconds, how long nPackets packets take
// to transmit at the given bitrate (bits per second). Returns 0 if bitrate
// is 0.
func PacketInterval(bitrate uint64, nPackets uint64) uint64 {
	if bitrate == 0 {
		return 0
	}
	return nPackets * PacketSize * 8 * millisPerSecond / bitrate
}

// InterpolatePCR returns the PCR value expected after elapsing nPackets
// packets at the given bitrate, starting from a last observed PCR value of
// last. The result wraps modulo 2^33*300, matching real PCR arithmetic.
func InterpolatePCR(last uint64, bitrate uint64, nPackets uint64) uint64 {
	distance := PacketInterval(bitrate, nPackets) * SystemClockFrequency / millisPerSecond
	return (last + distance) % pcrModulo
}
