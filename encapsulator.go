package tsencap

import "fmt"

// DefaultMaxBufferedPackets is used by NewEncapsulator and is the
// recommended late-queue bound for typical bitrates.
const DefaultMaxBufferedPackets = 128

// minMaxBufferedPackets is the floor SetMaxBufferedPackets clamps to: below
// this, there isn't enough slack to absorb normal null-packet jitter.
const minMaxBufferedPackets = 8

// continuityCounterMask wraps the 4-bit continuity counter.
const continuityCounterMask = 0xf

// Encapsulator is a stateful filter that diverts packets on a configured
// set of input PIDs into an inner byte stream, and re-emits that stream
// inside a new outer PID by repackaging it into outer TS packets with
// correct headers, continuity counters, PUSI/pointer fields, and
// optionally interpolated PCR.
//
// Encapsulator is not safe for concurrent use: all public methods must be
// called from a single owning goroutine, the same contract the teacher's
// Muxer and Demuxer types carry (no internal locking, caller serializes).
type Encapsulator struct {
	pidOutput    uint16
	pidInput     *PIDSet
	pcrReference uint16 // NullPID means "no reference configured"
	packing      bool

	currentPacket uint64

	pcrLastPacket uint64 // InvalidPacketIndex when unknown
	pcrLastValue  uint64 // InvalidPCR when unknown
	bitrate       uint64
	insertPCR     bool

	ccOutput uint8
	lastCC   map[uint16]uint8

	late           lateQueue
	lateMaxPackets int
	lateIndex      int

	lastError string
}

// NewEncapsulator constructs an Encapsulator targeting pidOutput, diverting
// packets whose PID is in pidInput into the inner stream, and (if
// pcrReference is not NullPID) deriving bitrate/PCR interpolation from PCRs
// observed on pcrReference. A nil pidInput is treated as empty.
func NewEncapsulator(pidOutput uint16, pidInput *PIDSet, pcrReference uint16) *Encapsulator {
	e := &Encapsulator{}
	e.Reset(pidOutput, pidInput, pcrReference)
	return e
}

// Reset re-initializes the encapsulator the same way NewEncapsulator does,
// discarding all queued packets, continuity state, and PCR synchronization,
// and turning packing off. A late-queue bound set earlier with
// SetMaxBufferedPackets is kept.
func (e *Encapsulator) Reset(pidOutput uint16, pidInput *PIDSet, pcrReference uint16) {
	e.packing = false
	e.pidOutput = pidOutput
	e.pidInput = cloneOrEmptyPIDSet(pidInput)
	e.pidInput.Reset(NullPID)
	e.pcrReference = pcrReference
	e.lastError = ""
	e.currentPacket = 0
	e.ccOutput = 0
	e.lastCC = make(map[uint16]uint8)
	e.lateIndex = 0
	e.late.reset()
	if e.lateMaxPackets < minMaxBufferedPackets {
		e.lateMaxPackets = DefaultMaxBufferedPackets
	}
	e.resetPCRSync()
}

func cloneOrEmptyPIDSet(s *PIDSet) *PIDSet {
	if s == nil {
		return NewPIDSet()
	}
	return s.Clone()
}

// resetPCRSync discards PCR/bitrate synchronization state. Called on
// construction, on continuity discontinuity, on reference PID change, and
// by Reset.
func (e *Encapsulator) resetPCRSync() {
	e.pcrLastPacket = InvalidPacketIndex
	e.pcrLastValue = InvalidPCR
	e.bitrate = 0
	e.insertPCR = false
}

// SetOutputPID changes the outer PID that the inner stream is injected
// into. Changing it discards the late queue, the output continuity
// counter, and per-PID continuity tracking, since those are only
// meaningful relative to a specific output PID.
func (e *Encapsulator) SetOutputPID(pid uint16) {
	if pid == e.pidOutput {
		return
	}
	e.pidOutput = pid
	e.ccOutput = 0
	e.lastCC = make(map[uint16]uint8)
	e.lateIndex = 0
	e.late.reset()
}

// SetReferencePCR changes the PID that PCR observations are drawn from.
// Changing it resets PCR synchronization.
func (e *Encapsulator) SetReferencePCR(pid uint16) {
	if pid == e.pcrReference {
		return
	}
	e.pcrReference = pid
	e.resetPCRSync()
}

// SetInputPIDs replaces the set of input PIDs wholesale. NullPID is always
// excluded, even if present in pids.
func (e *Encapsulator) SetInputPIDs(pids *PIDSet) {
	e.pidInput = cloneOrEmptyPIDSet(pids)
	e.pidInput.Reset(NullPID)
}

// AddInputPID adds a single PID to the input set. A no-op for NullPID.
func (e *Encapsulator) AddInputPID(pid uint16) {
	if pid != NullPID {
		e.pidInput.Set(pid)
	}
}

// RemoveInputPID removes a single PID from the input set.
func (e *Encapsulator) RemoveInputPID(pid uint16) {
	if pid != NullPID {
		e.pidInput.Reset(pid)
	}
}

// SetMaxBufferedPackets bounds the late-packet queue. count is clamped to a
// minimum of 8 regardless of the value passed (0 included).
func (e *Encapsulator) SetMaxBufferedPackets(count int) {
	if count < minMaxBufferedPackets {
		count = minMaxBufferedPackets
	}
	e.lateMaxPackets = count
}

// SetPacking toggles packing mode: when enabled, an outer packet is only
// emitted once enough queued bytes exist to fill its payload, trading
// output latency for fewer partially-stuffed packets.
func (e *Encapsulator) SetPacking(on bool) { e.packing = on }

// LastError returns the last diagnostic recorded by ProcessPacket, or the
// empty string if none has been recorded since construction or Reset.
func (e *Encapsulator) LastError() string { return e.lastError }

// ProcessPacket advances the encapsulator's state machine by one input
// packet, possibly rewriting pkt in place into a synthesized outer packet.
// It returns false if a diagnostic was recorded for this call (see
// LastError); the packet is always fully processed and the internal packet
// counter always advances regardless of the return value.
func (e *Encapsulator) ProcessPacket(pkt *Packet) bool {
	pid := pkt.PID()
	status := true

	// Phase A: continuity tracking and discontinuity detection.
	if pid != NullPID {
		prev, known := e.lastCC[pid]
		cc := pkt.CC()
		if !known {
			e.lastCC[pid] = cc
		} else {
			if cc != (prev+1)&continuityCounterMask {
				e.resetPCRSync()
			}
			e.lastCC[pid] = cc
		}
	}

	// Phase B: PCR observation on the reference PID.
	if e.pcrReference != NullPID && pid == e.pcrReference && pkt.HasPCR() {
		pcr := pkt.PCR()
		if e.pcrLastValue != InvalidPCR && e.pcrLastValue < pcr {
			ms := (pcr - e.pcrLastValue) * millisPerSecond / SystemClockFrequency
			e.bitrate = PacketBitrate(e.currentPacket-e.pcrLastPacket, ms)
			e.insertPCR = true
		}
		e.pcrLastPacket = e.currentPacket
		e.pcrLastValue = pcr
	}

	// Phase C: output-PID conflict.
	if pid == e.pidOutput && !e.pidInput.Test(pid) {
		e.lastError = fmt.Sprintf("PID conflict, output PID 0x%x (%d) is present but not encapsulated", pid, pid)
		status = false
	}

	// Phase D: enqueue input-set packets, then treat the slot as stuffing.
	if e.pidInput.Test(pid) && e.pidOutput != NullPID {
		if e.late.len() > e.lateMaxPackets {
			e.lastError = "buffered packets overflow, insufficient null packets in input stream"
			status = false
		} else {
			e.late.push(pkt)
			if e.late.len() == 1 {
				e.lateIndex = 1
			}
		}
		pid = NullPID
	}

	// Phase E: outer-packet emission.
	if pid == NullPID && e.late.len() > 0 {
		e.emit(pkt)
	}

	// Phase F: advance.
	e.currentPacket++
	return status
}

// emit synthesizes an outer packet into pkt, draining from the late queue.
// Preconditions: the late queue is non-empty and pkt's PID slot is free
// (the caller has already rewritten pid to NullPID, or pkt genuinely
// arrived as a null packet).
func (e *Encapsulator) emit(pkt *Packet) {
	addPCR := e.insertPCR && e.bitrate != 0 &&
		e.pcrLastPacket != InvalidPacketIndex && e.pcrLastValue != InvalidPCR

	addBytes := (PacketSize - e.lateIndex)
	if e.late.len() > 1 {
		addBytes += PacketSize
	}

	threshold := PacketSize - 4
	if addPCR {
		threshold = PacketSize - 12
	}
	threshold--

	if e.packing && addBytes < threshold {
		return
	}

	// Header: sync byte, no TEI/PUSI/priority yet, payload-only AFC, fresh CC.
	pkt[0] = SyncByte
	pkt[1] = 0
	pkt[2] = 0
	pkt[3] = 0x10
	pkt.SetPID(e.pidOutput)
	pkt.SetCC(e.ccOutput)
	for i := 4; i < PacketSize; i++ {
		pkt[i] = 0xff
	}

	pktIndex := 4
	e.ccOutput = (e.ccOutput + 1) & continuityCounterMask

	if addPCR {
		pcr := InterpolatePCR(e.pcrLastValue, e.bitrate, e.currentPacket-e.pcrLastPacket)
		pkt[3] |= 0x20
		pkt[4] = 7
		pkt[5] = 0x10
		pktIndex += 8
		pkt.SetPCR(pcr)
		e.insertPCR = false
	}

	// Small-remainder stuffing: the only queued data left is a tail too
	// short to fill the payload on its own, so right-align it behind an
	// enlarged adaptation field instead of emitting a pointer field.
	if e.late.len() == 1 && e.lateIndex > pktIndex {
		pkt[3] |= 0x20
		pkt[4] = byte(e.lateIndex - 5)
		if !addPCR {
			pkt[5] = 0x00
		}
		pktIndex = e.lateIndex
	}

	// PUSI and pointer field.
	switch {
	case e.lateIndex == 1:
		pkt.SetPUSI()
		pkt[pktIndex] = 0
		pktIndex++
	case e.late.len() > 1 && e.lateIndex > pktIndex+1:
		pkt.SetPUSI()
		pkt[pktIndex] = byte(PacketSize - e.lateIndex)
		pktIndex++
	}

	// Payload fill: at most two queued packets' worth of bytes ever need
	// copying to exactly fill the remaining payload.
	e.fill(pkt, &pktIndex)
	if pktIndex < PacketSize {
		e.fill(pkt, &pktIndex)
	}
}

// fill copies from the head of the late queue into pkt starting at
// *pktIndex, popping the head if it is fully drained.
func (e *Encapsulator) fill(pkt *Packet, pktIndex *int) {
	head := e.late.front()
	n := PacketSize - *pktIndex
	if rem := PacketSize - e.lateIndex; rem < n {
		n = rem
	}
	copy(pkt[*pktIndex:*pktIndex+n], head[e.lateIndex:e.lateIndex+n])
	*pktIndex += n
	e.lateIndex += n

	if e.lateIndex >= PacketSize {
		e.late.popFront()
		e.lateIndex = 1
	}
}
