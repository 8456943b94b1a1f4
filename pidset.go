package tsencap

import "golang.org/x/exp/slices"

// pidSpace is the number of distinct values a 13-bit PID can take.
const pidSpace = 8192

// PIDSet is a dense membership set over the 13-bit PID space (0..8191).
// NullPID is never a member: Set(NullPID) is a no-op, and NewFullPIDSet
// clears it with Reset(NullPID) after filling the bitmap, matching the
// encapsulator's requirement that the stuffing PID can never be treated as
// an input PID.
type PIDSet struct {
	bits [pidSpace / 64]uint64
}

// NewPIDSet returns an empty PIDSet.
func NewPIDSet() *PIDSet { return &PIDSet{} }

// NewFullPIDSet returns a PIDSet containing every PID except NullPID.
func NewFullPIDSet() *PIDSet {
	s := &PIDSet{}
	for i := range s.bits {
		s.bits[i] = ^uint64(0)
	}
	s.Reset(NullPID)
	return s
}

// NewPIDSetFromList returns a PIDSet containing exactly the given PIDs
// (NullPID, if present in the list, is silently dropped).
func NewPIDSetFromList(pids []uint16) *PIDSet {
	s := &PIDSet{}
	for _, p := range pids {
		s.Set(p)
	}
	return s
}

// Set adds pid to the set. A no-op for NullPID.
func (s *PIDSet) Set(pid uint16) {
	if pid == NullPID {
		return
	}
	s.bits[pid/64] |= 1 << (pid % 64)
}

// Reset removes pid from the set.
func (s *PIDSet) Reset(pid uint16) {
	s.bits[pid/64] &^= 1 << (pid % 64)
}

// ResetAll empties the set.
func (s *PIDSet) ResetAll() {
	for i := range s.bits {
		s.bits[i] = 0
	}
}

// Test reports whether pid is a member of the set.
func (s *PIDSet) Test(pid uint16) bool {
	return s.bits[pid/64]&(1<<(pid%64)) != 0
}

// Count returns the number of member PIDs.
func (s *PIDSet) Count() int {
	n := 0
	for _, w := range s.bits {
		for w != 0 {
			w &= w - 1
			n++
		}
	}
	return n
}

// List returns the member PIDs in ascending order.
func (s *PIDSet) List() []uint16 {
	out := make([]uint16, 0, s.Count())
	for w, word := range s.bits {
		for b := 0; b < 64; b++ {
			if word&(1<<b) != 0 {
				out = append(out, uint16(w*64+b))
			}
		}
	}
	slices.Sort(out)
	return out
}

// Clone returns an independent copy of s.
func (s *PIDSet) Clone() *PIDSet {
	c := &PIDSet{}
	c.bits = s.bits
	return c
}
