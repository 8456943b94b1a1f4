package tsencap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPIDSetBasic(t *testing.T) {
	s := NewPIDSet()
	assert.Equal(t, 0, s.Count())
	assert.False(t, s.Test(0x100))

	s.Set(0x100)
	s.Set(0x200)
	assert.True(t, s.Test(0x100))
	assert.True(t, s.Test(0x200))
	assert.Equal(t, 2, s.Count())

	s.Reset(0x100)
	assert.False(t, s.Test(0x100))
	assert.Equal(t, 1, s.Count())
}

func TestPIDSetNullPIDExcluded(t *testing.T) {
	s := NewPIDSet()
	s.Set(NullPID)
	assert.False(t, s.Test(NullPID))
	assert.Equal(t, 0, s.Count())
}

func TestPIDSetFull(t *testing.T) {
	s := NewFullPIDSet()
	assert.True(t, s.Test(0))
	assert.True(t, s.Test(8191-1))
	assert.False(t, s.Test(NullPID))
	assert.Equal(t, pidSpace-1, s.Count())
}

func TestPIDSetList(t *testing.T) {
	s := NewPIDSetFromList([]uint16{0x200, 0x100, NullPID, 0x100})
	assert.Equal(t, []uint16{0x100, 0x200}, s.List())
}

func TestPIDSetClone(t *testing.T) {
	s := NewPIDSetFromList([]uint16{0x100})
	c := s.Clone()
	c.Set(0x200)
	assert.False(t, s.Test(0x200))
	assert.True(t, c.Test(0x200))
}
