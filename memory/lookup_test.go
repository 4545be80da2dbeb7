package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupSmall(t *testing.T) {
	assert := assert.New(t)

	st := newSmallTable(0xff)
	st.populate(0x10, 0x1f, 3)
	st.populate(0x18, 0x18, 4)

	assert.Equal(uint16(0), st.lookup(0x0f))
	assert.Equal(uint16(3), st.lookup(0x10))
	assert.Equal(uint16(4), st.lookup(0x18))
	assert.Equal(uint16(3), st.lookup(0x1f))

	table := [](struct {
		cell   uint32
		lo, hi uint32
		first  uint32
		last   uint32
	}){
		{0x12, 0x00, 0xff, 0x10, 0x17},
		{0x19, 0x00, 0xff, 0x19, 0x1f},
		{0x12, 0x11, 0x14, 0x11, 0x14},
		{0x00, 0x00, 0xff, 0x00, 0x0f},
		{0x80, 0x00, 0xff, 0x20, 0xff},
	}

	for _, entry := range table {
		first, last := st.extent(entry.cell, entry.lo, entry.hi)
		assert.Equal(entry.first, first, entry)
		assert.Equal(entry.last, last, entry)
	}
}

func TestLookupLarge(t *testing.T) {
	assert := assert.New(t)

	lt := newLargeTable(0xfffff)
	assert.Len(lt.pages, 0x100)

	lt.populate(0, 0xfffff, 5)
	for _, cells := range lt.pages {
		assert.Nil(cells)
	}
	assert.Equal(uint16(5), lt.lookup(0x12345))

	lt.populate(0x1000, 0x1001, 7)
	assert.NotNil(lt.pages[1])
	assert.Equal(uint16(7), lt.lookup(0x1001))
	assert.Equal(uint16(5), lt.lookup(0x1002))
	assert.Equal(uint16(5), lt.lookup(0x0fff))

	first, last := lt.extent(0x5000, 0, 0xfffff)
	assert.Equal(uint32(0x1002), first)
	assert.Equal(uint32(0xfffff), last)

	first, last = lt.extent(0x1000, 0, 0xfffff)
	assert.Equal(uint32(0x1000), first)
	assert.Equal(uint32(0x1001), last)

	first, last = lt.extent(0x0010, 0, 0xfffff)
	assert.Equal(uint32(0x0000), first)
	assert.Equal(uint32(0x0fff), last)

	// Covering a whole page collapses it again.
	lt.populate(0x1000, 0x1fff, 9)
	assert.Nil(lt.pages[1])
	assert.Equal(uint16(9), lt.lookup(0x1abc))
}

func TestLookupLargeMatchesSmall(t *testing.T) {
	assert := assert.New(t)

	const maxCell = 0x7fff

	st := newSmallTable(maxCell)
	lt := newLargeTable(maxCell)

	ranges := [][3]uint32{
		{0x0000, 0x7fff, 1},
		{0x0100, 0x2fff, 2},
		{0x0ffe, 0x1001, 3},
		{0x4000, 0x4fff, 4},
		{0x6abc, 0x6abc, 5},
	}
	for _, r := range ranges {
		st.populate(r[0], r[1], uint16(r[2]))
		lt.populate(r[0], r[1], uint16(r[2]))
	}

	for cell := uint32(0); cell <= maxCell; cell += 0x3f {
		assert.Equal(st.lookup(cell), lt.lookup(cell), cell)
		sfirst, slast := st.extent(cell, 0, maxCell)
		lfirst, llast := lt.extent(cell, 0, maxCell)
		assert.Equal(sfirst, lfirst, cell)
		assert.Equal(slast, llast, cell)
	}
}
