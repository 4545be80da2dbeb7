package memory

import (
	"github.com/retroenv/retrogolib/log"
)

//go:generate go tool stringer -linecomment -type=Ownership

// Ownership of the buffer behind a MemoryBlock.
type Ownership int

const (
	OWNED    Ownership = iota // owned
	BORROWED                  // borrowed
)

const (
	BLOCK_INLINE_LIMIT = 4096
	BLOCK_PAGE_SIZE    = 4096
)

// MemoryBlock is a byte range of one space backed by memory.
type MemoryBlock struct {
	space     AddressSpace
	byteStart uint32
	byteEnd   uint32
	data      []byte
	ownership Ownership
	region    *MemoryRegion
}

func newMemoryBlock(m *Manager, space AddressSpace, byteStart, byteEnd uint32, memory []byte) (mb *MemoryBlock) {
	length := int(uint64(byteEnd) - uint64(byteStart) + 1)

	mb = &MemoryBlock{
		space:     space,
		byteStart: byteStart,
		byteEnd:   byteEnd,
	}

	if memory == nil {
		mb.ownership = OWNED
		if length < BLOCK_INLINE_LIMIT {
			mb.data = make([]byte, length)
		} else {
			pages := (length + BLOCK_PAGE_SIZE - 1) / BLOCK_PAGE_SIZE
			mb.data = make([]byte, pages*BLOCK_PAGE_SIZE)[:length]
		}
		m.logger.Debug("allocated memory block",
			log.String("space", space.Name()),
			log.Uint32("start", byteStart),
			log.Uint32("end", byteEnd))
		return
	}

	if len(memory) < length {
		fatalf(ErrRegionBounds, "memory block %08x-%08x supplied with only %d bytes", byteStart, byteEnd, len(memory))
	}

	mb.ownership = BORROWED
	mb.data = memory[:length]
	mb.region = m.RegionContaining(mb.data)
	if mb.region != nil {
		m.logger.Debug("memory block covered by region",
			log.String("space", space.Name()),
			log.String("region", mb.region.Name()))
	}

	return
}

// Contains reports if the block backs the byte range of the space.
func (mb *MemoryBlock) Contains(space AddressSpace, byteStart, byteEnd uint32) bool {
	return space == mb.space && byteStart >= mb.byteStart && byteEnd <= mb.byteEnd
}

func (mb *MemoryBlock) Space() AddressSpace   { return mb.space }
func (mb *MemoryBlock) ByteStart() uint32     { return mb.byteStart }
func (mb *MemoryBlock) ByteEnd() uint32       { return mb.byteEnd }
func (mb *MemoryBlock) Data() []byte          { return mb.data }
func (mb *MemoryBlock) Bytes() uint32         { return uint32(len(mb.data)) }
func (mb *MemoryBlock) Ownership() Ownership  { return mb.ownership }
func (mb *MemoryBlock) Region() *MemoryRegion { return mb.region }
