package memory

import (
	"encoding/binary"

	"github.com/ezrec/emumem/endian"
)

// MemoryRegion is a named fixed-size buffer, typically ROM contents.
type MemoryRegion struct {
	name       string
	data       []byte
	width      uint8
	endianness endian.Endianness
	order      binary.ByteOrder
}

func newMemoryRegion(name string, length uint32, width uint8, e endian.Endianness) *MemoryRegion {
	switch width {
	case 1, 2, 4, 8:
	default:
		fatalf(ErrRegionWidth, "region %q has invalid width %d", name, width)
	}

	return &MemoryRegion{
		name:       name,
		data:       make([]byte, length),
		width:      width,
		endianness: e,
		order:      e.ByteOrder(),
	}
}

func (mr *MemoryRegion) Name() string                  { return mr.name }
func (mr *MemoryRegion) Data() []byte                  { return mr.data }
func (mr *MemoryRegion) Bytes() uint32                 { return uint32(len(mr.data)) }
func (mr *MemoryRegion) Width() uint8                  { return mr.width }
func (mr *MemoryRegion) BitWidth() int                 { return int(mr.width) * 8 }
func (mr *MemoryRegion) Endianness() endian.Endianness { return mr.endianness }

// Fill sets every byte of the region.
func (mr *MemoryRegion) Fill(value byte) {
	for n := range mr.data {
		mr.data[n] = value
	}
}

// U8 returns the byte at index.
func (mr *MemoryRegion) U8(index uint32) uint8 {
	return mr.data[index]
}

// U16 returns the index'th 16-bit element in region order.
func (mr *MemoryRegion) U16(index uint32) uint16 {
	return mr.order.Uint16(mr.data[index*2:])
}

// U32 returns the index'th 32-bit element in region order.
func (mr *MemoryRegion) U32(index uint32) uint32 {
	return mr.order.Uint32(mr.data[index*4:])
}

// U64 returns the index'th 64-bit element in region order.
func (mr *MemoryRegion) U64(index uint32) uint64 {
	return mr.order.Uint64(mr.data[index*8:])
}

func (mr *MemoryRegion) SetU8(index uint32, value uint8) {
	mr.data[index] = value
}

func (mr *MemoryRegion) SetU16(index uint32, value uint16) {
	mr.order.PutUint16(mr.data[index*2:], value)
}

func (mr *MemoryRegion) SetU32(index uint32, value uint32) {
	mr.order.PutUint32(mr.data[index*4:], value)
}

func (mr *MemoryRegion) SetU64(index uint32, value uint64) {
	mr.order.PutUint64(mr.data[index*8:], value)
}
