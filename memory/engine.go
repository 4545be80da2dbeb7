package memory

import (
	"encoding/binary"

	"golang.org/x/exp/constraints"

	"github.com/ezrec/emumem/endian"
)

// engine is the address space of one native width N. Endianness, address
// shift and table size class are fixed when the engine is built.
type engine[N constraints.Unsigned] struct {
	*spaceCore
	order      binary.ByteOrder
	big        bool
	nativeBits uint
}

var _ AddressSpace = (*engine[uint8])(nil)
var _ AddressSpace = (*engine[uint64])(nil)

func newEngine[N constraints.Unsigned](sp *spaceCore) *engine[N] {
	return &engine[N]{
		spaceCore:  sp,
		order:      sp.config.Endianness.ByteOrder(),
		big:        sp.config.Endianness == endian.Big,
		nativeBits: uint(sp.nativeBytes * 8),
	}
}

func (e *engine[N]) load(cell []byte) N {
	switch len(cell) {
	case 1:
		return N(cell[0])
	case 2:
		return N(e.order.Uint16(cell))
	case 4:
		return N(e.order.Uint32(cell))
	default:
		return N(e.order.Uint64(cell))
	}
}

func (e *engine[N]) store(cell []byte, value N) {
	switch len(cell) {
	case 1:
		cell[0] = uint8(value)
	case 2:
		e.order.PutUint16(cell, uint16(value))
	case 4:
		e.order.PutUint32(cell, uint32(value))
	default:
		e.order.PutUint64(cell, uint64(value))
	}
}

// readNative performs one native access at a cell aligned address.
func (e *engine[N]) readNative(address uint32, mask N) N {
	address &= e.addrMask

	switch entry := e.read.entryAt(address).(type) {
	case memoryBacked:
		offset := e.config.AddrToByte(entry.base().offset(address))
		if cell := cellOf(entry.backing(), offset, e.nativeBytes); cell != nil {
			return e.load(cell)
		}
	case *callbackEntry:
		return N(entry.readUnits(e.spaceCore, entry.offset(address), uint64(mask)))
	case *nopEntry:
		return N(e.unmap)
	}

	e.logUnmappedRead(address, uint64(mask))
	return N(e.unmap)
}

// writeNative performs one native access at a cell aligned address.
func (e *engine[N]) writeNative(address uint32, data N, mask N) {
	address &= e.addrMask

	switch entry := e.write.entryAt(address).(type) {
	case memoryBacked:
		offset := e.config.AddrToByte(entry.base().offset(address))
		if cell := cellOf(entry.backing(), offset, e.nativeBytes); cell != nil {
			e.store(cell, (e.load(cell)&^mask)|(data&mask))
			return
		}
	case *callbackEntry:
		entry.writeUnits(e.spaceCore, entry.offset(address), uint64(data), uint64(mask))
		return
	case *nopEntry:
		return
	}

	e.logUnmappedWrite(address, uint64(data), uint64(mask))
}

// SetAddress tells the set offset handler at address, if any, of a pending
// access. The handler receives the offset in native cells.
func (e *engine[N]) SetAddress(address uint32) {
	address &= e.addrMask

	if entry, ok := e.setoffset.entryAt(address).(*setOffsetEntry); ok {
		entry.handler.SetOffset(e, e.config.AddrToByte(entry.offset(address))/e.nativeBytes)
	}
}

func (e *engine[N]) Read8(address uint32) uint8 {
	return readDirect[N, uint8](e, address, 0xff, true)
}

func (e *engine[N]) ReadWord(address uint32) uint16 {
	return readDirect[N, uint16](e, address, 0xffff, true)
}

func (e *engine[N]) ReadWordMasked(address uint32, mask uint16) uint16 {
	return readDirect[N](e, address, mask, true)
}

func (e *engine[N]) ReadWordUnaligned(address uint32) uint16 {
	return readDirect[N, uint16](e, address, 0xffff, false)
}

func (e *engine[N]) ReadWordUnalignedMasked(address uint32, mask uint16) uint16 {
	return readDirect[N](e, address, mask, false)
}

func (e *engine[N]) ReadDWord(address uint32) uint32 {
	return readDirect[N, uint32](e, address, 0xffffffff, true)
}

func (e *engine[N]) ReadDWordMasked(address uint32, mask uint32) uint32 {
	return readDirect[N](e, address, mask, true)
}

func (e *engine[N]) ReadDWordUnaligned(address uint32) uint32 {
	return readDirect[N, uint32](e, address, 0xffffffff, false)
}

func (e *engine[N]) ReadDWordUnalignedMasked(address uint32, mask uint32) uint32 {
	return readDirect[N](e, address, mask, false)
}

func (e *engine[N]) ReadQWord(address uint32) uint64 {
	return readDirect[N, uint64](e, address, ^uint64(0), true)
}

func (e *engine[N]) ReadQWordMasked(address uint32, mask uint64) uint64 {
	return readDirect[N](e, address, mask, true)
}

func (e *engine[N]) ReadQWordUnaligned(address uint32) uint64 {
	return readDirect[N, uint64](e, address, ^uint64(0), false)
}

func (e *engine[N]) ReadQWordUnalignedMasked(address uint32, mask uint64) uint64 {
	return readDirect[N](e, address, mask, false)
}

func (e *engine[N]) Write8(address uint32, data uint8) {
	writeDirect[N, uint8](e, address, data, 0xff, true)
}

func (e *engine[N]) WriteWord(address uint32, data uint16) {
	writeDirect[N, uint16](e, address, data, 0xffff, true)
}

func (e *engine[N]) WriteWordMasked(address uint32, data uint16, mask uint16) {
	writeDirect[N](e, address, data, mask, true)
}

func (e *engine[N]) WriteWordUnaligned(address uint32, data uint16) {
	writeDirect[N, uint16](e, address, data, 0xffff, false)
}

func (e *engine[N]) WriteWordUnalignedMasked(address uint32, data uint16, mask uint16) {
	writeDirect[N](e, address, data, mask, false)
}

func (e *engine[N]) WriteDWord(address uint32, data uint32) {
	writeDirect[N, uint32](e, address, data, 0xffffffff, true)
}

func (e *engine[N]) WriteDWordMasked(address uint32, data uint32, mask uint32) {
	writeDirect[N](e, address, data, mask, true)
}

func (e *engine[N]) WriteDWordUnaligned(address uint32, data uint32) {
	writeDirect[N, uint32](e, address, data, 0xffffffff, false)
}

func (e *engine[N]) WriteDWordUnalignedMasked(address uint32, data uint32, mask uint32) {
	writeDirect[N](e, address, data, mask, false)
}

func (e *engine[N]) WriteQWord(address uint32, data uint64) {
	writeDirect[N, uint64](e, address, data, ^uint64(0), true)
}

func (e *engine[N]) WriteQWordMasked(address uint32, data uint64, mask uint64) {
	writeDirect[N](e, address, data, mask, true)
}

func (e *engine[N]) WriteQWordUnaligned(address uint32, data uint64) {
	writeDirect[N, uint64](e, address, data, ^uint64(0), false)
}

func (e *engine[N]) WriteQWordUnalignedMasked(address uint32, data uint64, mask uint64) {
	writeDirect[N](e, address, data, mask, false)
}
