package memory

import (
	"github.com/ezrec/emumem/endian"
)

// handlerEntry is one slot of a dispatch table.
type handlerEntry interface {
	base() *entryBase
	Name() string
}

// memoryBacked entries resolve accesses to a byte buffer without a call.
type memoryBacked interface {
	handlerEntry
	backing() []byte
}

type entryBase struct {
	start uint32 // First address of the installed range.
	end   uint32 // Last address of the installed range.
	mask  uint32 // Offset mask; clears mirror bits.
}

func (eb *entryBase) base() *entryBase {
	return eb
}

func (eb *entryBase) offset(address uint32) uint32 {
	return (address - eb.start) & eb.mask
}

type unmappedEntry struct {
	entryBase
}

func (*unmappedEntry) Name() string { return "unmapped" }

type nopEntry struct {
	entryBase
}

func (*nopEntry) Name() string { return "nop" }

type memoryEntry struct {
	entryBase
	label   string
	share   string
	data    []byte
	pending bool
}

func (me *memoryEntry) Name() string    { return me.label }
func (me *memoryEntry) backing() []byte { return me.data }

type bankEntry struct {
	entryBase
	bank *MemoryBank
}

func (be *bankEntry) Name() string    { return "bank " + be.bank.Tag() }
func (be *bankEntry) backing() []byte { return be.bank.Base() }

// cellOf returns the length bytes of data at offset, or nil when short.
func cellOf(data []byte, offset uint32, length uint32) []byte {
	end := uint64(offset) + uint64(length)
	if end > uint64(len(data)) {
		return nil
	}
	return data[offset:end]
}

func bitsMask(width int) uint64 {
	return ^uint64(0) >> uint(64-width)
}

type callbackLane struct {
	shift   uint
	selects uint64
}

// callbackEntry dispatches to a read or write handler, splitting a native
// access into one call per connected lane when the handler is narrower
// than the bus.
type callbackEntry struct {
	entryBase
	name     string
	width    int
	unitMask uint64
	lanes    []callbackLane
	covered  uint64
	read     ReadHandler
	write    WriteHandler
}

func newCallbackEntry(sp *spaceCore, name string, width int, unitmask uint64, cswidth int) (ce *callbackEntry) {
	ce = &callbackEntry{
		name:     name,
		width:    width,
		unitMask: unitmask,
	}

	lane := bitsMask(width)
	units := sp.config.DataWidth / width
	for unit := range units {
		shift := uint(unit * width)
		if sp.config.Endianness == endian.Big {
			shift = uint((units - 1 - unit) * width)
		}

		if unitmask&(lane<<shift) == 0 {
			continue
		}

		selects := (lane << shift) & unitmask
		if cswidth > width {
			selects = bitsMask(cswidth) << (shift &^ uint(cswidth-1))
		}

		ce.lanes = append(ce.lanes, callbackLane{shift: shift, selects: selects})
		ce.covered |= lane << shift
	}

	return
}

func (ce *callbackEntry) Name() string { return ce.name }

func (ce *callbackEntry) readUnits(sp *spaceCore, offset uint32, mask uint64) (result uint64) {
	cell := sp.config.AddrToByte(offset) / sp.nativeBytes
	count := uint32(len(ce.lanes))
	lane := bitsMask(ce.width)

	result = sp.unmap &^ ce.covered
	for n, cl := range ce.lanes {
		if mask&cl.selects == 0 {
			continue
		}
		value := ce.read.Read(sp.self, cell*count+uint32(n), ((mask&ce.unitMask)>>cl.shift)&lane)
		result |= (value & lane) << cl.shift
	}

	return
}

func (ce *callbackEntry) writeUnits(sp *spaceCore, offset uint32, data uint64, mask uint64) {
	cell := sp.config.AddrToByte(offset) / sp.nativeBytes
	count := uint32(len(ce.lanes))
	lane := bitsMask(ce.width)

	for n, cl := range ce.lanes {
		if mask&cl.selects == 0 {
			continue
		}
		ce.write.Write(sp.self, cell*count+uint32(n), (data>>cl.shift)&lane, ((mask&ce.unitMask)>>cl.shift)&lane)
	}
}

type setOffsetEntry struct {
	entryBase
	handler SetOffsetHandler
}

func (se *setOffsetEntry) Name() string { return se.handler.Name }
