package memory

import (
	"encoding/binary"
	"slices"
)

type directRange struct {
	start uint32
	end   uint32
}

// DirectAccessCache is a pointer level fast path onto the memory of one
// contiguous window of a space's read side.
type DirectAccessCache struct {
	space     *spaceCore
	order     binary.ByteOrder
	ptr       []byte // Backing memory at addrStart.
	addrStart uint32
	addrEnd   uint32
	entry     uint16
	history   map[uint16][]directRange
}

func newDirectAccessCache(sp *spaceCore) (dc *DirectAccessCache) {
	dc = &DirectAccessCache{
		space:   sp,
		order:   sp.config.Endianness.ByteOrder(),
		history: make(map[uint16][]directRange),
	}
	dc.ForceUpdate()
	return
}

// Window returns the currently cached address window. The window is empty
// (start after end) when invalid.
func (dc *DirectAccessCache) Window() (start, end uint32) {
	return dc.addrStart, dc.addrEnd
}

// ForceUpdate drops the cached window.
func (dc *DirectAccessCache) ForceUpdate() {
	dc.addrStart = 1
	dc.addrEnd = 0
	dc.ptr = nil
	dc.entry = ENTRY_UNMAP
}

func (dc *DirectAccessCache) forceUpdateBank(bank *MemoryBank) {
	if be, ok := dc.space.read.entry(dc.entry).(*bankEntry); ok && be.bank == bank {
		dc.ForceUpdate()
	}
}

// IsValid reports if address can be read through the cache, recomputing
// the window when address lies outside of it.
func (dc *DirectAccessCache) IsValid(address uint32) bool {
	address &= dc.space.addrMask
	if address >= dc.addrStart && address <= dc.addrEnd {
		return true
	}
	return dc.setDirectRegion(address)
}

func (dc *DirectAccessCache) setDirectRegion(address uint32) bool {
	sp := dc.space
	index := sp.read.lookup(address)

	mb, ok := sp.read.entry(index).(memoryBacked)
	if !ok {
		dc.ForceUpdate()
		return false
	}

	window := dc.findRange(address, index)

	data := mb.backing()
	offset := sp.config.AddrToByte(mb.base().offset(window.start))
	if uint64(offset) >= uint64(len(data)) {
		dc.ForceUpdate()
		return false
	}
	data = data[offset:]

	// Clip to the backing memory actually present.
	if length := uint64(sp.config.AddrToByteEnd(window.end-window.start)) + 1; length > uint64(len(data)) {
		window.end = window.start + sp.config.ByteToAddr(uint32(len(data))) - 1
	}
	if address < window.start || address > window.end {
		dc.ForceUpdate()
		return false
	}

	dc.entry = index
	dc.ptr = data
	dc.addrStart = window.start
	dc.addrEnd = window.end
	return true
}

func (dc *DirectAccessCache) findRange(address uint32, index uint16) directRange {
	ranges := dc.history[index]
	for _, r := range ranges {
		if address >= r.start && address <= r.end {
			return r
		}
	}

	start, end := dc.space.read.deriveRange(address)
	r := directRange{start: start, end: end}
	dc.history[index] = append([]directRange{r}, ranges...)
	return r
}

func (dc *DirectAccessCache) removeIntersectingRanges(start, end uint32) {
	for index, ranges := range dc.history {
		ranges = slices.DeleteFunc(ranges, func(r directRange) bool {
			return r.start <= end && r.end >= start
		})
		if len(ranges) == 0 {
			delete(dc.history, index)
		} else {
			dc.history[index] = ranges
		}
	}
}

// ReadPtr returns the backing memory from address to the end of its
// window, or nil when address is not directly readable.
func (dc *DirectAccessCache) ReadPtr(address uint32) []byte {
	if !dc.IsValid(address) {
		return nil
	}
	return dc.ptr[dc.byteOffset(address):]
}

func (dc *DirectAccessCache) byteOffset(address uint32) uint32 {
	return dc.space.config.AddrToByte((address & dc.space.addrMask) - dc.addrStart)
}

// cell returns the length bytes at address when all are in the window.
func (dc *DirectAccessCache) cell(address uint32, length uint32) []byte {
	if !dc.IsValid(address) {
		return nil
	}
	return cellOf(dc.ptr, dc.byteOffset(address), length)
}

func (dc *DirectAccessCache) checkGranularity(what string, minShift int) {
	if dc.space.config.AddrShift < minShift {
		fatalf(ErrDirectGranularity, "direct %s access on space %q with address shift %d", what, dc.space.config.Name, dc.space.config.AddrShift)
	}
}

// Read8 reads a byte through the cache, or through the space when
// address is outside of any direct window.
func (dc *DirectAccessCache) Read8(address uint32) uint8 {
	dc.checkGranularity("byte", 0)
	if cell := dc.cell(address, 1); cell != nil {
		return cell[0]
	}
	return dc.space.self.Read8(address)
}

func (dc *DirectAccessCache) ReadWord(address uint32) uint16 {
	dc.checkGranularity("word", -1)
	if cell := dc.cell(address, 2); cell != nil {
		return dc.order.Uint16(cell)
	}
	return dc.space.self.ReadWordUnaligned(address)
}

func (dc *DirectAccessCache) ReadDWord(address uint32) uint32 {
	dc.checkGranularity("dword", -2)
	if cell := dc.cell(address, 4); cell != nil {
		return dc.order.Uint32(cell)
	}
	return dc.space.self.ReadDWordUnaligned(address)
}

func (dc *DirectAccessCache) ReadQWord(address uint32) uint64 {
	if cell := dc.cell(address, 8); cell != nil {
		return dc.order.Uint64(cell)
	}
	return dc.space.self.ReadQWordUnaligned(address)
}
