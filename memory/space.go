package memory

import (
	"fmt"
	"io"
	"math/bits"
	"slices"

	"github.com/ezrec/emumem/endian"
)

// Device is a machine component that owns address spaces.
type Device interface {
	Tag() string
	// SpaceConfig returns the configuration of a space, or nil when the
	// device has no such space.
	SpaceConfig(spacenum int) *AddressSpaceConfig
	// AddressMap adds the map entries of a space.
	AddressMap(spacenum int, am *AddressMap)
}

// AddressSpace is the runtime bus of one device space.
//
// Addresses are in address units, not bytes.
type AddressSpace interface {
	Name() string
	SpaceNum() int
	Device() Device
	Manager() *Manager
	Config() *AddressSpaceConfig
	DataWidth() int
	AddrWidth() int
	AddrShift() int
	Endianness() endian.Endianness
	AddrMask() uint32
	LogAddrMask() uint32
	AddrChars() int
	Unmap() uint64
	SetUnmap(value uint64)
	LogUnmap() bool
	SetLogUnmap(enable bool)

	Read8(address uint32) uint8
	ReadWord(address uint32) uint16
	ReadWordMasked(address uint32, mask uint16) uint16
	ReadWordUnaligned(address uint32) uint16
	ReadWordUnalignedMasked(address uint32, mask uint16) uint16
	ReadDWord(address uint32) uint32
	ReadDWordMasked(address uint32, mask uint32) uint32
	ReadDWordUnaligned(address uint32) uint32
	ReadDWordUnalignedMasked(address uint32, mask uint32) uint32
	ReadQWord(address uint32) uint64
	ReadQWordMasked(address uint32, mask uint64) uint64
	ReadQWordUnaligned(address uint32) uint64
	ReadQWordUnalignedMasked(address uint32, mask uint64) uint64

	Write8(address uint32, data uint8)
	WriteWord(address uint32, data uint16)
	WriteWordMasked(address uint32, data uint16, mask uint16)
	WriteWordUnaligned(address uint32, data uint16)
	WriteWordUnalignedMasked(address uint32, data uint16, mask uint16)
	WriteDWord(address uint32, data uint32)
	WriteDWordMasked(address uint32, data uint32, mask uint32)
	WriteDWordUnaligned(address uint32, data uint32)
	WriteDWordUnalignedMasked(address uint32, data uint32, mask uint32)
	WriteQWord(address uint32, data uint64)
	WriteQWordMasked(address uint32, data uint64, mask uint64)
	WriteQWordUnaligned(address uint32, data uint64)
	WriteQWordUnalignedMasked(address uint32, data uint64, mask uint64)

	SetAddress(address uint32)
	GetReadPtr(address uint32) []byte
	GetWritePtr(address uint32) []byte
	Direct() *DirectAccessCache
	DirectShift(shift int) *DirectAccessCache

	UnmapRead(start, end, mirror uint32)
	UnmapWrite(start, end, mirror uint32)
	UnmapReadWrite(start, end, mirror uint32)
	NopRead(start, end, mirror uint32)
	NopWrite(start, end, mirror uint32)
	NopReadWrite(start, end, mirror uint32)

	InstallRom(start, end, mirror uint32, base []byte)
	InstallWriteOnly(start, end, mirror uint32, base []byte)
	InstallRam(start, end, mirror uint32, base []byte)

	InstallReadBank(start, end, mirror uint32, bank *MemoryBank)
	InstallWriteBank(start, end, mirror uint32, bank *MemoryBank)
	InstallReadWriteBank(start, end, mirror uint32, bank *MemoryBank)
	InstallReadBankTag(start, end, mirror uint32, tag string) *MemoryBank
	InstallWriteBankTag(start, end, mirror uint32, tag string) *MemoryBank
	InstallReadWriteBankTag(start, end, mirror uint32, tag string) *MemoryBank

	InstallReadPort(start, end, mirror uint32, tag string)
	InstallWritePort(start, end, mirror uint32, tag string)
	InstallReadWritePort(start, end, mirror uint32, rtag, wtag string)

	InstallReadHandler(start, end, mask, mirror, sel uint32, rhandler ReadHandler, unitmask uint64, cswidth int)
	InstallWriteHandler(start, end, mask, mirror, sel uint32, whandler WriteHandler, unitmask uint64, cswidth int)
	InstallReadWriteHandler(start, end, mask, mirror, sel uint32, rhandler ReadHandler, whandler WriteHandler, unitmask uint64, cswidth int)
	InstallSetOffsetHandler(start, end, mask, mirror, sel uint32, handler SetOffsetHandler)

	InvalidateReadCaches()
	InvalidateReadCachesBank(bank *MemoryBank)
	InvalidateReadCachesRange(start, end uint32)

	HandlerName(rw ReadOrWrite, address uint32) string
	DumpMap(w io.Writer, rw ReadOrWrite) error

	core() *spaceCore
}

var supportedShifts = map[int][]int{
	8:  {0},
	16: {3, 0, -1},
	32: {0, -1, -2},
	64: {0, -1, -2, -3},
}

// spaceCore holds the width independent state and install logic of a space.
type spaceCore struct {
	self     AddressSpace
	manager  *Manager
	device   Device
	config   *AddressSpaceConfig
	spacenum int

	addrMask    uint32
	logAddrMask uint32
	unmap       uint64
	logUnmap    bool

	nativeBytes uint32
	nativeStep  uint32 // Address units per native cell.
	nativeMask  uint32
	cellShift   uint

	read      *addressTable
	write     *addressTable
	setoffset *addressTable
	direct    *DirectAccessCache
}

// newAddressSpace selects and builds the engine for a space configuration.
func newAddressSpace(m *Manager, dev Device, spacenum int, cfg *AddressSpaceConfig) AddressSpace {
	shifts, ok := supportedShifts[cfg.DataWidth]
	if !ok {
		fatalf(ErrUnsupportedWidth, "invalid width %d specified for address space %q", cfg.DataWidth, cfg.Name)
	}
	if !slices.Contains(shifts, cfg.AddrShift) {
		fatalf(ErrUnsupportedShift, "invalid address shift %d for %d-bit address space %q", cfg.AddrShift, cfg.DataWidth, cfg.Name)
	}
	if cfg.AddrWidth < 1 || cfg.AddrWidth > 32 {
		fatalf(ErrBadRange, "invalid address width %d for address space %q", cfg.AddrWidth, cfg.Name)
	}

	sp := &spaceCore{
		manager:     m,
		device:      dev,
		config:      cfg,
		spacenum:    spacenum,
		addrMask:    cfg.AddrMask(),
		logAddrMask: cfg.LogAddrMask(),
		logUnmap:    true,
		nativeBytes: cfg.DataBytes(),
		nativeStep:  cfg.Alignment(),
	}
	sp.nativeMask = sp.nativeStep - 1
	sp.cellShift = uint(bits.TrailingZeros32(sp.nativeStep))

	large := cfg.IsLarge()
	sp.read = newAddressTable(sp, large)
	sp.write = newAddressTable(sp, large)
	sp.setoffset = newAddressTable(sp, large)
	sp.direct = newDirectAccessCache(sp)

	switch cfg.DataWidth {
	case 8:
		sp.self = newEngine[uint8](sp)
	case 16:
		sp.self = newEngine[uint16](sp)
	case 32:
		sp.self = newEngine[uint32](sp)
	default:
		sp.self = newEngine[uint64](sp)
	}

	return sp.self
}

func (sp *spaceCore) core() *spaceCore              { return sp }
func (sp *spaceCore) Name() string                  { return sp.config.Name }
func (sp *spaceCore) SpaceNum() int                 { return sp.spacenum }
func (sp *spaceCore) Device() Device                { return sp.device }
func (sp *spaceCore) Manager() *Manager             { return sp.manager }
func (sp *spaceCore) Config() *AddressSpaceConfig   { return sp.config }
func (sp *spaceCore) DataWidth() int                { return sp.config.DataWidth }
func (sp *spaceCore) AddrWidth() int                { return sp.config.AddrWidth }
func (sp *spaceCore) AddrShift() int                { return sp.config.AddrShift }
func (sp *spaceCore) Endianness() endian.Endianness { return sp.config.Endianness }
func (sp *spaceCore) AddrMask() uint32              { return sp.addrMask }
func (sp *spaceCore) LogAddrMask() uint32           { return sp.logAddrMask }
func (sp *spaceCore) AddrChars() int                { return sp.config.AddrChars() }
func (sp *spaceCore) Unmap() uint64                 { return sp.unmap }
func (sp *spaceCore) SetUnmap(value uint64)         { sp.unmap = value }
func (sp *spaceCore) LogUnmap() bool                { return sp.logUnmap }
func (sp *spaceCore) SetLogUnmap(enable bool)       { sp.logUnmap = enable }
func (sp *spaceCore) Direct() *DirectAccessCache    { return sp.direct }

// DirectShift returns the direct access cache of a space the caller
// expects to have the given address shift.
func (sp *spaceCore) DirectShift(shift int) *DirectAccessCache {
	if shift != sp.config.AddrShift {
		fatalf(ErrDirectShift, "requesting direct access with address shift %d while space %q has shift %d", shift, sp.config.Name, sp.config.AddrShift)
	}
	return sp.direct
}

func (sp *spaceCore) table(rw ReadOrWrite) *addressTable {
	if rw == WRITE {
		return sp.write
	}
	return sp.read
}

func changingBits(start, end uint32) (changing uint32) {
	changing = start ^ end
	changing |= changing >> 1
	changing |= changing >> 2
	changing |= changing >> 4
	changing |= changing >> 8
	changing |= changing >> 16
	return
}

func (sp *spaceCore) checkRange(what string, start, end, mask, mirror, sel uint32) {
	switch {
	case end < start:
		fatalf(ErrBadRange, "%s: in range %x-%x mask %x mirror %x select %x, start address is after the end address", what, start, end, mask, mirror, sel)
	case start&^sp.addrMask != 0:
		fatalf(ErrBadRange, "%s: in range %x-%x, start address is outside of the global address mask %x", what, start, end, sp.addrMask)
	case end&^sp.addrMask != 0:
		fatalf(ErrBadRange, "%s: in range %x-%x, end address is outside of the global address mask %x", what, start, end, sp.addrMask)
	case mask&^sp.addrMask != 0:
		fatalf(ErrBadRange, "%s: in range %x-%x, mask %x is outside of the global address mask %x", what, start, end, mask, sp.addrMask)
	case (mirror|sel)&^sp.addrMask != 0:
		fatalf(ErrBadRange, "%s: in range %x-%x, mirror %x select %x is outside of the global address mask %x", what, start, end, mirror, sel, sp.addrMask)
	case mirror&sel != 0:
		fatalf(ErrMirrorOverlap, "%s: in range %x-%x, mirror %x and select %x have common bits", what, start, end, mirror, sel)
	case (mirror|sel)&(start|end)&^sp.nativeMask != 0:
		fatalf(ErrMirrorOverlap, "%s: in range %x-%x, mirror %x select %x have common bits with the range", what, start, end, mirror, sel)
	}
}

// checkOptimizeMirror validates a range and widens it to whole native cells.
func (sp *spaceCore) checkOptimizeMirror(what string, start, end, mirror uint32) (nstart, nend, nmask, nmirror uint32) {
	sp.checkRange(what, start, end, 0, mirror, 0)

	nstart = start &^ sp.nativeMask
	nend = end | sp.nativeMask
	nmirror = mirror &^ sp.nativeMask
	nmask = changingBits(nstart, nend)
	return
}

func (sp *spaceCore) checkHandlerWidth(what string, width int, cswidth int) int {
	if width == 0 {
		width = sp.config.DataWidth
	}

	switch width {
	case 8, 16, 32, 64:
	default:
		fatalf(ErrHandlerWidth, "%s: invalid handler width %d", what, width)
	}

	if width > sp.config.DataWidth {
		fatalf(ErrHandlerWidth, "%s: %d-bit handler on the %d-bit space %q", what, width, sp.config.DataWidth, sp.config.Name)
	}

	switch cswidth {
	case 0, 8, 16, 32, 64:
	default:
		fatalf(ErrHandlerWidth, "%s: invalid chip select width %d", what, cswidth)
	}

	if cswidth > sp.config.DataWidth {
		fatalf(ErrHandlerWidth, "%s: chip select width %d wider than the %d-bit space %q", what, cswidth, sp.config.DataWidth, sp.config.Name)
	}

	return width
}

// checkOptimizeAll validates a handler range. A range inside one native
// cell is widened to the cell with the unit mask narrowed to its lanes.
func (sp *spaceCore) checkOptimizeAll(what string, start, end, mask, mirror, sel uint32, unitmask uint64) (nstart, nend, nmask, nmirror uint32, nunitmask uint64) {
	sp.checkRange(what, start, end, mask, mirror, sel)

	nunitmask = bitsMask(sp.config.DataWidth)
	if unitmask != 0 {
		nunitmask &= unitmask
	}

	nstart = start
	nend = end

	low := sp.nativeMask
	if nstart&low != 0 || ^nend&low != 0 {
		if (nstart^nend)&^low != 0 {
			fatalf(ErrUnalignedRange, "%s: in range %x-%x mask %x mirror %x select %x, start or end is unaligned while the range spans more than one native cell (granularity %d)",
				what, start, end, mask, mirror, sel, sp.nativeStep)
		}

		lowbyte := sp.config.AddrToByte(nstart & low)
		highbyte := sp.config.AddrToByte((nend & low) + 1)
		lanes := bitsMask(int(8 * (highbyte - lowbyte)))
		if highbyte == lowbyte {
			lanes = 0
		}

		if sp.config.Endianness == endian.Little {
			nunitmask &= lanes << (8 * lowbyte)
		} else {
			nunitmask &= lanes << (uint32(sp.config.DataWidth) - 8*highbyte)
		}

		nstart &^= low
		nend |= low
	}

	nmirror = (mirror | sel) &^ low
	if mask != 0 {
		nmask = mask | sel
	} else {
		nmask = changingBits(nstart, nend) | sel
	}

	return
}

func (sp *spaceCore) UnmapRead(start, end, mirror uint32) {
	sp.unmapGeneric(start, end, mirror, READ, false)
}

func (sp *spaceCore) UnmapWrite(start, end, mirror uint32) {
	sp.unmapGeneric(start, end, mirror, WRITE, false)
}

func (sp *spaceCore) UnmapReadWrite(start, end, mirror uint32) {
	sp.unmapGeneric(start, end, mirror, READWRITE, false)
}

func (sp *spaceCore) NopRead(start, end, mirror uint32) {
	sp.unmapGeneric(start, end, mirror, READ, true)
}

func (sp *spaceCore) NopWrite(start, end, mirror uint32) {
	sp.unmapGeneric(start, end, mirror, WRITE, true)
}

func (sp *spaceCore) NopReadWrite(start, end, mirror uint32) {
	sp.unmapGeneric(start, end, mirror, READWRITE, true)
}

func (sp *spaceCore) unmapGeneric(start, end, mirror uint32, rw ReadOrWrite, quiet bool) {
	nstart, nend, _, nmirror := sp.checkOptimizeMirror("unmap_generic", start, end, mirror)

	index := uint16(ENTRY_UNMAP)
	if quiet {
		index = ENTRY_NOP
	}

	if rw&READ != 0 {
		sp.read.install(nstart, nend, nmirror, index)
		sp.InvalidateReadCachesRange(nstart, nend|nmirror)
	}

	if rw&WRITE != 0 {
		sp.write.install(nstart, nend, nmirror, index)
	}
}

func (sp *spaceCore) InstallRom(start, end, mirror uint32, base []byte) {
	sp.installRamGeneric(start, end, mirror, READ, base, "rom", "")
}

func (sp *spaceCore) InstallWriteOnly(start, end, mirror uint32, base []byte) {
	sp.installRamGeneric(start, end, mirror, WRITE, base, "ram", "")
}

func (sp *spaceCore) InstallRam(start, end, mirror uint32, base []byte) {
	sp.installRamGeneric(start, end, mirror, READWRITE, base, "ram", "")
}

// installRamGeneric maps memory to a range. A nil base is backed by a
// share (when named) or an anonymous block: during boot the entry stays
// pending until the manager allocates and locates memory.
func (sp *spaceCore) installRamGeneric(start, end, mirror uint32, rw ReadOrWrite, base []byte, label string, share string) {
	nstart, nend, nmask, nmirror := sp.checkOptimizeMirror("install_ram_generic", start, end, mirror)

	byteStart := sp.config.AddrToByte(nstart)
	byteEnd := sp.config.AddrToByteEnd(nend)
	length := uint64(byteEnd) - uint64(byteStart) + 1

	borrowed := base != nil
	if base == nil && sp.manager.initialized {
		if share != "" {
			base = sp.manager.shareFindOrAllocate(sp, share, length).Ptr()
			borrowed = true
		} else {
			block := newMemoryBlock(sp.manager, sp.self, byteStart, byteEnd, nil)
			sp.manager.blocks = append(sp.manager.blocks, block)
			base = block.Data()
		}
	}

	if base != nil && uint64(len(base)) < length {
		fatalf(ErrRegionBounds, "install_ram_generic: range %x-%x needs %d bytes, memory has %d", nstart, nend, length, len(base))
	}

	if borrowed {
		sp.manager.borrowBlock(sp, byteStart, byteEnd, base)
	}

	if share != "" {
		label = f("%s share %s", label, share)
	}

	if rw&READ != 0 {
		entry := &memoryEntry{label: label, share: share, data: base, pending: base == nil}
		sp.read.installEntry(nstart, nend, nmask, nmirror, entry)
		sp.InvalidateReadCachesRange(nstart, nend|nmirror)
	}

	if rw&WRITE != 0 {
		entry := &memoryEntry{label: label, share: share, data: base, pending: base == nil}
		sp.write.installEntry(nstart, nend, nmask, nmirror, entry)
	}
}

func (sp *spaceCore) InstallReadBank(start, end, mirror uint32, bank *MemoryBank) {
	sp.installBankGeneric(start, end, mirror, READ, bank)
}

func (sp *spaceCore) InstallWriteBank(start, end, mirror uint32, bank *MemoryBank) {
	sp.installBankGeneric(start, end, mirror, WRITE, bank)
}

func (sp *spaceCore) InstallReadWriteBank(start, end, mirror uint32, bank *MemoryBank) {
	sp.installBankGeneric(start, end, mirror, READWRITE, bank)
}

func (sp *spaceCore) InstallReadBankTag(start, end, mirror uint32, tag string) *MemoryBank {
	return sp.installBankTag(start, end, mirror, READ, tag)
}

func (sp *spaceCore) InstallWriteBankTag(start, end, mirror uint32, tag string) *MemoryBank {
	return sp.installBankTag(start, end, mirror, WRITE, tag)
}

func (sp *spaceCore) InstallReadWriteBankTag(start, end, mirror uint32, tag string) *MemoryBank {
	return sp.installBankTag(start, end, mirror, READWRITE, tag)
}

func (sp *spaceCore) installBankTag(start, end, mirror uint32, rw ReadOrWrite, tag string) (bank *MemoryBank) {
	nstart, nend, _, _ := sp.checkOptimizeMirror("install_bank", start, end, mirror)
	bank = sp.manager.bankFindOrAllocate(tag, sp.config.AddrToByte(nstart), sp.config.AddrToByteEnd(nend))
	sp.installBankGeneric(start, end, mirror, rw, bank)
	return
}

func (sp *spaceCore) installBankGeneric(start, end, mirror uint32, rw ReadOrWrite, bank *MemoryBank) {
	nstart, nend, nmask, nmirror := sp.checkOptimizeMirror("install_bank_generic", start, end, mirror)

	if rw&READ != 0 {
		bank.AddReference(sp.self, READ)
		sp.read.installEntry(nstart, nend, nmask, nmirror, &bankEntry{bank: bank})
		sp.InvalidateReadCachesRange(nstart, nend|nmirror)
	}

	if rw&WRITE != 0 {
		bank.AddReference(sp.self, WRITE)
		sp.write.installEntry(nstart, nend, nmask, nmirror, &bankEntry{bank: bank})
	}
}

func (sp *spaceCore) InstallReadPort(start, end, mirror uint32, tag string) {
	sp.installPortGeneric(start, end, mirror, READ, tag, "")
}

func (sp *spaceCore) InstallWritePort(start, end, mirror uint32, tag string) {
	sp.installPortGeneric(start, end, mirror, WRITE, "", tag)
}

func (sp *spaceCore) InstallReadWritePort(start, end, mirror uint32, rtag, wtag string) {
	sp.installPortGeneric(start, end, mirror, READWRITE, rtag, wtag)
}

// installPortGeneric installs native width handlers reading or writing a
// named port.
func (sp *spaceCore) installPortGeneric(start, end, mirror uint32, rw ReadOrWrite, rtag, wtag string) {
	if rw&READ != 0 {
		port := sp.manager.Port(rtag)
		sp.installReadHandler(start, end, 0, mirror, 0, ReadHandler{
			Name:  "port " + rtag,
			Width: sp.config.DataWidth,
			Read: func(AddressSpace, uint32, uint64) uint64 {
				return port.Read()
			},
		}, 0, 0)
	}

	if rw&WRITE != 0 {
		port := sp.manager.Port(wtag)
		sp.installWriteHandler(start, end, 0, mirror, 0, WriteHandler{
			Name:  "port " + wtag,
			Width: sp.config.DataWidth,
			Write: func(_ AddressSpace, _ uint32, data uint64, mask uint64) {
				port.Write(data, mask)
			},
		}, 0, 0)
	}
}

func (sp *spaceCore) InstallReadHandler(start, end, mask, mirror, sel uint32, rhandler ReadHandler, unitmask uint64, cswidth int) {
	sp.installReadHandler(start, end, mask, mirror, sel, rhandler, unitmask, cswidth)
}

func (sp *spaceCore) InstallWriteHandler(start, end, mask, mirror, sel uint32, whandler WriteHandler, unitmask uint64, cswidth int) {
	sp.installWriteHandler(start, end, mask, mirror, sel, whandler, unitmask, cswidth)
}

func (sp *spaceCore) InstallReadWriteHandler(start, end, mask, mirror, sel uint32, rhandler ReadHandler, whandler WriteHandler, unitmask uint64, cswidth int) {
	sp.installReadHandler(start, end, mask, mirror, sel, rhandler, unitmask, cswidth)
	sp.installWriteHandler(start, end, mask, mirror, sel, whandler, unitmask, cswidth)
}

func handlerName(name string) string {
	if name == "" {
		return "handler"
	}
	return name
}

func (sp *spaceCore) installReadHandler(start, end, mask, mirror, sel uint32, rhandler ReadHandler, unitmask uint64, cswidth int) {
	const what = "install_read_handler"

	rhandler.Width = sp.checkHandlerWidth(what, rhandler.Width, cswidth)
	nstart, nend, nmask, nmirror, nunitmask := sp.checkOptimizeAll(what, start, end, mask, mirror, sel, unitmask)

	entry := newCallbackEntry(sp, handlerName(rhandler.Name), rhandler.Width, nunitmask, cswidth)
	entry.read = rhandler

	sp.read.installEntry(nstart, nend, nmask, nmirror, entry)
	sp.InvalidateReadCachesRange(nstart, nend|nmirror)
}

func (sp *spaceCore) installWriteHandler(start, end, mask, mirror, sel uint32, whandler WriteHandler, unitmask uint64, cswidth int) {
	const what = "install_write_handler"

	whandler.Width = sp.checkHandlerWidth(what, whandler.Width, cswidth)
	nstart, nend, nmask, nmirror, nunitmask := sp.checkOptimizeAll(what, start, end, mask, mirror, sel, unitmask)

	entry := newCallbackEntry(sp, handlerName(whandler.Name), whandler.Width, nunitmask, cswidth)
	entry.write = whandler

	sp.write.installEntry(nstart, nend, nmask, nmirror, entry)
}

func (sp *spaceCore) InstallSetOffsetHandler(start, end, mask, mirror, sel uint32, handler SetOffsetHandler) {
	nstart, nend, nmask, nmirror, _ := sp.checkOptimizeAll("install_setoffset_handler", start, end, mask, mirror, sel, 0)

	sp.setoffset.installEntry(nstart, nend, nmask, nmirror, &setOffsetEntry{handler: handler})
}

func (sp *spaceCore) InvalidateReadCaches() {
	sp.direct.ForceUpdate()
}

func (sp *spaceCore) InvalidateReadCachesBank(bank *MemoryBank) {
	sp.direct.forceUpdateBank(bank)
}

func (sp *spaceCore) InvalidateReadCachesRange(start, end uint32) {
	sp.direct.removeIntersectingRanges(start, end)
	sp.direct.ForceUpdate()
}

func (sp *spaceCore) GetReadPtr(address uint32) []byte {
	return sp.memoryPtr(sp.read, address)
}

func (sp *spaceCore) GetWritePtr(address uint32) []byte {
	return sp.memoryPtr(sp.write, address)
}

func (sp *spaceCore) memoryPtr(at *addressTable, address uint32) []byte {
	address &= sp.addrMask

	mb, ok := at.entryAt(address).(memoryBacked)
	if !ok {
		return nil
	}

	data := mb.backing()
	offset := sp.config.AddrToByte(mb.base().offset(address))
	if uint64(offset) >= uint64(len(data)) {
		return nil
	}

	return data[offset:]
}

// HandlerName describes what the rw side of the space maps at address.
func (sp *spaceCore) HandlerName(rw ReadOrWrite, address uint32) string {
	return sp.table(rw).entryAt(address & sp.addrMask).Name()
}

// DumpMap writes every mapped range of the rw side of the space.
func (sp *spaceCore) DumpMap(w io.Writer, rw ReadOrWrite) (err error) {
	at := sp.table(rw)

	_, err = fmt.Fprintf(w, "%s:%s %s (%d-bit %v, shift %d)\n",
		sp.device.Tag(), sp.config.Name, rw, sp.config.DataWidth, sp.config.Endianness, sp.config.AddrShift)
	if err != nil {
		return
	}

	for run := range at.runs() {
		_, err = fmt.Fprintf(w, "  %s-%s = %s\n",
			sp.config.FormatAddr(run.start), sp.config.FormatAddr(run.end), at.entry(run.index).Name())
		if err != nil {
			return
		}
	}

	return
}

// locateMemory resolves the backing of pending memory entries.
func (sp *spaceCore) locateMemory() {
	for _, at := range []*addressTable{sp.read, sp.write} {
		for _, entry := range at.handlers {
			me, ok := entry.(*memoryEntry)
			if !ok || !me.pending {
				continue
			}

			byteStart := sp.config.AddrToByte(me.start)
			byteEnd := sp.config.AddrToByteEnd(me.end)

			if me.share != "" {
				me.data = sp.manager.shares[me.share].Ptr()
				me.pending = false
				sp.manager.borrowBlock(sp, byteStart, byteEnd, me.data)
				continue
			}

			block := sp.manager.findBlock(sp.self, byteStart, byteEnd)
			if block == nil {
				fatalf(ErrUnlocated, "space %q range %x-%x has no backing memory", sp.config.Name, me.start, me.end)
			}

			me.data = block.Data()[byteStart-block.ByteStart():]
			me.pending = false
		}
	}

	sp.direct.ForceUpdate()
}

// pendingRanges returns the byte ranges of pending memory without a share.
func (sp *spaceCore) pendingRanges() (ranges [][2]uint32) {
	for _, at := range []*addressTable{sp.read, sp.write} {
		for _, entry := range at.handlers {
			me, ok := entry.(*memoryEntry)
			if !ok || !me.pending || me.share != "" {
				continue
			}
			ranges = append(ranges, [2]uint32{
				sp.config.AddrToByte(me.start),
				sp.config.AddrToByteEnd(me.end),
			})
		}
	}
	return
}

// pendingShares returns the pending memory entries backed by a share.
func (sp *spaceCore) pendingShares() (entries []*memoryEntry) {
	for _, at := range []*addressTable{sp.read, sp.write} {
		for _, entry := range at.handlers {
			me, ok := entry.(*memoryEntry)
			if ok && me.pending && me.share != "" {
				entries = append(entries, me)
			}
		}
	}
	return
}
