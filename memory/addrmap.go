package memory

//go:generate go tool stringer -linecomment -type=TargetKind

// TargetKind is what one side of a map entry resolves to.
type TargetKind int

const (
	TARGET_NONE    TargetKind = iota // none
	TARGET_RAM                       // ram
	TARGET_ROM                       // rom
	TARGET_BANK                      // bank
	TARGET_PORT                      // port
	TARGET_HANDLER                   // handler
	TARGET_NOP                       // nop
	TARGET_UNMAP                     // unmap
)

// MapTarget is the read or write side of a map entry.
type MapTarget struct {
	Kind  TargetKind
	Tag   string       // Bank or port tag.
	Read  ReadHandler  // TARGET_HANDLER on the read side.
	Write WriteHandler // TARGET_HANDLER on the write side.
}

// MapEntry is one range installation of an address map.
type MapEntry struct {
	Start    uint32
	End      uint32
	Mirror   uint32
	Mask     uint32
	Select   uint32
	UnitMask uint64
	CSWidth  int

	Read      MapTarget
	Write     MapTarget
	SetOffset *SetOffsetHandler

	Share        string // Shared memory name for RAM and ROM targets.
	Region       string // Region backing RAM and ROM targets.
	RegionOffset uint32
	Memory       []byte // Explicit backing for RAM and ROM targets.
}

// AddressMap is the ordered list of installations for one space.
// Later entries win where ranges overlap.
type AddressMap struct {
	Unmap   uint64 // Value read from unmapped addresses.
	Entries []*MapEntry
}

// Add appends an entry to the map.
func (am *AddressMap) Add(entry MapEntry) *MapEntry {
	e := &entry
	am.Entries = append(am.Entries, e)
	return e
}

// Ram maps read/write memory.
func (am *AddressMap) Ram(start, end uint32) *MapEntry {
	return am.Add(MapEntry{Start: start, End: end, Read: MapTarget{Kind: TARGET_RAM}, Write: MapTarget{Kind: TARGET_RAM}})
}

// Rom maps read only memory, by default backed by the region named after
// the device.
func (am *AddressMap) Rom(start, end uint32) *MapEntry {
	return am.Add(MapEntry{Start: start, End: end, Read: MapTarget{Kind: TARGET_ROM}})
}

// WriteOnly maps write only memory.
func (am *AddressMap) WriteOnly(start, end uint32) *MapEntry {
	return am.Add(MapEntry{Start: start, End: end, Write: MapTarget{Kind: TARGET_RAM}})
}

// Nop maps a range that ignores writes and reads as the unmap value,
// without logging.
func (am *AddressMap) Nop(start, end uint32) *MapEntry {
	return am.Add(MapEntry{Start: start, End: end, Read: MapTarget{Kind: TARGET_NOP}, Write: MapTarget{Kind: TARGET_NOP}})
}

// Unmapped explicitly unmaps a range.
func (am *AddressMap) Unmapped(start, end uint32) *MapEntry {
	return am.Add(MapEntry{Start: start, End: end, Read: MapTarget{Kind: TARGET_UNMAP}, Write: MapTarget{Kind: TARGET_UNMAP}})
}

// Bank maps the bank named tag on both sides.
func (am *AddressMap) Bank(start, end uint32, tag string) *MapEntry {
	return am.Add(MapEntry{Start: start, End: end, Read: MapTarget{Kind: TARGET_BANK, Tag: tag}, Write: MapTarget{Kind: TARGET_BANK, Tag: tag}})
}

// Port maps ports; an empty tag leaves that side unmapped.
func (am *AddressMap) Port(start, end uint32, rtag, wtag string) *MapEntry {
	entry := MapEntry{Start: start, End: end}
	if rtag != "" {
		entry.Read = MapTarget{Kind: TARGET_PORT, Tag: rtag}
	}
	if wtag != "" {
		entry.Write = MapTarget{Kind: TARGET_PORT, Tag: wtag}
	}
	return am.Add(entry)
}

// Read maps a read handler.
func (am *AddressMap) Read(start, end uint32, handler ReadHandler) *MapEntry {
	return am.Add(MapEntry{Start: start, End: end, Read: MapTarget{Kind: TARGET_HANDLER, Read: handler}})
}

// Write maps a write handler.
func (am *AddressMap) Write(start, end uint32, handler WriteHandler) *MapEntry {
	return am.Add(MapEntry{Start: start, End: end, Write: MapTarget{Kind: TARGET_HANDLER, Write: handler}})
}

func (me *MapEntry) WithMirror(mirror uint32) *MapEntry {
	me.Mirror = mirror
	return me
}

func (me *MapEntry) WithMask(mask uint32) *MapEntry {
	me.Mask = mask
	return me
}

func (me *MapEntry) WithSelect(sel uint32) *MapEntry {
	me.Select = sel
	return me
}

func (me *MapEntry) WithUnitMask(unitmask uint64, cswidth int) *MapEntry {
	me.UnitMask = unitmask
	me.CSWidth = cswidth
	return me
}

func (me *MapEntry) WithShare(name string) *MapEntry {
	me.Share = name
	return me
}

func (me *MapEntry) WithRegion(name string, offset uint32) *MapEntry {
	me.Region = name
	me.RegionOffset = offset
	return me
}

func (me *MapEntry) WithMemory(base []byte) *MapEntry {
	me.Memory = base
	return me
}

// WithWrite sets the write side of a handler entry.
func (me *MapEntry) WithWrite(handler WriteHandler) *MapEntry {
	me.Write = MapTarget{Kind: TARGET_HANDLER, Write: handler}
	return me
}

// WithSetOffset attaches a set offset handler to the range.
func (me *MapEntry) WithSetOffset(handler SetOffsetHandler) *MapEntry {
	me.SetOffset = &handler
	return me
}

// populateFromMap installs the device's address map into the space.
func (sp *spaceCore) populateFromMap() {
	am := &AddressMap{}
	sp.device.AddressMap(sp.spacenum, am)

	sp.unmap = am.Unmap
	for _, entry := range am.Entries {
		sp.populateEntry(entry, READ)
		sp.populateEntry(entry, WRITE)
		if entry.SetOffset != nil {
			sp.InstallSetOffsetHandler(entry.Start, entry.End, entry.Mask, entry.Mirror, entry.Select, *entry.SetOffset)
		}
	}
}

func (sp *spaceCore) populateEntry(entry *MapEntry, rw ReadOrWrite) {
	target := entry.Read
	if rw == WRITE {
		target = entry.Write
	}

	switch target.Kind {
	case TARGET_NONE:
	case TARGET_RAM, TARGET_ROM:
		label := target.Kind.String()
		if entry.Region != "" {
			label = f("%s region %s+%x", label, entry.Region, entry.RegionOffset)
		}
		sp.installRamGeneric(entry.Start, entry.End, entry.Mirror, rw, sp.entryMemory(entry, target.Kind), label, entry.Share)
	case TARGET_NOP:
		sp.unmapGeneric(entry.Start, entry.End, entry.Mirror, rw, true)
	case TARGET_UNMAP:
		sp.unmapGeneric(entry.Start, entry.End, entry.Mirror, rw, false)
	case TARGET_BANK:
		sp.installBankTag(entry.Start, entry.End, entry.Mirror, rw, target.Tag)
	case TARGET_PORT:
		if rw == READ {
			sp.installPortGeneric(entry.Start, entry.End, entry.Mirror, READ, target.Tag, "")
		} else {
			sp.installPortGeneric(entry.Start, entry.End, entry.Mirror, WRITE, "", target.Tag)
		}
	case TARGET_HANDLER:
		if rw == READ {
			sp.installReadHandler(entry.Start, entry.End, entry.Mask, entry.Mirror, entry.Select, target.Read, entry.UnitMask, entry.CSWidth)
		} else {
			sp.installWriteHandler(entry.Start, entry.End, entry.Mask, entry.Mirror, entry.Select, target.Write, entry.UnitMask, entry.CSWidth)
		}
	}
}

// entryMemory finds the memory supplied for a RAM or ROM entry: explicit
// memory, a region, the region named after the device for ROM, or an
// already allocated share. It returns nil when memory must be allocated.
func (sp *spaceCore) entryMemory(entry *MapEntry, kind TargetKind) []byte {
	if entry.Memory != nil {
		return entry.Memory
	}

	byteStart := sp.config.AddrToByte(entry.Start &^ sp.nativeMask)
	byteEnd := sp.config.AddrToByteEnd(entry.End | sp.nativeMask)
	length := uint64(byteEnd) - uint64(byteStart) + 1

	name := entry.Region
	offset := entry.RegionOffset
	if name == "" && kind == TARGET_ROM && entry.Share == "" {
		if sp.manager.Region(sp.device.Tag()) == nil {
			return nil
		}
		name = sp.device.Tag()
		offset = byteStart
	}

	if name == "" {
		if share := sp.manager.Share(entry.Share); share != nil {
			return share.Ptr()
		}
		return nil
	}

	region := sp.manager.Region(name)
	if region == nil {
		fatalf(ErrNoSuchRegion, "%s:%s range %x-%x references missing region %q", sp.device.Tag(), sp.config.Name, entry.Start, entry.End, name)
	}

	if uint64(offset)+length > uint64(region.Bytes()) {
		fatalf(ErrRegionBounds, "%s:%s range %x-%x extends beyond the end of region %q", sp.device.Tag(), sp.config.Name, entry.Start, entry.End, name)
	}

	return region.Data()[offset:]
}
