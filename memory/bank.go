package memory

import (
	"weak"
)

//go:generate go tool stringer -linecomment -type=ReadOrWrite

// ReadOrWrite selects the read side, write side, or both sides of a space.
type ReadOrWrite int

const (
	READ      ReadOrWrite = 1 // read
	WRITE     ReadOrWrite = 2 // write
	READWRITE ReadOrWrite = 3 // readwrite
)

const TOTAL_MEMORY_BANKS = 512

type bankReference struct {
	space weak.Pointer[spaceCore]
	rw    ReadOrWrite
}

func (br *bankReference) matches(sp *spaceCore, rw ReadOrWrite) bool {
	return br.space.Value() == sp && (rw == READWRITE || rw == br.rw)
}

// MemoryBank is a named, switchable window onto one of several buffers.
type MemoryBank struct {
	index      int
	tag        string
	anonymous  bool
	byteStart  uint32
	byteEnd    uint32
	current    int
	entries    [][]byte
	references []bankReference
}

func (mb *MemoryBank) Index() int        { return mb.index }
func (mb *MemoryBank) Tag() string       { return mb.tag }
func (mb *MemoryBank) Anonymous() bool   { return mb.anonymous }
func (mb *MemoryBank) ByteStart() uint32 { return mb.byteStart }
func (mb *MemoryBank) ByteEnd() uint32   { return mb.byteEnd }
func (mb *MemoryBank) Entry() int        { return mb.current }
func (mb *MemoryBank) EntryCount() int   { return len(mb.entries) }

// Base returns the buffer of the current entry, or nil when unconfigured.
func (mb *MemoryBank) Base() []byte {
	if mb.current < len(mb.entries) {
		return mb.entries[mb.current]
	}
	return nil
}

// MatchesExactly reports if the bank covers exactly the byte range.
func (mb *MemoryBank) MatchesExactly(byteStart, byteEnd uint32) bool {
	return mb.byteStart == byteStart && mb.byteEnd == byteEnd
}

// FullyCovers reports if the bank covers all of the byte range.
func (mb *MemoryBank) FullyCovers(byteStart, byteEnd uint32) bool {
	return byteStart >= mb.byteStart && byteEnd <= mb.byteEnd
}

// IsCoveredBy reports if the byte range covers all of the bank.
func (mb *MemoryBank) IsCoveredBy(byteStart, byteEnd uint32) bool {
	return mb.byteStart >= byteStart && mb.byteEnd <= byteEnd
}

// Straddles reports if the bank and the byte range intersect.
func (mb *MemoryBank) Straddles(byteStart, byteEnd uint32) bool {
	return mb.byteStart <= byteEnd && mb.byteEnd >= byteStart
}

// ReferencesSpace reports if space accesses the bank on the rw side.
// READWRITE matches either side.
func (mb *MemoryBank) ReferencesSpace(space AddressSpace, rw ReadOrWrite) bool {
	sp := space.core()
	for n := range mb.references {
		if mb.references[n].matches(sp, rw) {
			return true
		}
	}
	return false
}

// AddReference records that space accesses the bank on the rw side.
func (mb *MemoryBank) AddReference(space AddressSpace, rw ReadOrWrite) {
	if mb.ReferencesSpace(space, rw) {
		return
	}

	mb.references = append(mb.references, bankReference{
		space: weak.Make(space.core()),
		rw:    rw,
	})
}

func (mb *MemoryBank) expandEntries(count int) {
	if count > len(mb.entries) {
		mb.entries = append(mb.entries, make([][]byte, count-len(mb.entries))...)
	}
}

// ConfigureEntry sets the buffer of entry n.
func (mb *MemoryBank) ConfigureEntry(n int, base []byte) {
	if n < 0 {
		fatalf(ErrBankEntry, "bank %q configure_entry called with invalid entry %d", mb.tag, n)
	}

	mb.expandEntries(n + 1)
	mb.entries[n] = base

	if n == mb.current {
		mb.invalidateReferences()
	}
}

// ConfigureEntries sets num entries starting at start, each stride bytes
// further into base.
func (mb *MemoryBank) ConfigureEntries(start int, num int, base []byte, stride int) {
	if start < 0 || num < 0 || stride < 0 {
		fatalf(ErrBankEntry, "bank %q configure_entries called with start %d num %d stride %d", mb.tag, start, num, stride)
	}

	if num > 0 && (num-1)*stride > len(base) {
		fatalf(ErrRegionBounds, "bank %q configure_entries needs %d bytes, has %d", mb.tag, (num-1)*stride, len(base))
	}

	mb.expandEntries(start + num)
	for n := range num {
		mb.entries[start+n] = base[n*stride:]
	}

	if mb.current >= start && mb.current < start+num {
		mb.invalidateReferences()
	}
}

// SetEntry switches the bank to entry n, expanding storage on demand.
func (mb *MemoryBank) SetEntry(n int) {
	if n < 0 {
		fatalf(ErrBankEntry, "bank %q set_entry called with invalid entry %d", mb.tag, n)
	}

	mb.expandEntries(n + 1)
	mb.current = n
	mb.invalidateReferences()
}

// SetBase replaces the buffer of the current entry.
func (mb *MemoryBank) SetBase(base []byte) {
	mb.expandEntries(mb.current + 1)
	mb.entries[mb.current] = base
	mb.invalidateReferences()
}

// SetEntryFrom switches the bank to entry n on behalf of space, which must
// have declared a reference to the bank.
func (mb *MemoryBank) SetEntryFrom(space AddressSpace, n int) {
	mb.checkReference(space)
	mb.SetEntry(n)
}

// SetBaseFrom replaces the buffer of the current entry on behalf of space,
// which must have declared a reference to the bank.
func (mb *MemoryBank) SetBaseFrom(space AddressSpace, base []byte) {
	mb.checkReference(space)
	mb.SetBase(base)
}

func (mb *MemoryBank) checkReference(space AddressSpace) {
	if !mb.ReferencesSpace(space, READWRITE) {
		fatalf(ErrBankReference, "bank %q is not referenced by space %q", mb.tag, space.Name())
	}
}

func (mb *MemoryBank) invalidateReferences() {
	for n := range mb.references {
		ref := &mb.references[n]
		if ref.rw&READ == 0 {
			continue
		}
		if sp := ref.space.Value(); sp != nil {
			sp.direct.forceUpdateBank(mb)
		}
	}
}
