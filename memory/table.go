package memory

import (
	"iter"

	"github.com/retroenv/retrogolib/log"

	"github.com/ezrec/emumem/internal"
)

const (
	ENTRY_UNMAP = 0
	ENTRY_NOP   = 1

	MAX_ENTRIES = 1 << 16
)

// addressTable is one dispatch table (read, write or set offset) of a space.
type addressTable struct {
	space    *spaceCore
	cells    lookupTable
	handlers []handlerEntry
	free     []uint16 // Reclaimed handler slots, lowest index last.
}

func newAddressTable(sp *spaceCore, large bool) (at *addressTable) {
	at = &addressTable{
		space: sp,
		handlers: []handlerEntry{
			ENTRY_UNMAP: &unmappedEntry{},
			ENTRY_NOP:   &nopEntry{},
		},
	}

	maxCell := sp.addrMask >> sp.cellShift
	if large {
		at.cells = newLargeTable(maxCell)
	} else {
		at.cells = newSmallTable(maxCell)
	}

	return
}

func (at *addressTable) lookup(address uint32) uint16 {
	return at.cells.lookup(address >> at.space.cellShift)
}

func (at *addressTable) entryAt(address uint32) handlerEntry {
	return at.handlers[at.cells.lookup(address>>at.space.cellShift)]
}

func (at *addressTable) entry(index uint16) handlerEntry {
	return at.handlers[index]
}

func (at *addressTable) add(entry handlerEntry) (index uint16) {
	if len(at.free) == 0 && len(at.handlers) >= MAX_ENTRIES {
		at.reclaim()
	}

	if n := len(at.free); n > 0 {
		index = at.free[n-1]
		at.free = at.free[:n-1]
		at.handlers[index] = entry
		return
	}

	if len(at.handlers) >= MAX_ENTRIES {
		fatalf(ErrOutOfEntries, "space %q has no free handler entries", at.space.config.Name)
	}

	index = uint16(len(at.handlers))
	at.handlers = append(at.handlers, entry)
	return
}

// reclaim frees the slots of entries that no cell refers to any more.
func (at *addressTable) reclaim() {
	live := make([]bool, len(at.handlers))
	for run := range at.runs() {
		live[run.index] = true
	}

	for index := len(at.handlers) - 1; index > ENTRY_NOP; index-- {
		if live[index] || at.handlers[index] == nil {
			continue
		}
		at.handlers[index] = nil
		at.free = append(at.free, uint16(index))
		if at == at.space.read && at.space.direct != nil {
			delete(at.space.direct.history, uint16(index))
		}
	}

	at.space.manager.logger.Debug("handler entries reclaimed",
		log.String("space", at.space.config.Name),
		log.Int("free", len(at.free)))
}

// liveEntries counts the handler slots in use.
func (at *addressTable) liveEntries() int {
	return len(at.handlers) - len(at.free)
}

// install assigns index to start-end and every mirror of it.
func (at *addressTable) install(start, end, mirror uint32, index uint16) {
	shift := at.space.cellShift
	for bits := range internal.MirrorSubsets(mirror) {
		at.cells.populate((start|bits)>>shift, (end|bits)>>shift, index)
	}
}

// installEntry adds entry and assigns it to start-end and its mirrors.
func (at *addressTable) installEntry(start, end, mask, mirror uint32, entry handlerEntry) {
	eb := entry.base()
	eb.start = start
	eb.end = end
	eb.mask = mask
	at.install(start, end, mirror, at.add(entry))
}

// deriveRange returns the largest window around address where the entry is
// the same and the backing offset grows linearly with the address.
func (at *addressTable) deriveRange(address uint32) (start, end uint32) {
	sp := at.space
	shift := sp.cellShift
	index := at.lookup(address)
	eb := at.handlers[index].base()

	lo := uint32(0)
	hi := sp.addrMask

	// Stay within one copy of a mirrored or masked range.
	linear := eb.mask &^ (eb.mask + 1)
	if index > ENTRY_NOP && linear != sp.addrMask {
		copyStart := eb.start + ((address - eb.start) &^ linear)
		lo = copyStart
		hi = copyStart + linear
		if hi < lo || hi > sp.addrMask {
			hi = sp.addrMask
		}
	}

	first, last := at.cells.extent(address>>shift, lo>>shift, hi>>shift)
	start = first << shift
	end = (last << shift) | sp.nativeMask
	return
}

type tableRun struct {
	start uint32
	end   uint32
	index uint16
}

// runs yields every maximal run of addresses mapped to one entry.
func (at *addressTable) runs() iter.Seq[tableRun] {
	return func(yield func(tableRun) bool) {
		sp := at.space
		shift := sp.cellShift
		maxCell := sp.addrMask >> shift
		for cell := uint32(0); ; {
			first, last := at.cells.extent(cell, cell, maxCell)
			run := tableRun{
				start: first << shift,
				end:   (last << shift) | sp.nativeMask,
				index: at.cells.lookup(cell),
			}
			if !yield(run) || last == maxCell {
				return
			}
			cell = last + 1
		}
	}
}
