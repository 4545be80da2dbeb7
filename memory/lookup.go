package memory

const (
	LARGE_PAGE_BITS  = 12
	LARGE_PAGE_CELLS = 1 << LARGE_PAGE_BITS
	LARGE_PAGE_MASK  = LARGE_PAGE_CELLS - 1
)

// lookupTable maps native cells to handler entry indexes.
type lookupTable interface {
	// lookup returns the entry index of a cell.
	lookup(cell uint32) uint16
	// populate assigns an entry index to the cells first to last.
	populate(first, last uint32, index uint16)
	// extent returns the run of cells around cell, within lo to hi,
	// that share its entry index.
	extent(cell, lo, hi uint32) (first, last uint32)
}

// smallTable is a flat array of entry indexes, one per cell.
type smallTable struct {
	cells []uint16
}

var _ lookupTable = (*smallTable)(nil)

func newSmallTable(maxCell uint32) *smallTable {
	return &smallTable{cells: make([]uint16, uint64(maxCell)+1)}
}

func (st *smallTable) lookup(cell uint32) uint16 {
	return st.cells[cell]
}

func (st *smallTable) populate(first, last uint32, index uint16) {
	cells := st.cells[first : uint64(last)+1]
	for n := range cells {
		cells[n] = index
	}
}

func (st *smallTable) extent(cell, lo, hi uint32) (first, last uint32) {
	index := st.cells[cell]

	first = cell
	for first > lo && st.cells[first-1] == index {
		first--
	}

	last = cell
	for last < hi && st.cells[last+1] == index {
		last++
	}

	return
}

// largeTable is a page table. A page with a nil cell array maps every
// one of its cells to the page's uniform index.
type largeTable struct {
	pages   []*[LARGE_PAGE_CELLS]uint16
	uniform []uint16
}

var _ lookupTable = (*largeTable)(nil)

func newLargeTable(maxCell uint32) *largeTable {
	count := (uint64(maxCell) >> LARGE_PAGE_BITS) + 1
	return &largeTable{
		pages:   make([]*[LARGE_PAGE_CELLS]uint16, count),
		uniform: make([]uint16, count),
	}
}

func (lt *largeTable) lookup(cell uint32) uint16 {
	page := cell >> LARGE_PAGE_BITS
	if cells := lt.pages[page]; cells != nil {
		return cells[cell&LARGE_PAGE_MASK]
	}
	return lt.uniform[page]
}

func (lt *largeTable) populate(first, last uint32, index uint16) {
	for page := uint64(first >> LARGE_PAGE_BITS); page <= uint64(last>>LARGE_PAGE_BITS); page++ {
		pageFirst := uint32(page << LARGE_PAGE_BITS)
		pageLast := pageFirst | LARGE_PAGE_MASK

		lo := max(first, pageFirst)
		hi := min(last, pageLast)

		if lo == pageFirst && hi == pageLast {
			lt.pages[page] = nil
			lt.uniform[page] = index
			continue
		}

		cells := lt.pages[page]
		if cells == nil {
			cells = &[LARGE_PAGE_CELLS]uint16{}
			for n := range cells {
				cells[n] = lt.uniform[page]
			}
			lt.pages[page] = cells
		}

		for cell := lo; cell <= hi; cell++ {
			cells[cell&LARGE_PAGE_MASK] = index
			if cell == hi {
				break
			}
		}
	}
}

func (lt *largeTable) extent(cell, lo, hi uint32) (first, last uint32) {
	index := lt.lookup(cell)

	first = cell
	for first > lo {
		prev := first - 1
		page := prev >> LARGE_PAGE_BITS
		if lt.pages[page] == nil {
			if lt.uniform[page] != index {
				break
			}
			first = max(prev&^LARGE_PAGE_MASK, lo)
			continue
		}
		if lt.pages[page][prev&LARGE_PAGE_MASK] != index {
			break
		}
		first = prev
	}

	last = cell
	for last < hi {
		next := last + 1
		page := next >> LARGE_PAGE_BITS
		if lt.pages[page] == nil {
			if lt.uniform[page] != index {
				break
			}
			last = min(next|LARGE_PAGE_MASK, hi)
			continue
		}
		if lt.pages[page][next&LARGE_PAGE_MASK] != index {
			break
		}
		last = next
	}

	return
}
