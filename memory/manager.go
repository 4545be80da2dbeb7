package memory

import (
	"cmp"
	"fmt"
	"iter"
	"maps"
	"slices"
	"unsafe"

	"github.com/retroenv/retrogolib/log"

	"github.com/ezrec/emumem/endian"
	"github.com/ezrec/emumem/internal"
)

type deviceSpaces struct {
	device Device
	spaces []AddressSpace
}

// Manager owns the memory of a machine and boots its address spaces.
//
// Devices are compared by identity and should be pointers.
type Manager struct {
	Verbose bool // If set, unmapped accesses are logged.

	logger      *log.Logger
	initialized bool
	devices     []*deviceSpaces
	ports       map[string]Port
	regions     map[string]*MemoryRegion
	shares      map[string]*MemoryShare
	banks       map[string]*MemoryBank
	bankList    []*MemoryBank
	blocks      []*MemoryBlock
}

// NewManager creates a memory manager. A nil logger uses NewLogger(false).
func NewManager(logger *log.Logger) *Manager {
	if logger == nil {
		logger = NewLogger(false)
	}

	return &Manager{
		logger:  logger,
		ports:   make(map[string]Port),
		regions: make(map[string]*MemoryRegion),
		shares:  make(map[string]*MemoryShare),
		banks:   make(map[string]*MemoryBank),
	}
}

func (m *Manager) Logger() *log.Logger { return m.logger }
func (m *Manager) Initialized() bool   { return m.initialized }

// AddDevice registers a device whose spaces are built by Initialize.
func (m *Manager) AddDevice(dev Device) {
	if m.find(dev) == nil {
		m.devices = append(m.devices, &deviceSpaces{device: dev})
	}
}

// Devices returns the registered devices in registration order.
func (m *Manager) Devices() (devs []Device) {
	for _, ds := range m.devices {
		devs = append(devs, ds.device)
	}
	return
}

func (m *Manager) find(dev Device) *deviceSpaces {
	for _, ds := range m.devices {
		if ds.device == dev {
			return ds
		}
	}
	return nil
}

// Allocate builds the address spaces of a device, registering it if needed.
// Each space gets the engine matching its width, endianness, address
// shift and size.
func (m *Manager) Allocate(dev Device) {
	m.AddDevice(dev)

	ds := m.find(dev)
	if ds.spaces != nil {
		return
	}

	ds.spaces = make([]AddressSpace, MAX_SPACES)
	for spacenum := range MAX_SPACES {
		cfg := dev.SpaceConfig(spacenum)
		if cfg == nil {
			continue
		}
		ds.spaces[spacenum] = newAddressSpace(m, dev, spacenum, cfg)
		m.logger.Debug("allocated address space",
			log.String("device", dev.Tag()),
			log.String("space", cfg.Name),
			log.String("config", fmt.Sprintf("%d-bit %v shift %d", cfg.DataWidth, cfg.Endianness, cfg.AddrShift)))
	}
}

// Space returns a space of a device, or nil.
func (m *Manager) Space(dev Device, spacenum int) AddressSpace {
	ds := m.find(dev)
	if ds == nil || spacenum < 0 || spacenum >= len(ds.spaces) {
		return nil
	}
	return ds.spaces[spacenum]
}

// Spaces iterates over every allocated space.
func (m *Manager) Spaces() iter.Seq[AddressSpace] {
	var seqs []iter.Seq[AddressSpace]
	for _, ds := range m.devices {
		seqs = append(seqs, slices.Values(ds.spaces))
	}

	return func(yield func(AddressSpace) bool) {
		for space := range internal.IterSeqConcat(seqs...) {
			if space == nil {
				continue
			}
			if !yield(space) {
				return
			}
		}
	}
}

func (m *Manager) cores() iter.Seq[*spaceCore] {
	return func(yield func(*spaceCore) bool) {
		for space := range m.Spaces() {
			if !yield(space.core()) {
				return
			}
		}
	}
}

// Initialize boots every registered device: allocate spaces, populate their
// address maps, allocate backing memory, then locate it. A contract
// violation aborts with its *FatalError.
func (m *Manager) Initialize() (err error) {
	defer Recover(&err)

	if m.initialized {
		err = ErrAlreadyInitialized
		return
	}

	for _, ds := range m.devices {
		m.Allocate(ds.device)
	}

	for sp := range m.cores() {
		sp.populateFromMap()
	}

	for sp := range m.cores() {
		m.allocateMemory(sp)
	}

	for sp := range m.cores() {
		sp.locateMemory()
	}

	if !m.Verbose {
		for sp := range m.cores() {
			sp.logUnmap = false
		}
	}

	m.initialized = true
	m.logger.Debug("memory initialized",
		log.Int("blocks", len(m.blocks)),
		log.Int("banks", len(m.bankList)))

	return
}

func mergeRanges(ranges [][2]uint32) (merged [][2]uint32) {
	slices.SortFunc(ranges, func(a, b [2]uint32) int {
		return cmp.Compare(a[0], b[0])
	})

	for _, r := range ranges {
		if n := len(merged); n > 0 && uint64(r[0]) <= uint64(merged[n-1][1])+1 {
			merged[n-1][1] = max(merged[n-1][1], r[1])
			continue
		}
		merged = append(merged, r)
	}

	return
}

// allocateMemory backs the pending memory entries and unconfigured banks of
// a space with shares and coalesced blocks.
func (m *Manager) allocateMemory(sp *spaceCore) {
	for _, me := range sp.pendingShares() {
		length := uint64(sp.config.AddrToByteEnd(me.end)) - uint64(sp.config.AddrToByte(me.start)) + 1
		m.shareFindOrAllocate(sp, me.share, length)
	}

	var banks []*MemoryBank
	ranges := sp.pendingRanges()
	for _, bank := range m.bankList {
		if bank.EntryCount() == 0 && bank.ReferencesSpace(sp.self, READWRITE) {
			banks = append(banks, bank)
			ranges = append(ranges, [2]uint32{bank.byteStart, bank.byteEnd})
		}
	}

	for _, r := range mergeRanges(ranges) {
		m.blocks = append(m.blocks, newMemoryBlock(m, sp.self, r[0], r[1], nil))
	}

	for _, bank := range banks {
		block := m.findBlock(sp.self, bank.byteStart, bank.byteEnd)
		bank.ConfigureEntry(0, block.Data()[bank.byteStart-block.ByteStart():])
	}
}

// borrowBlock records memory not allocated by the manager, such as a region
// or a share, as a block of the space. Repeats are ignored.
func (m *Manager) borrowBlock(sp *spaceCore, byteStart, byteEnd uint32, memory []byte) {
	for _, block := range m.blocks {
		if block.ownership == BORROWED && block.space == sp.self &&
			block.byteStart == byteStart && block.byteEnd == byteEnd &&
			unsafe.SliceData(block.data) == unsafe.SliceData(memory) {
			return
		}
	}

	m.blocks = append(m.blocks, newMemoryBlock(m, sp.self, byteStart, byteEnd, memory))
}

// findBlock returns the allocated block backing a byte range.
func (m *Manager) findBlock(space AddressSpace, byteStart, byteEnd uint32) *MemoryBlock {
	for _, block := range m.blocks {
		if block.ownership == OWNED && block.Contains(space, byteStart, byteEnd) {
			return block
		}
	}
	return nil
}

// Blocks returns every memory block in allocation order.
func (m *Manager) Blocks() []*MemoryBlock {
	return slices.Clone(m.blocks)
}

// RegionAlloc creates a zeroed region. A duplicate name is fatal.
func (m *Manager) RegionAlloc(name string, length uint32, width uint8, e endian.Endianness) (region *MemoryRegion) {
	if _, ok := m.regions[name]; ok {
		fatalf(ErrDuplicateRegion, "region_alloc called with duplicate region name %q", name)
	}

	region = newMemoryRegion(name, length, width, e)
	m.regions[name] = region
	return
}

// RegionFree forgets a region.
func (m *Manager) RegionFree(name string) {
	delete(m.regions, name)
}

// Region returns a region by name, or nil.
func (m *Manager) Region(name string) *MemoryRegion {
	return m.regions[name]
}

// Regions returns every region ordered by name.
func (m *Manager) Regions() (regions []*MemoryRegion) {
	for _, name := range slices.Sorted(maps.Keys(m.regions)) {
		regions = append(regions, m.regions[name])
	}
	return
}

// RegionContaining returns the region whose buffer holds all of data, or nil.
func (m *Manager) RegionContaining(data []byte) *MemoryRegion {
	if len(data) == 0 {
		return nil
	}

	start := uintptr(unsafe.Pointer(unsafe.SliceData(data)))
	end := start + uintptr(len(data))
	for _, region := range m.regions {
		if len(region.data) == 0 {
			continue
		}
		base := uintptr(unsafe.Pointer(unsafe.SliceData(region.data)))
		if start >= base && end <= base+uintptr(len(region.data)) {
			return region
		}
	}

	return nil
}

// Share returns a share by name, or nil.
func (m *Manager) Share(name string) *MemoryShare {
	return m.shares[name]
}

// Shares returns every share ordered by name.
func (m *Manager) Shares() (shares []*MemoryShare) {
	for _, name := range slices.Sorted(maps.Keys(m.shares)) {
		shares = append(shares, m.shares[name])
	}
	return
}

func (m *Manager) shareFindOrAllocate(sp *spaceCore, name string, length uint64) (share *MemoryShare) {
	share = m.shares[name]
	if share != nil {
		if uint64(share.Bytes()) < length {
			fatalf(ErrRegionBounds, "share %q has %d bytes, %s:%s needs %d", name, share.Bytes(), sp.device.Tag(), sp.config.Name, length)
		}
		return
	}

	share = newMemoryShare(name, make([]byte, length), sp.config.DataWidth, sp.config.Endianness)
	m.shares[name] = share
	m.logger.Debug("allocated memory share",
		log.String("share", name),
		log.Int("bytes", int(length)))
	return
}

// Bank returns a bank by tag, or nil.
func (m *Manager) Bank(tag string) *MemoryBank {
	return m.banks[tag]
}

// Banks returns every bank in allocation order.
func (m *Manager) Banks() []*MemoryBank {
	return slices.Clone(m.bankList)
}

// bankFindOrAllocate returns the bank with tag, creating it for the byte
// range when missing. An empty tag creates an anonymous bank.
func (m *Manager) bankFindOrAllocate(tag string, byteStart, byteEnd uint32) (bank *MemoryBank) {
	if tag != "" {
		if bank = m.banks[tag]; bank != nil {
			return
		}
	}

	if len(m.bankList) >= TOTAL_MEMORY_BANKS {
		fatalf(ErrTooManyBanks, "too many memory banks allocating %q", tag)
	}

	bank = &MemoryBank{
		index:     len(m.bankList),
		tag:       tag,
		anonymous: tag == "",
		byteStart: byteStart,
		byteEnd:   byteEnd,
	}
	if bank.anonymous {
		bank.tag = fmt.Sprintf("~%d~", bank.index)
	}

	m.banks[bank.tag] = bank
	m.bankList = append(m.bankList, bank)
	return
}

// AddPort registers a named port.
func (m *Manager) AddPort(tag string, port Port) {
	m.ports[tag] = port
}

// Port returns a named port. A missing port is fatal.
func (m *Manager) Port(tag string) Port {
	port, ok := m.ports[tag]
	if !ok {
		fatalf(ErrNoSuchPort, "non-existent port %q", tag)
	}
	return port
}
