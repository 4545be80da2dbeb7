package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/emumem/endian"
)

func bankedSpace(t *testing.T) (m *Manager, space AddressSpace, rom *MemoryRegion) {
	m = NewManager(nil)
	rom = m.RegionAlloc("banks", 0x8000, 1, endian.Little)
	for n := range rom.Data() {
		rom.Data()[n] = uint8(n >> 12)
	}

	dev := newTestDevice("maincpu", programConfig(8, endian.Little, 16, 0), func(am *AddressMap) {
		am.Ram(0x0000, 0x7fff)
		am.Add(MapEntry{Start: 0x8000, End: 0xbfff, Read: MapTarget{Kind: TARGET_BANK, Tag: "bank1"}})
	})
	m.AddDevice(dev)
	assert.NoError(t, m.Initialize())

	space = m.Space(dev, AS_PROGRAM)
	return
}

func TestBankSwitch(t *testing.T) {
	assert := assert.New(t)

	m, space, rom := bankedSpace(t)

	bank := m.Bank("bank1")
	assert.NotNil(bank)
	assert.False(bank.Anonymous())
	assert.Equal(uint32(0x8000), bank.ByteStart())
	assert.Equal(uint32(0xbfff), bank.ByteEnd())
	assert.True(bank.ReferencesSpace(space, READ))
	assert.False(bank.ReferencesSpace(space, WRITE))
	assert.True(bank.ReferencesSpace(space, READWRITE))

	// Unconfigured banks are backed by allocated memory.
	assert.Equal(1, bank.EntryCount())
	assert.Equal(uint8(0), space.Read8(0x8000))

	bank.ConfigureEntries(0, 2, rom.Data(), 0x4000)
	assert.Equal(2, bank.EntryCount())
	assert.Equal(uint8(0x00), space.Read8(0x8000))
	assert.Equal(uint8(0x03), space.Read8(0xbfff))

	bank.SetEntry(1)
	assert.Equal(1, bank.Entry())
	assert.Equal(uint8(0x04), space.Read8(0x8000))
	assert.Equal(uint8(0x07), space.Read8(0xbfff))
	assert.Equal("bank bank1", space.HandlerName(READ, 0x9000))
	assert.Equal("unmapped", space.HandlerName(WRITE, 0x9000))

	// An entry with no buffer reads as unmapped.
	bank.SetEntry(5)
	assert.Equal(6, bank.EntryCount())
	assert.Nil(bank.Base())
	assert.Equal(uint8(0), space.Read8(0x8000))
}

func TestBankDirectInvalidation(t *testing.T) {
	assert := assert.New(t)

	m, space, rom := bankedSpace(t)

	bank := m.Bank("bank1")
	bank.ConfigureEntries(0, 2, rom.Data(), 0x4000)

	dc := space.Direct()
	assert.Equal(uint8(0x01), dc.Read8(0x9000))
	start, end := dc.Window()
	assert.Equal(uint32(0x8000), start)
	assert.Equal(uint32(0xbfff), end)

	bank.SetEntry(1)
	assert.Equal(uint8(0x05), dc.Read8(0x9000))

	bank.SetBase(rom.Data()[0x1000:])
	assert.Equal(uint8(0x02), dc.Read8(0x9000))
}

func TestBankInstallTag(t *testing.T) {
	assert := assert.New(t)

	m, space := bootSpace(t, programConfig(16, endian.Big, 16, 0), nil)

	buffer := []byte{0x12, 0x34, 0x56, 0x78}
	bank := space.InstallReadWriteBankTag(0x1000, 0x1003, 0, "window")
	assert.Same(bank, m.Bank("window"))
	assert.Same(bank, space.InstallReadBankTag(0x2000, 0x2003, 0, "window"))

	bank.ConfigureEntry(0, buffer)
	assert.Equal(uint16(0x1234), space.ReadWord(0x1000))
	assert.Equal(uint16(0x5678), space.ReadWord(0x2002))

	space.WriteWord(0x1002, 0xabcd)
	assert.Equal([]byte{0x12, 0x34, 0xab, 0xcd}, buffer)

	anon := space.InstallReadBankTag(0x3000, 0x3001, 0, "")
	assert.True(anon.Anonymous())
	assert.NotEqual(bank.Index(), anon.Index())
	assert.Same(anon, m.Bank(anon.Tag()))
	assert.Len(m.Banks(), 2)
}

func TestBankRanges(t *testing.T) {
	assert := assert.New(t)

	bank := &MemoryBank{byteStart: 0x1000, byteEnd: 0x1fff}

	assert.True(bank.MatchesExactly(0x1000, 0x1fff))
	assert.False(bank.MatchesExactly(0x1000, 0x17ff))
	assert.True(bank.FullyCovers(0x1100, 0x11ff))
	assert.False(bank.FullyCovers(0x0f00, 0x11ff))
	assert.True(bank.IsCoveredBy(0x0000, 0xffff))
	assert.False(bank.IsCoveredBy(0x1100, 0xffff))
	assert.True(bank.Straddles(0x1f00, 0x2fff))
	assert.False(bank.Straddles(0x2000, 0x2fff))
}

func TestBankEntryErrors(t *testing.T) {
	assert := assert.New(t)

	bank := &MemoryBank{tag: "bank"}

	assert.ErrorIs(fatalErr(func() { bank.SetEntry(-1) }), ErrBankEntry)
	assert.ErrorIs(fatalErr(func() { bank.ConfigureEntry(-2, nil) }), ErrBankEntry)
	assert.ErrorIs(fatalErr(func() { bank.ConfigureEntries(0, 4, make([]byte, 0x100), 0x100) }), ErrRegionBounds)
	assert.NoError(fatalErr(func() { bank.ConfigureEntries(2, 2, make([]byte, 0x200), 0x100) }))
	assert.Equal(4, bank.EntryCount())
}

func TestBankMutateFromSpace(t *testing.T) {
	assert := assert.New(t)

	m := NewManager(nil)
	rom := m.RegionAlloc("banks", 0x200, 1, endian.Little)
	for n := range rom.Data() {
		rom.Data()[n] = uint8(n >> 8)
	}

	dev := newTestDevice("maincpu", programConfig(8, endian.Little, 16, 0), func(am *AddressMap) {
		am.Add(MapEntry{Start: 0x8000, End: 0x80ff, Read: MapTarget{Kind: TARGET_BANK, Tag: "bank1"}})
	})
	dev.configs[AS_IO] = &AddressSpaceConfig{Name: "io", Endianness: endian.Little, DataWidth: 8, AddrWidth: 8}
	dev.maps[AS_IO] = func(am *AddressMap) {
		am.Ram(0x00, 0xff)
	}
	m.AddDevice(dev)
	assert.NoError(m.Initialize())

	program := m.Space(dev, AS_PROGRAM)
	io := m.Space(dev, AS_IO)

	bank := m.Bank("bank1")
	bank.ConfigureEntries(0, 2, rom.Data(), 0x100)
	assert.False(bank.ReferencesSpace(io, READWRITE))

	assert.NoError(fatalErr(func() { bank.SetEntryFrom(program, 1) }))
	assert.Equal(uint8(0x01), program.Read8(0x8000))

	assert.ErrorIs(fatalErr(func() { bank.SetEntryFrom(io, 0) }), ErrBankReference)
	assert.ErrorIs(fatalErr(func() { bank.SetBaseFrom(io, rom.Data()) }), ErrBankReference)
	assert.Equal(1, bank.Entry())
	assert.Equal(uint8(0x01), program.Read8(0x8000))

	assert.NoError(fatalErr(func() { bank.SetBaseFrom(program, rom.Data()) }))
	assert.Equal(uint8(0x00), program.Read8(0x8000))
}
