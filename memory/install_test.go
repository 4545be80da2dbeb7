package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/emumem/endian"
)

func TestInstallErrors(t *testing.T) {
	assert := assert.New(t)

	_, space8 := bootSpace(t, programConfig(8, endian.Little, 16, 0), nil)
	_, space16 := bootSpace(t, programConfig(16, endian.Little, 16, 0), nil)

	read8 := Read8("r8", func(AddressSpace, uint32, uint8) uint8 { return 0 })
	read16 := Read16("r16", func(AddressSpace, uint32, uint16) uint16 { return 0 })
	odd := ReadHandler{Name: "odd", Width: 12, Read: func(AddressSpace, uint32, uint64) uint64 { return 0 }}

	table := [](struct {
		name string
		fn   func()
		err  error
	}){
		{"reversed", func() { space8.InstallRam(0x10, 0x05, 0, nil) }, ErrBadRange},
		{"outside", func() { space8.InstallRam(0x0000, 0x1ffff, 0, nil) }, ErrBadRange},
		{"mirror outside", func() { space8.NopRead(0x0000, 0x00ff, 0x10000) }, ErrBadRange},
		{"mirror overlap", func() { space8.InstallRam(0x0000, 0x00ff, 0x0080, nil) }, ErrMirrorOverlap},
		{"mirror select", func() { space8.InstallReadHandler(0x0000, 0x000f, 0, 0x0100, 0x0100, read8, 0, 0) }, ErrMirrorOverlap},
		{"unaligned span", func() { space16.InstallReadHandler(0x0001, 0x0004, 0, 0, 0, read8, 0, 0) }, ErrUnalignedRange},
		{"handler too wide", func() { space8.InstallReadHandler(0x0000, 0x000f, 0, 0, 0, read16, 0, 0) }, ErrHandlerWidth},
		{"handler odd width", func() { space16.InstallReadHandler(0x0000, 0x000f, 0, 0, 0, odd, 0, 0) }, ErrHandlerWidth},
		{"chip select", func() { space8.InstallReadHandler(0x0000, 0x000f, 0, 0, 0, read8, 0, 16) }, ErrHandlerWidth},
		{"short memory", func() { space8.InstallRom(0x0000, 0x00ff, 0, make([]byte, 0x80)) }, ErrRegionBounds},
	}

	for _, entry := range table {
		err := fatalErr(entry.fn)
		assert.ErrorIs(err, entry.err, entry.name)
	}
}

func TestInstallWidensToCells(t *testing.T) {
	assert := assert.New(t)

	_, space := bootSpace(t, programConfig(32, endian.Little, 16, 0), nil)

	buffer := make([]byte, 8)
	space.InstallRam(0x0101, 0x0106, 0, buffer)
	assert.Equal("ram", space.HandlerName(READ, 0x0100))
	assert.Equal("ram", space.HandlerName(READ, 0x0107))
	assert.Equal("unmapped", space.HandlerName(READ, 0x0108))

	space.WriteDWord(0x0104, 0x44332211)
	assert.Equal([]byte{0, 0, 0, 0, 0x11, 0x22, 0x33, 0x44}, buffer)
}

func TestInstallOutOfEntries(t *testing.T) {
	assert := assert.New(t)

	_, space := bootSpace(t, programConfig(8, endian.Little, 16, 0), nil)

	// Every install stays live, one per address.
	read := Read8("r", func(AddressSpace, uint32, uint8) uint8 { return 0 })
	err := fatalErr(func() {
		for address := range uint32(MAX_ENTRIES) {
			space.InstallReadHandler(address, address, 0, 0, 0, read, 0, 0)
		}
	})
	assert.ErrorIs(err, ErrOutOfEntries)
}

func TestInstallReclaimsEntries(t *testing.T) {
	assert := assert.New(t)

	_, space := bootSpace(t, programConfig(8, endian.Little, 16, 0), nil)
	space.InstallRam(0x1000, 0x10ff, 0, make([]byte, 0x100))
	space.Write8(0x1010, 0x5a)

	err := fatalErr(func() {
		for n := range MAX_ENTRIES + 4464 {
			read := Read8("r", func(_ AddressSpace, offset uint32, _ uint8) uint8 { return uint8(n) })
			space.InstallReadHandler(0x0010, 0x001f, 0, 0, 0, read, 0, 0)
		}
	})
	assert.NoError(err)

	read := space.core().read
	assert.LessOrEqual(len(read.handlers), MAX_ENTRIES)
	read.reclaim()
	assert.Equal(4, read.liveEntries())
	assert.Equal(uint8((MAX_ENTRIES+4463)&0xff), space.Read8(0x0015))
	assert.Equal("r", space.HandlerName(READ, 0x0015))

	// Entries still mapped survive.
	assert.Equal(uint8(0x5a), space.Read8(0x1010))
	assert.Equal("ram", space.HandlerName(READ, 0x1010))
}
