package mapscript

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/log"
	"github.com/stretchr/testify/assert"

	"github.com/ezrec/emumem/endian"
	"github.com/ezrec/emumem/memory"
)

func loadString(t *testing.T, src string) (*Script, error) {
	return Load("test.star", src, Options{})
}

func TestLoadFile(t *testing.T) {
	assert := assert.New(t)

	script, err := Load("testdata/exidy.star", nil, Options{})
	assert.NoError(err)
	if err != nil {
		return
	}

	assert.Equal("testdata/exidy.star", script.Filename)
	assert.Len(script.Regions, 3)
	assert.Equal([]string{"DSW0", "IN0", "LATCH"}, script.PortTags())
	assert.Equal(uint64(0x5a), script.Ports["DSW0"].Value())
	assert.Equal(uint64(0), script.Ports["LATCH"].Value())

	banks := script.Regions[1]
	assert.Equal("banks", banks.Name)
	assert.Equal(uint32(0x4000), banks.Size)
	assert.Equal([]byte{0x10, 0x11, 0x12, 0x13}, banks.Data)

	assert.Len(script.Devices, 2)
	cpu := script.Device("maincpu")
	assert.NotNil(cpu)
	assert.Nil(script.Device("nope"))

	program := cpu.Space(memory.AS_PROGRAM)
	assert.NotNil(program)
	assert.Equal(uint64(0xff), program.Unmap)
	assert.Equal(8, program.Config.DataWidth)
	assert.Equal(16, program.Config.AddrWidth)
	assert.Equal(endian.Little, program.Config.Endianness)
	assert.Len(program.Entries, 8)
	assert.Nil(cpu.Space(memory.AS_IO))
	assert.Nil(cpu.SpaceConfig(memory.AS_IO))

	ram := program.Entries[0]
	assert.Equal(uint32(0x0c00), ram.Mirror)
	assert.Equal(memory.TARGET_RAM, ram.Read.Kind)
	assert.Equal(memory.TARGET_RAM, ram.Write.Kind)

	bank := program.Entries[2]
	assert.Equal(memory.TARGET_BANK, bank.Read.Kind)
	assert.Equal("bank1", bank.Read.Tag)
	assert.Equal(memory.TARGET_NONE, bank.Write.Kind)

	latch := program.Entries[4]
	assert.Equal("IN0", latch.Read.Tag)
	assert.Equal("LATCH", latch.Write.Tag)

	nop := program.Entries[6]
	assert.Equal(memory.TARGET_NONE, nop.Read.Kind)
	assert.Equal(memory.TARGET_NOP, nop.Write.Kind)

	rom := program.Entries[7]
	assert.Equal(memory.TARGET_ROM, rom.Read.Kind)
	assert.Equal(memory.TARGET_NONE, rom.Write.Kind)

	sound := script.Device("audiocpu").Space(memory.AS_PROGRAM)
	assert.Equal("sound", sound.Entries[1].Region)

	assert.Equal([]*BankConfig{
		{Tag: "bank1", Region: "banks", Count: 2, Stride: 0x2000, Entry: 1},
	}, script.Banks)
}

func TestLoadErrors(t *testing.T) {
	table := [](struct {
		name string
		src  string
		err  error
	}){
		{"region", `region("a", 16); region("a", 16)`, ErrDuplicateRegion},
		{"data", `region("a", 2, data=b"abc")`, ErrRegionData},
		{"device", `device("a"); device("a")`, ErrDuplicateDevice},
		{"port", `port("a"); port("a")`, ErrDuplicatePort},
		{"space-num", `device("a").space(9, "x", "little", 8, 16)`, ErrSpaceNumber},
		{"space-dup", `d = device("a"); d.space(0, "x", "little", 8, 16); d.space(0, "y", "little", 8, 16)`, ErrDuplicateSpace},
		{"rw", `device("a").space(0, "x", "little", 8, 16).nop(0, 1, rw="both")`, ErrReadOrWrite},
		{"side", `device("a").space(0, "x", "little", 8, 16).setoffset(0, 1, "latch")`, ErrHandlerSide},
		{"unknown", `device("a").space(0, "x", "little", 8, 16).handler(0, 1, read="nope")`, ErrUnknownHandler("nope")},
	}

	for _, entry := range table {
		t.Run(entry.name, func(t *testing.T) {
			assert := assert.New(t)

			_, err := loadString(t, entry.src)
			assert.ErrorIs(err, entry.err)
		})
	}
}

func TestLoadErrorDetails(t *testing.T) {
	assert := assert.New(t)

	_, err := loadString(t, `port("IN0"); port("IN0")`)
	var ed *ErrDuplicate
	assert.ErrorAs(err, &ed)
	assert.Equal("IN0", ed.Tag)

	_, err = loadString(t, `d = device("a"); d.space(0, "x", "little", 8, 16); d.space(0, "y", "little", 8, 16)`)
	var es *ErrSpace
	assert.ErrorAs(err, &es)
	assert.Equal("a", es.Device)
	assert.Equal(0, es.Space)

	_, err = loadString(t, `region("a", 2, data=b"abc")`)
	var edata *ErrData
	assert.ErrorAs(err, &edata)
	assert.Equal("a", edata.Region)

	_, err = loadString(t, `device("a").space(0, "x", "little", 8, 16).setoffset(0, 1, "latch")`)
	var ens *ErrNoSide
	assert.ErrorAs(err, &ens)
	assert.Equal("latch", ens.Handler)
	assert.Equal("set offset", ens.Side)

	_, err = loadString(t, `device("a").space(0, "x", "little", 8, 16).nop(0, 1, rw="both")`)
	assert.ErrorIs(err, ErrSide("both"))
}

func TestLoadArguments(t *testing.T) {
	assert := assert.New(t)

	_, err := loadString(t, `device("a").space(0, "x", "middle", 8, 16)`)
	var name *endian.ErrName
	assert.True(errors.As(err, &name))

	_, err = loadString(t, `region("a", 2, data=3)`)
	assert.ErrorContains(err, `for parameter "data"`)
	assert.ErrorContains(err, ErrRegionData.Error())

	_, err = loadString(t, `region("a")`)
	assert.ErrorContains(err, "missing argument for size")
}

func TestHandlerEntries(t *testing.T) {
	assert := assert.New(t)

	script, err := loadString(t, `
s = device("a").space(AS_IO, "io", "big", 16, 8, addr_shift=-1)
s.handler(0x10, 0x1f, read="latch", write="latch", width=8, mask=0x0f, unitmask=0xff00, cswidth=16)
s.handler(0x20, 0x21, read="log")
s.setoffset(0x30, 0x3f, "log", mirror=0x40)
`)
	assert.NoError(err)
	if err != nil {
		return
	}

	space := script.Devices[0].Space(memory.AS_IO)
	assert.Equal(-1, space.Config.AddrShift)
	assert.Equal(endian.Big, space.Config.Endianness)
	assert.Len(space.Entries, 3)

	both := space.Entries[0]
	assert.Equal(memory.TARGET_HANDLER, both.Read.Kind)
	assert.Equal(memory.TARGET_HANDLER, both.Write.Kind)
	assert.Equal(8, both.Read.Read.Width)
	assert.Equal(8, both.Write.Write.Width)
	assert.Equal(uint32(0x0f), both.Mask)
	assert.Equal(uint64(0xff00), both.UnitMask)
	assert.Equal(16, both.CSWidth)

	// One instance serves both sides.
	both.Write.Write.Write(nil, 3, 0x42, 0xff)
	assert.Equal(uint64(0x42), both.Read.Read.Read(nil, 3, 0xff))
	assert.Equal(uint64(0x02), both.Read.Read.Read(nil, 3, 0x0f))
	assert.Equal(uint64(0), both.Read.Read.Read(nil, 4, 0xff))

	readonly := space.Entries[1]
	assert.Equal(memory.TARGET_HANDLER, readonly.Read.Kind)
	assert.Equal(memory.TARGET_NONE, readonly.Write.Kind)
	assert.Equal(0, readonly.Read.Read.Width)

	setoffset := space.Entries[2]
	assert.NotNil(setoffset.SetOffset)
	assert.Equal("log", setoffset.SetOffset.Name)
	assert.Equal(uint32(0x40), setoffset.Mirror)
}

func TestRegistry(t *testing.T) {
	assert := assert.New(t)

	calls := 0
	registry := DefaultRegistry()
	registry["counter"] = func(_ *log.Logger, name string) Handler {
		read := memory.ReadHandler{Name: name, Read: func(memory.AddressSpace, uint32, uint64) uint64 {
			calls++
			return uint64(calls)
		}}
		return Handler{Read: &read}
	}

	script, err := Load("test.star", `device("a").space(0, "x", "little", 8, 16).handler(0, 0xff, read="counter")`, Options{Registry: registry})
	assert.NoError(err)
	if err != nil {
		return
	}

	entry := script.Devices[0].Space(0).Entries[0]
	assert.Equal("counter", entry.Read.Read.Name)
	assert.Equal(uint64(1), entry.Read.Read.Read(nil, 0, 0xff))
	assert.Equal(1, calls)
}

func TestLatch(t *testing.T) {
	assert := assert.New(t)

	l := NewLatch(0x1234)
	assert.Equal(uint64(0x1234), l.Read())

	l.Write(0xabcd, 0x00ff)
	assert.Equal(uint64(0x12cd), l.Value())

	l.Set(7)
	assert.Equal(uint64(7), l.Read())
}

func TestDeviceAddressMap(t *testing.T) {
	assert := assert.New(t)

	script, err := loadString(t, `
s = device("a").space(AS_PROGRAM, "program", "little", 8, 16, unmap=0x55)
s.ram(0, 0xff)
s.unmap(0x100, 0x1ff)
`)
	assert.NoError(err)
	if err != nil {
		return
	}

	am := &memory.AddressMap{}
	script.Devices[0].AddressMap(memory.AS_PROGRAM, am)
	assert.Equal(uint64(0x55), am.Unmap)
	assert.Len(am.Entries, 2)
	assert.Equal(memory.TARGET_UNMAP, am.Entries[1].Read.Kind)

	// A manager can boot the scripted device directly.
	m := memory.NewManager(nil)
	m.AddDevice(script.Devices[0])
	assert.NoError(m.Initialize())

	space := m.Space(script.Devices[0], memory.AS_PROGRAM)
	space.Write8(0x10, 0x99)
	assert.Equal(uint8(0x99), space.Read8(0x10))
	assert.Equal(uint8(0x55), space.Read8(0x180))
}

func TestLogHandler(t *testing.T) {
	assert := assert.New(t)

	script, err := Load("test.star", `
s = device("a").space(AS_PROGRAM, "program", "little", 8, 16)
s.handler(0x20, 0x21, read="log", write="log")
s.setoffset(0x30, 0x3f, "log")
`, Options{Logger: memory.NewLogger(true)})
	assert.NoError(err)
	if err != nil {
		return
	}

	m := memory.NewManager(nil)
	m.AddDevice(script.Devices[0])
	assert.NoError(m.Initialize())

	space := m.Space(script.Devices[0], memory.AS_PROGRAM)
	assert.Equal(uint8(0), space.Read8(0x20))
	space.Write8(0x21, 0x5a)
	space.SetAddress(0x31)
	assert.Equal("log", space.HandlerName(memory.READ, 0x20))
}
