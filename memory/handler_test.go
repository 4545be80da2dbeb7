package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/emumem/endian"
)

func TestHandlerSubunits(t *testing.T) {
	for _, e := range []endian.Endianness{endian.Little, endian.Big} {
		t.Run(e.String(), func(t *testing.T) {
			assert := assert.New(t)

			_, space := bootSpace(t, programConfig(16, e, 16, 0), nil)

			var offsets []uint32
			space.InstallReadHandler(0x00, 0x0f, 0, 0, 0, Read8("counter", func(_ AddressSpace, offset uint32, mask uint8) uint8 {
				offsets = append(offsets, offset)
				return uint8(offset + 0x10)
			}), 0, 0)

			// Every byte address reaches the handler at the same offset.
			for address := range uint32(0x10) {
				assert.Equal(uint8(address+0x10), space.Read8(address), address)
			}

			offsets = nil
			value := space.ReadWord(0x02)
			assert.ElementsMatch([]uint32{2, 3}, offsets)
			if e == endian.Little {
				assert.Equal(uint16(0x1312), value)
			} else {
				assert.Equal(uint16(0x1213), value)
			}

			assert.Equal("counter", space.HandlerName(READ, 0x05))
		})
	}
}

func TestHandlerWrite(t *testing.T) {
	assert := assert.New(t)

	_, space := bootSpace(t, programConfig(32, endian.Little, 16, 0), nil)

	type access struct {
		offset uint32
		data   uint16
		mask   uint16
	}
	var accesses []access
	space.InstallWriteHandler(0x100, 0x1ff, 0, 0, 0, Write16("regs", func(_ AddressSpace, offset uint32, data uint16, mask uint16) {
		accesses = append(accesses, access{offset, data, mask})
	}), 0, 0)

	space.WriteDWord(0x104, 0xaaaa5555)
	assert.Equal([]access{{2, 0x5555, 0xffff}, {3, 0xaaaa, 0xffff}}, accesses)

	accesses = nil
	space.Write8(0x107, 0x99)
	assert.Equal([]access{{3, 0x9900, 0xff00}}, accesses)
}

func TestHandlerUnitMask(t *testing.T) {
	assert := assert.New(t)

	_, space := bootSpace(t, programConfig(16, endian.Little, 16, 0), func(am *AddressMap) {
		am.Unmap = 0xffff
	})

	// A handler on the odd byte only narrows the unit mask to its lane.
	space.InstallReadHandler(0x01, 0x01, 0, 0, 0, Read8("odd", func(_ AddressSpace, offset uint32, mask uint8) uint8 {
		return 0x40 + uint8(offset)
	}), 0, 0)

	assert.Equal(uint8(0xff), space.Read8(0x00))
	assert.Equal(uint8(0x40), space.Read8(0x01))
	assert.Equal(uint16(0x40ff), space.ReadWord(0x00))
}

func TestHandlerMaskAndMirror(t *testing.T) {
	assert := assert.New(t)

	_, space := bootSpace(t, programConfig(8, endian.Little, 16, 0), nil)

	space.InstallReadHandler(0x4000, 0x40ff, 0x0003, 0, 0, Read8("mirrored", func(_ AddressSpace, offset uint32, _ uint8) uint8 {
		return uint8(offset)
	}), 0, 0)

	assert.Equal(uint8(0), space.Read8(0x4000))
	assert.Equal(uint8(3), space.Read8(0x4003))
	assert.Equal(uint8(1), space.Read8(0x4005))
	assert.Equal(uint8(3), space.Read8(0x40ff))

	space.InstallReadHandler(0x0000, 0x000f, 0, 0x0100, 0, Read8("low", func(_ AddressSpace, offset uint32, _ uint8) uint8 {
		return uint8(offset) | 0x80
	}), 0, 0)
	assert.Equal(uint8(0x85), space.Read8(0x0105))
}

func TestHandlerChipSelect(t *testing.T) {
	assert := assert.New(t)

	_, space := bootSpace(t, programConfig(32, endian.Little, 16, 0), nil)

	var calls int
	space.InstallReadHandler(0x00, 0xff, 0, 0, 0, Read8("cs", func(_ AddressSpace, offset uint32, _ uint8) uint8 {
		calls++
		return uint8(offset)
	}), 0, 16)

	// A byte access selects both bytes of its 16-bit chip select group.
	calls = 0
	value := space.Read8(0x00)
	assert.Equal(uint8(0), value)
	assert.Equal(2, calls)

	calls = 0
	space.ReadDWord(0x00)
	assert.Equal(4, calls)
}

func TestHandlerPorts(t *testing.T) {
	assert := assert.New(t)

	in0 := &testPort{value: 0x5a}
	out0 := &testPort{}

	m := NewManager(nil)
	m.AddPort("IN0", in0)
	m.AddPort("OUT0", out0)

	dev := newTestDevice("maincpu", programConfig(8, endian.Little, 16, 0), func(am *AddressMap) {
		am.Add(MapEntry{Start: 0x10, End: 0x10,
			Read:  MapTarget{Kind: TARGET_PORT, Tag: "IN0"},
			Write: MapTarget{Kind: TARGET_PORT, Tag: "OUT0"},
		})
	})
	m.AddDevice(dev)
	assert.NoError(m.Initialize())

	space := m.Space(dev, AS_PROGRAM)
	assert.Equal(uint8(0x5a), space.Read8(0x10))

	space.Write8(0x10, 0x33)
	assert.Equal([]uint64{0x33}, out0.written)
	assert.Equal("port IN0", space.HandlerName(READ, 0x10))
	assert.Equal("port OUT0", space.HandlerName(WRITE, 0x10))

	err := fatalErr(func() { space.InstallReadPort(0x20, 0x20, 0, "MISSING") })
	assert.ErrorIs(err, ErrNoSuchPort)
}

func TestHandlerSetOffset(t *testing.T) {
	assert := assert.New(t)

	_, space := bootSpace(t, programConfig(16, endian.Little, 16, -1), nil)

	var offsets []uint32
	space.InstallSetOffsetHandler(0x20, 0x2f, 0, 0, 0, SetOffsetHandler{
		Name: "prefetch",
		SetOffset: func(_ AddressSpace, offset uint32) {
			offsets = append(offsets, offset)
		},
	})

	space.SetAddress(0x25)
	space.SetAddress(0x30)
	space.SetAddress(0x20)
	assert.Equal([]uint32{5, 0}, offsets)
}

func TestHandlerFromMap(t *testing.T) {
	assert := assert.New(t)

	var latched []uint8
	_, space := bootSpace(t, programConfig(8, endian.Little, 16, 0), func(am *AddressMap) {
		am.Add(MapEntry{Start: 0x5100, End: 0x5103, Mirror: 0x00f0,
			Read: MapTarget{Kind: TARGET_HANDLER, Read: Read8("status", func(_ AddressSpace, offset uint32, _ uint8) uint8 {
				return 0xc0 | uint8(offset)
			})},
			Write: MapTarget{Kind: TARGET_HANDLER, Write: Write8("latch", func(_ AddressSpace, _ uint32, data uint8, _ uint8) {
				latched = append(latched, data)
			})},
		})
	})

	assert.Equal(uint8(0xc2), space.Read8(0x5102))
	assert.Equal(uint8(0xc1), space.Read8(0x51f1))
	space.Write8(0x5133, 0x12)
	assert.Equal([]uint8{0x12}, latched)
}
