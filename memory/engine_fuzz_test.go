package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/emumem/endian"
)

// FuzzEngine checks unaligned accesses of every width against a plain byte
// buffer model of the bus.
func FuzzEngine(f *testing.F) {
	for sel := range uint8(16) {
		f.Add(uint32(0x100), uint64(0x0123456789abcdef), sel)
		f.Add(uint32(0x7ffd), uint64(0xffffffffffffffff), sel)
	}

	f.Fuzz(func(t *testing.T, address uint32, data uint64, sel uint8) {
		assert := assert.New(t)

		widths := []int{8, 16, 32, 64}
		native := widths[sel&3]
		target := widths[(sel>>2)&3]
		e := endian.Little
		if sel&0x10 != 0 {
			e = endian.Big
		}
		address &= 0x7fff

		model := make([]byte, 0x10000)
		_, space := bootSpace(t, programConfig(native, e, 16, 0), func(am *AddressMap) {
			am.Add(MapEntry{Start: 0, End: 0xffff, Memory: model,
				Read:  MapTarget{Kind: TARGET_RAM},
				Write: MapTarget{Kind: TARGET_RAM},
			})
		})

		var expect [8]byte
		order := e.ByteOrder()
		size := uint32(target / 8)

		switch target {
		case 8:
			space.Write8(address, uint8(data))
			expect[0] = uint8(data)
			assert.Equal(uint8(data), space.Read8(address))
		case 16:
			space.WriteWordUnaligned(address, uint16(data))
			order.PutUint16(expect[:], uint16(data))
			assert.Equal(uint16(data), space.ReadWordUnaligned(address))
		case 32:
			space.WriteDWordUnaligned(address, uint32(data))
			order.PutUint32(expect[:], uint32(data))
			assert.Equal(uint32(data), space.ReadDWordUnaligned(address))
		default:
			space.WriteQWordUnaligned(address, data)
			order.PutUint64(expect[:], data)
			assert.Equal(data, space.ReadQWordUnaligned(address))
		}

		assert.Equal(expect[:size], model[address:address+size])

		// Nothing outside of the access was touched.
		for n, value := range model {
			if uint32(n) < address || uint32(n) >= address+size {
				if value != 0 {
					assert.Failf("stray write", "byte %04x = %02x", n, value)
					break
				}
			}
		}
	})
}
