package memory

import (
	"github.com/ezrec/emumem/endian"
)

// MemoryShare is a named buffer shared between address spaces and devices.
type MemoryShare struct {
	name       string
	data       []byte
	bitwidth   int
	bytewidth  int
	endianness endian.Endianness
}

func newMemoryShare(name string, data []byte, bitwidth int, e endian.Endianness) (ms *MemoryShare) {
	ms = &MemoryShare{
		name:       name,
		data:       data,
		bitwidth:   bitwidth,
		endianness: e,
	}

	switch {
	case bitwidth <= 8:
		ms.bytewidth = 1
	case bitwidth <= 16:
		ms.bytewidth = 2
	case bitwidth <= 32:
		ms.bytewidth = 4
	default:
		ms.bytewidth = 8
	}

	return
}

func (ms *MemoryShare) Name() string                  { return ms.name }
func (ms *MemoryShare) Ptr() []byte                   { return ms.data }
func (ms *MemoryShare) Bytes() uint32                 { return uint32(len(ms.data)) }
func (ms *MemoryShare) BitWidth() int                 { return ms.bitwidth }
func (ms *MemoryShare) ByteWidth() int                { return ms.bytewidth }
func (ms *MemoryShare) Endianness() endian.Endianness { return ms.endianness }

// SetPtr replaces the shared buffer. Spaces already located keep the old one.
func (ms *MemoryShare) SetPtr(data []byte) {
	ms.data = data
}
