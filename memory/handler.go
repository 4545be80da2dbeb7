package memory

// ReadHandler is a read callback of a declared data width.
//
// Offset counts handler-width units from the start of the installed range;
// mask holds the active bits of the access, right justified.
type ReadHandler struct {
	Name  string
	Width int // 8, 16, 32 or 64; zero means the native width.
	Read  func(space AddressSpace, offset uint32, mask uint64) uint64
}

// WriteHandler is a write callback of a declared data width.
type WriteHandler struct {
	Name  string
	Width int
	Write func(space AddressSpace, offset uint32, data uint64, mask uint64)
}

// SetOffsetHandler is told the address of a pending access.
type SetOffsetHandler struct {
	Name      string
	SetOffset func(space AddressSpace, offset uint32)
}

// Port is a named I/O port, such as a bank of DIP switches.
type Port interface {
	Read() uint64
	Write(data uint64, mask uint64)
}

func Read8(name string, read func(space AddressSpace, offset uint32, mask uint8) uint8) ReadHandler {
	return ReadHandler{Name: name, Width: 8, Read: func(space AddressSpace, offset uint32, mask uint64) uint64 {
		return uint64(read(space, offset, uint8(mask)))
	}}
}

func Read16(name string, read func(space AddressSpace, offset uint32, mask uint16) uint16) ReadHandler {
	return ReadHandler{Name: name, Width: 16, Read: func(space AddressSpace, offset uint32, mask uint64) uint64 {
		return uint64(read(space, offset, uint16(mask)))
	}}
}

func Read32(name string, read func(space AddressSpace, offset uint32, mask uint32) uint32) ReadHandler {
	return ReadHandler{Name: name, Width: 32, Read: func(space AddressSpace, offset uint32, mask uint64) uint64 {
		return uint64(read(space, offset, uint32(mask)))
	}}
}

func Read64(name string, read func(space AddressSpace, offset uint32, mask uint64) uint64) ReadHandler {
	return ReadHandler{Name: name, Width: 64, Read: read}
}

func Write8(name string, write func(space AddressSpace, offset uint32, data uint8, mask uint8)) WriteHandler {
	return WriteHandler{Name: name, Width: 8, Write: func(space AddressSpace, offset uint32, data uint64, mask uint64) {
		write(space, offset, uint8(data), uint8(mask))
	}}
}

func Write16(name string, write func(space AddressSpace, offset uint32, data uint16, mask uint16)) WriteHandler {
	return WriteHandler{Name: name, Width: 16, Write: func(space AddressSpace, offset uint32, data uint64, mask uint64) {
		write(space, offset, uint16(data), uint16(mask))
	}}
}

func Write32(name string, write func(space AddressSpace, offset uint32, data uint32, mask uint32)) WriteHandler {
	return WriteHandler{Name: name, Width: 32, Write: func(space AddressSpace, offset uint32, data uint64, mask uint64) {
		write(space, offset, uint32(data), uint32(mask))
	}}
}

func Write64(name string, write func(space AddressSpace, offset uint32, data uint64, mask uint64)) WriteHandler {
	return WriteHandler{Name: name, Width: 64, Write: write}
}
