package memory

import (
	"fmt"
	"math"

	"github.com/ezrec/emumem/endian"
)

const (
	// Address spaces a device may declare.
	AS_PROGRAM = 0
	AS_DATA    = 1
	AS_IO      = 2
	AS_OPCODES = 3

	MAX_SPACES = 4

	// Spaces whose byte extent reaches this size use a paged lookup table.
	LARGE_SPACE_BYTES = 1 << 18
)

// AddressSpaceConfig describes one logical bus.
//
// AddrShift converts address units to bytes: a negative shift means one
// address unit covers 2^-shift bytes (word addressed), a positive shift means
// one byte covers 2^shift address units (bit addressed).
type AddressSpaceConfig struct {
	Name         string
	Endianness   endian.Endianness
	DataWidth    int // 8, 16, 32 or 64
	AddrWidth    int
	AddrShift    int
	LogAddrWidth int // Logical address width; zero means AddrWidth.
	PageShift    int
	IsOctal      bool
}

// AddrToByte converts an address to its first byte address.
func (cfg *AddressSpaceConfig) AddrToByte(address uint32) uint32 {
	if cfg.AddrShift < 0 {
		return address << uint(-cfg.AddrShift)
	}
	return address >> uint(cfg.AddrShift)
}

// AddrToByteEnd converts an address to its last byte address.
func (cfg *AddressSpaceConfig) AddrToByteEnd(address uint32) uint32 {
	if cfg.AddrShift < 0 {
		shift := uint(-cfg.AddrShift)
		return (address << shift) | ((1 << shift) - 1)
	}
	return address >> uint(cfg.AddrShift)
}

// ByteToAddr converts a byte address to its first address.
func (cfg *AddressSpaceConfig) ByteToAddr(address uint32) uint32 {
	if cfg.AddrShift > 0 {
		return address << uint(cfg.AddrShift)
	}
	return address >> uint(-cfg.AddrShift)
}

// ByteToAddrEnd converts a byte address to its last address.
func (cfg *AddressSpaceConfig) ByteToAddrEnd(address uint32) uint32 {
	if cfg.AddrShift > 0 {
		shift := uint(cfg.AddrShift)
		return (address << shift) | ((1 << shift) - 1)
	}
	return address >> uint(-cfg.AddrShift)
}

// DataBytes is the native data width in bytes.
func (cfg *AddressSpaceConfig) DataBytes() uint32 {
	return uint32(cfg.DataWidth / 8)
}

// Alignment is the number of address units in one native cell.
func (cfg *AddressSpaceConfig) Alignment() uint32 {
	if cfg.AddrShift < 0 {
		return cfg.DataBytes() >> uint(-cfg.AddrShift)
	}
	return cfg.DataBytes() << uint(cfg.AddrShift)
}

func widthMask(width int) uint32 {
	if width <= 0 {
		return 0
	}
	if width >= 32 {
		return math.MaxUint32
	}
	return math.MaxUint32 >> uint(32-width)
}

// AddrMask is the mask of valid addresses.
func (cfg *AddressSpaceConfig) AddrMask() uint32 {
	return widthMask(cfg.AddrWidth)
}

// LogicalAddrWidth returns the logical address width.
func (cfg *AddressSpaceConfig) LogicalAddrWidth() int {
	if cfg.LogAddrWidth == 0 {
		return cfg.AddrWidth
	}
	return cfg.LogAddrWidth
}

// LogAddrMask is the mask of valid logical addresses.
func (cfg *AddressSpaceConfig) LogAddrMask() uint32 {
	return widthMask(cfg.LogicalAddrWidth())
}

func digits(width int, octal bool) int {
	if octal {
		return (width + 2) / 3
	}
	return (width + 3) / 4
}

// AddrChars is the number of digits needed to print an address.
func (cfg *AddressSpaceConfig) AddrChars() int {
	return digits(cfg.AddrWidth, cfg.IsOctal)
}

// LogAddrChars is the number of digits needed to print a logical address.
func (cfg *AddressSpaceConfig) LogAddrChars() int {
	return digits(cfg.LogicalAddrWidth(), cfg.IsOctal)
}

// IsLarge reports whether the byte extent of the space needs a paged table.
func (cfg *AddressSpaceConfig) IsLarge() bool {
	return cfg.AddrToByteEnd(cfg.AddrMask()) >= LARGE_SPACE_BYTES
}

// FormatAddr prints an address with the configured radix and digit count.
func (cfg *AddressSpaceConfig) FormatAddr(address uint32) string {
	if cfg.IsOctal {
		return fmt.Sprintf("%0*o", cfg.AddrChars(), address)
	}
	return fmt.Sprintf("%0*X", cfg.AddrChars(), address)
}
