package mapscript

import (
	"fmt"

	"github.com/retroenv/retrogolib/log"

	"github.com/ezrec/emumem/memory"
)

// Handler is one instance of a named handler. Any side may be nil.
type Handler struct {
	Read      *memory.ReadHandler
	Write     *memory.WriteHandler
	SetOffset *memory.SetOffsetHandler
}

// HandlerFunc builds a new handler instance.
type HandlerFunc func(logger *log.Logger, name string) Handler

// Registry maps handler names, as used by scripts, to their builders.
type Registry map[string]HandlerFunc

// DefaultRegistry returns the built in handlers:
//
//	latch  remembers the last value written to each offset
//	log    logs every access at debug level, and reads as zero
func DefaultRegistry() Registry {
	return Registry{
		"latch": NewLatchHandler,
		"log":   NewLogHandler,
	}
}

func (ld *loader) build(name string) (h Handler, err error) {
	fn, ok := ld.registry[name]
	if !ok {
		err = ErrUnknownHandler(name)
		return
	}

	h = fn(ld.logger, name)
	return
}

// NewLatchHandler returns a handler storing written values per offset.
func NewLatchHandler(_ *log.Logger, name string) Handler {
	values := map[uint32]uint64{}

	read := memory.ReadHandler{
		Name: name,
		Read: func(_ memory.AddressSpace, offset uint32, mask uint64) uint64 {
			return values[offset] & mask
		},
	}

	write := memory.WriteHandler{
		Name: name,
		Write: func(_ memory.AddressSpace, offset uint32, data uint64, mask uint64) {
			values[offset] = (values[offset] &^ mask) | (data & mask)
		},
	}

	return Handler{Read: &read, Write: &write}
}

// NewLogHandler returns a handler that only logs.
func NewLogHandler(logger *log.Logger, name string) Handler {
	read := memory.ReadHandler{
		Name: name,
		Read: func(space memory.AddressSpace, offset uint32, mask uint64) uint64 {
			logger.Debug("read", log.String("handler", name), log.String("space", space.Name()),
				log.Uint32("offset", offset), log.String("mask", fmt.Sprintf("%X", mask)))
			return 0
		},
	}

	write := memory.WriteHandler{
		Name: name,
		Write: func(space memory.AddressSpace, offset uint32, data uint64, mask uint64) {
			logger.Debug("write", log.String("handler", name), log.String("space", space.Name()),
				log.Uint32("offset", offset), log.String("data", fmt.Sprintf("%X", data)),
				log.String("mask", fmt.Sprintf("%X", mask)))
		},
	}

	setoffset := memory.SetOffsetHandler{
		Name: name,
		SetOffset: func(space memory.AddressSpace, offset uint32) {
			logger.Debug("setoffset", log.String("handler", name), log.String("space", space.Name()),
				log.Uint32("offset", offset))
		},
	}

	return Handler{Read: &read, Write: &write, SetOffset: &setoffset}
}

// Latch is a port holding a single value.
type Latch struct {
	value uint64
}

var _ memory.Port = (*Latch)(nil)

// NewLatch returns a latch port holding value.
func NewLatch(value uint64) *Latch {
	return &Latch{value: value}
}

func (l *Latch) Read() uint64 { return l.value }

func (l *Latch) Write(data uint64, mask uint64) {
	l.value = (l.value &^ mask) | (data & mask)
}

// Value is the same as Read.
func (l *Latch) Value() uint64 { return l.value }

// Set replaces the whole value.
func (l *Latch) Set(value uint64) { l.value = value }
