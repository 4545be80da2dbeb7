package memory

import (
	"errors"

	"github.com/ezrec/emumem/translate"
)

var f = translate.From

var (
	// Space allocation errors
	ErrUnsupportedWidth   = errors.New(f("unsupported data width"))
	ErrUnsupportedShift   = errors.New(f("unsupported address shift"))
	ErrAlreadyInitialized = errors.New(f("memory manager already initialized"))

	// Install errors
	ErrBadRange       = errors.New(f("bad address range"))
	ErrMirrorOverlap  = errors.New(f("mirror overlaps range"))
	ErrUnalignedRange = errors.New(f("unaligned range"))
	ErrHandlerWidth   = errors.New(f("handler width"))
	ErrOutOfEntries   = errors.New(f("out of handler entries"))
	ErrTooManyBanks   = errors.New(f("too many banks"))

	// Container errors
	ErrDuplicateRegion = errors.New(f("duplicate region"))
	ErrRegionWidth     = errors.New(f("region width"))
	ErrRegionBounds    = errors.New(f("region bounds"))
	ErrBankEntry       = errors.New(f("bank entry"))
	ErrBankReference   = errors.New(f("bank not referenced by space"))
	ErrNoSuchRegion    = errors.New(f("no such region"))
	ErrNoSuchBank      = errors.New(f("no such bank"))
	ErrNoSuchPort      = errors.New(f("no such port"))
	ErrUnlocated       = errors.New(f("backing memory not located"))

	// Direct access errors
	ErrDirectShift       = errors.New(f("direct access address shift"))
	ErrDirectGranularity = errors.New(f("direct access granularity"))
)

// FatalError is the panic value of a contract violation.
type FatalError struct {
	Err    error
	Detail string
}

func (err *FatalError) Error() string {
	return f("%v: %v", err.Err, err.Detail)
}

func (err *FatalError) Unwrap() error {
	return err.Err
}

func fatalf(sentinel error, format string, args ...any) {
	panic(&FatalError{Err: sentinel, Detail: f(format, args...)})
}

// Recover converts a *FatalError panic into *err.
// It must be deferred directly; any other panic is re-raised.
func Recover(err *error) {
	r := recover()
	if r == nil {
		return
	}

	fatal, ok := r.(*FatalError)
	if !ok {
		panic(r)
	}

	*err = fatal
}
