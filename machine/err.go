package machine

import (
	"errors"

	"github.com/ezrec/emumem/memory"
	"github.com/ezrec/emumem/translate"
)

var f = translate.From

var (
	ErrNoSuchDevice = errors.New(f("no such device"))
	ErrNoSuchSpace  = errors.New(f("no such address space"))
	ErrAccessWidth  = errors.New(f("access width invalid"))
)

// ErrBankConfig indicates which bank_entries() call failed.
type ErrBankConfig struct {
	Tag string
	Err error
}

func (err *ErrBankConfig) Error() string {
	return f("bank %q: %v", err.Tag, err.Err)
}

func (err *ErrBankConfig) Unwrap() error {
	return err.Err
}

// ErrNotFound names a tag that did not resolve.
type ErrNotFound struct {
	Tag string
	Err error
}

func (err *ErrNotFound) Error() string {
	return f("%v %q", err.Err, err.Tag)
}

func (err *ErrNotFound) Unwrap() error {
	return err.Err
}

// ErrRegionOffset is a bank offset past the end of its region.
type ErrRegionOffset struct {
	Region string
	Offset uint32
}

func (err *ErrRegionOffset) Error() string {
	return f("offset 0x%x outside region %q", err.Offset, err.Region)
}

func (err *ErrRegionOffset) Unwrap() error {
	return memory.ErrRegionBounds
}

// ErrWidth is an unsupported access width, in bits.
type ErrWidth int

func (err ErrWidth) Error() string {
	return f("access width %d invalid", int(err))
}

func (err ErrWidth) Is(target error) bool {
	return target == ErrAccessWidth
}
