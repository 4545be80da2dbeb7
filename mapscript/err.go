package mapscript

import (
	"errors"

	"github.com/ezrec/emumem/translate"
)

var f = translate.From

var (
	ErrDuplicateDevice = errors.New(f("device duplicated"))
	ErrDuplicateSpace  = errors.New(f("space duplicated"))
	ErrDuplicateRegion = errors.New(f("region duplicated"))
	ErrDuplicatePort   = errors.New(f("port duplicated"))
	ErrSpaceNumber     = errors.New(f("space number invalid"))
	ErrReadOrWrite     = errors.New(f("access side invalid"))
	ErrRegionData      = errors.New(f("region data invalid"))
	ErrHandlerSide     = errors.New(f("handler side missing"))
)

// ErrUnknownHandler names a handler missing from the registry.
type ErrUnknownHandler string

func (err ErrUnknownHandler) Error() string {
	return f("handler %q unknown", string(err))
}

// ErrDuplicate names a tag declared twice.
type ErrDuplicate struct {
	Tag string
	Err error
}

func (err *ErrDuplicate) Error() string {
	return f("%v: %q", err.Err, err.Tag)
}

func (err *ErrDuplicate) Unwrap() error {
	return err.Err
}

// ErrSpace locates a bad space declaration on a device.
type ErrSpace struct {
	Device string
	Space  int
	Err    error
}

func (err *ErrSpace) Error() string {
	return f("device %q space %d: %v", err.Device, err.Space, err.Err)
}

func (err *ErrSpace) Unwrap() error {
	return err.Err
}

// ErrSide is an rw argument other than read, write or readwrite.
type ErrSide string

func (err ErrSide) Error() string {
	return f("%v: %q", ErrReadOrWrite, string(err))
}

func (err ErrSide) Is(target error) bool {
	return target == ErrReadOrWrite
}

// ErrNoSide names a handler lacking the side it was installed on.
type ErrNoSide struct {
	Handler string
	Side    string
}

func (err *ErrNoSide) Error() string {
	return f("handler %q has no %v side", err.Handler, err.Side)
}

func (err *ErrNoSide) Is(target error) bool {
	return target == ErrHandlerSide
}

// ErrData describes unusable region contents.
type ErrData struct {
	Region string // Empty while the data argument is unpacked.
	Detail string
	Err    error
}

func (err *ErrData) Error() string {
	if err.Region == "" {
		return f("%v: %v", ErrRegionData, err.Detail)
	}
	return f("%v: region %q: %v", ErrRegionData, err.Region, err.Detail)
}

func (err *ErrData) Is(target error) bool {
	return target == ErrRegionData
}

func (err *ErrData) Unwrap() error {
	return err.Err
}
