// Package endian describes the byte ordering of an emulated bus.
package endian

import (
	"encoding/binary"
	"errors"
	"strings"

	"github.com/ezrec/emumem/translate"
)

var f = translate.From

var ErrUnknown = errors.New(f("unknown endianness"))

//go:generate go tool stringer -linecomment -type=Endianness

// Endianness of a bus or buffer.
type Endianness int

const (
	Little Endianness = iota // little
	Big                      // big
)

// ByteOrder returns the encoding/binary order for the endianness.
func (e Endianness) ByteOrder() binary.ByteOrder {
	if e == Big {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Parse an endianness name: "little", "big", or the "le"/"be" shorthands.
func Parse(name string) (e Endianness, err error) {
	switch strings.ToLower(name) {
	case "little", "le":
		e = Little
	case "big", "be":
		e = Big
	default:
		err = &ErrName{Name: name}
	}
	return
}

// ErrName is returned for an unparseable endianness name.
type ErrName struct {
	Name string
}

func (err *ErrName) Error() string {
	return f("%v: %q", ErrUnknown, err.Name)
}

func (err *ErrName) Unwrap() error {
	return ErrUnknown
}
