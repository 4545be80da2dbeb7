package main

import (
	"errors"

	"github.com/ezrec/emumem/translate"
)

var f = translate.From

var (
	ErrAccessSyntax = errors.New(f("expected device:space:address[:width]"))
	ErrPokeSyntax   = errors.New(f("expected address=value"))
	ErrBankSyntax   = errors.New(f("expected [device:space:]tag=entry"))
)

// ErrArgument locates the malformed part of a flag argument.
type ErrArgument struct {
	Field string
	Text  string
	Err   error
}

func (err *ErrArgument) Error() string {
	return f("%v %q: %v", err.Field, err.Text, err.Err)
}

func (err *ErrArgument) Unwrap() error {
	return err.Err
}
