package main

import (
	"slices"
	"strconv"
	"strings"
)

// access is a parsed -peek or -poke argument:
//
//	device:space:address[:width]
//	device:space:address=value[:width]
type access struct {
	device  string
	space   string
	address uint32
	value   uint64
	width   int // Zero means the data width of the space.
}

func parseHex(what string, text string, bits int) (value uint64, err error) {
	text = strings.TrimPrefix(strings.ToLower(text), "0x")
	value, err = strconv.ParseUint(text, 16, bits)
	if err != nil {
		err = &ErrArgument{Field: what, Text: text, Err: err}
	}
	return
}

func parseAccess(text string, poke bool) (acc access, err error) {
	fields := strings.Split(text, ":")
	if len(fields) < 3 || len(fields) > 4 {
		err = &ErrArgument{Field: "access", Text: text, Err: ErrAccessSyntax}
		return
	}

	acc.device = fields[0]
	acc.space = fields[1]

	addr := fields[2]
	if poke {
		var value string
		var ok bool
		addr, value, ok = strings.Cut(addr, "=")
		if !ok {
			err = &ErrArgument{Field: "access", Text: text, Err: ErrPokeSyntax}
			return
		}
		acc.value, err = parseHex("value", value, 64)
		if err != nil {
			return
		}
	}

	address, err := parseHex("address", addr, 32)
	if err != nil {
		return
	}
	acc.address = uint32(address)

	if len(fields) == 4 {
		acc.width, err = strconv.Atoi(fields[3])
		if err != nil {
			err = &ErrArgument{Field: "width", Text: fields[3], Err: err}
			return
		}
	}

	return
}

// bankSwitch is a parsed -bank argument, [device:space:]tag=entry. With a
// device and space, the switch is made on behalf of that space.
type bankSwitch struct {
	device string
	space  string
	tag    string
	entry  int
}

func parseBank(text string) (bs bankSwitch, err error) {
	tag, entry, ok := strings.Cut(text, "=")
	fields := strings.Split(tag, ":")
	if !ok || (len(fields) != 1 && len(fields) != 3) || slices.Contains(fields, "") {
		err = &ErrArgument{Field: "bank", Text: text, Err: ErrBankSyntax}
		return
	}

	if len(fields) == 3 {
		bs.device = fields[0]
		bs.space = fields[1]
	}
	bs.tag = fields[len(fields)-1]

	bs.entry, err = strconv.Atoi(entry)
	if err != nil {
		err = &ErrArgument{Field: "entry", Text: entry, Err: err}
	}
	return
}

// listFlag collects every use of a repeatable flag.
type listFlag []string

func (lf *listFlag) String() string {
	return strings.Join(*lf, ",")
}

func (lf *listFlag) Set(value string) error {
	*lf = append(*lf, value)
	return nil
}
