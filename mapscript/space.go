package mapscript

import (
	"fmt"

	"go.starlark.net/starlark"

	"github.com/ezrec/emumem/memory"
)

// spaceValue is the Starlark face of a Space. Its methods append map
// entries.
type spaceValue struct {
	loader *loader
	dev    *Device
	num    int
	space  *Space
}

var _ starlark.HasAttrs = (*spaceValue)(nil)

type spaceMethod func(sv *spaceValue, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) error

var spaceMethods = map[string]spaceMethod{
	"ram":       (*spaceValue).ram,
	"rom":       (*spaceValue).rom,
	"writeonly": (*spaceValue).writeonly,
	"nop":       (*spaceValue).nop,
	"unmap":     (*spaceValue).unmap,
	"bank":      (*spaceValue).bank,
	"port":      (*spaceValue).port,
	"handler":   (*spaceValue).handler,
	"setoffset": (*spaceValue).setoffset,
}

func (sv *spaceValue) String() string {
	return fmt.Sprintf("<space %s:%s>", sv.dev.tag, sv.space.Config.Name)
}

func (sv *spaceValue) Type() string          { return "space" }
func (sv *spaceValue) Freeze()               {}
func (sv *spaceValue) Truth() starlark.Bool  { return starlark.True }
func (sv *spaceValue) Hash() (uint32, error) { return starlark.String(sv.String()).Hash() }

func (sv *spaceValue) AttrNames() []string {
	return []string{"bank", "handler", "name", "nop", "num", "port", "ram", "rom", "setoffset", "unmap", "writeonly"}
}

func (sv *spaceValue) Attr(name string) (starlark.Value, error) {
	switch name {
	case "name":
		return starlark.String(sv.space.Config.Name), nil
	case "num":
		return starlark.MakeInt(sv.num), nil
	}

	method, ok := spaceMethods[name]
	if !ok {
		return nil, nil
	}

	return starlark.NewBuiltin(name, func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if err := method(sv, b, args, kwargs); err != nil {
			return nil, err
		}
		return starlark.None, nil
	}), nil
}

func (sv *spaceValue) add(entry memory.MapEntry) {
	sv.space.Entries = append(sv.space.Entries, entry)
}

func parseReadOrWrite(side string) (rw memory.ReadOrWrite, err error) {
	switch side {
	case "read":
		rw = memory.READ
	case "write":
		rw = memory.WRITE
	case "readwrite", "":
		rw = memory.READWRITE
	default:
		err = ErrSide(side)
	}
	return
}

// sides returns the target on the sides selected by rw.
func sides(rw memory.ReadOrWrite, target memory.MapTarget) (read, write memory.MapTarget) {
	if rw&memory.READ != 0 {
		read = target
	}
	if rw&memory.WRITE != 0 {
		write = target
	}
	return
}

func (sv *spaceValue) memory(b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple, rw memory.ReadOrWrite, kind memory.TargetKind) error {
	entry := memory.MapEntry{}

	err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"start", &entry.Start, "end", &entry.End, "mirror?", &entry.Mirror,
		"share?", &entry.Share, "region?", &entry.Region, "offset?", &entry.RegionOffset)
	if err != nil {
		return err
	}

	entry.Read, entry.Write = sides(rw, memory.MapTarget{Kind: kind})
	sv.add(entry)
	return nil
}

func (sv *spaceValue) ram(b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) error {
	return sv.memory(b, args, kwargs, memory.READWRITE, memory.TARGET_RAM)
}

func (sv *spaceValue) rom(b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) error {
	return sv.memory(b, args, kwargs, memory.READ, memory.TARGET_ROM)
}

func (sv *spaceValue) writeonly(b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) error {
	return sv.memory(b, args, kwargs, memory.WRITE, memory.TARGET_RAM)
}

func (sv *spaceValue) quiet(b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple, kind memory.TargetKind) error {
	entry := memory.MapEntry{}
	side := "readwrite"

	err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"start", &entry.Start, "end", &entry.End, "mirror?", &entry.Mirror, "rw?", &side)
	if err != nil {
		return err
	}

	rw, err := parseReadOrWrite(side)
	if err != nil {
		return err
	}

	entry.Read, entry.Write = sides(rw, memory.MapTarget{Kind: kind})
	sv.add(entry)
	return nil
}

func (sv *spaceValue) nop(b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) error {
	return sv.quiet(b, args, kwargs, memory.TARGET_NOP)
}

func (sv *spaceValue) unmap(b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) error {
	return sv.quiet(b, args, kwargs, memory.TARGET_UNMAP)
}

func (sv *spaceValue) bank(b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) error {
	entry := memory.MapEntry{}
	var tag string
	side := "readwrite"

	err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"start", &entry.Start, "end", &entry.End, "tag", &tag, "mirror?", &entry.Mirror, "rw?", &side)
	if err != nil {
		return err
	}

	rw, err := parseReadOrWrite(side)
	if err != nil {
		return err
	}

	entry.Read, entry.Write = sides(rw, memory.MapTarget{Kind: memory.TARGET_BANK, Tag: tag})
	sv.add(entry)
	return nil
}

func (sv *spaceValue) port(b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) error {
	entry := memory.MapEntry{}
	var read, write string

	err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"start", &entry.Start, "end", &entry.End, "read?", &read, "write?", &write, "mirror?", &entry.Mirror)
	if err != nil {
		return err
	}

	if read != "" {
		entry.Read = memory.MapTarget{Kind: memory.TARGET_PORT, Tag: read}
	}
	if write != "" {
		entry.Write = memory.MapTarget{Kind: memory.TARGET_PORT, Tag: write}
	}

	sv.add(entry)
	return nil
}

func (sv *spaceValue) handler(b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) error {
	entry := memory.MapEntry{}
	var read, write string
	var width int

	err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"start", &entry.Start, "end", &entry.End, "read?", &read, "write?", &write,
		"width?", &width, "mask?", &entry.Mask, "mirror?", &entry.Mirror, "select?", &entry.Select,
		"unitmask?", &entry.UnitMask, "cswidth?", &entry.CSWidth)
	if err != nil {
		return err
	}

	var rh, wh Handler
	if read != "" {
		rh, err = sv.loader.build(read)
		if err != nil {
			return err
		}
		if rh.Read == nil {
			return &ErrNoSide{Handler: read, Side: "read"}
		}
		entry.Read = memory.MapTarget{Kind: memory.TARGET_HANDLER, Read: *rh.Read}
		if width > 0 {
			entry.Read.Read.Width = width
		}
	}

	if write != "" {
		wh = rh
		if write != read {
			wh, err = sv.loader.build(write)
			if err != nil {
				return err
			}
		}
		if wh.Write == nil {
			return &ErrNoSide{Handler: write, Side: "write"}
		}
		entry.Write = memory.MapTarget{Kind: memory.TARGET_HANDLER, Write: *wh.Write}
		if width > 0 {
			entry.Write.Write.Width = width
		}
	}

	sv.add(entry)
	return nil
}

func (sv *spaceValue) setoffset(b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) error {
	entry := memory.MapEntry{}
	var name string

	err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"start", &entry.Start, "end", &entry.End, "handler", &name,
		"mask?", &entry.Mask, "mirror?", &entry.Mirror, "select?", &entry.Select)
	if err != nil {
		return err
	}

	h, err := sv.loader.build(name)
	if err != nil {
		return err
	}
	if h.SetOffset == nil {
		return &ErrNoSide{Handler: name, Side: "set offset"}
	}

	entry.SetOffset = h.SetOffset
	sv.add(entry)
	return nil
}
