package mapscript

import (
	"fmt"

	"go.starlark.net/starlark"

	"github.com/ezrec/emumem/endian"
	"github.com/ezrec/emumem/memory"
)

// Space is one address space declared by a script.
type Space struct {
	Config  memory.AddressSpaceConfig
	Unmap   uint64
	Entries []memory.MapEntry
}

// Device is a scripted device. It supplies its spaces and address maps to
// a memory.Manager.
type Device struct {
	tag    string
	spaces [memory.MAX_SPACES]*Space
}

var _ memory.Device = (*Device)(nil)

func (dev *Device) Tag() string { return dev.tag }

// Space returns a declared space, or nil.
func (dev *Device) Space(spacenum int) *Space {
	if spacenum < 0 || spacenum >= len(dev.spaces) {
		return nil
	}
	return dev.spaces[spacenum]
}

func (dev *Device) SpaceConfig(spacenum int) *memory.AddressSpaceConfig {
	space := dev.Space(spacenum)
	if space == nil {
		return nil
	}
	return &space.Config
}

func (dev *Device) AddressMap(spacenum int, am *memory.AddressMap) {
	space := dev.Space(spacenum)
	if space == nil {
		return
	}

	am.Unmap = space.Unmap
	for _, entry := range space.Entries {
		am.Add(entry)
	}
}

// deviceValue is the Starlark face of a Device.
type deviceValue struct {
	loader *loader
	dev    *Device
}

var _ starlark.HasAttrs = (*deviceValue)(nil)

func (dv *deviceValue) String() string        { return fmt.Sprintf("<device %q>", dv.dev.tag) }
func (dv *deviceValue) Type() string          { return "device" }
func (dv *deviceValue) Freeze()               {}
func (dv *deviceValue) Truth() starlark.Bool  { return starlark.True }
func (dv *deviceValue) Hash() (uint32, error) { return starlark.String(dv.dev.tag).Hash() }
func (dv *deviceValue) AttrNames() []string   { return []string{"space", "tag"} }

func (dv *deviceValue) Attr(name string) (starlark.Value, error) {
	switch name {
	case "tag":
		return starlark.String(dv.dev.tag), nil
	case "space":
		return starlark.NewBuiltin("space", dv.space), nil
	}
	return nil, nil
}

func (dv *deviceValue) space(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var spacenum int
	var byteOrder string
	cfg := memory.AddressSpaceConfig{}
	var unmap uint64

	err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"num", &spacenum, "name", &cfg.Name, "endian", &byteOrder,
		"data_width", &cfg.DataWidth, "addr_width", &cfg.AddrWidth,
		"addr_shift?", &cfg.AddrShift, "logaddr_width?", &cfg.LogAddrWidth,
		"page_shift?", &cfg.PageShift, "octal?", &cfg.IsOctal, "unmap?", &unmap)
	if err != nil {
		return nil, err
	}

	if spacenum < 0 || spacenum >= memory.MAX_SPACES {
		return nil, &ErrSpace{Device: dv.dev.tag, Space: spacenum, Err: ErrSpaceNumber}
	}

	if dv.dev.spaces[spacenum] != nil {
		return nil, &ErrSpace{Device: dv.dev.tag, Space: spacenum, Err: ErrDuplicateSpace}
	}

	cfg.Endianness, err = endian.Parse(byteOrder)
	if err != nil {
		return nil, err
	}

	space := &Space{Config: cfg, Unmap: unmap}
	dv.dev.spaces[spacenum] = space

	return &spaceValue{loader: dv.loader, dev: dv.dev, num: spacenum, space: space}, nil
}
