package mapscript

import (
	"slices"

	"github.com/retroenv/retrogolib/log"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/emumem/endian"
	"github.com/ezrec/emumem/memory"
)

// Region is a memory region declared by a script.
type Region struct {
	Name       string
	Size       uint32
	Width      uint8
	Endianness endian.Endianness
	Fill       uint8
	Data       []byte // Initial contents at offset zero.
}

// BankConfig fills the entries of a bank from a region once the machine
// has booted.
type BankConfig struct {
	Tag    string
	Region string
	Offset uint32
	Count  int
	Stride int
	Entry  int // Entry selected after configuration.
}

// Script is the machine description produced by a map script.
type Script struct {
	Filename string
	Regions  []*Region
	Devices  []*Device
	Ports    map[string]*Latch
	Banks    []*BankConfig
}

// Options adjust how a script is loaded.
type Options struct {
	Logger   *log.Logger // Receives print() output and handler logs.
	Registry Registry    // Named handlers; nil means DefaultRegistry().
}

type loader struct {
	logger   *log.Logger
	registry Registry
	script   *Script
}

// Load runs a map script. src is as for starlark.ExecFile: nil reads
// filename, otherwise a string, []byte or io.Reader.
func Load(filename string, src any, opts Options) (script *Script, err error) {
	ld := &loader{
		logger:   opts.Logger,
		registry: opts.Registry,
		script: &Script{
			Filename: filename,
			Ports:    make(map[string]*Latch),
		},
	}
	if ld.logger == nil {
		ld.logger = memory.NewLogger(false)
	}
	if ld.registry == nil {
		ld.registry = DefaultRegistry()
	}

	thread := &starlark.Thread{
		Name: filename,
		Print: func(_ *starlark.Thread, msg string) {
			ld.logger.Info(msg, log.String("script", filename))
		},
	}

	predeclared := starlark.StringDict{
		"region":       starlark.NewBuiltin("region", ld.region),
		"device":       starlark.NewBuiltin("device", ld.device),
		"port":         starlark.NewBuiltin("port", ld.port),
		"bank_entries": starlark.NewBuiltin("bank_entries", ld.bankEntries),
		"AS_PROGRAM":   starlark.MakeInt(memory.AS_PROGRAM),
		"AS_DATA":      starlark.MakeInt(memory.AS_DATA),
		"AS_IO":        starlark.MakeInt(memory.AS_IO),
		"AS_OPCODES":   starlark.MakeInt(memory.AS_OPCODES),
	}

	_, err = starlark.ExecFileOptions(&syntax.FileOptions{}, thread, filename, src, predeclared)
	if err != nil {
		return
	}

	script = ld.script
	return
}

// Device returns the device with tag, or nil.
func (script *Script) Device(tag string) *Device {
	for _, dev := range script.Devices {
		if dev.tag == tag {
			return dev
		}
	}
	return nil
}

// PortTags returns the declared port tags in order.
func (script *Script) PortTags() []string {
	tags := make([]string, 0, len(script.Ports))
	for tag := range script.Ports {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}

// regionData accepts bytes, a string, or a list of ints.
type regionData []byte

func (rd *regionData) Unpack(v starlark.Value) error {
	switch v := v.(type) {
	case starlark.Bytes:
		*rd = []byte(v)
	case starlark.String:
		*rd = []byte(v)
	case *starlark.List:
		data := make([]byte, v.Len())
		for n := range v.Len() {
			var b uint8
			if err := starlark.AsInt(v.Index(n), &b); err != nil {
				return &ErrData{Detail: f("element %d", n), Err: err}
			}
			data[n] = b
		}
		*rd = data
	default:
		return &ErrData{Detail: f("got %v", v.Type())}
	}
	return nil
}

func (ld *loader) region(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	var size uint32
	byteOrder := "little"
	var width uint8 = 1
	var fill uint8
	var data regionData

	err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"name", &name, "size", &size,
		"width?", &width, "endian?", &byteOrder, "fill?", &fill, "data?", &data)
	if err != nil {
		return nil, err
	}

	if slices.ContainsFunc(ld.script.Regions, func(r *Region) bool { return r.Name == name }) {
		return nil, &ErrDuplicate{Tag: name, Err: ErrDuplicateRegion}
	}

	e, err := endian.Parse(byteOrder)
	if err != nil {
		return nil, err
	}

	if uint64(len(data)) > uint64(size) {
		return nil, &ErrData{Region: name, Detail: f("%d bytes of data for %d bytes", len(data), size)}
	}

	ld.script.Regions = append(ld.script.Regions, &Region{
		Name:       name,
		Size:       size,
		Width:      width,
		Endianness: e,
		Fill:       fill,
		Data:       data,
	})

	return starlark.None, nil
}

func (ld *loader) device(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var tag string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &tag); err != nil {
		return nil, err
	}

	if ld.script.Device(tag) != nil {
		return nil, &ErrDuplicate{Tag: tag, Err: ErrDuplicateDevice}
	}

	dev := &Device{tag: tag}
	ld.script.Devices = append(ld.script.Devices, dev)

	return &deviceValue{loader: ld, dev: dev}, nil
}

func (ld *loader) port(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var tag string
	var value uint64

	err := starlark.UnpackArgs(b.Name(), args, kwargs, "tag", &tag, "value?", &value)
	if err != nil {
		return nil, err
	}

	if _, ok := ld.script.Ports[tag]; ok {
		return nil, &ErrDuplicate{Tag: tag, Err: ErrDuplicatePort}
	}

	ld.script.Ports[tag] = NewLatch(value)
	return starlark.None, nil
}

func (ld *loader) bankEntries(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	bc := &BankConfig{Count: 1}

	err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"tag", &bc.Tag, "region", &bc.Region,
		"offset?", &bc.Offset, "count?", &bc.Count, "stride?", &bc.Stride, "entry?", &bc.Entry)
	if err != nil {
		return nil, err
	}

	ld.script.Banks = append(ld.script.Banks, bc)
	return starlark.None, nil
}
