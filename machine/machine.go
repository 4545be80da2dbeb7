// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package machine

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/retroenv/retrogolib/log"

	"github.com/ezrec/emumem/mapscript"
	"github.com/ezrec/emumem/memory"
)

// Options adjust how a machine boots.
type Options struct {
	Verbose bool // If set, enables debug logging and unmapped access logging.
}

// Machine is a booted set of scripted devices sharing one memory manager.
type Machine struct {
	Verbose bool
	Script  *mapscript.Script
	Manager *memory.Manager
	logger  *log.Logger
}

// New boots the machine described by script.
func New(logger *log.Logger, script *mapscript.Script, opts Options) (mach *Machine, err error) {
	if logger == nil {
		logger = memory.NewLogger(opts.Verbose)
	}

	m := memory.NewManager(logger)
	m.Verbose = opts.Verbose

	mach = &Machine{
		Verbose: opts.Verbose,
		Script:  script,
		Manager: m,
		logger:  logger,
	}

	err = mach.boot()
	if err != nil {
		mach = nil
		return
	}

	logger.Debug("machine booted",
		log.String("script", script.Filename),
		log.Int("devices", len(script.Devices)),
		log.Int("regions", len(script.Regions)))

	return
}

func (mach *Machine) boot() (err error) {
	defer memory.Recover(&err)

	m := mach.Manager
	script := mach.Script

	for _, r := range script.Regions {
		region := m.RegionAlloc(r.Name, r.Size, r.Width, r.Endianness)
		region.Fill(r.Fill)
		copy(region.Data(), r.Data)
	}

	for _, tag := range script.PortTags() {
		m.AddPort(tag, script.Ports[tag])
	}

	for _, dev := range script.Devices {
		m.AddDevice(dev)
	}

	err = m.Initialize()
	if err != nil {
		return
	}

	for _, bc := range script.Banks {
		err = mach.configureBank(bc)
		if err != nil {
			return
		}
	}

	return
}

func (mach *Machine) configureBank(bc *mapscript.BankConfig) (err error) {
	defer func() {
		if err != nil {
			err = &ErrBankConfig{Tag: bc.Tag, Err: err}
		}
	}()
	defer memory.Recover(&err)

	bank := mach.Manager.Bank(bc.Tag)
	if bank == nil {
		return memory.ErrNoSuchBank
	}

	region := mach.Manager.Region(bc.Region)
	if region == nil {
		return &ErrNotFound{Tag: bc.Region, Err: memory.ErrNoSuchRegion}
	}

	if bc.Offset >= region.Bytes() {
		return &ErrRegionOffset{Region: bc.Region, Offset: bc.Offset}
	}

	bank.ConfigureEntries(0, bc.Count, region.Data()[bc.Offset:], bc.Stride)
	bank.SetEntry(bc.Entry)

	mach.logger.Debug("bank configured",
		log.String("bank", bc.Tag),
		log.String("region", bc.Region),
		log.Int("entries", bc.Count),
		log.Int("entry", bc.Entry))
	return
}

// Logger returns the machine's logger.
func (mach *Machine) Logger() *log.Logger {
	return mach.logger
}

// Space finds an address space by device tag and space name. The space may
// also be given by number.
func (mach *Machine) Space(tag string, name string) (space memory.AddressSpace, err error) {
	dev := mach.Script.Device(tag)
	if dev == nil {
		err = &ErrNotFound{Tag: tag, Err: ErrNoSuchDevice}
		return
	}

	for spacenum := range memory.MAX_SPACES {
		sp := mach.Manager.Space(dev, spacenum)
		if sp == nil {
			continue
		}
		if sp.Name() == name || strconv.Itoa(spacenum) == name {
			space = sp
			return
		}
	}

	err = &ErrNotFound{Tag: tag + ":" + name, Err: ErrNoSuchSpace}
	return
}

// Peek reads width bits at address. Unaligned accesses are allowed.
func (mach *Machine) Peek(space memory.AddressSpace, address uint32, width int) (value uint64, err error) {
	defer memory.Recover(&err)

	switch width {
	case 8:
		value = uint64(space.Read8(address))
	case 16:
		value = uint64(space.ReadWordUnaligned(address))
	case 32:
		value = uint64(space.ReadDWordUnaligned(address))
	case 64:
		value = space.ReadQWordUnaligned(address)
	default:
		err = ErrWidth(width)
	}

	return
}

// Poke writes width bits at address.
func (mach *Machine) Poke(space memory.AddressSpace, address uint32, value uint64, width int) (err error) {
	defer memory.Recover(&err)

	switch width {
	case 8:
		space.Write8(address, uint8(value))
	case 16:
		space.WriteWordUnaligned(address, uint16(value))
	case 32:
		space.WriteDWordUnaligned(address, uint32(value))
	case 64:
		space.WriteQWordUnaligned(address, value)
	default:
		err = ErrWidth(width)
	}

	return
}

// SwitchBank selects entry of the bank named tag.
func (mach *Machine) SwitchBank(tag string, entry int) (err error) {
	defer memory.Recover(&err)

	bank, err := mach.bank(tag)
	if err != nil {
		return
	}

	bank.SetEntry(entry)

	mach.logger.Debug("bank switched", log.String("bank", tag), log.Int("entry", entry))
	return
}

// SwitchSpaceBank selects entry of the bank named tag on behalf of space,
// which must map the bank.
func (mach *Machine) SwitchSpaceBank(space memory.AddressSpace, tag string, entry int) (err error) {
	defer memory.Recover(&err)

	bank, err := mach.bank(tag)
	if err != nil {
		return
	}

	bank.SetEntryFrom(space, entry)

	mach.logger.Debug("bank switched",
		log.String("space", space.Name()), log.String("bank", tag), log.Int("entry", entry))
	return
}

func (mach *Machine) bank(tag string) (bank *memory.MemoryBank, err error) {
	bank = mach.Manager.Bank(tag)
	if bank == nil {
		err = &ErrNotFound{Tag: tag, Err: memory.ErrNoSuchBank}
	}
	return
}

// SetPort replaces the value of a script port.
func (mach *Machine) SetPort(tag string, value uint64) (err error) {
	latch, ok := mach.Script.Ports[tag]
	if !ok {
		err = &ErrNotFound{Tag: tag, Err: memory.ErrNoSuchPort}
		return
	}

	latch.Set(value)
	return
}

// Dump writes the read and write maps of every space. When columns leaves
// room, the two maps of a space are written side by side.
func (mach *Machine) Dump(w io.Writer, columns int) (err error) {
	bw := bufio.NewWriter(w)
	defer func() {
		ferr := bw.Flush()
		if err == nil {
			err = ferr
		}
	}()

	for space := range mach.Manager.Spaces() {
		var read, write strings.Builder

		err = space.DumpMap(&read, memory.READ)
		if err != nil {
			return
		}

		err = space.DumpMap(&write, memory.WRITE)
		if err != nil {
			return
		}

		err = dumpColumns(bw, read.String(), write.String(), columns)
		if err != nil {
			return
		}
	}

	return
}

func dumpColumns(w io.Writer, left, right string, columns int) (err error) {
	llines := strings.Split(strings.TrimSuffix(left, "\n"), "\n")
	rlines := strings.Split(strings.TrimSuffix(right, "\n"), "\n")

	width := 0
	for _, line := range llines {
		width = max(width, len(line))
	}

	rwidth := 0
	for _, line := range rlines {
		rwidth = max(rwidth, len(line))
	}

	if width+2+rwidth > columns {
		_, err = fmt.Fprintf(w, "%s%s", left, right)
		return
	}

	for n := range max(len(llines), len(rlines)) {
		var l, r string
		if n < len(llines) {
			l = llines[n]
		}
		if n < len(rlines) {
			r = rlines[n]
		}
		_, err = fmt.Fprintln(w, strings.TrimRight(fmt.Sprintf("%-*s  %s", width, l, r), " "))
		if err != nil {
			return
		}
	}

	return
}
