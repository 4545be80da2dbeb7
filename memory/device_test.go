package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/emumem/endian"
)

type testDevice struct {
	tag     string
	configs [MAX_SPACES]*AddressSpaceConfig
	maps    [MAX_SPACES]func(am *AddressMap)
}

func (td *testDevice) Tag() string { return td.tag }

func (td *testDevice) SpaceConfig(spacenum int) *AddressSpaceConfig {
	return td.configs[spacenum]
}

func (td *testDevice) AddressMap(spacenum int, am *AddressMap) {
	if fn := td.maps[spacenum]; fn != nil {
		fn(am)
	}
}

func newTestDevice(tag string, cfg *AddressSpaceConfig, mapfn func(am *AddressMap)) *testDevice {
	td := &testDevice{tag: tag}
	td.configs[AS_PROGRAM] = cfg
	td.maps[AS_PROGRAM] = mapfn
	return td
}

func programConfig(width int, e endian.Endianness, addrWidth int, shift int) *AddressSpaceConfig {
	return &AddressSpaceConfig{
		Name:       "program",
		Endianness: e,
		DataWidth:  width,
		AddrWidth:  addrWidth,
		AddrShift:  shift,
	}
}

// bootSpace builds and initializes a single device with one program space.
func bootSpace(t *testing.T, cfg *AddressSpaceConfig, mapfn func(am *AddressMap)) (m *Manager, space AddressSpace) {
	assert := assert.New(t)

	m = NewManager(nil)
	dev := newTestDevice("maincpu", cfg, mapfn)
	m.AddDevice(dev)

	err := m.Initialize()
	assert.NoError(err)
	if err != nil {
		t.FailNow()
	}

	space = m.Space(dev, AS_PROGRAM)
	assert.NotNil(space)
	return
}

// fatalErr runs fn, returning the error of any contract violation.
func fatalErr(fn func()) (err error) {
	defer Recover(&err)
	fn()
	return
}

type testPort struct {
	value   uint64
	written []uint64
}

func (tp *testPort) Read() uint64 { return tp.value }

func (tp *testPort) Write(data uint64, mask uint64) {
	tp.value = (tp.value &^ mask) | (data & mask)
	tp.written = append(tp.written, data)
}
