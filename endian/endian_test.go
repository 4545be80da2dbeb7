package endian

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	assert := assert.New(t)

	e, err := Parse("Big")
	assert.NoError(err)
	assert.Equal(Big, e)
	assert.Equal("big", e.String())
	assert.Equal(binary.BigEndian, e.ByteOrder())

	e, err = Parse("le")
	assert.NoError(err)
	assert.Equal(Little, e)
	assert.Equal(binary.LittleEndian, e.ByteOrder())

	_, err = Parse("middle")
	assert.ErrorIs(err, ErrUnknown)
}
