package hal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etongue-project/etongue/internal/model/entities"
)

func TestSimBoard_Deterministic(t *testing.T) {
	b := NewSimBoard(1, 0)

	raw, err := b.ReadAnalog(entities.ChannelLDRAnalog)
	require.NoError(t, err)
	assert.Equal(t, 512, raw)

	raw, err = b.ReadAnalog(entities.ChannelPHAnalog)
	require.NoError(t, err)
	assert.Equal(t, 614, raw)

	d, err := b.ReadDigital(entities.ChannelLDRDigital)
	require.NoError(t, err)
	assert.Equal(t, 1, d)
}

func TestSimBoard_SetAndClamp(t *testing.T) {
	b := NewSimBoard(1, 0)

	b.SetAnalog(entities.ChannelLDRAnalog, 2000)
	raw, err := b.ReadAnalog(entities.ChannelLDRAnalog)
	require.NoError(t, err)
	assert.Equal(t, RawMax, raw)

	b.SetAnalog(entities.ChannelLDRAnalog, -5)
	raw, err = b.ReadAnalog(entities.ChannelLDRAnalog)
	require.NoError(t, err)
	assert.Equal(t, RawMin, raw)

	b.SetDigital(entities.ChannelLDRDigital, 7)
	d, err := b.ReadDigital(entities.ChannelLDRDigital)
	require.NoError(t, err)
	assert.Equal(t, 1, d)
}

func TestSimBoard_JitterStaysInRange(t *testing.T) {
	b := NewSimBoard(42, 8)
	for i := 0; i < 500; i++ {
		raw, err := b.ReadAnalog(entities.ChannelPHAnalog)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, raw, RawMin)
		assert.LessOrEqual(t, raw, RawMax)
	}
}

func TestSimBoard_UnmappedChannel(t *testing.T) {
	b := NewSimBoard(1, 0)
	_, err := b.ReadAnalog(entities.Channel("A7"))
	assert.Error(t, err)
	_, err = b.ReadDigital(entities.Channel("D9"))
	assert.Error(t, err)
}
