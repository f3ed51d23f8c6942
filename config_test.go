package tvu_test

import (
	"strconv"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/twpayne/go-tvu"
)

func TestDefaultConfig(t *testing.T) {
	config := tvu.DefaultConfig()
	assert.False(t, config.Accumulate)
	assert.Equal(t, "linear", config.WafflesModule)
	assert.Equal(t, 0.2, config.HoldoutFraction)
	assert.Equal(t, 10, config.MinSamples)
	assert.Equal(t, 10, config.DistanceBins)
	assert.True(t, config.Workers > 0)
}

func TestParseConfig(t *testing.T) {
	config, err := tvu.ParseConfig([]byte(`
accumulate: true
waffles_module: surface
holdout_fraction: 0.25
seed: 12345
min_samples: 50
`))
	assert.NoError(t, err)
	assert.True(t, config.Accumulate)
	assert.Equal(t, "surface", config.WafflesModule)
	assert.Equal(t, 0.25, config.HoldoutFraction)
	assert.Equal(t, uint64(12345), config.Seed)
	assert.Equal(t, 50, config.MinSamples)
	// Unset values still default.
	assert.Equal(t, 10, config.DistanceBins)
}

func TestParseConfigInvalid(t *testing.T) {
	for i, data := range []string{
		"holdout_fraction: 1.5",
		"accumulate: [not a bool",
		"min_samples: -1",
		"distance_bins: -1",
		"workers: -1",
	} {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			_, err := tvu.ParseConfig([]byte(data))
			assert.Error(t, err)
		})
	}
}
