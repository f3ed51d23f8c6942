package tvu_test

import (
	"errors"
	"io/fs"
	"math"
	"os"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/twpayne/go-tvu"
)

func TestGeoTIFFUncertaintySource(t *testing.T) {
	// Requires a GDAL-written tiled float32 LZW uncertainty raster, for
	// example:
	//
	//	gdal_translate -ot Float32 -co TILED=YES -co COMPRESS=LZW \
	//	    in.tif testdata/uncertainty.tif
	if _, err := os.Stat("testdata/uncertainty.tif"); errors.Is(err, fs.ErrNotExist) {
		t.Skip("missing uncertainty test data")
	}

	source, err := tvu.NewGeoTIFFUncertaintySource(os.DirFS("testdata"), "uncertainty.tif")
	assert.NoError(t, err)
	defer source.Close()

	// Far outside any plausible extent.
	u, err := source.Sample(t.Context(), -1e12, -1e12)
	assert.NoError(t, err)
	assert.True(t, math.IsNaN(u))
}
