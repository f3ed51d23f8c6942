package tvu

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// gdalNoData is the no-data sentinel written into output rasters, in GDAL's
// formatting of -math.MaxFloat32.
const (
	gdalNoData       = "-3.4028234663852886e+038"
	gdalNoDataBits   = 0xff7fffff
	tiffTypeASCII    = 2
	tiffTypeShort    = 3
	tiffTypeLong     = 4
	tiffTypeDouble   = 12
	tiffTagCount     = 15
	tiffHeaderLength = 8
)

type tiffTag struct {
	tag      uint16
	tiffType uint16
	count    uint32
	value    uint32
}

// WriteGeoTIFF encodes r as a single-band float32 GeoTIFF: uncompressed, one
// strip, little-endian, carrying the grid's pixel scale, tiepoint, SRID, and
// GDAL no-data tags. No-data cells are written as the no-data sentinel.
// Grids with a dimension beyond what the short dimension tags can hold are
// rejected rather than truncated.
func WriteGeoTIFF(w io.Writer, r *Raster) error {
	def := r.def
	if def.Width > math.MaxUint16 || def.Height > math.MaxUint16 {
		return fmt.Errorf("tvu: %dx%d grid exceeds TIFF dimension limits", def.Width, def.Height)
	}
	stripByteCount := 4 * def.Width * def.Height
	ifdOffset := tiffHeaderLength + stripByteCount
	ifdLength := 2 + 12*tiffTagCount + 4
	pixelScaleOffset := ifdOffset + ifdLength
	tiepointOffset := pixelScaleOffset + 3*8
	geoKeysOffset := tiepointOffset + 6*8
	noDataOffset := geoKeysOffset + 16*2

	buf := make([]byte, 0, noDataOffset+len(gdalNoData)+1)
	le := binary.LittleEndian

	// Header.
	buf = append(buf, 'I', 'I')
	buf = le.AppendUint16(buf, 42)
	buf = le.AppendUint32(buf, uint32(ifdOffset))

	// Strip data, row-major from the top-left corner.
	for row := range def.Height {
		for col := range def.Width {
			v := r.Value(CellCoord{C: col, R: row})
			bits := uint32(gdalNoDataBits)
			if !math.IsNaN(v) {
				bits = math.Float32bits(float32(v))
			}
			buf = le.AppendUint32(buf, bits)
		}
	}

	// IFD, tags in ascending order.
	tags := []tiffTag{
		{256, tiffTypeShort, 1, uint32(def.Width)},
		{257, tiffTypeShort, 1, uint32(def.Height)},
		{258, tiffTypeShort, 1, 32},
		{259, tiffTypeShort, 1, 1},
		{262, tiffTypeShort, 1, 1},
		{273, tiffTypeLong, 1, tiffHeaderLength},
		{277, tiffTypeShort, 1, 1},
		{278, tiffTypeShort, 1, uint32(def.Height)},
		{279, tiffTypeLong, 1, uint32(stripByteCount)},
		{284, tiffTypeShort, 1, 1},
		{339, tiffTypeShort, 1, 3},
		{33550, tiffTypeDouble, 3, uint32(pixelScaleOffset)},
		{33922, tiffTypeDouble, 6, uint32(tiepointOffset)},
		{34735, tiffTypeShort, 16, uint32(geoKeysOffset)},
		{42113, tiffTypeASCII, uint32(len(gdalNoData) + 1), uint32(noDataOffset)},
	}
	buf = le.AppendUint16(buf, tiffTagCount)
	for _, tag := range tags {
		buf = le.AppendUint16(buf, tag.tag)
		buf = le.AppendUint16(buf, tag.tiffType)
		buf = le.AppendUint32(buf, tag.count)
		if tag.tiffType == tiffTypeShort && tag.count == 1 {
			buf = le.AppendUint16(buf, uint16(tag.value))
			buf = le.AppendUint16(buf, 0)
		} else {
			buf = le.AppendUint32(buf, tag.value)
		}
	}
	buf = le.AppendUint32(buf, 0) // No next IFD.

	// ModelPixelScale.
	for _, v := range []float64{def.CellSizeX, def.CellSizeY, 0} {
		buf = le.AppendUint64(buf, math.Float64bits(v))
	}
	// ModelTiepoint: raster (0, 0) anchored at the grid's top-left corner.
	for _, v := range []float64{0, 0, 0, def.XMin, def.YMax, 0} {
		buf = le.AppendUint64(buf, math.Float64bits(v))
	}
	// GeoKeyDirectory: projected model, pixel-is-area, projected CS from the
	// grid's SRID.
	for _, v := range []uint16{
		1, 1, 0, 3,
		1024, 0, 1, 1,
		1025, 0, 1, 1,
		3072, 0, 1, uint16(def.SRID),
	} {
		buf = le.AppendUint16(buf, v)
	}
	buf = append(buf, gdalNoData...)
	buf = append(buf, 0)

	_, err := w.Write(buf)
	return err
}
