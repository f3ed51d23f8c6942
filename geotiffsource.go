package tvu

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"sync"

	"github.com/google/tiff"
	_ "github.com/google/tiff/bigtiff"
	_ "github.com/google/tiff/geotiff"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/image/tiff/lzw"
)

var errShortRead = errors.New("short read")

// A geoTIFFIFD is a struct into which github.com/google/tiff can unmarshal an
// IFD.
type geoTIFFIFD struct {
	ImageWidth                uint16    `tiff:"field,tag=256"`
	ImageLength               uint16    `tiff:"field,tag=257"`
	BitsPerSample             uint16    `tiff:"field,tag=258"`
	Compression               uint16    `tiff:"field,tag=259"`
	PhotometricInterpretation uint16    `tiff:"field,tag=262"`
	SamplesPerPixel           uint16    `tiff:"field,tag=277"`
	PlanarConfiguration       uint16    `tiff:"field,tag=284"`
	Predictor                 uint16    `tiff:"field,tag=317"`
	TileWidth                 uint16    `tiff:"field,tag=322"`
	TileLength                uint16    `tiff:"field,tag=323"`
	TileOffsets               []uint64  `tiff:"field,tag=324"`
	TileByteCounts            []uint64  `tiff:"field,tag=325"`
	SampleFormat              uint16    `tiff:"field,tag=339"`
	ModelPixelScaleTag        []float64 `tiff:"field,tag=33550"`
	ModelTiepointTag          []float64 `tiff:"field,tag=33922"`
	GeoKeyDirectoryTag        []uint16  `tiff:"field,tag=34735"`
	GDALMetadata              string    `tiff:"field,tag=42112"`
	GDALNoData                string    `tiff:"field,tag=42113"`
}

// A GeoTIFFUncertaintySource samples per-value uncertainties from a sidecar
// GeoTIFF co-registered with a dataset: a single-band tiled float32 LZW
// raster, the layout GDAL writes for CUDEM-style uncertainty masks. It
// implements UncertaintySource; locations outside the raster or on its
// no-data value sample as NaN.
type GeoTIFFUncertaintySource struct {
	mutex                     sync.Mutex
	file                      *os.File
	imageWidth                int
	imageLength               int
	tileWidth                 int
	tileLength                int
	tilesAcross               int
	tileOffsets               []uint64
	tileByteCounts            []uint64
	tileSampleCount           int
	tileByteCountUncompressed int
	noData                    float32
	hasNoData                 bool
	scaleX                    float64
	scaleY                    float64
	originX                   float64
	originY                   float64
	tileCacheCount            int
	tileSamplesCache          *lru.Cache[CellCoord, []float32]
}

// A GeoTIFFUncertaintySourceOption sets an option on a
// GeoTIFFUncertaintySource.
type GeoTIFFUncertaintySourceOption func(*GeoTIFFUncertaintySource)

// WithTileCacheCount sets the number of decoded tiles kept in memory.
func WithTileCacheCount(tileCacheCount int) GeoTIFFUncertaintySourceOption {
	return func(s *GeoTIFFUncertaintySource) {
		s.tileCacheCount = tileCacheCount
	}
}

// NewGeoTIFFUncertaintySource opens filename in fsys.
func NewGeoTIFFUncertaintySource(fsys fs.FS, filename string, options ...GeoTIFFUncertaintySourceOption) (*GeoTIFFUncertaintySource, error) {
	s := &GeoTIFFUncertaintySource{
		tileCacheCount: 64,
	}
	for _, option := range options {
		option(s)
	}

	file, err := fsys.Open(filename)
	if err != nil {
		return nil, err
	}
	osFile, ok := file.(*os.File)
	if !ok {
		return nil, errors.ErrUnsupported
	}
	s.file = osFile
	opened := false
	defer func() {
		if !opened {
			_ = s.file.Close()
		}
	}()

	tiffTIFF, err := tiff.Parse(s.file, tiff.GetTagSpace("GeoTIFF"), nil)
	if err != nil {
		return nil, err
	}
	if len(tiffTIFF.IFDs()) != 1 {
		return nil, fmt.Errorf("found %d IFDs, expected 1", len(tiffTIFF.IFDs()))
	}
	var ifd geoTIFFIFD
	if err := tiff.UnmarshalIFD(tiffTIFF.IFDs()[0], &ifd); err != nil {
		return nil, err
	}

	if ifd.BitsPerSample != 32 ||
		ifd.Compression != 5 ||
		ifd.SamplesPerPixel != 1 ||
		ifd.PlanarConfiguration != 1 ||
		ifd.Predictor != 1 ||
		ifd.SampleFormat != 3 ||
		len(ifd.ModelPixelScaleTag) != 3 ||
		len(ifd.ModelTiepointTag) != 6 {
		return nil, errors.ErrUnsupported
	}

	if ifd.GDALNoData != "" {
		noData, err := strconv.ParseFloat(ifd.GDALNoData, 32)
		if err != nil {
			return nil, fmt.Errorf("parse nodata %q: %w", ifd.GDALNoData, err)
		}
		s.noData = float32(noData)
		s.hasNoData = true
	}

	s.imageWidth = int(ifd.ImageWidth)
	s.imageLength = int(ifd.ImageLength)
	s.tileWidth = int(ifd.TileWidth)
	s.tileLength = int(ifd.TileLength)
	s.tilesAcross = (s.imageWidth + s.tileWidth - 1) / s.tileWidth
	tilesDown := (s.imageLength + s.tileLength - 1) / s.tileLength
	if tilesPerImage := s.tilesAcross * tilesDown; len(ifd.TileByteCounts) != tilesPerImage || len(ifd.TileOffsets) != tilesPerImage {
		return nil, errors.New("incorrect number of tile byte counts or offsets")
	}
	s.tileOffsets = ifd.TileOffsets
	s.tileByteCounts = ifd.TileByteCounts
	s.tileSampleCount = s.tileWidth * s.tileLength
	s.tileByteCountUncompressed = 4 * s.tileSampleCount

	s.scaleX = ifd.ModelPixelScaleTag[0]
	s.scaleY = ifd.ModelPixelScaleTag[1]
	if s.scaleX <= 0 || s.scaleY <= 0 {
		return nil, errors.ErrUnsupported
	}
	// The tiepoint anchors raster pixel (i, j) at world (x, y).
	i, j := ifd.ModelTiepointTag[0], ifd.ModelTiepointTag[1]
	x, y := ifd.ModelTiepointTag[3], ifd.ModelTiepointTag[4]
	s.originX = x - i*s.scaleX
	s.originY = y + j*s.scaleY

	s.tileSamplesCache, err = lru.New[CellCoord, []float32](s.tileCacheCount)
	if err != nil {
		return nil, err
	}

	opened = true
	return s, nil
}

func (s *GeoTIFFUncertaintySource) Close() error {
	return s.file.Close()
}

// Sample returns the uncertainty at world coordinate (x, y), NaN outside the
// raster or on no-data.
func (s *GeoTIFFUncertaintySource) Sample(ctx context.Context, x, y float64) (float64, error) {
	px := int(math.Floor((x - s.originX) / s.scaleX))
	py := int(math.Floor((s.originY - y) / s.scaleY))
	if px < 0 || s.imageWidth <= px || py < 0 || s.imageLength <= py {
		return math.NaN(), nil
	}
	tileCoord := CellCoord{C: px / s.tileWidth, R: py / s.tileLength}
	tileSamples, err := s.getTileSamplesCached(tileCoord)
	if err != nil {
		return 0, err
	}
	sample := tileSamples[px%s.tileWidth+(py%s.tileLength)*s.tileWidth]
	if s.hasNoData && sample == s.noData {
		return math.NaN(), nil
	}
	return float64(sample), nil
}

// getTileSamplesCached returns the decoded samples of the tile at tileCoord,
// using the cache if possible.
func (s *GeoTIFFUncertaintySource) getTileSamplesCached(tileCoord CellCoord) ([]float32, error) {
	if tileSamples, ok := s.tileSamplesCache.Get(tileCoord); ok {
		uncertaintyTileCacheHits.Inc()
		return tileSamples, nil
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if tileSamples, ok := s.tileSamplesCache.Get(tileCoord); ok {
		uncertaintyTileCacheHits.Inc()
		return tileSamples, nil
	}
	uncertaintyTileCacheMisses.Inc()

	tileSamples, err := s.getTileSamples(tileCoord)
	if err != nil {
		return nil, err
	}
	s.tileSamplesCache.Add(tileCoord, tileSamples)
	return tileSamples, nil
}

// getTileSamples reads, decompresses, and decodes the tile at tileCoord.
func (s *GeoTIFFUncertaintySource) getTileSamples(tileCoord CellCoord) ([]float32, error) {
	tileIndex := tileCoord.C + s.tilesAcross*tileCoord.R
	compressedData := make([]byte, s.tileByteCounts[tileIndex])
	switch n, err := s.file.ReadAt(compressedData, int64(s.tileOffsets[tileIndex])); {
	case err != nil:
		return nil, err
	case n != len(compressedData):
		return nil, errShortRead
	}

	tileData := make([]byte, s.tileByteCountUncompressed)
	r := lzw.NewReader(bytes.NewReader(compressedData), lzw.MSB, 8)
	for bytesRead := 0; bytesRead < s.tileByteCountUncompressed; {
		n, err := r.Read(tileData[bytesRead:])
		if err != nil {
			return nil, err
		}
		bytesRead += n
	}

	tileSamples := make([]float32, s.tileSampleCount)
	for i := range s.tileSampleCount {
		tileSamples[i] = math.Float32frombits(binary.LittleEndian.Uint32(tileData[i*4 : (i+1)*4]))
	}
	return tileSamples, nil
}
