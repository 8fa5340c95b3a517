package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// TileSize is the edge length in pixels of a raster map tile.
const TileSize = 256

const maxMercatorLat = 85.05112878

// WorldSize is the width in pixels of the whole Web Mercator world at zoom.
func WorldSize(zoom float64) float64 {
	return TileSize * math.Pow(2, zoom)
}

// Project converts a coordinate to Web Mercator world pixels at zoom.
func Project(lat, lon, zoom float64) (x, y float64) {
	lat = math.Max(-maxMercatorLat, math.Min(maxMercatorLat, lat))
	size := WorldSize(zoom)
	x = (lon + 180) / 360 * size
	sin := math.Sin(lat * math.Pi / 180)
	y = (0.5 - math.Log((1+sin)/(1-sin))/(4*math.Pi)) * size
	return x, y
}

// Unproject converts Web Mercator world pixels at zoom back to a coordinate.
func Unproject(x, y, zoom float64) (lat, lon float64) {
	size := WorldSize(zoom)
	lon = x/size*360 - 180
	n := math.Pi - 2*math.Pi*y/size
	lat = 180 / math.Pi * math.Atan(math.Sinh(n))
	return lat, lon
}

// Tile addresses one slippy-map tile.
type Tile struct {
	Z, X, Y int
}

// TileSource describes a raster tile endpoint. URLTemplate uses {z}, {x} and
// {y} placeholders; Attribution must be shown wherever tiles are displayed.
type TileSource struct {
	URLTemplate string
	TileSize    int
	Attribution string
}

// NewTileSource returns a source with the standard 256px tiles.
func NewTileSource(template, attribution string) TileSource {
	return TileSource{URLTemplate: template, TileSize: TileSize, Attribution: attribution}
}

// Validate checks the template has every placeholder and an attribution is set.
func (s TileSource) Validate() error {
	for _, p := range []string{"{z}", "{x}", "{y}"} {
		if !strings.Contains(s.URLTemplate, p) {
			return fmt.Errorf("tile url template %q is missing %s", s.URLTemplate, p)
		}
	}
	if strings.TrimSpace(s.Attribution) == "" {
		return fmt.Errorf("tile source %q has no attribution", s.URLTemplate)
	}
	return nil
}

// URL expands the template for one tile.
func (s TileSource) URL(t Tile) string {
	r := strings.NewReplacer(
		"{z}", strconv.Itoa(t.Z),
		"{x}", strconv.Itoa(t.X),
		"{y}", strconv.Itoa(t.Y),
	)
	return r.Replace(s.URLTemplate)
}

// TilesFor lists the tiles at the integer part of zoom that cover the box.
func (s TileSource) TilesFor(b BoundingBox, zoom float64) []Tile {
	z := int(math.Floor(zoom))
	if z < 0 {
		z = 0
	}
	n := 1 << z

	x0, y0 := Project(b.MaxLat, b.MinLon, float64(z))
	x1, y1 := Project(b.MinLat, b.MaxLon, float64(z))

	clamp := func(v int) int { return max(0, min(n-1, v)) }
	minX, maxX := clamp(int(x0/TileSize)), clamp(int(x1/TileSize))
	minY, maxY := clamp(int(y0/TileSize)), clamp(int(y1/TileSize))
	if maxX < minX || maxY < minY {
		return nil
	}

	tiles := make([]Tile, 0, (maxX-minX+1)*(maxY-minY+1))
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			tiles = append(tiles, Tile{Z: z, X: x, Y: y})
		}
	}
	return tiles
}

func (t Tile) String() string {
	return fmt.Sprintf("%d/%d/%d", t.Z, t.X, t.Y)
}
