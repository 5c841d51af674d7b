package tile

import "github.com/terravista/quadlod/geo"

// TilingScheme describes how the ellipsoid surface is divided into a
// regular grid of level-zero tiles, each subdivided into four per level.
type TilingScheme interface {
	Ellipsoid() geo.Ellipsoid
	NumberOfLevelZeroTilesX() int
	NumberOfLevelZeroTilesY() int
	TileRectangle(level, x, y int) geo.Rectangle

	// PositionToTileXY returns the coordinates of the tile containing the
	// given position at the given level. ok is false when the position is
	// outside the scheme's extent.
	PositionToTileXY(p geo.Cartographic, level int) (x, y int, ok bool)
}

// GeographicTilingScheme divides a geographic rectangle using the simple
// equirectangular convention: rows count from north to south.
type GeographicTilingScheme struct {
	WorldRectangle geo.Rectangle
	RootTilesX     int
	RootTilesY     int

	ellipsoid geo.Ellipsoid
}

// NewGeographicTilingScheme returns the usual whole-globe scheme with two
// root tiles side by side on WGS84.
func NewGeographicTilingScheme() *GeographicTilingScheme {
	return &GeographicTilingScheme{
		WorldRectangle: geo.Rectangle{
			West:  -3.14159265358979323846,
			South: -1.57079632679489661923,
			East:  3.14159265358979323846,
			North: 1.57079632679489661923,
		},
		RootTilesX: 2,
		RootTilesY: 1,
		ellipsoid:  geo.WGS84,
	}
}

func (s *GeographicTilingScheme) Ellipsoid() geo.Ellipsoid {
	return s.ellipsoid
}

func (s *GeographicTilingScheme) NumberOfLevelZeroTilesX() int {
	return s.RootTilesX
}

func (s *GeographicTilingScheme) NumberOfLevelZeroTilesY() int {
	return s.RootTilesY
}

func (s *GeographicTilingScheme) tilesAtLevel(level int) (int, int) {
	return s.RootTilesX << level, s.RootTilesY << level
}

func (s *GeographicTilingScheme) TileRectangle(level, x, y int) geo.Rectangle {
	tilesX, tilesY := s.tilesAtLevel(level)
	width := s.WorldRectangle.Width() / float64(tilesX)
	height := s.WorldRectangle.Height() / float64(tilesY)

	west := s.WorldRectangle.West + float64(x)*width
	north := s.WorldRectangle.North - float64(y)*height

	return geo.Rectangle{
		West:  west,
		South: north - height,
		East:  west + width,
		North: north,
	}
}

func (s *GeographicTilingScheme) PositionToTileXY(p geo.Cartographic, level int) (int, int, bool) {
	if !s.WorldRectangle.Contains(p) {
		return 0, 0, false
	}

	tilesX, tilesY := s.tilesAtLevel(level)
	width := s.WorldRectangle.Width() / float64(tilesX)
	height := s.WorldRectangle.Height() / float64(tilesY)

	x := int((p.Longitude - s.WorldRectangle.West) / width)
	if x >= tilesX {
		x = tilesX - 1
	}
	y := int((s.WorldRectangle.North - p.Latitude) / height)
	if y >= tilesY {
		y = tilesY - 1
	}
	return x, y, true
}
