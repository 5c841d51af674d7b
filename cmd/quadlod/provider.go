package main

import (
	"math"

	"github.com/terravista/quadlod/geo"
	"github.com/terravista/quadlod/tile"
)

// syntheticProvider serves a procedural terrain so the frame loop can be
// exercised without any real dataset. Loads complete instantly and every
// level down to maxLevel carries real (non-upsampled) data.
type syntheticProvider struct {
	scheme    *tile.GeographicTilingScheme
	maxLevel  int
	baseError float64

	tilesLoaded uint64
	tilesShown  uint64
}

type syntheticContent struct{}

func (syntheticContent) Release() {}

func newSyntheticProvider(maxLevel int) *syntheticProvider {
	scheme := tile.NewGeographicTilingScheme()

	// Quarter of the circumference split across the root tiles, with the
	// usual heuristic of 65 pixels per tile edge.
	radius := scheme.Ellipsoid().MaximumRadius()
	baseError := radius * 2 * math.Pi * 0.25 / (65 * float64(scheme.NumberOfLevelZeroTilesX()))

	return &syntheticProvider{
		scheme:    scheme,
		maxLevel:  maxLevel,
		baseError: baseError,
	}
}

func (p *syntheticProvider) Ready() bool {
	return true
}

func (p *syntheticProvider) TilingScheme() tile.TilingScheme {
	return p.scheme
}

func (p *syntheticProvider) LevelMaximumGeometricError(level int) float64 {
	return p.baseError / float64(int(1)<<level)
}

func (p *syntheticProvider) Initialize(fs *tile.FrameState)    {}
func (p *syntheticProvider) BeginUpdate(fs *tile.FrameState)   {}
func (p *syntheticProvider) EndUpdate(fs *tile.FrameState)     {}
func (p *syntheticProvider) UpdateForPick(fs *tile.FrameState) {}
func (p *syntheticProvider) CancelReprojections()              {}

func (p *syntheticProvider) ComputeTileVisibility(t *tile.Tile, fs *tile.FrameState, occluders any) tile.Visibility {
	return tile.VisibilityPartial
}

func (p *syntheticProvider) ComputeDistanceToTile(t *tile.Tile, fs *tile.FrameState) float64 {
	center := p.scheme.Ellipsoid().CartographicToCartesian(t.Rectangle.Center())
	return geo.Sub(fs.CameraPosition, center).Magnitude()
}

func (p *syntheticProvider) CanRefine(t *tile.Tile) bool {
	return t.Level < p.maxLevel
}

func (p *syntheticProvider) LoadTile(fs *tile.FrameState, t *tile.Tile) {
	p.tilesLoaded++
	t.State = tile.LoadStateDone
	t.Renderable = true
	t.UpsampledFromParent = t.Level > p.maxLevel
	t.Content = syntheticContent{}
}

func (p *syntheticProvider) ShowTileThisFrame(t *tile.Tile, fs *tile.FrameState, ancestor *tile.Tile) {
	p.tilesShown++
}

func (p *syntheticProvider) TileDataAvailable(level, x, y int) tile.Availability {
	if level > p.maxLevel {
		return tile.AvailabilityUnavailable
	}
	return tile.AvailabilityAvailable
}

func (p *syntheticProvider) PickHeight(t *tile.Tile, ray geo.Ray, fs *tile.FrameState) (geo.Cartesian3, bool) {
	// Sample the procedural terrain under the ray origin.
	center := t.Rectangle.Center()
	height := p.terrainHeight(center)
	position := geo.Cartographic{
		Longitude: center.Longitude,
		Latitude:  center.Latitude,
		Height:    height,
	}
	return p.scheme.Ellipsoid().CartographicToCartesian(position), true
}

func (p *syntheticProvider) Destroy() {}

// ComputeTileLoadPriority loads closer tiles first.
func (p *syntheticProvider) ComputeTileLoadPriority(t *tile.Tile, fs *tile.FrameState) float64 {
	return t.Distance
}

func (p *syntheticProvider) terrainHeight(c geo.Cartographic) float64 {
	return 2000 * math.Sin(12*c.Longitude) * math.Cos(17*c.Latitude)
}
