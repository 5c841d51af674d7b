package quadtree

import (
	"math"

	"github.com/terravista/quadlod/tile"
)

// screenSpaceError estimates the on-screen pixel error of rendering the
// tile at its own level instead of infinite detail. The tile's Distance
// must be set before calling.
func (p *Primitive) screenSpaceError(fs *tile.FrameState, t *tile.Tile) float64 {
	maxGeometricError := p.provider.LevelMaximumGeometricError(t.Level)

	if fs.Mode == tile.SceneMode2D || fs.OrthographicProjection {
		return maxGeometricError / fs.PixelSize
	}

	height := float64(fs.ViewportHeight)
	err := maxGeometricError * height / (t.Distance * fs.SSEDenominator)

	if fs.Fog.Enabled {
		// Distant tiles disappear into fog, so less detail is acceptable.
		err -= fogFactor(t.Distance, fs.Fog.Density) * fs.Fog.SSEFactor
	}
	return err
}

// fogFactor approaches 1 as the distance-density product grows.
func fogFactor(distance, density float64) float64 {
	scalar := distance * density
	return 1.0 - math.Exp(-(scalar * scalar))
}
