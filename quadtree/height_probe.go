package quadtree

import (
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/terravista/quadlod/geo"
	"github.com/terravista/quadlod/tile"
)

// updateHeights advances the outstanding height probes against the tiles
// that newly entered the render list, oldest first, under a wall-clock
// budget. When the budget runs out mid-tile, the probe index is saved and
// processing resumes there next frame without revisiting earlier probes.
// A tile leaves the pending list only once all its probes are processed.
func (p *Primitive) updateHeights(fs *tile.FrameState) {
	if len(p.tilesToUpdateHeights) == 0 {
		return
	}

	ellipsoid := p.provider.TilingScheme().Ellipsoid()
	endTime := p.now().Add(p.UpdateHeightsTimeSlice)

	for len(p.tilesToUpdateHeights) > 0 {
		t := p.tilesToUpdateHeights[0]
		probes := t.Probes()

		timeSliceMax := false
		i := p.lastProbeIndex
		for ; i < len(probes); i++ {
			p.updateProbe(fs, ellipsoid, t, probes[i])

			if !p.now().Before(endTime) {
				// This probe is done; resume at the next one.
				i++
				timeSliceMax = true
				break
			}
		}

		if timeSliceMax && i < len(probes) {
			p.lastProbeIndex = i
			break
		}

		p.lastProbeIndex = 0
		p.tilesToUpdateHeights = p.tilesToUpdateHeights[1:]

		if timeSliceMax {
			break
		}
	}
}

func (p *Primitive) updateProbe(fs *tile.FrameState, ellipsoid geo.Ellipsoid, t *tile.Tile, probe *tile.HeightProbe) {
	if probe.Removed() {
		return
	}

	switch {
	case t.Level > probe.Level:
		ray := p.probeRay(ellipsoid, probe)
		if position, ok := p.provider.PickHeight(t, ray, fs); ok {
			probe.Callback(position)
			probe.Level = t.Level
			instrumentProbeResolution()
			logs.WithTag("probe_id", probe.ID).
				WithTag("level", t.Level).
				Debug("height probe resolved")
		}

	case t.Level == probe.Level:
		// The probe is resolved at this tile's level already. If the
		// child quadrant under the probe has no real data, resolution has
		// bottomed out and the probe retires itself.
		var child *tile.Tile
		for _, c := range t.Children() {
			if c.Rectangle.Contains(probe.Position) {
				child = c
				break
			}
		}
		if child == nil {
			return
		}

		if p.provider.TileDataAvailable(child.Level, child.X, child.Y) == tile.AvailabilityUnavailable {
			probe.MarkRemoved()
			p.removedProbes = append(p.removedProbes, probe)
			logs.WithTag("probe_id", probe.ID).
				WithTag("level", t.Level).
				Debug("height probe bottomed out")
		}
	}
}

// probeRay builds the vertical sampling ray for a probe: it starts at the
// configured minimum terrain height below the registered surface point
// and points up along the geodetic surface normal, so it pierces any
// terrain above that depth.
func (p *Primitive) probeRay(ellipsoid geo.Ellipsoid, probe *tile.HeightProbe) geo.Ray {
	normal := ellipsoid.GeodeticSurfaceNormalCartographic(probe.Position)
	origin := geo.Add(probe.PositionOnSurface, geo.Mul(normal, p.MinimumTerrainHeight))
	return geo.Ray{Origin: origin, Direction: normal}
}
