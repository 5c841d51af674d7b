package tile

import "github.com/terravista/quadlod/geo"

// HeightProbe tracks the terrain height under a fixed surface point. A
// probe is registered once and then consulted every time a visited tile
// covering its point is deeper than the level it was last resolved at.
type HeightProbe struct {
	// ID identifies the registration in logs and debug output.
	ID string

	// Position is the surface point being tracked.
	Position geo.Cartographic

	// PositionOnSurface is Position projected onto the ellipsoid surface,
	// precomputed at registration.
	PositionOnSurface geo.Cartesian3

	// Level is the deepest tile level the probe has been resolved at, or
	// -1 before the first resolution.
	Level int

	// Callback receives the sampled position each time the probe resolves
	// at a deeper level.
	Callback func(geo.Cartesian3)

	removed bool
}

// MarkRemoved flags the probe for removal. Tiles drop flagged probes the
// next time their probe lists are refreshed.
func (p *HeightProbe) MarkRemoved() {
	p.removed = true
}

func (p *HeightProbe) Removed() bool {
	return p.removed
}

// Probes returns the probes whose points fall inside this tile's
// rectangle, as of the tile's last refresh.
func (t *Tile) Probes() []*HeightProbe {
	return t.probes
}

// UpdateProbes refreshes the tile's probe list. Level-zero tiles apply the
// global add/remove lists; descendants inherit from their parent. Probe
// lists propagate down lazily: a tile only refreshes when its parent's
// list changed since the tile last looked, so refreshes must happen
// top-down, which the selector's traversal order guarantees.
func (t *Tile) UpdateProbes(added, removed []*HeightProbe) {
	if t.parent == nil {
		if len(added) == 0 && len(removed) == 0 {
			return
		}

		probes := t.probes[:0]
		for _, p := range t.probes {
			if !p.removed {
				probes = append(probes, p)
			}
		}
		for _, p := range added {
			if !p.removed && t.Rectangle.Contains(p.Position) {
				probes = append(probes, p)
			}
		}
		t.probes = probes
		t.probeVersion++
		return
	}

	if t.parentProbeVersion == t.parent.probeVersion {
		return
	}

	t.probes = t.probes[:0]
	for _, p := range t.parent.probes {
		if !p.removed && t.Rectangle.Contains(p.Position) {
			t.probes = append(t.probes, p)
		}
	}
	t.parentProbeVersion = t.parent.probeVersion
	t.probeVersion++
}
