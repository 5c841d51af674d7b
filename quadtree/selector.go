package quadtree

import (
	"sort"

	"github.com/terravista/quadlod/geo"
	"github.com/terravista/quadlod/tile"
)

// FrameStatistics aggregates the traversal counters of one selection
// pass.
type FrameStatistics struct {
	TilesVisited            int
	TilesCulled             int
	TilesRendered           int
	TilesWaitingForChildren int
	MaxDepthVisited         int
}

// selectTilesForRendering walks the quadtree from the level-zero tiles
// and fills the render list and the three load queues.
func (p *Primitive) selectTilesForRendering(fs *tile.FrameState) {
	p.tilesToRender = p.tilesToRender[:0]
	p.renderAncestors = p.renderAncestors[:0]

	added := p.addedProbes
	removed := p.removedProbes
	p.addedProbes = nil
	p.removedProbes = nil

	// Sort the roots by squared angular distance from the camera. This is
	// a cheap proxy for viewing distance; level-zero tiles are not a
	// regular grid so a full sort by actual distance is not worth it.
	camera := fs.CameraPositionCartographic
	sort.SliceStable(p.levelZeroTiles, func(i, j int) bool {
		return angularDistanceSquared(p.levelZeroTiles[i], camera) <
			angularDistanceSquared(p.levelZeroTiles[j], camera)
	})

	for _, root := range p.levelZeroTiles {
		p.replacementQueue.MarkTileTouched(root)
		root.UpdateProbes(added, removed)

		if !root.Renderable {
			// The root blocks all refinement below it.
			if root.NeedsLoading() {
				p.queueTileLoad(&p.loadQueueHigh, root, fs)
			}
			p.stats.TilesWaitingForChildren++
		} else if p.provider.ComputeTileVisibility(root, fs, p.Occluders) != tile.VisibilityNone {
			p.visitTile(fs, root, nil)
		} else {
			if root.NeedsLoading() {
				p.queueTileLoad(&p.loadQueueLow, root, fs)
			}
			p.stats.TilesCulled++
		}
	}

	instrumentFrameStatistics(p.stats)
}

// visitTile decides whether to render the tile, refine into its children
// or defer. ancestor is the nearest renderable ancestor on the path from
// the root, excluding the tile itself.
func (p *Primitive) visitTile(fs *tile.FrameState, t *tile.Tile, ancestor *tile.Tile) {
	p.stats.TilesVisited++
	p.replacementQueue.MarkTileTouched(t)
	t.UpdateProbes(nil, nil)

	if t.Level > p.stats.MaxDepthVisited {
		p.stats.MaxDepthVisited = t.Level
	}

	t.Distance = p.provider.ComputeDistanceToTile(t, fs)

	if p.screenSpaceError(fs, t) < p.MaximumScreenSpaceError {
		// The tile meets the error target; render it and stop refining
		// this branch.
		p.addTileToRenderList(t, ancestor)
		if t.NeedsLoading() {
			p.queueTileLoad(&p.loadQueueMedium, t, fs)
		}
		return
	}

	if !p.provider.CanRefine(t) {
		// The children are not loaded enough to refine. Render this tile
		// at its coarser detail; it and the children blocking it load
		// with high priority.
		p.addTileToRenderList(t, ancestor)
		if t.NeedsLoading() {
			p.queueTileLoad(&p.loadQueueHigh, t, fs)
		}
		p.queueChildLoadsNearToFar(fs, t)
		p.stats.TilesWaitingForChildren++
		return
	}

	children := t.Children()
	order := childVisitOrder(children, fs.CameraPositionCartographic)

	allUpsampled := children[0].UpsampledFromParent &&
		children[1].UpsampledFromParent &&
		children[2].UpsampledFromParent &&
		children[3].UpsampledFromParent

	if allUpsampled {
		// The children carry no data the parent doesn't already have, so
		// render the parent. Keep loading the children; a tile that is
		// upsampled-only now may gain real data as it loads further.
		p.addTileToRenderList(t, ancestor)
		if t.NeedsLoading() {
			p.queueTileLoad(&p.loadQueueMedium, t, fs)
		}

		for _, i := range order {
			child := children[i]
			p.replacementQueue.MarkTileTouched(child)
			if child.NeedsLoading() {
				p.queueTileLoad(&p.loadQueueLow, child, fs)
			}
		}
		return
	}

	// Genuine refinement: visit the visible children near to far, culling
	// each independently.
	childAncestor := ancestor
	if t.Renderable {
		childAncestor = t
	}

	for _, i := range order {
		child := children[i]
		if p.provider.ComputeTileVisibility(child, fs, p.Occluders) != tile.VisibilityNone {
			p.visitTile(fs, child, childAncestor)
		} else {
			if child.NeedsLoading() {
				p.queueTileLoad(&p.loadQueueLow, child, fs)
			}
			p.stats.TilesCulled++
		}
	}

	// The parent is superseded, not shown, but still worth retaining.
	if t.NeedsLoading() {
		p.queueTileLoad(&p.loadQueueLow, t, fs)
	}
}

// queueChildLoadsNearToFar queues the children blocking a tile's
// refinement, nearest first.
func (p *Primitive) queueChildLoadsNearToFar(fs *tile.FrameState, t *tile.Tile) {
	children := t.Children()
	for _, i := range childVisitOrder(children, fs.CameraPositionCartographic) {
		child := children[i]
		p.replacementQueue.MarkTileTouched(child)
		if child.NeedsLoading() {
			p.queueTileLoad(&p.loadQueueHigh, child, fs)
		}
	}
}

func (p *Primitive) addTileToRenderList(t *tile.Tile, ancestor *tile.Tile) {
	p.tilesToRender = append(p.tilesToRender, t)
	p.renderAncestors = append(p.renderAncestors, ancestor)
	p.stats.TilesRendered++
}

// queueTileLoad appends the tile to the given queue unless it already
// entered a queue this frame.
func (p *Primitive) queueTileLoad(queue *[]*tile.Tile, t *tile.Tile, fs *tile.FrameState) {
	if t.LoadQueueFrame == fs.FrameNumber {
		return
	}
	t.LoadQueueFrame = fs.FrameNumber
	*queue = append(*queue, t)
}

// childVisitOrder returns the near-to-far child ordering for the camera's
// quadrant relative to the tile's split point. The southwest child's east
// and north edges are the shared split boundaries.
func childVisitOrder(children [4]*tile.Tile, camera geo.Cartographic) [4]int {
	sw := children[tile.ChildSouthwest]

	if camera.Longitude < sw.Rectangle.East {
		if camera.Latitude < sw.Rectangle.North {
			return [4]int{tile.ChildSouthwest, tile.ChildSoutheast, tile.ChildNorthwest, tile.ChildNortheast}
		}
		return [4]int{tile.ChildNorthwest, tile.ChildNortheast, tile.ChildSouthwest, tile.ChildSoutheast}
	}
	if camera.Latitude < sw.Rectangle.North {
		return [4]int{tile.ChildSoutheast, tile.ChildSouthwest, tile.ChildNortheast, tile.ChildNorthwest}
	}
	return [4]int{tile.ChildNortheast, tile.ChildNorthwest, tile.ChildSoutheast, tile.ChildSouthwest}
}

func angularDistanceSquared(t *tile.Tile, camera geo.Cartographic) float64 {
	center := t.Rectangle.Center()
	dLon := center.Longitude - camera.Longitude
	dLat := center.Latitude - camera.Latitude
	return dLon*dLon + dLat*dLat
}
