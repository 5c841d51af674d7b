package tile

import "github.com/terravista/quadlod/geo"

// Visibility is the result of a tile visibility test.
type Visibility int

const (
	VisibilityNone Visibility = iota
	VisibilityPartial
	VisibilityFull
)

// Availability reports whether content exists for a given tile
// coordinate.
type Availability int

const (
	// AvailabilityUnknown means the provider cannot tell yet.
	AvailabilityUnknown Availability = iota
	AvailabilityAvailable
	AvailabilityUnavailable
)

// Provider produces and renders tile content. The quadtree decides which
// tiles to show and when to load them; everything about what a tile
// contains is the provider's business.
//
// LoadTile may work asynchronously but must eventually move the tile's
// load state to done or failed. A provider instance can be bound to at
// most one quadtree at a time.
type Provider interface {
	// Ready reports whether the provider can answer tiling-scheme and
	// geometric-error queries. No tiles are selected before it is ready.
	Ready() bool

	TilingScheme() TilingScheme

	// LevelMaximumGeometricError returns the maximum geometric error, in
	// meters, of tiles at the given level.
	LevelMaximumGeometricError(level int) float64

	// Lifecycle hooks, called once per frame phase.
	Initialize(fs *FrameState)
	BeginUpdate(fs *FrameState)
	EndUpdate(fs *FrameState)
	UpdateForPick(fs *FrameState)

	// CancelReprojections drops any in-flight reprojection work; called
	// when all tiles are invalidated.
	CancelReprojections()

	ComputeTileVisibility(t *Tile, fs *FrameState, occluders any) Visibility

	// ComputeDistanceToTile returns the distance from the camera to the
	// tile, in meters. It must be positive for visible tiles.
	ComputeDistanceToTile(t *Tile, fs *FrameState) float64

	// CanRefine reports whether the tile's children are far enough along
	// that refining into them is meaningful.
	CanRefine(t *Tile) bool

	LoadTile(fs *FrameState, t *Tile)

	// ShowTileThisFrame renders the tile. nearestRenderableAncestor is the
	// closest renderable ancestor on the visited path, or nil; it supplies
	// a fallback bounding surface when the tile itself is not renderable.
	ShowTileThisFrame(t *Tile, fs *FrameState, nearestRenderableAncestor *Tile)

	// TileDataAvailable reports whether real (non-upsampled) content
	// exists at the given coordinate. Used by height probes to detect that
	// resolution has bottomed out.
	TileDataAvailable(level, x, y int) Availability

	// PickHeight intersects the ray with the tile's content.
	PickHeight(t *Tile, ray geo.Ray, fs *FrameState) (geo.Cartesian3, bool)

	Destroy()
}

// LoadPriorityComputer is optionally implemented by providers that want
// to order loads within a queue. Lower values load sooner. Providers that
// do not implement it get traversal order.
type LoadPriorityComputer interface {
	ComputeTileLoadPriority(t *Tile, fs *FrameState) float64
}
