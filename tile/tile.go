package tile

import "github.com/terravista/quadlod/geo"

// LoadState describes how far a tile's content has progressed through
// loading. Transitions are driven by the tile Provider.
type LoadState int

const (
	// LoadStateStart is the initial state; no loading has been requested.
	LoadStateStart LoadState = iota

	// LoadStateLoading means the provider has been asked for content and
	// has not finished yet.
	LoadStateLoading

	// LoadStateDone means the content is fully loaded.
	LoadStateDone

	// LoadStateFailed means the last load attempt failed. A failed tile is
	// treated like an unloaded one and is retried if it is visited again.
	LoadStateFailed
)

func (s LoadState) String() string {
	switch s {
	case LoadStateStart:
		return "start"
	case LoadStateLoading:
		return "loading"
	case LoadStateDone:
		return "done"
	case LoadStateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Content is provider-owned tile content. The quadtree never inspects it;
// it only releases it when a tile is evicted.
type Content interface {
	Release()
}

// Child indices returned by Tile.Children.
const (
	ChildSouthwest = 0
	ChildSoutheast = 1
	ChildNorthwest = 2
	ChildNortheast = 3
)

// Tile is a node of the quadtree covering the ellipsoid surface. Tiles are
// identified by (Level, X, Y) and created lazily as the selector refines.
// A tile is owned by the quadtree; the replacement queue and the load
// queues only reference it.
type Tile struct {
	Level     int
	X         int
	Y         int
	Rectangle geo.Rectangle

	// State, Renderable, UpsampledFromParent and Content are maintained by
	// the provider as it loads the tile.
	State               LoadState
	Renderable          bool
	UpsampledFromParent bool
	Content             Content

	// Distance to the camera, set once per visit by the selector.
	Distance float64

	// FrameRendered is the last frame number this tile appeared in the
	// render list. LoadQueueFrame is the last frame this tile was put in a
	// load queue; it guards against a tile entering two queues in one
	// frame. Frame numbers start at 1.
	FrameRendered  uint64
	LoadQueueFrame uint64

	parent   *Tile
	children *[4]*Tile

	probes             []*HeightProbe
	probeVersion       uint64
	parentProbeVersion uint64

	replacementPrev *Tile
	replacementNext *Tile
}

func New(level, x, y int, rect geo.Rectangle, parent *Tile) *Tile {
	return &Tile{
		Level:     level,
		X:         x,
		Y:         y,
		Rectangle: rect,
		parent:    parent,
	}
}

// CreateLevelZeroTiles builds the root tiles of the given tiling scheme.
func CreateLevelZeroTiles(scheme TilingScheme) []*Tile {
	numX := scheme.NumberOfLevelZeroTilesX()
	numY := scheme.NumberOfLevelZeroTilesY()

	tiles := make([]*Tile, 0, numX*numY)
	for y := 0; y < numY; y++ {
		for x := 0; x < numX; x++ {
			tiles = append(tiles, New(0, x, y, scheme.TileRectangle(0, x, y), nil))
		}
	}
	return tiles
}

func (t *Tile) Parent() *Tile {
	return t.parent
}

// Children returns the four child tiles, creating them on first use.
// Index with the Child* constants.
func (t *Tile) Children() [4]*Tile {
	if t.children == nil {
		level := t.Level + 1
		x := t.X * 2
		y := t.Y * 2

		midLon := (t.Rectangle.West + t.Rectangle.East) / 2
		midLat := (t.Rectangle.South + t.Rectangle.North) / 2

		t.children = &[4]*Tile{
			ChildSouthwest: New(level, x, y+1, geo.Rectangle{
				West: t.Rectangle.West, South: t.Rectangle.South,
				East: midLon, North: midLat,
			}, t),
			ChildSoutheast: New(level, x+1, y+1, geo.Rectangle{
				West: midLon, South: t.Rectangle.South,
				East: t.Rectangle.East, North: midLat,
			}, t),
			ChildNorthwest: New(level, x, y, geo.Rectangle{
				West: t.Rectangle.West, South: midLat,
				East: midLon, North: t.Rectangle.North,
			}, t),
			ChildNortheast: New(level, x+1, y, geo.Rectangle{
				West: midLon, South: midLat,
				East: t.Rectangle.East, North: t.Rectangle.North,
			}, t),
		}
	}
	return *t.children
}

// HasChildren reports whether the children have been created without
// creating them.
func (t *Tile) HasChildren() bool {
	return t.children != nil
}

// NeedsLoading reports whether the tile should keep receiving load
// attention. Failed tiles need loading again so the provider can retry
// when the tile is re-visited.
func (t *Tile) NeedsLoading() bool {
	return t.State != LoadStateDone
}

// EligibleForUnloading reports whether the tile can be evicted right now.
// A tile in the middle of a load keeps its resources until the provider
// settles its state.
func (t *Tile) EligibleForUnloading() bool {
	return t.State != LoadStateLoading
}

// FreeResources releases the tile's content, resets its load state so it
// can be reloaded later, and recursively frees and detaches its children.
func (t *Tile) FreeResources() {
	t.State = LoadStateStart
	t.Renderable = false
	t.UpsampledFromParent = false

	if t.Content != nil {
		t.Content.Release()
		t.Content = nil
	}

	if t.children != nil {
		for _, child := range t.children {
			child.FreeResources()
		}
		t.children = nil
	}
}
