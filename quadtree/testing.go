package quadtree

import (
	"github.com/terravista/quadlod/geo"
	"github.com/terravista/quadlod/tile"
)

// TestProvider is a configurable in-memory tile provider to unit test
// selection, loading and height probing. Every behavior has a sensible
// default: ready, everything visible, loads complete instantly, tiles
// refinable up to MaxRefineLevel.
type TestProvider struct {
	NotReady       bool
	Scheme         tile.TilingScheme
	BaseError      float64
	MaxRefineLevel int

	// Optional overrides.
	VisibilityFunc   func(t *tile.Tile) tile.Visibility
	DistanceFunc     func(t *tile.Tile, fs *tile.FrameState) float64
	CanRefineFunc    func(t *tile.Tile) bool
	LoadFunc         func(fs *tile.FrameState, t *tile.Tile)
	PickHeightFunc   func(t *tile.Tile, ray geo.Ray, fs *tile.FrameState) (geo.Cartesian3, bool)
	AvailabilityFunc func(level, x, y int) tile.Availability

	// Recorded calls.
	Loaded                 []*tile.Tile
	Shown                  []*tile.Tile
	Initialized            int
	BeginUpdates           int
	EndUpdates             int
	PickUpdates            int
	ReprojectionsCancelled int
	Destroyed              bool
}

// NewTestProvider returns a provider over the whole-globe geographic
// scheme with a geometric error that halves per level, refinable down to
// level 10.
func NewTestProvider() *TestProvider {
	return &TestProvider{
		Scheme:         tile.NewGeographicTilingScheme(),
		BaseError:      100000,
		MaxRefineLevel: 10,
	}
}

func (p *TestProvider) Ready() bool {
	return !p.NotReady
}

func (p *TestProvider) TilingScheme() tile.TilingScheme {
	return p.Scheme
}

func (p *TestProvider) LevelMaximumGeometricError(level int) float64 {
	return p.BaseError / float64(int(1)<<level)
}

func (p *TestProvider) Initialize(fs *tile.FrameState) {
	p.Initialized++
}

func (p *TestProvider) BeginUpdate(fs *tile.FrameState) {
	p.BeginUpdates++
}

func (p *TestProvider) EndUpdate(fs *tile.FrameState) {
	p.EndUpdates++
}

func (p *TestProvider) UpdateForPick(fs *tile.FrameState) {
	p.PickUpdates++
}

func (p *TestProvider) CancelReprojections() {
	p.ReprojectionsCancelled++
}

func (p *TestProvider) ComputeTileVisibility(t *tile.Tile, fs *tile.FrameState, occluders any) tile.Visibility {
	if p.VisibilityFunc != nil {
		return p.VisibilityFunc(t)
	}
	return tile.VisibilityFull
}

func (p *TestProvider) ComputeDistanceToTile(t *tile.Tile, fs *tile.FrameState) float64 {
	if p.DistanceFunc != nil {
		return p.DistanceFunc(t, fs)
	}
	return 1000000
}

func (p *TestProvider) CanRefine(t *tile.Tile) bool {
	if p.CanRefineFunc != nil {
		return p.CanRefineFunc(t)
	}
	return t.Level < p.MaxRefineLevel
}

func (p *TestProvider) LoadTile(fs *tile.FrameState, t *tile.Tile) {
	p.Loaded = append(p.Loaded, t)
	if p.LoadFunc != nil {
		p.LoadFunc(fs, t)
		return
	}
	t.State = tile.LoadStateDone
	t.Renderable = true
}

func (p *TestProvider) ShowTileThisFrame(t *tile.Tile, fs *tile.FrameState, ancestor *tile.Tile) {
	p.Shown = append(p.Shown, t)
}

func (p *TestProvider) TileDataAvailable(level, x, y int) tile.Availability {
	if p.AvailabilityFunc != nil {
		return p.AvailabilityFunc(level, x, y)
	}
	return tile.AvailabilityUnknown
}

func (p *TestProvider) PickHeight(t *tile.Tile, ray geo.Ray, fs *tile.FrameState) (geo.Cartesian3, bool) {
	if p.PickHeightFunc != nil {
		return p.PickHeightFunc(t, ray, fs)
	}
	return geo.Cartesian3{}, false
}

func (p *TestProvider) Destroy() {
	p.Destroyed = true
}

// TestPriorityProvider wraps TestProvider with a load-priority score.
type TestPriorityProvider struct {
	*TestProvider
	PriorityFunc func(t *tile.Tile, fs *tile.FrameState) float64
}

func (p *TestPriorityProvider) ComputeTileLoadPriority(t *tile.Tile, fs *tile.FrameState) float64 {
	return p.PriorityFunc(t, fs)
}
