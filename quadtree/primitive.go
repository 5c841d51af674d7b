package quadtree

import (
	"sync"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/google/uuid"
	"github.com/terravista/quadlod/geo"
	"github.com/terravista/quadlod/tile"
)

// Error types reported for configuration mistakes.
const (
	ErrTypeProviderNotSet       = "provider_not_set"
	ErrTypeProviderAlreadyBound = "provider_already_bound"
)

// Defaults for the runtime-mutable tunables.
const (
	DefaultMaximumScreenSpaceError = 2.0
	DefaultTileCacheSize           = 100
	DefaultLoadQueueTimeSlice      = 5 * time.Millisecond
	DefaultUpdateHeightsTimeSlice  = 2 * time.Millisecond

	// DefaultMinimumTerrainHeight is the height, in meters relative to the
	// ellipsoid, guaranteed to be below the lowest terrain. Height-probe
	// rays are cast upward from this depth.
	DefaultMinimumTerrainHeight = -11500.0
)

var (
	boundMutex     sync.Mutex
	boundProviders = make(map[tile.Provider]*Primitive)
)

// Primitive selects which tiles of a quadtree covering an ellipsoid
// surface to render each frame, schedules their loading under a time
// budget, keeps an LRU cache of resident tiles and incrementally resolves
// registered height probes.
//
// A Primitive is single-threaded: all methods must be called from the
// same frame-processing sequence.
type Primitive struct {
	// MaximumScreenSpaceError is the screen-space error, in pixels, a
	// rendered tile may not exceed. Smaller values mean more detail.
	MaximumScreenSpaceError float64

	// TileCacheSize is the soft bound on resident tiles. Tiles touched in
	// the current frame are never evicted, so the actual count can exceed
	// it.
	TileCacheSize int

	// LoadQueueTimeSlice is the shared per-frame wall-clock budget for
	// draining the three load queues.
	LoadQueueTimeSlice time.Duration

	// UpdateHeightsTimeSlice is the per-frame wall-clock budget for
	// resolving height probes.
	UpdateHeightsTimeSlice time.Duration

	// MinimumTerrainHeight overrides the depth height-probe rays start
	// from. See DefaultMinimumTerrainHeight.
	MinimumTerrainHeight float64

	// Occluders is passed through to the provider's visibility test.
	Occluders any

	// OnTileLoadProgress, when set, is called at the end of a render frame
	// whenever the combined load-queue length differs from the previous
	// frame. A value of zero means all requested detail has loaded.
	OnTileLoadProgress func(pending int)

	// EnableDebugOutput logs the frame statistics whenever they change.
	EnableDebugOutput bool

	provider         tile.Provider
	levelZeroTiles   []*tile.Tile
	replacementQueue *tile.ReplacementQueue

	tilesToRender   []*tile.Tile
	renderAncestors []*tile.Tile

	loadQueueHigh   []*tile.Tile
	loadQueueMedium []*tile.Tile
	loadQueueLow    []*tile.Tile

	tilesToUpdateHeights []*tile.Tile
	lastProbeIndex       int
	addedProbes          []*tile.HeightProbe
	removedProbes        []*tile.HeightProbe

	tilesInvalidated    bool
	forceProgressEvent  bool
	lastLoadQueueLength int

	stats     FrameStatistics
	lastStats FrameStatistics

	now       func() time.Time
	destroyed bool
}

// New binds a Primitive to the given provider. Binding a provider that is
// already bound to another Primitive is a configuration error.
func New(provider tile.Provider) (*Primitive, error) {
	if provider == nil {
		return nil, errors.New("tile provider is not set").
			WithType(ErrTypeProviderNotSet)
	}

	boundMutex.Lock()
	defer boundMutex.Unlock()

	if _, ok := boundProviders[provider]; ok {
		return nil, errors.New("tile provider is already bound to a quadtree").
			WithType(ErrTypeProviderAlreadyBound)
	}

	p := &Primitive{
		MaximumScreenSpaceError: DefaultMaximumScreenSpaceError,
		TileCacheSize:           DefaultTileCacheSize,
		LoadQueueTimeSlice:      DefaultLoadQueueTimeSlice,
		UpdateHeightsTimeSlice:  DefaultUpdateHeightsTimeSlice,
		MinimumTerrainHeight:    DefaultMinimumTerrainHeight,
		provider:                provider,
		replacementQueue:        tile.NewReplacementQueue(),
		now:                     time.Now,
	}
	boundProviders[provider] = p
	return p, nil
}

func (p *Primitive) Provider() tile.Provider {
	return p.provider
}

// Statistics returns the traversal counters of the last selection pass.
func (p *Primitive) Statistics() FrameStatistics {
	return p.stats
}

// InvalidateAllTiles schedules a full reset on the next frame boundary:
// the cache and queues empty, root tiles are recreated and every live
// height probe is re-registered from scratch. Calling it multiple times
// between frames is the same as calling it once.
func (p *Primitive) InvalidateAllTiles() {
	p.tilesInvalidated = true
}

// ForEachLoadedTile calls fn for every resident tile whose loading has at
// least started.
func (p *Primitive) ForEachLoadedTile(fn func(*tile.Tile)) {
	p.replacementQueue.ForEach(func(t *tile.Tile) {
		if t.State != tile.LoadStateStart {
			fn(t)
		}
	})
}

// ForEachRenderedTile calls fn for every tile in the last render list.
func (p *Primitive) ForEachRenderedTile(fn func(*tile.Tile)) {
	for _, t := range p.tilesToRender {
		fn(t)
	}
}

// RenderedTiles returns the last render list. The slice is reused across
// frames; callers must not retain it.
func (p *Primitive) RenderedTiles() []*tile.Tile {
	return p.tilesToRender
}

// RegisterHeightProbe subscribes to the terrain height under position.
// The callback is invoked with a sampled position every time the probe
// resolves against a tile deeper than its previous resolution. The
// returned function cancels the subscription.
func (p *Primitive) RegisterHeightProbe(position geo.Cartographic, callback func(geo.Cartesian3)) func() {
	ellipsoid := p.provider.TilingScheme().Ellipsoid()
	surface := position
	surface.Height = 0

	probe := &tile.HeightProbe{
		ID:                uuid.New().String(),
		Position:          position,
		PositionOnSurface: ellipsoid.CartographicToCartesian(surface),
		Level:             -1,
		Callback:          callback,
	}
	p.addedProbes = append(p.addedProbes, probe)

	cancelled := false
	return func() {
		if cancelled {
			return
		}
		cancelled = true
		probe.MarkRemoved()
		p.removedProbes = append(p.removedProbes, probe)
	}
}

// Update runs a full frame: begin, select, render, load, heights, end.
func (p *Primitive) Update(fs *tile.FrameState) {
	p.BeginFrame(fs)
	p.Render(fs)
	p.EndFrame(fs)
}

// BeginFrame applies a pending invalidation, creates the level-zero tiles
// once the provider is ready, and clears the transient per-frame state.
func (p *Primitive) BeginFrame(fs *tile.FrameState) {
	if p.tilesInvalidated {
		p.invalidateAllTiles()
		p.tilesInvalidated = false
	}

	if p.levelZeroTiles == nil && p.provider.Ready() {
		p.levelZeroTiles = tile.CreateLevelZeroTiles(p.provider.TilingScheme())
	}

	if fs.Pass != tile.PassRender {
		return
	}

	p.provider.Initialize(fs)
	p.clearTileLoadQueue()
	p.replacementQueue.MarkStartOfFrame()
}

// Render selects the tiles for this frame and hands them to the provider.
func (p *Primitive) Render(fs *tile.FrameState) {
	if !p.provider.Ready() || p.levelZeroTiles == nil {
		return
	}

	switch fs.Pass {
	case tile.PassRender:
		p.provider.BeginUpdate(fs)
		p.selectTilesForRendering(fs)

		for i, t := range p.tilesToRender {
			p.provider.ShowTileThisFrame(t, fs, p.renderAncestors[i])

			// A tile that was not rendered last frame gets its height
			// probes re-evaluated.
			if t.FrameRendered != fs.FrameNumber-1 {
				p.tilesToUpdateHeights = append(p.tilesToUpdateHeights, t)
			}
			t.FrameRendered = fs.FrameNumber
		}

		p.provider.EndUpdate(fs)

	case tile.PassPick:
		if len(p.tilesToRender) > 0 {
			p.provider.UpdateForPick(fs)
		}
	}
}

// EndFrame drains the load queues, advances height probes and raises the
// load-progress notification. Pick and morph passes skip all of it.
func (p *Primitive) EndFrame(fs *tile.FrameState) {
	if fs.Pass != tile.PassRender {
		return
	}
	if !p.provider.Ready() {
		return
	}

	p.processTileLoadQueue(fs)
	p.updateHeights(fs)
	p.updateTileLoadProgress(fs)
}

// Destroy unbinds the provider and destroys it. The Primitive must not be
// used afterwards.
func (p *Primitive) Destroy() {
	if p.destroyed {
		return
	}
	p.destroyed = true

	boundMutex.Lock()
	delete(boundProviders, p.provider)
	boundMutex.Unlock()

	p.replacementQueue.Clear()
	p.provider.Destroy()
}

func (p *Primitive) invalidateAllTiles() {
	// Re-register every live probe so it resolves from scratch against
	// the recreated tree. A probe sitting exactly on a shared root
	// boundary is held by both roots; re-register it once.
	reregistered := make(map[*tile.HeightProbe]struct{})
	for _, root := range p.levelZeroTiles {
		for _, probe := range root.Probes() {
			if probe.Removed() {
				continue
			}
			if _, ok := reregistered[probe]; ok {
				continue
			}
			reregistered[probe] = struct{}{}
			probe.Level = -1
			p.addedProbes = append(p.addedProbes, probe)
		}
		root.FreeResources()
	}
	p.levelZeroTiles = nil

	p.replacementQueue.Clear()
	p.clearTileLoadQueue()
	p.tilesToRender = p.tilesToRender[:0]
	p.renderAncestors = p.renderAncestors[:0]
	p.tilesToUpdateHeights = p.tilesToUpdateHeights[:0]
	p.lastProbeIndex = 0
	p.forceProgressEvent = true

	p.provider.CancelReprojections()
	instrumentInvalidation()
}

func (p *Primitive) clearTileLoadQueue() {
	p.stats = FrameStatistics{}
	p.loadQueueHigh = p.loadQueueHigh[:0]
	p.loadQueueMedium = p.loadQueueMedium[:0]
	p.loadQueueLow = p.loadQueueLow[:0]
}
