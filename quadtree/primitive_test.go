package quadtree

import (
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/terravista/quadlod/tile"
)

// newRefiningProvider returns a provider whose tiles refine level by
// level: the geometric error starts at 8 pixels and halves per level, so
// selection settles on level 3 against the default 2 pixel target.
// Refinement is gated on child renderability and the eastern root is
// culled to keep scenarios on a single subtree.
func newRefiningProvider() *TestProvider {
	provider := NewTestProvider()
	provider.BaseError = 8
	provider.DistanceFunc = flatDistance
	provider.CanRefineFunc = childrenRenderable
	provider.VisibilityFunc = cullEastRoot
	return provider
}

func TestNew(t *testing.T) {
	t.Run("nil provider", func(t *testing.T) {
		_, err := New(nil)
		require.Error(t, err)
		require.Equal(t, ErrTypeProviderNotSet, errors.Type(err))
	})

	t.Run("provider already bound", func(t *testing.T) {
		provider := NewTestProvider()

		p, err := New(provider)
		require.NoError(t, err)
		defer p.Destroy()

		_, err = New(provider)
		require.Error(t, err)
		require.Equal(t, ErrTypeProviderAlreadyBound, errors.Type(err))
	})

	t.Run("provider can rebind after destroy", func(t *testing.T) {
		provider := NewTestProvider()

		p, err := New(provider)
		require.NoError(t, err)
		p.Destroy()

		p, err = New(provider)
		require.NoError(t, err)
		p.Destroy()
	})
}

func TestPrimitiveRefinesToStableSet(t *testing.T) {
	provider := newRefiningProvider()
	p, err := New(provider)
	require.NoError(t, err)
	defer p.Destroy()

	var progress []int
	p.OnTileLoadProgress = func(pending int) {
		progress = append(progress, pending)
	}

	var rendered []int
	for frame := uint64(1); frame <= 7; frame++ {
		p.Update(renderFrameState(frame))
		rendered = append(rendered, p.Statistics().TilesRendered)
	}

	// One level of detail per frame until level 3 meets the error target,
	// then the set is stable.
	require.Equal(t, []int{0, 1, 4, 16, 64, 64, 64}, rendered)

	// The pending count follows the queued loads and lands on zero
	// exactly once.
	require.Equal(t, []int{2, 4, 16, 64, 0}, progress)

	t.Run("stable set is level 3, each tile once", func(t *testing.T) {
		require.Len(t, p.RenderedTiles(), 64)

		seen := make(map[*tile.Tile]bool)
		p.ForEachRenderedTile(func(tl *tile.Tile) {
			require.Equal(t, 3, tl.Level)
			require.False(t, seen[tl])
			seen[tl] = true
		})
		require.Len(t, seen, 64)
	})

	t.Run("render ancestors are the renderable parents", func(t *testing.T) {
		for i, tl := range p.tilesToRender {
			require.Equal(t, tl.Parent(), p.renderAncestors[i])
			require.True(t, p.renderAncestors[i].Renderable)
		}
	})

	t.Run("statistics", func(t *testing.T) {
		stats := p.Statistics()
		require.Equal(t, 85, stats.TilesVisited)
		require.Equal(t, 1, stats.TilesCulled)
		require.Equal(t, 3, stats.MaxDepthVisited)
		require.Zero(t, stats.TilesWaitingForChildren)
	})
}

func TestPrimitiveKeepsRenderedTilesResident(t *testing.T) {
	provider := newRefiningProvider()
	p, err := New(provider)
	require.NoError(t, err)
	defer p.Destroy()

	// A cache far smaller than the rendered set: tiles touched during the
	// frame must survive anyway.
	p.TileCacheSize = 1

	for frame := uint64(1); frame <= 7; frame++ {
		p.Update(renderFrameState(frame))
	}

	p.ForEachRenderedTile(func(tl *tile.Tile) {
		require.Equal(t, tile.LoadStateDone, tl.State)
		require.True(t, tl.Renderable)
	})

	var loaded int
	p.ForEachLoadedTile(func(*tile.Tile) {
		loaded++
	})
	require.GreaterOrEqual(t, loaded, 64)
}

func TestPrimitiveInvalidateAllTiles(t *testing.T) {
	provider := newRefiningProvider()
	p, err := New(provider)
	require.NoError(t, err)
	defer p.Destroy()

	for frame := uint64(1); frame <= 7; frame++ {
		p.Update(renderFrameState(frame))
	}

	// Multiple calls between frames collapse into a single reset.
	p.InvalidateAllTiles()
	p.InvalidateAllTiles()

	var progress []int
	p.OnTileLoadProgress = func(pending int) {
		progress = append(progress, pending)
	}

	p.Update(renderFrameState(8))

	require.Zero(t, p.Statistics().TilesRendered)
	require.Equal(t, 2, p.replacementQueue.Count())
	require.Equal(t, 1, provider.ReprojectionsCancelled)
	require.Equal(t, []int{2}, progress)

	t.Run("selection converges again", func(t *testing.T) {
		for frame := uint64(9); frame <= 13; frame++ {
			p.Update(renderFrameState(frame))
		}
		require.Equal(t, 64, p.Statistics().TilesRendered)
	})
}

func TestPrimitiveWaitsForProviderReady(t *testing.T) {
	provider := newRefiningProvider()
	provider.NotReady = true

	p, err := New(provider)
	require.NoError(t, err)
	defer p.Destroy()

	p.Update(renderFrameState(1))

	require.Nil(t, p.levelZeroTiles)
	require.Empty(t, provider.Loaded)
	require.Empty(t, p.tilesToRender)

	t.Run("starts once the provider becomes ready", func(t *testing.T) {
		provider.NotReady = false
		p.Update(renderFrameState(2))

		require.Len(t, p.levelZeroTiles, 2)
		require.Len(t, provider.Loaded, 2)
	})
}

func TestPrimitivePickPass(t *testing.T) {
	provider := newRefiningProvider()
	p, err := New(provider)
	require.NoError(t, err)
	defer p.Destroy()

	t.Run("nothing to pick before the first render", func(t *testing.T) {
		fs := renderFrameState(1)
		fs.Pass = tile.PassPick
		p.Update(fs)
		require.Zero(t, provider.PickUpdates)
	})

	p.Update(renderFrameState(2))
	p.Update(renderFrameState(3))
	loads := len(provider.Loaded)

	t.Run("pick reuses the last render selection", func(t *testing.T) {
		fs := renderFrameState(4)
		fs.Pass = tile.PassPick
		p.Update(fs)

		require.Equal(t, 1, provider.PickUpdates)
		require.Len(t, provider.Loaded, loads)
	})
}

func TestPrimitiveDestroy(t *testing.T) {
	provider := newRefiningProvider()
	p, err := New(provider)
	require.NoError(t, err)

	p.Update(renderFrameState(1))
	p.Destroy()

	require.True(t, provider.Destroyed)
	require.Zero(t, p.replacementQueue.Count())

	// Destroy is idempotent.
	p.Destroy()
}
