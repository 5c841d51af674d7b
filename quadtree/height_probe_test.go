package quadtree

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/terravista/quadlod/geo"
	"github.com/terravista/quadlod/tile"
)

// probePosition sits in the southwestern quadrant of the western root,
// under the test camera.
var probePosition = geo.Cartographic{Longitude: -2, Latitude: -0.5}

// newProbingProvider extends the refining provider with height sampling
// that reports the sampled tile's level, so tests can observe which tile
// answered.
func newProbingProvider() *TestProvider {
	provider := newRefiningProvider()
	provider.PickHeightFunc = func(tl *tile.Tile, ray geo.Ray, fs *tile.FrameState) (geo.Cartesian3, bool) {
		return geo.Cartesian3{Z: float64(tl.Level)}, true
	}
	return provider
}

func TestHeightProbeResolvesProgressively(t *testing.T) {
	provider := newProbingProvider()
	p, err := New(provider)
	require.NoError(t, err)
	defer p.Destroy()

	var heights []float64
	p.RegisterHeightProbe(probePosition, func(position geo.Cartesian3) {
		heights = append(heights, position.Z)
	})

	for frame := uint64(1); frame <= 8; frame++ {
		p.Update(renderFrameState(frame))
	}

	// One callback per level as finer covering tiles enter the render
	// list, then silence once the selection is stable.
	require.Equal(t, []float64{0, 1, 2, 3}, heights)
}

func TestRegisterHeightProbeAssignsIDs(t *testing.T) {
	provider := newProbingProvider()
	p, err := New(provider)
	require.NoError(t, err)
	defer p.Destroy()

	p.RegisterHeightProbe(probePosition, func(geo.Cartesian3) {})
	p.RegisterHeightProbe(probePosition, func(geo.Cartesian3) {})

	require.Len(t, p.addedProbes, 2)
	require.NotEmpty(t, p.addedProbes[0].ID)
	require.NotEmpty(t, p.addedProbes[1].ID)
	require.NotEqual(t, p.addedProbes[0].ID, p.addedProbes[1].ID)
}

func TestHeightProbeOnSharedRootBoundary(t *testing.T) {
	provider := newProbingProvider()
	p, err := New(provider)
	require.NoError(t, err)
	defer p.Destroy()

	// Longitude 0 is the edge both roots share, so both hold the probe.
	var heights []float64
	p.RegisterHeightProbe(geo.Cartographic{Longitude: 0, Latitude: -0.5}, func(position geo.Cartesian3) {
		heights = append(heights, position.Z)
	})

	p.Update(renderFrameState(1))
	p.Update(renderFrameState(2))
	require.Equal(t, []float64{0}, heights)
	require.Len(t, p.levelZeroTiles[0].Probes(), 1)
	require.Len(t, p.levelZeroTiles[1].Probes(), 1)

	p.InvalidateAllTiles()
	p.Update(renderFrameState(3))

	// Re-registration happens once even though two roots held the probe.
	require.Len(t, p.levelZeroTiles[0].Probes(), 1)
	require.Len(t, p.levelZeroTiles[1].Probes(), 1)

	for frame := uint64(4); frame <= 8; frame++ {
		p.Update(renderFrameState(frame))
	}

	// One callback per resolved level after the reset, never doubled.
	require.Equal(t, []float64{0, 0, 1, 2, 3}, heights)
}

func TestHeightProbeCancel(t *testing.T) {
	provider := newProbingProvider()
	p, err := New(provider)
	require.NoError(t, err)
	defer p.Destroy()

	var calls int
	cancel := p.RegisterHeightProbe(probePosition, func(geo.Cartesian3) {
		calls++
	})

	p.Update(renderFrameState(1))
	p.Update(renderFrameState(2))
	require.Equal(t, 1, calls)

	cancel()
	cancel()
	require.Len(t, p.removedProbes, 1)

	for frame := uint64(3); frame <= 8; frame++ {
		p.Update(renderFrameState(frame))
	}

	require.Equal(t, 1, calls)
	require.Empty(t, p.levelZeroTiles[0].Probes())
}

func TestHeightProbeBottomsOut(t *testing.T) {
	provider := newProbingProvider()
	provider.AvailabilityFunc = func(level, x, y int) tile.Availability {
		if level <= 3 {
			return tile.AvailabilityAvailable
		}
		return tile.AvailabilityUnavailable
	}

	cullAll := false
	provider.VisibilityFunc = func(tl *tile.Tile) tile.Visibility {
		if cullAll {
			return tile.VisibilityNone
		}
		return cullEastRoot(tl)
	}

	p, err := New(provider)
	require.NoError(t, err)
	defer p.Destroy()

	var heights []float64
	p.RegisterHeightProbe(probePosition, func(position geo.Cartesian3) {
		heights = append(heights, position.Z)
	})

	for frame := uint64(1); frame <= 7; frame++ {
		p.Update(renderFrameState(frame))
	}
	require.Equal(t, []float64{0, 1, 2, 3}, heights)

	// Hide everything for a frame so the stable tiles re-enter the
	// render list as newly rendered, triggering re-evaluation.
	cullAll = true
	p.Update(renderFrameState(8))
	cullAll = false
	p.Update(renderFrameState(9))
	p.Update(renderFrameState(10))

	// The quadrant below the probe has no data, so the probe retired
	// itself instead of firing again.
	require.Equal(t, []float64{0, 1, 2, 3}, heights)
	require.Empty(t, p.levelZeroTiles[0].Probes())
}

func TestHeightProbeRegisterBeforeReady(t *testing.T) {
	provider := newProbingProvider()
	provider.NotReady = true

	p, err := New(provider)
	require.NoError(t, err)
	defer p.Destroy()

	var calls int
	p.RegisterHeightProbe(probePosition, func(geo.Cartesian3) {
		calls++
	})

	p.Update(renderFrameState(1))
	require.Zero(t, calls)

	provider.NotReady = false
	p.Update(renderFrameState(2))
	p.Update(renderFrameState(3))

	require.Equal(t, 1, calls)
}

func TestUpdateHeightsTimeSliceResume(t *testing.T) {
	provider := NewTestProvider()
	provider.PickHeightFunc = func(tl *tile.Tile, ray geo.Ray, fs *tile.FrameState) (geo.Cartesian3, bool) {
		return geo.Cartesian3{Z: 7}, true
	}

	p, err := New(provider)
	require.NoError(t, err)
	defer p.Destroy()

	// Every clock read overruns the budget, so each pass processes
	// exactly one probe.
	p.now = (&fakeClock{step: 10 * time.Millisecond}).now

	calls := make([]int, 3)
	probes := make([]*tile.HeightProbe, 3)
	for i := range probes {
		i := i
		probes[i] = &tile.HeightProbe{
			ID:       string(rune('a' + i)),
			Position: probePosition,
			Level:    -1,
			Callback: func(geo.Cartesian3) {
				calls[i]++
			},
		}
	}

	root := tile.CreateLevelZeroTiles(provider.Scheme)[0]
	root.UpdateProbes(probes, nil)
	p.tilesToUpdateHeights = []*tile.Tile{root}

	fs := renderFrameState(1)

	p.updateHeights(fs)
	require.Equal(t, []int{1, 0, 0}, calls)
	require.Equal(t, 1, p.lastProbeIndex)
	require.Len(t, p.tilesToUpdateHeights, 1)

	// Resumes at the saved probe, never reprocessing an earlier one.
	p.updateHeights(fs)
	require.Equal(t, []int{1, 1, 0}, calls)
	require.Equal(t, 2, p.lastProbeIndex)

	p.updateHeights(fs)
	require.Equal(t, []int{1, 1, 1}, calls)
	require.Zero(t, p.lastProbeIndex)
	require.Empty(t, p.tilesToUpdateHeights)

	for _, probe := range probes {
		require.Zero(t, probe.Level)
	}
}

func TestUpdateHeightsDrainsWithinBudget(t *testing.T) {
	provider := NewTestProvider()
	provider.PickHeightFunc = func(tl *tile.Tile, ray geo.Ray, fs *tile.FrameState) (geo.Cartesian3, bool) {
		return geo.Cartesian3{}, true
	}

	p, err := New(provider)
	require.NoError(t, err)
	defer p.Destroy()

	var calls int
	probes := make([]*tile.HeightProbe, 3)
	for i := range probes {
		probes[i] = &tile.HeightProbe{
			ID:       string(rune('a' + i)),
			Position: probePosition,
			Level:    -1,
			Callback: func(geo.Cartesian3) {
				calls++
			},
		}
	}

	root := tile.CreateLevelZeroTiles(provider.Scheme)[0]
	root.UpdateProbes(probes, nil)
	p.tilesToUpdateHeights = []*tile.Tile{root}

	p.updateHeights(renderFrameState(1))

	require.Equal(t, 3, calls)
	require.Empty(t, p.tilesToUpdateHeights)
}
