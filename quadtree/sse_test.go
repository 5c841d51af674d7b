package quadtree

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/terravista/quadlod/geo"
	"github.com/terravista/quadlod/tile"
)

func TestScreenSpaceError(t *testing.T) {
	provider := NewTestProvider()
	p, err := New(provider)
	require.NoError(t, err)
	defer p.Destroy()

	tl := tile.New(0, 0, 0, geo.Rectangle{}, nil)
	tl.Distance = 1000000

	t.Run("3d", func(t *testing.T) {
		fs := &tile.FrameState{
			FrameNumber:    1,
			Pass:           tile.PassRender,
			ViewportHeight: 1080,
			SSEDenominator: 1,
		}

		// err = geometricError * viewportHeight / (distance * denominator).
		require.InDelta(t, 108.0, p.screenSpaceError(fs, tl), 1e-9)
	})

	t.Run("3d scales with the denominator", func(t *testing.T) {
		fs := &tile.FrameState{
			FrameNumber:    1,
			Pass:           tile.PassRender,
			ViewportHeight: 1080,
			SSEDenominator: 2,
		}

		require.InDelta(t, 54.0, p.screenSpaceError(fs, tl), 1e-9)
	})

	t.Run("fog reduces the error", func(t *testing.T) {
		fs := &tile.FrameState{
			FrameNumber:    1,
			Pass:           tile.PassRender,
			ViewportHeight: 1080,
			SSEDenominator: 1,
			Fog: tile.Fog{
				Enabled:   true,
				Density:   0.000003,
				SSEFactor: 4,
			},
		}

		scalar := tl.Distance * fs.Fog.Density
		want := 108.0 - (1.0-math.Exp(-(scalar*scalar)))*4

		require.InDelta(t, want, p.screenSpaceError(fs, tl), 1e-9)
		require.Less(t, p.screenSpaceError(fs, tl), 108.0)
	})

	t.Run("2d ignores distance", func(t *testing.T) {
		fs := &tile.FrameState{
			FrameNumber: 1,
			Pass:        tile.PassRender,
			Mode:        tile.SceneMode2D,
			PixelSize:   50,
		}

		require.InDelta(t, 2000.0, p.screenSpaceError(fs, tl), 1e-9)
	})

	t.Run("orthographic uses the 2d formula", func(t *testing.T) {
		fs := &tile.FrameState{
			FrameNumber:            1,
			Pass:                   tile.PassRender,
			OrthographicProjection: true,
			PixelSize:              50,
		}

		require.InDelta(t, 2000.0, p.screenSpaceError(fs, tl), 1e-9)
	})
}

func TestFogFactor(t *testing.T) {
	require.Zero(t, fogFactor(0, 0.001))
	require.InDelta(t, 1.0, fogFactor(1e9, 0.001), 1e-9)
	require.Greater(t, fogFactor(2e6, 0.000003), fogFactor(1e6, 0.000003))
}
