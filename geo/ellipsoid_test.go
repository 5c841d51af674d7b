package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCartographicToCartesian(t *testing.T) {
	t.Run("equator prime meridian", func(t *testing.T) {
		p := WGS84.CartographicToCartesian(Cartographic{})
		require.True(t, p.EqualWithEpsilon(Cartesian3{X: 6378137}, 1e-6))
	})

	t.Run("north pole", func(t *testing.T) {
		p := WGS84.CartographicToCartesian(Cartographic{Latitude: math.Pi / 2})
		require.True(t, p.EqualWithEpsilon(Cartesian3{Z: 6356752.3142451793}, 1e-6))
	})

	t.Run("height offsets along the normal", func(t *testing.T) {
		surface := WGS84.CartographicToCartesian(Cartographic{})
		raised := WGS84.CartographicToCartesian(Cartographic{Height: 100})
		require.True(t, Sub(raised, surface).EqualWithEpsilon(Cartesian3{X: 100}, 1e-6))
	})
}

func TestGeodeticSurfaceNormal(t *testing.T) {
	n := WGS84.GeodeticSurfaceNormalCartographic(Cartographic{Longitude: math.Pi / 2})
	require.True(t, n.EqualWithEpsilon(Cartesian3{Y: 1}, 1e-12))

	fromPoint := WGS84.GeodeticSurfaceNormal(Cartesian3{X: 6378137})
	require.True(t, fromPoint.EqualWithEpsilon(Cartesian3{X: 1}, 1e-12))
}

func TestMaximumRadius(t *testing.T) {
	require.Equal(t, 6378137.0, WGS84.MaximumRadius())
}
