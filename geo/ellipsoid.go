package geo

import "math"

// Ellipsoid is a quadric surface centered on the origin, defined by its
// radii along the x, y and z axes.
type Ellipsoid struct {
	Radii Cartesian3

	radiiSquared        Cartesian3
	oneOverRadiiSquared Cartesian3
}

// WGS84 is the World Geodetic System 1984 ellipsoid.
var WGS84 = NewEllipsoid(6378137.0, 6378137.0, 6356752.3142451793)

func NewEllipsoid(x, y, z float64) Ellipsoid {
	return Ellipsoid{
		Radii:               Cartesian3{x, y, z},
		radiiSquared:        Cartesian3{x * x, y * y, z * z},
		oneOverRadiiSquared: Cartesian3{1 / (x * x), 1 / (y * y), 1 / (z * z)},
	}
}

func (e Ellipsoid) MaximumRadius() float64 {
	return math.Max(e.Radii.X, math.Max(e.Radii.Y, e.Radii.Z))
}

// GeodeticSurfaceNormalCartographic returns the upward unit normal of the
// ellipsoid surface at the given geodetic position.
func (e Ellipsoid) GeodeticSurfaceNormalCartographic(c Cartographic) Cartesian3 {
	cosLatitude := math.Cos(c.Latitude)
	return Cartesian3{
		X: cosLatitude * math.Cos(c.Longitude),
		Y: cosLatitude * math.Sin(c.Longitude),
		Z: math.Sin(c.Latitude),
	}
}

// GeodeticSurfaceNormal returns the upward unit normal of the ellipsoid
// surface at the surface position nearest to p.
func (e Ellipsoid) GeodeticSurfaceNormal(p Cartesian3) Cartesian3 {
	return Cartesian3{
		X: p.X * e.oneOverRadiiSquared.X,
		Y: p.Y * e.oneOverRadiiSquared.Y,
		Z: p.Z * e.oneOverRadiiSquared.Z,
	}.Normalize()
}

// CartographicToCartesian converts a geodetic position to earth-centered,
// earth-fixed coordinates.
func (e Ellipsoid) CartographicToCartesian(c Cartographic) Cartesian3 {
	n := e.GeodeticSurfaceNormalCartographic(c)
	k := Cartesian3{
		X: e.radiiSquared.X * n.X,
		Y: e.radiiSquared.Y * n.Y,
		Z: e.radiiSquared.Z * n.Z,
	}
	gamma := math.Sqrt(n.Dot(k))
	surface := Mul(k, 1/gamma)
	return Add(surface, Mul(n, c.Height))
}
