package geo

// Rectangle is a geographic extent in radians. West may be greater than
// East for rectangles crossing the antimeridian; tiling schemes used here
// never produce such rectangles, so Contains treats the bounds as ordered.
type Rectangle struct {
	West  float64
	South float64
	East  float64
	North float64
}

func (r Rectangle) Width() float64 {
	return r.East - r.West
}

func (r Rectangle) Height() float64 {
	return r.North - r.South
}

func (r Rectangle) Center() Cartographic {
	return Cartographic{
		Longitude: (r.West + r.East) / 2,
		Latitude:  (r.South + r.North) / 2,
	}
}

func (r Rectangle) Contains(c Cartographic) bool {
	return c.Longitude >= r.West &&
		c.Longitude <= r.East &&
		c.Latitude >= r.South &&
		c.Latitude <= r.North
}
