package tile

import "github.com/terravista/quadlod/geo"

// Pass identifies what a frame is being processed for.
type Pass int

const (
	// PassRender is a regular render frame.
	PassRender Pass = iota

	// PassPick is a picking frame; the previously selected tiles are
	// reused and no loading or height processing happens.
	PassPick

	// PassMorph is a scene-transition frame; load queues and height
	// probes are skipped entirely.
	PassMorph
)

// SceneMode is the projection mode of the scene.
type SceneMode int

const (
	SceneMode3D SceneMode = iota
	SceneMode2D
)

// Fog carries the per-frame fog parameters used to relax the screen-space
// error of distant tiles.
type Fog struct {
	Enabled bool
	Density float64

	// SSEFactor scales how much fog reduces the screen-space error.
	SSEFactor float64
}

// FrameState is the per-frame camera, projection and pass information the
// quadtree consumes. It is built by the embedding renderer once per frame.
type FrameState struct {
	// FrameNumber is the current frame sequence number, starting at 1.
	FrameNumber uint64

	Pass Pass
	Mode SceneMode

	// OrthographicProjection selects the 2D screen-space error formula
	// even in SceneMode3D.
	OrthographicProjection bool

	CameraPosition             geo.Cartesian3
	CameraPositionCartographic geo.Cartographic

	ViewportWidth  int
	ViewportHeight int

	// SSEDenominator is 2*tan(fovY/2) for a perspective frustum.
	SSEDenominator float64

	// PixelSize is the size of a pixel in meters at the frustum; used in
	// 2D and orthographic projections.
	PixelSize float64

	Fog Fog
}
