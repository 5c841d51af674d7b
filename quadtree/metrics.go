package quadtree

import (
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	quadtreeTilesVisited = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "quadlod_tiles_visited",
		Help: "The number of tiles visited by the last selection pass.",
	})

	quadtreeTilesRendered = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "quadlod_tiles_rendered",
		Help: "The number of tiles selected for rendering by the last selection pass.",
	})

	quadtreeTilesCulled = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "quadlod_tiles_culled",
		Help: "The number of tiles culled by the last selection pass.",
	})

	quadtreeTilesWaitingForChildren = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "quadlod_tiles_waiting_for_children",
		Help: "The number of tiles whose refinement is blocked on child loads.",
	})

	quadtreeMaxDepthVisited = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "quadlod_max_depth_visited",
		Help: "The deepest tile level reached by the last selection pass.",
	})

	quadtreeLoadQueueLength = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "quadlod_load_queue_length",
		Help: "The combined length of the three tile load queues.",
	})

	quadtreeResidentTiles = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "quadlod_resident_tiles",
		Help: "The number of tiles resident in the replacement queue.",
	})

	quadtreeTileLoads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quadlod_tile_loads_total",
		Help: "The total number of tile loads handed to the provider.",
	})

	quadtreeProbeResolutions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quadlod_height_probe_resolutions_total",
		Help: "The total number of height probe callback invocations.",
	})

	quadtreeInvalidations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quadlod_invalidations_total",
		Help: "The total number of full tile invalidations.",
	})
)

func instrumentFrameStatistics(s FrameStatistics) {
	quadtreeTilesVisited.Set(float64(s.TilesVisited))
	quadtreeTilesRendered.Set(float64(s.TilesRendered))
	quadtreeTilesCulled.Set(float64(s.TilesCulled))
	quadtreeTilesWaitingForChildren.Set(float64(s.TilesWaitingForChildren))
	quadtreeMaxDepthVisited.Set(float64(s.MaxDepthVisited))
}

func instrumentLoadQueueLength(n int) {
	quadtreeLoadQueueLength.Set(float64(n))
}

func instrumentResidentTiles(n int) {
	quadtreeResidentTiles.Set(float64(n))
}

func instrumentTileLoad() {
	quadtreeTileLoads.Inc()
}

func instrumentProbeResolution() {
	quadtreeProbeResolutions.Inc()
}

func instrumentInvalidation() {
	quadtreeInvalidations.Inc()
}

func logFrameStatistics(frame uint64, s FrameStatistics) {
	logs.WithTag("frame", frame).
		WithTag("visited", s.TilesVisited).
		WithTag("rendered", s.TilesRendered).
		WithTag("culled", s.TilesCulled).
		WithTag("waiting_for_children", s.TilesWaitingForChildren).
		WithTag("max_depth", s.MaxDepthVisited).
		Debug("frame statistics")
}
