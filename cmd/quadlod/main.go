package main

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/pprof"
	"os"
	"reflect"
	"syscall"
	"time"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/encoding/json"
	"github.com/terravista/quadlod/featureflag"
	"github.com/terravista/quadlod/geo"
	"github.com/terravista/quadlod/quadtree"
	"github.com/terravista/quadlod/tile"
	"golang.org/x/sync/errgroup"
)

var (
	// The quadlod version number. Set at build.
	version = "v0.1.0"

	infoGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name:        "quadlod_info",
		Help:        "Quadlod information.",
		ConstLabels: prometheus.Labels{"version": version},
	})
)

// Keeps the config struct keys readable for the cli package under
// obfuscated builds.
var _ = reflect.TypeOf(config{})

type config struct {
	AdminAddr        string        `cli:""        env:"QUADLOD_ADMIN_ADDR"         help:"Admin listening address."`
	LogLevel         string        `cli:""        env:"QUADLOD_LOG_LEVEL"          help:"Log level (debug|info|warning|error)."`
	LogIndent        bool          `cli:""        env:"QUADLOD_LOG_INDENT"         help:"Indent logs."`
	FrameDuration    time.Duration `cli:""        env:"QUADLOD_FRAME_DURATION"     help:"The duration of a frame."`
	FrameCount       int           `cli:""        env:"QUADLOD_FRAME_COUNT"        help:"The number of frames to run. 0 runs until interrupted."`
	MaxSSE           float64       `cli:""        env:"QUADLOD_MAX_SSE"            help:"The maximum allowed screen-space error in pixels."`
	TileCacheSize    int           `cli:""        env:"QUADLOD_TILE_CACHE_SIZE"    help:"The soft bound on resident tiles."`
	LoadTimeSlice    time.Duration `cli:",hidden" env:"QUADLOD_LOAD_TIME_SLICE"    help:"The per-frame tile load budget."`
	HeightsTimeSlice time.Duration `cli:",hidden" env:"QUADLOD_HEIGHTS_TIME_SLICE" help:"The per-frame height probe budget."`
	MaxLevel         int           `cli:",hidden" env:"QUADLOD_MAX_LEVEL"          help:"The deepest tile level of the synthetic terrain."`
	CameraHeight     float64       `cli:",hidden" env:"QUADLOD_CAMERA_HEIGHT"      help:"The camera height above the ellipsoid in meters."`
	FeatureFlags     []string      `cli:",hidden" env:"QUADLOD_FEATURE_FLAGS"      help:"Comma separated feature flags."`
	Version          bool          `cli:""        env:"-"                          help:"Show version."`
	Help             bool          `cli:""        env:"-"                          help:"Show help."`
}

func main() {
	conf := config{
		AdminAddr:        ":18290",
		LogLevel:         logs.InfoLevel.String(),
		FrameDuration:    time.Millisecond * 16,
		MaxSSE:           quadtree.DefaultMaximumScreenSpaceError,
		TileCacheSize:    quadtree.DefaultTileCacheSize,
		LoadTimeSlice:    quadtree.DefaultLoadQueueTimeSlice,
		HeightsTimeSlice: quadtree.DefaultUpdateHeightsTimeSlice,
		MaxLevel:         12,
		CameraHeight:     1500000,
	}

	infoGauge.Set(1)

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Runs a headless quadlod soak loop.").
		Options(&conf)
	cli.Load()

	if conf.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	if conf.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}
	errors.Encoder = json.Marshal

	flags := featureflag.New(conf.FeatureFlags)

	provider := newSyntheticProvider(conf.MaxLevel)
	primitive, err := quadtree.New(provider)
	if err != nil {
		logs.Fatal(errors.New("binding the synthetic provider failed").Wrap(err))
	}
	defer primitive.Destroy()

	primitive.MaximumScreenSpaceError = conf.MaxSSE
	primitive.TileCacheSize = conf.TileCacheSize
	primitive.LoadQueueTimeSlice = conf.LoadTimeSlice
	primitive.UpdateHeightsTimeSlice = conf.HeightsTimeSlice

	flags.IfSet(featureflag.FlagFrameStatsLogging, func() {
		primitive.EnableDebugOutput = true
	})

	primitive.OnTileLoadProgress = func(pending int) {
		if pending == 0 {
			logs.Debug("all requested detail has loaded")
		}
	}

	var admin http.ServeMux
	admin.Handle("/metrics", promhttp.Handler())
	admin.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	admin.HandleFunc("/debug/pprof/", pprof.Index)
	admin.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	admin.HandleFunc("/debug/pprof/profile", pprof.Profile)
	admin.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	admin.HandleFunc("/debug/pprof/trace", pprof.Trace)

	logs.WithTag("version", version).
		WithTag("log_level", conf.LogLevel).
		WithTag("admin_addr", conf.AdminAddr).
		WithTag("max_sse", conf.MaxSSE).
		Info("starting quadlod soak")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		server := &http.Server{Addr: conf.AdminAddr, Handler: &admin}

		errc := make(chan error, 1)
		go func() {
			errc <- server.ListenAndServe()
		}()

		select {
		case <-ctx.Done():
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second*5)
			defer shutdownCancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logs.Warn(errors.New("shutting down the admin server failed").Wrap(err))
			}
			return nil

		case err := <-errc:
			return errors.New("admin server stopped").Wrap(err)
		}
	})

	g.Go(func() error {
		defer cancel()
		return runFrames(ctx, conf, flags, primitive)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logs.Fatal(err)
	}
}

func runFrames(ctx context.Context, conf config, flags featureflag.FeatureFlag, primitive *quadtree.Primitive) error {
	ticker := time.NewTicker(conf.FrameDuration)
	defer ticker.Stop()

	orbit := true
	flags.IfSet(featureflag.FlagDisableSoakCamera, func() {
		orbit = false
	})

	fog := tile.Fog{Enabled: true, Density: 0.0002, SSEFactor: 2}
	flags.IfSet(featureflag.FlagDisableFog, func() {
		fog = tile.Fog{}
	})

	ellipsoid := primitive.Provider().TilingScheme().Ellipsoid()

	// Track the terrain height under the equator/prime-meridian point to
	// exercise the probe subsystem.
	cancelProbe := primitive.RegisterHeightProbe(geo.Cartographic{}, func(position geo.Cartesian3) {
		logs.WithTag("height", position.Magnitude()-ellipsoid.MaximumRadius()).
			Debug("probe resolved")
	})
	defer cancelProbe()

	var frame uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		frame++

		// Drift the camera slowly around the equator so tiles keep
		// entering and leaving the cache.
		longitude := 0.0
		if orbit {
			longitude = math.Mod(float64(frame)*0.0005, 2*math.Pi) - math.Pi
		}
		cameraCartographic := geo.Cartographic{
			Longitude: longitude,
			Latitude:  0,
			Height:    conf.CameraHeight,
		}

		fs := &tile.FrameState{
			FrameNumber:                frame,
			Pass:                       tile.PassRender,
			Mode:                       tile.SceneMode3D,
			CameraPosition:             ellipsoid.CartographicToCartesian(cameraCartographic),
			CameraPositionCartographic: cameraCartographic,
			ViewportWidth:              1920,
			ViewportHeight:             1080,
			SSEDenominator:             2 * math.Tan(math.Pi/6),
			Fog:                        fog,
		}

		primitive.Update(fs)

		if conf.FrameCount > 0 && frame >= uint64(conf.FrameCount) {
			logs.WithTag("frames", frame).
				WithTag("rendered", len(primitive.RenderedTiles())).
				WithTag("max_depth", primitive.Statistics().MaxDepthVisited).
				Info("soak finished")
			return nil
		}
	}
}
