package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"golang.org/x/sync/errgroup"

	"github.com/okian/dots/internal/adapters/http/api"
	"github.com/okian/dots/internal/adapters/http/swagger"
	app "github.com/okian/dots/internal/app"
	"github.com/okian/dots/internal/config"
	"github.com/okian/dots/internal/domain/scoring"
	"github.com/okian/dots/internal/domain/settlement"
	"github.com/okian/dots/pkg/logger"
	"github.com/okian/dots/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
)

type cli struct {
	Config   string   `short:"c" help:"Path to a YAML configuration file (sets DOTS_CONFIG)"`
	EnvFile  []string `name:"env-file" default:".env" help:"Dotenv files loaded before configuration"`
	Addr     string   `short:"a" help:"Listen address (overrides config)"`
	LogLevel string   `short:"l" name:"log-level" help:"Log level (overrides config)"`
}

func main() {
	var c cli
	kctx := kong.Parse(&c,
		kong.Name("dots"),
		kong.Description("Golf Dots settlement service."),
	)

	if err := logger.Init(); err != nil {
		// Use stderr since logger isn't available yet
		fmt.Fprintln(os.Stderr, "failed to initialize logging:", err)
		kctx.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, c); err != nil {
		logger.Get().Error(ctx, "dots exited", logger.Error(err))
		stop()
		kctx.Exit(1)
	}
}

// run loads configuration, serves HTTP and blocks until ctx is cancelled.
func run(ctx context.Context, c cli) error {
	cfg, err := loadConfig(ctx, c)
	if err != nil {
		return err
	}

	log := logger.Get()
	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, err := buildService(cfg, log.Named("service"))
	if err != nil {
		return err
	}
	srv := newHTTPServer(cfg, svc, log.Named("http"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return metrics.RunSystemCollector(gctx, cfg.MetricsRefreshInterval)
	})
	g.Go(func() error {
		log.Info(gctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(gctx, "shutting down server...")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		log.Info(shutdownCtx, "server stopped")
		return nil
	})
	return g.Wait()
}

// loadConfig applies dotenv files and command line overrides around config.Load.
func loadConfig(ctx context.Context, c cli) (*config.Config, error) {
	if err := config.LoadEnvFiles(c.EnvFile...); err != nil {
		return nil, err
	}
	if c.Config != "" {
		if err := os.Setenv("DOTS_CONFIG", c.Config); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	if c.Addr != "" {
		cfg.Addr = c.Addr
	}
	if c.LogLevel != "" {
		cfg.LogLevel = c.LogLevel
	}
	return cfg, nil
}

// buildService translates configuration into service options.
func buildService(cfg *config.Config, log logger.Logger) (*app.Service, error) {
	itemization, err := settlement.ParseItemization(cfg.Itemization)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	nonFinite, err := settlement.ParseNonFinitePolicy(cfg.NonFinite)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	points, err := cfg.ScoringPoints()
	if err != nil {
		return nil, err
	}

	scorer := scoring.NewScorer(
		scoring.WithCategoryPoints(points),
		scoring.WithSweepMultiplier(cfg.SweepMultiplier),
	)
	log.Info(context.Background(), "scoring configured",
		logger.Float64("holePoints", scorer.HolePoints()),
		logger.Float64("sweepMultiplier", cfg.SweepMultiplier))

	return app.New(
		app.WithLogger(log),
		app.WithCalculator(settlement.NewCalculator(
			settlement.WithItemization(itemization),
			settlement.WithNonFinitePolicy(nonFinite),
		)),
		app.WithScorer(scorer),
		app.WithDefaultStake(cfg.DefaultStake),
		app.WithSegmentBounds(cfg.MinSegments, cfg.MaxSegments),
	), nil
}

// newHTTPServer wires the API, docs and middleware onto one server.
func newHTTPServer(cfg *config.Config, svc *app.Service, log logger.Logger) *http.Server {
	mux := http.NewServeMux()
	swagger.Register(mux)

	apiServer := api.NewServer(svc, svc,
		api.WithMaxBodyBytes(cfg.MaxBodyBytes),
		api.WithLogger(log),
	)
	apiServer.Register(mux)

	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.CORS(cfg.CORSAllowedOrigins)(apiServer.Handler(mux)),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}
