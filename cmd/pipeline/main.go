package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/analytics"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/archive"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/cache"
	redcache "github.com/ctsc/southeast-tech-internships-2026-2027/internal/cache/redis"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/config"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/database"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/dedup"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/discover"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/enrich"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/events"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/issues"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/linkcheck"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/pipeline"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/render"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/store"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/telemetry"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/validate"
)

type flags struct {
	configPath     string
	discoverOnly   bool
	readmeOnly     bool
	checkLinksOnly bool
	dedupOnly      bool
	clean          bool
	serve          bool
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.configPath, "config", "", "path to config.yaml (defaults to INTERNBOARD_CONFIG or ./config.yaml)")
	flag.BoolVar(&f.discoverOnly, "discover-only", false, "run discovery and stop")
	flag.BoolVar(&f.readmeOnly, "readme-only", false, "regenerate the README and stop")
	flag.BoolVar(&f.checkLinksOnly, "check-links-only", false, "check apply links and re-render")
	flag.BoolVar(&f.dedupOnly, "dedup-only", false, "run one dedup pass and re-render")
	flag.BoolVar(&f.clean, "clean", false, "re-apply filters to the existing database")
	flag.BoolVar(&f.serve, "serve", false, "run on the configured schedule until interrupted")
	flag.Parse()
	return f
}

func newLogger() (*zap.Logger, error) {
	return zap.NewProduction()
}

func newConfig(f flags) func() (*config.Config, error) {
	return func() (*config.Config, error) {
		if f.configPath != "" {
			return config.Load(f.configPath)
		}
		return config.LoadDefault()
	}
}

func newStore(cfg *config.Config, logger *zap.Logger) *store.Store {
	return store.New(cfg.Project.DataDir, logger)
}

// newCache returns the Redis-backed enrichment cache, or nil when Redis is
// disabled; the enrichment client treats a nil cache as cache-off.
func newCache(cfg *config.Config, logger *zap.Logger) cache.Cache {
	if !cfg.Infra.RedisEnabled {
		logger.Debug("redis disabled, enrichment cache off")
		return nil
	}
	return redcache.New(cache.Options{
		DefaultTTL:    cfg.Infra.CacheTTL,
		RedisAddr:     cfg.Infra.RedisAddr,
		RedisPassword: cfg.Infra.RedisPassword,
		RedisDB:       cfg.Infra.RedisDB,
	})
}

func newRecorder(cfg *config.Config, logger *zap.Logger) (analytics.Recorder, error) {
	if !cfg.Infra.ClickHouseEnabled {
		logger.Debug("clickhouse disabled, run history off")
		return analytics.NopRecorder{}, nil
	}
	db, err := database.New(context.Background(), database.Options{
		DSN:      cfg.Infra.ClickHouseDSN,
		Username: cfg.Infra.ClickHouseUsername,
		Password: cfg.Infra.ClickHousePassword,
		Database: cfg.Infra.ClickHouseDatabase,
	}, logger)
	if err != nil {
		return nil, err
	}
	return analytics.NewRecorder(db, logger), nil
}

func newRenderer(cfg *config.Config, st *store.Store, logger *zap.Logger) *render.Renderer {
	return render.New(cfg, st, "README.md", logger)
}

func main() {
	f := parseFlags()

	var p *pipeline.Pipeline
	var logger *zap.Logger

	app := fx.New(
		fx.Provide(
			newConfig(f),
			newLogger,
			newStore,
			newCache,
			newRecorder,
			newRenderer,
			enrich.NewGeminiClient,
			discover.NewRunner,
			issues.New,
			validate.New,
			linkcheck.New,
			archive.New,
			events.NewPublisher,
			func(st *store.Store, logger *zap.Logger) *dedup.Engine {
				return dedup.NewEngine(st, logger)
			},
			pipeline.New,
		),
		fx.Invoke(
			func(cfg *config.Config, lc fx.Lifecycle, l *zap.Logger) {
				if cfg.Infra.OTLPCollector == "" {
					return
				}
				shutdown, err := telemetry.InitTracer(context.Background(), "internboard", cfg.Infra.OTLPCollector)
				if err != nil {
					l.Warn("failed to init tracing", zap.Error(err))
					return
				}
				lc.Append(fx.Hook{OnStop: func(context.Context) error {
					shutdown()
					return nil
				}})
			},
			func(pl *pipeline.Pipeline, l *zap.Logger) {
				p = pl
				logger = l
			},
		),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		log.Fatal(err)
	}

	err := run(ctx, p, f)
	if err != nil {
		logger.Error("run failed", zap.Error(err))
	}

	if stopErr := app.Stop(context.Background()); stopErr != nil {
		log.Fatal(stopErr)
	}
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, p *pipeline.Pipeline, f flags) error {
	switch {
	case f.discoverOnly:
		return p.DiscoverOnly(ctx)
	case f.readmeOnly:
		return p.RenderOnly(ctx)
	case f.checkLinksOnly:
		return p.CheckLinksOnly(ctx)
	case f.dedupOnly:
		return p.DedupOnly(ctx)
	case f.clean:
		return p.Clean(ctx)
	case f.serve:
		return p.Serve(ctx)
	default:
		return p.RunFull(ctx, "full")
	}
}
