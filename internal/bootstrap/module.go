package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"foodinspect/internal/bootstrap/config"
	"foodinspect/internal/bootstrap/database"
	"foodinspect/internal/bootstrap/logging"
	cacheinfra "foodinspect/internal/infrastructure/cache"
	"foodinspect/internal/infrastructure/checkpoint"
	"foodinspect/internal/infrastructure/geocode"
	inspectionrepo "foodinspect/internal/infrastructure/persistence/repository"
	inspectionuow "foodinspect/internal/infrastructure/persistence/uow"
	"foodinspect/internal/infrastructure/socrata"
	"foodinspect/internal/ports"
	"foodinspect/internal/usecase/pipeline"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			inspectionrepo.NewInspectionRepository,
			fx.As(new(ports.InspectionRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			inspectionuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			cacheinfra.NewGeocodeCache,
			fx.As(new(ports.Cache)),
		),
	),
	fx.Provide(provideDatasetClient),
	fx.Provide(provideCheckpointStore),
	fx.Provide(provideZipTable),
	fx.Provide(provideEnricher),
	fx.Provide(provideCanonicalizer),
	fx.Provide(provideExtractor),
	fx.Provide(pipeline.NewService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

func provideDatasetClient(cfg config.Config) ports.DatasetClient {
	var opts []socrata.Option
	if cfg.Source.AppToken != "" {
		opts = append(opts, socrata.WithAppToken(cfg.Source.AppToken))
	}
	return socrata.NewClient(cfg.Source.BaseURL, cfg.Source.Dataset, opts...)
}

func provideCheckpointStore(cfg config.Config) ports.CheckpointStore {
	return checkpoint.NewFileStore(cfg.Source.Checkpoint)
}

func provideZipTable(cfg config.Config) (*geocode.ZipTable, error) {
	return geocode.NewZipTable(cfg.Geocoder.ZipTable)
}

func provideEnricher(cfg config.Config, zips *geocode.ZipTable, cache ports.Cache) *pipeline.Enricher {
	var rev ports.ReverseGeocoder
	if cfg.Geocoder.Enabled {
		rev = geocode.NewNominatimClient(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent)
	}
	return pipeline.NewEnricher(zips, rev, cache, cfg.Geocoder.Cooldown)
}

func provideCanonicalizer(cfg config.Config) *pipeline.Canonicalizer {
	return pipeline.NewCanonicalizer(cfg.Cities.Trusted, cfg.Cities.MatchThreshold)
}

func provideExtractor(cfg config.Config, client ports.DatasetClient, store ports.CheckpointStore) *pipeline.Extractor {
	return pipeline.NewExtractor(client, store, pipeline.ExtractorOptions{
		PageSize:   cfg.Source.PageSize,
		MaxRecords: cfg.Source.MaxRecords,
		Resumable:  cfg.Source.Resumable,
	})
}
