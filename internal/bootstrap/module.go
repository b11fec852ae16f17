package bootstrap

import (
	"context"
	"log/slog"
	"strings"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"reeldesk/internal/bootstrap/config"
	"reeldesk/internal/bootstrap/database"
	"reeldesk/internal/bootstrap/logging"
	cacheinfra "reeldesk/internal/infrastructure/cache"
	"reeldesk/internal/infrastructure/notify"
	"reeldesk/internal/infrastructure/permission"
	sqliterepo "reeldesk/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "reeldesk/internal/infrastructure/persistence/sqlite/uow"
	"reeldesk/internal/ports"
	"reeldesk/internal/usecase/review"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewSubmissionRepository,
			fx.As(new(ports.SubmissionRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			cacheinfra.NewSQLiteCache,
			fx.As(new(ports.Cache)),
		),
	),
	fx.Provide(providePermissionGate),
	fx.Provide(provideNotifier),
	fx.Provide(review.NewService),
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

func providePermissionGate(ctx context.Context, cfg config.Config) (ports.PermissionGate, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	matrixFile := strings.TrimSpace(cfg.Permissions.MatrixFile)
	if matrixFile == "" {
		logging.Info(logCtx, "using built-in permission matrix")
		return permission.NewDefaultGate(), nil
	}

	gate, err := permission.LoadTOMLGate(matrixFile)
	if err != nil {
		return nil, err
	}
	logging.Info(logCtx, "permission matrix loaded", slog.String("path", matrixFile))
	return gate, nil
}

func provideNotifier(ctx context.Context, cfg config.Config) (ports.TransitionNotifier, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	url := strings.TrimSpace(cfg.Notifier.WebhookURL)
	if url == "" {
		logging.Info(logCtx, "using log notifier")
		return notify.NewLogNotifier(), nil
	}

	notifier, err := notify.NewWebhookNotifier(url, cfg.Notifier.WebhookTimeout)
	if err != nil {
		return nil, err
	}
	logging.Info(logCtx, "webhook notifier configured", slog.String("url", url))
	return notifier, nil
}
