package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"parlmonitor/internal/bootstrap/config"
	"parlmonitor/internal/bootstrap/database"
	"parlmonitor/internal/bootstrap/logging"
	cacheinfra "parlmonitor/internal/infrastructure/cache"
	"parlmonitor/internal/infrastructure/notify"
	"parlmonitor/internal/infrastructure/parlapi"
	sqliterepo "parlmonitor/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "parlmonitor/internal/infrastructure/persistence/sqlite/uow"
	"parlmonitor/internal/ports"
	"parlmonitor/internal/scheduler"
	"parlmonitor/internal/usecase/monitor"
	"parlmonitor/internal/usecase/prediction"
	"parlmonitor/internal/usecase/tracking"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(sqliterepo.NewUserRepository, fx.As(new(ports.UserRepository))),
		fx.Annotate(sqliterepo.NewTrackingRepository, fx.As(new(ports.TrackingRepository))),
		fx.Annotate(sqliterepo.NewEventRepository, fx.As(new(ports.EventRepository))),
		fx.Annotate(sqliterepo.NewAlertRepository, fx.As(new(ports.AlertRepository))),
		fx.Annotate(sqliterepo.NewReferenceRepository, fx.As(new(ports.ReferenceRepository))),
		fx.Annotate(sqliterepo.NewCommitteeRepository, fx.As(new(ports.CommitteeRepository))),
		fx.Annotate(sqliterepo.NewVoteRepository, fx.As(new(ports.VoteRepository))),
		fx.Annotate(sqliterepo.NewPredictionRepository, fx.As(new(ports.PredictionRepository))),
		fx.Annotate(sqliterepo.NewBusinessCacheRepository, fx.As(new(ports.BusinessCacheRepository))),
		fx.Annotate(sqliterepo.NewMonitoringRepository, fx.As(new(ports.MonitoringRepository))),
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
	fx.Provide(
		fx.Annotate(
			provideGateway,
			fx.As(new(ports.ParliamentGateway)),
		),
	),
	fx.Provide(provideNotifier),
	fx.Provide(provideMonitorService),
	fx.Provide(provideTrackingService),
	fx.Provide(providePredictionService),
	fx.Provide(provideScheduler),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithComponent(p.Ctx, "bootstrap.fx")
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithComponent(ctx, "bootstrap.fx")

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

func provideGateway(cfg config.Config) *parlapi.Client {
	return parlapi.NewClient(cfg.Upstream)
}

func provideNotifier(cfg config.Config) ports.Notifier {
	return notify.New(cfg.Notify)
}

type monitorParams struct {
	fx.In

	Config        config.Config
	Gateway       ports.ParliamentGateway
	UoW           ports.UnitOfWork
	Users         ports.UserRepository
	Tracking      ports.TrackingRepository
	Events        ports.EventRepository
	Alerts        ports.AlertRepository
	Reference     ports.ReferenceRepository
	Committees    ports.CommitteeRepository
	Votes         ports.VoteRepository
	BusinessCache ports.BusinessCacheRepository
	Monitoring    ports.MonitoringRepository
	Notifier      ports.Notifier
}

func provideMonitorService(p monitorParams) *monitor.Service {
	syncCfg := p.Config.Sync
	return monitor.NewService(monitor.Dependencies{
		Gateway:       p.Gateway,
		UoW:           p.UoW,
		Users:         p.Users,
		Tracking:      p.Tracking,
		Events:        p.Events,
		Alerts:        p.Alerts,
		Reference:     p.Reference,
		Committees:    p.Committees,
		Votes:         p.Votes,
		BusinessCache: p.BusinessCache,
		Monitoring:    p.Monitoring,
		Notifier:      p.Notifier,
	}, monitor.Options{
		MinSessionID:       syncCfg.MinSessionID,
		VoteDelay:          syncCfg.VoteDelay,
		SessionDelay:       syncCfg.SessionDelay,
		DiscoveryLookback:  time.Duration(syncCfg.DiscoveryLookbackDays) * 24 * time.Hour,
		BusinessCacheYears: syncCfg.BusinessCacheYears,
	})
}

type trackingParams struct {
	fx.In

	Gateway       ports.ParliamentGateway
	UoW           ports.UnitOfWork
	Users         ports.UserRepository
	Tracking      ports.TrackingRepository
	Events        ports.EventRepository
	Alerts        ports.AlertRepository
	BusinessCache ports.BusinessCacheRepository
}

func provideTrackingService(p trackingParams) *tracking.Service {
	return tracking.NewService(tracking.Dependencies{
		Users:         p.Users,
		Tracking:      p.Tracking,
		Events:        p.Events,
		Alerts:        p.Alerts,
		BusinessCache: p.BusinessCache,
		Gateway:       p.Gateway,
		UoW:           p.UoW,
	})
}

type predictionParams struct {
	fx.In

	Config      config.Config
	Gateway     ports.ParliamentGateway
	UoW         ports.UnitOfWork
	Reference   ports.ReferenceRepository
	Committees  ports.CommitteeRepository
	Votes       ports.VoteRepository
	Predictions ports.PredictionRepository
	Tracking    ports.TrackingRepository
}

func providePredictionService(p predictionParams) *prediction.Service {
	return prediction.NewService(prediction.Dependencies{
		Reference:   p.Reference,
		Committees:  p.Committees,
		Votes:       p.Votes,
		Predictions: p.Predictions,
		Tracking:    p.Tracking,
		Gateway:     p.Gateway,
		UoW:         p.UoW,
	}, p.Config.Prediction.ModelVersion, p.Config.Prediction.CacheTTL)
}

func provideScheduler(lc fx.Lifecycle, ctx context.Context, cfg config.Config, state ports.Cache, svc *monitor.Service) (*scheduler.Registry, error) {
	registry := scheduler.New(ctx, state)
	if err := RegisterJobs(registry, cfg.Sync, svc); err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(stopCtx context.Context) error {
			logging.Info(logging.WithComponent(ctx, "bootstrap.fx"), "stopping scheduler", slog.Int("jobs", len(registry.Names())))
			return registry.Stop(stopCtx)
		},
	})
	return registry, nil
}
