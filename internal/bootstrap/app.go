package bootstrap

import (
	"context"
	"errors"
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"parlmonitor/internal/bootstrap/config"
	"parlmonitor/internal/bootstrap/database"
	"parlmonitor/internal/bootstrap/logging"
	"parlmonitor/internal/errs"
	"parlmonitor/internal/scheduler"
	"parlmonitor/internal/usecase/monitor"
	"parlmonitor/internal/usecase/prediction"
	"parlmonitor/internal/usecase/tracking"
)

// App is what commands receive once the fx graph is up.
type App struct {
	Config     config.Config
	DB         *gorm.DB
	Monitor    *monitor.Service
	Tracking   *tracking.Service
	Prediction *prediction.Service
	Scheduler  *scheduler.Registry
}

type appParams struct {
	fx.In

	Config     config.Config
	DB         *gorm.DB
	Monitor    *monitor.Service
	Tracking   *tracking.Service
	Prediction *prediction.Service
	Scheduler  *scheduler.Registry
}

func provideApp(p appParams) *App {
	return &App{
		Config:     p.Config,
		DB:         p.DB,
		Monitor:    p.Monitor,
		Tracking:   p.Tracking,
		Prediction: p.Prediction,
		Scheduler:  p.Scheduler,
	}
}

func (a *App) InitSchema(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	logCtx := logging.WithComponent(ctx, "bootstrap.app")
	logging.Info(logCtx, "start schema migration", slog.String("database_driver", a.Config.Database.Driver))

	if err := database.Migrate(ctx, a.DB); err != nil {
		return err
	}

	logging.Info(logCtx, "schema migration completed")
	return nil
}
