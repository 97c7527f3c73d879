// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/sessionhub/internal/app/lifecycle"
	"github.com/dalemusser/sessionhub/internal/app/notify"
	membershipstore "github.com/dalemusser/sessionhub/internal/app/store/memberships"
	requeststore "github.com/dalemusser/sessionhub/internal/app/store/requests"
	"github.com/dalemusser/sessionhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Package-level shared state built during Startup and reused by
// BuildHandler and Shutdown. WAFFLE runs the hooks sequentially, so
// these are written once before any reader exists.
var (
	runner          *lifecycle.Runner
	deadlineScanner *workers.DeadlineScanner
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
// sessionhub builds the lifecycle runner here and starts the deadline
// scanner — the single authoritative trigger for time-driven events.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	reqStore := requeststore.New(deps.MongoDatabase)

	runner = lifecycle.NewRunner(
		reqStore,
		membershipstore.New(deps.MongoDatabase),
		notify.NewLogSink(logger),
		logger,
	)
	runner.MaxAttempts = appCfg.ApplyMaxRetries

	deadlineScanner = workers.NewDeadlineScanner(reqStore, runner, logger, appCfg.SchedulerInterval)
	deadlineScanner.Start()

	return nil
}
