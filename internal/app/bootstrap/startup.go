// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. TripBook
// starts the projection workers here so the first committed write already
// has a consumer for its events.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	deps.Emitter.Start()
	logger.Info("projection workers started",
		zap.Int("workers", appCfg.ProjectorWorkers),
		zap.Int("queue_size", appCfg.ProjectorQueueSize))
	return nil
}
