// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown cleanly tears down the projection pipeline and DB connections.
// The emitter stops first so queued events are projected before the stores
// go away.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.Emitter != nil {
		logger.Info("draining projection workers")
		deps.Emitter.Stop()
	}

	if deps.MongoClient != nil {
		logger.Info("disconnecting MongoDB client")
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}

	if deps.DB != nil {
		if sqlDB, err := deps.DB.DB(); err == nil {
			logger.Info("closing postgres pool")
			if err := sqlDB.Close(); err != nil {
				logger.Error("postgres close failed", zap.Error(err))
				return err
			}
		}
	}

	return nil
}
