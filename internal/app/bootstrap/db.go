// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	"github.com/tripbook/tripbook/internal/domain/models"
	"github.com/tripbook/tripbook/internal/searchidx"
)

// EnsureSchema migrates the relational schema and creates the search-index
// secondary indexes.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	err := deps.DB.WithContext(ctx).AutoMigrate(
		&models.Member{},
		&models.Trip{},
		&models.Participant{},
		&models.Location{},
		&models.Bookmark{},
	)
	if err != nil {
		return fmt.Errorf("migrate relational schema: %w", err)
	}

	if err := searchidx.EnsureIndexes(ctx, deps.MongoDatabase); err != nil {
		return fmt.Errorf("ensure search indexes: %w", err)
	}

	logger.Info("schema ensured")
	return nil
}
