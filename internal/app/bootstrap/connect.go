// internal/app/bootstrap/connect.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/tripbook/tripbook/internal/app/system/domainevent"
	"github.com/tripbook/tripbook/internal/searchidx"
)

// ConnectDB opens both backing stores: Postgres for the membership store
// and MongoDB for the search index. It also builds the event emitter over
// the index projector, since the projector needs the Mongo handle.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	db, err := gorm.Open(postgres.Open(appCfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		return DBDeps{}, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return DBDeps{}, fmt.Errorf("unwrap postgres handle: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return DBDeps{}, fmt.Errorf("ping postgres: %w", err)
	}
	logger.Info("connected to postgres")

	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, fmt.Errorf("ping mongo: %w", err)
	}
	logger.Info("connected to mongodb", zap.String("database", appCfg.MongoDatabase))

	mongoDB := client.Database(appCfg.MongoDatabase)
	projector := searchidx.NewProjector(searchidx.NewMongo(mongoDB), logger)
	emitter := domainevent.New(projector, logger, appCfg.ProjectorWorkers, appCfg.ProjectorQueueSize)

	return DBDeps{
		DB:            db,
		MongoClient:   client,
		MongoDatabase: mongoDB,
		Emitter:       emitter,
	}, nil
}
