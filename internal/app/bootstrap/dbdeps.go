// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/tripbook/tripbook/internal/app/system/domainevent"
)

// DBDeps holds database/back-end dependencies for the app.
// Extend this struct as your app evolves.
type DBDeps struct {
	DB            *gorm.DB
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Emitter drains domain events into the search-index projector. It is
	// built in ConnectDB so Startup can start it and Shutdown can drain it.
	Emitter *domainevent.Emitter
}
