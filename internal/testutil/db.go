package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/tripbook/tripbook/internal/domain/models"
)

// SetupTestDB connects to the Postgres instance named by
// TRIPBOOK_TEST_POSTGRES_DSN, migrates the schema, and returns a handle.
// Tests that need a real database skip when the variable is unset so the
// suite still passes on machines without one.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TRIPBOOK_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TRIPBOOK_TEST_POSTGRES_DSN not set; skipping database test")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to test postgres: %v", err)
	}

	err = db.AutoMigrate(
		&models.Member{},
		&models.Trip{},
		&models.Participant{},
		&models.Location{},
		&models.Bookmark{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}

	t.Cleanup(func() {
		// Unscoped so soft-deleted trips are swept too.
		for _, table := range []string{"bookmarks", "locations", "participants", "trips", "members"} {
			db.Exec(fmt.Sprintf("DELETE FROM %s", table))
		}
	})

	return db
}

// SetupTestMongo connects to the MongoDB instance named by
// TRIPBOOK_TEST_MONGO_URI and returns a uniquely named scratch database
// that is dropped when the test finishes.
func SetupTestMongo(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("TRIPBOOK_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TRIPBOOK_TEST_MONGO_URI not set; skipping search-index test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("failed to connect to test mongo: %v", err)
	}

	db := client.Database(fmt.Sprintf("tripbook_test_%d", time.Now().UnixNano()))

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	return db
}

// TestContext returns a context with a generous deadline for test work.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
