// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	adminfeature "github.com/tripbook/tripbook/internal/app/features/admin"
	bookmarksfeature "github.com/tripbook/tripbook/internal/app/features/bookmarks"
	healthfeature "github.com/tripbook/tripbook/internal/app/features/health"
	membersfeature "github.com/tripbook/tripbook/internal/app/features/members"
	searchfeature "github.com/tripbook/tripbook/internal/app/features/search"
	tripsfeature "github.com/tripbook/tripbook/internal/app/features/trips"
	"github.com/tripbook/tripbook/internal/app/policy/trippolicy"
	bookmarkstore "github.com/tripbook/tripbook/internal/app/store/bookmarks"
	locationstore "github.com/tripbook/tripbook/internal/app/store/locations"
	memberstore "github.com/tripbook/tripbook/internal/app/store/members"
	participantstore "github.com/tripbook/tripbook/internal/app/store/participants"
	tripstore "github.com/tripbook/tripbook/internal/app/store/trips"
	"github.com/tripbook/tripbook/internal/app/system/auth"
	"github.com/tripbook/tripbook/internal/app/system/authcache"
	"github.com/tripbook/tripbook/internal/app/system/txn"
	"github.com/tripbook/tripbook/internal/searchidx"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. TripBook wires the relational stores,
// the authorization engine, and the search index into the feature routers
// here: trips, members, search, bookmarks, health, and admin.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Relational stores over the membership database.
	tripStore := tripstore.New(deps.DB)
	memberStore := memberstore.New(deps.DB)
	participantStore := participantstore.New(deps.DB)
	locationStore := locationstore.New(deps.DB)
	bookmarkStore := bookmarkstore.New(deps.DB)

	// Authorization engine with its membership-check cache.
	cache := authcache.New(appCfg.AuthCacheTTL)
	policy := trippolicy.New(participantStore, cache)

	runner := txn.NewRunner(deps.DB)
	idx := searchidx.NewMongo(deps.MongoDatabase)

	tripSvc := tripsfeature.NewService(tripStore, participantStore, memberStore, locationStore, policy, runner, deps.Emitter, logger)
	memberSvc := membersfeature.NewService(memberStore, runner, deps.Emitter, logger)
	searchSvc := searchfeature.NewService(idx, bookmarkStore, appCfg.PageSize, logger)
	bookmarkSvc := bookmarksfeature.NewService(bookmarkStore, tripStore, policy, appCfg.PageSize, logger)
	rebuilder := searchidx.NewRebuilder(memberStore, tripStore, participantStore, locationStore, idx, logger)

	r := chi.NewRouter()

	// Global auth middleware: lifts the gateway-forwarded member id into
	// the request context for all handlers.
	r.Use(auth.LoadMember)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.DB, deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	membersHandler := membersfeature.NewHandler(memberSvc, logger)
	r.Mount("/members", membersfeature.Routes(membersHandler))

	tripsHandler := tripsfeature.NewHandler(tripSvc, logger)
	r.Mount("/trips", tripsfeature.Routes(tripsHandler))

	searchHandler := searchfeature.NewHandler(searchSvc, logger)
	r.Mount("/search", searchfeature.Routes(searchHandler))

	bookmarksHandler := bookmarksfeature.NewHandler(bookmarkSvc, logger)
	r.Mount("/bookmarks", bookmarksfeature.Routes(bookmarksHandler))

	adminHandler := adminfeature.NewHandler(rebuilder, memberStore, logger)
	r.Mount("/admin", adminfeature.Routes(adminHandler))

	return r, nil
}
