// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	healthfeature "github.com/dalemusser/sessionhub/internal/app/features/health"
	requestsfeature "github.com/dalemusser/sessionhub/internal/app/features/requests"
	requeststore "github.com/dalemusser/sessionhub/internal/app/store/requests"
	"github.com/dalemusser/sessionhub/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE
// app. WAFFLE calls this after configuration, DB connections, schema
// setup, and the Startup hook have completed, so the lifecycle runner
// already exists.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	if err := auth.InitSessionStore(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger); err != nil {
		logger.Error("session store init failed", zap.Error(err))
		return nil, err
	}

	r := chi.NewRouter()

	// Global auth middleware: loads the SessionUser into context so the
	// current actor is available to all handlers via auth.CurrentUser.
	r.Use(auth.LoadSessionUser)

	r.Mount("/health", healthfeature.Routes(
		healthfeature.NewHandler(deps.MongoClient, logger)))

	reqHandler := requestsfeature.NewHandler(runner, requeststore.New(deps.MongoDatabase), logger)
	r.Mount("/api/requests", requestsfeature.Routes(reqHandler))

	return r, nil
}
