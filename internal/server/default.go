package server

import (
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/sanifleet/sanifleet/pkg/application"
	"github.com/sanifleet/sanifleet/pkg/configuration"
	"github.com/sanifleet/sanifleet/pkg/constants"
	"github.com/sanifleet/sanifleet/pkg/middleware"
	"github.com/sanifleet/sanifleet/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
	Pool          *pgxpool.Pool
}

// Default assembles the HTTP server with the standard middleware stack.
// Order matters: the logger and pool must be in context before the tenant
// middleware, which logs lookups and reads the database through the pool.
func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application

	middlewares := []mux.MiddlewareFunc{
		middleware.WithLogger(options.Logger),
		middleware.Provide(constants.AppKey, app),
		middleware.Provide(constants.PoolKey, options.Pool),
		middleware.TenantFromHost(options.Configuration.RootDomain),
		middleware.Identity(),
		middleware.Cors("http://localhost:3000"),
	}

	if options.Configuration.RateLimit.Enabled {
		middlewares = append(middlewares, middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerPeriod: options.Configuration.RateLimit.GlobalRPS,
			Store:             middleware.NewMemoryStore(),
		}))
	}

	middlewares = append(middlewares, middleware.RequestParams())

	app.RegisterMiddleware(middlewares...)
	return server.NewHTTPServer(app, notFoundHandler(), methodNotAllowedHandler()), nil
}
