package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/fx"

	rserrs "github.com/jdholdren/readstatus/internal/errors"
	"github.com/jdholdren/readstatus/internal/metrics"
	"github.com/jdholdren/readstatus/internal/readstatus"
	"github.com/jdholdren/readstatus/internal/serverutil"
)

type (
	// Server serves reading statuses over HTTP.
	Server struct {
		*http.Server

		repo readstatus.Repository
	}

	ServerConfig struct {
		Port        int
		CorsOrigins []string
	}

	Params struct {
		fx.In

		Config ServerConfig
		Repo   readstatus.Repository
	}
)

func NewServer(config ServerConfig, repo readstatus.Repository) *Server {
	// Matched against the raw path so an article id can hold an encoded slash
	r := serverutil.ErrRouter{Router: mux.NewRouter().UseEncodedPath()}
	r.NotFoundHandler = serverutil.HandlerFuncE(notFound)
	r.MethodNotAllowedHandler = serverutil.HandlerFuncE(methodNotAllowed)

	srvr := Server{
		repo: repo,
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%d", config.Port),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			Handler: handlers.RecoveryHandler(
				handlers.RecoveryLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelError)),
			)(handlers.CORS(
				handlers.AllowedOrigins(config.CorsOrigins),
				handlers.AllowedMethods([]string{http.MethodGet, http.MethodPut, http.MethodOptions}),
				handlers.AllowedHeaders([]string{"content-type"}),
			)(r)),
		},
	}

	r.Use(serverutil.AccessLogMiddleware) // Log everything

	// Reading status
	r.HandleFuncE("/articles/{articleID}/status", srvr.getStatus).Methods(http.MethodGet)
	r.HandleFuncE("/articles/{articleID}/status", srvr.putStatus).Methods(http.MethodPut)

	// Docs
	r.HandleFuncE("/openapi.json", srvr.getOpenAPI).Methods(http.MethodGet)
	r.PathPrefix("/docs/").Handler(httpSwagger.Handler(httpSwagger.URL("/openapi.json"))).Methods(http.MethodGet)

	// Operations
	r.HandleFuncE("/healthz", srvr.getHealth).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	slog.Debug("configured api server", "port", config.Port)

	return &srvr
}

func notFound(w http.ResponseWriter, r *http.Request) error {
	return rserrs.E(http.StatusNotFound, "not found")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) error {
	return rserrs.E(http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", r.Method))
}

// newLifecycleServer hooks the server into the fx lifecycle.
//
// The listener is bound in OnStart so a taken port fails startup instead of
// being logged from a goroutine.
func newLifecycleServer(lc fx.Lifecycle, p Params) *Server {
	srvr := NewServer(p.Config, p.Repo)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srvr.Addr)
			if err != nil {
				return fmt.Errorf("error listening on %s: %w", srvr.Addr, err)
			}

			go func() {
				if err := srvr.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					slog.Error("error serving", "error", err)
				}
			}()
			slog.Info("started api server", "addr", srvr.Addr)

			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srvr.Shutdown(ctx)
		},
	})

	return srvr
}
