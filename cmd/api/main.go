// Readstatus-api serves the reading status of articles.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sethvargo/go-envconfig"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/jdholdren/readstatus/internal/api"
	"github.com/jdholdren/readstatus/internal/database"
	"github.com/jdholdren/readstatus/internal/logger"
	"github.com/jdholdren/readstatus/internal/readstatus"
	"github.com/jdholdren/readstatus/internal/sqlite"
)

type config struct {
	// A path, `:memory:`, or a sqlite URL like sqlite:///./data/read_status.db
	DatabaseURL string `env:"DATABASE_URL, default=sqlite:///./data/read_status.db"`

	Port        int      `env:"PORT, default=8000"`
	CorsOrigins []string `env:"CORS_ORIGINS, default=*"`

	// Which format to use for logging: either text or json
	LoggerFormat string `env:"LOGGER_FORMAT, default=text"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Parse the config
	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		log.Fatalf("error parsing config: %s", err)
	}

	slog.SetDefault(logger.New(os.Stderr, cfg.LoggerFormat))

	loc, err := database.ParseURL(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("error parsing database url: %s", err)
	}

	// Creates the data directory and the schema as needed
	dbx, err := database.Open(ctx, loc)
	if err != nil {
		log.Fatalf("error opening database: %s", err)
	}
	defer dbx.Close()

	repo := sqlite.New(dbx)

	// Start the application
	fx.New(
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.SlogLogger{Logger: slog.Default()}
		}),
		fx.Supply(
			api.ServerConfig{
				Port:        cfg.Port,
				CorsOrigins: cfg.CorsOrigins,
			},
			fx.Annotate(repo, fx.As(new(readstatus.Repository))),
		),
		api.Module,
		fx.Invoke(func(*api.Server) {}), // Start the server
	).Run()
}
