package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/rs/cors"
	"github.com/shandysiswandi/goanalyzer/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/goanalyzer/internal/pkg/pkglog"
	"github.com/shandysiswandi/goanalyzer/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/goanalyzer/internal/pkg/pkgroutine"
	"github.com/shandysiswandi/goanalyzer/internal/pkg/pkguid"
	"github.com/shandysiswandi/goanalyzer/internal/pkg/pkgvalidator"
)

// ConfigPath resolves the config file: an explicit path wins, then
// ./config/config.yaml when LOCAL=true, then /config/config.yaml.
func ConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if os.Getenv("LOCAL") == "true" {
		return "./config/config.yaml"
	}
	return "/config/config.yaml"
}

func (a *App) initConfig(explicit string) {
	path := ConfigPath(explicit)

	cfg, err := pkgconfig.NewViper(path)
	if err != nil {
		slog.Error("failed to init config", "path", path, "error", err)
		os.Exit(1)
	}

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("tz"))

	a.config = cfg
	a.addCloser("Config", func(context.Context) error {
		return a.config.Close()
	})
}

func (a *App) initLogging() {
	pkglog.InitLogging(pkglog.Options{
		Level: pkglog.ParseLevel(a.config.GetString("log.level")),
		Text:  a.config.GetString("log.format") == "text",
	})
}

func (a *App) initLibraries() {
	a.goroutine = pkgroutine.NewManager(100)
	a.uuid = pkguid.NewUUID()
	a.validator = pkgvalidator.NewV10()
}

func (a *App) initHTTPServer() {
	a.router = pkgrouter.NewRouter(a.uuid)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("server.address.http"),
		Handler:           corsHandler.Handler(a.router),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
