package app

import (
	"context"
	"net/http"

	"github.com/shandysiswandi/goanalyzer/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/goanalyzer/internal/pkg/pkglog"
	"github.com/shandysiswandi/goanalyzer/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/goanalyzer/internal/pkg/pkgroutine"
	"github.com/shandysiswandi/goanalyzer/internal/pkg/pkguid"
	"github.com/shandysiswandi/goanalyzer/internal/pkg/pkgvalidator"
)

// Options are set from the command line.
type Options struct {
	// ConfigPath overrides the default config file location.
	ConfigPath string
}

type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config pkgconfig.Config

	// libraries
	uuid      pkguid.StringID
	goroutine *pkgroutine.Manager
	validator pkgvalidator.Validator

	// server
	router     *pkgrouter.Router
	httpServer *http.Server

	// released in reverse registration order by Stop
	closers []closer

	// receives the listener error when the HTTP server dies on its own
	serveErr chan error
}

type closer struct {
	name string
	fn   func(context.Context) error
}

func New(opts Options) *App {
	pkglog.InitLogging(pkglog.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:      ctx,
		cancel:   cancel,
		serveErr: make(chan error, 1),
	}

	app.initConfig(opts.ConfigPath)
	app.initLogging()
	app.initLibraries()
	app.initHTTPServer()
	app.initModules()

	return app
}
