package analyzer

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/goanalyzer/internal/analyzer/inbound"
	"github.com/shandysiswandi/goanalyzer/internal/analyzer/store"
	"github.com/shandysiswandi/goanalyzer/internal/analyzer/usecase"
	"github.com/shandysiswandi/goanalyzer/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/goanalyzer/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/goanalyzer/internal/pkg/pkgroutine"
	"github.com/shandysiswandi/goanalyzer/internal/pkg/pkguid"
	"github.com/shandysiswandi/goanalyzer/internal/pkg/pkgvalidator"
)

type Dependency struct {
	Config    pkgconfig.Config
	Goroutine *pkgroutine.Manager
	Router    *pkgrouter.Router
	Context   context.Context
	ID        pkguid.StringID
	Validator pkgvalidator.Validator
}

func New(dep Dependency) (func(context.Context) error, error) {
	ctx := dep.Context
	if ctx == nil {
		ctx = context.Background()
	}

	if dep.ID == nil {
		dep.ID = pkguid.NewUUID()
	}
	if dep.Validator == nil {
		dep.Validator = pkgvalidator.NewV10()
	}

	history := store.NewHistoryStore(dep.Config.GetString("history.dsn"))
	if err := history.Initialize(ctx); err != nil {
		// uploads keep working; every record/recent call will report the failure
		slog.ErrorContext(ctx, "failed to initialize upload history", "dsn", dep.Config.GetString("history.dsn"), "error", err)
	}

	datasets := store.NewInMemoryStore(dep.Config.GetDuration("datasets.ttl"))
	dep.Goroutine.Tick(ctx, "dataset janitor", dep.Config.GetDuration("datasets.sweep_interval"), func(ctx context.Context) error {
		if n := datasets.Sweep(ctx); n > 0 {
			slog.InfoContext(ctx, "evicted idle datasets", "count", n, "remaining", datasets.Len())
		}
		return nil
	})

	uc := usecase.New(usecase.Dependency{
		History:      history,
		Datasets:     datasets,
		ID:           dep.ID,
		HistoryLimit: int(dep.Config.GetInt("history.limit")),
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, dep.Validator, dep.Config.GetInt("datasets.max_upload_bytes"))

	// sessions do not survive a restart; the history file needs no closing
	// because every store call opens and closes its own connection
	return func(ctx context.Context) error {
		if n := datasets.Clear(ctx); n > 0 {
			slog.InfoContext(ctx, "discarded session datasets", "count", n)
		}
		return nil
	}, nil
}
