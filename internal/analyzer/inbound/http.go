package inbound

import (
	"context"

	"github.com/shandysiswandi/goanalyzer/internal/analyzer/entity"
	"github.com/shandysiswandi/goanalyzer/internal/analyzer/frame"
	"github.com/shandysiswandi/goanalyzer/internal/analyzer/usecase"
	"github.com/shandysiswandi/goanalyzer/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/goanalyzer/internal/pkg/pkgvalidator"
)

type uc interface {
	Upload(ctx context.Context, in usecase.UploadInput) (usecase.UploadResult, error)
	History(ctx context.Context, limit int) usecase.HistoryResult
	Info(ctx context.Context, id string) (usecase.InfoResult, error)
	Head(ctx context.Context, id string, n int) (usecase.TableResult, error)
	Tail(ctx context.Context, id string, n int) (usecase.TableResult, error)
	Describe(ctx context.Context, id string) (usecase.DescribeResult, error)
	Missing(ctx context.Context, id string) (usecase.MissingResult, error)
	Clean(ctx context.Context, id string, method entity.CleanMethod) (usecase.CleanResult, error)
	Filter(ctx context.Context, id, column, value string) (usecase.TableResult, error)
	DateRange(ctx context.Context, id, column, start, end string) (usecase.DateRangeResult, error)
	TopValues(ctx context.Context, id, column string, k int) (usecase.ValuesResult, error)
	GroupBy(ctx context.Context, id, by, on string, agg frame.Agg) (usecase.GroupByResult, error)
	Correlation(ctx context.Context, id string) (usecase.CorrelationResult, error)
	Pie(ctx context.Context, id, column string) (usecase.ValuesResult, error)
	Chart(ctx context.Context, id, x, y string, kind entity.ChartKind) (usecase.FileResult, error)
	ExportCSV(ctx context.Context, id string) (usecase.FileResult, error)
}

func RegisterHTTPEndpoint(r *pkgrouter.Router, uc uc, v pkgvalidator.Validator, maxUploadBytes int64) {
	end := &HTTPEndpoint{uc: uc, validator: v, maxUploadBytes: maxUploadBytes}

	r.GET("/", end.Dashboard)
	r.GET("/history", end.History) // ?limit=

	// multipart framing adds a little on top of the file itself
	r.POST("/datasets", end.Upload, pkgrouter.LimitBody(maxUploadBytes+64<<10))
	r.GET("/datasets/:id", end.Info)
	r.GET("/datasets/:id/head", end.Head) // ?n=
	r.GET("/datasets/:id/tail", end.Tail) // ?n=
	r.GET("/datasets/:id/describe", end.Describe)
	r.GET("/datasets/:id/missing", end.Missing)
	r.POST("/datasets/:id/clean", end.Clean)
	r.GET("/datasets/:id/filter", end.Filter)        // ?column=&value=
	r.GET("/datasets/:id/date-range", end.DateRange) // ?column=&start=&end=
	r.GET("/datasets/:id/top", end.TopValues)        // ?column=&k=
	r.GET("/datasets/:id/groupby", end.GroupBy)      // ?by=&on=&agg=
	r.GET("/datasets/:id/correlation", end.Correlation)
	r.GET("/datasets/:id/pie", end.Pie)     // ?column=
	r.GET("/datasets/:id/chart", end.Chart) // ?x=&y=&kind=
	r.GET("/datasets/:id/export", end.Export)
}
