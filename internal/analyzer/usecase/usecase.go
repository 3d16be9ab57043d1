package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shandysiswandi/goanalyzer/internal/analyzer/chart"
	"github.com/shandysiswandi/goanalyzer/internal/analyzer/entity"
	"github.com/shandysiswandi/goanalyzer/internal/analyzer/frame"
	"github.com/shandysiswandi/goanalyzer/internal/analyzer/store"
	"github.com/shandysiswandi/goanalyzer/internal/pkg/pkgerror"
	"github.com/shandysiswandi/goanalyzer/internal/pkg/pkguid"
)

const (
	defaultPreviewRows = 5
	defaultTopK        = 5
	maxTopK            = 20
	minChartColumns    = 2
)

type HistoryStore interface {
	Record(ctx context.Context, filename string, rowCount, columnCount int) error
	Recent(ctx context.Context, limit int) ([]entity.UploadRecord, error)
}

type DatasetStore interface {
	Save(ctx context.Context, ds entity.Dataset) error
	Get(ctx context.Context, id string) (entity.Dataset, error)
	Update(ctx context.Context, id string, fn func(ds *entity.Dataset) error) error
}

type Clock interface {
	Now() time.Time
}

type Dependency struct {
	History      HistoryStore
	Datasets     DatasetStore
	Clock        Clock
	ID           pkguid.StringID
	HistoryLimit int
}

type Usecase struct {
	history      HistoryStore
	datasets     DatasetStore
	clock        Clock
	id           pkguid.StringID
	historyLimit int
}

func New(dep Dependency) *Usecase {
	clock := dep.Clock
	if clock == nil {
		clock = realClock{}
	}

	limit := dep.HistoryLimit
	if limit < 1 {
		limit = 10
	}

	return &Usecase{
		history:      dep.History,
		datasets:     dep.Datasets,
		clock:        clock,
		id:           dep.ID,
		historyLimit: limit,
	}
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// Upload parses the file, keeps it for the session and logs it to the upload
// history. A history failure does not fail the upload; it is reported in
// UploadResult.HistoryError instead.
func (u *Usecase) Upload(ctx context.Context, in UploadInput) (UploadResult, error) {
	if u.datasets == nil || u.id == nil {
		return UploadResult{}, pkgerror.NewServer(errors.New("missing dependency"))
	}

	if len(in.Data) == 0 {
		return UploadResult{}, pkgerror.NewInvalidInput(errors.New("file is empty"))
	}

	format, err := detectFormat(in.Filename, in.Data)
	if err != nil {
		return UploadResult{}, err
	}

	f, err := parse(format, in.Data)
	if err != nil {
		slog.WarnContext(ctx, "failed to parse upload", "filename", in.Filename, "format", format, "error", err)
		return UploadResult{}, pkgerror.NewInvalidInput(fmt.Errorf("failed to load %s file: %w", format, err))
	}

	ds := entity.Dataset{
		ID:       u.id.Generate(),
		Filename: in.Filename,
		Format:   format,
		Checksum: checksum(in.Data),
		LoadedAt: u.clock.Now(),
		Frame:    f,
	}
	if err := u.datasets.Save(ctx, ds); err != nil {
		return UploadResult{}, normalizeErr(err)
	}

	result := UploadResult{
		Dataset: summarize(ds),
		Preview: toTable(f.Head(defaultPreviewRows)),
	}

	rows, cols := f.Shape()
	if u.history == nil {
		result.HistoryError = "upload history is not configured"
		return result, nil
	}
	if err := u.history.Record(ctx, in.Filename, rows, cols); err != nil {
		slog.WarnContext(ctx, "failed to record upload history", "dataset_id", ds.ID, "filename", in.Filename, "error", err)
		result.HistoryError = historyMessage("upload was not saved to history", err)
	}

	return result, nil
}

// History reads the most recent uploads. It never fails: a storage error is
// reported in HistoryResult.Error alongside an empty list.
func (u *Usecase) History(ctx context.Context, limit int) HistoryResult {
	if limit < 1 {
		limit = u.historyLimit
	}

	if u.history == nil {
		return HistoryResult{Records: []entity.UploadRecord{}, Error: "upload history is not configured"}
	}

	records, err := u.history.Recent(ctx, limit)
	if err != nil {
		slog.WarnContext(ctx, "failed to fetch upload history", "limit", limit, "error", err)
		return HistoryResult{Records: []entity.UploadRecord{}, Error: historyMessage("failed to fetch history", err)}
	}

	return HistoryResult{Records: records}
}

func (u *Usecase) Info(ctx context.Context, id string) (InfoResult, error) {
	ds, err := u.dataset(ctx, id)
	if err != nil {
		return InfoResult{}, err
	}

	return InfoResult{
		Dataset: summarize(ds),
		Columns: ds.Frame.Info(),
	}, nil
}

func (u *Usecase) Head(ctx context.Context, id string, n int) (TableResult, error) {
	ds, err := u.dataset(ctx, id)
	if err != nil {
		return TableResult{}, err
	}

	return TableResult{DatasetID: id, Table: toTable(ds.Frame.Head(previewRows(n)))}, nil
}

func (u *Usecase) Tail(ctx context.Context, id string, n int) (TableResult, error) {
	ds, err := u.dataset(ctx, id)
	if err != nil {
		return TableResult{}, err
	}

	return TableResult{DatasetID: id, Table: toTable(ds.Frame.Tail(previewRows(n)))}, nil
}

func (u *Usecase) Describe(ctx context.Context, id string) (DescribeResult, error) {
	ds, err := u.dataset(ctx, id)
	if err != nil {
		return DescribeResult{}, err
	}

	return DescribeResult{DatasetID: id, Stats: ds.Frame.Describe()}, nil
}

func (u *Usecase) Missing(ctx context.Context, id string) (MissingResult, error) {
	ds, err := u.dataset(ctx, id)
	if err != nil {
		return MissingResult{}, err
	}

	return MissingResult{DatasetID: id, Rows: ds.Frame.Rows(), Columns: ds.Frame.Missing()}, nil
}

// Clean replaces the session copy of the dataset with its cleaned version.
func (u *Usecase) Clean(ctx context.Context, id string, method entity.CleanMethod) (CleanResult, error) {
	var clean func(f *frame.Frame) *frame.Frame
	switch method {
	case entity.CleanDropMissing:
		clean = (*frame.Frame).DropMissing
	case entity.CleanFillZero:
		clean = (*frame.Frame).FillZero
	case entity.CleanFillMean:
		clean = (*frame.Frame).FillMean
	default:
		return CleanResult{}, pkgerror.NewInvalidInput(fmt.Errorf("unknown cleaning method %q", method))
	}

	var cleaned entity.Dataset
	err := u.datasets.Update(ctx, id, func(ds *entity.Dataset) error {
		ds.Frame = clean(ds.Frame)
		cleaned = *ds
		return nil
	})
	if err != nil {
		return CleanResult{}, mapStoreErr(err)
	}

	return CleanResult{
		Method:  method,
		Dataset: summarize(cleaned),
		Missing: cleaned.Frame.Missing(),
	}, nil
}

func (u *Usecase) Filter(ctx context.Context, id, column, value string) (TableResult, error) {
	ds, err := u.dataset(ctx, id)
	if err != nil {
		return TableResult{}, err
	}

	f, err := ds.Frame.Filter(column, value)
	if err != nil {
		return TableResult{}, mapFrameErr(err)
	}

	return TableResult{DatasetID: id, Table: toTable(f)}, nil
}

// DateRange keeps rows whose date column falls within [start, end]. An empty
// bound defaults to the column's earliest or latest value.
func (u *Usecase) DateRange(ctx context.Context, id, column, start, end string) (DateRangeResult, error) {
	ds, err := u.dataset(ctx, id)
	if err != nil {
		return DateRangeResult{}, err
	}

	lo, hi, err := ds.Frame.DateBounds(column)
	if err != nil {
		return DateRangeResult{}, mapFrameErr(err)
	}
	if lo, err = parseBound("start", start, lo); err != nil {
		return DateRangeResult{}, err
	}
	if hi, err = parseBound("end", end, hi); err != nil {
		return DateRangeResult{}, err
	}
	if hi.Before(lo) {
		return DateRangeResult{}, pkgerror.NewInvalidInput(errors.New("end must not be before start"))
	}

	f, err := ds.Frame.DateRange(column, lo, hi)
	if err != nil {
		return DateRangeResult{}, mapFrameErr(err)
	}

	return DateRangeResult{
		DatasetID: id,
		Column:    column,
		Start:     lo,
		End:       hi,
		Table:     toTable(f),
	}, nil
}

func (u *Usecase) TopValues(ctx context.Context, id, column string, k int) (ValuesResult, error) {
	if k == 0 {
		k = defaultTopK
	}
	if k < 1 || k > maxTopK {
		return ValuesResult{}, pkgerror.NewInvalidInput(fmt.Errorf("k must be between 1 and %d", maxTopK))
	}

	ds, err := u.dataset(ctx, id)
	if err != nil {
		return ValuesResult{}, err
	}

	values, err := ds.Frame.TopValues(column, k)
	if err != nil {
		return ValuesResult{}, mapFrameErr(err)
	}

	return ValuesResult{DatasetID: id, Column: column, Values: values}, nil
}

func (u *Usecase) GroupBy(ctx context.Context, id, by, on string, agg frame.Agg) (GroupByResult, error) {
	ds, err := u.dataset(ctx, id)
	if err != nil {
		return GroupByResult{}, err
	}

	groups, err := ds.Frame.GroupBy(by, on, agg)
	if err != nil {
		return GroupByResult{}, mapFrameErr(err)
	}

	return GroupByResult{DatasetID: id, By: by, On: on, Agg: agg, Groups: groups}, nil
}

func (u *Usecase) Correlation(ctx context.Context, id string) (CorrelationResult, error) {
	ds, err := u.dataset(ctx, id)
	if err != nil {
		return CorrelationResult{}, err
	}

	columns, matrix := ds.Frame.Correlation()

	return CorrelationResult{DatasetID: id, Columns: columns, Matrix: matrix}, nil
}

// Pie returns the share of each value of a categorical or text column.
func (u *Usecase) Pie(ctx context.Context, id, column string) (ValuesResult, error) {
	ds, err := u.dataset(ctx, id)
	if err != nil {
		return ValuesResult{}, err
	}

	col, err := ds.Frame.Column(column)
	if err != nil {
		return ValuesResult{}, mapFrameErr(err)
	}
	if kind := col.Kind(); kind != frame.KindCategorical && kind != frame.KindText {
		return ValuesResult{}, pkgerror.NewInvalidInput(fmt.Errorf("column %q is %s, a categorical column is required", column, kind))
	}

	values, err := ds.Frame.ValueCounts(column)
	if err != nil {
		return ValuesResult{}, mapFrameErr(err)
	}

	return ValuesResult{DatasetID: id, Column: column, Values: values}, nil
}

// Chart renders y as bars by row position, or as a line against x.
func (u *Usecase) Chart(ctx context.Context, id, x, y string, kind entity.ChartKind) (FileResult, error) {
	ds, err := u.dataset(ctx, id)
	if err != nil {
		return FileResult{}, err
	}

	if len(ds.Frame.NumericColumns()) < minChartColumns {
		return FileResult{}, pkgerror.NewInvalidInput(errors.New("need at least 2 numeric columns for plotting"))
	}

	xs, ys, err := ds.Frame.Points(x, y)
	if err != nil {
		return FileResult{}, mapFrameErr(err)
	}

	spec := chart.Spec{Kind: chart.Kind(kind), XLabel: x, YLabel: y, X: xs, Y: ys}
	if kind == entity.ChartBar {
		if spec.X, spec.Y, err = barValues(ds.Frame, y); err != nil {
			return FileResult{}, mapFrameErr(err)
		}
	}

	img, err := chart.Render(spec)
	if err != nil {
		if errors.Is(err, chart.ErrNoData) || errors.Is(err, chart.ErrUnknownKind) {
			return FileResult{}, pkgerror.NewInvalidInput(err)
		}
		return FileResult{}, pkgerror.NewServer(err)
	}

	return FileResult{
		Filename:    fmt.Sprintf("%s-%s-%s.png", y, kind, x),
		ContentType: "image/png",
		Data:        img,
	}, nil
}

// ExportCSV returns the current session copy as CSV, which also serves as
// the JSON to CSV conversion.
func (u *Usecase) ExportCSV(ctx context.Context, id string) (FileResult, error) {
	ds, err := u.dataset(ctx, id)
	if err != nil {
		return FileResult{}, err
	}

	data, err := encodeCSV(ds.Frame)
	if err != nil {
		return FileResult{}, pkgerror.NewServer(err)
	}

	return FileResult{
		Filename:    csvFilename(ds.Filename),
		ContentType: "text/csv; charset=utf-8",
		Data:        data,
	}, nil
}

func (u *Usecase) dataset(ctx context.Context, id string) (entity.Dataset, error) {
	if id == "" {
		return entity.Dataset{}, pkgerror.NewInvalidInput(errors.New("dataset id is required"))
	}

	ds, err := u.datasets.Get(ctx, id)
	if err != nil {
		return entity.Dataset{}, mapStoreErr(err)
	}

	return ds, nil
}

func previewRows(n int) int {
	if n < 1 {
		return defaultPreviewRows
	}
	return n
}

func parseBound(name, value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	t, ok := frame.ParseTime(value)
	if !ok {
		return time.Time{}, pkgerror.NewInvalidInput(fmt.Errorf("%s %q is not a valid date", name, value))
	}
	return t, nil
}

// barValues returns the row positions and values of the non-missing cells of
// column. Missing rows are left out so the chart shows a gap for them.
func barValues(f *frame.Frame, column string) (rows, values []float64, err error) {
	col, err := f.Column(column)
	if err != nil {
		return nil, nil, err
	}
	if col.Kind() != frame.KindNumeric {
		return nil, nil, frame.ErrNotNumeric
	}

	for i := 0; i < col.Len(); i++ {
		v, ok := col.Float(i)
		if !ok {
			continue
		}
		rows = append(rows, float64(i))
		values = append(values, v)
	}
	return rows, values, nil
}

// historyMessage is the client-facing text for a history failure. The
// underlying error may carry file paths, so only its kind is exposed.
func historyMessage(prefix string, err error) string {
	switch {
	case errors.Is(err, store.ErrConnection):
		return prefix + ": history database unavailable"
	case errors.Is(err, store.ErrWrite):
		return prefix + ": history write failed"
	case errors.Is(err, store.ErrRead):
		return prefix + ": history read failed"
	default:
		return prefix
	}
}

func mapStoreErr(err error) error {
	if errors.Is(err, pkgerror.ErrNotFound) {
		return pkgerror.NewBusiness("dataset not found", pkgerror.CodeNotFound)
	}
	return normalizeErr(err)
}

func mapFrameErr(err error) error {
	switch {
	case errors.Is(err, frame.ErrColumnNotFound),
		errors.Is(err, frame.ErrNotNumeric),
		errors.Is(err, frame.ErrNotDatetime),
		errors.Is(err, frame.ErrUnknownAgg):
		return pkgerror.NewInvalidInput(err)
	default:
		return normalizeErr(err)
	}
}

func normalizeErr(err error) error {
	var perr *pkgerror.Error
	if errors.As(err, &perr) {
		return perr
	}
	return pkgerror.NewServer(err)
}
