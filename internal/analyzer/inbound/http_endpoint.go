package inbound

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/shandysiswandi/goanalyzer/internal/analyzer/entity"
	"github.com/shandysiswandi/goanalyzer/internal/analyzer/frame"
	"github.com/shandysiswandi/goanalyzer/internal/analyzer/usecase"
	"github.com/shandysiswandi/goanalyzer/internal/pkg/pkgerror"
	"github.com/shandysiswandi/goanalyzer/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/goanalyzer/internal/pkg/pkgvalidator"
)

//go:embed web/index.html
var dashboardPage []byte

//nolint:gochecknoglobals // display order of the history table
var historyColumns = []string{"filename", "uploaded_at", "row_count", "column_count"}

type HTTPEndpoint struct {
	uc             uc
	validator      pkgvalidator.Validator
	maxUploadBytes int64
}

func (h *HTTPEndpoint) Dashboard(ctx context.Context, r *http.Request) (any, error) {
	return &pkgrouter.Content{Type: "text/html; charset=utf-8", Data: dashboardPage}, nil
}

func (h *HTTPEndpoint) Upload(ctx context.Context, r *http.Request) (any, error) {
	filename, data, err := h.readUpload(r)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.Upload(ctx, usecase.UploadInput{Filename: filename, Data: data})
	if err != nil {
		return nil, err
	}

	return UploadResponse{
		Dataset:      toDataset(result.Dataset),
		Preview:      toTable(result.Preview),
		HistoryError: result.HistoryError,
	}, nil
}

func (h *HTTPEndpoint) History(ctx context.Context, r *http.Request) (any, error) {
	limit, err := pkgrouter.QueryInt(r, "limit")
	if err != nil {
		return nil, err
	}

	req := HistoryRequest{Limit: limit}
	if err := h.validator.Validate(req); err != nil {
		return nil, err
	}

	result := h.uc.History(ctx, req.Limit)

	records := make([]HistoryRecord, 0, len(result.Records))
	for _, rec := range result.Records {
		records = append(records, HistoryRecord{
			Filename:    rec.Filename,
			UploadedAt:  rec.UploadedAt,
			RowCount:    rec.RowCount,
			ColumnCount: rec.ColumnCount,
		})
	}

	return HistoryResponse{Columns: historyColumns, Records: records, Error: result.Error}, nil
}

func (h *HTTPEndpoint) Info(ctx context.Context, r *http.Request) (any, error) {
	id, err := h.datasetID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.Info(ctx, id)
	if err != nil {
		return nil, err
	}

	columns := make([]ColumnInfo, 0, len(result.Columns))
	for _, c := range result.Columns {
		columns = append(columns, ColumnInfo{Name: c.Name, Kind: c.Kind, NonNull: c.NonNull, Missing: c.Missing})
	}

	return InfoResponse{Dataset: toDataset(result.Dataset), Columns: columns}, nil
}

func (h *HTTPEndpoint) Head(ctx context.Context, r *http.Request) (any, error) {
	return h.preview(ctx, r, h.uc.Head)
}

func (h *HTTPEndpoint) Tail(ctx context.Context, r *http.Request) (any, error) {
	return h.preview(ctx, r, h.uc.Tail)
}

func (h *HTTPEndpoint) preview(ctx context.Context, r *http.Request,
	fn func(ctx context.Context, id string, n int) (usecase.TableResult, error),
) (any, error) {
	n, err := pkgrouter.QueryInt(r, "n")
	if err != nil {
		return nil, err
	}

	req := PreviewRequest{ID: pkgrouter.GetParam(ctx, "id"), N: n}
	if err := h.validator.Validate(req); err != nil {
		return nil, err
	}

	result, err := fn(ctx, req.ID, req.N)
	if err != nil {
		return nil, err
	}

	return TableResponse{DatasetID: result.DatasetID, Table: toTable(result.Table)}, nil
}

func (h *HTTPEndpoint) Describe(ctx context.Context, r *http.Request) (any, error) {
	id, err := h.datasetID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.Describe(ctx, id)
	if err != nil {
		return nil, err
	}

	stats := make([]Summary, 0, len(result.Stats))
	for _, s := range result.Stats {
		stats = append(stats, Summary{
			Column: s.Column,
			Count:  s.Count,
			Mean:   number(s.Mean),
			Std:    number(s.Std),
			Min:    number(s.Min),
			Q25:    number(s.Q25),
			Q50:    number(s.Q50),
			Q75:    number(s.Q75),
			Max:    number(s.Max),
		})
	}

	return DescribeResponse{DatasetID: result.DatasetID, Stats: stats}, nil
}

func (h *HTTPEndpoint) Missing(ctx context.Context, r *http.Request) (any, error) {
	id, err := h.datasetID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.Missing(ctx, id)
	if err != nil {
		return nil, err
	}

	return MissingResponse{DatasetID: result.DatasetID, Rows: result.Rows, Columns: toMissing(result.Columns)}, nil
}

func (h *HTTPEndpoint) Clean(ctx context.Context, r *http.Request) (any, error) {
	var req CleanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, pkgerror.NewInvalidFormat()
	}
	req.ID = pkgrouter.GetParam(ctx, "id")

	if err := h.validator.Validate(req); err != nil {
		return nil, err
	}

	result, err := h.uc.Clean(ctx, req.ID, entity.CleanMethod(req.Method))
	if err != nil {
		return nil, err
	}

	return CleanResponse{
		Method:  result.Method,
		Dataset: toDataset(result.Dataset),
		Missing: toMissing(result.Missing),
	}, nil
}

func (h *HTTPEndpoint) Filter(ctx context.Context, r *http.Request) (any, error) {
	q := r.URL.Query()
	req := FilterRequest{
		ID:     pkgrouter.GetParam(ctx, "id"),
		Column: q.Get("column"),
		Value:  q.Get("value"),
	}
	if err := h.validator.Validate(req); err != nil {
		return nil, err
	}

	result, err := h.uc.Filter(ctx, req.ID, req.Column, req.Value)
	if err != nil {
		return nil, err
	}

	return TableResponse{DatasetID: result.DatasetID, Table: toTable(result.Table)}, nil
}

func (h *HTTPEndpoint) DateRange(ctx context.Context, r *http.Request) (any, error) {
	q := r.URL.Query()
	req := DateRangeRequest{
		ID:     pkgrouter.GetParam(ctx, "id"),
		Column: q.Get("column"),
		Start:  strings.TrimSpace(q.Get("start")),
		End:    strings.TrimSpace(q.Get("end")),
	}
	if err := h.validator.Validate(req); err != nil {
		return nil, err
	}

	result, err := h.uc.DateRange(ctx, req.ID, req.Column, req.Start, req.End)
	if err != nil {
		return nil, err
	}

	return DateRangeResponse{
		DatasetID: result.DatasetID,
		Column:    result.Column,
		Start:     result.Start,
		End:       result.End,
		Table:     toTable(result.Table),
	}, nil
}

func (h *HTTPEndpoint) TopValues(ctx context.Context, r *http.Request) (any, error) {
	q := r.URL.Query()
	k, err := pkgrouter.QueryInt(r, "k")
	if err != nil {
		return nil, err
	}

	req := TopValuesRequest{ID: pkgrouter.GetParam(ctx, "id"), Column: q.Get("column"), K: k}
	if err := h.validator.Validate(req); err != nil {
		return nil, err
	}

	result, err := h.uc.TopValues(ctx, req.ID, req.Column, req.K)
	if err != nil {
		return nil, err
	}

	return ValuesResponse{DatasetID: result.DatasetID, Column: result.Column, Values: toValues(result.Values)}, nil
}

func (h *HTTPEndpoint) GroupBy(ctx context.Context, r *http.Request) (any, error) {
	q := r.URL.Query()
	req := GroupByRequest{
		ID:  pkgrouter.GetParam(ctx, "id"),
		By:  q.Get("by"),
		On:  q.Get("on"),
		Agg: strings.ToLower(q.Get("agg")),
	}
	if err := h.validator.Validate(req); err != nil {
		return nil, err
	}

	result, err := h.uc.GroupBy(ctx, req.ID, req.By, req.On, frame.Agg(req.Agg))
	if err != nil {
		return nil, err
	}

	groups := make([]Group, 0, len(result.Groups))
	for _, g := range result.Groups {
		groups = append(groups, Group{Key: g.Key, Count: g.Count, Value: number(g.Value)})
	}

	return GroupByResponse{
		DatasetID: result.DatasetID,
		By:        result.By,
		On:        result.On,
		Agg:       result.Agg,
		Groups:    groups,
	}, nil
}

func (h *HTTPEndpoint) Correlation(ctx context.Context, r *http.Request) (any, error) {
	id, err := h.datasetID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.Correlation(ctx, id)
	if err != nil {
		return nil, err
	}

	matrix := make([][]*float64, len(result.Matrix))
	for i, row := range result.Matrix {
		matrix[i] = make([]*float64, len(row))
		for j, v := range row {
			matrix[i][j] = number(v)
		}
	}

	return CorrelationResponse{DatasetID: result.DatasetID, Columns: result.Columns, Matrix: matrix}, nil
}

func (h *HTTPEndpoint) Pie(ctx context.Context, r *http.Request) (any, error) {
	req := PieRequest{ID: pkgrouter.GetParam(ctx, "id"), Column: r.URL.Query().Get("column")}
	if err := h.validator.Validate(req); err != nil {
		return nil, err
	}

	result, err := h.uc.Pie(ctx, req.ID, req.Column)
	if err != nil {
		return nil, err
	}

	return ValuesResponse{DatasetID: result.DatasetID, Column: result.Column, Values: toValues(result.Values)}, nil
}

func (h *HTTPEndpoint) Chart(ctx context.Context, r *http.Request) (any, error) {
	q := r.URL.Query()
	req := ChartRequest{
		ID:   pkgrouter.GetParam(ctx, "id"),
		X:    q.Get("x"),
		Y:    q.Get("y"),
		Kind: strings.ToLower(q.Get("kind")),
	}
	if req.Kind == "" {
		req.Kind = string(entity.ChartBar)
	}
	if err := h.validator.Validate(req); err != nil {
		return nil, err
	}

	result, err := h.uc.Chart(ctx, req.ID, req.X, req.Y, entity.ChartKind(req.Kind))
	if err != nil {
		return nil, err
	}

	return &pkgrouter.Content{Type: result.ContentType, Data: result.Data}, nil
}

func (h *HTTPEndpoint) Export(ctx context.Context, r *http.Request) (any, error) {
	id, err := h.datasetID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.ExportCSV(ctx, id)
	if err != nil {
		return nil, err
	}

	return &pkgrouter.Content{Type: result.ContentType, Filename: result.Filename, Data: result.Data}, nil
}

func (h *HTTPEndpoint) datasetID(ctx context.Context) (string, error) {
	id := pkgrouter.GetParam(ctx, "id")
	if id == "" {
		return "", pkgerror.NewInvalidInput(errors.New("dataset id is required"))
	}
	return id, nil
}

// readUpload accepts either a multipart form with a "file" part or a raw
// body named by the filename query parameter.
func (h *HTTPEndpoint) readUpload(r *http.Request) (string, []byte, error) {
	if r.Body == nil {
		return "", nil, pkgerror.NewInvalidInput(errors.New("empty request body"))
	}
	reader, filename, cleanup, err := extractFile(r)
	if err != nil {
		return "", nil, err
	}
	defer cleanup()

	data, err := io.ReadAll(io.LimitReader(reader, h.maxUploadBytes+1))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", nil, pkgerror.NewTooLarge(h.maxUploadBytes)
		}
		return "", nil, pkgerror.NewInvalidFormat()
	}
	if int64(len(data)) > h.maxUploadBytes {
		return "", nil, pkgerror.NewTooLarge(h.maxUploadBytes)
	}

	return filename, data, nil
}

func extractFile(r *http.Request) (io.Reader, string, func(), error) {
	contentType := r.Header.Get("Content-Type")
	if contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err == nil && strings.EqualFold(mediaType, "multipart/form-data") {
			return extractMultipartFile(r)
		}
	}

	name := filepath.Base(strings.TrimSpace(r.URL.Query().Get("filename")))
	if name == "" || name == "." || name == "/" {
		return nil, "", func() {}, pkgerror.NewInvalidInput(errors.New("filename query parameter is required for raw uploads"))
	}

	return r.Body, name, func() {}, nil
}

func extractMultipartFile(r *http.Request) (io.Reader, string, func(), error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, "", func() {}, pkgerror.NewInvalidFormat()
	}

	for {
		part, err := reader.NextPart()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, "", func() {}, pkgerror.NewInvalidInput(errors.New("file part is required"))
			}
			return nil, "", func() {}, pkgerror.NewInvalidFormat()
		}

		if part.FormName() == "file" {
			name := part.FileName()
			if name == "" {
				name = "upload"
			}
			return part, name, func() { _ = part.Close() }, nil
		}
		_ = part.Close()
	}
}
