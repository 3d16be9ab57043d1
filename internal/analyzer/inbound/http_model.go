package inbound

import (
	"math"
	"net/http"
	"time"

	"github.com/shandysiswandi/goanalyzer/internal/analyzer/entity"
	"github.com/shandysiswandi/goanalyzer/internal/analyzer/frame"
	"github.com/shandysiswandi/goanalyzer/internal/analyzer/usecase"
)

type (
	PreviewRequest struct {
		ID string `query:"id" validate:"required"`
		N  int    `query:"n" validate:"min=0,max=1000"`
	}

	CleanRequest struct {
		ID     string `json:"-" validate:"required"`
		Method string `json:"method" validate:"required,oneof=drop zero mean"`
	}

	FilterRequest struct {
		ID     string `query:"id" validate:"required"`
		Column string `query:"column" validate:"required"`
		Value  string `query:"value"`
	}

	DateRangeRequest struct {
		ID     string `query:"id" validate:"required"`
		Column string `query:"column" validate:"required"`
		Start  string `query:"start"`
		End    string `query:"end"`
	}

	TopValuesRequest struct {
		ID     string `query:"id" validate:"required"`
		Column string `query:"column" validate:"required"`
		K      int    `query:"k" validate:"min=0,max=20"`
	}

	GroupByRequest struct {
		ID  string `query:"id" validate:"required"`
		By  string `query:"by" validate:"required"`
		On  string `query:"on" validate:"required"`
		Agg string `query:"agg" validate:"required,oneof=mean sum min max"`
	}

	PieRequest struct {
		ID     string `query:"id" validate:"required"`
		Column string `query:"column" validate:"required"`
	}

	ChartRequest struct {
		ID   string `query:"id" validate:"required"`
		X    string `query:"x" validate:"required"`
		Y    string `query:"y" validate:"required"`
		Kind string `query:"kind" validate:"required,oneof=bar line"`
	}

	HistoryRequest struct {
		Limit int `query:"limit" validate:"min=0,max=100"`
	}
)

type Dataset struct {
	ID       string        `json:"id"`
	Filename string        `json:"filename"`
	Format   entity.Format `json:"format"`
	Checksum string        `json:"checksum"`
	LoadedAt time.Time     `json:"loaded_at"`
	Rows     int           `json:"rows"`
	Columns  int           `json:"columns"`
	Size     int           `json:"size"`
}

type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

type UploadResponse struct {
	Dataset      Dataset `json:"dataset"`
	Preview      Table   `json:"preview"`
	HistoryError string  `json:"history_error,omitempty"`
}

func (UploadResponse) StatusCode() int {
	return http.StatusCreated
}

func (r UploadResponse) Message() string {
	if r.HistoryError != "" {
		return "file loaded, but the upload could not be saved to history"
	}
	return "file loaded successfully"
}

type HistoryRecord struct {
	Filename    string    `json:"filename"`
	UploadedAt  time.Time `json:"uploaded_at"`
	RowCount    int       `json:"row_count"`
	ColumnCount int       `json:"column_count"`
}

type HistoryResponse struct {
	Columns []string        `json:"columns"`
	Records []HistoryRecord `json:"records"`
	Error   string          `json:"error,omitempty"`
}

func (r HistoryResponse) Message() string {
	switch {
	case r.Error != "":
		return "failed to fetch history"
	case len(r.Records) == 0:
		return "no upload history yet"
	default:
		return "request has been successfully"
	}
}

type ColumnInfo struct {
	Name    string     `json:"name"`
	Kind    frame.Kind `json:"kind"`
	NonNull int        `json:"non_null"`
	Missing int        `json:"missing"`
}

type InfoResponse struct {
	Dataset Dataset      `json:"dataset"`
	Columns []ColumnInfo `json:"columns"`
}

type TableResponse struct {
	DatasetID string `json:"dataset_id"`
	Table
}

func (r TableResponse) Meta() map[string]any {
	return map[string]any{"rows": len(r.Rows)}
}

type Summary struct {
	Column string   `json:"column"`
	Count  int      `json:"count"`
	Mean   *float64 `json:"mean"`
	Std    *float64 `json:"std"`
	Min    *float64 `json:"min"`
	Q25    *float64 `json:"25%"`
	Q50    *float64 `json:"50%"`
	Q75    *float64 `json:"75%"`
	Max    *float64 `json:"max"`
}

type DescribeResponse struct {
	DatasetID string    `json:"dataset_id"`
	Stats     []Summary `json:"stats"`
}

type MissingColumn struct {
	Column  string  `json:"column"`
	Missing int     `json:"missing"`
	Percent float64 `json:"percent"`
}

type MissingResponse struct {
	DatasetID string          `json:"dataset_id"`
	Rows      int             `json:"rows"`
	Columns   []MissingColumn `json:"columns"`
}

type CleanResponse struct {
	Method  entity.CleanMethod `json:"method"`
	Dataset Dataset            `json:"dataset"`
	Missing []MissingColumn    `json:"missing"`
}

func (CleanResponse) Message() string {
	return "data cleaned successfully"
}

type DateRangeResponse struct {
	DatasetID string    `json:"dataset_id"`
	Column    string    `json:"column"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Table
}

type ValueCount struct {
	Value   string  `json:"value"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

type ValuesResponse struct {
	DatasetID string       `json:"dataset_id"`
	Column    string       `json:"column"`
	Values    []ValueCount `json:"values"`
}

type Group struct {
	Key   string   `json:"key"`
	Count int      `json:"count"`
	Value *float64 `json:"value"`
}

type GroupByResponse struct {
	DatasetID string    `json:"dataset_id"`
	By        string    `json:"by"`
	On        string    `json:"on"`
	Agg       frame.Agg `json:"agg"`
	Groups    []Group   `json:"groups"`
}

type CorrelationResponse struct {
	DatasetID string       `json:"dataset_id"`
	Columns   []string     `json:"columns"`
	Matrix    [][]*float64 `json:"matrix"`
}

// number maps NaN and infinities, which JSON cannot encode, to null.
func number(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func toDataset(d usecase.DatasetSummary) Dataset {
	return Dataset{
		ID:       d.ID,
		Filename: d.Filename,
		Format:   d.Format,
		Checksum: d.Checksum,
		LoadedAt: d.LoadedAt,
		Rows:     d.Rows,
		Columns:  d.Columns,
		Size:     d.Size,
	}
}

func toTable(t usecase.Table) Table {
	rows := t.Rows
	if rows == nil {
		rows = [][]string{}
	}
	return Table{Columns: t.Columns, Rows: rows}
}

func toMissing(in []frame.MissingInfo) []MissingColumn {
	out := make([]MissingColumn, 0, len(in))
	for _, m := range in {
		out = append(out, MissingColumn{Column: m.Column, Missing: m.Count, Percent: m.Percent})
	}
	return out
}

func toValues(in []frame.ValueCount) []ValueCount {
	out := make([]ValueCount, 0, len(in))
	for _, v := range in {
		out = append(out, ValueCount{Value: v.Value, Count: v.Count, Percent: v.Percent})
	}
	return out
}
