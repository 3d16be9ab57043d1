package usecase

import (
	"time"

	"github.com/shandysiswandi/goanalyzer/internal/analyzer/entity"
	"github.com/shandysiswandi/goanalyzer/internal/analyzer/frame"
)

type UploadInput struct {
	Filename string
	Data     []byte
}

type UploadResult struct {
	Dataset      DatasetSummary
	Preview      Table
	HistoryError string
}

type DatasetSummary struct {
	ID       string
	Filename string
	Format   entity.Format
	Checksum string
	LoadedAt time.Time
	Rows     int
	Columns  int
	Size     int
}

type Table struct {
	Columns []string
	Rows    [][]string
}

type HistoryResult struct {
	Records []entity.UploadRecord
	Error   string
}

type InfoResult struct {
	Dataset DatasetSummary
	Columns []frame.ColumnInfo
}

type TableResult struct {
	DatasetID string
	Table     Table
}

type DescribeResult struct {
	DatasetID string
	Stats     []frame.Summary
}

type MissingResult struct {
	DatasetID string
	Rows      int
	Columns   []frame.MissingInfo
}

type CleanResult struct {
	Method  entity.CleanMethod
	Dataset DatasetSummary
	Missing []frame.MissingInfo
}

type DateRangeResult struct {
	DatasetID string
	Column    string
	Start     time.Time
	End       time.Time
	Table     Table
}

type ValuesResult struct {
	DatasetID string
	Column    string
	Values    []frame.ValueCount
}

type GroupByResult struct {
	DatasetID string
	By        string
	On        string
	Agg       frame.Agg
	Groups    []frame.Group
}

type CorrelationResult struct {
	DatasetID string
	Columns   []string
	Matrix    [][]float64
}

type FileResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

func summarize(ds entity.Dataset) DatasetSummary {
	rows, cols := ds.Frame.Shape()
	return DatasetSummary{
		ID:       ds.ID,
		Filename: ds.Filename,
		Format:   ds.Format,
		Checksum: ds.Checksum,
		LoadedAt: ds.LoadedAt,
		Rows:     rows,
		Columns:  cols,
		Size:     ds.Frame.Size(),
	}
}

func toTable(f *frame.Frame) Table {
	return Table{Columns: f.Names(), Rows: f.Records()}
}
