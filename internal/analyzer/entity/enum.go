package entity

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

type CleanMethod string

const (
	CleanDropMissing CleanMethod = "drop"
	CleanFillZero    CleanMethod = "zero"
	CleanFillMean    CleanMethod = "mean"
)

type ChartKind string

const (
	ChartBar  ChartKind = "bar"
	ChartLine ChartKind = "line"
)
