package entity

import (
	"time"

	"github.com/shandysiswandi/goanalyzer/internal/analyzer/frame"
)

// Dataset is an uploaded table kept in memory for the interactive session.
type Dataset struct {
	ID       string
	Filename string
	Format   Format
	Checksum string
	LoadedAt time.Time
	Frame    *frame.Frame
}
