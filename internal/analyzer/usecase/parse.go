package usecase

import (
	"bytes"
	"encoding/hex"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/gabriel-vasile/mimetype"

	"github.com/shandysiswandi/goanalyzer/internal/analyzer/entity"
	"github.com/shandysiswandi/goanalyzer/internal/analyzer/frame"
	"github.com/shandysiswandi/goanalyzer/internal/pkg/pkgerror"
)

// detectFormat trusts a .csv or .json extension and otherwise sniffs the
// content.
func detectFormat(filename string, data []byte) (entity.Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return entity.FormatCSV, nil
	case ".json":
		return entity.FormatJSON, nil
	}

	mime := mimetype.Detect(data)
	switch {
	case mime.Is("application/json"):
		return entity.FormatJSON, nil
	case mime.Is("text/csv"):
		return entity.FormatCSV, nil
	default:
		return "", pkgerror.NewUnsupported("only csv and json files are supported, got " + mime.String())
	}
}

func parse(format entity.Format, data []byte) (*frame.Frame, error) {
	if format == entity.FormatJSON {
		return frame.ReadJSON(bytes.NewReader(data))
	}
	return frame.ReadCSV(bytes.NewReader(data))
}

func checksum(data []byte) string {
	hasher := xxhash.New()
	_, _ = hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil))
}

func encodeCSV(f *frame.Frame) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.WriteCSV(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func csvFilename(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if base == "" || base == "." {
		base = "dataset"
	}
	return base + ".csv"
}
