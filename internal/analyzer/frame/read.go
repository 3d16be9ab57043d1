package frame

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrInvalidJSON is returned when a JSON document is not a table.
var ErrInvalidJSON = errors.New("json must be an array of objects or an object of columns")

// ReadCSV parses a CSV document whose first row is the header. Bytes that are
// not valid UTF-8 are dropped.
func ReadCSV(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	header = sanitize(header)

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(records)+1, err)
		}
		records = append(records, sanitize(record))
	}

	return New(header, records)
}

func sanitize(record []string) []string {
	out := make([]string, len(record))
	for i, v := range record {
		out[i] = strings.ToValidUTF8(v, "")
	}
	return out
}

// ReadJSON parses either an array of objects (one object per row) or an
// object mapping column names to arrays or index-keyed objects. Column order
// follows first appearance in the document.
func ReadJSON(r io.Reader) (*Frame, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("read json: %w", err)
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return nil, ErrInvalidJSON
	}

	switch delim {
	case '[':
		return readJSONRecords(dec)
	case '{':
		return readJSONColumns(dec)
	default:
		return nil, ErrInvalidJSON
	}
}

func readJSONRecords(dec *json.Decoder) (*Frame, error) {
	var header []string
	position := make(map[string]int)
	var rows []map[string]string

	for dec.More() {
		keys, values, err := readOrderedObject(dec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", len(rows)+1, err)
		}
		row := make(map[string]string, len(keys))
		for i, key := range keys {
			if _, seen := position[key]; !seen {
				position[key] = len(header)
				header = append(header, key)
			}
			row[key] = values[i]
		}
		rows = append(rows, row)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}

	records := make([][]string, len(rows))
	for i, row := range rows {
		rec := make([]string, len(header))
		for j, key := range header {
			rec[j] = row[key]
		}
		records[i] = rec
	}

	return New(header, records)
}

func readJSONColumns(dec *json.Decoder) (*Frame, error) {
	var header []string
	var columns [][]string
	rows := 0

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read json: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, ErrInvalidJSON
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
		cells, err := columnCells(raw)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}

		header = append(header, name)
		columns = append(columns, cells)
		rows = max(rows, len(cells))
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}

	records := make([][]string, rows)
	for i := range records {
		rec := make([]string, len(header))
		for j, cells := range columns {
			if i < len(cells) {
				rec[j] = cells[i]
			}
		}
		records[i] = rec
	}

	return New(header, records)
}

func columnCells(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return nil, ErrInvalidJSON
	}

	switch delim {
	case '[':
		var cells []string
		for dec.More() {
			var v json.RawMessage
			if err := dec.Decode(&v); err != nil {
				return nil, err
			}
			cells = append(cells, rawCell(v))
		}
		return cells, nil
	case '{':
		keys, values, err := readObjectBody(dec)
		if err != nil {
			return nil, err
		}
		// keys are row labels ("0", "1", ...); honour numeric order when possible
		cells := make([]string, len(keys))
		for i, key := range keys {
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 || idx >= len(keys) {
				return values, nil
			}
			cells[idx] = values[i]
		}
		return cells, nil
	default:
		return nil, ErrInvalidJSON
	}
}

func readOrderedObject(dec *json.Decoder) ([]string, []string, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, ErrInvalidJSON
	}
	return readObjectBody(dec)
}

// readObjectBody reads key/value pairs after the opening brace up to and
// including the closing brace.
func readObjectBody(dec *json.Decoder) ([]string, []string, error) {
	var keys, values []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, ErrInvalidJSON
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, nil, err
		}
		keys = append(keys, key)
		values = append(values, rawCell(v))
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return keys, values, nil
}

func rawCell(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	switch {
	case len(raw) == 0, bytes.Equal(raw, []byte("null")):
		return ""
	case raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return string(raw)
		}
		return s
	case raw[0] == '{' || raw[0] == '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return string(raw)
		}
		return buf.String()
	default:
		return string(raw)
	}
}
