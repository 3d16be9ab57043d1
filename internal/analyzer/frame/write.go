package frame

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes the header and all rows as CSV. Missing cells are written
// as empty fields.
func (f *Frame) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(f.Names()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := 0; i < f.rows; i++ {
		if err := writer.Write(f.Record(i)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
