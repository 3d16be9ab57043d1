package entity

import "time"

// UploadRecord is one persisted entry of the upload history.
//
// ID and UploadedAt are assigned by the store on insert; the counts are the
// parsed table's shape at upload time. Records are never modified.
type UploadRecord struct {
	ID          int64     `db:"id"`
	Filename    string    `db:"filename"`
	UploadedAt  time.Time `db:"uploaded_at"`
	RowCount    int       `db:"row_count"`
	ColumnCount int       `db:"column_count"`
}
