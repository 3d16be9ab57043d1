package pkgrouter

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// Content is a non-JSON response body (images, downloads, HTML pages).
//
// Returning *Content from a Handler bypasses the JSON envelope; errors from
// the same handler are still encoded as JSON.
type Content struct {
	Type string
	// Filename, when set, turns the response into an attachment download.
	Filename string
	Data     []byte
}

func (c *Content) write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", c.Type)
	w.Header().Set("Content-Length", strconv.Itoa(len(c.Data)))
	if c.Filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", c.Filename))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(c.Data); err != nil {
		slog.Error("server: failed to write content", "type", c.Type, "error", err)
	}
}
