package pkgrouter

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/shandysiswandi/goanalyzer/internal/pkg/pkgerror"
)

// GetParam reads a path parameter stored by httprouter, trimmed of spaces.
func GetParam(ctx context.Context, key string) string {
	return strings.TrimSpace(httprouter.ParamsFromContext(ctx).ByName(key))
}

// QueryInt parses an optional integer query parameter. A missing or blank
// value is 0; anything else that is not an integer is invalid input.
func QueryInt(r *http.Request, key string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerror.NewInvalidInput(fmt.Errorf("%s must be an integer", key))
	}
	return value, nil
}
