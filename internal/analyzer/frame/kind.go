package frame

import (
	"strconv"
	"strings"
	"time"
)

// Kind is the inferred type of a column.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindDatetime    Kind = "datetime"
	KindCategorical Kind = "categorical"
	KindText        Kind = "text"
	KindEmpty       Kind = "empty"
)

const (
	maxCategories     = 50
	maxCategoricalPct = 0.5
)

//nolint:gochecknoglobals // read-only lookup tables
var (
	missingTokens = map[string]struct{}{
		"": {}, "NA": {}, "N/A": {}, "n/a": {}, "#N/A": {}, "<NA>": {},
		"NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
		"null": {}, "NULL": {}, "None": {},
	}

	dateLayouts = []string{
		time.RFC3339,
		"2006-01-02",
		"2006/01/02",
		"2006-01-02 15:04",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"01/02/2006",
	}
)

// normalizeCell trims a raw cell and collapses missing markers to "".
func normalizeCell(s string) string {
	s = strings.TrimSpace(s)
	if _, ok := missingTokens[s]; ok {
		return ""
	}
	return s
}

func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseTime parses s using the layouts accepted for datetime columns.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func inferKind(cells []string) Kind {
	var nonNull, numeric, dates int
	distinct := make(map[string]struct{})

	for _, c := range cells {
		if c == "" {
			continue
		}
		nonNull++
		if _, ok := parseNumber(c); ok {
			numeric++
		} else if _, ok := ParseTime(c); ok {
			dates++
		}
		distinct[c] = struct{}{}
	}

	switch {
	case nonNull == 0:
		return KindEmpty
	case numeric == nonNull:
		return KindNumeric
	case dates == nonNull:
		return KindDatetime
	case len(distinct) <= maxCategories:
		return KindCategorical
	case float64(len(distinct))/float64(nonNull) <= maxCategoricalPct:
		return KindCategorical
	default:
		return KindText
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
