package projection

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/poiesic/lexcorpus/core"
)

// Project returns the row for rec. The row always has one cell per column.
func (s *Schema) Project(rec *core.Record) []string {
	row := make([]string, len(s.Columns))
	if rec == nil {
		return row
	}
	for i, col := range s.Columns {
		for _, key := range col.Keys {
			if v, ok := lookup(rec, key); ok {
				row[i] = format(v)
				break
			}
		}
	}
	return row
}

// ProjectAll projects every record.
func (s *Schema) ProjectAll(records []*core.Record) [][]string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, s.Project(rec))
	}
	return rows
}

func lookup(rec *core.Record, key string) (any, bool) {
	parts := strings.Split(key, ".")
	v, ok := rec.Get(parts[0])
	for _, part := range parts[1:] {
		if !ok {
			return nil, false
		}
		m, isMap := v.(map[string]any)
		if !isMap {
			return nil, false
		}
		v, ok = m[part]
	}
	return v, ok
}

func format(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}
