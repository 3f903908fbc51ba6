package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func placeholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimRight(strings.Repeat("?,", count), ",")
}

func idArgs(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullInt64(value *int64) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullFloat(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}

func boolInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// timeArg binds a timestamp natively on postgres and as RFC 3339 text on sqlite.
func (q queries) timeArg(t time.Time) any {
	if q.dialect == DialectPostgres {
		return t.UTC()
	}
	return formatTime(t)
}

func (q queries) nullTimeArg(value *time.Time) any {
	if value == nil || value.IsZero() {
		return nil
	}
	return q.timeArg(*value)
}

// timeColumn scans a nullable timestamp from either a TIMESTAMPTZ or an RFC 3339 text column.
type timeColumn struct {
	Time  time.Time
	Valid bool
}

func (c *timeColumn) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*c = timeColumn{}
		return nil
	case time.Time:
		*c = timeColumn{Time: v.UTC(), Valid: true}
		return nil
	case string:
		return c.parse(v)
	case []byte:
		return c.parse(string(v))
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}
}

func (c *timeColumn) parse(value string) error {
	if value == "" {
		*c = timeColumn{}
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	*c = timeColumn{Time: t.UTC(), Valid: true}
	return nil
}

func (c timeColumn) ptr() *time.Time {
	if !c.Valid {
		return nil
	}
	t := c.Time
	return &t
}

func int64Ptr(value sql.NullInt64) *int64 {
	if !value.Valid {
		return nil
	}
	v := value.Int64
	return &v
}

func float64Ptr(value sql.NullFloat64) *float64 {
	if !value.Valid {
		return nil
	}
	v := value.Float64
	return &v
}

// encodeJSON stores nil and empty maps as NULL.
func encodeJSON(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	if m, ok := value.(map[string]any); ok && len(m) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return string(data), nil
}

func decodeJSONMap(value sql.NullString) (map[string]any, error) {
	out := map[string]any{}
	if !value.Valid || value.String == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(value.String), &out); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return out, nil
}

func decodeJSONValue(value sql.NullString) (any, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal([]byte(value.String), &out); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return out, nil
}
