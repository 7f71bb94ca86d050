package models

import (
	"database/sql/driver"
	"fmt"

	"github.com/goccy/go-json"
)

// Composite fields are stored as JSONB in Postgres and as sub-documents in Mongo.

func scanJSON(src any, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("models: cannot scan %T into %T", src, dst)
	}
}

func valueJSON(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *Address) Scan(src any) error { return scanJSON(src, a) }
func (a Address) Value() (driver.Value, error) { return valueJSON(a) }

func (r *Rating) Scan(src any) error { return scanJSON(src, r) }
func (r Rating) Value() (driver.Value, error) { return valueJSON(r) }

func (s *Specifications) Scan(src any) error { return scanJSON(src, s) }
func (s Specifications) Value() (driver.Value, error) { return valueJSON(s) }

// StringList is a JSON array column.
type StringList []string

func (l *StringList) Scan(src any) error { return scanJSON(src, l) }

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return valueJSON([]string(l))
}
