package store

import (
	"bytes"
	"encoding/json"
	"time"
)

// Row is one result row of a raw query. Columns keep the order the store
// returned them in.
type Row struct {
	Columns []string
	Values  []interface{}
}

// Get returns the value of the named column
func (r Row) Get(column string) (interface{}, bool) {
	for i, c := range r.Columns {
		if c == column {
			return r.Values[i], true
		}
	}
	return nil, false
}

// MarshalJSON encodes the row as an object with keys in column order
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := json.Marshal(r.Values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// normalizeValue converts driver-specific representations into values that
// encode cleanly as JSON. Everything else is returned untouched.
func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case *time.Time:
		if val == nil {
			return nil
		}
		return *val
	default:
		return v
	}
}
