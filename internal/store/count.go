package store

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Count is a 64-bit counter as reported by the store. Drivers disagree on
// how counters arrive (ClickHouse UInt64, Postgres int64, JSON strings), so
// every count-like value is decoded through Scan.
type Count int64

// Scan implements the sql.Scanner interface
func (c *Count) Scan(value interface{}) error {
	n, err := decodeCount(value)
	if err != nil {
		return err
	}
	*c = Count(n)
	return nil
}

func decodeCount(value interface{}) (int64, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("count %d overflows int64", v)
		}
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint:
		return decodeCount(uint64(v))
	case float64:
		return floatCount(v)
	case float32:
		return floatCount(float64(v))
	case []byte:
		return parseCount(string(v))
	case string:
		return parseCount(v)
	default:
		return 0, fmt.Errorf("unsupported count type %T", value)
	}
}

func floatCount(f float64) (int64, error) {
	if f != math.Trunc(f) || f < 0 || f > math.MaxInt64 {
		return 0, fmt.Errorf("invalid count %v", f)
	}
	return int64(f), nil
}

func parseCount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid count %q", s)
	}
	return n, nil
}

// Bucket is one group of a CountBy result
type Bucket struct {
	Key   string `json:"key"`
	Count Count  `json:"count"`
}
