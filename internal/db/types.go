package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jandubois/readycheck/internal/report"
)

// SQLite datetime format (from datetime('now'))
const SQLiteTimeFormat = "2006-01-02 15:04:05"

// JSONHostMeta handles scanning and storing report.HostMeta as JSON text.
type JSONHostMeta report.HostMeta

func (j *JSONHostMeta) Scan(value any) error {
	if value == nil {
		*j = JSONHostMeta{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONHostMeta", value)
	}
	if len(data) == 0 {
		*j = JSONHostMeta{}
		return nil
	}
	return json.Unmarshal(data, j)
}

func (j JSONHostMeta) Value() (driver.Value, error) {
	return json.Marshal(j)
}

// NullTime handles scanning SQLite TEXT datetime columns.
type NullTime struct {
	Time  time.Time
	Valid bool
}

func (t *NullTime) Scan(value any) error {
	if value == nil {
		t.Valid = false
		return nil
	}
	var str string
	switch v := value.(type) {
	case []byte:
		str = string(v)
	case string:
		str = v
	default:
		return fmt.Errorf("cannot scan %T into NullTime", value)
	}
	if str == "" {
		t.Valid = false
		return nil
	}
	// Try multiple formats
	formats := []string{
		SQLiteTimeFormat,
		time.RFC3339,
		time.RFC3339Nano,
	}
	for _, format := range formats {
		if parsed, err := time.Parse(format, str); err == nil {
			t.Time = parsed
			t.Valid = true
			return nil
		}
	}
	return fmt.Errorf("cannot parse time %q", str)
}
