package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnsupportedJSONB = errors.New("unsupported jsonb source")

// JSONValue encodes v for a jsonb column.
func JSONValue(v any) (driver.Value, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode jsonb: %w", err)
	}

	return raw, nil
}

// ScanJSON decodes a jsonb column into dest. NULL leaves dest untouched.
func ScanJSON(src, dest any) error {
	var raw []byte

	switch value := src.(type) {
	case nil:
		return nil
	case []byte:
		raw = value
	case string:
		raw = []byte(value)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedJSONB, src)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("failed to decode jsonb: %w", err)
	}

	return nil
}
