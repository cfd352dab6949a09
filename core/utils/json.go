package utils

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// StringList is a list of strings stored as a JSON array in a text column.
// Empty or malformed column values decode to an empty list.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	return EncodeList(l), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	raw, err := columnText(src)
	if err != nil {
		return err
	}
	*l = DecodeList(raw)
	return nil
}

// StringMap is a string-to-string map stored as a JSON object in a text column.
// Empty or malformed column values decode to an empty map.
type StringMap map[string]string

// Value implements driver.Valuer.
func (m StringMap) Value() (driver.Value, error) {
	return EncodeMap(m), nil
}

// Scan implements sql.Scanner.
func (m *StringMap) Scan(src any) error {
	raw, err := columnText(src)
	if err != nil {
		return err
	}
	*m = DecodeMap(raw)
	return nil
}

// EncodeList serializes a list as a JSON array. A nil list encodes as "[]".
func EncodeList(list []string) string {
	if len(list) == 0 {
		return "[]"
	}
	b, err := marshal(list)
	if err != nil {
		return "[]"
	}
	return b
}

// DecodeList parses a JSON array of strings, returning an empty list for
// empty or malformed input.
func DecodeList(raw string) []string {
	list := []string{}
	if raw == "" {
		return list
	}
	if err := json.Unmarshal([]byte(raw), &list); err != nil || list == nil {
		return []string{}
	}
	return list
}

// EncodeMap serializes a map as a JSON object. A nil map encodes as "{}".
func EncodeMap(m map[string]string) string {
	if len(m) == 0 {
		return "{}"
	}
	b, err := marshal(m)
	if err != nil {
		return "{}"
	}
	return b
}

// DecodeMap parses a JSON object of strings, returning an empty map for
// empty or malformed input.
func DecodeMap(raw string) map[string]string {
	m := map[string]string{}
	if raw == "" {
		return m
	}
	if err := json.Unmarshal([]byte(raw), &m); err != nil || m == nil {
		return map[string]string{}
	}
	return m
}

// marshal keeps &, < and > literal so stored values can be matched with LIKE.
func marshal(v any) (string, error) {
	var buf strings.Builder
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func columnText(src any) (string, error) {
	switch v := src.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("unsupported column type %T", src)
	}
}
