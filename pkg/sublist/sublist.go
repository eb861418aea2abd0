// Package sublist encodes and decodes the list-of-record fields embedded in
// project rows (items, workers, taken_by_worker, returned_by_worker).
//
// Decoding is tolerant: an empty cell is an empty list, a single object is a
// one-element list, non-object elements are dropped, and anything that is not
// JSON yields an empty list together with an error the caller may log.
// Encoding is canonical: compact JSON, no HTML escaping, "[]" for nothing.
package sublist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Entry is one decoded record of an embedded list.
type Entry map[string]any

func Decode(raw string) ([]Entry, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return []Entry{}, nil
	}

	var v any
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return []Entry{}, fmt.Errorf("malformed embedded list: %w", err)
	}

	switch t := v.(type) {
	case map[string]any:
		return []Entry{t}, nil
	case []any:
		entries := make([]Entry, 0, len(t))
		for _, el := range t {
			if m, ok := el.(map[string]any); ok {
				entries = append(entries, m)
			}
		}
		return entries, nil
	case nil:
		return []Entry{}, nil
	default:
		return []Entry{}, fmt.Errorf("embedded list is a %T, not a list", v)
	}
}

// Encode renders v as canonical JSON.
func Encode(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("encode embedded list: %w", err)
	}
	out := strings.TrimRight(buf.String(), "\n")
	if out == "null" {
		return "[]", nil
	}
	return out, nil
}

// String returns a trimmed text value; numbers are rendered without exponent.
func (e Entry) String(key string) string {
	switch v := e[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// Int reads a quantity the way it was typed: 3, "3", "3.0" all give 3.
func (e Entry) Int(key string, def int) int {
	switch v := e[key].(type) {
	case nil:
		return def
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
		if f, err := v.Float64(); err == nil {
			return int(f)
		}
		return def
	case float64:
		return int(v)
	case int:
		return v
	case string:
		s := strings.TrimSpace(v)
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f)
		}
		return def
	default:
		return def
	}
}
