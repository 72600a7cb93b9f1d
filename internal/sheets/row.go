// Package sheets fetches rows from a spreadsheet-backed lookup API and
// matches them against vehicle make and model.
package sheets

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Field is one key/value pair of a row, kept in API order.
type Field struct {
	Key   string
	Value string
}

// Row is one record returned by the sheet API. Field order follows the
// response so placeholder replacement is deterministic.
type Row struct {
	Fields []Field
}

// Get returns the value of key, or "" when absent.
func (r Row) Get(key string) string {
	for _, f := range r.Fields {
		if f.Key == key {
			return f.Value
		}
	}
	return ""
}

// Matches reports whether the row is an enabled, active entry for make and model.
func (r Row) Matches(makeName, model string) bool {
	return r.Get("Make") == makeName &&
		r.Get("Model") == model &&
		r.Get("Expired") == "Active" &&
		r.Get("Status") == "Enabled"
}

// UnmarshalJSON decodes a flat JSON object. Non-string scalars are
// formatted the way a browser would stringify them.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("sheet row: expected object, got %v", tok)
	}

	r.Fields = r.Fields[:0]
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("sheet row field %q: %w", key, err)
		}
		r.Fields = append(r.Fields, Field{Key: key, Value: stringify(raw)})
	}
	_, err = dec.Token()
	return err
}

func stringify(raw json.RawMessage) string {
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return string(raw)
	}
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	default:
		return string(raw)
	}
}

// FindMatch returns the first row matching make and model.
func FindMatch(rows []Row, makeName, model string) (Row, bool) {
	for _, r := range rows {
		if r.Matches(makeName, model) {
			return r, true
		}
	}
	return Row{}, false
}
