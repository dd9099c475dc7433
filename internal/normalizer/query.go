package normalizer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// decodeQuery reads a JSON object of query parameters, keeping key order.
// Each value may be a string or an array of strings. Values that are not
// strings are dropped and their keys reported in dropped.
func decodeQuery(raw json.RawMessage) (params []QueryParam, dropped []string, err error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("expected an object, got %v", tok)
	}

	positions := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected a key, got %v", tok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, nil, err
		}
		values, ok := queryValues(value)
		if !ok {
			dropped = append(dropped, key)
		}
		if len(values) == 0 {
			continue
		}

		// Later duplicates win, as they would for a plain JSON object.
		if i, seen := positions[key]; seen {
			params[i].Values = values
			continue
		}
		positions[key] = len(params)
		params = append(params, QueryParam{Key: key, Values: values})
	}

	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return params, dropped, nil
}

// queryValues converts one parameter value. ok is false when any part of
// the value had to be dropped.
func queryValues(raw json.RawMessage) (values []string, ok bool) {
	if s, isString := jsonString(raw); isString {
		return []string{s}, true
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, false
	}
	ok = true
	for _, item := range items {
		s, isString := jsonString(item)
		if !isString {
			ok = false
			continue
		}
		values = append(values, s)
	}
	return values, ok
}

func jsonString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// BuildQueryString joins params as key=value pairs in order, one pair per
// value. It returns "" when there is nothing to emit and otherwise a string
// starting with "?".
func BuildQueryString(params []QueryParam) string {
	var b strings.Builder
	for _, p := range params {
		for _, v := range p.Values {
			if b.Len() == 0 {
				b.WriteByte('?')
			} else {
				b.WriteByte('&')
			}
			b.WriteString(p.Key)
			b.WriteByte('=')
			b.WriteString(v)
		}
	}
	return b.String()
}

// rawQuery prefixes a pre-joined query string with "?" when it is not empty.
func rawQuery(q string) string {
	if q == "" {
		return ""
	}
	return "?" + q
}
