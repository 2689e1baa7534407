// Package fingerprint derives a content-addressed identity for a selection
// decision, so two audit records can be compared for drift by digest alone.
//
// Records are flat maps of string/integer/bool fields. Serialization is
// canonical: keys sorted, string values NFC-normalized, no HTML escaping,
// no floats, no null. Field keys are lowercase ASCII, which keeps byte-wise
// key ordering equivalent to code-unit ordering.
package fingerprint

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// Record is a flat set of decision fields to fingerprint.
// Supported value types: string, int, int64, uint64, bool.
type Record map[string]any

// Sum returns the lowercase hex SHA-256 of the record's canonical form.
func Sum(r Record) (string, error) {
	data, err := Canonical(r)
	if err != nil {
		return "", err
	}
	digest := sha256.Sum256(data)
	return hex.EncodeToString(digest[:]), nil
}

// Canonical serializes the record deterministically.
// Same record always yields identical bytes; unsupported types error out
// rather than silently destabilizing the digest.
func Canonical(r Record) ([]byte, error) {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := marshalString(k)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')

		vb, err := marshalValue(r[k])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalValue(v any) ([]byte, error) {
	switch val := v.(type) {
	case string:
		return marshalString(val)
	case int:
		return []byte(strconv.FormatInt(int64(val), 10)), nil
	case int64:
		return []byte(strconv.FormatInt(val, 10)), nil
	case uint64:
		return []byte(strconv.FormatUint(val, 10)), nil
	case bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case nil:
		return nil, fmt.Errorf("null is forbidden in canonical records")
	case float32, float64:
		return nil, fmt.Errorf("floats are forbidden in canonical records: %v", val)
	default:
		return nil, fmt.Errorf("unsupported type %T", v)
	}
}

// marshalString encodes with NFC normalization and HTML escaping disabled
// (< > & stay literal; reason strings carry comparison operators).
func marshalString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}

	// json.Encoder appends a trailing newline, drop it
	out := buf.Bytes()
	if n := len(out); n > 0 && out[n-1] == '\n' {
		out = out[:n-1]
	}
	return out, nil
}
