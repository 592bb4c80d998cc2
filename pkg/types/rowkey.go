package types

import (
	"bytes"
	"encoding/json"
	"sort"
)

// RowKey is the structural identity of a logical row, derived from one or
// more named column values. It identifies a row across two result sets, or
// across a base result set and a pending edit.
//
// Two RowKeys are equal iff their column sets are equal and every value
// pair is deep-equal.
type RowKey map[string]Value

// Equal reports structural equality of two keys.
func (k RowKey) Equal(o RowKey) bool {
	if len(k) != len(o) {
		return false
	}
	for name, v := range k {
		ov, ok := o[name]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Fingerprint returns a canonical string encoding of the key, usable as a
// Go map key. Keys that are Equal always produce the same fingerprint.
func (k RowKey) Fingerprint() string {
	names := make([]string, 0, len(k))
	for name := range k {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range names {
		if i > 0 {
			buf.WriteByte(',')
		}
		nb, _ := json.Marshal(name)
		buf.Write(nb)
		buf.WriteByte(':')
		buf.Write(k[name].canonical())
	}
	buf.WriteByte('}')
	return buf.String()
}

// Clone returns an independent copy of the key.
func (k RowKey) Clone() RowKey {
	out := make(RowKey, len(k))
	for name, v := range k {
		out[name] = v
	}
	return out
}
