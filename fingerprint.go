package hoist

import (
	"encoding/json"
	"reflect"
	"sort"
	"strings"
)

// fingerprintExcludedKeys lists the mapping keys the fingerprint
// serialization ignores, per §3: x-origin is engine bookkeeping and
// description/summary are documentation that does not affect schema
// equivalence.
var fingerprintExcludedKeys = map[string]bool{
	"x-origin":    true,
	"description": true,
	"summary":     true,
}

// fingerprint produces a deterministic, cycle-safe, order-independent
// serialization of a schema, used as the equivalence key for deduplication
// (§3 "Fingerprint"). Two schemas are equivalent iff fingerprint(a) ==
// fingerprint(b).
func fingerprint(node any) string {
	var b strings.Builder
	writeFingerprint(&b, node, map[uintptr]bool{})
	return b.String()
}

func writeFingerprint(b *strings.Builder, node any, ancestors map[uintptr]bool) {
	switch v := node.(type) {
	case map[string]any:
		ptr := mapIdentity(v)
		if ancestors[ptr] {
			b.WriteString(`{"$cycle":true}`)
			return
		}
		ancestors[ptr] = true
		defer delete(ancestors, ptr)

		keys := make([]string, 0, len(v))
		for k := range v {
			if fingerprintExcludedKeys[k] {
				continue
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteByte('{')
		for _, k := range keys {
			writeCanonicalScalar(b, k)
			b.WriteByte(':')
			writeFingerprint(b, v[k], ancestors)
		}
		b.WriteByte('}')

	case []any:
		b.WriteByte('[')
		for _, item := range v {
			writeFingerprint(b, item, ancestors)
		}
		b.WriteByte(']')

	default:
		writeCanonicalScalar(b, v)
	}
}

// writeCanonicalScalar writes the canonical JSON representation of a
// scalar value (string, number, boolean, or null).
func writeCanonicalScalar(b *strings.Builder, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		// Not expected for document scalars; fall back to a quoted
		// string form so the fingerprint stays deterministic.
		data, _ = json.Marshal(formatScalarFallback(v))
	}
	b.Write(data)
}

func formatScalarFallback(v any) string {
	if v == nil {
		return "null"
	}
	return "" // unreachable in practice; json.Marshal handles all document scalar kinds
}

// mapIdentity returns a stable identity for a mapping node, used by every
// cycle-guarded traversal in this package (fingerprinting, schema walking,
// emitter cloning, x-origin stripping). Go maps are reference types: this
// returns the pointer to the underlying runtime hash map, which stays
// constant across every value that shares the same map (this is exactly
// what "object identity" means for a document modeled as map[string]any).
func mapIdentity(m map[string]any) uintptr {
	return reflect.ValueOf(m).Pointer()
}
