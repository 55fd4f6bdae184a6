package hoist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprintOrderIndependent(t *testing.T) {
	a := map[string]any{"type": "object", "properties": map[string]any{"name": map[string]any{"type": "string"}}}
	b := map[string]any{"properties": map[string]any{"name": map[string]any{"type": "string"}}, "type": "object"}

	assert.Equal(t, fingerprint(a), fingerprint(b))
}

func TestFingerprintIgnoresExcludedKeys(t *testing.T) {
	a := map[string]any{"type": "string"}
	b := map[string]any{"type": "string", "x-origin": "schemas/Status.yaml", "description": "the status", "summary": "status"}

	assert.Equal(t, fingerprint(a), fingerprint(b))
}

func TestFingerprintDistinguishesDifferentSchemas(t *testing.T) {
	a := map[string]any{"type": "string"}
	b := map[string]any{"type": "integer"}

	assert.NotEqual(t, fingerprint(a), fingerprint(b))
}

func TestFingerprintHandlesCycles(t *testing.T) {
	node := map[string]any{"type": "object"}
	node["properties"] = map[string]any{"self": node}

	assert.NotPanics(t, func() {
		fingerprint(node)
	})
}

func TestFingerprintArraysArePositionSensitive(t *testing.T) {
	a := map[string]any{"enum": []any{"a", "b"}}
	b := map[string]any{"enum": []any{"b", "a"}}

	assert.NotEqual(t, fingerprint(a), fingerprint(b))
}

func TestMapIdentityStableForSameMap(t *testing.T) {
	m := map[string]any{"type": "object"}
	assert.Equal(t, mapIdentity(m), mapIdentity(m))
}

func TestMapIdentityDiffersForDistinctMaps(t *testing.T) {
	a := map[string]any{"type": "object"}
	b := map[string]any{"type": "object"}
	assert.NotEqual(t, mapIdentity(a), mapIdentity(b))
}
