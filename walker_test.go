package hoist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaWalkVisitsKeywordChildren(t *testing.T) {
	root := map[string]any{
		"properties": map[string]any{
			"owner": map[string]any{"type": "string"},
		},
		"allOf": []any{
			map[string]any{"type": "object"},
		},
	}

	var visited []string
	schemaWalk(root, nodeSlot{}, nil, true, func(node map[string]any, slot nodeSlot, path []string, isRoot bool) bool {
		visited = append(visited, joinPath(path))
		return false
	})

	assert.Contains(t, visited, "")
	assert.Contains(t, visited, "properties/owner")
	assert.Contains(t, visited, "allOf/[0]")
}

func TestSchemaWalkStopsOnCycle(t *testing.T) {
	a := map[string]any{}
	a["properties"] = map[string]any{"self": a}

	calls := 0
	schemaWalk(a, nodeSlot{}, nil, true, func(node map[string]any, slot nodeSlot, path []string, isRoot bool) bool {
		calls++
		return false
	})

	assert.Equal(t, 1, calls, "a cyclic schema must be visited once, not infinitely")
}

func TestSchemaWalkSkipsDescentWhenVisitorReturnsTrue(t *testing.T) {
	root := map[string]any{
		"properties": map[string]any{
			"child": map[string]any{"type": "string"},
		},
	}

	var visited []string
	schemaWalk(root, nodeSlot{}, nil, true, func(node map[string]any, slot nodeSlot, path []string, isRoot bool) bool {
		visited = append(visited, joinPath(path))
		return true
	})

	assert.Equal(t, []string{""}, visited)
}

func TestSchemaWalkDependenciesSkipsBooleanEntries(t *testing.T) {
	root := map[string]any{
		"dependencies": map[string]any{
			"bill": true,
			"card": map[string]any{"type": "object"},
		},
	}

	var visited []string
	schemaWalk(root, nodeSlot{}, nil, true, func(node map[string]any, slot nodeSlot, path []string, isRoot bool) bool {
		visited = append(visited, joinPath(path))
		return false
	})

	assert.Contains(t, visited, "dependencies/card")
	assert.NotContains(t, visited, "dependencies/bill")
}

func TestDocumentWalkFindsComponentsSchemas(t *testing.T) {
	doc := map[string]any{
		"components": map[string]any{
			"schemas": map[string]any{
				"Pet": map[string]any{"type": "object"},
			},
		},
	}

	var found []map[string]any
	documentWalk(doc, func(node map[string]any, slot nodeSlot, path []string, isRoot bool) bool {
		found = append(found, node)
		require.True(t, isRoot)
		return false
	})

	require.Len(t, found, 1)
	assert.Equal(t, "object", found[0]["type"])
}

func TestDocumentWalkSkipsPayloadInsideExamples(t *testing.T) {
	doc := map[string]any{
		"channels": map[string]any{
			"pet": map[string]any{
				"messages": map[string]any{
					"petCreated": map[string]any{
						"payload": map[string]any{"type": "object"},
						"examples": []any{
							map[string]any{
								"payload": map[string]any{"foo": "bar"},
							},
						},
					},
				},
			},
		},
	}

	count := 0
	documentWalk(doc, func(node map[string]any, slot nodeSlot, path []string, isRoot bool) bool {
		count++
		return false
	})

	assert.Equal(t, 1, count, "the example's payload must not be treated as a schema entry point")
}

func TestNodeSlotSetReplacesInMap(t *testing.T) {
	parent := map[string]any{"schema": map[string]any{"type": "string"}}
	slot := mapSlot(parent, "schema")
	slot.set(map[string]any{"$ref": "#/components/schemas/Pet"})
	assert.Equal(t, map[string]any{"$ref": "#/components/schemas/Pet"}, parent["schema"])
}

func TestNodeSlotSetReplacesInSlice(t *testing.T) {
	parent := []any{map[string]any{"type": "string"}}
	slot := sliceSlot(parent, 0)
	slot.set(map[string]any{"$ref": "#/components/schemas/Pet"})
	assert.Equal(t, map[string]any{"$ref": "#/components/schemas/Pet"}, parent[0])
}

func joinPath(path []string) string {
	out := ""
	for i, p := range path {
		if i > 0 {
			out += "/"
		}
		out += p
	}
	return out
}
