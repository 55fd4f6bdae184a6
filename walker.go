package hoist

import (
	"sort"
	"strconv"
)

// nodeSlot is a mutable handle to a node's position inside its parent
// container (a mapping or a sequence), allowing a walker to replace the
// node in place regardless of which kind of container holds it.
type nodeSlot struct {
	mapParent   map[string]any
	mapKey      string
	sliceParent []any
	sliceIndex  int
	isMap       bool
}

func mapSlot(parent map[string]any, key string) nodeSlot {
	return nodeSlot{mapParent: parent, mapKey: key, isMap: true}
}

func sliceSlot(parent []any, index int) nodeSlot {
	return nodeSlot{sliceParent: parent, sliceIndex: index, isMap: false}
}

func (s nodeSlot) get() any {
	if s.isMap {
		return s.mapParent[s.mapKey]
	}
	return s.sliceParent[s.sliceIndex]
}

func (s nodeSlot) set(v any) {
	if s.isMap {
		s.mapParent[s.mapKey] = v
	} else {
		s.sliceParent[s.sliceIndex] = v
	}
}

// schemaVisitor is invoked by the schema walk at every schema-position
// node. Returning true skips descent into that node's children (§4.1).
type schemaVisitor func(node map[string]any, slot nodeSlot, path []string, isRoot bool) (skip bool)

// directSchemaKeywords have a value that is itself a schema (§4.1).
var directSchemaKeywords = map[string]bool{
	"schema": true, "payload": true, "headers": true,
	"items": true, "additionalItems": true, "contains": true,
	"additionalProperties": true, "propertyNames": true,
	"if": true, "then": true, "else": true, "not": true,
	"unevaluatedItems": true, "unevaluatedProperties": true,
}

// arraySchemaKeywords have a value that is a sequence of schemas (§4.1).
var arraySchemaKeywords = map[string]bool{
	"allOf": true, "anyOf": true, "oneOf": true, "prefixItems": true,
}

// mapSchemaKeywords have a value that is a mapping of schemas (§4.1).
var mapSchemaKeywords = map[string]bool{
	"properties": true, "patternProperties": true,
	"definitions": true, "$defs": true, "dependentSchemas": true,
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// schemaWalk descends a schema object according to the keyword rules of
// §4.1, invoking visit at every node reached. isRoot is true only for the
// node handed off directly by documentWalk; every node reached by
// recursion is non-root.
func schemaWalk(node map[string]any, slot nodeSlot, path []string, isRoot bool, visit schemaVisitor) {
	ancestors := make(map[uintptr]bool)
	schemaWalkRec(node, slot, path, isRoot, ancestors, visit)
}

func schemaWalkRec(node map[string]any, slot nodeSlot, path []string, isRoot bool, ancestors map[uintptr]bool, visit schemaVisitor) {
	ptr := mapIdentity(node)
	if ancestors[ptr] {
		return
	}
	ancestors[ptr] = true
	defer delete(ancestors, ptr)

	if visit(node, slot, path, isRoot) {
		return
	}

	for _, k := range sortedKeys(node) {
		val := node[k]
		childPath := append(path, k) //nolint:gocritic // intentional sibling reuse, see walker design note
		switch {
		case directSchemaKeywords[k]:
			if vm, ok := val.(map[string]any); ok {
				schemaWalkRec(vm, mapSlot(node, k), childPath, false, ancestors, visit)
			}
		case arraySchemaKeywords[k]:
			if arr, ok := val.([]any); ok {
				for i := range arr {
					if sm, ok := arr[i].(map[string]any); ok {
						schemaWalkRec(sm, sliceSlot(arr, i), append(childPath, indexSegment(i)), false, ancestors, visit)
					}
				}
			}
		case mapSchemaKeywords[k]:
			if mm, ok := val.(map[string]any); ok {
				for _, name := range sortedKeys(mm) {
					if sm, ok := mm[name].(map[string]any); ok {
						schemaWalkRec(sm, mapSlot(mm, name), append(childPath, name), false, ancestors, visit)
					}
				}
			}
		case k == "dependencies":
			if mm, ok := val.(map[string]any); ok {
				for _, name := range sortedKeys(mm) {
					if sm, ok := mm[name].(map[string]any); ok {
						schemaWalkRec(sm, mapSlot(mm, name), append(childPath, name), false, ancestors, visit)
					}
					// boolean entries carry no schema to descend into.
				}
			}
		}
	}
}

func indexSegment(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}

// documentWalk descends the whole document looking for schema entry
// points (§4.1) and hands each one to schemaWalk. It does not itself
// descend into schema contents.
func documentWalk(doc map[string]any, visit schemaVisitor) {
	ancestors := make(map[uintptr]bool)
	documentWalkRec(doc, nil, ancestors, visit)
}

func documentWalkRec(node any, path []string, ancestors map[uintptr]bool, visit schemaVisitor) {
	switch v := node.(type) {
	case map[string]any:
		ptr := mapIdentity(v)
		if ancestors[ptr] {
			return
		}
		ancestors[ptr] = true
		defer delete(ancestors, ptr)

		for _, k := range sortedKeys(v) {
			val := v[k]
			childPath := append(path, k) //nolint:gocritic // intentional sibling reuse, see walker design note

			if k == "schemas" && isComponentsPath(path) {
				if schemas, ok := val.(map[string]any); ok {
					for _, name := range sortedKeys(schemas) {
						if sm, ok := schemas[name].(map[string]any); ok {
							schemaWalk(sm, mapSlot(schemas, name), append(childPath, name), true, visit)
						}
					}
				}
				continue
			}
			if k == "schema" || ((k == "payload" || k == "headers") && !containsSegment(path, "examples")) {
				if sm, ok := val.(map[string]any); ok {
					schemaWalk(sm, mapSlot(v, k), childPath, true, visit)
				}
				continue
			}
			documentWalkRec(val, childPath, ancestors, visit)
		}

	case []any:
		for i, item := range v {
			documentWalkRec(item, append(path, indexSegment(i)), ancestors, visit) //nolint:gocritic
		}
	}
}

func isComponentsPath(path []string) bool {
	return len(path) == 1 && path[0] == "components"
}

func containsSegment(path []string, seg string) bool {
	for _, p := range path {
		if p == seg {
			return true
		}
	}
	return false
}
