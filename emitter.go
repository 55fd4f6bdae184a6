package hoist

import "github.com/asyncapi-tools/hoist/internal/pathutil"

// emit runs the §4.6 Emitter: it rebuilds document.components.schemas as
// the union of the pre-existing entries (in sorted key order) and the
// newly registered names (registration order), root-cloning each one with
// nested registered schemas replaced by local references. Finally it
// strips x-origin from the whole document.
func emit(doc map[string]any, reg *registry) {
	names := emittedNames(doc, reg)

	schemas := make(map[string]any, len(names))
	for _, name := range names {
		schema, ok := reg.schemaByName(name)
		if !ok {
			continue
		}
		if isReferenceObject(schema) {
			schemas[name] = cloneReferenceObject(schema, reg)
			continue
		}
		schemas[name] = rootClone(schema, reg)
	}

	setComponentSchemas(doc, schemas)
	stripOrigins(doc)
}

// emittedNames returns the names to materialize: pre-existing
// components.schemas keys first (sorted, since the input map carries no
// key order), then any newly registered name not already among them (in
// registration order).
func emittedNames(doc map[string]any, reg *registry) []string {
	var names []string
	seen := make(map[string]bool)

	if existing, ok := componentSchemas(doc); ok {
		for _, name := range sortedKeys(existing) {
			if _, ok := reg.schemaByName(name); ok && !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	for _, name := range reg.registrationOrder {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

func setComponentSchemas(doc map[string]any, schemas map[string]any) {
	comps, ok := doc["components"].(map[string]any)
	if !ok {
		comps = make(map[string]any)
		doc["components"] = comps
	}
	comps["schemas"] = schemas
}

func cloneReferenceObject(ref map[string]any, reg *registry) map[string]any {
	target, _ := stringField(ref, "$ref")
	if name, ok := resolveExternalRef(target, reg); ok && !pathutil.IsLocalRef(target) {
		out := map[string]any{"$ref": pathutil.SchemaRef(name)}
		copyDescriptiveFields(ref, out)
		return out
	}
	out := make(map[string]any, len(ref))
	for k, v := range ref {
		out[k] = v
	}
	return out
}

// cloneMemo tracks in-progress and completed clones within one rootClone
// invocation, keyed by source node identity, so shared subtrees are
// cloned once and cycles terminate.
type cloneMemo map[uintptr]any

// cyclePlaceholder marks a node whose clone is still in progress; a
// re-entrant reference to it becomes a self-referential local ref.
type cyclePlaceholder struct {
	name string
}

// rootClone materializes root in full: the top level is never replaced by
// a reference to itself, but every nested schema-position node whose
// identity is registered becomes a local reference (§4.6).
func rootClone(root map[string]any, reg *registry) map[string]any {
	memo := make(cloneMemo)
	return cloneSchemaNode(root, reg, memo, true).(map[string]any)
}

func cloneSchemaNode(node map[string]any, reg *registry, memo cloneMemo, isRoot bool) any {
	if !isRoot {
		if name, ok := reg.nameByIdentity(node); ok {
			ref := map[string]any{"$ref": pathutil.SchemaRef(name)}
			copyDescriptiveFields(node, ref)
			return ref
		}
	}

	identity := mapIdentity(node)
	if v, ok := memo[identity]; ok {
		if placeholder, ok := v.(cyclePlaceholder); ok {
			ref := map[string]any{"$ref": pathutil.SchemaRef(placeholder.name)}
			copyDescriptiveFields(node, ref)
			return ref
		}
		return v
	}

	name, _ := reg.nameByIdentity(node)
	memo[identity] = cyclePlaceholder{name: name}

	clone := make(map[string]any, len(node))
	memo[identity] = clone
	for _, k := range sortedKeys(node) {
		clone[k] = cloneValue(node[k], k, reg, memo)
	}
	return clone
}

// cloneValue deep-copies val, descending into schema-position children per
// the schema-walker keyword rules and cloning every other value verbatim.
func cloneValue(val any, key string, reg *registry, memo cloneMemo) any {
	switch {
	case directSchemaKeywords[key]:
		if m, ok := val.(map[string]any); ok {
			return cloneSchemaNode(m, reg, memo, false)
		}
	case arraySchemaKeywords[key]:
		if arr, ok := val.([]any); ok {
			out := make([]any, len(arr))
			for i, item := range arr {
				if m, ok := item.(map[string]any); ok {
					out[i] = cloneSchemaNode(m, reg, memo, false)
				} else {
					out[i] = deepCopyValue(item, memo)
				}
			}
			return out
		}
	case mapSchemaKeywords[key]:
		if m, ok := val.(map[string]any); ok {
			out := make(map[string]any, len(m))
			for k, v := range m {
				if sm, ok := v.(map[string]any); ok {
					out[k] = cloneSchemaNode(sm, reg, memo, false)
				} else {
					out[k] = deepCopyValue(v, memo)
				}
			}
			return out
		}
	case key == "dependencies":
		if m, ok := val.(map[string]any); ok {
			out := make(map[string]any, len(m))
			for k, v := range m {
				if sm, ok := v.(map[string]any); ok {
					out[k] = cloneSchemaNode(sm, reg, memo, false)
				} else {
					out[k] = v
				}
			}
			return out
		}
	}
	return deepCopyValue(val, memo)
}

// deepCopyValue copies val verbatim, preserving shared-subtree identity
// via memo and terminating on cycles the same way cloneSchemaNode does.
func deepCopyValue(val any, memo cloneMemo) any {
	switch v := val.(type) {
	case map[string]any:
		identity := mapIdentity(v)
		if existing, ok := memo[identity]; ok {
			if _, cycling := existing.(cyclePlaceholder); cycling {
				return map[string]any{}
			}
			return existing
		}
		memo[identity] = cyclePlaceholder{}
		out := make(map[string]any, len(v))
		memo[identity] = out
		for k, item := range v {
			out[k] = deepCopyValue(item, memo)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = deepCopyValue(item, memo)
		}
		return out
	default:
		return v
	}
}

// stripOrigins removes the x-origin bookkeeping attribute from every
// mapping in the document, guarded against cycles.
func stripOrigins(doc map[string]any) {
	stripOriginsRec(doc, map[uintptr]bool{})
}

func stripOriginsRec(node any, ancestors map[uintptr]bool) {
	switch v := node.(type) {
	case map[string]any:
		ptr := mapIdentity(v)
		if ancestors[ptr] {
			return
		}
		ancestors[ptr] = true
		defer delete(ancestors, ptr)

		delete(v, "x-origin")
		for _, val := range v {
			stripOriginsRec(val, ancestors)
		}
	case []any:
		for _, item := range v {
			stripOriginsRec(item, ancestors)
		}
	}
}
