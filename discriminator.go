package hoist

import (
	"sort"
	"strings"

	"github.com/asyncapi-tools/hoist/internal/pathutil"
)

// discriminatorMappingExtensionKey is the extension key the normalizer
// moves object-form discriminator.mapping entries into (§4.4 Normalizer).
const discriminatorMappingExtensionKey = "x-discriminator-mapping"

var fileRefExtensions = map[string]bool{
	".yaml": true, ".yml": true, ".json": true,
}

// resolveDiscriminatorMappings runs the §4.4 Discriminator-Mapping
// Resolver to a fixpoint: every sweep may load additional files and
// register additional schemas, so it repeats until a full sweep rewrites
// nothing. It walks both doc itself and every schema already registered
// in reg.nameToSchema (mirroring computeAliases in alias.go), since a
// schema loaded on demand is registered directly into the registry
// without being spliced into doc and would otherwise never be visited.
// A parse or I/O error from an on-demand load fails the whole pass (§6, §7).
func resolveDiscriminatorMappings(doc map[string]any, reg *registry, ld *loader) error {
	for round := 0; round < maxFixpointRounds; round++ {
		changed := false
		var walkErr error

		documentWalk(doc, discriminatorMappingVisitor(reg, ld, &changed, &walkErr))
		if walkErr != nil {
			return walkErr
		}

		registryChanged, err := resolveRegisteredDiscriminatorMappings(reg, ld)
		if err != nil {
			return err
		}
		if registryChanged {
			changed = true
		}

		if !changed {
			return nil
		}
	}
	return nil
}

// resolveRegisteredDiscriminatorMappings applies the resolver to every
// schema currently in reg.nameToSchema, in name order, snapshotting the
// name set up front so a load triggered mid-loop is picked up by the next
// fixpoint round rather than mutating this loop's range.
func resolveRegisteredDiscriminatorMappings(reg *registry, ld *loader) (bool, error) {
	names := make([]string, 0, len(reg.nameToSchema))
	for name := range reg.nameToSchema {
		names = append(names, name)
	}
	sort.Strings(names)

	changed := false
	for _, name := range names {
		schema, ok := reg.nameToSchema[name]
		if !ok {
			continue
		}
		var walkErr error
		schemaWalk(schema, nodeSlot{}, nil, true, discriminatorMappingVisitor(reg, ld, &changed, &walkErr))
		if walkErr != nil {
			return changed, walkErr
		}
	}
	return changed, nil
}

// discriminatorMappingVisitor builds a schemaVisitor that resolves every
// file-like discriminator-mapping value it finds, recording whether
// anything changed and stopping the walk on the first hard failure.
func discriminatorMappingVisitor(reg *registry, ld *loader, changed *bool, errOut *error) schemaVisitor {
	return func(node map[string]any, slot nodeSlot, path []string, isRoot bool) bool {
		if *errOut != nil {
			return true
		}
		if isReferenceObject(node) {
			return false
		}
		origin, _ := stringField(node, "x-origin")
		rewrote, err := resolveSchemaDiscriminatorMapping(node, origin, reg, ld)
		if err != nil {
			*errOut = err
			return true
		}
		if rewrote {
			*changed = true
		}
		return false
	}
}

// resolveSchemaDiscriminatorMapping resolves every file-like mapping value
// found in node's discriminator.mapping and/or its extension-key mapping,
// rewriting each one it can resolve to a local component ref. Returns
// whether any value was rewritten or any schema newly registered.
func resolveSchemaDiscriminatorMapping(node map[string]any, origin string, reg *registry, ld *loader) (bool, error) {
	changed := false
	for _, mapping := range discriminatorMappings(node) {
		for key, val := range mapping {
			value, ok := val.(string)
			if !ok || !looksLikeFileRef(value) {
				continue
			}
			rewrote, err := resolveMappingValue(mapping, key, value, origin, reg, ld)
			if err != nil {
				return changed, err
			}
			if rewrote {
				changed = true
			}
		}
	}
	return changed, nil
}

func discriminatorMappings(node map[string]any) []map[string]any {
	var mappings []map[string]any
	if disc, ok := node["discriminator"].(map[string]any); ok {
		if m, ok := disc["mapping"].(map[string]any); ok {
			mappings = append(mappings, m)
		}
	}
	if m, ok := node[discriminatorMappingExtensionKey].(map[string]any); ok {
		mappings = append(mappings, m)
	}
	return mappings
}

func looksLikeFileRef(value string) bool {
	if pathutil.IsLocalRef(value) {
		return false
	}
	for ext := range fileRefExtensions {
		if strings.HasSuffix(strings.ToLower(value), ext) {
			return true
		}
	}
	return false
}

// resolveMappingValue implements §4.4 steps 1-4 for a single mapping
// entry. A failure to locate the target via the directory scan, or to
// parse/read it once found, fails the whole pass (§6, §7) rather than
// being swallowed as a soft failure — only "target not found at all" is
// soft (the mapping value is left untouched).
func resolveMappingValue(mapping map[string]any, key, value, schemaOrigin string, reg *registry, ld *loader) (bool, error) {
	if name, ok := resolveExternalRef(value, reg); ok {
		mapping[key] = pathutil.SchemaRef(name)
		return true, nil
	}

	resolved, found, err := ld.locate(value, schemaOrigin)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	if !reg.hasAttempted(resolved) {
		reg.markAttempted(resolved)
		if _, err := ld.loadAndRegister(resolved); err != nil {
			return false, err
		}
	}

	if name, ok := reg.nameByOrigin(resolved); ok {
		mapping[key] = pathutil.SchemaRef(name)
		return true, nil
	}
	return false, nil
}

// normalizeDiscriminators runs the §4.4 Normalizer: every object-form
// discriminator has its mapping merged into the extension key (object
// entries win on collision) and is then collapsed to its propertyName
// string, or deleted if none was given. It also normalizes every schema
// registered in reg.nameToSchema directly, since a schema loaded on
// demand is never spliced into doc (see resolveDiscriminatorMappings).
func normalizeDiscriminators(doc map[string]any, reg *registry) {
	documentWalk(doc, func(node map[string]any, slot nodeSlot, path []string, isRoot bool) bool {
		normalizeDiscriminator(node)
		return false
	})
	for _, schema := range reg.nameToSchema {
		schemaWalk(schema, nodeSlot{}, nil, true, func(node map[string]any, slot nodeSlot, path []string, isRoot bool) bool {
			normalizeDiscriminator(node)
			return false
		})
	}
}

func normalizeDiscriminator(node map[string]any) {
	disc, ok := node["discriminator"].(map[string]any)
	if !ok {
		return
	}

	if objMapping, ok := disc["mapping"].(map[string]any); ok {
		ext, ok := node[discriminatorMappingExtensionKey].(map[string]any)
		if !ok {
			ext = make(map[string]any, len(objMapping))
			node[discriminatorMappingExtensionKey] = ext
		}
		for k, v := range objMapping {
			ext[k] = v
		}
	}

	propertyName, _ := stringField(disc, "propertyName")
	if propertyName == "" {
		delete(node, "discriminator")
		return
	}
	node["discriminator"] = propertyName
}
