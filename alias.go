package hoist

import (
	"sort"
	"strings"

	"github.com/asyncapi-tools/hoist/internal/naming"
	"github.com/asyncapi-tools/hoist/internal/pathutil"
)

// consolidateAliases runs the §4.5 Alias Consolidator to a fixpoint:
// schemas with the same normalized base name and the same fingerprint are
// merged under one canonical name, every reference to a non-canonical
// name is rewritten, and the registry is rebuilt. Repeats because merging
// can expose further equivalences (e.g. two parents that each referenced
// a different duplicate of the same schema become identical themselves).
func consolidateAliases(doc map[string]any, reg *registry) int {
	merged := 0
	for round := 0; round < maxFixpointRounds; round++ {
		aliases := computeAliases(reg)
		if len(aliases) == 0 {
			return merged
		}
		merged += len(aliases)
		applyAliases(doc, reg, aliases)
	}
	return merged
}

// computeAliases groups registered schemas by (normalizedBaseName,
// fingerprint) and returns a nonCanonical -> canonical map for every group
// with more than one member.
func computeAliases(reg *registry) map[string]string {
	type group struct {
		names []string
	}
	groups := make(map[string]*group)

	for name, schema := range reg.nameToSchema {
		key := normalizedGroupKey(name, schema)
		g, ok := groups[key]
		if !ok {
			g = &group{}
			groups[key] = g
		}
		g.names = append(g.names, name)
	}

	aliases := make(map[string]string)
	for _, g := range groups {
		if len(g.names) < 2 {
			continue
		}
		canonical := chooseCanonical(g.names)
		for _, name := range g.names {
			if name != canonical {
				aliases[name] = canonical
			}
		}
	}
	return aliases
}

func normalizedGroupKey(name string, schema map[string]any) string {
	return normalizedBaseName(name) + "::" + fingerprint(schema)
}

// normalizedBaseName strips a trailing "_<digits>" disambiguation suffix
// (the kind allocateName mints on a name collision) after sanitizing, so
// that "Pet" and "Pet_2" group together when they also share a
// fingerprint (§4.5).
func normalizedBaseName(name string) string {
	safe := naming.SanitizeComponentName(name)
	idx := strings.LastIndexByte(safe, '_')
	if idx < 0 || idx == len(safe)-1 {
		return safe
	}
	suffix := safe[idx+1:]
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return safe
		}
	}
	return safe[:idx]
}

// chooseCanonical picks the canonical name per §4.5: prefer no trailing
// "_<digits>" suffix, then the shorter name, then codepoint-lexicographic
// order.
func chooseCanonical(names []string) string {
	best := names[0]
	for _, name := range names[1:] {
		if isBetterCanonical(name, best) {
			best = name
		}
	}
	return best
}

func isBetterCanonical(candidate, current string) bool {
	cSuffixed := hasNumericSuffix(candidate)
	curSuffixed := hasNumericSuffix(current)
	if cSuffixed != curSuffixed {
		return !cSuffixed
	}
	if len(candidate) != len(current) {
		return len(candidate) < len(current)
	}
	return candidate < current
}

func hasNumericSuffix(name string) bool {
	idx := strings.LastIndexByte(name, '_')
	if idx < 0 || idx == len(name)-1 {
		return false
	}
	suffix := name[idx+1:]
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// applyAliases rewrites every $ref and extension discriminator-mapping
// value naming an alias, then rebuilds the registry to reflect the
// surviving canonical names.
func applyAliases(doc map[string]any, reg *registry, aliases map[string]string) {
	rewriteAliasedRefs(doc, aliases)
	rebuildRegistry(reg, aliases)
}

func rewriteAliasedRefs(doc map[string]any, aliases map[string]string) {
	documentWalk(doc, func(node map[string]any, slot nodeSlot, path []string, isRoot bool) bool {
		if isReferenceObject(node) {
			rewriteRefIfAliased(node, "$ref", aliases)
			return false
		}
		if m, ok := node[discriminatorMappingExtensionKey].(map[string]any); ok {
			for key := range m {
				rewriteRefIfAliased(m, key, aliases)
			}
		}
		return false
	})
}

func rewriteRefIfAliased(m map[string]any, key string, aliases map[string]string) {
	ref, ok := m[key].(string)
	if !ok || !strings.HasPrefix(ref, pathutil.RefPrefixSchemas) {
		return
	}
	name := strings.TrimPrefix(ref, pathutil.RefPrefixSchemas)
	if canonical, ok := aliases[name]; ok {
		m[key] = pathutil.SchemaRef(canonical)
	}
}

// rebuildRegistry removes alias entries from name->schema and recomputes
// every derived index from scratch (§4.5).
func rebuildRegistry(reg *registry, aliases map[string]string) {
	names := make([]string, 0, len(reg.nameToSchema))
	for name := range reg.nameToSchema {
		if _, isAlias := aliases[name]; !isAlias {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	schemas := make(map[string]map[string]any, len(names))
	for _, name := range names {
		schemas[name] = reg.nameToSchema[name]
	}

	order := make([]string, 0, len(reg.registrationOrder))
	seen := make(map[string]bool, len(reg.registrationOrder))
	for _, name := range reg.registrationOrder {
		canonical := name
		if c, ok := aliases[name]; ok {
			canonical = c
		}
		if !seen[canonical] {
			seen[canonical] = true
			order = append(order, canonical)
		}
	}

	originToName := reg.originToName

	reg.nameToSchema = schemas
	reg.registrationOrder = order
	reg.signatureToName = make(map[string]string, len(schemas))
	reg.objectToName = make(map[uintptr]string, len(schemas))
	reg.originToName = make(map[string]string, len(originToName))
	reg.basenameToName = make(map[string]string, len(reg.basenameToName))
	reg.ambiguousBasenames = make(map[string]bool)

	for name, schema := range schemas {
		identity := mapIdentity(schema)
		reg.objectToName[identity] = name
		reg.signatureToName[normalizedBaseName(name)+"::"+fingerprint(schema)] = name
	}

	for origin, name := range originToName {
		canonical := name
		if c, ok := aliases[name]; ok {
			canonical = c
		}
		reg.originToName[origin] = canonical
		reg.indexBasename(origin, canonical)
	}
}
