package hoist

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/asyncapi-tools/hoist/internal/pathutil"
)

// rewriteReferences runs the §4.3 Reference Rewriter: a second document
// walk that replaces every non-root occurrence of a registered schema, and
// every still-external $ref whose target is registered, with a local
// component reference.
func rewriteReferences(doc map[string]any, reg *registry) {
	documentWalk(doc, func(node map[string]any, slot nodeSlot, path []string, isRoot bool) bool {
		if isReferenceObject(node) {
			ref := node["$ref"].(string)
			if pathutil.IsLocalRef(ref) {
				return false
			}
			if name, ok := resolveExternalRef(ref, reg); ok {
				replaced := map[string]any{"$ref": pathutil.SchemaRef(name)}
				copyDescriptiveFields(node, replaced)
				slot.set(replaced)
				return true
			}
			return false
		}

		if name, ok := reg.nameByIdentity(node); ok && !isComponentSchemasPath(path) {
			replaced := map[string]any{"$ref": pathutil.SchemaRef(name)}
			copyDescriptiveFields(node, replaced)
			slot.set(replaced)
			return true
		}
		return false
	})
}

// resolveExternalRef looks up an external $ref target by exact origin,
// normalized origin, then unambiguous basename (§4.3, §4.4 step 1).
func resolveExternalRef(ref string, reg *registry) (string, bool) {
	if name, ok := reg.nameByOrigin(ref); ok {
		return name, true
	}
	if name, ok := reg.nameByOrigin(normalizePath(ref)); ok {
		return name, true
	}
	return reg.nameByBasename(filepath.Base(ref))
}

// normalizePath applies POSIX path normalization, matching the resolver's
// treatment of origin paths and $ref targets regardless of the separators
// the upstream bundler happened to emit.
func normalizePath(p string) string {
	return path.Clean(strings.ReplaceAll(p, `\`, "/"))
}

func copyDescriptiveFields(src, dst map[string]any) {
	if v, ok := src["description"]; ok {
		dst["description"] = v
	}
	if v, ok := src["summary"]; ok {
		dst["summary"] = v
	}
}
