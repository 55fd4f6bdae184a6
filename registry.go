package hoist

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/asyncapi-tools/hoist/internal/naming"
)

// registry is the component registry described in §3: it tracks every
// schema encountered during a single Run, keyed four different ways so
// that later passes can answer "have I seen this exact object", "have I
// seen this exact origin", "have I seen an equivalent schema under this
// base name", and "is this basename ambiguous across origins".
type registry struct {
	objectToName       map[uintptr]string
	nameToSchema       map[string]map[string]any
	signatureToName    map[string]string
	originToName       map[string]string
	basenameToName     map[string]string
	ambiguousBasenames map[string]bool
	attemptedLoads     map[string]bool
	fileSearchCache    map[string][]string

	// registrationOrder records names in the order they were first
	// assigned a new schema (as opposed to aliasing an existing one),
	// used by the emitter (§4.6) to append newly registered schemas
	// after the document's pre-existing components.schemas entries.
	registrationOrder []string
}

func newRegistry() *registry {
	return &registry{
		objectToName:       make(map[uintptr]string),
		nameToSchema:       make(map[string]map[string]any),
		signatureToName:    make(map[string]string),
		originToName:       make(map[string]string),
		basenameToName:     make(map[string]string),
		ambiguousBasenames: make(map[string]bool),
		attemptedLoads:     make(map[string]bool),
		fileSearchCache:    make(map[string][]string),
	}
}

// registerSchema implements the §4.2 registration algorithm. originPath is
// the schema's x-origin, or "" if the schema has none.
func (r *registry) registerSchema(schema map[string]any, suggestedName, originPath string) string {
	identity := mapIdentity(schema)

	if name, ok := r.objectToName[identity]; ok {
		return name
	}

	if originPath != "" {
		if name, ok := r.originToName[originPath]; ok {
			r.objectToName[identity] = name
			return name
		}
	}

	safeName := naming.SanitizeComponentName(suggestedName)
	signature := normalizedBaseName(safeName) + "::" + fingerprint(schema)
	if name, ok := r.signatureToName[signature]; ok {
		r.objectToName[identity] = name
		if originPath != "" {
			r.originToName[originPath] = name
			r.indexBasename(originPath, name)
		}
		return name
	}

	name := r.allocateName(safeName, identity)
	r.nameToSchema[name] = schema
	r.registrationOrder = append(r.registrationOrder, name)
	r.objectToName[identity] = name
	r.signatureToName[signature] = name
	if originPath != "" {
		r.originToName[originPath] = name
		r.indexBasename(originPath, name)
	}
	return name
}

// preseedName records name as already present in the document's
// components.schemas before any collection begins (§4.2), so that a
// later registerSchema call for the same object, the same origin or an
// equivalent schema reuses it rather than minting a suffix. An external
// x-origin on schema is indexed by origin and basename.
func (r *registry) preseedName(name string, schema map[string]any) {
	identity := mapIdentity(schema)
	r.nameToSchema[name] = schema
	r.objectToName[identity] = name
	r.signatureToName[normalizedBaseName(name)+"::"+fingerprint(schema)] = name
	if origin, ok := stringField(schema, "x-origin"); ok && !isLocalRefOrigin(origin) {
		r.originToName[origin] = name
		r.indexBasename(origin, name)
	}
}

func (r *registry) allocateName(safeName string, identity uintptr) string {
	if existing, ok := r.nameToSchema[safeName]; !ok || mapIdentity(existing) == identity {
		return safeName
	}
	for k := 2; ; k++ {
		candidate := safeName + "_" + strconv.Itoa(k)
		existing, ok := r.nameToSchema[candidate]
		if !ok || mapIdentity(existing) == identity {
			return candidate
		}
	}
}

func (r *registry) indexBasename(originPath, name string) {
	if isLocalRefOrigin(originPath) {
		return
	}
	base := filepath.Base(originPath)
	if existing, ok := r.basenameToName[base]; ok {
		if existing != name {
			r.ambiguousBasenames[base] = true
		}
		return
	}
	r.basenameToName[base] = name
}

func isLocalRefOrigin(origin string) bool {
	return strings.HasPrefix(origin, "#")
}

func (r *registry) schemaByName(name string) (map[string]any, bool) {
	s, ok := r.nameToSchema[name]
	return s, ok
}

func (r *registry) nameByIdentity(schema map[string]any) (string, bool) {
	name, ok := r.objectToName[mapIdentity(schema)]
	return name, ok
}

func (r *registry) nameByOrigin(origin string) (string, bool) {
	name, ok := r.originToName[origin]
	return name, ok
}

// nameByBasename returns the registered name for base, but only if base is
// unambiguous (every origin ending in that basename resolved to the same
// name). Ambiguous basenames must not be used for reference resolution
// (§4.3, §4.4).
func (r *registry) nameByBasename(base string) (string, bool) {
	if r.ambiguousBasenames[base] {
		return "", false
	}
	name, ok := r.basenameToName[base]
	return name, ok
}

func (r *registry) hasAttempted(path string) bool {
	return r.attemptedLoads[path]
}

func (r *registry) markAttempted(path string) {
	r.attemptedLoads[path] = true
}
