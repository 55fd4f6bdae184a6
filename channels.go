package hoist

import (
	"path/filepath"
	"strings"

	"github.com/asyncapi-tools/hoist/internal/pathutil"
)

// channelRegistry mirrors the schema registry's origin/basename indices,
// scoped to channels (§4.7): channels are keyed by a local JSON Pointer
// rather than a component name.
type channelRegistry struct {
	originToPointer    map[string]string
	basenameToPointer  map[string]string
	ambiguousBasenames map[string]bool
}

func newChannelRegistry() *channelRegistry {
	return &channelRegistry{
		originToPointer:    make(map[string]string),
		basenameToPointer:  make(map[string]string),
		ambiguousBasenames: make(map[string]bool),
	}
}

// rewriteChannels runs the §4.7 Channel-Ref Rewriter: it maps every
// externally-originated channel object to its local JSON Pointer, then
// rewrites operation channel.$ref (and reply.channel.$ref) values that
// still point at external files.
func rewriteChannels(doc map[string]any) int {
	creg := newChannelRegistry()
	if channels, ok := doc["channels"].(map[string]any); ok {
		collectChannelOrigins(channels, "channels", creg)
	}
	if channels := nestedComponent(doc, "channels"); channels != nil {
		collectChannelOrigins(channels, "components/channels", creg)
	}

	rewritten := 0
	if operations, ok := doc["operations"].(map[string]any); ok {
		rewritten += rewriteOperationChannels(operations, creg)
	}
	if operations := nestedComponent(doc, "operations"); operations != nil {
		rewritten += rewriteOperationChannels(operations, creg)
	}
	return rewritten
}

func nestedComponent(doc map[string]any, key string) map[string]any {
	comps, ok := doc["components"].(map[string]any)
	if !ok {
		return nil
	}
	m, _ := comps[key].(map[string]any)
	return m
}

// collectChannelOrigins scans a channels map (top-level or
// components.channels) and registers each externally-originated entry's
// local JSON Pointer, built from containerPointer + the escaped channel
// name, with basename ambiguity tracked the same way schemas are (§4.7).
func collectChannelOrigins(channels map[string]any, containerPointer string, creg *channelRegistry) {
	for _, name := range sortedKeys(channels) {
		ch, ok := channels[name].(map[string]any)
		if !ok {
			continue
		}
		origin, ok := stringField(ch, "x-origin")
		if !ok || isLocalRefOrigin(origin) {
			continue
		}
		pointer := "#/" + containerPointer + "/" + escapeJSONPointerSegment(name)
		creg.originToPointer[origin] = pointer

		base := filepath.Base(origin)
		if existing, ok := creg.basenameToPointer[base]; ok {
			if existing != pointer {
				creg.ambiguousBasenames[base] = true
			}
			continue
		}
		creg.basenameToPointer[base] = pointer
	}
}

// escapeJSONPointerSegment escapes a raw channel name for use as a JSON
// Pointer reference-token, per RFC 6901: "~" becomes "~0" and "/" becomes
// "~1" (§4.7).
func escapeJSONPointerSegment(name string) string {
	name = strings.ReplaceAll(name, "~", "~0")
	name = strings.ReplaceAll(name, "/", "~1")
	return name
}

func rewriteOperationChannels(operations map[string]any, creg *channelRegistry) int {
	rewritten := 0
	for _, name := range sortedKeys(operations) {
		op, ok := operations[name].(map[string]any)
		if !ok {
			continue
		}
		if rewriteChannelRef(op, "channel", creg) {
			rewritten++
		}
		if reply, ok := op["reply"].(map[string]any); ok {
			if rewriteChannelRef(reply, "channel", creg) {
				rewritten++
			}
		}
	}
	return rewritten
}

func rewriteChannelRef(container map[string]any, key string, creg *channelRegistry) bool {
	ch, ok := container[key].(map[string]any)
	if !ok || !isReferenceObject(ch) {
		return false
	}
	ref := ch["$ref"].(string)
	if pathutil.IsLocalRef(ref) {
		return false
	}
	if pointer, ok := resolveChannelRef(ref, creg); ok {
		container[key] = map[string]any{"$ref": pointer}
		return true
	}
	return false
}

func resolveChannelRef(ref string, creg *channelRegistry) (string, bool) {
	if pointer, ok := creg.originToPointer[ref]; ok {
		return pointer, true
	}
	if pointer, ok := creg.originToPointer[normalizePath(ref)]; ok {
		return pointer, true
	}
	base := filepath.Base(ref)
	if creg.ambiguousBasenames[base] {
		return "", false
	}
	pointer, ok := creg.basenameToPointer[base]
	return pointer, ok
}
