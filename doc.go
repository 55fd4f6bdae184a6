// Package hoist implements a post-processing normalization pass for an
// AsyncAPI document whose external references have already been resolved
// and inlined by an upstream bundler.
//
// The input is a single in-memory document tree in which every
// previously-external schema or channel has been replaced by its content
// and annotated with an x-origin string recording the file it came from.
// Run applies seven passes over that tree and returns a document in
// which:
//
//   - every inlined schema has been hoisted under
//     #/components/schemas/<Name>
//   - every non-root occurrence of such a schema has been replaced by a
//     local reference
//   - equivalent schemas share one canonical name
//   - discriminator.mapping entries that point at files are rewritten to
//     local component references
//   - object-form discriminators are normalized to the property-name
//     form, with mappings moved to an extension key
//   - operation channel.$ref values that still point at external files
//     are rewritten to local #/channels/... or #/components/channels/...
//     references
//   - the internal x-origin bookkeeping is removed
//
// # Quick Start
//
//	result, err := hoist.Run(doc, hoist.WithWorkingDir("."))
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("hoisted %d schemas\n", result.Stats.SchemasHoisted)
//
// # Scope
//
// hoist does not resolve external references or produce the
// x-origin-annotated input itself; that is the job of an upstream
// bundler/reference resolver. hoist also does not validate AsyncAPI
// semantics or round-trip comments or source ordering.
package hoist
