package hoist

// maxFixpointRounds bounds the discriminator-mapping resolver's and the
// alias consolidator's repeat-to-fixpoint loops. Both are guaranteed by
// §4.4/§4.5 to converge (the registered-schema set only grows; aliasing
// strictly reduces the number of distinct names), so this is a backstop
// against a malformed document rather than an expected limit.
const maxFixpointRounds = 1000

// Stats summarizes what a Run invocation changed, since a CLI or MCP
// caller needs something to report without re-deriving it from a diff of
// the document before and after.
type Stats struct {
	// SchemasHoisted is the number of schemas newly hoisted into
	// components.schemas (post alias consolidation).
	SchemasHoisted int
	// AliasesMerged is the number of duplicate/equivalent schema names
	// collapsed into a canonical name.
	AliasesMerged int
	// ChannelsRewritten is the number of operation channel.$ref (and
	// reply.channel.$ref) values rewritten to local pointers.
	ChannelsRewritten int
	// FilesLoaded is the number of files loaded on demand by the
	// discriminator-mapping resolver.
	FilesLoaded int
	// UnresolvedMappings lists discriminator-mapping values that still
	// look like file references after the resolver ran to a fixpoint.
	UnresolvedMappings []string
	// UnresolvedChannelRefs lists operation channel $ref values that
	// still point at an external file after the channel rewriter ran.
	UnresolvedChannelRefs []string
}

// Result is the outcome of a Run invocation: the mutated document (the
// same map passed in) and a summary of what changed.
type Result struct {
	Document map[string]any
	Stats    Stats
}

// Run applies the seven-pass normalization pipeline (§2) to doc in place
// and returns a summary of the changes made. The passes run strictly in
// order; within the discriminator resolver and the alias consolidator,
// each repeats to a fixpoint before the pipeline proceeds (§5).
func Run(doc map[string]any, opts ...Option) (*Result, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, err
	}

	reg := newRegistry()
	ld := newLoader(cfg, reg)

	collect(doc, reg)
	rewriteReferences(doc, reg)

	if err := withScopedWorkingDir(cfg.workingDir, func() error {
		return resolveDiscriminatorMappings(doc, reg, ld)
	}); err != nil {
		return nil, err
	}

	normalizeDiscriminators(doc, reg)
	aliasesMerged := consolidateAliases(doc, reg)
	emit(doc, reg)
	channelsRewritten := rewriteChannels(doc)

	stats := Stats{
		SchemasHoisted:        len(reg.registrationOrder),
		AliasesMerged:         aliasesMerged,
		ChannelsRewritten:     channelsRewritten,
		FilesLoaded:           ld.filesLoaded,
		UnresolvedMappings:    unresolvedMappings(doc),
		UnresolvedChannelRefs: unresolvedChannelRefs(doc),
	}
	cfg.logger.Info("hoist: normalization complete",
		"schemasHoisted", stats.SchemasHoisted,
		"aliasesMerged", stats.AliasesMerged,
		"channelsRewritten", stats.ChannelsRewritten,
		"filesLoaded", stats.FilesLoaded,
	)

	return &Result{Document: doc, Stats: stats}, nil
}

// unresolvedMappings scans the fully-processed document for any remaining
// discriminator-mapping value that still looks like a file reference.
func unresolvedMappings(doc map[string]any) []string {
	var unresolved []string
	documentWalk(doc, func(node map[string]any, slot nodeSlot, path []string, isRoot bool) bool {
		for _, mapping := range discriminatorMappings(node) {
			for _, val := range mapping {
				if s, ok := val.(string); ok && looksLikeFileRef(s) {
					unresolved = append(unresolved, s)
				}
			}
		}
		return false
	})
	return unresolved
}

// unresolvedChannelRefs scans operations for channel.$ref / reply.channel
// values that remain external after the channel rewriter ran.
func unresolvedChannelRefs(doc map[string]any) []string {
	var unresolved []string
	collectUnresolvedChannelRefs(doc["operations"], &unresolved)
	collectUnresolvedChannelRefs(nestedComponent(doc, "operations"), &unresolved)
	return unresolved
}

func collectUnresolvedChannelRefs(ops any, out *[]string) {
	operations, ok := ops.(map[string]any)
	if !ok {
		return
	}
	for _, name := range sortedKeys(operations) {
		op, ok := operations[name].(map[string]any)
		if !ok {
			continue
		}
		appendUnresolvedChannelRef(op, "channel", out)
		if reply, ok := op["reply"].(map[string]any); ok {
			appendUnresolvedChannelRef(reply, "channel", out)
		}
	}
}

func appendUnresolvedChannelRef(container map[string]any, key string, out *[]string) {
	ch, ok := container[key].(map[string]any)
	if !ok || !isReferenceObject(ch) {
		return
	}
	if ref := ch["$ref"].(string); !isLocalRefOrigin(ref) {
		*out = append(*out, ref)
	}
}
