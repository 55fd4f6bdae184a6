package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/asyncapi-tools/hoist"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type normalizeInput struct {
	Document   json.RawMessage `json:"document"              jsonschema:"The AsyncAPI document to normalize, as a JSON object"`
	WorkingDir string          `json:"working_dir,omitempty" jsonschema:"Directory used to resolve discriminator-mapping file references on demand; defaults to the server's current working directory"`
}

type normalizeStats struct {
	SchemasHoisted        int      `json:"schemas_hoisted"`
	AliasesMerged         int      `json:"aliases_merged"`
	ChannelsRewritten     int      `json:"channels_rewritten"`
	FilesLoaded           int      `json:"files_loaded"`
	UnresolvedMappings    []string `json:"unresolved_mappings,omitempty"`
	UnresolvedChannelRefs []string `json:"unresolved_channel_refs,omitempty"`
}

type normalizeOutput struct {
	Document json.RawMessage `json:"document"`
	Stats    normalizeStats  `json:"stats"`
}

func handleNormalize(_ context.Context, _ *mcp.CallToolRequest, input normalizeInput) (*mcp.CallToolResult, normalizeOutput, error) {
	var doc map[string]any
	if err := json.Unmarshal(input.Document, &doc); err != nil {
		return errResult(fmt.Errorf("decoding document: %w", err)), normalizeOutput{}, nil
	}

	opts := []hoist.Option{hoist.WithMaxScanFiles(cfg.MaxScanFiles)}
	if len(cfg.ExcludeDirs) > 0 {
		opts = append(opts, hoist.WithExcludeDirs(cfg.ExcludeDirs...))
	}
	if input.WorkingDir != "" {
		opts = append(opts, hoist.WithWorkingDir(input.WorkingDir))
	}

	result, err := hoist.Run(doc, opts...)
	if err != nil {
		return errResult(err), normalizeOutput{}, nil
	}

	normalized, err := json.Marshal(result.Document)
	if err != nil {
		return errResult(fmt.Errorf("encoding normalized document: %w", err)), normalizeOutput{}, nil
	}

	output := normalizeOutput{
		Document: normalized,
		Stats: normalizeStats{
			SchemasHoisted:        result.Stats.SchemasHoisted,
			AliasesMerged:         result.Stats.AliasesMerged,
			ChannelsRewritten:     result.Stats.ChannelsRewritten,
			FilesLoaded:           result.Stats.FilesLoaded,
			UnresolvedMappings:    result.Stats.UnresolvedMappings,
			UnresolvedChannelRefs: result.Stats.UnresolvedChannelRefs,
		},
	}
	return nil, output, nil
}
