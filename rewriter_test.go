package hoist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewriteReferencesReplacesNonRootInlineOccurrence(t *testing.T) {
	petSchema := map[string]any{"type": "object"}
	doc := map[string]any{
		"components": map[string]any{
			"schemas": map[string]any{
				"Pet": petSchema,
			},
		},
		"channels": map[string]any{
			"pet": map[string]any{
				"messages": map[string]any{
					"petCreated": map[string]any{
						"payload": petSchema,
					},
				},
			},
		},
	}
	reg := newRegistry()
	collect(doc, reg)
	rewriteReferences(doc, reg)

	messages := doc["channels"].(map[string]any)["pet"].(map[string]any)["messages"].(map[string]any)
	payload := messages["petCreated"].(map[string]any)["payload"].(map[string]any)
	assert.Equal(t, "#/components/schemas/Pet", payload["$ref"])
}

func TestRewriteReferencesLeavesRootComponentSchemaAlone(t *testing.T) {
	doc := map[string]any{
		"components": map[string]any{
			"schemas": map[string]any{
				"Pet": map[string]any{"type": "object"},
			},
		},
	}
	reg := newRegistry()
	collect(doc, reg)
	rewriteReferences(doc, reg)

	schemas := doc["components"].(map[string]any)["schemas"].(map[string]any)
	pet := schemas["Pet"].(map[string]any)
	assert.Equal(t, "object", pet["type"], "the canonical definition itself must not become a $ref to itself")
}

func TestRewriteReferencesResolvesExternalRefByOrigin(t *testing.T) {
	doc := map[string]any{
		"channels": map[string]any{
			"pet": map[string]any{
				"messages": map[string]any{
					"petCreated": map[string]any{
						"payload": map[string]any{
							"type":     "object",
							"x-origin": "schemas/Pet.yaml",
						},
					},
					"petUpdated": map[string]any{
						"payload": map[string]any{
							"$ref": "schemas/Pet.yaml",
						},
					},
				},
			},
		},
	}
	reg := newRegistry()
	collect(doc, reg)
	rewriteReferences(doc, reg)

	messages := doc["channels"].(map[string]any)["pet"].(map[string]any)["messages"].(map[string]any)
	updated := messages["petUpdated"].(map[string]any)["payload"].(map[string]any)
	assert.Equal(t, "#/components/schemas/Pet", updated["$ref"])
}

func TestRewriteReferencesLeavesLocalRefUntouched(t *testing.T) {
	doc := map[string]any{
		"components": map[string]any{
			"schemas": map[string]any{
				"Pet":    map[string]any{"type": "object"},
				"Animal": map[string]any{"$ref": "#/components/schemas/Pet"},
			},
		},
	}
	reg := newRegistry()
	collect(doc, reg)
	rewriteReferences(doc, reg)

	schemas := doc["components"].(map[string]any)["schemas"].(map[string]any)
	animal := schemas["Animal"].(map[string]any)
	assert.Equal(t, "#/components/schemas/Pet", animal["$ref"])
}

func TestRewriteReferencesCopiesDescriptiveFields(t *testing.T) {
	petSchema := map[string]any{"type": "object"}
	doc := map[string]any{
		"components": map[string]any{
			"schemas": map[string]any{"Pet": petSchema},
		},
		"channels": map[string]any{
			"pet": map[string]any{
				"messages": map[string]any{
					"petCreated": map[string]any{
						"payload": map[string]any{
							"$ref":        "schemas/Pet.yaml",
							"description": "a nearby pet",
						},
					},
				},
			},
		},
	}
	petSchema["x-origin"] = "schemas/Pet.yaml"
	reg := newRegistry()
	collect(doc, reg)
	rewriteReferences(doc, reg)

	messages := doc["channels"].(map[string]any)["pet"].(map[string]any)["messages"].(map[string]any)
	payload := messages["petCreated"].(map[string]any)["payload"].(map[string]any)
	assert.Equal(t, "#/components/schemas/Pet", payload["$ref"])
	assert.Equal(t, "a nearby pet", payload["description"])
}

func TestResolveExternalRefFallsBackToBasename(t *testing.T) {
	reg := newRegistry()
	reg.registerSchema(map[string]any{"type": "object"}, "Pet", "schemas/common/Pet.yaml")

	name, ok := resolveExternalRef("../common/Pet.yaml", reg)
	require.True(t, ok)
	assert.Equal(t, "Pet", name)
}

func TestResolveExternalRefAmbiguousBasenameFails(t *testing.T) {
	reg := newRegistry()
	reg.registerSchema(map[string]any{"type": "object"}, "Pet", "schemas/a/Pet.yaml")
	reg.registerSchema(map[string]any{"type": "string"}, "Pet", "schemas/b/Pet.yaml")

	_, ok := resolveExternalRef("Pet.yaml", reg)
	assert.False(t, ok)
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "schemas/Pet.yaml", normalizePath(`schemas\Pet.yaml`))
	assert.Equal(t, "schemas/Pet.yaml", normalizePath("./schemas/Pet.yaml"))
}
