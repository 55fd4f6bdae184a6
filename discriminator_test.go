package hoist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLooksLikeFileRef(t *testing.T) {
	assert.True(t, looksLikeFileRef("./Cat.yaml"))
	assert.True(t, looksLikeFileRef("schemas/Dog.JSON"))
	assert.False(t, looksLikeFileRef("#/components/schemas/Cat"))
	assert.False(t, looksLikeFileRef("Cat"))
}

func TestResolveMappingValueResolvesAlreadyRegisteredOrigin(t *testing.T) {
	reg := newRegistry()
	reg.registerSchema(map[string]any{"type": "object"}, "Cat", "schemas/Cat.yaml")

	mapping := map[string]any{"cat": "schemas/Cat.yaml"}
	ld := newLoader(defaultConfig(), reg)

	changed, err := resolveMappingValue(mapping, "cat", "schemas/Cat.yaml", "", reg, ld)

	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "#/components/schemas/Cat", mapping["cat"])
}

func TestResolveMappingValueLeavesUnresolvableValueUntouched(t *testing.T) {
	cfg := defaultConfig()
	cfg.workingDir = t.TempDir()
	reg := newRegistry()
	ld := newLoader(cfg, reg)
	mapping := map[string]any{"cat": "nonexistent/Cat.yaml"}

	changed, err := resolveMappingValue(mapping, "cat", "nonexistent/Cat.yaml", "", reg, ld)

	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "nonexistent/Cat.yaml", mapping["cat"])
}

func TestResolveMappingValuePropagatesParseErrorFromOnDemandLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cat.yaml"), []byte("type: [object\n"), 0o644))

	cfg := defaultConfig()
	cfg.workingDir = dir
	reg := newRegistry()
	ld := newLoader(cfg, reg)
	mapping := map[string]any{"cat": "Cat.yaml"}

	changed, err := resolveMappingValue(mapping, "cat", "Cat.yaml", "", reg, ld)

	require.Error(t, err, "an invalid YAML target must fail the whole pass, not be swallowed")
	assert.False(t, changed)
	assert.Equal(t, "Cat.yaml", mapping["cat"], "the mapping value must be left untouched when the pass aborts")
}

func TestResolveMappingValuePropagatesScanIOError(t *testing.T) {
	cfg := defaultConfig()
	cfg.workingDir = filepath.Join(t.TempDir(), "does-not-exist")
	reg := newRegistry()
	ld := newLoader(cfg, reg)
	mapping := map[string]any{"cat": "Cat.yaml"}

	_, err := resolveMappingValue(mapping, "cat", "Cat.yaml", "", reg, ld)

	require.Error(t, err)
}

func TestResolveDiscriminatorMappingsReturnsErrorFromLoadFailure(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cat.yaml"), []byte("type: [object\n"), 0o644))

	cfg := defaultConfig()
	cfg.workingDir = dir
	reg := newRegistry()
	ld := newLoader(cfg, reg)

	doc := map[string]any{
		"components": map[string]any{
			"schemas": map[string]any{
				"Pet": map[string]any{
					"discriminator": map[string]any{
						"propertyName": "petType",
						"mapping":      map[string]any{"cat": "Cat.yaml"},
					},
				},
			},
		},
	}

	err := resolveDiscriminatorMappings(doc, reg, ld)

	require.Error(t, err)
}

// TestResolveRegisteredDiscriminatorMappingsResolvesNestedLoadedDiscriminator
// covers a discriminator-mapping target file that itself carries an
// object-form discriminator.mapping pointing at a further file: the
// loaded schema is registered directly into reg.nameToSchema without ever
// being spliced into doc, so the resolver must walk the registry, not
// just doc, to reach it.
func TestResolveRegisteredDiscriminatorMappingsResolvesNestedLoadedDiscriminator(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "schemas/Pet.yaml", ""+
		"type: object\n"+
		"discriminator:\n"+
		"  propertyName: petType\n"+
		"  mapping:\n"+
		"    dog: Dog.yaml\n")
	writeFile(t, dir, "schemas/Dog.yaml", "type: object\n")

	cfg := defaultConfig()
	cfg.workingDir = dir
	reg := newRegistry()
	ld := newLoader(cfg, reg)

	doc := map[string]any{
		"components": map[string]any{
			"schemas": map[string]any{
				"Animal": map[string]any{
					"discriminator": map[string]any{
						"propertyName": "kind",
						"mapping":      map[string]any{"pet": "schemas/Pet.yaml"},
					},
				},
			},
		},
	}

	require.NoError(t, resolveDiscriminatorMappings(doc, reg, ld))

	pet, ok := reg.schemaByName("Pet")
	require.True(t, ok, "Pet.yaml must be loaded and registered")
	petMapping := pet["discriminator"].(map[string]any)["mapping"].(map[string]any)
	assert.Equal(t, "#/components/schemas/Dog", petMapping["dog"],
		"Pet's own discriminator.mapping must be resolved even though Pet was never spliced into doc")

	_, ok = reg.schemaByName("Dog")
	assert.True(t, ok, "Dog.yaml must be loaded on demand from Pet's own mapping")
}

func TestDiscriminatorMappingsCollectsBothForms(t *testing.T) {
	node := map[string]any{
		"discriminator": map[string]any{
			"propertyName": "petType",
			"mapping":      map[string]any{"cat": "schemas/Cat.yaml"},
		},
		discriminatorMappingExtensionKey: map[string]any{"dog": "schemas/Dog.yaml"},
	}

	mappings := discriminatorMappings(node)
	require.Len(t, mappings, 2)
}

func TestNormalizeDiscriminatorMergesObjectMappingIntoExtension(t *testing.T) {
	node := map[string]any{
		"discriminator": map[string]any{
			"propertyName": "petType",
			"mapping":      map[string]any{"cat": "#/components/schemas/Cat"},
		},
		discriminatorMappingExtensionKey: map[string]any{"dog": "#/components/schemas/Dog"},
	}

	normalizeDiscriminator(node)

	assert.Equal(t, "petType", node["discriminator"])
	ext := node[discriminatorMappingExtensionKey].(map[string]any)
	assert.Equal(t, "#/components/schemas/Cat", ext["cat"])
	assert.Equal(t, "#/components/schemas/Dog", ext["dog"])
}

func TestNormalizeDiscriminatorObjectMappingWinsOnCollision(t *testing.T) {
	node := map[string]any{
		"discriminator": map[string]any{
			"propertyName": "petType",
			"mapping":      map[string]any{"cat": "#/components/schemas/CatV2"},
		},
		discriminatorMappingExtensionKey: map[string]any{"cat": "#/components/schemas/CatV1"},
	}

	normalizeDiscriminator(node)

	ext := node[discriminatorMappingExtensionKey].(map[string]any)
	assert.Equal(t, "#/components/schemas/CatV2", ext["cat"], "object-form mapping must win on collision")
}

func TestNormalizeDiscriminatorDeletesWhenNoPropertyName(t *testing.T) {
	node := map[string]any{
		"discriminator": map[string]any{},
	}

	normalizeDiscriminator(node)

	_, ok := node["discriminator"]
	assert.False(t, ok)
}

func TestNormalizeDiscriminatorsCollapsesEverywhere(t *testing.T) {
	doc := map[string]any{
		"components": map[string]any{
			"schemas": map[string]any{
				"Pet": map[string]any{
					"discriminator": map[string]any{"propertyName": "petType"},
				},
			},
		},
	}

	normalizeDiscriminators(doc, newRegistry())

	pet := doc["components"].(map[string]any)["schemas"].(map[string]any)["Pet"].(map[string]any)
	assert.Equal(t, "petType", pet["discriminator"])
}

func TestNormalizeDiscriminatorsAlsoCollapsesRegisteredSchemas(t *testing.T) {
	doc := map[string]any{}
	reg := newRegistry()
	loaded := map[string]any{
		"type":          "object",
		"discriminator": map[string]any{"propertyName": "petType"},
	}
	reg.registerSchema(loaded, "Pet", "schemas/Pet.yaml")

	normalizeDiscriminators(doc, reg)

	assert.Equal(t, "petType", loaded["discriminator"],
		"a schema registered on demand but never spliced into doc must still be normalized")
}
