package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariationTemplateByKey(t *testing.T) {
	tpl, ok := VariationTemplateByKey("productAngles")
	require.True(t, ok)
	assert.Equal(t, "Product Angles", tpl.Name)
	assert.Equal(t, VariationAngle, tpl.Type)
	assert.NotEmpty(t, tpl.Variations)

	_, ok = VariationTemplateByKey("nope")
	assert.False(t, ok)
}

func TestVariationTemplatesByType(t *testing.T) {
	for _, tpl := range VariationTemplatesByType(VariationLighting) {
		assert.Equal(t, VariationLighting, tpl.Type)
	}
	assert.Len(t, AllVariationTemplates(), len(variationTemplates))
}
