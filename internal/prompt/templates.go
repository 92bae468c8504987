package prompt

// VariationType groups templates by what they vary about the subject.
type VariationType string

const (
	VariationAngle      VariationType = "angle"
	VariationContext    VariationType = "context"
	VariationBackground VariationType = "background"
	VariationLighting   VariationType = "lighting"
)

// VariationTemplate is a named, reusable set of per-image variation
// directives for series generation. Hosts feed a template's variations
// straight into a series request.
type VariationTemplate struct {
	Name        string
	Description string
	Type        VariationType
	Variations  []string
}

var variationTemplates = map[string]VariationTemplate{
	"productAngles": {
		Name:        "Product Angles",
		Description: "Different views of the same product",
		Type:        VariationAngle,
		Variations: []string{
			"front view, centered composition",
			"45-degree angle view, slightly elevated perspective",
			"top-down flat lay view, birds eye perspective",
			"side profile view with dramatic shadow",
			"three-quarter view showing depth and dimension",
		},
	},
	"productContexts": {
		Name:        "Product Contexts",
		Description: "Same product in different settings",
		Type:        VariationContext,
		Variations: []string{
			"on clean white surface, minimal styling",
			"in lifestyle setting with complementary props",
			"in use by person, natural interaction",
			"on rustic wooden surface with natural elements",
			"in modern minimalist environment",
		},
	},
	"heroBackgrounds": {
		Name:        "Hero Backgrounds",
		Description: "Varied backgrounds for hero images",
		Type:        VariationBackground,
		Variations: []string{
			"minimalist gradient background, soft color transition",
			"natural outdoor scene with soft focus",
			"modern urban environment, architectural elements",
			"abstract geometric pattern background",
			"textured surface with depth and dimension",
		},
	},
	"lightingVariations": {
		Name:        "Lighting Variations",
		Description: "Different lighting moods",
		Type:        VariationLighting,
		Variations: []string{
			"soft natural light from window, gentle shadows",
			"dramatic studio lighting with strong contrast",
			"golden hour warmth, sunset glow",
			"cool blue tones, morning light",
			"overhead lighting, even illumination",
		},
	},
	"marketingAngles": {
		Name:        "Marketing Angles",
		Description: "Different marketing perspectives",
		Type:        VariationContext,
		Variations: []string{
			"lifestyle shot showing product benefits",
			"detail close-up highlighting key features",
			"environmental shot showing scale and context",
			"action shot demonstrating usage",
			"comparison shot with complementary items",
		},
	},
	"seasonalThemes": {
		Name:        "Seasonal Themes",
		Description: "Same subject across seasons",
		Type:        VariationBackground,
		Variations: []string{
			"spring theme with fresh blooms and pastels",
			"summer theme with bright sunshine and vibrant colors",
			"autumn theme with warm tones and fallen leaves",
			"winter theme with cool tones and minimalist snow",
		},
	},
	"moodVariations": {
		Name:        "Mood Variations",
		Description: "Different emotional tones",
		Type:        VariationLighting,
		Variations: []string{
			"energetic and vibrant, high contrast",
			"calm and serene, soft muted tones",
			"luxurious and premium, rich deep colors",
			"fresh and clean, bright airy feel",
			"warm and inviting, cozy atmosphere",
		},
	},
	"compositionStyles": {
		Name:        "Composition Styles",
		Description: "Different compositional approaches",
		Type:        VariationAngle,
		Variations: []string{
			"centered symmetrical composition",
			"rule of thirds placement, balanced asymmetry",
			"negative space emphasis, minimal elements",
			"tight crop, detail focus",
			"wide shot with environmental context",
		},
	},
}

// VariationTemplateByKey looks a template up by its catalog key.
func VariationTemplateByKey(key string) (VariationTemplate, bool) {
	tpl, ok := variationTemplates[key]
	return tpl, ok
}

// VariationTemplatesByType returns all templates of a given type.
func VariationTemplatesByType(vt VariationType) []VariationTemplate {
	var out []VariationTemplate
	for _, tpl := range variationTemplates {
		if tpl.Type == vt {
			out = append(out, tpl)
		}
	}
	return out
}

// AllVariationTemplates returns the full catalog.
func AllVariationTemplates() []VariationTemplate {
	out := make([]VariationTemplate, 0, len(variationTemplates))
	for _, tpl := range variationTemplates {
		out = append(out, tpl)
	}
	return out
}
