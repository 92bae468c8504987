package prompt

import (
	"errors"
	"fmt"
	"strings"
)

// ConsistencyLevel controls how rigidly the subject identity must be
// preserved across a generated series.
type ConsistencyLevel string

const (
	ConsistencyStrict   ConsistencyLevel = "strict"
	ConsistencyModerate ConsistencyLevel = "moderate"
	ConsistencyLoose    ConsistencyLevel = "loose"
)

// ErrInvalidConsistencyLevel is returned for any level outside
// strict/moderate/loose.
var ErrInvalidConsistencyLevel = errors.New("invalid consistency level")

// The directive texts are intentionally loud. The image model has a strong
// tendency to answer a series request with a grid or collage, and only very
// explicit single-image instructions reliably suppress that.
var consistencyDirectives = map[ConsistencyLevel]string{
	ConsistencyStrict: "CREATE A SINGLE IMAGE (NOT A GRID, COLLAGE, OR MULTIPLE PANELS). " +
		"STRICT CONSISTENCY REQUIRED: Show the EXACT SAME individual person/product/subject in this single image. " +
		"If there is a person, it must be the SAME person with the same face, same age, same appearance. " +
		"If there is a product, it must be the SAME product with identical design, color, and features. " +
		"DO NOT create different people or different products. " +
		"DO NOT create a grid or collage showing multiple variations - output ONE single image only. " +
		"Only the camera angle, lighting, or background should vary as specified. " +
		"The subject identity must be 100% consistent across all images in the series.",
	ConsistencyModerate: "CREATE A SINGLE IMAGE (NOT A GRID, COLLAGE, OR MULTIPLE PANELS). " +
		"MAINTAIN SUBJECT CONSISTENCY: Keep the SAME MAIN PERSON/PRODUCT/SUBJECT recognizable in this single image. " +
		"If showing a person, it should be the same individual with consistent features and appearance. " +
		"If showing a product, it should be the same item with the same core design. " +
		"DO NOT create a grid or collage - output ONE single image only. " +
		"Allow natural variation in the specified aspect (angle, background, lighting) " +
		"but the primary subject must remain clearly identifiable as the same entity.",
	ConsistencyLoose: "CREATE A SINGLE IMAGE (NOT A GRID, COLLAGE, OR MULTIPLE PANELS). " +
		"SUBJECT CONTINUITY: Show the SAME GENERAL PERSON/PRODUCT/SUBJECT in this single image with some natural flexibility. " +
		"The subject should be clearly recognizable as the same type of person or item category. " +
		"DO NOT create a grid or collage - output ONE single image only. " +
		"Maintain thematic connection and ensure the viewer can identify this is the same subject across the series, " +
		"even with creative variation in style and presentation.",
}

// ConsistencyDirective returns the fixed directive text for a level.
func ConsistencyDirective(level ConsistencyLevel) (string, error) {
	directive, ok := consistencyDirectives[level]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidConsistencyLevel, level)
	}
	return directive, nil
}

// BuildSeriesPrompt assembles the per-item series prompt from the base
// prompt, the consistency directive for the level, an optional style anchor,
// and an optional variation. Empty segments are omitted entirely; segments
// are joined as period-delimited sentences. The function is pure.
func BuildSeriesPrompt(basePrompt, variation string, level ConsistencyLevel, styleAnchor string) (string, error) {
	directive, err := ConsistencyDirective(level)
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, 4)
	if basePrompt != "" {
		parts = append(parts, basePrompt)
	}
	parts = append(parts, directive)
	if styleAnchor != "" {
		parts = append(parts, "Style anchor: "+styleAnchor)
	}
	if variation != "" {
		parts = append(parts, "Variation: "+variation)
	}

	return strings.Join(parts, ". "), nil
}

// BuildReferencePrompt composes the stricter prompt used when a reference
// image anchors the generation. It instructs the model to produce exactly
// one image, preserve the subject from the reference, apply only the named
// variation, and leave everything else unchanged.
func BuildReferencePrompt(basePrompt, variation, consistencyPrompt string) string {
	parts := []string{
		"CREATE A SINGLE IMAGE (NOT A GRID OR COLLAGE).",
		"IMPORTANT: Use this reference image as the EXACT subject/person. Do NOT create a different person or subject.",
		"Keep the SAME person/subject/object from the reference image.",
		consistencyPrompt,
		basePrompt,
	}
	if variation != "" {
		parts = append(parts, "Apply this specific variation ONLY: "+variation)
	}
	parts = append(parts, "Output: ONE single image showing the same subject with the specified variation applied.")
	return joinNonEmpty(parts)
}

// BuildTextPrompt composes the text-to-image series prompt used when no
// reference image is available. It is as explicit as the reference mode
// about single-image output and subject identity.
func BuildTextPrompt(basePrompt, variation, consistencyPrompt string) string {
	parts := []string{
		"CREATE A SINGLE IMAGE (NOT A GRID OR COLLAGE).",
		basePrompt,
		consistencyPrompt,
	}
	if variation != "" {
		parts = append(parts, "Apply ONLY this variation to the subject: "+variation)
	}
	parts = append(parts,
		"The subject itself must remain IDENTICAL. Only the specified variation aspect should change.",
		"Output: ONE single image.")
	return joinNonEmpty(parts)
}

func joinNonEmpty(parts []string) string {
	kept := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
