package prompt

import (
	"fmt"
	"strings"

	"github.com/synthmed/radgen/internal/config"
)

const syntheticNotice = " Fully synthetic, artificial medical image for research purposes only. Not for diagnostic use."

// compose builds the diffusion prompt around a descriptive middle section:
// either the detail-level description or the LLM's enhanced text.
func compose(req config.Request, angle, description string) string {
	info := req.Modality.Info()
	parts := []string{
		fmt.Sprintf("Professional medical %s image,", info.TechnicalName),
		fmt.Sprintf("%s view of %s,", angle, req.Region),
		"synthetic diagnostic quality,",
		strings.TrimSpace(description),
		"high resolution medical imaging,",
		fmt.Sprintf("realistic %s appearance,", req.Modality),
		"clinical photography style,",
		"artificial medical illustration,",
		"photorealistic rendering",
	}
	return strings.Join(parts, " ")
}

// instruction is what the refinement LLM is asked to produce: a richer
// clinical description to slot into the composed prompt.
func instruction(req config.Request, angle string) string {
	info := req.Modality.Info()
	detail := req.Detail.Info()
	return fmt.Sprintf(`Generate a detailed, clinically-styled description for a FULLY SYNTHETIC medical image with these specifications:

Modality: %s (%s)
Body Region: %s
View/Angle: %s
Detail Level: %s - %s
Typical Artifacts: %s

Requirements:
1. Describe synthetic anatomical features appropriate for %s in %s imaging
2. Include realistic but ARTIFICIAL imaging characteristics
3. Mention appropriate %s level anatomical details
4. Suggest 2-3 subtle simulated imaging artifacts
5. Use clinical terminology but emphasize this is SYNTHETIC
6. Keep description under 150 words
7. DO NOT reference any real people, institutions, or identifiable information

Output ONLY the imaging description, no preamble.`,
		info.Name, info.TechnicalName,
		req.Region,
		angle,
		req.Detail, detail.Description,
		strings.Join(info.Artifacts, ", "),
		req.Region, req.Modality,
		req.Detail,
	)
}
