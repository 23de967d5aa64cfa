package sections

import (
	"encoding/json"
	"fmt"
	"strings"
)

// maxCombineChars caps the serialized per-section results fed to the combine
// stage.
const maxCombineChars = 150000

// BuildExtractPrompt renders the single-section extraction prompt.
func BuildExtractPrompt(sec *Section) string {
	return fmt.Sprintf(`You are extracting structured data from one section of a construction specification.

Section %s spans %d pages. Extract every concrete requirement into JSON with these keys:
- "section": the section number
- "equipment": array of {item, description, basis_of_design}
- "materials": array of {item, standard}
- "manufacturers": array of acceptable manufacturer names
- "submittals": array of required submittal descriptions
- "notes": array of anything unusual a bidder should know

Return ONLY the JSON object. Use empty arrays for categories with no entries.

SPECIFICATION CONTENT:
%s`, sec.Number, sec.PageCount, sec.Content)
}

// BuildCombinePrompt renders the division-level combine prompt over settled
// per-section results.
func BuildCombinePrompt(division string, results []Result) string {
	serialized, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		serialized = []byte("[]")
	}
	text := string(serialized)
	if len(text) > maxCombineChars {
		text = text[:maxCombineChars] + "\n\n[TRUNCATED]"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `You are combining per-section extractions for Division %s of a construction specification into one division summary.

Sections with an "error" field could not be extracted; list them under "gaps" instead of guessing their content.

Return ONLY a JSON object with keys "equipment", "materials", "manufacturers", "submittals", "notes", and "gaps", merging duplicates across sections.

SECTION EXTRACTIONS:
%s`, division, text)
	return b.String()
}
