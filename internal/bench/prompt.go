package bench

import (
	"fmt"
	"strings"

	"github.com/jackzampolin/optbench/internal/format"
	"github.com/jackzampolin/optbench/internal/signature"
	"github.com/jackzampolin/optbench/internal/strategy"
)

const taskDescription = "You are a product recommendation assistant. " +
	"Review the product context and answer the query with matching products."

// systemPrompt renders the task description, the output field schema, and the
// grammar-specific formatting rules for a strategy.
func systemPrompt(sig *signature.Signature, strat *strategy.Strategy) string {
	var b strings.Builder
	b.WriteString(taskDescription)
	b.WriteString("\n\nOutput fields:\n")
	for _, f := range sig.Fields() {
		fmt.Fprintf(&b, "  %s: %s", f.Name, f.Spec.TypeString())
		if f.Spec.Description != "" {
			fmt.Fprintf(&b, " - %s", f.Spec.Description)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(formatRules(strat.OutputFormat().Name()))
	return b.String()
}

func formatRules(grammar string) string {
	switch grammar {
	case format.NameTOON:
		return strings.TrimSpace(`
TOON Format (NOT JSON):
- Output MUST be valid TOON
- Each top-level field on its own line as "name: value"
- Uniform object arrays as tabular blocks: name[N]{field1,field2}: with one comma-joined row per element
- Primitive arrays inline: name[N]: a,b,c
- Two-space indentation for nested structure
- No markdown code fences`)
	case format.NameZON:
		return strings.TrimSpace(`
ZON Format (NOT JSON):
- Output MUST be valid ZON
- Return field assignments at top level (NO braces around entire output)
- Keys must match output field names exactly
- Use braces only for nested objects, brackets for arrays
- No markdown code fences`)
	default:
		return strings.TrimSpace(`
JSON Format:
- Output MUST be a single valid JSON object
- Keys must match output field names exactly
- No markdown code fences, no commentary`)
	}
}

// userPrompt renders the serialized context and the query.
func userPrompt(contextText, query string) string {
	return fmt.Sprintf("context:\n%s\n\nquery: %s", contextText, query)
}
