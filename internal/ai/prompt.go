package ai

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/nikbrunner/tidymark/internal/model"
)

// CategoryHint is an existing category offered to the model in organize mode.
type CategoryHint struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// OrganizeItem is a bookmark to be checked against existing categories.
type OrganizeItem struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	FromKey string `json:"from_key"`
}

// InferItem is a bookmark to be placed in a freshly invented taxonomy.
type InferItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

const DefaultOrganizePrompt = `You are a bookmark organizing assistant. Respond in {{language}}.

Each item below has already been placed into a category by keyword rules (from_key).
Check every item and move it only when another EXISTING category clearly fits better.
Never invent a new category. Use only the category names listed here:
{{categoriesJson}}

Items:
{{itemsJson}}

Reply with strict JSON only, no prose and no code fences, in exactly this shape:
{"reassigned_items":[{"id":"<item id>","from_key":"<current category>","to_key":"<existing category>","confidence":0.0,"reason":"<short reason>"}],"notes":{"low_confidence_items":["<item id>"]}}

Only list items whose category should change. confidence is between 0 and 1.
Put the ids you are unsure about in notes.low_confidence_items.`

const DefaultInferPrompt = `You are a bookmark organizing assistant. Respond in {{language}}.

Invent a concise taxonomy for the bookmarks below. Category names are 1 to 3 words.
Assign every item to exactly one category.

Items:
{{itemsJson}}

Reply with strict JSON only, no prose and no code fences, in exactly this shape:
{"categories":["<category>"],"assignments":[{"id":"<item id>","to_key":"<category>","confidence":0.0}],"notes":{"low_confidence_items":["<item id>"]}}

confidence is between 0 and 1. Put the ids you are unsure about in notes.low_confidence_items.`

var placeholder = regexp.MustCompile(`\{\{\s*(\w+?)\s*\}\}`)

// BuildOrganizePrompt renders the refine-mode prompt. A blank template
// selects DefaultOrganizePrompt.
func BuildOrganizePrompt(template string, lang model.Language, categories []CategoryHint, items []OrganizeItem) string {
	if strings.TrimSpace(template) == "" {
		template = DefaultOrganizePrompt
	}
	return render(template, map[string]string{
		"language":       lang.DisplayName(),
		"categoriesJson": marshal(categories),
		"itemsJson":      marshal(items),
	})
}

// BuildInferPrompt renders the inference-mode prompt. {{categoriesJson}}
// expands to nothing.
func BuildInferPrompt(template string, lang model.Language, items []InferItem) string {
	if strings.TrimSpace(template) == "" {
		template = DefaultInferPrompt
	}
	return render(template, map[string]string{
		"language":  lang.DisplayName(),
		"itemsJson": marshal(items),
	})
}

// render substitutes placeholders in one pass, so substituted values are
// never expanded again. Unknown keys become empty.
func render(template string, values map[string]string) string {
	return placeholder.ReplaceAllStringFunc(template, func(m string) string {
		key := placeholder.FindStringSubmatch(m)[1]
		return values[key]
	})
}

func marshal(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "[]"
	}
	out := strings.TrimSpace(buf.String())
	if out == "null" {
		return "[]"
	}
	return out
}
