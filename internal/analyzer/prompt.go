package analyzer

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"hazmate/internal/guidelines"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// AnalysisLeadIn precedes the serialized extraction in the stage-two user message.
const AnalysisLeadIn = "Here is the extracted data from the shipping document. Please perform a compliance analysis:\n\n"

// ExtractionInstruction accompanies the document in the stage-one user message.
const ExtractionInstruction = "Extract all hazardous materials data from this shipping document."

// jsonOnlySuffix is appended to every system prompt.
const jsonOnlySuffix = "\n\nCRITICAL: You must respond with ONLY valid JSON. Do not include any markdown formatting, code fences, or explanatory text."

// Prompts are the rendered system prompts for both stages.
type Prompts struct {
	Extraction string
	Analysis   string
}

// BuildPrompts renders the prompt templates against a rule set.
func BuildPrompts(rules *guidelines.RuleSet) (Prompts, error) {
	tmpl, err := template.New("prompts").
		Option("missingkey=error").
		Funcs(template.FuncMap{
			"join": strings.Join,
			"inc":  func(i int) int { return i + 1 },
		}).
		ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return Prompts{}, fmt.Errorf("parsing prompt templates: %w", err)
	}

	render := func(name string) (string, error) {
		var buf bytes.Buffer
		if err := tmpl.ExecuteTemplate(&buf, name, rules); err != nil {
			return "", fmt.Errorf("rendering %s: %w", name, err)
		}
		return strings.TrimSpace(buf.String()) + jsonOnlySuffix, nil
	}

	var p Prompts
	if p.Extraction, err = render("extraction.tmpl"); err != nil {
		return Prompts{}, err
	}
	if p.Analysis, err = render("analysis.tmpl"); err != nil {
		return Prompts{}, err
	}
	return p, nil
}
