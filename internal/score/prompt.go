package score

import (
	_ "embed"
	"strings"
	"text/template"
)

//go:embed prompts/fit_prompt.md
var fitPromptRaw string

// FitPromptTemplate is the parsed judge prompt. Parsed once at package init;
// reused on every Score call.
var FitPromptTemplate = template.Must(
	template.New("fit_prompt").
		Funcs(template.FuncMap{"join": strings.Join}).
		Parse(fitPromptRaw),
)
