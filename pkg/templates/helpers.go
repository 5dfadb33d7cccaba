package templates

import (
	"encoding/json"
	"strings"
	"text/template"
)

// helperFuncs are available inside every prompt template.
var helperFuncs = template.FuncMap{
	"json":     ToJSON,
	"truncate": Truncate,
	"upper":    strings.ToUpper,
}

// ToJSON renders a value as indented JSON for embedding in prompts.
func ToJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Truncate shortens text to at most n runes, appending an ellipsis when cut.
func Truncate(n int, text string) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
