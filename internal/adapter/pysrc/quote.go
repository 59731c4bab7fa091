package pysrc

import "strings"

// quoteDocstring renders generated text as a triple-quoted string literal.
// Backslashes and embedded triple quotes are escaped so the literal always
// re-parses, whatever the backend returned.
func quoteDocstring(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, `\`, `\\`)
	text = strings.ReplaceAll(text, `"""`, `\"\"\"`)
	if strings.HasSuffix(text, `"`) && !strings.HasSuffix(text, `\"`) {
		text = text[:len(text)-1] + `\"`
	}
	return `"""` + text + `"""`
}
