package message

import (
	"html"
	"strings"
)

// rawTokens carry pre-rendered HTML and must never be escaped, even when
// the surrounding template is.
var rawTokens = map[string]bool{
	TokenCart: true,
}

// Replace substitutes %Token% occurrences in template with their values.
// When htmlEncode is set, values are HTML-escaped before insertion, except
// for tokens whose value is itself markup. Tokens absent from values are
// left in place.
func Replace(template string, values map[string]string, htmlEncode bool) string {
	if template == "" || len(values) == 0 {
		return template
	}

	pairs := make([]string, 0, len(values)*2)
	for token, value := range values {
		if htmlEncode && !rawTokens[token] {
			value = html.EscapeString(value)
		}
		pairs = append(pairs, token, value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
