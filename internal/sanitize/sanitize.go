// Package sanitize normalizes inbound text fields before they reach
// validation or storage. Queries are always parameterized, so the goal
// here is neutralizing markup that could later be rendered by a client,
// plus whitespace/casing normalization.
package sanitize

import (
	"html"
	"strings"
)

// Text trims surrounding whitespace and escapes HTML metacharacters.
func Text(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}

// Email lowercases and trims an email address. Escaping is not applied:
// the address is validated against an email format instead, which
// already excludes markup.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
