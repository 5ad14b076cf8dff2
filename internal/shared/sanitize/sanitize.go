// Package sanitize strips markup from user supplied free text before it is stored or rendered.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// textEntities undoes the escaping the policy applies to plain text. Angle
// brackets stay escaped so the result never holds a tag.
var textEntities = strings.NewReplacer("&amp;", "&", "&#39;", "'", "&#34;", `"`)

// Text removes every HTML tag and null byte from input and trims it.
// Entity-encoded markup is decoded before the policy runs, so it is stripped
// like literal markup.
func Text(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	out := strictPolicy.Sanitize(html.UnescapeString(input))
	return strings.TrimSpace(textEntities.Replace(out))
}
