package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var htmlPolicy = bluemonday.StrictPolicy()

// SanitizeText strips markup and null bytes from user supplied text.
func SanitizeText(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	return strings.TrimSpace(htmlPolicy.Sanitize(input))
}
