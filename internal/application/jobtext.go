package application

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Job text content types. Page selections arrive as plain text; only a
// surface that captured markup says so explicitly.
const (
	JobTextPlain = "text"
	JobTextHTML  = "html"
)

var jobTextSanitizer = bluemonday.StrictPolicy()

// NormalizeJobText trims a job posting. Markup is stripped only when
// contentType is JobTextHTML; plain text is kept byte for byte, angle
// brackets included.
func NormalizeJobText(raw, contentType string) string {
	if contentType != JobTextHTML {
		return strings.TrimSpace(raw)
	}
	// StrictPolicy escapes entities in its output; decode them to hand the
	// scoring service plain text.
	return strings.TrimSpace(html.UnescapeString(jobTextSanitizer.Sanitize(raw)))
}
