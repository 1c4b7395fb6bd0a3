package narrative

import (
	"html"
	"regexp"
	"strings"
)

var boldRe = regexp.MustCompile(`\*\*(.*?)\*\*`)

// FormatHTML converts the light markdown of a narrative into inline HTML:
// bold markers become <strong>, "- " list items become bullets and newlines
// become <br>. The text is HTML-escaped first.
func FormatHTML(text string) string {
	s := html.EscapeString(text)
	s = boldRe.ReplaceAllString(s, "<strong>$1</strong>")
	s = strings.ReplaceAll(s, "\n- ", "<br>• ")
	s = strings.ReplaceAll(s, "\n\n", "<br><br>")
	s = strings.ReplaceAll(s, "\n", "<br>")
	return s
}
