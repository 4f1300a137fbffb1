package mailtext

import (
	"regexp"
	"strings"
)

var (
	blockTagRe     = regexp.MustCompile(`(?i)<\s*/?\s*(br|p|div|h[1-6]|li|tr|blockquote|pre|hr)\b[^>]*/?\s*>`)
	tagRe          = regexp.MustCompile(`<[^>]*>`)
	horizSpaceRe   = regexp.MustCompile(`[ \t]+`)
	manyNewlinesRe = regexp.MustCompile(`\n{3,}`)
	leadingSpaceRe = regexp.MustCompile(`\n[ \t]+`)
)

// HTMLToText reduces an HTML body to paragraph-preserving plain text:
// block-level tags become newlines, every other tag is stripped, basic
// entities are decoded and whitespace runs are collapsed.
func HTMLToText(html string) string {
	text := strings.ReplaceAll(html, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	text = blockTagRe.ReplaceAllString(text, "\n")
	text = tagRe.ReplaceAllString(text, "")
	text = decodeEntities(text)
	text = horizSpaceRe.ReplaceAllString(text, " ")
	return collapseNewlines(text)
}

// collapseNewlines limits newline runs to two and trims the leading
// spaces left on each line by tag removal.
func collapseNewlines(text string) string {
	text = leadingSpaceRe.ReplaceAllString(text, "\n")
	text = manyNewlinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func decodeEntities(text string) string {
	replacer := strings.NewReplacer(
		"&nbsp;", " ",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&amp;", "&",
	)
	return replacer.Replace(text)
}
