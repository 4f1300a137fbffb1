package mailtext

import (
	"regexp"
	"strings"
)

var (
	// "On Mon, Jan 2, 2006 at 3:04 PM Jane Doe <jane@acme.com> wrote:"
	quoteHeaderRe = regexp.MustCompile(`(?m)^On (Mon|Tue|Wed|Thu|Fri|Sat|Sun)[a-z]*,?[^\n]*wrote:`)
	// Looser fallback for quote headers mangled by intermediate
	// clients: "On Mon, Jan 2" with no trailing "wrote:".
	quoteDateRe = regexp.MustCompile(`(?m)^On (Mon|Tue|Wed|Thu|Fri|Sat|Sun)[a-z]*, (Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]* \d{1,2}`)
)

// StripQuotedReply truncates the body at the first quoted-reply header
// and drops quoted (">"-prefixed) lines.
func StripQuotedReply(body string) string {
	if loc := quoteHeaderRe.FindStringIndex(body); loc != nil {
		body = body[:loc[0]]
	} else if loc := quoteDateRe.FindStringIndex(body); loc != nil {
		body = body[:loc[0]]
	}

	lines := strings.Split(body, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimLeft(line, " \t"), ">") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// StripFooter removes the trailing product footer ("Sent with <name>",
// "Sent via <name>", "Sent from <name>"), including anything after it.
// A deployment without a product name keeps bodies untouched.
func StripFooter(body, productName string) string {
	if productName == "" {
		return body
	}
	footerRe := regexp.MustCompile(`(?mi)^\s*(--\s*)?Sent (with|via|from) ` + regexp.QuoteMeta(productName) + `\b`)
	if loc := footerRe.FindStringIndex(body); loc != nil {
		return strings.TrimSpace(body[:loc[0]])
	}
	return body
}
