package mailtext

import (
	"encoding/base64"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gmailapi "google.golang.org/api/gmail/v1"
)

func encode(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func multipartMessage(from, subject string, parts ...*gmailapi.MessagePart) *gmailapi.Message {
	return &gmailapi.Message{
		Id:           "msg-1",
		ThreadId:     "thread-1",
		InternalDate: 1700000000000,
		Payload: &gmailapi.MessagePart{
			MimeType: "multipart/alternative",
			Headers: []*gmailapi.MessagePartHeader{
				{Name: "From", Value: from},
				{Name: "Subject", Value: subject},
			},
			Parts: parts,
		},
	}
}

func plainPart(body string) *gmailapi.MessagePart {
	return &gmailapi.MessagePart{
		MimeType: "text/plain",
		Body:     &gmailapi.MessagePartBody{Data: encode(body)},
	}
}

func htmlPart(body string) *gmailapi.MessagePart {
	return &gmailapi.MessagePart{
		MimeType: "text/html",
		Body:     &gmailapi.MessagePartBody{Data: encode(body)},
	}
}

func TestNormalizeParsesSender(t *testing.T) {
	n := NewNormalizer("")
	msg := multipartMessage("Jane Doe <Jane@Acme.com>", "Hello", plainPart("Hi there"))

	nm := n.Normalize(msg)

	assert.Equal(t, "jane@acme.com", nm.SenderEmail)
	assert.Equal(t, "Jane Doe", nm.SenderName)
	assert.Equal(t, "Hello", nm.Subject)
	assert.Equal(t, "thread-1", nm.ThreadID)
	assert.Equal(t, "Hi there", nm.Body)
}

func TestNormalizePrefersPlainTextOverHTML(t *testing.T) {
	n := NewNormalizer("")
	msg := multipartMessage("a@b.com", "S",
		htmlPart("<p>html version</p>"),
		plainPart("plain version"),
	)

	nm := n.Normalize(msg)
	assert.Equal(t, "plain version", nm.Body)
}

func TestNormalizeFallsBackToHTML(t *testing.T) {
	n := NewNormalizer("")
	msg := multipartMessage("a@b.com", "S", htmlPart("<div>Hello   <b>world</b></div><p>Next</p>"))

	nm := n.Normalize(msg)
	assert.Equal(t, "Hello world\n\nNext", nm.Body)
}

func TestNormalizeUnparseableBodyIsEmpty(t *testing.T) {
	n := NewNormalizer("")
	msg := multipartMessage("a@b.com", "S", &gmailapi.MessagePart{
		MimeType: "text/plain",
		Body:     &gmailapi.MessagePartBody{Data: "!!!not base64!!!"},
	})

	nm := n.Normalize(msg)
	assert.Equal(t, "", nm.Body)
}

func TestNormalizeNoPayload(t *testing.T) {
	n := NewNormalizer("")
	nm := n.Normalize(&gmailapi.Message{Id: "m"})
	assert.Equal(t, "", nm.Body)
	assert.Equal(t, "", nm.SenderEmail)
}

func TestHTMLToTextBlockTags(t *testing.T) {
	got := HTMLToText("<h1>Title</h1><div>Line one<br>Line two</div><ul><li>item</li></ul>")
	assert.Equal(t, "Title\n\nLine one\nLine two\n\nitem", got)
}

func TestHTMLToTextEntitiesAndWhitespace(t *testing.T) {
	got := HTMLToText("<p>a &amp; b&nbsp;&lt;c&gt;</p>\n\n\n\n<p>tail</p>")
	assert.Equal(t, "a & b <c>\n\ntail", got)
}

func TestStripQuotedReplyTruncatesAtQuoteHeader(t *testing.T) {
	body := "Thanks, sounds great!\n\nOn Mon, Jan 2, 2023 at 4:00 PM John Smith <john@x.com> wrote:\n> earlier message\n> more quoted"
	assert.Equal(t, "Thanks, sounds great!", StripQuotedReply(body))
}

func TestStripQuotedReplyLooseFallback(t *testing.T) {
	body := "Sure, works for me.\n\nOn Tue, Feb 14 John sent the following\nquoted stuff"
	assert.Equal(t, "Sure, works for me.", StripQuotedReply(body))
}

func TestStripQuotedReplyDropsQuotedLines(t *testing.T) {
	body := "reply line\n> quoted\n  > also quoted\nanother line"
	assert.Equal(t, "reply line\nanother line", StripQuotedReply(body))
}

func TestStripQuotedReplyIdempotent(t *testing.T) {
	body := "Thanks!\n\nOn Mon, Jan 2, 2023 at 4:00 PM John <j@x.com> wrote:\n> old"
	once := StripQuotedReply(body)
	assert.Equal(t, once, StripQuotedReply(once))
}

func TestNormalizeKeepsBodyWhenEntirelyQuoted(t *testing.T) {
	n := NewNormalizer("")
	quoted := "On Mon, Jan 2, 2023 at 4:00 PM John <j@x.com> wrote:\n> the whole thing"
	msg := multipartMessage("a@b.com", "S", plainPart(quoted))

	nm := n.Normalize(msg)
	require.NotEmpty(t, nm.Body)
	assert.Contains(t, nm.Body, "the whole thing")
}

func TestStripFooter(t *testing.T) {
	body := "Let's talk next week.\n\nSent with Acme CRM\nUnsubscribe here"
	assert.Equal(t, "Let's talk next week.", StripFooter(body, "Acme CRM"))
}

func TestStripFooterNoProductName(t *testing.T) {
	body := "Sent with Acme CRM"
	assert.Equal(t, body, StripFooter(body, ""))
}

func TestNormalizeTopLevelBodyPreferred(t *testing.T) {
	n := NewNormalizer("")
	msg := &gmailapi.Message{
		Id:           "m",
		InternalDate: 1700000000000,
		Payload: &gmailapi.MessagePart{
			MimeType: "text/plain",
			Headers: []*gmailapi.MessagePartHeader{
				{Name: "From", Value: "a@b.com"},
			},
			Body: &gmailapi.MessagePartBody{Data: encode("top level body")},
			Parts: []*gmailapi.MessagePart{
				plainPart("child body"),
			},
		},
	}

	nm := n.Normalize(msg)
	assert.Equal(t, "top level body", nm.Body)
}

func TestNormalizeBoundsBodyLength(t *testing.T) {
	n := NewNormalizer("")
	long := make([]byte, 3*maxBodyLength)
	for i := range long {
		long[i] = 'a'
	}
	msg := multipartMessage("a@b.com", "S", plainPart(string(long)))

	nm := n.Normalize(msg)
	assert.LessOrEqual(t, len(nm.Body), maxBodyLength)
}

func TestNormalizeTruncatesOnRuneBoundary(t *testing.T) {
	n := NewNormalizer("")
	// A leading ASCII byte pushes every following two-byte rune off the
	// byte boundary, so a naive byte cut would split one.
	long := "a" + strings.Repeat("é", maxBodyLength)
	msg := multipartMessage("a@b.com", "S", plainPart(long))

	nm := n.Normalize(msg)
	assert.LessOrEqual(t, len(nm.Body), maxBodyLength)
	assert.True(t, utf8.ValidString(nm.Body))
}

func TestNormalizeCanonicalizesHeaders(t *testing.T) {
	n := NewNormalizer("")
	msg := multipartMessage("a@b.com", "S", plainPart("x"))
	msg.Payload.Headers = append(msg.Payload.Headers, &gmailapi.MessagePartHeader{
		Name: "list-unsubscribe", Value: "<mailto:u@x.com>",
	})

	nm := n.Normalize(msg)
	assert.Equal(t, "<mailto:u@x.com>", nm.Header("List-Unsubscribe"))
}
