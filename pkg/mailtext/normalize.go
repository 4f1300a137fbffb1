package mailtext

import (
	"encoding/base64"
	"net/mail"
	"net/textproto"
	"strings"
	"time"
	"unicode/utf8"

	ingestiondomain "crmhub-backend/internal/ingestion/domain"

	"google.golang.org/api/gmail/v1"
)

// maxBodyLength bounds the cleaned body persisted downstream.
const maxBodyLength = 8192

// Normalizer converts a raw Gmail message into clean plain text. It is
// a total function: unparseable content falls back to an empty body,
// never an error.
type Normalizer struct {
	// ProductName parameterizes the trailing footer pattern stripped
	// from bodies ("Sent with <ProductName>" and variants).
	ProductName string
}

func NewNormalizer(productName string) *Normalizer {
	return &Normalizer{ProductName: productName}
}

func (n *Normalizer) Normalize(msg *gmail.Message) *ingestiondomain.NormalizedMessage {
	nm := &ingestiondomain.NormalizedMessage{
		ProviderMessageID: msg.Id,
		ThreadID:          msg.ThreadId,
		Headers:           map[string]string{},
		ReceivedAt:        time.Unix(msg.InternalDate/1000, 0),
	}
	if msg.InternalDate == 0 {
		nm.ReceivedAt = time.Now()
	}

	if msg.Payload == nil {
		return nm
	}

	for _, header := range msg.Payload.Headers {
		key := textproto.CanonicalMIMEHeaderKey(header.Name)
		if _, exists := nm.Headers[key]; !exists {
			nm.Headers[key] = header.Value
		}
	}

	nm.Subject = nm.Headers["Subject"]
	nm.SenderEmail, nm.SenderName = parseSender(nm.Headers["From"])

	body, isHTML := extractBody(msg.Payload)
	if isHTML {
		body = HTMLToText(body)
	} else {
		body = normalizePlainText(body)
	}

	body = n.stripQuotesAndFooter(body)
	nm.Body = strings.TrimSpace(truncateUTF8(body, maxBodyLength))

	return nm
}

// stripQuotesAndFooter removes the quoted reply chain and the known
// trailing footer. If stripping would remove the entire body, the
// pre-strip text is kept instead.
func (n *Normalizer) stripQuotesAndFooter(body string) string {
	stripped := StripQuotedReply(body)
	stripped = StripFooter(stripped, n.ProductName)
	if strings.TrimSpace(stripped) == "" && strings.TrimSpace(body) != "" {
		return body
	}
	return stripped
}

// parseSender splits a From header into (lowercased address, display name)
func parseSender(from string) (string, string) {
	if from == "" {
		return "", ""
	}
	if addr, err := mail.ParseAddress(from); err == nil {
		return strings.ToLower(strings.TrimSpace(addr.Address)), strings.TrimSpace(addr.Name)
	}
	// Fall back to a manual split of "Name <addr>" for headers the
	// stdlib parser rejects.
	name := ""
	email := from
	if idx := strings.Index(from, "<"); idx >= 0 {
		name = strings.Trim(strings.TrimSpace(from[:idx]), `"`)
		email = from[idx+1:]
		if end := strings.Index(email, ">"); end >= 0 {
			email = email[:end]
		}
	}
	return strings.ToLower(strings.TrimSpace(email)), name
}

// extractBody picks the message body: the top-level body if present,
// otherwise the first text/plain part, otherwise the first text/html
// part. Returns the decoded text and whether it is HTML.
func extractBody(payload *gmail.MessagePart) (string, bool) {
	if payload.Body != nil && payload.Body.Data != "" {
		if data := decodeBase64URL(payload.Body.Data); data != "" {
			return data, payload.MimeType == "text/html"
		}
	}

	var plainBody, htmlBody string

	var findBody func(parts []*gmail.MessagePart)
	findBody = func(parts []*gmail.MessagePart) {
		for _, part := range parts {
			if part.Body != nil && part.Body.Data != "" {
				switch part.MimeType {
				case "text/plain":
					if plainBody == "" {
						plainBody = decodeBase64URL(part.Body.Data)
					}
				case "text/html":
					if htmlBody == "" {
						htmlBody = decodeBase64URL(part.Body.Data)
					}
				}
			}
			if len(part.Parts) > 0 {
				findBody(part.Parts)
			}
		}
	}
	findBody(payload.Parts)

	if plainBody != "" {
		return plainBody, false
	}
	return htmlBody, true
}

// truncateUTF8 bounds s to at most max bytes without splitting a rune;
// a split would produce invalid UTF-8 that Postgres rejects on insert.
func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func decodeBase64URL(data string) string {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		// Gmail omits padding on some parts
		decoded, err = base64.RawURLEncoding.DecodeString(data)
		if err != nil {
			return ""
		}
	}
	return string(decoded)
}

// normalizePlainText applies the same newline discipline to plain-text
// bodies that HTML reduction produces.
func normalizePlainText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return collapseNewlines(text)
}
