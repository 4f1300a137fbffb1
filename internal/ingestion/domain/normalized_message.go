package domain

import "time"

// NormalizedMessage is the cleaned, immutable form of one inbound
// provider message: decoded, HTML reduced to text, quoted reply chains
// and footers stripped.
type NormalizedMessage struct {
	ProviderMessageID string
	ThreadID          string
	SenderEmail       string
	SenderName        string
	Subject           string
	Body              string
	Headers           map[string]string
	ReceivedAt        time.Time
}

// Header returns a header value by canonical MIME key; keys are
// canonicalized when the message is normalized.
func (m *NormalizedMessage) Header(key string) string {
	if m.Headers == nil {
		return ""
	}
	return m.Headers[key]
}
