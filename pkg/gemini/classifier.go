package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Classification labels the model is instructed to choose from.
const (
	ClassLead          = "lead"
	ClassSpam          = "spam"
	ClassPromotional   = "promotional"
	ClassTransactional = "transactional"
	ClassUnknown       = "unknown"
)

// maxBodyPrefix is how much of the message body goes into the prompt.
const maxBodyPrefix = 500

// Result is the structured verdict returned by the model.
type Result struct {
	Classification string  `json:"classification"`
	Confidence     float64 `json:"confidence"`
	Reason         string  `json:"reason"`
}

// Classifier calls the Gemini generative API with a fixed instruction
// prompt and a strict JSON response contract.
type Classifier struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClassifier(apiKey string) *Classifier {
	return &Classifier{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

// NewClassifierWithBaseURL is used by tests to point at a stub server
func NewClassifierWithBaseURL(apiKey, baseURL string) *Classifier {
	c := NewClassifier(apiKey)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// Enabled reports whether an API key is configured. When false,
// classification is skipped entirely and triage records stay pending.
func (c *Classifier) Enabled() bool {
	return c.apiKey != ""
}

// Request/response shapes for the generateContent endpoint. The error
// variant is decoded explicitly rather than probed from a generic map.

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// ClassifyEmail asks the model to triage one inbound email. The body is
// truncated to a short prefix; classification quality does not improve
// past the opening lines and the call is billed by token.
func (c *Classifier) ClassifyEmail(ctx context.Context, senderEmail, senderName, subject, body string) (*Result, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("gemini api key not configured")
	}

	if len(body) > maxBodyPrefix {
		cut := maxBodyPrefix
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut]
	}

	prompt := fmt.Sprintf(`You are an email triage assistant for a sales CRM. Classify the email below into exactly one of: lead, spam, promotional, transactional, unknown.

- "lead": a real person showing interest in doing business, asking questions, or replying to outreach
- "spam": unsolicited junk
- "promotional": marketing or newsletter content
- "transactional": receipts, alerts, account notices, automated confirmations
- "unknown": cannot tell

Respond with JSON only, no prose, in this exact shape:
{"classification": "<label>", "confidence": <0.0-1.0>, "reason": "<one short sentence>"}

From: %s <%s>
Subject: %s

%s`, senderName, senderEmail, subject, body)

	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/models/gemini-2.5-flash:generateContent?key=%s", c.baseURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gemini response read failed: %v", err)
	}

	var decoded generateResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("gemini response not JSON: %v", err)
	}
	if decoded.Error != nil {
		return nil, fmt.Errorf("gemini API error %d (%s): %s", decoded.Error.Code, decoded.Error.Status, decoded.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini API status %d: %s", resp.StatusCode, string(respBody))
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	text := strings.TrimSpace(decoded.Candidates[0].Content.Parts[0].Text)
	var result Result
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("gemini verdict not parseable: %v", err)
	}
	result.Classification = strings.ToLower(strings.TrimSpace(result.Classification))

	return &result, nil
}
