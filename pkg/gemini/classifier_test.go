package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func verdictServer(t *testing.T, verdict string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, ":generateContent")

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Contents)
		require.NotNil(t, req.GenerationConfig)
		assert.Equal(t, "application/json", req.GenerationConfig.ResponseMimeType)

		body := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": verdict}}}},
			},
		}
		json.NewEncoder(w).Encode(body)
	}))
}

func TestClassifyEmailParsesVerdict(t *testing.T) {
	srv := verdictServer(t, `{"classification": "Lead", "confidence": 0.82, "reason": "asks for a demo"}`)
	defer srv.Close()

	c := NewClassifierWithBaseURL("test-key", srv.URL)
	result, err := c.ClassifyEmail(context.Background(), "cto@startup.io", "Sam", "Demo request", "Can we see a demo next week?")
	require.NoError(t, err)

	assert.Equal(t, ClassLead, result.Classification)
	assert.Equal(t, 0.82, result.Confidence)
	assert.Equal(t, "asks for a demo", result.Reason)
}

func TestClassifyEmailAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"code": 429, "message": "quota exceeded", "status": "RESOURCE_EXHAUSTED"}}`))
	}))
	defer srv.Close()

	c := NewClassifierWithBaseURL("test-key", srv.URL)
	_, err := c.ClassifyEmail(context.Background(), "a@b.com", "A", "S", "body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestClassifyEmailUnparseableVerdict(t *testing.T) {
	srv := verdictServer(t, "I think this is probably a lead.")
	defer srv.Close()

	c := NewClassifierWithBaseURL("test-key", srv.URL)
	_, err := c.ClassifyEmail(context.Background(), "a@b.com", "A", "S", "body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "verdict not parseable")
}

func TestClassifyEmailNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer srv.Close()

	c := NewClassifierWithBaseURL("test-key", srv.URL)
	_, err := c.ClassifyEmail(context.Background(), "a@b.com", "A", "S", "body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}

func TestClassifierDisabledWithoutKey(t *testing.T) {
	c := NewClassifier("")
	assert.False(t, c.Enabled())

	_, err := c.ClassifyEmail(context.Background(), "a@b.com", "A", "S", "body")
	require.Error(t, err)
}

func TestClassifierEnabled(t *testing.T) {
	assert.True(t, NewClassifier("key").Enabled())
}
