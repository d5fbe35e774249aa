package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mkrivosheev/esg-auditor/internal/core/domain"
)

func fastOptions() Options {
	return Options{
		Timeout:          time.Second,
		RequestInterval:  time.Millisecond,
		TransportBackoff: time.Millisecond,
		ParseBackoff:     time.Millisecond,
		QuotaBackoff:     time.Millisecond,
		HTTPRateBackoff:  time.Millisecond,
	}
}

func sampleRequest() domain.AuditRequest {
	return domain.AuditRequest{
		Company: "Acme Corp",
		Year:    2024,
		Claims:  []domain.ClaimOccurrence{{Keyword: domain.ClaimNetZero, Page: 3, Context: "net zero by 2030"}},
	}
}

func modelReply(text string) string {
	reply := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]string{{"text": text}}}},
		},
	}
	raw, _ := json.Marshal(reply)
	return string(raw)
}

func TestAuditParsesFencedResponse(t *testing.T) {
	var capturedPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":generateContent") {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing api key in query")
		}
		var payload struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		capturedPrompt = payload.Contents[0].Parts[0].Text
		fmt.Fprint(w, modelReply("```json\n"+validBody+"\n```"))
	}))
	defer server.Close()

	client := New(server.URL, "gemini-2.0-flash", "test-key", fastOptions())
	result := client.Audit(context.Background(), sampleRequest())

	if result.OverallScore == nil || *result.OverallScore != 4 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if !strings.Contains(capturedPrompt, "Acme Corp") || !strings.Contains(capturedPrompt, "net zero") {
		t.Fatalf("prompt missing request data: %s", capturedPrompt)
	}
}

func TestAuditRetriesAfterRateLimit(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, modelReply(validBody))
	}))
	defer server.Close()

	client := New(server.URL, "gemini-2.0-flash", "k", fastOptions())
	result := client.Audit(context.Background(), sampleRequest())

	if attempts != 2 {
		t.Fatalf("expected retry after 429, got %d attempts", attempts)
	}
	if result.OverallScore == nil {
		t.Fatalf("expected parsed result after retry: %+v", result)
	}
}

func TestAuditTransportFailureYieldsFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := New(server.URL, "gemini-2.0-flash", "k", fastOptions())
	result := client.Audit(context.Background(), sampleRequest())

	if result.OverallScore != nil {
		t.Fatalf("fallback must carry no score: %+v", result)
	}
	if result.OverallSummary != "Audit failed: Max retries exceeded" {
		t.Fatalf("unexpected summary: %q", result.OverallSummary)
	}
	if len(result.ClaimReviews) != 1 || result.ClaimReviews[0].Reason != "Could not evaluate due to processing error" {
		t.Fatalf("unexpected reviews: %+v", result.ClaimReviews)
	}
}

func TestAuditUnparseableResponseKeepsRawCopy(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		fmt.Fprint(w, modelReply("I am unable to produce JSON today. "+strings.Repeat("sorry ", 200)))
	}))
	defer server.Close()

	client := New(server.URL, "gemini-2.0-flash", "k", fastOptions())
	result := client.Audit(context.Background(), sampleRequest())

	if attempts != 3 {
		t.Fatalf("expected 3 parse attempts, got %d", attempts)
	}
	if result.RawResponse == "" {
		t.Fatalf("expected raw response copy on partial result")
	}
	if len(result.RawResponse) > rawResponseLimit {
		t.Fatalf("raw copy exceeds limit: %d", len(result.RawResponse))
	}
	if result.OverallScore != nil {
		t.Fatalf("partial result must carry no score")
	}
	if len(result.ClaimReviews) != 0 {
		t.Fatalf("partial result must carry empty reviews, got %d", len(result.ClaimReviews))
	}
	if result.OverallSummary != "Failed to parse AI response" {
		t.Fatalf("unexpected summary: %q", result.OverallSummary)
	}
}

func TestAuditUnexpectedStatusFailsImmediately(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(server.URL, "gemini-2.0-flash", "k", fastOptions())
	result := client.Audit(context.Background(), sampleRequest())

	if attempts != 1 {
		t.Fatalf("unexpected status must not be retried, got %d attempts", attempts)
	}
	if !strings.Contains(result.OverallSummary, "500") {
		t.Fatalf("unexpected summary: %q", result.OverallSummary)
	}
}

func TestAuditEmbeddedQuotaErrorIsRetried(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			fmt.Fprint(w, `{"error": {"message": "Quota exceeded for requests per minute", "status": "RESOURCE_EXHAUSTED"}}`)
			return
		}
		fmt.Fprint(w, modelReply(validBody))
	}))
	defer server.Close()

	client := New(server.URL, "gemini-2.0-flash", "k", fastOptions())
	result := client.Audit(context.Background(), sampleRequest())

	if attempts != 2 {
		t.Fatalf("expected retry after embedded quota error, got %d attempts", attempts)
	}
	if result.OverallScore == nil {
		t.Fatalf("expected parsed result after retry")
	}
}

func TestAuditEmbeddedServiceErrorFailsImmediately(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		fmt.Fprint(w, `{"error": {"message": "API key not valid", "status": "INVALID_ARGUMENT"}}`)
	}))
	defer server.Close()

	client := New(server.URL, "gemini-2.0-flash", "k", fastOptions())
	result := client.Audit(context.Background(), sampleRequest())

	if attempts != 1 {
		t.Fatalf("non-quota service error must not be retried, got %d attempts", attempts)
	}
	if !strings.Contains(result.OverallSummary, "API key not valid") {
		t.Fatalf("unexpected summary: %q", result.OverallSummary)
	}
	if len(result.ClaimReviews) != 1 || result.ClaimReviews[0].Reason != "Could not evaluate due to processing error" {
		t.Fatalf("unexpected reviews: %+v", result.ClaimReviews)
	}
}
