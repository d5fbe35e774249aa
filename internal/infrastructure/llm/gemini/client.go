package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mkrivosheev/esg-auditor/internal/core/domain"
)

const rawResponseLimit = 500

// Client audits sustainability claims through the Gemini generateContent
// API. It never returns an error: every failure mode degrades to a
// deterministic fallback result, so one stubborn document cannot wedge the
// pipeline.
type Client struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger

	maxOutputTokens int
	maxAttempts     int

	transportBackoff time.Duration
	parseBackoff     time.Duration
	quotaBackoff     time.Duration
	httpRateBackoff  time.Duration
}

type Options struct {
	Timeout         time.Duration
	RequestInterval time.Duration
	MaxOutputTokens int
	Logger          *slog.Logger

	// Backoff bases; each defaults to the production value when zero.
	TransportBackoff time.Duration
	ParseBackoff     time.Duration
	QuotaBackoff     time.Duration
	HTTPRateBackoff  time.Duration
}

func New(baseURL, model, apiKey string, options Options) *Client {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	interval := options.RequestInterval
	if interval <= 0 {
		interval = 6 * time.Second
	}
	maxOutputTokens := options.MaxOutputTokens
	if maxOutputTokens <= 0 {
		maxOutputTokens = 2048
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:          strings.TrimRight(baseURL, "/"),
		model:            model,
		apiKey:           apiKey,
		httpClient:       &http.Client{Timeout: timeout},
		limiter:          rate.NewLimiter(rate.Every(interval), 1),
		logger:           logger,
		maxOutputTokens:  maxOutputTokens,
		maxAttempts:      3,
		transportBackoff: backoffOrDefault(options.TransportBackoff, 3*time.Second),
		parseBackoff:     backoffOrDefault(options.ParseBackoff, 2*time.Second),
		quotaBackoff:     backoffOrDefault(options.QuotaBackoff, 10*time.Second),
		httpRateBackoff:  backoffOrDefault(options.HTTPRateBackoff, 15*time.Second),
	}
}

func backoffOrDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

func (c *Client) Audit(ctx context.Context, req domain.AuditRequest) domain.AuditResult {
	prompt := buildAuditPrompt(req)

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return domain.FallbackAudit(req.Claims, "request cancelled")
		}

		raw, apiErr, status, err := c.generate(ctx, prompt)
		switch {
		case err != nil:
			c.logger.Warn("gemini transport error", "attempt", attempt, "error", err)
			if !c.pause(ctx, c.transportBackoff) {
				return domain.FallbackAudit(req.Claims, "request cancelled")
			}
			continue

		case status == http.StatusTooManyRequests:
			c.logger.Warn("gemini rate limited", "attempt", attempt)
			if !c.pause(ctx, c.httpRateBackoff*time.Duration(attempt)) {
				return domain.FallbackAudit(req.Claims, "request cancelled")
			}
			continue

		case status >= 300:
			c.logger.Error("gemini unexpected status", "status", status)
			return domain.FallbackAudit(req.Claims, fmt.Sprintf("model request failed with status %d", status))
		}

		if apiErr != nil {
			if looksRateLimited(apiErr.Status + " " + apiErr.Message) {
				c.logger.Warn("gemini quota exhausted", "attempt", attempt, "status", apiErr.Status)
				if !c.pause(ctx, c.quotaBackoff*time.Duration(attempt)) {
					return domain.FallbackAudit(req.Claims, "request cancelled")
				}
				continue
			}
			c.logger.Error("gemini service error", "status", apiErr.Status, "message", apiErr.Message)
			return domain.FallbackAudit(req.Claims, "model error: "+apiErr.Message)
		}

		result, err := parseAuditResponse(raw)
		if err != nil {
			c.logger.Warn("gemini unparseable response", "attempt", attempt, "error", err)
			if attempt == c.maxAttempts {
				return domain.PartialAudit(truncateRaw(raw, rawResponseLimit))
			}
			if !c.pause(ctx, c.parseBackoff) {
				return domain.FallbackAudit(req.Claims, "request cancelled")
			}
			continue
		}
		return result
	}

	return domain.FallbackAudit(req.Claims, "Max retries exceeded")
}

// apiError is the error object the API embeds in a 200 body, the shape
// quota exhaustion arrives in.
type apiError struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

func (c *Client) generate(ctx context.Context, prompt string) (string, *apiError, int, error) {
	payload := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
		"generationConfig": map[string]any{
			"temperature":     0.1,
			"topP":            0.95,
			"maxOutputTokens": c.maxOutputTokens,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", nil, 0, fmt.Errorf("marshal generate request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", nil, 0, fmt.Errorf("create generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", nil, 0, fmt.Errorf("gemini generate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 2048))
		return "", nil, resp.StatusCode, nil
	}

	var response struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
		Error *apiError `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", nil, resp.StatusCode, fmt.Errorf("decode generate response: %w", err)
	}
	if response.Error != nil {
		return "", response.Error, resp.StatusCode, nil
	}

	var text strings.Builder
	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			text.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(text.String()), nil, resp.StatusCode, nil
}

// looksRateLimited classifies an embedded error body as quota exhaustion by
// its status and message wording.
func looksRateLimited(errText string) bool {
	lower := strings.ToLower(errText)
	return strings.Contains(lower, "resource_exhausted") ||
		strings.Contains(lower, "resource exhausted") ||
		strings.Contains(lower, "quota exceeded") ||
		strings.Contains(lower, "rate limit exceeded")
}

func (c *Client) pause(ctx context.Context, wait time.Duration) bool {
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
