// Package ai wraps a generative language provider for chat, planning and
// dashboard insights.
package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/syariahos/syariahos-api/internal/config"
	"github.com/syariahos/syariahos-api/internal/metrics"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ErrUnavailable is returned when the provider is unconfigured, times out or
// answers with an error.
var ErrUnavailable = errors.New("AI service unavailable")

const maxResponseBytes = 4 << 20

// Role names accepted by the provider.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Message is one turn of a conversation.
type Message struct {
	Role string
	Text string
}

// Generator produces text from a conversation.
type Generator interface {
	Generate(ctx context.Context, operation, system string, messages []Message) (string, error)
}

// Client calls a generateContent endpoint.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

// NewClient constructs a Client from config.
func NewClient(cfg config.AIConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultAITimeout
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = config.DefaultAIBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = config.DefaultAIModel
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(cfg.APIKey),
		model:   model,
		http:    &http.Client{Timeout: timeout},
	}
}

// Generate sends one request and returns the first candidate's text.
func (c *Client) Generate(ctx context.Context, operation, system string, messages []Message) (string, error) {
	text, errGenerate := c.generate(ctx, system, messages)
	status := "ok"
	if errGenerate != nil {
		status = "error"
		log.WithError(errGenerate).WithField("operation", operation).Warn("ai: generate failed")
	}
	metrics.AIRequestsTotal.WithLabelValues(operation, status).Inc()
	if errGenerate != nil {
		return "", ErrUnavailable
	}
	return text, nil
}

func (c *Client) generate(ctx context.Context, system string, messages []Message) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("missing api key")
	}
	body, errBody := buildRequestBody(system, messages)
	if errBody != nil {
		return "", errBody
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))
	req, errReq := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(body)))
	if errReq != nil {
		return "", fmt.Errorf("build request: %w", errReq)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, errDo := c.http.Do(req)
	if errDo != nil {
		return "", fmt.Errorf("request failed: %w", errDo)
	}
	defer func() {
		if errClose := resp.Body.Close(); errClose != nil {
			log.WithError(errClose).Warn("ai: close response body failed")
		}
	}()

	payload, errRead := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if errRead != nil {
		return "", fmt.Errorf("read response: %w", errRead)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, gjson.GetBytes(payload, "error.message").String())
	}
	text := gjson.GetBytes(payload, "candidates.0.content.parts.0.text").String()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("empty candidate")
	}
	return text, nil
}

func buildRequestBody(system string, messages []Message) ([]byte, error) {
	body := []byte(`{"contents":[]}`)
	var errSet error
	if strings.TrimSpace(system) != "" {
		body, errSet = sjson.SetBytes(body, "systemInstruction.parts.0.text", system)
		if errSet != nil {
			return nil, fmt.Errorf("build request body: %w", errSet)
		}
	}
	for i, msg := range messages {
		role := msg.Role
		if role != RoleModel {
			role = RoleUser
		}
		body, errSet = sjson.SetBytes(body, fmt.Sprintf("contents.%d.role", i), role)
		if errSet != nil {
			return nil, fmt.Errorf("build request body: %w", errSet)
		}
		body, errSet = sjson.SetBytes(body, fmt.Sprintf("contents.%d.parts.0.text", i), msg.Text)
		if errSet != nil {
			return nil, fmt.Errorf("build request body: %w", errSet)
		}
	}
	return body, nil
}

// StripCodeFence removes a surrounding markdown code fence, if any.
func StripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		trimmed = trimmed[idx+1:]
	} else {
		trimmed = ""
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
