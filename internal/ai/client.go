package ai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-3.5-turbo"

	tracerName = "taskflow/internal/ai"
)

var (
	ErrNotConfigured   = errors.New("ai: api key not configured")
	ErrUnauthorized    = errors.New("ai: upstream rejected credentials")
	ErrUpstream        = errors.New("ai: upstream error")
	ErrEmptyCompletion = errors.New("ai: empty completion")
)

var (
	Requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Completion requests by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)
	Latency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "Completion request latency",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation"},
	)
)

func init() {
	prometheus.MustRegister(Requests)
	prometheus.MustRegister(Latency)
}

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

type openaiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Client talks to an OpenAI-compatible chat completions endpoint.
// Every call is a single request; there is no retry.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewClient(apiKey, baseURL, model string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

// Complete sends messages and returns the trimmed content of the first choice.
func (c *Client) Complete(ctx context.Context, op string, messages []Message, maxTokens int, temperature float64) (string, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "ai."+op, trace.WithAttributes(
		attribute.String("ai.operation", op),
		attribute.Int("ai.max_tokens", maxTokens),
		attribute.Float64("ai.temperature", temperature),
	))
	defer span.End()

	start := time.Now()
	out, err := c.complete(ctx, messages, maxTokens, temperature)
	Latency.WithLabelValues(op).Observe(time.Since(start).Seconds())

	if err != nil {
		Requests.WithLabelValues(op, outcome(err)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	Requests.WithLabelValues(op, "ok").Inc()
	span.SetAttributes(attribute.Int("ai.completion_chars", len(out)))
	span.SetStatus(codes.Ok, "")
	return out, nil
}

func (c *Client) complete(ctx context.Context, messages []Message, maxTokens int, temperature float64) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("ai.model", c.model))

	body, err := sonic.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := string(respBody)
		var apiErr openaiError
		if sonic.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return "", fmt.Errorf("%w: %s", ErrUnauthorized, msg)
		}
		return "", fmt.Errorf("%w (%d): %s", ErrUpstream, resp.StatusCode, msg)
	}

	var parsed chatResponse
	if err := sonic.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	if len(parsed.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrNotConfigured):
		return "disabled"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrEmptyCompletion):
		return "empty"
	default:
		return "error"
	}
}
