package ollama

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"stockadvisor/internal/logger"
	"stockadvisor/internal/store"
	"stockadvisor/internal/trace"
	"stockadvisor/internal/types"
)

// ErrUnavailable means the Ollama server could not be reached.
var ErrUnavailable = errors.New("ollama unavailable")

// ErrGateway means the server answered with an error status or a body the
// client could not use.
var ErrGateway = errors.New("ollama gateway error")

const healthTimeout = 5 * time.Second

// Client talks to a local Ollama server over its /api/chat endpoint.
type Client struct {
	http  *resty.Client
	model string
}

func NewClient(cfg *store.Config) *Client {
	timeout := time.Duration(cfg.Ollama.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		http: resty.New().
			SetBaseURL(cfg.Ollama.Host).
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json"),
		model: cfg.Ollama.Model,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
	Error   string      `json:"error,omitempty"`
}

func (c *Client) buildRequest(req types.GenerateRequest, stream bool) chatRequest {
	messages := []chatMessage{}
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	options := map[string]any{
		"temperature": req.Temperature,
	}
	if req.TopP > 0 {
		options["top_p"] = req.TopP
	}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}

	return chatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   stream,
		Options:  options,
	}
}

// Generate runs one non-streaming chat completion and returns the assistant
// message text.
func (c *Client) Generate(ctx context.Context, req types.GenerateRequest) (string, error) {
	timer := logger.StartOperation(ctx, "ollama-generate", "model", c.model)
	ctx = timer.GetContext()

	var out chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(c.buildRequest(req, false)).
		SetResult(&out).
		Post("/api/chat")
	if err != nil {
		timer.EndWithError(err)
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.IsError() {
		err := fmt.Errorf("%w: http %d: %s", ErrGateway, resp.StatusCode(), resp.String())
		timer.EndWithError(err)
		return "", err
	}
	if out.Error != "" {
		err := fmt.Errorf("%w: %s", ErrGateway, out.Error)
		timer.EndWithError(err)
		return "", err
	}

	timer.End()
	return out.Message.Content, nil
}

// GenerateStream runs a streaming chat completion. Text chunks arrive on the
// first channel in order; the second channel delivers at most one error and
// both close when the stream ends.
func (c *Client) GenerateStream(ctx context.Context, req types.GenerateRequest) (<-chan string, <-chan error) {
	chunks := make(chan string)
	errc := make(chan error, 1)

	go func() {
		defer close(chunks)
		defer close(errc)

		ctx, span := trace.StartSpan(ctx, "ollama-generate-stream")
		defer span.End()

		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(c.buildRequest(req, true)).
			SetDoNotParseResponse(true).
			Post("/api/chat")
		if err != nil {
			errc <- fmt.Errorf("%w: %v", ErrUnavailable, err)
			return
		}
		body := resp.RawBody()
		defer body.Close()

		if resp.StatusCode() >= 300 {
			errc <- fmt.Errorf("%w: http %d", ErrGateway, resp.StatusCode())
			return
		}

		// Ollama streams newline-delimited JSON objects.
		scanner := bufio.NewScanner(body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			var part chatResponse
			if err := json.Unmarshal(scanner.Bytes(), &part); err != nil {
				logger.Warn(ctx, "Skipping malformed stream line", "error", err)
				continue
			}
			if part.Error != "" {
				errc <- fmt.Errorf("%w: %s", ErrGateway, part.Error)
				return
			}
			if part.Message.Content != "" {
				select {
				case chunks <- part.Message.Content:
				case <-ctx.Done():
					errc <- ctx.Err()
					return
				}
			}
			if part.Done {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			errc <- fmt.Errorf("%w: %v", ErrGateway, err)
		}
	}()

	return chunks, errc
}

// HealthCheck asks the server for its model list. Any 2xx answer counts as
// healthy.
func (c *Client) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	resp, err := c.http.R().SetContext(ctx).Get("/api/tags")
	if err != nil {
		logger.Debug(ctx, "Ollama health check failed", "error", err)
		return false
	}
	return resp.IsSuccess()
}
