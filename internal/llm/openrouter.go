package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mailbrief/internal/config"
	"mailbrief/pkg/circuitbreaker"
	"mailbrief/pkg/metrics"
	"mailbrief/pkg/trace"
)

// OpenRouterClient implements Completer against an OpenAI-compatible
// chat-completions endpoint.
type OpenRouterClient struct {
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
	cb          *circuitbreaker.CircuitBreaker // 熔断器
}

func NewOpenRouterClient(cfg config.LLMConfig) *OpenRouterClient {
	return &OpenRouterClient{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		cb: circuitbreaker.New(circuitbreaker.DefaultConfig()),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends one instruction + input pair and returns the generated
// text verbatim. Identical inputs produce identical requests. All
// transport, status and decode failures come back as *CompletionError.
func (c *OpenRouterClient) Complete(ctx context.Context, instruction Instruction, input string) (string, error) {
	var content string

	err := c.cb.Execute(func() error {
		start := time.Now()
		status := "success"

		out, err := c.doRequest(ctx, instruction, input)
		if err != nil {
			status = "error"
		}
		metrics.RecordCompletionCallLatency(instruction.Name, status, time.Since(start))

		content = out
		return err
	})
	if err != nil {
		return "", &CompletionError{Instruction: instruction.Name, Err: err}
	}
	return content, nil
}

func (c *OpenRouterClient) doRequest(ctx context.Context, instruction Instruction, input string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: instruction.System},
			{Role: "user", Content: fmt.Sprintf(instruction.User, input)},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	// 传播 trace_id
	if traceID := trace.FromContext(ctx); traceID != "" {
		req.Header.Set(trace.HeaderName(), traceID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr chatResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("completion service %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("completion service returned %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decoding completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion response has no choices")
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
