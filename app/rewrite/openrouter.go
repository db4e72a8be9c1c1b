package rewrite

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	goopenai "github.com/sashabaranov/go-openai"
)

const (
	DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	DefaultOpenRouterModel   = "openai/gpt-3.5-turbo"
)

// OpenRouterClient talks to any OpenAI-compatible chat completion API,
// OpenRouter by default.
type OpenRouterClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewOpenRouterClient(baseURL, model string, httpClient *http.Client) *OpenRouterClient {
	if baseURL == "" {
		baseURL = DefaultOpenRouterBaseURL
	}
	if model == "" {
		model = DefaultOpenRouterModel
	}

	return &OpenRouterClient{
		baseURL:    baseURL,
		model:      model,
		httpClient: httpClient,
	}
}

func (c *OpenRouterClient) Name() string {
	return "openrouter"
}

func (c *OpenRouterClient) Complete(ctx context.Context, apiKey, prompt string) (string, error) {
	config := goopenai.DefaultConfig(apiKey)
	config.BaseURL = c.baseURL
	if c.httpClient != nil {
		config.HTTPClient = c.httpClient
	}

	client := goopenai.NewClientWithConfig(config)

	resp, err := client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{
				Role:    goopenai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", classifyOpenRouterError(err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrMalformedResponse)
	}

	return resp.Choices[0].Message.Content, nil
}

// OpenRouter answers 429 when rate limited and 402 when the key is out of credits.
func classifyOpenRouterError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) && isQuotaStatus(apiErr.HTTPStatusCode) {
		return fmt.Errorf("%w: %w", ErrQuota, err)
	}

	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && isQuotaStatus(reqErr.HTTPStatusCode) {
		return fmt.Errorf("%w: %w", ErrQuota, err)
	}

	return fmt.Errorf("openrouter request failed: %w", err)
}

func isQuotaStatus(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusPaymentRequired
}
