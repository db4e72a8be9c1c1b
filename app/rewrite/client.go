package rewrite

import (
	"fmt"
	"net/http"
)

const (
	BackendOpenRouter = "openrouter"
	BackendGemini     = "gemini"
	BackendOpenAI     = "openai"
)

var (
	_ Client = (*OpenRouterClient)(nil)
	_ Client = (*GeminiClient)(nil)
	_ Client = (*OpenAIClient)(nil)
)

// NewClient returns the Client for a backend name. Empty baseURL and model
// select the backend defaults.
func NewClient(backend, baseURL, model string, httpClient *http.Client) (Client, error) {
	switch backend {
	case BackendOpenRouter:
		return NewOpenRouterClient(baseURL, model, httpClient), nil
	case BackendGemini:
		return NewGeminiClient(baseURL, model), nil
	case BackendOpenAI:
		return NewOpenAIClient(baseURL, model, httpClient), nil
	default:
		return nil, fmt.Errorf("unsupported rewriter backend: %s", backend)
	}
}
