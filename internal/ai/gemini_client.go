package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// TextModel is the generative backend the suggester and classifier talk
// to. Tests substitute a canned implementation.
type TextModel interface {
	Generate(ctx context.Context, modelName, prompt string) (string, error)
	Close()
}

// GeminiClient interacts with Google Gemini API using the official SDK
type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient creates a new Gemini API client
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is empty")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiClient{client: client}, nil
}

// Close closes the client connection
func (c *GeminiClient) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Generate sends a prompt to the named model and returns the response text
func (c *GeminiClient) Generate(ctx context.Context, modelName, prompt string) (string, error) {
	model := c.client.GenerativeModel(modelName)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generation error: %w", err)
	}
	return responseText(resp)
}

// responseText joins the text parts of the first candidate. Safety-blocked
// candidates come back with nil Content.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 ||
		resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}

	var fullText string
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			fullText += string(txt)
		}
	}

	return fullText, nil
}

// fallbackModels are tried, in order, after the configured model when the
// service reports it unknown or unsupported.
var fallbackModels = []string{
	"gemini-2.0-flash",
	"gemini-1.5-flash",
	"gemini-1.5-pro",
}

// isModelNotFound classifies errors that mean "try the next model" rather
// than "the service is down".
func isModelNotFound(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") ||
		strings.Contains(msg, "not_found") ||
		strings.Contains(msg, "is not supported") ||
		strings.Contains(msg, "unsupported model")
}

// generateWithFallback walks the model candidate list. A not-found class
// error moves to the next candidate; any other error stops immediately.
func generateWithFallback(ctx context.Context, m TextModel, configured, prompt string) (string, error) {
	candidates := make([]string, 0, 1+len(fallbackModels))
	if configured != "" {
		candidates = append(candidates, configured)
	}
	for _, fb := range fallbackModels {
		if fb != configured {
			candidates = append(candidates, fb)
		}
	}

	var lastErr error
	for _, name := range candidates {
		text, err := m.Generate(ctx, name, prompt)
		if err == nil {
			return text, nil
		}
		if !isModelNotFound(err) {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("no usable model: %w", lastErr)
}
