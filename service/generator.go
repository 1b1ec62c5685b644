package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	DefaultGeminiModel   = "gemini-2.0-flash"
	DefaultGeminiTimeout = 120 * time.Second
)

// DocumentPayload is a binary document sent as-is to the generative model
type DocumentPayload struct {
	MIMEType string
	Data     []byte
}

// GenerateInput represents one request to the generative model
type GenerateInput struct {
	Instruction string
	Document    *DocumentPayload
	Temperature float32
}

// Generator produces free text from an instruction and an optional document
type Generator interface {
	Generate(ctx context.Context, apiKey string, in GenerateInput) (string, error)
}

// GeminiGenerator calls Gemini through the Go SDK. A client is opened per call
// because the API key belongs to the session, not to the server.
type GeminiGenerator struct {
	model   string
	timeout time.Duration
}

// NewGeminiGenerator creates a Gemini generator. Zero values fall back to the defaults.
func NewGeminiGenerator(model string, timeout time.Duration) *GeminiGenerator {
	if model == "" {
		model = DefaultGeminiModel
	}
	if timeout <= 0 {
		timeout = DefaultGeminiTimeout
	}
	return &GeminiGenerator{model: model, timeout: timeout}
}

// Generate runs the instruction. Every failure is reported as ErrGenerationUnavailable.
func (g *GeminiGenerator) Generate(ctx context.Context, apiKey string, in GenerateInput) (string, error) {
	if apiKey == "" {
		return "", ErrMissingCredential
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", fmt.Errorf("%w: failed to create client: %w", ErrGenerationUnavailable, err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)
	model.SetTemperature(in.Temperature)

	parts := make([]genai.Part, 0, 2)
	if in.Document != nil && len(in.Document.Data) > 0 {
		parts = append(parts, genai.Blob{MIMEType: in.Document.MIMEType, Data: in.Document.Data})
	}
	parts = append(parts, genai.Text(in.Instruction))

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGenerationUnavailable, err)
	}

	text, err := responseText(resp)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGenerationUnavailable, err)
	}
	return text, nil
}

// responseText concatenates the text parts of each candidate; candidates are
// separated by a blank line
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", errors.New("empty response")
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", errors.New("no candidates")
	}

	texts := make([]string, 0, len(resp.Candidates))
	finish := genai.FinishReasonUnspecified
	for _, cand := range resp.Candidates {
		if cand == nil {
			continue
		}
		if finish == genai.FinishReasonUnspecified {
			finish = cand.FinishReason
		}
		if cand.Content == nil {
			continue
		}
		var b strings.Builder
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if text := strings.TrimSpace(b.String()); text != "" {
			texts = append(texts, text)
		}
	}

	if len(texts) == 0 {
		return "", fmt.Errorf("no text in response (finish reason: %s)", finish)
	}
	return strings.Join(texts, "\n\n"), nil
}
