// Package gemini provides a model adapter for the Google Gemini API. It is
// the default backend of the application.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"os"

	"google.golang.org/genai"

	"github.com/ascend-ai/ascend/core"
	"github.com/ascend-ai/ascend/model"
)

// ErrMissingAPIKey is returned at construction when no credential is
// configured. Credential problems are fatal before any request is made.
var ErrMissingAPIKey = errors.New("gemini: missing API key (set GOOGLE_API_KEY or Options.APIKey)")

// Options configures the Gemini model adapter (model id, temperature, max
// output tokens, API key). Extend via functional options to preserve
// stability.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int32
	APIKey      string
}

// Model wraps the Gemini GenerateContent API behind the generic model.Model interface.
type Model struct {
	client *genai.Client
	opts   Options
}

// NewModel creates a new Gemini model using the official client. The client
// is constructed eagerly so that a missing or rejected credential fails here
// rather than on the first request.
func NewModel(ctx context.Context, optFns ...func(o *Options)) (*Model, error) {
	opts := Options{
		Model:       "gemini-2.0-flash-lite",
		Temperature: 0.7,
		MaxTokens:   4000,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.APIKey == "" {
		opts.APIKey = os.Getenv("GOOGLE_API_KEY")
	}
	if opts.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &Model{client: client, opts: opts}, nil
}

// Complete implements model.Model by mapping role-tagged messages onto the
// Gemini content format (system messages become the system instruction,
// assistant messages the "model" role).
func (m *Model) Complete(ctx context.Context, req model.Request) (*model.Response, error) {
	contents, system := buildContents(req.Messages)

	temperature := float32(m.opts.Temperature)
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: m.opts.MaxTokens,
	}
	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	result, err := m.client.Models.GenerateContent(ctx, m.opts.Model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini api error: %w", err)
	}
	if result == nil || len(result.Candidates) == 0 {
		return nil, errors.New("gemini: empty response")
	}

	resp := &model.Response{
		Content:      result.Text(),
		FinishReason: finishReason(result),
	}
	if result.UsageMetadata != nil {
		resp.Usage = &model.TokenUsage{
			PromptTokens:     int(result.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(result.UsageMetadata.TotalTokenCount),
		}
	}
	return resp, nil
}

// buildContents converts messages to Gemini contents, splitting out the
// concatenated system instruction.
func buildContents(messages []core.Message) ([]*genai.Content, string) {
	var contents []*genai.Content
	var system string

	for _, msg := range messages {
		switch msg.Role {
		case core.RoleSystem:
			if system != "" {
				system += "\n"
			}
			system += msg.Text
		case core.RoleAssistant:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{{Text: msg.Text}},
			})
		default:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleUser,
				Parts: []*genai.Part{{Text: msg.Text}},
			})
		}
	}
	return contents, system
}

func finishReason(result *genai.GenerateContentResponse) string {
	if len(result.Candidates) > 0 && result.Candidates[0].FinishReason != "" {
		return string(result.Candidates[0].FinishReason)
	}
	return "stop"
}

// Info returns metadata describing this Gemini model implementation.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "gemini"}
}
