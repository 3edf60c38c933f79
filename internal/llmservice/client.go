package llmservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"docchat/internal/config"
)

// ErrGenerationFailure wraps any failure of the remote completion service so
// callers can surface it to the user instead of aborting the turn silently.
var ErrGenerationFailure = errors.New("generation failure")

// Generator produces an answer for a fully composed prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Client is a Generator backed by an OpenAI-compatible chat completion
// endpoint. One synchronous call per turn, fixed temperature, no streaming,
// no retry.
type Client struct {
	cfg *config.LLMConfig
}

func NewClient(cfg *config.LLMConfig) *Client {
	return &Client{cfg: cfg}
}

// Generate sends the prompt as a single user-role message and returns the
// completion verbatim.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	messages := []llms.MessageContent{
		{
			Role:  schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}
	res, err := GenerateContent(ctx, c.cfg, messages)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailure, err)
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response from model", ErrGenerationFailure)
	}
	return res.Choices[0].Content, nil
}

// GenerateContent calls the chat model with the given messages.
func GenerateContent(ctx context.Context, llmConfig *config.LLMConfig, messages []llms.MessageContent) (*llms.ContentResponse, error) {
	log.Debug().Str("model", llmConfig.Model).Msg("Generating content")
	llm, err := openai.New(
		openai.WithBaseURL(llmConfig.BaseURL),
		openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
		openai.WithModel(llmConfig.Model),
	)
	if err != nil {
		return nil, err
	}
	return llm.GenerateContent(ctx, messages, llms.WithTemperature(llmConfig.Temperature))
}
