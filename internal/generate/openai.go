// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/pdiddy/explainer/internal/httputil"
	"github.com/pdiddy/explainer/pkg/types"
)

// OpenAIClient talks to an OpenAI-compatible API. It implements both
// Explainer and Illustrator.
type OpenAIClient struct {
	client     *openai.Client
	httpClient *http.Client
	cfg        types.AIConfig
	userAgent  string
	logger     *slog.Logger
}

var (
	_ Explainer   = (*OpenAIClient)(nil)
	_ Illustrator = (*OpenAIClient)(nil)
)

// NewOpenAIClient builds a client from cfg. httpClient is used both for API
// calls and for fetching generated images; nil means http.DefaultClient.
func NewOpenAIClient(cfg types.ExplainConfig, httpClient *http.Client, logger *slog.Logger) *OpenAIClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ai := cfg.AIConfig
	if ai.Model == "" {
		ai.Model = DefaultModel
	}
	if ai.ImageModel == "" {
		ai.ImageModel = DefaultImageModel
	}
	if ai.ImageSize == "" {
		ai.ImageSize = DefaultImageSize
	}
	if ai.MaxTokens <= 0 {
		ai.MaxTokens = DefaultMaxTokens
	}

	clientCfg := openai.DefaultConfig(ai.APIKey)
	if ai.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(ai.BaseURL, "/")
	}
	clientCfg.HTTPClient = httpClient

	return &OpenAIClient{
		client:     openai.NewClientWithConfig(clientCfg),
		httpClient: httpClient,
		cfg:        ai,
		userAgent:  cfg.UserAgent,
		logger:     logger,
	}
}

// Explain sends a chat completion request and returns the trimmed content
// of the first choice.
func (c *OpenAIClient) Explain(ctx context.Context, req types.Request) (string, error) {
	prompt, err := ExplanationPrompt(req)
	if err != nil {
		return "", fmt.Errorf("%w: rendering prompt: %w", types.ErrGeneration, err)
	}

	c.logger.Debug("requesting explanation",
		slog.String("model", c.cfg.Model),
		slog.Int("max_tokens", c.cfg.MaxTokens),
		slog.Bool("context", req.HasContext()))

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: requesting explanation: %w", types.ErrGeneration, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", types.ErrGeneration)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("%w: empty explanation returned", types.ErrGeneration)
	}

	c.logger.Debug("explanation received",
		slog.Int("chars", len(text)),
		slog.String("finish_reason", string(resp.Choices[0].FinishReason)))
	return text, nil
}

// Illustrate requests one image, fetches it from the returned URL, and
// decodes it.
func (c *OpenAIClient) Illustrate(ctx context.Context, topic string) (*Illustration, error) {
	url, err := c.illustrationURL(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrIllustration, err)
	}

	c.logger.Debug("fetching illustration", slog.String("url", url))

	data, err := httputil.Fetch(ctx, c.httpClient, url, httputil.FetchOptions{
		UserAgent: c.userAgent,
		Accept:    "image/*",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: fetching image: %w", types.ErrIllustration, err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding image: %w", types.ErrIllustration, err)
	}

	b := img.Bounds()
	c.logger.Debug("illustration decoded",
		slog.String("format", format),
		slog.Int("width", b.Dx()),
		slog.Int("height", b.Dy()))

	return &Illustration{Image: img, Format: format, URL: url}, nil
}

func (c *OpenAIClient) illustrationURL(ctx context.Context, topic string) (string, error) {
	prompt, err := IllustrationPrompt(topic)
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}

	c.logger.Debug("requesting illustration",
		slog.String("model", c.cfg.ImageModel),
		slog.String("size", c.cfg.ImageSize))

	resp, err := c.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          c.cfg.ImageModel,
		N:              1,
		Size:           c.cfg.ImageSize,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return "", fmt.Errorf("requesting image: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", errors.New("no image URL returned")
	}
	return resp.Data[0].URL, nil
}
