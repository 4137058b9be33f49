// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero leaves the transport default in place.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent when fetching generated images
	// (e.g. "explainer/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds settings for the generative service.
type AIConfig struct {
	// Model is the chat model used for explanations (e.g. "gpt-3.5-turbo").
	Model string `json:"model" yaml:"model"`

	// ImageModel is the image model used for illustrations (e.g. "dall-e-2").
	ImageModel string `json:"image_model" yaml:"image_model"`

	// ImageSize is the requested illustration resolution (default "1024x1024").
	ImageSize string `json:"image_size" yaml:"image_size"`

	// MaxTokens caps the length of the explanation (default 500).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// BaseURL overrides the API endpoint for OpenAI-compatible services.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// APIKey is the authentication key for the service. Never persisted.
	APIKey string `json:"-" yaml:"-"`
}

// ExplainConfig holds settings for a single explain run.
type ExplainConfig struct {
	AIConfig   `yaml:",inline"`
	HTTPConfig `yaml:",inline"`

	// OutputDir is the root under which per-topic folders are created (default ".").
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// HistoryConfig holds settings for the run history store.
type HistoryConfig struct {
	// Dir is the directory holding history.db and exports (default ".explainer").
	Dir string `json:"dir" yaml:"dir"`

	// MaxResults is the default maximum number of listed runs (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}
