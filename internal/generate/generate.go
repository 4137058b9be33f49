// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate requests explanations and illustrations from a
// generative service.
package generate

import (
	"context"
	"image"

	// Registered decoders for generated images.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/pdiddy/explainer/pkg/types"
)

const (
	DefaultModel      = "gpt-3.5-turbo"
	DefaultImageModel = "dall-e-2"
	DefaultImageSize  = "1024x1024"
	DefaultMaxTokens  = 500
)

// Explainer produces a plain-text explanation for a request. Failures wrap
// types.ErrGeneration.
type Explainer interface {
	Explain(ctx context.Context, req types.Request) (string, error)
}

// Illustrator produces a decoded illustration for a topic. Failures wrap
// types.ErrIllustration.
type Illustrator interface {
	Illustrate(ctx context.Context, topic string) (*Illustration, error)
}

// Illustration is a generated image held in memory.
type Illustration struct {
	Image image.Image

	// Format is the name of the codec the image was decoded with
	// (e.g. "png").
	Format string

	// URL is where the image was fetched from.
	URL string
}
