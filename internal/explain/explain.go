// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package explain runs the explain pipeline: request an explanation and an
// illustration for a topic, then write both to a per-topic folder.
//
// Nothing is written until both generation steps have succeeded, so a
// failed run leaves no artifacts behind.
package explain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pdiddy/explainer/internal/artifact"
	"github.com/pdiddy/explainer/internal/generate"
	"github.com/pdiddy/explainer/internal/input"
	"github.com/pdiddy/explainer/pkg/types"
)

// Recorder stores a record of each successful run.
type Recorder interface {
	Record(ctx context.Context, run *types.Run) error
}

// Pipeline wires the generation clients to the artifact writer.
type Pipeline struct {
	Explainer   generate.Explainer
	Illustrator generate.Illustrator
	Writer      artifact.Writer

	// History is optional; a nil Recorder skips recording.
	History Recorder

	// Model and ImageModel are copied into history records.
	Model      string
	ImageModel string

	// Out receives operator-facing status lines. Nil discards them.
	Out io.Writer

	Logger *slog.Logger
}

// Result is the outcome of a successful run.
type Result struct {
	Bundle   *types.Bundle
	Artifact types.Artifact

	// RunID is the history record ID, empty when history is off or
	// recording failed.
	RunID string
}

// Normalize trims the request and drops negative context answers.
func Normalize(req types.Request) (types.Request, error) {
	if !input.ValidTopic(req.Topic) {
		return types.Request{}, fmt.Errorf("topic must be at least %d characters, got %q", input.MinTopicLength, req.Topic)
	}
	return types.Request{
		Topic:   strings.TrimSpace(req.Topic),
		Context: input.NormalizeContext(req.Context),
	}, nil
}

// Gather requests the explanation and then the illustration and returns
// them together. A failure in either step is reported to Out and returned
// wrapped in types.ErrGeneration or types.ErrIllustration.
func (p *Pipeline) Gather(ctx context.Context, req types.Request) (*types.Bundle, error) {
	out := p.out()
	log := p.logger()

	req, err := Normalize(req)
	if err != nil {
		return nil, err
	}

	log.Info("requesting explanation", slog.String("topic", req.Topic), slog.Bool("context", req.HasContext()))
	explanation, err := p.Explainer.Explain(ctx, req)
	if err != nil {
		err = ensureKind(err, types.ErrGeneration)
		fmt.Fprintf(out, "An error occurred: %v\n", err)
		return nil, err
	}

	log.Info("requesting illustration", slog.String("topic", req.Topic))
	ill, err := p.Illustrator.Illustrate(ctx, req.Topic)
	if err == nil && (ill == nil || ill.Image == nil) {
		err = errors.New("no image returned")
	}
	if err != nil {
		err = ensureKind(err, types.ErrIllustration)
		fmt.Fprintf(out, "An error occurred while fetching the image: %v\n", err)
		return nil, err
	}

	return &types.Bundle{
		Topic:           req.Topic,
		Context:         req.Context,
		Explanation:     explanation,
		Illustration:    ill.Image,
		IllustrationURL: ill.URL,
	}, nil
}

// Run gathers a bundle, writes it, and records the run. Filesystem errors
// are returned as-is; history errors are reported as warnings only.
func (p *Pipeline) Run(ctx context.Context, req types.Request) (*Result, error) {
	out := p.out()

	bundle, err := p.Gather(ctx, req)
	if err != nil {
		return nil, err
	}

	a, err := p.Writer.Write(bundle, out)
	if err != nil {
		return nil, fmt.Errorf("writing artifacts: %w", err)
	}
	fmt.Fprintf(out, "Explanation and files saved in %s.\n", a.Folder)

	res := &Result{Bundle: bundle, Artifact: a}
	if p.History != nil {
		run := &types.Run{
			Topic:       bundle.Topic,
			Context:     bundle.Context,
			Folder:      a.Folder,
			Model:       p.Model,
			ImageModel:  p.ImageModel,
			Explanation: bundle.Explanation,
		}
		if err := p.History.Record(ctx, run); err != nil {
			fmt.Fprintf(out, "warning: recording history failed: %v\n", err)
		} else {
			res.RunID = run.ID
		}
	}
	return res, nil
}

// ensureKind wraps err in kind unless it already carries it.
func ensureKind(err, kind error) error {
	if errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}

func (p *Pipeline) out() io.Writer {
	if p.Out == nil {
		return io.Discard
	}
	return p.Out
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.Logger
}
