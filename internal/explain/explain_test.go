// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package explain

import (
	"bytes"
	"context"
	"errors"
	"image"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/explainer/internal/artifact"
	"github.com/pdiddy/explainer/internal/generate"
	"github.com/pdiddy/explainer/pkg/types"
)

// --- mocks ---

type mockExplainer struct {
	text  string
	err   error
	calls []types.Request
}

func (m *mockExplainer) Explain(_ context.Context, req types.Request) (string, error) {
	m.calls = append(m.calls, req)
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

type mockIllustrator struct {
	err   error
	nilOK bool // return (nil, nil)
	calls []string
}

func (m *mockIllustrator) Illustrate(_ context.Context, topic string) (*generate.Illustration, error) {
	m.calls = append(m.calls, topic)
	if m.err != nil {
		return nil, m.err
	}
	if m.nilOK {
		return nil, nil
	}
	return &generate.Illustration{
		Image:  image.NewRGBA(image.Rect(0, 0, 4, 4)),
		Format: "png",
		URL:    "https://images.example/" + topic + ".png",
	}, nil
}

type mockRecorder struct {
	runs []*types.Run
	err  error
}

func (m *mockRecorder) Record(_ context.Context, run *types.Run) error {
	if m.err != nil {
		return m.err
	}
	run.ID = "run-1"
	m.runs = append(m.runs, run)
	return nil
}

func newPipeline(root string, ex generate.Explainer, il generate.Illustrator, out io.Writer) *Pipeline {
	return &Pipeline{
		Explainer:   ex,
		Illustrator: il,
		Writer:      artifact.Writer{Root: root},
		Model:       "gpt-3.5-turbo",
		ImageModel:  "dall-e-2",
		Out:         out,
	}
}

func entries(t *testing.T, dir string) []string {
	t.Helper()
	list, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(list))
	for _, e := range list {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// --- tests ---

func TestRunGravityNoContext(t *testing.T) {
	root := t.TempDir()
	ex := &mockExplainer{text: "class Gravity: ..."}
	il := &mockIllustrator{}
	rec := &mockRecorder{}
	var out bytes.Buffer

	p := newPipeline(root, ex, il, &out)
	p.History = rec

	res, err := p.Run(context.Background(), types.Request{Topic: "gravity", Context: "n"})
	require.NoError(t, err)

	require.Len(t, ex.calls, 1)
	assert.Equal(t, types.Request{Topic: "gravity"}, ex.calls[0])
	assert.Equal(t, []string{"gravity"}, il.calls)

	folder := filepath.Join(root, "gravity")
	assert.Equal(t, folder, res.Artifact.Folder)
	assert.Equal(t, []string{"code.py", "explanation.html", "gravity_illustration.jpg"}, entries(t, folder))
	assert.Contains(t, out.String(), "Explanation and files saved in "+folder+".")

	require.Len(t, rec.runs, 1)
	assert.Equal(t, "run-1", res.RunID)
	assert.Equal(t, "gravity", rec.runs[0].Topic)
	assert.Empty(t, rec.runs[0].Context)
	assert.Equal(t, folder, rec.runs[0].Folder)
	assert.Equal(t, "gpt-3.5-turbo", rec.runs[0].Model)
	assert.Equal(t, "dall-e-2", rec.runs[0].ImageModel)
	assert.Equal(t, "class Gravity: ...", rec.runs[0].Explanation)
}

func TestRunPassesContext(t *testing.T) {
	ex := &mockExplainer{text: "text"}
	p := newPipeline(t.TempDir(), ex, &mockIllustrator{}, io.Discard)

	_, err := p.Run(context.Background(), types.Request{Topic: " beer ", Context: " esoteric "})
	require.NoError(t, err)
	assert.Equal(t, []types.Request{{Topic: "beer", Context: "esoteric"}}, ex.calls)
}

func TestRunGenerationFailureWritesNothing(t *testing.T) {
	root := t.TempDir()
	ex := &mockExplainer{err: errors.New("connection refused")}
	il := &mockIllustrator{}
	rec := &mockRecorder{}
	var out bytes.Buffer

	p := newPipeline(root, ex, il, &out)
	p.History = rec

	res, err := p.Run(context.Background(), types.Request{Topic: "gravity"})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, types.ErrGeneration)

	assert.Empty(t, il.calls, "illustration must not be requested after a text failure")
	assert.Empty(t, entries(t, root))
	assert.Empty(t, rec.runs)
	assert.Contains(t, out.String(), "An error occurred: ")
}

func TestRunIllustrationFailureDiscardsExplanation(t *testing.T) {
	root := t.TempDir()
	ex := &mockExplainer{text: "a perfectly good explanation"}
	il := &mockIllustrator{err: errors.New("HTTP 403 from https://images.example/x.png")}
	rec := &mockRecorder{}
	var out bytes.Buffer

	p := newPipeline(root, ex, il, &out)
	p.History = rec

	res, err := p.Run(context.Background(), types.Request{Topic: "gravity"})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, types.ErrIllustration)

	assert.Empty(t, entries(t, root))
	assert.Empty(t, rec.runs)
	assert.Contains(t, out.String(), "An error occurred while fetching the image: ")
	assert.NotContains(t, out.String(), "a perfectly good explanation")
}

func TestRunIllustratorReturnsNothing(t *testing.T) {
	root := t.TempDir()
	p := newPipeline(root, &mockExplainer{text: "text"}, &mockIllustrator{nilOK: true}, io.Discard)

	_, err := p.Run(context.Background(), types.Request{Topic: "gravity"})
	assert.ErrorIs(t, err, types.ErrIllustration)
	assert.Empty(t, entries(t, root))
}

func TestRunKeepsExistingErrorKind(t *testing.T) {
	wrapped := errors.Join(types.ErrGeneration, errors.New("quota"))
	p := newPipeline(t.TempDir(), &mockExplainer{err: wrapped}, &mockIllustrator{}, io.Discard)

	_, err := p.Run(context.Background(), types.Request{Topic: "gravity"})
	assert.Equal(t, wrapped, err)
}

func TestRunTwiceOverwrites(t *testing.T) {
	root := t.TempDir()
	ex := &mockExplainer{text: "first"}
	p := newPipeline(root, ex, &mockIllustrator{}, io.Discard)

	first, err := p.Run(context.Background(), types.Request{Topic: "black hole"})
	require.NoError(t, err)

	ex.text = "second"
	second, err := p.Run(context.Background(), types.Request{Topic: "black hole"})
	require.NoError(t, err)

	assert.Equal(t, first.Artifact, second.Artifact)
	assert.Equal(t, []string{"black_hole"}, entries(t, root))
	assert.Equal(t, []string{"black hole_illustration.jpg", "code.py", "explanation.html"}, entries(t, second.Artifact.Folder))

	page, err := os.ReadFile(second.Artifact.HTMLPath)
	require.NoError(t, err)
	assert.Contains(t, string(page), "<p>second</p>")
}

func TestRunHistoryFailureIsAWarning(t *testing.T) {
	var out bytes.Buffer
	p := newPipeline(t.TempDir(), &mockExplainer{text: "text"}, &mockIllustrator{}, &out)
	p.History = &mockRecorder{err: errors.New("database is locked")}

	res, err := p.Run(context.Background(), types.Request{Topic: "gravity"})
	require.NoError(t, err)
	assert.Empty(t, res.RunID)
	assert.Contains(t, out.String(), "warning: recording history failed: database is locked")
}

func TestRunRejectsShortTopic(t *testing.T) {
	ex := &mockExplainer{text: "text"}
	p := newPipeline(t.TempDir(), ex, &mockIllustrator{}, io.Discard)

	for _, topic := range []string{"", "x", "  y  "} {
		_, err := p.Run(context.Background(), types.Request{Topic: topic})
		assert.Error(t, err, "topic %q", topic)
	}
	assert.Empty(t, ex.calls)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   types.Request
		want types.Request
	}{
		{types.Request{Topic: "gravity", Context: "n"}, types.Request{Topic: "gravity"}},
		{types.Request{Topic: "gravity", Context: "NO"}, types.Request{Topic: "gravity"}},
		{types.Request{Topic: "gravity", Context: ""}, types.Request{Topic: "gravity"}},
		{types.Request{Topic: "gravity ", Context: "space"}, types.Request{Topic: "gravity", Context: "space"}},
	}
	for _, tt := range tests {
		got, err := Normalize(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
