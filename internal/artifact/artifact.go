// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package artifact writes the per-topic output folder: the illustration,
// explanation.html, and a placeholder code file.
package artifact

import (
	"bytes"
	"errors"
	"fmt"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/explainer/pkg/types"
)

const (
	htmlFile = "explanation.html"
	codeFile = "code.py"

	jpegQuality = 90
)

// Writer persists bundles under a root directory.
type Writer struct {
	// Root is the directory under which topic folders are created.
	// Empty means the working directory.
	Root string
}

// Paths returns where the artifacts for topic live, without touching disk.
func (w Writer) Paths(topic string) types.Artifact {
	folder := filepath.Join(w.root(), FolderName(topic))
	return types.Artifact{
		Folder:    folder,
		ImagePath: filepath.Join(folder, ImageFileName(topic)),
		HTMLPath:  filepath.Join(folder, htmlFile),
		CodePath:  filepath.Join(folder, codeFile),
	}
}

// Write creates the topic folder if needed and writes the three artifacts,
// overwriting any earlier run for the same topic. Every piece is encoded
// in memory before the folder is created. Progress is reported to out.
func (w Writer) Write(b *types.Bundle, out io.Writer) (types.Artifact, error) {
	if b == nil || b.Illustration == nil {
		return types.Artifact{}, errors.New("bundle has no illustration")
	}
	if b.Explanation == "" {
		return types.Artifact{}, errors.New("bundle has no explanation")
	}

	var img bytes.Buffer
	if err := jpeg.Encode(&img, b.Illustration, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return types.Artifact{}, fmt.Errorf("encoding illustration: %w", err)
	}
	html, err := RenderHTML(b.Topic, b.Explanation)
	if err != nil {
		return types.Artifact{}, err
	}
	code := RenderCode(b.Topic)

	if name := ImageFileName(b.Topic); filepath.Base(name) != name {
		return types.Artifact{}, fmt.Errorf("topic %q cannot name a file: it contains a path separator", b.Topic)
	}

	a := w.Paths(b.Topic)
	if err := os.MkdirAll(a.Folder, 0o755); err != nil {
		return types.Artifact{}, fmt.Errorf("creating folder %s: %w", a.Folder, err)
	}

	files := []struct {
		path string
		data []byte
	}{
		{a.ImagePath, img.Bytes()},
		{a.HTMLPath, html},
		{a.CodePath, code},
	}
	for _, f := range files {
		if err := writeFile(f.path, f.data); err != nil {
			return types.Artifact{}, err
		}
		fmt.Fprintf(out, "wrote: %s\n", f.path)
	}

	return a, nil
}

func (w Writer) root() string {
	if w.Root == "" {
		return "."
	}
	return w.Root
}

// writeFile writes data to a temporary file next to path and renames it
// into place, so a reader never sees a half-written artifact.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".artifact-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
