// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"image"
	"time"
)

// Request is the input of one explain run.
type Request struct {
	// Topic is the subject to explain. It drives both prompts and the
	// output folder name.
	Topic string `json:"topic" yaml:"topic"`

	// Context optionally narrows the explanation. Empty means no context.
	Context string `json:"context,omitempty" yaml:"context,omitempty"`
}

// HasContext reports whether the request carries a context.
func (r Request) HasContext() bool {
	return r.Context != ""
}

// Bundle holds everything a run gathers before anything is written to disk.
type Bundle struct {
	Topic        string
	Context      string
	Explanation  string
	Illustration image.Image

	// IllustrationURL is the transient URL the image was fetched from.
	IllustrationURL string
}

// Artifact describes the files written for one topic.
type Artifact struct {
	// Folder is the per-topic output directory.
	Folder string `json:"folder" yaml:"folder"`

	// ImagePath is the path of the saved illustration.
	ImagePath string `json:"image_path" yaml:"image_path"`

	// HTMLPath is the path of explanation.html.
	HTMLPath string `json:"html_path" yaml:"html_path"`

	// CodePath is the path of the placeholder code file.
	CodePath string `json:"code_path" yaml:"code_path"`
}

// Run is a history record of one successful explain run.
type Run struct {
	ID          string    `json:"id" yaml:"id"`
	Topic       string    `json:"topic" yaml:"topic"`
	Context     string    `json:"context,omitempty" yaml:"context,omitempty"`
	Folder      string    `json:"folder" yaml:"folder"`
	Model       string    `json:"model" yaml:"model"`
	ImageModel  string    `json:"image_model" yaml:"image_model"`
	Explanation string    `json:"explanation" yaml:"explanation"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}
