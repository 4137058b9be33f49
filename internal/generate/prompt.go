// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"bytes"
	"text/template"

	"github.com/pdiddy/explainer/pkg/types"
)

// systemPrompt is the system message sent with every explanation request.
const systemPrompt = "You are a helpful assistant."

// explanationPromptTmpl asks for the topic in programming terms. The
// context clause is appended only when a context is present.
var explanationPromptTmpl = template.Must(template.New("explanation").Parse(
	`Explain, please, {{.Topic}} in Python terms (using functions, classes, loops, variables, etc.), clarifying the purpose, how it works, and its dependence with other parts of the whole system.` +
		`{{if .Context}} in the context of {{.Context}}{{end}}`))

// illustrationPromptTmpl asks for a diagram of the topic's parts and its
// ties with outer systems.
var illustrationPromptTmpl = template.Must(template.New("illustration").Parse(
	`An illustration explaining the concept of {{.}} as a scheme showing connections of {{.}}'s parts and processes and its ties with outer systems.`))

// ExplanationPrompt renders the user message for an explanation request.
func ExplanationPrompt(req types.Request) (string, error) {
	var buf bytes.Buffer
	if err := explanationPromptTmpl.Execute(&buf, req); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// IllustrationPrompt renders the image generation prompt for topic.
func IllustrationPrompt(topic string) (string, error) {
	var buf bytes.Buffer
	if err := illustrationPromptTmpl.Execute(&buf, topic); err != nil {
		return "", err
	}
	return buf.String(), nil
}
