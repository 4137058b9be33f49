// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package input collects the topic, context, and key-file path from an
// operator at a terminal.
package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const (
	topicPrompt   = "What do you want to understand? "
	contextPrompt = "Wonna set a context?: "
	keyFilePrompt = "Provide please your OpenAI API key - file name: "
	tooShortMsg   = "Not so short, please."

	// MinTopicLength is the minimum topic length in characters.
	MinTopicLength = 2
)

// negativeTokens are context answers that mean "no context". Compared
// case-insensitively.
var negativeTokens = map[string]bool{
	"n":  true,
	"no": true,
}

// Collector prompts on out and reads answers line by line from in.
type Collector struct {
	in  *bufio.Reader
	out io.Writer
}

// NewCollector returns a Collector reading from r and prompting on w.
func NewCollector(r io.Reader, w io.Writer) *Collector {
	return &Collector{in: bufio.NewReader(r), out: w}
}

// Topic prompts until the operator enters a topic of at least
// MinTopicLength characters. It returns an error only when input ends
// before a valid topic is read.
func (c *Collector) Topic() (string, error) {
	for {
		line, err := c.ask(topicPrompt)
		if ValidTopic(line) {
			return strings.TrimSpace(line), nil
		}
		if err != nil {
			return "", fmt.Errorf("reading topic: %w", err)
		}
		fmt.Fprintln(c.out, tooShortMsg)
	}
}

// Context prompts once for an optional context and normalizes it with
// NormalizeContext.
func (c *Collector) Context() (string, error) {
	line, err := c.ask(contextPrompt)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading context: %w", err)
	}
	return NormalizeContext(line), nil
}

// KeyFile prompts once for the path of a key file.
func (c *Collector) KeyFile() (string, error) {
	line, err := c.ask(keyFilePrompt)
	path := strings.TrimSpace(line)
	if path == "" && err != nil {
		return "", fmt.Errorf("reading key file path: %w", err)
	}
	return path, nil
}

// ask writes prompt and reads one line. A final line without a trailing
// newline is returned together with io.EOF.
func (c *Collector) ask(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	line, err := c.in.ReadString('\n')
	return strings.TrimRight(line, "\r\n"), err
}

// ValidTopic reports whether s, trimmed, is long enough to be a topic.
func ValidTopic(s string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) >= MinTopicLength
}

// IsNegative reports whether s is a "no context" answer such as "n" or "NO".
func IsNegative(s string) bool {
	return negativeTokens[strings.ToLower(strings.TrimSpace(s))]
}

// NormalizeContext returns the trimmed context, or "" when the answer is
// empty or negative.
func NormalizeContext(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || IsNegative(s) {
		return ""
	}
	return s
}
