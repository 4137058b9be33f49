// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package artifact

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"
)

// pageTmpl is the explanation page. html/template escapes Topic and
// Explanation so generated markup cannot break the document.
var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
    <head>
        <meta charset="utf-8">
        <title>{{.Topic}}</title>
    </head>
    <body>
        <h1>{{.Topic}}</h1>
        <p>{{.Explanation}}</p>
        <img src="{{.ImageFile}}" alt="Illustration">
        <pre><code>{{.Explanation}}</code></pre>
    </body>
</html>
`))

// page is the data rendered into pageTmpl.
type page struct {
	Topic       string
	Explanation string
	ImageFile   template.URL
}

// FolderName derives the output folder name from a topic: every space
// becomes an underscore and nothing else changes.
func FolderName(topic string) string {
	return strings.ReplaceAll(topic, " ", "_")
}

// ImageFileName is the illustration filename for a topic.
func ImageFileName(topic string) string {
	return topic + "_illustration.jpg"
}

// imageRef is the relative URL of the illustration inside the topic folder.
// The name is path-escaped, and a leading "./" keeps a colon in the topic
// from being read as a URL scheme.
func imageRef(topic string) template.URL {
	ref := url.PathEscape(ImageFileName(topic))
	if strings.Contains(ref, ":") {
		ref = "./" + ref
	}
	return template.URL(ref)
}

// RenderHTML renders the explanation page for topic.
func RenderHTML(topic, explanation string) ([]byte, error) {
	var buf bytes.Buffer
	err := pageTmpl.Execute(&buf, page{
		Topic:       topic,
		Explanation: explanation,
		ImageFile:   imageRef(topic),
	})
	if err != nil {
		return nil, fmt.Errorf("rendering HTML: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderCode renders the placeholder code file for topic.
func RenderCode(topic string) []byte {
	var b strings.Builder
	b.WriteString("# Python code for explanation\n")
	fmt.Fprintf(&b, "# Example code for %s\n", topic)
	return []byte(b.String())
}
