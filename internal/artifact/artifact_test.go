// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package artifact

import (
	"bytes"
	"html"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/explainer/pkg/types"
)

func TestFolderName(t *testing.T) {
	tests := []struct {
		topic string
		want  string
	}{
		{"gravity", "gravity"},
		{"black hole", "black_hole"},
		{"  leading and trailing  ", "__leading_and_trailing__"},
		{"Event Loop", "Event_Loop"},
		{"tcp/ip stack", "tcp/ip_stack"},
		{"tab\tseparated", "tab\tseparated"},
		{"C++ templates!", "C++_templates!"},
	}
	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			got := FolderName(tt.topic)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(tt.topic), len(got))
			assert.NotContains(t, got, " ")
		})
	}
}

func TestImageFileName(t *testing.T) {
	assert.Equal(t, "gravity_illustration.jpg", ImageFileName("gravity"))
	assert.Equal(t, "black hole_illustration.jpg", ImageFileName("black hole"))
}

var (
	h1Pattern   = regexp.MustCompile(`(?s)<h1>(.*?)</h1>`)
	pPattern    = regexp.MustCompile(`(?s)<p>(.*?)</p>`)
	codePattern = regexp.MustCompile(`(?s)<pre><code>(.*?)</code></pre>`)
	imgPattern  = regexp.MustCompile(`<img src="([^"]*)" alt="Illustration">`)
)

func TestRenderHTMLRoundTrip(t *testing.T) {
	topic := "gravity"
	explanation := "class Gravity:\n    def pull(self, mass):\n        return mass * 9.81"

	out, err := RenderHTML(topic, explanation)
	require.NoError(t, err)
	doc := string(out)

	h1 := h1Pattern.FindAllStringSubmatch(doc, -1)
	require.Len(t, h1, 1)
	assert.Equal(t, topic, html.UnescapeString(h1[0][1]))

	p := pPattern.FindAllStringSubmatch(doc, -1)
	require.Len(t, p, 1)
	assert.Equal(t, explanation, html.UnescapeString(p[0][1]))

	code := codePattern.FindAllStringSubmatch(doc, -1)
	require.Len(t, code, 1)
	assert.Equal(t, explanation, html.UnescapeString(code[0][1]))

	img := imgPattern.FindAllStringSubmatch(doc, -1)
	require.Len(t, img, 1)
	assert.Equal(t, "gravity_illustration.jpg", img[0][1])
}

// imageSrcFile resolves the page's img src to the file name it points at.
func imageSrcFile(t *testing.T, doc string) string {
	t.Helper()
	img := imgPattern.FindAllStringSubmatch(doc, -1)
	require.Len(t, img, 1)
	u, err := url.Parse(html.UnescapeString(img[0][1]))
	require.NoError(t, err)
	require.Empty(t, u.Scheme, "src %q must be a relative reference", img[0][1])
	return path.Clean(u.Path)
}

func TestRenderHTMLImageReference(t *testing.T) {
	tests := []string{
		"gravity",
		"black hole",
		"Python: decorators",
		"Go: channels",
		"C++ & templates",
		"50% of a #hash?",
	}
	for _, topic := range tests {
		t.Run(topic, func(t *testing.T) {
			out, err := RenderHTML(topic, "text")
			require.NoError(t, err)
			assert.NotContains(t, string(out), "ZgotmplZ")
			assert.Equal(t, ImageFileName(topic), imageSrcFile(t, string(out)))
		})
	}
}

func TestRenderHTMLEscapes(t *testing.T) {
	topic := "<b>bold</b> & co"
	explanation := `Use <script>alert("x")</script> & "quotes" in 'strings'`

	out, err := RenderHTML(topic, explanation)
	require.NoError(t, err)
	doc := string(out)

	assert.NotContains(t, doc, "<script>")
	assert.NotContains(t, doc, "<b>bold</b>")

	h1 := h1Pattern.FindAllStringSubmatch(doc, -1)
	require.Len(t, h1, 1)
	assert.Equal(t, topic, html.UnescapeString(h1[0][1]))

	p := pPattern.FindAllStringSubmatch(doc, -1)
	require.Len(t, p, 1)
	assert.Equal(t, explanation, html.UnescapeString(p[0][1]))

	code := codePattern.FindAllStringSubmatch(doc, -1)
	require.Len(t, code, 1)
	assert.Equal(t, explanation, html.UnescapeString(code[0][1]))
}

func TestRenderCode(t *testing.T) {
	assert.Equal(t,
		"# Python code for explanation\n# Example code for gravity\n",
		string(RenderCode("gravity")))
}

func testBundle(topic, explanation string) *types.Bundle {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: 20, G: 120, B: 220, A: 255})
		}
	}
	return &types.Bundle{Topic: topic, Explanation: explanation, Illustration: img}
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestWrite(t *testing.T) {
	root := t.TempDir()
	w := Writer{Root: root}
	var out bytes.Buffer

	a, err := w.Write(testBundle("gravity", "def fall(): pass"), &out)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "gravity"), a.Folder)
	assert.Equal(t, []string{"code.py", "explanation.html", "gravity_illustration.jpg"}, listDir(t, a.Folder))

	f, err := os.Open(a.ImagePath)
	require.NoError(t, err)
	defer f.Close()
	img, err := jpeg.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 8), img.Bounds())

	page, err := os.ReadFile(a.HTMLPath)
	require.NoError(t, err)
	assert.Contains(t, string(page), "<h1>gravity</h1>")

	code, err := os.ReadFile(a.CodePath)
	require.NoError(t, err)
	assert.Equal(t, "# Python code for explanation\n# Example code for gravity\n", string(code))

	assert.Equal(t, 3, strings.Count(out.String(), "wrote: "))
}

func TestWriteTopicWithSpaces(t *testing.T) {
	root := t.TempDir()
	a, err := Writer{Root: root}.Write(testBundle("black hole", "text"), io.Discard)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "black_hole"), a.Folder)
	assert.Equal(t, []string{"black hole_illustration.jpg", "code.py", "explanation.html"}, listDir(t, a.Folder))
}

func TestWriteTopicWithColon(t *testing.T) {
	root := t.TempDir()
	a, err := Writer{Root: root}.Write(testBundle("Python: decorators", "text"), io.Discard)
	require.NoError(t, err)

	page, err := os.ReadFile(a.HTMLPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(a.ImagePath), imageSrcFile(t, string(page)))
	assert.FileExists(t, filepath.Join(a.Folder, imageSrcFile(t, string(page))))
}

func TestWriteTopicWithSlash(t *testing.T) {
	root := t.TempDir()
	_, err := Writer{Root: root}.Write(testBundle("tcp/ip stack", "text"), io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path separator")
	assert.Empty(t, listDir(t, root))
}

func TestWriteOverwrites(t *testing.T) {
	root := t.TempDir()
	w := Writer{Root: root}

	first, err := w.Write(testBundle("gravity", "first explanation"), io.Discard)
	require.NoError(t, err)
	second, err := w.Write(testBundle("gravity", "second explanation"), io.Discard)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"gravity"}, listDir(t, root))
	assert.Equal(t, []string{"code.py", "explanation.html", "gravity_illustration.jpg"}, listDir(t, second.Folder))

	page, err := os.ReadFile(second.HTMLPath)
	require.NoError(t, err)
	assert.Contains(t, string(page), "second explanation")
	assert.NotContains(t, string(page), "first explanation")
}

func TestWriteIncompleteBundle(t *testing.T) {
	root := t.TempDir()
	w := Writer{Root: root}

	_, err := w.Write(&types.Bundle{Topic: "gravity", Explanation: "text"}, io.Discard)
	assert.Error(t, err)

	b := testBundle("gravity", "")
	_, err = w.Write(b, io.Discard)
	assert.Error(t, err)

	_, err = w.Write(nil, io.Discard)
	assert.Error(t, err)

	assert.Empty(t, listDir(t, root))
}

func TestPaths(t *testing.T) {
	a := Writer{}.Paths("event loop")
	assert.Equal(t, "event_loop", a.Folder)
	assert.Equal(t, filepath.Join("event_loop", "event loop_illustration.jpg"), a.ImagePath)
	assert.Equal(t, filepath.Join("event_loop", "explanation.html"), a.HTMLPath)
	assert.Equal(t, filepath.Join("event_loop", "code.py"), a.CodePath)
}
