package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkdownToHTML(t *testing.T) {
	out := MarkdownToHTML("# Remote Work\n\n1. **Eligibility**: all\n2. Timeline\n\n[docs](https://example.com)")

	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "Remote Work</h1>")
	assert.Contains(t, out, "<ol>")
	assert.Contains(t, out, "<strong>Eligibility</strong>")
	assert.Contains(t, out, `href="https://example.com"`)
}

func TestMarkdownToHTMLSanitizes(t *testing.T) {
	out := MarkdownToHTML("hello <script>alert(1)</script> [x](javascript:alert(1)) <img src=x onerror=alert(1)>")

	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "javascript:")
	assert.NotContains(t, out, "onerror")
	assert.Contains(t, out, "hello")
}

func TestPrinterText(t *testing.T) {
	var sb strings.Builder
	p := NewPrinter(&sb, false)

	p.Title("Greeting")
	p.Field("greeting", "Hello, Alice!")
	p.Panel("line one\nline two\n")
	p.Check("numbered sections", true)
	p.Check("timeline", false)
	p.Note("done")

	out := sb.String()
	assert.Contains(t, out, "Greeting")
	assert.Contains(t, out, "greeting:")
	assert.Contains(t, out, "Hello, Alice!")
	assert.Contains(t, out, "line one")
	assert.Contains(t, out, "line two")
	assert.Contains(t, out, "✓")
	assert.Contains(t, out, "numbered sections")
	assert.Contains(t, out, "✗")
	assert.NotContains(t, out, "<p>")
}

func TestPrinterHTML(t *testing.T) {
	var sb strings.Builder
	p := NewPrinter(&sb, true)

	p.Title("Q&A")
	p.Field("question", "<b>vacation</b>?")
	p.Panel("**15 days**")

	out := sb.String()
	assert.Contains(t, out, "<h2>Q&amp;A</h2>")
	assert.Contains(t, out, "&lt;b&gt;vacation&lt;/b&gt;?")
	assert.Contains(t, out, "<strong>15 days</strong>")
}
