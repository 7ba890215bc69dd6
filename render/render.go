// Package render formats workflow output for the terminal and as HTML.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

// MarkdownToHTML renders markdown and strips anything unsafe from the result.
func MarkdownToHTML(md string) string {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(md))

	htmlFlags := html.CommonFlags | html.HrefTargetBlank
	renderer := html.NewRenderer(html.RendererOptions{Flags: htmlFlags})
	out := markdown.Render(doc, renderer)

	return string(bluemonday.UGCPolicy().SanitizeBytes(out))
}

// Printer writes styled sections. In HTML mode bodies are treated as
// markdown and written as sanitized HTML without terminal styling.
type Printer struct {
	out  io.Writer
	html bool

	title lipgloss.Style
	label lipgloss.Style
	panel lipgloss.Style
	muted lipgloss.Style
	good  lipgloss.Style
	bad   lipgloss.Style
}

// NewPrinter creates a printer writing to out. Colors are used only when
// out is a terminal that supports them.
func NewPrinter(out io.Writer, htmlMode bool) *Printer {
	r := lipgloss.NewRenderer(out)
	return &Printer{
		out:   out,
		html:  htmlMode,
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		label: r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		panel: r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1),
		muted: r.NewStyle().Foreground(lipgloss.Color("244")),
		good:  r.NewStyle().Foreground(lipgloss.Color("42")),
		bad:   r.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

// Title writes a heading.
func (p *Printer) Title(text string) {
	if p.html {
		fmt.Fprintf(p.out, "<h2>%s</h2>\n", htmlEscaper.Replace(text))
		return
	}
	fmt.Fprintln(p.out, p.title.Render(text))
}

// Field writes a "label: value" line.
func (p *Printer) Field(label string, value any) {
	if p.html {
		fmt.Fprintf(p.out, "<p><strong>%s:</strong> %s</p>\n", htmlEscaper.Replace(label), htmlEscaper.Replace(fmt.Sprint(value)))
		return
	}
	fmt.Fprintf(p.out, "%s %v\n", p.label.Render(label+":"), value)
}

// Panel writes body inside a border, or as HTML in HTML mode.
func (p *Printer) Panel(body string) {
	if p.html {
		fmt.Fprintln(p.out, MarkdownToHTML(body))
		return
	}
	fmt.Fprintln(p.out, p.panel.Render(strings.TrimRight(body, "\n")))
}

// Note writes a dimmed line.
func (p *Printer) Note(text string) {
	if p.html {
		fmt.Fprintf(p.out, "<p><em>%s</em></p>\n", htmlEscaper.Replace(text))
		return
	}
	fmt.Fprintln(p.out, p.muted.Render(text))
}

// Check writes a pass or fail marker followed by label.
func (p *Printer) Check(label string, ok bool) {
	mark, style := "✗", p.bad
	if ok {
		mark, style = "✓", p.good
	}
	if p.html {
		fmt.Fprintf(p.out, "<p>%s %s</p>\n", mark, htmlEscaper.Replace(label))
		return
	}
	fmt.Fprintf(p.out, "  %s %s\n", style.Render(mark), label)
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&#34;", "'", "&#39;")
