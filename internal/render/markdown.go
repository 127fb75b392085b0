package render

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	ghtml "github.com/yuin/goldmark/renderer/html"
)

// Renderer converts chapter Markdown into sanitized HTML fragments
type Renderer struct {
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
}

// New creates a renderer. Raw HTML is allowed through goldmark and cleaned by
// bluemonday afterwards, so authors can embed HTML without the output
// carrying scripts.
func New(highlightStyle string) *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			meta.Meta,
			highlighting.NewHighlighting(
				highlighting.WithStyle(highlightStyle),
			),
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(
			ghtml.WithUnsafe(),
		),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("id", "class").Globally()
	// chroma emits inline styles on highlighted code
	policy.AllowAttrs("style").OnElements("span", "pre", "code", "div")

	return &Renderer{markdown: md, policy: policy}
}

// Render converts Markdown to sanitized HTML. The second return value is the
// front-matter title, empty when the source has none.
func (r *Renderer) Render(content string) (string, string, error) {
	ctx := parser.NewContext()
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(content), &buf, parser.WithContext(ctx)); err != nil {
		return "", "", fmt.Errorf("failed to render markdown: %w", err)
	}

	title := ""
	if data := meta.Get(ctx); data != nil {
		if v, ok := data["title"].(string); ok {
			title = v
		}
	}

	return r.policy.Sanitize(buf.String()), title, nil
}

var (
	yamlFrontmatterRegex = regexp.MustCompile(`(?s)^---\s*\n(.*?)\n---\s*\n`)
	tomlFrontmatterRegex = regexp.MustCompile(`(?s)^\+\+\+\s*\n(.*?)\n\+\+\+\s*\n`)
)

// StripFrontmatter removes a leading YAML (---) or TOML (+++) front-matter
// block from raw chapter text.
func StripFrontmatter(content string) string {
	if yamlFrontmatterRegex.MatchString(content) {
		return yamlFrontmatterRegex.ReplaceAllString(content, "")
	}
	if tomlFrontmatterRegex.MatchString(content) {
		return tomlFrontmatterRegex.ReplaceAllString(content, "")
	}
	return content
}

// FirstHeading returns the text of the first level-1 heading in raw Markdown
// source, or "" if there is none.
func FirstHeading(content string) string {
	for _, line := range strings.Split(StripFrontmatter(content), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

// PageTitle resolves the title for a chapter page: front-matter title first,
// then the first level-1 heading of the source, then the bare filename. Never
// empty.
func PageTitle(metaTitle, source, filename string) string {
	if metaTitle != "" {
		return metaTitle
	}
	if h := FirstHeading(source); h != "" {
		return h
	}
	return strings.TrimSuffix(filename, ".md")
}
