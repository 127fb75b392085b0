// Package page fills the shared HTML template for one chapter page.
package page

import "strings"

// Placeholder tokens recognized in page templates. A template may omit or
// repeat any of them: substitution replaces every occurrence of the tokens
// that are present and skips the rest.
const (
	TokenCSS      = "{{css}}"
	TokenTitle    = "{{title}}"
	TokenContent  = "{{content}}"
	TokenPrevious = "{{previous}}"
	TokenContents = "{{contents}}"
	TokenNext     = "{{next}}"
	TokenToc      = "{{toc}}"
	TokenTocData  = "{{toc-data}}"
)

// Data carries the rendered pieces of one page
type Data struct {
	CSS      string
	Title    string
	Content  string
	Previous string
	Contents string
	Next     string
	Toc      string
	TocData  string // JSON blob of the TOC entries
}

// Render substitutes the page data into the template. TokenTocData precedes
// TokenToc so the longer token wins; strings.Replacer compares in argument
// order.
func Render(template string, d Data) string {
	replacer := strings.NewReplacer(
		TokenCSS, d.CSS,
		TokenTitle, d.Title,
		TokenContent, d.Content,
		TokenPrevious, d.Previous,
		TokenContents, d.Contents,
		TokenNext, d.Next,
		TokenTocData, d.TocData,
		TokenToc, d.Toc,
	)
	return replacer.Replace(template)
}
