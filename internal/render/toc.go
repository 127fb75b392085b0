package render

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// TocEntry is one heading of a rendered chapter
type TocEntry struct {
	Level  int    `json:"level"`
	Text   string `json:"text"`
	Anchor string `json:"anchor"`
}

// EmptyTocHTML is emitted for pages with no headings
const EmptyTocHTML = `<ul class="toc"><li class="toc-empty">No table of contents</li></ul>`

var nonWordRegex = regexp.MustCompile(`\W+`)

// Slugify derives a URL-safe anchor from heading text: lower-cased, runs of
// non-word characters collapsed to hyphens.
func Slugify(text string) string {
	s := strings.ToLower(text)
	s = nonWordRegex.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ExtractToc walks the H1-H3 headings of a rendered HTML fragment in document
// order and returns the TOC list markup, the entry records, and the fragment
// with synthesized heading ids written back in. Every returned anchor exists
// as an id in the returned HTML. On a fragment with no headings, or on any
// parse failure, the original fragment comes back unchanged with no entries.
func ExtractToc(fragment string) (string, []TocEntry, string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return EmptyTocHTML, nil, fragment
	}

	headings := doc.Find("h1, h2, h3")
	if headings.Length() == 0 {
		return EmptyTocHTML, nil, fragment
	}

	var entries []TocEntry
	var list strings.Builder
	list.WriteString(`<ul class="toc">`)
	headings.Each(func(_ int, s *goquery.Selection) {
		name := goquery.NodeName(s)
		level := int(name[1] - '0')
		text := strings.TrimSpace(s.Text())

		anchor, ok := s.Attr("id")
		if !ok || anchor == "" {
			anchor = Slugify(text)
			s.SetAttr("id", anchor)
		}

		entries = append(entries, TocEntry{Level: level, Text: text, Anchor: anchor})
		fmt.Fprintf(&list, `<li class="toc-h%d"><a href="#%s">%s</a></li>`, level, anchor, html.EscapeString(text))
	})
	list.WriteString(`</ul>`)

	// Serialize inner body content only; goquery wraps fragments in a full
	// document and re-emitting that wrapper would corrupt every page.
	patched, err := doc.Find("body").Html()
	if err != nil {
		return EmptyTocHTML, nil, fragment
	}

	return list.String(), entries, patched
}
