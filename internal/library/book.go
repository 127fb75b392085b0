package library

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Chapter represents a single Markdown source file within a book
type Chapter struct {
	Path    string // Path on disk
	Name    string // Filename including the .md extension
	BookDir string // Containing directory
	IsIndex bool   // True iff the filename (sans extension) is "index"
}

// NewChapter creates a chapter record for a source file
func NewChapter(path string) *Chapter {
	name := filepath.Base(path)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	return &Chapter{
		Path:    path,
		Name:    name,
		BookDir: filepath.Dir(path),
		IsIndex: stem == "index",
	}
}

// OutputName returns the chapter's output filename (.md replaced by .html)
func (c *Chapter) OutputName() string {
	return strings.TrimSuffix(c.Name, ".md") + ".html"
}

// Book represents a directory of chapters sharing one navigation sequence
type Book struct {
	Dir   string // Path on disk
	Name  string // Directory base name
	Files []*Chapter // Every discovered chapter, lexical by filename
	// Ordered is the navigation sequence: manifest order when the book's
	// index.md lists chapters, lexical filename order otherwise. Chapters a
	// manifest leaves out appear in Files but not here.
	Ordered  []*Chapter
	HasIndex bool
}

// IndexChapter returns the book's index.md chapter, or nil
func (b *Book) IndexChapter() *Chapter {
	for _, ch := range b.Files {
		if ch.IsIndex {
			return ch
		}
	}
	return nil
}

// Humanize converts a directory name to a display name: hyphens and
// underscores become spaces and each word is capitalized.
func Humanize(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_'
	})
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
