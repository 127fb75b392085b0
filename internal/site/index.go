package site

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aymerick/raymond"

	"github.com/lagleki/books/internal/library"
	"github.com/lagleki/books/internal/nav"
	"github.com/lagleki/books/internal/render"
	"github.com/lagleki/books/internal/utils"
)

// writeLibraryIndex emits the site-wide landing page listing every top-level
// book. Listing order follows directory enumeration order; every book
// appears, with or without a title of its own, and every entry links a page
// that was actually built.
func (b *Builder) writeLibraryIndex(lib *library.Library, css string) error {
	dirs, err := lib.TopLevelDirs()
	if err != nil {
		return err
	}

	entries := make([]map[string]interface{}, 0, len(dirs))
	for _, dir := range dirs {
		href := b.bookIndexHref(lib, dir)
		entries = append(entries, map[string]interface{}{
			"name": b.bookDisplayName(lib, dir, href),
			"href": href,
		})
	}

	tplSource, err := b.loadAsset("templates/index.hbs", "index.hbs")
	if err != nil {
		return err
	}
	tpl, err := raymond.Parse(tplSource)
	if err != nil {
		return fmt.Errorf("failed to parse index template: %w", err)
	}

	html, err := tpl.Exec(map[string]interface{}{
		"title":       b.cfg.Library.Title,
		"description": b.cfg.Library.Description,
		"css":         css,
		"books":       entries,
	})
	if err != nil {
		return fmt.Errorf("failed to render library index: %w", err)
	}

	return utils.WriteFile(filepath.Join(b.cfg.Build.BuildDir, "index.html"), []byte(html))
}

// bookIndexHref resolves the library-index link target for a top-level book
// directory. A book without an index.md never produces an index.html, so its
// entry links the first chapter in navigation order instead.
func (b *Builder) bookIndexHref(lib *library.Library, dir string) string {
	if bk := lib.Book(filepath.Join(lib.Root, dir)); bk != nil {
		return dir + "/" + bookEntryName(bk)
	}

	// Markdown lives only in nested directories; link the first nested book.
	prefix := filepath.Join(lib.Root, dir) + string(os.PathSeparator)
	for _, nested := range lib.Books() {
		if !strings.HasPrefix(nested.Dir, prefix) {
			continue
		}
		if rel, err := filepath.Rel(lib.Root, nested.Dir); err == nil {
			return filepath.ToSlash(rel) + "/" + bookEntryName(nested)
		}
	}
	return dir + "/index.html"
}

// bookEntryName is the output filename a reader should land on first
func bookEntryName(bk *library.Book) string {
	if bk.HasIndex {
		return "index.html"
	}
	chapters := bk.Ordered
	if len(chapters) == 0 {
		chapters = bk.Files
	}
	if sorted := nav.SortChapters(chapters); len(sorted) > 0 {
		return sorted[0].OutputName()
	}
	return "index.html"
}

// bookDisplayName resolves a top-level book's display name: the first H1 of
// its index.md, then the first <h1> of the already-built entry page, then the
// humanized directory name.
func (b *Builder) bookDisplayName(lib *library.Library, dir, href string) string {
	if bk := lib.Book(filepath.Join(lib.Root, dir)); bk != nil {
		if idx := bk.IndexChapter(); idx != nil {
			if source, err := utils.ReadToString(idx.Path); err == nil {
				if h := render.FirstHeading(source); h != "" {
					return h
				}
			}
		}
	}

	if h := titleFromBuiltPage(filepath.Join(b.cfg.Build.BuildDir, filepath.FromSlash(href))); h != "" {
		return h
	}

	return library.Humanize(dir)
}

// titleFromBuiltPage recovers a heading from an already-rendered page
func titleFromBuiltPage(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}
