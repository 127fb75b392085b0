// Package site drives the whole build: discover books, render every chapter,
// then emit the library index and feed.
package site

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/lagleki/books/internal/config"
	"github.com/lagleki/books/internal/library"
	"github.com/lagleki/books/internal/nav"
	"github.com/lagleki/books/internal/page"
	"github.com/lagleki/books/internal/render"
	"github.com/lagleki/books/internal/utils"
)

// Builder renders a content tree into a static site
type Builder struct {
	cfg            *config.Config
	assets         fs.FS
	md             *render.Renderer
	verbose        bool
	liveReloadPath string
}

// Result summarizes a finished build
type Result struct {
	Books int
	Pages int
}

// NewBuilder creates a builder using the given config and embedded assets
func NewBuilder(cfg *config.Config, assets fs.FS) *Builder {
	return &Builder{
		cfg:    cfg,
		assets: assets,
		md:     render.New(cfg.Html.HighlightStyle),
	}
}

// SetVerbose enables per-page progress output
func (b *Builder) SetVerbose(v bool) {
	b.verbose = v
}

// SetLiveReload makes every page load an SSE live-reload client from the
// given endpoint path. Used by serve, never by plain builds.
func (b *Builder) SetLiveReload(endpoint string) {
	b.liveReloadPath = endpoint
}

// Build runs the full pipeline. Books render independently of each other;
// each book's chapter order is resolved during discovery, before any chapter
// renders. Any chapter failure aborts the whole build.
func (b *Builder) Build() (*Result, error) {
	lib, err := library.Discover(b.cfg.Library.Content)
	if err != nil {
		return nil, err
	}

	if err := utils.CreateDirAll(b.cfg.Build.BuildDir); err != nil {
		return nil, err
	}

	tpl, err := b.loadAsset("templates/page.html", "page.html")
	if err != nil {
		return nil, err
	}
	css, err := b.loadAsset("css/book.css", "book.css")
	if err != nil {
		return nil, err
	}

	books := lib.Books()
	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, bk := range books {
		bk := bk
		g.Go(func() error {
			return b.buildBook(lib, bk, tpl, css)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := b.writeLibraryIndex(lib, css); err != nil {
		return nil, err
	}
	if b.cfg.Html.FeedEnabled {
		if err := b.writeFeed(lib); err != nil {
			return nil, err
		}
	}
	if err := b.copyStaticFiles(lib); err != nil {
		return nil, err
	}
	if err := b.writeExtraFiles(); err != nil {
		return nil, err
	}

	return &Result{Books: len(books), Pages: len(lib.Chapters()) + 1}, nil
}

// buildBook renders every discovered chapter of one book, including chapters
// a manifest leaves out of the navigation order.
func (b *Builder) buildBook(lib *library.Library, bk *library.Book, tpl, css string) error {
	for _, ch := range bk.Files {
		if err := b.buildChapter(lib, bk, ch, tpl, css); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) buildChapter(lib *library.Library, bk *library.Book, ch *library.Chapter, tpl, css string) error {
	source, err := utils.ReadToString(ch.Path)
	if err != nil {
		return err
	}

	body, metaTitle, err := b.md.Render(source)
	if err != nil {
		return fmt.Errorf("failed to render '%s': %w", ch.Path, err)
	}

	tocHTML, entries, patched := render.ExtractToc(body)
	if entries == nil {
		entries = []render.TocEntry{}
	}
	tocData, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode TOC for '%s': %w", ch.Path, err)
	}

	links := nav.Assemble(ch, bk.Ordered, bk.HasIndex)

	html := page.Render(tpl, page.Data{
		CSS:      css,
		Title:    render.PageTitle(metaTitle, source, ch.Name),
		Content:  patched,
		Previous: links.Previous,
		Contents: links.Contents,
		Next:     links.Next,
		Toc:      tocHTML,
		TocData:  string(tocData),
	})
	html = b.injectLiveReload(html)

	outPath, err := b.outputPath(lib, ch)
	if err != nil {
		return err
	}
	if err := utils.WriteFile(outPath, []byte(html)); err != nil {
		return err
	}

	if b.verbose {
		log.Printf("rendered %s -> %s", ch.Path, outPath)
	}
	return nil
}

// outputPath mirrors the chapter's relative path under the build dir with the
// extension swapped.
func (b *Builder) outputPath(lib *library.Library, ch *library.Chapter) (string, error) {
	rel, err := filepath.Rel(lib.Root, ch.Path)
	if err != nil {
		return "", fmt.Errorf("failed to locate '%s' under '%s': %w", ch.Path, lib.Root, err)
	}
	rel = strings.TrimSuffix(rel, ".md") + ".html"
	return filepath.Join(b.cfg.Build.BuildDir, rel), nil
}

// loadAsset reads a build asset, preferring a theme/ override on disk over
// the embedded default.
func (b *Builder) loadAsset(embedded, themeName string) (string, error) {
	themePath := filepath.Join("theme", themeName)
	if utils.FileExists(themePath) {
		return utils.ReadToString(themePath)
	}
	data, err := fs.ReadFile(b.assets, "assets/"+embedded)
	if err != nil {
		return "", fmt.Errorf("failed to read asset '%s': %w", embedded, err)
	}
	return string(data), nil
}

// copyStaticFiles mirrors non-Markdown files (images and the like) from the
// content tree into the output tree.
func (b *Builder) copyStaticFiles(lib *library.Library) error {
	return filepath.WalkDir(lib.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != lib.Root && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(d.Name()), ".md") {
			return nil
		}
		rel, err := filepath.Rel(lib.Root, path)
		if err != nil {
			return nil
		}
		return utils.CopyFile(path, filepath.Join(b.cfg.Build.BuildDir, rel))
	})
}

// writeExtraFiles emits the small output-root extras: the GitHub Pages
// marker and an optional CNAME.
func (b *Builder) writeExtraFiles() error {
	nojekyll := filepath.Join(b.cfg.Build.BuildDir, ".nojekyll")
	if err := utils.WriteFile(nojekyll, []byte("")); err != nil {
		return err
	}

	if cname := b.cfg.GetString("output.cname", ""); cname != "" {
		if err := utils.WriteFile(filepath.Join(b.cfg.Build.BuildDir, "CNAME"), []byte(cname+"\n")); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) injectLiveReload(html string) string {
	if b.liveReloadPath == "" {
		return html
	}
	script := fmt.Sprintf(
		`<script>new EventSource(%q).addEventListener("reload",function(){location.reload()});</script>`,
		b.liveReloadPath)
	if strings.Contains(html, "</body>") {
		return strings.Replace(html, "</body>", script+"</body>", 1)
	}
	return html + script
}
