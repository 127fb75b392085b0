package site

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/feeds"

	"github.com/lagleki/books/internal/library"
	"github.com/lagleki/books/internal/utils"
)

// writeFeed emits an Atom feed with one entry per top-level book. Entry
// timestamps come from the book directory's modification time so the feed is
// stable across rebuilds of unchanged content.
func (b *Builder) writeFeed(lib *library.Library) error {
	dirs, err := lib.TopLevelDirs()
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(b.cfg.GetString("output.url", ""), "/")

	feed := &feeds.Feed{
		Title:       b.cfg.Library.Title,
		Description: b.cfg.Library.Description,
		Link:        &feeds.Link{Href: base + "/"},
		Created:     time.Now(),
	}

	for _, dir := range dirs {
		updated := time.Time{}
		if info, err := os.Stat(filepath.Join(lib.Root, dir)); err == nil {
			updated = info.ModTime()
		}
		href := b.bookIndexHref(lib, dir)
		feed.Items = append(feed.Items, &feeds.Item{
			Title:   b.bookDisplayName(lib, dir, href),
			Link:    &feeds.Link{Href: fmt.Sprintf("%s/%s", base, href)},
			Id:      fmt.Sprintf("%s/%s/", base, dir),
			Updated: updated,
		})
	}

	atom, err := feed.ToAtom()
	if err != nil {
		return fmt.Errorf("failed to build feed: %w", err)
	}
	return utils.WriteFile(filepath.Join(b.cfg.Build.BuildDir, "feed.xml"), []byte(atom))
}
