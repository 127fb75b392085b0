package library

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Library is the result of scanning a content root: every book directory with
// its chapters and resolved navigation order. Each directory's order is
// computed exactly once, at discovery time, and reused for every chapter in
// that book.
type Library struct {
	Root  string
	books map[string]*Book
}

// Discover recursively scans the content root for .md files and groups them
// into books by containing directory. Directories whose name begins with a
// dot are skipped entirely.
func Discover(root string) (*Library, error) {
	lib := &Library{Root: root, books: make(map[string]*Book)}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(d.Name()), ".md") {
			return nil
		}

		dir := filepath.Dir(path)
		bk, ok := lib.books[dir]
		if !ok {
			bk = &Book{Dir: dir, Name: filepath.Base(dir)}
			lib.books[dir] = bk
		}
		bk.Files = append(bk.Files, NewChapter(path))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan content root '%s': %w", root, err)
	}

	for _, bk := range lib.books {
		sort.Slice(bk.Files, func(i, j int) bool { return bk.Files[i].Name < bk.Files[j].Name })
		if err := lib.resolveBook(bk); err != nil {
			return nil, err
		}
	}

	return lib, nil
}

// resolveBook computes the book's navigation order once
func (l *Library) resolveBook(bk *Book) error {
	manifest := ""
	if idx := bk.IndexChapter(); idx != nil {
		bk.HasIndex = true
		data, err := os.ReadFile(idx.Path)
		if err != nil {
			return fmt.Errorf("failed to read manifest '%s': %w", idx.Path, err)
		}
		manifest = string(data)
	}
	bk.Ordered = resolveOrder(bk.Files, manifest)
	return nil
}

// Books returns every discovered book, sorted by directory for deterministic
// iteration.
func (l *Library) Books() []*Book {
	books := make([]*Book, 0, len(l.books))
	for _, bk := range l.books {
		books = append(books, bk)
	}
	sort.Slice(books, func(i, j int) bool { return books[i].Dir < books[j].Dir })
	return books
}

// Book returns the book for a directory, or nil if none was discovered
func (l *Library) Book(dir string) *Book {
	return l.books[dir]
}

// Chapters returns the flat set of all chapter files across every book
func (l *Library) Chapters() []*Chapter {
	var all []*Chapter
	for _, bk := range l.Books() {
		all = append(all, bk.Files...)
	}
	return all
}

// TopLevelDirs lists the content root's immediate subdirectories that contain
// at least one Markdown file, skipping dot-prefixed names. Order follows
// directory enumeration order.
func (l *Library) TopLevelDirs() ([]string, error) {
	entries, err := os.ReadDir(l.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to read content root '%s': %w", l.Root, err)
	}

	var dirs []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if l.containsMarkdown(filepath.Join(l.Root, e.Name())) {
			dirs = append(dirs, e.Name())
		}
	}
	return dirs, nil
}

func (l *Library) containsMarkdown(dir string) bool {
	for bookDir := range l.books {
		if bookDir == dir || strings.HasPrefix(bookDir, dir+string(os.PathSeparator)) {
			return true
		}
	}
	return false
}
