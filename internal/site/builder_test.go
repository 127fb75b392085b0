package site

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/lagleki/books/internal/config"
	"github.com/lagleki/books/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// repo-root assets, same files the binary embeds
var testAssets = os.DirFS(filepath.Join("..", ".."))

func testConfig(t *testing.T, content string) *config.Config {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.Library.Title = "Test Library"
	cfg.Library.Content = content
	cfg.Build.BuildDir = filepath.Join(t.TempDir(), "docs")
	return cfg
}

func TestBuildScenario(t *testing.T) {
	root := testutil.TempLibrary(t)
	testutil.WriteFile(t, root, "go/index.md", "# Go Basics\n\n* [One](chapter1.md)\n* [Two](chapter2.md)\n")
	testutil.WriteFile(t, root, "go/chapter1.md", "# Chapter One\n\nText.\n")
	testutil.WriteFile(t, root, "go/chapter2.md", "# Chapter Two\n\nText.\n")

	cfg := testConfig(t, root)
	b := NewBuilder(cfg, testAssets)

	result, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, 1, result.Books)
	assert.Equal(t, 4, result.Pages)

	out := cfg.Build.BuildDir
	for _, f := range []string{"go/index.html", "go/chapter1.html", "go/chapter2.html", "index.html", "feed.xml", ".nojekyll"} {
		assert.True(t, testutil.FileExists(filepath.Join(out, f)), "missing %s", f)
	}

	// chapter1: first chapter - prev disabled, next -> chapter2, contents -> index
	ch1 := testutil.ReadFile(t, out, "go/chapter1.html")
	assert.Contains(t, ch1, `href="chapter2.html"`)
	assert.Contains(t, ch1, `class="nav-link prev disabled"`)
	assert.Contains(t, ch1, `href="index.html"`)
	assert.Contains(t, ch1, "<title>Chapter One</title>")

	// chapter2: last chapter - prev -> chapter1, next disabled "End"
	ch2 := testutil.ReadFile(t, out, "go/chapter2.html")
	assert.Contains(t, ch2, `href="chapter1.html"`)
	assert.Contains(t, ch2, ">End<")

	// index.md page: prev and contents disabled, next -> chapter1
	idx := testutil.ReadFile(t, out, "go/index.html")
	assert.Contains(t, idx, `class="nav-link prev disabled"`)
	assert.Contains(t, idx, `class="nav-link contents disabled"`)
	assert.Contains(t, idx, `href="chapter1.html"`)

	// the library index links the book under its manifest heading
	lidx := testutil.ReadFile(t, out, "index.html")
	assert.Contains(t, lidx, `href="go/index.html"`)
	assert.Contains(t, lidx, "Go Basics")
	assert.Contains(t, lidx, "Test Library")
}

func TestBuildEveryBookAppearsInIndex(t *testing.T) {
	root := testutil.TempLibrary(t)
	testutil.WriteFile(t, root, "go/index.md", "# Go\n")
	testutil.WriteFile(t, root, "rust-lang/notes.md", "plain notes, no heading\n")
	testutil.WriteFile(t, root, ".hidden/secret.md", "# Nope\n")

	cfg := testConfig(t, root)
	_, err := NewBuilder(cfg, testAssets).Build()
	require.NoError(t, err)

	lidx := testutil.ReadFile(t, cfg.Build.BuildDir, "index.html")
	assert.Contains(t, lidx, `href="go/index.html"`)
	// no index.md: the entry links the first chapter instead
	assert.Contains(t, lidx, `href="rust-lang/notes.html"`)
	assert.Contains(t, lidx, "Rust Lang")
	assert.NotContains(t, lidx, "hidden")
	assert.Equal(t, 2, strings.Count(lidx, "<li>"))
}

func TestBuildIndexLinksResolve(t *testing.T) {
	root := testutil.TempLibrary(t)
	testutil.WriteFile(t, root, "go/index.md", "# Go\n\n* [One](chapter1.md)\n")
	testutil.WriteFile(t, root, "go/chapter1.md", "# One\n")
	testutil.WriteFile(t, root, "rust/notes.md", "# Notes\n")
	testutil.WriteFile(t, root, "math/chapter-10.md", "# Ten\n")
	testutil.WriteFile(t, root, "math/chapter-2.md", "# Two\n")

	cfg := testConfig(t, root)
	_, err := NewBuilder(cfg, testAssets).Build()
	require.NoError(t, err)

	lidx := testutil.ReadFile(t, cfg.Build.BuildDir, "index.html")

	// the chapter linked for a manifest-less book follows navigation order
	assert.Contains(t, lidx, `href="math/chapter-2.html"`)

	// every listed entry must point at a file the build produced
	for _, m := range regexp.MustCompile(`href="([^"]+)"`).FindAllStringSubmatch(lidx, -1) {
		target := filepath.Join(cfg.Build.BuildDir, filepath.FromSlash(m[1]))
		assert.True(t, testutil.FileExists(target), "index links %s but no such file was built", m[1])
	}
}

func TestBuildNumericChapterOrder(t *testing.T) {
	root := testutil.TempLibrary(t)
	for _, n := range []string{"1", "2", "3", "10"} {
		testutil.WriteFile(t, root, "book/chapter-"+n+".md", "# Chapter "+n+"\n")
	}

	cfg := testConfig(t, root)
	_, err := NewBuilder(cfg, testAssets).Build()
	require.NoError(t, err)

	// lexical order would place chapter-10 after chapter-1
	ch2 := testutil.ReadFile(t, cfg.Build.BuildDir, "book/chapter-2.html")
	assert.Contains(t, ch2, `href="chapter-3.html"`)

	ch3 := testutil.ReadFile(t, cfg.Build.BuildDir, "book/chapter-3.html")
	assert.Contains(t, ch3, `href="chapter-10.html"`)
}

func TestBuildTitleFallback(t *testing.T) {
	root := testutil.TempLibrary(t)
	testutil.WriteFile(t, root, "book/notes.md", "just text, no heading\n")

	cfg := testConfig(t, root)
	_, err := NewBuilder(cfg, testAssets).Build()
	require.NoError(t, err)

	page := testutil.ReadFile(t, cfg.Build.BuildDir, "book/notes.html")
	assert.Contains(t, page, "<title>notes</title>")
}

func TestBuildFrontmatterTitle(t *testing.T) {
	root := testutil.TempLibrary(t)
	testutil.WriteFile(t, root, "book/ch.md", "---\ntitle: Proper Title\n---\n\n# Ignored Heading\n")

	cfg := testConfig(t, root)
	_, err := NewBuilder(cfg, testAssets).Build()
	require.NoError(t, err)

	page := testutil.ReadFile(t, cfg.Build.BuildDir, "book/ch.html")
	assert.Contains(t, page, "<title>Proper Title</title>")
}

func TestBuildTocAnchorsExistInPage(t *testing.T) {
	root := testutil.TempLibrary(t)
	testutil.WriteFile(t, root, "book/ch.md", "# Top\n\n## Middle Part\n\n### Deep Dive\n")

	cfg := testConfig(t, root)
	_, err := NewBuilder(cfg, testAssets).Build()
	require.NoError(t, err)

	page := testutil.ReadFile(t, cfg.Build.BuildDir, "book/ch.html")
	for _, anchor := range []string{"top", "middle-part", "deep-dive"} {
		assert.Contains(t, page, `href="#`+anchor+`"`)
		assert.Contains(t, page, `id="`+anchor+`"`)
	}
}

func TestBuildIdempotent(t *testing.T) {
	root := testutil.TempLibrary(t)
	testutil.WriteFile(t, root, "go/index.md", "# Go\n\n* [One](chapter1.md)\n")
	testutil.WriteFile(t, root, "go/chapter1.md", "# One\n")

	cfg := testConfig(t, root)
	b := NewBuilder(cfg, testAssets)

	_, err := b.Build()
	require.NoError(t, err)
	first := testutil.ReadFile(t, cfg.Build.BuildDir, "go/chapter1.html")
	firstIndex := testutil.ReadFile(t, cfg.Build.BuildDir, "index.html")

	_, err = b.Build()
	require.NoError(t, err)
	assert.Equal(t, first, testutil.ReadFile(t, cfg.Build.BuildDir, "go/chapter1.html"))
	assert.Equal(t, firstIndex, testutil.ReadFile(t, cfg.Build.BuildDir, "index.html"))
}

func TestBuildCopiesStaticFiles(t *testing.T) {
	root := testutil.TempLibrary(t)
	testutil.WriteFile(t, root, "book/ch.md", "# Ch\n\n![img](diagram.png)\n")
	testutil.WriteFile(t, root, "book/diagram.png", "fake-png-bytes")

	cfg := testConfig(t, root)
	_, err := NewBuilder(cfg, testAssets).Build()
	require.NoError(t, err)

	assert.Equal(t, "fake-png-bytes", testutil.ReadFile(t, cfg.Build.BuildDir, "book/diagram.png"))
}

func TestBuildFeed(t *testing.T) {
	root := testutil.TempLibrary(t)
	testutil.WriteFile(t, root, "go/index.md", "# Go Book\n")
	testutil.WriteFile(t, root, "rust/index.md", "# Rust Book\n")

	cfg := testConfig(t, root)
	_, err := NewBuilder(cfg, testAssets).Build()
	require.NoError(t, err)

	feed := testutil.ReadFile(t, cfg.Build.BuildDir, "feed.xml")
	assert.Equal(t, 2, strings.Count(feed, "<entry>"))
	assert.Contains(t, feed, "Go Book")
	assert.Contains(t, feed, "Rust Book")
}

func TestBuildFeedDisabled(t *testing.T) {
	root := testutil.TempLibrary(t)
	testutil.WriteFile(t, root, "go/index.md", "# Go\n")

	cfg := testConfig(t, root)
	cfg.Html.FeedEnabled = false
	_, err := NewBuilder(cfg, testAssets).Build()
	require.NoError(t, err)

	assert.False(t, testutil.FileExists(filepath.Join(cfg.Build.BuildDir, "feed.xml")))
}

func TestBuildCNAME(t *testing.T) {
	root := testutil.TempLibrary(t)
	testutil.WriteFile(t, root, "go/index.md", "# Go\n")

	cfg, err := config.LoadFromString("[output]\ncname = \"books.example.org\"\n")
	require.NoError(t, err)
	cfg.Library.Content = root
	cfg.Build.BuildDir = filepath.Join(t.TempDir(), "docs")

	_, err = NewBuilder(cfg, testAssets).Build()
	require.NoError(t, err)

	assert.Equal(t, "books.example.org\n", testutil.ReadFile(t, cfg.Build.BuildDir, "CNAME"))
}

func TestBuildLiveReloadInjection(t *testing.T) {
	root := testutil.TempLibrary(t)
	testutil.WriteFile(t, root, "go/index.md", "# Go\n")

	cfg := testConfig(t, root)
	b := NewBuilder(cfg, testAssets)
	b.SetLiveReload("/__livereload")

	_, err := b.Build()
	require.NoError(t, err)

	page := testutil.ReadFile(t, cfg.Build.BuildDir, "go/index.html")
	assert.Contains(t, page, "EventSource")
	assert.Contains(t, page, "/__livereload")
}
