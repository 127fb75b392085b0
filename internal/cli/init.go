package cli

import (
	"fmt"
	"path/filepath"

	"github.com/lagleki/books/internal/utils"
)

// InitOptions captures options for initializing a new library
type InitOptions struct {
	Name       string // root directory, default "my-library"
	Title      string // library title; defaults to Name
	ContentDir string // default: data
	BuildDir   string // default: docs
}

// Init scaffolds a new library with one sample book
func Init(opts InitOptions) error {
	if opts.Name == "" {
		opts.Name = "my-library"
	}
	if opts.ContentDir == "" {
		opts.ContentDir = "data"
	}
	if opts.BuildDir == "" {
		opts.BuildDir = "docs"
	}
	if opts.Title == "" {
		opts.Title = opts.Name
	}

	root := opts.Name

	if err := utils.CreateDirAll(root); err != nil {
		return err
	}

	libraryToml := []byte(fmt.Sprintf(`[library]
title = "%s"
content = "%s"

[build]
build-dir = "%s"
`, opts.Title, opts.ContentDir, opts.BuildDir))
	if err := utils.WriteFile(filepath.Join(root, "library.toml"), libraryToml); err != nil {
		return err
	}

	// Seed one book with an ordered manifest
	bookDir := filepath.Join(root, opts.ContentDir, "my-book")
	manifest := []byte(`# My Book

* [Chapter 1](chapter1.md)
* [Chapter 2](chapter2.md)
`)
	if err := utils.WriteFile(filepath.Join(bookDir, "index.md"), manifest); err != nil {
		return err
	}
	if err := utils.WriteFile(filepath.Join(bookDir, "chapter1.md"), []byte("# Chapter 1\n\nStart writing here.\n")); err != nil {
		return err
	}
	if err := utils.WriteFile(filepath.Join(bookDir, "chapter2.md"), []byte("# Chapter 2\n\nKeep going.\n")); err != nil {
		return err
	}

	gitignore := []byte(fmt.Sprintf("%s\n", opts.BuildDir))
	_ = utils.WriteFile(filepath.Join(root, ".gitignore"), gitignore)

	return nil
}
