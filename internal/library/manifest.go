package library

import (
	"regexp"
	"strings"
)

// A manifest is a book's index.md: a bullet list of chapter links defines the
// explicit chapter order. One reference per line, of the form
//
//	* [Chapter title](chapter.md)
//
// Lines that don't match are ignored; link targets are taken in document
// order. Both * and - bullets are accepted.
var manifestLinkRegex = regexp.MustCompile(`^\s*[*-]\s+\[[^\]]*\]\(([^)\s]+\.md)\)`)

// ParseManifest extracts ordered chapter references from index.md source text
func ParseManifest(content string) []string {
	var targets []string
	for _, line := range strings.Split(content, "\n") {
		m := manifestLinkRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		targets = append(targets, m[1])
	}
	return targets
}

// resolveOrder derives a book's navigation sequence. If the index manifest
// yields at least one chapter reference, the references in document order are
// the sequence; references to missing files are dropped silently. A manifest
// with no matching list lines (or no manifest at all) keeps the lexical file
// order as is.
func resolveOrder(files []*Chapter, manifest string) []*Chapter {
	targets := ParseManifest(manifest)
	if len(targets) == 0 {
		return files
	}

	byName := make(map[string]*Chapter, len(files))
	for _, ch := range files {
		byName[ch.Name] = ch
	}

	ordered := make([]*Chapter, 0, len(targets))
	seen := make(map[string]bool)
	for _, target := range targets {
		ch, ok := byName[target]
		if !ok || seen[target] {
			continue
		}
		seen[target] = true
		ordered = append(ordered, ch)
	}
	return ordered
}
