// Package nav computes the previous / contents / next links for a chapter
// from its position in the book's resolved chapter order.
package nav

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/lagleki/books/internal/library"
)

// Links holds the three per-chapter navigation fragments. Each is either an
// anchor to a sibling's output filename or a disabled placeholder.
type Links struct {
	Previous string
	Contents string
	Next     string
}

var digitsRegex = regexp.MustCompile(`[0-9]+`)

// sortKey is the first run of digits in the filename, "" when there is none
func sortKey(ch *library.Chapter) string {
	return digitsRegex.FindString(ch.Name)
}

// lessKey orders digit runs numerically without integer conversion, so runs
// of any length compare correctly: an absent run sorts first, then shorter
// runs (leading zeros trimmed), then lexical.
func lessKey(a, b string) bool {
	if a == "" || b == "" {
		return a == "" && b != ""
	}
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

// SortChapters re-sorts a chapter list numerically by the first run of digits
// in each filename, keeping the incoming order for ties. This is what makes
// chapter-2 precede chapter-10. The caller must use the returned list both to
// locate the current chapter and to pick its neighbors.
func SortChapters(chapters []*library.Chapter) []*library.Chapter {
	sorted := make([]*library.Chapter, len(chapters))
	copy(sorted, chapters)
	sort.SliceStable(sorted, func(i, j int) bool {
		return lessKey(sortKey(sorted[i]), sortKey(sorted[j]))
	})
	return sorted
}

func link(class, target, label string) string {
	return fmt.Sprintf(`<a class="nav-link %s" href="%s">%s</a>`, class, target, label)
}

func disabled(class, label string) string {
	return fmt.Sprintf(`<span class="nav-link %s disabled">%s</span>`, class, label)
}

// Assemble computes the navigation fragments for one chapter. The ordered
// list is the book's resolved chapter order; hasIndex says whether the book
// has an index.md at all.
func Assemble(current *library.Chapter, ordered []*library.Chapter, hasIndex bool) Links {
	sorted := SortChapters(ordered)

	if current.IsIndex {
		next := disabled("next", "No chapters")
		for _, ch := range sorted {
			if !ch.IsIndex {
				next = link("next", ch.OutputName(), "Next")
				break
			}
		}
		return Links{
			Previous: disabled("prev", "Previous"),
			Contents: disabled("contents", "Contents"),
			Next:     next,
		}
	}

	idx := -1
	for i, ch := range sorted {
		if ch.Path == current.Path {
			idx = i
			break
		}
	}

	var links Links

	if idx > 0 {
		sibling := sorted[idx-1]
		label := "Previous"
		if sibling.IsIndex {
			label = "Contents"
		}
		links.Previous = link("prev", sibling.OutputName(), label)
	} else {
		links.Previous = disabled("prev", "Previous")
	}

	if idx >= 0 && idx < len(sorted)-1 {
		links.Next = link("next", sorted[idx+1].OutputName(), "Next")
	} else {
		links.Next = disabled("next", "End")
	}

	if hasIndex {
		links.Contents = link("contents", "index.html", "Contents")
	} else {
		links.Contents = disabled("contents", "Contents")
	}

	return links
}
