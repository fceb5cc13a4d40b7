// Package compare provides the string comparators used to order icons and
// to diff snapshot title sets.
//
// Icon comparators fold case before comparing byte-wise; the snapshot diff
// uses exact ordinal order. NullText is compared as the literal string it
// is. All icon comparators are meant for stable sorts: equal keys compare
// as 0 so the caller's input order decides ties.
package compare

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/roach88/homesort/internal/layout"
)

// Key selects the icon field that orders icons.
type Key int

const (
	KeyTitle Key = iota
	KeyTitleID
)

func (k Key) String() string {
	if k == KeyTitleID {
		return "titleId"
	}
	return "title"
}

// Collator orders strings case-insensitively, byte-wise after folding. It
// holds one caser for all its comparisons and is not safe for concurrent
// use; take one per sort.
type Collator struct {
	caser cases.Caser
}

// NewCollator returns a collator with its own caser.
func NewCollator() *Collator {
	return &Collator{caser: cases.Fold()}
}

// Fold returns the case-folded form of s.
func (c *Collator) Fold(s string) string {
	return c.caser.String(s)
}

// Compare orders a and b by their folded forms.
func (c *Collator) Compare(a, b string) int {
	return strings.Compare(c.Fold(a), c.Fold(b))
}

// Ordinal orders a and b by their exact bytes.
func Ordinal(a, b string) int {
	return strings.Compare(a, b)
}

func iconField(k Key, ic layout.Icon) string {
	if k == KeyTitleID {
		return ic.TitleID
	}
	return ic.Title
}

func childField(k Key, c layout.ChildIcon) string {
	if k == KeyTitleID {
		return c.TitleID
	}
	return c.Title
}

// Asc returns an ascending case-insensitive icon comparator on key.
func Asc(k Key) func(a, b layout.Icon) int {
	col := NewCollator()
	return func(a, b layout.Icon) int {
		return col.Compare(iconField(k, a), iconField(k, b))
	}
}

// Desc returns a descending case-insensitive icon comparator on key.
func Desc(k Key) func(a, b layout.Icon) int {
	col := NewCollator()
	return func(a, b layout.Icon) int {
		return col.Compare(iconField(k, b), iconField(k, a))
	}
}

// ChildAsc is Asc for folder mirrors.
func ChildAsc(k Key) func(a, b layout.ChildIcon) int {
	col := NewCollator()
	return func(a, b layout.ChildIcon) int {
		return col.Compare(childField(k, a), childField(k, b))
	}
}

// ChildDesc is Desc for folder mirrors.
func ChildDesc(k Key) func(a, b layout.ChildIcon) int {
	col := NewCollator()
	return func(a, b layout.ChildIcon) int {
		return col.Compare(childField(k, b), childField(k, a))
	}
}

// Difference returns the distinct values of a that do not occur in b, in
// ordinal order. Neither input is modified.
func Difference(a, b []string) []string {
	left := sortedSet(a)
	right := sortedSet(b)

	var out []string
	i, j := 0, 0
	for i < len(left) {
		switch {
		case j >= len(right) || left[i] < right[j]:
			out = append(out, left[i])
			i++
		case left[i] > right[j]:
			j++
		default:
			i++
			j++
		}
	}
	return out
}

func sortedSet(in []string) []string {
	s := slices.Clone(in)
	slices.SortFunc(s, Ordinal)
	return slices.Compact(s)
}
