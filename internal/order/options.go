package order

import (
	"fmt"
	"strings"

	"github.com/roach88/homesort/internal/compare"
)

// Mode selects the sort direction. ModeDefault keeps the loaded layout.
type Mode int

const (
	ModeDefault Mode = iota
	ModeAsc
	ModeDesc
)

// FolderPolicy selects which icons the position pass reassigns.
type FolderPolicy int

const (
	// FoldersBoth reassigns page icons and folder members.
	FoldersBoth FolderPolicy = iota
	// AppsOnly leaves folder members where they are.
	AppsOnly
	// FoldersOnly leaves page icons where they are.
	FoldersOnly
)

// Options configures one sort.
type Options struct {
	Mode    Mode
	Key     compare.Key
	Folders FolderPolicy
}

var modeNames = []string{"default", "asc", "desc"}
var policyNames = []string{"both", "apps", "folders"}
var keyNames = []string{"title", "titleid"}

func (m Mode) String() string         { return nameOf(modeNames, int(m)) }
func (p FolderPolicy) String() string { return nameOf(policyNames, int(p)) }

func nameOf(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("unknown(%d)", i)
	}
	return names[i]
}

func indexOf(names []string, s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range names {
		if n == s {
			return i, true
		}
	}
	return 0, false
}

// ParseMode parses "default", "asc" or "desc".
func ParseMode(s string) (Mode, error) {
	i, ok := indexOf(modeNames, s)
	if !ok {
		return 0, fmt.Errorf("invalid sort mode %q: must be one of %v", s, modeNames)
	}
	return Mode(i), nil
}

// ParseFolderPolicy parses "both", "apps" or "folders".
func ParseFolderPolicy(s string) (FolderPolicy, error) {
	i, ok := indexOf(policyNames, s)
	if !ok {
		return 0, fmt.Errorf("invalid folder policy %q: must be one of %v", s, policyNames)
	}
	return FolderPolicy(i), nil
}

// ParseKey parses "title" or "titleid".
func ParseKey(s string) (compare.Key, error) {
	i, ok := indexOf(keyNames, s)
	if !ok {
		return 0, fmt.Errorf("invalid sort key %q: must be one of %v", s, keyNames)
	}
	return compare.Key(i), nil
}
