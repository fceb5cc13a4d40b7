package workflow

import (
	"fmt"

	"github.com/roach88/homesort/internal/layout"
)

// Action is a pending change awaiting confirmation. The concrete types
// below are the only implementations.
type Action interface {
	// Prompt is the question asked before the action runs.
	Prompt() string
	isAction()
}

// ApplySort writes reordered icons.
type ApplySort struct {
	Icons []layout.Icon
}

// ApplyPages writes new page numbers.
type ApplyPages struct {
	Pages []layout.Page
}

// RestoreBackup puts the undo backup back in place.
type RestoreBackup struct{}

// RestoreLoadout replaces the live files with a saved loadout. Force skips
// the staleness check; it is set when the user confirms the warning.
type RestoreLoadout struct {
	Name  string
	Force bool
}

// DeleteLoadout removes a saved loadout.
type DeleteLoadout struct {
	Name string
}

func (ApplySort) isAction()      {}
func (ApplyPages) isAction()     {}
func (RestoreBackup) isAction()  {}
func (RestoreLoadout) isAction() {}
func (DeleteLoadout) isAction()  {}

func (ApplySort) Prompt() string {
	return "Are you sure you want to apply this sorting method? This may take a minute."
}

func (ApplyPages) Prompt() string {
	return "Are you sure you want to apply this page order? This may take a minute."
}

func (RestoreBackup) Prompt() string {
	return "Are you sure you want to restore this backup?"
}

func (a RestoreLoadout) Prompt() string {
	if a.Force {
		return "This loadout is outdated and may not include some newly installed apps. Do you still wish to continue restoring this loadout?"
	}
	return fmt.Sprintf("Are you sure you want to apply loadout %q?", a.Name)
}

func (a DeleteLoadout) Prompt() string {
	return fmt.Sprintf("Are you sure you want to delete loadout %q?", a.Name)
}
