package harness

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/homesort/internal/layout"
	"github.com/roach88/homesort/internal/snapshot"
)

// AssertionError is returned when an assertion fails.
// It includes the final layout to help debug the failure.
type AssertionError struct {
	Type     string        // Assertion type for categorization
	Expected string        // Human-readable expected outcome
	Actual   string        // Human-readable actual outcome
	Final    *layout.Model // Final layout for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if e.Final != nil {
		fmt.Fprintf(&buf, "\nFinal layout:\n")
		_ = e.Final.WriteTable(&buf)
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failure
// messages.
func EvaluateAssertions(ctx context.Context, result *Result, assertions []Assertion, snapshots *snapshot.Manager) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertPlacements:
			err = assertPlacements(result.Final, a)
		case AssertPages:
			err = assertPages(result.Final, a)
		case AssertLoadouts:
			err = assertLoadouts(ctx, snapshots, a)
		case AssertBackup:
			err = assertBackup(snapshots, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

// Placements lists where each icon of m sits, in model order.
func Placements(m *layout.Model) []Placement {
	out := make([]Placement, len(m.Icons))
	for i, ic := range m.Icons {
		out[i] = Placement{PageID: ic.PageID, Pos: ic.Pos, Title: ic.Title}
	}
	return out
}

func assertPlacements(final *layout.Model, a Assertion) error {
	got := Placements(final)
	if slices.Equal(got, a.Placements) {
		return nil
	}
	return &AssertionError{
		Type:     AssertPlacements,
		Expected: formatPlacements(a.Placements),
		Actual:   formatPlacements(got),
		Final:    final,
	}
}

func assertPages(final *layout.Model, a Assertion) error {
	if slices.Equal(final.Pages, a.Pages) {
		return nil
	}
	return &AssertionError{
		Type:     AssertPages,
		Expected: fmt.Sprintf("%v", a.Pages),
		Actual:   fmt.Sprintf("%v", final.Pages),
		Final:    final,
	}
}

func assertLoadouts(ctx context.Context, snapshots *snapshot.Manager, a Assertion) error {
	loadouts, err := snapshots.List(ctx)
	if err != nil {
		return err
	}
	names := make([]string, len(loadouts))
	for i, l := range loadouts {
		names[i] = l.Name
	}
	if slices.Equal(names, a.Loadouts) || (len(names) == 0 && len(a.Loadouts) == 0) {
		return nil
	}
	return &AssertionError{
		Type:     AssertLoadouts,
		Expected: fmt.Sprintf("%v", a.Loadouts),
		Actual:   fmt.Sprintf("%v", names),
	}
}

func assertBackup(snapshots *snapshot.Manager, a Assertion) error {
	if got := snapshots.BackupExists(); got != *a.Exists {
		return &AssertionError{
			Type:     AssertBackup,
			Expected: fmt.Sprintf("backup exists = %t", *a.Exists),
			Actual:   fmt.Sprintf("backup exists = %t", got),
		}
	}
	return nil
}

func formatPlacements(ps []Placement) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = fmt.Sprintf("%d/%d %s", p.PageID, p.Pos, p.Title)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
