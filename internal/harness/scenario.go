package harness

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/homesort/internal/layout"
)

// Scenario defines one end-to-end layout scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Layout is written to a fresh database before the first step.
	Layout Layout `yaml:"layout"`

	// Steps run in order against the same installation.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions"`

	// RunID is the fixed persist run id. If empty, defaults to
	// "test-run-default".
	RunID string `yaml:"run_id,omitempty"`
}

// Layout is the seed database. Folders lists folder page ids; each gets a
// page row with a negative page number.
type Layout struct {
	Pages   []layout.Page `yaml:"pages"`
	Folders []int         `yaml:"folders,omitempty"`
	Icons   []layout.Icon `yaml:"icons"`
}

// Step is one operation of a scenario.
type Step struct {
	// Action selects the operation, see the Action constants.
	Action string `yaml:"action"`

	// Sort configures a sort step. Empty fields use title, asc, both.
	Sort *SortStep `yaml:"sort,omitempty"`

	// Pages holds the two page numbers of a swap_pages step.
	Pages []int `yaml:"pages,omitempty"`

	// Name is the loadout name for loadout steps.
	Name string `yaml:"name,omitempty"`

	// Force skips the staleness check of restore_loadout.
	Force bool `yaml:"force,omitempty"`

	// Icon is the row an install step adds.
	Icon *layout.Icon `yaml:"icon,omitempty"`

	// Expect specifies the expected outcome. If nil, the step must not
	// fail.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// SortStep mirrors the sort section of the settings file.
type SortStep struct {
	By      string `yaml:"by,omitempty"`
	Mode    string `yaml:"mode,omitempty"`
	Folders string `yaml:"folders,omitempty"`
}

// ExpectClause specifies the expected outcome of a step.
type ExpectClause struct {
	// State is the workflow state the step ends in: done, warning or error.
	State string `yaml:"state"`

	// Code is the expected error code when State is error.
	Code string `yaml:"code,omitempty"`
}

// Assertion validates the final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "placements": icons in (pageId, pos) order, exact match
	// - "pages": page list, exact match
	// - "loadouts": saved loadout names in list order
	// - "backup": whether an undo backup exists
	Type string `yaml:"type"`

	Placements []Placement   `yaml:"placements,omitempty"`
	Pages      []layout.Page `yaml:"pages,omitempty"`
	Loadouts   []string      `yaml:"loadouts,omitempty"`
	Exists     *bool         `yaml:"exists,omitempty"`
}

// Placement is where one icon ended up.
type Placement struct {
	PageID int    `yaml:"page_id"`
	Pos    int    `yaml:"pos"`
	Title  string `yaml:"title"`
}

// Step actions.
const (
	ActionSort           = "sort"
	ActionSwapPages      = "swap_pages"
	ActionSaveLoadout    = "save_loadout"
	ActionRestoreLoadout = "restore_loadout"
	ActionDeleteLoadout  = "delete_loadout"
	ActionBackup         = "backup"
	ActionRestoreBackup  = "restore_backup"
	ActionInstall        = "install"
)

// Assertion type constants.
const (
	AssertPlacements = "placements"
	AssertPages      = "pages"
	AssertLoadouts   = "loadouts"
	AssertBackup     = "backup"
)

var expectStates = []string{"done", "warning", "error"}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Layout.Pages) == 0 {
		return fmt.Errorf("layout.pages is required and must be non-empty")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, st *Step) error {
	switch st.Action {
	case "":
		return fmt.Errorf("steps[%d]: action is required", index)
	case ActionSort, ActionBackup, ActionRestoreBackup:
	case ActionSwapPages:
		if len(st.Pages) != 2 {
			return fmt.Errorf("steps[%d]: swap_pages needs exactly two page numbers", index)
		}
	case ActionSaveLoadout, ActionRestoreLoadout, ActionDeleteLoadout:
		if st.Name == "" {
			return fmt.Errorf("steps[%d]: name is required for %s", index, st.Action)
		}
	case ActionInstall:
		if st.Icon == nil {
			return fmt.Errorf("steps[%d]: icon is required for install", index)
		}
	default:
		return fmt.Errorf("steps[%d]: unknown action %q", index, st.Action)
	}

	if st.Expect != nil && !slices.Contains(expectStates, st.Expect.State) {
		return fmt.Errorf("steps[%d].expect: state must be one of %v", index, expectStates)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertPlacements:
		if len(a.Placements) == 0 {
			return fmt.Errorf("assertions[%d]: placements list is required for placements", index)
		}
	case AssertPages:
		if len(a.Pages) == 0 {
			return fmt.Errorf("assertions[%d]: pages list is required for pages", index)
		}
	case AssertLoadouts:
	case AssertBackup:
		if a.Exists == nil {
			return fmt.Errorf("assertions[%d]: exists is required for backup", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
