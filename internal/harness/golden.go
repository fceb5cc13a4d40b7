package harness

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders a result in the line format of the golden files: one
// line per step, then the final pages, then the final placements.
func Snapshot(scenarioName string, result *Result) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "scenario %s\n", scenarioName)
	for i, st := range result.Steps {
		fmt.Fprintf(&buf, "step %d %s %s", i, st.Action, st.State)
		if st.Code != "" {
			fmt.Fprintf(&buf, " %s", st.Code)
		}
		buf.WriteByte('\n')
	}
	if result.Final != nil {
		for _, p := range result.Final.Pages {
			fmt.Fprintf(&buf, "page %d %d\n", p.PageID, p.PageNo)
		}
		for _, p := range Placements(result.Final) {
			fmt.Fprintf(&buf, "icon %d %d %s\n", p.PageID, p.Pos, p.Title)
		}
	}
	return buf.Bytes()
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file. The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(t, scenario)
	if err != nil {
		return nil, err
	}

	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares an already computed result against its golden
// file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, Snapshot(scenarioName, result))
}
