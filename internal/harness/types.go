package harness

import (
	"github.com/roach88/homesort/internal/layout"
)

// StepRecord is the outcome of one step, in the order the steps ran.
type StepRecord struct {
	Action string `json:"action"`
	State  string `json:"state"`          // "done", "warning" or "error"
	Code   string `json:"code,omitempty"` // error code when State is "error"
	Error  string `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every expect clause and assertion
	// matched.
	Pass bool `json:"pass"`

	// Steps records what each step did.
	Steps []StepRecord `json:"steps"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the layout loaded after the last step.
	Final *layout.Model `json:"final,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Steps:  []StepRecord{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
