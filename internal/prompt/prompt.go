// Package prompt asks the user for a line of text, such as a loadout name.
package prompt

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/chzyer/readline"
)

// Prompter reads one line of text. A cancelled prompt returns "" and no
// error.
type Prompter interface {
	GetText(prompt, initial string) (string, error)
}

// Terminal prompts on an interactive terminal with line editing. initial is
// pre-filled and editable. One readline instance serves every prompt: it
// reads ahead from In, so a fresh instance per prompt would drop answers
// already buffered from a pipe.
type Terminal struct {
	In  io.ReadCloser
	Out io.Writer

	mu sync.Mutex
	rl *readline.Instance
}

// NewTerminal creates a terminal prompter over in and out.
func NewTerminal(in io.ReadCloser, out io.Writer) *Terminal {
	return &Terminal{In: in, Out: out}
}

// GetText shows prompt and reads one line. Ctrl-C and Ctrl-D cancel.
func (t *Terminal) GetText(prompt, initial string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.rl == nil {
		rl, err := readline.NewEx(&readline.Config{
			Stdin:                  t.In,
			Stdout:                 t.Out,
			HistoryLimit:           -1,
			DisableAutoSaveHistory: true,
		})
		if err != nil {
			return "", fmt.Errorf("open prompt: %w", err)
		}
		t.rl = rl
	}
	t.rl.SetPrompt(prompt + ": ")

	return answer(t.rl.ReadlineWithDefault(initial))
}

// Close releases the line editor. The terminal can not prompt afterwards
// without opening a new one.
func (t *Terminal) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.rl == nil {
		return nil
	}
	err := t.rl.Close()
	t.rl = nil
	return err
}

// answer maps a raw readline result to GetText's contract.
func answer(line string, err error) (string, error) {
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read line: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Static answers prompts from a fixed list, then cancels. Used by tests
// and by non-interactive runs where the answer is known up front.
type Static struct {
	mu      sync.Mutex
	answers []string
	asked   []string
}

// NewStatic creates a prompter that returns answers in order.
func NewStatic(answers ...string) *Static {
	return &Static{answers: answers}
}

// GetText returns the next answer, or "" once they run out.
func (s *Static) GetText(prompt, initial string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.asked = append(s.asked, prompt)
	if len(s.answers) == 0 {
		return "", nil
	}
	next := s.answers[0]
	s.answers = s.answers[1:]
	return strings.TrimSpace(next), nil
}

// Asked returns the prompts shown so far.
func (s *Static) Asked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.asked...)
}
