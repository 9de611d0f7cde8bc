package workflow

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/google/uuid"

	"snapmath/internal/solver"
)

// Session is the top-level mutable state of one capture/solve/evaluate
// workflow. It is created on first use and reset explicitly by the user, never
// destroyed automatically. All mutation happens under the session lock; a
// busy flag enforces at most one in-flight remote call.
type Session struct {
	ID string

	mu         sync.Mutex
	mode       Mode
	state      State
	busy       bool
	editing    bool
	image      []byte
	question   string
	answerText string
	solution   *solver.Solution
	answer     *solver.Solution
	evaluation []solver.EvaluationStep
	similar    []string

	notify Notifier
}

func NewSession(mode Mode, notify Notifier) *Session {
	if notify == nil {
		notify = noopNotifier{}
	}
	return &Session{
		ID:     uuid.New().String(),
		mode:   mode,
		state:  StateIdle,
		notify: notify,
	}
}

func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode switches the capture flow. Rejected while a call is in flight.
func (s *Session) SetMode(m Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrBusy
	}
	s.mode = m
	return nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Editing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editing
}

// SetEditing toggles edit mode. Leaving edit mode never triggers a
// submission; evaluation is always the explicit Evaluate action.
func (s *Session) SetEditing(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editing = on
}

// Reset returns the session to Idle and drops all held results. Rejected
// while a call is in flight.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrBusy
	}
	s.state = StateIdle
	s.editing = false
	s.image = nil
	s.question = ""
	s.answerText = ""
	s.solution = nil
	s.answer = nil
	s.evaluation = nil
	s.similar = nil
	return nil
}

// EditQuestion replaces the held question text in place.
func (s *Session) EditQuestion(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.editing {
		return ErrNotEditing
	}
	s.question = text
	return nil
}

// EditStep replaces step i of the held result. Only steps[i] changes; other
// steps and the final answer are untouched.
func (s *Session) EditStep(i int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.editing {
		return ErrNotEditing
	}
	target := s.activeResult()
	if target == nil || i < 0 || i >= len(target.Steps) {
		return ErrNoSuchStep
	}
	target.Steps[i] = text
	return nil
}

// EditFinalAnswer replaces the final answer of the held result.
func (s *Session) EditFinalAnswer(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.editing {
		return ErrNotEditing
	}
	target := s.activeResult()
	if target == nil {
		return ErrNoAnswer
	}
	target.FinalAnswer = text
	return nil
}

// activeResult is the result edits apply to: the extracted answer when one is
// held, otherwise the solution. Callers hold s.mu.
func (s *Session) activeResult() *solver.Solution {
	if s.answer != nil {
		return s.answer
	}
	return s.solution
}

// begin marks the session busy and moves it to next, returning the state to
// fall back to on failure.
func (s *Session) begin(next State) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return "", ErrBusy
	}
	prev := s.state
	s.busy = true
	s.state = next
	return prev, nil
}

// fail reverts to prev and clears the busy flag.
func (s *Session) fail(prev State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	s.state = prev
}

// succeed moves to next and clears the busy flag.
func (s *Session) succeed(next State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	s.state = next
}

// parseAnswer shapes extracted answer text into a Solution-like value. The
// service may return a JSON object; otherwise non-empty lines become steps
// with the last line as the final answer.
func parseAnswer(text string) solver.Solution {
	trimmed := strings.TrimSpace(text)

	var structured solver.Solution
	if err := json.Unmarshal([]byte(trimmed), &structured); err == nil &&
		(len(structured.Steps) > 0 || structured.FinalAnswer != "") {
		return structured
	}

	var lines []string
	for _, ln := range strings.Split(trimmed, "\n") {
		if ln = strings.TrimSpace(ln); ln != "" {
			lines = append(lines, ln)
		}
	}
	if len(lines) == 0 {
		return solver.Solution{}
	}
	return solver.Solution{
		Steps:       lines[:len(lines)-1],
		FinalAnswer: lines[len(lines)-1],
	}
}
