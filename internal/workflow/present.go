package workflow

import (
	"snapmath/internal/mathtex"
	"snapmath/internal/solver"
)

// Rendered is one field of a view, normalized and gated by the renderability
// check. When Valid is false the presenter must show an invalid-content
// marker carrying Raw instead of rendering Text — never a blank area.
type Rendered struct {
	Text  string
	Raw   string
	Valid bool
}

func renderOne(s string) Rendered {
	n := mathtex.Normalize(s)
	return Rendered{Text: n, Raw: s, Valid: mathtex.IsRenderable(n)}
}

func renderAll(ss []string) []Rendered {
	out := make([]Rendered, len(ss))
	for i, s := range ss {
		out[i] = renderOne(s)
	}
	return out
}

// SolutionView projects a held solution or answer result.
type SolutionView struct {
	Steps       []Rendered
	FinalAnswer Rendered
}

// EvaluationLine projects one graded step.
type EvaluationLine struct {
	Step    Rendered
	Comment Rendered
	Correct bool
}

// Snapshot is a read-only view of the session's control state.
type Snapshot struct {
	ID      string
	Mode    Mode
	State   State
	Editing bool
	Busy    bool
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:      s.ID,
		Mode:    s.mode,
		State:   s.state,
		Editing: s.editing,
		Busy:    s.busy,
	}
}

// QuestionView projects the current question text, or a zero Rendered when no
// question is held or a similar question has superseded it.
func (s *Session) QuestionView() Rendered {
	s.mu.Lock()
	question := s.question
	superseded := len(s.similar) > 0
	s.mu.Unlock()
	if question == "" || superseded {
		return Rendered{}
	}
	return renderOne(question)
}

func (s *Session) SolutionView() *SolutionView {
	s.mu.Lock()
	sol := cloneSolution(s.solution)
	s.mu.Unlock()
	return projectSolution(sol)
}

func (s *Session) AnswerView() *SolutionView {
	s.mu.Lock()
	ans := cloneSolution(s.answer)
	s.mu.Unlock()
	return projectSolution(ans)
}

func (s *Session) EvaluationView() []EvaluationLine {
	s.mu.Lock()
	ev := append([]solver.EvaluationStep(nil), s.evaluation...)
	s.mu.Unlock()
	if len(ev) == 0 {
		return nil
	}
	out := make([]EvaluationLine, len(ev))
	for i, e := range ev {
		out[i] = EvaluationLine{
			Step:    renderOne(e.Step),
			Comment: renderOne(e.Comment),
			Correct: e.Correct,
		}
	}
	return out
}

// SimilarView projects the generated practice questions, most recent
// generation only.
func (s *Session) SimilarView() []Rendered {
	s.mu.Lock()
	qs := append([]string(nil), s.similar...)
	s.mu.Unlock()
	if len(qs) == 0 {
		return nil
	}
	return renderAll(qs)
}

func projectSolution(sol *solver.Solution) *SolutionView {
	if sol == nil {
		return nil
	}
	return &SolutionView{
		Steps:       renderAll(sol.Steps),
		FinalAnswer: renderOne(sol.FinalAnswer),
	}
}

func cloneSolution(sol *solver.Solution) *solver.Solution {
	if sol == nil {
		return nil
	}
	cp := *sol
	cp.Steps = append([]string(nil), sol.Steps...)
	return &cp
}
