package telegram

import (
	"fmt"
	"strings"

	"snapmath/internal/workflow"
)

// renderSession builds the chat text for the session's current results.
// Invalid fields keep their raw text behind a visible marker so the rest of
// the result stays usable.
func renderSession(s *workflow.Session) string {
	var b strings.Builder

	if qs := s.SimilarView(); len(qs) > 0 {
		b.WriteString("Similar question:\n")
		for _, q := range qs {
			b.WriteString(renderLine(q))
		}
		b.WriteString("Send a photo of your answer to it.\n")
		return b.String()
	}

	if q := s.QuestionView(); q.Raw != "" {
		b.WriteString("Question:\n")
		b.WriteString(renderLine(q))
	}
	if sol := s.SolutionView(); sol != nil {
		b.WriteString("Solution steps:\n")
		writeSolution(&b, sol)
	}
	if ans := s.AnswerView(); ans != nil {
		b.WriteString("Your answer:\n")
		writeSolution(&b, ans)
	}
	if ev := s.EvaluationView(); len(ev) > 0 {
		b.WriteString("Evaluation:\n")
		for _, line := range ev {
			mark := "✓"
			if !line.Correct {
				mark = "✗"
			}
			b.WriteString(mark + " " + oneLine(line.Step) + "\n")
			if line.Comment.Raw != "" {
				b.WriteString("   " + oneLine(line.Comment) + "\n")
			}
		}
	}

	if b.Len() == 0 {
		return "Nothing to show yet. Send a photo."
	}
	return b.String()
}

func writeSolution(b *strings.Builder, v *workflow.SolutionView) {
	for i, step := range v.Steps {
		b.WriteString(fmt.Sprintf("%d. %s", i+1, oneLine(step)))
		b.WriteByte('\n')
	}
	b.WriteString("Final answer: " + oneLine(v.FinalAnswer) + "\n")
}

func renderLine(r workflow.Rendered) string {
	return oneLine(r) + "\n"
}

func oneLine(r workflow.Rendered) string {
	if !r.Valid {
		return "Invalid LaTeX: " + r.Raw
	}
	return r.Text
}
