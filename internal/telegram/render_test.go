package telegram

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snapmath/internal/solver"
	"snapmath/internal/workflow"
)

// scriptedAPI returns canned responses for the full remote surface.
type scriptedAPI struct {
	extractText string
	solution    solver.Solution
	evaluation  []solver.EvaluationStep
	similar     []string
}

func (a *scriptedAPI) ExtractQuestion(ctx context.Context, image []byte) (string, error) {
	return a.extractText, nil
}

func (a *scriptedAPI) ExtractAnswer(ctx context.Context, image []byte) (string, error) {
	return a.extractText, nil
}

func (a *scriptedAPI) Solve(ctx context.Context, question string) (solver.Solution, error) {
	return a.solution, nil
}

func (a *scriptedAPI) Evaluate(ctx context.Context, finalAnswer string, steps []string) ([]solver.EvaluationStep, error) {
	return a.evaluation, nil
}

func (a *scriptedAPI) GenerateSimilar(ctx context.Context, baseQuestion string) ([]string, error) {
	return a.similar, nil
}

func TestRenderSessionShowsSolution(t *testing.T) {
	api := &scriptedAPI{
		extractText: "2+2",
		solution:    solver.Solution{Steps: []string{"2+2=4"}, FinalAnswer: "4"},
	}
	orc := workflow.NewOrchestrator(api, nil)
	s := workflow.NewSession(workflow.ModeQuestion, nil)
	require.NoError(t, orc.SubmitImage(context.Background(), s, []byte("img")))

	out := renderSession(s)
	assert.Contains(t, out, "Question:")
	assert.Contains(t, out, "Solution steps:")
	assert.Contains(t, out, "Final answer: 4")
}

func TestRenderSessionAfterAnswerToSimilarQuestion(t *testing.T) {
	api := &scriptedAPI{
		extractText: "2+2",
		solution:    solver.Solution{Steps: []string{"2+2=4"}, FinalAnswer: "4"},
		evaluation:  []solver.EvaluationStep{{Step: "3+3=6", Comment: "correct", Correct: true}},
		similar:     []string{"3+3"},
	}
	orc := workflow.NewOrchestrator(api, nil)
	s := workflow.NewSession(workflow.ModeQuestion, nil)
	ctx := context.Background()

	require.NoError(t, orc.SubmitImage(ctx, s, []byte("img")))
	require.NoError(t, orc.GenerateSimilar(ctx, s))
	assert.Contains(t, renderSession(s), "Similar question")

	// The user photographs their answer to the generated question; the
	// answer and its evaluation must be displayed, not the stale prompt.
	api.extractText = "3+3=6\n6"
	require.NoError(t, orc.SubmitImage(ctx, s, []byte("img")))
	require.NoError(t, orc.Evaluate(ctx, s))

	out := renderSession(s)
	assert.Contains(t, out, "Your answer:")
	assert.Contains(t, out, "Evaluation:")
	assert.NotContains(t, out, "Similar question")
}

func TestRenderSessionMarksInvalidLatex(t *testing.T) {
	api := &scriptedAPI{
		extractText: "q",
		solution:    solver.Solution{Steps: []string{`\frac{1}{`}, FinalAnswer: "1"},
	}
	orc := workflow.NewOrchestrator(api, nil)
	s := workflow.NewSession(workflow.ModeQuestion, nil)
	require.NoError(t, orc.SubmitImage(context.Background(), s, []byte("img")))

	assert.Contains(t, renderSession(s), `Invalid LaTeX: \frac{1}{`)
}
