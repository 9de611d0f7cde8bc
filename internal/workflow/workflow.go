// Package workflow sequences capture, compression, extraction and the remote
// solve/evaluate/generate calls, and owns the mutable structured result that
// presenters project. One session supports at most one in-flight remote call.
package workflow

import (
	"context"
	"errors"

	"snapmath/internal/solver"
)

// Mode selects which remote endpoints apply to a captured image.
type Mode string

const (
	ModeQuestion Mode = "question"
	ModeAnswer   Mode = "answer"
)

// State is the session's position in the capture → solve/evaluate flow.
type State string

const (
	StateIdle         State = "idle"
	StateExtracting   State = "extracting"
	StateExtracted    State = "extracted"
	StateSolving      State = "solving"
	StateSolved       State = "solved"
	StateAnswerReady  State = "answer_ready"
	StateEvaluating   State = "evaluating"
	StateEvaluated    State = "evaluated"
	StateGenerating   State = "generating"
	StateSimilarReady State = "similar_ready"
)

var (
	// ErrBusy rejects an action while a remote call is in flight. Actions are
	// rejected, never queued.
	ErrBusy = errors.New("a remote call is already in flight")

	ErrNoBaseQuestion = errors.New("no question or solution to generate from")
	ErrNoAnswer       = errors.New("no answer to evaluate")
	ErrNoQuestion     = errors.New("no question to solve")
	ErrNotEditing     = errors.New("session is not in edit mode")
	ErrNoSuchStep     = errors.New("step index out of range")
)

// SolverAPI is the remote surface the orchestrator drives.
type SolverAPI interface {
	ExtractQuestion(ctx context.Context, image []byte) (string, error)
	ExtractAnswer(ctx context.Context, image []byte) (string, error)
	Solve(ctx context.Context, question string) (solver.Solution, error)
	Evaluate(ctx context.Context, finalAnswer string, steps []string) ([]solver.EvaluationStep, error)
	GenerateSimilar(ctx context.Context, baseQuestion string) ([]string, error)
}

// Notifier shows a dismissible user-visible message. Failure notifications go
// through here; nothing in the workflow is fatal.
type Notifier interface {
	Notify(text string)
}

type noopNotifier struct{}

func (noopNotifier) Notify(string) {}
