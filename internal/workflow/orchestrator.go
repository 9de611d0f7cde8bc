package workflow

import (
	"context"
	"errors"
	"log"
	"time"

	"snapmath/internal/capture"
	"snapmath/internal/imaging"
	"snapmath/internal/solver"
	"snapmath/internal/store"
	"snapmath/internal/util"
)

// DefaultCacheMaxAge bounds how stale a memoized remote response may be.
const DefaultCacheMaxAge = 24 * time.Hour

// Orchestrator drives sessions through the remote workflow. It is safe for
// use from multiple goroutines; per-session ordering is enforced by each
// session's busy flag.
type Orchestrator struct {
	api         SolverAPI
	cache       *store.Cache // optional; nil disables memoization
	cacheMaxAge time.Duration
}

func NewOrchestrator(api SolverAPI, cache *store.Cache) *Orchestrator {
	return &Orchestrator{
		api:         api,
		cache:       cache,
		cacheMaxAge: DefaultCacheMaxAge,
	}
}

// SubmitImage runs the capture result through compress → extract and, in
// question mode, on into solve. On failure the session falls back to the
// state preceding the failed step with its prior results intact.
func (o *Orchestrator) SubmitImage(ctx context.Context, s *Session, raw []byte) error {
	if len(raw) == 0 {
		s.notify.Notify("Please capture or upload an image before submitting.")
		return capture.ErrNoImage
	}

	prev, err := s.begin(StateExtracting)
	if err != nil {
		return err
	}
	mode := s.Mode()

	profile := imaging.QuestionProfile
	if mode == ModeAnswer {
		profile = imaging.AnswerProfile
	}
	img := imaging.Compress(raw, profile)

	text, err := o.extract(ctx, mode, img)
	if err != nil {
		s.fail(prev)
		s.notify.Notify("Failed to extract text from the image.")
		return err
	}

	if mode == ModeAnswer {
		ans := parseAnswer(text)
		s.mu.Lock()
		s.image = img
		s.answerText = text
		s.answer = &ans
		s.evaluation = nil
		// An answer capture consumes any generated practice question, so
		// the answer and its evaluation become visible again.
		s.similar = nil
		s.mu.Unlock()
		s.succeed(StateAnswerReady)
		return nil
	}

	// Question mode: extraction success immediately triggers solve, with
	// exactly the extracted text as the question.
	s.mu.Lock()
	s.image = img
	s.question = text
	s.state = StateSolving
	s.mu.Unlock()

	sol, err := o.solve(ctx, text)
	if err != nil {
		// Extraction survives a failed solve.
		s.fail(StateExtracted)
		s.notify.Notify(userMessage(err))
		return err
	}

	s.mu.Lock()
	s.solution = &sol
	s.mu.Unlock()
	s.succeed(StateSolved)
	return nil
}

// Solve re-solves the current (possibly edited) question text.
func (o *Orchestrator) Solve(ctx context.Context, s *Session) error {
	s.mu.Lock()
	question := s.question
	s.mu.Unlock()
	if question == "" {
		return ErrNoQuestion
	}

	prev, err := s.begin(StateSolving)
	if err != nil {
		return err
	}

	sol, err := o.solve(ctx, question)
	if err != nil {
		s.fail(prev)
		s.notify.Notify(userMessage(err))
		return err
	}

	s.mu.Lock()
	s.solution = &sol
	s.mu.Unlock()
	s.succeed(StateSolved)
	return nil
}

// Evaluate submits the current, possibly user-edited, answer for grading.
// The request is built from the held result, never from the original
// extraction, so edits are always reflected.
func (o *Orchestrator) Evaluate(ctx context.Context, s *Session) error {
	s.mu.Lock()
	target := s.activeResult()
	if target == nil {
		s.mu.Unlock()
		return ErrNoAnswer
	}
	final := target.FinalAnswer
	steps := append([]string(nil), target.Steps...)
	s.mu.Unlock()

	prev, err := s.begin(StateEvaluating)
	if err != nil {
		return err
	}

	ev, err := o.api.Evaluate(ctx, final, steps)
	if err != nil {
		s.fail(prev)
		s.notify.Notify(userMessage(err))
		return err
	}

	// Evaluations are replaced wholesale, never merged.
	s.mu.Lock()
	s.evaluation = ev
	s.mu.Unlock()
	s.succeed(StateEvaluated)
	return nil
}

// GenerateSimilar asks for practice questions derived from the current one.
// It requires a solution (question flow) or a prior extraction (answer flow);
// without one the call is rejected before any network activity. On success
// the similar question supersedes the current one: the mode switches to
// Answer and the captured image reference is cleared so the next capture is
// read as an answer to the new question.
func (o *Orchestrator) GenerateSimilar(ctx context.Context, s *Session) error {
	s.mu.Lock()
	var base string
	switch {
	case s.mode == ModeQuestion && s.solution != nil:
		base = s.question
	case s.mode == ModeAnswer && s.answer != nil:
		base = s.answerText
	}
	s.mu.Unlock()
	if base == "" {
		return ErrNoBaseQuestion
	}

	prev, err := s.begin(StateGenerating)
	if err != nil {
		return err
	}

	questions, err := o.api.GenerateSimilar(ctx, base)
	if err != nil {
		s.fail(prev)
		s.notify.Notify(userMessage(err))
		return err
	}

	s.mu.Lock()
	s.similar = questions
	s.mode = ModeAnswer
	s.image = nil
	s.question = ""
	s.mu.Unlock()
	s.succeed(StateSimilarReady)
	return nil
}

func (o *Orchestrator) extract(ctx context.Context, mode Mode, img []byte) (string, error) {
	hash := util.SHA256Hex(img)
	if o.cache != nil {
		if text, err := o.cache.FindExtract(ctx, hash, string(mode), o.cacheMaxAge); err == nil {
			return text, nil
		} else if !errors.Is(err, store.ErrNotFound) {
			log.Printf("workflow: extract cache lookup failed: %v", err)
		}
	}

	var (
		text string
		err  error
	)
	if mode == ModeAnswer {
		text, err = o.api.ExtractAnswer(ctx, img)
	} else {
		text, err = o.api.ExtractQuestion(ctx, img)
	}
	if err != nil {
		return "", err
	}

	if o.cache != nil {
		if err := o.cache.UpsertExtract(ctx, hash, string(mode), text); err != nil {
			log.Printf("workflow: extract cache save failed: %v", err)
		}
	}
	return text, nil
}

func (o *Orchestrator) solve(ctx context.Context, question string) (sol solver.Solution, err error) {
	hash := util.SHA256Hex([]byte(question))
	if o.cache != nil {
		if cached, err := o.cache.FindSolution(ctx, hash, o.cacheMaxAge); err == nil {
			return cached, nil
		} else if !errors.Is(err, store.ErrNotFound) {
			log.Printf("workflow: solve cache lookup failed: %v", err)
		}
	}

	sol, err = o.api.Solve(ctx, question)
	if err != nil {
		return sol, err
	}

	if o.cache != nil {
		if err := o.cache.UpsertSolution(ctx, hash, sol); err != nil {
			log.Printf("workflow: solve cache save failed: %v", err)
		}
	}
	return sol, nil
}

// userMessage maps a remote failure to the dismissible text shown to the
// user.
func userMessage(err error) string {
	var se *solver.Error
	if errors.As(err, &se) {
		switch se.Kind {
		case solver.KindRemoteRejected:
			return "Request failed: " + se.Message
		case solver.KindTimeout:
			return "The request timed out. Please try again."
		}
	}
	return "An error occurred while connecting to the server."
}
