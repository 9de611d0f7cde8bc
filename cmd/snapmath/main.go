// Command snapmath runs the capture → solve/evaluate workflow from the
// command line against an image file.
//
// Usage:
//
//	snapmath solve <image>      extract a question and solve it
//	snapmath evaluate <image>   extract an answer and grade it
//	snapmath similar <image>    solve a question, then generate a similar one
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"snapmath/internal/capture"
	"snapmath/internal/solver"
	"snapmath/internal/util"
	"snapmath/internal/workflow"
)

func main() {
	baseURL := flag.String("solver", getEnv("SOLVER_BASE_URL", "http://ken6a03.pythonanywhere.com"), "solver service base URL")
	timeout := flag.Duration("timeout", 60*time.Second, "per-request timeout")
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: snapmath [flags] solve|evaluate|similar <image>")
		os.Exit(2)
	}
	cmd, path := flag.Arg(0), flag.Arg(1)

	raw, err := capture.FromFile(path)
	if err != nil {
		log.Fatalf("read %s: %v", path, err)
	}
	log.Printf("captured %d bytes (%s)", len(raw), util.SniffImageMIME(raw))

	client := solver.New(*baseURL)
	client.Timeout = *timeout
	orc := workflow.NewOrchestrator(client, nil)

	ctx := context.Background()

	switch cmd {
	case "solve":
		s := workflow.NewSession(workflow.ModeQuestion, stderrNotifier{})
		if err := orc.SubmitImage(ctx, s, raw); err != nil {
			os.Exit(1)
		}
		printQuestion(s)
		printSolution("Solution", s.SolutionView())

	case "evaluate":
		s := workflow.NewSession(workflow.ModeAnswer, stderrNotifier{})
		if err := orc.SubmitImage(ctx, s, raw); err != nil {
			os.Exit(1)
		}
		printSolution("Extracted answer", s.AnswerView())
		if err := orc.Evaluate(ctx, s); err != nil {
			os.Exit(1)
		}
		printEvaluation(s)

	case "similar":
		s := workflow.NewSession(workflow.ModeQuestion, stderrNotifier{})
		if err := orc.SubmitImage(ctx, s, raw); err != nil {
			os.Exit(1)
		}
		printQuestion(s)
		printSolution("Solution", s.SolutionView())
		if err := orc.GenerateSimilar(ctx, s); err != nil {
			log.Fatalf("generate similar: %v", err)
		}
		fmt.Println("Similar questions:")
		for _, q := range s.SimilarView() {
			fmt.Println("  " + lineOf(q))
		}

	default:
		fmt.Fprintln(os.Stderr, "unknown command:", cmd)
		os.Exit(2)
	}
}

func printQuestion(s *workflow.Session) {
	if q := s.QuestionView(); q.Raw != "" {
		fmt.Println("Question: " + lineOf(q))
	}
}

func printSolution(title string, v *workflow.SolutionView) {
	if v == nil {
		return
	}
	fmt.Println(title + ":")
	for i, step := range v.Steps {
		fmt.Printf("  %d. %s\n", i+1, lineOf(step))
	}
	fmt.Println("  Final answer: " + lineOf(v.FinalAnswer))
}

func printEvaluation(s *workflow.Session) {
	fmt.Println("Evaluation:")
	for _, line := range s.EvaluationView() {
		mark := "ok "
		if !line.Correct {
			mark = "ERR"
		}
		fmt.Printf("  [%s] %s: %s\n", mark, lineOf(line.Step), lineOf(line.Comment))
	}
}

func lineOf(r workflow.Rendered) string {
	if !r.Valid {
		return "Invalid LaTeX: " + r.Raw
	}
	return r.Text
}

type stderrNotifier struct{}

func (stderrNotifier) Notify(text string) { fmt.Fprintln(os.Stderr, text) }

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
