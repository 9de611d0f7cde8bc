package solver

// Solution is a step-by-step result with a final answer. It doubles as the
// shape of a student answer once extracted text has been parsed into steps.
type Solution struct {
	Steps       []string `json:"steps"`
	FinalAnswer string   `json:"final_answer"`
}

// EvaluationStep is one graded line of a submitted answer.
type EvaluationStep struct {
	Step    string `json:"step"`
	Comment string `json:"comment"`
	Correct bool   `json:"correct"`
}
