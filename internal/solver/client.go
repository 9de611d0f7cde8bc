// Package solver is the HTTP client for the remote math solver service. It
// issues the five remote operations (extract question/answer text, solve,
// evaluate, generate similar) and maps transport and payload failures into
// typed errors. Calls are at-most-once: nothing is retried.
package solver

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"snapmath/internal/util"
)

const DefaultTimeout = 60 * time.Second

type Client struct {
	BaseURL string
	Timeout time.Duration
	httpc   *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		Timeout: DefaultTimeout,
		httpc:   &http.Client{},
	}
}

// ExtractQuestion transcribes a question photo into text.
func (c *Client) ExtractQuestion(ctx context.Context, image []byte) (string, error) {
	return c.extract(ctx, "/api/ocr/extract", image)
}

// ExtractAnswer transcribes an answer photo into text. The text may itself be
// a structured answer; shaping it is the caller's concern.
func (c *Client) ExtractAnswer(ctx context.Context, image []byte) (string, error) {
	return c.extract(ctx, "/api/ocr/extract_answer", image)
}

func (c *Client) extract(ctx context.Context, path string, image []byte) (string, error) {
	b64 := base64.StdEncoding.EncodeToString(image)
	// The deployed service expects a png data URL prefix regardless of the
	// actual image encoding.
	req := map[string]string{"image_data": util.MakeDataURL("image/png", b64)}

	var out struct {
		Text *string `json:"text"`
	}
	if err := c.post(ctx, path, req, &out); err != nil {
		return "", err
	}
	if out.Text == nil {
		return "", &Error{Kind: KindMalformedResponse, Message: "response has no text field"}
	}
	return *out.Text, nil
}

// Solve requests a step-by-step solution for a question string.
func (c *Client) Solve(ctx context.Context, question string) (Solution, error) {
	req := map[string]string{"question": question}

	var out struct {
		Solution *struct {
			Steps       []string `json:"steps"`
			FinalAnswer string   `json:"final answer"`
		} `json:"solution"`
	}
	if err := c.post(ctx, "/api/solution/solve", req, &out); err != nil {
		return Solution{}, err
	}
	if out.Solution == nil {
		return Solution{}, &Error{Kind: KindMalformedResponse, Message: "response has no solution field"}
	}
	return Solution{Steps: out.Solution.Steps, FinalAnswer: out.Solution.FinalAnswer}, nil
}

// Evaluate grades a submitted answer's steps and final answer.
func (c *Client) Evaluate(ctx context.Context, finalAnswer string, steps []string) ([]EvaluationStep, error) {
	if steps == nil {
		steps = []string{}
	}
	req := struct {
		FinalAnswer string   `json:"final_answer"`
		Steps       []string `json:"steps"`
	}{FinalAnswer: finalAnswer, Steps: steps}

	var out struct {
		Evaluation *struct {
			Steps []EvaluationStep `json:"steps"`
		} `json:"evaluation"`
	}
	if err := c.post(ctx, "/api/solution/evaluate", req, &out); err != nil {
		return nil, err
	}
	if out.Evaluation == nil {
		return nil, &Error{Kind: KindMalformedResponse, Message: "response has no evaluation field"}
	}
	return out.Evaluation.Steps, nil
}

// GenerateSimilar requests practice questions derived from a base question.
func (c *Client) GenerateSimilar(ctx context.Context, baseQuestion string) ([]string, error) {
	req := map[string]string{"base_question": baseQuestion}

	var out struct {
		Questions []string `json:"questions"`
	}
	if err := c.post(ctx, "/api/practice/generate", req, &out); err != nil {
		return nil, err
	}
	if out.Questions == nil {
		return nil, &Error{Kind: KindMalformedResponse, Message: "response has no questions field"}
	}
	return out.Questions, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &Error{Kind: KindMalformedResponse, Message: "bad request payload: " + err.Error()}
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return &Error{Kind: KindNetwork, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		if isTimeout(err) {
			return &Error{Kind: KindTimeout, Message: "request timed out"}
		}
		return &Error{Kind: KindNetwork, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Kind: KindRemoteRejected, Message: remoteMessage(raw, resp.StatusCode)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Kind: KindMalformedResponse, Message: "bad JSON response: " + err.Error()}
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// remoteMessage surfaces the body's error field when present, else a generic
// status message.
func remoteMessage(raw []byte, code int) string {
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && strings.TrimSpace(body.Error) != "" {
		return body.Error
	}
	return fmt.Sprintf("request failed with status %d", code)
}
