package solver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractQuestion(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "2+2=?"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	text, err := c.ExtractQuestion(context.Background(), []byte{0xFF, 0xD8, 0x01})
	require.NoError(t, err)
	assert.Equal(t, "2+2=?", text)
	assert.Equal(t, "/api/ocr/extract", gotPath)
	assert.True(t, strings.HasPrefix(gotBody["image_data"], "data:image/png;base64,"),
		"image_data must carry the png data URL prefix")
}

func TestExtractAnswerPath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "x=4"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	text, err := c.ExtractAnswer(context.Background(), []byte{1})
	require.NoError(t, err)
	assert.Equal(t, "x=4", text)
	assert.Equal(t, "/api/ocr/extract_answer", gotPath)
}

func TestExtractMissingTextField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"something": "else"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.ExtractQuestion(context.Background(), []byte{1})
	require.Error(t, err)
	assert.Equal(t, KindMalformedResponse, KindOf(err))
}

func TestSolve(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/solution/solve", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"solution":{"steps":["Add 2 and 2"],"final answer":"4"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	sol, err := c.Solve(context.Background(), "2+2=?")
	require.NoError(t, err)
	assert.Equal(t, "2+2=?", gotBody["question"])
	assert.Equal(t, []string{"Add 2 and 2"}, sol.Steps)
	assert.Equal(t, "4", sol.FinalAnswer)
}

func TestEvaluate(t *testing.T) {
	var gotBody struct {
		FinalAnswer string   `json:"final_answer"`
		Steps       []string `json:"steps"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/solution/evaluate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"evaluation":{"steps":[{"step":"x=5","comment":"wrong","correct":false}]}}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	ev, err := c.Evaluate(context.Background(), "5", []string{"x=5"})
	require.NoError(t, err)
	assert.Equal(t, "5", gotBody.FinalAnswer)
	assert.Equal(t, []string{"x=5"}, gotBody.Steps)
	require.Len(t, ev, 1)
	assert.Equal(t, "x=5", ev[0].Step)
	assert.False(t, ev[0].Correct)
}

func TestEvaluateSendsEmptyStepsArray(t *testing.T) {
	var raw map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, _ = w.Write([]byte(`{"evaluation":{"steps":[]}}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Evaluate(context.Background(), "4", nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw["steps"]), "nil steps must serialize as an empty array")
}

func TestGenerateSimilar(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/practice/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"questions":["3+3=?"]}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	qs, err := c.GenerateSimilar(context.Background(), "2+2=?")
	require.NoError(t, err)
	assert.Equal(t, "2+2=?", gotBody["base_question"])
	assert.Equal(t, []string{"3+3=?"}, qs)
}

func TestRemoteRejectedSurfacesErrorField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"solver overloaded"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Solve(context.Background(), "2+2=?")
	require.Error(t, err)
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, KindRemoteRejected, se.Kind)
	assert.Equal(t, "solver overloaded", se.Message)
}

func TestRemoteRejectedGenericMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Solve(context.Background(), "2+2=?")
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, KindRemoteRejected, se.Kind)
	assert.Contains(t, se.Message, "502")
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := New(srv.URL)
	_, err := c.Solve(context.Background(), "2+2=?")
	require.Error(t, err)
	assert.Equal(t, KindNetwork, KindOf(err))
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "late"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.Timeout = 50 * time.Millisecond
	_, err := c.ExtractQuestion(context.Background(), []byte{1})
	require.Error(t, err)
	assert.Equal(t, KindTimeout, KindOf(err))
}

func TestBadJSONResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"text": `))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.ExtractQuestion(context.Background(), []byte{1})
	assert.Equal(t, KindMalformedResponse, KindOf(err))
}
