// Package store memoizes remote solver responses in Postgres so that
// re-uploading the same photo or re-solving the same question skips the
// remote call. Only remote responses are cached; session state never is.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"snapmath/internal/solver"
)

var ErrNotFound = sql.ErrNoRows

type Cache struct {
	DB *sql.DB
}

func New(db *sql.DB) *Cache { return &Cache{DB: db} }

// FindExtract returns the cached OCR text for (imageHash, mode). If maxAge > 0
// and the row is older, it is treated as a miss.
func (c *Cache) FindExtract(ctx context.Context, imageHash, mode string, maxAge time.Duration) (string, error) {
	const q = `select text, created_at from extract_cache where image_hash=$1 and mode=$2`
	var (
		text string
		ts   time.Time
	)
	if err := c.DB.QueryRowContext(ctx, q, imageHash, mode).Scan(&text, &ts); err != nil {
		return "", err
	}
	if maxAge > 0 && time.Since(ts) > maxAge {
		return "", ErrNotFound
	}
	return text, nil
}

// UpsertExtract stores OCR text keyed by (image_hash, mode).
func (c *Cache) UpsertExtract(ctx context.Context, imageHash, mode, text string) error {
	const q = `
insert into extract_cache(image_hash, mode, text)
values ($1,$2,$3)
on conflict (image_hash, mode)
do update set text=excluded.text, created_at=now()`
	_, err := c.DB.ExecContext(ctx, q, imageHash, mode, text)
	return err
}

// FindSolution returns the cached solution for a question hash. A row with
// broken JSON counts as a miss.
func (c *Cache) FindSolution(ctx context.Context, questionHash string, maxAge time.Duration) (solver.Solution, error) {
	const q = `select solution_json, created_at from solve_cache where question_hash=$1`
	var (
		js []byte
		ts time.Time
	)
	if err := c.DB.QueryRowContext(ctx, q, questionHash).Scan(&js, &ts); err != nil {
		return solver.Solution{}, err
	}
	if maxAge > 0 && time.Since(ts) > maxAge {
		return solver.Solution{}, ErrNotFound
	}
	var sol solver.Solution
	if err := json.Unmarshal(js, &sol); err != nil {
		return solver.Solution{}, ErrNotFound
	}
	return sol, nil
}

// UpsertSolution stores a solution keyed by question hash.
func (c *Cache) UpsertSolution(ctx context.Context, questionHash string, sol solver.Solution) error {
	js, _ := json.Marshal(sol)
	const q = `
insert into solve_cache(question_hash, solution_json)
values ($1,$2)
on conflict (question_hash)
do update set solution_json=excluded.solution_json, created_at=now()`
	_, err := c.DB.ExecContext(ctx, q, questionHash, js)
	return err
}
