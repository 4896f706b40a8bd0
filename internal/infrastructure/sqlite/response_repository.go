package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/zjrosen/conceptnav/internal/log"
	"github.com/zjrosen/conceptnav/internal/registry"
)

// ResponseRepository stores registry response bodies keyed by request URL.
type ResponseRepository struct {
	db     *sql.DB
	maxAge time.Duration
	now    func() time.Time
}

var (
	_ registry.ResponseCache = (*ResponseRepository)(nil)
	_ registry.Clearer       = (*ResponseRepository)(nil)
)

func newResponseRepository(db *sql.DB, maxAge time.Duration) *ResponseRepository {
	return &ResponseRepository{db: db, maxAge: maxAge, now: time.Now}
}

// Match returns the stored body for url.
func (r *ResponseRepository) Match(ctx context.Context, url string) ([]byte, bool, error) {
	var (
		body      []byte
		fetchedAt int64
	)
	err := r.db.QueryRowContext(ctx, `SELECT body, fetched_at FROM responses WHERE url = ?`, url).Scan(&body, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read response: %w", err)
	}

	if r.maxAge > 0 && r.now().Sub(time.Unix(fetchedAt, 0)) > r.maxAge {
		log.Debug(log.CatCache, "stored response expired", "url", url)
		return nil, false, nil
	}
	return body, true, nil
}

// Put stores body for url, replacing any earlier response.
func (r *ResponseRepository) Put(ctx context.Context, url string, body []byte) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO responses (url, body, fetched_at) VALUES (?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET body = excluded.body, fetched_at = excluded.fetched_at`,
		url, body, r.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store response: %w", err)
	}
	return nil
}

// Clear deletes every stored response.
func (r *ResponseRepository) Clear(ctx context.Context) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM responses`)
	if err != nil {
		return fmt.Errorf("failed to clear responses: %w", err)
	}
	n, _ := res.RowsAffected()
	log.Info(log.CatCache, "cleared stored responses", "count", n)
	return nil
}

// Count returns the number of stored responses.
func (r *ResponseRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM responses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count responses: %w", err)
	}
	return n, nil
}
