package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pipeline-profile-service/internal/domain"
	"pipeline-profile-service/internal/platform/db"
	"pipeline-profile-service/internal/platform/log"
	"pipeline-profile-service/internal/platform/obs"
)

// SQLResultCache stores built profiles in the profile_cache table.
// With MaxAge set, older rows read as misses and are removed by Prune.
type SQLResultCache struct {
	DB      *sql.DB
	Dialect db.Dialect
	MaxAge  time.Duration

	now func() time.Time
}

func NewSQLResultCache(conn *sql.DB, dialect db.Dialect) *SQLResultCache {
	return &SQLResultCache{DB: conn, Dialect: dialect}
}

func NewSqliteResultCache(conn *sql.DB) *SQLResultCache {
	return NewSQLResultCache(conn, db.SQLite)
}

func (s *SQLResultCache) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func (s *SQLResultCache) Get(ctx context.Context, key string) (_ *domain.ProfileResult, _ bool, err error) {
	defer obs.Time(ctx, "profile.cache.Get")(&err)

	if s.DB == nil {
		return nil, false, errors.New("result cache: db is nil")
	}
	if key == "" {
		return nil, false, errors.New("get result cache: key must not be empty")
	}

	var (
		payload   []byte
		createdAt int64
	)
	q := s.Dialect.Bind(`SELECT payload, created_at FROM profile_cache WHERE cache_key = ?;`)
	err = s.DB.QueryRowContext(ctx, q, key).Scan(&payload, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get result cache: query profile_cache table: %w", err)
	}
	if s.MaxAge > 0 && createdAt < s.clock().Add(-s.MaxAge).Unix() {
		return nil, false, nil
	}

	res, err := decodeResult(payload)
	if err != nil {
		return nil, false, fmt.Errorf("get result cache %q: %w", key, err)
	}
	return res, true, nil
}

func (s *SQLResultCache) Put(ctx context.Context, key string, res *domain.ProfileResult) (err error) {
	defer obs.Time(ctx, "profile.cache.Put")(&err)

	if s.DB == nil {
		return errors.New("result cache: db is nil")
	}
	if key == "" {
		return errors.New("insert result cache: key must not be empty")
	}
	if res == nil {
		return errors.New("insert result cache: result is nil")
	}

	payload, err := encodeResult(res)
	if err != nil {
		return fmt.Errorf("insert result cache: %w", err)
	}

	q := s.Dialect.Bind(`
	INSERT INTO profile_cache (cache_key, route, payload, created_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (cache_key) DO UPDATE
	SET route = EXCLUDED.route,
		payload = EXCLUDED.payload,
		created_at = EXCLUDED.created_at;
	`)
	if _, err := s.DB.ExecContext(ctx, q, key, res.Route, payload, s.clock().Unix()); err != nil {
		return fmt.Errorf("insert result cache key=%q: %w", key, err)
	}
	return nil
}

// InvalidateRoute drops every cached result of route.
func (s *SQLResultCache) InvalidateRoute(ctx context.Context, route string) (int64, error) {
	if s.DB == nil {
		return 0, errors.New("result cache: db is nil")
	}

	r, err := s.DB.ExecContext(ctx, s.Dialect.Bind(`DELETE FROM profile_cache WHERE route = ?;`), route)
	if err != nil {
		return 0, fmt.Errorf("invalidate result cache %q: %w", route, err)
	}
	n, _ := r.RowsAffected()
	return n, nil
}

// Prune deletes rows written more than olderThan ago.
func (s *SQLResultCache) Prune(ctx context.Context, olderThan time.Duration) (_ int64, err error) {
	defer obs.Time(ctx, "profile.cache.Prune")(&err)

	if s.DB == nil {
		return 0, errors.New("result cache: db is nil")
	}
	if olderThan <= 0 {
		return 0, fmt.Errorf("prune result cache: age %v must be positive", olderThan)
	}

	cutoff := s.clock().Add(-olderThan).Unix()
	r, err := s.DB.ExecContext(ctx, s.Dialect.Bind(`DELETE FROM profile_cache WHERE created_at < ?;`), cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune result cache: %w", err)
	}
	n, _ := r.RowsAffected()
	return n, nil
}

// Sweep prunes rows older than MaxAge every interval until ctx ends.
// Failures are logged and the sweep carries on.
func (s *SQLResultCache) Sweep(ctx context.Context, interval time.Duration) {
	if s.MaxAge <= 0 || interval <= 0 {
		return
	}

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := s.Prune(ctx, s.MaxAge)
			if err != nil {
				log.Warnw("cache sweep failed", "err", err)
				continue
			}
			if n > 0 {
				log.Infow("cache sweep", "rows", n)
			}
		}
	}
}
