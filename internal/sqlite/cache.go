package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/devconnect/devconnect-go/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS posts (
	id         TEXT PRIMARY KEY,
	snapshot   TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	fetched_at INTEGER NOT NULL
)`

// Cache implements domain.PostCache using a local SQLite database. It keeps
// the last fetched post snapshots so feeds can fall back to them when the
// backend is unreachable.
type Cache struct {
	db *sql.DB
}

// Open opens (creating if needed) the cache database at the given path. The
// caller should call Close when the cache is no longer needed.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create posts table: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// SavePosts upserts the given snapshots, replacing any cached copy of the
// same post.
func (c *Cache) SavePosts(ctx context.Context, posts []domain.Post) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().UnixMilli()
	for _, post := range posts {
		snapshot, err := json.Marshal(post)
		if err != nil {
			return fmt.Errorf("marshal post %s: %w", post.ID, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO posts (id, snapshot, created_at, fetched_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET snapshot = ?2, created_at = ?3, fetched_at = ?4`,
			post.ID, string(snapshot), post.CreatedAt.UnixMilli(), now,
		)
		if err != nil {
			return fmt.Errorf("upsert post %s: %w", post.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetPosts retrieves all cached posts, newest-first.
func (c *Cache) GetPosts(ctx context.Context) ([]domain.Post, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT snapshot FROM posts
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query cached posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		var snapshot string
		if err := rows.Scan(&snapshot); err != nil {
			return nil, fmt.Errorf("scan cached post: %w", err)
		}

		var post domain.Post
		if err := json.Unmarshal([]byte(snapshot), &post); err != nil {
			return nil, fmt.Errorf("unmarshal cached post: %w", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cached posts: %w", err)
	}
	return posts, nil
}

// Prune removes snapshots fetched longer than maxAge ago and any excess
// rows beyond maxRows, keeping the most recently created posts. Returns the
// total number of rows deleted.
func (c *Cache) Prune(ctx context.Context, maxAge time.Duration, maxRows int) (int64, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM posts WHERE fetched_at < ?`,
		time.Now().UTC().Add(-maxAge).UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("delete stale posts: %w", err)
	}
	staleDeleted, _ := res.RowsAffected()

	res, err = tx.ExecContext(ctx, `
		DELETE FROM posts WHERE id IN (
			SELECT id FROM posts
			ORDER BY created_at DESC, id DESC
			LIMIT -1 OFFSET ?
		)`, maxRows,
	)
	if err != nil {
		return 0, fmt.Errorf("delete excess posts: %w", err)
	}
	capDeleted, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	return staleDeleted + capDeleted, nil
}
