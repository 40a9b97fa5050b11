package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Tag represents a row in the tags table. Tags are a global dictionary;
// per-link membership and ordering live in link_tags.
type Tag struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

// TagStore owns the tags dictionary.
type TagStore struct {
	db *sqlx.DB
}

func NewTagStore(db *sqlx.DB) *TagStore {
	return &TagStore{db: db}
}

// Upsert creates a tag if it doesn't exist (by trimmed name), or returns the
// existing one.
func (s *TagStore) Upsert(ctx context.Context, name string) (*Tag, error) {
	return upsertTag(ctx, s.db, name)
}

// upsertTx is the transactional variant used by LinkStore when replacing a
// link's tag set.
func (s *TagStore) upsertTx(ctx context.Context, tx *sqlx.Tx, name string) (*Tag, error) {
	return upsertTag(ctx, tx, name)
}

// tagQuerier is the subset of sqlx shared by *sqlx.DB and *sqlx.Tx that
// upsertTag needs.
type tagQuerier interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	Rebind(query string) string
}

func upsertTag(ctx context.Context, q tagQuerier, name string) (*Tag, error) {
	name = strings.TrimSpace(name)

	var existing Tag
	err := q.GetContext(ctx, &existing, q.Rebind(`SELECT * FROM tags WHERE name = ?`), name)
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	id := uuid.New().String()
	now := time.Now().UTC()
	_, err = q.ExecContext(ctx, q.Rebind(`
		INSERT INTO tags (id, name, created_at) VALUES (?, ?, ?)
	`), id, name, now)
	if err != nil {
		// Race: another request inserted the same tag first. Re-fetch.
		if isUniqueConstraintError(err) {
			if err := q.GetContext(ctx, &existing, q.Rebind(`SELECT * FROM tags WHERE name = ?`), name); err != nil {
				return nil, err
			}
			return &existing, nil
		}
		return nil, err
	}

	return &Tag{ID: id, Name: name, CreatedAt: now}, nil
}

// namesForLinks returns the ordered tag names for each of the given link IDs.
func (s *TagStore) namesForLinks(ctx context.Context, linkIDs []string) (map[string][]string, error) {
	if len(linkIDs) == 0 {
		return map[string][]string{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT lt.link_id, t.name
		FROM link_tags lt
		INNER JOIN tags t ON t.id = lt.tag_id
		WHERE lt.link_id IN (?)
		ORDER BY lt.link_id, lt.position ASC
	`, linkIDs)
	if err != nil {
		return nil, err
	}

	rows := []struct {
		LinkID string `db:"link_id"`
		Name   string `db:"name"`
	}{}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	byLink := make(map[string][]string, len(linkIDs))
	for _, r := range rows {
		byLink[r.LinkID] = append(byLink[r.LinkID], r.Name)
	}
	return byLink, nil
}
