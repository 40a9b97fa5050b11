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

// Link represents a row in the links table. Tags are loaded from link_tags in
// the caller's original order.
type Link struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user"`
	URL         string    `db:"url" json:"url"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
	Tags        []string  `db:"-" json:"tags"`
}

// LinkFields is the full set of caller-supplied fields for a new link.
type LinkFields struct {
	URL         string
	Title       string
	Description string
	Tags        []string
}

// LinkPatch is a partial update. Nil fields are left unchanged; a non-nil
// empty Tags slice clears the tag set.
type LinkPatch struct {
	URL         *string
	Title       *string
	Description *string
	Tags        *[]string
}

// SearchParams filters and paginates a link search. Page is 1-based.
type SearchParams struct {
	Text  string
	Tag   string
	Page  int
	Limit int
}

// SearchResult is one page of links plus pagination metadata.
type SearchResult struct {
	Links      []*Link
	Count      int
	Page       int
	TotalPages int
	HasMore    bool
}

// TagCount is one row of the per-user tag aggregation.
type TagCount struct {
	Name  string `db:"name" json:"name"`
	Count int    `db:"count" json:"count"`
}

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// LinkStore owns link records, the per-user URL uniqueness invariant, and the
// text-search and tag queries over them.
type LinkStore struct {
	db   *sqlx.DB
	tags *TagStore
}

func NewLinkStore(db *sqlx.DB, tags *TagStore) *LinkStore {
	return &LinkStore{db: db, tags: tags}
}

// q rebinds ? placeholders to the driver's native format ($1,$2,... for PostgreSQL).
func (s *LinkStore) q(query string) string { return s.db.Rebind(query) }

// Insert validates the fields, attaches ownerID, and persists the link and its
// tags in one transaction. The unique index on (user_id, url) makes exactly
// one of two concurrent duplicate inserts fail with ErrDuplicateLink.
func (s *LinkStore) Insert(ctx context.Context, ownerID string, f LinkFields) (*Link, error) {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.Tags = trimTags(f.Tags)

	v := &ValidationError{}
	validateURL(v, f.URL)
	validateTitle(v, f.Title)
	validateDescription(v, f.Description)
	validateTags(v, f.Tags)
	if err := v.orNil(); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	now := time.Now().UTC()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO links (id, user_id, url, title, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), id, ownerID, f.URL, f.Title, f.Description, now, now)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrDuplicateLink
		}
		return nil, err
	}

	if err := s.setTagsTx(ctx, tx, id, f.Tags); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// GetByID returns the link matching id with its tags, or ErrNotFound.
func (s *LinkStore) GetByID(ctx context.Context, id string) (*Link, error) {
	var l Link
	err := s.db.GetContext(ctx, &l, s.q(`SELECT * FROM links WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.attachTags(ctx, []*Link{&l}); err != nil {
		return nil, err
	}
	return &l, nil
}

// Patch applies the non-nil fields of p to the link, re-validating only what
// changed, and returns the updated record. Absent fields are never cleared.
func (s *LinkStore) Patch(ctx context.Context, id string, p LinkPatch) (*Link, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	v := &ValidationError{}
	sets := []string{"updated_at = ?"}
	args := []interface{}{time.Now().UTC()}

	if p.URL != nil {
		validateURL(v, *p.URL)
		sets = append(sets, "url = ?")
		args = append(args, *p.URL)
	}
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		validateTitle(v, title)
		sets = append(sets, "title = ?")
		args = append(args, title)
	}
	if p.Description != nil {
		description := strings.TrimSpace(*p.Description)
		validateDescription(v, description)
		sets = append(sets, "description = ?")
		args = append(args, description)
	}
	var newTags []string
	if p.Tags != nil {
		newTags = trimTags(*p.Tags)
		validateTags(v, newTags)
	}
	if err := v.orNil(); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	args = append(args, id)
	_, err = tx.ExecContext(ctx, tx.Rebind(
		`UPDATE links SET `+strings.Join(sets, ", ")+` WHERE id = ?`), args...)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrDuplicateLink
		}
		return nil, err
	}

	if p.Tags != nil {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM link_tags WHERE link_id = ?`), id); err != nil {
			return nil, err
		}
		if err := s.setTagsTx(ctx, tx, id, newTags); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// Delete removes a link by ID. CASCADE handles link_tags. Returns ErrNotFound
// if the link is already absent.
func (s *LinkStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM links WHERE id = ?`), id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Search returns one page of ownerID's links, newest first. Every
// whitespace-separated term of params.Text must match the title, description,
// or a tag name (case-insensitive LIKE); params.Tag requires exact tag
// membership. Limit defaults to 10 and is capped at 100.
func (s *LinkStore) Search(ctx context.Context, ownerID string, params SearchParams) (*SearchResult, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	where := []string{"l.user_id = ?"}
	args := []interface{}{ownerID}

	for _, term := range strings.Fields(params.Text) {
		pattern := "%" + escapeLike(term) + "%"
		where = append(where, `(l.title LIKE ? ESCAPE '|' OR l.description LIKE ? ESCAPE '|' OR EXISTS (
			SELECT 1 FROM link_tags lt
			INNER JOIN tags t ON t.id = lt.tag_id
			WHERE lt.link_id = l.id AND t.name LIKE ? ESCAPE '|'))`)
		args = append(args, pattern, pattern, pattern)
	}

	if params.Tag != "" {
		where = append(where, `EXISTS (
			SELECT 1 FROM link_tags lt
			INNER JOIN tags t ON t.id = lt.tag_id
			WHERE lt.link_id = l.id AND t.name = ?)`)
		args = append(args, params.Tag)
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	err := s.db.GetContext(ctx, &total,
		s.q(`SELECT COUNT(*) FROM links l WHERE `+whereClause), args...)
	if err != nil {
		return nil, err
	}

	totalPages := (total + limit - 1) / limit

	var links []*Link
	fetchArgs := append(args, limit, (page-1)*limit)
	err = s.db.SelectContext(ctx, &links, s.q(`
		SELECT l.* FROM links l
		WHERE `+whereClause+`
		ORDER BY l.created_at DESC, l.id DESC
		LIMIT ? OFFSET ?
	`), fetchArgs...)
	if err != nil {
		return nil, err
	}

	if err := s.attachTags(ctx, links); err != nil {
		return nil, err
	}

	return &SearchResult{
		Links:      links,
		Count:      len(links),
		Page:       page,
		TotalPages: totalPages,
		HasMore:    page < totalPages,
	}, nil
}

// TagCounts returns the distinct tags used by ownerID's links with usage
// counts, sorted alphabetically.
func (s *LinkStore) TagCounts(ctx context.Context, ownerID string) ([]TagCount, error) {
	counts := []TagCount{}
	err := s.db.SelectContext(ctx, &counts, s.q(`
		SELECT t.name AS name, COUNT(*) AS count
		FROM tags t
		INNER JOIN link_tags lt ON lt.tag_id = t.id
		INNER JOIN links l ON l.id = lt.link_id
		WHERE l.user_id = ?
		GROUP BY t.name
		ORDER BY t.name ASC
	`), ownerID)
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// setTagsTx upserts each tag and writes the link_tags rows with the caller's
// ordering. Assumes any previous rows for the link are already gone.
func (s *LinkStore) setTagsTx(ctx context.Context, tx *sqlx.Tx, linkID string, tags []string) error {
	for i, name := range tags {
		tag, err := s.tags.upsertTx(ctx, tx, name)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO link_tags (link_id, tag_id, position) VALUES (?, ?, ?)
		`), linkID, tag.ID, i)
		if err != nil {
			return err
		}
	}
	return nil
}

// attachTags populates Tags on each link in one query.
func (s *LinkStore) attachTags(ctx context.Context, links []*Link) error {
	if len(links) == 0 {
		return nil
	}
	ids := make([]string, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.ID)
	}
	byLink, err := s.tags.namesForLinks(ctx, ids)
	if err != nil {
		return err
	}
	for _, l := range links {
		l.Tags = byLink[l.ID]
		if l.Tags == nil {
			l.Tags = []string{}
		}
	}
	return nil
}

// likeEscaper neutralizes LIKE wildcards in user-supplied search terms. The
// pipe escape character is accepted verbatim by sqlite, mysql, and postgres,
// unlike backslash, which mysql string literals treat specially.
var likeEscaper = strings.NewReplacer(`|`, `||`, `%`, `|%`, `_`, `|_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

// trimTags trims whitespace and drops empty or repeated entries, preserving
// first-occurrence order. Repeats would otherwise violate the link_tags
// primary key.
func trimTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
