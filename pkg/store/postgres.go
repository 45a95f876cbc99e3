package store

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sqing33/stickyboard/pkg/errors"
	"github.com/sqing33/stickyboard/pkg/grid"
	"github.com/sqing33/stickyboard/pkg/layout"
	"github.com/sqing33/stickyboard/pkg/note"
	"github.com/sqing33/stickyboard/pkg/observability"
)

// lockTimeout bounds how long a transaction waits on a competing row lock.
// Exceeding it surfaces as CONFLICT, never as a hang.
const lockTimeout = "3s"

// PostgresStore implements Store on a pgx connection pool.
//
// Same-note mutations are serialized with SELECT … FOR UPDATE on the
// target row; create locks the owner's whole note set the same way before
// running placement. Lock-wait timeouts, deadlocks, and serialization
// failures map to CONFLICT; a missing column on read degrades the read
// instead of failing it.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres connects to the database and verifies the connection.
// A nil logger falls back to log.Default().
func NewPostgres(ctx context.Context, databaseURL string, logger *log.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = log.Default()
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, errors.Wrap(errors.CodePersistence, err, "create connection pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(errors.CodePersistence, err, "connect to database")
	}
	return &PostgresStore{pool: pool, logger: logger}, nil
}

// classify maps a database error to the engine's taxonomy.
func classify(err error, op string) error {
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.LockNotAvailable, pgerrcode.DeadlockDetected, pgerrcode.SerializationFailure:
			return errors.Wrap(errors.CodeConflict, err, "%s: lock contention", op)
		case pgerrcode.UndefinedColumn:
			return errors.Wrap(errors.CodeSchemaOutdated, err, "%s: storage schema is outdated", op)
		}
	}
	return errors.Wrap(errors.CodePersistence, err, "%s failed", op)
}

const noteColumns = `id, owner_id, content, tag, x, y, w, h, locked, created_at, updated_at`

// scanNote reads one row in noteColumns order.
func scanNote(row pgx.Row) (*note.Note, error) {
	var n note.Note
	var primaryTag string
	err := row.Scan(&n.ID, &n.OwnerID, &n.Content, &primaryTag,
		&n.Rect.X, &n.Rect.Y, &n.Rect.W, &n.Rect.H,
		&n.Locked, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	n.Tags = []string{primaryTag}
	return &n, nil
}

func (s *PostgresStore) List(ctx context.Context, ownerID string) (*BoardView, error) {
	notes, err := s.listNotes(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if err := s.attachTags(ctx, ownerID, notes); err != nil {
		return nil, err
	}

	view := &BoardView{Notes: notes, Tags: []string{}}
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT tag FROM note_tags
		 WHERE note_id IN (SELECT id FROM notes WHERE owner_id = $1)
		 ORDER BY tag`, ownerID)
	if err != nil {
		return nil, classify(err, "list tags")
	}
	defer rows.Close()
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, classify(err, "list tags")
		}
		view.Tags = append(view.Tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "list tags")
	}
	return view, nil
}

// listNotes reads the owner's rows, retrying without the locked column
// when the schema predates it. Degraded rows report locked=false.
func (s *PostgresStore) listNotes(ctx context.Context, ownerID string) ([]note.Note, error) {
	notes, err := s.queryNotes(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE owner_id = $1 ORDER BY created_at, id`,
		ownerID)
	if err == nil {
		return notes, nil
	}
	if !errors.Is(err, errors.CodeSchemaOutdated) {
		return nil, err
	}

	observability.Store().OnDegradedRead(ctx, "locked")
	s.logger.Warn("notes table missing locked column, degrading read", "owner", ownerID)

	rows, qerr := s.pool.Query(ctx,
		`SELECT id, owner_id, content, tag, x, y, w, h, created_at, updated_at
		 FROM notes WHERE owner_id = $1 ORDER BY created_at, id`, ownerID)
	if qerr != nil {
		return nil, classify(qerr, "list notes")
	}
	defer rows.Close()

	notes = []note.Note{}
	for rows.Next() {
		var n note.Note
		var primaryTag string
		if err := rows.Scan(&n.ID, &n.OwnerID, &n.Content, &primaryTag,
			&n.Rect.X, &n.Rect.Y, &n.Rect.W, &n.Rect.H,
			&n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, classify(err, "list notes")
		}
		n.Tags = []string{primaryTag}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "list notes")
	}
	return notes, nil
}

func (s *PostgresStore) queryNotes(ctx context.Context, sql string, args ...any) ([]note.Note, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, classify(err, "list notes")
	}
	defer rows.Close()

	notes := []note.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, classify(err, "list notes")
		}
		notes = append(notes, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "list notes")
	}
	return notes, nil
}

// attachTags replaces each note's primary-tag-only slice with the full
// ordered tag list from the association table.
func (s *PostgresStore) attachTags(ctx context.Context, ownerID string, notes []note.Note) error {
	if len(notes) == 0 {
		return nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT note_id, tag FROM note_tags
		 WHERE note_id IN (SELECT id FROM notes WHERE owner_id = $1)
		 ORDER BY note_id, position`, ownerID)
	if err != nil {
		return classify(err, "list note tags")
	}
	defer rows.Close()

	byNote := make(map[string][]string, len(notes))
	for rows.Next() {
		var id, tag string
		if err := rows.Scan(&id, &tag); err != nil {
			return classify(err, "list note tags")
		}
		byNote[id] = append(byNote[id], tag)
	}
	if err := rows.Err(); err != nil {
		return classify(err, "list note tags")
	}

	for i := range notes {
		if tags, ok := byNote[notes[i].ID]; ok {
			notes[i].Tags = tags
		}
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, ownerID, noteID string) (*note.Note, error) {
	n, err := scanNote(s.pool.QueryRow(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = $1 AND owner_id = $2`,
		noteID, ownerID))
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.New(errors.CodeNotFound, "note %s not found", noteID)
		}
		return nil, classify(err, "get note")
	}

	tags, err := s.noteTags(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if len(tags) > 0 {
		n.Tags = tags
	}
	return n, nil
}

func (s *PostgresStore) noteTags(ctx context.Context, noteID string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT tag FROM note_tags WHERE note_id = $1 ORDER BY position`, noteID)
	if err != nil {
		return nil, classify(err, "get note tags")
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, classify(err, "get note tags")
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// withTx runs fn in a transaction with the lock timeout set. Any error
// rolls back; fn never sees a partially applied state.
func (s *PostgresStore) withTx(ctx context.Context, op string, fn func(tx pgx.Tx) error) error {
	start := time.Now()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return classify(err, op)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SET LOCAL lock_timeout = '`+lockTimeout+`'`); err != nil {
		return classify(err, op)
	}

	if err := fn(tx); err != nil {
		observability.Store().OnRollback(ctx, op, err)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		observability.Store().OnRollback(ctx, op, err)
		return classify(err, op)
	}
	observability.Store().OnCommit(ctx, op, time.Since(start))
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, ownerID string, in CreateInput) (*note.Note, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	id, err := note.NewID()
	if err != nil {
		return nil, err
	}

	size := grid.ClampSize(in.Size)
	var created note.Note

	err = s.withTx(ctx, "create", func(tx pgx.Tx) error {
		// Lock every existing row for this owner so a concurrent create
		// cannot read the same obstacle set and pick the same slot.
		rows, err := tx.Query(ctx,
			`SELECT x, y, w, h FROM notes WHERE owner_id = $1 FOR UPDATE`, ownerID)
		if err != nil {
			return classify(err, "lock owner notes")
		}
		var obstacles []grid.Rect
		for rows.Next() {
			var r grid.Rect
			if err := rows.Scan(&r.X, &r.Y, &r.W, &r.H); err != nil {
				rows.Close()
				return classify(err, "lock owner notes")
			}
			obstacles = append(obstacles, r)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return classify(err, "lock owner notes")
		}

		pos := layout.Place(ctx, obstacles, size)
		now := time.Now().UTC()
		created = note.Note{
			ID:        id,
			OwnerID:   ownerID,
			Tags:      append([]string(nil), in.Tags...),
			Content:   in.Content,
			Rect:      grid.Rect{X: pos.X, Y: pos.Y, W: size.W, H: size.H},
			CreatedAt: now,
			UpdatedAt: now,
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO notes (id, owner_id, content, tag, x, y, w, h, locked, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			created.ID, created.OwnerID, created.Content, created.PrimaryTag(),
			created.Rect.X, created.Rect.Y, created.Rect.W, created.Rect.H,
			created.Locked, created.CreatedAt, created.UpdatedAt); err != nil {
			return classify(err, "insert note")
		}
		return insertTags(ctx, tx, created.ID, created.Tags)
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func insertTags(ctx context.Context, tx pgx.Tx, noteID string, tags []string) error {
	for i, tag := range tags {
		if _, err := tx.Exec(ctx,
			`INSERT INTO note_tags (note_id, position, tag) VALUES ($1, $2, $3)`,
			noteID, i, tag); err != nil {
			return classify(err, "insert note tags")
		}
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, ownerID, noteID string, patch note.Patch) (*note.Note, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	var updated note.Note

	err := s.withTx(ctx, "update", func(tx pgx.Tx) error {
		n, err := scanNote(tx.QueryRow(ctx,
			`SELECT `+noteColumns+` FROM notes
			 WHERE id = $1 AND owner_id = $2 FOR UPDATE`, noteID, ownerID))
		if err != nil {
			if stderrors.Is(err, pgx.ErrNoRows) {
				return errors.New(errors.CodeNotFound, "note %s not found", noteID)
			}
			return classify(err, "lock note")
		}

		if patch.Tags == nil {
			tags, err := lockedNoteTags(ctx, tx, noteID)
			if err != nil {
				return err
			}
			if len(tags) > 0 {
				n.Tags = tags
			}
		}

		if patch.Content != nil {
			n.Content = *patch.Content
		}
		if patch.Tags != nil {
			n.Tags = append([]string(nil), patch.Tags...)
		}
		if patch.Locked != nil {
			n.Locked = *patch.Locked
		}
		if patch.Rect != nil {
			n.Rect = *patch.Rect
		}
		n.UpdatedAt = time.Now().UTC()

		if _, err := tx.Exec(ctx,
			`UPDATE notes SET content = $1, tag = $2, x = $3, y = $4, w = $5, h = $6,
			        locked = $7, updated_at = $8
			 WHERE id = $9 AND owner_id = $10`,
			n.Content, n.PrimaryTag(), n.Rect.X, n.Rect.Y, n.Rect.W, n.Rect.H,
			n.Locked, n.UpdatedAt, noteID, ownerID); err != nil {
			return classify(err, "update note")
		}

		if patch.Tags != nil {
			if _, err := tx.Exec(ctx,
				`DELETE FROM note_tags WHERE note_id = $1`, noteID); err != nil {
				return classify(err, "replace note tags")
			}
			if err := insertTags(ctx, tx, noteID, n.Tags); err != nil {
				return err
			}
		}

		updated = *n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// lockedNoteTags reads the tag list inside the row-lock transaction so the
// returned note reflects the exact committed state.
func lockedNoteTags(ctx context.Context, tx pgx.Tx, noteID string) ([]string, error) {
	rows, err := tx.Query(ctx,
		`SELECT tag FROM note_tags WHERE note_id = $1 ORDER BY position`, noteID)
	if err != nil {
		return nil, classify(err, "get note tags")
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, classify(err, "get note tags")
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func (s *PostgresStore) Delete(ctx context.Context, ownerID, noteID string) error {
	return s.withTx(ctx, "delete", func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`DELETE FROM notes WHERE id = $1 AND owner_id = $2`, noteID, ownerID)
		if err != nil {
			return classify(err, "delete note")
		}
		if tag.RowsAffected() == 0 {
			return errors.New(errors.CodeNotFound, "note %s not found", noteID)
		}
		return nil
	})
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

var _ Store = (*PostgresStore)(nil)
