package book

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgForeignKeyViolation = "23503"

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) List(ctx context.Context, q ListQuery) ([]ListItem, int, error) {
	q = q.window()

	where := ""
	args := []any{}
	if q.Genre != "" {
		where = "WHERE b.genre = $1"
		args = append(args, q.Genre)
	}

	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM books b JOIN authors a ON a.id = b.author_id %s", where)
	var total int
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := r.db.QueryRow(timeoutCtx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}
	if q.Offset >= total {
		return []ListItem{}, total, nil
	}

	argn := len(args) + 1
	dataSQL := fmt.Sprintf(`
		SELECT b.id, b.title, b.genre, b.year_of_publication, a.name
		FROM books b
		JOIN authors a ON a.id = b.author_id
		%s
		ORDER BY b.id ASC
		LIMIT $%d OFFSET $%d`,
		where, argn, argn+1)

	argsWithPage := append([]any{}, args...)
	argsWithPage = append(argsWithPage, q.Limit, q.Offset)
	timeoutCtx2, cancel2 := r.withTimeout(ctx)
	defer cancel2()
	rows, err := r.db.Query(timeoutCtx2, dataSQL, argsWithPage...)
	if err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	out := make([]ListItem, 0, q.Limit)
	for rows.Next() {
		item, err := scanListItem(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, item)
	}
	return out, total, rows.Err()
}

func (r *PostgresRepo) GetByID(ctx context.Context, id int64) (Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return pgGetBook(timeoutCtx, r.db, id, false)
}

func (r *PostgresRepo) Create(ctx context.Context, nb NewBook) (Book, error) {
	const query = `
		INSERT INTO books (title, genre, year_of_publication, author_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	created := Book{
		Title:             nb.Title,
		Genre:             nb.Genre,
		YearOfPublication: nb.YearOfPublication,
		AuthorID:          nb.AuthorID,
	}
	err := r.withTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := pgCheckAuthor(ctx, tx, nb.AuthorID); err != nil {
			return err
		}
		err := tx.QueryRow(ctx, query, nb.Title, nb.Genre, nb.YearOfPublication, nb.AuthorID).Scan(&created.ID)
		if err != nil {
			return fmt.Errorf("insert book: %w", mapPgError(err))
		}
		return nil
	})
	if err != nil {
		return Book{}, err
	}
	return created, nil
}

func (r *PostgresRepo) Update(ctx context.Context, id int64, p Patch) (Book, error) {
	var updated Book
	err := r.withTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		existing, err := pgGetBook(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if p.AuthorID.Set {
			if err := pgCheckAuthor(ctx, tx, p.AuthorID.Value); err != nil {
				return err
			}
		}

		if cols := p.Columns(); len(cols) > 0 {
			query, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
				Update("books").
				SetMap(cols).
				Where(sq.Eq{"id": id}).
				ToSql()
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, query, args...); err != nil {
				return fmt.Errorf("update book %d: %w", id, mapPgError(err))
			}
		}

		updated = p.Apply(existing)
		return nil
	})
	return updated, err
}

func (r *PostgresRepo) Delete(ctx context.Context, id int64) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// withTx runs fn in one transaction bounded by the repository timeout.
func (r *PostgresRepo) withTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(timeoutCtx)
	if err != nil {
		return err
	}
	defer tx.Rollback(timeoutCtx)

	if err := fn(timeoutCtx, tx); err != nil {
		return err
	}
	return tx.Commit(timeoutCtx)
}

type pgQueryer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func pgGetBook(ctx context.Context, db pgQueryer, id int64, forUpdate bool) (Book, error) {
	query := `SELECT id, title, genre, year_of_publication, author_id FROM books WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}
	b, err := scanBook(db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, fmt.Errorf("get book %d: %w", id, err)
	}
	return b, nil
}

func pgCheckAuthor(ctx context.Context, tx pgx.Tx, authorID *int64) error {
	if authorID == nil {
		return nil
	}
	var exists bool
	err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM authors WHERE id = $1)`, *authorID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check author %d: %w", *authorID, err)
	}
	if !exists {
		return ErrAuthorNotFound
	}
	return nil
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return ErrAuthorNotFound
	}
	return err
}
