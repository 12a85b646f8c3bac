package book

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/mattn/go-sqlite3"
)

var sqliteSQL = sq.StatementBuilder.PlaceholderFormat(sq.Question)

var bookColumns = []string{"id", "title", "genre", "year_of_publication", "author_id"}

// SQLiteRepo stores books in a local SQLite file.
type SQLiteRepo struct {
	db *sql.DB
}

func NewSQLiteRepo(db *sql.DB) *SQLiteRepo {
	return &SQLiteRepo{db: db}
}

type sqlQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *SQLiteRepo) List(ctx context.Context, q ListQuery) ([]ListItem, int, error) {
	q = q.window()

	base := sqliteSQL.Select().
		From("books b").
		Join("authors a ON a.id = b.author_id")
	if q.Genre != "" {
		base = base.Where(sq.Eq{"b.genre": q.Genre})
	}

	countSQL, args, err := base.Columns("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}
	if q.Offset >= total {
		return []ListItem{}, total, nil
	}

	dataSQL, args, err := base.
		Columns("b.id", "b.title", "b.genre", "b.year_of_publication", "a.name").
		OrderBy("b.id ASC").
		Limit(uint64(q.Limit)).
		Offset(uint64(q.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx, dataSQL, args...)
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

func (r *SQLiteRepo) GetByID(ctx context.Context, id int64) (Book, error) {
	return r.get(ctx, r.db, id)
}

func (r *SQLiteRepo) get(ctx context.Context, db sqlQueryer, id int64) (Book, error) {
	query, args, err := sqliteSQL.Select(bookColumns...).From("books").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return Book{}, err
	}
	b, err := scanBook(db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, fmt.Errorf("get book %d: %w", id, err)
	}
	return b, nil
}

func (r *SQLiteRepo) Create(ctx context.Context, nb NewBook) (Book, error) {
	var created Book
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if err := sqliteCheckAuthor(ctx, tx, nb.AuthorID); err != nil {
			return err
		}

		query, args, err := sqliteSQL.Insert("books").
			Columns("title", "genre", "year_of_publication", "author_id").
			Values(nb.Title, nb.Genre, nb.YearOfPublication, nb.AuthorID).
			ToSql()
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("insert book: %w", mapSQLiteError(err))
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}

		created = Book{
			ID:                id,
			Title:             nb.Title,
			Genre:             nb.Genre,
			YearOfPublication: nb.YearOfPublication,
			AuthorID:          nb.AuthorID,
		}
		return nil
	})
	return created, err
}

func (r *SQLiteRepo) Update(ctx context.Context, id int64, p Patch) (Book, error) {
	var updated Book
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		existing, err := r.get(ctx, tx, id)
		if err != nil {
			return err
		}
		if p.AuthorID.Set {
			if err := sqliteCheckAuthor(ctx, tx, p.AuthorID.Value); err != nil {
				return err
			}
		}

		if cols := p.Columns(); len(cols) > 0 {
			query, args, err := sqliteSQL.Update("books").SetMap(cols).Where(sq.Eq{"id": id}).ToSql()
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("update book %d: %w", id, mapSQLiteError(err))
			}
		}

		updated = p.Apply(existing)
		return nil
	})
	return updated, err
}

func (r *SQLiteRepo) Delete(ctx context.Context, id int64) error {
	query, args, err := sqliteSQL.Delete("books").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete book %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepo) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func sqliteCheckAuthor(ctx context.Context, tx *sql.Tx, authorID *int64) error {
	if authorID == nil {
		return nil
	}
	var exists bool
	err := tx.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM authors WHERE id = ?)", *authorID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check author %d: %w", *authorID, err)
	}
	if !exists {
		return ErrAuthorNotFound
	}
	return nil
}

// mapSQLiteError reports a foreign key violation as ErrAuthorNotFound; the
// books table has no other foreign key.
func mapSQLiteError(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
		return ErrAuthorNotFound
	}
	return err
}
