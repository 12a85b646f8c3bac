package author

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

var sqliteSQL = sq.StatementBuilder.PlaceholderFormat(sq.Question)

type SQLiteRepo struct {
	db *sql.DB
}

func NewSQLiteRepo(db *sql.DB) *SQLiteRepo {
	return &SQLiteRepo{db: db}
}

func (r *SQLiteRepo) List(ctx context.Context, limit, offset int) ([]Author, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM authors`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count authors: %w", err)
	}
	if limit <= 0 || offset < 0 || offset >= total {
		return []Author{}, total, nil
	}

	query, args, err := sqliteSQL.Select("id", "name").
		From("authors").
		OrderBy("id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list authors: %w", err)
	}
	defer rows.Close()

	out := make([]Author, 0, limit)
	for rows.Next() {
		var a Author
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

func (r *SQLiteRepo) GetByID(ctx context.Context, id int64) (Author, error) {
	query, args, err := sqliteSQL.Select("id", "name").From("authors").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return Author{}, err
	}
	var a Author
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&a.ID, &a.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Author{}, ErrNotFound
		}
		return Author{}, fmt.Errorf("get author %d: %w", id, err)
	}
	return a, nil
}

func (r *SQLiteRepo) Create(ctx context.Context, name string) (Author, error) {
	query, args, err := sqliteSQL.Insert("authors").Columns("name").Values(name).ToSql()
	if err != nil {
		return Author{}, err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return Author{}, fmt.Errorf("insert author: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Author{}, err
	}
	return Author{ID: id, Name: name}, nil
}
