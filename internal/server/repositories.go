package server

import (
	"time"

	"libraryapi/internal/author"
	"libraryapi/internal/book"
	"libraryapi/internal/config"
	"libraryapi/internal/platform/database"
)

// Repositories holds the catalog stores backed by one open database.
type Repositories struct {
	Books   book.Repository
	Authors author.Repository
}

// NewRepositories picks the store implementation matching db.Driver.
// timeout bounds each PostgreSQL query; SQLite ignores it.
func NewRepositories(db *database.DB, timeout time.Duration) Repositories {
	if db.Driver == config.DriverPostgres {
		return Repositories{
			Books:   book.NewPostgresRepo(db.Pool, timeout),
			Authors: author.NewPostgresRepo(db.Pool, timeout),
		}
	}
	return Repositories{
		Books:   book.NewSQLiteRepo(db.SQL),
		Authors: author.NewSQLiteRepo(db.SQL),
	}
}
