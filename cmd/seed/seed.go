package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/samber/lo"

	"libraryapi/internal/author"
	"libraryapi/internal/book"
)

type sampleBook struct {
	Author string
	Title  string
	Genre  string
	Year   int
}

var sampleCatalog = []sampleBook{
	{"Leo Tolstoy", "War and Peace", "Novel", 1869},
	{"Leo Tolstoy", "Anna Karenina", "Novel", 1878},
	{"Fyodor Dostoevsky", "Crime and Punishment", "Novel", 1866},
	{"Fyodor Dostoevsky", "The Brothers Karamazov", "Novel", 1880},
	{"Anton Chekhov", "The Cherry Orchard", "Drama", 1904},
	{"Mikhail Bulgakov", "The Master and Margarita", "Fantasy", 1967},
	{"Alexander Pushkin", "Eugene Onegin", "Poetry", 1833},
	{"Nikolai Gogol", "Dead Souls", "Satire", 1842},
}

var generatedGenres = []string{"Fiction", "Science Fiction", "History", "Science", "Mystery", "Biography", "Philosophy"}

var words = []string{
	"Adventure", "Mystery", "Journey", "Discovery", "Secrets", "Dreams", "Hope",
	"Light", "Darkness", "World", "Universe", "Time", "Space", "Mind", "Soul",
}

type summary struct {
	Authors int
	Books   int
}

type seeder struct {
	authors author.Repository
	books   book.Repository
	rng     *rand.Rand
	logger  *slog.Logger
}

// Seed inserts the sample catalog, then count generated books spread over
// the sample authors.
func (s *seeder) Seed(ctx context.Context, count int) (summary, error) {
	var out summary

	names := lo.Uniq(lo.Map(sampleCatalog, func(b sampleBook, _ int) string { return b.Author }))
	ids := make(map[string]int64, len(names))
	for _, name := range names {
		a, err := s.authors.Create(ctx, name)
		if err != nil {
			return out, fmt.Errorf("create author %q: %w", name, err)
		}
		ids[name] = a.ID
		out.Authors++
	}

	for _, sb := range sampleCatalog {
		_, err := s.books.Create(ctx, book.NewBook{
			Title:             sb.Title,
			Genre:             lo.ToPtr(sb.Genre),
			YearOfPublication: lo.ToPtr(sb.Year),
			AuthorID:          lo.ToPtr(ids[sb.Author]),
		})
		if err != nil {
			return out, fmt.Errorf("create book %q: %w", sb.Title, err)
		}
		out.Books++
	}

	authorIDs := lo.Values(ids)
	for i := 0; i < count; i++ {
		nb := book.NewBook{
			Title:             fmt.Sprintf("Book Title %d - %s", i+1, words[s.rng.Intn(len(words))]),
			Genre:             lo.ToPtr(generatedGenres[s.rng.Intn(len(generatedGenres))]),
			YearOfPublication: lo.ToPtr(1950 + s.rng.Intn(75)),
			AuthorID:          lo.ToPtr(authorIDs[s.rng.Intn(len(authorIDs))]),
		}
		if _, err := s.books.Create(ctx, nb); err != nil {
			return out, fmt.Errorf("create generated book %d: %w", i+1, err)
		}
		out.Books++

		if (i+1)%1000 == 0 {
			s.logger.Info("generated books", "done", i+1, "total", count)
		}
	}
	return out, nil
}
