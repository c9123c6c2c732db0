// Command catalog seeds a sample book catalog and walks through the
// repository and reporting layers.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"bookcatalog/pkg/config"
	"bookcatalog/pkg/database"
	"bookcatalog/pkg/models"
	"bookcatalog/pkg/queries"
	"bookcatalog/pkg/repo"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	db, err := database.Open(cfg.Database, cfg.Log, log)
	if err != nil {
		log.Fatal().Err(err).Msg("database")
	}

	if err := seed(db, log); err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}

	if err := report(db, log); err != nil {
		log.Fatal().Err(err).Msg("reporting failed")
	}

	if err := concurrentIngest(context.Background(), db, log); err != nil {
		log.Fatal().Err(err).Msg("concurrent ingest failed")
	}

	log.Info().Msg("done")
}

func seed(db *gorm.DB, log zerolog.Logger) error {
	authors := repo.NewAuthorRepo()
	publishers := repo.NewPublisherRepo()
	genres := repo.NewGenreRepo()
	books := repo.NewBookRepo()

	return database.Scope(db, func(tx *gorm.DB) error {
		tolstoy, err := authors.GetByName(tx, "Leo Tolstoy")
		if err != nil {
			return err
		}
		if tolstoy == nil {
			tolstoy = &models.Author{
				Name:    "Leo Tolstoy",
				Bio:     "Russian novelist.",
				Country: "Russia",
			}
			if err := authors.Create(tx, tolstoy); err != nil {
				return err
			}
			log.Info().Str("author", tolstoy.Name).Msg("created author")
		}

		azbuka, err := publishers.GetOrCreate(tx, "Azbuka", "Saint Petersburg publishing house")
		if err != nil {
			return err
		}

		novel, err := genres.GetOrCreate(tx, "Novel", "Long-form fiction")
		if err != nil {
			return err
		}
		classics, err := genres.GetOrCreate(tx, "Classics", "")
		if err != nil {
			return err
		}

		existing, err := books.SearchByTitle(tx, "War and Peace")
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return nil
		}

		isbn := uuid.NewString()[:13]
		price := 1250.0
		pages := 1225
		published := time.Date(1869, 1, 1, 0, 0, 0, 0, time.UTC)
		book := models.Book{
			Title:           "War and Peace",
			ISBN:            &isbn,
			Pages:           &pages,
			Price:           &price,
			PublicationDate: &published,
			AuthorID:        tolstoy.ID,
			PublisherID:     &azbuka.ID,
		}
		if err := books.Create(tx, &book); err != nil {
			return err
		}
		if _, err := books.AddGenre(tx, book.ID, novel.ID); err != nil {
			return err
		}
		if _, err := books.AddGenre(tx, book.ID, classics.ID); err != nil {
			return err
		}
		log.Info().Str("title", book.Title).Str("isbn", isbn).Msg("created book")
		return nil
	})
}

func report(db *gorm.DB, log zerolog.Logger) error {
	stats, err := queries.LibraryStatistics(db)
	if err != nil {
		return err
	}
	log.Info().
		Int64("books", stats.TotalBooks).
		Int64("authors", stats.TotalAuthors).
		Float64("avg_price", stats.AvgPrice).
		Msg("library statistics")

	tiers, err := queries.BooksWithPriceCategory(db)
	if err != nil {
		return err
	}
	for _, t := range tiers {
		log.Info().Str("title", t.Title).Str("tier", t.Category).Msg("price tier")
	}

	ratings, err := queries.AuthorRatings(db)
	if err != nil {
		return err
	}
	for _, r := range ratings {
		log.Info().Str("author", r.Author).Str("rating", r.Rating).
			Int64("books", r.BookCount).Msg("author rating")
	}

	dash, err := queries.GetDashboard(db, 5)
	if err != nil {
		return err
	}
	log.Info().
		Int("top_authors", len(dash.TopAuthors)).
		Int("top_genres", len(dash.TopGenres)).
		Int("recent_books", len(dash.RecentBooks)).
		Msg("dashboard")
	return nil
}

// concurrentIngest creates a batch of drafts in parallel. Each task runs
// on its own session; sharing one session across goroutines is not safe.
func concurrentIngest(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	authors := repo.NewAuthorRepo()
	books := repo.NewBookRepo()

	author, err := authors.GetByName(db, "Leo Tolstoy")
	if err != nil {
		return err
	}
	if author == nil {
		return fmt.Errorf("seed author missing")
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < 4; i++ {
		i := i
		g.Go(func() error {
			sess := db.Session(&gorm.Session{NewDB: true}).WithContext(ctx)
			isbn := uuid.NewString()[:13]
			book := models.Book{
				Title:    fmt.Sprintf("Collected Works, Vol. %d", i+1),
				ISBN:     &isbn,
				AuthorID: author.ID,
			}
			return books.Create(sess, &book)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("concurrent ingest finished")
	return nil
}
