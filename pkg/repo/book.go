package repo

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"bookcatalog/pkg/models"
)

// BookRepo extends the generic repository with book queries and the
// genre membership operations.
type BookRepo struct {
	*Repository[models.Book]
}

func NewBookRepo() *BookRepo {
	return &BookRepo{
		Repository: New[models.Book](
			"title", "isbn", "description", "pages", "price",
			"publication_date", "language", "author_id", "publisher_id",
		),
	}
}

// GetByISBN finds a book by its ISBN.
func (r *BookRepo) GetByISBN(db *gorm.DB, isbn string) (*models.Book, error) {
	return r.GetByField(db, "isbn", isbn)
}

// SearchByTitle finds books whose title contains the given fragment,
// case-insensitively.
func (r *BookRepo) SearchByTitle(db *gorm.DB, title string) ([]models.Book, error) {
	var books []models.Book
	err := db.Where("LOWER(title) LIKE LOWER(?)", "%"+title+"%").Find(&books).Error
	return books, err
}

// GetByAuthor returns the author's books with offset/limit pagination.
func (r *BookRepo) GetByAuthor(db *gorm.DB, authorID uint, skip, limit int) ([]models.Book, error) {
	var books []models.Book
	err := db.Where("author_id = ?", authorID).Offset(skip).Limit(limit).Find(&books).Error
	return books, err
}

// GetByGenre returns all books linked to the given genre.
func (r *BookRepo) GetByGenre(db *gorm.DB, genreID uint) ([]models.Book, error) {
	var books []models.Book
	err := db.
		Joins("JOIN book_genres ON book_genres.book_id = books.id").
		Where("book_genres.genre_id = ?", genreID).
		Find(&books).Error
	return books, err
}

// GetByPriceRange returns books priced within [min, max].
func (r *BookRepo) GetByPriceRange(db *gorm.DB, min, max float64) ([]models.Book, error) {
	var books []models.Book
	err := db.Where("price >= ? AND price <= ?", min, max).Find(&books).Error
	return books, err
}

// GetPublishedBetween returns books published within [start, end].
func (r *BookRepo) GetPublishedBetween(db *gorm.DB, start, end time.Time) ([]models.Book, error) {
	var books []models.Book
	err := db.Where("publication_date >= ? AND publication_date <= ?", start, end).
		Find(&books).Error
	return books, err
}

// GetWithRelations fetches a book with author, publisher and genres
// preloaded.
func (r *BookRepo) GetWithRelations(db *gorm.DB, id uint) (*models.Book, error) {
	var book models.Book
	err := db.Preload("Author").Preload("Publisher").Preload("Genres").
		First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// AddGenre links the genre to the book. Linking an already-linked genre
// is a no-op. Returns (nil, nil) if either side does not exist.
func (r *BookRepo) AddGenre(db *gorm.DB, bookID, genreID uint) (*models.Book, error) {
	book, err := r.GetWithRelations(db, bookID)
	if err != nil || book == nil {
		return nil, err
	}

	var genre models.Genre
	err = db.First(&genre, genreID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	for _, g := range book.Genres {
		if g.ID == genre.ID {
			return book, nil
		}
	}

	if err := db.Model(book).Association("Genres").Append(&genre); err != nil {
		return nil, err
	}
	return r.GetWithRelations(db, bookID)
}

// RemoveGenre unlinks the genre from the book. Removing an absent link
// is a no-op. Returns (nil, nil) if the book does not exist.
func (r *BookRepo) RemoveGenre(db *gorm.DB, bookID, genreID uint) (*models.Book, error) {
	book, err := r.GetWithRelations(db, bookID)
	if err != nil || book == nil {
		return nil, err
	}

	for _, g := range book.Genres {
		if g.ID == genreID {
			err := db.Where("book_id = ? AND genre_id = ?", bookID, genreID).
				Delete(&models.BookGenre{}).Error
			if err != nil {
				return nil, err
			}
			return r.GetWithRelations(db, bookID)
		}
	}
	return book, nil
}

// SearchFilter holds the optional criteria of AdvancedSearch. Nil fields
// are skipped; set fields all have to match.
type SearchFilter struct {
	Title      *string
	AuthorName *string
	GenreName  *string
	Language   *string
	MinPrice   *float64
	MaxPrice   *float64
}

// AdvancedSearch combines the filter's criteria conjunctively.
func (r *BookRepo) AdvancedSearch(db *gorm.DB, filter SearchFilter) ([]models.Book, error) {
	q := db.Model(&models.Book{})

	if filter.Title != nil {
		q = q.Where("LOWER(books.title) LIKE LOWER(?)", "%"+*filter.Title+"%")
	}
	if filter.AuthorName != nil {
		q = q.Joins("JOIN authors ON authors.id = books.author_id").
			Where("LOWER(authors.name) LIKE LOWER(?)", "%"+*filter.AuthorName+"%")
	}
	if filter.GenreName != nil {
		q = q.Joins("JOIN book_genres ON book_genres.book_id = books.id").
			Joins("JOIN genres ON genres.id = book_genres.genre_id").
			Where("LOWER(genres.name) LIKE LOWER(?)", "%"+*filter.GenreName+"%")
	}
	if filter.Language != nil {
		q = q.Where("books.language = ?", *filter.Language)
	}
	if filter.MinPrice != nil {
		q = q.Where("books.price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("books.price <= ?", *filter.MaxPrice)
	}

	var books []models.Book
	err := q.Find(&books).Error
	return books, err
}

// Delete removes the book together with its genre links.
func (r *BookRepo) Delete(db *gorm.DB, id uint) (bool, error) {
	existing, err := r.Exists(db, id)
	if err != nil || !existing {
		return false, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", id).Delete(&models.BookGenre{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Book{}, id).Error
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
