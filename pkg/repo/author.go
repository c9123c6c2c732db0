package repo

import (
	"errors"

	"gorm.io/gorm"

	"bookcatalog/pkg/models"
)

// AuthorRepo extends the generic repository with author lookups.
type AuthorRepo struct {
	*Repository[models.Author]
}

func NewAuthorRepo() *AuthorRepo {
	return &AuthorRepo{
		Repository: New[models.Author]("name", "bio", "birth_date", "country"),
	}
}

// GetByName finds an author by exact name.
func (r *AuthorRepo) GetByName(db *gorm.DB, name string) (*models.Author, error) {
	return r.GetByField(db, "name", name)
}

// SearchByName finds authors whose name contains the given fragment,
// case-insensitively.
func (r *AuthorRepo) SearchByName(db *gorm.DB, name string) ([]models.Author, error) {
	var authors []models.Author
	err := db.Where("LOWER(name) LIKE LOWER(?)", "%"+name+"%").Find(&authors).Error
	return authors, err
}

// GetByCountry returns all authors from the given country.
func (r *AuthorRepo) GetByCountry(db *gorm.DB, country string) ([]models.Author, error) {
	var authors []models.Author
	err := db.Where("country = ?", country).Find(&authors).Error
	return authors, err
}

// GetWithBooks fetches an author with the books collection preloaded.
func (r *AuthorRepo) GetWithBooks(db *gorm.DB, id uint) (*models.Author, error) {
	var author models.Author
	err := db.Preload("Books").First(&author, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &author, nil
}

// AuthorBookCount pairs an author name with the number of books counted
// for it.
type AuthorBookCount struct {
	Name      string
	BookCount int64
}

// AuthorsWithBookCount returns authors and their book counts (authors
// without books count as zero). With minBooks > 0 only authors with at
// least that many books are returned.
func (r *AuthorRepo) AuthorsWithBookCount(db *gorm.DB, minBooks int) ([]AuthorBookCount, error) {
	q := db.Model(&models.Author{}).
		Select("authors.name AS name, COUNT(books.id) AS book_count").
		Joins("LEFT JOIN books ON books.author_id = authors.id").
		Group("authors.id, authors.name")
	if minBooks > 0 {
		q = q.Having("COUNT(books.id) >= ?", minBooks)
	}

	var rows []AuthorBookCount
	err := q.Scan(&rows).Error
	return rows, err
}

// Delete removes the author together with the owned books and their
// genre links, all in one transaction.
func (r *AuthorRepo) Delete(db *gorm.DB, id uint) (bool, error) {
	existing, err := r.Exists(db, id)
	if err != nil || !existing {
		return false, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		bookIDs := tx.Model(&models.Book{}).Select("id").Where("author_id = ?", id)
		if err := tx.Where("book_id IN (?)", bookIDs).Delete(&models.BookGenre{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", id).Delete(&models.Book{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Author{}, id).Error
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
