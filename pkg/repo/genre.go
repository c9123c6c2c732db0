package repo

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bookcatalog/pkg/models"
)

// GenreRepo extends the generic repository with genre lookups.
type GenreRepo struct {
	*Repository[models.Genre]
}

func NewGenreRepo() *GenreRepo {
	return &GenreRepo{
		Repository: New[models.Genre]("name", "description"),
	}
}

// GetByName finds a genre by exact name.
func (r *GenreRepo) GetByName(db *gorm.DB, name string) (*models.Genre, error) {
	return r.GetByField(db, "name", name)
}

// GetOrCreate looks a genre up by name, inserting it when absent. The
// insert is conflict-tolerant, so a concurrent creator wins cleanly.
func (r *GenreRepo) GetOrCreate(db *gorm.DB, name, description string) (*models.Genre, error) {
	genre, err := r.GetByName(db, name)
	if err != nil || genre != nil {
		return genre, err
	}

	fresh := models.Genre{Name: name, Description: description}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&fresh).Error
	if err != nil {
		return nil, err
	}
	if fresh.ID == 0 {
		// Lost the race; take the winning row.
		return r.GetByName(db, name)
	}
	return &fresh, nil
}

// GenreBookCount pairs a genre name with the number of books linked to it.
type GenreBookCount struct {
	Name      string
	BookCount int64
}

// PopularGenres returns up to limit genres ordered by how many books
// carry them. Genres with no books are included with a zero count.
func (r *GenreRepo) PopularGenres(db *gorm.DB, limit int) ([]GenreBookCount, error) {
	var rows []GenreBookCount
	err := db.Model(&models.Genre{}).
		Select("genres.name AS name, COUNT(book_genres.book_id) AS book_count").
		Joins("LEFT JOIN book_genres ON book_genres.genre_id = genres.id").
		Group("genres.id, genres.name").
		Order("book_count DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// Delete removes the genre and its links to books; the books stay.
func (r *GenreRepo) Delete(db *gorm.DB, id uint) (bool, error) {
	existing, err := r.Exists(db, id)
	if err != nil || !existing {
		return false, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("genre_id = ?", id).Delete(&models.BookGenre{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Genre{}, id).Error
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
