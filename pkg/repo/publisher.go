package repo

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bookcatalog/pkg/models"
)

// PublisherRepo extends the generic repository with publisher lookups.
type PublisherRepo struct {
	*Repository[models.Publisher]
}

func NewPublisherRepo() *PublisherRepo {
	return &PublisherRepo{
		Repository: New[models.Publisher]("name", "address", "website", "description"),
	}
}

// GetByName finds a publisher by exact name.
func (r *PublisherRepo) GetByName(db *gorm.DB, name string) (*models.Publisher, error) {
	return r.GetByField(db, "name", name)
}

// SearchByName finds publishers whose name contains the given fragment,
// case-insensitively.
func (r *PublisherRepo) SearchByName(db *gorm.DB, name string) ([]models.Publisher, error) {
	var publishers []models.Publisher
	err := db.Where("LOWER(name) LIKE LOWER(?)", "%"+name+"%").Find(&publishers).Error
	return publishers, err
}

// GetWithBooks fetches a publisher with its books preloaded.
func (r *PublisherRepo) GetWithBooks(db *gorm.DB, id uint) (*models.Publisher, error) {
	var publisher models.Publisher
	err := db.Preload("Books").First(&publisher, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &publisher, nil
}

// GetOrCreate looks a publisher up by name, inserting it when absent.
// The insert is conflict-tolerant, so a concurrent creator wins cleanly.
func (r *PublisherRepo) GetOrCreate(db *gorm.DB, name, description string) (*models.Publisher, error) {
	publisher, err := r.GetByName(db, name)
	if err != nil || publisher != nil {
		return publisher, err
	}

	fresh := models.Publisher{Name: name, Description: description}
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

// PublisherStat summarizes a publisher's catalog.
type PublisherStat struct {
	Name      string
	BookCount int64
	AvgPrice  float64
}

// Stats returns per-publisher book counts and average prices, most
// published first.
func (r *PublisherRepo) Stats(db *gorm.DB) ([]PublisherStat, error) {
	var rows []PublisherStat
	err := db.Model(&models.Publisher{}).
		Select("publishers.name AS name, COUNT(books.id) AS book_count, COALESCE(AVG(books.price), 0) AS avg_price").
		Joins("LEFT JOIN books ON books.publisher_id = publishers.id").
		Group("publishers.id, publishers.name").
		Order("book_count DESC").
		Scan(&rows).Error
	return rows, err
}

// Delete removes the publisher and clears the reference on its books
// instead of deleting them.
func (r *PublisherRepo) Delete(db *gorm.DB, id uint) (bool, error) {
	existing, err := r.Exists(db, id)
	if err != nil || !existing {
		return false, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Book{}).
			Where("publisher_id = ?", id).
			Update("publisher_id", nil).Error
		if err != nil {
			return err
		}
		return tx.Delete(&models.Publisher{}, id).Error
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
