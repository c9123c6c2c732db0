// Package repo implements the catalog repositories. Every operation takes
// the session as an explicit argument; lookups that find nothing return a
// nil entity and a nil error.
package repo

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrInvalidField is returned when a dynamic lookup or update names a
// column the entity does not expose.
var ErrInvalidField = errors.New("invalid field")

// Repository provides CRUD operations shared by all entity repositories.
// T is the model struct; fields is the allow-list of column names usable
// in GetByField and Update.
type Repository[T any] struct {
	fields map[string]bool
}

// New builds a repository over T exposing the given columns for dynamic
// field access.
func New[T any](fields ...string) *Repository[T] {
	m := make(map[string]bool, len(fields))
	for _, f := range fields {
		m[f] = true
	}
	return &Repository[T]{fields: m}
}

// Create inserts obj and reloads it so database-populated values (id,
// timestamps, column defaults) are visible to the caller.
func (r *Repository[T]) Create(db *gorm.DB, obj *T) error {
	if err := db.Create(obj).Error; err != nil {
		return err
	}
	return db.First(obj).Error
}

// Get fetches by primary key. A missing row yields (nil, nil).
func (r *Repository[T]) Get(db *gorm.DB, id uint) (*T, error) {
	var obj T
	err := db.First(&obj, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &obj, nil
}

// GetByField fetches the first row where column equals value. The column
// must be on the repository's allow-list.
func (r *Repository[T]) GetByField(db *gorm.DB, column string, value interface{}) (*T, error) {
	if !r.fields[column] {
		return nil, fmt.Errorf("%w: %q", ErrInvalidField, column)
	}
	var obj T
	err := db.Where(column+" = ?", value).First(&obj).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &obj, nil
}

// GetMulti returns up to limit rows after skipping skip of them.
func (r *Repository[T]) GetMulti(db *gorm.DB, skip, limit int) ([]T, error) {
	var objs []T
	err := db.Offset(skip).Limit(limit).Find(&objs).Error
	return objs, err
}

// GetAll returns every row. Unbounded; prefer GetMulti on large tables.
func (r *Repository[T]) GetAll(db *gorm.DB) ([]T, error) {
	var objs []T
	err := db.Find(&objs).Error
	return objs, err
}

// Update applies the given column/value pairs to the row with the given
// id and returns the reloaded entity, or (nil, nil) if the id does not
// exist. Every key must be on the allow-list.
func (r *Repository[T]) Update(db *gorm.DB, id uint, fields map[string]interface{}) (*T, error) {
	for column := range fields {
		if !r.fields[column] {
			return nil, fmt.Errorf("%w: %q", ErrInvalidField, column)
		}
	}

	obj, err := r.Get(db, id)
	if err != nil || obj == nil {
		return obj, err
	}
	if len(fields) > 0 {
		if err := db.Model(obj).Updates(fields).Error; err != nil {
			return nil, err
		}
	}
	return r.Get(db, id)
}

// Delete removes the row with the given id. Returns false when nothing
// was deleted, so a second call on the same id reports false.
func (r *Repository[T]) Delete(db *gorm.DB, id uint) (bool, error) {
	res := db.Delete(new(T), id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Count returns the number of rows in the entity's table.
func (r *Repository[T]) Count(db *gorm.DB) (int64, error) {
	var n int64
	err := db.Model(new(T)).Count(&n).Error
	return n, err
}

// Exists reports whether a row with the given id is present.
func (r *Repository[T]) Exists(db *gorm.DB, id uint) (bool, error) {
	var n int64
	err := db.Model(new(T)).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}
