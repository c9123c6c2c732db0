package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bookcatalog/pkg/models"
)

func createBook(t *testing.T, db *gorm.DB, title string, authorID uint) *models.Book {
	t.Helper()
	book := models.Book{Title: title, AuthorID: authorID}
	require.NoError(t, NewBookRepo().Create(db, &book))
	return &book
}

func TestSearchByNameCaseInsensitive(t *testing.T) {
	db := setupTestDB(t)
	authors := NewAuthorRepo()
	createAuthor(t, db, "Fyodor Dostoevsky")
	createAuthor(t, db, "Leo Tolstoy")

	found, err := authors.SearchByName(db, "dosto")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Fyodor Dostoevsky", found[0].Name)
}

func TestGetByCountry(t *testing.T) {
	db := setupTestDB(t)
	authors := NewAuthorRepo()
	a := models.Author{Name: "Mark Twain", Country: "USA"}
	require.NoError(t, authors.Create(db, &a))
	createAuthor(t, db, "No Country")

	found, err := authors.GetByCountry(db, "USA")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Mark Twain", found[0].Name)
}

func TestGetWithBooks(t *testing.T) {
	db := setupTestDB(t)
	authors := NewAuthorRepo()
	author := createAuthor(t, db, "Leo Tolstoy")
	createBook(t, db, "War and Peace", author.ID)
	createBook(t, db, "Anna Karenina", author.ID)

	got, err := authors.GetWithBooks(db, author.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.BooksCount())

	got, err = authors.GetWithBooks(db, author.ID+100)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAuthorsWithBookCount(t *testing.T) {
	db := setupTestDB(t)
	authors := NewAuthorRepo()
	busy := createAuthor(t, db, "Busy")
	createBook(t, db, "One", busy.ID)
	createBook(t, db, "Two", busy.ID)
	createAuthor(t, db, "Idle")

	rows, err := authors.AuthorsWithBookCount(db, 0)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = authors.AuthorsWithBookCount(db, 2)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Busy", rows[0].Name)
	assert.EqualValues(t, 2, rows[0].BookCount)
}

func TestAuthorDeleteCascadesToBooks(t *testing.T) {
	db := setupTestDB(t)
	authors := NewAuthorRepo()
	books := NewBookRepo()
	genres := NewGenreRepo()

	author := createAuthor(t, db, "Doomed")
	book := createBook(t, db, "Orphan Candidate", author.ID)
	genre, err := genres.GetOrCreate(db, "Drama", "")
	require.NoError(t, err)
	_, err = books.AddGenre(db, book.ID, genre.ID)
	require.NoError(t, err)

	deleted, err := authors.Delete(db, author.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	gone, err := books.Get(db, book.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	var links int64
	require.NoError(t, db.Model(&models.BookGenre{}).Where("book_id = ?", book.ID).Count(&links).Error)
	assert.Zero(t, links)

	// The genre itself survives.
	stillThere, err := genres.Get(db, genre.ID)
	require.NoError(t, err)
	assert.NotNil(t, stillThere)
}
