package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookcatalog/pkg/models"
)

func TestPublisherGetOrCreate(t *testing.T) {
	db := setupTestDB(t)
	publishers := NewPublisherRepo()

	first, err := publishers.GetOrCreate(db, "AST", "Moscow publisher")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.NotZero(t, first.ID)

	second, err := publishers.GetOrCreate(db, "AST", "different description")
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Moscow publisher", second.Description)

	n, err := publishers.Count(db)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestPublisherDeleteClearsBookReference(t *testing.T) {
	db := setupTestDB(t)
	publishers := NewPublisherRepo()
	books := NewBookRepo()

	author := createAuthor(t, db, "Some Author")
	publisher, err := publishers.GetOrCreate(db, "Eksmo", "")
	require.NoError(t, err)

	book := models.Book{Title: "Published Once", AuthorID: author.ID, PublisherID: &publisher.ID}
	require.NoError(t, books.Create(db, &book))

	deleted, err := publishers.Delete(db, publisher.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	got, err := books.Get(db, book.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.PublisherID)
}

func TestPublisherSearchByName(t *testing.T) {
	db := setupTestDB(t)
	publishers := NewPublisherRepo()
	_, err := publishers.GetOrCreate(db, "Penguin Books", "")
	require.NoError(t, err)
	_, err = publishers.GetOrCreate(db, "Azbuka", "")
	require.NoError(t, err)

	found, err := publishers.SearchByName(db, "penguin")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Penguin Books", found[0].Name)
}

func TestPublisherStats(t *testing.T) {
	db := setupTestDB(t)
	publishers := NewPublisherRepo()
	books := NewBookRepo()

	author := createAuthor(t, db, "Stats Author")
	active, err := publishers.GetOrCreate(db, "Active House", "")
	require.NoError(t, err)
	_, err = publishers.GetOrCreate(db, "Sleepy House", "")
	require.NoError(t, err)

	for _, price := range []float64{100, 300} {
		price := price
		book := models.Book{Title: "Priced", AuthorID: author.ID, PublisherID: &active.ID, Price: &price}
		require.NoError(t, books.Create(db, &book))
	}

	rows, err := publishers.Stats(db)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Active House", rows[0].Name)
	assert.EqualValues(t, 2, rows[0].BookCount)
	assert.InDelta(t, 200, rows[0].AvgPrice, 0.001)
	assert.EqualValues(t, 0, rows[1].BookCount)
}
