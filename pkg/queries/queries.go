// Package queries holds the read-only reporting queries over the
// catalog: aggregates, grouped counts, join projections, subqueries,
// CASE labeling, sorting and the dashboard bundle.
package queries

import (
	"math"
	"time"

	"gorm.io/gorm"

	"bookcatalog/pkg/models"
)

// Statistics is the catalog-wide aggregate block. Empty tables report
// zeroes.
type Statistics struct {
	TotalBooks   int64   `json:"total_books"`
	TotalAuthors int64   `json:"total_authors"`
	AvgPrice     float64 `json:"avg_price"`
	MaxPrice     float64 `json:"max_price"`
	MinPrice     float64 `json:"min_price"`
	TotalPages   int64   `json:"total_pages"`
}

// LibraryStatistics computes the global aggregates in a single query.
// TotalAuthors counts only authors that have at least one book. The
// average price is rounded to two decimals.
func LibraryStatistics(db *gorm.DB) (Statistics, error) {
	var stats Statistics
	err := db.Model(&models.Book{}).
		Select(`COUNT(books.id) AS total_books,
			COUNT(DISTINCT books.author_id) AS total_authors,
			COALESCE(AVG(books.price), 0) AS avg_price,
			COALESCE(MAX(books.price), 0) AS max_price,
			COALESCE(MIN(books.price), 0) AS min_price,
			COALESCE(SUM(books.pages), 0) AS total_pages`).
		Scan(&stats).Error
	if err != nil {
		return Statistics{}, err
	}
	stats.AvgPrice = round2(stats.AvgPrice)
	return stats, nil
}

// LanguageCount is the number of books in one language.
type LanguageCount struct {
	Language string `json:"language"`
	Count    int64  `json:"count"`
}

// BooksCountByLanguage groups books per language, most common first.
func BooksCountByLanguage(db *gorm.DB) ([]LanguageCount, error) {
	var rows []LanguageCount
	err := db.Model(&models.Book{}).
		Select("language, COUNT(id) AS count").
		Group("language").
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}

// ProlificAuthor is an author with an at-or-above-threshold book count.
type ProlificAuthor struct {
	Name      string `json:"name"`
	BookCount int64  `json:"book_count"`
}

// ProlificAuthors returns authors having at least minBooks books,
// ordered by book count descending.
func ProlificAuthors(db *gorm.DB, minBooks int) ([]ProlificAuthor, error) {
	var rows []ProlificAuthor
	err := db.Model(&models.Author{}).
		Select("authors.name AS name, COUNT(books.id) AS book_count").
		Joins("JOIN books ON books.author_id = authors.id").
		Group("authors.id, authors.name").
		Having("COUNT(books.id) >= ?", minBooks).
		Order("book_count DESC").
		Scan(&rows).Error
	return rows, err
}

// GenreStat aggregates the books of one genre.
type GenreStat struct {
	Genre      string  `json:"genre"`
	BookCount  int64   `json:"book_count"`
	AvgPrice   float64 `json:"avg_price"`
	TotalPages int64   `json:"total_pages"`
}

// GenreStatistics joins genres through the association table to their
// books and aggregates count, average price and total pages per genre.
func GenreStatistics(db *gorm.DB) ([]GenreStat, error) {
	var rows []GenreStat
	err := db.Model(&models.Genre{}).
		Select(`genres.name AS genre,
			COUNT(books.id) AS book_count,
			COALESCE(AVG(books.price), 0) AS avg_price,
			COALESCE(SUM(books.pages), 0) AS total_pages`).
		Joins("JOIN book_genres ON book_genres.genre_id = genres.id").
		Joins("JOIN books ON books.id = book_genres.book_id").
		Group("genres.id, genres.name").
		Order("book_count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].AvgPrice = round2(rows[i].AvgPrice)
	}
	return rows, nil
}

// BookSummary is a book row enriched with author and publisher names.
type BookSummary struct {
	Title     string   `json:"title"`
	Price     *float64 `json:"price"`
	Author    string   `json:"author"`
	Publisher string   `json:"publisher"`
}

// UnknownPublisher is rendered for books without a publisher.
const UnknownPublisher = "Unknown"

// BooksWithAuthorAndPublisher joins books to their author (inner, the
// author is mandatory) and publisher (left, the publisher is optional).
func BooksWithAuthorAndPublisher(db *gorm.DB, skip, limit int) ([]BookSummary, error) {
	var rows []BookSummary
	err := db.Model(&models.Book{}).
		Select(`books.title AS title, books.price AS price,
			authors.name AS author,
			COALESCE(publishers.name, ?) AS publisher`, UnknownPublisher).
		Joins("JOIN authors ON authors.id = books.author_id").
		Joins("LEFT JOIN publishers ON publishers.id = books.publisher_id").
		Offset(skip).Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// AuthorsWithoutBooks returns authors with no books via an anti-join.
func AuthorsWithoutBooks(db *gorm.DB) ([]models.Author, error) {
	var authors []models.Author
	err := db.
		Joins("LEFT JOIN books ON books.author_id = authors.id").
		Where("books.id IS NULL").
		Find(&authors).Error
	return authors, err
}

// BooksAboveAveragePrice returns books priced strictly above the overall
// average, computed by a scalar subquery on every call.
func BooksAboveAveragePrice(db *gorm.DB) ([]models.Book, error) {
	var books []models.Book
	sub := db.Model(&models.Book{}).Select("AVG(price)")
	err := db.Where("price > (?)", sub).Find(&books).Error
	return books, err
}

// ExpensiveAuthor is an author owning at least one book at or above a
// price threshold, with the author's maximum book price.
type ExpensiveAuthor struct {
	Name         string  `json:"name"`
	MaxBookPrice float64 `json:"max_book_price"`
}

// AuthorsWithExpensiveBooks returns authors that have at least one book
// priced at or above threshold, via a correlated EXISTS subquery.
func AuthorsWithExpensiveBooks(db *gorm.DB, threshold float64) ([]ExpensiveAuthor, error) {
	var rows []ExpensiveAuthor
	err := db.Model(&models.Author{}).
		Select("authors.name AS name, MAX(books.price) AS max_book_price").
		Joins("JOIN books ON books.author_id = authors.id").
		Where(`EXISTS (
			SELECT 1 FROM books b
			WHERE b.author_id = authors.id AND b.price >= ?)`, threshold).
		Group("authors.id, authors.name").
		Scan(&rows).Error
	return rows, err
}

// PricedBook is a book labeled with its price tier.
type PricedBook struct {
	Title    string   `json:"title"`
	Price    *float64 `json:"price"`
	Category string   `json:"category"`
}

// BooksWithPriceCategory labels every book with a price tier, cheapest
// first. Tiers: < 300 Budget, < 700 Medium, < 1500 Expensive, else
// Premium.
func BooksWithPriceCategory(db *gorm.DB) ([]PricedBook, error) {
	var rows []PricedBook
	err := db.Model(&models.Book{}).
		Select(`title, price,
			CASE
				WHEN price < 300 THEN 'Budget'
				WHEN price < 700 THEN 'Medium'
				WHEN price < 1500 THEN 'Expensive'
				ELSE 'Premium'
			END AS category`).
		Order("price").
		Scan(&rows).Error
	return rows, err
}

// RatedAuthor is an author labeled by book count.
type RatedAuthor struct {
	Author    string `json:"author"`
	BookCount int64  `json:"book_count"`
	Rating    string `json:"rating"`
}

// AuthorRatings rates every author by book count, most productive
// first. Ratings: >= 10 Master, >= 5 Experienced, >= 2 Beginner, else
// Debutant.
func AuthorRatings(db *gorm.DB) ([]RatedAuthor, error) {
	var rows []RatedAuthor
	err := db.Model(&models.Author{}).
		Select(`authors.name AS author, COUNT(books.id) AS book_count,
			CASE
				WHEN COUNT(books.id) >= 10 THEN 'Master'
				WHEN COUNT(books.id) >= 5 THEN 'Experienced'
				WHEN COUNT(books.id) >= 2 THEN 'Beginner'
				ELSE 'Debutant'
			END AS rating`).
		Joins("LEFT JOIN books ON books.author_id = authors.id").
		Group("authors.id, authors.name").
		Order("book_count DESC").
		Scan(&rows).Error
	return rows, err
}

// bookSortFields is the allow-list for BooksSorted.
var bookSortFields = map[string]bool{
	"title":            true,
	"price":            true,
	"pages":            true,
	"publication_date": true,
	"created_at":       true,
}

// BooksSorted returns books ordered by the requested column and
// direction with offset/limit pagination. Columns outside the allow-list
// fall back to title; any direction other than "desc" sorts ascending.
func BooksSorted(db *gorm.DB, sortBy, order string, skip, limit int) ([]models.Book, error) {
	if !bookSortFields[sortBy] {
		sortBy = "title"
	}
	if order != "desc" {
		order = "asc"
	}

	var books []models.Book
	err := db.Order(sortBy + " " + order).Offset(skip).Limit(limit).Find(&books).Error
	return books, err
}

// RawSQL executes a literal query with named parameters and returns the
// raw rows, bypassing the entity layer.
func RawSQL(db *gorm.DB, query string, params map[string]interface{}) ([]map[string]interface{}, error) {
	var rows []map[string]interface{}
	q := db.Raw(query, params)
	if len(params) == 0 {
		q = db.Raw(query)
	}
	err := q.Scan(&rows).Error
	return rows, err
}

// RecentBook is a recently added book for the dashboard.
type RecentBook struct {
	Title   string    `json:"title"`
	AddedAt time.Time `json:"added_at"`
}

// DashboardData gathers statistics, the top-n authors and genres by
// book count, and the n most recently created books.
type DashboardData struct {
	Statistics  Statistics       `json:"statistics"`
	TopAuthors  []ProlificAuthor `json:"top_authors"`
	TopGenres   []GenreCount     `json:"top_genres"`
	RecentBooks []RecentBook     `json:"recent_books"`
}

// GenreCount pairs a genre name with its book count.
type GenreCount struct {
	Name      string `json:"name"`
	BookCount int64  `json:"book_count"`
}

// GetDashboard runs the composite dashboard read with topN entries per
// section.
func GetDashboard(db *gorm.DB, topN int) (*DashboardData, error) {
	stats, err := LibraryStatistics(db)
	if err != nil {
		return nil, err
	}

	var topAuthors []ProlificAuthor
	err = db.Model(&models.Author{}).
		Select("authors.name AS name, COUNT(books.id) AS book_count").
		Joins("JOIN books ON books.author_id = authors.id").
		Group("authors.id, authors.name").
		Order("book_count DESC").
		Limit(topN).
		Scan(&topAuthors).Error
	if err != nil {
		return nil, err
	}

	var topGenres []GenreCount
	err = db.Model(&models.Genre{}).
		Select("genres.name AS name, COUNT(book_genres.book_id) AS book_count").
		Joins("LEFT JOIN book_genres ON book_genres.genre_id = genres.id").
		Group("genres.id, genres.name").
		Order("book_count DESC").
		Limit(topN).
		Scan(&topGenres).Error
	if err != nil {
		return nil, err
	}

	var recent []RecentBook
	err = db.Model(&models.Book{}).
		Select("title, created_at AS added_at").
		Order("created_at DESC").
		Limit(topN).
		Scan(&recent).Error
	if err != nil {
		return nil, err
	}

	return &DashboardData{
		Statistics:  stats,
		TopAuthors:  topAuthors,
		TopGenres:   topGenres,
		RecentBooks: recent,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
