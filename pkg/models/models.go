package models

import (
	"time"
)

// Author owns its books: deleting an author removes them.
type Author struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:255;not null;index"`
	Bio       string `gorm:"type:text"`
	BirthDate *time.Time
	Country   string `gorm:"size:100"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Books []Book `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

type Publisher struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:255;not null;uniqueIndex"`
	Address     string `gorm:"size:500"`
	Website     string `gorm:"size:255"`
	Description string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Books []Book `gorm:"foreignKey:PublisherID;constraint:OnDelete:SET NULL"`
}

type Genre struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:100;not null;uniqueIndex"`
	Description string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Books []Book `gorm:"many2many:book_genres"`
}

type Book struct {
	ID              uint    `gorm:"primaryKey"`
	Title           string  `gorm:"size:500;not null;index"`
	ISBN            *string `gorm:"size:20;uniqueIndex"`
	Description     string  `gorm:"type:text"`
	Pages           *int
	Price           *float64
	PublicationDate *time.Time
	Language        string `gorm:"size:50;default:'Russian'"`
	AuthorID        uint   `gorm:"not null;index"`
	PublisherID     *uint  `gorm:"index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Author    Author     `gorm:"foreignKey:AuthorID"`
	Publisher *Publisher `gorm:"foreignKey:PublisherID"`
	Genres    []Genre    `gorm:"many2many:book_genres"`
}

// BookGenre is the join table between books and genres. The composite
// primary key keeps (book, genre) pairs unique.
type BookGenre struct {
	BookID  uint `gorm:"primaryKey"`
	GenreID uint `gorm:"primaryKey"`
}

func (BookGenre) TableName() string {
	return "book_genres"
}

// All lists every model registered for migration, in dependency order.
func All() []interface{} {
	return []interface{}{
		&Author{},
		&Publisher{},
		&Genre{},
		&Book{},
		&BookGenre{},
	}
}

// GenreNames returns the names of the book's loaded genres.
func (b *Book) GenreNames() []string {
	names := make([]string, 0, len(b.Genres))
	for _, g := range b.Genres {
		names = append(names, g.Name)
	}
	return names
}

// BooksCount reports how many books are loaded on the author.
func (a *Author) BooksCount() int {
	return len(a.Books)
}
