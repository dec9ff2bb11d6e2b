package main

import "time"

// Book represents a catalog entry and its copies bookkeeping.
// AvailableStock always stays within [0, Stock].
type Book struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Author         string    `json:"author"`
	Year           int       `json:"year"`
	Description    string    `json:"description"`
	Category       string    `json:"category"`
	Pages          int       `json:"pages"`
	Stock          int       `json:"stock"`
	AvailableStock int       `json:"availableStock"`
	CoverURL       *string   `json:"coverUrl"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// BookInput is the payload of a book creation.
type BookInput struct {
	Title       string  `json:"title" validate:"required"`
	Author      string  `json:"author" validate:"required"`
	Year        int     `json:"year" validate:"gte=0"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Pages       int     `json:"pages" validate:"gte=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	CoverURL    *string `json:"coverUrl" validate:"omitempty,url"`
}

// BookUpdate is a partial book update. A nil field keeps the stored value.
type BookUpdate struct {
	Title       *string `json:"title" validate:"omitempty,min=1"`
	Author      *string `json:"author" validate:"omitempty,min=1"`
	Year        *int    `json:"year" validate:"omitempty,gte=0"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Pages       *int    `json:"pages" validate:"omitempty,gte=0"`
	Stock       *int    `json:"stock"`
	CoverURL    *string `json:"coverUrl" validate:"omitempty,url"`
}

// BookFilter narrows a books listing.
type BookFilter struct {
	Category string
	Search   string
}

// applyTo copies every present field except the stock onto the book.
func (u BookUpdate) applyTo(b *Book) {
	if u.Title != nil {
		b.Title = *u.Title
	}
	if u.Author != nil {
		b.Author = *u.Author
	}
	if u.Year != nil {
		b.Year = *u.Year
	}
	if u.Description != nil {
		b.Description = *u.Description
	}
	if u.Category != nil {
		b.Category = *u.Category
	}
	if u.Pages != nil {
		b.Pages = *u.Pages
	}
	if u.CoverURL != nil {
		b.CoverURL = u.CoverURL
	}
}

// changeStock moves the total stock and shifts the availability by the same
// delta. It refuses to go below the number of copies currently on loan.
func (b *Book) changeStock(newStock int) error {
	available := b.AvailableStock + (newStock - b.Stock)
	if available < 0 {
		return ErrStockBelowLoaned
	}
	b.Stock = newStock
	b.AvailableStock = available
	return nil
}

// ReconcileReport describes one availability recomputation.
type ReconcileReport struct {
	BookID   string `json:"bookId"`
	Stock    int    `json:"stock"`
	Approved int    `json:"approved"`
	Before   int    `json:"before"`
	After    int    `json:"after"`
	Repaired bool   `json:"repaired"`
	Deferred bool   `json:"deferred,omitempty"`
}
