package main

import "time"

// Bookmark is a book saved by a user. One per (user, book) pair.
type Bookmark struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	BookID    string    `json:"bookId"`
	CreatedAt time.Time `json:"createdAt"`
}

// BookmarkView is a bookmark joined with its book.
type BookmarkView struct {
	BookmarkID string    `json:"bookmarkId"`
	Book       Book      `json:"book"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Rating is the score a user gave to a book. One per (user, book) pair.
type Rating struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	BookID    string    `json:"bookId"`
	Rating    int       `json:"rating"`
	Review    string    `json:"review"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RatingInput is the payload of a rating creation.
type RatingInput struct {
	BookID string `json:"bookId" validate:"required"`
	Rating int    `json:"rating"`
	Review string `json:"review"`
}

// RatingUpdate is a partial rating update.
type RatingUpdate struct {
	Rating *int    `json:"rating"`
	Review *string `json:"review"`
}

// RatingView is a rating joined with its book.
type RatingView struct {
	ID        string    `json:"id"`
	Book      Book      `json:"book"`
	Rating    int       `json:"rating"`
	Review    string    `json:"review"`
	CreatedAt time.Time `json:"createdAt"`
}

func isValidRating(rating int) bool {
	return rating >= 1 && rating <= 5
}
