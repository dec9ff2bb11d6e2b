package main

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// EngagementServiceProvider manages the users bookmarks and ratings.
type EngagementServiceProvider interface {
	AddBookmark(ctx context.Context, userID, bookID string) (Bookmark, error)
	RemoveBookmark(ctx context.Context, userID, bookID string) error
	ListUserBookmarks(ctx context.Context, userID string) ([]BookmarkView, error)
	AddRating(ctx context.Context, userID string, in RatingInput) (Rating, error)
	UpdateRating(ctx context.Context, userID, bookID string, u RatingUpdate) (Rating, error)
	DeleteRating(ctx context.Context, userID, bookID string) error
	ListUserRatings(ctx context.Context, userID string) ([]RatingView, error)
}

var _ EngagementServiceProvider = (*EngagementService)(nil)

type EngagementService struct {
	logger   *zap.Logger
	clock    Clocker
	ids      UIDHandler
	store    DocumentStore
	validate *Validator
}

func NewEngagementService(logger *zap.Logger, clock Clocker, ids UIDHandler, store DocumentStore, validate *Validator) *EngagementService {
	return &EngagementService{logger: logger, clock: clock, ids: ids, store: store, validate: validate}
}

func (s *EngagementService) ensureBook(ctx context.Context, bookID string) error {
	_, err := s.store.Get(ctx, BooksCollection, bookID)
	return storeFailure("get book", err, ErrBookNotFound)
}

func (s *EngagementService) AddBookmark(ctx context.Context, userID, bookID string) (Bookmark, error) {
	if bookID == "" {
		return Bookmark{}, newDomainError(ErrValidation, "bookId is required")
	}
	if err := s.ensureBook(ctx, bookID); err != nil {
		return Bookmark{}, err
	}
	bookmark := Bookmark{
		ID:        s.ids.Derive(BookmarkIDPrefix, userID, bookID),
		UserID:    userID,
		BookID:    bookID,
		CreatedAt: s.clock.Now(),
	}
	err := s.store.Create(ctx, BookmarksCollection, bookmark.ID, bookmark)
	if errors.Is(err, ErrDocumentExists) {
		return Bookmark{}, ErrBookmarkExists
	}
	if err != nil {
		return Bookmark{}, storeError("create bookmark", err)
	}
	return bookmark, nil
}

func (s *EngagementService) RemoveBookmark(ctx context.Context, userID, bookID string) error {
	err := s.store.Delete(ctx, BookmarksCollection, s.ids.Derive(BookmarkIDPrefix, userID, bookID))
	return storeFailure("delete bookmark", err, ErrBookmarkNotFound)
}

// ListUserBookmarks skips the bookmarks whose book does not exist anymore.
func (s *EngagementService) ListUserBookmarks(ctx context.Context, userID string) ([]BookmarkView, error) {
	bookmarks, err := queryDocuments[Bookmark](ctx, s.store, BookmarksCollection, Query{
		Filters: []Filter{Eq("userId", userID)},
		OrderBy: "createdAt",
		Desc:    true,
	})
	if err != nil {
		return nil, storeError("list bookmarks", err)
	}
	j := newJoiner(s.store)
	views := make([]BookmarkView, 0, len(bookmarks))
	for _, bm := range bookmarks {
		book, err := j.book(ctx, bm.BookID)
		if err != nil {
			return nil, err
		}
		if book == nil {
			continue
		}
		views = append(views, BookmarkView{BookmarkID: bm.ID, Book: *book, CreatedAt: bm.CreatedAt})
	}
	return views, nil
}

func (s *EngagementService) AddRating(ctx context.Context, userID string, in RatingInput) (Rating, error) {
	if err := s.validate.Struct(in); err != nil {
		return Rating{}, err
	}
	if !isValidRating(in.Rating) {
		return Rating{}, ErrInvalidRating
	}
	if err := s.ensureBook(ctx, in.BookID); err != nil {
		return Rating{}, err
	}
	now := s.clock.Now()
	rating := Rating{
		ID:        s.ids.Derive(RatingIDPrefix, userID, in.BookID),
		UserID:    userID,
		BookID:    in.BookID,
		Rating:    in.Rating,
		Review:    in.Review,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := s.store.Create(ctx, RatingsCollection, rating.ID, rating)
	if errors.Is(err, ErrDocumentExists) {
		return Rating{}, ErrRatingExists
	}
	if err != nil {
		return Rating{}, storeError("create rating", err)
	}
	return rating, nil
}

// UpdateRating replaces the present fields of a rating.
func (s *EngagementService) UpdateRating(ctx context.Context, userID, bookID string, u RatingUpdate) (Rating, error) {
	fields := map[string]interface{}{"updatedAt": s.clock.Now()}
	if u.Rating != nil {
		if !isValidRating(*u.Rating) {
			return Rating{}, ErrInvalidRating
		}
		fields["rating"] = *u.Rating
	}
	if u.Review != nil {
		fields["review"] = *u.Review
	}
	id := s.ids.Derive(RatingIDPrefix, userID, bookID)
	if err := s.store.Update(ctx, RatingsCollection, id, fields); err != nil {
		return Rating{}, storeFailure("update rating", err, ErrRatingNotFound)
	}
	rating, err := getDocument[Rating](ctx, s.store, RatingsCollection, id)
	return rating, storeFailure("get rating", err, ErrRatingNotFound)
}

func (s *EngagementService) DeleteRating(ctx context.Context, userID, bookID string) error {
	err := s.store.Delete(ctx, RatingsCollection, s.ids.Derive(RatingIDPrefix, userID, bookID))
	return storeFailure("delete rating", err, ErrRatingNotFound)
}

// ListUserRatings skips the ratings whose book does not exist anymore.
func (s *EngagementService) ListUserRatings(ctx context.Context, userID string) ([]RatingView, error) {
	ratings, err := queryDocuments[Rating](ctx, s.store, RatingsCollection, Query{
		Filters: []Filter{Eq("userId", userID)},
		OrderBy: "createdAt",
		Desc:    true,
	})
	if err != nil {
		return nil, storeError("list ratings", err)
	}
	j := newJoiner(s.store)
	views := make([]RatingView, 0, len(ratings))
	for _, r := range ratings {
		book, err := j.book(ctx, r.BookID)
		if err != nil {
			return nil, err
		}
		if book == nil {
			continue
		}
		views = append(views, RatingView{ID: r.ID, Book: *book, Rating: r.Rating, Review: r.Review, CreatedAt: r.CreatedAt})
	}
	return views, nil
}
