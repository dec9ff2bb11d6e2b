package main

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"
)

// LoanQueryServiceProvider serves the read side of the loans.
type LoanQueryServiceProvider interface {
	ListLoans(ctx context.Context, status LoanStatus, p PageRequest) ([]LoanView, Pagination, error)
	ListUserLoans(ctx context.Context, userID string, status LoanStatus) ([]LoanView, error)
	ListCurrentLoans(ctx context.Context, userID string) ([]LoanView, error)
	DashboardStats(ctx context.Context) (DashboardStats, error)
}

var _ LoanQueryServiceProvider = (*LoanQueryService)(nil)

type LoanQueryService struct {
	logger *zap.Logger
	config *Config
	clock  Clocker
	store  DocumentStore
}

func NewLoanQueryService(logger *zap.Logger, config *Config, clock Clocker, store DocumentStore) *LoanQueryService {
	return &LoanQueryService{logger: logger, config: config, clock: clock, store: store}
}

// joiner resolves books and users snapshots once per call.
type joiner struct {
	store DocumentStore
	books map[string]*Book
	users map[string]*User
}

func newJoiner(store DocumentStore) *joiner {
	return &joiner{store: store, books: make(map[string]*Book), users: make(map[string]*User)}
}

func (j *joiner) book(ctx context.Context, id string) (*Book, error) {
	if b, ok := j.books[id]; ok {
		return b, nil
	}
	b, err := lookup[Book](ctx, j.store, BooksCollection, id)
	if err != nil {
		return nil, err
	}
	j.books[id] = b
	return b, nil
}

func (j *joiner) user(ctx context.Context, id string) (*User, error) {
	if u, ok := j.users[id]; ok {
		return u, nil
	}
	u, err := lookup[User](ctx, j.store, UsersCollection, id)
	if err != nil {
		return nil, err
	}
	j.users[id] = u
	return u, nil
}

// lookup returns nil for a missing document.
func lookup[T any](ctx context.Context, store DocumentStore, collection, id string) (*T, error) {
	v, err := getDocument[T](ctx, store, collection, id)
	if errors.Is(err, ErrDocumentNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("join "+collection, err)
	}
	return &v, nil
}

func (j *joiner) views(ctx context.Context, loans []Loan) ([]LoanView, error) {
	views := make([]LoanView, 0, len(loans))
	for _, l := range loans {
		b, err := j.book(ctx, l.BookID)
		if err != nil {
			return nil, err
		}
		u, err := j.user(ctx, l.UserID)
		if err != nil {
			return nil, err
		}
		views = append(views, LoanView{Loan: l, Book: b, User: u})
	}
	return views, nil
}

func loanFilters(userID string, status LoanStatus) []Filter {
	var filters []Filter
	if userID != "" {
		filters = append(filters, Eq("userId", userID))
	}
	if status != "" {
		filters = append(filters, Eq("status", status))
	}
	return filters
}

// ListLoans returns the most recent requests first, joined with their book and user.
func (s *LoanQueryService) ListLoans(ctx context.Context, status LoanStatus, p PageRequest) ([]LoanView, Pagination, error) {
	loans, err := queryDocuments[Loan](ctx, s.store, LoansCollection, Query{
		Filters: loanFilters("", status),
		OrderBy: "requestDate",
		Desc:    true,
	})
	if err != nil {
		return nil, Pagination{}, storeError("list loans", err)
	}
	page, meta := paginate(loans, p.normalize(s.config.Pagination))
	views, err := newJoiner(s.store).views(ctx, page)
	return views, meta, err
}

// ListUserLoans returns the loans history of a user.
func (s *LoanQueryService) ListUserLoans(ctx context.Context, userID string, status LoanStatus) ([]LoanView, error) {
	loans, err := queryDocuments[Loan](ctx, s.store, LoansCollection, Query{
		Filters: loanFilters(userID, status),
		OrderBy: "requestDate",
		Desc:    true,
	})
	if err != nil {
		return nil, storeError("list user loans", err)
	}
	return newJoiner(s.store).views(ctx, loans)
}

// ListCurrentLoans returns the approved loans of a user with their remaining days.
func (s *LoanQueryService) ListCurrentLoans(ctx context.Context, userID string) ([]LoanView, error) {
	loans, err := queryDocuments[Loan](ctx, s.store, LoansCollection, Query{
		Filters: loanFilters(userID, LoanApproved),
		OrderBy: "approvedDate",
		Desc:    true,
	})
	if err != nil {
		return nil, storeError("list current loans", err)
	}
	views, err := newJoiner(s.store).views(ctx, loans)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	for i := range views {
		if views[i].DueDate == nil {
			continue
		}
		days := daysRemaining(*views[i].DueDate, now)
		overdue := days < 0
		views[i].DaysRemaining = &days
		views[i].IsOverdue = &overdue
	}
	return views, nil
}

// daysRemaining rounds up to the next whole day.
func daysRemaining(due, now time.Time) int {
	return int(math.Ceil(due.Sub(now).Hours() / 24))
}

// DashboardStats scans every collection and counts the loans per state.
func (s *LoanQueryService) DashboardStats(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats
	books, err := queryDocuments[Book](ctx, s.store, BooksCollection, Query{})
	if err != nil {
		return stats, storeError("count books", err)
	}
	stats.TotalBooks = len(books)
	for _, b := range books {
		stats.AvailableBooks += b.AvailableStock
	}

	users, err := s.store.Query(ctx, UsersCollection, Query{})
	if err != nil {
		return stats, storeError("count users", err)
	}
	stats.TotalUsers = len(users)

	loans, err := queryDocuments[Loan](ctx, s.store, LoansCollection, Query{})
	if err != nil {
		return stats, storeError("count loans", err)
	}
	now := s.clock.Now()
	for _, l := range loans {
		switch l.Status {
		case LoanPending:
			stats.PendingLoans++
		case LoanApproved:
			stats.ActiveLoans++
			if l.DueDate != nil && l.DueDate.Before(now) {
				stats.OverdueLoans++
			}
		case LoanRejected:
			stats.RejectedLoans++
		case LoanReturned:
			stats.ReturnedLoans++
		}
	}
	return stats, nil
}
