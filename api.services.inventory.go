package main

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

// InventoryServiceProvider manages the books catalog and their copies.
type InventoryServiceProvider interface {
	CreateBook(ctx context.Context, in BookInput) (Book, error)
	GetBook(ctx context.Context, id string) (Book, error)
	ListBooks(ctx context.Context, filter BookFilter, p PageRequest) ([]Book, Pagination, error)
	UpdateBook(ctx context.Context, id string, u BookUpdate) (Book, error)
	DeleteBook(ctx context.Context, id string) error
	AdjustTotalStock(ctx context.Context, id string, newStock int) (Book, error)
	ReserveCopy(ctx context.Context, id string) (Book, error)
	ReleaseCopy(ctx context.Context, id string) (Book, error)
	Reconciler
}

var _ InventoryServiceProvider = (*InventoryService)(nil)

type InventoryService struct {
	logger   *zap.Logger
	config   *Config
	clock    Clocker
	ids      UIDHandler
	store    DocumentStore
	validate *Validator
}

func NewInventoryService(logger *zap.Logger, config *Config, clock Clocker, ids UIDHandler, store DocumentStore, validate *Validator) *InventoryService {
	return &InventoryService{
		logger:   logger,
		config:   config,
		clock:    clock,
		ids:      ids,
		store:    store,
		validate: validate,
	}
}

// CreateBook adds a book with all its copies available.
func (s *InventoryService) CreateBook(ctx context.Context, in BookInput) (Book, error) {
	if err := s.validate.Struct(in); err != nil {
		return Book{}, err
	}
	now := s.clock.Now()
	book := Book{
		ID:             s.ids.Generate(BookIDPrefix),
		Title:          in.Title,
		Author:         in.Author,
		Year:           in.Year,
		Description:    in.Description,
		Category:       in.Category,
		Pages:          in.Pages,
		Stock:          in.Stock,
		AvailableStock: in.Stock,
		CoverURL:       in.CoverURL,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.Create(ctx, BooksCollection, book.ID, book); err != nil {
		return Book{}, storeError("create book", err)
	}
	return book, nil
}

func (s *InventoryService) GetBook(ctx context.Context, id string) (Book, error) {
	book, err := getDocument[Book](ctx, s.store, BooksCollection, id)
	return book, storeFailure("get book", err, ErrBookNotFound)
}

// ListBooks returns the newest books first.
func (s *InventoryService) ListBooks(ctx context.Context, filter BookFilter, p PageRequest) ([]Book, Pagination, error) {
	q := Query{OrderBy: "createdAt", Desc: true}
	if filter.Category != "" {
		q.Filters = append(q.Filters, Eq("category", filter.Category))
	}
	books, err := queryDocuments[Book](ctx, s.store, BooksCollection, q)
	if err != nil {
		return nil, Pagination{}, storeError("list books", err)
	}

	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		matched := make([]Book, 0, len(books))
		for _, b := range books {
			if strings.Contains(strings.ToLower(b.Title), search) || strings.Contains(strings.ToLower(b.Author), search) {
				matched = append(matched, b)
			}
		}
		books = matched
	}

	items, meta := paginate(books, p.normalize(s.config.Pagination))
	return items, meta, nil
}

// UpdateBook replaces the present fields. A new stock shifts the
// availability by the same delta, in the same atomic write.
func (s *InventoryService) UpdateBook(ctx context.Context, id string, u BookUpdate) (Book, error) {
	if err := s.validate.Struct(u); err != nil {
		return Book{}, err
	}
	if u.Stock != nil && *u.Stock < 0 {
		return Book{}, newDomainError(ErrValidation, "stock must be greater than or equal to 0")
	}
	now := s.clock.Now()
	book, err := mutateDocument(ctx, s.store, BooksCollection, id, func(b *Book) error {
		u.applyTo(b)
		if u.Stock != nil {
			if err := b.changeStock(*u.Stock); err != nil {
				return err
			}
		}
		b.UpdatedAt = now
		return nil
	})
	return book, storeFailure("update book", err, ErrBookNotFound)
}

// AdjustTotalStock changes the number of owned copies.
func (s *InventoryService) AdjustTotalStock(ctx context.Context, id string, newStock int) (Book, error) {
	if newStock < 0 {
		return Book{}, newDomainError(ErrValidation, "stock must be greater than or equal to 0")
	}
	now := s.clock.Now()
	book, err := mutateDocument(ctx, s.store, BooksCollection, id, func(b *Book) error {
		if err := b.changeStock(newStock); err != nil {
			return err
		}
		b.UpdatedAt = now
		return nil
	})
	return book, storeFailure("adjust stock", err, ErrBookNotFound)
}

// ReserveCopy takes one available copy or fails with Unavailable.
func (s *InventoryService) ReserveCopy(ctx context.Context, id string) (Book, error) {
	now := s.clock.Now()
	book, err := mutateDocument(ctx, s.store, BooksCollection, id, func(b *Book) error {
		if b.AvailableStock <= 0 {
			return ErrBookUnavailable
		}
		b.AvailableStock--
		b.UpdatedAt = now
		return nil
	})
	return book, storeFailure("reserve copy", err, ErrBookNotFound)
}

// ReleaseCopy gives one copy back. The availability never exceeds the stock.
func (s *InventoryService) ReleaseCopy(ctx context.Context, id string) (Book, error) {
	now := s.clock.Now()
	var capped bool
	book, err := mutateDocument(ctx, s.store, BooksCollection, id, func(b *Book) error {
		capped = b.AvailableStock >= b.Stock
		if !capped {
			b.AvailableStock++
		}
		b.UpdatedAt = now
		return nil
	})
	if err != nil {
		return book, storeFailure("release copy", err, ErrBookNotFound)
	}
	if capped {
		s.logger.Warn("service: released copy while all copies are available", zap.String("book.id", id), zap.Int("book.stock", book.Stock))
	}
	return book, nil
}

// DeleteBook refuses to remove a book which still has pending or approved loans.
func (s *InventoryService) DeleteBook(ctx context.Context, id string) error {
	if _, err := s.GetBook(ctx, id); err != nil {
		return err
	}
	active, err := s.store.Query(ctx, LoansCollection, Query{
		Filters: []Filter{Eq("bookId", id), In("status", LoanPending, LoanApproved)},
		Limit:   1,
	})
	if err != nil {
		return storeError("check book loans", err)
	}
	if len(active) > 0 {
		return ErrBookHasActiveLoans
	}
	return storeFailure("delete book", s.store.Delete(ctx, BooksCollection, id), ErrBookNotFound)
}

// Reconcile recomputes the availability from the approved loans. Lowering it
// is applied at once. Raising it is deferred while the book changed or a loan
// on it was returned within the claim grace period, since an approval or a
// copy release may be in flight.
func (s *InventoryService) Reconcile(ctx context.Context, id string) (ReconcileReport, error) {
	report := ReconcileReport{BookID: id}
	approved, err := s.store.Query(ctx, LoansCollection, Query{
		Filters: []Filter{Eq("bookId", id), Eq("status", LoanApproved)},
	})
	if err != nil {
		return report, storeError("count approved loans", err)
	}
	report.Approved = len(approved)

	now := s.clock.Now()
	returning, err := s.returnedSince(ctx, id, now.Add(-s.config.Loans.ClaimGracePeriod))
	if err != nil {
		return report, err
	}

	_, err = mutateDocument(ctx, s.store, BooksCollection, id, func(b *Book) error {
		report.Stock = b.Stock
		report.Before = b.AvailableStock
		expected := max(0, b.Stock-report.Approved)
		report.After = b.AvailableStock
		report.Repaired = false
		report.Deferred = false
		switch {
		case expected == b.AvailableStock:
			return nil
		case expected > b.AvailableStock && (returning || now.Sub(b.UpdatedAt) < s.config.Loans.ClaimGracePeriod):
			report.Deferred = true
			return nil
		}
		b.AvailableStock = expected
		b.UpdatedAt = now
		report.After = expected
		report.Repaired = true
		return nil
	})
	if err != nil {
		return report, storeFailure("reconcile book", err, ErrBookNotFound)
	}
	if report.Repaired {
		s.logger.Warn("service: repaired book availability drift",
			zap.String("book.id", id),
			zap.Int("book.stock", report.Stock),
			zap.Int("loans.approved", report.Approved),
			zap.Int("before", report.Before),
			zap.Int("after", report.After),
		)
	}
	return report, nil
}

// returnedSince reports whether a loan on the book was returned after since.
// Such a return may not have released its copy yet.
func (s *InventoryService) returnedSince(ctx context.Context, id string, since time.Time) (bool, error) {
	returned, err := queryDocuments[Loan](ctx, s.store, LoansCollection, Query{
		Filters: []Filter{Eq("bookId", id), Eq("status", LoanReturned)},
	})
	if err != nil {
		return false, storeError("list returned loans", err)
	}
	for _, l := range returned {
		if l.ReturnDate != nil && l.ReturnDate.After(since) {
			return true, nil
		}
	}
	return false, nil
}

// ReconcileAll reconciles every book and reports all the failures together.
func (s *InventoryService) ReconcileAll(ctx context.Context) ([]ReconcileReport, error) {
	docs, err := s.store.Query(ctx, BooksCollection, Query{})
	if err != nil {
		return nil, storeError("list books", err)
	}
	reports := make([]ReconcileReport, 0, len(docs))
	var errs []error
	for _, doc := range docs {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		report, err := s.Reconcile(ctx, doc.ID)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		reports = append(reports, report)
	}
	return reports, errors.Join(errs...)
}
