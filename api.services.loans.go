package main

import (
	"context"
	"errors"
	"slices"

	"go.uber.org/zap"
)

// LoanServiceProvider drives the loans lifecycle.
type LoanServiceProvider interface {
	RequestLoan(ctx context.Context, req LoanRequest) (Loan, error)
	ApproveLoan(ctx context.Context, loanID string, action LoanAction) (Loan, error)
	RejectLoan(ctx context.Context, loanID string, action LoanAction) (Loan, error)
	ReturnLoan(ctx context.Context, loanID string, action LoanAction) (Loan, error)
	GetLoan(ctx context.Context, loanID string) (Loan, error)
}

var _ LoanServiceProvider = (*LoanService)(nil)

// errClaimMoved aborts a claim mutation which lost a race.
var errClaimMoved = errors.New("claim moved to another loan")

// claimAttempts bounds the create or take over loop of a pair claim.
const claimAttempts = 3

type LoanService struct {
	logger    *zap.Logger
	config    *Config
	clock     Clocker
	ids       UIDHandler
	store     DocumentStore
	validate  *Validator
	inventory InventoryServiceProvider
	queue     Queuer
}

func NewLoanService(logger *zap.Logger, config *Config, clock Clocker, ids UIDHandler, store DocumentStore, validate *Validator, inventory InventoryServiceProvider, queue Queuer) *LoanService {
	return &LoanService{
		logger:    logger,
		config:    config,
		clock:     clock,
		ids:       ids,
		store:     store,
		validate:  validate,
		inventory: inventory,
		queue:     queue,
	}
}

// RequestLoan creates a pending loan. The (user, book) pair is claimed
// before the loan is written so two concurrent requests cannot both pass.
func (s *LoanService) RequestLoan(ctx context.Context, req LoanRequest) (Loan, error) {
	if err := s.validate.Struct(req); err != nil {
		return Loan{}, err
	}
	if !slices.Contains(s.config.Loans.Durations, req.LoanDuration) {
		return Loan{}, newDomainError(ErrValidation, "loanDuration must be one of %s days", joinInts(s.config.Loans.Durations))
	}

	book, err := s.inventory.GetBook(ctx, req.BookID)
	if err != nil {
		return Loan{}, err
	}
	if book.AvailableStock <= 0 {
		return Loan{}, ErrBookUnavailable
	}

	now := s.clock.Now()
	loan := Loan{
		ID:           s.ids.Generate(LoanIDPrefix),
		UserID:       req.UserID,
		BookID:       req.BookID,
		LoanDuration: req.LoanDuration,
		Status:       LoanPending,
		RequestDate:  now,
	}

	claim, err := s.claimPair(ctx, loan)
	if err != nil {
		return Loan{}, err
	}

	// loans written before the claim existed are not covered by it
	active, err := s.store.Query(ctx, LoansCollection, Query{
		Filters: []Filter{Eq("userId", req.UserID), Eq("bookId", req.BookID), In("status", LoanPending, LoanApproved)},
		Limit:   1,
	})
	if err != nil || len(active) > 0 {
		s.releaseClaim(detached(ctx), claim.ID, loan.ID)
	}
	if err != nil {
		return Loan{}, storeError("check active loans", err)
	}
	if len(active) > 0 {
		return Loan{}, ErrActiveLoanExists
	}

	if err = s.store.Create(ctx, LoansCollection, loan.ID, loan); err != nil {
		s.releaseClaim(detached(ctx), claim.ID, loan.ID)
		return Loan{}, storeError("create loan", err)
	}
	return loan, nil
}

// claimPair creates the pair claim for the loan or takes over a stale one.
func (s *LoanService) claimPair(ctx context.Context, loan Loan) (ActiveLoanClaim, error) {
	claim := ActiveLoanClaim{
		ID:        s.ids.Derive(ClaimIDPrefix, loan.UserID, loan.BookID),
		UserID:    loan.UserID,
		BookID:    loan.BookID,
		LoanID:    loan.ID,
		CreatedAt: loan.RequestDate,
	}

	for i := 0; i < claimAttempts; i++ {
		err := s.store.Create(ctx, LoanClaimsCollection, claim.ID, claim)
		if err == nil {
			return claim, nil
		}
		if !errors.Is(err, ErrDocumentExists) {
			return claim, storeError("create loan claim", err)
		}

		current, err := getDocument[ActiveLoanClaim](ctx, s.store, LoanClaimsCollection, claim.ID)
		if errors.Is(err, ErrDocumentNotFound) {
			continue
		}
		if err != nil {
			return claim, storeError("get loan claim", err)
		}

		stale, err := s.isStale(ctx, current)
		if err != nil {
			return claim, err
		}
		if !stale {
			return claim, ErrActiveLoanExists
		}

		// compare and swap on the observed owner.
		_, err = mutateDocument(ctx, s.store, LoanClaimsCollection, claim.ID, func(c *ActiveLoanClaim) error {
			if c.LoanID != current.LoanID {
				return errClaimMoved
			}
			*c = claim
			return nil
		})
		switch {
		case err == nil:
			return claim, nil
		case errors.Is(err, errClaimMoved):
			return claim, ErrActiveLoanExists
		case errors.Is(err, ErrDocumentNotFound):
			continue
		default:
			return claim, storeError("take over loan claim", err)
		}
	}
	return claim, ErrActiveLoanExists
}

// isStale reports whether a claim does not protect an active loan anymore.
// A claim whose loan is not written yet is kept during the grace period.
func (s *LoanService) isStale(ctx context.Context, c ActiveLoanClaim) (bool, error) {
	if c.LoanID == "" {
		return true, nil
	}
	loan, err := getDocument[Loan](ctx, s.store, LoansCollection, c.LoanID)
	if errors.Is(err, ErrDocumentNotFound) {
		return s.clock.Now().Sub(c.CreatedAt) > s.config.Loans.ClaimGracePeriod, nil
	}
	if err != nil {
		return false, storeError("get claimed loan", err)
	}
	return !loan.Status.IsActive(), nil
}

// releaseClaim clears the claim if it still belongs to the loan. Failures
// are only logged because a stale claim gets taken over later.
func (s *LoanService) releaseClaim(ctx context.Context, claimID, loanID string) {
	_, err := mutateDocument(ctx, s.store, LoanClaimsCollection, claimID, func(c *ActiveLoanClaim) error {
		if c.LoanID != loanID {
			return errClaimMoved
		}
		c.LoanID = ""
		return nil
	})
	if err != nil && !errors.Is(err, errClaimMoved) && !errors.Is(err, ErrDocumentNotFound) {
		s.logger.Warn("service: failed to release loan claim", zap.String("claim.id", claimID), zap.String("loan.id", loanID), zap.Error(err))
	}
}

func (s *LoanService) claimID(loan Loan) string {
	return s.ids.Derive(ClaimIDPrefix, loan.UserID, loan.BookID)
}

// ApproveLoan reserves a copy then commits the approval. If the commit
// fails the copy is given back.
func (s *LoanService) ApproveLoan(ctx context.Context, loanID string, action LoanAction) (Loan, error) {
	if err := s.validate.Struct(action); err != nil {
		return Loan{}, err
	}
	loan, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return Loan{}, err
	}
	if loan.Status != LoanPending {
		return Loan{}, ErrLoanNotPending
	}

	if _, err = s.inventory.ReserveCopy(ctx, loan.BookID); err != nil {
		if errors.Is(err, ErrUnavailable) {
			return Loan{}, ErrBookNoLongerFree
		}
		return Loan{}, err
	}

	now := s.clock.Now()
	approved, err := mutateDocument(ctx, s.store, LoansCollection, loanID, func(l *Loan) error {
		return l.approve(action.LibrarianID, now)
	})
	if err != nil {
		s.giveBackCopy(detached(ctx), loan, "approval commit failed")
		return Loan{}, storeFailure("approve loan", err, ErrLoanNotFound)
	}
	s.logger.Info("service: loan approved", zap.String("loan.id", loanID), zap.String("book.id", loan.BookID), zap.String("librarian.id", action.LibrarianID))
	return approved, nil
}

// RejectLoan closes a pending loan without touching the inventory.
func (s *LoanService) RejectLoan(ctx context.Context, loanID string, action LoanAction) (Loan, error) {
	if err := s.validate.Struct(action); err != nil {
		return Loan{}, err
	}
	now := s.clock.Now()
	rejected, err := mutateDocument(ctx, s.store, LoansCollection, loanID, func(l *Loan) error {
		return l.reject(action.LibrarianID, action.Reason, now)
	})
	if err != nil {
		return Loan{}, storeFailure("reject loan", err, ErrLoanNotFound)
	}
	s.releaseClaim(detached(ctx), s.claimID(rejected), rejected.ID)
	s.logger.Info("service: loan rejected", zap.String("loan.id", loanID), zap.String("librarian.id", action.LibrarianID))
	return rejected, nil
}

// ReturnLoan commits the return then gives the copy back.
func (s *LoanService) ReturnLoan(ctx context.Context, loanID string, action LoanAction) (Loan, error) {
	if err := s.validate.Struct(action); err != nil {
		return Loan{}, err
	}
	now := s.clock.Now()
	returned, err := mutateDocument(ctx, s.store, LoansCollection, loanID, func(l *Loan) error {
		return l.giveBack(action.LibrarianID, now)
	})
	if err != nil {
		return Loan{}, storeFailure("return loan", err, ErrLoanNotFound)
	}
	s.giveBackCopy(detached(ctx), returned, "return release failed")
	s.releaseClaim(detached(ctx), s.claimID(returned), returned.ID)
	s.logger.Info("service: loan returned", zap.String("loan.id", loanID), zap.String("book.id", returned.BookID), zap.String("librarian.id", action.LibrarianID))
	return returned, nil
}

func (s *LoanService) GetLoan(ctx context.Context, loanID string) (Loan, error) {
	loan, err := getDocument[Loan](ctx, s.store, LoansCollection, loanID)
	return loan, storeFailure("get loan", err, ErrLoanNotFound)
}

// giveBackCopy releases a copy and queues a repair when it cannot.
func (s *LoanService) giveBackCopy(ctx context.Context, loan Loan, reason string) {
	_, err := s.inventory.ReleaseCopy(ctx, loan.BookID)
	if err == nil {
		return
	}
	s.logger.Error("service: failed to release book copy", zap.String("loan.id", loan.ID), zap.String("book.id", loan.BookID), zap.Error(err))
	s.scheduleReconcile(ctx, loan, reason)
}

func (s *LoanService) scheduleReconcile(ctx context.Context, loan Loan, reason string) {
	if s.queue == nil {
		s.logger.Error("service: no queue to schedule reconciliation", zap.String("book.id", loan.BookID))
		return
	}
	task := ReconcileTask{BookID: loan.BookID, LoanID: loan.ID, Reason: reason, QueuedAt: s.clock.Now()}
	if err := s.queue.Push(ctx, s.config.Reconcile.QueueName, task); err != nil {
		s.logger.Error("service: failed to push reconcile task to queue",
			zap.String("qid", s.config.Reconcile.QueueName),
			zap.String("book.id", loan.BookID),
			zap.Error(err),
		)
	}
}
