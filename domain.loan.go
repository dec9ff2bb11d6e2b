package main

import "time"

// LoanStatus is the state of a loan.
type LoanStatus string

const (
	LoanPending  LoanStatus = "pending"
	LoanApproved LoanStatus = "approved"
	LoanRejected LoanStatus = "rejected"
	LoanReturned LoanStatus = "returned"
)

// IsValid reports whether the status is a known one.
func (s LoanStatus) IsValid() bool {
	switch s {
	case LoanPending, LoanApproved, LoanRejected, LoanReturned:
		return true
	}
	return false
}

// IsActive reports whether the loan still holds or waits for a copy.
func (s LoanStatus) IsActive() bool {
	return s == LoanPending || s == LoanApproved
}

// Loan is a user borrowing one copy of a book.
//
//	pending --approve--> approved --return--> returned
//	pending --reject---> rejected
type Loan struct {
	ID                string     `json:"id"`
	UserID            string     `json:"userId"`
	BookID            string     `json:"bookId"`
	LoanDuration      int        `json:"loanDuration"`
	Status            LoanStatus `json:"status"`
	RequestDate       time.Time  `json:"requestDate"`
	ApprovedDate      *time.Time `json:"approvedDate"`
	DueDate           *time.Time `json:"dueDate"`
	RejectedDate      *time.Time `json:"rejectedDate,omitempty"`
	ReturnDate        *time.Time `json:"returnDate"`
	LibrarianID       *string    `json:"librarianId"`
	ReturnLibrarianID *string    `json:"returnLibrarianId,omitempty"`
	RejectionReason   *string    `json:"rejectionReason,omitempty"`
}

// approve moves a pending loan to approved and sets its due date.
func (l *Loan) approve(librarianID string, now time.Time) error {
	if l.Status != LoanPending {
		return ErrLoanNotPending
	}
	due := now.AddDate(0, 0, l.LoanDuration)
	l.Status = LoanApproved
	l.ApprovedDate = &now
	l.DueDate = &due
	l.LibrarianID = &librarianID
	return nil
}

// reject moves a pending loan to rejected.
func (l *Loan) reject(librarianID, reason string, now time.Time) error {
	if l.Status != LoanPending {
		return ErrLoanNotPending
	}
	l.Status = LoanRejected
	l.RejectedDate = &now
	l.RejectionReason = &reason
	l.LibrarianID = &librarianID
	return nil
}

// giveBack moves an approved loan to returned.
func (l *Loan) giveBack(librarianID string, now time.Time) error {
	if l.Status != LoanApproved {
		return ErrLoanNotApproved
	}
	l.Status = LoanReturned
	l.ReturnDate = &now
	l.LibrarianID = &librarianID
	l.ReturnLibrarianID = &librarianID
	return nil
}

// LoanRequest is the payload of a loan request.
type LoanRequest struct {
	UserID       string `json:"userId" validate:"required"`
	BookID       string `json:"bookId" validate:"required"`
	LoanDuration int    `json:"loanDuration" validate:"required"`
}

// LoanAction is the payload of the approve, reject and return transitions.
type LoanAction struct {
	LibrarianID string `json:"librarianId" validate:"required"`
	Reason      string `json:"reason"`
}

// ActiveLoanClaim marks the single active loan of a (user, book) pair.
// Its id is derived from the pair so the store refuses a second one.
type ActiveLoanClaim struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	BookID    string    `json:"bookId"`
	LoanID    string    `json:"loanId"`
	CreatedAt time.Time `json:"createdAt"`
}

// LoanView is a loan joined with snapshots of its book and user. A nil
// snapshot means the referenced document does not exist anymore.
type LoanView struct {
	Loan
	Book          *Book `json:"book"`
	User          *User `json:"user"`
	DaysRemaining *int  `json:"daysRemaining,omitempty"`
	IsOverdue     *bool `json:"isOverdue,omitempty"`
}

// DashboardStats aggregates the librarian dashboard counters.
type DashboardStats struct {
	TotalBooks     int `json:"totalBooks"`
	AvailableBooks int `json:"availableBooks"`
	TotalUsers     int `json:"totalUsers"`
	PendingLoans   int `json:"pendingLoans"`
	ActiveLoans    int `json:"activeLoans"`
	OverdueLoans   int `json:"overdueLoans"`
	RejectedLoans  int `json:"rejectedLoans"`
	ReturnedLoans  int `json:"returnedLoans"`
}
