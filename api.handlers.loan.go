package main

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// RequestLoan godoc
// @Summary      Request a loan for a book
// @Tags         loans
// @Accept       json
// @Produce      json
// @Param        loan body LoanRequest true "loan request"
// @Success      201 {object} APIResponse
// @Failure      400 {object} APIError
// @Failure      404 {object} APIError
// @Router       /v1/loans [post]
func (api *APIHandler) RequestLoan(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req LoanRequest
	if err := DecodeRequestBody(r, &req); err != nil {
		api.writeFailure(w, r, "request the loan", err)
		return
	}
	loan, err := api.loans.RequestLoan(r.Context(), req)
	if err != nil {
		api.writeFailure(w, r, "request the loan", err)
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to request loan",
		zap.String("loan.id", loan.ID), zap.String("book.id", loan.BookID), zap.String("user.id", loan.UserID))
	api.writeSuccess(w, r, http.StatusCreated, "Loan requested successfully.", loan, nil)
}

// ListLoans godoc
// @Summary      List loans with their book and user
// @Tags         loans
// @Produce      json
// @Param        status query string false "pending, approved, rejected or returned"
// @Param        page   query int    false "page number"
// @Param        limit  query int    false "page size"
// @Success      200 {object} APIResponse
// @Router       /v1/loans [get]
func (api *APIHandler) ListLoans(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	api.extendWriteDeadline(w, r)
	q := r.URL.Query()
	status, err := ParseLoanStatus(q.Get("status"))
	if err != nil {
		api.writeFailure(w, r, "list loans", err)
		return
	}
	page, err := ParsePageRequest(q)
	if err != nil {
		api.writeFailure(w, r, "list loans", err)
		return
	}
	loans, meta, err := api.queries.ListLoans(r.Context(), status, page)
	if err != nil {
		api.writeFailure(w, r, "list loans", err)
		return
	}
	api.writeSuccess(w, r, http.StatusOK, "Loans fetched successfully.", loans, &meta)
}

// GetLoan godoc
// @Summary      Fetch one loan
// @Tags         loans
// @Produce      json
// @Param        id path string true "loan id"
// @Success      200 {object} APIResponse
// @Failure      404 {object} APIError
// @Router       /v1/loans/{id} [get]
func (api *APIHandler) GetLoan(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if !api.checkID(w, r, id, LoanIDPrefix, "loan") {
		return
	}
	loan, err := api.loans.GetLoan(r.Context(), id)
	if err != nil {
		api.writeFailure(w, r, "get the loan", err)
		return
	}
	api.writeSuccess(w, r, http.StatusOK, "Loan fetched successfully.", loan, nil)
}

type loanTransition func(ctx context.Context, loanID string, action LoanAction) (Loan, error)

// transitionLoan runs one of the librarian actions over the loan in path.
func (api *APIHandler) transitionLoan(w http.ResponseWriter, r *http.Request, ps httprouter.Params, op, message string, run loanTransition) {
	id := ps.ByName("id")
	if !api.checkID(w, r, id, LoanIDPrefix, "loan") {
		return
	}
	var action LoanAction
	if err := DecodeRequestBody(r, &action); err != nil {
		api.writeFailure(w, r, op, err)
		return
	}
	loan, err := run(r.Context(), id, action)
	if err != nil {
		api.writeFailure(w, r, op, err)
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to "+op,
		zap.String("loan.id", id), zap.String("loan.status", string(loan.Status)), zap.String("librarian.id", action.LibrarianID))
	api.writeSuccess(w, r, http.StatusOK, message, loan, nil)
}

// ApproveLoan godoc
// @Summary      Approve a pending loan
// @Tags         loans
// @Accept       json
// @Produce      json
// @Param        id     path string     true "loan id"
// @Param        action body LoanAction true "librarian"
// @Success      200 {object} APIResponse
// @Failure      400 {object} APIError
// @Failure      404 {object} APIError
// @Router       /v1/loans/{id}/approve [put]
func (api *APIHandler) ApproveLoan(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	api.transitionLoan(w, r, ps, "approve the loan", "Loan approved successfully.", api.loans.ApproveLoan)
}

// RejectLoan godoc
// @Summary      Reject a pending loan
// @Tags         loans
// @Accept       json
// @Produce      json
// @Param        id     path string     true "loan id"
// @Param        action body LoanAction true "librarian and reason"
// @Success      200 {object} APIResponse
// @Failure      400 {object} APIError
// @Failure      404 {object} APIError
// @Router       /v1/loans/{id}/reject [put]
func (api *APIHandler) RejectLoan(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	api.transitionLoan(w, r, ps, "reject the loan", "Loan rejected successfully.", api.loans.RejectLoan)
}

// ReturnLoan godoc
// @Summary      Register the return of an approved loan
// @Tags         loans
// @Accept       json
// @Produce      json
// @Param        id     path string     true "loan id"
// @Param        action body LoanAction true "librarian"
// @Success      200 {object} APIResponse
// @Failure      400 {object} APIError
// @Failure      404 {object} APIError
// @Router       /v1/loans/{id}/return [put]
func (api *APIHandler) ReturnLoan(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	api.transitionLoan(w, r, ps, "return the loan", "Loan returned successfully.", api.loans.ReturnLoan)
}

// DashboardStats godoc
// @Summary      Librarian dashboard counters
// @Tags         librarian
// @Produce      json
// @Success      200 {object} APIResponse
// @Router       /v1/librarian/dashboard/stats [get]
func (api *APIHandler) DashboardStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	api.extendWriteDeadline(w, r)
	stats, err := api.queries.DashboardStats(r.Context())
	if err != nil {
		api.writeFailure(w, r, "compute dashboard stats", err)
		return
	}
	api.writeSuccess(w, r, http.StatusOK, "Dashboard stats fetched successfully.", stats, nil)
}
