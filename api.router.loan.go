package main

import (
	"github.com/julienschmidt/httprouter"
)

// SetupLoanRoutes injects the loans lifecycle and librarian endpoints.
func (api *APIHandler) SetupLoanRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.POST("/v1/loans", m.public(api.RequestLoan))
	router.GET("/v1/loans", m.public(api.ListLoans))
	router.GET("/v1/loans/:id", m.public(api.GetLoan))
	router.PUT("/v1/loans/:id/approve", m.public(api.ApproveLoan))
	router.PUT("/v1/loans/:id/reject", m.public(api.RejectLoan))
	router.PUT("/v1/loans/:id/return", m.public(api.ReturnLoan))
	router.GET("/v1/librarian/dashboard/stats", m.public(api.DashboardStats))
	return router
}
