package main

import (
	"github.com/julienschmidt/httprouter"
)

// SetupBookRoutes injects the catalog endpoints.
func (api *APIHandler) SetupBookRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.POST("/v1/books", m.public(api.CreateBook))
	router.GET("/v1/books", m.public(api.ListBooks))
	router.GET("/v1/books/:id", m.public(api.GetBook))
	router.PUT("/v1/books/:id", m.public(api.UpdateBook))
	router.DELETE("/v1/books/:id", m.public(api.DeleteBook))
	return router
}
