package main

import (
	"github.com/julienschmidt/httprouter"
)

// SetupUserRoutes injects the users directory and their engagement endpoints.
func (api *APIHandler) SetupUserRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.POST("/v1/users", m.public(api.CreateUser))
	router.GET("/v1/users", m.public(api.ListUsers))
	router.GET("/v1/users/:id", m.public(api.GetUser))
	router.PUT("/v1/users/:id", m.public(api.UpdateUser))

	router.GET("/v1/users/:id/loans", m.public(api.ListUserLoans))
	router.GET("/v1/users/:id/current-loans", m.public(api.ListCurrentLoans))

	router.GET("/v1/users/:id/bookmarks", m.public(api.ListBookmarks))
	router.POST("/v1/users/:id/bookmarks", m.public(api.AddBookmark))
	router.DELETE("/v1/users/:id/bookmarks/:bookId", m.public(api.RemoveBookmark))

	router.GET("/v1/users/:id/ratings", m.public(api.ListRatings))
	router.POST("/v1/users/:id/ratings", m.public(api.AddRating))
	router.PUT("/v1/users/:id/ratings/:bookId", m.public(api.UpdateRating))
	router.DELETE("/v1/users/:id/ratings/:bookId", m.public(api.DeleteRating))
	return router
}
