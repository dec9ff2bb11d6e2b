package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// CreateBook godoc
// @Summary      Add a book to the catalog
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        book body BookInput true "book to create"
// @Success      201 {object} APIResponse
// @Failure      400 {object} APIError
// @Router       /v1/books [post]
func (api *APIHandler) CreateBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in BookInput
	if err := DecodeRequestBody(r, &in); err != nil {
		api.writeFailure(w, r, "create the book", err)
		return
	}
	book, err := api.inventory.CreateBook(r.Context(), in)
	if err != nil {
		api.writeFailure(w, r, "create the book", err)
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to create book", zap.String("book.id", book.ID))
	api.writeSuccess(w, r, http.StatusCreated, "Book created successfully.", book, nil)
}

// ListBooks godoc
// @Summary      List the catalog
// @Tags         books
// @Produce      json
// @Param        category query string false "exact category"
// @Param        search   query string false "title or author substring"
// @Param        page     query int    false "page number"
// @Param        limit    query int    false "page size"
// @Success      200 {object} APIResponse
// @Router       /v1/books [get]
func (api *APIHandler) ListBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	api.extendWriteDeadline(w, r)
	q := r.URL.Query()
	page, err := ParsePageRequest(q)
	if err != nil {
		api.writeFailure(w, r, "list books", err)
		return
	}
	books, meta, err := api.inventory.ListBooks(r.Context(), BookFilter{Category: q.Get("category"), Search: q.Get("search")}, page)
	if err != nil {
		api.writeFailure(w, r, "list books", err)
		return
	}
	api.writeSuccess(w, r, http.StatusOK, "Books fetched successfully.", books, &meta)
}

// GetBook godoc
// @Summary      Fetch one book
// @Tags         books
// @Produce      json
// @Param        id path string true "book id"
// @Success      200 {object} APIResponse
// @Failure      404 {object} APIError
// @Router       /v1/books/{id} [get]
func (api *APIHandler) GetBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if !api.checkID(w, r, id, BookIDPrefix, "book") {
		return
	}
	book, err := api.inventory.GetBook(r.Context(), id)
	if err != nil {
		api.writeFailure(w, r, "get the book", err)
		return
	}
	api.writeSuccess(w, r, http.StatusOK, "Book fetched successfully.", book, nil)
}

// UpdateBook godoc
// @Summary      Partially update a book
// @Description  A new stock shifts the available copies by the same amount.
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        id   path string     true "book id"
// @Param        book body BookUpdate true "fields to change"
// @Success      200 {object} APIResponse
// @Failure      400 {object} APIError
// @Failure      404 {object} APIError
// @Router       /v1/books/{id} [put]
func (api *APIHandler) UpdateBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if !api.checkID(w, r, id, BookIDPrefix, "book") {
		return
	}
	var u BookUpdate
	if err := DecodeRequestBody(r, &u); err != nil {
		api.writeFailure(w, r, "update the book", err)
		return
	}
	book, err := api.inventory.UpdateBook(r.Context(), id, u)
	if err != nil {
		api.writeFailure(w, r, "update the book", err)
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to update book", zap.String("book.id", id))
	api.writeSuccess(w, r, http.StatusOK, "Book updated successfully.", book, nil)
}

// DeleteBook godoc
// @Summary      Remove a book without active loans
// @Tags         books
// @Produce      json
// @Param        id path string true "book id"
// @Success      200 {object} APIResponse
// @Failure      400 {object} APIError
// @Failure      404 {object} APIError
// @Router       /v1/books/{id} [delete]
func (api *APIHandler) DeleteBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if !api.checkID(w, r, id, BookIDPrefix, "book") {
		return
	}
	if err := api.inventory.DeleteBook(r.Context(), id); err != nil {
		api.writeFailure(w, r, "delete the book", err)
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to delete book", zap.String("book.id", id))
	api.writeSuccess(w, r, http.StatusOK, "Book deleted successfully.", nil, nil)
}
