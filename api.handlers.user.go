package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

func (api *APIHandler) CreateUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in UserInput
	if err := DecodeRequestBody(r, &in); err != nil {
		api.writeFailure(w, r, "create the user", err)
		return
	}
	user, err := api.users.CreateUser(r.Context(), in)
	if err != nil {
		api.writeFailure(w, r, "create the user", err)
		return
	}
	api.GetLoggerFromContext(r.Context()).Info("success to create user", zap.String("user.id", user.ID))
	api.writeSuccess(w, r, http.StatusCreated, "User created successfully.", user, nil)
}

func (api *APIHandler) ListUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, err := ParsePageRequest(r.URL.Query())
	if err != nil {
		api.writeFailure(w, r, "list users", err)
		return
	}
	users, meta, err := api.users.ListUsers(r.Context(), page)
	if err != nil {
		api.writeFailure(w, r, "list users", err)
		return
	}
	api.writeSuccess(w, r, http.StatusOK, "Users fetched successfully.", users, &meta)
}

func (api *APIHandler) GetUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if !api.checkID(w, r, id, UserIDPrefix, "user") {
		return
	}
	user, err := api.users.GetUser(r.Context(), id)
	if err != nil {
		api.writeFailure(w, r, "get the user", err)
		return
	}
	api.writeSuccess(w, r, http.StatusOK, "User fetched successfully.", user, nil)
}

func (api *APIHandler) UpdateUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if !api.checkID(w, r, id, UserIDPrefix, "user") {
		return
	}
	var u UserUpdate
	if err := DecodeRequestBody(r, &u); err != nil {
		api.writeFailure(w, r, "update the user", err)
		return
	}
	user, err := api.users.UpdateUser(r.Context(), id, u)
	if err != nil {
		api.writeFailure(w, r, "update the user", err)
		return
	}
	api.writeSuccess(w, r, http.StatusOK, "User updated successfully.", user, nil)
}

// ListUserLoans serves the whole loans history of a user, optionally
// narrowed to one status.
func (api *APIHandler) ListUserLoans(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if !api.checkID(w, r, id, UserIDPrefix, "user") {
		return
	}
	status, err := ParseLoanStatus(r.URL.Query().Get("status"))
	if err != nil {
		api.writeFailure(w, r, "list user loans", err)
		return
	}
	loans, err := api.queries.ListUserLoans(r.Context(), id, status)
	if err != nil {
		api.writeFailure(w, r, "list user loans", err)
		return
	}
	api.writeSuccess(w, r, http.StatusOK, "User loans fetched successfully.", loans, nil)
}

// ListCurrentLoans serves the approved loans of a user with their due countdown.
func (api *APIHandler) ListCurrentLoans(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if !api.checkID(w, r, id, UserIDPrefix, "user") {
		return
	}
	loans, err := api.queries.ListCurrentLoans(r.Context(), id)
	if err != nil {
		api.writeFailure(w, r, "list current loans", err)
		return
	}
	api.writeSuccess(w, r, http.StatusOK, "Current loans fetched successfully.", loans, nil)
}

func (api *APIHandler) ListBookmarks(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if !api.checkID(w, r, id, UserIDPrefix, "user") {
		return
	}
	bookmarks, err := api.engagement.ListUserBookmarks(r.Context(), id)
	if err != nil {
		api.writeFailure(w, r, "list bookmarks", err)
		return
	}
	api.writeSuccess(w, r, http.StatusOK, "Bookmarks fetched successfully.", bookmarks, nil)
}

func (api *APIHandler) AddBookmark(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if !api.checkID(w, r, id, UserIDPrefix, "user") {
		return
	}
	var body struct {
		BookID string `json:"bookId"`
	}
	if err := DecodeRequestBody(r, &body); err != nil {
		api.writeFailure(w, r, "add the bookmark", err)
		return
	}
	bookmark, err := api.engagement.AddBookmark(r.Context(), id, body.BookID)
	if err != nil {
		api.writeFailure(w, r, "add the bookmark", err)
		return
	}
	api.writeSuccess(w, r, http.StatusCreated, "Bookmark added successfully.", bookmark, nil)
}

func (api *APIHandler) RemoveBookmark(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, bookID := ps.ByName("id"), ps.ByName("bookId")
	if !api.checkID(w, r, id, UserIDPrefix, "user") || !api.checkID(w, r, bookID, BookIDPrefix, "book") {
		return
	}
	if err := api.engagement.RemoveBookmark(r.Context(), id, bookID); err != nil {
		api.writeFailure(w, r, "remove the bookmark", err)
		return
	}
	api.writeSuccess(w, r, http.StatusOK, "Bookmark removed successfully.", nil, nil)
}

func (api *APIHandler) ListRatings(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if !api.checkID(w, r, id, UserIDPrefix, "user") {
		return
	}
	ratings, err := api.engagement.ListUserRatings(r.Context(), id)
	if err != nil {
		api.writeFailure(w, r, "list ratings", err)
		return
	}
	api.writeSuccess(w, r, http.StatusOK, "Ratings fetched successfully.", ratings, nil)
}

func (api *APIHandler) AddRating(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if !api.checkID(w, r, id, UserIDPrefix, "user") {
		return
	}
	var in RatingInput
	if err := DecodeRequestBody(r, &in); err != nil {
		api.writeFailure(w, r, "add the rating", err)
		return
	}
	rating, err := api.engagement.AddRating(r.Context(), id, in)
	if err != nil {
		api.writeFailure(w, r, "add the rating", err)
		return
	}
	api.writeSuccess(w, r, http.StatusCreated, "Rating added successfully.", rating, nil)
}

func (api *APIHandler) UpdateRating(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, bookID := ps.ByName("id"), ps.ByName("bookId")
	if !api.checkID(w, r, id, UserIDPrefix, "user") || !api.checkID(w, r, bookID, BookIDPrefix, "book") {
		return
	}
	var u RatingUpdate
	if err := DecodeRequestBody(r, &u); err != nil {
		api.writeFailure(w, r, "update the rating", err)
		return
	}
	rating, err := api.engagement.UpdateRating(r.Context(), id, bookID, u)
	if err != nil {
		api.writeFailure(w, r, "update the rating", err)
		return
	}
	api.writeSuccess(w, r, http.StatusOK, "Rating updated successfully.", rating, nil)
}

func (api *APIHandler) DeleteRating(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, bookID := ps.ByName("id"), ps.ByName("bookId")
	if !api.checkID(w, r, id, UserIDPrefix, "user") || !api.checkID(w, r, bookID, BookIDPrefix, "book") {
		return
	}
	if err := api.engagement.DeleteRating(r.Context(), id, bookID); err != nil {
		api.writeFailure(w, r, "delete the rating", err)
		return
	}
	api.writeSuccess(w, r, http.StatusOK, "Rating deleted successfully.", nil, nil)
}
