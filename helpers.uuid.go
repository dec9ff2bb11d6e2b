package main

import (
	"strings"

	"github.com/gofrs/uuid"
)

var _ UIDHandler = (*IDsHandler)(nil) // ensure IDsHandler implements UIDHandler.

// pairNamespace scopes the derived identifiers of pair records.
var pairNamespace = uuid.Must(uuid.FromString("6f1c2a8e-4d7b-4b8e-9a51-2f6d0c3e7b14"))

// UIDHandler generates and checks prefixed identifiers.
type UIDHandler interface {
	Generate(prefix string) string
	Derive(prefix string, parts ...string) string
	IsValid(id, prefix string) bool
}

// IDsHandler implements the UIDHandler interface.
type IDsHandler struct{}

// NewIDsHandler returns a ready to use IDsHandler.
func NewIDsHandler() *IDsHandler {
	return &IDsHandler{}
}

// Generate provides a random unique identifier.
func (idh *IDsHandler) Generate(prefix string) string {
	id, _ := uuid.NewV4()
	return prefix + ":" + id.String()
}

// Derive provides the same identifier for the same parts. It is used for
// records which must be unique per (user, book) pair.
func (idh *IDsHandler) Derive(prefix string, parts ...string) string {
	return prefix + ":" + uuid.NewV5(pairNamespace, strings.Join(parts, "|")).String()
}

// IsValid checks if a given string is a valid uuid after removal of custom prefix.
func (idh *IDsHandler) IsValid(id, prefix string) bool {
	if !strings.HasPrefix(id, prefix+":") {
		return false
	}
	return uuid.FromStringOrNil(strings.TrimPrefix(id, prefix+":")) != uuid.Nil
}
