package main

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Services groups the business services used by the api handlers.
type Services struct {
	Inventory  InventoryServiceProvider
	Loans      LoanServiceProvider
	Queries    LoanQueryServiceProvider
	Engagement EngagementServiceProvider
	Users      UserServiceProvider
}

// NewServices wires every service on top of the same document store.
func NewServices(logger *zap.Logger, config *Config, clock Clocker, ids UIDHandler, store DocumentStore, queue Queuer) *Services {
	validate := NewValidator()
	inventory := NewInventoryService(logger, config, clock, ids, store, validate)
	return &Services{
		Inventory:  inventory,
		Loans:      NewLoanService(logger, config, clock, ids, store, validate, inventory, queue),
		Queries:    NewLoanQueryService(logger, config, clock, store),
		Engagement: NewEngagementService(logger, clock, ids, store, validate),
		Users:      NewUserService(logger, config, clock, ids, store, validate),
	}
}

// storeFailure maps a missing document to notFound and tags anything
// else which is not already a domain error as a store failure.
func storeFailure(op string, err error, notFound error) error {
	if err == nil {
		return nil
	}
	if notFound != nil && errors.Is(err, ErrDocumentNotFound) {
		return notFound
	}
	return storeError(op, err)
}

// ParseLoanStatus accepts an empty value meaning any status.
func ParseLoanStatus(value string) (LoanStatus, error) {
	if value == "" {
		return "", nil
	}
	status := LoanStatus(strings.ToLower(value))
	if !status.IsValid() {
		return "", newDomainError(ErrValidation, "invalid loan status %q", value)
	}
	return status, nil
}

func joinInts(values []int) string {
	s := make([]string, 0, len(values))
	for _, v := range values {
		s = append(s, strconv.Itoa(v))
	}
	return strings.Join(s, ", ")
}

// detached keeps the request values but survives its cancellation. It is
// used by compensations which must run even if the client went away.
func detached(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
