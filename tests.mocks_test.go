package main

import (
	"context"
	"sync"
	"time"
)

// This file contains mocks definitions needed to perform unit tests.

// MockDocumentStore lets each test define the storage behavior it needs.
// Unset functions are delegated to the wrapped store when there is one.
type MockDocumentStore struct {
	DocumentStore
	GetFunc    func(ctx context.Context, collection, id string) (Document, error)
	CreateFunc func(ctx context.Context, collection, id string, doc interface{}) error
	UpdateFunc func(ctx context.Context, collection, id string, fields map[string]interface{}) error
	MutateFunc func(ctx context.Context, collection, id string, fn MutateFunc) error
	DeleteFunc func(ctx context.Context, collection, id string) error
	QueryFunc  func(ctx context.Context, collection string, q Query) ([]Document, error)
}

// Get mocks the retrieval of a document.
func (m *MockDocumentStore) Get(ctx context.Context, collection, id string) (Document, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, collection, id)
	}
	return m.DocumentStore.Get(ctx, collection, id)
}

// Create mocks the insertion of a document.
func (m *MockDocumentStore) Create(ctx context.Context, collection, id string, doc interface{}) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, collection, id, doc)
	}
	return m.DocumentStore.Create(ctx, collection, id, doc)
}

// Update mocks the fields replacement of a document.
func (m *MockDocumentStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, collection, id, fields)
	}
	return m.DocumentStore.Update(ctx, collection, id, fields)
}

// Mutate mocks the atomic rewrite of a document.
func (m *MockDocumentStore) Mutate(ctx context.Context, collection, id string, fn MutateFunc) error {
	if m.MutateFunc != nil {
		return m.MutateFunc(ctx, collection, id, fn)
	}
	return m.DocumentStore.Mutate(ctx, collection, id, fn)
}

// Delete mocks the removal of a document.
func (m *MockDocumentStore) Delete(ctx context.Context, collection, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, collection, id)
	}
	return m.DocumentStore.Delete(ctx, collection, id)
}

// Query mocks a collection scan.
func (m *MockDocumentStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, collection, q)
	}
	return m.DocumentStore.Query(ctx, collection, q)
}

// MockClocker implements a fake and movable TickerClocker.
type MockClocker struct {
	mu      sync.Mutex
	MockNow time.Time
}

// NewMockClocker returns a mocked instance with fixed time. This
// equals to `Sun, 02 Jul 2023 00:00:00 UTC` in time.RFC1123 format.
func NewMockClocker() *MockClocker {
	return &MockClocker{MockNow: time.Date(2023, 0o7, 0o2, 0o0, 0o0, 0o0, 0o00000000, time.UTC)}
}

// Now returns the current mocked time.
func (mck *MockClocker) Now() time.Time {
	mck.mu.Lock()
	defer mck.mu.Unlock()
	return mck.MockNow
}

// Advance moves the mocked time forward.
func (mck *MockClocker) Advance(d time.Duration) {
	mck.mu.Lock()
	mck.MockNow = mck.MockNow.Add(d)
	mck.mu.Unlock()
}

// NewTicker provides a real ticker so workers loops can be driven.
func (mck *MockClocker) NewTicker(d time.Duration) *time.Ticker {
	return time.NewTicker(d)
}

// MockUIDHandler implements a fake UIDHandler.
type MockUIDHandler struct {
	MockedUID string
	Valid     bool
}

// NewMockUIDHandler returns a mocked instance with predictable id.
func NewMockUIDHandler(id string, valid bool) *MockUIDHandler {
	return &MockUIDHandler{MockedUID: id, Valid: valid}
}

// Generate constructs a predictable id to be used as mock.
func (muid *MockUIDHandler) Generate(prefix string) string {
	return prefix + ":" + muid.MockedUID
}

// Derive concatenates the parts so the result stays readable in assertions.
func (muid *MockUIDHandler) Derive(prefix string, parts ...string) string {
	id := prefix
	for _, p := range parts {
		id += ":" + p
	}
	return id
}

// IsValid mocks IsValid behavior by providing configured status.
func (muid *MockUIDHandler) IsValid(_, _ string) bool {
	return muid.Valid
}

// MockQueuer records the pushed tasks and serves them back on Pop.
type MockQueuer struct {
	mu       sync.Mutex
	Tasks    []ReconcileTask
	PushFunc func(ctx context.Context, qid string, task ReconcileTask) error
	PopFunc  func(ctx context.Context, qids ...string) (string, ReconcileTask, error)
}

// Push mocks the enqueue of a task.
func (mq *MockQueuer) Push(ctx context.Context, qid string, task ReconcileTask) error {
	if mq.PushFunc != nil {
		return mq.PushFunc(ctx, qid, task)
	}
	mq.mu.Lock()
	mq.Tasks = append(mq.Tasks, task)
	mq.mu.Unlock()
	return nil
}

// Pop mocks the dequeue of a task.
func (mq *MockQueuer) Pop(ctx context.Context, qids ...string) (string, ReconcileTask, error) {
	return mq.PopFunc(ctx, qids...)
}

// Pushed returns a copy of the recorded tasks.
func (mq *MockQueuer) Pushed() []ReconcileTask {
	mq.mu.Lock()
	defer mq.mu.Unlock()
	return append([]ReconcileTask(nil), mq.Tasks...)
}

// MockReconciler records the reconciled books.
type MockReconciler struct {
	mu              sync.Mutex
	Books           []string
	All             int
	ReconcileFunc   func(ctx context.Context, bookID string) (ReconcileReport, error)
	ReconcileAllErr error
}

func (mr *MockReconciler) Reconcile(ctx context.Context, bookID string) (ReconcileReport, error) {
	mr.mu.Lock()
	mr.Books = append(mr.Books, bookID)
	mr.mu.Unlock()
	if mr.ReconcileFunc != nil {
		return mr.ReconcileFunc(ctx, bookID)
	}
	return ReconcileReport{BookID: bookID}, nil
}

func (mr *MockReconciler) ReconcileAll(_ context.Context) ([]ReconcileReport, error) {
	mr.mu.Lock()
	mr.All++
	mr.mu.Unlock()
	return nil, mr.ReconcileAllErr
}

func (mr *MockReconciler) calls() ([]string, int) {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	return append([]string(nil), mr.Books...), mr.All
}
