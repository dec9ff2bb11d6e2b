package main

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestConfig returns the defaults used by the services tests.
func newTestConfig() *Config {
	config := &Config{
		Server: ServerConfig{LongRequestWriteTimeout: time.Second},
		BoltDB: BoltDBConfig{Timeout: 5 * time.Second},
	}
	setDefaults(config)
	return config
}

// newTestBoltStore returns a document store in a temporary file which
// is removed at the end of the test.
func newTestBoltStore(t *testing.T) DocumentStore {
	t.Helper()
	f, err := os.CreateTemp("", "tmp.bolt.db-")
	require.NoError(t, err, "failed in creating a test bolt file")
	f.Close()

	client, err := GetBoltDBClient(&Config{BoltDB: BoltDBConfig{FilePath: f.Name(), Timeout: 5 * time.Second}})
	require.NoError(t, err, "failed in creating a test bolt store")
	t.Cleanup(func() {
		client.Close()
		os.Remove(f.Name())
	})
	return NewBoltDocumentStore(zap.NewNop(), client)
}

// testEnv bundles real services over a temporary bolt store.
type testEnv struct {
	config   *Config
	clock    *MockClocker
	store    DocumentStore
	queue    *MockQueuer
	services *Services
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithStore(t, newTestBoltStore(t))
}

func newTestEnvWithStore(t *testing.T, store DocumentStore) *testEnv {
	t.Helper()
	env := &testEnv{
		config: newTestConfig(),
		clock:  NewMockClocker(),
		store:  store,
		queue:  &MockQueuer{},
	}
	env.services = NewServices(zap.NewNop(), env.config, env.clock, NewIDsHandler(), store, env.queue)
	return env
}

func (env *testEnv) addBook(t *testing.T, title string, stock int) Book {
	t.Helper()
	book, err := env.services.Inventory.CreateBook(context.Background(), BookInput{Title: title, Author: "Ursula K. Le Guin", Stock: stock})
	require.NoError(t, err)
	return book
}

func (env *testEnv) addUser(t *testing.T, name string) User {
	t.Helper()
	user, err := env.services.Users.CreateUser(context.Background(), UserInput{Name: name, Email: "reader@library.test"})
	require.NoError(t, err)
	return user
}

func (env *testEnv) requestLoan(t *testing.T, userID, bookID string) Loan {
	t.Helper()
	loan, err := env.services.Loans.RequestLoan(context.Background(), LoanRequest{UserID: userID, BookID: bookID, LoanDuration: 14})
	require.NoError(t, err)
	return loan
}

func (env *testEnv) book(t *testing.T, id string) Book {
	t.Helper()
	book, err := env.services.Inventory.GetBook(context.Background(), id)
	require.NoError(t, err)
	return book
}
