package main

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// startRedisDockerContainer runs a throwaway redis server. The test is
// skipped when no docker daemon is reachable.
func startRedisDockerContainer(t *testing.T) (string, func()) {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("Failed to start Dockertest: %+v", err)
	}

	err = pool.Client.Ping()
	if err != nil {
		t.Skipf("Could not connect to Docker: %+v", err)
	}

	resource, err := pool.Run("redis", "7.0.10-alpine", nil)
	if err != nil {
		t.Fatalf("Failed to start redis: %+v", err)
	}

	// build address the container is listening on
	addr := net.JoinHostPort("localhost", resource.GetPort("6379/tcp"))

	// ensure to wait for the container to be ready
	err = pool.Retry(func() error {
		client := redis.NewClient(&redis.Options{Addr: addr})
		defer client.Close()
		return client.Ping(context.Background()).Err()
	})
	if err != nil {
		t.Fatalf("Failed to ping Redis: %+v", err)
	}

	destroyFunc := func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Failed to purge resource: %+v", err)
		}
	}

	return addr, destroyFunc
}

func newTestRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	addr, destroyFunc := startRedisDockerContainer(t)
	t.Cleanup(destroyFunc)
	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)

	config := newTestConfig()
	config.Redis = RedisConfig{Host: host, Port: port, PoolSize: 50, DialTimeout: 5 * time.Second}
	client, err := GetRedisClient(config)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisDocumentStore(t *testing.T) {
	client := newTestRedisClient(t)
	config := newTestConfig()
	config.Storage.MaxRetries = 100
	testDocumentStore(t, NewRedisDocumentStore(zap.NewNop(), config, client))

	t.Run("documents live under the namespace", func(t *testing.T) {
		keys, err := client.Keys(context.Background(), config.Storage.Namespace+":books:*").Result()
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"library:books:b:counter", "library:books:b:1"}, keys)
	})
}

// TestRedisLoanLifecycle runs the concurrent loans scenarios over redis.
func TestRedisLoanLifecycle(t *testing.T) {
	client := newTestRedisClient(t)
	config := newTestConfig()
	config.Storage.MaxRetries = 100
	env := newTestEnvWithStore(t, NewRedisDocumentStore(zap.NewNop(), config, client))
	ctx := context.Background()
	book := env.addBook(t, "The Telling", 2)

	loans := make([]Loan, 0, 4)
	for _, name := range []string{"Sutty", "Yara", "Odiedin", "Tong"} {
		loans = append(loans, env.requestLoan(t, env.addUser(t, name).ID, book.ID))
	}

	results := make(chan error, len(loans))
	for _, loan := range loans {
		go func(id string) {
			_, err := env.services.Loans.ApproveLoan(ctx, id, librarian)
			results <- err
		}(loan.ID)
	}
	approved := 0
	for range loans {
		if err := <-results; err == nil {
			approved++
		} else {
			assert.ErrorIs(t, err, ErrUnavailable)
		}
	}
	assert.Equal(t, 2, approved)
	assert.Equal(t, 0, env.book(t, book.ID).AvailableStock)

	report, err := env.services.Inventory.Reconcile(ctx, book.ID)
	require.NoError(t, err)
	assert.False(t, report.Repaired)
	assert.Equal(t, 2, report.Approved)
}

func TestRedisQueue(t *testing.T) {
	client := newTestRedisClient(t)
	queue := NewRedisQueue(client, 100*time.Millisecond)
	ctx := context.Background()
	queuedAt := NewMockClocker().Now()

	t.Run("pop on empty queue", func(t *testing.T) {
		_, _, err := queue.Pop(ctx, ReconcileQueue)
		assert.ErrorIs(t, err, redis.Nil)
	})

	t.Run("tasks are served in order", func(t *testing.T) {
		require.NoError(t, queue.Push(ctx, ReconcileQueue, ReconcileTask{BookID: "b:1", Reason: "first", QueuedAt: queuedAt}))
		require.NoError(t, queue.Push(ctx, ReconcileQueue, ReconcileTask{BookID: "b:2", Reason: "second", QueuedAt: queuedAt}))

		qid, task, err := queue.Pop(ctx, ReconcileQueue)
		require.NoError(t, err)
		assert.Equal(t, ReconcileQueue, qid)
		assert.Equal(t, "b:1", task.BookID)
		assert.True(t, queuedAt.Equal(task.QueuedAt))

		_, task, err = queue.Pop(ctx, ReconcileQueue)
		require.NoError(t, err)
		assert.Equal(t, "second", task.Reason)
	})
}
