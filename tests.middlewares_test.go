package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMiddlewaresTestAPI() *APIHandler {
	clock := NewMockClocker()
	return NewAPIHandler(zap.NewNop(), newTestConfig(), &Statistics{started: clock.Now()}, clock, NewMockUIDHandler("abc", true), nil)
}

// TestMiddlewaresStacks ensures we get both public and ops middlewares
// stacks with exact number of elements in those stacks.
func TestMiddlewaresStacks(t *testing.T) {
	pub, ops := newMiddlewaresTestAPI().MiddlewaresStacks()
	assert.Equal(t, 7, len(*pub))
	assert.Equal(t, 6, len(*ops))
}

// TestChain ensures each middleware in the stack is called as well the handler.
func TestChain(t *testing.T) {
	queue := make(chan int, 4)
	step := func(n int) MiddlewareFunc {
		return func(next httprouter.Handle) httprouter.Handle {
			return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
				queue <- n
				next(w, r, ps)
			}
		}
	}
	middlewares := Middlewares{step(1), step(2), step(3)}
	handler := func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		queue <- 4
	}

	chained := (&middlewares).Chain(handler)
	chained(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/books", nil), nil)
	close(queue)

	var order []int
	for n := range queue {
		order = append(order, n)
	}
	assert.Equal(t, []int{1, 2, 3, 4}, order)
}

func TestEmptyChain(t *testing.T) {
	called := false
	handler := func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) { called = true }
	(&Middlewares{}).Chain(handler)(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.True(t, called)
}

// TestRequestsCounterMiddleware ensures the request counter increment.
func TestRequestsCounterMiddleware(t *testing.T) {
	api := newMiddlewaresTestAPI()
	var num uint64
	handler := func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		num = GetRequestNumberFromContext(r.Context())
	}
	wrapped := api.RequestsCounterMiddleware(handler)
	wrapped(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/books", nil), nil)
	wrapped(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/books", nil), nil)
	assert.Equal(t, uint64(2), api.stats.called)
	assert.Equal(t, uint64(2), num)
}

func TestRequestIDMiddleware(t *testing.T) {
	api := newMiddlewaresTestAPI()
	var requestID string
	handler := func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		requestID = GetValueFromContext(r.Context(), RequestIDContextKey)
		assert.NotSame(t, api.logger, api.GetLoggerFromContext(r.Context()))
	}
	w := httptest.NewRecorder()
	api.RequestIDMiddleware(handler)(w, httptest.NewRequest(http.MethodGet, "/v1/books", nil), nil)
	assert.Equal(t, "r:abc", requestID)
	assert.Equal(t, "r:abc", w.Header().Get("X-Request-ID"))
}

func TestStatsMiddleware(t *testing.T) {
	api := newMiddlewaresTestAPI()
	handler := func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("tea"))
	}
	wrapped := api.StatsMiddleware(handler)
	for i := 0; i < 3; i++ {
		wrapped(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/books", nil), nil)
	}
	wrapped(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/books", nil), nil)
	assert.Equal(t, uint64(4), api.stats.status[http.StatusTeapot])
}

func TestCustomResponseWriter(t *testing.T) {
	cw := NewCustomResponseWriter(httptest.NewRecorder(), nil)
	_, err := cw.Write([]byte("hello"))
	require.NoError(t, err)
	cw.WriteHeader(http.StatusInternalServerError)
	assert.Equal(t, http.StatusOK, cw.Status())
	assert.Equal(t, 5, cw.Bytes())
	assert.ErrorIs(t, http.NewResponseController(cw).SetWriteDeadline(NewMockClocker().Now()), http.ErrNotSupported)
}

func TestMaintenanceModeMiddleware(t *testing.T) {
	api := newMiddlewaresTestAPI()
	called := false
	handler := func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) { called = true }
	wrapped := api.MaintenanceModeMiddleware(handler)

	w := httptest.NewRecorder()
	wrapped(w, httptest.NewRequest(http.MethodGet, "/v1/books", nil), nil)
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, w.Code)

	called = false
	api.mode.enabled.Store(true)
	w = httptest.NewRecorder()
	wrapped(w, httptest.NewRequest(http.MethodGet, "/v1/books", nil), nil)
	assert.False(t, called)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCORSMiddleware(t *testing.T) {
	w := httptest.NewRecorder()
	CORSMiddleware(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {})(w, httptest.NewRequest(http.MethodOptions, "/v1/books", nil), nil)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestPanicRecoveryMiddleware(t *testing.T) {
	api := newMiddlewaresTestAPI()
	handler := func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		w.Header().Set("X-Request-ID", "r:panic")
		panic("unexpected")
	}
	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		api.PanicRecoveryMiddleware(handler)(w, httptest.NewRequest(http.MethodGet, "/v1/books", nil), nil)
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp APIError
	require.NoError(t, codec.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "r:panic", resp.RequestID)
	assert.Equal(t, "failed to process the request.", resp.Error)
}
