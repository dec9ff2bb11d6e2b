package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type routeCase struct {
	name        string
	request     *http.Request
	implemented bool
}

// newRoutesTestAPI provides an api where every path id is rejected so that
// implemented endpoints never answer 404 by looking up a record.
func newRoutesTestAPI(t *testing.T, config *Config) *APIHandler {
	env := newTestEnv(t)
	if config != nil {
		env.config.OpsEndpointsEnable = config.OpsEndpointsEnable
		env.config.ProfilerEndpointsEnable = config.ProfilerEndpointsEnable
	}
	return NewAPIHandler(zap.NewNop(), env.config, &Statistics{started: env.clock.Now()}, env.clock, NewMockUIDHandler("", false), env.services)
}

func runRouteCases(t *testing.T, router *httprouter.Router, testCases []routeCase) {
	t.Helper()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, tc.request)
			if tc.implemented {
				assert.NotEqual(t, 404, w.Code)
			} else {
				assert.Equal(t, 404, w.Code)
			}
		})
	}
}

func emptyMiddlewareMap() *MiddlewareMap {
	return &MiddlewareMap{public: (&Middlewares{}).Chain, ops: (&Middlewares{}).Chain}
}

// TestSetupBookRoutes ensures all expected book endpoints are implemented.
func TestSetupBookRoutes(t *testing.T) {
	testCases := []routeCase{
		{"create book endpoint", httptest.NewRequest(http.MethodPost, "/v1/books", nil), true},
		{"fetch all books endpoint", httptest.NewRequest(http.MethodGet, "/v1/books", nil), true},
		{"fetch single book endpoint", httptest.NewRequest(http.MethodGet, "/v1/books/b:cb8f2136-fae4-4200-85d9-3533c7f8c70d", nil), true},
		{"update book endpoint", httptest.NewRequest(http.MethodPut, "/v1/books/b:cb8f2136-fae4-4200-85d9-3533c7f8c70d", nil), true},
		{"delete book endpoint", httptest.NewRequest(http.MethodDelete, "/v1/books/b:cb8f2136-fae4-4200-85d9-3533c7f8c70d", nil), true},
		{"invalid api endpoint", httptest.NewRequest(http.MethodGet, "/v1", nil), false},
		{"invalid books endpoint", httptest.NewRequest(http.MethodGet, "/books", nil), false},
	}
	api := newRoutesTestAPI(t, nil)
	router := httprouter.New()
	api.SetupBookRoutes(router, emptyMiddlewareMap())
	runRouteCases(t, router, testCases)
}

// TestSetupLoanRoutes ensures the loans lifecycle endpoints are implemented.
func TestSetupLoanRoutes(t *testing.T) {
	id := "l:cb8f2136-fae4-4200-85d9-3533c7f8c70d"
	testCases := []routeCase{
		{"request loan endpoint", httptest.NewRequest(http.MethodPost, "/v1/loans", nil), true},
		{"fetch all loans endpoint", httptest.NewRequest(http.MethodGet, "/v1/loans", nil), true},
		{"fetch single loan endpoint", httptest.NewRequest(http.MethodGet, "/v1/loans/"+id, nil), true},
		{"approve loan endpoint", httptest.NewRequest(http.MethodPut, "/v1/loans/"+id+"/approve", nil), true},
		{"reject loan endpoint", httptest.NewRequest(http.MethodPut, "/v1/loans/"+id+"/reject", nil), true},
		{"return loan endpoint", httptest.NewRequest(http.MethodPut, "/v1/loans/"+id+"/return", nil), true},
		{"dashboard endpoint", httptest.NewRequest(http.MethodGet, "/v1/librarian/dashboard/stats", nil), true},
		{"unknown transition endpoint", httptest.NewRequest(http.MethodPut, "/v1/loans/"+id+"/extend", nil), false},
	}
	api := newRoutesTestAPI(t, nil)
	router := httprouter.New()
	api.SetupLoanRoutes(router, emptyMiddlewareMap())
	runRouteCases(t, router, testCases)
}

// TestSetupUserRoutes ensures the users and engagement endpoints are implemented.
func TestSetupUserRoutes(t *testing.T) {
	base := "/v1/users/u:cb8f2136-fae4-4200-85d9-3533c7f8c70d"
	bookID := "b:cb8f2136-fae4-4200-85d9-3533c7f8c70d"
	testCases := []routeCase{
		{"create user endpoint", httptest.NewRequest(http.MethodPost, "/v1/users", nil), true},
		{"fetch all users endpoint", httptest.NewRequest(http.MethodGet, "/v1/users", nil), true},
		{"fetch single user endpoint", httptest.NewRequest(http.MethodGet, base, nil), true},
		{"update user endpoint", httptest.NewRequest(http.MethodPut, base, nil), true},
		{"user loans endpoint", httptest.NewRequest(http.MethodGet, base+"/loans", nil), true},
		{"user current loans endpoint", httptest.NewRequest(http.MethodGet, base+"/current-loans", nil), true},
		{"fetch bookmarks endpoint", httptest.NewRequest(http.MethodGet, base+"/bookmarks", nil), true},
		{"add bookmark endpoint", httptest.NewRequest(http.MethodPost, base+"/bookmarks", nil), true},
		{"remove bookmark endpoint", httptest.NewRequest(http.MethodDelete, base+"/bookmarks/"+bookID, nil), true},
		{"fetch ratings endpoint", httptest.NewRequest(http.MethodGet, base+"/ratings", nil), true},
		{"add rating endpoint", httptest.NewRequest(http.MethodPost, base+"/ratings", nil), true},
		{"update rating endpoint", httptest.NewRequest(http.MethodPut, base+"/ratings/"+bookID, nil), true},
		{"delete rating endpoint", httptest.NewRequest(http.MethodDelete, base+"/ratings/"+bookID, nil), true},
		{"unknown user endpoint", httptest.NewRequest(http.MethodGet, base+"/friends", nil), false},
	}
	api := newRoutesTestAPI(t, nil)
	router := httprouter.New()
	api.SetupUserRoutes(router, emptyMiddlewareMap())
	runRouteCases(t, router, testCases)
}

// TestSetupOpsRoutes ensures all expected operations endpoints are implemented.
func TestSetupOpsRoutes(t *testing.T) {
	testCases := []routeCase{
		{"fetch configs endpoint", httptest.NewRequest(http.MethodGet, "/ops/configs", nil), true},
		{"fetch stats endpoint", httptest.NewRequest(http.MethodGet, "/ops/stats", nil), true},
		{"maintenance mode endpoint", httptest.NewRequest(http.MethodGet, "/ops/maintenance", nil), true},
		{"reconcile endpoint", httptest.NewRequest(http.MethodPost, "/ops/reconcile", nil), true},
		{"memory stats endpoint", httptest.NewRequest(http.MethodGet, "/ops/debug/vars", nil), true},
		{"invalid ops endpoint", httptest.NewRequest(http.MethodGet, "/ops", nil), false},
		{"unknown ops endpoint", httptest.NewRequest(http.MethodGet, "/ops/unknown", nil), false},
		{"disabled profiler endpoint", httptest.NewRequest(http.MethodGet, "/ops/debug/pprof/", nil), false},
		{"disabled heap profile endpoint", httptest.NewRequest(http.MethodGet, "/ops/debug/pprof/heap", nil), false},
	}
	api := newRoutesTestAPI(t, &Config{ProfilerEndpointsEnable: false})
	router := httprouter.New()
	api.SetupOpsRoutes(router, emptyMiddlewareMap())
	runRouteCases(t, router, testCases)
}

// TestSetupProfilerRoutes ensures the runtime profiles are served once enabled.
func TestSetupProfilerRoutes(t *testing.T) {
	testCases := []routeCase{
		{"profiler index endpoint", httptest.NewRequest(http.MethodGet, "/ops/debug/pprof/", nil), true},
		{"symbol endpoint", httptest.NewRequest(http.MethodGet, "/ops/debug/pprof/symbol", nil), true},
	}
	for _, name := range runtimeProfiles {
		testCases = append(testCases, routeCase{name + " profile endpoint", httptest.NewRequest(http.MethodGet, "/ops/debug/pprof/"+name, nil), true})
	}
	api := newRoutesTestAPI(t, &Config{ProfilerEndpointsEnable: true})
	router := httprouter.New()
	api.SetupOpsRoutes(router, emptyMiddlewareMap())
	runRouteCases(t, router, testCases)
}

// TestSetupRoutes ensures ops endpoints are only exposed once enabled.
func TestSetupRoutes(t *testing.T) {
	testCases := []struct {
		name               string
		OpsEndpointsEnable bool
		request            *http.Request
		implemented        bool
	}{
		{"ops disable:fetch configs endpoint", false, httptest.NewRequest(http.MethodGet, "/ops/configs", nil), false},
		{"ops enable:fetch configs endpoint", true, httptest.NewRequest(http.MethodGet, "/ops/configs", nil), true},
		{"ops disable:index endpoint", false, httptest.NewRequest(http.MethodGet, "/", nil), true},
		{"ops disable:status endpoint", false, httptest.NewRequest(http.MethodGet, "/status", nil), true},
		{"ops disable:books endpoint", false, httptest.NewRequest(http.MethodGet, "/v1/books", nil), true},
		{"ops disable:books endpoint with slash", false, httptest.NewRequest(http.MethodGet, "/v1/books/", nil), true},
		{"ops disable:swagger endpoint", false, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil), true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			api := newRoutesTestAPI(t, &Config{OpsEndpointsEnable: tc.OpsEndpointsEnable})
			router := api.SetupRoutes(httprouter.New(), emptyMiddlewareMap())
			w := httptest.NewRecorder()
			router.ServeHTTP(w, tc.request)
			if tc.implemented {
				assert.NotEqual(t, 404, w.Code)
			} else {
				assert.Equal(t, 404, w.Code)
			}
		})
	}
}
