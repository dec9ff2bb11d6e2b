package main

import (
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Host: "0.0.0.0", Port: "8080"},
			Redis:  RedisConfig{Host: "localhost", Port: "6379"},
		}
	}

	t.Run("defaults and build infos", func(t *testing.T) {
		config := valid()
		require.NoError(t, InitConfig(config, "abc123", "v1.0.0", "2023-07-02"))
		assert.Equal(t, "abc123", config.GitCommit)
		assert.Equal(t, "v1.0.0", config.GitTag)
		assert.Equal(t, RedisDriver, config.Storage.Driver)
		assert.Equal(t, []int{7, 14, 21}, config.Loans.Durations)
		assert.Equal(t, 30*time.Second, config.Loans.ClaimGracePeriod)
		assert.Equal(t, PaginationConfig{DefaultLimit: 10, MaxLimit: 100}, config.Pagination)
		assert.Equal(t, ReconcileQueue, config.Reconcile.QueueName)
	})

	testCases := []struct {
		name   string
		change func(*Config)
	}{
		{"missing server port", func(c *Config) { c.Server.Port = "" }},
		{"missing redis host", func(c *Config) { c.Redis.Host = "" }},
		{"unknown storage driver", func(c *Config) { c.Storage.Driver = "mongo" }},
		{"bolt driver without file", func(c *Config) { c.Storage.Driver = BoltDriver }},
		{"negative loan duration", func(c *Config) { c.Loans.Durations = []int{7, -1} }},
	}
	for _, tc := range testCases {
		t.Run("should fail: "+tc.name, func(t *testing.T) {
			config := valid()
			tc.change(config)
			assert.Error(t, InitConfig(config, "", "", ""))
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	content := `
server:
  host: 127.0.0.1
  port: "8080"
storage:
  driver: bolt
loans:
  durations: [3, 10]
  claim_grace_period: 1m
`
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	config, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", config.Server.Host)
	assert.Equal(t, BoltDriver, config.Storage.Driver)
	assert.Equal(t, []int{3, 10}, config.Loans.Durations)
	assert.Equal(t, time.Minute, config.Loans.ClaimGracePeriod)

	t.Setenv("LIBR_LOANS_DURATIONS", "5,15")
	t.Setenv("LIBR_SERVER_PORT", "9090")
	require.NoError(t, LoadConfigEnvs("LIBR", config))
	assert.Equal(t, []int{5, 15}, config.Loans.Durations)
	assert.Equal(t, "9090", config.Server.Port)

	_, err = LoadConfigFile(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestPageRequest(t *testing.T) {
	config := PaginationConfig{DefaultLimit: 10, MaxLimit: 100}
	assert.Equal(t, PageRequest{Page: 1, Limit: 10}, PageRequest{}.normalize(config))
	assert.Equal(t, PageRequest{Page: 3, Limit: 100}, PageRequest{Page: 3, Limit: 500}.normalize(config))

	p, err := ParsePageRequest(url.Values{"page": {"2"}, "limit": {"25"}})
	require.NoError(t, err)
	assert.Equal(t, PageRequest{Page: 2, Limit: 25}, p)

	_, err = ParsePageRequest(url.Values{"limit": {"-4"}})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "limit must be a positive number", err.Error())
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	page, meta := paginate(items, PageRequest{Page: 2, Limit: 2})
	assert.Equal(t, []int{3, 4}, page)
	assert.Equal(t, Pagination{Page: 2, Limit: 2, TotalItems: 5, TotalPages: 3}, meta)

	page, _ = paginate(items, PageRequest{Page: 3, Limit: 2})
	assert.Equal(t, []int{5}, page)

	page, meta = paginate(items, PageRequest{Page: 4, Limit: 2})
	assert.Empty(t, page)
	assert.Equal(t, 3, meta.TotalPages)

	page, meta = paginate(items, PageRequest{Page: math.MaxInt / 10, Limit: 100})
	assert.NotNil(t, page)
	assert.Empty(t, page)
	assert.Equal(t, 1, meta.TotalPages)

	page, _ = paginate(items, PageRequest{Page: 1, Limit: math.MaxInt})
	assert.Equal(t, items, page)

	page, meta = paginate([]int{}, PageRequest{Page: 1, Limit: 10})
	assert.NotNil(t, page)
	assert.Empty(t, page)
	assert.Equal(t, 0, meta.TotalPages)
}

func TestIDsHandler(t *testing.T) {
	ids := NewIDsHandler()

	id := ids.Generate(BookIDPrefix)
	assert.True(t, strings.HasPrefix(id, "b:"))
	assert.True(t, ids.IsValid(id, BookIDPrefix))
	assert.False(t, ids.IsValid(id, LoanIDPrefix))
	assert.False(t, ids.IsValid("b:not-a-uuid", BookIDPrefix))
	assert.NotEqual(t, id, ids.Generate(BookIDPrefix))

	claim := ids.Derive(ClaimIDPrefix, "u:1", "b:1")
	assert.Equal(t, claim, ids.Derive(ClaimIDPrefix, "u:1", "b:1"))
	assert.NotEqual(t, claim, ids.Derive(ClaimIDPrefix, "u:1", "b:2"))
	assert.True(t, ids.IsValid(claim, ClaimIDPrefix))
}

func TestDecodeRequestBody(t *testing.T) {
	var in BookInput

	err := DecodeRequestBody(httptest.NewRequest(http.MethodPost, "/v1/books", nil), &in)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "request body is empty", err.Error())

	err = DecodeRequestBody(httptest.NewRequest(http.MethodPost, "/v1/books", strings.NewReader("{bad")), &in)
	assert.ErrorIs(t, err, ErrValidation)

	err = DecodeRequestBody(httptest.NewRequest(http.MethodPost, "/v1/books", strings.NewReader(`{"title":"Lavinia","stock":2}`)), &in)
	require.NoError(t, err)
	assert.Equal(t, "Lavinia", in.Title)
	assert.Equal(t, 2, in.Stock)
}

func TestGetRequestSourceIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.8:51234"
	assert.Equal(t, "10.0.0.8", GetRequestSourceIP(req))

	req.Header.Set("X-FORWARDED-FOR", "bogus, 192.168.1.4")
	assert.Equal(t, "192.168.1.4", GetRequestSourceIP(req))

	req.Header.Set("X-REAL-IP", "172.16.0.1")
	assert.Equal(t, "172.16.0.1", GetRequestSourceIP(req))
}

func TestHTTPStatusFromError(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatusFromError(ErrActiveLoanExists))
	assert.Equal(t, http.StatusBadRequest, HTTPStatusFromError(ErrStockBelowLoaned))
	assert.Equal(t, http.StatusBadRequest, HTTPStatusFromError(ErrLoanNotApproved))
	assert.Equal(t, http.StatusNotFound, HTTPStatusFromError(ErrBookNotFound))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusFromError(storeFailure("get book", os.ErrDeadlineExceeded, nil)))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusFromError(os.ErrClosed))
}

func TestCreateLogFilePath(t *testing.T) {
	now := NewMockClocker().Now()
	assert.Equal(t, filepath.Join("logs", "20230702.000000.prod.log"), CreateLogFilePath("./logs", true, now))
	assert.Equal(t, filepath.Join("logs", "20230702.013000.dev.log"), CreateLogFilePath("./logs", false, now.Add(90*time.Minute)))
}
