package httpstats_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cachelabs/unicache/internal/httpstats"
	"github.com/cachelabs/unicache/internal/unicache"
)

func newTestCache(t *testing.T) (*unicache.Cache, string) {
	t.Helper()
	dir := t.TempDir()
	c, err := unicache.Open(dir, unicache.Options{BlockSize: 4})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, dir
}

func TestHealthz_ReportsHealthyForValidCache(t *testing.T) {
	cache, dir := newTestCache(t)
	_, err := cache.StoreFile("f1", strings.NewReader("AAAA"))
	require.NoError(t, err)

	router := httpstats.NewRouter(cache, dir, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStats_ReturnsCacheSnapshot(t *testing.T) {
	cache, dir := newTestCache(t)
	_, err := cache.StoreFile("f1", strings.NewReader("AAAABBBB"))
	require.NoError(t, err)

	router := httpstats.NewRouter(cache, dir, nil)
	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data unicache.Stats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Data.BlockCount)
	assert.Equal(t, 1, body.Data.FileCount)
}

func TestMetrics_ExposesPrometheusFormat(t *testing.T) {
	cache, dir := newTestCache(t)
	metrics := httpstats.NewMetrics()
	metrics.RecordStore("ok")

	router := httpstats.NewRouter(cache, dir, metrics)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "unicache_store_operations_total")
	assert.Contains(t, body, "unicache_blocks_total")
}
