package httpstats

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/cachelabs/unicache/internal/blockfile"
	"github.com/cachelabs/unicache/internal/index"
	"github.com/cachelabs/unicache/internal/unicache"
)

// handler bundles the cache and metrics collaborators the endpoints need,
// in the manner of dittofs's HealthHandler wrapping a *registry.Registry.
type handler struct {
	cache   *unicache.Cache
	dir     string
	metrics *Metrics
}

// healthz handles GET /healthz - liveness plus a reachability check of
// the cache directory and block file. This is the introspection server's
// analogue of dittofs's HealthHandler.Liveness/Readiness rolled into one,
// since a standalone cache directory has no equivalent of "no shares
// configured" readiness state to distinguish.
func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	if _, err := os.Stat(h.dir); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("cache directory unreachable: "+err.Error()))
		return
	}
	if _, err := os.Stat(filepath.Join(h.dir, blockfile.FileName)); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("block file unreachable: "+err.Error()))
		return
	}
	if _, err := os.Stat(filepath.Join(h.dir, index.FileName)); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("index unreachable: "+err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, healthyResponse(map[string]string{"service": "unicache"}))
}

// stats handles GET /stats - a JSON snapshot of the cache's current
// block/file counts and logical/physical byte totals.
func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	stats := h.cache.Stats()
	if h.metrics != nil {
		h.metrics.SetFromStats(stats.BlockCount, stats.FileCount, stats.PhysicalBytes, stats.LogicalBytes)
	}
	writeJSON(w, http.StatusOK, okResponse(stats))
}
