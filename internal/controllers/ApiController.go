package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/atomic"

	"ytmeta/internal/archive"
	"ytmeta/internal/models"
	"ytmeta/internal/providers"
	"ytmeta/internal/services"
)

const maxRequestBodySize = 32 << 20 // 32 MB

const defaultIngestLabel = "api"

var (
	errNotFound   = errors.New("not found")
	errBadRequest = errors.New("bad request")
)

type ApiController struct {
	logger     providers.Logger
	service    services.HistoryServiceInterface
	cache      providers.CacheProviderInterface
	metrics    providers.MetricsProviderInterface
	dumpWriter *archive.DumpWriter
	ingestMu   sync.Mutex
	// generation is bumped by every ingest that changes the store and
	// prefixes cache keys, so reads computed before the change never land
	// under a key that later reads use.
	generation atomic.Uint64
	now        func() time.Time
}

func NewApiController(logger providers.Logger, service services.HistoryServiceInterface, cache providers.CacheProviderInterface, metrics providers.MetricsProviderInterface, dumpWriter *archive.DumpWriter) *ApiController {
	return &ApiController{
		logger:     logger,
		service:    service,
		cache:      cache,
		metrics:    metrics,
		dumpWriter: dumpWriter,
		now:        time.Now,
	}
}

type ingestResponse struct {
	Timestamp int64              `json:"timestamp"`
	Result    models.MergeResult `json:"result"`
	RefsDump  string             `json:"refsDump,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func (ac *ApiController) cacheKey(key string) string {
	return strconv.FormatUint(ac.generation.Load(), 10) + ":" + key
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, key string, compute func() (any, error)) {
	cacheKey := ac.cacheKey(key)
	if data, ok := ac.cache.Get(cacheKey); ok {
		writeJSON(w, http.StatusOK, data)
		return
	}

	result, err := compute()
	switch {
	case errors.Is(err, errNotFound):
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	case errors.Is(err, errBadRequest):
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	case err != nil:
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)
	writeJSON(w, http.StatusOK, gson)
}

// requestedTime reads t as epoch seconds, defaulting to now.
func (ac *ApiController) requestedTime(r *http.Request) (int64, error) {
	raw := r.URL.Query().Get("t")
	if raw == "" {
		return ac.now().Unix(), nil
	}
	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errBadRequest
	}
	return ts, nil
}

// Snapshot serves GET /snapshot?id=<video>&t=<epoch seconds>.
func (ac *ApiController) Snapshot(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	ts, err := ac.requestedTime(r)
	if id == "" || err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	ac.serveFromCacheOrCompute(w, "snapshot:"+id+":"+strconv.FormatInt(ts, 10), func() (any, error) {
		snap, ok := ac.service.Snapshot(id, ts)
		if !ok {
			return nil, errNotFound
		}
		ac.metrics.IncResolve(snap.Found())
		return snap, nil
	})
}

// History serves GET /history?id=<video> with snapshots in insertion order.
func (ac *ApiController) History(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	ac.serveFromCacheOrCompute(w, "history:"+id, func() (any, error) {
		entries, ok := ac.service.GetHistory(id)
		if !ok {
			return nil, errNotFound
		}
		return entries, nil
	})
}

func (ac *ApiController) Entities(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, "entities", func() (any, error) {
		return ac.service.GetEntities(), nil
	})
}

// Ingest merges a full dump posted as the body. The batch timestamp is the
// dump time, or now when the dump carries none. ?label= names the refs dump.
func (ac *ApiController) Ingest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var dump models.Dump
	if err := json.NewDecoder(r.Body).Decode(&dump); err != nil {
		ac.logger.Warnf(providers.TypePost, "Rejected dump: %s", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if dump.DumpTime <= 0 {
		dump.DumpTime = ac.now().Unix()
	}

	label := r.URL.Query().Get("label")
	if label == "" {
		label = defaultIngestLabel
	}

	ac.ingestMu.Lock()
	defer ac.ingestMu.Unlock()

	resp := ingestResponse{Timestamp: dump.DumpTime}
	if ac.dumpWriter != nil {
		path, err := ac.dumpWriter.Write(&dump, label)
		if err != nil {
			ac.logger.Errorf(providers.TypePost, "Cannot write refs dump: %s", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		resp.RefsDump = path
	}

	resp.Result = ac.service.Ingest(&dump, dump.DumpTime)
	ac.metrics.ObserveMerge(resp.Result)
	if resp.Result.Changed() {
		ac.generation.Inc()
		ac.cache.Clear()
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, gson)
}
