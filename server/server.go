// Package server is the HTTP backend the dashboard reads from. It proxies
// CoinGecko and falls back to the last good payload when the upstream fails.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cryptotracker/api"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	sourceLive  = "live"
	sourceCache = "cache"
)

// Upstream is the market data provider.
type Upstream interface {
	TopCoins(ctx context.Context) ([]api.Coin, error)
	History(ctx context.Context, id string) (*api.HistoryData, error)
}

type Server struct {
	upstream Upstream
	store    Store
	log      *logrus.Logger
	now      func() time.Time
}

func New(upstream Upstream, store Store, log *logrus.Logger) *Server {
	return &Server{
		upstream: upstream,
		store:    store,
		log:      log,
		now:      time.Now,
	}
}

type payload struct {
	Data     interface{} `json:"data"`
	Source   string      `json:"source"`
	CachedAt *string     `json:"cached_at"`
}

type errorPayload struct {
	Error string `json:"error"`
}

// Handler returns the routed handler with CORS, request ids and access logs.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+api.ListPath, s.handleCryptos)
	mux.HandleFunc("GET /api/crypto/{id}/history", s.handleHistory)
	return s.withRequestID(s.withLogging(withCORS(mux)))
}

func (s *Server) handleCryptos(w http.ResponseWriter, r *http.Request) {
	coins, err := s.RefreshCryptos(r.Context())
	if err == nil {
		writeJSON(w, http.StatusOK, payload{Data: coins, Source: sourceLive})
		return
	}
	s.entry(r).WithError(err).Warn("Upstream market data failed")

	if entry, ok := s.cached(r.Context(), cryptosKey); ok {
		writeJSON(w, http.StatusOK, cachedPayload(entry))
		return
	}
	writeJSON(w, http.StatusBadGateway, errorPayload{Error: "Unable to fetch cryptocurrency data."})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	history, err := s.RefreshHistory(r.Context(), id)
	if err == nil {
		writeJSON(w, http.StatusOK, payload{Data: history, Source: sourceLive})
		return
	}
	s.entry(r).WithError(err).WithField("coin", id).Warn("Upstream history failed")

	if entry, ok := s.cached(r.Context(), historyKey(id)); ok {
		writeJSON(w, http.StatusOK, cachedPayload(entry))
		return
	}
	writeJSON(w, http.StatusBadGateway, errorPayload{Error: fmt.Sprintf("Unable to fetch price history for %s.", id)})
}

// RefreshCryptos fetches the top coins and stores them as the fallback.
func (s *Server) RefreshCryptos(ctx context.Context) ([]api.Coin, error) {
	coins, err := s.upstream.TopCoins(ctx)
	if err != nil {
		return nil, err
	}
	s.save(ctx, cryptosKey, coins)
	return coins, nil
}

// RefreshHistory fetches one coin's history and stores it as the fallback.
func (s *Server) RefreshHistory(ctx context.Context, id string) (*api.HistoryData, error) {
	history, err := s.upstream.History(ctx, id)
	if err != nil {
		return nil, err
	}
	s.save(ctx, historyKey(id), history)
	return history, nil
}

// save stores v under key. Cache failures are logged and otherwise ignored.
func (s *Server) save(ctx context.Context, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Error("Encoding cache entry failed")
		return
	}
	if err := s.store.Put(ctx, key, Entry{Data: data, CachedAt: s.now().UTC()}); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("Writing cache entry failed")
	}
}

// cached returns the stored entry for key. An empty list or null payload
// counts as nothing cached.
func (s *Server) cached(ctx context.Context, key string) (Entry, bool) {
	entry, err := s.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.WithError(err).WithField("key", key).Warn("Reading cache entry failed")
		}
		return Entry{}, false
	}
	data := bytes.TrimSpace(entry.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte("[]")) {
		return Entry{}, false
	}
	return entry, true
}

func cachedPayload(entry Entry) payload {
	stamp := entry.CachedAt.UTC().Format(time.RFC3339)
	return payload{Data: entry.Data, Source: sourceCache, CachedAt: &stamp}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Debug("Writing response failed")
	}
}

type ctxKey int

const requestIDKey ctxKey = iota

// RequestID returns the id assigned to the request by the server.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func (s *Server) entry(r *http.Request) *logrus.Entry {
	return s.log.WithFields(logrus.Fields{
		"request_id": RequestID(r.Context()),
		"path":       r.URL.Path,
	})
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"request_id": RequestID(r.Context()),
			"duration":   s.now().Sub(start).String(),
		}).Info("request")
	})
}

// withCORS allows any origin and answers preflight requests.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			if h := r.Header.Get("Access-Control-Request-Headers"); h != "" {
				w.Header().Set("Access-Control-Allow-Headers", h)
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
