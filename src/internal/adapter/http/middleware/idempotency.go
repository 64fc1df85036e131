package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/api-sage/interop-settlement/src/internal/commons"
	"github.com/api-sage/interop-settlement/src/internal/logger"
	"github.com/redis/go-redis/v9"
)

const (
	IdempotencyHeader    = "Idempotency-Key"
	IdempotencyHitHeader = "X-Idempotency-Hit"

	idempotencyCacheTTL   = 24 * time.Hour
	idempotencyLockTTL    = 10 * time.Second
	idempotencyKeyPrefix  = "idempotency:"
	idempotencyLockPrefix = "idempotency-lock:"
)

type cachedResponse struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

type responseRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (rw *responseRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseRecorder) Write(b []byte) (int, error) {
	rw.body.Write(b)
	return rw.ResponseWriter.Write(b)
}

// Idempotency replays the stored response of a POST already served under the
// same Idempotency-Key for the same actor and path. Requests without the
// header pass through. Only 2xx responses are stored.
func Idempotency(rdb redis.UniversalClient) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
			if key == "" || r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			scope := Tenant(r) + ":" + ActorFromContext(ctx) + ":" + r.URL.Path + "?" + r.URL.RawQuery + ":" + key
			cacheKey := idempotencyKeyPrefix + scope
			lockKey := idempotencyLockPrefix + scope

			raw, err := rdb.Get(ctx, cacheKey).Bytes()
			if err == nil {
				var cached cachedResponse
				if err := json.Unmarshal(raw, &cached); err == nil {
					logger.Info("idempotency middleware cache hit", logger.Fields{"path": r.URL.Path})
					w.Header().Set("Content-Type", "application/json")
					w.Header().Set(IdempotencyHitHeader, "true")
					w.WriteHeader(cached.Status)
					_, _ = w.Write(cached.Body)
					return
				}
			} else if err != redis.Nil {
				logger.Error("idempotency middleware cache read failed", err, logger.Fields{"path": r.URL.Path})
				writeEnvelope(w, http.StatusInternalServerError, "idempotency store unavailable")
				return
			}

			acquired, err := rdb.SetNX(ctx, lockKey, "processing", idempotencyLockTTL).Result()
			if err != nil {
				logger.Error("idempotency middleware lock failed", err, logger.Fields{"path": r.URL.Path})
				writeEnvelope(w, http.StatusInternalServerError, "idempotency store unavailable")
				return
			}
			if !acquired {
				logger.Info("idempotency middleware concurrent request", logger.Fields{"path": r.URL.Path})
				writeEnvelope(w, http.StatusConflict, "a request with this idempotency key is in progress")
				return
			}
			defer func() {
				if err := rdb.Del(ctx, lockKey).Err(); err != nil {
					logger.Warn("idempotency middleware lock release failed", logger.Fields{"path": r.URL.Path, "error": err.Error()})
				}
			}()

			rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status < 200 || rec.status >= 300 {
				return
			}
			payload, err := json.Marshal(cachedResponse{Status: rec.status, Body: rec.body.Bytes()})
			if err != nil {
				return
			}
			if err := rdb.Set(ctx, cacheKey, payload, idempotencyCacheTTL).Err(); err != nil {
				logger.Warn("idempotency middleware cache write failed", logger.Fields{"path": r.URL.Path, "error": err.Error()})
			}
		})
	}
}

func writeEnvelope(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(commons.ErrorResponse[struct{}](message))
}
