package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/handler/http/response"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
)

const (
	IdempotencyKeyHeader      = "Idempotency-Key"
	IdempotencyReplayedHeader = "Idempotent-Replayed"

	idempotencyInFlight = "in-flight"
	maxIdempotencyKey   = 128
)

type storedResponse struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

// IdempotencyKeyFor namespaces a client key by employee so two callers
// cannot collide.
func IdempotencyKeyFor(employeeID, key string) string {
	return "idempotency:" + employeeID + ":" + key
}

// Idempotency replays the first response for a repeated Idempotency-Key.
// Requests without the header pass through. Server errors are not stored so
// the client may retry. When Redis is unreachable requests pass through.
// It must run after AuthRequired.
func Idempotency(client redis.Cmdable, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyKeyHeader)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(key) > maxIdempotencyKey {
				response.BadRequest(w, r, "Idempotency-Key is too long", nil)
				return
			}

			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, r, "Authentication required")
				return
			}

			ctx := r.Context()
			redisKey := IdempotencyKeyFor(claims.EmployeeID, key)

			acquired, err := client.SetNX(ctx, redisKey, idempotencyInFlight, ttl).Result()
			if err != nil {
				slog.WarnContext(ctx, "idempotency store unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			if !acquired {
				replay(w, r, client, redisKey)
				return
			}

			var body bytes.Buffer
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(&body)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			if status >= http.StatusInternalServerError {
				if err := client.Del(ctx, redisKey).Err(); err != nil {
					slog.WarnContext(ctx, "release idempotency key", "error", err, "key", key)
				}
				return
			}

			stored, err := json.Marshal(storedResponse{Status: status, Body: body.String()})
			if err != nil {
				slog.ErrorContext(ctx, "encode idempotent response", "error", err)
				return
			}
			if err := client.Set(ctx, redisKey, string(stored), ttl).Err(); err != nil {
				slog.WarnContext(ctx, "store idempotent response", "error", err, "key", key)
			}
		})
	}
}

func replay(w http.ResponseWriter, r *http.Request, client redis.Cmdable, redisKey string) {
	ctx := r.Context()

	value, err := client.Get(ctx, redisKey).Result()
	if errors.Is(err, redis.Nil) || value == idempotencyInFlight {
		response.Conflict(w, r, "IDEMPOTENCY_IN_PROGRESS", "A request with this idempotency key is still being processed")
		return
	}
	if err != nil {
		slog.ErrorContext(ctx, "read idempotent response", "error", err)
		response.InternalServerError(w, r)
		return
	}

	var stored storedResponse
	if err := json.Unmarshal([]byte(value), &stored); err != nil {
		slog.ErrorContext(ctx, "decode idempotent response", "error", err)
		response.InternalServerError(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(IdempotencyReplayedHeader, "true")
	w.WriteHeader(stored.Status)
	_, _ = w.Write([]byte(stored.Body))
}
