package controller

import (
	"net/http"
	"time"

	"github.com/api-sage/interop-settlement/src/internal/adapter/http/middleware"
	"github.com/api-sage/interop-settlement/src/internal/logger"
)

// requestFields names the route and the scheme participant behind it.
func requestFields(r *http.Request) logger.Fields {
	caller := callerFrom(r)
	return logger.Fields{
		"method":  r.Method,
		"path":    r.URL.Path,
		"actorId": caller.ActorID,
		"tenant":  caller.Tenant,
	}
}

func logRequest(r *http.Request, payload any) {
	fields := requestFields(r)
	fields["query"] = r.URL.RawQuery
	fields["payload"] = logger.SanitizePayload(payload)
	if key := r.Header.Get(middleware.IdempotencyHeader); key != "" {
		fields["idempotencyKey"] = key
	}
	logger.Info("interop request", fields)
}

func logResponse(r *http.Request, status int, payload any, start time.Time) {
	fields := requestFields(r)
	fields["status"] = status
	fields["durationMs"] = time.Since(start).Milliseconds()
	fields["response"] = logger.SanitizePayload(payload)
	logger.Info("interop response", fields)
}

func logError(r *http.Request, err error, extra logger.Fields) {
	fields := requestFields(r)
	fields["query"] = r.URL.RawQuery
	for k, v := range extra {
		fields[k] = v
	}
	logger.Error("interop handler error", err, fields)
}
