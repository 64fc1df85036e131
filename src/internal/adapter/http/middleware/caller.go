package middleware

import (
	"context"
	"net/http"
	"strings"
)

// TenantHeader selects the tenant a request acts for.
const TenantHeader = "X-Tenant-ID"

const defaultTenant = "default"

type actorKey struct{}

func withActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the authenticated actor, or "" for anonymous calls.
func ActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}

// Tenant reads the tenant header, falling back to the default tenant.
func Tenant(r *http.Request) string {
	tenant := strings.TrimSpace(r.Header.Get(TenantHeader))
	if tenant == "" {
		return defaultTenant
	}
	return tenant
}
