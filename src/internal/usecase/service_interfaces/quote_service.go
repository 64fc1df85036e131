package service_interfaces

import (
	"context"

	"github.com/api-sage/interop-settlement/src/internal/domain"
)

type QuoteService interface {
	CreateQuote(ctx context.Context, caller domain.Caller, req domain.QuoteRequest) (domain.QuoteResult, error)
}
