package service_interfaces

import (
	"context"

	"github.com/api-sage/interop-settlement/src/internal/domain"
	"github.com/api-sage/interop-settlement/src/internal/usecase/services"
)

type IdentifierService interface {
	RegisterIdentifier(ctx context.Context, caller domain.Caller, key services.IdentifierKey, accountID string) (domain.Identifier, error)
	LookupIdentifier(ctx context.Context, key services.IdentifierKey) (domain.Identifier, error)
	DeleteIdentifier(ctx context.Context, caller domain.Caller, key services.IdentifierKey) (domain.Identifier, error)
	ListAccountIdentifiers(ctx context.Context, accountID string) ([]domain.Identifier, error)
}
