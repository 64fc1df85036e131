package domain

import "context"

type IdentifierRepository interface {
	Create(ctx context.Context, identifier Identifier) (Identifier, error)
	Find(ctx context.Context, idType IdentifierType, idValue string, subIDOrType string) (Identifier, error)
	Delete(ctx context.Context, id string) error
	ListByAccount(ctx context.Context, accountID string) ([]Identifier, error)
}
