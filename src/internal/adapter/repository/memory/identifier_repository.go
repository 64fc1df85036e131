package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/api-sage/interop-settlement/src/internal/domain"
	"github.com/google/uuid"
)

type identifierKey struct {
	idType      domain.IdentifierType
	idValue     string
	subIDOrType string
}

type IdentifierRepository struct {
	mu    sync.RWMutex
	byKey map[identifierKey]domain.Identifier
}

func NewIdentifierRepository() *IdentifierRepository {
	return &IdentifierRepository{byKey: make(map[identifierKey]domain.Identifier)}
}

func (r *IdentifierRepository) Create(_ context.Context, identifier domain.Identifier) (domain.Identifier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := identifierKey{identifier.IDType, identifier.IDValue, identifier.SubIDOrType}
	if _, exists := r.byKey[key]; exists {
		return domain.Identifier{}, domain.ErrIdentifierExists
	}

	identifier.ID = uuid.NewString()
	if identifier.CreatedAt.IsZero() {
		identifier.CreatedAt = time.Now().UTC()
	}
	r.byKey[key] = identifier
	return identifier, nil
}

func (r *IdentifierRepository) Find(_ context.Context, idType domain.IdentifierType, idValue string, subIDOrType string) (domain.Identifier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	identifier, ok := r.byKey[identifierKey{idType, idValue, subIDOrType}]
	if !ok {
		return domain.Identifier{}, domain.ErrIdentifierNotFound
	}
	return identifier, nil
}

func (r *IdentifierRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, identifier := range r.byKey {
		if identifier.ID == id {
			delete(r.byKey, key)
			return nil
		}
	}
	return domain.ErrIdentifierNotFound
}

func (r *IdentifierRepository) ListByAccount(_ context.Context, accountID string) ([]domain.Identifier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Identifier
	for _, identifier := range r.byKey {
		if identifier.AccountID == accountID {
			out = append(out, identifier)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IDType != out[j].IDType {
			return out[i].IDType < out[j].IDType
		}
		return out[i].IDValue < out[j].IDValue
	})
	return out, nil
}
