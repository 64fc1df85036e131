package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/api-sage/interop-settlement/src/internal/domain"
	"github.com/api-sage/interop-settlement/src/internal/logger"
)

// IdentifierKey names one directory entry.
type IdentifierKey struct {
	IDType      domain.IdentifierType
	IDValue     string
	SubIDOrType string
}

func (k IdentifierKey) normalize() (IdentifierKey, error) {
	idType, ok := domain.ParseIdentifierType(string(k.IDType))
	if !ok {
		return IdentifierKey{}, fmt.Errorf("%w: unknown identifier type %q", domain.ErrInvalidRequest, k.IDType)
	}
	value := strings.TrimSpace(k.IDValue)
	if value == "" {
		return IdentifierKey{}, fmt.Errorf("%w: identifier value is required", domain.ErrInvalidRequest)
	}
	return IdentifierKey{IDType: idType, IDValue: value, SubIDOrType: strings.TrimSpace(k.SubIDOrType)}, nil
}

type IdentifierService struct {
	identifierRepo domain.IdentifierRepository
	accountRepo    domain.AccountRepository
}

func NewIdentifierService(identifierRepo domain.IdentifierRepository, accountRepo domain.AccountRepository) *IdentifierService {
	return &IdentifierService{identifierRepo: identifierRepo, accountRepo: accountRepo}
}

func (s *IdentifierService) RegisterIdentifier(ctx context.Context, caller domain.Caller, key IdentifierKey, accountID string) (domain.Identifier, error) {
	logger.Info("identifier service register request", logger.Fields{
		"idType":    key.IDType,
		"accountId": accountID,
		"actorId":   caller.ActorID,
	})

	key, err := key.normalize()
	if err != nil {
		return domain.Identifier{}, err
	}
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return domain.Identifier{}, fmt.Errorf("%w: accountId is required", domain.ErrInvalidRequest)
	}

	if _, err := s.accountRepo.GetByExternalID(ctx, accountID); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return domain.Identifier{}, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, accountID)
		}
		return domain.Identifier{}, classify(err)
	}

	created, err := s.identifierRepo.Create(ctx, domain.Identifier{
		IDType:      key.IDType,
		IDValue:     key.IDValue,
		SubIDOrType: key.SubIDOrType,
		AccountID:   accountID,
		CreatedBy:   caller.ActorID,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		if !domain.IsBusinessError(err) {
			logger.Error("identifier service register failed", err, logger.Fields{"idType": key.IDType})
		}
		return domain.Identifier{}, classify(err)
	}

	logger.Info("identifier service register success", logger.Fields{
		"identifierId": created.ID,
		"accountId":    accountID,
	})
	return created, nil
}

func (s *IdentifierService) LookupIdentifier(ctx context.Context, key IdentifierKey) (domain.Identifier, error) {
	key, err := key.normalize()
	if err != nil {
		return domain.Identifier{}, err
	}

	identifier, err := s.identifierRepo.Find(ctx, key.IDType, key.IDValue, key.SubIDOrType)
	if err != nil {
		return domain.Identifier{}, classify(err)
	}
	return identifier, nil
}

// DeleteIdentifier removes a mapping and returns what was removed.
func (s *IdentifierService) DeleteIdentifier(ctx context.Context, caller domain.Caller, key IdentifierKey) (domain.Identifier, error) {
	identifier, err := s.LookupIdentifier(ctx, key)
	if err != nil {
		return domain.Identifier{}, err
	}

	if err := s.identifierRepo.Delete(ctx, identifier.ID); err != nil {
		return domain.Identifier{}, classify(err)
	}

	logger.Info("identifier service delete success", logger.Fields{
		"identifierId": identifier.ID,
		"accountId":    identifier.AccountID,
		"actorId":      caller.ActorID,
	})
	return identifier, nil
}

func (s *IdentifierService) ListAccountIdentifiers(ctx context.Context, accountID string) ([]domain.Identifier, error) {
	account, err := s.accountRepo.GetByExternalID(ctx, strings.TrimSpace(accountID))
	if err != nil {
		return nil, classify(err)
	}

	identifiers, err := s.identifierRepo.ListByAccount(ctx, account.ExternalID)
	if err != nil {
		return nil, classify(err)
	}
	return identifiers, nil
}
