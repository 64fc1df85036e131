package domain

import (
	"strings"
	"time"
)

type IdentifierType string

const (
	IdentifierTypeMSISDN     IdentifierType = "MSISDN"
	IdentifierTypeEmail      IdentifierType = "EMAIL"
	IdentifierTypePersonalID IdentifierType = "PERSONAL_ID"
	IdentifierTypeBusiness   IdentifierType = "BUSINESS"
	IdentifierTypeDevice     IdentifierType = "DEVICE"
	IdentifierTypeAccountID  IdentifierType = "ACCOUNT_ID"
	IdentifierTypeIBAN       IdentifierType = "IBAN"
	IdentifierTypeAlias      IdentifierType = "ALIAS"
)

var identifierTypes = map[IdentifierType]struct{}{
	IdentifierTypeMSISDN:     {},
	IdentifierTypeEmail:      {},
	IdentifierTypePersonalID: {},
	IdentifierTypeBusiness:   {},
	IdentifierTypeDevice:     {},
	IdentifierTypeAccountID:  {},
	IdentifierTypeIBAN:       {},
	IdentifierTypeAlias:      {},
}

// ParseIdentifierType accepts any casing of a known identifier type.
func ParseIdentifierType(raw string) (IdentifierType, bool) {
	t := IdentifierType(strings.ToUpper(strings.TrimSpace(raw)))
	_, ok := identifierTypes[t]
	return t, ok
}

// Identifier maps an external party identifier onto an account.
// (IDType, IDValue, SubIDOrType) is unique.
type Identifier struct {
	ID          string
	IDType      IdentifierType
	IDValue     string
	SubIDOrType string
	AccountID   string
	CreatedBy   string
	CreatedAt   time.Time
}
