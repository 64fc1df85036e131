package domain

import (
	"context"
	"time"
)

type Note struct {
	ID            string
	AccountID     string
	TransactionID string
	Text          string
	CreatedBy     string
	CreatedAt     time.Time
}

type NoteRepository interface {
	Create(ctx context.Context, note Note) (Note, error)
}
