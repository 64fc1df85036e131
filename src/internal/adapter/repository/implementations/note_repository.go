package implementations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/api-sage/interop-settlement/src/internal/domain"
	"github.com/google/uuid"
)

type NoteRepository struct {
	db *sql.DB
}

func NewNoteRepository(db *sql.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

func (r *NoteRepository) Create(ctx context.Context, note domain.Note) (domain.Note, error) {
	note.ID = uuid.NewString()

	const query = `
INSERT INTO notes (id, account_id, transaction_id, text, created_by, created_at)
VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))
RETURNING created_at`

	if err := r.db.QueryRowContext(
		ctx,
		query,
		note.ID,
		note.AccountID,
		note.TransactionID,
		note.Text,
		note.CreatedBy,
		nullTime(nonZero(note.CreatedAt)),
	).Scan(&note.CreatedAt); err != nil {
		return domain.Note{}, fmt.Errorf("create note: %w", err)
	}

	return note, nil
}
