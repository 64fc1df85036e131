package memory

import (
	"context"
	"sync"
	"time"

	"github.com/api-sage/interop-settlement/src/internal/domain"
	"github.com/google/uuid"
)

type NoteRepository struct {
	mu    sync.Mutex
	notes []domain.Note
}

func NewNoteRepository() *NoteRepository {
	return &NoteRepository{}
}

func (r *NoteRepository) Create(_ context.Context, note domain.Note) (domain.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	note.ID = uuid.NewString()
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now().UTC()
	}
	r.notes = append(r.notes, note)
	return note, nil
}

// Notes returns a copy of every stored note.
func (r *NoteRepository) Notes() []domain.Note {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Note, len(r.notes))
	copy(out, r.notes)
	return out
}
