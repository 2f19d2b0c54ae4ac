package database

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/luminacrm/lumina/internal/entity"
)

type NoteRepository struct {
	DB *sql.DB
}

func NewNoteRepository(db *sql.DB) *NoteRepository {
	return &NoteRepository{DB: db}
}

// FindByLead returns a lead's notes, newest first.
func (r *NoteRepository) FindByLead(ctx context.Context, leadID string) ([]entity.Note, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, note_text, author, created_at
		FROM notes WHERE lead_id = $1
		ORDER BY created_at DESC`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := []entity.Note{}
	for rows.Next() {
		var n entity.Note
		if err := rows.Scan(&n.ID, &n.Text, &n.Author, &n.Timestamp); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// Create inserts a note for an existing lead, assigning its id.
func (r *NoteRepository) Create(ctx context.Context, leadID string, n *entity.Note) error {
	n.ID = uuid.New().String()
	if n.Author == "" {
		n.Author = "Admin"
	}
	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO notes (id, lead_id, note_text, author, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING created_at`,
		n.ID, leadID, n.Text, n.Author)
	return row.Scan(&n.Timestamp)
}

// Delete removes one note, returning the deleted record.
func (r *NoteRepository) Delete(ctx context.Context, id string) (*entity.Note, error) {
	row := r.DB.QueryRowContext(ctx, `
		DELETE FROM notes WHERE id = $1
		RETURNING id, note_text, author, created_at`, id)
	var n entity.Note
	err := row.Scan(&n.ID, &n.Text, &n.Author, &n.Timestamp)
	if err == sql.ErrNoRows {
		return nil, entity.ErrNoteNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}
