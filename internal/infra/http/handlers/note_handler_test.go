package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/luminacrm/lumina/internal/entity"
)

type fakeNoteStore struct {
	notes map[string][]entity.Note
}

func (f *fakeNoteStore) FindByLead(ctx context.Context, leadID string) ([]entity.Note, error) {
	return f.notes[leadID], nil
}

func (f *fakeNoteStore) Create(ctx context.Context, leadID string, n *entity.Note) error {
	n.ID = "note-id"
	if n.Author == "" {
		n.Author = "Admin"
	}
	n.Timestamp = time.Now()
	f.notes[leadID] = append(f.notes[leadID], *n)
	return nil
}

func (f *fakeNoteStore) Delete(ctx context.Context, id string) (*entity.Note, error) {
	for leadID, notes := range f.notes {
		for i, n := range notes {
			if n.ID == id {
				f.notes[leadID] = append(notes[:i], notes[i+1:]...)
				return &n, nil
			}
		}
	}
	return nil, entity.ErrNoteNotFound
}

func noteRouter(notes *fakeNoteStore, leads *fakeLeadStore) *chi.Mux {
	h := NewNoteHandler(notes, leads, nil)
	r := chi.NewRouter()
	r.Get("/notes/lead/{leadId}", h.GetByLead)
	r.Post("/notes/lead/{leadId}", h.Create)
	r.Delete("/notes/{id}", h.Delete)
	return r
}

func TestCreateNoteRequiresText(t *testing.T) {
	router := noteRouter(&fakeNoteStore{notes: map[string][]entity.Note{}}, newFakeLeadStore(storedLead()))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/notes/lead/42", strings.NewReader(`{"note_text":"   "}`))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Note text is required.")
}

func TestCreateNoteUnknownLead(t *testing.T) {
	router := noteRouter(&fakeNoteStore{notes: map[string][]entity.Note{}}, newFakeLeadStore())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/notes/lead/missing", strings.NewReader(`{"note_text":"hello"}`))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Lead not found.")
}

func TestCreateNoteDefaultsAuthor(t *testing.T) {
	notes := &fakeNoteStore{notes: map[string][]entity.Note{}}
	router := noteRouter(notes, newFakeLeadStore(storedLead()))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/notes/lead/42", strings.NewReader(`{"note_text":"called them"}`))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var body noteJSON
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "called them", body.NoteText)
	assert.Equal(t, "Admin", body.Author)
	assert.Len(t, notes.notes["42"], 1)
}

func TestDeleteNote(t *testing.T) {
	notes := &fakeNoteStore{notes: map[string][]entity.Note{
		"42": {{ID: "n1", Text: "old note"}},
	}}
	router := noteRouter(notes, newFakeLeadStore(storedLead()))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/notes/n1", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Note deleted successfully.")
	assert.Empty(t, notes.notes["42"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/notes/n1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
