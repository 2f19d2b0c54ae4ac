package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/luminacrm/lumina/internal/entity"
)

type NoteStore interface {
	FindByLead(ctx context.Context, leadID string) ([]entity.Note, error)
	Create(ctx context.Context, leadID string, n *entity.Note) error
	Delete(ctx context.Context, id string) (*entity.Note, error)
}

// LeadFinder is the slice of the lead store the note endpoints need to
// confirm the parent lead exists.
type LeadFinder interface {
	FindByID(ctx context.Context, id string) (*entity.Lead, error)
}

type NoteHandler struct {
	notes NoteStore
	leads LeadFinder
	audit AuditRecorder
}

func NewNoteHandler(notes NoteStore, leads LeadFinder, audit AuditRecorder) *NoteHandler {
	return &NoteHandler{notes: notes, leads: leads, audit: audit}
}

func (h *NoteHandler) recordAudit(r *http.Request, actionType, noteID string, details map[string]string) {
	if h.audit == nil {
		return
	}
	h.audit.Record(r.Context(), actorEmail(r.Context()), actionType, "note", noteID, details)
}

type noteJSON struct {
	ID        string    `json:"id"`
	LeadID    string    `json:"lead_id,omitempty"`
	NoteText  string    `json:"note_text"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

func toNoteJSON(leadID string, n entity.Note) noteJSON {
	return noteJSON{
		ID:        n.ID,
		LeadID:    leadID,
		NoteText:  n.Text,
		Author:    n.Author,
		CreatedAt: n.Timestamp,
	}
}

func (h *NoteHandler) GetByLead(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadId")
	notes, err := h.notes.FindByLead(r.Context(), leadID)
	if err != nil {
		log.Printf("error fetching notes for lead %s: %v", leadID, err)
		writeJSON(w, http.StatusInternalServerError, errJSON("Failed to fetch notes."))
		return
	}

	out := make([]noteJSON, 0, len(notes))
	for _, n := range notes {
		out = append(out, toNoteJSON(leadID, n))
	}
	writeJSON(w, http.StatusOK, out)
}

type createNoteRequest struct {
	NoteText string `json:"note_text"`
	Author   string `json:"author"`
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadId")

	var req createNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errJSON("Invalid JSON"))
		return
	}
	if strings.TrimSpace(req.NoteText) == "" {
		writeJSON(w, http.StatusBadRequest, errJSON("Note text is required."))
		return
	}

	if _, err := h.leads.FindByID(r.Context(), leadID); err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			writeJSON(w, http.StatusNotFound, errJSON("Lead not found."))
			return
		}
		log.Printf("error fetching lead %s: %v", leadID, err)
		writeJSON(w, http.StatusInternalServerError, errJSON("Failed to create note."))
		return
	}

	note := entity.Note{Text: req.NoteText, Author: req.Author}
	if err := h.notes.Create(r.Context(), leadID, &note); err != nil {
		log.Printf("error creating note for lead %s: %v", leadID, err)
		writeJSON(w, http.StatusInternalServerError, errJSON("Failed to create note."))
		return
	}

	h.recordAudit(r, "NOTE_CREATED", note.ID, map[string]string{"lead_id": leadID})
	writeJSON(w, http.StatusCreated, toNoteJSON(leadID, note))
}

type deleteNoteResponse struct {
	Message     string   `json:"message"`
	DeletedNote noteJSON `json:"deletedNote"`
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	note, err := h.notes.Delete(r.Context(), id)
	if errors.Is(err, entity.ErrNoteNotFound) {
		writeJSON(w, http.StatusNotFound, errJSON("Note not found."))
		return
	}
	if err != nil {
		log.Printf("error deleting note %s: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, errJSON("Failed to delete note."))
		return
	}

	h.recordAudit(r, "NOTE_DELETED", id, nil)
	writeJSON(w, http.StatusOK, deleteNoteResponse{
		Message:     "Note deleted successfully.",
		DeletedNote: toNoteJSON("", *note),
	})
}
