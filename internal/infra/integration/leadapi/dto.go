package leadapi

import (
	"time"

	"github.com/luminacrm/lumina/internal/entity"
)

// Wire records as the lead API returns them: lowercase status, snake_case
// timestamps, nullable text columns as empty strings after decoding.

type leadRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Company   string    `json:"company"`
	Source    string    `json:"source"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Value     float64   `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// toEntity maps the wire record to the domain type once, at the
// boundary. Status parsing is strict-but-total: unknown wire values
// become StatusUnknown instead of being case-mangled at every read site.
func (r leadRecord) toEntity() entity.Lead {
	return entity.Lead{
		ID:              r.ID,
		Name:            r.Name,
		Email:           r.Email,
		Phone:           r.Phone,
		Company:         r.Company,
		Source:          entity.ParseSource(r.Source),
		Status:          entity.ParseStatus(r.Status),
		Message:         r.Message,
		Value:           entity.NormalizeValue(r.Value),
		DateAdded:       r.CreatedAt,
		LastInteraction: r.CreatedAt,
	}
}

type noteRecord struct {
	ID        string    `json:"id"`
	LeadID    string    `json:"lead_id"`
	NoteText  string    `json:"note_text"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

func (r noteRecord) toEntity() entity.Note {
	return entity.Note{
		ID:        r.ID,
		Text:      r.NoteText,
		Timestamp: r.CreatedAt,
		Author:    r.Author,
	}
}

type createLeadRequest struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone,omitempty"`
	Company string  `json:"company,omitempty"`
	Source  string  `json:"source,omitempty"`
	Message string  `json:"message,omitempty"`
	Value   float64 `json:"value,omitempty"`
}

// updateLeadRequest mirrors entity.LeadPatch on the wire. Pointer fields
// plus omitempty guarantee "not provided" is truly absent from the JSON
// body; the server COALESCEs absent columns and would null out an
// explicit null.
type updateLeadRequest struct {
	Name    *string  `json:"name,omitempty"`
	Email   *string  `json:"email,omitempty"`
	Phone   *string  `json:"phone,omitempty"`
	Company *string  `json:"company,omitempty"`
	Source  *string  `json:"source,omitempty"`
	Message *string  `json:"message,omitempty"`
	Value   *float64 `json:"value,omitempty"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type createNoteRequest struct {
	NoteText string `json:"note_text"`
}

type deleteLeadResponse struct {
	Message     string     `json:"message"`
	DeletedLead leadRecord `json:"deletedLead"`
}

type deleteNoteResponse struct {
	Message     string     `json:"message"`
	DeletedNote noteRecord `json:"deletedNote"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the token plus the authenticated user's identity.
type LoginResult struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    entity.User `json:"user"`
}

// Analytics is the server-computed rollup.
type Analytics struct {
	Total          int     `json:"total"`
	New            int     `json:"new"`
	Contacted      int     `json:"contacted"`
	Converted      int     `json:"converted"`
	Lost           int     `json:"lost"`
	ConversionRate float64 `json:"conversionRate"`
	PipelineValue  float64 `json:"pipelineValue"`
}

type errorResponse struct {
	Error string `json:"error"`
}
