package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/luminacrm/lumina/internal/entity"
	"github.com/luminacrm/lumina/internal/infra/database"
	"github.com/luminacrm/lumina/internal/infra/http/middleware"
)

type LeadStore interface {
	FindAll(ctx context.Context) ([]entity.Lead, error)
	FindByID(ctx context.Context, id string) (*entity.Lead, error)
	Create(ctx context.Context, l *entity.Lead) error
	Update(ctx context.Context, id string, patch entity.LeadPatch) (*entity.Lead, error)
	UpdateStatus(ctx context.Context, id string, status entity.Status) (*entity.Lead, error)
	Delete(ctx context.Context, id string) (*entity.Lead, error)
	Search(ctx context.Context, query string, status entity.Status, source string) ([]entity.Lead, error)
	Analytics(ctx context.Context) (*database.AnalyticsRow, error)
}

// StatusEventPublisher pushes lead status transitions onto the queue.
// Optional: a nil publisher means events are simply not emitted.
type StatusEventPublisher interface {
	PublishStatusChange(ctx context.Context, lead entity.Lead, previous entity.Status) error
}

type LeadHandler struct {
	leads       LeadStore
	events      StatusEventPublisher
	audit       AuditRecorder
	rateLimiter *RateLimiter
}

func NewLeadHandler(leads LeadStore, events StatusEventPublisher, audit AuditRecorder) *LeadHandler {
	return &LeadHandler{
		leads:       leads,
		events:      events,
		audit:       audit,
		rateLimiter: NewRateLimiter(10, time.Minute), // 10 req/min per IP on the public form
	}
}

func (h *LeadHandler) recordAudit(r *http.Request, actionType, leadID string, details map[string]string) {
	if h.audit == nil {
		return
	}
	h.audit.Record(r.Context(), actorEmail(r.Context()), actionType, "lead", leadID, details)
}

// leadJSON is the wire shape every lead endpoint serves: lowercase
// status, snake_case timestamp.
type leadJSON struct {
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

func toLeadJSON(l entity.Lead) leadJSON {
	return leadJSON{
		ID:        l.ID,
		Name:      l.Name,
		Email:     l.Email,
		Phone:     l.Phone,
		Company:   l.Company,
		Source:    l.Source.String(),
		Status:    l.Status.Wire(),
		Message:   l.Message,
		Value:     l.Value,
		CreatedAt: l.DateAdded,
	}
}

func toLeadJSONList(leads []entity.Lead) []leadJSON {
	out := make([]leadJSON, 0, len(leads))
	for _, l := range leads {
		out = append(out, toLeadJSON(l))
	}
	return out
}

func (h *LeadHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	leads, err := h.leads.FindAll(r.Context())
	if err != nil {
		log.Printf("error fetching leads: %v", err)
		writeJSON(w, http.StatusInternalServerError, errJSON("Failed to fetch leads."))
		return
	}
	writeJSON(w, http.StatusOK, toLeadJSONList(leads))
}

func (h *LeadHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	lead, err := h.leads.FindByID(r.Context(), id)
	if errors.Is(err, entity.ErrLeadNotFound) {
		writeJSON(w, http.StatusNotFound, errJSON("Lead not found."))
		return
	}
	if err != nil {
		log.Printf("error fetching lead %s: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, errJSON("Failed to fetch lead."))
		return
	}
	writeJSON(w, http.StatusOK, toLeadJSON(*lead))
}

type createLeadRequest struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone"`
	Company string  `json:"company"`
	Source  string  `json:"source"`
	Message string  `json:"message"`
	Value   float64 `json:"value"`
}

// Create serves the public contact form, so it is rate limited per IP
// rather than authenticated.
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.rateLimiter.Allow(getClientIP(r)) {
		writeJSON(w, http.StatusTooManyRequests, errJSON("Too many requests. Please try again later."))
		return
	}

	var req createLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errJSON("Invalid JSON"))
		return
	}
	lead, err := entity.NewLead(req.Name, req.Email, req.Phone, req.Company, req.Source, req.Message, req.Value)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errJSON("Name and email are required."))
		return
	}

	if err := h.leads.Create(r.Context(), lead); err != nil {
		log.Printf("error creating lead: %v", err)
		writeJSON(w, http.StatusInternalServerError, errJSON("Failed to create lead."))
		return
	}

	middleware.RecordLeadCreated(lead.Source.String())
	h.recordAudit(r, "LEAD_CREATED", lead.ID, map[string]string{"name": lead.Name, "email": lead.Email})
	log.Printf("new lead created: %s (%s)", lead.Name, lead.Email)
	writeJSON(w, http.StatusCreated, toLeadJSON(*lead))
}

func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch entity.LeadPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, errJSON("Invalid JSON"))
		return
	}

	lead, err := h.leads.Update(r.Context(), id, patch)
	if errors.Is(err, entity.ErrLeadNotFound) {
		writeJSON(w, http.StatusNotFound, errJSON("Lead not found."))
		return
	}
	if err != nil {
		log.Printf("error updating lead %s: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, errJSON("Failed to update lead."))
		return
	}
	h.recordAudit(r, "LEAD_UPDATED", id, nil)
	writeJSON(w, http.StatusOK, toLeadJSON(*lead))
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *LeadHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errJSON("Invalid JSON"))
		return
	}

	status := entity.ParseStatus(req.Status)
	if status == entity.StatusUnknown {
		writeJSON(w, http.StatusBadRequest, errJSON("Invalid status. Must be one of: new, contacted, converted, lost."))
		return
	}

	lead, err := h.leads.FindByID(r.Context(), id)
	if errors.Is(err, entity.ErrLeadNotFound) {
		writeJSON(w, http.StatusNotFound, errJSON("Lead not found."))
		return
	}
	if err != nil {
		log.Printf("error fetching lead %s: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, errJSON("Failed to update lead status."))
		return
	}
	previous := lead.Status

	updated, err := h.leads.UpdateStatus(r.Context(), id, status)
	if errors.Is(err, entity.ErrLeadNotFound) {
		writeJSON(w, http.StatusNotFound, errJSON("Lead not found."))
		return
	}
	if err != nil {
		log.Printf("error updating status for lead %s: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, errJSON("Failed to update lead status."))
		return
	}

	middleware.RecordStatusChange(status.Wire())
	h.recordAudit(r, "LEAD_STATUS_CHANGED", id, map[string]string{
		"from": previous.Wire(),
		"to":   status.Wire(),
	})
	if h.events != nil && previous != status {
		if err := h.events.PublishStatusChange(r.Context(), *updated, previous); err != nil {
			log.Printf("error publishing status event for lead %s: %v", id, err)
		}
	}

	writeJSON(w, http.StatusOK, toLeadJSON(*updated))
}

type deleteLeadResponse struct {
	Message     string   `json:"message"`
	DeletedLead leadJSON `json:"deletedLead"`
}

func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	lead, err := h.leads.Delete(r.Context(), id)
	if errors.Is(err, entity.ErrLeadNotFound) {
		writeJSON(w, http.StatusNotFound, errJSON("Lead not found."))
		return
	}
	if err != nil {
		log.Printf("error deleting lead %s: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, errJSON("Failed to delete lead."))
		return
	}

	h.recordAudit(r, "LEAD_DELETED", id, map[string]string{"name": lead.Name})
	log.Printf("deleted lead %s", id)
	writeJSON(w, http.StatusOK, deleteLeadResponse{
		Message:     "Lead deleted successfully.",
		DeletedLead: toLeadJSON(*lead),
	})
}

func (h *LeadHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	leads, err := h.leads.Search(r.Context(),
		q.Get("query"), entity.ParseStatus(q.Get("status")), q.Get("source"))
	if err != nil {
		log.Printf("error searching leads: %v", err)
		writeJSON(w, http.StatusInternalServerError, errJSON("Failed to search leads."))
		return
	}
	writeJSON(w, http.StatusOK, toLeadJSONList(leads))
}

type analyticsResponse struct {
	Total          int     `json:"total"`
	New            int     `json:"new"`
	Contacted      int     `json:"contacted"`
	Converted      int     `json:"converted"`
	Lost           int     `json:"lost"`
	ConversionRate float64 `json:"conversionRate"`
	PipelineValue  float64 `json:"pipelineValue"`
}

func (h *LeadHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	row, err := h.leads.Analytics(r.Context())
	if err != nil {
		log.Printf("error fetching analytics: %v", err)
		writeJSON(w, http.StatusInternalServerError, errJSON("Failed to fetch analytics."))
		return
	}

	rate := 0.0
	if row.Total > 0 {
		rate = float64(row.Converted) / float64(row.Total) * 100
	}

	writeJSON(w, http.StatusOK, analyticsResponse{
		Total:          row.Total,
		New:            row.New,
		Contacted:      row.Contacted,
		Converted:      row.Converted,
		Lost:           row.Lost,
		ConversionRate: rate,
		PipelineValue:  row.PipelineValue,
	})
}
