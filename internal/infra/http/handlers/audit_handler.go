package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/luminacrm/lumina/internal/infra/database"
	"github.com/luminacrm/lumina/internal/infra/http/middleware"
)

// AuditRecorder records admin actions. Recording is fire-and-forget;
// implementations must not fail the request.
type AuditRecorder interface {
	Record(ctx context.Context, userEmail, actionType, entityType, entityID string, details map[string]string)
}

type AuditStore interface {
	AuditRecorder
	Find(ctx context.Context, entityType, actionType, userEmail string, limit, offset int) ([]database.AuditEntry, int, error)
}

type AuditHandler struct {
	audit AuditStore
}

func NewAuditHandler(audit AuditStore) *AuditHandler {
	return &AuditHandler{audit: audit}
}

type auditLogsResponse struct {
	Logs   []database.AuditEntry `json:"logs"`
	Total  int                   `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

func (h *AuditHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 50
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 && v <= 500 {
		limit = v
	}
	offset := 0
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v >= 0 {
		offset = v
	}

	logs, total, err := h.audit.Find(r.Context(), q.Get("entity_type"), q.Get("action_type"), q.Get("user_email"), limit, offset)
	if err != nil {
		log.Printf("error fetching audit logs: %v", err)
		writeJSON(w, http.StatusInternalServerError, errJSON("Failed to fetch audit logs."))
		return
	}

	writeJSON(w, http.StatusOK, auditLogsResponse{
		Logs:   logs,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// actorEmail names the authenticated user for audit entries. The public
// contact form runs unauthenticated and is attributed to "public".
func actorEmail(ctx context.Context) string {
	if claims, ok := middleware.ClaimsFrom(ctx); ok {
		return claims.Email
	}
	return "public"
}
