package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/luminacrm/lumina/internal/infra/database"
)

type fakeAuditStore struct {
	entries []database.AuditEntry

	gotEntityType string
	gotActionType string
	gotUserEmail  string
	gotLimit      int
	gotOffset     int
}

func (f *fakeAuditStore) Record(ctx context.Context, userEmail, actionType, entityType, entityID string, details map[string]string) {
	f.entries = append(f.entries, database.AuditEntry{
		UserEmail:  userEmail,
		ActionType: actionType,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
	})
}

func (f *fakeAuditStore) Find(ctx context.Context, entityType, actionType, userEmail string, limit, offset int) ([]database.AuditEntry, int, error) {
	f.gotEntityType = entityType
	f.gotActionType = actionType
	f.gotUserEmail = userEmail
	f.gotLimit = limit
	f.gotOffset = offset
	return f.entries, len(f.entries), nil
}

func auditRouter(h *AuditHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/audit-logs", h.GetAll)
	return r
}

func TestGetAuditLogsPlumbsFilters(t *testing.T) {
	store := &fakeAuditStore{entries: []database.AuditEntry{
		{UserEmail: "admin@example.com", ActionType: "LEAD_DELETED", EntityType: "lead", EntityID: "42"},
	}}
	router := auditRouter(NewAuditHandler(store))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/audit-logs?entity_type=lead&action_type=LEAD_DELETED&user_email=admin@example.com&limit=10&offset=5", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "lead", store.gotEntityType)
	assert.Equal(t, "LEAD_DELETED", store.gotActionType)
	assert.Equal(t, "admin@example.com", store.gotUserEmail)
	assert.Equal(t, 10, store.gotLimit)
	assert.Equal(t, 5, store.gotOffset)

	var body map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1.0, body["total"])
}

func TestGetAuditLogsClampsPagination(t *testing.T) {
	store := &fakeAuditStore{}
	router := auditRouter(NewAuditHandler(store))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit-logs?limit=9999&offset=-3", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	// Oversized and negative values fall back to the defaults.
	assert.Equal(t, 50, store.gotLimit)
	assert.Equal(t, 0, store.gotOffset)
	assert.Equal(t, "", store.gotUserEmail)
}
