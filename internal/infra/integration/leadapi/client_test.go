package leadapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/luminacrm/lumina/internal/entity"
	"github.com/luminacrm/lumina/internal/usecase"
)

func TestFetchLeadsMapsWireRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/leads", r.URL.Path)
		assert.Equal(t, "Bearer tok123", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"1","name":"Ada","email":"ada@example.com","phone":"","company":"",
			 "source":"Referral","status":"contacted","message":"","value":5000,
			 "created_at":"2026-03-01T10:00:00Z"},
			{"id":"2","name":"Grace","email":"grace@example.com","source":"","status":"archived",
			 "value":-10,"created_at":"2026-03-02T10:00:00Z"}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.SetToken("tok123")

	leads, err := c.FetchLeads(context.Background())
	assert.NoError(t, err)
	assert.Len(t, leads, 2)

	assert.Equal(t, entity.StatusContacted, leads[0].Status)
	assert.Equal(t, entity.SourceReferral, leads[0].Source)
	assert.Equal(t, 5000.0, leads[0].Value)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), leads[0].DateAdded.UTC())
	assert.Equal(t, leads[0].DateAdded, leads[0].LastInteraction)

	// Unknown status survives parsing as the sentinel, empty source
	// defaults, negative value clamps.
	assert.Equal(t, entity.StatusUnknown, leads[1].Status)
	assert.Equal(t, entity.SourceWebsite, leads[1].Source)
	assert.Equal(t, 0.0, leads[1].Value)
}

func TestCreateLeadSendsWirePayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"new-id","name":"Ada","email":"ada@example.com",
			"source":"Website","status":"new","value":0,"created_at":"2026-03-01T10:00:00Z"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	lead, err := c.CreateLead(context.Background(), usecase.CreateLeadInput{
		Name: "Ada", Email: "ada@example.com", Source: entity.SourceWebsite,
	})
	assert.NoError(t, err)
	assert.Equal(t, "new-id", lead.ID)
	assert.Equal(t, "Ada", got["name"])
	assert.Equal(t, "Website", got["source"])
	// Zero value is omitted, not sent as 0.
	_, sent := got["value"]
	assert.False(t, sent)
}

func TestUpdateLeadOmitsUnsetPatchFields(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/leads/42", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"id":"42","name":"Ada","email":"a@b.c","source":"Website",
			"status":"new","value":0,"created_at":"2026-03-01T10:00:00Z"}`))
	}))
	defer srv.Close()

	company := "New Co"
	c := NewClient(srv.URL)
	_, err := c.UpdateLead(context.Background(), "42", entity.LeadPatch{Company: &company})
	assert.NoError(t, err)

	assert.Equal(t, map[string]any{"company": "New Co"}, got)
}

func TestUpdateLeadStatusSendsLowercase(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/leads/42/status", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"id":"42","name":"Ada","email":"a@b.c","source":"Website",
			"status":"converted","value":0,"created_at":"2026-03-01T10:00:00Z"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	lead, err := c.UpdateLeadStatus(context.Background(), "42", entity.StatusConverted)
	assert.NoError(t, err)
	assert.Equal(t, "converted", got["status"])
	assert.Equal(t, entity.StatusConverted, lead.Status)
}

func TestDeleteLeadUnwrapsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"Lead deleted successfully.",
			"deletedLead":{"id":"42","name":"Ada","email":"a@b.c","source":"Website",
			"status":"new","value":100,"created_at":"2026-03-01T10:00:00Z"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	lead, err := c.DeleteLead(context.Background(), "42")
	assert.NoError(t, err)
	assert.Equal(t, "42", lead.ID)
	assert.Equal(t, 100.0, lead.Value)
}

func TestStatusErrorMapping(t *testing.T) {
	status := http.StatusUnauthorized
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(`{"error":"Invalid or expired token."}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)

	_, err := c.FetchLeads(context.Background())
	var authErr *usecase.AuthError
	assert.ErrorAs(t, err, &authErr)

	status = http.StatusForbidden
	_, err = c.FetchLeads(context.Background())
	assert.ErrorAs(t, err, &authErr)

	status = http.StatusNotFound
	_, err = c.FetchLeads(context.Background())
	var nfErr *usecase.NotFoundError
	assert.ErrorAs(t, err, &nfErr)

	status = http.StatusInternalServerError
	_, err = c.FetchLeads(context.Background())
	var remErr *usecase.RemoteError
	assert.ErrorAs(t, err, &remErr)
}

func TestHealthUsesAPIBasePath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	// The configured base URL carries the /api prefix; health must
	// resolve under it, same as every other endpoint.
	c := NewClient(srv.URL + "/api")
	assert.NoError(t, c.Health(context.Background()))
	assert.Equal(t, "/api/health", gotPath)
}

func TestLoginInstallsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			w.Write([]byte(`{"message":"Login successful","token":"tok-abc",
				"user":{"id":"u1","name":"Admin","email":"admin@example.com"}}`))
		case "/leads":
			assert.Equal(t, "Bearer tok-abc", r.Header.Get("Authorization"))
			w.Write([]byte(`[]`))
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	result, err := c.Login(context.Background(), "admin@example.com", "secret")
	assert.NoError(t, err)
	assert.Equal(t, "tok-abc", result.Token)
	assert.Equal(t, "admin@example.com", result.User.Email)

	_, err = c.FetchLeads(context.Background())
	assert.NoError(t, err)
}
