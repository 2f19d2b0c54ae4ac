// Package leadapi is the HTTP client for the lead store REST API. It is
// the only component that talks to the network; everything above it sees
// entity types and the usecase error taxonomy.
package leadapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/luminacrm/lumina/internal/entity"
	"github.com/luminacrm/lumina/internal/usecase"
)

type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// SetToken installs the bearer token used on authenticated calls.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Login exchanges credentials for a token and installs it on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var out LoginResult
	err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

// FetchLeads retrieves the full lead set, newest first. Notes are not
// hydrated here; FetchNotes loads them per lead on demand.
func (c *Client) FetchLeads(ctx context.Context) ([]entity.Lead, error) {
	var records []leadRecord
	if err := c.do(ctx, http.MethodGet, "/leads", nil, &records); err != nil {
		return nil, err
	}
	leads := make([]entity.Lead, len(records))
	for i, r := range records {
		leads[i] = r.toEntity()
	}
	return leads, nil
}

func (c *Client) CreateLead(ctx context.Context, in usecase.CreateLeadInput) (*entity.Lead, error) {
	req := createLeadRequest{
		Name:    in.Name,
		Email:   in.Email,
		Phone:   in.Phone,
		Company: in.Company,
		Source:  in.Source.String(),
		Message: in.Message,
		Value:   entity.NormalizeValue(in.Value),
	}
	var rec leadRecord
	if err := c.do(ctx, http.MethodPost, "/leads", req, &rec); err != nil {
		return nil, err
	}
	lead := rec.toEntity()
	return &lead, nil
}

func (c *Client) UpdateLead(ctx context.Context, id string, patch entity.LeadPatch) (*entity.Lead, error) {
	req := updateLeadRequest{
		Name:    patch.Name,
		Email:   patch.Email,
		Phone:   patch.Phone,
		Company: patch.Company,
		Message: patch.Message,
		Value:   patch.Value,
	}
	if patch.Source != nil {
		s := patch.Source.String()
		req.Source = &s
	}
	var rec leadRecord
	if err := c.do(ctx, http.MethodPut, "/leads/"+id, req, &rec); err != nil {
		return nil, err
	}
	lead := rec.toEntity()
	return &lead, nil
}

func (c *Client) UpdateLeadStatus(ctx context.Context, id string, status entity.Status) (*entity.Lead, error) {
	var rec leadRecord
	err := c.do(ctx, http.MethodPut, "/leads/"+id+"/status", updateStatusRequest{Status: status.Wire()}, &rec)
	if err != nil {
		return nil, err
	}
	lead := rec.toEntity()
	return &lead, nil
}

func (c *Client) DeleteLead(ctx context.Context, id string) (*entity.Lead, error) {
	var out deleteLeadResponse
	if err := c.do(ctx, http.MethodDelete, "/leads/"+id, nil, &out); err != nil {
		return nil, err
	}
	lead := out.DeletedLead.toEntity()
	return &lead, nil
}

func (c *Client) FetchNotes(ctx context.Context, leadID string) ([]entity.Note, error) {
	var records []noteRecord
	if err := c.do(ctx, http.MethodGet, "/notes/lead/"+leadID, nil, &records); err != nil {
		return nil, err
	}
	notes := make([]entity.Note, len(records))
	for i, r := range records {
		notes[i] = r.toEntity()
	}
	return notes, nil
}

func (c *Client) CreateNote(ctx context.Context, leadID, text string) (*entity.Note, error) {
	var rec noteRecord
	if err := c.do(ctx, http.MethodPost, "/notes/lead/"+leadID, createNoteRequest{NoteText: text}, &rec); err != nil {
		return nil, err
	}
	note := rec.toEntity()
	return &note, nil
}

func (c *Client) DeleteNote(ctx context.Context, id string) error {
	var out deleteNoteResponse
	return c.do(ctx, http.MethodDelete, "/notes/"+id, nil, &out)
}

func (c *Client) FetchAnalytics(ctx context.Context) (*Analytics, error) {
	var out Analytics
	if err := c.do(ctx, http.MethodGet, "/leads/analytics", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health pings the API without auth.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// do runs one round trip: marshal, send with auth headers, map the
// response status onto the usecase error taxonomy, decode.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &usecase.RemoteError{Op: method + " " + path, Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &usecase.RemoteError{Op: method + " " + path, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.bearer(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &usecase.RemoteError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(method, path, resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &usecase.RemoteError{Op: method + " " + path, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) statusError(method, path string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(raw))
	var er errorResponse
	if json.Unmarshal(raw, &er) == nil && er.Error != "" {
		msg = er.Error
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &usecase.AuthError{Err: fmt.Errorf("%s %s: %s", method, path, msg)}
	case http.StatusNotFound:
		return &usecase.NotFoundError{Resource: "resource", ID: path}
	}
	return &usecase.RemoteError{
		Op:  method + " " + path,
		Err: fmt.Errorf("unexpected status %d: %s", resp.StatusCode, msg),
	}
}
