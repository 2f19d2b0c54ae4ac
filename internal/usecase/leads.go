package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/luminacrm/lumina/internal/cache"
	"github.com/luminacrm/lumina/internal/entity"
)

// LeadPipeline is the single write path to the lead cache. It translates
// user intents into remote calls, reconciles the cache after the remote
// confirms, and emits user-visible feedback. There is no optimistic
// update and no automatic retry: a remote failure leaves the cache
// untouched and surfaces one error toast.
type LeadPipeline struct {
	Remote   RemoteStore
	Cache    *cache.Store
	Notifier Notifier

	// Author stamps new notes, matching the acting user's display name.
	Author string

	// OnAuthReset runs once per AuthError so the owner can clear the
	// credential and force a re-login.
	OnAuthReset func()

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLeadPipeline(remote RemoteStore, store *cache.Store, notifier Notifier, author string) *LeadPipeline {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &LeadPipeline{
		Remote:   remote,
		Cache:    store,
		Notifier: notifier,
		Author:   author,
		locks:    make(map[string]*sync.Mutex),
	}
}

// lockLead serializes mutations per lead id, so a slow in-flight request
// cannot complete after a faster later one and overwrite its result with
// stale data. Lock entries are never reclaimed; the set of leads touched
// in one session is small.
func (p *LeadPipeline) lockLead(id string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.locks[id]
	if !ok {
		m = &sync.Mutex{}
		p.locks[id] = m
	}
	return m
}

// Create validates locally, creates the lead remotely and prepends the
// returned record (which carries the store-assigned id and timestamps)
// to the cache.
func (p *LeadPipeline) Create(ctx context.Context, in CreateLeadInput) (*entity.Lead, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, p.failValidation("name", "is required")
	}
	if strings.TrimSpace(in.Email) == "" {
		return nil, p.failValidation("email", "is required")
	}

	created, err := p.Remote.CreateLead(ctx, in)
	if err != nil {
		return nil, p.failRemote("add lead", "Failed to add lead", err)
	}

	lead := created.Clone()
	// The backend does not store these two; carry them locally.
	if lead.Title == "" {
		lead.Title = in.Title
	}
	if lead.Value == 0 {
		lead.Value = entity.NormalizeValue(in.Value)
	}
	p.Cache.Insert(lead)

	p.Notifier.Toast("Lead added successfully", LevelSuccess)
	p.Notifier.Notify("New Lead Added",
		fmt.Sprintf("%s from %s has been added to the pipeline.", lead.Name, lead.Company),
		LevelSuccess)
	return &lead, nil
}

// UpdateStatus moves a lead to another pipeline stage. The existence
// check runs against the cache before any network call, so a stale id
// costs no round trip.
func (p *LeadPipeline) UpdateStatus(ctx context.Context, id string, status entity.Status) error {
	if !status.Valid() {
		return p.failValidation("status", fmt.Sprintf("%q is not a valid status", string(status)))
	}
	prev, ok := p.Cache.Get(id)
	if !ok {
		return p.failNotFound("lead", id)
	}

	lock := p.lockLead(id)
	lock.Lock()
	defer lock.Unlock()

	if _, err := p.Remote.UpdateLeadStatus(ctx, id, status); err != nil {
		return p.failRemote("update lead status", "Failed to update lead status", err)
	}

	p.Cache.Patch(id, func(l *entity.Lead) {
		l.Status = status
		l.LastInteraction = time.Now().UTC()
	})

	p.Notifier.Toast(fmt.Sprintf("Lead status updated to %s", status), LevelSuccess)
	switch status {
	case entity.StatusConverted:
		p.Notifier.Notify("Lead Converted!",
			fmt.Sprintf("Great job! %s has been marked as converted.", prev.Name),
			LevelSuccess)
	case entity.StatusLost:
		p.Notifier.Notify("Lead Lost",
			fmt.Sprintf("%s has been marked as lost.", prev.Name),
			LevelWarning)
	}
	return nil
}

// UpdateFields applies a partial update. Only fields set on the patch
// change; the wire body omits the rest entirely so the server-side
// COALESCE keeps them.
func (p *LeadPipeline) UpdateFields(ctx context.Context, id string, patch entity.LeadPatch) error {
	if patch.IsZero() {
		return nil
	}
	if !p.Cache.Has(id) {
		return p.failNotFound("lead", id)
	}

	lock := p.lockLead(id)
	lock.Lock()
	defer lock.Unlock()

	if _, err := p.Remote.UpdateLead(ctx, id, patch); err != nil {
		return p.failRemote("update lead", "Failed to update lead", err)
	}

	p.Cache.Patch(id, func(l *entity.Lead) {
		patch.Apply(l)
		l.LastInteraction = time.Now().UTC()
	})
	p.Notifier.Toast("Lead updated successfully", LevelSuccess)
	return nil
}

// Delete removes a lead, cache-last: the record only leaves the cache
// after the remote confirms. The removed record is returned so the
// caller can offer undo via Restore.
func (p *LeadPipeline) Delete(ctx context.Context, id string) (*entity.Lead, error) {
	if !p.Cache.Has(id) {
		return nil, p.failNotFound("lead", id)
	}

	lock := p.lockLead(id)
	lock.Lock()
	defer lock.Unlock()

	if _, err := p.Remote.DeleteLead(ctx, id); err != nil {
		return nil, p.failRemote("delete lead", "Failed to delete lead", err)
	}

	removed, _ := p.Cache.Remove(id)
	p.Notifier.Toast("Lead deleted", LevelInfo)
	return &removed, nil
}

// Restore undoes a delete. The lead is re-created remotely, since a
// cache-only rollback would silently diverge from the store, and the original
// record, notes and all, goes back into the cache verbatim. The remote
// may assign a fresh id; the next full Load reconciles the two.
func (p *LeadPipeline) Restore(ctx context.Context, lead entity.Lead) error {
	created, err := p.Remote.CreateLead(ctx, CreateLeadInput{
		Name:    lead.Name,
		Email:   lead.Email,
		Phone:   lead.Phone,
		Company: lead.Company,
		Title:   lead.Title,
		Source:  lead.Source,
		Message: lead.Message,
		Value:   lead.Value,
	})
	if err != nil {
		return p.failRemote("restore lead", "Failed to restore lead", err)
	}
	// Notes attach to the fresh remote id; the old one no longer exists
	// on the server.
	for i := len(lead.Notes) - 1; i >= 0; i-- {
		if _, err := p.Remote.CreateNote(ctx, created.ID, lead.Notes[i].Text); err != nil {
			log.Printf("restore lead %s: note not restored remotely: %v", created.ID, err)
			break
		}
	}
	p.Cache.Insert(lead)
	p.Notifier.Toast("Lead restored", LevelSuccess)
	return nil
}

// AddNote appends an interaction note. Whitespace-only text is rejected
// before any network call.
func (p *LeadPipeline) AddNote(ctx context.Context, leadID, text string) error {
	if strings.TrimSpace(text) == "" {
		return p.failValidation("note", "text is required")
	}
	if !p.Cache.Has(leadID) {
		return p.failNotFound("lead", leadID)
	}

	lock := p.lockLead(leadID)
	lock.Lock()
	defer lock.Unlock()

	created, err := p.Remote.CreateNote(ctx, leadID, text)
	if err != nil {
		return p.failRemote("add note", "Failed to add note", err)
	}

	note := *created
	if note.Author == "" {
		note.Author = p.Author
	}
	p.Cache.Patch(leadID, func(l *entity.Lead) {
		l.Notes = append([]entity.Note{note}, l.Notes...)
		l.LastInteraction = time.Now().UTC()
	})
	p.Notifier.Toast("Note added", LevelSuccess)
	return nil
}

func (p *LeadPipeline) failValidation(field, msg string) error {
	err := &ValidationError{Field: field, Message: msg}
	p.Notifier.Toast(err.Error(), LevelError)
	return err
}

func (p *LeadPipeline) failNotFound(resource, id string) error {
	err := &NotFoundError{Resource: resource, ID: id}
	p.Notifier.Toast(err.Error(), LevelError)
	return err
}

// failRemote logs the underlying cause, shows the user one generic
// toast, and converts an auth rejection into a session reset.
func (p *LeadPipeline) failRemote(op, toast string, err error) error {
	log.Printf("%s: %v", op, err)

	var authErr *AuthError
	if errors.As(err, &authErr) {
		p.Notifier.Toast("Session expired, please log in again", LevelError)
		if p.OnAuthReset != nil {
			p.Cache.Replace(nil)
			p.OnAuthReset()
		}
		return err
	}

	p.Notifier.Toast(toast, LevelError)
	var notFound *NotFoundError
	var remote *RemoteError
	if errors.As(err, &notFound) || errors.As(err, &remote) {
		return err
	}
	return &RemoteError{Op: op, Err: err}
}
