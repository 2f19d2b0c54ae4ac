package usecase

import (
	"context"

	"github.com/luminacrm/lumina/internal/entity"
)

// CreateLeadInput is a lead minus identity, timestamps and notes. Title
// and Value are client-side extras the reference backend does not store
// for the public form; the pipeline keeps them on the cached record.
type CreateLeadInput struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Title   string
	Source  entity.Source
	Message string
	Value   float64
}

// RemoteStore is the mutation surface of the lead API. The leadapi
// client implements it; tests substitute a mock.
type RemoteStore interface {
	CreateLead(ctx context.Context, in CreateLeadInput) (*entity.Lead, error)
	UpdateLead(ctx context.Context, id string, patch entity.LeadPatch) (*entity.Lead, error)
	UpdateLeadStatus(ctx context.Context, id string, status entity.Status) (*entity.Lead, error)
	DeleteLead(ctx context.Context, id string) (*entity.Lead, error)
	CreateNote(ctx context.Context, leadID, text string) (*entity.Note, error)
}

// Level classifies user-visible feedback, mirroring the toast variants.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
)

// Notifier receives the pipeline's user-visible feedback: short toasts
// for every outcome, plus richer notifications for milestone events
// (lead added, converted, lost).
type Notifier interface {
	Toast(message string, level Level)
	Notify(title, message string, level Level)
}

// NopNotifier discards all feedback.
type NopNotifier struct{}

func (NopNotifier) Toast(string, Level)          {}
func (NopNotifier) Notify(string, string, Level) {}
