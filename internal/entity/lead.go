package entity

import (
	"math"
	"sort"
	"strings"
	"time"
)

// Status is the pipeline stage of a lead. The wire format (and the
// database) use lowercase strings; everything past the boundary uses
// these canonical values. Anything else parses to StatusUnknown, which
// every grouping treats as non-matching.
type Status string

const (
	StatusUnknown   Status = ""
	StatusNew       Status = "New"
	StatusContacted Status = "Contacted"
	StatusConverted Status = "Converted"
	StatusLost      Status = "Lost"
)

// Statuses in pipeline order.
var Statuses = []Status{StatusNew, StatusContacted, StatusConverted, StatusLost}

// ParseStatus maps a wire or user-supplied value to the enum,
// case-insensitively. Unknown values map to StatusUnknown.
func ParseStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "new":
		return StatusNew
	case "contacted":
		return StatusContacted
	case "converted":
		return StatusConverted
	case "lost":
		return StatusLost
	}
	return StatusUnknown
}

func (s Status) Valid() bool {
	return s == StatusNew || s == StatusContacted || s == StatusConverted || s == StatusLost
}

// Wire returns the lowercase form the REST API and database use.
func (s Status) Wire() string { return strings.ToLower(string(s)) }

func (s Status) String() string { return string(s) }

// Source records where a lead came from.
type Source string

const (
	SourceWebsite     Source = "Website"
	SourceReferral    Source = "Referral"
	SourceSocialMedia Source = "Social Media"
	SourceLinkedIn    Source = "LinkedIn"
	SourceOther       Source = "Other"
)

var Sources = []Source{SourceWebsite, SourceReferral, SourceSocialMedia, SourceLinkedIn, SourceOther}

// ParseSource is lenient: empty means Website (the public form default),
// anything unrecognized collapses to Other.
func ParseSource(s string) Source {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "")) {
	case "", "website":
		return SourceWebsite
	case "referral":
		return SourceReferral
	case "socialmedia":
		return SourceSocialMedia
	case "linkedin":
		return SourceLinkedIn
	}
	return SourceOther
}

func (s Source) String() string { return string(s) }

// Note is a timestamped annotation owned by exactly one lead. Notes are
// append-only: they are added or removed, never edited.
type Note struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Author    string    `json:"author"`
}

// Lead is the central entity: a prospective client tracked through the
// status pipeline.
type Lead struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone,omitempty"`
	Company         string    `json:"company,omitempty"`
	Title           string    `json:"title,omitempty"`
	Source          Source    `json:"source"`
	Status          Status    `json:"status"`
	Message         string    `json:"message,omitempty"`
	Value           float64   `json:"value"`
	DateAdded       time.Time `json:"dateAdded"`
	LastInteraction time.Time `json:"lastInteraction"`
	Notes           []Note    `json:"notes"`
}

// NewLead builds a lead the way the public contact form does: status New,
// timestamps now, value normalized.
func NewLead(name, email, phone, company, source, message string, value float64) (*Lead, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return nil, ErrNameRequired
	}
	if email == "" {
		return nil, ErrEmailRequired
	}

	now := time.Now().UTC()
	return &Lead{
		Name:            name,
		Email:           email,
		Phone:           phone,
		Company:         company,
		Source:          ParseSource(source),
		Status:          StatusNew,
		Message:         message,
		Value:           NormalizeValue(value),
		DateAdded:       now,
		LastInteraction: now,
	}, nil
}

// NormalizeValue clamps the deal value to a finite, non-negative number.
func NormalizeValue(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// SortedNotes returns the notes newest-first by timestamp. Insertion
// order is not trusted: call sites prepend, the API returns its own
// order, so display order is always recomputed here.
func (l *Lead) SortedNotes() []Note {
	out := make([]Note, len(l.Notes))
	copy(out, l.Notes)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// Clone returns a deep copy so cache snapshots can be handed out without
// aliasing the notes slice.
func (l Lead) Clone() Lead {
	out := l
	if l.Notes != nil {
		out.Notes = make([]Note, len(l.Notes))
		copy(out.Notes, l.Notes)
	}
	return out
}

// LeadPatch is a partial update. Nil fields are left unchanged; that is
// also the wire contract: the client omits them entirely, so the
// server-side COALESCE never sees an explicit null. To clear a text
// field, point at "".
type LeadPatch struct {
	Name    *string  `json:"name,omitempty"`
	Email   *string  `json:"email,omitempty"`
	Phone   *string  `json:"phone,omitempty"`
	Company *string  `json:"company,omitempty"`
	Title   *string  `json:"title,omitempty"`
	Source  *Source  `json:"source,omitempty"`
	Message *string  `json:"message,omitempty"`
	Value   *float64 `json:"value,omitempty"`
}

// IsZero reports whether the patch changes nothing.
func (p LeadPatch) IsZero() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil && p.Company == nil &&
		p.Title == nil && p.Source == nil && p.Message == nil && p.Value == nil
}

// Apply merges the patch into l.
func (p LeadPatch) Apply(l *Lead) {
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Email != nil {
		l.Email = *p.Email
	}
	if p.Phone != nil {
		l.Phone = *p.Phone
	}
	if p.Company != nil {
		l.Company = *p.Company
	}
	if p.Title != nil {
		l.Title = *p.Title
	}
	if p.Source != nil {
		l.Source = *p.Source
	}
	if p.Message != nil {
		l.Message = *p.Message
	}
	if p.Value != nil {
		l.Value = NormalizeValue(*p.Value)
	}
}
