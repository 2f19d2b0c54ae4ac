package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/luminacrm/lumina/internal/entity"
)

func TestDeletedLeadStashRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "luminactl", "last-deleted.yaml")

	lead := entity.Lead{
		ID: "42", Name: "Ada", Email: "ada@example.com", Company: "Analytical",
		Status: entity.StatusContacted, Source: entity.SourceReferral, Value: 5000,
		DateAdded: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Notes: []entity.Note{
			{ID: "n1", Text: "called them", Author: "Admin", Timestamp: time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)},
		},
	}
	assert.NoError(t, stashDeletedLead(path, lead))

	got, err := loadDeletedLead(path)
	assert.NoError(t, err)
	assert.Equal(t, "42", got.ID)
	assert.Equal(t, entity.StatusContacted, got.Status)
	assert.Equal(t, 5000.0, got.Value)
	assert.Len(t, got.Notes, 1)
	assert.Equal(t, "called them", got.Notes[0].Text)
}

func TestLoadDeletedLeadMissingFile(t *testing.T) {
	_, err := loadDeletedLead(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "nothing to restore")
}
