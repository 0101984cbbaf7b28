package cli

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/passclient/internal/client/models"
	"github.com/stretchr/testify/assert"
)

func TestRenderRecords(t *testing.T) {
	assert.Contains(t, renderRecords(nil), "No records.")

	out := renderRecords(models.Records{
		{ID: "1", Website: "gmail.com", Username: "alice", Value: "secret"},
		{ID: "2", Website: "github.com", Username: "al", Value: "other"},
	})
	assert.Contains(t, out, "WEBSITE")
	assert.Contains(t, out, "gmail.com")
	assert.Contains(t, out, "github.com")
	assert.NotContains(t, out, "secret")
}

func TestRenderRecord_MasksSecret(t *testing.T) {
	r := models.PasswordRecord{ID: "7", Website: "a.com", Username: "u", Value: "hunter2", Description: "work"}

	masked := renderRecord(r, false)
	assert.Contains(t, masked, maskedSecret)
	assert.NotContains(t, masked, "hunter2")
	assert.Contains(t, masked, "work")

	assert.Contains(t, renderRecord(r, true), "hunter2")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}

func TestRenderExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.Contains(t, renderExpiry(models.Session{Token: "opaque"}, now), "unknown")
	assert.Contains(t, renderExpiry(models.Session{ExpiresAt: now.Add(-time.Minute)}, now), "expired")
	assert.Contains(t, renderExpiry(models.Session{ExpiresAt: now.Add(90 * time.Minute)}, now), "in 1h30m0s")
}
