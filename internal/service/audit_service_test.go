package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uniarchive/archive-api/internal/models"
)

type mockAuditRepo struct {
	entries   []models.AuditEntry
	lastSince time.Time
	lastLimit int
	lastN     int
}

func (m *mockAuditRepo) ListSince(ctx context.Context, since time.Time, limit int) ([]models.AuditEntry, error) {
	m.lastSince = since
	m.lastLimit = limit
	return m.entries, nil
}

func (m *mockAuditRepo) Recent(ctx context.Context, n int) ([]models.AuditEntry, error) {
	m.lastN = n
	if n > len(m.entries) {
		n = len(m.entries)
	}
	return m.entries[:n], nil
}

func sampleEntries() []models.AuditEntry {
	actor := "u1"
	return []models.AuditEntry{
		{ID: "a3", ActorID: &actor, Action: models.AuditBorrow, Entity: "Loan", Details: "Dr. Chen borrowed record CS101-F23-001", IPAddress: "10.0.0.1", CreatedAt: time.Now()},
		{ID: "a2", ActorID: &actor, Action: models.AuditCreate, Entity: "Record", Details: "Added new record: CS101-F23-001", CreatedAt: time.Now().Add(-time.Hour)},
		{ID: "a1", Action: models.AuditLogin, Entity: "User", Details: "Root Admin logged in", CreatedAt: time.Now().Add(-2 * time.Hour)},
	}
}

func TestAuditServiceListWindow(t *testing.T) {
	repo := &mockAuditRepo{entries: sampleEntries()}
	svc := NewAuditService(repo, nil, AuditServiceConfig{RetentionWindow: 30 * 24 * time.Hour}, zap.NewNop())
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	entries, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Equal(t, now.Add(-30*24*time.Hour), repo.lastSince)
	assert.Zero(t, repo.lastLimit)
}

func TestAuditServiceDigest(t *testing.T) {
	repo := &mockAuditRepo{entries: sampleEntries()}
	svc := NewAuditService(repo, nil, AuditServiceConfig{}, zap.NewNop())

	digest, err := svc.Digest(context.Background(), 3)
	require.NoError(t, err)
	parts := strings.Split(digest, " | ")
	require.Len(t, parts, 3)
	assert.Equal(t, "Borrow: Dr. Chen borrowed record CS101-F23-001", parts[0])
	assert.Equal(t, 3, repo.lastN)
}

func TestAuditServiceExportCSV(t *testing.T) {
	repo := &mockAuditRepo{entries: sampleEntries()}
	svc := NewAuditService(repo, nil, AuditServiceConfig{ExportMaxRows: 100}, zap.NewNop())

	payload, err := svc.ExportCSV(context.Background())
	require.NoError(t, err)
	body := string(payload)
	assert.Contains(t, body, "Timestamp,Actor,Action,Entity,Details,IP Address")
	assert.Contains(t, body, "Added new record: CS101-F23-001")
	// Entries without an actor fall back to a system marker.
	assert.Contains(t, body, "system")
	assert.Equal(t, 100, repo.lastLimit)
}

func TestAuditServiceExportPDF(t *testing.T) {
	repo := &mockAuditRepo{entries: sampleEntries()}
	svc := NewAuditService(repo, nil, AuditServiceConfig{}, zap.NewNop())

	payload, err := svc.ExportPDF(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}
