package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sourcedomain "github.com/jindalsaj/aura/internal/source/domain"
	"github.com/jindalsaj/aura/internal/sync/domain"
	"github.com/jindalsaj/aura/internal/sync/dto"
)

func TestGetSyncStatus_NoConnectedSources(t *testing.T) {
	env := newTestEnv(t)
	env.credentials.connections = nil

	status, err := env.usecase.GetSyncStatus("7")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIdle, status.Status)
	assert.Zero(t, status.Progress)
	assert.Empty(t, status.Sources)
}

func TestGetSyncStatus_NeverSyncedSourcesAreIdle(t *testing.T) {
	mail := &fakeConnector{sourceType: sourcedomain.SourceMail}
	bank := &fakeConnector{sourceType: sourcedomain.SourceBank}
	env := newTestEnv(t, mail, bank)

	status, err := env.usecase.GetSyncStatus("7")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIdle, status.Status)
	require.Len(t, status.Sources, 2)
	for _, s := range status.Sources {
		assert.Equal(t, domain.StatusIdle, s.Status)
		assert.Zero(t, s.Progress)
	}
}

func TestGetSyncStatus_SyncingWinsOverEverything(t *testing.T) {
	mail := &fakeConnector{sourceType: sourcedomain.SourceMail}
	bank := &fakeConnector{sourceType: sourcedomain.SourceBank}
	env := newTestEnv(t, mail, bank)

	env.sessions.TryMarkSyncing("7", sourcedomain.SourceMail)
	env.sessions.SetProgress("7", sourcedomain.SourceMail, domain.ProgressFetched)
	env.sessions.TryMarkSyncing("7", sourcedomain.SourceBank)
	env.sessions.MarkError("7", sourcedomain.SourceBank, "credential expired")

	status, err := env.usecase.GetSyncStatus("7")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSyncing, status.Status)
	// floor((50 + 0) / 2)
	assert.Equal(t, 25, status.Progress)
}

func TestGetSyncStatus_ErrorWinsOverCompleted(t *testing.T) {
	mail := &fakeConnector{sourceType: sourcedomain.SourceMail}
	bank := &fakeConnector{sourceType: sourcedomain.SourceBank}
	env := newTestEnv(t, mail, bank)

	env.sessions.TryMarkSyncing("7", sourcedomain.SourceMail)
	env.sessions.MarkCompleted("7", sourcedomain.SourceMail)
	env.sessions.TryMarkSyncing("7", sourcedomain.SourceBank)
	env.sessions.MarkError("7", sourcedomain.SourceBank, "plaid outage")

	status, err := env.usecase.GetSyncStatus("7")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusError, status.Status)

	bySource := map[sourcedomain.SourceType]dto.SourceSyncStatus{}
	for _, s := range status.Sources {
		bySource[s.SourceType] = s
	}
	assert.Equal(t, domain.StatusCompleted, bySource[sourcedomain.SourceMail].Status)
	assert.Equal(t, "plaid outage", bySource[sourcedomain.SourceBank].ErrorDetail)
}

func TestGetSyncStatus_AllFinishedIsCompleted(t *testing.T) {
	mail := &fakeConnector{sourceType: sourcedomain.SourceMail}
	bank := &fakeConnector{sourceType: sourcedomain.SourceBank}
	env := newTestEnv(t, mail, bank)

	for _, src := range []sourcedomain.SourceType{sourcedomain.SourceMail, sourcedomain.SourceBank} {
		env.sessions.TryMarkSyncing("7", src)
		env.sessions.MarkCompleted("7", src)
	}

	status, err := env.usecase.GetSyncStatus("7")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, status.Status)
	assert.Equal(t, domain.ProgressDone, status.Progress)
}

func TestGetSyncStatus_CompletedPlusIdleIsCompleted(t *testing.T) {
	mail := &fakeConnector{sourceType: sourcedomain.SourceMail}
	bank := &fakeConnector{sourceType: sourcedomain.SourceBank}
	env := newTestEnv(t, mail, bank)

	env.sessions.TryMarkSyncing("7", sourcedomain.SourceMail)
	env.sessions.MarkCompleted("7", sourcedomain.SourceMail)

	status, err := env.usecase.GetSyncStatus("7")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, status.Status)
	// Only mail has a session, so its progress is the overall progress.
	assert.Equal(t, domain.ProgressDone, status.Progress)
}
