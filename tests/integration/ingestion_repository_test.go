package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdhub/internal/ingestion"
	pkgerrors "mdhub/pkg/errors"
	"mdhub/pkg/models"
)

func TestIngestionRepository_InsertAndGet(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	ctx := context.Background()
	repo := ingestion.NewRepository(infra.PostgresDB)

	record := createTestRecord()
	require.NoError(t, repo.Insert(ctx, record))

	got, err := repo.GetByID(ctx, record.ID)
	require.NoError(t, err)

	assert.Equal(t, record.ID, got.ID)
	assert.Equal(t, "client-1", got.ClientID)
	assert.Equal(t, "org-1", got.OrganizationID)
	assert.Equal(t, models.StatusAccepted, got.Status)
	assert.Equal(t, record.TreeDocument, got.TreeDocument)

	md, ok := got.FlatDocument["Masterdata"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Acme", md["Name"])
}

func TestIngestionRepository_GetMissing(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	repo := ingestion.NewRepository(infra.PostgresDB)

	_, err := repo.GetByID(context.Background(), "11111111-1111-1111-1111-111111111111")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestIngestionRepository_MarkStatus(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	ctx := context.Background()
	repo := ingestion.NewRepository(infra.PostgresDB)

	record := createTestRecord()
	require.NoError(t, repo.Insert(ctx, record))

	require.NoError(t, repo.MarkStatus(ctx, record.ID, models.StatusOnLedger))

	got, err := repo.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOnLedger, got.Status)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt) || got.UpdatedAt.Equal(got.CreatedAt))
}

func TestIngestionRepository_MarkStatusMissing(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	repo := ingestion.NewRepository(infra.PostgresDB)

	err := repo.MarkStatus(context.Background(), "11111111-1111-1111-1111-111111111111", models.StatusFailed)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestIngestionRepository_Destinations(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	ctx := context.Background()
	repo := ingestion.NewRepository(infra.PostgresDB)

	record := createTestRecord()
	require.NoError(t, repo.Insert(ctx, record))

	first := &ingestion.Destination{MasterdataID: record.ID, Name: "primary", Status: "failed", Response: "broker down"}
	second := &ingestion.Destination{MasterdataID: record.ID, Name: "primary", Status: "published"}
	require.NoError(t, repo.InsertDestination(ctx, first))
	require.NoError(t, repo.InsertDestination(ctx, second))

	destinations, err := repo.ListDestinations(ctx, record.ID)
	require.NoError(t, err)
	require.Len(t, destinations, 2)

	assert.Equal(t, "failed", destinations[0].Status)
	assert.Equal(t, "broker down", destinations[0].Response)
	assert.Equal(t, "published", destinations[1].Status)
}
