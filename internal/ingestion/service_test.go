package ingestion

import (
	"context"
	"fmt"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdhub/internal/broker"
	"mdhub/internal/logger"
	"mdhub/internal/organization"
	"mdhub/pkg/errors"
	"mdhub/pkg/models"
)

const testXML = `<Masterdata><Customer><Name>Acme</Name><Email>ceo@acme.test</Email></Customer></Masterdata>`

type fakeRepo struct {
	records      map[string]*MasterdataRecord
	destinations []Destination
	statuses     map[string]string
	insertErr    error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		records:  make(map[string]*MasterdataRecord),
		statuses: make(map[string]string),
	}
}

func (r *fakeRepo) Insert(ctx context.Context, record *MasterdataRecord) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.records[record.ID] = record
	r.statuses[record.ID] = record.Status
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (*MasterdataRecord, error) {
	record, ok := r.records[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	copied := *record
	copied.Status = r.statuses[id]
	return &copied, nil
}

func (r *fakeRepo) MarkStatus(ctx context.Context, masterdataID, status string) error {
	if _, ok := r.records[masterdataID]; !ok {
		return errors.ErrNotFound
	}
	r.statuses[masterdataID] = status
	return nil
}

func (r *fakeRepo) InsertDestination(ctx context.Context, dest *Destination) error {
	r.destinations = append(r.destinations, *dest)
	return nil
}

func (r *fakeRepo) ListDestinations(ctx context.Context, masterdataID string) ([]Destination, error) {
	out := make([]Destination, 0)
	for _, d := range r.destinations {
		if d.MasterdataID == masterdataID {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeResolver struct {
	org *organization.Organization
	err error
}

func (r *fakeResolver) Resolve(ctx context.Context, clientID string) (*organization.Organization, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.org, nil
}

type fakeRedactor struct {
	err    error
	called bool
}

func (r *fakeRedactor) Redact(ctx context.Context, flat map[string]interface{}, tree *etree.Document, organizationID, documentKind string) error {
	r.called = true
	if r.err != nil {
		return r.err
	}
	// blank the email the way the real engine would
	if md, ok := flat["Masterdata"].(map[string]interface{}); ok {
		if customer, ok := md["Customer"].(map[string]interface{}); ok {
			customer["Email"] = ""
		}
	}
	for _, el := range tree.FindElements("/Masterdata/Customer/Email") {
		el.Parent().RemoveChild(el)
	}
	return nil
}

type fakeTransport struct {
	primary    []models.QueueMessage
	holding    []models.QueueMessage
	primaryErr error
	holdingErr error
}

func (t *fakeTransport) PublishPrimary(ctx context.Context, msg models.QueueMessage) error {
	if t.primaryErr != nil {
		return t.primaryErr
	}
	t.primary = append(t.primary, msg)
	return nil
}

func (t *fakeTransport) PublishHolding(ctx context.Context, msg models.QueueMessage) error {
	if t.holdingErr != nil {
		return t.holdingErr
	}
	t.holding = append(t.holding, msg)
	return nil
}

func (t *fakeTransport) DrainHolding(ctx context.Context) (int, error) { return 0, nil }
func (t *fakeTransport) RetryDeadLetter(ctx context.Context) (*broker.RetryResult, error) {
	return &broker.RetryResult{}, nil
}
func (t *fakeTransport) Depth(ctx context.Context, queue string) (int, error) { return 0, nil }
func (t *fakeTransport) Healthy(ctx context.Context) error                    { return nil }
func (t *fakeTransport) Close() error                                         { return nil }

type fakeStatus struct {
	paused bool
	err    error
}

func (s *fakeStatus) MasterdataPaused(ctx context.Context) (bool, error) {
	return s.paused, s.err
}

func newTestService(repo *fakeRepo, transport *fakeTransport, status *fakeStatus) Service {
	return NewService(
		repo,
		&fakeResolver{org: &organization.Organization{ID: "org-1", Name: "Acme Group"}},
		&fakeRedactor{},
		transport,
		status,
		logger.NopLogger(),
	)
}

func TestService_Ingest_PublishesToPrimaryWhenRunning(t *testing.T) {
	repo := newFakeRepo()
	transport := &fakeTransport{}
	svc := newTestService(repo, transport, &fakeStatus{paused: false})

	result, err := svc.Ingest(context.Background(), []byte(testXML), "client-1", "erp")
	require.NoError(t, err)

	assert.Equal(t, models.StatusAccepted, result.Status)
	assert.Equal(t, "org-1", result.OrganizationID)
	require.Len(t, transport.primary, 1)
	assert.Empty(t, transport.holding)

	record := repo.records[result.ID]
	require.NotNil(t, record)
	assert.Equal(t, models.StatusAccepted, record.Status)
	assert.Equal(t, "client-1", record.ClientID)
	assert.Equal(t, "erp", record.Source)

	require.Len(t, repo.destinations, 1)
	assert.Equal(t, "primary", repo.destinations[0].Name)
	assert.Equal(t, "published", repo.destinations[0].Status)
}

func TestService_Ingest_ParksOnHoldingWhenPaused(t *testing.T) {
	repo := newFakeRepo()
	transport := &fakeTransport{}
	svc := newTestService(repo, transport, &fakeStatus{paused: true})

	result, err := svc.Ingest(context.Background(), []byte(testXML), "client-1", "")
	require.NoError(t, err)

	assert.Equal(t, models.StatusProcessing, result.Status)
	require.Len(t, transport.holding, 1)
	assert.Empty(t, transport.primary)

	require.Len(t, repo.destinations, 1)
	assert.Equal(t, "holding", repo.destinations[0].Name)
}

func TestService_Ingest_StoredRecordIsRedactedMessageIsNot(t *testing.T) {
	repo := newFakeRepo()
	transport := &fakeTransport{}
	svc := newTestService(repo, transport, &fakeStatus{})

	result, err := svc.Ingest(context.Background(), []byte(testXML), "client-1", "")
	require.NoError(t, err)

	record := repo.records[result.ID]
	require.NotNil(t, record)

	storedEmail := record.FlatDocument["Masterdata"].(map[string]interface{})["Customer"].(map[string]interface{})["Email"]
	assert.Equal(t, "", storedEmail)
	assert.NotContains(t, record.TreeDocument, "ceo@acme.test")

	require.Len(t, transport.primary, 1)
	sentEmail := transport.primary[0].Payload["Masterdata"].(map[string]interface{})["Customer"].(map[string]interface{})["Email"]
	assert.Equal(t, "ceo@acme.test", sentEmail)
}

func TestService_Ingest_PublishFailureMarksRecordFailed(t *testing.T) {
	repo := newFakeRepo()
	transport := &fakeTransport{primaryErr: errors.ErrTransportUnavailable}
	svc := newTestService(repo, transport, &fakeStatus{})

	_, err := svc.Ingest(context.Background(), []byte(testXML), "client-1", "")
	require.Error(t, err)
	assert.True(t, errors.IsTransportUnavailable(err))

	require.Len(t, repo.records, 1)
	for id := range repo.records {
		assert.Equal(t, models.StatusFailed, repo.statuses[id])
	}

	require.Len(t, repo.destinations, 1)
	assert.Equal(t, "failed", repo.destinations[0].Status)
	assert.NotEmpty(t, repo.destinations[0].Response)
}

func TestService_Ingest_InvalidDocument(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeTransport{}, &fakeStatus{})

	_, err := svc.Ingest(context.Background(), []byte("not xml at all"), "client-1", "")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Empty(t, repo.records)
}

func TestService_Ingest_ResolverFailure(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(
		repo,
		&fakeResolver{err: fmt.Errorf("resolver down")},
		&fakeRedactor{},
		&fakeTransport{},
		&fakeStatus{},
		logger.NopLogger(),
	)

	_, err := svc.Ingest(context.Background(), []byte(testXML), "client-1", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrOrganizationResolve))
	assert.Empty(t, repo.records)
}

func TestService_Ingest_RedactionFailureAborts(t *testing.T) {
	repo := newFakeRepo()
	transport := &fakeTransport{}
	svc := NewService(
		repo,
		&fakeResolver{org: &organization.Organization{ID: "org-1"}},
		&fakeRedactor{err: errors.ErrRuleFetch},
		transport,
		&fakeStatus{},
		logger.NopLogger(),
	)

	_, err := svc.Ingest(context.Background(), []byte(testXML), "client-1", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrRuleFetch))
	assert.Empty(t, repo.records)
	assert.Empty(t, transport.primary)
}

func TestService_UpdateStatus(t *testing.T) {
	repo := newFakeRepo()
	transport := &fakeTransport{}
	svc := newTestService(repo, transport, &fakeStatus{})

	result, err := svc.Ingest(context.Background(), []byte(testXML), "client-1", "")
	require.NoError(t, err)

	record, err := svc.UpdateStatus(context.Background(), result.ID, UpdateStatusRequest{Status: models.StatusOnLedger})
	require.NoError(t, err)
	assert.Equal(t, models.StatusOnLedger, record.Status)
}

func TestService_UpdateStatus_UnknownRecord(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeTransport{}, &fakeStatus{})

	_, err := svc.UpdateStatus(context.Background(), "missing", UpdateStatusRequest{Status: models.StatusOnLedger})
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestService_Get_WithDestinations(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeTransport{}, &fakeStatus{})

	result, err := svc.Ingest(context.Background(), []byte(testXML), "client-1", "")
	require.NoError(t, err)

	detail, err := svc.Get(context.Background(), result.ID)
	require.NoError(t, err)
	assert.Equal(t, result.ID, detail.ID)
	require.Len(t, detail.Destinations, 1)
	assert.Equal(t, "primary", detail.Destinations[0].Name)
}
