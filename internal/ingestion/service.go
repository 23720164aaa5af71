package ingestion

import (
	"context"
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"mdhub/internal/broker"
	"mdhub/internal/document"
	"mdhub/internal/logger"
	"mdhub/internal/organization"
	"mdhub/pkg/errors"
	"mdhub/pkg/logging"
	"mdhub/pkg/metrics"
	"mdhub/pkg/models"
	"mdhub/pkg/tracing"
)

// documentKind scopes rule lookups; the hub only ingests masterdata
// documents, events travel through a different pipeline.
const documentKind = "masterdata"

// Redactor applies an organization's privacy rules to both document
// representations in place.
type Redactor interface {
	Redact(ctx context.Context, flat map[string]interface{}, tree *etree.Document, organizationID, documentKind string) error
}

type Service interface {
	Ingest(ctx context.Context, raw []byte, clientID, source string) (*IngestResult, error)
	Get(ctx context.Context, id string) (*RecordDetail, error)
	Destinations(ctx context.Context, id string) ([]Destination, error)
	UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*MasterdataRecord, error)
}

type service struct {
	repo      Repository
	resolver  organization.Resolver
	redactor  Redactor
	transport broker.Transport
	status    broker.StatusSource
	logger    logger.Logger
}

func NewService(
	repo Repository,
	resolver organization.Resolver,
	redactor Redactor,
	transport broker.Transport,
	status broker.StatusSource,
	log logger.Logger,
) Service {
	return &service{
		repo:      repo,
		resolver:  resolver,
		redactor:  redactor,
		transport: transport,
		status:    status,
		logger:    log,
	}
}

// Ingest runs the full pipeline for one document: parse, resolve the owning
// organization, redact the stored copies, persist, and hand the unredacted
// content to the broker. The persisted record only ever holds the redacted
// form; the broker message only ever carries the full form.
func (s *service) Ingest(ctx context.Context, raw []byte, clientID, source string) (*IngestResult, error) {
	ctx, span := tracing.GetTracer("hub-service").Start(ctx, "ingestion.ingest")
	defer span.End()

	start := time.Now()

	result, err := s.ingest(ctx, raw, clientID, source)
	if err != nil {
		metrics.IngestionsTotal.WithLabelValues("error").Inc()
		metrics.ObserveIngestionDuration(time.Since(start), "error")
		return nil, err
	}

	metrics.IngestionsTotal.WithLabelValues("ok").Inc()
	metrics.ObserveIngestionDuration(time.Since(start), "ok")
	return result, nil
}

func (s *service) ingest(ctx context.Context, raw []byte, clientID, source string) (*IngestResult, error) {
	doc, err := document.Decode(raw)
	if err != nil {
		return nil, errors.ErrValidation.WithCause(err).WithDetail("message", err.Error())
	}

	org, err := s.resolver.Resolve(ctx, clientID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrOrganizationResolve)
	}

	masterdataID := uuid.New().String()
	ctx = logging.WithMasterdataID(ctx, masterdataID)
	ctx = logging.WithClientID(ctx, clientID)
	ctx = logging.WithOrganizationID(ctx, org.ID)

	// The broker payload must stay complete, so the full flat document is
	// cloned off before redaction mutates the stored copies.
	full := document.CloneFlat(doc.Flat)

	if err := s.redactor.Redact(ctx, doc.Flat, doc.Tree, org.ID, documentKind); err != nil {
		return nil, err
	}

	paused, err := s.status.MasterdataPaused(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrPersistence)
	}

	treeXML, err := doc.TreeXML()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal)
	}

	now := time.Now()
	status := models.StatusAccepted
	if paused {
		status = models.StatusProcessing
	}

	record := &MasterdataRecord{
		ID:             masterdataID,
		ReceivedAt:     now,
		ClientID:       clientID,
		OrganizationID: org.ID,
		Source:         source,
		Status:         status,
		TreeDocument:   treeXML,
		FlatDocument:   doc.Flat,
	}

	if err := s.repo.Insert(ctx, record); err != nil {
		return nil, errors.Wrap(err, errors.ErrPersistence)
	}

	msg := models.QueueMessage{
		MasterdataID:   masterdataID,
		ClientID:       clientID,
		OrganizationID: org.ID,
		Timestamp:      now,
		Payload:        full,
	}

	destination := "primary"
	publish := s.transport.PublishPrimary
	if paused {
		destination = "holding"
		publish = s.transport.PublishHolding
	}

	if err := publish(ctx, msg); err != nil {
		s.recordDestination(ctx, masterdataID, destination, "failed", err.Error())
		if markErr := s.repo.MarkStatus(ctx, masterdataID, models.StatusFailed); markErr != nil {
			s.logger.ErrorwCtx(ctx, "Failed to mark record after publish failure",
				"error", markErr,
			)
		}
		return nil, err
	}

	s.recordDestination(ctx, masterdataID, destination, "published", "")

	s.logger.InfowCtx(ctx, "Masterdata ingested",
		"destination", destination,
		"status", status,
	)

	return &IngestResult{
		ID:             masterdataID,
		Status:         status,
		OrganizationID: org.ID,
	}, nil
}

// recordDestination appends a delivery-attempt row. The attempt already
// happened, so a bookkeeping failure is logged rather than surfaced.
func (s *service) recordDestination(ctx context.Context, masterdataID, name, status, response string) {
	dest := &Destination{
		MasterdataID: masterdataID,
		Name:         name,
		Status:       status,
		Response:     response,
	}
	if err := s.repo.InsertDestination(ctx, dest); err != nil {
		s.logger.ErrorwCtx(ctx, "Failed to record destination",
			"destination", name,
			"error", err,
		)
	}
}

func (s *service) Get(ctx context.Context, id string) (*RecordDetail, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	destinations, err := s.repo.ListDestinations(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrPersistence)
	}

	return &RecordDetail{
		MasterdataRecord: *record,
		Destinations:     destinations,
	}, nil
}

func (s *service) Destinations(ctx context.Context, id string) ([]Destination, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListDestinations(ctx, id)
}

// UpdateStatus records a downstream delivery confirmation or failure.
func (s *service) UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*MasterdataRecord, error) {
	if err := s.repo.MarkStatus(ctx, id, req.Status); err != nil {
		return nil, err
	}

	s.logger.InfowCtx(ctx, "Masterdata status updated",
		"masterdata_id", id,
		"status", req.Status,
	)

	return s.repo.GetByID(ctx, id)
}
