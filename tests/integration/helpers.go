package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"mdhub/internal/broker"
	"mdhub/internal/config"
	"mdhub/internal/ingestion"
	"mdhub/internal/logger"
	"mdhub/pkg/models"
)

const (
	containerStartupTimeout = 60
	brokerReadyTimeout      = 30 * time.Second
)

func createTestLogger() logger.Logger {
	return logger.NopLogger()
}

func testRabbitConfig(url string) config.RabbitMQConfig {
	return config.RabbitMQConfig{
		URL:                url,
		PrimaryExchange:    "masterdata",
		PrimaryQueue:       "masterdata_process",
		HoldingExchange:    "masterdata_holding",
		HoldingQueue:       "masterdata_hold",
		DeadLetterExchange: "masterdata_dlx",
		DeadLetterQueue:    "masterdata_dead_letter",
		ReconnectDelay:     500 * time.Millisecond,
		DrainGrace:         500 * time.Millisecond,
		PublishTimeout:     10 * time.Second,
	}
}

func waitForBroker(t *testing.T, transport *broker.AMQPTransport) {
	t.Helper()
	require.Eventually(t, func() bool {
		return transport.Healthy(context.Background()) == nil
	}, brokerReadyTimeout, 100*time.Millisecond, "broker transport did not become healthy")
}

func createTestMessage(payload map[string]interface{}) models.QueueMessage {
	return models.QueueMessage{
		MasterdataID:   uuid.New().String(),
		ClientID:       "client-1",
		OrganizationID: "org-1",
		Timestamp:      time.Now().UTC(),
		Payload:        payload,
	}
}

func createTestRecord() *ingestion.MasterdataRecord {
	return &ingestion.MasterdataRecord{
		ID:             uuid.New().String(),
		ReceivedAt:     time.Now().UTC(),
		ClientID:       "client-1",
		OrganizationID: "org-1",
		Source:         "erp",
		Status:         models.StatusAccepted,
		TreeDocument:   "<Masterdata><Name>Acme</Name></Masterdata>",
		FlatDocument: map[string]interface{}{
			"Masterdata": map[string]interface{}{"Name": "Acme"},
		},
	}
}

// pausedStatus is a fixed StatusSource for transport tests.
type pausedStatus struct {
	paused bool
}

func (s *pausedStatus) MasterdataPaused(ctx context.Context) (bool, error) {
	return s.paused, nil
}

// capturingRecords collects status updates the transport reports back.
type capturingRecords struct {
	statuses map[string]string
}

func newCapturingRecords() *capturingRecords {
	return &capturingRecords{statuses: make(map[string]string)}
}

func (r *capturingRecords) MarkStatus(ctx context.Context, masterdataID, status string) error {
	r.statuses[masterdataID] = status
	return nil
}
