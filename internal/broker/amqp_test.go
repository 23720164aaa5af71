package broker

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdhub/internal/config"
	"mdhub/internal/logger"
	"mdhub/pkg/errors"
	"mdhub/pkg/models"
)

func testTransport(cfg config.RabbitMQConfig, dial func(url string) (*amqp.Connection, error)) *AMQPTransport {
	return &AMQPTransport{
		cfg:    cfg,
		logger: logger.NopLogger(),
		dial:   dial,
		done:   make(chan struct{}),
	}
}

func TestTransport_ReconnectSchedule(t *testing.T) {
	var attempts atomic.Int32
	dial := func(url string) (*amqp.Connection, error) {
		attempts.Add(1)
		return nil, fmt.Errorf("broker unreachable")
	}

	tr := testTransport(config.RabbitMQConfig{
		URL:            "amqp://localhost:5672",
		ReconnectDelay: 20 * time.Millisecond,
	}, dial)
	go tr.supervise()
	defer tr.Close()

	// one immediate attempt plus roughly one per delay interval
	assert.Eventually(t, func() bool {
		return attempts.Load() >= 3
	}, 2*time.Second, 5*time.Millisecond)
}

func TestTransport_CloseStopsReconnecting(t *testing.T) {
	var attempts atomic.Int32
	dial := func(url string) (*amqp.Connection, error) {
		attempts.Add(1)
		return nil, fmt.Errorf("broker unreachable")
	}

	tr := testTransport(config.RabbitMQConfig{
		URL:            "amqp://localhost:5672",
		ReconnectDelay: 10 * time.Millisecond,
	}, dial)
	go tr.supervise()

	require.Eventually(t, func() bool {
		return attempts.Load() >= 1
	}, time.Second, time.Millisecond)

	require.NoError(t, tr.Close())

	// let any in-flight attempt finish, then the count must hold steady
	time.Sleep(30 * time.Millisecond)
	settled := attempts.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, attempts.Load())
}

func TestTransport_PublishPrimary_FailsFastWithoutChannel(t *testing.T) {
	tr := testTransport(config.RabbitMQConfig{PrimaryQueue: "masterdata_process"}, nil)

	err := tr.PublishPrimary(context.Background(), models.QueueMessage{MasterdataID: "md-1"})
	require.Error(t, err)
	assert.True(t, errors.IsTransportUnavailable(err))
}

func TestTransport_Healthy_ReportsDownChannel(t *testing.T) {
	tr := testTransport(config.RabbitMQConfig{}, nil)
	assert.Error(t, tr.Healthy(context.Background()))
}

func TestTransport_CloseIsIdempotent(t *testing.T) {
	tr := testTransport(config.RabbitMQConfig{}, nil)
	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())
}

type stubStatus struct {
	paused bool
	err    error
}

func (s *stubStatus) MasterdataPaused(ctx context.Context) (bool, error) {
	return s.paused, s.err
}

func TestTransport_RetryDeadLetter_StatusFailureShortCircuits(t *testing.T) {
	var attempts atomic.Int32
	dial := func(url string) (*amqp.Connection, error) {
		attempts.Add(1)
		return nil, fmt.Errorf("should not dial")
	}

	tr := testTransport(config.RabbitMQConfig{}, dial)
	tr.status = &stubStatus{err: fmt.Errorf("status unavailable")}

	_, err := tr.RetryDeadLetter(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(0), attempts.Load())
}
