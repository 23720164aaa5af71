package broker

import (
	"context"

	"mdhub/pkg/models"
)

// Transport is the hub's view of the message broker. Implementations own the
// connection lifecycle; callers only see publish, drain and inspection
// operations.
type Transport interface {
	// PublishPrimary places a message on the primary queue and waits for the
	// broker's confirm before returning.
	PublishPrimary(ctx context.Context, msg models.QueueMessage) error

	// PublishHolding parks a message on the holding queue while processing is
	// administratively paused.
	PublishHolding(ctx context.Context, msg models.QueueMessage) error

	// DrainHolding forwards every parked message from the holding queue back
	// to the primary queue, returning how many were moved.
	DrainHolding(ctx context.Context) (int, error)

	// RetryDeadLetter moves every dead-lettered message back into circulation:
	// to the holding queue while processing is paused, to the primary queue
	// otherwise.
	RetryDeadLetter(ctx context.Context) (*RetryResult, error)

	// Depth reports the current message count of a declared queue.
	Depth(ctx context.Context, queue string) (int, error)

	// Healthy reports whether the primary confirm channel is usable.
	Healthy(ctx context.Context) error

	Close() error
}

// RetryResult describes one dead-letter recovery run.
type RetryResult struct {
	Recovered int    `json:"recovered"`
	Target    string `json:"target"`
	Message   string `json:"message"`
}

// StatusSource tells the transport whether masterdata processing is currently
// paused, which decides where recovered dead letters go.
type StatusSource interface {
	MasterdataPaused(ctx context.Context) (bool, error)
}

// RecordStore lets the transport flag persisted records whose messages were
// re-parked on the holding queue during recovery.
type RecordStore interface {
	MarkStatus(ctx context.Context, masterdataID, status string) error
}
