package constants

import "time"

const (
	DefaultHTTPTimeout = 10 * time.Second
)

const (
	// DefaultReconnectDelay is how long the broker supervisor waits before
	// attempting to rebuild the primary confirm channel after a failure.
	DefaultReconnectDelay = time.Minute

	// DefaultDrainGrace is the settle period after the last holding-queue
	// message has been forwarded, before the drain connection is closed.
	DefaultDrainGrace = 2 * time.Second

	DefaultPublishTimeout = 30 * time.Second
)

const (
	DefaultPrimaryExchange    = "masterdata"
	DefaultPrimaryQueue       = "masterdata_process"
	DefaultHoldingExchange    = "masterdata_holding"
	DefaultHoldingQueue       = "masterdata_hold"
	DefaultDeadLetterExchange = "masterdata_dlx"
	DefaultDeadLetterQueue    = "masterdata_dead_letter"
)

const (
	HeaderMasterdataID   = "masterdata_id"
	HeaderClientID       = "client_id"
	HeaderOrganizationID = "organization_id"
)

const (
	CacheKeyPrefixOrganization = "org:"

	DefaultOrganizationCacheTTL = 15 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

const (
	HTTPStatusOKMin = 200
	HTTPStatusOKMax = 300
)
