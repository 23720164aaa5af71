package models

// Record lifecycle statuses. A record is "accepted" once its message sits on
// the primary queue, "processing" while it is parked on the holding queue,
// "on_ledger" once downstream delivery is confirmed, and "failed" when no
// queue would take it.
const (
	StatusAccepted   = "accepted"
	StatusProcessing = "processing"
	StatusOnLedger   = "on_ledger"
	StatusFailed     = "failed"
)
