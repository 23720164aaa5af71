package queue

import "time"

// Status is one row of the insert-only queue status ledger. The newest row is
// authoritative; earlier rows are kept as the pause/resume audit trail.
type Status struct {
	ID               int64     `json:"id"`
	PausedEvents     bool      `json:"pausedEvents"`
	PausedMasterdata bool      `json:"pausedMasterdata"`
	UpdatedBy        string    `json:"updatedBy"`
	CreatedAt        time.Time `json:"createdAt"`
}

// SetStatusRequest sets both pause flags at once. Pointers distinguish an
// explicit false from an omitted field.
type SetStatusRequest struct {
	PausedEvents     *bool  `json:"pausedEvents" binding:"required"`
	PausedMasterdata *bool  `json:"pausedMasterdata" binding:"required"`
	UpdatedBy        string `json:"updatedBy" binding:"required"`
}

// DepthReport maps queue names to their last observed message counts.
type DepthReport struct {
	Primary    int `json:"primary"`
	Holding    int `json:"holding"`
	DeadLetter int `json:"deadLetter"`
}
