package ingestion

import "time"

// MasterdataRecord is the persisted form of one ingested document. Both
// document columns hold the redacted representations; the unredacted content
// only ever exists in flight on the broker.
type MasterdataRecord struct {
	ID             string                 `json:"id"`
	ReceivedAt     time.Time              `json:"receivedAt"`
	ClientID       string                 `json:"clientId"`
	OrganizationID string                 `json:"organizationId"`
	Source         string                 `json:"source"`
	Status         string                 `json:"status"`
	TreeDocument   string                 `json:"treeDocument"`
	FlatDocument   map[string]interface{} `json:"flatDocument"`
	CreatedAt      time.Time              `json:"createdAt"`
	UpdatedAt      time.Time              `json:"updatedAt"`
}

// Destination records one delivery attempt of a record's message to a queue.
type Destination struct {
	ID           int64     `json:"id"`
	MasterdataID string    `json:"masterdataId"`
	Name         string    `json:"name"`
	Status       string    `json:"status"`
	Response     string    `json:"response"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IngestResult is the accepted-ingestion response body.
type IngestResult struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	OrganizationID string `json:"organizationId"`
}

// RecordDetail is a record together with its delivery attempts.
type RecordDetail struct {
	MasterdataRecord
	Destinations []Destination `json:"destinations"`
}

// UpdateStatusRequest confirms or rejects downstream delivery of a record.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=processing on_ledger failed"`
}
