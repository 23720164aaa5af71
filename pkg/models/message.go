package models

import "time"

// QueueMessage is the transport-level envelope placed on the primary and
// holding queues. The payload always carries the full, unredacted flat
// document: downstream ledger delivery needs the complete content even though
// the hub's own store only retains the redacted form.
type QueueMessage struct {
	MasterdataID   string                 `json:"masterdata_id"`
	ClientID       string                 `json:"client_id"`
	OrganizationID string                 `json:"organization_id"`
	Timestamp      time.Time              `json:"timestamp"`
	Payload        map[string]interface{} `json:"payload"`
}

// Headers returns the broker-native correlation headers. They duplicate the
// envelope identifiers so redelivery and retry can recover correlation
// without re-parsing the payload.
func (m QueueMessage) Headers() map[string]interface{} {
	return map[string]interface{}{
		"masterdata_id":   m.MasterdataID,
		"client_id":       m.ClientID,
		"organization_id": m.OrganizationID,
	}
}
