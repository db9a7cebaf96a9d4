package amqp

import (
	"encoding/json"
	"time"
)

// Record collections announced on the change stream.
const (
	CollectionTransactions = "transactions"
	CollectionUsers        = "users"
	CollectionProjects     = "projects"
	CollectionCategories   = "categories"
)

// Change operations.
const (
	OpUpsert = "upsert"
	OpDelete = "delete"
)

// RecordChangeMessage announces that one record changed. It carries only
// the record's coordinates; consumers reload the affected data from the
// local store rather than trusting a payload.
type RecordChangeMessage struct {
	Collection string    `json:"collection"`
	ID         string    `json:"id"`
	Op         string    `json:"op"`
	Version    int64     `json:"version"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewRecordChangeMessage creates a change message stamped with now.
func NewRecordChangeMessage(collection, id, op string, version int64) *RecordChangeMessage {
	return &RecordChangeMessage{
		Collection: collection,
		ID:         id,
		Op:         op,
		Version:    version,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RecordChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordChangeMessageFromJSON creates a message from JSON bytes
func RecordChangeMessageFromJSON(data []byte) (*RecordChangeMessage, error) {
	var msg RecordChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
