package amqp

import (
	"encoding/json"
	"time"
)

// EntrySyncMessage asks the worker to replicate one journal row to the
// spreadsheet. It carries only the ID and version; the worker fetches
// the row from the database.
type EntrySyncMessage struct {
	ID        int64     `json:"id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEntrySyncMessage(id, version int64) *EntrySyncMessage {
	return &EntrySyncMessage{
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

func (m *EntrySyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func EntrySyncMessageFromJSON(data []byte) (*EntrySyncMessage, error) {
	var msg EntrySyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// EntryDeleteMessage asks the worker to remove the replicated copy of a
// soft-deleted row. The spreadsheet has no id column, so the message
// carries the row content and the worker deletes the first match.
type EntryDeleteMessage struct {
	ID        int64     `json:"id"`
	Date      string    `json:"date"`
	Kind      string    `json:"kind"`
	Payload   string    `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEntryDeleteMessage(id int64, date, kind, payload string) *EntryDeleteMessage {
	return &EntryDeleteMessage{
		ID:        id,
		Date:      date,
		Kind:      kind,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

func (m *EntryDeleteMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func EntryDeleteMessageFromJSON(data []byte) (*EntryDeleteMessage, error) {
	var msg EntryDeleteMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
