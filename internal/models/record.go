package models

import (
	"fmt"
	"time"
)

// EventRecord is a journaled event as stored in the events table.
type EventRecord struct {
	id         string
	Sequence   int
	Class      string
	Origin     string
	Payload    string // raw JSON of the decoded event
	ReceivedAt time.Time
}

var _ Model = (*EventRecord)(nil)

// NewEventRecord creates an unsaved record; the repository assigns ID and sequence on insert.
func NewEventRecord(class, origin, payload string, receivedAt time.Time) *EventRecord {
	return &EventRecord{Class: class, Origin: origin, Payload: payload, ReceivedAt: receivedAt}
}

func (r *EventRecord) ID() string           { return r.id }
func (r *EventRecord) SetID(id string)      { r.id = id }
func (r *EventRecord) CreatedAt() time.Time { return r.ReceivedAt }

func (r *EventRecord) Validate() error {
	if r.Payload == "" {
		return fmt.Errorf("event payload is required")
	}
	if r.ReceivedAt.IsZero() {
		return fmt.Errorf("event received_at is required")
	}
	return nil
}
