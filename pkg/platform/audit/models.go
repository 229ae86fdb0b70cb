// Package audit captures administrative actions on authorization records.
// Events are transport-agnostic so stores and sinks can fan out.
package audit

import (
	"context"
	"time"
)

// Event is emitted from domain logic for every administrative mutation.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	// EntityID is the id of the record acted on (clearance, exclusion,
	// provider or representative id, as the action implies).
	EntityID string `json:"entity_id"`
	// ScopeKey is set for clearance/exclusion events so compliance review
	// can reconstruct the non-overlap scope a write was validated against.
	ScopeKey string `json:"scope_key,omitempty"`
	// Actor is the authenticated administrator subject.
	Actor string `json:"actor,omitempty"`
	// Reason carries the free-text cause supplied on the record, if any.
	Reason string `json:"reason,omitempty"`
	// RequestID correlates the event with the HTTP access log.
	RequestID string `json:"request_id,omitempty"`
}

// Action identifies what happened.
type Action string

const (
	ActionClearanceCreated Action = "clearance_created"
	ActionClearanceUpdated Action = "clearance_updated"
	ActionClearanceDeleted Action = "clearance_deleted"

	ActionExclusionCreated Action = "exclusion_created"
	ActionExclusionUpdated Action = "exclusion_updated"
	ActionExclusionDeleted Action = "exclusion_deleted"

	ActionProviderCreated Action = "provider_created"
	ActionProviderUpdated Action = "provider_updated"
	ActionProviderDeleted Action = "provider_deleted"

	ActionRepresentativeCreated Action = "representative_created"
	ActionRepresentativeDeleted Action = "representative_deleted"
)

// Store persists events for in-process querying.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByEntity(ctx context.Context, entityID string) ([]Event, error)
}

// Sink ships events out of process (the kafka producer satisfies this).
type Sink interface {
	Publish(ctx context.Context, key, value []byte) error
}
