package model

import "time"

type EventType string

const (
	EventUserSignedUp   EventType = "user.signed_up"
	EventUserUpdated    EventType = "user.updated"
	EventUserDeleted    EventType = "user.deleted"
	EventMessagePosted  EventType = "message.posted"
	EventMessageDeleted EventType = "message.deleted"
	EventFollowCreated  EventType = "follow.created"
	EventFollowDeleted  EventType = "follow.deleted"
	EventLikeCreated    EventType = "like.created"
	EventLikeDeleted    EventType = "like.deleted"
)

// Event describes a committed change to the social graph.
// SubjectID is the followed user for follow events and the message for
// message and like events.
type Event struct {
	Type       EventType `json:"type"`
	ActorID    uint      `json:"actor_id"`
	SubjectID  uint      `json:"subject_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
