package mq

import "time"

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// RecordChanged is published after a successful write.
// Routing key: <entity>.<action>, e.g. sprint.created
type RecordChanged struct {
	Entity     string    `json:"entity"`
	Action     string    `json:"action"`
	Key        string    `json:"key"`
	Title      string    `json:"title,omitempty"`
	ActorEmpID string    `json:"actor_empid"`
	TraceID    string    `json:"trace_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e RecordChanged) RoutingKey() string {
	return e.Entity + "." + e.Action
}
