// Package events defines the business event envelope and the execution
// lifecycle notifications published on the event bus.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/vendura/automation/pkg/models"
)

// Topics.
const (
	BusinessTopic  = "vendura.business.events"  // Incoming store events (orders, stock, customers)
	LifecycleTopic = "vendura.execution.events" // Outgoing execution lifecycle notifications
)

// Message metadata keys.
const (
	MetadataKey     = "key"
	TypeMetadataKey = "event_type"
)

// EventType names a lifecycle notification.
type EventType string

const (
	ExecutionStartedEvent   EventType = "execution.started"
	ExecutionCompletedEvent EventType = "execution.completed"
	ExecutionFailedEvent    EventType = "execution.failed"
	ExecutionCancelledEvent EventType = "execution.cancelled"
)

// BusinessEvent is the envelope every store event arrives in: a type string,
// a free-form data payload and the emission timestamp.
type BusinessEvent struct {
	ID        string             `json:"id"`
	Type      models.TriggerType `json:"type"`
	Data      map[string]any     `json:"data"`
	Timestamp time.Time          `json:"timestamp"`
}

// Event is implemented by every lifecycle notification.
type Event interface {
	GetType() EventType
}

// BaseEvent carries the fields shared by all lifecycle notifications.
type BaseEvent struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	WorkflowID  string    `json:"workflow_id"`
	ExecutionID string    `json:"execution_id"`
}

// NewBaseEvent stamps a lifecycle notification with an ID and timestamp.
func NewBaseEvent(eventType EventType, workflowID, executionID string) BaseEvent {
	return BaseEvent{
		ID:          uuid.New().String(),
		Type:        eventType,
		Timestamp:   time.Now(),
		WorkflowID:  workflowID,
		ExecutionID: executionID,
	}
}

// ExecutionStarted is published when an execution transitions to running.
type ExecutionStarted struct {
	BaseEvent

	TriggeredBy string               `json:"triggered_by"`
	Mode        models.ExecutionMode `json:"mode"`
}

func (e ExecutionStarted) GetType() EventType { return ExecutionStartedEvent }

// ExecutionCompleted is published when an execution finishes without failure.
type ExecutionCompleted struct {
	BaseEvent

	Duration time.Duration `json:"duration"`
	Steps    int           `json:"steps"`
}

func (e ExecutionCompleted) GetType() EventType { return ExecutionCompletedEvent }

// ExecutionFailed is published when an execution fails, including engine
// faults such as a missing branch edge.
type ExecutionFailed struct {
	BaseEvent

	ErrorCode    string `json:"error_code"`
	Error        string `json:"error"`
	FailedNodeID string `json:"failed_node_id,omitempty"`
}

func (e ExecutionFailed) GetType() EventType { return ExecutionFailedEvent }

// ExecutionCancelled is published when an operator cancels a running
// execution between steps.
type ExecutionCancelled struct {
	BaseEvent
}

func (e ExecutionCancelled) GetType() EventType { return ExecutionCancelledEvent }
