package bus

import "time"

// Event types emitted by the step loop.
const (
	EventTaskStarted    = "task_started"
	EventStepStarted    = "step_started"
	EventActionTaken    = "action_taken"
	EventThought        = "thought"
	EventTaskFinished   = "task_finished"
	EventTaskFailed     = "task_failed"
	EventTaskCanceled   = "task_canceled"
	EventContextTrimmed = "context_trimmed"
)

// Event is one progress notification for a running task.
type Event struct {
	TaskID    string    `json:"task_id"`
	Type      string    `json:"type"`
	Step      int       `json:"step,omitempty"`
	Action    string    `json:"action,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
