// OSPilot - Desktop task agent runner
// License: MIT
//
// Copyright (c) 2026 OSPilot contributors

package task

import (
	"time"

	"github.com/google/uuid"

	"github.com/ospilot/ospilot/pkg/action"
)

// Status is the task lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCanceling Status = "canceling"
	StatusCanceled  Status = "canceled"
	StatusFinished  Status = "finished"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusCanceled || s == StatusFinished || s == StatusFailed
}

// DefaultThread is where user-facing progress messages go. Agents may
// post noisier output to other threads.
const DefaultThread = "default"

// TokenUsage is the per-step token accounting reported by the provider.
type TokenUsage struct {
	In  int `json:"in"`
	Out int `json:"out"`
}

// Step records one executed action with the screenshot observed after it.
// Steps are append-only; a step is never mutated once recorded.
type Step struct {
	Action     action.Action `json:"action"`
	Thought    string        `json:"thought,omitempty"`
	Screenshot string        `json:"screenshot,omitempty"` // base64 PNG
	Usage      TokenUsage    `json:"usage"`
	Timestamp  time.Time     `json:"timestamp"`
}

// Message is one entry in a task conversation thread.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Thread    string    `json:"thread"`
	Timestamp time.Time `json:"timestamp"`
}

// Task is one desktop task: what to do, where it stands, and the full
// trajectory of actions taken so far.
type Task struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Error       string    `json:"error,omitempty"`
	MaxSteps    int       `json:"max_steps"`
	Dialect     string    `json:"dialect,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Threads     []string  `json:"threads"`
	Messages    []Message `json:"messages"`
	Steps       []Step    `json:"steps"`
}

// New builds a pending task with a fresh ID.
func New(description string, maxSteps int) *Task {
	now := time.Now().UTC()
	return &Task{
		ID:          uuid.NewString(),
		Description: description,
		Status:      StatusPending,
		MaxSteps:    maxSteps,
		CreatedAt:   now,
		UpdatedAt:   now,
		Threads:     []string{DefaultThread},
	}
}

// EnsureThread registers a thread name if it does not exist yet.
func (t *Task) EnsureThread(name string) {
	for _, existing := range t.Threads {
		if existing == name {
			return
		}
	}
	t.Threads = append(t.Threads, name)
}

// PostMessage appends a message to the default thread.
func (t *Task) PostMessage(role, content string) {
	t.PostMessageThread(role, content, DefaultThread)
}

// PostMessageThread appends a message to a named thread, creating the
// thread if needed.
func (t *Task) PostMessageThread(role, content, thread string) {
	t.EnsureThread(thread)
	t.Messages = append(t.Messages, Message{
		Role:      role,
		Content:   content,
		Thread:    thread,
		Timestamp: time.Now().UTC(),
	})
	t.UpdatedAt = time.Now().UTC()
}

// RecordStep appends a step to the trajectory.
func (t *Task) RecordStep(step Step) {
	if step.Timestamp.IsZero() {
		step.Timestamp = time.Now().UTC()
	}
	t.Steps = append(t.Steps, step)
	t.UpdatedAt = time.Now().UTC()
}

// ThreadMessages returns the messages of one thread in order.
func (t *Task) ThreadMessages(thread string) []Message {
	var out []Message
	for _, m := range t.Messages {
		if m.Thread == thread {
			out = append(out, m)
		}
	}
	return out
}
