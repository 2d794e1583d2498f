package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepEnter    EventType = "step_enter"
	EventStepLeave    EventType = "step_leave"
	EventPromptCall   EventType = "prompt_call"
	EventPromptReturn EventType = "prompt_return"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// StepEvent represents entry into or exit from a step.
type StepEvent struct {
	EventBase
	Step     string `json:"step"`
	NextStep string `json:"next_step,omitempty"`
}

// PromptEvent represents one LLM call made for a prompt field.
type PromptEvent struct {
	EventBase
	Step     string        `json:"step"`
	Field    string        `json:"field"`
	Duration time.Duration `json:"duration,omitempty"`
	Parsed   bool          `json:"parsed,omitempty"`
	IsError  bool          `json:"is_error,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnStepEnter    func(context.Context, *StepEvent)
	OnStepLeave    func(context.Context, *StepEvent)
	OnPromptCall   func(context.Context, *PromptEvent)
	OnPromptReturn func(context.Context, *PromptEvent)
}
