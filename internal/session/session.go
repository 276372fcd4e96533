// File path: internal/session/session.go
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/forgewise/intake/internal/common"
	"github.com/forgewise/intake/internal/conversation"
	"github.com/forgewise/intake/internal/delivery"
)

// State is the lifecycle position of one intake conversation.
type State int

const (
	// StateIdle accepts user input.
	StateIdle State = iota
	// StateAwaitingResponse means a turn is in flight; input is rejected.
	StateAwaitingResponse
	// StateComplete holds a finished summary awaiting submission.
	StateComplete
	// StateSubmitted is terminal: the requirements were delivered.
	StateSubmitted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingResponse:
		return "awaiting_response"
	case StateComplete:
		return "complete"
	case StateSubmitted:
		return "submitted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Event is a state machine input.
type Event int

const (
	EventSubmitTurn Event = iota
	EventTurnSucceeded
	EventTurnCompleted
	EventTurnFailed
	EventSubmissionSucceeded
	EventSubmissionFailed
	EventReset
)

// FallbackMessage is appended as an assistant turn whenever a chat turn
// fails, directing the user to the contact form instead of retrying.
const FallbackMessage = "Sorry, something went wrong while processing your message. " +
	"Please try again in a moment, or reach us directly through the contact form."

// ErrBusy is returned when input arrives while a turn is still in flight.
var ErrBusy = errors.New("a turn is already in progress")

// ErrNotComplete is returned when a submission is attempted before the
// conversation finished.
var ErrNotComplete = errors.New("conversation is not complete")

// ErrConversationOver is returned when input arrives after completion.
var ErrConversationOver = errors.New("conversation is already complete")

// ErrEmptyMessage is returned for blank user input.
var ErrEmptyMessage = errors.New("message is empty")

// Reduce is the pure transition function. Unknown combinations keep the
// current state.
func Reduce(state State, event Event) State {
	switch event {
	case EventReset:
		return StateIdle
	}
	switch state {
	case StateIdle:
		if event == EventSubmitTurn {
			return StateAwaitingResponse
		}
	case StateAwaitingResponse:
		switch event {
		case EventTurnSucceeded, EventTurnFailed:
			return StateIdle
		case EventTurnCompleted:
			return StateComplete
		}
	case StateComplete:
		switch event {
		case EventSubmissionSucceeded:
			return StateSubmitted
		case EventSubmissionFailed:
			return StateComplete
		}
	}
	return state
}

// TurnSubmitter is the slice of the orchestrator the session depends on.
type TurnSubmitter interface {
	SubmitTurn(ctx context.Context, userMessage string, history conversation.History) (conversation.TurnResult, error)
}

// RequirementsSender is the slice of the delivery pipeline the session
// depends on.
type RequirementsSender interface {
	SendRequirementsEmail(ctx context.Context, sub delivery.RequirementsSubmission) (delivery.Result, error)
}

// Session owns one conversation: its history, its state and the candidate
// requirements summary. It drives turns strictly sequentially and is not safe
// for concurrent use; one session belongs to one flow.
type Session struct {
	orchestrator TurnSubmitter
	pipeline     RequirementsSender

	state   State
	history conversation.History
	summary string
	stage   string
}

func New(orchestrator TurnSubmitter, pipeline RequirementsSender) *Session {
	return &Session{orchestrator: orchestrator, pipeline: pipeline, state: StateIdle}
}

// SetStage records the stage label sent with the eventual submission.
func (s *Session) SetStage(stage string) {
	s.stage = stage
}

func (s *Session) State() State {
	return s.state
}

// History returns a copy of the visible conversation.
func (s *Session) History() conversation.History {
	out := make(conversation.History, len(s.history))
	copy(out, s.history)
	return out
}

// Summary returns the candidate requirements summary captured on completion.
func (s *Session) Summary() string {
	return s.summary
}

// Submit runs one chat turn. The user turn is appended to the visible history
// immediately; on failure a fixed fallback assistant message is appended and
// the session returns to idle with no distinct error state.
func (s *Session) Submit(ctx context.Context, message string) (conversation.TurnResult, error) {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return conversation.TurnResult{}, ErrEmptyMessage
	}
	if s.state == StateAwaitingResponse {
		return conversation.TurnResult{}, ErrBusy
	}
	if s.state == StateComplete || s.state == StateSubmitted {
		return conversation.TurnResult{}, ErrConversationOver
	}

	prior := s.History()
	s.history = append(s.history, conversation.UserTurn(trimmed))
	s.state = Reduce(s.state, EventSubmitTurn)

	result, err := s.orchestrator.SubmitTurn(ctx, trimmed, prior)
	if err != nil {
		common.Logger().Warn("session: turn failed, showing fallback", "error", err)
		s.history = append(s.history, conversation.Turn{Role: conversation.RoleAssistant, Content: FallbackMessage})
		s.state = Reduce(s.state, EventTurnFailed)
		return conversation.TurnResult{}, err
	}

	s.history = append(s.history, conversation.AssistantTurn(result))
	if result.IsComplete {
		s.summary = result.Message
		s.state = Reduce(s.state, EventTurnCompleted)
	} else {
		s.state = Reduce(s.state, EventTurnSucceeded)
	}
	return result, nil
}

// SubmitRequirements dispatches the finished conversation once. A failed
// dispatch keeps the session in the complete state so the caller can retry;
// a successful one is terminal.
func (s *Session) SubmitRequirements(ctx context.Context, userEmail string) (delivery.Result, error) {
	if s.state != StateComplete {
		return delivery.Result{}, ErrNotComplete
	}
	result, err := s.pipeline.SendRequirementsEmail(ctx, delivery.RequirementsSubmission{
		RequirementsSummary: s.summary,
		ConversationHistory: s.History(),
		UserEmail:           userEmail,
		SelectedStage:       s.stage,
	})
	if err != nil {
		s.state = Reduce(s.state, EventSubmissionFailed)
		return delivery.Result{}, err
	}
	s.state = Reduce(s.state, EventSubmissionSucceeded)
	return result, nil
}

// Reset discards all in-memory history unconditionally.
func (s *Session) Reset() {
	s.state = StateIdle
	s.history = nil
	s.summary = ""
	s.stage = ""
}

