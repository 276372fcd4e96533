// File path: internal/session/session_test.go
package session

import (
	"context"
	"errors"
	"testing"

	"github.com/forgewise/intake/internal/conversation"
	"github.com/forgewise/intake/internal/delivery"
)

type scriptedOrchestrator struct {
	results []conversation.TurnResult
	errs    []error
	calls   int
}

func (s *scriptedOrchestrator) SubmitTurn(ctx context.Context, userMessage string, history conversation.History) (conversation.TurnResult, error) {
	idx := s.calls
	s.calls++
	var err error
	if idx < len(s.errs) {
		err = s.errs[idx]
	}
	if err != nil {
		return conversation.TurnResult{}, err
	}
	if idx < len(s.results) {
		return s.results[idx], nil
	}
	return conversation.TurnResult{Message: "ok", Suggestions: []string{}}, nil
}

type fakeSender struct {
	err   error
	calls int
	last  delivery.RequirementsSubmission
}

func (f *fakeSender) SendRequirementsEmail(ctx context.Context, sub delivery.RequirementsSubmission) (delivery.Result, error) {
	f.calls++
	f.last = sub
	if f.err != nil {
		return delivery.Result{}, f.err
	}
	return delivery.Result{MessageID: "msg-1", RecipientCount: 1}, nil
}

func TestReduceTransitions(t *testing.T) {
	cases := []struct {
		from  State
		event Event
		want  State
	}{
		{StateIdle, EventSubmitTurn, StateAwaitingResponse},
		{StateAwaitingResponse, EventTurnSucceeded, StateIdle},
		{StateAwaitingResponse, EventTurnFailed, StateIdle},
		{StateAwaitingResponse, EventTurnCompleted, StateComplete},
		{StateComplete, EventSubmissionFailed, StateComplete},
		{StateComplete, EventSubmissionSucceeded, StateSubmitted},
		{StateSubmitted, EventSubmitTurn, StateSubmitted},
		{StateComplete, EventReset, StateIdle},
		{StateSubmitted, EventReset, StateIdle},
	}
	for _, tc := range cases {
		if got := Reduce(tc.from, tc.event); got != tc.want {
			t.Fatalf("Reduce(%v, %d) = %v, want %v", tc.from, tc.event, got, tc.want)
		}
	}
}

func TestSessionHappyPathToSubmitted(t *testing.T) {
	orch := &scriptedOrchestrator{
		results: []conversation.TurnResult{
			{Message: "What are you building?", Suggestions: []string{"A website"}},
			{Message: "Final summary.", IsComplete: true, Suggestions: []string{}},
		},
	}
	sender := &fakeSender{}
	sess := New(orch, sender)
	sess.SetStage("MVP")

	if _, err := sess.Submit(context.Background(), "hello"); err != nil {
		t.Fatalf("first turn: %v", err)
	}
	if sess.State() != StateIdle {
		t.Fatalf("expected idle after turn, got %v", sess.State())
	}
	if _, err := sess.Submit(context.Background(), "that is everything"); err != nil {
		t.Fatalf("second turn: %v", err)
	}
	if sess.State() != StateComplete {
		t.Fatalf("expected complete, got %v", sess.State())
	}
	if sess.Summary() != "Final summary." {
		t.Fatalf("expected captured summary, got %q", sess.Summary())
	}
	if got := len(sess.History()); got != 4 {
		t.Fatalf("expected 4 visible turns, got %d", got)
	}

	result, err := sess.SubmitRequirements(context.Background(), "client@example.com")
	if err != nil {
		t.Fatalf("submit requirements: %v", err)
	}
	if result.MessageID != "msg-1" {
		t.Fatalf("unexpected result %+v", result)
	}
	if sess.State() != StateSubmitted {
		t.Fatalf("expected submitted, got %v", sess.State())
	}
	if sender.last.SelectedStage != "MVP" || sender.last.RequirementsSummary != "Final summary." {
		t.Fatalf("unexpected submission %+v", sender.last)
	}
}

func TestSessionTurnFailureShowsFallback(t *testing.T) {
	orch := &scriptedOrchestrator{errs: []error{errors.New("upstream down")}}
	sess := New(orch, &fakeSender{})
	_, err := sess.Submit(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error surfaced to caller")
	}
	if sess.State() != StateIdle {
		t.Fatalf("expected idle after failure, got %v", sess.State())
	}
	history := sess.History()
	if len(history) != 2 {
		t.Fatalf("expected user turn plus fallback, got %d turns", len(history))
	}
	if history[1].Content != FallbackMessage {
		t.Fatalf("expected fallback message, got %q", history[1].Content)
	}
}

func TestSessionRejectsEmptyInput(t *testing.T) {
	sess := New(&scriptedOrchestrator{}, &fakeSender{})
	if _, err := sess.Submit(context.Background(), "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestSessionRejectsInputAfterCompletion(t *testing.T) {
	orch := &scriptedOrchestrator{
		results: []conversation.TurnResult{{Message: "Summary.", IsComplete: true, Suggestions: []string{}}},
	}
	sess := New(orch, &fakeSender{})
	if _, err := sess.Submit(context.Background(), "done"); err != nil {
		t.Fatalf("turn: %v", err)
	}
	if _, err := sess.Submit(context.Background(), "one more thing"); !errors.Is(err, ErrConversationOver) {
		t.Fatalf("expected ErrConversationOver, got %v", err)
	}
}

func TestSessionSubmissionFailureAllowsRetry(t *testing.T) {
	orch := &scriptedOrchestrator{
		results: []conversation.TurnResult{{Message: "Summary.", IsComplete: true, Suggestions: []string{}}},
	}
	sender := &fakeSender{err: errors.New("dispatch failed")}
	sess := New(orch, sender)
	if _, err := sess.Submit(context.Background(), "done"); err != nil {
		t.Fatalf("turn: %v", err)
	}
	if _, err := sess.SubmitRequirements(context.Background(), ""); err == nil {
		t.Fatal("expected dispatch failure")
	}
	if sess.State() != StateComplete {
		t.Fatalf("expected to stay complete for retry, got %v", sess.State())
	}
	sender.err = nil
	if _, err := sess.SubmitRequirements(context.Background(), ""); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if sess.State() != StateSubmitted {
		t.Fatalf("expected submitted after retry, got %v", sess.State())
	}
	if sender.calls != 2 {
		t.Fatalf("expected 2 dispatch attempts, got %d", sender.calls)
	}
}

func TestSessionResetDiscardsEverything(t *testing.T) {
	orch := &scriptedOrchestrator{
		results: []conversation.TurnResult{{Message: "Summary.", IsComplete: true, Suggestions: []string{}}},
	}
	sess := New(orch, &fakeSender{})
	if _, err := sess.Submit(context.Background(), "done"); err != nil {
		t.Fatalf("turn: %v", err)
	}
	sess.Reset()
	if sess.State() != StateIdle || len(sess.History()) != 0 || sess.Summary() != "" {
		t.Fatal("expected reset to discard all session state")
	}
}
