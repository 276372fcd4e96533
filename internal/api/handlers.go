// File path: internal/api/handlers.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/forgewise/intake/internal/common"
	"github.com/forgewise/intake/internal/conversation"
	"github.com/forgewise/intake/internal/delivery"
)

type aiRequest struct {
	UserMessage         string               `json:"userMessage"`
	ConversationHistory conversation.History `json:"conversationHistory"`
}

type sendRequirementsRequest struct {
	RequirementsSummary string               `json:"requirementsSummary"`
	ConversationHistory conversation.History `json:"conversationHistory"`
	UserEmail           string               `json:"userEmail"`
	SelectedStage       string               `json:"selectedStage"`
}

func (s *Server) handleAIRequest(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	var req aiRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("api: aiRequest decode failed", "error", err)
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	message := strings.TrimSpace(req.UserMessage)
	if message == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("userMessage is required"))
		return
	}
	logger.Info("api: chat turn received", "message_length", len(message), "history_turns", len(req.ConversationHistory))
	result, err := s.chat.SubmitTurn(r.Context(), message, req.ConversationHistory)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"response": result,
	})
}

func (s *Server) handleSendRequirements(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	var req sendRequirementsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("api: sendRequirements decode failed", "error", err)
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if strings.TrimSpace(req.RequirementsSummary) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("requirementsSummary is required"))
		return
	}
	result, err := s.pipeline.SendRequirementsEmail(r.Context(), delivery.RequirementsSubmission{
		RequirementsSummary: req.RequirementsSummary,
		ConversationHistory: req.ConversationHistory,
		UserEmail:           req.UserEmail,
		SelectedStage:       req.SelectedStage,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"message":   "Requirements sent successfully",
		"messageId": result.MessageID,
	})
}

func (s *Server) handleSendContactForm(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	var req delivery.ContactSubmission
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("api: sendContactForm decode failed", "error", err)
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := s.pipeline.SendContactFormEmail(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"message":   "Message sent successfully",
		"messageId": result.MessageID,
	})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"logs": common.LogEntries(),
	})
}
