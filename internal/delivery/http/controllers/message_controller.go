package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"parkpack/internal/delivery/http/helpers"
	"parkpack/internal/delivery/http/middleware"
	"parkpack/internal/domain"

	"github.com/google/uuid"
)

// SendMessageRequest is the request body for POST /conversations/{conversationID}/messages.
// ID is optional; clients that append optimistically supply their own so the
// stored copy keeps the same identity.
type SendMessageRequest struct {
	ID   string `json:"id"`
	Body string `json:"body"`
}

// Validate implements Validator.
func (s SendMessageRequest) Validate() []string {
	if s.Body == "" {
		return []string{"body is required"}
	}
	return nil
}

type MessageController struct {
	Logger  *slog.Logger
	Service domain.MessageService
}

func NewMessageController(logger *slog.Logger, svc domain.MessageService) *MessageController {
	return &MessageController{
		Logger:  logger,
		Service: svc,
	}
}

// Send godoc
// @Summary Send a chat message
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param conversationID path string true "Conversation ID"
// @Param message body SendMessageRequest true "Message data"
// @Success 201 {object} helpers.APIResponse "data contains the stored message"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /conversations/{conversationID}/messages [post]
func (c *MessageController) Send(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	id := req.ID
	if id == "" {
		id = uuid.New().String()
	}
	msg := &domain.Message{
		ID:             id,
		ConversationID: r.PathValue("conversationID"),
		SenderID:       userID,
		Body:           req.Body,
		CreatedAt:      time.Now(),
	}
	if err := c.Service.Send(r.Context(), msg); err != nil {
		respondServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, msg)
}

// ListConversation godoc
// @Summary List a conversation's messages
// @Description Returns the transcript oldest first.
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param conversationID path string true "Conversation ID"
// @Success 200 {object} helpers.APIResponse
// @Router /conversations/{conversationID}/messages [get]
func (c *MessageController) ListConversation(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	messages, err := c.Service.ListConversation(r.Context(), r.PathValue("conversationID"))
	if err != nil {
		respondServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, messages)
}
