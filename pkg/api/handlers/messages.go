package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/rowguard/pkg/models"
)

// MessageHandler serves /api/v1/messages.
type MessageHandler struct{}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler() *MessageHandler {
	return &MessageHandler{}
}

// SendMessageRequest is the request body for POST /api/v1/messages.
// FromUserID may be omitted; when present it must be the caller.
type SendMessageRequest struct {
	FromUserID string `json:"from_user_id,omitempty"`
	ToUserID   string `json:"to_user_id" validate:"required"`
	Body       string `json:"body" validate:"required,max=65536"`
}

// UpdateMessageRequest is the request body for PATCH /api/v1/messages/{id}.
type UpdateMessageRequest struct {
	Body string `json:"body" validate:"required,max=65536"`
}

func messageFilterFromQuery(r *http.Request) models.MessageFilter {
	q := r.URL.Query()
	return models.MessageFilter{
		FromUserID: q.Get("from_user_id"),
		ToUserID:   q.Get("to_user_id"),
	}
}

// Send handles POST /api/v1/messages.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	conn, ok := connOrUnauthorized(w, r)
	if !ok {
		return
	}
	var req SendMessageRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	m, err := conn.SendMessage(r.Context(), &models.Message{
		FromUserID: req.FromUserID,
		ToUserID:   req.ToUserID,
		Body:       req.Body,
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSONCreated(w, m)
}

// List handles GET /api/v1/messages. Only messages the caller sent or
// received are returned.
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	conn, ok := connOrUnauthorized(w, r)
	if !ok {
		return
	}
	msgs, err := conn.ListMessages(r.Context(), messageFilterFromQuery(r))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSONOK(w, msgs)
}

// Get handles GET /api/v1/messages/{id}.
func (h *MessageHandler) Get(w http.ResponseWriter, r *http.Request) {
	conn, ok := connOrUnauthorized(w, r)
	if !ok {
		return
	}
	m, err := conn.GetMessage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSONOK(w, m)
}

// Update handles PATCH /api/v1/messages/{id}. Only the sender may edit.
func (h *MessageHandler) Update(w http.ResponseWriter, r *http.Request) {
	conn, ok := connOrUnauthorized(w, r)
	if !ok {
		return
	}
	var req UpdateMessageRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	m, err := conn.UpdateMessage(r.Context(), chi.URLParam(r, "id"), req.Body)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSONOK(w, m)
}

// Delete handles DELETE /api/v1/messages/{id}. Needs the delete capability.
func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	conn, ok := connOrUnauthorized(w, r)
	if !ok {
		return
	}
	if err := conn.DeleteMessage(r.Context(), chi.URLParam(r, "id")); err != nil {
		WriteError(w, r, err)
		return
	}
	WriteNoContent(w)
}

// DeleteMany handles DELETE /api/v1/messages?from_user_id=&to_user_id=.
func (h *MessageHandler) DeleteMany(w http.ResponseWriter, r *http.Request) {
	conn, ok := connOrUnauthorized(w, r)
	if !ok {
		return
	}
	n, err := conn.DeleteMessages(r.Context(), messageFilterFromQuery(r))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSONOK(w, CountResponse{Count: n})
}
