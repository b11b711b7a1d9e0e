// Package httpapi exposes the durable message store over REST. It is the
// sibling of the websocket relay, not its backend: a client persists a
// message here and relays it over the socket in two independent calls.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"mentorhub/auth"
	apperrors "mentorhub/errors"
	"mentorhub/services"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

type contextKey string

const identityKey contextKey = "identity"

type Server struct {
	log      *slog.Logger
	messages services.IMessageService
	validate *validator.Validate
}

func NewServer(log *slog.Logger, messages services.IMessageService) *Server {
	return &Server{log: log, messages: messages, validate: validator.New()}
}

// Routes follows the original surface: create, history with a peer,
// conversation list and unread total. The two literal routes must be
// declared alongside the {userId} wildcard; the mux prefers them.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/messages", s.withIdentity(s.handleSend))
	mux.HandleFunc("GET /api/messages/conversations", s.withIdentity(s.handleConversations))
	mux.HandleFunc("GET /api/messages/unread-count", s.withIdentity(s.handleUnreadCount))
	mux.HandleFunc("GET /api/messages/{userId}", s.withIdentity(s.handleHistory))
	return mux
}

// withIdentity resolves the caller from a Bearer JWT. Plumbing only:
// there is no permission model, a valid token is a valid caller.
func (s *Server) withIdentity(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			s.writeError(w, http.StatusUnauthorized, apperrors.ErrMissingToken.Error())
			return
		}
		claims, err := auth.ValidateToken(token)
		if err != nil {
			s.writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), identityKey, claims.UserID)
		next(w, r.WithContext(ctx))
	}
}

func callerID(r *http.Request) string {
	id, _ := r.Context().Value(identityKey).(string)
	return id
}

type sendMessageRequest struct {
	ReceiverID string `json:"receiverId" validate:"required"`
	Content    string `json:"content" validate:"required,max=10000"`
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	message, err := s.messages.Send(callerID(r), req.ReceiverID, req.Content)
	if err != nil {
		s.log.Error("failed to persist message", "error", err)
		s.writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	s.writeJSON(w, http.StatusCreated, toMessageResponse(message))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	peerID := r.PathValue("userId")

	messages, err := s.messages.History(callerID(r), peerID)
	if err != nil {
		s.log.Error("failed to load history", "error", err)
		s.writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	s.writeJSON(w, http.StatusOK, toMessageResponses(messages))
}

func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request) {
	conversations, err := s.messages.Conversations(callerID(r))
	if err != nil {
		s.log.Error("failed to load conversations", "error", err)
		s.writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	s.writeJSON(w, http.StatusOK, toConversationResponses(conversations))
}

func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.messages.UnreadCount(callerID(r))
	if err != nil {
		s.log.Error("failed to count unread", "error", err)
		s.writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"message": message})
}
