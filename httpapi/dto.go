package httpapi

import (
	"mentorhub/domain"
	"time"

	"github.com/samber/lo"
)

type messageResponse struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Content   string    `json:"content"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

type conversationResponse struct {
	PeerID      string          `json:"peerId"`
	LastMessage messageResponse `json:"lastMessage"`
	UnreadCount int             `json:"unreadCount"`
}

func toMessageResponse(message domain.Message) messageResponse {
	return messageResponse{
		ID:        message.ID.String(),
		Sender:    message.Sender,
		Receiver:  message.Receiver,
		Content:   message.Content,
		Read:      message.Read,
		CreatedAt: message.CreatedAt,
	}
}

func toMessageResponses(messages []domain.Message) []messageResponse {
	return lo.Map(messages, func(item domain.Message, _ int) messageResponse {
		return toMessageResponse(item)
	})
}

func toConversationResponses(conversations []domain.Conversation) []conversationResponse {
	return lo.Map(conversations, func(item domain.Conversation, _ int) conversationResponse {
		return conversationResponse{
			PeerID:      item.PeerID,
			LastMessage: toMessageResponse(item.LastMessage),
			UnreadCount: item.UnreadCount,
		}
	})
}
