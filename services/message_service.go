package services

import (
	"mentorhub/domain"
	"mentorhub/repositories"
	"time"

	"github.com/google/uuid"
)

type IMessageService interface {
	Send(senderID, receiverID, content string) (domain.Message, error)
	History(userID, peerID string) ([]domain.Message, error)
	Conversations(userID string) ([]domain.Conversation, error)
	UnreadCount(userID string) (int, error)
}

// MessageService owns the durable path of a send: assigning identity and
// creation time to the record and handing it to the store. It knows
// nothing about the relay; the client talks to both independently, which
// is exactly why relay delivery and persistence can diverge.
type MessageService struct {
	store repositories.IMessageStore
	now   func() time.Time
}

func NewMessageService(store repositories.IMessageStore) *MessageService {
	return &MessageService{store: store, now: time.Now}
}

func (s *MessageService) Send(senderID, receiverID, content string) (domain.Message, error) {
	message := domain.Message{
		ID:        uuid.New(),
		Sender:    senderID,
		Receiver:  receiverID,
		Content:   content,
		Read:      false,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.StoreMessage(message); err != nil {
		return domain.Message{}, err
	}
	return message, nil
}

// History returns the conversation with a peer in chronological order,
// marking the peer's unread messages read as a side effect of opening it.
func (s *MessageService) History(userID, peerID string) ([]domain.Message, error) {
	return s.store.MessagesWith(userID, peerID)
}

func (s *MessageService) Conversations(userID string) ([]domain.Conversation, error) {
	return s.store.Conversations(userID)
}

func (s *MessageService) UnreadCount(userID string) (int, error) {
	return s.store.UnreadCount(userID)
}
