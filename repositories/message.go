//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_store.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"mentorhub/domain"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

type IMessageStore interface {
	StoreMessage(message domain.Message) error
	MessagesWith(userID, peerID string) ([]domain.Message, error)
	Conversations(userID string) ([]domain.Conversation, error)
	UnreadCount(userID string) (int, error)
}

// MessageStore is the durable side of messaging, the source of truth for
// history. It shares no transaction with the relay: a message can be
// persisted here yet never delivered live, or the other way around.
type MessageStore struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageStore(db *badger.DB, log *slog.Logger) MessageStore {
	return MessageStore{db: db, log: log}
}

// ConversationKey is the canonical name of a two-party conversation:
// both identities, lexicographically ordered. The same key is produced
// whichever side sends.
func ConversationKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// StoreMessage persists a message in BadgerDB.
// The key is formatted as "msg:{conversation}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two messages
//     arrive at the same nanosecond.
//
// A secondary index "conv:{user}:{peer}" points at each side's latest
// message key, so the conversation list never scans foreign conversations.
func (m MessageStore) StoreMessage(message domain.Message) error {
	key := fmt.Sprintf("msg:%s:%019d:%s",
		ConversationKey(message.Sender, message.Receiver),
		message.CreatedAt.UnixNano(),
		message.ID,
	)
	bytes, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(key), bytes); err != nil {
			return err
		}
		if err := m.bumpIndex(txn, message.Sender, message.Receiver, key); err != nil {
			return err
		}
		return m.bumpIndex(txn, message.Receiver, message.Sender, key)
	})
}

// bumpIndex advances "conv:{owner}:{peer}" to the given message key,
// unless the index already points past it. Keys sort chronologically,
// so a plain byte comparison decides which message is newer.
func (m MessageStore) bumpIndex(txn *badger.Txn, owner, peer, key string) error {
	indexKey := []byte(fmt.Sprintf("conv:%s:%s", owner, peer))
	item, err := txn.Get(indexKey)
	if err == nil {
		var current string
		if err := item.Value(func(v []byte) error {
			current = string(v)
			return nil
		}); err != nil {
			return err
		}
		if current >= key {
			return nil
		}
	} else if err != badger.ErrKeyNotFound {
		return err
	}
	return txn.Set(indexKey, []byte(key))
}

// MessagesWith retrieves the full history between the user and a peer in
// chronological order, relying on the padded timestamp in the key.
// As a side effect it marks the peer's unread messages as read, matching
// the behavior of opening a conversation.
// The returned copies show the read state as it was before the call.
func (m MessageStore) MessagesWith(userID, peerID string) ([]domain.Message, error) {
	prefix := []byte(fmt.Sprintf("msg:%s:", ConversationKey(userID, peerID)))
	var messages []domain.Message

	err := m.db.Update(func(txn *badger.Txn) error {
		type pending struct {
			key   []byte
			value []byte
		}
		var toMark []pending

		// Badger forbids writing to a txn while one of its iterators is
		// open, so the scan collects first and the rewrites come after.
		err := func() error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()

			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				item := it.Item()
				var message domain.Message
				if err := item.Value(func(v []byte) error {
					return json.Unmarshal(v, &message)
				}); err != nil {
					return err
				}
				messages = append(messages, message)

				if message.Sender == peerID && message.Receiver == userID && !message.Read {
					marked := message
					marked.Read = true
					value, err := json.Marshal(marked)
					if err != nil {
						return err
					}
					toMark = append(toMark, pending{key: item.KeyCopy(nil), value: value})
				}
			}
			return nil
		}()
		if err != nil {
			return err
		}

		for _, p := range toMark {
			if err := txn.Set(p.key, p.value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// Conversations lists every peer the user has exchanged messages with:
// the latest message, plus how many of the peer's messages are unread.
// Sorted by last message, newest first, like an inbox.
func (m MessageStore) Conversations(userID string) ([]domain.Conversation, error) {
	prefix := []byte(fmt.Sprintf("conv:%s:", userID))
	var conversations []domain.Conversation

	err := m.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			peerID := string(it.Item().Key()[len(prefix):])

			var lastKey string
			if err := it.Item().Value(func(v []byte) error {
				lastKey = string(v)
				return nil
			}); err != nil {
				return err
			}

			last, err := m.getMessage(txn, lastKey)
			if err != nil {
				return err
			}

			unread, err := m.countUnread(txn, userID, peerID)
			if err != nil {
				return err
			}

			conversations = append(conversations, domain.Conversation{
				PeerID:      peerID,
				LastMessage: last,
				UnreadCount: unread,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].LastMessage.CreatedAt.After(conversations[j].LastMessage.CreatedAt)
	})
	return conversations, nil
}

// UnreadCount sums unread messages addressed to the user across all of
// their conversations.
func (m MessageStore) UnreadCount(userID string) (int, error) {
	prefix := []byte(fmt.Sprintf("conv:%s:", userID))
	total := 0

	err := m.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			peerID := string(it.Item().Key()[len(prefix):])
			unread, err := m.countUnread(txn, userID, peerID)
			if err != nil {
				return err
			}
			total += unread
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (m MessageStore) getMessage(txn *badger.Txn, key string) (domain.Message, error) {
	var message domain.Message
	item, err := txn.Get([]byte(key))
	if err != nil {
		return domain.Message{}, err
	}
	err = item.Value(func(v []byte) error {
		return json.Unmarshal(v, &message)
	})
	return message, err
}

// countUnread scans one conversation's messages counting those the user
// has not read. Conversations are short-lived prefix ranges; the scan is
// proportional to one conversation, never to the whole store.
func (m MessageStore) countUnread(txn *badger.Txn, userID, peerID string) (int, error) {
	prefix := []byte(fmt.Sprintf("msg:%s:", ConversationKey(userID, peerID)))
	count := 0

	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var message domain.Message
		if err := it.Item().Value(func(v []byte) error {
			return json.Unmarshal(v, &message)
		}); err != nil {
			return 0, err
		}
		if message.Receiver == userID && !message.Read {
			count++
		}
	}
	return count, nil
}

// PeerFromIndexKey extracts the peer identity from a "conv:{user}:{peer}"
// index key. Used by the inspection CLI.
func PeerFromIndexKey(key string) string {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) != 3 {
		return ""
	}
	return parts[2]
}
