package httpapi

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"mentorhub/auth"
	"mentorhub/domain"
	"mentorhub/repositories"
	"mentorhub/services"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func startAPI(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := repositories.NewMessageStore(db, slog.Default())
	api := NewServer(slog.Default(), services.NewMessageService(store))
	server := httptest.NewServer(api.Routes())
	t.Cleanup(server.Close)
	return server
}

func bearer(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.GenerateToken(userID, 1*time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func do(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestAPI_Requires_Bearer_Token(t *testing.T) {
	req := require.New(t)
	server := startAPI(t)

	resp := do(t, http.MethodGet, server.URL+"/api/messages/unread-count", "", nil)
	req.Equal(http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, http.MethodGet, server.URL+"/api/messages/unread-count", "Bearer garbage", nil)
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_Send_Then_History_Marks_Read(t *testing.T) {
	req := require.New(t)
	server := startAPI(t)
	alice := bearer(t, "alice")
	bob := bearer(t, "bob")

	// When alice sends bob a message
	resp := do(t, http.MethodPost, server.URL+"/api/messages", alice,
		map[string]string{"receiverId": "bob", "content": "hello"})
	req.Equal(http.StatusCreated, resp.StatusCode)

	var created domain.Message
	req.NoError(json.NewDecoder(resp.Body).Decode(&created))
	req.Equal("alice", created.Sender)
	req.Equal("bob", created.Receiver)
	req.False(created.Read)

	// Then bob has one unread message
	resp = do(t, http.MethodGet, server.URL+"/api/messages/unread-count", bob, nil)
	req.Equal(http.StatusOK, resp.StatusCode)
	var count map[string]int
	req.NoError(json.NewDecoder(resp.Body).Decode(&count))
	req.Equal(1, count["count"])

	// When bob opens the conversation
	resp = do(t, http.MethodGet, server.URL+"/api/messages/alice", bob, nil)
	req.Equal(http.StatusOK, resp.StatusCode)
	var history []domain.Message
	req.NoError(json.NewDecoder(resp.Body).Decode(&history))
	req.Len(history, 1)
	req.Equal("hello", history[0].Content)

	// Then his unread count drops to zero
	resp = do(t, http.MethodGet, server.URL+"/api/messages/unread-count", bob, nil)
	req.NoError(json.NewDecoder(resp.Body).Decode(&count))
	req.Zero(count["count"])
}

func TestAPI_Conversations(t *testing.T) {
	req := require.New(t)
	server := startAPI(t)
	alice := bearer(t, "alice")
	bob := bearer(t, "bob")

	resp := do(t, http.MethodPost, server.URL+"/api/messages", alice,
		map[string]string{"receiverId": "bob", "content": "first"})
	req.Equal(http.StatusCreated, resp.StatusCode)
	resp = do(t, http.MethodPost, server.URL+"/api/messages", bob,
		map[string]string{"receiverId": "alice", "content": "reply"})
	req.Equal(http.StatusCreated, resp.StatusCode)

	// When alice lists her conversations
	resp = do(t, http.MethodGet, server.URL+"/api/messages/conversations", alice, nil)
	req.Equal(http.StatusOK, resp.StatusCode)

	var conversations []domain.Conversation
	req.NoError(json.NewDecoder(resp.Body).Decode(&conversations))
	req.Len(conversations, 1)
	req.Equal("bob", conversations[0].PeerID)
	req.Equal("reply", conversations[0].LastMessage.Content)
	req.Equal(1, conversations[0].UnreadCount)
}

func TestAPI_Send_Validation(t *testing.T) {
	req := require.New(t)
	server := startAPI(t)
	alice := bearer(t, "alice")

	// Missing receiver
	resp := do(t, http.MethodPost, server.URL+"/api/messages", alice,
		map[string]string{"content": "hello"})
	req.Equal(http.StatusBadRequest, resp.StatusCode)

	// Empty content
	resp = do(t, http.MethodPost, server.URL+"/api/messages", alice,
		map[string]string{"receiverId": "bob"})
	req.Equal(http.StatusBadRequest, resp.StatusCode)

	// History with an unknown peer is empty, not an error
	resp = do(t, http.MethodGet, server.URL+"/api/messages/nobody", alice, nil)
	req.Equal(http.StatusOK, resp.StatusCode)
	var history []domain.Message
	req.NoError(json.NewDecoder(resp.Body).Decode(&history))
	req.Empty(history)
}
