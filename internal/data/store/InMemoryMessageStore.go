package store

import (
	"context"
	"sync"

	"github.com/akolanti/AITutor/internal/domain/chatModel"
)

type InMemoryMessageStore struct {
	chatLock *sync.RWMutex
	chatMap  map[string][]chatModel.ChatMessage
}

func InitMessageStore() *InMemoryMessageStore {
	return &InMemoryMessageStore{
		chatLock: new(sync.RWMutex),
		chatMap:  make(map[string][]chatModel.ChatMessage),
	}
}

func (store *InMemoryMessageStore) InitNewChat(ctx context.Context, sessionId string, greeting chatModel.ChatMessage) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	store.chatMap[sessionId] = []chatModel.ChatMessage{greeting}
	return nil
}

func (store *InMemoryMessageStore) Append(ctx context.Context, sessionId string, messages ...chatModel.ChatMessage) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	store.chatMap[sessionId] = append(store.chatMap[sessionId], messages...)
	return nil
}

func (store *InMemoryMessageStore) GetMessageHistory(ctx context.Context, sessionId string) ([]chatModel.ChatMessage, error) {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()
	history := store.chatMap[sessionId]
	out := make([]chatModel.ChatMessage, len(history))
	copy(out, history)
	return out, nil
}

// Touch is a no-op: in-memory history lives until DeleteChat.
func (store *InMemoryMessageStore) Touch(ctx context.Context, sessionId string) error {
	return nil
}

func (store *InMemoryMessageStore) DeleteChat(ctx context.Context, sessionId string) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	delete(store.chatMap, sessionId)
	return nil
}
