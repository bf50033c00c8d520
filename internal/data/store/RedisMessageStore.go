package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/akolanti/AITutor/internal/config"
	"github.com/akolanti/AITutor/internal/data/redisStore"
	"github.com/akolanti/AITutor/internal/domain/chatModel"
	"github.com/akolanti/AITutor/pkg/logger_i"
)

// RedisMessageStore keeps one list per session, oldest message first.
type RedisMessageStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

// GetRedisMessageStore returns nil when Redis is offline.
func GetRedisMessageStore(ctx context.Context) *RedisMessageStore {
	s := redisStore.GetRedisStore(ctx, config.RedisMessageStore)
	if s == nil {
		return nil
	}
	return NewRedisMessageStore(s)
}

func NewRedisMessageStore(s *redisStore.Store) *RedisMessageStore {
	return &RedisMessageStore{
		store:  s,
		logger: logger_i.NewLogger("MessageStore"),
	}
}

func historyKey(sessionId string) string {
	return "chat:" + sessionId
}

func (s *RedisMessageStore) InitNewChat(ctx context.Context, sessionId string, greeting chatModel.ChatMessage) error {
	log := s.logger.WithTrace(ctx).With("sessionId", sessionId)
	log.Debug("Initializing new chat")
	if err := s.store.Del(ctx, historyKey(sessionId)); err != nil && !s.store.IsNil(err) {
		log.Error("Error clearing chat", "error", err)
		return err
	}
	return s.Append(ctx, sessionId, greeting)
}

func (s *RedisMessageStore) Append(ctx context.Context, sessionId string, messages ...chatModel.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(messages))
	for _, m := range messages {
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("marshalling message: %w", err)
		}
		values = append(values, data)
	}

	err := s.store.ListPush(ctx, historyKey(sessionId), config.RedisMessageStoreTTL, values...)
	if err != nil {
		s.logger.WithTrace(ctx).Error("error saving chat", "sessionId", sessionId, "error", err)
	}
	return err
}

func (s *RedisMessageStore) Touch(ctx context.Context, sessionId string) error {
	return s.store.Expire(ctx, historyKey(sessionId), config.RedisMessageStoreTTL)
}

func (s *RedisMessageStore) GetMessageHistory(ctx context.Context, sessionId string) ([]chatModel.ChatMessage, error) {
	log := s.logger.WithTrace(ctx).With("sessionId", sessionId)
	res, err := s.store.ListGetAll(ctx, historyKey(sessionId))
	if err != nil {
		log.Error("Error getting history", "error", err)
		return nil, err
	}

	history := make([]chatModel.ChatMessage, 0, len(res))
	for _, raw := range res {
		var m chatModel.ChatMessage
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			return nil, fmt.Errorf("decoding history: %w", err)
		}
		history = append(history, m)
	}
	return history, nil
}

func (s *RedisMessageStore) DeleteChat(ctx context.Context, sessionId string) error {
	return s.store.Del(ctx, historyKey(sessionId))
}
