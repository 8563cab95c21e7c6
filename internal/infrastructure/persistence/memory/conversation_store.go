package memory

import (
	"context"
	"sync"

	"github.com/opschat/icinga-chatops/internal/domain/entity"
)

// ConversationStore provides an in-memory implementation of
// repository.ConversationStore. Thread-safe for concurrent access.
type ConversationStore struct {
	mu            sync.RWMutex
	conversations map[string]*entity.Conversation

	lockMu    sync.Mutex
	userLocks map[string]*sync.Mutex
}

// NewConversationStore creates a new in-memory conversation store.
func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		conversations: make(map[string]*entity.Conversation),
		userLocks:     make(map[string]*sync.Mutex),
	}
}

// Get returns the user's conversation, creating an empty one if none exists.
// The created conversation is not persisted until Put is called.
func (s *ConversationStore) Get(ctx context.Context, userID string) (*entity.Conversation, error) {
	s.mu.RLock()
	conv, ok := s.conversations[userID]
	s.mu.RUnlock()

	if !ok {
		return entity.NewConversation(userID), nil
	}
	return conv, nil
}

// Find returns the user's conversation or nil, nil if none exists.
func (s *ConversationStore) Find(ctx context.Context, userID string) (*entity.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[userID]
	if !ok {
		return nil, nil
	}
	return conv, nil
}

// Put persists the conversation for the user.
func (s *ConversationStore) Put(ctx context.Context, userID string, conv *entity.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversations[userID] = conv
	return nil
}

// Delete removes the user's conversation. Deleting a missing entry is not an
// error.
func (s *ConversationStore) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.conversations, userID)
	return nil
}

// Lock acquires the per-user mutex and returns its unlock function. User
// mutexes are created on first use and kept for the store's lifetime; the
// user population is bounded by the workspace size.
func (s *ConversationStore) Lock(userID string) func() {
	s.lockMu.Lock()
	l, ok := s.userLocks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.userLocks[userID] = l
	}
	s.lockMu.Unlock()

	l.Lock()
	return l.Unlock
}
