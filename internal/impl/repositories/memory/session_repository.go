package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Ayesha86527/KisanDost/internal/domain/entities"
	"github.com/Ayesha86527/KisanDost/internal/domain/interfaces"

	"go.uber.org/zap"
)

// maxSessions caps resident sessions; the least recently used session is
// evicted when a new key would exceed the cap.
const maxSessions = 1024

// SessionRepository keeps conversation history in process memory. Suited
// to single-instance deployments and tests; history does not survive a
// restart.
type SessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*entities.Session
	logger   *zap.Logger
}

func NewSessionRepository(logger *zap.Logger) *SessionRepository {
	return &SessionRepository{
		sessions: make(map[string]*entities.Session),
		logger:   logger,
	}
}

func (r *SessionRepository) GetMessages(ctx context.Context, sessionKey string) ([]entities.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, exists := r.sessions[sessionKey]
	if !exists {
		return []entities.Message{}, nil
	}
	session.LastAccess = time.Now()

	// Copy so callers cannot mutate stored history.
	messages := make([]entities.Message, len(session.Messages))
	copy(messages, session.Messages)
	return messages, nil
}

func (r *SessionRepository) AppendMessages(ctx context.Context, sessionKey string, messages []*entities.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, exists := r.sessions[sessionKey]
	if !exists {
		r.evictIfFull()
		session = entities.NewSession(sessionKey)
		r.sessions[sessionKey] = session
		r.logger.Debug("Created session", zap.String("session_key", sessionKey))
	}

	now := time.Now()
	for _, msg := range messages {
		session.Messages = append(session.Messages, *msg)
	}
	session.UpdatedAt = now
	session.LastAccess = now
	return nil
}

// evictIfFull drops the least recently used session once the cap is
// reached. Caller holds the lock.
func (r *SessionRepository) evictIfFull() {
	if len(r.sessions) < maxSessions {
		return
	}

	var oldestKey string
	var oldestAccess time.Time
	for key, session := range r.sessions {
		if oldestKey == "" || session.LastAccess.Before(oldestAccess) {
			oldestKey = key
			oldestAccess = session.LastAccess
		}
	}
	delete(r.sessions, oldestKey)
	r.logger.Info("Evicted least recently used session", zap.String("session_key", oldestKey))
}

var _ interfaces.SessionRepository = (*SessionRepository)(nil)
