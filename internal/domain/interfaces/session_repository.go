package interfaces

import (
	"context"

	"github.com/Ayesha86527/KisanDost/internal/domain/entities"
)

// SessionRepository stores per-session conversation history. Lookup of an
// unknown key yields an empty sequence; the session is created lazily on
// the first append. Implementations must serialize concurrent access per
// key so readers never observe a partially interleaved history.
type SessionRepository interface {
	GetMessages(ctx context.Context, sessionKey string) ([]entities.Message, error)
	AppendMessages(ctx context.Context, sessionKey string, messages []*entities.Message) error
}
