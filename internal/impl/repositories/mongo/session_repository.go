package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/Ayesha86527/KisanDost/internal/domain/entities"
	"github.com/Ayesha86527/KisanDost/internal/domain/errs"
	"github.com/Ayesha86527/KisanDost/internal/domain/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// sessionTTL expires idle sessions server side so abandoned
// conversations do not accumulate.
const sessionTTL = 30 * 24 * time.Hour

// SessionRepository persists conversation history in a MongoDB
// collection, one document per session keyed by _id.
type SessionRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

func NewSessionRepository(collection *mongo.Collection, logger *zap.Logger) *SessionRepository {
	return &SessionRepository{
		collection: collection,
		logger:     logger,
	}
}

// EnsureIndexes creates the TTL index on last_access. Safe to call on
// every startup.
func (r *SessionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "last_access", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(sessionTTL.Seconds())),
	})
	if err != nil {
		return errs.InternalErrorf("failed to create session TTL index: %v", err)
	}
	return nil
}

func (r *SessionRepository) GetMessages(ctx context.Context, sessionKey string) ([]entities.Message, error) {
	var session entities.Session
	err := r.collection.FindOne(ctx, bson.M{"_id": sessionKey}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []entities.Message{}, nil
		}
		return nil, errs.InternalErrorf("failed to load session %s: %v", sessionKey, err)
	}

	_, err = r.collection.UpdateOne(ctx,
		bson.M{"_id": sessionKey},
		bson.M{"$set": bson.M{"last_access": time.Now()}},
	)
	if err != nil {
		r.logger.Warn("Failed to update session access time",
			zap.String("session_key", sessionKey),
			zap.Error(err))
	}

	return session.Messages, nil
}

func (r *SessionRepository) AppendMessages(ctx context.Context, sessionKey string, messages []*entities.Message) error {
	docs := make([]entities.Message, 0, len(messages))
	for _, msg := range messages {
		docs = append(docs, *msg)
	}

	now := time.Now()
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": sessionKey},
		bson.M{
			"$push":        bson.M{"messages": bson.M{"$each": docs}},
			"$set":         bson.M{"updated_at": now, "last_access": now},
			"$setOnInsert": bson.M{"created_at": now},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return errs.InternalErrorf("failed to append messages to session %s: %v", sessionKey, err)
	}
	return nil
}

var _ interfaces.SessionRepository = (*SessionRepository)(nil)
