package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/nguyentranbao-ct/chat-timeline/internal/models"
)

type conversationDoc struct {
	models.Conversation `bson:",inline"`
	CachedAt            time.Time `bson:"cached_at"`
}

func (conversationDoc) CollectionName() string { return "conversations" }

type ConversationRepository interface {
	Upsert(ctx context.Context, conv models.Conversation) error
	GetByID(ctx context.Context, conversationID string) (*models.Conversation, error)
	TouchLastMessage(ctx context.Context, conversationID string, at time.Time) error
}

type conversationRepo struct {
	baseRepo[conversationDoc]
}

func NewConversationRepository(db *DB) ConversationRepository {
	return &conversationRepo{newBaseRepo[conversationDoc](db)}
}

func (r *conversationRepo) Upsert(ctx context.Context, conv models.Conversation) error {
	doc := conversationDoc{Conversation: conv, CachedAt: time.Now()}
	return r.UpsertOne(ctx, bson.M{"_id": conv.ID}, doc)
}

func (r *conversationRepo) GetByID(ctx context.Context, conversationID string) (*models.Conversation, error) {
	doc, err := r.FindOne(ctx, bson.M{"_id": conversationID})
	if err != nil {
		return nil, err
	}
	return &doc.Conversation, nil
}

func (r *conversationRepo) TouchLastMessage(ctx context.Context, conversationID string, at time.Time) error {
	return r.UpdateOne(ctx,
		bson.M{"_id": conversationID},
		bson.M{"$set": bson.M{"last_message_at": at}},
	)
}
