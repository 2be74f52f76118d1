package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nguyentranbao-ct/chat-timeline/internal/models"
	"github.com/nguyentranbao-ct/chat-timeline/pkg/util"
)

// messageDoc wraps RawMessage for storage; the upstream message ID is
// the document ID.
type messageDoc struct {
	models.RawMessage `bson:",inline"`
}

func (messageDoc) CollectionName() string { return "messages" }

type MessageRepository interface {
	Upsert(ctx context.Context, msg models.RawMessage) error
	UpsertMany(ctx context.Context, msgs []models.RawMessage) error
	// ListByConversation returns a newest-first page, optionally
	// restricted to messages created before the given time.
	ListByConversation(ctx context.Context, conversationID string, limit int, before *time.Time) ([]models.RawMessage, error)
	UpdateStatus(ctx context.Context, messageID string, status models.MessageStatus) error
	MarkReadBy(ctx context.Context, conversationID, userID string) error
	DeleteByConversation(ctx context.Context, conversationID string) (int64, error)
}

type messageRepo struct {
	baseRepo[messageDoc]
}

func NewMessageRepository(db *DB) (MessageRepository, error) {
	repo := &messageRepo{newBaseRepo[messageDoc](db)}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := repo.ensureIndexes(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "conversation_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "client_gen_id", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *messageRepo) Upsert(ctx context.Context, msg models.RawMessage) error {
	return r.UpsertOne(ctx, bson.M{"_id": msg.ID}, messageDoc{msg})
}

func (r *messageRepo) UpsertMany(ctx context.Context, msgs []models.RawMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	writes := make([]mongo.WriteModel, 0, len(msgs))
	for _, msg := range msgs {
		writes = append(writes, mongo.
			NewUpdateOneModel().
			SetFilter(bson.M{"_id": msg.ID}).
			SetUpdate(bson.M{"$set": messageDoc{msg}}).
			SetUpsert(true))
	}
	_, err := r.coll.BulkWrite(ctx, writes)
	return err
}

func (r *messageRepo) ListByConversation(ctx context.Context, conversationID string, limit int, before *time.Time) ([]models.RawMessage, error) {
	filter := bson.M{"conversation_id": conversationID}
	if before != nil {
		filter["created_at"] = bson.M{"$lt": *before}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	docs, err := r.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	return util.ConvertList(docs, func(doc messageDoc) models.RawMessage {
		return doc.RawMessage
	}), nil
}

func (r *messageRepo) UpdateStatus(ctx context.Context, messageID string, status models.MessageStatus) error {
	return r.UpdateOne(ctx,
		bson.M{"_id": messageID},
		bson.M{"$set": bson.M{"status": status}},
	)
}

func (r *messageRepo) MarkReadBy(ctx context.Context, conversationID, userID string) error {
	return r.UpdateMany(ctx,
		bson.M{"conversation_id": conversationID, "read_by": bson.M{"$ne": userID}},
		bson.M{"$addToSet": bson.M{"read_by": userID}},
	)
}

func (r *messageRepo) DeleteByConversation(ctx context.Context, conversationID string) (int64, error) {
	return r.DeleteMany(ctx, bson.M{"conversation_id": conversationID})
}
