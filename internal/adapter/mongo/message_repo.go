package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bozormedia/classifieds-service/internal/entity"
	"github.com/bozormedia/classifieds-service/internal/port/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MessageMongoRepository struct {
	db *mongo.Database
}

func NewMessageMongoRepository(client *mongo.Client, dbName string) *MessageMongoRepository {
	return &MessageMongoRepository{db: client.Database(dbName)}
}

func (r *MessageMongoRepository) collection() *mongo.Collection {
	return r.db.Collection(messagesCollectionName)
}

func (r *MessageMongoRepository) Create(ctx context.Context, msg *entity.Message) (string, error) {
	doc, err := toMessageDocument(msg)
	if err != nil {
		return "", err
	}

	res, err := r.collection().InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to create message in mongo: %w", err)
	}
	insertedID, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("failed to convert inserted_id to ObjectID")
	}
	return insertedID.Hex(), nil
}

func (r *MessageMongoRepository) GetByID(ctx context.Context, id string) (*entity.Message, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	var doc messageDocument
	err = r.collection().FindOne(ctx, bson.M{"_id": objID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get message by id from mongo: %w", err)
	}
	return toMessageEntity(&doc), nil
}

func (r *MessageMongoRepository) ListByConversation(ctx context.Context, conversationID string) ([]*entity.Message, error) {
	cursor, err := r.collection().Find(ctx,
		bson.M{"conversation_id": conversationID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list messages from mongo: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []messageDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}

	messages := make([]*entity.Message, len(docs))
	for i := range docs {
		messages[i] = toMessageEntity(&docs[i])
	}
	return messages, nil
}

func (r *MessageMongoRepository) MarkAsRead(ctx context.Context, conversationID, userID string, at time.Time) error {
	// Only messages addressed to the reader become read; their own messages
	// carry the counterpart's receipt.
	_, err := r.collection().UpdateMany(ctx,
		bson.M{
			"conversation_id": conversationID,
			"sender_id":       bson.M{"$ne": userID},
			"read_at":         nil,
		},
		bson.M{"$set": bson.M{"read_at": at}})
	if err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}
	return nil
}

func (r *MessageMongoRepository) SetDeletedFor(ctx context.Context, messageID string, forSender bool) error {
	objID, err := primitive.ObjectIDFromHex(messageID)
	if err != nil {
		return repository.ErrNotFound
	}

	field := "deleted_for_receiver"
	if forSender {
		field = "deleted_for_sender"
	}
	res, err := r.collection().UpdateOne(ctx,
		bson.M{"_id": objID},
		bson.M{"$set": bson.M{field: true}})
	if err != nil {
		return fmt.Errorf("failed to set message delete flag: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
